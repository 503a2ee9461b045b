package model

import (
	"fmt"
	"net/url"
	"time"
)

// Item is a catalog entry belonging to exactly one category.
type Item struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CategoryID  int64     `json:"category_id"`
	Image       string    `json:"image,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	OwnerID     string    `json:"-"`

	// Joined field (not always populated).
	CategoryName string `json:"category_name,omitempty"`
}

// ItemFields holds the writable fields of an item.
type ItemFields struct {
	Name        string
	Description string
	CategoryID  int64
	Image       string
	OwnerID     string

	// CreatedAt defaults to the current time when zero.
	CreatedAt time.Time
}

// HasImage reports whether the item references an uploaded image.
func (i *Item) HasImage() bool {
	return i.Image != ""
}

// OwnedBy reports whether identity is the recorded owner of the item.
// Items without an owner belong to nobody.
func (i *Item) OwnedBy(identity string) bool {
	return i.OwnerID != "" && i.OwnerID == identity
}

// ItemPath returns the public path of an item inside its category.
func ItemPath(categoryName string, id int64) string {
	return fmt.Sprintf("/catalog/%s/%d", url.PathEscape(categoryName), id)
}
