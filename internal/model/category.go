package model

import "net/url"

// Category groups items. Its name doubles as the URL path segment.
type Category struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Items []Item `json:"items,omitempty"`
}

// MaxNameLength is the longest accepted category or item name.
const MaxNameLength = 100

// CategoryPath returns the public path listing a category's items.
func CategoryPath(name string) string {
	return "/catalog/" + url.PathEscape(name)
}
