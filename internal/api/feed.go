package api

import (
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/feeds"

	"github.com/erazemk/katalog/internal/model"
	"github.com/erazemk/katalog/internal/store"
)

// FeedHandler publishes the most recently added items as an Atom feed.
type FeedHandler struct {
	DB      *sql.DB
	BaseURL string
	Limit   int
}

// Atom handles GET /feed.atom.
func (h *FeedHandler) Atom(w http.ResponseWriter, r *http.Request) {
	items, err := store.RecentItems(r.Context(), h.DB, h.Limit)
	if err != nil {
		slog.Error("failed to list recent items", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	atom, err := h.build(items).ToAtom()
	if err != nil {
		slog.Error("failed to render atom feed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	writeCached(w, r, "application/atom+xml; charset=utf-8", []byte(atom))
}

func (h *FeedHandler) build(items []model.Item) *feeds.Feed {
	feed := &feeds.Feed{
		Title:       "Recent Items",
		Link:        &feeds.Link{Href: h.BaseURL + "/"},
		Id:          h.BaseURL + "/feed.atom",
		Description: "Items most recently added to the catalog",
	}

	// An empty catalog still needs a valid <updated>.
	feed.Updated = time.Unix(0, 0).UTC()
	if len(items) > 0 {
		feed.Updated = items[0].CreatedAt
	}

	for _, item := range items {
		link := h.BaseURL + model.ItemPath(item.CategoryName, item.ID)
		feed.Items = append(feed.Items, &feeds.Item{
			Id:          link,
			Title:       item.Name,
			Link:        &feeds.Link{Href: link},
			Description: item.Description,
			Created:     item.CreatedAt,
			Updated:     item.CreatedAt,
		})
	}
	return feed
}
