package api

import (
	"database/sql"
	"net/http"
)

// RecentLimit is the number of items published in the Atom feed.
const RecentLimit = 20

// NewRouter creates the read-only export router.
func NewRouter(db *sql.DB, baseURL string) http.Handler {
	mux := http.NewServeMux()

	catalogHandler := &CatalogHandler{DB: db}
	feedHandler := &FeedHandler{DB: db, BaseURL: baseURL, Limit: RecentLimit}

	mux.HandleFunc("GET /catalog.json", catalogHandler.List)
	mux.HandleFunc("GET /feed.atom", feedHandler.Atom)

	return mux
}
