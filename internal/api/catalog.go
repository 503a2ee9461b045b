package api

import (
	"database/sql"
	"encoding/json"
	"net/http"

	"github.com/erazemk/katalog/internal/model"
	"github.com/erazemk/katalog/internal/store"
)

// CatalogHandler serves the whole catalog as JSON.
type CatalogHandler struct {
	DB *sql.DB
}

type catalogItem struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Image       string `json:"image"`
}

type catalogCategory struct {
	ID    int64         `json:"id"`
	Name  string        `json:"name"`
	Items []catalogItem `json:"items"`
}

// List handles GET /catalog.json.
func (h *CatalogHandler) List(w http.ResponseWriter, r *http.Request) {
	categories, err := store.ListCatalog(r.Context(), h.DB)
	if err != nil {
		failExport(w, r, "failed to list catalog", err)
		return
	}

	body, err := json.Marshal(toCatalog(categories))
	if err != nil {
		failExport(w, r, "failed to encode catalog", err)
		return
	}
	writeCached(w, r, "application/json", body)
}

func toCatalog(categories []model.Category) []catalogCategory {
	out := make([]catalogCategory, 0, len(categories))
	for _, c := range categories {
		items := make([]catalogItem, 0, len(c.Items))
		for _, item := range c.Items {
			items = append(items, catalogItem{
				ID:          item.ID,
				Name:        item.Name,
				Description: item.Description,
				Image:       item.Image,
			})
		}
		out = append(out, catalogCategory{ID: c.ID, Name: c.Name, Items: items})
	}
	return out
}
