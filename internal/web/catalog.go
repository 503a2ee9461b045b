package web

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/erazemk/katalog/internal/auth"
	"github.com/erazemk/katalog/internal/model"
	"github.com/erazemk/katalog/internal/store"
)

// CatalogPage handles GET / and GET /catalog.
func (s *Server) CatalogPage(w http.ResponseWriter, r *http.Request) {
	categories, err := store.ListCategories(r.Context(), s.DB)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	recent, err := store.RecentItems(r.Context(), s.DB, RecentLimit)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	s.Templates.Render(w, http.StatusOK, "catalog.html", &struct {
		PageData
		Categories []model.Category
		Recent     []model.Item
	}{
		PageData:   s.page(r, "Catalog"),
		Categories: categories,
		Recent:     recent,
	})
}

// CategoryPage handles GET /catalog/{category}.
func (s *Server) CategoryPage(w http.ResponseWriter, r *http.Request) {
	category, err := s.loadCategory(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	items, err := store.ListItems(r.Context(), s.DB, category.ID)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	s.Templates.Render(w, http.StatusOK, "category.html", &struct {
		PageData
		Category *model.Category
		Items    []model.Item
	}{
		PageData: s.page(r, category.Name),
		Category: category,
		Items:    items,
	})
}

// ItemPage handles GET /catalog/{category}/{id}.
func (s *Server) ItemPage(w http.ResponseWriter, r *http.Request) {
	category, item, err := s.loadItem(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	identity, _ := auth.CurrentIdentity(GetSession(r.Context()))
	s.Templates.Render(w, http.StatusOK, "item.html", &struct {
		PageData
		Category *model.Category
		Item     *model.Item
		CanEdit  bool
	}{
		PageData: s.page(r, item.Name),
		Category: category,
		Item:     item,
		CanEdit:  item.OwnedBy(identity),
	})
}

// loadCategory resolves the {category} path segment by name.
func (s *Server) loadCategory(r *http.Request) (*model.Category, error) {
	name := r.PathValue("category")
	category, err := store.GetCategoryByName(r.Context(), s.DB, name)
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, fmt.Errorf("category %q: %w", name, errNotFound)
	}
	return category, nil
}

// loadCategoryByID resolves the {id} path segment of category routes.
func (s *Server) loadCategoryByID(r *http.Request) (*model.Category, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("category id %q: %w", r.PathValue("id"), errNotFound)
	}
	category, err := store.GetCategory(r.Context(), s.DB, id)
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, fmt.Errorf("category %d: %w", id, errNotFound)
	}
	return category, nil
}

// loadItem resolves {category} and {id}. An item filed under a different
// category than the one in the URL is not found.
func (s *Server) loadItem(r *http.Request) (*model.Category, *model.Item, error) {
	category, err := s.loadCategory(r)
	if err != nil {
		return nil, nil, err
	}
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		return nil, nil, fmt.Errorf("item id %q: %w", r.PathValue("id"), errNotFound)
	}
	item, err := store.GetItem(r.Context(), s.DB, id)
	if err != nil {
		return nil, nil, err
	}
	if item == nil || item.CategoryID != category.ID {
		return nil, nil, fmt.Errorf("item %d in %q: %w", id, category.Name, errNotFound)
	}
	item.CategoryName = category.Name
	return category, item, nil
}
