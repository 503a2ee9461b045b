package web

import (
	"log/slog"
	"net/http"

	"github.com/erazemk/katalog/internal/metrics"
	"github.com/erazemk/katalog/internal/model"
	"github.com/erazemk/katalog/internal/store"
)

type categoryFormPage struct {
	PageData
	Name string
}

type confirmPage struct {
	PageData
	Message string
	Cancel  string
}

// CategoryNewPage handles GET /categories/new.
func (s *Server) CategoryNewPage(w http.ResponseWriter, r *http.Request) {
	if !s.requireLogin(w, r) {
		return
	}
	s.Templates.Render(w, http.StatusOK, "category_form.html", &categoryFormPage{
		PageData: s.page(r, "New Category"),
	})
}

// CategoryCreateSubmit handles POST /categories/new.
func (s *Server) CategoryCreateSubmit(w http.ResponseWriter, r *http.Request) {
	if !s.requireLogin(w, r) {
		return
	}

	form, err := s.parseCategoryForm(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	category, err := store.CreateCategory(r.Context(), s.DB, form.Name)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	metrics.RecordMutation("category", "create")
	slog.Info("category created", "user", GetSession(r.Context()).Identity, "category", category.Name)
	http.Redirect(w, r, model.CategoryPath(category.Name), http.StatusSeeOther)
}

// CategoryEditPage handles GET /categories/{id}/edit.
func (s *Server) CategoryEditPage(w http.ResponseWriter, r *http.Request) {
	if !s.requireLogin(w, r) {
		return
	}
	category, err := s.loadCategoryByID(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.Templates.Render(w, http.StatusOK, "category_form.html", &categoryFormPage{
		PageData: s.page(r, "Rename "+category.Name),
		Name:     category.Name,
	})
}

// CategoryEditSubmit handles POST /categories/{id}/edit.
func (s *Server) CategoryEditSubmit(w http.ResponseWriter, r *http.Request) {
	if !s.requireLogin(w, r) {
		return
	}
	category, err := s.loadCategoryByID(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	form, err := s.parseCategoryForm(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	if form.Name != category.Name {
		if err := store.RenameCategory(r.Context(), s.DB, category.ID, form.Name); err != nil {
			s.fail(w, r, err)
			return
		}
		metrics.RecordMutation("category", "rename")
		slog.Info("category renamed", "user", GetSession(r.Context()).Identity,
			"category", category.Name, "name", form.Name)
	}
	http.Redirect(w, r, model.CategoryPath(form.Name), http.StatusSeeOther)
}

// CategoryDeletePage handles GET /categories/{id}/delete.
func (s *Server) CategoryDeletePage(w http.ResponseWriter, r *http.Request) {
	if !s.requireLogin(w, r) {
		return
	}
	category, err := s.loadCategoryByID(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.Templates.Render(w, http.StatusOK, "confirm.html", &confirmPage{
		PageData: s.page(r, "Delete "+category.Name),
		Message:  "Delete the category " + category.Name + "? Only empty categories can be deleted.",
		Cancel:   model.CategoryPath(category.Name),
	})
}

// CategoryDeleteSubmit handles POST /categories/{id}/delete.
func (s *Server) CategoryDeleteSubmit(w http.ResponseWriter, r *http.Request) {
	if !s.requireLogin(w, r) {
		return
	}
	category, err := s.loadCategoryByID(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	if err := store.DeleteCategory(r.Context(), s.DB, category.ID); err != nil {
		s.fail(w, r, err)
		return
	}

	metrics.RecordMutation("category", "delete")
	slog.Info("category deleted", "user", GetSession(r.Context()).Identity, "category", category.Name)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
