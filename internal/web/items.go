package web

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/erazemk/katalog/internal/auth"
	"github.com/erazemk/katalog/internal/metrics"
	"github.com/erazemk/katalog/internal/model"
	"github.com/erazemk/katalog/internal/store"
)

type itemFormPage struct {
	PageData
	Category   *model.Category
	Categories []model.Category
	Item       *model.Item
}

// ItemNewPage handles GET /catalog/{category}/new.
func (s *Server) ItemNewPage(w http.ResponseWriter, r *http.Request) {
	if !s.requireLogin(w, r) {
		return
	}
	category, err := s.loadCategory(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.Templates.Render(w, http.StatusOK, "item_form.html", &itemFormPage{
		PageData: s.page(r, "New item in "+category.Name),
		Category: category,
		Item:     &model.Item{},
	})
}

// ItemCreateSubmit handles POST /catalog/{category}/new. The item is owned
// by the caller's identity.
func (s *Server) ItemCreateSubmit(w http.ResponseWriter, r *http.Request) {
	if !s.requireLogin(w, r) {
		return
	}
	sess := GetSession(r.Context())
	identity, ok := auth.CurrentIdentity(sess)
	if !ok {
		s.fail(w, r, auth.ErrNoIdentity)
		return
	}

	category, err := s.loadCategory(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	form, err := s.parseItemForm(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	image, err := s.saveUpload(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	item, err := store.CreateItem(r.Context(), s.DB, model.ItemFields{
		Name:        form.Name,
		Description: form.Description,
		CategoryID:  category.ID,
		Image:       image,
		OwnerID:     identity,
	})
	if err != nil {
		s.discardUpload(r.Context(), image)
		s.fail(w, r, err)
		return
	}

	metrics.RecordMutation("item", "create")
	slog.Info("item created", "user", identity, "category", category.Name, "item", item.Name)
	http.Redirect(w, r, model.ItemPath(category.Name, item.ID), http.StatusSeeOther)
}

// ItemEditPage handles GET /catalog/{category}/{id}/edit.
func (s *Server) ItemEditPage(w http.ResponseWriter, r *http.Request) {
	if !s.requireLogin(w, r) {
		return
	}
	category, item, err := s.loadOwnedItem(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	categories, err := store.ListCategories(r.Context(), s.DB)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	s.Templates.Render(w, http.StatusOK, "item_form.html", &itemFormPage{
		PageData:   s.page(r, "Edit "+item.Name),
		Category:   category,
		Categories: categories,
		Item:       item,
	})
}

// ItemEditSubmit handles POST /catalog/{category}/{id}/edit. A new image
// replaces the old one, which is then removed.
func (s *Server) ItemEditSubmit(w http.ResponseWriter, r *http.Request) {
	if !s.requireLogin(w, r) {
		return
	}
	category, item, err := s.loadOwnedItem(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	form, err := s.parseItemForm(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	target := category
	if form.CategoryID != 0 && form.CategoryID != category.ID {
		target, err = store.GetCategory(r.Context(), s.DB, form.CategoryID)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		if target == nil {
			s.fail(w, r, badRequest("unknown category"))
			return
		}
	}

	image, err := s.saveUpload(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if image == "" {
		image = item.Image
	}

	err = store.UpdateItem(r.Context(), s.DB, item.ID, model.ItemFields{
		Name:        form.Name,
		Description: form.Description,
		CategoryID:  target.ID,
		Image:       image,
	})
	if err != nil {
		if image != item.Image {
			s.discardUpload(r.Context(), image)
		}
		s.fail(w, r, err)
		return
	}

	if item.HasImage() && image != item.Image {
		s.discardUpload(r.Context(), item.Image)
	}

	identity, _ := auth.CurrentIdentity(GetSession(r.Context()))
	metrics.RecordMutation("item", "update")
	slog.Info("item updated", "user", identity, "category", target.Name, "item", form.Name)
	http.Redirect(w, r, model.ItemPath(target.Name, item.ID), http.StatusSeeOther)
}

// ItemDeletePage handles GET /catalog/{category}/{id}/delete.
func (s *Server) ItemDeletePage(w http.ResponseWriter, r *http.Request) {
	if !s.requireLogin(w, r) {
		return
	}
	category, item, err := s.loadOwnedItem(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.Templates.Render(w, http.StatusOK, "confirm.html", &confirmPage{
		PageData: s.page(r, "Delete "+item.Name),
		Message:  "Delete " + item.Name + " from " + category.Name + "?",
		Cancel:   model.ItemPath(category.Name, item.ID),
	})
}

// ItemDeleteSubmit handles POST /catalog/{category}/{id}/delete.
func (s *Server) ItemDeleteSubmit(w http.ResponseWriter, r *http.Request) {
	if !s.requireLogin(w, r) {
		return
	}
	category, item, err := s.loadOwnedItem(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	if err := store.DeleteItem(r.Context(), s.DB, item.ID); err != nil {
		s.fail(w, r, err)
		return
	}
	if item.HasImage() {
		s.discardUpload(r.Context(), item.Image)
	}

	identity, _ := auth.CurrentIdentity(GetSession(r.Context()))
	metrics.RecordMutation("item", "delete")
	slog.Info("item deleted", "user", identity, "category", category.Name, "item", item.Name)
	http.Redirect(w, r, model.CategoryPath(category.Name), http.StatusSeeOther)
}

// loadOwnedItem resolves the item and checks the caller owns it.
func (s *Server) loadOwnedItem(r *http.Request) (*model.Category, *model.Item, error) {
	category, item, err := s.loadItem(r)
	if err != nil {
		return nil, nil, err
	}
	if err := auth.CheckOwner(GetSession(r.Context()), item); err != nil {
		return nil, nil, fmt.Errorf("item %d: %w", item.ID, err)
	}
	return category, item, nil
}

// saveUpload stores the optional "file" field and returns its URL, or ""
// when nothing acceptable was uploaded.
func (s *Server) saveUpload(r *http.Request) (string, error) {
	if r.MultipartForm == nil {
		return "", nil
	}
	file, header, err := r.FormFile("file")
	if errors.Is(err, http.ErrMissingFile) {
		return "", nil
	}
	if err != nil {
		return "", badRequest("unreadable file upload")
	}
	defer file.Close()

	return s.Uploads.Save(file, header.Filename)
}

// discardUpload deletes an image file once no item refers to it.
func (s *Server) discardUpload(ctx context.Context, stored string) {
	if stored == "" {
		return
	}
	inUse, err := store.ImageInUse(ctx, s.DB, stored)
	if err != nil {
		slog.Warn("keeping upload", "image", stored, "error", err)
		return
	}
	if inUse {
		slog.Debug("keeping shared upload", "image", stored)
		return
	}
	if err := s.Uploads.Delete(stored); err != nil {
		slog.Warn("failed to delete upload", "image", stored, "error", err)
	}
}
