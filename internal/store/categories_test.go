package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/erazemk/katalog/internal/db"
	"github.com/erazemk/katalog/internal/model"
)

func TestCreateAndGetCategory(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	cat, err := CreateCategory(ctx, database, "Tools")
	if err != nil {
		t.Fatalf("CreateCategory: %v", err)
	}
	if cat.Name != "Tools" {
		t.Errorf("expected name 'Tools', got %q", cat.Name)
	}

	byName, err := GetCategoryByName(ctx, database, "Tools")
	if err != nil {
		t.Fatalf("GetCategoryByName: %v", err)
	}
	if byName == nil || byName.ID != cat.ID {
		t.Errorf("expected category %d by name, got %+v", cat.ID, byName)
	}

	missing, err := GetCategoryByName(ctx, database, "Nope")
	if err != nil {
		t.Fatalf("GetCategoryByName: %v", err)
	}
	if missing != nil {
		t.Error("expected nil for missing category")
	}
}

func TestCreateCategoryDuplicate(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	CreateCategory(ctx, database, "Tools")
	_, err := CreateCategory(ctx, database, "Tools")
	if !errors.Is(err, ErrDuplicateName) {
		t.Errorf("expected ErrDuplicateName, got %v", err)
	}
}

func TestRenameCategory(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	cat, _ := CreateCategory(ctx, database, "Tools")
	CreateCategory(ctx, database, "Garden")

	if err := RenameCategory(ctx, database, cat.ID, "Hand Tools"); err != nil {
		t.Fatalf("RenameCategory: %v", err)
	}
	got, _ := GetCategory(ctx, database, cat.ID)
	if got.Name != "Hand Tools" {
		t.Errorf("expected 'Hand Tools', got %q", got.Name)
	}

	err := RenameCategory(ctx, database, cat.ID, "Garden")
	if !errors.Is(err, ErrDuplicateName) {
		t.Errorf("expected ErrDuplicateName renaming onto existing name, got %v", err)
	}
}

func TestDeleteEmptyCategory(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	cat, _ := CreateCategory(ctx, database, "Tools")

	if err := DeleteCategory(ctx, database, cat.ID); err != nil {
		t.Fatalf("DeleteCategory: %v", err)
	}

	categories, _ := ListCategories(ctx, database)
	if len(categories) != 0 {
		t.Errorf("expected 0 categories after delete, got %d", len(categories))
	}
}

func TestDeleteCategoryWithItemsFails(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	cat, _ := CreateCategory(ctx, database, "Tools")
	item, _ := CreateItem(ctx, database, model.ItemFields{Name: "Hammer", CategoryID: cat.ID})

	err := DeleteCategory(ctx, database, cat.ID)
	if !errors.Is(err, ErrCategoryNotEmpty) {
		t.Fatalf("expected ErrCategoryNotEmpty, got %v", err)
	}

	// Nothing changed.
	got, _ := GetCategory(ctx, database, cat.ID)
	if got == nil {
		t.Error("expected category to survive failed delete")
	}
	stillThere, _ := GetItem(ctx, database, item.ID)
	if stillThere == nil {
		t.Error("expected item to survive failed delete")
	}

	// Succeeds once emptied.
	DeleteItem(ctx, database, item.ID)
	if err := DeleteCategory(ctx, database, cat.ID); err != nil {
		t.Errorf("DeleteCategory after emptying: %v", err)
	}
}

func TestListCatalog(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	tools, _ := CreateCategory(ctx, database, "Tools")
	CreateCategory(ctx, database, "Empty")
	CreateItem(ctx, database, model.ItemFields{Name: "Hammer", CategoryID: tools.ID})
	CreateItem(ctx, database, model.ItemFields{Name: "Saw", CategoryID: tools.ID})

	catalog, err := ListCatalog(ctx, database)
	if err != nil {
		t.Fatalf("ListCatalog: %v", err)
	}
	if len(catalog) != 2 {
		t.Fatalf("expected 2 categories, got %d", len(catalog))
	}

	// Ordered by name: Empty, Tools.
	if catalog[0].Name != "Empty" || len(catalog[0].Items) != 0 {
		t.Errorf("unexpected first category %+v", catalog[0])
	}
	if catalog[1].Name != "Tools" || len(catalog[1].Items) != 2 {
		t.Errorf("unexpected second category %+v", catalog[1])
	}
}

func TestListingsKeepInsertionOrderOnTies(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	tools, _ := CreateCategory(ctx, database, "Tools")
	at := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	first, _ := CreateItem(ctx, database, model.ItemFields{Name: "first", CategoryID: tools.ID, CreatedAt: at})
	second, _ := CreateItem(ctx, database, model.ItemFields{Name: "second", CategoryID: tools.ID, CreatedAt: at})

	items, err := ListItems(ctx, database, tools.ID)
	if err != nil {
		t.Fatalf("ListItems: %v", err)
	}
	if len(items) != 2 || items[0].ID != first.ID || items[1].ID != second.ID {
		t.Errorf("ListItems: expected [%d %d], got %+v", first.ID, second.ID, items)
	}

	catalog, err := ListCatalog(ctx, database)
	if err != nil {
		t.Fatalf("ListCatalog: %v", err)
	}
	got := catalog[0].Items
	if len(got) != 2 || got[0].ID != first.ID || got[1].ID != second.ID {
		t.Errorf("ListCatalog: expected [%d %d], got %+v", first.ID, second.ID, got)
	}
}
