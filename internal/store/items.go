package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/erazemk/katalog/internal/model"
)

const itemColumns = `id, name, description, category_id, image, datetime, gplus_id`

// CreateItem creates a new item.
func CreateItem(ctx context.Context, db *sql.DB, f model.ItemFields) (*model.Item, error) {
	createdAt := f.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	result, err := db.ExecContext(ctx,
		`INSERT INTO catalog (name, description, category_id, image, datetime, gplus_id)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		f.Name, f.Description, f.CategoryID, nullString(f.Image), createdAt.UTC(), nullString(f.OwnerID),
	)
	if err != nil {
		return nil, fmt.Errorf("creating item: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting item id: %w", err)
	}

	return GetItem(ctx, db, id)
}

// GetItem returns an item by ID, or nil if it doesn't exist.
func GetItem(ctx context.Context, db *sql.DB, id int64) (*model.Item, error) {
	row := db.QueryRowContext(ctx,
		`SELECT `+itemColumns+` FROM catalog WHERE id = ?`, id,
	)

	item, err := scanItem(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting item: %w", err)
	}
	return item, nil
}

// ListItems returns the items of a category, newest first.
func ListItems(ctx context.Context, db *sql.DB, categoryID int64) ([]model.Item, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT `+itemColumns+` FROM catalog WHERE category_id = ?
		 ORDER BY datetime DESC, id ASC`, categoryID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}
	defer rows.Close()

	return scanItems(rows)
}

// RecentItems returns at most limit items across all categories, newest
// first, with CategoryName populated. Items sharing a timestamp keep their
// insertion order.
func RecentItems(ctx context.Context, db *sql.DB, limit int) ([]model.Item, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT i.id, i.name, i.description, i.category_id, i.image, i.datetime, i.gplus_id,
		        c.name AS category_name
		 FROM catalog i
		 JOIN categories c ON c.id = i.category_id
		 ORDER BY i.datetime DESC, i.id ASC
		 LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("listing recent items: %w", err)
	}
	defer rows.Close()

	var items []model.Item
	for rows.Next() {
		var item model.Item
		var image, owner sql.NullString
		if err := rows.Scan(&item.ID, &item.Name, &item.Description, &item.CategoryID,
			&image, &item.CreatedAt, &owner, &item.CategoryName); err != nil {
			return nil, fmt.Errorf("scanning recent item: %w", err)
		}
		item.Image = image.String
		item.OwnerID = owner.String
		items = append(items, item)
	}
	return items, rows.Err()
}

// UpdateItem updates an item's name, description, category and image.
// Owner and creation time never change.
func UpdateItem(ctx context.Context, db *sql.DB, id int64, f model.ItemFields) error {
	_, err := db.ExecContext(ctx,
		`UPDATE catalog SET name = ?, description = ?, category_id = ?, image = ?
		 WHERE id = ?`,
		f.Name, f.Description, f.CategoryID, nullString(f.Image), id,
	)
	if err != nil {
		return fmt.Errorf("updating item: %w", err)
	}
	return nil
}

// DeleteItem deletes an item.
func DeleteItem(ctx context.Context, db *sql.DB, id int64) error {
	_, err := db.ExecContext(ctx, `DELETE FROM catalog WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting item: %w", err)
	}
	return nil
}

// ImageInUse reports whether any item still points at the stored image.
// Uploads are keyed by sanitised filename, so items can share one.
func ImageInUse(ctx context.Context, db *sql.DB, image string) (bool, error) {
	var n int
	err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM catalog WHERE image = ?`, image,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("checking image references: %w", err)
	}
	return n > 0, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (*model.Item, error) {
	item := &model.Item{}
	var image, owner sql.NullString
	if err := row.Scan(&item.ID, &item.Name, &item.Description, &item.CategoryID,
		&image, &item.CreatedAt, &owner); err != nil {
		return nil, err
	}
	item.Image = image.String
	item.OwnerID = owner.String
	return item, nil
}

func scanItems(rows *sql.Rows) ([]model.Item, error) {
	var items []model.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning item: %w", err)
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

// nullString stores empty strings as NULL.
func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
