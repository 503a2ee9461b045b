package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// SeedCategory is the category created by Seed.
const SeedCategory = "colors"

// SeedItems are the items Seed places in SeedCategory.
var SeedItems = []string{"red", "blue", "black", "yellow", "green"}

// Seed loads the default catalog data. It does nothing if the seed category
// already exists, so it is safe to run on every start.
func Seed(ctx context.Context, db *sql.DB) (bool, error) {
	existing, err := GetCategoryByName(ctx, db, SeedCategory)
	if err != nil {
		return false, err
	}
	if existing != nil {
		return false, nil
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `INSERT INTO categories (name) VALUES (?)`, SeedCategory)
	if err != nil {
		return false, fmt.Errorf("seeding category: %w", err)
	}
	categoryID, err := result.LastInsertId()
	if err != nil {
		return false, fmt.Errorf("getting seed category id: %w", err)
	}

	now := time.Now().UTC()
	for _, name := range SeedItems {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO catalog (name, description, category_id, datetime) VALUES (?, '', ?, ?)`,
			name, categoryID, now,
		)
		if err != nil {
			return false, fmt.Errorf("seeding item %q: %w", name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("committing seed data: %w", err)
	}
	return true, nil
}
