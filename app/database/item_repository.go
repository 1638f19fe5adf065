package database

import (
	"database/sql"
	"fmt"
)

var _ ItemRepository = (*ItemRepo)(nil)

// ItemRepo handles database operations for items and their children
type ItemRepo struct {
	db *DB
}

// NewItemRepository creates a new item repository
func NewItemRepository(db *DB) *ItemRepo {
	return &ItemRepo{db: db}
}

// ExistsItem reports whether an item with the given id is already cached
func (r *ItemRepo) ExistsItem(id int64) (bool, error) {
	var found int64
	err := r.db.QueryRow(`SELECT id FROM items WHERE id = ? LIMIT 1`, id).Scan(&found)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check item existence: %w", err)
	}
	return true, nil
}

// AppendItems stores newly scraped items in a single transaction
func (r *ItemRepo) AppendItems(items []Item) error {
	if len(items) == 0 {
		return nil
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, item := range items {
		_, err := tx.Exec(`
			INSERT INTO items (
				id, date_added, author, descendants, score,
				time, title, type, url, text, img, html
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT (id) DO NOTHING
		`, item.ID, item.DateAdded, item.Author, item.Descendants, item.Score,
			item.Time, item.Title, item.Type, item.URL, item.Text, item.Img, item.HTML)
		if err != nil {
			return fmt.Errorf("failed to insert item %d: %w", item.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit items: %w", err)
	}

	return nil
}

// AppendChildren stores child references in a single transaction
func (r *ItemRepo) AppendChildren(children []ChildRef) error {
	if len(children) == 0 {
		return nil
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, child := range children {
		_, err := tx.Exec(`
			INSERT INTO item_children (item_id, child_id)
			VALUES (?, ?)
			ON CONFLICT (item_id, child_id) DO NOTHING
		`, child.ItemID, child.ChildID)
		if err != nil {
			return fmt.Errorf("failed to insert child ref (%d, %d): %w", child.ItemID, child.ChildID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit child refs: %w", err)
	}

	return nil
}

// UpdateImages sets or clears the image URL for each listed item in a
// single transaction. A nil value evicts the stored image.
func (r *ItemRepo) UpdateImages(images map[int64]*string) error {
	if len(images) == 0 {
		return nil
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for id, img := range images {
		_, err := tx.Exec(`UPDATE items SET img = ? WHERE id = ?`, img, id)
		if err != nil {
			return fmt.Errorf("failed to update image for item %d: %w", id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit image updates: %w", err)
	}

	return nil
}

// GetItems returns the most recently added items
func (r *ItemRepo) GetItems(limit int) ([]Item, error) {
	rows, err := r.db.Query(`
		SELECT id, date_added, author, descendants, score,
		       time, title, type, url, text, img, html, created_at
		FROM items
		ORDER BY date_added DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get items: %w", err)
	}
	defer rows.Close()

	return scanItems(rows)
}

// GetItemCount returns the total number of cached items
func (r *ItemRepo) GetItemCount() (int, error) {
	var count int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM items`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get item count: %w", err)
	}
	return count, nil
}

// GetItemsMissingImage returns items whose image field is still unset
func (r *ItemRepo) GetItemsMissingImage() ([]Item, error) {
	rows, err := r.db.Query(`
		SELECT id, date_added, author, descendants, score,
		       time, title, type, url, text, img, html, created_at
		FROM items
		WHERE img IS NULL
		ORDER BY date_added DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to get items missing image: %w", err)
	}
	defer rows.Close()

	return scanItems(rows)
}

// GetItemsWithImage returns items currently carrying an image URL
func (r *ItemRepo) GetItemsWithImage() ([]Item, error) {
	rows, err := r.db.Query(`
		SELECT id, date_added, author, descendants, score,
		       time, title, type, url, text, img, html, created_at
		FROM items
		WHERE img IS NOT NULL
		ORDER BY date_added DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to get items with image: %w", err)
	}
	defer rows.Close()

	return scanItems(rows)
}

// ResetCache deletes all cached items and child references
func (r *ItemRepo) ResetCache() error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM item_tags`); err != nil {
		return fmt.Errorf("failed to delete item tags: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM item_children`); err != nil {
		return fmt.Errorf("failed to delete child refs: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM items`); err != nil {
		return fmt.Errorf("failed to delete items: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit cache reset: %w", err)
	}

	return nil
}

func scanItems(rows *sql.Rows) ([]Item, error) {
	var items []Item
	for rows.Next() {
		var item Item
		err := rows.Scan(
			&item.ID, &item.DateAdded, &item.Author, &item.Descendants, &item.Score,
			&item.Time, &item.Title, &item.Type, &item.URL, &item.Text,
			&item.Img, &item.HTML, &item.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan item row: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating item rows: %w", err)
	}

	return items, nil
}
