package database

import (
	"fmt"
)

var _ TagRepository = (*TagRepo)(nil)

// TagRepo handles database operations for the tag vocabulary
type TagRepo struct {
	db *DB
}

// NewTagRepository creates a new tag repository
func NewTagRepository(db *DB) *TagRepo {
	return &TagRepo{db: db}
}

// UpsertTag inserts a tag description if missing and returns its id
func (r *TagRepo) UpsertTag(description string) (int64, error) {
	var id int64
	err := r.db.QueryRow(`
		INSERT INTO tags (description)
		VALUES (?)
		ON CONFLICT (description) DO UPDATE SET description = excluded.description
		RETURNING id
	`, description).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to upsert tag: %w", err)
	}
	return id, nil
}

// TagItem associates a tag with an item
func (r *TagRepo) TagItem(itemID, tagID int64) error {
	_, err := r.db.Exec(`
		INSERT INTO item_tags (item_id, tag_id)
		VALUES (?, ?)
		ON CONFLICT (item_id, tag_id) DO NOTHING
	`, itemID, tagID)
	if err != nil {
		return fmt.Errorf("failed to tag item %d: %w", itemID, err)
	}
	return nil
}

// GetTags returns the full tag vocabulary
func (r *TagRepo) GetTags() ([]Tag, error) {
	rows, err := r.db.Query(`SELECT id, description FROM tags ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to get tags: %w", err)
	}
	defer rows.Close()

	var tags []Tag
	for rows.Next() {
		var tag Tag
		if err := rows.Scan(&tag.ID, &tag.Description); err != nil {
			return nil, fmt.Errorf("failed to scan tag row: %w", err)
		}
		tags = append(tags, tag)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tag rows: %w", err)
	}

	return tags, nil
}

// GetItemTags returns the tags associated with an item
func (r *TagRepo) GetItemTags(itemID int64) ([]Tag, error) {
	rows, err := r.db.Query(`
		SELECT t.id, t.description
		FROM tags t
		JOIN item_tags it ON it.tag_id = t.id
		WHERE it.item_id = ?
		ORDER BY t.id
	`, itemID)
	if err != nil {
		return nil, fmt.Errorf("failed to get item tags: %w", err)
	}
	defer rows.Close()

	var tags []Tag
	for rows.Next() {
		var tag Tag
		if err := rows.Scan(&tag.ID, &tag.Description); err != nil {
			return nil, fmt.Errorf("failed to scan tag row: %w", err)
		}
		tags = append(tags, tag)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tag rows: %w", err)
	}

	return tags, nil
}
