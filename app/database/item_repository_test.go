package database

import (
	"path/filepath"
	"testing"
	"time"
)

func setupTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := NewConnection(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if _, _, err := RunMigrations(db); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	return db
}

func strPtr(s string) *string {
	return &s
}

func testItem(id int64) Item {
	return Item{
		ID:          id,
		DateAdded:   time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Author:      "alice",
		Descendants: 2,
		Score:       10,
		Time:        time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Title:       "Test",
		Type:        "story",
		URL:         strPtr("https://blog.example/post"),
	}
}

func TestExistsItem(t *testing.T) {
	db := setupTestDB(t)
	repo := NewItemRepository(db)

	exists, err := repo.ExistsItem(42)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if exists {
		t.Error("Expected item 42 to not exist in empty database")
	}

	if err := repo.AppendItems([]Item{testItem(42)}); err != nil {
		t.Fatalf("Failed to append item: %v", err)
	}

	exists, err = repo.ExistsItem(42)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if !exists {
		t.Error("Expected item 42 to exist after append")
	}
}

func TestAppendItemsIsIdempotent(t *testing.T) {
	db := setupTestDB(t)
	repo := NewItemRepository(db)

	if err := repo.AppendItems([]Item{testItem(42)}); err != nil {
		t.Fatalf("Failed to append item: %v", err)
	}
	if err := repo.AppendItems([]Item{testItem(42)}); err != nil {
		t.Fatalf("Second append should not fail: %v", err)
	}

	count, err := repo.GetItemCount()
	if err != nil {
		t.Fatalf("Failed to get item count: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected 1 item, got %d", count)
	}
}

func TestAppendChildren(t *testing.T) {
	db := setupTestDB(t)
	repo := NewItemRepository(db)

	children := []ChildRef{
		{ItemID: 42, ChildID: 43},
		{ItemID: 42, ChildID: 44},
	}
	if err := repo.AppendChildren(children); err != nil {
		t.Fatalf("Failed to append children: %v", err)
	}

	// Re-appending the same refs must not fail
	if err := repo.AppendChildren(children); err != nil {
		t.Fatalf("Second append should not fail: %v", err)
	}
}

func TestUpdateImages(t *testing.T) {
	db := setupTestDB(t)
	repo := NewItemRepository(db)

	if err := repo.AppendItems([]Item{testItem(1), testItem(2)}); err != nil {
		t.Fatalf("Failed to append items: %v", err)
	}

	missing, err := repo.GetItemsMissingImage()
	if err != nil {
		t.Fatalf("Failed to get items missing image: %v", err)
	}
	if len(missing) != 2 {
		t.Fatalf("Expected 2 items missing image, got %d", len(missing))
	}

	err = repo.UpdateImages(map[int64]*string{1: strPtr("https://img.example/a.png")})
	if err != nil {
		t.Fatalf("Failed to update images: %v", err)
	}

	withImage, err := repo.GetItemsWithImage()
	if err != nil {
		t.Fatalf("Failed to get items with image: %v", err)
	}
	if len(withImage) != 1 {
		t.Fatalf("Expected 1 item with image, got %d", len(withImage))
	}
	if withImage[0].ID != 1 {
		t.Errorf("Expected item 1 to carry the image, got %d", withImage[0].ID)
	}
	if withImage[0].Img == nil || *withImage[0].Img != "https://img.example/a.png" {
		t.Errorf("Unexpected image URL: %v", withImage[0].Img)
	}

	// Eviction: a nil value clears the stored image
	if err := repo.UpdateImages(map[int64]*string{1: nil}); err != nil {
		t.Fatalf("Failed to evict image: %v", err)
	}

	missing, err = repo.GetItemsMissingImage()
	if err != nil {
		t.Fatalf("Failed to get items missing image: %v", err)
	}
	if len(missing) != 2 {
		t.Errorf("Expected 2 items missing image after eviction, got %d", len(missing))
	}
}

func TestResetCache(t *testing.T) {
	db := setupTestDB(t)
	repo := NewItemRepository(db)

	if err := repo.AppendItems([]Item{testItem(42)}); err != nil {
		t.Fatalf("Failed to append item: %v", err)
	}
	if err := repo.AppendChildren([]ChildRef{{ItemID: 42, ChildID: 43}}); err != nil {
		t.Fatalf("Failed to append children: %v", err)
	}

	if err := repo.ResetCache(); err != nil {
		t.Fatalf("Failed to reset cache: %v", err)
	}

	count, err := repo.GetItemCount()
	if err != nil {
		t.Fatalf("Failed to get item count: %v", err)
	}
	if count != 0 {
		t.Errorf("Expected 0 items after reset, got %d", count)
	}
}

func TestErrorRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewErrorRepository(db)

	record := ErrorRecord{
		URL:         "https://api.example/item/42.json",
		Kind:        FailureSourceUnreachable,
		Time:        time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Description: "connection refused",
	}

	if err := repo.AppendErrors([]ErrorRecord{record, record}); err != nil {
		t.Fatalf("Failed to append errors: %v", err)
	}

	// Append-only: identical records are both kept
	count, err := repo.GetErrorCount()
	if err != nil {
		t.Fatalf("Failed to get error count: %v", err)
	}
	if count != 2 {
		t.Errorf("Expected 2 error records, got %d", count)
	}

	records, err := repo.GetErrors(10)
	if err != nil {
		t.Fatalf("Failed to get errors: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(records))
	}
	if records[0].Kind != FailureSourceUnreachable {
		t.Errorf("Expected kind SourceUnreachable, got %s", records[0].Kind)
	}
}

func TestTagRepository(t *testing.T) {
	db := setupTestDB(t)
	itemRepo := NewItemRepository(db)
	tagRepo := NewTagRepository(db)

	if err := itemRepo.AppendItems([]Item{testItem(42)}); err != nil {
		t.Fatalf("Failed to append item: %v", err)
	}

	id1, err := tagRepo.UpsertTag("golang")
	if err != nil {
		t.Fatalf("Failed to upsert tag: %v", err)
	}
	id2, err := tagRepo.UpsertTag("golang")
	if err != nil {
		t.Fatalf("Failed to upsert existing tag: %v", err)
	}
	if id1 != id2 {
		t.Errorf("Expected stable tag id on re-upsert, got %d and %d", id1, id2)
	}

	if err := tagRepo.TagItem(42, id1); err != nil {
		t.Fatalf("Failed to tag item: %v", err)
	}

	tags, err := tagRepo.GetItemTags(42)
	if err != nil {
		t.Fatalf("Failed to get item tags: %v", err)
	}
	if len(tags) != 1 || tags[0].Description != "golang" {
		t.Errorf("Unexpected item tags: %v", tags)
	}
}
