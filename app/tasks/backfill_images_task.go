package tasks

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/valosek/hn-browser/app/database"
	"github.com/valosek/hn-browser/app/scrape"
)

// BackfillImagesTask queries the image-search fallback for items whose
// image is still unset, validates the hits, and stores the valid ones.
// Only runs on explicit operator request.
type BackfillImagesTask struct {
	Task
	itemRepo  database.ItemRepository
	errorRepo database.ErrorRepository
	search    *scrape.Search
	validator *scrape.Validator
}

func NewBackfillImagesTask(itemRepo database.ItemRepository, errorRepo database.ErrorRepository, search *scrape.Search, validator *scrape.Validator) *BackfillImagesTask {
	return &BackfillImagesTask{
		Task:      NewTask(TaskTypeBackfillImages),
		itemRepo:  itemRepo,
		errorRepo: errorRepo,
		search:    search,
		validator: validator,
	}
}

func (t *BackfillImagesTask) Execute(ctx context.Context) error {

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	items, err := t.itemRepo.GetItemsMissingImage()
	if err != nil {
		return fmt.Errorf("failed to get items missing image: %w", err)
	}

	if len(items) == 0 {
		slog.Debug("No items missing an image")
		return nil
	}

	var titles []string
	seen := make(map[string]bool)
	for _, item := range items {
		if item.Title == "" || seen[item.Title] {
			continue
		}
		seen[item.Title] = true
		titles = append(titles, item.Title)
	}

	results, searchErrors := t.search.Run(ctx, titles)
	if err := t.errorRepo.AppendErrors(searchErrors); err != nil {
		return fmt.Errorf("failed to persist search errors: %w", err)
	}

	// Zip candidates back onto items by title, then validate before storing
	candidates := make([]*string, len(items))
	for i, item := range items {
		candidates[i] = results[item.Title]
	}

	valid := t.validator.ValidateAll(ctx, candidates)

	updates := make(map[int64]*string)
	for i, ok := range valid {
		if ok && candidates[i] != nil {
			updates[items[i].ID] = candidates[i]
		}
	}

	if err := t.itemRepo.UpdateImages(updates); err != nil {
		return fmt.Errorf("failed to store backfilled images: %w", err)
	}

	slog.Info("Task completed",
		"type", t.GetType(),
		"duration", t.GetDuration(),
		"missing", len(items),
		"queries", len(titles),
		"backfilled", len(updates),
		"search_errors", len(searchErrors))

	return nil
}
