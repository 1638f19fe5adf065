package tasks

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/valosek/hn-browser/app/database"
	"github.com/valosek/hn-browser/app/scrape"
)

// RevalidateImagesTask re-probes every stored image URL and evicts the
// ones no longer served as images. Running it twice with no external
// change yields the same final state.
type RevalidateImagesTask struct {
	Task
	itemRepo  database.ItemRepository
	validator *scrape.Validator
}

func NewRevalidateImagesTask(itemRepo database.ItemRepository, validator *scrape.Validator) *RevalidateImagesTask {
	return &RevalidateImagesTask{
		Task:      NewTask(TaskTypeRevalidateImages),
		itemRepo:  itemRepo,
		validator: validator,
	}
}

func (t *RevalidateImagesTask) Execute(ctx context.Context) error {

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	items, err := t.itemRepo.GetItemsWithImage()
	if err != nil {
		return fmt.Errorf("failed to get items with image: %w", err)
	}

	if len(items) == 0 {
		slog.Debug("No stored images to revalidate")
		return nil
	}

	urls := make([]*string, len(items))
	for i, item := range items {
		urls[i] = item.Img
	}

	results := t.validator.ValidateAll(ctx, urls)

	evictions := make(map[int64]*string)
	for i, valid := range results {
		if !valid {
			evictions[items[i].ID] = nil
		}
	}

	if err := t.itemRepo.UpdateImages(evictions); err != nil {
		return fmt.Errorf("failed to evict invalid images: %w", err)
	}

	slog.Info("Task completed",
		"type", t.GetType(),
		"duration", t.GetDuration(),
		"checked", len(items),
		"evicted", len(evictions))

	return nil
}
