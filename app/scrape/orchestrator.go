package scrape

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"path"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/valosek/hn-browser/app/database"
)

// Result aggregates one orchestrator run: everything successfully
// fetched plus every failure observed along the way.
type Result struct {
	NewItems    []database.Item
	NewChildren []database.ChildRef
	Errors      []database.ErrorRecord
}

// Orchestrator drives the two-stage scraping pipeline: fetch items,
// then resolve an image for each item carrying an outbound URL. It
// holds no durable state between runs; results are handed to the
// repositories once all concurrent work has settled.
type Orchestrator struct {
	fetcher   *Fetcher
	resolver  *Resolver
	itemRepo  database.ItemRepository
	errorRepo database.ErrorRepository
}

// NewOrchestrator creates a new batch orchestrator
func NewOrchestrator(fetcher *Fetcher, resolver *Resolver, itemRepo database.ItemRepository, errorRepo database.ErrorRepository) *Orchestrator {
	return &Orchestrator{
		fetcher:   fetcher,
		resolver:  resolver,
		itemRepo:  itemRepo,
		errorRepo: errorRepo,
	}
}

// Run processes a discovery-timestamp to source-URL mapping. Already
// cached ids are filtered out before dispatch, so re-running with the
// same input set fetches nothing. Failures degrade the affected entry
// to an error record and never abort sibling tasks or the batch.
func (o *Orchestrator) Run(ctx context.Context, links map[time.Time]string) (*Result, error) {
	runID := uuid.NewString()

	pending, err := o.filterKnown(links)
	if err != nil {
		return nil, err
	}

	slog.Info("Scrape run started", "run_id", runID, "input", len(links), "pending", len(pending))

	result := &Result{}
	if len(pending) > 0 {
		items := o.fetchStage(ctx, pending, result)
		o.resolveStage(ctx, items, result)

		for _, item := range items {
			result.NewItems = append(result.NewItems, *item)
		}
	}

	if err := o.persist(result); err != nil {
		return nil, err
	}

	slog.Info("Scrape run completed", "run_id", runID,
		"new_items", len(result.NewItems),
		"new_children", len(result.NewChildren),
		"errors", len(result.Errors))

	return result, nil
}

// filterKnown drops entries whose item id is already cached.
func (o *Orchestrator) filterKnown(links map[time.Time]string) (map[time.Time]string, error) {
	pending := make(map[time.Time]string, len(links))

	for discoveredAt, sourceURL := range links {
		id, err := itemIDFromURL(sourceURL)
		if err != nil {
			slog.Warn("Skipping source URL without an item id", "url", sourceURL, "error", err)
			continue
		}

		exists, err := o.itemRepo.ExistsItem(id)
		if err != nil {
			return nil, fmt.Errorf("failed to check known items: %w", err)
		}
		if !exists {
			pending[discoveredAt] = sourceURL
		}
	}

	return pending, nil
}

// fetchStage fans out one fetch task per pending entry and joins them
// all before returning. Sibling outcomes are independent.
func (o *Orchestrator) fetchStage(ctx context.Context, pending map[time.Time]string, result *Result) []*database.Item {
	var items []*database.Item
	var mu sync.Mutex
	var wg sync.WaitGroup

	for discoveredAt, sourceURL := range pending {
		wg.Add(1)
		go func(discoveredAt time.Time, sourceURL string) {
			defer wg.Done()

			item, children, errRecord := o.fetcher.Fetch(ctx, sourceURL, discoveredAt)

			mu.Lock()
			defer mu.Unlock()
			if errRecord != nil {
				result.Errors = append(result.Errors, *errRecord)
				return
			}
			items = append(items, item)
			result.NewChildren = append(result.NewChildren, children...)
		}(discoveredAt, sourceURL)
	}

	wg.Wait()
	return items
}

// resolveStage fans out one image-resolution task per item with an
// outbound URL and attaches results back onto the originating items.
func (o *Orchestrator) resolveStage(ctx context.Context, items []*database.Item, result *Result) {
	var mu sync.Mutex
	var wg sync.WaitGroup

	for _, item := range items {
		if item.URL == nil {
			continue
		}
		wg.Add(1)
		go func(item *database.Item) {
			defer wg.Done()

			imageURL, readable, errRecord := o.resolver.ResolveImage(ctx, item.URL)

			mu.Lock()
			defer mu.Unlock()
			item.Img = imageURL
			item.HTML = readable
			if errRecord != nil {
				result.Errors = append(result.Errors, *errRecord)
			}
		}(item)
	}

	wg.Wait()
}

func (o *Orchestrator) persist(result *Result) error {
	if err := o.itemRepo.AppendItems(result.NewItems); err != nil {
		return fmt.Errorf("failed to persist items: %w", err)
	}
	if err := o.itemRepo.AppendChildren(result.NewChildren); err != nil {
		return fmt.Errorf("failed to persist child refs: %w", err)
	}
	if err := o.errorRepo.AppendErrors(result.Errors); err != nil {
		return fmt.Errorf("failed to persist error records: %w", err)
	}
	return nil
}

// itemIDFromURL extracts the numeric item id from a per-item API URL
// of the form <endpoint>/{id}.json.
func itemIDFromURL(sourceURL string) (int64, error) {
	parsed, err := url.Parse(sourceURL)
	if err != nil {
		return 0, fmt.Errorf("failed to parse source URL: %w", err)
	}

	name := strings.TrimSuffix(path.Base(parsed.Path), ".json")
	id, err := strconv.ParseInt(name, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("source URL does not end in an item id: %w", err)
	}

	return id, nil
}
