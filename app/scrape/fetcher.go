package scrape

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/valosek/hn-browser/app/database"
	"github.com/valosek/hn-browser/app/httpc"
)

// Fetcher resolves one external item id to a structured item record.
type Fetcher struct {
	client *httpc.Client
}

// NewFetcher creates a new item fetcher
func NewFetcher(client *httpc.Client) *Fetcher {
	return &Fetcher{client: client}
}

// Fetch issues one GET to the per-item API endpoint. On success it
// returns the constructed item and its child references. On failure it
// returns a single error record classifying the failure; the batch is
// never affected. One attempt per id, no retries.
func (f *Fetcher) Fetch(ctx context.Context, url string, discoveredAt time.Time) (*database.Item, []database.ChildRef, *database.ErrorRecord) {
	data, err := f.client.Get(ctx, url)
	if err != nil {
		return nil, nil, &database.ErrorRecord{
			URL:         url,
			Kind:        database.FailureSourceUnreachable,
			Time:        time.Now().UTC(),
			Description: fmt.Sprintf("failed to fetch item: %v", err),
		}
	}

	body := string(data)
	if len(body) == 0 || body == "null" {
		return nil, nil, &database.ErrorRecord{
			URL:         url,
			Kind:        database.FailureEmptyResponse,
			Time:        time.Now().UTC(),
			Description: "empty payload",
		}
	}

	if strings.Contains(body, rejectionSentinel) {
		return nil, nil, &database.ErrorRecord{
			URL:         url,
			Kind:        database.FailureEmptyResponse,
			Time:        time.Now().UTC(),
			Description: "origin rejected the request (rate limited)",
		}
	}

	var raw apiItem
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, nil, &database.ErrorRecord{
			URL:         url,
			Kind:        database.FailureSourceUnreachable,
			Time:        time.Now().UTC(),
			Description: fmt.Sprintf("failed to decode payload: %v", err),
		}
	}

	item, children := buildItem(raw, discoveredAt)
	return item, children, nil
}

// buildItem is the pure construction step from the intermediate record
// into the stored item shape: `by` becomes the author, the epoch
// timestamp becomes the creation time, the discovery time is stamped,
// and the embedded child-id list is split off into separate records.
func buildItem(raw apiItem, discoveredAt time.Time) (*database.Item, []database.ChildRef) {
	item := &database.Item{
		ID:          raw.ID,
		DateAdded:   discoveredAt,
		Author:      raw.By,
		Descendants: raw.Descendants,
		Score:       raw.Score,
		Time:        time.Unix(raw.Time, 0).UTC(),
		Title:       raw.Title,
		Type:        raw.Type,
		URL:         raw.URL,
		Text:        raw.Text,
	}

	var children []database.ChildRef
	for _, kid := range raw.Kids {
		children = append(children, database.ChildRef{ItemID: raw.ID, ChildID: kid})
	}

	return item, children
}
