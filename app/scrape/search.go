package scrape

import (
	"context"
	"fmt"
	"html"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/valosek/hn-browser/app/database"
	"github.com/valosek/hn-browser/app/httpc"
)

// imageMarker precedes the first raw image URL embedded in the inline
// result metadata of the search results page. The page source carries it
// HTML-entity-escaped.
const (
	imageMarker    = "murl&quot;:&quot;"
	imageMarkerEnd = "&quot;"
)

// Search queries an external image-search engine by title to backfill
// items whose image could not be resolved from their own page.
type Search struct {
	client   *httpc.Client
	endpoint string
}

// NewSearch creates a new image-search fallback
func NewSearch(client *httpc.Client, endpoint string) *Search {
	return &Search{client: client, endpoint: endpoint}
}

// Run queries the search engine once per title, all queries concurrent
// and bounded by the shared client pool. The result maps every input
// title to a best-guess image URL or nil; a failed query yields nil for
// that title and one error record, and never affects other titles.
func (s *Search) Run(ctx context.Context, titles []string) (map[string]*string, []database.ErrorRecord) {
	results := make(map[string]*string, len(titles))
	var errors []database.ErrorRecord
	var mu sync.Mutex
	var wg sync.WaitGroup

	for _, title := range titles {
		wg.Add(1)
		go func(title string) {
			defer wg.Done()

			imageURL, errRecord := s.searchOne(ctx, title)

			mu.Lock()
			defer mu.Unlock()
			results[title] = imageURL
			if errRecord != nil {
				errors = append(errors, *errRecord)
			}
		}(title)
	}

	wg.Wait()
	return results, errors
}

func (s *Search) searchOne(ctx context.Context, title string) (*string, *database.ErrorRecord) {
	queryURL := fmt.Sprintf("%s?q=%s", s.endpoint, url.QueryEscape(title))

	data, err := s.client.Get(ctx, queryURL)
	if err != nil {
		return nil, &database.ErrorRecord{
			URL:         queryURL,
			Kind:        database.FailureImageSearch,
			Time:        time.Now().UTC(),
			Description: fmt.Sprintf("failed to query image search: %v", err),
		}
	}

	imageURL, ok := extractImageURL(string(data))
	if !ok {
		return nil, &database.ErrorRecord{
			URL:         queryURL,
			Kind:        database.FailureImageSearch,
			Time:        time.Now().UTC(),
			Description: "no image result marker in search page",
		}
	}

	return &imageURL, nil
}

// extractImageURL scans the results page for the first marker occurrence
// and returns the unescaped URL it introduces.
func extractImageURL(body string) (string, bool) {
	_, rest, ok := strings.Cut(body, imageMarker)
	if !ok {
		return "", false
	}

	raw, _, ok := strings.Cut(rest, imageMarkerEnd)
	if !ok || raw == "" {
		return "", false
	}

	return html.UnescapeString(raw), true
}
