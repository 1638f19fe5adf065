package scrape

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"

	"github.com/valosek/hn-browser/app/database"
	"github.com/valosek/hn-browser/app/httpc"
)

// Resolver fetches an item's outbound page and derives a representative
// image URL from it, plus a readable-content cache of the page.
type Resolver struct {
	client *httpc.Client
}

// NewResolver creates a new image resolver
func NewResolver(client *httpc.Client) *Resolver {
	return &Resolver{client: client}
}

// ResolveImage fetches the page and extracts the src of the first <img>
// element in document order. A nil pageURL or a page without images is a
// legitimate absence, not an error. The second return value is the
// readable content extracted from the page, when available.
func (r *Resolver) ResolveImage(ctx context.Context, pageURL *string) (*string, *string, *database.ErrorRecord) {
	if pageURL == nil {
		return nil, nil, nil
	}

	data, err := r.client.Get(ctx, *pageURL)
	if err != nil {
		return nil, nil, &database.ErrorRecord{
			URL:         *pageURL,
			Kind:        database.FailureImageFetch,
			Time:        time.Now().UTC(),
			Description: fmt.Sprintf("failed to fetch page: %v", err),
		}
	}

	if len(data) == 0 {
		return nil, nil, &database.ErrorRecord{
			URL:         *pageURL,
			Kind:        database.FailureEmptyResponse,
			Time:        time.Now().UTC(),
			Description: "empty page body",
		}
	}

	readable := extractReadableContent(data, *pageURL)

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return nil, readable, &database.ErrorRecord{
			URL:         *pageURL,
			Kind:        database.FailureImageFetch,
			Time:        time.Now().UTC(),
			Description: fmt.Sprintf("failed to parse page: %v", err),
		}
	}

	src, ok := doc.Find("img").First().Attr("src")
	if !ok || src == "" {
		return nil, readable, nil
	}

	resolved := resolveImageURL(*pageURL, src)
	return &resolved, readable, nil
}

// resolveImageURL makes an img src absolute against the page URL.
// Data URIs are kept verbatim.
func resolveImageURL(pageURL, src string) string {
	if strings.HasPrefix(src, "data:") {
		return src
	}

	base, err := url.Parse(pageURL)
	if err != nil {
		return src
	}
	ref, err := url.Parse(src)
	if err != nil {
		return src
	}

	return base.ResolveReference(ref).String()
}

// extractReadableContent runs readability over the fetched page.
// Extraction failure just means no cached content.
func extractReadableContent(data []byte, pageURL string) *string {
	parsedURL, err := url.Parse(pageURL)
	if err != nil {
		return nil
	}

	article, err := readability.FromReader(strings.NewReader(string(data)), parsedURL)
	if err != nil || article.Content == "" {
		return nil
	}

	return &article.Content
}
