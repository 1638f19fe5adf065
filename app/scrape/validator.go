package scrape

import (
	"context"
	"strings"
	"sync"

	"github.com/valosek/hn-browser/app/httpc"
)

// allowedImageTypes is the MIME set a probe response must advertise to
// count as a served image.
var allowedImageTypes = map[string]struct{}{
	"image/png":     {},
	"image/jpeg":    {},
	"image/jpg":     {},
	"image/gif":     {},
	"image/svg+xml": {},
}

// Validator confirms that candidate image URLs actually serve images,
// using metadata-only probes.
type Validator struct {
	client *httpc.Client
}

// NewValidator creates a new image validator
func NewValidator(client *httpc.Client) *Validator {
	return &Validator{client: client}
}

// ValidateAll probes every non-nil URL concurrently. The result slice
// has the same length and order as the input; callers zip by index.
// A nil input, a missing content-type header, a non-image type, or any
// transport failure all yield false, never an error.
func (v *Validator) ValidateAll(ctx context.Context, urls []*string) []bool {
	results := make([]bool, len(urls))
	var wg sync.WaitGroup

	for i, u := range urls {
		if u == nil {
			continue
		}
		wg.Add(1)
		go func(i int, imageURL string) {
			defer wg.Done()
			results[i] = v.validateOne(ctx, imageURL)
		}(i, *u)
	}

	wg.Wait()
	return results
}

func (v *Validator) validateOne(ctx context.Context, imageURL string) bool {
	headers, err := v.client.Head(ctx, imageURL)
	if err != nil {
		return false
	}

	contentType := headers.Get("Content-Type")
	if contentType == "" {
		return false
	}

	// Strip parameters such as "; charset=utf-8"
	mimeType, _, _ := strings.Cut(contentType, ";")
	mimeType = strings.ToLower(strings.TrimSpace(mimeType))

	_, ok := allowedImageTypes[mimeType]
	return ok
}
