package scrape

// apiItem is the fixed-shape intermediate record for the per-item API
// JSON payload. Construction into database.Item happens in one place;
// no field of the raw payload is manipulated by name elsewhere.
type apiItem struct {
	ID          int64   `json:"id"`
	By          string  `json:"by"`
	Time        int64   `json:"time"`
	Title       string  `json:"title"`
	Type        string  `json:"type"`
	Score       int     `json:"score"`
	Descendants int     `json:"descendants"`
	URL         *string `json:"url"`
	Text        *string `json:"text"`
	Kids        []int64 `json:"kids"`
}

// rejectionSentinel marks an origin-side rejection page substituted for
// JSON (the rate-limit placeholder served by the upstream).
const rejectionSentinel = "Sorry"
