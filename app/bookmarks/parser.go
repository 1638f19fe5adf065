package bookmarks

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Parser reads the bookmark list file: a dash-separated list of
// {id}q{epoch-millis} tokens, one per bookmark.
type Parser struct {
	itemEndpoint string
}

// NewParser creates a new bookmark parser. itemEndpoint is the base URL
// of the per-item JSON API, without a trailing slash.
func NewParser(itemEndpoint string) *Parser {
	return &Parser{itemEndpoint: strings.TrimSuffix(itemEndpoint, "/")}
}

// ParseFile loads the bookmark file and returns a discovery-timestamp to
// source-URL mapping. Malformed tokens are skipped with a warning.
func (p *Parser) ParseFile(path string) (map[time.Time]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read bookmarks file: %w", err)
	}

	return p.Parse(string(data)), nil
}

// Parse converts raw bookmark file content into the discoveredAt -> URL
// mapping the orchestrator consumes.
func (p *Parser) Parse(content string) map[time.Time]string {
	links := make(map[time.Time]string)

	for _, token := range strings.Split(content, "-") {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}

		id, discoveredAt, err := parseToken(token)
		if err != nil {
			slog.Warn("Skipping malformed bookmark token", "token", token, "error", err)
			continue
		}

		links[discoveredAt] = fmt.Sprintf("%s/%d.json", p.itemEndpoint, id)
	}

	return links
}

func parseToken(token string) (int64, time.Time, error) {
	idPart, tsPart, ok := strings.Cut(token, "q")
	if !ok {
		return 0, time.Time{}, fmt.Errorf("missing 'q' separator")
	}

	id, err := strconv.ParseInt(idPart, 10, 64)
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("invalid item id: %w", err)
	}

	millis, err := strconv.ParseInt(tsPart, 10, 64)
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("invalid timestamp: %w", err)
	}

	return id, time.UnixMilli(millis).UTC(), nil
}
