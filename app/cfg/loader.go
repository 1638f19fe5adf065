package cfg

import (
	"cmp"
	"fmt"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Storage configuration
	DBPath string `long:"db-path" env:"DB_PATH" default:"./hackernews.db" description:"Path to the SQLite cache database"`

	// Scraping configuration
	BookmarksFile  string `long:"bookmarks-file" env:"BOOKMARKS_FILE" default:"./bookmarks.txt" description:"Path to the bookmark list file"`
	ItemEndpoint   string `long:"item-endpoint" env:"ITEM_ENDPOINT" default:"https://hacker-news.firebaseio.com/v0/item" description:"Base URL of the per-item JSON API"`
	SearchEndpoint string `long:"search-endpoint" env:"SEARCH_ENDPOINT" default:"https://www.bing.com/images/search" description:"Image search results page URL"`
	FetchTimeout   int    `long:"fetch-timeout" env:"FETCH_TIMEOUT" default:"10" description:"Per-request timeout in seconds for outbound fetches"`
	MaxConnections int    `long:"max-connections" env:"MAX_CONNECTIONS" default:"20" description:"Maximum number of simultaneous outbound connections"`
	TagsFile       string `long:"tags-file" env:"TAGS_FILE" default:"./tags.yml" description:"Path to the tag vocabulary file (optional)"`

	// Application configuration
	Port              string `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	WorkerCount       int    `long:"worker-count" env:"WORKER_COUNT" default:"5" description:"Number of background workers for task processing"`
	SchedulerInterval int    `long:"scheduler-interval" env:"SCHEDULER_INTERVAL" default:"300" description:"Scheduler interval in seconds"`
	APIAccessKey      string `long:"api-key" env:"API_ACCESS_KEY" description:"API access key for authentication (optional)"`

	// Application metadata
	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"HN Browser/1.0" description:"User agent string for HTTP requests"`
	Debug     bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

var globalCfg *Cfg

func Load() (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg := &Cfg{
		DBPath:            raw.DBPath,
		BookmarksFile:     raw.BookmarksFile,
		ItemEndpoint:      raw.ItemEndpoint,
		SearchEndpoint:    raw.SearchEndpoint,
		FetchTimeout:      raw.FetchTimeout,
		MaxConnections:    raw.MaxConnections,
		TagsFile:          raw.TagsFile,
		Port:              raw.Port,
		WorkerCount:       raw.WorkerCount,
		SchedulerInterval: raw.SchedulerInterval,
		APIAccessKey:      raw.APIAccessKey,
		UserAgent:         raw.UserAgent,
		Debug:             raw.Debug,
		Version:           GetVersion(),
	}

	globalCfg = cfg

	return cfg, nil
}

func Get() *Cfg {
	if globalCfg == nil {
		panic("configuration not loaded - call cfg.Load() first")
	}
	return globalCfg
}
