package cfg

type Cfg struct {
	// Storage configuration
	DBPath string

	// Scraping configuration
	BookmarksFile  string
	ItemEndpoint   string
	SearchEndpoint string
	FetchTimeout   int
	MaxConnections int
	TagsFile       string

	// Application configuration
	Port              string
	WorkerCount       int
	SchedulerInterval int
	APIAccessKey      string

	// Application metadata
	UserAgent string
	Debug     bool
	Version   string
}
