package cfg

import "time"

type Cfg struct {
	// Storage configuration
	Store        string
	DBPath       string
	MaxEntrySize int
	Concurrency  int

	// Content sources
	GitHubToken  string
	GitHubOwner  string
	GitHubAPIURL string
	BlogRepo     string
	PostsTTL     time.Duration
	ReposTTL     time.Duration
	ProfileTTL   time.Duration
	FetchTimeout time.Duration
	CacheSecret  string

	// Application configuration
	Port              string
	BaseUrl           string
	SiteTitle         string
	WorkerCount       int
	SchedulerInterval int

	// Application metadata
	UserAgent string
	Timezone  string
	Debug     bool
	Version   string
}
