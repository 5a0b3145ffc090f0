package cfg

import (
	"cmp"
	"fmt"
	"os"
	"time"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

const (
	StoreSQLite = "sqlite"
	StoreMemory = "memory"
)

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Storage configuration
	Store        string `long:"store" env:"STORE" default:"sqlite" choice:"sqlite" choice:"memory" description:"Cache entry store backend"`
	DBPath       string `long:"db-path" env:"DB_PATH" default:"./data/cache.db" description:"SQLite database file for the cache store"`
	MaxEntrySize int    `long:"max-entry-size" env:"MAX_ENTRY_SIZE" default:"65536" description:"Largest cache entry payload in bytes (0 disables the limit)"`
	Concurrency  int    `long:"cache-concurrency" env:"CACHE_CONCURRENCY" default:"8" description:"Concurrent store calls per cached collection"`

	// Content sources
	GitHubToken  string        `long:"gh-token" env:"GH_API" description:"GitHub API token"`
	GitHubOwner  string        `long:"gh-owner" env:"GH_OWNER" default:"4ster-light" description:"GitHub account that owns the blog and projects"`
	GitHubAPIURL string        `long:"gh-api-url" env:"GH_API_URL" description:"GitHub API base URL override"`
	BlogRepo     string        `long:"blog-repo" env:"BLOG_REPO" default:"blog" description:"Repository holding blog posts"`
	PostsTTL     time.Duration `long:"posts-ttl" env:"POSTS_TTL" default:"24h" description:"Cache lifetime of posts"`
	ReposTTL     time.Duration `long:"repos-ttl" env:"REPOS_TTL" default:"2h" description:"Cache lifetime of repositories"`
	ProfileTTL   time.Duration `long:"profile-ttl" env:"PROFILE_TTL" default:"24h" description:"Cache lifetime of the profile"`
	FetchTimeout time.Duration `long:"fetch-timeout" env:"FETCH_TIMEOUT" default:"0s" description:"Upper bound on a single upstream refresh (0 disables)"`
	CacheSecret  string        `long:"cache-secret" env:"CACHE_SECRET" description:"Bearer secret for the cache clear endpoint"`

	// Application configuration
	Port              string `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	BaseUrl           string `long:"base-url" env:"BASE_URL" description:"Public base URL for the site (e.g., https://4ster.dev)"`
	SiteTitle         string `long:"site-title" env:"SITE_TITLE" default:"4ster.dev" description:"Site title used in the RSS feed"`
	WorkerCount       int    `long:"worker-count" env:"WORKER_COUNT" default:"2" description:"Number of background workers for cache warming"`
	SchedulerInterval int    `long:"scheduler-interval" env:"SCHEDULER_INTERVAL" default:"600" description:"Cache warming interval in seconds (0 warms only at startup)"`

	// Application metadata
	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"4ster-dev-blog" description:"User agent string for GitHub requests"`
	Timezone  string `long:"timezone" env:"TZ" default:"UTC" description:"Timezone for timestamps (e.g., UTC, America/New_York)"`
	Debug     bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

func Load() (*Cfg, error) {
	cfg, err := parse(os.Args[1:])
	if err != nil || cfg == nil {
		return cfg, err
	}

	if err := applyTimezone(cfg.Timezone); err != nil {
		fmt.Printf("Warning: Invalid timezone '%s', using system default: %v\n", cfg.Timezone, err)
	}

	return cfg, nil
}

func parse(args []string) (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.ParseArgs(args); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	if raw.MaxEntrySize < 0 {
		return nil, fmt.Errorf("max entry size must not be negative: %d", raw.MaxEntrySize)
	}
	if raw.Concurrency < 1 {
		return nil, fmt.Errorf("cache concurrency must be at least 1: %d", raw.Concurrency)
	}

	return &Cfg{
		Store:             raw.Store,
		DBPath:            raw.DBPath,
		MaxEntrySize:      raw.MaxEntrySize,
		Concurrency:       raw.Concurrency,
		GitHubToken:       raw.GitHubToken,
		GitHubOwner:       raw.GitHubOwner,
		GitHubAPIURL:      raw.GitHubAPIURL,
		BlogRepo:          raw.BlogRepo,
		PostsTTL:          raw.PostsTTL,
		ReposTTL:          raw.ReposTTL,
		ProfileTTL:        raw.ProfileTTL,
		FetchTimeout:      raw.FetchTimeout,
		CacheSecret:       raw.CacheSecret,
		Port:              raw.Port,
		BaseUrl:           raw.BaseUrl,
		SiteTitle:         raw.SiteTitle,
		WorkerCount:       raw.WorkerCount,
		SchedulerInterval: raw.SchedulerInterval,
		UserAgent:         raw.UserAgent,
		Timezone:          raw.Timezone,
		Debug:             raw.Debug,
		Version:           GetVersion(),
	}, nil
}

func applyTimezone(timezone string) error {
	if timezone != "" {
		if loc, err := time.LoadLocation(timezone); err != nil {
			return err
		} else {
			time.Local = loc
			fmt.Printf("Timezone configured: %s\n", timezone)
		}
	}
	return nil
}
