package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/4ster-light/site/app/api"
	"github.com/4ster-light/site/app/cache"
	"github.com/4ster-light/site/app/cfg"
	"github.com/4ster-light/site/app/content"
	"github.com/4ster-light/site/app/database"
	"github.com/4ster-light/site/app/feed"
	"github.com/4ster-light/site/app/tasks"
)

func main() {
	appCfg, err := cfg.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if appCfg == nil {
		// Help was shown
		return
	}

	level := slog.LevelInfo
	if appCfg.Debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})))

	slog.Info("Starting site server", "version", appCfg.Version, "store", appCfg.Store)

	repo, err := openStore(appCfg)
	if err != nil {
		slog.Error("Failed to open cache store", "error", err)
		os.Exit(1)
	}
	defer repo.Close()

	entryCache := cache.New(repo,
		cache.WithFetchTimeout(appCfg.FetchTimeout),
		cache.WithConcurrency(appCfg.Concurrency))

	if appCfg.GitHubToken == "" {
		slog.Warn("GH_API not set, GitHub requests are unauthenticated and heavily rate limited")
	}
	gh := content.NewGitHub(appCfg.GitHubToken, appCfg.GitHubOwner, appCfg.BlogRepo,
		content.WithBaseURL(appCfg.GitHubAPIURL),
		content.WithUserAgent(appCfg.UserAgent))

	service := content.NewService(entryCache, gh, content.TTLs{
		Posts:        appCfg.PostsTTL,
		Repositories: appCfg.ReposTTL,
		Profile:      appCfg.ProfileTTL,
	})

	scheduler := tasks.NewScheduler(service, content.Names,
		time.Duration(appCfg.SchedulerInterval)*time.Second, appCfg.WorkerCount)
	scheduler.Start()
	slog.Info("Cache warming scheduler started", "workers", appCfg.WorkerCount, "interval_seconds", appCfg.SchedulerInterval)

	baseURL := appCfg.BaseUrl
	if baseURL == "" {
		baseURL = fmt.Sprintf("http://localhost:%s", appCfg.Port)
	}
	generator := feed.NewGenerator(baseURL, appCfg.SiteTitle, "", appCfg.Version)

	if appCfg.CacheSecret == "" {
		slog.Warn("CACHE_SECRET not set, cache clear endpoint will reject every request")
	}
	handler := api.NewHandler(service, entryCache, generator, appCfg.CacheSecret, appCfg.Version)

	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      api.NewServer(handler),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("Starting HTTP server", "port", appCfg.Port, "base_url", baseURL)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		slog.Info("Received signal", "signal", sig.String())
	case err := <-serverErrChan:
		slog.Error("Server error", "error", err)
	}

	slog.Info("Shutting down server gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	} else {
		slog.Info("HTTP server stopped")
	}

	scheduler.Stop()
	slog.Info("Cache warming scheduler stopped")

	slog.Info("Site server shutdown complete")
}

// openStore returns the configured entry repository, running migrations for
// the SQLite backend.
func openStore(appCfg *cfg.Cfg) (database.EntryRepository, error) {
	if appCfg.Store == cfg.StoreMemory {
		slog.Info("Using in-memory cache store")
		return database.NewMemoryEntryRepository(appCfg.MaxEntrySize), nil
	}

	db, err := database.NewConnection(appCfg.DBPath)
	if err != nil {
		return nil, err
	}

	version, dirty, err := database.RunMigrations(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	slog.Info("Database ready", "path", appCfg.DBPath, "migration_version", version, "dirty", dirty)

	return database.NewSQLiteEntryRepository(db, appCfg.MaxEntrySize), nil
}
