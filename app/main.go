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

	"github.com/valosek/hn-browser/app/api"
	"github.com/valosek/hn-browser/app/bookmarks"
	"github.com/valosek/hn-browser/app/cfg"
	"github.com/valosek/hn-browser/app/config"
	"github.com/valosek/hn-browser/app/database"
	"github.com/valosek/hn-browser/app/httpc"
	"github.com/valosek/hn-browser/app/scrape"
	"github.com/valosek/hn-browser/app/tasks"
)

func main() {
	appCfg, err := cfg.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if appCfg == nil {
		// Help was shown, exit gracefully
		return
	}

	logLevel := slog.LevelInfo
	if appCfg.Debug {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})))

	slog.Info("Starting HN Browser server", "version", appCfg.Version)

	db, err := database.NewConnection(appCfg.DBPath)
	if err != nil {
		slog.Error("Failed to open database", "path", appCfg.DBPath, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	version, dirty, err := database.RunMigrations(db)
	if err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("Database ready", "path", appCfg.DBPath, "schema_version", version, "dirty", dirty)

	itemRepo := database.NewItemRepository(db)
	tagRepo := database.NewTagRepository(db)
	errorRepo := database.NewErrorRepository(db)

	seedTags(appCfg.TagsFile, tagRepo)

	client := httpc.NewClient(appCfg.MaxConnections,
		time.Duration(appCfg.FetchTimeout)*time.Second, appCfg.UserAgent)

	fetcher := scrape.NewFetcher(client)
	resolver := scrape.NewResolver(client)
	search := scrape.NewSearch(client, appCfg.SearchEndpoint)
	validator := scrape.NewValidator(client)
	orchestrator := scrape.NewOrchestrator(fetcher, resolver, itemRepo, errorRepo)

	bookmarkParser := bookmarks.NewParser(appCfg.ItemEndpoint)

	slog.Info("Starting background scheduler", "workers", appCfg.WorkerCount, "interval", appCfg.SchedulerInterval)
	scheduler := tasks.NewScheduler(itemRepo, errorRepo, bookmarkParser, orchestrator, validator)
	scheduler.Start()
	defer scheduler.Stop()

	handler := api.NewHandler(itemRepo, errorRepo, scheduler, bookmarkParser, orchestrator, search, validator)
	server := api.NewServer(handler, appCfg.APIAccessKey)

	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("Starting HTTP server", "port", appCfg.Port)
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

	slog.Info("Shutting down gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	} else {
		slog.Info("HTTP server stopped")
	}
}

// seedTags upserts the operator-defined tag vocabulary at startup.
// A missing or empty tags file is fine.
func seedTags(tagsFile string, tagRepo database.TagRepository) {
	descriptions, err := config.NewLoader(tagsFile).Load()
	if err != nil {
		slog.Warn("Failed to load tag vocabulary", "file", tagsFile, "error", err)
		return
	}

	for _, description := range descriptions {
		if _, err := tagRepo.UpsertTag(description); err != nil {
			slog.Warn("Failed to seed tag", "tag", description, "error", err)
		}
	}

	if len(descriptions) > 0 {
		slog.Info("Tag vocabulary seeded", "count", len(descriptions))
	}
}
