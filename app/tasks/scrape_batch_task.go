package tasks

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/valosek/hn-browser/app/bookmarks"
	"github.com/valosek/hn-browser/app/scrape"
)

type ScrapeBatchTask struct {
	Task
	bookmarksFile  string
	bookmarkParser *bookmarks.Parser
	orchestrator   *scrape.Orchestrator
}

func NewScrapeBatchTask(bookmarksFile string, bookmarkParser *bookmarks.Parser, orchestrator *scrape.Orchestrator) *ScrapeBatchTask {
	return &ScrapeBatchTask{
		Task:           NewTask(TaskTypeScrapeBatch),
		bookmarksFile:  bookmarksFile,
		bookmarkParser: bookmarkParser,
		orchestrator:   orchestrator,
	}
}

func (t *ScrapeBatchTask) Execute(ctx context.Context) error {

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	links, err := t.bookmarkParser.ParseFile(t.bookmarksFile)
	if err != nil {
		return fmt.Errorf("failed to load bookmarks: %w", err)
	}

	if len(links) == 0 {
		slog.Debug("No bookmarks to scrape", "file", t.bookmarksFile)
		return nil
	}

	result, err := t.orchestrator.Run(ctx, links)
	if err != nil {
		return fmt.Errorf("failed to run scrape batch: %w", err)
	}

	slog.Info("Task completed",
		"type", t.GetType(),
		"duration", t.GetDuration(),
		"bookmarks", len(links),
		"new_items", len(result.NewItems),
		"new_children", len(result.NewChildren),
		"errors", len(result.Errors))

	return nil
}
