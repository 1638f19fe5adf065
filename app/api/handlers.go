package api

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/valosek/hn-browser/app/bookmarks"
	"github.com/valosek/hn-browser/app/cfg"
	"github.com/valosek/hn-browser/app/database"
	"github.com/valosek/hn-browser/app/scrape"
	"github.com/valosek/hn-browser/app/tasks"
)

func NewHandler(itemRepo database.ItemRepository, errorRepo database.ErrorRepository,
	scheduler tasks.TaskSchedulerInterface, bookmarkParser *bookmarks.Parser,
	orchestrator *scrape.Orchestrator, search *scrape.Search, validator *scrape.Validator) *Handler {
	return &Handler{
		itemRepo:       itemRepo,
		errorRepo:      errorRepo,
		scheduler:      scheduler,
		bookmarksFile:  cfg.Get().BookmarksFile,
		bookmarkParser: bookmarkParser,
		orchestrator:   orchestrator,
		search:         search,
		validator:      validator,
	}
}

func (h *Handler) HealthCheck(c *gin.Context) {
	count, err := h.itemRepo.GetItemCount()
	if err != nil {
		slog.Error("Database error", "operation", "health_check", "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"version": cfg.Get().Version,
		"items":   count,
	})
}

func (h *Handler) GetStats(c *gin.Context) {
	itemCount, err := h.itemRepo.GetItemCount()
	if err != nil {
		slog.Error("Database error", "operation", "get_stats", "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	missing, err := h.itemRepo.GetItemsMissingImage()
	if err != nil {
		slog.Error("Database error", "operation", "get_stats", "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	errorCount, err := h.errorRepo.GetErrorCount()
	if err != nil {
		slog.Error("Database error", "operation", "get_stats", "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"items":          itemCount,
		"missing_images": len(missing),
		"errors":         errorCount,
	})
}

func (h *Handler) GetItems(c *gin.Context) {
	limit := parseLimit(c.Query("limit"), 50)

	items, err := h.itemRepo.GetItems(limit)
	if err != nil {
		slog.Error("Database error", "operation", "get_items", "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	responses := make([]itemResponse, 0, len(items))
	for _, item := range items {
		responses = append(responses, toItemResponse(item))
	}

	c.JSON(http.StatusOK, gin.H{"items": responses})
}

func (h *Handler) GetErrors(c *gin.Context) {
	limit := parseLimit(c.Query("limit"), 50)

	records, err := h.errorRepo.GetErrors(limit)
	if err != nil {
		slog.Error("Database error", "operation", "get_errors", "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	responses := make([]errorResponse, 0, len(records))
	for _, record := range records {
		responses = append(responses, toErrorResponse(record))
	}

	c.JSON(http.StatusOK, gin.H{"errors": responses})
}

func (h *Handler) TriggerScrape(c *gin.Context) {
	task := tasks.NewScrapeBatchTask(h.bookmarksFile, h.bookmarkParser, h.orchestrator)
	h.enqueue(c, task)
}

func (h *Handler) TriggerBackfill(c *gin.Context) {
	task := tasks.NewBackfillImagesTask(h.itemRepo, h.errorRepo, h.search, h.validator)
	h.enqueue(c, task)
}

func (h *Handler) TriggerRevalidate(c *gin.Context) {
	task := tasks.NewRevalidateImagesTask(h.itemRepo, h.validator)
	h.enqueue(c, task)
}

func (h *Handler) ResetCache(c *gin.Context) {
	if err := h.itemRepo.ResetCache(); err != nil {
		slog.Error("Database error", "operation", "reset_cache", "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	slog.Info("Cache reset on operator request")
	c.JSON(http.StatusOK, gin.H{"status": "reset"})
}

func (h *Handler) enqueue(c *gin.Context, task tasks.TaskInterface) {
	if err := h.scheduler.EnqueueTask(task); err != nil {
		slog.Warn("Failed to enqueue task", "type", string(task.GetType()), "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "task queue is full"})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"status":  "accepted",
		"task_id": task.GetID(),
		"type":    string(task.GetType()),
	})
}

func parseLimit(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		return fallback
	}
	return limit
}
