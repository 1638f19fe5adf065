package api

import (
	"time"

	"github.com/valosek/hn-browser/app/bookmarks"
	"github.com/valosek/hn-browser/app/database"
	"github.com/valosek/hn-browser/app/scrape"
	"github.com/valosek/hn-browser/app/tasks"
)

type Handler struct {
	itemRepo       database.ItemRepository
	errorRepo      database.ErrorRepository
	scheduler      tasks.TaskSchedulerInterface
	bookmarksFile  string
	bookmarkParser *bookmarks.Parser
	orchestrator   *scrape.Orchestrator
	search         *scrape.Search
	validator      *scrape.Validator
}

type itemResponse struct {
	ID          int64     `json:"id"`
	DateAdded   time.Time `json:"date_added"`
	Author      string    `json:"author"`
	Descendants int       `json:"descendants"`
	Score       int       `json:"score"`
	Time        time.Time `json:"time"`
	Title       string    `json:"title"`
	Type        string    `json:"type"`
	URL         *string   `json:"url"`
	Text        *string   `json:"text"`
	Img         *string   `json:"img"`
}

type errorResponse struct {
	URL         string    `json:"url"`
	Kind        string    `json:"kind"`
	Time        time.Time `json:"time"`
	Description string    `json:"description"`
}

func toItemResponse(item database.Item) itemResponse {
	return itemResponse{
		ID:          item.ID,
		DateAdded:   item.DateAdded,
		Author:      item.Author,
		Descendants: item.Descendants,
		Score:       item.Score,
		Time:        item.Time,
		Title:       item.Title,
		Type:        item.Type,
		URL:         item.URL,
		Text:        item.Text,
		Img:         item.Img,
	}
}

func toErrorResponse(record database.ErrorRecord) errorResponse {
	return errorResponse{
		URL:         record.URL,
		Kind:        string(record.Kind),
		Time:        record.Time,
		Description: record.Description,
	}
}
