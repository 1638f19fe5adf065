package database

import (
	"time"
)

// Item represents a bookmarked Hacker News post in the cache database.
// Optional fields start unset and are only filled in, never cleared,
// except for Img which the re-validation sweep may evict.
type Item struct {
	ID          int64
	DateAdded   time.Time
	Author      string
	Descendants int
	Score       int
	Time        time.Time
	Title       string
	Type        string
	URL         *string
	Text        *string
	Img         *string
	HTML        *string
	CreatedAt   time.Time
}

// ChildRef records one reply/descendant relation of an item.
type ChildRef struct {
	ItemID  int64
	ChildID int64
}

// Tag is an operator-defined label attached to items.
type Tag struct {
	ID          int64
	Description string
}

// FailureKind classifies a failed scraping operation.
type FailureKind string

const (
	FailureSourceUnreachable FailureKind = "SourceUnreachable"
	FailureImageFetch        FailureKind = "ImageFetchFailed"
	FailureImageSearch       FailureKind = "ImageSearchFailed"
	FailureEmptyResponse     FailureKind = "EmptyResponse"
)

// ErrorRecord is one append-only failure observation. Records are never
// mutated or deduplicated; identity is (URL, Kind, Time).
type ErrorRecord struct {
	URL         string
	Kind        FailureKind
	Time        time.Time
	Description string
}
