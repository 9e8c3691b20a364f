package storage

import (
	"context"
	"time"

	"linkedin-jobs-scraper/internal/scraper"
)

// Batch is everything one listing-page visit produced.
type Batch struct {
	SourceURL   string
	CollectedAt time.Time
	Records     []scraper.ListingRecord
}

// SaveResult counts what a sink did with a batch. Sinks that cannot tell new rows
// from updates report everything as Inserted.
type SaveResult struct {
	Inserted  int
	Updated   int
	Unchanged int
}

// Sink receives one batch per visit. An empty batch is never passed in.
type Sink interface {
	Save(ctx context.Context, batch Batch) (SaveResult, error)
	Close() error
}
