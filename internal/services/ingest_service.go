package services

import (
	"context"
	"fmt"
	"log/slog"
)

// FeedLoader pulls the remote feed into the store.
type FeedLoader interface {
	Load(ctx context.Context, url string) (int, error)
}

// EventPublisher announces completed ingests to interested consumers.
type EventPublisher interface {
	PublishIngestCompleted(ctx context.Context, sourceURL string, inserted int) error
}

// IngestService orchestrates a feed reload: load into SQLite first, then
// publish an event if a broker is configured. Rows are committed before
// the publish, so a publish failure is logged and swallowed rather than
// failing the request.
type IngestService struct {
	loader    FeedLoader
	publisher EventPublisher
	sourceURL string
}

// NewIngestService wires the loader to the configured feed URL. publisher
// may be nil when no broker is configured.
func NewIngestService(loader FeedLoader, publisher EventPublisher, sourceURL string) *IngestService {
	return &IngestService{
		loader:    loader,
		publisher: publisher,
		sourceURL: sourceURL,
	}
}

// Reload fetches the feed and appends it to the store, returning the
// number of rows inserted. Repeated calls accumulate duplicates.
func (s *IngestService) Reload(ctx context.Context) (int, error) {
	inserted, err := s.loader.Load(ctx, s.sourceURL)
	if err != nil {
		return inserted, fmt.Errorf("load feed: %w", err)
	}

	if s.publisher != nil {
		if err := s.publisher.PublishIngestCompleted(ctx, s.sourceURL, inserted); err != nil {
			slog.ErrorContext(ctx, "Failed to publish ingest event",
				"error", err, "inserted", inserted)
		}
	}

	return inserted, nil
}
