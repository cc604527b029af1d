// Package store implements the persistence gateway for event records.
package store

import (
	"context"
	"time"

	"github.com/eventoscl/crawler/internal/events"
)

// Gateway is the narrow contract the pipeline consumes: a dedup lookup at
// run start and an idempotent upsert keyed by (external_id, source).
type Gateway interface {
	// LookupKnownExternalIDs returns the external IDs already stored for
	// source whose start date is at or after notBefore. Past events are
	// deliberately absent so re-listed ones get re-scraped.
	LookupKnownExternalIDs(ctx context.Context, source string, notBefore time.Time) (map[string]struct{}, error)

	// Upsert stores the record, refreshing the updated/scraped timestamps
	// on every write. Re-upserting an unchanged record never duplicates.
	Upsert(ctx context.Context, record events.EventRecord) (events.EventRecord, error)

	// Close releases the underlying resources.
	Close()
}
