package store

import (
	"context"
	"sync"
	"time"

	"github.com/eventoscl/crawler/internal/events"
)

type storedEvent struct {
	record    events.EventRecord
	updatedAt time.Time
	scrapedAt time.Time
}

// MemoryGateway is an in-memory Gateway for tests and dry runs.
type MemoryGateway struct {
	mu    sync.Mutex
	rows  map[string]storedEvent
	clock events.Clock
}

// NewMemoryGateway creates an empty in-memory gateway.
func NewMemoryGateway(clock events.Clock) *MemoryGateway {
	return &MemoryGateway{
		rows:  make(map[string]storedEvent),
		clock: clock,
	}
}

func key(externalID, source string) string {
	return source + "\x00" + externalID
}

// LookupKnownExternalIDs returns stored IDs for source with a start date at
// or after notBefore.
func (g *MemoryGateway) LookupKnownExternalIDs(_ context.Context, source string, notBefore time.Time) (map[string]struct{}, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	known := make(map[string]struct{})
	for _, row := range g.rows {
		if row.record.Source != source {
			continue
		}
		if row.record.StartDate == nil || row.record.StartDate.Before(notBefore) {
			continue
		}
		known[row.record.ExternalID] = struct{}{}
	}
	return known, nil
}

// Upsert stores the record, replacing any previous row for the same key.
func (g *MemoryGateway) Upsert(_ context.Context, record events.EventRecord) (events.EventRecord, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.clock.Now()
	g.rows[key(record.ExternalID, record.Source)] = storedEvent{
		record:    record,
		updatedAt: now,
		scrapedAt: now,
	}
	return record, nil
}

// Close is a no-op.
func (g *MemoryGateway) Close() {}

// Len reports the number of stored rows.
func (g *MemoryGateway) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.rows)
}

// Get returns the stored record for (externalID, source), if any.
func (g *MemoryGateway) Get(externalID, source string) (events.EventRecord, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	row, ok := g.rows[key(externalID, source)]
	return row.record, ok
}
