package scraper

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/eventoscl/crawler/internal/events"
	"github.com/eventoscl/crawler/internal/metrics"
)

func newTestQueue(concurrency, extraAttempts int) *Queue {
	metrics.Init()
	q := NewQueue(concurrency, extraAttempts, zap.NewNop())
	q.minTaskDelay = time.Millisecond
	q.maxTaskDelay = 2 * time.Millisecond
	q.retry.baseDelay = time.Millisecond
	q.retry.maxDelay = 2 * time.Millisecond
	return q
}

func targetsFor(n int) []events.CrawlTarget {
	targets := make([]events.CrawlTarget, 0, n)
	for i := 0; i < n; i++ {
		targets = append(targets, events.CrawlTarget{
			URL:        fmt.Sprintf("https://www.puntoticket.com/evento/ev-%d", i),
			ExternalID: fmt.Sprintf("ev-%d", i),
			Source:     "puntoticket",
		})
	}
	return targets
}

func TestQueueDrainCollectsAllRecords(t *testing.T) {
	q := newTestQueue(3, 0)

	records, errorCount := q.Drain(context.Background(), targetsFor(7),
		func(_ context.Context, target events.CrawlTarget) (events.EventRecord, error) {
			return events.EventRecord{ExternalID: target.ExternalID, Source: target.Source}, nil
		})

	assert.Equal(t, 0, errorCount)
	require.Len(t, records, 7)
	seen := make(map[string]struct{}, len(records))
	for _, rec := range records {
		seen[rec.ExternalID] = struct{}{}
	}
	assert.Len(t, seen, 7)
}

func TestQueueDrainCountsExhaustedTasks(t *testing.T) {
	q := newTestQueue(2, 1)

	var mu sync.Mutex
	attempts := make(map[string]int)

	records, errorCount := q.Drain(context.Background(), targetsFor(4),
		func(_ context.Context, target events.CrawlTarget) (events.EventRecord, error) {
			mu.Lock()
			attempts[target.ExternalID]++
			mu.Unlock()
			if target.ExternalID == "ev-2" {
				return events.EventRecord{}, fmt.Errorf("challenge never cleared")
			}
			return events.EventRecord{ExternalID: target.ExternalID}, nil
		})

	assert.Equal(t, 1, errorCount)
	assert.Len(t, records, 3)
	// The failing task burns every attempt; a failure never stops the rest.
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 2, attempts["ev-2"])
	assert.Equal(t, 1, attempts["ev-0"])
}

func TestQueueRetriesUntilSuccess(t *testing.T) {
	q := newTestQueue(1, 2)

	var mu sync.Mutex
	calls := 0

	records, errorCount := q.Drain(context.Background(), targetsFor(1),
		func(_ context.Context, target events.CrawlTarget) (events.EventRecord, error) {
			mu.Lock()
			defer mu.Unlock()
			calls++
			if calls < 3 {
				return events.EventRecord{}, fmt.Errorf("transient navigation failure")
			}
			return events.EventRecord{ExternalID: target.ExternalID}, nil
		})

	assert.Equal(t, 0, errorCount)
	require.Len(t, records, 1)
	assert.Equal(t, "ev-0", records[0].ExternalID)
	assert.Equal(t, 3, calls)
}

func TestQueueDrainWaitsForInFlightTasksOnCancel(t *testing.T) {
	q := newTestQueue(1, 0)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	calls := 0

	records, errorCount := q.Drain(ctx, targetsFor(3),
		func(_ context.Context, target events.CrawlTarget) (events.EventRecord, error) {
			mu.Lock()
			calls++
			mu.Unlock()
			cancel()
			time.Sleep(50 * time.Millisecond)
			return events.EventRecord{ExternalID: target.ExternalID}, nil
		})

	// The in-flight task resolves and is counted; nothing after the
	// cancellation gets scheduled.
	assert.Equal(t, 0, errorCount)
	require.Len(t, records, 1)
	assert.Equal(t, "ev-0", records[0].ExternalID)
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, calls)
}

func TestRetryPolicy(t *testing.T) {
	t.Parallel()

	p := newRetryPolicy(2)
	assert.Equal(t, 3, p.attempts())

	// Negative values clamp to a single attempt.
	assert.Equal(t, 1, newRetryPolicy(-1).attempts())

	for attempt := 1; attempt <= 10; attempt++ {
		d := p.backoff(attempt)
		assert.GreaterOrEqual(t, d, 1*time.Second)
		assert.Less(t, d, p.maxDelay)
	}
}
