package scraper

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/eventoscl/crawler/internal/events"
	"github.com/eventoscl/crawler/internal/metrics"
)

// TaskFunc processes one crawl target and returns its canonical record.
type TaskFunc func(ctx context.Context, target events.CrawlTarget) (events.EventRecord, error)

// Queue drains crawl targets through a bounded pool of workers, retrying
// each task body and pacing every task with a humanized delay.
type Queue struct {
	concurrency  int
	retry        retryPolicy
	minTaskDelay time.Duration
	maxTaskDelay time.Duration
	logger       *zap.Logger
}

// NewQueue builds a queue with the given concurrency ceiling and number of
// extra attempts per task.
func NewQueue(concurrency, extraAttempts int, logger *zap.Logger) *Queue {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &Queue{
		concurrency:  concurrency,
		retry:        newRetryPolicy(extraAttempts),
		minTaskDelay: 2 * time.Second,
		maxTaskDelay: 4 * time.Second,
		logger:       logger,
	}
}

// Drain runs fn for every target and blocks until all tasks finish. It
// returns the successfully produced records and the count of tasks that
// exhausted their retries. A failed task never stops the queue. When ctx
// is cancelled no further targets are scheduled, but Drain still waits
// for in-flight tasks.
func (q *Queue) Drain(ctx context.Context, targets []events.CrawlTarget, fn TaskFunc) ([]events.EventRecord, int) {
	sem := make(chan struct{}, q.concurrency)
	var wg sync.WaitGroup

	var mu sync.Mutex
	var records []events.EventRecord
	errorCount := 0

drain:
	for _, target := range targets {
		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
			// Stop scheduling, but let in-flight tasks resolve so every
			// started task is counted before the results are read.
			break drain
		}

		wg.Add(1)
		go func(target events.CrawlTarget) {
			defer wg.Done()
			defer func() { <-sem }()

			record, err := q.runTask(ctx, target, fn)

			mu.Lock()
			if err != nil {
				errorCount++
				metrics.ObservePage("error")
				q.logger.Error("failed to scrape event",
					zap.String("url", target.URL), zap.Error(err))
			} else {
				records = append(records, record)
				metrics.ObservePage("scraped")
			}
			mu.Unlock()

			// Pace the aggregate request rate regardless of outcome.
			q.sleep(ctx, randDelay(q.minTaskDelay, q.maxTaskDelay))
		}(target)
	}

	wg.Wait()
	return records, errorCount
}

func (q *Queue) runTask(ctx context.Context, target events.CrawlTarget, fn TaskFunc) (events.EventRecord, error) {
	var record events.EventRecord
	var err error
	for attempt := 1; attempt <= q.retry.attempts(); attempt++ {
		record, err = fn(ctx, target)
		if err == nil {
			return record, nil
		}
		q.logger.Warn("task attempt failed",
			zap.String("url", target.URL),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
		if attempt < q.retry.attempts() {
			q.sleep(ctx, q.retry.backoff(attempt))
		}
		if ctx.Err() != nil {
			return events.EventRecord{}, ctx.Err()
		}
	}
	return events.EventRecord{}, err
}

func (q *Queue) sleep(ctx context.Context, d time.Duration) {
	select {
	case <-time.After(d):
	case <-ctx.Done():
	}
}

func randDelay(min, max time.Duration) time.Duration {
	return min + randomJitter(max-min)
}
