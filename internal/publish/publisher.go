// Package publish emits ingest notifications for downstream post-processing.
package publish

import (
	"context"
	"sync"
	"time"
)

// Notification summarizes one upserted event for downstream consumers.
type Notification struct {
	RunID      string    `json:"run_id"`
	ExternalID string    `json:"external_id"`
	Source     string    `json:"source"`
	Title      string    `json:"title,omitempty"`
	SourceURL  string    `json:"source_url"`
	ScrapedAt  time.Time `json:"scraped_at"`
}

// Publisher delivers notifications to whatever is listening downstream.
type Publisher interface {
	Publish(ctx context.Context, n Notification) error
	Close() error
}

// NoOp drops every notification.
type NoOp struct{}

// Publish drops the notification.
func (NoOp) Publish(_ context.Context, _ Notification) error { return nil }

// Close does nothing.
func (NoOp) Close() error { return nil }

// Memory collects notifications in memory for tests.
type Memory struct {
	mu   sync.Mutex
	sent []Notification
}

// NewMemory creates an empty in-memory publisher.
func NewMemory() *Memory {
	return &Memory{}
}

// Publish records the notification.
func (m *Memory) Publish(_ context.Context, n Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, n)
	return nil
}

// Sent returns a copy of everything published so far.
func (m *Memory) Sent() []Notification {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Notification(nil), m.sent...)
}

// Close does nothing.
func (m *Memory) Close() error { return nil }
