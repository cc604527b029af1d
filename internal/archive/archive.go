// Package archive persists rendered page HTML for audit.
package archive

import "context"

// Provider writes one rendered page to durable storage and returns a URI
// for the stored object.
type Provider interface {
	Put(ctx context.Context, path string, data []byte) (string, error)
	Close() error
}

// NoOp discards every page.
type NoOp struct{}

// Put discards the data and returns an empty URI.
func (NoOp) Put(_ context.Context, _ string, _ []byte) (string, error) {
	return "", nil
}

// Close does nothing.
func (NoOp) Close() error { return nil }
