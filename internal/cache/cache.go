// Package cache provides report caching keyed by dataset generation.
// A report is deterministic for one generation, so a hit is always
// current and a replace naturally invalidates by changing the key.
package cache

import "context"

// ReportCache stores rendered reports as JSON blobs. Get returns the
// blob and whether it was present.
type ReportCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Close() error
}
