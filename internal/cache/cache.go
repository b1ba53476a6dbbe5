// Package cache provides the response cache consulted by the HTTP API so
// repeated slider-driven calculation requests stay cheap. The calculation
// engine itself performs no memoization.
package cache

import "context"

// Cache stores serialized calculation responses keyed by canonical input.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key, value string) error
}
