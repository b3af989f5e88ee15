package cache

import (
	"context"
	"time"
)

// Cache is the contract for the read-through cache layer.
type Cache interface {
	// Get looks up key and unmarshals the stored value into dest.
	// Returns found=false on a miss; dest is untouched in that case.
	Get(ctx context.Context, key string, dest interface{}) (bool, error)

	// Set stores value under key with a TTL.
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error

	// Delete removes the given keys.
	Delete(ctx context.Context, keys ...string) error

	// DeletePattern removes all keys matching a glob pattern.
	DeletePattern(ctx context.Context, pattern string) error

	// Ping checks the connection.
	Ping(ctx context.Context) error
}
