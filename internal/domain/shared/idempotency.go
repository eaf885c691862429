package shared

import (
	"context"
	"time"
)

// IdempotencyStore remembers which event IDs have already been handled so
// that redelivered events are not processed twice.
type IdempotencyStore interface {
	// MarkProcessed records an event ID with the given TTL. It returns true
	// when the ID was newly recorded and false when it was already present.
	MarkProcessed(ctx context.Context, eventID string, ttl time.Duration) (bool, error)

	// IsProcessed reports whether the event ID has been recorded.
	IsProcessed(ctx context.Context, eventID string) (bool, error)

	Close() error
}

// IdempotencyConfig controls duplicate detection for event handlers.
type IdempotencyConfig struct {
	// TTL bounds how long a processed event ID is remembered. Once it
	// expires the same ID would be handled again.
	TTL time.Duration

	// Enabled turns duplicate detection off entirely when false.
	Enabled bool
}

// DefaultIdempotencyConfig remembers processed events for 24 hours.
func DefaultIdempotencyConfig() IdempotencyConfig {
	return IdempotencyConfig{
		TTL:     24 * time.Hour,
		Enabled: true,
	}
}
