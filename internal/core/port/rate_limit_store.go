package port

import (
	"context"
	"time"
)

// RateLimitWindow is the state of a sliding window after one attempt was offered to it.
type RateLimitWindow struct {
	Admitted bool
	// Count includes the offered attempt when it was admitted.
	Count int
	// Oldest is the earliest attempt still inside the window, zero when the window is empty.
	Oldest time.Time
}

// RateLimitStore atomically trims, counts and records attempts for one key.
type RateLimitStore interface {
	Admit(ctx context.Context, key string, limit int, window time.Duration, now time.Time) (RateLimitWindow, error)
}
