// Package ephemeral provides a generic expiring key-value store used for
// session-scoped state: pending slide validations, the per-session
// auto-approve toggle. Entries past their TTL are treated as absent by every
// read, whether or not they have been physically swept.
package ephemeral

import (
	"context"
	"time"
)

// Store is an injectable TTL-indexed key-value store. Keys are flat strings;
// composite keys use a ':' separator so ScanPrefix can answer "anything
// pending for this session?" without a secondary index.
type Store interface {
	// Set stores value under key for ttl. A non-positive ttl is rejected.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Get returns the value and true when the key exists and has not
	// expired.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Take atomically gets and deletes the entry. It is how single-shot
	// consumers (the validation gate) guarantee a key is processed at most
	// once.
	Take(ctx context.Context, key string) ([]byte, bool, error)

	Delete(ctx context.Context, key string) error

	// ScanPrefix returns all live entries whose key starts with prefix.
	ScanPrefix(ctx context.Context, prefix string) (map[string][]byte, error)

	// DeletePrefix removes all entries whose key starts with prefix and
	// returns how many were removed.
	DeletePrefix(ctx context.Context, prefix string) (int, error)
}
