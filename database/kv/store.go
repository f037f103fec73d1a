package kv

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound is returned by Get when the key is missing or expired.
	ErrNotFound = errors.New("kv: key not found")
	// ErrConflict is returned by Update when the key kept changing underneath.
	ErrConflict = errors.New("kv: concurrent update conflict")
)

// Store is the small key/value surface the negotiation state lives on.
// A ttl of zero means no expiry.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// SetNX writes only when key is absent and reports whether it did.
	SetNX(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error)
	Exists(ctx context.Context, key string) (bool, error)
	Del(ctx context.Context, keys ...string) error
	// Update runs fn on the current value (nil when absent) and stores the
	// result atomically with respect to other writers of key. An error from
	// fn aborts the update and is returned as is.
	Update(ctx context.Context, key string, ttl time.Duration, fn func(current []byte) ([]byte, error)) error
	Ping(ctx context.Context) error
}
