package domain

import "context"

// Database defines lifecycle operations for the underlying store.
// Each implementation owns its own schema or index setup, so the whole
// backend stays swappable.
type Database interface {
	Migrate(ctx context.Context) error
	Ping(ctx context.Context) error
	Close() error
}
