// Package storage provides the key-value persistence port used by the cart
// store and session manager. Backends are interchangeable: an in-memory map
// for tests, a directory of files for desktop clients, and Redis for thin
// terminals that keep their state server-adjacent.
package storage

import "context"

// Storage is a durable key-value store scoped to a single client.
type Storage interface {
	// Get returns the value for key. The second return is false when the
	// key is absent.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set writes value under key, replacing any previous value.
	Set(ctx context.Context, key string, value []byte) error

	// Remove deletes key. Removing an absent key is not an error.
	Remove(ctx context.Context, key string) error
}
