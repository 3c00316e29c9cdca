// Package kv provides the key-value storage capability used for graph
// auto-persistence.
//
// A [Store] maps string keys to opaque byte blobs. Backends:
//
//   - [Memory]: process-local map, the default for tests and the TUI
//   - [FileStore]: one file per key under a directory
//   - [Null]: stores nothing
//   - [Redis]: a Redis server via go-redis
//   - [Mongo]: a MongoDB collection
//   - [Badger]: an embedded BadgerDB database
//
// [Open] builds a backend from a [Config]. [WithPrefix] namespaces the keys
// of any backend.
package kv

import (
	"context"
)

// Store is a minimal get/set/delete key-value capability.
type Store interface {
	// Get returns the value stored under key. ok is false when the key is
	// absent; err reports backend failures only.
	Get(ctx context.Context, key string) (data []byte, ok bool, err error)

	// Set stores data under key, replacing any previous value.
	Set(ctx context.Context, key string, data []byte) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}
