package kv

import (
	"context"
)

// Null is a store that never keeps anything. It disables auto-persistence
// without special cases in the caller.
type Null struct{}

// NewNull creates a null store.
func NewNull() Store {
	return &Null{}
}

// Get always reports a missing key.
func (*Null) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return nil, false, nil
}

// Set does nothing.
func (*Null) Set(ctx context.Context, key string, data []byte) error {
	return nil
}

// Delete does nothing.
func (*Null) Delete(ctx context.Context, key string) error {
	return nil
}

// Close does nothing.
func (*Null) Close() error {
	return nil
}

var _ Store = (*Null)(nil)
