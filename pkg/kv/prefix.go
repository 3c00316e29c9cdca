package kv

import (
	"context"
)

// Prefixed prepends a namespace to every key of an inner store. Several
// workspaces can then share one Redis or Mongo backend.
type Prefixed struct {
	inner  Store
	prefix string
}

// WithPrefix wraps inner so that all keys start with prefix. An empty
// prefix returns inner unchanged.
func WithPrefix(inner Store, prefix string) Store {
	if prefix == "" {
		return inner
	}
	return &Prefixed{inner: inner, prefix: prefix}
}

// Get reads prefix+key from the inner store.
func (p *Prefixed) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return p.inner.Get(ctx, p.prefix+key)
}

// Set writes prefix+key to the inner store.
func (p *Prefixed) Set(ctx context.Context, key string, data []byte) error {
	return p.inner.Set(ctx, p.prefix+key, data)
}

// Delete removes prefix+key from the inner store.
func (p *Prefixed) Delete(ctx context.Context, key string) error {
	return p.inner.Delete(ctx, p.prefix+key)
}

// Close closes the inner store.
func (p *Prefixed) Close() error {
	return p.inner.Close()
}
