package kv

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBadgerInMemory(t *testing.T) {
	b, err := NewBadger(BadgerConfig{InMemory: true}, nil)
	require.NoError(t, err)
	defer b.Close()

	conformance(t, b)
}

func TestBadgerPersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	cfg := BadgerConfig{Path: t.TempDir(), SyncWrites: true}

	b, err := NewBadger(cfg, nil)
	require.NoError(t, err)
	require.NoError(t, b.Set(ctx, "graph-editor-data", []byte(`{"nodes":[],"edges":[]}`)))
	require.NoError(t, b.Close())

	b2, err := NewBadger(cfg, nil)
	require.NoError(t, err)
	defer b2.Close()

	data, ok, err := b2.Get(ctx, "graph-editor-data")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `{"nodes":[],"edges":[]}`, string(data))
}

func TestBadgerRequiresPath(t *testing.T) {
	_, err := NewBadger(BadgerConfig{}, nil)
	assert.Error(t, err)
}
