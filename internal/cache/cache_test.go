package cache

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryGetSet(t *testing.T) {
	clock := clockwork.NewFakeClock()
	m := NewMemory(clock)
	ctx := context.Background()

	_, ok := m.Get(ctx, "missing")
	assert.False(t, ok)

	m.Set(ctx, "k", []byte("v"), time.Hour)
	got, ok := m.Get(ctx, "k")
	require.True(t, ok)
	assert.Equal(t, []byte("v"), got)
}

func TestMemoryTTLExpiry(t *testing.T) {
	clock := clockwork.NewFakeClock()
	m := NewMemory(clock)
	ctx := context.Background()

	m.Set(ctx, "k", []byte("v"), time.Hour)

	clock.Advance(59 * time.Minute)
	_, ok := m.Get(ctx, "k")
	assert.True(t, ok, "entry should survive inside the TTL")

	clock.Advance(2 * time.Minute)
	_, ok = m.Get(ctx, "k")
	assert.False(t, ok, "entry should expire past the TTL")
}

func TestMemoryOverwriteResetsTTL(t *testing.T) {
	clock := clockwork.NewFakeClock()
	m := NewMemory(clock)
	ctx := context.Background()

	m.Set(ctx, "k", []byte("old"), time.Hour)
	clock.Advance(50 * time.Minute)
	m.Set(ctx, "k", []byte("new"), time.Hour)
	clock.Advance(50 * time.Minute)

	got, ok := m.Get(ctx, "k")
	require.True(t, ok)
	assert.Equal(t, []byte("new"), got)
}

func TestMemorySweep(t *testing.T) {
	clock := clockwork.NewFakeClock()
	m := NewMemory(clock)
	ctx := context.Background()

	m.Set(ctx, "fresh", []byte("a"), 2*time.Hour)
	m.Set(ctx, "stale", []byte("b"), time.Minute)
	require.Equal(t, 2, m.Len())

	clock.Advance(time.Hour)
	m.Sweep()

	assert.Equal(t, 1, m.Len())
	_, ok := m.Get(ctx, "fresh")
	assert.True(t, ok)
}
