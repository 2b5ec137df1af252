package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/bodega-api/internal/infrastructure/cache"
)

func TestMemoryIdempotencyStore_ReservaUnaSolaVez(t *testing.T) {
	s := cache.NewMemoryIdempotencyStore()
	ctx := context.Background()

	ok, err := s.Reserve(ctx, "ledger:products:u1:k1", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.Reserve(ctx, "ledger:products:u1:k1", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = s.Reserve(ctx, "ledger:supplies:u1:k1", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok, "cada ledger tiene su propio espacio de claves")
}

func TestMemoryIdempotencyStore_ReleasePermiteReintentar(t *testing.T) {
	s := cache.NewMemoryIdempotencyStore()
	ctx := context.Background()

	_, err := s.Reserve(ctx, "k", time.Minute)
	require.NoError(t, err)
	require.NoError(t, s.Release(ctx, "k"))
	assert.Zero(t, s.Len())

	ok, err := s.Reserve(ctx, "k", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMemoryIdempotencyStore_ClavesVencidas(t *testing.T) {
	now := time.Date(2024, 3, 5, 12, 0, 0, 0, time.UTC)
	s := cache.NewMemoryIdempotencyStore().WithClock(func() time.Time { return now })
	ctx := context.Background()

	_, err := s.Reserve(ctx, "k", time.Hour)
	require.NoError(t, err)

	now = now.Add(59 * time.Minute)
	ok, err := s.Reserve(ctx, "k", time.Hour)
	require.NoError(t, err)
	assert.False(t, ok)

	now = now.Add(time.Minute)
	ok, err = s.Reserve(ctx, "k", time.Hour)
	require.NoError(t, err)
	assert.True(t, ok, "al vencer el TTL la clave se libera")
	assert.Equal(t, 1, s.Len())
}
