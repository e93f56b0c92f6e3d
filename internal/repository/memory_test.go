package repository

import (
	"context"
	"testing"
	"time"

	"shareloop/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryItemCache(t *testing.T) {
	ctx := context.Background()

	t.Run("SetAndGet", func(t *testing.T) {
		cache := NewMemoryItemCache(time.Hour)
		item := &models.Item{ID: 5, Name: "drill"}

		require.NoError(t, cache.Set(ctx, item))

		got, err := cache.Get(ctx, 5)
		require.NoError(t, err)
		assert.Equal(t, item, got)
	})

	t.Run("MissReturnsNilNil", func(t *testing.T) {
		cache := NewMemoryItemCache(time.Hour)

		got, err := cache.Get(ctx, 999)
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("Invalidate", func(t *testing.T) {
		cache := NewMemoryItemCache(time.Hour)
		require.NoError(t, cache.Set(ctx, &models.Item{ID: 6}))
		require.NoError(t, cache.Invalidate(ctx, 6))

		got, err := cache.Get(ctx, 6)
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("ExpiredEntryIsMiss", func(t *testing.T) {
		cache := NewMemoryItemCache(time.Millisecond)
		require.NoError(t, cache.Set(ctx, &models.Item{ID: 7}))

		time.Sleep(5 * time.Millisecond)

		got, err := cache.Get(ctx, 7)
		require.NoError(t, err)
		assert.Nil(t, got)
	})
}
