package database

import (
	"context"
	"testing"

	"shareloop/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestItemCRUD(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	owner := seedUser(t, db, "owner", "owner@example.com")

	item := &models.Item{OwnerID: owner.ID, Name: "drill", Description: "cordless", Available: true}
	require.NoError(t, db.CreateItem(ctx, item))
	assert.NotZero(t, item.ID)

	got, err := db.GetItem(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, "drill", got.Name)
	assert.True(t, got.Available)
	assert.Zero(t, got.RequestID)

	_, err = db.GetItem(ctx, 9999)
	assert.ErrorIs(t, err, ErrNotFound)

	got.Name = "hammer drill"
	got.Available = false
	require.NoError(t, db.UpdateItem(ctx, got))

	got, err = db.GetItem(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, "hammer drill", got.Name)
	assert.False(t, got.Available)

	require.NoError(t, db.DeleteItem(ctx, item.ID))
	assert.ErrorIs(t, db.DeleteItem(ctx, item.ID), ErrNotFound)
}

func TestItemRequestLink(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	owner := seedUser(t, db, "owner", "owner@example.com")
	creator := seedUser(t, db, "creator", "creator@example.com")

	request := &models.ItemRequest{CreatorID: creator.ID, Description: "need a ladder"}
	require.NoError(t, db.CreateRequest(ctx, request))

	linked := &models.Item{OwnerID: owner.ID, Name: "ladder", Available: true, RequestID: request.ID}
	require.NoError(t, db.CreateItem(ctx, linked))
	free := seedItem(t, db, owner.ID, "saw")

	got, err := db.GetItem(ctx, linked.ID)
	require.NoError(t, err)
	assert.Equal(t, request.ID, got.RequestID)

	byRequest, err := db.ListItemsByRequest(ctx, request.ID)
	require.NoError(t, err)
	require.Len(t, byRequest, 1)
	assert.Equal(t, linked.ID, byRequest[0].ID)

	byOwner, err := db.ListItemsByOwner(ctx, owner.ID)
	require.NoError(t, err)
	assert.Len(t, byOwner, 2)
	_ = free
}

func TestSearchItems(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	owner := seedUser(t, db, "owner", "owner@example.com")

	drill := &models.Item{OwnerID: owner.ID, Name: "Power Drill", Description: "800W", Available: true}
	require.NoError(t, db.CreateItem(ctx, drill))
	hidden := &models.Item{OwnerID: owner.ID, Name: "Drill Press", Description: "stationary", Available: false}
	require.NoError(t, db.CreateItem(ctx, hidden))
	byDesc := &models.Item{OwnerID: owner.ID, Name: "Toolbox", Description: "includes drill bits", Available: true}
	require.NoError(t, db.CreateItem(ctx, byDesc))

	t.Run("CaseInsensitiveNameAndDescription", func(t *testing.T) {
		got, err := db.SearchItems(ctx, "dRiLl")
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, drill.ID, got[0].ID)
		assert.Equal(t, byDesc.ID, got[1].ID)
	})

	t.Run("UnavailableExcluded", func(t *testing.T) {
		got, err := db.SearchItems(ctx, "press")
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("NoMatch", func(t *testing.T) {
		got, err := db.SearchItems(ctx, "excavator")
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}
