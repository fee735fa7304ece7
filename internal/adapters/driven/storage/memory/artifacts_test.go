package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/pulse-brief/internal/core/domain"
)

func TestArtifactStore(t *testing.T) {
	store := NewArtifactStore()
	ctx := context.Background()

	for _, id := range []string{"2025-10-23", "2025-10-30", "2025-11-06"} {
		path, err := store.Save(ctx, &domain.Brief{ArtifactID: id, Content: "brief " + id})
		require.NoError(t, err)
		assert.Equal(t, "memory://"+id, path)
	}

	content, path, err := store.Load(ctx, "2025-10-30")
	require.NoError(t, err)
	assert.Equal(t, "brief 2025-10-30", content)
	assert.Equal(t, "memory://2025-10-30", path)

	_, _, err = store.Load(ctx, "2020-01-01")
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	_, err = store.Save(ctx, &domain.Brief{})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))

	recent, err := store.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "2025-11-06", recent[0].ID)
	assert.Equal(t, "2025-10-30", recent[1].ID)

	// Re-saving moves an artifact to the front.
	_, err = store.Save(ctx, &domain.Brief{ArtifactID: "2025-10-23", Content: "again"})
	require.NoError(t, err)
	recent, err = store.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, recent, 3)
	assert.Equal(t, "2025-10-23", recent[0].ID)

	recent, err = store.Recent(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, recent)
}

func TestRecordStore(t *testing.T) {
	store := NewRecordStore()
	ctx := context.Background()

	rec, err := store.Get(ctx, "memory://x")
	require.NoError(t, err)
	assert.Nil(t, rec)

	require.NoError(t, store.Save(ctx, "memory://x", domain.DeliveryRecord{ThreadID: "t1"}))

	rec, err = store.Get(ctx, "memory://x")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, "t1", rec.ThreadID)
}
