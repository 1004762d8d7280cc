package metadata

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carlog/internal/models"
	"carlog/internal/repositories/filekv"
)

func setupRepo(t *testing.T) *FileRepository {
	t.Helper()
	kv, err := filekv.Open(filepath.Join(t.TempDir(), "store.json"))
	require.NoError(t, err)
	return NewFileRepository(kv)
}

func TestMetadataDefaultsWhenEmpty(t *testing.T) {
	repo := setupRepo(t)

	meta, err := repo.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.SyncMeta{}, meta)
}

func TestMetadataRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := setupRepo(t)

	in := models.SyncMeta{
		LastSyncUpdatedAt: "2026-03-01T12:00:00Z",
		Rev:               7,
		Dirty:             true,
		LastSuccessAt:     "2026-03-01T12:00:01Z",
	}
	require.NoError(t, repo.Save(ctx, in))

	out, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestMetadataDirtyCleared(t *testing.T) {
	ctx := context.Background()
	repo := setupRepo(t)

	require.NoError(t, repo.Save(ctx, models.SyncMeta{Dirty: true}))
	require.NoError(t, repo.Save(ctx, models.SyncMeta{Dirty: false}))

	out, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.False(t, out.Dirty)
}
