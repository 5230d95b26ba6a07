package repository

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/lunnlew/m3u-filter/internal/models"
	"github.com/lunnlew/m3u-filter/internal/testutil"
)

func setupSourceTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(&models.StreamSource{}, &models.Track{})
	require.NoError(t, err)

	return db
}

func TestStreamSourceRepo_CreateAndGet(t *testing.T) {
	db := setupSourceTestDB(t)
	repo := NewStreamSourceRepository(db)
	ctx := context.Background()

	source := testutil.NewSource("northern-feed")
	require.NoError(t, repo.Create(ctx, source))
	assert.False(t, source.ID.IsZero())

	found, err := repo.GetByName(ctx, "northern-feed")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, source.ID, found.ID)
	assert.True(t, found.IsActive)
	assert.Nil(t, found.LastSyncAt)
}

func TestStreamSourceRepo_CreateValidation(t *testing.T) {
	db := setupSourceTestDB(t)
	repo := NewStreamSourceRepository(db)

	err := repo.Create(context.Background(), &models.StreamSource{Name: "no-url"})
	assert.ErrorIs(t, err, models.ErrURLRequired)
}

func TestStreamSourceRepo_GetActive(t *testing.T) {
	db := setupSourceTestDB(t)
	repo := NewStreamSourceRepository(db)
	ctx := context.Background()

	active := testutil.NewSource("active-feed")
	inactive := testutil.NewSource("inactive-feed")
	require.NoError(t, repo.Create(ctx, active))
	require.NoError(t, repo.Create(ctx, inactive))
	inactive.IsActive = false
	require.NoError(t, repo.Update(ctx, inactive))

	sources, err := repo.GetActive(ctx)
	require.NoError(t, err)
	require.Len(t, sources, 1)
	assert.Equal(t, "active-feed", sources[0].Name)
}

func TestStreamSourceRepo_UpdateLastSync(t *testing.T) {
	db := setupSourceTestDB(t)
	repo := NewStreamSourceRepository(db)
	ctx := context.Background()

	source := testutil.NewSource("synced-feed")
	require.NoError(t, repo.Create(ctx, source))
	require.NoError(t, repo.UpdateLastSync(ctx, source.ID))

	found, err := repo.GetByID(ctx, source.ID)
	require.NoError(t, err)
	require.NotNil(t, found.LastSyncAt)
}

func TestStreamSourceRepo_DeleteRemovesTracks(t *testing.T) {
	db := setupSourceTestDB(t)
	sourceRepo := NewStreamSourceRepository(db)
	trackRepo := NewTrackRepository(db)
	ctx := context.Background()

	doomed := testutil.NewSource("doomed-feed")
	kept := testutil.NewSource("kept-feed")
	require.NoError(t, sourceRepo.Create(ctx, doomed))
	require.NoError(t, sourceRepo.Create(ctx, kept))

	require.NoError(t, trackRepo.Create(ctx, testutil.NewTrack(doomed.ID, "NewsFirst 24", "News")))
	require.NoError(t, trackRepo.Create(ctx, testutil.NewTrack(kept.ID, "CinemaMax One", "Movies")))

	require.NoError(t, sourceRepo.Delete(ctx, doomed.ID))

	count, err := trackRepo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count, "only the deleted source's tracks go with it")

	remaining, err := trackRepo.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, "CinemaMax One", remaining[0].Name)
}
