package scheduler

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/lunnlew/m3u-filter/internal/models"
	"github.com/lunnlew/m3u-filter/internal/repository"
	"github.com/lunnlew/m3u-filter/internal/testutil"
)

func setupSchedulerTest(t *testing.T) (repository.RuleSetRepository, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Rule{},
		&models.RuleSet{},
		&models.RuleSetRule{},
		&models.RuleSetChild{},
		&models.GroupMapping{},
	))
	return repository.NewRuleSetRepository(db), db
}

func createSet(t *testing.T, repo repository.RuleSetRepository, name string, enabled bool, interval int) *models.RuleSet {
	t.Helper()
	set := testutil.NewRuleSet(name)
	set.SyncInterval = interval
	require.NoError(t, repo.Create(context.Background(), set))
	if !enabled {
		set.IsEnabled = false
		require.NoError(t, repo.Update(context.Background(), set))
	}
	return set
}

func TestScheduler_StartSchedulesEnabledSets(t *testing.T) {
	repo, _ := setupSchedulerTest(t)
	createSet(t, repo, "news", true, 1)
	createSet(t, repo, "sports", true, 12)
	createSet(t, repo, "off-air", false, 1)

	sched := NewScheduler(repo, func(ctx context.Context, id models.ULID) error {
		return nil
	}, 6)
	require.NoError(t, sched.Start(context.Background()))
	defer sched.Stop()

	assert.Equal(t, 2, sched.Entries(), "disabled sets are not scheduled")
}

func TestScheduler_StartTwiceRejected(t *testing.T) {
	repo, _ := setupSchedulerTest(t)

	sched := NewScheduler(repo, func(ctx context.Context, id models.ULID) error {
		return nil
	}, 6)
	require.NoError(t, sched.Start(context.Background()))
	defer sched.Stop()

	assert.Error(t, sched.Start(context.Background()))
}

func TestScheduler_RefreshPicksUpChanges(t *testing.T) {
	repo, db := setupSchedulerTest(t)
	first := createSet(t, repo, "news", true, 1)

	sched := NewScheduler(repo, func(ctx context.Context, id models.ULID) error {
		return nil
	}, 6)
	require.NoError(t, sched.Start(context.Background()))
	defer sched.Stop()
	require.Equal(t, 1, sched.Entries())

	createSet(t, repo, "sports", true, 2)
	require.NoError(t, sched.Refresh())
	assert.Equal(t, 2, sched.Entries(), "new enabled set gains an entry")

	require.NoError(t, db.Model(&models.RuleSet{}).
		Where("id = ?", first.ID).
		Update("is_enabled", false).Error)
	require.NoError(t, sched.Refresh())
	assert.Equal(t, 1, sched.Entries(), "disabled set loses its entry")
}

func TestScheduler_StopIsIdempotent(t *testing.T) {
	repo, _ := setupSchedulerTest(t)
	createSet(t, repo, "news", true, 1)

	sched := NewScheduler(repo, func(ctx context.Context, id models.ULID) error {
		return nil
	}, 6)
	require.NoError(t, sched.Start(context.Background()))

	sched.Stop()
	sched.Stop()

	// Restart after stop is allowed.
	require.NoError(t, sched.Start(context.Background()))
	sched.Stop()
}

func TestScheduler_RunOneSkipsAfterStop(t *testing.T) {
	repo, _ := setupSchedulerTest(t)
	set := createSet(t, repo, "news", true, 1)

	var calls atomic.Int32
	sched := NewScheduler(repo, func(ctx context.Context, id models.ULID) error {
		calls.Add(1)
		return nil
	}, 6)
	require.NoError(t, sched.Start(context.Background()))
	sched.Stop()

	sched.runOne(set.ID, set.Name)
	assert.Equal(t, int32(0), calls.Load(), "no runs after shutdown")
}

func TestScheduler_DefaultIntervalFloor(t *testing.T) {
	repo, _ := setupSchedulerTest(t)

	sched := NewScheduler(repo, nil, 0)
	assert.Equal(t, 6, sched.defaultInterval)
}
