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
)

func setupSortTemplateTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(&models.SortTemplate{})
	require.NoError(t, err)

	return db
}

func TestSortTemplateRepo_GroupOrdersRoundTrip(t *testing.T) {
	db := setupSortTemplateTestDB(t)
	repo := NewSortTemplateRepository(db)
	ctx := context.Background()

	template := &models.SortTemplate{
		Name: "evening",
		GroupOrders: models.GroupOrders{
			{Group: "Sports", Channels: []string{"SportsCentral Arena", "SportsCentral Extra"}},
			{Group: "News", Channels: []string{"NewsFirst 24"}},
		},
	}
	require.NoError(t, repo.Create(ctx, template))

	found, err := repo.GetByName(ctx, "evening")
	require.NoError(t, err)
	require.NotNil(t, found)
	require.Len(t, found.GroupOrders, 2)
	assert.Equal(t, "Sports", found.GroupOrders[0].Group, "group order survives serialization")
	assert.Equal(t, []string{"SportsCentral Arena", "SportsCentral Extra"}, found.GroupOrders[0].Channels)
	assert.Equal(t, "News", found.GroupOrders[1].Group)
}

func TestSortTemplateRepo_GetAllCreationOrder(t *testing.T) {
	db := setupSortTemplateTestDB(t)
	repo := NewSortTemplateRepository(db)
	ctx := context.Background()

	for _, name := range []string{"first", "second", "third"} {
		require.NoError(t, repo.Create(ctx, &models.SortTemplate{Name: name}))
	}

	all, err := repo.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "first", all[0].Name)
	assert.Equal(t, "second", all[1].Name)
	assert.Equal(t, "third", all[2].Name)
}

func TestSortTemplateRepo_Update(t *testing.T) {
	db := setupSortTemplateTestDB(t)
	repo := NewSortTemplateRepository(db)
	ctx := context.Background()

	template := &models.SortTemplate{Name: "mutable"}
	require.NoError(t, repo.Create(ctx, template))

	template.GroupOrders = models.GroupOrders{{Group: "Kids", Channels: []string{"PrimeTV Kids"}}}
	require.NoError(t, repo.Update(ctx, template))

	found, err := repo.GetByID(ctx, template.ID)
	require.NoError(t, err)
	require.Len(t, found.GroupOrders, 1)
	assert.Equal(t, "Kids", found.GroupOrders[0].Group)
}

func TestSortTemplateRepo_Delete(t *testing.T) {
	db := setupSortTemplateTestDB(t)
	repo := NewSortTemplateRepository(db)
	ctx := context.Background()

	template := &models.SortTemplate{Name: "doomed"}
	require.NoError(t, repo.Create(ctx, template))
	require.NoError(t, repo.Delete(ctx, template.ID))

	found, err := repo.GetByID(ctx, template.ID)
	require.NoError(t, err)
	assert.Nil(t, found)
}
