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

func setupTemplateTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.RuleSet{},
		&models.GroupMapping{},
		&models.GroupMappingTemplate{},
		&models.GroupMappingTemplateItem{},
	)
	require.NoError(t, err)

	return db
}

func TestTemplateRepo_CreateAndGetByName(t *testing.T) {
	db := setupTemplateTestDB(t)
	repo := NewGroupMappingTemplateRepository(db)
	ctx := context.Background()

	template := &models.GroupMappingTemplate{
		Name: "regional",
		Items: []models.GroupMappingTemplateItem{
			{ChannelName: "NationalNet One", CustomGroup: "National", Position: 0},
			{ChannelName: "NationalNet Two", CustomGroup: "National", Position: 1},
		},
	}
	require.NoError(t, repo.Create(ctx, template))

	found, err := repo.GetByName(ctx, "regional")
	require.NoError(t, err)
	require.NotNil(t, found)
	require.Len(t, found.Items, 2)
	assert.Equal(t, "NationalNet One", found.Items[0].ChannelName)
	assert.Equal(t, "NationalNet Two", found.Items[1].ChannelName)
}

func TestTemplateRepo_UpdateReplacesItems(t *testing.T) {
	db := setupTemplateTestDB(t)
	repo := NewGroupMappingTemplateRepository(db)
	ctx := context.Background()

	template := &models.GroupMappingTemplate{
		Name: "regional",
		Items: []models.GroupMappingTemplateItem{
			{ChannelName: "NationalNet One", CustomGroup: "National", Position: 0},
		},
	}
	require.NoError(t, repo.Create(ctx, template))

	template.Items = []models.GroupMappingTemplateItem{
		{ChannelName: "NationalNet Two", CustomGroup: "Regional", Position: 0},
	}
	require.NoError(t, repo.Update(ctx, template))

	found, err := repo.GetByID(ctx, template.ID)
	require.NoError(t, err)
	require.Len(t, found.Items, 1)
	assert.Equal(t, "NationalNet Two", found.Items[0].ChannelName)
	assert.Equal(t, "Regional", found.Items[0].CustomGroup)
}

func TestTemplateRepo_ApplyToRuleSet(t *testing.T) {
	db := setupTemplateTestDB(t)
	templateRepo := NewGroupMappingTemplateRepository(db)
	mappingRepo := NewGroupMappingRepository(db)
	setRepo := NewRuleSetRepository(db)
	ctx := context.Background()

	set := testutil.NewRuleSet("curated")
	require.NoError(t, setRepo.Create(ctx, set))

	// A pre-existing scoped mapping for one of the template channels.
	scope := set.ID
	require.NoError(t, mappingRepo.Upsert(ctx, &models.GroupMapping{
		ChannelName: "NewsFirst 24",
		CustomGroup: "Old News",
		RuleSetID:   &scope,
	}))

	template := &models.GroupMappingTemplate{
		Name: "news pack",
		Items: []models.GroupMappingTemplateItem{
			{ChannelName: "NewsFirst 24", CustomGroup: "World News", Position: 0},
			{ChannelName: "NewsFirst World", CustomGroup: "World News", DisplayName: "NewsFirst Intl", Position: 1},
		},
	}
	require.NoError(t, templateRepo.Create(ctx, template))

	applied, err := templateRepo.ApplyToRuleSet(ctx, template.ID, set.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, applied)

	visible, err := mappingRepo.GetForRuleSet(ctx, set.ID)
	require.NoError(t, err)
	require.Len(t, visible, 2)

	byChannel := make(map[string]*models.GroupMapping, len(visible))
	for _, m := range visible {
		byChannel[m.ChannelName] = m
	}
	assert.Equal(t, "World News", byChannel["NewsFirst 24"].CustomGroup,
		"applying a template overwrites existing scoped mappings")
	assert.Equal(t, "NewsFirst Intl", byChannel["NewsFirst World"].DisplayName)
}

func TestTemplateRepo_ApplyUnknownTemplate(t *testing.T) {
	db := setupTemplateTestDB(t)
	repo := NewGroupMappingTemplateRepository(db)

	_, err := repo.ApplyToRuleSet(context.Background(), models.NewULID(), models.NewULID())
	assert.ErrorIs(t, err, ErrTemplateNotFound)
}

func TestTemplateRepo_ApplyUnknownRuleSet(t *testing.T) {
	db := setupTemplateTestDB(t)
	repo := NewGroupMappingTemplateRepository(db)
	ctx := context.Background()

	template := &models.GroupMappingTemplate{Name: "orphan"}
	require.NoError(t, repo.Create(ctx, template))

	_, err := repo.ApplyToRuleSet(ctx, template.ID, models.NewULID())
	assert.ErrorIs(t, err, ErrRuleSetNotFound)
}

func TestTemplateRepo_DeleteRemovesItems(t *testing.T) {
	db := setupTemplateTestDB(t)
	repo := NewGroupMappingTemplateRepository(db)
	ctx := context.Background()

	template := &models.GroupMappingTemplate{
		Name: "doomed",
		Items: []models.GroupMappingTemplateItem{
			{ChannelName: "PrimeTV Kids", CustomGroup: "Kids"},
		},
	}
	require.NoError(t, repo.Create(ctx, template))
	require.NoError(t, repo.Delete(ctx, template.ID))

	var items int64
	require.NoError(t, db.Model(&models.GroupMappingTemplateItem{}).Count(&items).Error)
	assert.Zero(t, items)
}
