package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lunnlew/m3u-filter/internal/config"
	"github.com/lunnlew/m3u-filter/internal/database"
	"github.com/lunnlew/m3u-filter/internal/repository"
	"github.com/lunnlew/m3u-filter/internal/service"
)

// app bundles the wired dependencies shared by the CLI commands.
type app struct {
	cfg *config.Config
	db  *database.DB

	sources      repository.StreamSourceRepository
	tracks       repository.TrackRepository
	rules        repository.RuleRepository
	ruleSets     repository.RuleSetRepository
	mappings     repository.GroupMappingRepository
	mappingTpls  repository.GroupMappingTemplateRepository
	sortTpls     repository.SortTemplateRepository

	generator *service.Generator
	importer  *service.Importer
}

// newApp loads configuration, opens the database, runs migrations, and
// wires the repositories and services.
func newApp(ctx context.Context) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	logger := slog.Default()

	db, err := database.New(cfg.Database, logger)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.Migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating database: %w", err)
	}

	a := &app{
		cfg:         cfg,
		db:          db,
		sources:     repository.NewStreamSourceRepository(db.DB),
		tracks:      repository.NewTrackRepository(db.DB),
		rules:       repository.NewRuleRepository(db.DB),
		ruleSets:    repository.NewRuleSetRepository(db.DB),
		mappings:    repository.NewGroupMappingRepository(db.DB),
		mappingTpls: repository.NewGroupMappingTemplateRepository(db.DB),
		sortTpls:    repository.NewSortTemplateRepository(db.DB),
	}

	a.generator = service.NewGenerator(
		a.ruleSets, a.tracks, a.mappings, a.sortTpls, a.sources,
		cfg.Generator, logger,
	)
	a.importer = service.NewImporter(
		a.sources, a.tracks, a.sortTpls, a.mappingTpls,
		cfg.Import.BatchSize, logger,
	)

	return a, nil
}

// Close releases the app's resources.
func (a *app) Close() error {
	return a.db.Close()
}
