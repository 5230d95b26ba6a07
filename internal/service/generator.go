// Package service implements the application-level operations composed from
// repositories and the generation pipeline.
package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/lunnlew/m3u-filter/internal/config"
	"github.com/lunnlew/m3u-filter/internal/models"
	"github.com/lunnlew/m3u-filter/internal/pipeline/core"
	"github.com/lunnlew/m3u-filter/internal/pipeline/stages/dedupe"
	"github.com/lunnlew/m3u-filter/internal/pipeline/stages/filtering"
	"github.com/lunnlew/m3u-filter/internal/pipeline/stages/generatem3u"
	"github.com/lunnlew/m3u-filter/internal/pipeline/stages/generatetxt"
	"github.com/lunnlew/m3u-filter/internal/pipeline/stages/groupmapping"
	"github.com/lunnlew/m3u-filter/internal/pipeline/stages/ranking"
	"github.com/lunnlew/m3u-filter/internal/pipeline/stages/sorting"
	"github.com/lunnlew/m3u-filter/internal/repository"
	"github.com/lunnlew/m3u-filter/internal/rules"
)

// GenerateOptions customizes a single generation run. Zero values fall back
// to the configured generator defaults.
type GenerateOptions struct {
	// Format selects m3u or txt output. Empty uses the configured default.
	Format core.OutputFormat

	// SortTemplate names the sort template to apply. Empty merges every
	// stored template in creation order; "none" skips template ordering.
	SortTemplate string

	// MaxPerChannel overrides the per-channel cap. Nil uses the default.
	MaxPerChannel *int

	// DedupeByURL overrides URL deduplication. Nil uses the default.
	DedupeByURL *bool

	// EpgURL overrides the x-tvg-url header value.
	EpgURL string
}

// SortTemplateNone disables template ordering for a run.
const SortTemplateNone = "none"

// GenerateResult is the outcome of one generation run.
type GenerateResult struct {
	// RunID uniquely identifies this run for log correlation.
	RunID string `json:"run_id"`

	// RuleSetID is the generated rule set.
	RuleSetID models.ULID `json:"rule_set_id"`

	// RuleSetName is the generated rule set's name.
	RuleSetName string `json:"rule_set_name"`

	// Content is the serialized playlist.
	Content []byte `json:"-"`

	// Format is the rendered output format.
	Format core.OutputFormat `json:"format"`

	// ByteLength is len(Content).
	ByteLength int `json:"byte_length"`

	// ContentHash is the hex SHA-256 of Content. Identical configuration
	// and catalog produce identical hashes.
	ContentHash string `json:"content_hash"`

	// TrackCount is the number of entries in the output.
	TrackCount int `json:"track_count"`

	// Duration is the pipeline execution time.
	Duration time.Duration `json:"duration"`

	// Warnings are the non-fatal errors collected during the run.
	Warnings []error `json:"-"`
}

// Generator runs the playlist generation pipeline against stored data.
type Generator struct {
	ruleSets  repository.RuleSetRepository
	tracks    repository.TrackRepository
	mappings  repository.GroupMappingRepository
	templates repository.SortTemplateRepository
	sources   repository.StreamSourceRepository
	cfg       config.GeneratorConfig
	logger    *slog.Logger
}

// NewGenerator creates a new Generator.
func NewGenerator(
	ruleSets repository.RuleSetRepository,
	tracks repository.TrackRepository,
	mappings repository.GroupMappingRepository,
	templates repository.SortTemplateRepository,
	sources repository.StreamSourceRepository,
	cfg config.GeneratorConfig,
	logger *slog.Logger,
) *Generator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Generator{
		ruleSets:  ruleSets,
		tracks:    tracks,
		mappings:  mappings,
		templates: templates,
		sources:   sources,
		cfg:       cfg,
		logger:    logger,
	}
}

// Generate produces a playlist for the given rule set. The full snapshot is
// loaded up front; the pipeline itself never touches storage, so a run is a
// pure function of the loaded data.
func (g *Generator) Generate(ctx context.Context, ruleSetID models.ULID, opts GenerateOptions) (*GenerateResult, error) {
	runID := uuid.NewString()
	logger := g.logger.With(
		slog.String("run_id", runID),
		slog.String("rule_set_id", ruleSetID.String()),
	)

	allSets, err := g.ruleSets.GetAllWithRelations(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading rule sets: %w", err)
	}

	var root *models.RuleSet
	for _, set := range allSets {
		if set.ID == ruleSetID {
			root = set
			break
		}
	}
	if root == nil {
		return nil, fmt.Errorf("%w: %s", rules.ErrRuleSetNotFound, ruleSetID)
	}
	if !root.IsEnabled {
		return nil, fmt.Errorf("%w: %s", rules.ErrRuleSetDisabled, root.Name)
	}

	// Validate the configuration before loading the catalog so cycles and
	// broken references fail fast, before any track is evaluated.
	snapshot := rules.NewSnapshot(allSets)
	if _, err := rules.Compile(ruleSetID, snapshot); err != nil {
		return nil, err
	}

	tracks, err := g.tracks.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading tracks: %w", err)
	}

	mappings, err := g.mappings.GetForRuleSet(ctx, ruleSetID)
	if err != nil {
		return nil, fmt.Errorf("loading group mappings: %w", err)
	}

	sortTemplate, err := g.resolveSortTemplate(ctx, opts.SortTemplate)
	if err != nil {
		return nil, err
	}

	format := opts.Format
	if format == "" {
		format = core.OutputFormat(g.cfg.Format)
	}

	maxPerChannel := g.cfg.MaxPerChannel
	if opts.MaxPerChannel != nil {
		maxPerChannel = *opts.MaxPerChannel
	}

	dedupeByURL := g.cfg.DedupeByURL
	if opts.DedupeByURL != nil {
		dedupeByURL = *opts.DedupeByURL
	}

	tvgURL, err := g.resolveTvgURL(ctx, opts.EpgURL)
	if err != nil {
		return nil, err
	}

	stages, err := buildStages(format, dedupeByURL, logger)
	if err != nil {
		return nil, err
	}

	orchestrator := core.NewOrchestrator(root, stages, logger)
	state := orchestrator.State()
	for _, set := range allSets {
		state.RuleSets[set.ID] = set
	}
	state.Tracks = make([]*models.Track, 0, len(tracks))
	for _, t := range tracks {
		state.Tracks = append(state.Tracks, t.Clone())
	}
	state.GroupMappings = mappings
	state.SortTemplate = sortTemplate
	state.Format = format
	state.TvgURL = tvgURL
	state.MaxPerChannel = maxPerChannel

	result, err := orchestrator.Execute(ctx)
	if err != nil {
		return nil, fmt.Errorf("executing pipeline: %w", err)
	}

	hash := sha256.Sum256(result.Content)

	return &GenerateResult{
		RunID:       runID,
		RuleSetID:   ruleSetID,
		RuleSetName: root.Name,
		Content:     result.Content,
		Format:      result.Format,
		ByteLength:  len(result.Content),
		ContentHash: hex.EncodeToString(hash[:]),
		TrackCount:  result.TrackCount,
		Duration:    result.Duration,
		Warnings:    result.Errors,
	}, nil
}

// buildStages assembles the stage sequence for a run.
func buildStages(format core.OutputFormat, dedupeByURL bool, logger *slog.Logger) ([]core.Stage, error) {
	var stages []core.Stage
	if dedupeByURL {
		stages = append(stages, dedupe.New())
	}
	stages = append(stages,
		filtering.New(),
		groupmapping.New(),
		ranking.New(),
		sorting.New(),
	)

	switch format {
	case core.FormatM3U:
		stages = append(stages, generatem3u.New().WithLogger(logger))
	case core.FormatTXT:
		stages = append(stages, generatetxt.New().WithLogger(logger))
	default:
		return nil, fmt.Errorf("unsupported output format: %q", format)
	}
	return stages, nil
}

// resolveSortTemplate selects the template for a run. Naming a missing
// template is an error rather than silently unordered output.
func (g *Generator) resolveSortTemplate(ctx context.Context, name string) (*models.SortTemplate, error) {
	if name == SortTemplateNone {
		return nil, nil
	}
	if name != "" {
		template, err := g.templates.GetByName(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("loading sort template: %w", err)
		}
		if template == nil {
			return nil, fmt.Errorf("sort template %q not found", name)
		}
		return template, nil
	}

	templates, err := g.templates.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading sort templates: %w", err)
	}
	if len(templates) == 0 {
		return nil, nil
	}

	merged := models.GroupOrders{}
	for _, t := range templates {
		merged = merged.Merge(t.GroupOrders)
	}
	return &models.SortTemplate{
		Name:        "merged",
		GroupOrders: merged,
	}, nil
}

// resolveTvgURL picks the x-tvg-url header value: run override, then the
// configured default, then the first active source that advertises one.
func (g *Generator) resolveTvgURL(ctx context.Context, override string) (string, error) {
	if override != "" {
		return override, nil
	}
	if g.cfg.EpgURL != "" {
		return g.cfg.EpgURL, nil
	}
	sources, err := g.sources.GetActive(ctx)
	if err != nil {
		return "", fmt.Errorf("loading stream sources: %w", err)
	}
	for _, s := range sources {
		if s.XTvgURL != "" {
			return s.XTvgURL, nil
		}
	}
	return "", nil
}
