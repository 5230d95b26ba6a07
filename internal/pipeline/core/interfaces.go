// Package core provides the playlist generation pipeline framework.
package core

import (
	"context"
	"time"

	"github.com/lunnlew/m3u-filter/internal/models"
)

// OutputFormat identifies the serialization format of a generation run.
type OutputFormat string

const (
	// FormatM3U renders extended M3U output.
	FormatM3U OutputFormat = "m3u"

	// FormatTXT renders plain group,name,url output.
	FormatTXT OutputFormat = "txt"
)

// Stage represents a single step in the playlist generation pipeline.
// Stages operate on the shared State and must not touch storage or the
// filesystem: a generation run is a pure function of its loaded snapshot.
type Stage interface {
	// ID returns a unique identifier for the stage (e.g. "filtering").
	ID() string

	// Name returns a human-readable name for the stage (e.g. "Filtering").
	Name() string

	// Execute performs the stage's work on the shared state.
	Execute(ctx context.Context, state *State) (*StageResult, error)

	// Cleanup performs any necessary cleanup after execution.
	// Called regardless of success or failure.
	Cleanup(ctx context.Context) error
}

// State holds all data shared between pipeline stages for one generation
// run. Everything is loaded before the pipeline starts; stages only read
// the snapshot fields and rewrite the per-run track copies.
type State struct {
	// RuleSetID is the id of the rule set being generated.
	RuleSetID models.ULID

	// RuleSet is the root rule set definition.
	RuleSet *models.RuleSet

	// RuleSets is the arena of all rule set definitions reachable during
	// evaluation, keyed by id (including the root).
	RuleSets map[models.ULID]*models.RuleSet

	// Tracks holds per-run copies of the catalog, progressively filtered,
	// remapped and reordered by the stages.
	Tracks []*models.Track

	// GroupMappings is the mapping snapshot (scoped and global rows).
	GroupMappings []*models.GroupMapping

	// SortTemplate is the ordering specification; nil keeps catalog order.
	SortTemplate *models.SortTemplate

	// Format selects the serializer stage's output format.
	Format OutputFormat

	// TvgURL is the EPG URL for the M3U header; empty omits the attribute.
	TvgURL string

	// MaxPerChannel caps same-name tracks per group after ranking.
	// Zero means unlimited.
	MaxPerChannel int

	// Content receives the serialized playlist bytes.
	Content []byte

	// TrackCount tracks the number of entries in the output.
	TrackCount int

	// StartTime records when pipeline execution began.
	StartTime time.Time

	// Errors collects non-fatal errors during execution.
	Errors []error

	// Artifacts holds output artifacts from each stage.
	Artifacts map[string][]Artifact

	// Metadata stores arbitrary stage-specific data.
	Metadata map[string]any
}

// NewState creates a new pipeline state for the given rule set.
func NewState(ruleSet *models.RuleSet) *State {
	return &State{
		RuleSetID: ruleSet.ID,
		RuleSet:   ruleSet,
		RuleSets:  map[models.ULID]*models.RuleSet{ruleSet.ID: ruleSet},
		Tracks:    make([]*models.Track, 0),
		Format:    FormatM3U,
		StartTime: time.Now(),
		Errors:    make([]error, 0),
		Artifacts: make(map[string][]Artifact),
		Metadata:  make(map[string]any),
	}
}

// AddError adds a non-fatal error to the state.
func (s *State) AddError(err error) {
	if err != nil {
		s.Errors = append(s.Errors, err)
	}
}

// HasErrors returns true if any non-fatal errors were recorded.
func (s *State) HasErrors() bool {
	return len(s.Errors) > 0
}

// Duration returns the elapsed time since pipeline start.
func (s *State) Duration() time.Duration {
	return time.Since(s.StartTime)
}

// SetMetadata stores a value in the metadata map.
func (s *State) SetMetadata(key string, value any) {
	s.Metadata[key] = value
}

// GetMetadata retrieves a value from the metadata map.
func (s *State) GetMetadata(key string) (any, bool) {
	v, ok := s.Metadata[key]
	return v, ok
}

// AddArtifact adds an artifact produced by a stage.
func (s *State) AddArtifact(stageID string, artifact Artifact) {
	s.Artifacts[stageID] = append(s.Artifacts[stageID], artifact)
}

// GetArtifacts returns all artifacts produced by a stage.
func (s *State) GetArtifacts(stageID string) []Artifact {
	return s.Artifacts[stageID]
}

// StageResult contains the outcome of a stage execution.
type StageResult struct {
	// Artifacts produced by this stage.
	Artifacts []Artifact

	// RecordsProcessed is the count of items processed.
	RecordsProcessed int

	// RecordsModified is the count of items changed or removed.
	RecordsModified int

	// Duration is the execution time.
	Duration time.Duration

	// Message is an optional summary message.
	Message string
}

// Result represents the outcome of pipeline execution.
type Result struct {
	// Success indicates if the pipeline completed without fatal errors.
	Success bool

	// TrackCount is the number of tracks in the generated output.
	TrackCount int

	// Content is the serialized playlist.
	Content []byte

	// Format is the output format that was rendered.
	Format OutputFormat

	// Duration is the total execution time.
	Duration time.Duration

	// StageResults contains results from each stage.
	StageResults map[string]*StageResult

	// Errors contains any errors that occurred.
	Errors []error
}
