// Package filtering implements the rule set evaluation pipeline stage.
package filtering

import (
	"context"
	"fmt"

	"github.com/lunnlew/m3u-filter/internal/models"
	"github.com/lunnlew/m3u-filter/internal/pipeline/core"
	"github.com/lunnlew/m3u-filter/internal/pipeline/shared"
	"github.com/lunnlew/m3u-filter/internal/rules"
)

const (
	// StageID is the unique identifier for this stage.
	StageID = "filtering"
	// StageName is the human-readable name for this stage.
	StageName = "Filtering"
)

// Stage evaluates the rule set tree against every catalog track.
type Stage struct {
	shared.BaseStage
}

// New creates a new filtering stage.
func New() *Stage {
	return &Stage{
		BaseStage: shared.NewBaseStage(StageID, StageName),
	}
}

// Execute compiles the rule set tree and keeps the tracks it includes,
// preserving the catalog's relative order. Compilation happens before the
// track loop, so cyclic containment or a malformed pattern aborts the run
// without evaluating a single track.
func (s *Stage) Execute(ctx context.Context, state *core.State) (*core.StageResult, error) {
	result := shared.NewResult()

	snap := &rules.Snapshot{Sets: state.RuleSets}
	evaluator, err := rules.Compile(state.RuleSetID, snap)
	if err != nil {
		return result, fmt.Errorf("compiling rule set %q: %w", state.RuleSet.Name, err)
	}

	original := len(state.Tracks)
	included := make([]*models.Track, 0, original)

	for _, t := range state.Tracks {
		if err := shared.Cancelled(ctx); err != nil {
			return result, err
		}

		if evaluator.Evaluate(t) {
			included = append(included, t)
		}
	}

	state.Tracks = included

	removed := original - len(included)
	result.RecordsProcessed = original
	result.RecordsModified = removed
	result.Message = fmt.Sprintf("Filtered: %d/%d tracks removed", removed, original)

	artifact := core.NewArtifact(core.ArtifactTypeTracks, core.ProcessingStageFiltered, StageID).
		WithRecordCount(len(included)).
		WithMetadata("tracks_removed", removed)
	result.Artifacts = append(result.Artifacts, artifact)

	return result, nil
}

// Ensure Stage implements core.Stage.
var _ core.Stage = (*Stage)(nil)
