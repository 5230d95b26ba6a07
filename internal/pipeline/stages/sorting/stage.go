// Package sorting implements the sort template ordering pipeline stage.
package sorting

import (
	"context"
	"fmt"

	"github.com/lunnlew/m3u-filter/internal/pipeline/core"
	"github.com/lunnlew/m3u-filter/internal/pipeline/shared"
	tracksort "github.com/lunnlew/m3u-filter/internal/sorting"
)

const (
	// StageID is the unique identifier for this stage.
	StageID = "sorting"
	// StageName is the human-readable name for this stage.
	StageName = "Sorting"
)

// Stage reorders the filtered, remapped tracks per the sort template.
type Stage struct {
	shared.BaseStage
}

// New creates a new sorting stage.
func New() *Stage {
	return &Stage{
		BaseStage: shared.NewBaseStage(StageID, StageName),
	}
}

// Execute applies the template ordering. Without a template the filtered
// order is kept as-is, which already satisfies the append-order fallback.
func (s *Stage) Execute(ctx context.Context, state *core.State) (*core.StageResult, error) {
	result := shared.NewResult()

	if err := shared.Cancelled(ctx); err != nil {
		return result, err
	}

	templateName := ""
	if state.SortTemplate != nil {
		templateName = state.SortTemplate.Name
	}

	state.Tracks = tracksort.Order(state.Tracks, state.SortTemplate)

	result.RecordsProcessed = len(state.Tracks)
	result.Message = fmt.Sprintf("Ordered %d tracks", len(state.Tracks))

	artifact := core.NewArtifact(core.ArtifactTypeTracks, core.ProcessingStageSorted, StageID).
		WithRecordCount(len(state.Tracks)).
		WithMetadata("sort_template", templateName)
	result.Artifacts = append(result.Artifacts, artifact)

	return result, nil
}

// Ensure Stage implements core.Stage.
var _ core.Stage = (*Stage)(nil)
