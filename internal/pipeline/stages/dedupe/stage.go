// Package dedupe implements the catalog deduplication pipeline stage.
// Tracks sharing a stream URL collapse to one entry; an entry advertising
// catchup capability is preferred over one that does not.
package dedupe

import (
	"context"
	"fmt"

	"github.com/lunnlew/m3u-filter/internal/models"
	"github.com/lunnlew/m3u-filter/internal/pipeline/core"
	"github.com/lunnlew/m3u-filter/internal/pipeline/shared"
)

const (
	// StageID is the unique identifier for this stage.
	StageID = "dedupe"
	// StageName is the human-readable name for this stage.
	StageName = "Deduplicate"
)

// Stage removes duplicate stream URLs from the catalog snapshot.
type Stage struct {
	shared.BaseStage
}

// New creates a new dedupe stage.
func New() *Stage {
	return &Stage{
		BaseStage: shared.NewBaseStage(StageID, StageName),
	}
}

// Execute collapses tracks with identical stream URLs, keeping the first
// occurrence's position. A later duplicate replaces an earlier one in
// place only when it has catchup capability and the earlier one does not.
func (s *Stage) Execute(ctx context.Context, state *core.State) (*core.StageResult, error) {
	result := shared.NewResult()

	original := len(state.Tracks)
	byURL := make(map[string]int, original)
	deduped := make([]*models.Track, 0, original)

	for _, t := range state.Tracks {
		if err := shared.Cancelled(ctx); err != nil {
			return result, err
		}

		if t.StreamURL == "" {
			state.AddError(fmt.Errorf("track %q skipped: empty stream URL", t.Name))
			continue
		}

		i, seen := byURL[t.StreamURL]
		if !seen {
			byURL[t.StreamURL] = len(deduped)
			deduped = append(deduped, t)
			continue
		}
		if t.HasCatchup() && !deduped[i].HasCatchup() {
			deduped[i] = t
		}
	}

	state.Tracks = deduped

	result.RecordsProcessed = original
	result.RecordsModified = original - len(deduped)
	result.Message = fmt.Sprintf("Removed %d duplicate tracks", result.RecordsModified)

	artifact := core.NewArtifact(core.ArtifactTypeTracks, core.ProcessingStageDeduplicated, StageID).
		WithRecordCount(len(deduped))
	result.Artifacts = append(result.Artifacts, artifact)

	return result, nil
}

// Ensure Stage implements core.Stage.
var _ core.Stage = (*Stage)(nil)
