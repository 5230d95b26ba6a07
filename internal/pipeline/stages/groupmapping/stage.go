// Package groupmapping implements the group remapping pipeline stage.
package groupmapping

import (
	"context"
	"fmt"

	"github.com/lunnlew/m3u-filter/internal/mapping"
	"github.com/lunnlew/m3u-filter/internal/pipeline/core"
	"github.com/lunnlew/m3u-filter/internal/pipeline/shared"
)

const (
	// StageID is the unique identifier for this stage.
	StageID = "group_mapping"
	// StageName is the human-readable name for this stage.
	StageName = "Group Mapping"
)

// Stage rewrites group titles and display names on the per-run track
// copies using the mapping snapshot.
type Stage struct {
	shared.BaseStage
}

// New creates a new group mapping stage.
func New() *Stage {
	return &Stage{
		BaseStage: shared.NewBaseStage(StageID, StageName),
	}
}

// Execute resolves each track's output group and display name. Scoped
// mappings win over global ones; unmapped tracks pass through unchanged.
// The stage mutates only the per-run copies held in state.
func (s *Stage) Execute(ctx context.Context, state *core.State) (*core.StageResult, error) {
	result := shared.NewResult()

	resolver := mapping.NewResolver(state.RuleSetID, state.GroupMappings)

	modified := 0
	for _, t := range state.Tracks {
		if err := shared.Cancelled(ctx); err != nil {
			return result, err
		}

		group, name := resolver.Resolve(t)
		if group != t.GroupTitle || name != t.Name {
			t.GroupTitle = group
			t.Name = name
			modified++
		}
	}

	result.RecordsProcessed = len(state.Tracks)
	result.RecordsModified = modified
	result.Message = fmt.Sprintf("Remapped %d/%d tracks", modified, len(state.Tracks))

	artifact := core.NewArtifact(core.ArtifactTypeTracks, core.ProcessingStageMapped, StageID).
		WithRecordCount(len(state.Tracks)).
		WithMetadata("tracks_remapped", modified)
	result.Artifacts = append(result.Artifacts, artifact)

	return result, nil
}

// Ensure Stage implements core.Stage.
var _ core.Stage = (*Stage)(nil)
