// Package generatetxt implements the plain-text serialization pipeline stage.
package generatetxt

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"github.com/lunnlew/m3u-filter/internal/pipeline/core"
	"github.com/lunnlew/m3u-filter/internal/pipeline/shared"
	"github.com/lunnlew/m3u-filter/pkg/txt"
)

const (
	// StageID is the unique identifier for this stage.
	StageID = "generate_txt"
	// StageName is the human-readable name for this stage.
	StageName = "Generate TXT"
)

// Stage renders the ordered track list as group,name,url lines held in
// memory. Track order is preserved exactly as produced upstream.
type Stage struct {
	shared.BaseStage
}

// New creates a new TXT generation stage.
func New() *Stage {
	return &Stage{
		BaseStage: shared.NewBaseStage(StageID, StageName),
	}
}

// WithLogger sets a logger for the stage.
func (s *Stage) WithLogger(logger *slog.Logger) *Stage {
	s.SetLogger(logger)
	return s
}

// Execute serializes state.Tracks into state.Content.
func (s *Stage) Execute(ctx context.Context, state *core.State) (*core.StageResult, error) {
	result := shared.NewResult()

	var buf bytes.Buffer
	writer := txt.NewWriter(&buf)

	trackCount := 0
	for _, t := range state.Tracks {
		if err := shared.Cancelled(ctx); err != nil {
			return result, err
		}

		if t.StreamURL == "" {
			state.AddError(fmt.Errorf("track %q skipped: empty stream URL", t.Name))
			continue
		}

		entry := &txt.Entry{
			Group: t.GroupTitle,
			Name:  t.Name,
			URL:   t.StreamURL,
		}
		if err := writer.WriteEntry(entry); err != nil {
			state.AddError(fmt.Errorf("writing track %q: %w", t.Name, err))
			continue
		}
		trackCount++
	}

	state.Content = buf.Bytes()
	state.TrackCount = trackCount

	result.RecordsProcessed = trackCount
	result.Message = fmt.Sprintf("Generated TXT with %d tracks", trackCount)

	s.Log(ctx, slog.LevelInfo, "TXT generation complete",
		slog.Int("track_count", trackCount),
		slog.Int("byte_length", buf.Len()))

	artifact := core.NewArtifact(core.ArtifactTypePlaylist, core.ProcessingStageSerialized, StageID).
		WithRecordCount(trackCount).
		WithByteSize(buf.Len())
	result.Artifacts = append(result.Artifacts, artifact)

	return result, nil
}

// Ensure Stage implements core.Stage.
var _ core.Stage = (*Stage)(nil)
