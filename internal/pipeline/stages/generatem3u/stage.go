// Package generatem3u implements the M3U serialization pipeline stage.
package generatem3u

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"github.com/lunnlew/m3u-filter/internal/pipeline/core"
	"github.com/lunnlew/m3u-filter/internal/pipeline/shared"
	"github.com/lunnlew/m3u-filter/pkg/m3u"
)

const (
	// StageID is the unique identifier for this stage.
	StageID = "generate_m3u"
	// StageName is the human-readable name for this stage.
	StageName = "Generate M3U"
)

// Stage renders the ordered track list into extended M3U text held in
// memory. The engine performs no file I/O; callers persist the content.
type Stage struct {
	shared.BaseStage
}

// New creates a new M3U generation stage.
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

// Execute serializes state.Tracks into state.Content. Output is
// byte-for-byte reproducible for identical input, as required by
// content-addressed caching upstream.
func (s *Stage) Execute(ctx context.Context, state *core.State) (*core.StageResult, error) {
	result := shared.NewResult()

	var buf bytes.Buffer
	writer := m3u.NewWriter(&buf).WithTvgURL(state.TvgURL)

	if err := writer.WriteHeader(); err != nil {
		return result, fmt.Errorf("writing M3U header: %w", err)
	}

	trackCount := 0
	for _, t := range state.Tracks {
		if err := shared.Cancelled(ctx); err != nil {
			return result, err
		}

		if t.StreamURL == "" {
			state.AddError(fmt.Errorf("track %q skipped: empty stream URL", t.Name))
			continue
		}

		entry := &m3u.Entry{
			Duration:      -1,
			TvgID:         t.TvgID,
			TvgName:       t.TvgName,
			TvgLogo:       t.TvgLogo,
			TvgLanguage:   t.Language,
			GroupTitle:    t.GroupTitle,
			Catchup:       t.Catchup,
			CatchupSource: t.CatchupSource,
			Title:         t.Name,
			URL:           t.StreamURL,
		}
		// EPG matching id falls back tvg-id > tvg-name > display name.
		if entry.TvgID == "" {
			entry.TvgID = t.TvgName
		}
		if entry.TvgID == "" {
			entry.TvgID = t.Name
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
	result.Message = fmt.Sprintf("Generated M3U with %d tracks", trackCount)

	s.Log(ctx, slog.LevelInfo, "M3U generation complete",
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
