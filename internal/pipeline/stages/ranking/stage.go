// Package ranking implements the per-channel quality ranking pipeline
// stage. When several tracks share a (group, name) pair, only the best
// MaxPerChannel of them survive, ranked by quality score, resolution and
// download speed.
package ranking

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/lunnlew/m3u-filter/internal/models"
	"github.com/lunnlew/m3u-filter/internal/pipeline/core"
	"github.com/lunnlew/m3u-filter/internal/pipeline/shared"
)

const (
	// StageID is the unique identifier for this stage.
	StageID = "ranking"
	// StageName is the human-readable name for this stage.
	StageName = "Ranking"
)

// resolutionRank maps resolution tokens to a comparable score.
// Unknown or unprobed resolutions rank lowest.
var resolutionRank = map[string]int{
	"4k":    6,
	"2k":    5,
	"1080p": 4,
	"720p":  3,
	"576p":  2,
	"480p":  1,
}

// Stage trims same-name tracks per group down to the configured cap.
type Stage struct {
	shared.BaseStage
}

// New creates a new ranking stage.
func New() *Stage {
	return &Stage{
		BaseStage: shared.NewBaseStage(StageID, StageName),
	}
}

// Execute keeps the best state.MaxPerChannel tracks per (group, name)
// pair. A zero cap disables trimming. Survivors keep their relative
// positions in the track list.
func (s *Stage) Execute(ctx context.Context, state *core.State) (*core.StageResult, error) {
	result := shared.NewResult()

	if state.MaxPerChannel <= 0 {
		result.RecordsProcessed = len(state.Tracks)
		result.Message = "Ranking disabled"
		return result, nil
	}

	type key struct{ group, name string }
	buckets := make(map[key][]*models.Track)
	for _, t := range state.Tracks {
		if err := shared.Cancelled(ctx); err != nil {
			return result, err
		}
		k := key{t.GroupTitle, t.Name}
		buckets[k] = append(buckets[k], t)
	}

	keep := make(map[*models.Track]bool, len(state.Tracks))
	for _, bucket := range buckets {
		ranked := append([]*models.Track(nil), bucket...)
		sort.SliceStable(ranked, func(i, j int) bool {
			return better(ranked[i], ranked[j])
		})
		if len(ranked) > state.MaxPerChannel {
			ranked = ranked[:state.MaxPerChannel]
		}
		for _, t := range ranked {
			keep[t] = true
		}
	}

	original := len(state.Tracks)
	trimmed := make([]*models.Track, 0, original)
	for _, t := range state.Tracks {
		if keep[t] {
			trimmed = append(trimmed, t)
		}
	}
	state.Tracks = trimmed

	removed := original - len(trimmed)
	result.RecordsProcessed = original
	result.RecordsModified = removed
	result.Message = fmt.Sprintf("Trimmed %d lower-quality duplicates", removed)

	artifact := core.NewArtifact(core.ArtifactTypeTracks, core.ProcessingStageRanked, StageID).
		WithRecordCount(len(trimmed)).
		WithMetadata("max_per_channel", state.MaxPerChannel)
	result.Artifacts = append(result.Artifacts, artifact)

	return result, nil
}

// better reports whether a outranks b: higher quality score first, then
// higher resolution, then higher download speed.
func better(a, b *models.Track) bool {
	if qa, qb := score(a.QualityScore), score(b.QualityScore); qa != qb {
		return qa > qb
	}
	ra := resolutionRank[strings.ToLower(strings.TrimSpace(a.Resolution))]
	rb := resolutionRank[strings.ToLower(strings.TrimSpace(b.Resolution))]
	if ra != rb {
		return ra > rb
	}
	return score(a.DownloadSpeed) > score(b.DownloadSpeed)
}

// score unwraps an optional metric, treating unknown as zero.
func score(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

// Ensure Stage implements core.Stage.
var _ core.Stage = (*Stage)(nil)
