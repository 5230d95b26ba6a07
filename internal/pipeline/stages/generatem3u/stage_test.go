package generatem3u

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lunnlew/m3u-filter/internal/models"
	"github.com/lunnlew/m3u-filter/internal/pipeline/core"
	"github.com/lunnlew/m3u-filter/internal/testutil"
)

func newState(tracks ...*models.Track) *core.State {
	set := testutil.NewRuleSet("curated")
	set.ID = models.NewULID()
	state := core.NewState(set)
	state.Tracks = tracks
	return state
}

func TestGenerateM3U_Content(t *testing.T) {
	sourceID := models.NewULID()
	track := testutil.NewTrack(sourceID, "NewsFirst 24", "News")
	track.TvgID = "newsfirst.24"
	track.TvgLogo = "http://logos.example.com/nf24.png"

	state := newState(track)
	result, err := New().Execute(context.Background(), state)
	require.NoError(t, err)

	content := string(state.Content)
	lines := strings.Split(strings.TrimSpace(content), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "#EXTM3U", lines[0])
	assert.Contains(t, lines[1], `tvg-id="newsfirst.24"`)
	assert.Contains(t, lines[1], `group-title="News"`)
	assert.True(t, strings.HasSuffix(lines[1], ",NewsFirst 24"))
	assert.Equal(t, track.StreamURL, lines[2])

	assert.Equal(t, 1, state.TrackCount)
	assert.Equal(t, 1, result.RecordsProcessed)
	require.Len(t, result.Artifacts, 1)
	assert.Equal(t, len(state.Content), result.Artifacts[0].ByteSize)
}

func TestGenerateM3U_HeaderCarriesTvgURL(t *testing.T) {
	state := newState()
	state.TvgURL = "http://epg.example.com/guide.xml"

	_, err := New().Execute(context.Background(), state)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(string(state.Content),
		`#EXTM3U x-tvg-url="http://epg.example.com/guide.xml"`))
	assert.Equal(t, 0, state.TrackCount)
}

func TestGenerateM3U_TvgIDFallbackChain(t *testing.T) {
	sourceID := models.NewULID()

	tests := []struct {
		name    string
		tvgID   string
		tvgName string
		want    string
	}{
		{name: "tvg-id wins", tvgID: "cinemamax.1", tvgName: "CinemaMax", want: `tvg-id="cinemamax.1"`},
		{name: "tvg-name next", tvgName: "CinemaMax", want: `tvg-id="CinemaMax"`},
		{name: "display name last", want: `tvg-id="CinemaMax One"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			track := testutil.NewTrack(sourceID, "CinemaMax One", "Movies")
			track.TvgID = tt.tvgID
			track.TvgName = tt.tvgName

			state := newState(track)
			_, err := New().Execute(context.Background(), state)
			require.NoError(t, err)

			assert.Contains(t, string(state.Content), tt.want)
		})
	}
}

func TestGenerateM3U_EmptyURLSkippedWithWarning(t *testing.T) {
	sourceID := models.NewULID()
	broken := testutil.NewTrack(sourceID, "GlobalStream Broken", "Entertainment")
	broken.StreamURL = ""
	ok := testutil.NewTrack(sourceID, "GlobalStream One", "Entertainment")

	state := newState(broken, ok)
	_, err := New().Execute(context.Background(), state)
	require.NoError(t, err)

	assert.Equal(t, 1, state.TrackCount)
	assert.NotContains(t, string(state.Content), "GlobalStream Broken")
	require.True(t, state.HasErrors())
	assert.Contains(t, state.Errors[0].Error(), "empty stream URL")
}

func TestGenerateM3U_Deterministic(t *testing.T) {
	sourceID := models.NewULID()
	tracks := testutil.RandomTracks(sourceID, 50, 9)

	first := newState(tracks...)
	_, err := New().Execute(context.Background(), first)
	require.NoError(t, err)

	second := newState(tracks...)
	_, err = New().Execute(context.Background(), second)
	require.NoError(t, err)

	assert.Equal(t, first.Content, second.Content)
}

func TestGenerateM3U_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	state := newState(testutil.NewTrack(models.NewULID(), "NewsFirst 24", "News"))
	_, err := New().Execute(ctx, state)
	assert.ErrorIs(t, err, context.Canceled)
}
