package generatetxt

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

func TestGenerateTXT_Content(t *testing.T) {
	sourceID := models.NewULID()
	news := testutil.NewTrack(sourceID, "NewsFirst 24", "News")
	movies := testutil.NewTrack(sourceID, "CinemaMax One", "Movies")

	state := newState(news, movies)
	result, err := New().Execute(context.Background(), state)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(state.Content)), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "News,NewsFirst 24,"+news.StreamURL, lines[0])
	assert.Equal(t, "Movies,CinemaMax One,"+movies.StreamURL, lines[1])
	assert.Equal(t, 2, state.TrackCount)
	assert.Equal(t, 2, result.RecordsProcessed)
}

func TestGenerateTXT_NoHeader(t *testing.T) {
	sourceID := models.NewULID()
	state := newState(testutil.NewTrack(sourceID, "MusicMax Live", "Music"))

	_, err := New().Execute(context.Background(), state)
	require.NoError(t, err)
	assert.False(t, strings.HasPrefix(string(state.Content), "#"),
		"plain text output carries no header line")
}

func TestGenerateTXT_EmptyURLSkippedWithWarning(t *testing.T) {
	sourceID := models.NewULID()
	broken := testutil.NewTrack(sourceID, "GlobalStream Broken", "Entertainment")
	broken.StreamURL = ""

	state := newState(broken)
	_, err := New().Execute(context.Background(), state)
	require.NoError(t, err)

	assert.Equal(t, 0, state.TrackCount)
	assert.Empty(t, state.Content)
	assert.True(t, state.HasErrors())
}

func TestGenerateTXT_EmptyCatalog(t *testing.T) {
	state := newState()
	_, err := New().Execute(context.Background(), state)
	require.NoError(t, err)
	assert.Empty(t, state.Content)
	assert.Equal(t, 0, state.TrackCount)
}
