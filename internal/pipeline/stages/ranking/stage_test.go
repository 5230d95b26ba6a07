package ranking

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lunnlew/m3u-filter/internal/models"
	"github.com/lunnlew/m3u-filter/internal/pipeline/core"
	"github.com/lunnlew/m3u-filter/internal/testutil"
)

func newState(maxPerChannel int, tracks ...*models.Track) *core.State {
	set := testutil.NewRuleSet("curated")
	set.ID = models.NewULID()
	state := core.NewState(set)
	state.MaxPerChannel = maxPerChannel
	state.Tracks = tracks
	return state
}

func TestRanking_KeepsBestByQualityScore(t *testing.T) {
	sourceID := models.NewULID()
	low := testutil.NewProbedTrack(sourceID, "CinemaMax One", "Movies", "720p", 2000, 40)
	high := testutil.NewProbedTrack(sourceID, "CinemaMax One", "Movies", "720p", 2000, 90)
	mid := testutil.NewProbedTrack(sourceID, "CinemaMax One", "Movies", "720p", 2000, 60)

	state := newState(1, low, high, mid)
	result, err := New().Execute(context.Background(), state)
	require.NoError(t, err)

	require.Len(t, state.Tracks, 1)
	assert.Same(t, high, state.Tracks[0])
	assert.Equal(t, 2, result.RecordsModified)
}

func TestRanking_ResolutionBreaksScoreTie(t *testing.T) {
	sourceID := models.NewULID()
	sd := testutil.NewProbedTrack(sourceID, "NewsFirst 24", "News", "480p", 1000, 50)
	hd := testutil.NewProbedTrack(sourceID, "NewsFirst 24", "News", "1080p", 4000, 50)

	state := newState(1, sd, hd)
	_, err := New().Execute(context.Background(), state)
	require.NoError(t, err)

	require.Len(t, state.Tracks, 1)
	assert.Same(t, hd, state.Tracks[0])
}

func TestRanking_DownloadSpeedBreaksResolutionTie(t *testing.T) {
	sourceID := models.NewULID()
	slow := testutil.NewProbedTrack(sourceID, "SportsCentral Arena", "Sports", "1080p", 4000, 50)
	slowSpeed := 500.0
	slow.DownloadSpeed = &slowSpeed
	fast := testutil.NewProbedTrack(sourceID, "SportsCentral Arena", "Sports", "1080p", 4000, 50)
	fastSpeed := 2000.0
	fast.DownloadSpeed = &fastSpeed

	state := newState(1, slow, fast)
	_, err := New().Execute(context.Background(), state)
	require.NoError(t, err)

	require.Len(t, state.Tracks, 1)
	assert.Same(t, fast, state.Tracks[0])
}

func TestRanking_FullTieKeepsInputOrder(t *testing.T) {
	sourceID := models.NewULID()
	first := testutil.NewProbedTrack(sourceID, "MusicMax Live", "Music", "720p", 2000, 50)
	second := testutil.NewProbedTrack(sourceID, "MusicMax Live", "Music", "720p", 2000, 50)

	state := newState(1, first, second)
	_, err := New().Execute(context.Background(), state)
	require.NoError(t, err)

	require.Len(t, state.Tracks, 1)
	assert.Same(t, first, state.Tracks[0], "stable sort keeps the earlier track on a full tie")
}

func TestRanking_SurvivorsKeepPositions(t *testing.T) {
	sourceID := models.NewULID()
	a := testutil.NewProbedTrack(sourceID, "NewsFirst 24", "News", "720p", 2000, 40)
	b := testutil.NewProbedTrack(sourceID, "CinemaMax One", "Movies", "1080p", 4000, 80)
	c := testutil.NewProbedTrack(sourceID, "NewsFirst 24", "News", "1080p", 4000, 90)

	state := newState(1, a, b, c)
	_, err := New().Execute(context.Background(), state)
	require.NoError(t, err)

	// c wins the NewsFirst bucket but keeps its original slot after b.
	require.Len(t, state.Tracks, 2)
	assert.Same(t, b, state.Tracks[0])
	assert.Same(t, c, state.Tracks[1])
}

func TestRanking_ZeroCapDisablesTrimming(t *testing.T) {
	sourceID := models.NewULID()
	tracks := []*models.Track{
		testutil.NewProbedTrack(sourceID, "GlobalStream One", "Entertainment", "720p", 2000, 40),
		testutil.NewProbedTrack(sourceID, "GlobalStream One", "Entertainment", "1080p", 4000, 80),
	}

	state := newState(0, tracks...)
	result, err := New().Execute(context.Background(), state)
	require.NoError(t, err)
	assert.Len(t, state.Tracks, 2)
	assert.Equal(t, "Ranking disabled", result.Message)
}

func TestRanking_SameNameDifferentGroupsNotBucketed(t *testing.T) {
	sourceID := models.NewULID()
	news := testutil.NewProbedTrack(sourceID, "AeroVision One", "News", "720p", 2000, 40)
	docs := testutil.NewProbedTrack(sourceID, "AeroVision One", "Documentary", "720p", 2000, 40)

	state := newState(1, news, docs)
	_, err := New().Execute(context.Background(), state)
	require.NoError(t, err)
	assert.Len(t, state.Tracks, 2, "ranking buckets on the (group, name) pair")
}

func TestRanking_UnprobedRanksLowest(t *testing.T) {
	sourceID := models.NewULID()
	unprobed := testutil.NewTrack(sourceID, "PrimeTV Kids", "Kids")
	probed := testutil.NewProbedTrack(sourceID, "PrimeTV Kids", "Kids", "480p", 800, 10)

	state := newState(1, unprobed, probed)
	_, err := New().Execute(context.Background(), state)
	require.NoError(t, err)

	require.Len(t, state.Tracks, 1)
	assert.Same(t, probed, state.Tracks[0])
}
