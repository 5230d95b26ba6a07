package sorting

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lunnlew/m3u-filter/internal/models"
	"github.com/lunnlew/m3u-filter/internal/pipeline/core"
	"github.com/lunnlew/m3u-filter/internal/testutil"
)

func newState(tpl *models.SortTemplate, tracks ...*models.Track) *core.State {
	set := testutil.NewRuleSet("curated")
	set.ID = models.NewULID()
	state := core.NewState(set)
	state.SortTemplate = tpl
	state.Tracks = tracks
	return state
}

func TestSorting_AppliesTemplate(t *testing.T) {
	sourceID := models.NewULID()
	music := testutil.NewTrack(sourceID, "MusicMax Live", "Music")
	news := testutil.NewTrack(sourceID, "NewsFirst 24", "News")
	sports := testutil.NewTrack(sourceID, "SportsCentral Arena", "Sports")

	tpl := &models.SortTemplate{
		Name: "evening",
		GroupOrders: models.GroupOrders{
			{Group: "Sports"},
			{Group: "News"},
		},
	}

	state := newState(tpl, music, news, sports)
	result, err := New().Execute(context.Background(), state)
	require.NoError(t, err)

	require.Len(t, state.Tracks, 3)
	assert.Same(t, sports, state.Tracks[0])
	assert.Same(t, news, state.Tracks[1])
	assert.Same(t, music, state.Tracks[2])
	assert.Equal(t, 3, result.RecordsProcessed)
}

func TestSorting_NilTemplateKeepsOrder(t *testing.T) {
	sourceID := models.NewULID()
	a := testutil.NewTrack(sourceID, "CinemaMax One", "Movies")
	b := testutil.NewTrack(sourceID, "PrimeTV Kids", "Kids")

	state := newState(nil, a, b)
	_, err := New().Execute(context.Background(), state)
	require.NoError(t, err)

	require.Len(t, state.Tracks, 2)
	assert.Same(t, a, state.Tracks[0])
	assert.Same(t, b, state.Tracks[1])
}

func TestSorting_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	state := newState(nil)
	_, err := New().Execute(ctx, state)
	assert.ErrorIs(t, err, context.Canceled)
}
