package groupmapping

import (
	"context"
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

func TestGroupMapping_RewritesGroupAndName(t *testing.T) {
	sourceID := models.NewULID()
	mapped := testutil.NewTrack(sourceID, "NewsFirst 24", "News")
	untouched := testutil.NewTrack(sourceID, "CinemaMax One", "Movies")

	state := newState(mapped, untouched)
	state.GroupMappings = []*models.GroupMapping{
		{ChannelName: "NewsFirst 24", CustomGroup: "World News", DisplayName: "NewsFirst"},
	}

	result, err := New().Execute(context.Background(), state)
	require.NoError(t, err)

	assert.Equal(t, "World News", mapped.GroupTitle)
	assert.Equal(t, "NewsFirst", mapped.Name)
	assert.Equal(t, "Movies", untouched.GroupTitle)
	assert.Equal(t, 2, result.RecordsProcessed)
	assert.Equal(t, 1, result.RecordsModified)
}

func TestGroupMapping_ScopedWinsOverGlobal(t *testing.T) {
	sourceID := models.NewULID()
	track := testutil.NewTrack(sourceID, "SportsCentral Arena", "Sports")

	state := newState(track)
	scopedID := state.RuleSetID
	state.GroupMappings = []*models.GroupMapping{
		{ChannelName: "SportsCentral Arena", CustomGroup: "Global Sports"},
		{ChannelName: "SportsCentral Arena", CustomGroup: "Premium Sports", RuleSetID: &scopedID},
	}

	_, err := New().Execute(context.Background(), state)
	require.NoError(t, err)
	assert.Equal(t, "Premium Sports", track.GroupTitle)
}

func TestGroupMapping_OtherScopeIgnored(t *testing.T) {
	sourceID := models.NewULID()
	track := testutil.NewTrack(sourceID, "MusicMax Live", "Music")

	state := newState(track)
	otherID := models.NewULID()
	state.GroupMappings = []*models.GroupMapping{
		{ChannelName: "MusicMax Live", CustomGroup: "Audio", RuleSetID: &otherID},
	}

	result, err := New().Execute(context.Background(), state)
	require.NoError(t, err)
	assert.Equal(t, "Music", track.GroupTitle)
	assert.Equal(t, 0, result.RecordsModified)
}

func TestGroupMapping_NoMappingsIsNoop(t *testing.T) {
	sourceID := models.NewULID()
	tracks := testutil.RandomTracks(sourceID, 10, 11)

	state := newState(tracks...)
	result, err := New().Execute(context.Background(), state)
	require.NoError(t, err)
	assert.Equal(t, 0, result.RecordsModified)
}
