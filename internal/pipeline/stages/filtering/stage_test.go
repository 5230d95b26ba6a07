package filtering

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lunnlew/m3u-filter/internal/models"
	"github.com/lunnlew/m3u-filter/internal/pipeline/core"
	"github.com/lunnlew/m3u-filter/internal/rules"
	"github.com/lunnlew/m3u-filter/internal/testutil"
)

func newStateWithRules(logic models.LogicType, ruleDefs ...*models.Rule) *core.State {
	set := testutil.NewRuleSet("curated")
	set.ID = models.NewULID()
	set.LogicType = logic
	for i, r := range ruleDefs {
		r.ID = models.NewULID()
		set.Rules = append(set.Rules, models.RuleSetRule{
			RuleSetID: set.ID,
			RuleID:    r.ID,
			Position:  i,
			Rule:      r,
		})
	}
	return core.NewState(set)
}

func TestFiltering_KeepsMatchingTracks(t *testing.T) {
	sourceID := models.NewULID()
	state := newStateWithRules(models.LogicTypeAND,
		testutil.NewRule("sports", models.RuleTypeGroup, "sports"))
	state.Tracks = []*models.Track{
		testutil.NewTrack(sourceID, "SportsCentral Arena", "Sports"),
		testutil.NewTrack(sourceID, "CinemaMax One", "Movies"),
		testutil.NewTrack(sourceID, "SportsCentral Extra", "Sports"),
	}

	result, err := New().Execute(context.Background(), state)
	require.NoError(t, err)

	require.Len(t, state.Tracks, 2)
	assert.Equal(t, "SportsCentral Arena", state.Tracks[0].Name)
	assert.Equal(t, "SportsCentral Extra", state.Tracks[1].Name)
	assert.Equal(t, 3, result.RecordsProcessed)
	assert.Equal(t, 1, result.RecordsModified)
}

func TestFiltering_ConfigErrorAbortsBeforeEvaluation(t *testing.T) {
	bad := testutil.NewRule("broken", models.RuleTypeName, "[unclosed")
	bad.RegexMode = true
	state := newStateWithRules(models.LogicTypeAND, bad)
	state.Tracks = []*models.Track{
		testutil.NewTrack(models.NewULID(), "NewsFirst 24", "News"),
	}

	_, err := New().Execute(context.Background(), state)
	require.Error(t, err)
	assert.True(t, rules.IsConfigError(err))
	assert.ErrorIs(t, err, rules.ErrInvalidRulePattern)
	assert.Len(t, state.Tracks, 1, "the catalog is untouched on a configuration error")
}

func TestFiltering_CycleAbortsRun(t *testing.T) {
	state := newStateWithRules(models.LogicTypeAND)
	other := testutil.NewRuleSet("other")
	other.ID = models.NewULID()
	state.RuleSet.Children = append(state.RuleSet.Children,
		models.RuleSetChild{ParentID: state.RuleSetID, ChildID: other.ID})
	other.Children = append(other.Children,
		models.RuleSetChild{ParentID: other.ID, ChildID: state.RuleSetID})
	state.RuleSets[other.ID] = other

	_, err := New().Execute(context.Background(), state)
	require.Error(t, err)
	assert.ErrorIs(t, err, rules.ErrCyclicRuleSet)
}

func TestFiltering_VacuousSetKeepsEverything(t *testing.T) {
	sourceID := models.NewULID()
	state := newStateWithRules(models.LogicTypeAND)
	state.Tracks = testutil.RandomTracks(sourceID, 20, 3)

	result, err := New().Execute(context.Background(), state)
	require.NoError(t, err)
	assert.Len(t, state.Tracks, 20)
	assert.Equal(t, 0, result.RecordsModified)
}

func TestFiltering_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	state := newStateWithRules(models.LogicTypeAND)
	state.Tracks = []*models.Track{
		testutil.NewTrack(models.NewULID(), "NewsFirst 24", "News"),
	}

	_, err := New().Execute(ctx, state)
	assert.ErrorIs(t, err, context.Canceled)
}
