package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lunnlew/m3u-filter/internal/models"
	"github.com/lunnlew/m3u-filter/internal/testutil"
)

func compileTestRule(t *testing.T, rule *models.Rule) *CompiledRule {
	t.Helper()
	compiled, err := CompileRule(rule)
	require.NoError(t, err)
	return compiled
}

func TestCompileRule_InvalidRegex(t *testing.T) {
	rule := testutil.NewRule("bad regex", models.RuleTypeName, "[unclosed")
	rule.RegexMode = true

	_, err := CompileRule(rule)
	require.Error(t, err)
	assert.True(t, IsConfigError(err))
	assert.ErrorIs(t, err, ErrInvalidRulePattern)
}

func TestCompileRule_InvalidResolutionToken(t *testing.T) {
	rule := testutil.NewRule("bad resolution", models.RuleTypeResolution, "1080i")

	_, err := CompileRule(rule)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidRulePattern)
}

func TestCompileRule_InvalidBitratePattern(t *testing.T) {
	for _, pattern := range []string{"abc", "1000", "-500--100", "5000-1000"} {
		rule := testutil.NewRule("bad bitrate", models.RuleTypeBitrate, pattern)
		_, err := CompileRule(rule)
		require.Error(t, err, "pattern %q should not compile", pattern)
		assert.ErrorIs(t, err, ErrInvalidRulePattern)
	}
}

func TestCompileRule_InvalidStatusPattern(t *testing.T) {
	rule := testutil.NewRule("bad status", models.RuleTypeStatus, "unknown")

	_, err := CompileRule(rule)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidRulePattern)
}

func TestMatcher_NameSubstring(t *testing.T) {
	sourceID := models.NewULID()
	track := testutil.NewTrack(sourceID, "StreamCast News HD", "News")

	rule := compileTestRule(t, testutil.NewRule("news", models.RuleTypeName, "news"))
	assert.True(t, rule.Matches(track), "substring match is case-insensitive by default")

	sensitive := testutil.NewRule("news cs", models.RuleTypeName, "news")
	sensitive.CaseSensitive = true
	assert.False(t, compileTestRule(t, sensitive).Matches(track))

	sensitiveUpper := testutil.NewRule("News cs", models.RuleTypeName, "News")
	sensitiveUpper.CaseSensitive = true
	assert.True(t, compileTestRule(t, sensitiveUpper).Matches(track))
}

func TestMatcher_NameRegex(t *testing.T) {
	sourceID := models.NewULID()
	track := testutil.NewTrack(sourceID, "ViewMedia Sports 2", "Sports")

	rule := testutil.NewRule("numbered sports", models.RuleTypeName, `sports \d+$`)
	rule.RegexMode = true
	assert.True(t, compileTestRule(t, rule).Matches(track))

	rule = testutil.NewRule("anchored", models.RuleTypeName, `^Sports`)
	rule.RegexMode = true
	rule.CaseSensitive = true
	assert.False(t, compileTestRule(t, rule).Matches(track))
}

func TestMatcher_GroupAndSourceName(t *testing.T) {
	sourceID := models.NewULID()
	track := testutil.NewTrack(sourceID, "AeroVision One", "Documentary")
	track.Source = &models.StreamSource{Name: "northern-feed"}

	group := compileTestRule(t, testutil.NewRule("docs", models.RuleTypeGroup, "document"))
	assert.True(t, group.Matches(track))

	source := compileTestRule(t, testutil.NewRule("feed", models.RuleTypeSourceName, "northern"))
	assert.True(t, source.Matches(track))

	// Without a preloaded source the source name is empty and never matches.
	track.Source = nil
	assert.False(t, source.Matches(track))
}

func TestMatcher_KeywordMatchesAnyField(t *testing.T) {
	sourceID := models.NewULID()
	rule := compileTestRule(t, testutil.NewRule("kw", models.RuleTypeKeyword, "central"))

	byName := testutil.NewTrack(sourceID, "SportsCentral Arena", "Sports")
	assert.True(t, rule.Matches(byName))

	byGroup := testutil.NewTrack(sourceID, "GlobalStream One", "Central Europe")
	assert.True(t, rule.Matches(byGroup))

	byURL := testutil.NewTrack(sourceID, "GlobalStream Two", "Movies")
	byURL.StreamURL = "http://central.example.com/live/index.m3u8"
	assert.True(t, rule.Matches(byURL))

	noMatch := testutil.NewTrack(sourceID, "PrimeTV Kids", "Kids")
	assert.False(t, rule.Matches(noMatch))
}

func TestMatcher_EmptyFieldNeverMatches(t *testing.T) {
	sourceID := models.NewULID()
	track := testutil.NewTrack(sourceID, "NationalNet Movies", "")

	rule := testutil.NewRule("any group", models.RuleTypeGroup, ".*")
	rule.RegexMode = true
	assert.False(t, compileTestRule(t, rule).Matches(track),
		"an absent field never matches, even a match-anything regex")
}

func TestMatcher_ResolutionExactToken(t *testing.T) {
	sourceID := models.NewULID()
	rule := compileTestRule(t, testutil.NewRule("hd", models.RuleTypeResolution, "1080p"))

	hd := testutil.NewProbedTrack(sourceID, "CinemaMax HD", "Movies", "1080p", 4000, 80)
	assert.True(t, rule.Matches(hd))

	uhd := testutil.NewProbedTrack(sourceID, "CinemaMax UHD", "Movies", "4k", 12000, 95)
	assert.False(t, rule.Matches(uhd), "resolution matching is exact, not ordered")

	unprobed := testutil.NewTrack(sourceID, "CinemaMax", "Movies")
	assert.False(t, rule.Matches(unprobed))

	odd := testutil.NewTrack(sourceID, "CinemaMax Odd", "Movies")
	odd.Resolution = "540p"
	assert.False(t, rule.Matches(odd), "values outside the token set never match")
}

func TestMatcher_BitrateRange(t *testing.T) {
	sourceID := models.NewULID()

	tests := []struct {
		name    string
		pattern string
		bitrate int
		want    bool
	}{
		{"inside closed range", "1000-5000", 3000, true},
		{"below closed range", "1000-5000", 800, false},
		{"above closed range", "1000-5000", 6000, false},
		{"min bound inclusive", "1000-5000", 1000, true},
		{"max bound inclusive", "1000-5000", 5000, true},
		{"open max", "2000-", 9000, true},
		{"open max below min", "2000-", 1999, false},
		{"open min", "-1500", 1500, true},
		{"open min above max", "-1500", 1501, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rule := compileTestRule(t, testutil.NewRule("bitrate", models.RuleTypeBitrate, tt.pattern))
			track := testutil.NewProbedTrack(sourceID, "MusicMax Live", "Music", "720p", tt.bitrate, 50)
			assert.Equal(t, tt.want, rule.Matches(track))
		})
	}
}

func TestMatcher_BitrateUnknownNeverMatches(t *testing.T) {
	sourceID := models.NewULID()
	track := testutil.NewTrack(sourceID, "NewsFirst 24", "News")

	rule := compileTestRule(t, testutil.NewRule("any bitrate", models.RuleTypeBitrate, "-"))
	assert.False(t, rule.Matches(track), "a track without a probed bitrate never matches")
}

func TestMatcher_Status(t *testing.T) {
	sourceID := models.NewULID()
	available := true
	unavailable := false

	up := testutil.NewTrack(sourceID, "StreamCast One", "Entertainment")
	up.TestStatus = &available
	down := testutil.NewTrack(sourceID, "StreamCast Two", "Entertainment")
	down.TestStatus = &unavailable
	unprobed := testutil.NewTrack(sourceID, "StreamCast Three", "Entertainment")

	availRule := compileTestRule(t, testutil.NewRule("up", models.RuleTypeStatus, "available"))
	assert.True(t, availRule.Matches(up))
	assert.False(t, availRule.Matches(down))
	assert.False(t, availRule.Matches(unprobed), "unprobed matches neither polarity")

	downRule := compileTestRule(t, testutil.NewRule("down", models.RuleTypeStatus, "offline"))
	assert.True(t, downRule.Matches(down))
	assert.False(t, downRule.Matches(up))
	assert.False(t, downRule.Matches(unprobed))
}
