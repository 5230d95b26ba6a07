// Package testutil provides test utilities including sample data generation.
package testutil

import (
	"fmt"
	"math/rand"

	"github.com/lunnlew/m3u-filter/internal/models"
)

// Standard fictional broadcasters for test data.
// NEVER use real brand names like BBC, ESPN, HBO, Sky, etc.
var (
	Broadcasters = []string{
		"StreamCast",
		"ViewMedia",
		"AeroVision",
		"GlobalStream",
		"NationalNet",
		"SportsCentral",
		"CinemaMax",
		"MusicMax",
		"NewsFirst",
		"PrimeTV",
	}

	ChannelVariants = []string{
		"One",
		"Two",
		"Three",
		"Prime",
		"Plus",
		"Max",
	}

	Groups = []string{
		"News",
		"Sports",
		"Movies",
		"Entertainment",
		"Music",
		"Kids",
	}

	Resolutions = []string{"4k", "1080p", "720p", "576p", "480p"}
)

// NewSource returns a stream source with sensible defaults.
func NewSource(name string) *models.StreamSource {
	return &models.StreamSource{
		Name:     name,
		URL:      fmt.Sprintf("https://playlists.example.com/%s.m3u", name),
		Type:     models.StreamSourceTypeM3U,
		IsActive: true,
	}
}

// NewTrack returns a track belonging to the given source.
func NewTrack(sourceID models.ULID, name, group string) *models.Track {
	return &models.Track{
		SourceID:   sourceID,
		Name:       name,
		StreamURL:  fmt.Sprintf("http://streams.example.com/%s/index.m3u8", slugify(name)),
		GroupTitle: group,
	}
}

// NewProbedTrack returns a track with probe results filled in.
func NewProbedTrack(sourceID models.ULID, name, group, resolution string, bitrate int, score float64) *models.Track {
	available := true
	t := NewTrack(sourceID, name, group)
	t.Resolution = resolution
	t.Bitrate = &bitrate
	t.QualityScore = &score
	t.TestStatus = &available
	return t
}

// NewRule returns an enabled include rule.
func NewRule(name string, ruleType models.RuleType, pattern string) *models.Rule {
	return &models.Rule{
		Name:      name,
		Type:      ruleType,
		Pattern:   pattern,
		Action:    models.RuleActionInclude,
		IsEnabled: true,
	}
}

// NewRuleSet returns an enabled AND rule set.
func NewRuleSet(name string) *models.RuleSet {
	return &models.RuleSet{
		Name:      name,
		IsEnabled: true,
		LogicType: models.LogicTypeAND,
	}
}

// RandomTracks generates count tracks spread across the fictional
// broadcasters and groups. Deterministic for a fixed seed.
func RandomTracks(sourceID models.ULID, count int, seed int64) []*models.Track {
	rng := rand.New(rand.NewSource(seed))
	tracks := make([]*models.Track, 0, count)
	for i := 0; i < count; i++ {
		broadcaster := Broadcasters[rng.Intn(len(Broadcasters))]
		variant := ChannelVariants[rng.Intn(len(ChannelVariants))]
		name := fmt.Sprintf("%s %s", broadcaster, variant)
		t := NewTrack(sourceID, name, Groups[rng.Intn(len(Groups))])
		t.StreamURL = fmt.Sprintf("http://streams.example.com/%s/%d/index.m3u8", slugify(name), i)
		t.Resolution = Resolutions[rng.Intn(len(Resolutions))]
		bitrate := 500 + rng.Intn(8000)
		t.Bitrate = &bitrate
		tracks = append(tracks, t)
	}
	return tracks
}

// slugify lowercases and dashes a channel name for use in fake URLs.
func slugify(name string) string {
	out := make([]rune, 0, len(name))
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			out = append(out, r)
		case r >= 'A' && r <= 'Z':
			out = append(out, r+('a'-'A'))
		default:
			out = append(out, '-')
		}
	}
	return string(out)
}
