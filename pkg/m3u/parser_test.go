package m3u

import (
	"bytes"
	"compress/gzip"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseAll(t *testing.T, input string) []*Entry {
	t.Helper()
	var entries []*Entry
	p := &Parser{
		OnEntry: func(e *Entry) error {
			entries = append(entries, e)
			return nil
		},
	}
	require.NoError(t, p.Parse(strings.NewReader(input)))
	return entries
}

func TestParser_BasicPlaylist(t *testing.T) {
	input := `#EXTM3U
#EXTINF:-1 tvg-id="streamcast.one" tvg-name="StreamCast One" tvg-logo="http://logos.example.com/sc1.png" group-title="Entertainment",StreamCast One
http://streams.example.com/streamcast-one/index.m3u8
#EXTINF:-1 group-title="News",NewsFirst 24
http://streams.example.com/newsfirst-24/index.m3u8
`

	entries := parseAll(t, input)
	require.Len(t, entries, 2)

	first := entries[0]
	assert.Equal(t, -1, first.Duration)
	assert.Equal(t, "streamcast.one", first.TvgID)
	assert.Equal(t, "StreamCast One", first.TvgName)
	assert.Equal(t, "http://logos.example.com/sc1.png", first.TvgLogo)
	assert.Equal(t, "Entertainment", first.GroupTitle)
	assert.Equal(t, "StreamCast One", first.Title)
	assert.Equal(t, "http://streams.example.com/streamcast-one/index.m3u8", first.URL)

	second := entries[1]
	assert.Equal(t, "News", second.GroupTitle)
	assert.Equal(t, "NewsFirst 24", second.Title)
}

func TestParser_CommaInsideQuotedAttribute(t *testing.T) {
	input := `#EXTM3U
#EXTINF:-1 group-title="News, World",NewsFirst World
http://streams.example.com/newsfirst-world/index.m3u8
`

	entries := parseAll(t, input)
	require.Len(t, entries, 1)
	assert.Equal(t, "News, World", entries[0].GroupTitle)
	assert.Equal(t, "NewsFirst World", entries[0].Title)
}

func TestParser_CatchupAttributes(t *testing.T) {
	input := `#EXTINF:-1 tvg-id="primetv.kids" catchup="shift" catchup-source="http://archive.example.com/${start}-${end}/kids.m3u8",PrimeTV Kids
http://streams.example.com/primetv-kids/index.m3u8
`

	entries := parseAll(t, input)
	require.Len(t, entries, 1)
	assert.Equal(t, "shift", entries[0].Catchup)
	assert.Equal(t, "http://archive.example.com/${start}-${end}/kids.m3u8", entries[0].CatchupSource)
}

func TestParser_UnknownAttributesGoToExtra(t *testing.T) {
	input := `#EXTINF:-1 tvg-shift="2" radio="true",MusicMax Live
http://streams.example.com/musicmax-live/index.m3u8
`

	entries := parseAll(t, input)
	require.Len(t, entries, 1)
	assert.Equal(t, "2", entries[0].Extra["tvg-shift"])
	assert.Equal(t, "true", entries[0].Extra["radio"])
}

func TestParser_SkipsCommentsAndBlankLines(t *testing.T) {
	input := `#EXTM3U

# a playlist comment
#EXTINF:-1,AeroVision One

http://streams.example.com/aerovision-one/index.m3u8
#EXTGRP:Documentary
`

	entries := parseAll(t, input)
	require.Len(t, entries, 1)
	assert.Equal(t, "AeroVision One", entries[0].Title)
}

func TestParser_MalformedExtinfReportedAndSkipped(t *testing.T) {
	input := `#EXTM3U
#EXTINF:not-a-duration,Broken
http://streams.example.com/broken/index.m3u8
#EXTINF:-1,GlobalStream One
http://streams.example.com/globalstream-one/index.m3u8
`

	var entries []*Entry
	var errLines []int
	p := &Parser{
		OnEntry: func(e *Entry) error {
			entries = append(entries, e)
			return nil
		},
		OnError: func(lineNum int, err error) {
			errLines = append(errLines, lineNum)
		},
	}
	require.NoError(t, p.Parse(strings.NewReader(input)))
	require.Len(t, entries, 1)
	assert.Equal(t, "GlobalStream One", entries[0].Title)
	assert.Equal(t, []int{2}, errLines)
}

func TestParser_RequiresOnEntry(t *testing.T) {
	p := &Parser{}
	assert.Error(t, p.Parse(strings.NewReader("#EXTM3U\n")))
}

func TestParseCompressed_Gzip(t *testing.T) {
	plain := `#EXTM3U
#EXTINF:-1 group-title="Sports",SportsCentral Arena
http://streams.example.com/sportscentral-arena/index.m3u8
`
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	_, err := gz.Write([]byte(plain))
	require.NoError(t, err)
	require.NoError(t, gz.Close())

	var entries []*Entry
	p := &Parser{OnEntry: func(e *Entry) error {
		entries = append(entries, e)
		return nil
	}}
	require.NoError(t, p.ParseCompressed(&buf))
	require.Len(t, entries, 1)
	assert.Equal(t, "SportsCentral Arena", entries[0].Title)
}

func TestParseCompressed_PassthroughPlain(t *testing.T) {
	plain := "#EXTINF:-1,ViewMedia One\nhttp://streams.example.com/viewmedia-one/index.m3u8\n"

	var entries []*Entry
	p := &Parser{OnEntry: func(e *Entry) error {
		entries = append(entries, e)
		return nil
	}}
	require.NoError(t, p.ParseCompressed(strings.NewReader(plain)))
	require.Len(t, entries, 1)
}
