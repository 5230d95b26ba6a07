package models

import "time"

// TestStatus describes the last-known availability of a track's stream.
// A nil *bool on Track means the stream has never been probed.
type TestStatus int

const (
	// TestStatusUnknown means the track has not been probed yet.
	TestStatusUnknown TestStatus = iota

	// TestStatusAvailable means the last probe succeeded.
	TestStatusAvailable

	// TestStatusUnavailable means the last probe failed.
	TestStatusUnavailable
)

// String returns the string form of the test status.
func (s TestStatus) String() string {
	switch s {
	case TestStatusAvailable:
		return "available"
	case TestStatusUnavailable:
		return "unavailable"
	default:
		return "unknown"
	}
}

// Track represents an individual stream entry synced from a stream source.
// Tracks are read-only inputs to playlist generation; the engine operates on
// per-run copies and never mutates the stored records.
type Track struct {
	BaseModel

	// SourceID is the foreign key to the parent StreamSource.
	SourceID ULID `gorm:"type:varchar(26);not null;index" json:"source_id"`

	// Name is the display name (from the EXTINF title).
	Name string `gorm:"not null;size:512;index" json:"name"`

	// StreamURL is the actual stream URL.
	StreamURL string `gorm:"not null;size:4096" json:"stream_url"`

	// GroupTitle is the category/group from the M3U group-title attribute.
	GroupTitle string `gorm:"size:255;index" json:"group_title,omitempty"`

	// TvgID is the EPG channel identifier for matching with program data.
	TvgID string `gorm:"size:255;index" json:"tvg_id,omitempty"`

	// TvgName is the display name from the M3U tvg-name attribute.
	TvgName string `gorm:"size:512" json:"tvg_name,omitempty"`

	// TvgLogo is the URL to the channel logo.
	TvgLogo string `gorm:"size:2048" json:"tvg_logo,omitempty"`

	// Language is the channel language if known.
	Language string `gorm:"size:50" json:"language,omitempty"`

	// Catchup is the catchup mode advertised by the source, if any.
	Catchup string `gorm:"size:50" json:"catchup,omitempty"`

	// CatchupSource is the catchup URL template, if any.
	CatchupSource string `gorm:"size:4096" json:"catchup_source,omitempty"`

	// Resolution is the probed vertical resolution token (e.g. "1080p").
	// Empty when the stream has not been probed.
	Resolution string `gorm:"size:20" json:"resolution,omitempty"`

	// Bitrate is the probed bitrate in kbps. Nil when unknown.
	Bitrate *int `json:"bitrate,omitempty"`

	// FrameRate is the probed frame rate. Nil when unknown.
	FrameRate *float64 `json:"frame_rate,omitempty"`

	// TestStatus is the last-known availability. Nil means never probed.
	TestStatus *bool `json:"test_status,omitempty"`

	// TestLatency is the last probe latency in seconds. Nil when unknown.
	TestLatency *float64 `json:"test_latency,omitempty"`

	// DownloadSpeed is the last measured download speed in KB/s.
	DownloadSpeed *float64 `json:"download_speed,omitempty"`

	// QualityScore is a composite score assigned by the probing collaborator.
	QualityScore *float64 `json:"quality_score,omitempty"`

	// LastTestedAt records when the stream was last probed.
	LastTestedAt *time.Time `json:"last_tested_at,omitempty"`

	// Source is the relationship back to the parent StreamSource.
	Source *StreamSource `gorm:"foreignKey:SourceID" json:"source,omitempty"`
}

// TableName returns the table name for Track.
func (Track) TableName() string {
	return "stream_tracks"
}

// Validate checks required track fields.
func (t *Track) Validate() error {
	if t.Name == "" {
		return ErrNameRequired
	}
	if t.StreamURL == "" {
		return ErrStreamURLRequired
	}
	if t.SourceID.IsZero() {
		return ErrSourceIDRequired
	}
	return nil
}

// Status returns the tri-state availability of the track.
func (t *Track) Status() TestStatus {
	if t.TestStatus == nil {
		return TestStatusUnknown
	}
	if *t.TestStatus {
		return TestStatusAvailable
	}
	return TestStatusUnavailable
}

// SourceName returns the name of the owning source, or "" when not loaded.
func (t *Track) SourceName() string {
	if t.Source == nil {
		return ""
	}
	return t.Source.Name
}

// HasCatchup reports whether the track advertises catchup capability.
func (t *Track) HasCatchup() bool {
	return t.Catchup != "" || t.CatchupSource != ""
}

// Clone returns a shallow copy of the track for per-run mutation by the
// generation pipeline. Pointer fields stay shared; the pipeline only
// rewrites Name and GroupTitle.
func (t *Track) Clone() *Track {
	c := *t
	return &c
}
