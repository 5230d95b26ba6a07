package models

import "time"

// StreamSourceType identifies the playlist format of a stream source.
type StreamSourceType string

const (
	// StreamSourceTypeM3U is a standard extended M3U playlist.
	StreamSourceTypeM3U StreamSourceType = "m3u"

	// StreamSourceTypeM3U8 is a UTF-8 M3U playlist.
	StreamSourceTypeM3U8 StreamSourceType = "m3u8"

	// StreamSourceTypeTXT is a plain text group,name,url list.
	StreamSourceTypeTXT StreamSourceType = "txt"
)

// StreamSource represents an upstream playlist provider. Fetching and
// probing are owned by the source-sync collaborator; the engine only reads
// these records for serializer metadata (x-tvg-url, catchup defaults) and
// source-name rule matching.
type StreamSource struct {
	BaseModel

	// Name is a human-readable name for this source.
	Name string `gorm:"size:255;not null;uniqueIndex" json:"name"`

	// URL is the upstream playlist URL.
	URL string `gorm:"size:4096;not null" json:"url"`

	// Type is the playlist format.
	Type StreamSourceType `gorm:"size:20;not null;default:'m3u'" json:"type"`

	// IsActive determines whether the source participates in syncs.
	IsActive bool `gorm:"default:true" json:"is_active"`

	// SyncInterval is the sync cadence in hours for the external scheduler.
	SyncInterval int `gorm:"default:6" json:"sync_interval"`

	// XTvgURL is the EPG URL advertised in generated M3U headers.
	XTvgURL string `gorm:"size:4096" json:"x_tvg_url,omitempty"`

	// Catchup is the source-wide catchup mode, if any.
	Catchup string `gorm:"size:50" json:"catchup,omitempty"`

	// CatchupSource is the source-wide catchup URL template, if any.
	CatchupSource string `gorm:"size:4096" json:"catchup_source,omitempty"`

	// LastSyncAt records the last successful sync.
	LastSyncAt *time.Time `json:"last_sync_at,omitempty"`
}

// TableName returns the table name for StreamSource.
func (StreamSource) TableName() string {
	return "stream_sources"
}

// Validate checks required source fields.
func (s *StreamSource) Validate() error {
	if s.Name == "" {
		return ErrNameRequired
	}
	if s.URL == "" {
		return ErrURLRequired
	}
	if s.Type == "" {
		s.Type = StreamSourceTypeM3U
	}
	switch s.Type {
	case StreamSourceTypeM3U, StreamSourceTypeM3U8, StreamSourceTypeTXT:
	default:
		return ErrInvalidSourceType
	}
	return nil
}
