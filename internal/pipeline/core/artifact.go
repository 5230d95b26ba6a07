package core

import (
	"time"

	"github.com/lunnlew/m3u-filter/internal/models"
)

// ArtifactType identifies the type of content in an artifact.
type ArtifactType string

const (
	// ArtifactTypeTracks represents track data.
	ArtifactTypeTracks ArtifactType = "tracks"

	// ArtifactTypePlaylist represents a serialized playlist.
	ArtifactTypePlaylist ArtifactType = "playlist"
)

// ProcessingStage indicates the processing state of an artifact.
type ProcessingStage string

const (
	// ProcessingStageRaw indicates the unprocessed catalog snapshot.
	ProcessingStageRaw ProcessingStage = "raw"

	// ProcessingStageDeduplicated indicates data after URL deduplication.
	ProcessingStageDeduplicated ProcessingStage = "deduplicated"

	// ProcessingStageFiltered indicates data after rule set filtering.
	ProcessingStageFiltered ProcessingStage = "filtered"

	// ProcessingStageMapped indicates data after group mapping.
	ProcessingStageMapped ProcessingStage = "mapped"

	// ProcessingStageRanked indicates data after per-channel ranking.
	ProcessingStageRanked ProcessingStage = "ranked"

	// ProcessingStageSorted indicates data after template ordering.
	ProcessingStageSorted ProcessingStage = "sorted"

	// ProcessingStageSerialized indicates rendered playlist content.
	ProcessingStageSerialized ProcessingStage = "serialized"
)

// Artifact represents an output from a pipeline stage.
type Artifact struct {
	// ID is a unique identifier for this artifact.
	ID models.ULID

	// Type identifies the content type.
	Type ArtifactType

	// Stage indicates the processing stage.
	Stage ProcessingStage

	// CreatedBy is the stage ID that created this artifact.
	CreatedBy string

	// RecordCount is the number of records in the artifact.
	RecordCount int

	// ByteSize is the serialized size, for playlist artifacts.
	ByteSize int

	// CreatedAt is when the artifact was created.
	CreatedAt time.Time

	// Metadata contains additional artifact-specific data.
	Metadata map[string]any
}

// NewArtifact creates a new artifact with the given type and stage.
func NewArtifact(artifactType ArtifactType, stage ProcessingStage, createdBy string) Artifact {
	return Artifact{
		ID:        models.NewULID(),
		Type:      artifactType,
		Stage:     stage,
		CreatedBy: createdBy,
		CreatedAt: time.Now(),
		Metadata:  make(map[string]any),
	}
}

// WithRecordCount sets the record count for the artifact.
func (a Artifact) WithRecordCount(count int) Artifact {
	a.RecordCount = count
	return a
}

// WithByteSize sets the serialized size for the artifact.
func (a Artifact) WithByteSize(size int) Artifact {
	a.ByteSize = size
	return a
}

// WithMetadata adds metadata to the artifact.
func (a Artifact) WithMetadata(key string, value any) Artifact {
	a.Metadata[key] = value
	return a
}
