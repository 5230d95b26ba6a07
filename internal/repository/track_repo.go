package repository

import (
	"context"
	"fmt"

	"github.com/lunnlew/m3u-filter/internal/models"
	"gorm.io/gorm"
)

// trackBatchSize bounds the number of rows per INSERT when batching.
const trackBatchSize = 500

// trackRepository implements TrackRepository using GORM.
type trackRepository struct {
	db *gorm.DB
}

// NewTrackRepository creates a new TrackRepository.
func NewTrackRepository(db *gorm.DB) TrackRepository {
	return &trackRepository{db: db}
}

// Create creates a new track.
func (r *trackRepository) Create(ctx context.Context, track *models.Track) error {
	if err := track.Validate(); err != nil {
		return fmt.Errorf("validating track: %w", err)
	}
	return r.db.WithContext(ctx).Create(track).Error
}

// CreateBatch creates multiple tracks in a single batch.
func (r *trackRepository) CreateBatch(ctx context.Context, tracks []*models.Track) error {
	if len(tracks) == 0 {
		return nil
	}
	for _, t := range tracks {
		if err := t.Validate(); err != nil {
			return fmt.Errorf("validating track %q: %w", t.Name, err)
		}
	}
	return r.db.WithContext(ctx).CreateInBatches(tracks, trackBatchSize).Error
}

// GetByID retrieves a track by ID.
func (r *trackRepository) GetByID(ctx context.Context, id models.ULID) (*models.Track, error) {
	var track models.Track
	if err := r.db.WithContext(ctx).Preload("Source").First(&track, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &track, nil
}

// GetAll retrieves all tracks in catalog order with sources preloaded.
// Catalog order is creation order; ULID primary keys sort by creation time.
func (r *trackRepository) GetAll(ctx context.Context) ([]*models.Track, error) {
	var tracks []*models.Track
	if err := r.db.WithContext(ctx).
		Preload("Source").
		Order("id ASC").
		Find(&tracks).Error; err != nil {
		return nil, err
	}
	return tracks, nil
}

// GetBySourceID retrieves all tracks for a source in catalog order.
func (r *trackRepository) GetBySourceID(ctx context.Context, sourceID models.ULID) ([]*models.Track, error) {
	var tracks []*models.Track
	if err := r.db.WithContext(ctx).
		Preload("Source").
		Where("source_id = ?", sourceID).
		Order("id ASC").
		Find(&tracks).Error; err != nil {
		return nil, err
	}
	return tracks, nil
}

// Update updates an existing track.
func (r *trackRepository) Update(ctx context.Context, track *models.Track) error {
	if err := track.Validate(); err != nil {
		return fmt.Errorf("validating track: %w", err)
	}
	return r.db.WithContext(ctx).Save(track).Error
}

// Delete deletes a track by ID.
func (r *trackRepository) Delete(ctx context.Context, id models.ULID) error {
	return r.db.WithContext(ctx).Delete(&models.Track{}, "id = ?", id).Error
}

// DeleteBySourceID deletes all tracks for a source.
func (r *trackRepository) DeleteBySourceID(ctx context.Context, sourceID models.ULID) error {
	return r.db.WithContext(ctx).Delete(&models.Track{}, "source_id = ?", sourceID).Error
}

// Count returns the total number of tracks.
func (r *trackRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Track{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Ensure trackRepository implements TrackRepository.
var _ TrackRepository = (*trackRepository)(nil)
