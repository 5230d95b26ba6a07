// Package repository provides data access implementations.
package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/lunnlew/m3u-filter/internal/models"
	"gorm.io/gorm"
)

// streamSourceRepository implements StreamSourceRepository using GORM.
type streamSourceRepository struct {
	db *gorm.DB
}

// NewStreamSourceRepository creates a new StreamSourceRepository.
func NewStreamSourceRepository(db *gorm.DB) StreamSourceRepository {
	return &streamSourceRepository{db: db}
}

// Create creates a new stream source.
func (r *streamSourceRepository) Create(ctx context.Context, source *models.StreamSource) error {
	if err := source.Validate(); err != nil {
		return fmt.Errorf("validating stream source: %w", err)
	}
	return r.db.WithContext(ctx).Create(source).Error
}

// GetByID retrieves a stream source by ID.
func (r *streamSourceRepository) GetByID(ctx context.Context, id models.ULID) (*models.StreamSource, error) {
	var source models.StreamSource
	if err := r.db.WithContext(ctx).First(&source, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &source, nil
}

// GetAll retrieves all stream sources.
func (r *streamSourceRepository) GetAll(ctx context.Context) ([]*models.StreamSource, error) {
	var sources []*models.StreamSource
	if err := r.db.WithContext(ctx).Order("created_at ASC").Find(&sources).Error; err != nil {
		return nil, err
	}
	return sources, nil
}

// GetActive retrieves all active stream sources.
func (r *streamSourceRepository) GetActive(ctx context.Context) ([]*models.StreamSource, error) {
	var sources []*models.StreamSource
	if err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("created_at ASC").
		Find(&sources).Error; err != nil {
		return nil, err
	}
	return sources, nil
}

// GetByName retrieves a stream source by name.
func (r *streamSourceRepository) GetByName(ctx context.Context, name string) (*models.StreamSource, error) {
	var source models.StreamSource
	if err := r.db.WithContext(ctx).First(&source, "name = ?", name).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &source, nil
}

// Update updates an existing stream source.
func (r *streamSourceRepository) Update(ctx context.Context, source *models.StreamSource) error {
	if err := source.Validate(); err != nil {
		return fmt.Errorf("validating stream source: %w", err)
	}
	return r.db.WithContext(ctx).Save(source).Error
}

// Delete deletes a stream source and its tracks.
func (r *streamSourceRepository) Delete(ctx context.Context, id models.ULID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.Track{}, "source_id = ?", id).Error; err != nil {
			return fmt.Errorf("deleting source tracks: %w", err)
		}
		return tx.Delete(&models.StreamSource{}, "id = ?", id).Error
	})
}

// UpdateLastSync updates the last sync timestamp.
func (r *streamSourceRepository) UpdateLastSync(ctx context.Context, id models.ULID) error {
	now := time.Now()
	return r.db.WithContext(ctx).
		Model(&models.StreamSource{}).
		Where("id = ?", id).
		Update("last_sync_at", &now).Error
}

// Ensure streamSourceRepository implements StreamSourceRepository.
var _ StreamSourceRepository = (*streamSourceRepository)(nil)
