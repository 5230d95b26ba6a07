package repository

import (
	"context"
	"fmt"

	"github.com/lunnlew/m3u-filter/internal/models"
	"gorm.io/gorm"
)

// sortTemplateRepository implements SortTemplateRepository using GORM.
type sortTemplateRepository struct {
	db *gorm.DB
}

// NewSortTemplateRepository creates a new SortTemplateRepository.
func NewSortTemplateRepository(db *gorm.DB) SortTemplateRepository {
	return &sortTemplateRepository{db: db}
}

// Create creates a new sort template.
func (r *sortTemplateRepository) Create(ctx context.Context, template *models.SortTemplate) error {
	if err := template.Validate(); err != nil {
		return fmt.Errorf("validating sort template: %w", err)
	}
	return r.db.WithContext(ctx).Create(template).Error
}

// GetByID retrieves a sort template by ID.
func (r *sortTemplateRepository) GetByID(ctx context.Context, id models.ULID) (*models.SortTemplate, error) {
	var template models.SortTemplate
	if err := r.db.WithContext(ctx).First(&template, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &template, nil
}

// GetByName retrieves a sort template by name.
func (r *sortTemplateRepository) GetByName(ctx context.Context, name string) (*models.SortTemplate, error) {
	var template models.SortTemplate
	if err := r.db.WithContext(ctx).First(&template, "name = ?", name).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &template, nil
}

// GetAll retrieves all sort templates in creation order. Creation order is
// the merge order when a generation combines every template.
func (r *sortTemplateRepository) GetAll(ctx context.Context) ([]*models.SortTemplate, error) {
	var templates []*models.SortTemplate
	if err := r.db.WithContext(ctx).Order("created_at ASC").Find(&templates).Error; err != nil {
		return nil, err
	}
	return templates, nil
}

// Update updates an existing sort template.
func (r *sortTemplateRepository) Update(ctx context.Context, template *models.SortTemplate) error {
	if err := template.Validate(); err != nil {
		return fmt.Errorf("validating sort template: %w", err)
	}
	return r.db.WithContext(ctx).Save(template).Error
}

// Delete deletes a sort template by ID.
func (r *sortTemplateRepository) Delete(ctx context.Context, id models.ULID) error {
	return r.db.WithContext(ctx).Delete(&models.SortTemplate{}, "id = ?", id).Error
}

// Ensure sortTemplateRepository implements SortTemplateRepository.
var _ SortTemplateRepository = (*sortTemplateRepository)(nil)
