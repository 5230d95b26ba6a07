package repository

import (
	"context"
	"fmt"

	"github.com/lunnlew/m3u-filter/internal/models"
	"gorm.io/gorm"
)

// groupMappingTemplateRepository implements GroupMappingTemplateRepository
// using GORM.
type groupMappingTemplateRepository struct {
	db *gorm.DB
}

// NewGroupMappingTemplateRepository creates a new GroupMappingTemplateRepository.
func NewGroupMappingTemplateRepository(db *gorm.DB) GroupMappingTemplateRepository {
	return &groupMappingTemplateRepository{db: db}
}

// Create creates a new template with its items.
func (r *groupMappingTemplateRepository) Create(ctx context.Context, template *models.GroupMappingTemplate) error {
	if err := template.Validate(); err != nil {
		return fmt.Errorf("validating template: %w", err)
	}
	return r.db.WithContext(ctx).Create(template).Error
}

// GetByID retrieves a template with its items ordered by position.
func (r *groupMappingTemplateRepository) GetByID(ctx context.Context, id models.ULID) (*models.GroupMappingTemplate, error) {
	var template models.GroupMappingTemplate
	if err := r.itemQuery(ctx).First(&template, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &template, nil
}

// GetByName retrieves a template by name with its items.
func (r *groupMappingTemplateRepository) GetByName(ctx context.Context, name string) (*models.GroupMappingTemplate, error) {
	var template models.GroupMappingTemplate
	if err := r.itemQuery(ctx).First(&template, "name = ?", name).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &template, nil
}

// GetAll retrieves all templates with their items.
func (r *groupMappingTemplateRepository) GetAll(ctx context.Context) ([]*models.GroupMappingTemplate, error) {
	var templates []*models.GroupMappingTemplate
	if err := r.itemQuery(ctx).Order("created_at ASC").Find(&templates).Error; err != nil {
		return nil, err
	}
	return templates, nil
}

// itemQuery preloads items in position order.
func (r *groupMappingTemplateRepository) itemQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC, created_at ASC")
	})
}

// Update replaces a template and its items.
func (r *groupMappingTemplateRepository) Update(ctx context.Context, template *models.GroupMappingTemplate) error {
	if err := template.Validate(); err != nil {
		return fmt.Errorf("validating template: %w", err)
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.GroupMappingTemplateItem{}, "template_id = ?", template.ID).Error; err != nil {
			return fmt.Errorf("clearing template items: %w", err)
		}
		return tx.Session(&gorm.Session{FullSaveAssociations: true}).Save(template).Error
	})
}

// Delete deletes a template and its items.
func (r *groupMappingTemplateRepository) Delete(ctx context.Context, id models.ULID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.GroupMappingTemplateItem{}, "template_id = ?", id).Error; err != nil {
			return fmt.Errorf("deleting template items: %w", err)
		}
		return tx.Delete(&models.GroupMappingTemplate{}, "id = ?", id).Error
	})
}

// ApplyToRuleSet copies the template's items into scoped mappings for the
// rule set. Applying is an explicit user action, so existing scoped
// mappings for the same channels are overwritten. Returns the number of
// mappings written.
func (r *groupMappingTemplateRepository) ApplyToRuleSet(ctx context.Context, templateID, ruleSetID models.ULID) (int, error) {
	template, err := r.GetByID(ctx, templateID)
	if err != nil {
		return 0, err
	}
	if template == nil {
		return 0, fmt.Errorf("%w: %s", ErrTemplateNotFound, templateID)
	}

	applied := 0
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.RuleSet{}).Where("id = ?", ruleSetID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return fmt.Errorf("%w: %s", ErrRuleSetNotFound, ruleSetID)
		}

		for _, item := range template.Items {
			scope := ruleSetID
			existing, err := findScoped(tx, item.ChannelName, &scope)
			if err != nil {
				return err
			}
			if existing != nil {
				existing.CustomGroup = item.CustomGroup
				existing.DisplayName = item.DisplayName
				if err := tx.Save(existing).Error; err != nil {
					return err
				}
			} else {
				mapping := &models.GroupMapping{
					ChannelName: item.ChannelName,
					CustomGroup: item.CustomGroup,
					DisplayName: item.DisplayName,
					RuleSetID:   &scope,
				}
				if err := tx.Create(mapping).Error; err != nil {
					return err
				}
			}
			applied++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return applied, nil
}

// Ensure groupMappingTemplateRepository implements GroupMappingTemplateRepository.
var _ GroupMappingTemplateRepository = (*groupMappingTemplateRepository)(nil)
