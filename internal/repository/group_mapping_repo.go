package repository

import (
	"context"
	"fmt"

	"github.com/lunnlew/m3u-filter/internal/models"
	"gorm.io/gorm"
)

// groupMappingRepository implements GroupMappingRepository using GORM.
type groupMappingRepository struct {
	db *gorm.DB
}

// NewGroupMappingRepository creates a new GroupMappingRepository.
func NewGroupMappingRepository(db *gorm.DB) GroupMappingRepository {
	return &groupMappingRepository{db: db}
}

// Upsert creates or overwrites the mapping for a (channel, scope) pair.
// The unique index on (channel_name, rule_set_id) makes last write win.
func (r *groupMappingRepository) Upsert(ctx context.Context, mapping *models.GroupMapping) error {
	if err := mapping.Validate(); err != nil {
		return fmt.Errorf("validating group mapping: %w", err)
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := findScoped(tx, mapping.ChannelName, mapping.RuleSetID)
		if err != nil {
			return err
		}
		if existing != nil {
			existing.CustomGroup = mapping.CustomGroup
			existing.DisplayName = mapping.DisplayName
			if err := tx.Save(existing).Error; err != nil {
				return err
			}
			*mapping = *existing
			return nil
		}
		return tx.Create(mapping).Error
	})
}

// findScoped looks up the mapping for a channel within one scope. NULL and
// non-NULL scopes are distinct rows.
func findScoped(tx *gorm.DB, channelName string, ruleSetID *models.ULID) (*models.GroupMapping, error) {
	var mapping models.GroupMapping
	query := tx.Where("channel_name = ?", channelName)
	if ruleSetID == nil {
		query = query.Where("rule_set_id IS NULL")
	} else {
		query = query.Where("rule_set_id = ?", *ruleSetID)
	}
	if err := query.First(&mapping).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &mapping, nil
}

// GetByID retrieves a mapping by ID.
func (r *groupMappingRepository) GetByID(ctx context.Context, id models.ULID) (*models.GroupMapping, error) {
	var mapping models.GroupMapping
	if err := r.db.WithContext(ctx).First(&mapping, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &mapping, nil
}

// GetAll retrieves all mappings.
func (r *groupMappingRepository) GetAll(ctx context.Context) ([]*models.GroupMapping, error) {
	var mappings []*models.GroupMapping
	if err := r.db.WithContext(ctx).Order("created_at ASC").Find(&mappings).Error; err != nil {
		return nil, err
	}
	return mappings, nil
}

// GetGlobal retrieves all global mappings.
func (r *groupMappingRepository) GetGlobal(ctx context.Context) ([]*models.GroupMapping, error) {
	var mappings []*models.GroupMapping
	if err := r.db.WithContext(ctx).
		Where("rule_set_id IS NULL").
		Order("created_at ASC").
		Find(&mappings).Error; err != nil {
		return nil, err
	}
	return mappings, nil
}

// GetForRuleSet retrieves scoped plus global mappings for a generation run.
// Scoped rows come last so last-write-wins construction downstream keeps
// the scoped value when both exist for one channel.
func (r *groupMappingRepository) GetForRuleSet(ctx context.Context, ruleSetID models.ULID) ([]*models.GroupMapping, error) {
	var mappings []*models.GroupMapping
	if err := r.db.WithContext(ctx).
		Where("rule_set_id IS NULL OR rule_set_id = ?", ruleSetID).
		Order("rule_set_id IS NOT NULL, created_at ASC").
		Find(&mappings).Error; err != nil {
		return nil, err
	}
	return mappings, nil
}

// Delete deletes a mapping by ID.
func (r *groupMappingRepository) Delete(ctx context.Context, id models.ULID) error {
	return r.db.WithContext(ctx).Delete(&models.GroupMapping{}, "id = ?", id).Error
}

// DeleteForRuleSet deletes all mappings scoped to a rule set.
func (r *groupMappingRepository) DeleteForRuleSet(ctx context.Context, ruleSetID models.ULID) error {
	return r.db.WithContext(ctx).Delete(&models.GroupMapping{}, "rule_set_id = ?", ruleSetID).Error
}

// Ensure groupMappingRepository implements GroupMappingRepository.
var _ GroupMappingRepository = (*groupMappingRepository)(nil)
