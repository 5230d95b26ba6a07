package repository

import (
	"context"
	"fmt"

	"github.com/lunnlew/m3u-filter/internal/models"
	"gorm.io/gorm"
)

// ruleRepository implements RuleRepository using GORM.
type ruleRepository struct {
	db *gorm.DB
}

// NewRuleRepository creates a new RuleRepository.
func NewRuleRepository(db *gorm.DB) RuleRepository {
	return &ruleRepository{db: db}
}

// Create creates a new rule. Validation rejects malformed patterns at write
// time so generation never sees an uncompilable rule.
func (r *ruleRepository) Create(ctx context.Context, rule *models.Rule) error {
	if err := rule.Validate(); err != nil {
		return fmt.Errorf("validating rule: %w", err)
	}
	return r.db.WithContext(ctx).Create(rule).Error
}

// GetByID retrieves a rule by ID.
func (r *ruleRepository) GetByID(ctx context.Context, id models.ULID) (*models.Rule, error) {
	var rule models.Rule
	if err := r.db.WithContext(ctx).First(&rule, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &rule, nil
}

// GetAll retrieves all rules ordered by priority. Priority orders listings
// only; evaluation results do not depend on it.
func (r *ruleRepository) GetAll(ctx context.Context) ([]*models.Rule, error) {
	var rules []*models.Rule
	if err := r.db.WithContext(ctx).Order("priority ASC, created_at ASC").Find(&rules).Error; err != nil {
		return nil, err
	}
	return rules, nil
}

// Update updates an existing rule.
func (r *ruleRepository) Update(ctx context.Context, rule *models.Rule) error {
	if err := rule.Validate(); err != nil {
		return fmt.Errorf("validating rule: %w", err)
	}
	return r.db.WithContext(ctx).Save(rule).Error
}

// Delete deletes a rule and its memberships.
func (r *ruleRepository) Delete(ctx context.Context, id models.ULID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.RuleSetRule{}, "rule_id = ?", id).Error; err != nil {
			return fmt.Errorf("deleting rule memberships: %w", err)
		}
		return tx.Delete(&models.Rule{}, "id = ?", id).Error
	})
}

// Count returns the total number of rules.
func (r *ruleRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Rule{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Ensure ruleRepository implements RuleRepository.
var _ RuleRepository = (*ruleRepository)(nil)
