package repository

import (
	"context"
	"fmt"

	"github.com/lunnlew/m3u-filter/internal/models"
	"gorm.io/gorm"
)

// ruleSetRepository implements RuleSetRepository using GORM.
type ruleSetRepository struct {
	db *gorm.DB
}

// NewRuleSetRepository creates a new RuleSetRepository.
func NewRuleSetRepository(db *gorm.DB) RuleSetRepository {
	return &ruleSetRepository{db: db}
}

// Create creates a new rule set.
func (r *ruleSetRepository) Create(ctx context.Context, set *models.RuleSet) error {
	if err := set.Validate(); err != nil {
		return fmt.Errorf("validating rule set: %w", err)
	}
	return r.db.WithContext(ctx).Create(set).Error
}

// GetByID retrieves a rule set by ID without relations.
func (r *ruleSetRepository) GetByID(ctx context.Context, id models.ULID) (*models.RuleSet, error) {
	var set models.RuleSet
	if err := r.db.WithContext(ctx).First(&set, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &set, nil
}

// GetByIDWithRelations retrieves a rule set with memberships and children
// preloaded in position order.
func (r *ruleSetRepository) GetByIDWithRelations(ctx context.Context, id models.ULID) (*models.RuleSet, error) {
	var set models.RuleSet
	if err := r.relationQuery(ctx).First(&set, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &set, nil
}

// GetAllWithRelations retrieves all rule sets with relations preloaded.
func (r *ruleSetRepository) GetAllWithRelations(ctx context.Context) ([]*models.RuleSet, error) {
	var sets []*models.RuleSet
	if err := r.relationQuery(ctx).Order("created_at ASC").Find(&sets).Error; err != nil {
		return nil, err
	}
	return sets, nil
}

// relationQuery preloads memberships (with rule definitions) and children
// in position order.
func (r *ruleSetRepository) relationQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Rules", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC, created_at ASC")
		}).
		Preload("Rules.Rule").
		Preload("Children", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC, created_at ASC")
		})
}

// GetByName retrieves a rule set by name.
func (r *ruleSetRepository) GetByName(ctx context.Context, name string) (*models.RuleSet, error) {
	var set models.RuleSet
	if err := r.db.WithContext(ctx).First(&set, "name = ?", name).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &set, nil
}

// GetEnabled retrieves all enabled rule sets.
func (r *ruleSetRepository) GetEnabled(ctx context.Context) ([]*models.RuleSet, error) {
	var sets []*models.RuleSet
	if err := r.db.WithContext(ctx).
		Where("is_enabled = ?", true).
		Order("created_at ASC").
		Find(&sets).Error; err != nil {
		return nil, err
	}
	return sets, nil
}

// Update updates an existing rule set.
func (r *ruleSetRepository) Update(ctx context.Context, set *models.RuleSet) error {
	if err := set.Validate(); err != nil {
		return fmt.Errorf("validating rule set: %w", err)
	}
	return r.db.WithContext(ctx).Save(set).Error
}

// Delete deletes a rule set and every join row that mentions it.
func (r *ruleSetRepository) Delete(ctx context.Context, id models.ULID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.RuleSetRule{}, "rule_set_id = ?", id).Error; err != nil {
			return fmt.Errorf("deleting rule memberships: %w", err)
		}
		if err := tx.Delete(&models.RuleSetChild{}, "parent_id = ? OR child_id = ?", id, id).Error; err != nil {
			return fmt.Errorf("deleting child references: %w", err)
		}
		if err := tx.Delete(&models.GroupMapping{}, "rule_set_id = ?", id).Error; err != nil {
			return fmt.Errorf("deleting scoped mappings: %w", err)
		}
		return tx.Delete(&models.RuleSet{}, "id = ?", id).Error
	})
}

// AddRule appends a rule membership at the end of the set's rule list.
func (r *ruleSetRepository) AddRule(ctx context.Context, setID, ruleID models.ULID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.RuleSet{}).Where("id = ?", setID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return fmt.Errorf("%w: %s", ErrRuleSetNotFound, setID)
		}
		if err := tx.Model(&models.Rule{}).Where("id = ?", ruleID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return fmt.Errorf("%w: %s", ErrRuleNotFound, ruleID)
		}

		position, err := nextPosition(tx, &models.RuleSetRule{}, "rule_set_id = ?", setID)
		if err != nil {
			return err
		}
		return tx.Create(&models.RuleSetRule{
			RuleSetID: setID,
			RuleID:    ruleID,
			Position:  position,
		}).Error
	})
}

// RemoveRule removes a rule membership.
func (r *ruleSetRepository) RemoveRule(ctx context.Context, setID, ruleID models.ULID) error {
	return r.db.WithContext(ctx).
		Delete(&models.RuleSetRule{}, "rule_set_id = ? AND rule_id = ?", setID, ruleID).Error
}

// AddChild appends a child reference after verifying both sets exist and
// that the addition keeps the containment graph acyclic. The check walks
// the child's descendants looking for the parent, which covers the
// self-reference case at any depth.
func (r *ruleSetRepository) AddChild(ctx context.Context, parentID, childID models.ULID) error {
	if parentID == childID {
		return ErrSelfReference
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.RuleSet{}).Where("id = ?", parentID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return fmt.Errorf("%w: %s", ErrRuleSetNotFound, parentID)
		}
		if err := tx.Model(&models.RuleSet{}).Where("id = ?", childID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return fmt.Errorf("%w: %s", ErrRuleSetNotFound, childID)
		}

		reachable, err := isDescendant(tx, childID, parentID)
		if err != nil {
			return err
		}
		if reachable {
			return fmt.Errorf("%w: %s already contains %s", ErrWouldCreateCycle, childID, parentID)
		}

		position, err := nextPosition(tx, &models.RuleSetChild{}, "parent_id = ?", parentID)
		if err != nil {
			return err
		}
		return tx.Create(&models.RuleSetChild{
			ParentID: parentID,
			ChildID:  childID,
			Position: position,
		}).Error
	})
}

// RemoveChild removes a child reference.
func (r *ruleSetRepository) RemoveChild(ctx context.Context, parentID, childID models.ULID) error {
	return r.db.WithContext(ctx).
		Delete(&models.RuleSetChild{}, "parent_id = ? AND child_id = ?", parentID, childID).Error
}

// isDescendant reports whether target is reachable from root through child
// references. Breadth-first over the join table; the visited set bounds the
// walk even if existing data were somehow cyclic.
func isDescendant(tx *gorm.DB, root, target models.ULID) (bool, error) {
	visited := map[models.ULID]bool{root: true}
	frontier := []models.ULID{root}
	for len(frontier) > 0 {
		var edges []models.RuleSetChild
		if err := tx.Where("parent_id IN ?", frontier).Find(&edges).Error; err != nil {
			return false, err
		}
		frontier = frontier[:0]
		for _, e := range edges {
			if e.ChildID == target {
				return true, nil
			}
			if !visited[e.ChildID] {
				visited[e.ChildID] = true
				frontier = append(frontier, e.ChildID)
			}
		}
	}
	return false, nil
}

// nextPosition returns one past the current maximum position for rows
// matching the condition.
func nextPosition(tx *gorm.DB, model any, query string, arg any) (int, error) {
	var max *int
	if err := tx.Model(model).Where(query, arg).
		Select("MAX(position)").Scan(&max).Error; err != nil {
		return 0, err
	}
	if max == nil {
		return 0, nil
	}
	return *max + 1, nil
}

// Ensure ruleSetRepository implements RuleSetRepository.
var _ RuleSetRepository = (*ruleSetRepository)(nil)
