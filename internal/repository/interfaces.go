// Package repository defines data access interfaces for m3u-filter entities.
// All database access goes through these interfaces, enabling easy testing
// and database backend switching.
package repository

import (
	"context"

	"github.com/lunnlew/m3u-filter/internal/models"
)

// StreamSourceRepository defines operations for stream source persistence.
type StreamSourceRepository interface {
	// Create creates a new stream source.
	Create(ctx context.Context, source *models.StreamSource) error
	// GetByID retrieves a stream source by ID.
	GetByID(ctx context.Context, id models.ULID) (*models.StreamSource, error)
	// GetAll retrieves all stream sources.
	GetAll(ctx context.Context) ([]*models.StreamSource, error)
	// GetActive retrieves all active stream sources.
	GetActive(ctx context.Context) ([]*models.StreamSource, error)
	// GetByName retrieves a stream source by name.
	GetByName(ctx context.Context, name string) (*models.StreamSource, error)
	// Update updates an existing stream source.
	Update(ctx context.Context, source *models.StreamSource) error
	// Delete deletes a stream source by ID. Tracks owned by the source are
	// deleted with it.
	Delete(ctx context.Context, id models.ULID) error
	// UpdateLastSync updates the last sync timestamp.
	UpdateLastSync(ctx context.Context, id models.ULID) error
}

// TrackRepository defines operations for stream track persistence.
type TrackRepository interface {
	// Create creates a new track.
	Create(ctx context.Context, track *models.Track) error
	// CreateBatch creates multiple tracks in a single batch.
	CreateBatch(ctx context.Context, tracks []*models.Track) error
	// GetByID retrieves a track by ID.
	GetByID(ctx context.Context, id models.ULID) (*models.Track, error)
	// GetAll retrieves all tracks with their Source preloaded, in catalog
	// order (creation order).
	GetAll(ctx context.Context) ([]*models.Track, error)
	// GetBySourceID retrieves all tracks for a source in catalog order.
	GetBySourceID(ctx context.Context, sourceID models.ULID) ([]*models.Track, error)
	// Update updates an existing track.
	Update(ctx context.Context, track *models.Track) error
	// Delete deletes a track by ID.
	Delete(ctx context.Context, id models.ULID) error
	// DeleteBySourceID deletes all tracks for a source.
	DeleteBySourceID(ctx context.Context, sourceID models.ULID) error
	// Count returns the total number of tracks.
	Count(ctx context.Context) (int64, error)
}

// RuleRepository defines operations for filter rule persistence.
type RuleRepository interface {
	// Create creates a new rule.
	Create(ctx context.Context, rule *models.Rule) error
	// GetByID retrieves a rule by ID.
	GetByID(ctx context.Context, id models.ULID) (*models.Rule, error)
	// GetAll retrieves all rules ordered by priority for display.
	GetAll(ctx context.Context) ([]*models.Rule, error)
	// Update updates an existing rule.
	Update(ctx context.Context, rule *models.Rule) error
	// Delete deletes a rule by ID and removes its rule set memberships.
	Delete(ctx context.Context, id models.ULID) error
	// Count returns the total number of rules.
	Count(ctx context.Context) (int64, error)
}

// RuleSetRepository defines operations for rule set persistence, including
// the membership and containment join tables.
type RuleSetRepository interface {
	// Create creates a new rule set.
	Create(ctx context.Context, set *models.RuleSet) error
	// GetByID retrieves a rule set by ID without relations.
	GetByID(ctx context.Context, id models.ULID) (*models.RuleSet, error)
	// GetByIDWithRelations retrieves a rule set with its rule memberships
	// (and their rule definitions) and child references preloaded, ordered
	// by position.
	GetByIDWithRelations(ctx context.Context, id models.ULID) (*models.RuleSet, error)
	// GetAllWithRelations retrieves all rule sets with relations preloaded.
	// Generation runs load the full arena up front so evaluation never
	// touches the database.
	GetAllWithRelations(ctx context.Context) ([]*models.RuleSet, error)
	// GetByName retrieves a rule set by name.
	GetByName(ctx context.Context, name string) (*models.RuleSet, error)
	// GetEnabled retrieves all enabled rule sets.
	GetEnabled(ctx context.Context) ([]*models.RuleSet, error)
	// Update updates an existing rule set.
	Update(ctx context.Context, set *models.RuleSet) error
	// Delete deletes a rule set by ID along with its memberships, child
	// references, and references to it from other sets.
	Delete(ctx context.Context, id models.ULID) error
	// AddRule appends a rule membership at the end of the set's rule list.
	AddRule(ctx context.Context, setID, ruleID models.ULID) error
	// RemoveRule removes a rule membership.
	RemoveRule(ctx context.Context, setID, ruleID models.ULID) error
	// AddChild appends a child reference at the end of the set's child
	// list. It fails with models-level validation errors for unknown ids
	// and with ErrWouldCreateCycle when the child already contains the
	// parent anywhere in its descendant graph.
	AddChild(ctx context.Context, parentID, childID models.ULID) error
	// RemoveChild removes a child reference.
	RemoveChild(ctx context.Context, parentID, childID models.ULID) error
}

// GroupMappingRepository defines operations for group mapping persistence.
type GroupMappingRepository interface {
	// Upsert creates a mapping or overwrites the existing mapping for the
	// same (channel, scope) pair. Last write wins.
	Upsert(ctx context.Context, mapping *models.GroupMapping) error
	// GetByID retrieves a mapping by ID.
	GetByID(ctx context.Context, id models.ULID) (*models.GroupMapping, error)
	// GetAll retrieves all mappings.
	GetAll(ctx context.Context) ([]*models.GroupMapping, error)
	// GetGlobal retrieves all global mappings.
	GetGlobal(ctx context.Context) ([]*models.GroupMapping, error)
	// GetForRuleSet retrieves the mappings visible to a generation of the
	// given rule set: its scoped mappings plus all global mappings.
	GetForRuleSet(ctx context.Context, ruleSetID models.ULID) ([]*models.GroupMapping, error)
	// Delete deletes a mapping by ID.
	Delete(ctx context.Context, id models.ULID) error
	// DeleteForRuleSet deletes all mappings scoped to a rule set.
	DeleteForRuleSet(ctx context.Context, ruleSetID models.ULID) error
}

// GroupMappingTemplateRepository defines operations for reusable mapping
// template persistence.
type GroupMappingTemplateRepository interface {
	// Create creates a new template with its items.
	Create(ctx context.Context, template *models.GroupMappingTemplate) error
	// GetByID retrieves a template with its items ordered by position.
	GetByID(ctx context.Context, id models.ULID) (*models.GroupMappingTemplate, error)
	// GetByName retrieves a template by name with its items.
	GetByName(ctx context.Context, name string) (*models.GroupMappingTemplate, error)
	// GetAll retrieves all templates with their items.
	GetAll(ctx context.Context) ([]*models.GroupMappingTemplate, error)
	// Update replaces a template and its items.
	Update(ctx context.Context, template *models.GroupMappingTemplate) error
	// Delete deletes a template and its items.
	Delete(ctx context.Context, id models.ULID) error
	// ApplyToRuleSet copies the template's items into scoped mappings for
	// the rule set, overwriting existing scoped mappings for the same
	// channels.
	ApplyToRuleSet(ctx context.Context, templateID, ruleSetID models.ULID) (int, error)
}

// SortTemplateRepository defines operations for sort template persistence.
type SortTemplateRepository interface {
	// Create creates a new sort template.
	Create(ctx context.Context, template *models.SortTemplate) error
	// GetByID retrieves a sort template by ID.
	GetByID(ctx context.Context, id models.ULID) (*models.SortTemplate, error)
	// GetByName retrieves a sort template by name.
	GetByName(ctx context.Context, name string) (*models.SortTemplate, error)
	// GetAll retrieves all sort templates in creation order.
	GetAll(ctx context.Context) ([]*models.SortTemplate, error)
	// Update updates an existing sort template.
	Update(ctx context.Context, template *models.SortTemplate) error
	// Delete deletes a sort template by ID.
	Delete(ctx context.Context, id models.ULID) error
}
