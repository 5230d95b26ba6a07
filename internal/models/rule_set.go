package models

// LogicType selects how a rule set combines its operands.
type LogicType string

const (
	// LogicTypeAND requires every operand to be true. Zero operands
	// evaluate to true (vacuous AND).
	LogicTypeAND LogicType = "AND"

	// LogicTypeOR requires at least one operand to be true. Zero operands
	// evaluate to false (vacuous OR).
	LogicTypeOR LogicType = "OR"
)

// RuleSet represents a named boolean combination of rules and nested rule
// sets. The containment graph must remain a DAG; the repository rejects
// child additions that would create a cycle, and the evaluator re-checks
// at compile time.
type RuleSet struct {
	BaseModel

	// Name is a unique human-readable name for this rule set.
	Name string `gorm:"size:255;not null;uniqueIndex" json:"name"`

	// Description provides additional details about the rule set.
	Description string `gorm:"size:1024" json:"description,omitempty"`

	// IsEnabled determines whether the rule set can be generated, and how
	// it contributes when referenced as a child (a disabled child
	// contributes false to its parent).
	IsEnabled bool `gorm:"default:true" json:"is_enabled"`

	// LogicType selects AND or OR combination of operands.
	LogicType LogicType `gorm:"size:10;not null;default:'AND'" json:"logic_type"`

	// SyncInterval is the regeneration cadence in hours for the scheduler.
	// Zero disables scheduled regeneration.
	SyncInterval int `gorm:"default:6" json:"sync_interval"`

	// Rules are the direct rule memberships, ordered by position.
	Rules []RuleSetRule `gorm:"foreignKey:RuleSetID" json:"rules,omitempty"`

	// Children are the nested rule set references, ordered by position.
	Children []RuleSetChild `gorm:"foreignKey:ParentID" json:"children,omitempty"`
}

// TableName returns the table name for RuleSet.
func (RuleSet) TableName() string {
	return "filter_rule_sets"
}

// Validate checks the rule set configuration.
func (s *RuleSet) Validate() error {
	if s.Name == "" {
		return ErrNameRequired
	}
	if s.LogicType == "" {
		s.LogicType = LogicTypeAND
	}
	if s.LogicType != LogicTypeAND && s.LogicType != LogicTypeOR {
		return ErrInvalidLogicType
	}
	return nil
}

// ChildIDs returns the ordered child rule set ids.
func (s *RuleSet) ChildIDs() []ULID {
	ids := make([]ULID, 0, len(s.Children))
	for _, c := range s.Children {
		ids = append(ids, c.ChildID)
	}
	return ids
}

// RuleSetRule is the ordered membership of a rule in a rule set.
// A rule may belong to multiple sets; within one set it appears once.
type RuleSetRule struct {
	BaseModel

	// RuleSetID is the owning rule set.
	RuleSetID ULID `gorm:"type:varchar(26);not null;index:idx_set_rule,unique" json:"rule_set_id"`

	// RuleID is the member rule.
	RuleID ULID `gorm:"type:varchar(26);not null;index:idx_set_rule,unique" json:"rule_id"`

	// Position orders rules within the set for display.
	Position int `gorm:"default:0" json:"position"`

	// Rule is the preloaded rule definition.
	Rule *Rule `gorm:"foreignKey:RuleID" json:"rule,omitempty"`
}

// TableName returns the table name for RuleSetRule.
func (RuleSetRule) TableName() string {
	return "filter_rule_set_rules"
}

// RuleSetChild is the ordered containment of one rule set in another.
type RuleSetChild struct {
	BaseModel

	// ParentID is the containing rule set.
	ParentID ULID `gorm:"type:varchar(26);not null;index:idx_parent_child,unique" json:"parent_id"`

	// ChildID is the contained rule set.
	ChildID ULID `gorm:"type:varchar(26);not null;index:idx_parent_child,unique" json:"child_id"`

	// Position orders children within the parent for display.
	Position int `gorm:"default:0" json:"position"`
}

// TableName returns the table name for RuleSetChild.
func (RuleSetChild) TableName() string {
	return "filter_rule_set_children"
}
