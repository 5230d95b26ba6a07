package repository

import "errors"

var (
	// ErrWouldCreateCycle indicates a child addition that would make the
	// rule set containment graph cyclic.
	ErrWouldCreateCycle = errors.New("adding child would create a cycle in the rule set graph")

	// ErrRuleSetNotFound indicates a referenced rule set does not exist.
	ErrRuleSetNotFound = errors.New("rule set not found")

	// ErrRuleNotFound indicates a referenced rule does not exist.
	ErrRuleNotFound = errors.New("rule not found")

	// ErrTemplateNotFound indicates a referenced template does not exist.
	ErrTemplateNotFound = errors.New("template not found")

	// ErrSelfReference indicates a rule set being added as its own child.
	ErrSelfReference = errors.New("rule set cannot contain itself")
)
