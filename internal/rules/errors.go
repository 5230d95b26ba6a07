package rules

import (
	"errors"
	"fmt"

	"github.com/lunnlew/m3u-filter/internal/models"
)

// Sentinel causes for configuration errors. A ConfigError aborts the whole
// generation request; it is raised while compiling the rule tree, before
// any track is evaluated.
var (
	// ErrCyclicRuleSet indicates the rule set containment graph contains a
	// cycle (a set directly or transitively contains itself).
	ErrCyclicRuleSet = errors.New("rule set references itself")

	// ErrRuleSetNotFound indicates a referenced rule set id is absent from
	// the loaded snapshot.
	ErrRuleSetNotFound = errors.New("rule set not found")

	// ErrRuleSetDisabled indicates generation was requested for a disabled
	// rule set.
	ErrRuleSetDisabled = errors.New("rule set is disabled")

	// ErrInvalidRulePattern indicates an enabled rule whose pattern does
	// not parse according to its type.
	ErrInvalidRulePattern = errors.New("invalid rule pattern")
)

// ConfigError is a fatal configuration error for a generation request.
// It wraps one of the sentinel causes above with entity context.
type ConfigError struct {
	// Cause is the sentinel cause.
	Cause error

	// RuleSetID is the rule set where the error was detected, if any.
	RuleSetID models.ULID

	// RuleID is the rule where the error was detected, if any.
	RuleID models.ULID

	// Detail is a human-readable description.
	Detail string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("rule configuration error: %s", e.Detail)
	}
	return fmt.Sprintf("rule configuration error: %v", e.Cause)
}

// Unwrap returns the sentinel cause.
func (e *ConfigError) Unwrap() error {
	return e.Cause
}

// IsConfigError reports whether err is (or wraps) a ConfigError.
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}
