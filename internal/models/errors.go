package models

import (
	"errors"
	"fmt"
)

// ValidationError represents a validation error with field and message.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("validation error on field %s: %s", e.Field, e.Message)
}

// Common validation errors for models.
var (
	// ErrNameRequired indicates a required name field is empty.
	ErrNameRequired = errors.New("name is required")

	// ErrURLRequired indicates a required URL field is empty.
	ErrURLRequired = errors.New("url is required")

	// ErrPatternRequired indicates a required pattern field is empty.
	ErrPatternRequired = errors.New("pattern is required")

	// ErrInvalidRuleType indicates an unknown rule type.
	ErrInvalidRuleType = errors.New("invalid rule type")

	// ErrInvalidRuleAction indicates an invalid rule action.
	ErrInvalidRuleAction = errors.New("invalid rule action: must be 'include' or 'exclude'")

	// ErrInvalidLogicType indicates an invalid rule set logic type.
	ErrInvalidLogicType = errors.New("invalid logic type: must be 'AND' or 'OR'")

	// ErrInvalidBitratePattern indicates a bitrate pattern that does not
	// split into two optional non-negative integers.
	ErrInvalidBitratePattern = errors.New("invalid bitrate pattern: expected \"min-max\" with optional bounds")

	// ErrInvalidResolutionToken indicates a resolution pattern outside the
	// known token set.
	ErrInvalidResolutionToken = errors.New("invalid resolution token")

	// ErrInvalidStatusPattern indicates a status pattern that is not a
	// recognised availability value.
	ErrInvalidStatusPattern = errors.New("invalid status pattern: must be 'available' or 'unavailable'")

	// ErrInvalidRegexPattern indicates a pattern that does not compile as a
	// regular expression while regex mode is enabled.
	ErrInvalidRegexPattern = errors.New("invalid regular expression pattern")

	// ErrChannelNameRequired indicates a required channel name field is empty.
	ErrChannelNameRequired = errors.New("channel_name is required")

	// ErrCustomGroupRequired indicates a required custom group field is empty.
	ErrCustomGroupRequired = errors.New("custom_group is required")

	// ErrStreamURLRequired indicates a required stream URL field is empty.
	ErrStreamURLRequired = errors.New("stream url is required")

	// ErrSourceIDRequired indicates a required source ID field is zero.
	ErrSourceIDRequired = errors.New("source_id is required")

	// ErrInvalidSourceType indicates an invalid stream source type.
	ErrInvalidSourceType = errors.New("invalid source type: must be 'm3u', 'm3u8' or 'txt'")
)
