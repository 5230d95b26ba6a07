package models

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// RuleType identifies which track field a filter rule matches against.
type RuleType string

const (
	// RuleTypeName matches the track display name.
	RuleTypeName RuleType = "name"

	// RuleTypeKeyword matches any of name, group, source name or stream URL.
	RuleTypeKeyword RuleType = "keyword"

	// RuleTypeResolution matches the probed resolution token exactly.
	RuleTypeResolution RuleType = "resolution"

	// RuleTypeGroup matches the track group title.
	RuleTypeGroup RuleType = "group"

	// RuleTypeSourceName matches the owning source's name.
	RuleTypeSourceName RuleType = "source_name"

	// RuleTypeBitrate matches the probed bitrate against a "min-max" range.
	RuleTypeBitrate RuleType = "bitrate"

	// RuleTypeStatus matches the last-known availability flag.
	RuleTypeStatus RuleType = "status"
)

// RuleAction specifies the rule polarity inside its rule set.
type RuleAction string

const (
	// RuleActionInclude contributes the match result directly.
	RuleActionInclude RuleAction = "include"

	// RuleActionExclude contributes the negated match result.
	RuleActionExclude RuleAction = "exclude"
)

// ResolutionTokens is the closed set of resolution values a resolution rule
// may use. Tracks whose probed resolution is outside this set never match.
var ResolutionTokens = []string{"4k", "2k", "1080p", "720p", "576p", "480p"}

// Rule represents a single matching rule stored in the database.
type Rule struct {
	BaseModel

	// Name is a human-readable name for this rule.
	Name string `gorm:"size:255;not null;index" json:"name"`

	// Type selects the track field the rule matches against.
	Type RuleType `gorm:"size:20;not null;index" json:"type"`

	// Pattern is the match pattern. Interpretation depends on Type:
	// a substring or regex for text types, a "min-max" range for bitrate,
	// a resolution token for resolution, an availability word for status.
	Pattern string `gorm:"size:1024;not null" json:"pattern"`

	// Action specifies include or exclude polarity.
	Action RuleAction `gorm:"size:20;not null;default:'include'" json:"action"`

	// Priority orders rules in listings. Evaluation is order-independent.
	Priority int `gorm:"default:0" json:"priority"`

	// IsEnabled determines if the rule participates in evaluation.
	IsEnabled bool `gorm:"default:true" json:"is_enabled"`

	// CaseSensitive toggles case-sensitive text matching.
	CaseSensitive bool `gorm:"default:false" json:"case_sensitive"`

	// RegexMode treats Pattern as a regular expression for text types.
	RegexMode bool `gorm:"default:false" json:"regex_mode"`
}

// TableName returns the table name for Rule.
func (Rule) TableName() string {
	return "filter_rules"
}

// Validate checks that the rule is well formed and that Pattern parses
// according to Type, so malformed rules are rejected at write time rather
// than at generation time.
func (r *Rule) Validate() error {
	if r.Name == "" {
		return ErrNameRequired
	}
	if r.Pattern == "" {
		return ErrPatternRequired
	}
	switch r.Type {
	case RuleTypeName, RuleTypeKeyword, RuleTypeGroup, RuleTypeSourceName:
		if r.RegexMode {
			if _, err := regexp.Compile(r.Pattern); err != nil {
				return fmt.Errorf("%w: %q", ErrInvalidRegexPattern, r.Pattern)
			}
		}
	case RuleTypeResolution:
		if !IsResolutionToken(r.Pattern) {
			return fmt.Errorf("%w: %q", ErrInvalidResolutionToken, r.Pattern)
		}
	case RuleTypeBitrate:
		if _, _, err := ParseBitratePattern(r.Pattern); err != nil {
			return err
		}
	case RuleTypeStatus:
		if _, err := ParseStatusPattern(r.Pattern); err != nil {
			return err
		}
	default:
		return fmt.Errorf("%w: %q", ErrInvalidRuleType, r.Type)
	}
	if r.Action == "" {
		r.Action = RuleActionInclude
	}
	if r.Action != RuleActionInclude && r.Action != RuleActionExclude {
		return ErrInvalidRuleAction
	}
	return nil
}

// IsResolutionToken reports whether s is one of the known resolution tokens.
// Comparison is case-insensitive.
func IsResolutionToken(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, tok := range ResolutionTokens {
		if s == tok {
			return true
		}
	}
	return false
}

// ParseBitratePattern parses a "min-max" bitrate range. Either bound may be
// empty, meaning unbounded on that side. Bounds must be non-negative
// integers with min <= max when both are present.
func ParseBitratePattern(pattern string) (minKbps, maxKbps *int, err error) {
	parts := strings.SplitN(strings.TrimSpace(pattern), "-", 2)
	if len(parts) != 2 {
		return nil, nil, fmt.Errorf("%w: %q", ErrInvalidBitratePattern, pattern)
	}
	parse := func(s string) (*int, error) {
		s = strings.TrimSpace(s)
		if s == "" {
			return nil, nil
		}
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("%w: %q", ErrInvalidBitratePattern, pattern)
		}
		return &n, nil
	}
	if minKbps, err = parse(parts[0]); err != nil {
		return nil, nil, err
	}
	if maxKbps, err = parse(parts[1]); err != nil {
		return nil, nil, err
	}
	if minKbps != nil && maxKbps != nil && *minKbps > *maxKbps {
		return nil, nil, fmt.Errorf("%w: min exceeds max in %q", ErrInvalidBitratePattern, pattern)
	}
	return minKbps, maxKbps, nil
}

// ParseStatusPattern parses a status rule pattern into the availability
// polarity it matches. "unknown" is not a valid pattern: unprobed tracks
// never match a status rule of either polarity.
func ParseStatusPattern(pattern string) (TestStatus, error) {
	switch strings.ToLower(strings.TrimSpace(pattern)) {
	case "available", "online", "true":
		return TestStatusAvailable, nil
	case "unavailable", "offline", "false":
		return TestStatusUnavailable, nil
	default:
		return TestStatusUnknown, fmt.Errorf("%w: %q", ErrInvalidStatusPattern, pattern)
	}
}
