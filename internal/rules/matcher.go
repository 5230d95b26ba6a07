// Package rules implements filter rule compilation and recursive rule set
// evaluation over stream tracks. Rules and rule sets are compiled once per
// generation run; evaluation is pure and side-effect free.
package rules

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/lunnlew/m3u-filter/internal/models"
)

// CompiledRule is a rule with its pattern parsed and validated for its
// type. Matches is safe for concurrent use.
type CompiledRule struct {
	id            models.ULID
	ruleType      models.RuleType
	action        models.RuleAction
	pattern       string
	caseSensitive bool

	// regex is non-nil for text rules in regex mode.
	regex *regexp.Regexp

	// minKbps/maxKbps are the parsed bitrate bounds; nil means unbounded.
	minKbps *int
	maxKbps *int

	// resolution is the lowercased resolution token.
	resolution string

	// status is the availability polarity a status rule matches.
	status models.TestStatus
}

// CompileRule parses and validates a rule's pattern according to its type.
// Returns a ConfigError when the pattern is malformed; this converts what
// would be a per-track runtime failure into a load-time failure.
func CompileRule(r *models.Rule) (*CompiledRule, error) {
	c := &CompiledRule{
		id:            r.ID,
		ruleType:      r.Type,
		action:        r.Action,
		pattern:       r.Pattern,
		caseSensitive: r.CaseSensitive,
	}

	switch r.Type {
	case models.RuleTypeName, models.RuleTypeKeyword, models.RuleTypeGroup, models.RuleTypeSourceName:
		if r.RegexMode {
			pattern := r.Pattern
			if !r.CaseSensitive {
				pattern = "(?i)" + pattern
			}
			re, err := regexp.Compile(pattern)
			if err != nil {
				return nil, &ConfigError{
					Cause:  ErrInvalidRulePattern,
					RuleID: r.ID,
					Detail: fmt.Sprintf("rule %q: invalid regex %q: %v", r.Name, r.Pattern, err),
				}
			}
			c.regex = re
		}
	case models.RuleTypeResolution:
		if !models.IsResolutionToken(r.Pattern) {
			return nil, &ConfigError{
				Cause:  ErrInvalidRulePattern,
				RuleID: r.ID,
				Detail: fmt.Sprintf("rule %q: unknown resolution token %q", r.Name, r.Pattern),
			}
		}
		c.resolution = strings.ToLower(strings.TrimSpace(r.Pattern))
	case models.RuleTypeBitrate:
		minKbps, maxKbps, err := models.ParseBitratePattern(r.Pattern)
		if err != nil {
			return nil, &ConfigError{
				Cause:  ErrInvalidRulePattern,
				RuleID: r.ID,
				Detail: fmt.Sprintf("rule %q: %v", r.Name, err),
			}
		}
		c.minKbps, c.maxKbps = minKbps, maxKbps
	case models.RuleTypeStatus:
		status, err := models.ParseStatusPattern(r.Pattern)
		if err != nil {
			return nil, &ConfigError{
				Cause:  ErrInvalidRulePattern,
				RuleID: r.ID,
				Detail: fmt.Sprintf("rule %q: %v", r.Name, err),
			}
		}
		c.status = status
	default:
		return nil, &ConfigError{
			Cause:  ErrInvalidRulePattern,
			RuleID: r.ID,
			Detail: fmt.Sprintf("rule %q: unknown type %q", r.Name, r.Type),
		}
	}

	return c, nil
}

// RuleID returns the id of the source rule.
func (c *CompiledRule) RuleID() models.ULID {
	return c.id
}

// Action returns the rule polarity.
func (c *CompiledRule) Action() models.RuleAction {
	return c.action
}

// Matches reports whether the rule matches the track. A track missing the
// field the rule needs never matches, regardless of polarity.
func (c *CompiledRule) Matches(t *models.Track) bool {
	switch c.ruleType {
	case models.RuleTypeName:
		return c.matchText(t.Name)
	case models.RuleTypeGroup:
		return c.matchText(t.GroupTitle)
	case models.RuleTypeSourceName:
		return c.matchText(t.SourceName())
	case models.RuleTypeKeyword:
		return c.matchText(t.Name) ||
			c.matchText(t.GroupTitle) ||
			c.matchText(t.SourceName()) ||
			c.matchText(t.StreamURL)
	case models.RuleTypeResolution:
		res := strings.ToLower(strings.TrimSpace(t.Resolution))
		return models.IsResolutionToken(res) && res == c.resolution
	case models.RuleTypeBitrate:
		if t.Bitrate == nil {
			return false
		}
		if c.minKbps != nil && *t.Bitrate < *c.minKbps {
			return false
		}
		if c.maxKbps != nil && *t.Bitrate > *c.maxKbps {
			return false
		}
		return true
	case models.RuleTypeStatus:
		// An unprobed track matches neither polarity.
		return t.Status() != models.TestStatusUnknown && t.Status() == c.status
	default:
		return false
	}
}

// matchText performs substring or regex matching against one field value.
// Empty field values never match.
func (c *CompiledRule) matchText(value string) bool {
	if value == "" {
		return false
	}
	if c.regex != nil {
		return c.regex.MatchString(value)
	}
	if c.caseSensitive {
		return strings.Contains(value, c.pattern)
	}
	return strings.Contains(strings.ToLower(value), strings.ToLower(c.pattern))
}
