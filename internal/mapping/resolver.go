// Package mapping resolves per-channel group and display name overrides
// for playlist generation. Lookup precedence is explicit: a mapping scoped
// to the generating rule set wins over a global mapping, which wins over
// the track's original values.
package mapping

import (
	"github.com/lunnlew/m3u-filter/internal/models"
)

// Override is the resolved rewrite for one channel.
type Override struct {
	// Group is the output group title.
	Group string

	// DisplayName optionally replaces the channel name; empty keeps it.
	DisplayName string
}

// Resolver answers group/display-name lookups for one generation run.
// It is built once from a read-only mapping snapshot and is safe for
// concurrent use.
type Resolver struct {
	scoped map[string]Override
	global map[string]Override
}

// NewResolver builds a resolver for the given rule set from a snapshot of
// mapping rows (scoped and global mixed). When the input contains several
// rows for the same (scope, channel) key the last one wins, matching the
// storage layer's last-write-wins upsert.
func NewResolver(ruleSetID models.ULID, mappings []*models.GroupMapping) *Resolver {
	r := &Resolver{
		scoped: make(map[string]Override),
		global: make(map[string]Override),
	}
	for _, m := range mappings {
		ov := Override{Group: m.CustomGroup, DisplayName: m.DisplayName}
		switch {
		case m.RuleSetID == nil:
			r.global[m.ChannelName] = ov
		case *m.RuleSetID == ruleSetID:
			r.scoped[m.ChannelName] = ov
		}
	}
	return r
}

// Resolve returns the output group and display name for a track. Tracks
// without a mapping keep their original group and name unchanged.
func (r *Resolver) Resolve(t *models.Track) (group, displayName string) {
	group, displayName = t.GroupTitle, t.Name

	ov, ok := r.scoped[t.Name]
	if !ok {
		ov, ok = r.global[t.Name]
	}
	if !ok {
		return group, displayName
	}

	group = ov.Group
	if ov.DisplayName != "" {
		displayName = ov.DisplayName
	}
	return group, displayName
}

// Len returns the number of distinct mapped channels.
func (r *Resolver) Len() int {
	return len(r.scoped) + len(r.global)
}

// FromTemplate expands a template's items into scoped mappings for the
// target rule set, one mapping per item. The caller persists them with a
// last-write-wins upsert, so applying a template overwrites any existing
// scoped mapping for the same channel.
func FromTemplate(tpl *models.GroupMappingTemplate, ruleSetID models.ULID) []*models.GroupMapping {
	out := make([]*models.GroupMapping, 0, len(tpl.Items))
	for _, item := range tpl.Items {
		id := ruleSetID
		out = append(out, &models.GroupMapping{
			ChannelName: item.ChannelName,
			CustomGroup: item.CustomGroup,
			DisplayName: item.DisplayName,
			RuleSetID:   &id,
		})
	}
	return out
}
