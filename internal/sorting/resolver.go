// Package sorting orders filtered tracks according to a sort template.
// Ordering is a two-level stable arrangement: groups follow the template's
// group sequence with unlisted groups appended in first-seen order, and
// channels within a group follow the template's channel sequence with
// unlisted channels appended in filtered-list order. Re-running with the
// same inputs yields identical output.
package sorting

import (
	"strings"

	"github.com/lunnlew/m3u-filter/internal/models"
)

// Order arranges tracks per the template. A nil template (or one with no
// entries) leaves the input order untouched. The input slice is not
// modified.
func Order(tracks []*models.Track, tpl *models.SortTemplate) []*models.Track {
	if len(tracks) == 0 {
		return nil
	}

	var orders models.GroupOrders
	if tpl != nil {
		orders = tpl.GroupOrders
	}

	// Bucket tracks by group, remembering each group's first appearance.
	groups := make(map[string][]*models.Track)
	firstSeen := make([]string, 0)
	for _, t := range tracks {
		if _, ok := groups[t.GroupTitle]; !ok {
			firstSeen = append(firstSeen, t.GroupTitle)
		}
		groups[t.GroupTitle] = append(groups[t.GroupTitle], t)
	}

	// Template groups first, in template order; the rest keep their
	// first-seen order from the filtered list.
	groupSequence := make([]string, 0, len(firstSeen))
	emitted := make(map[string]bool, len(firstSeen))
	for _, o := range orders {
		if _, ok := groups[o.Group]; ok && !emitted[o.Group] {
			groupSequence = append(groupSequence, o.Group)
			emitted[o.Group] = true
		}
	}
	for _, g := range firstSeen {
		if !emitted[g] {
			groupSequence = append(groupSequence, g)
			emitted[g] = true
		}
	}

	out := make([]*models.Track, 0, len(tracks))
	for _, g := range groupSequence {
		out = append(out, orderWithinGroup(groups[g], orders.ChannelsFor(g))...)
	}
	return out
}

// orderWithinGroup arranges one group's tracks by the template's channel
// sequence. Matching is case-insensitive on the display name. Channels
// absent from the sequence are appended after, preserving their filtered
// order; a channel listed several times keeps its first listed position.
func orderWithinGroup(tracks []*models.Track, sequence []string) []*models.Track {
	if len(sequence) == 0 {
		return tracks
	}

	rank := make(map[string]int, len(sequence))
	for i, name := range sequence {
		key := strings.ToLower(name)
		if _, ok := rank[key]; !ok {
			rank[key] = i
		}
	}

	// Stable partition: ranked tracks ordered by rank (ties keep input
	// order), unranked tracks appended in input order.
	buckets := make([][]*models.Track, len(sequence))
	var unranked []*models.Track
	for _, t := range tracks {
		if i, ok := rank[strings.ToLower(t.Name)]; ok {
			buckets[i] = append(buckets[i], t)
		} else {
			unranked = append(unranked, t)
		}
	}

	out := make([]*models.Track, 0, len(tracks))
	for _, b := range buckets {
		out = append(out, b...)
	}
	return append(out, unranked...)
}
