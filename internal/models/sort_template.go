package models

// GroupOrder is the desired channel sequence for one output group.
type GroupOrder struct {
	// Group is the output group title this ordering applies to.
	Group string `json:"group"`

	// Channels is the desired channel name sequence within the group.
	Channels []string `json:"channels"`
}

// GroupOrders is an ordered list of per-group channel sequences. The slice
// order defines the group output order; a map would lose it.
type GroupOrders []GroupOrder

// ChannelsFor returns the channel sequence for a group, or nil when the
// group is not listed. Group lookup is case-sensitive; channel matching
// inside the sort resolver is not.
func (g GroupOrders) ChannelsFor(group string) []string {
	for _, o := range g {
		if o.Group == group {
			return o.Channels
		}
	}
	return nil
}

// Merge appends orderings from other, keeping the receiver's entry when a
// group is listed in both and extending its channel list with unseen names.
func (g GroupOrders) Merge(other GroupOrders) GroupOrders {
	merged := make(GroupOrders, 0, len(g)+len(other))
	index := make(map[string]int, len(g))
	for _, o := range g {
		index[o.Group] = len(merged)
		merged = append(merged, GroupOrder{Group: o.Group, Channels: append([]string(nil), o.Channels...)})
	}
	for _, o := range other {
		i, ok := index[o.Group]
		if !ok {
			index[o.Group] = len(merged)
			merged = append(merged, GroupOrder{Group: o.Group, Channels: append([]string(nil), o.Channels...)})
			continue
		}
		seen := make(map[string]bool, len(merged[i].Channels))
		for _, c := range merged[i].Channels {
			seen[c] = true
		}
		for _, c := range o.Channels {
			if !seen[c] {
				merged[i].Channels = append(merged[i].Channels, c)
				seen[c] = true
			}
		}
	}
	return merged
}

// SortTemplate is a named ordering specification for groups and the
// channels within them.
type SortTemplate struct {
	BaseModel

	// Name is a unique human-readable name for this template.
	Name string `gorm:"size:255;not null;uniqueIndex" json:"name"`

	// Description provides additional details about the template.
	Description string `gorm:"size:1024" json:"description,omitempty"`

	// GroupOrders holds the ordered per-group channel sequences,
	// serialized as JSON.
	GroupOrders GroupOrders `gorm:"type:text;serializer:json" json:"group_orders"`
}

// TableName returns the table name for SortTemplate.
func (SortTemplate) TableName() string {
	return "sort_templates"
}

// Validate checks required template fields.
func (t *SortTemplate) Validate() error {
	if t.Name == "" {
		return ErrNameRequired
	}
	return nil
}
