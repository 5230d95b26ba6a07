package models

// GroupMapping rewrites the output group (and optionally display name) for
// one channel. A nil RuleSetID makes the mapping global; a non-nil value
// scopes it to generations of that rule set. Scoped mappings win over
// global ones for the same channel.
type GroupMapping struct {
	BaseModel

	// ChannelName is the track display name this mapping applies to.
	ChannelName string `gorm:"size:512;not null;index:idx_scope_channel,unique" json:"channel_name"`

	// CustomGroup is the group title written to generated output.
	CustomGroup string `gorm:"size:255;not null" json:"custom_group"`

	// DisplayName optionally overrides the channel name in output.
	DisplayName string `gorm:"size:512" json:"display_name,omitempty"`

	// RuleSetID scopes the mapping to one rule set; nil means global.
	RuleSetID *ULID `gorm:"type:varchar(26);index:idx_scope_channel,unique" json:"rule_set_id,omitempty"`
}

// TableName returns the table name for GroupMapping.
func (GroupMapping) TableName() string {
	return "group_mappings"
}

// Validate checks required mapping fields.
func (m *GroupMapping) Validate() error {
	if m.ChannelName == "" {
		return ErrChannelNameRequired
	}
	if m.CustomGroup == "" {
		return ErrCustomGroupRequired
	}
	return nil
}

// IsGlobal reports whether the mapping applies to all rule sets.
func (m *GroupMapping) IsGlobal() bool {
	return m.RuleSetID == nil
}

// GroupMappingTemplate is a named, reusable collection of mapping entries
// that can be applied in bulk to a rule set. Applying a template copies its
// items into scoped mappings for the target set; existing scoped mappings
// for the same channel are overwritten (apply is an explicit user action).
type GroupMappingTemplate struct {
	BaseModel

	// Name is a unique human-readable name for this template.
	Name string `gorm:"size:255;not null;uniqueIndex" json:"name"`

	// Description provides additional details about the template.
	Description string `gorm:"size:1024" json:"description,omitempty"`

	// Items are the ordered mapping entries.
	Items []GroupMappingTemplateItem `gorm:"foreignKey:TemplateID" json:"items,omitempty"`
}

// TableName returns the table name for GroupMappingTemplate.
func (GroupMappingTemplate) TableName() string {
	return "group_mapping_templates"
}

// Validate checks required template fields.
func (t *GroupMappingTemplate) Validate() error {
	if t.Name == "" {
		return ErrNameRequired
	}
	return nil
}

// GroupMappingTemplateItem is one mapping entry inside a template.
type GroupMappingTemplateItem struct {
	BaseModel

	// TemplateID is the owning template.
	TemplateID ULID `gorm:"type:varchar(26);not null;index" json:"template_id"`

	// ChannelName is the track display name this entry applies to.
	ChannelName string `gorm:"size:512;not null" json:"channel_name"`

	// CustomGroup is the group title written to generated output.
	CustomGroup string `gorm:"size:255;not null" json:"custom_group"`

	// DisplayName optionally overrides the channel name in output.
	DisplayName string `gorm:"size:512" json:"display_name,omitempty"`

	// Position orders entries within the template.
	Position int `gorm:"default:0" json:"position"`
}

// TableName returns the table name for GroupMappingTemplateItem.
func (GroupMappingTemplateItem) TableName() string {
	return "group_mapping_template_items"
}
