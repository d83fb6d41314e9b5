package model

// BuiltinTemplateID names the implicit template that shows everything as stored.
const BuiltinTemplateID = "classic"

// Template is a named set of per-section disable flags and text overrides.
type Template struct {
	Meta
	ID       string           `json:"id"`
	Name     string           `json:"name" validate:"required,max=120"`
	Design   string           `json:"design,omitempty" validate:"omitempty,max=64"`
	Sections TemplateSections `json:"sections"`
}

// TemplateSections groups the rules for every section a template controls.
type TemplateSections struct {
	Experience     ItemRules  `json:"experience"`
	Education      ItemRules  `json:"education"`
	Courses        ItemRules  `json:"courses"`
	Skills         ItemRules  `json:"skills"`
	About          TextRules  `json:"about"`
	SkillsBlock    TextRules  `json:"skillsBlock"`
	Freelance      TextRules  `json:"freelance"`
	Footer         TextRules  `json:"footer"`
	ProfilePicture ToggleRule `json:"profilePicture"`
	Links          LinkRules  `json:"links"`
}

// ItemRules applies to a list section. Disabled items are dropped; a
// non-empty custom value replaces the item's description.
type ItemRules struct {
	Disabled     []int64          `json:"disabled,omitempty"`
	CustomValues map[int64]string `json:"customValues,omitempty"`
}

// TextRules applies to a single text block.
type TextRules struct {
	Disabled    bool   `json:"disabled,omitempty"`
	CustomValue string `json:"customValue,omitempty"`
}

// ToggleRule is a section that can only be switched off.
type ToggleRule struct {
	Disabled bool `json:"disabled,omitempty"`
}

// LinkRules lists the social-link keys to omit.
type LinkRules struct {
	Disabled []string `json:"disabled,omitempty"`
}

// IsBuiltin reports whether t is absent or the built-in template.
func (t *Template) IsBuiltin() bool {
	return t == nil || t.ID == "" || t.ID == BuiltinTemplateID
}

// BuiltinTemplate returns the implicit template: everything enabled, no overrides.
func BuiltinTemplate() *Template {
	return &Template{
		Meta:   Meta{Key: "template_" + BuiltinTemplateID, Type: KindTemplate},
		ID:     BuiltinTemplateID,
		Name:   "Classic",
		Design: BuiltinTemplateID,
	}
}
