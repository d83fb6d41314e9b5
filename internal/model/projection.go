package model

// Projection is the render-ready view of one language's CV content after a
// template's disable and override rules have been applied. Empty strings and
// empty slices mean the section is omitted.
type Projection struct {
	LanguageID  LanguageID   `json:"languageId"`
	TemplateID  string       `json:"templateId"`
	Design      string       `json:"design"`
	Profile     Profile      `json:"profile"`
	Photo       string       `json:"photo"`
	About       string       `json:"about"`
	SkillsBlock string       `json:"skillsBlock"`
	Freelance   string       `json:"freelance"`
	Footer      string       `json:"footer"`
	Links       []Link       `json:"links"`
	Experience  []Experience `json:"experience"`
	Education   []Education  `json:"education"`
	Courses     []Course     `json:"courses"`
	Skills      []Skill      `json:"skills"`
}

// Profile is the contact block of a projection.
type Profile struct {
	FullName  string `json:"fullName"`
	Title     string `json:"title,omitempty"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`
	Location  string `json:"location,omitempty"`
	Website   string `json:"website,omitempty"`
	BirthDate string `json:"birthDate,omitempty"`
}

// Link is one social link in a projection.
type Link struct {
	Key string `json:"key"`
	URL string `json:"url"`
}
