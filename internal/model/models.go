package model

import "encoding/json"

// Kind discriminates the record shapes that share the record table.
type Kind string

const (
	KindExperience  Kind = "experience"
	KindEducation   Kind = "education"
	KindCourse      Kind = "course"
	KindSkill       Kind = "skill"
	KindPersonal    Kind = "personal"
	KindLinks       Kind = "links"
	KindFooter      Kind = "footer"
	KindFreelance   Kind = "freelance"
	KindSettings    Kind = "settings"
	KindTemplate    Kind = "template"
	KindApplication Kind = "application"
)

// ListKinds are the independently identified, multi-instance kinds.
var ListKinds = []Kind{KindExperience, KindEducation, KindCourse, KindSkill}

// LanguageID identifies a language variant of the CV content.
// The zero value is the canonical language and is stored as JSON null.
type LanguageID string

// Canonical is the default language variant.
const Canonical LanguageID = ""

// IsCanonical reports whether l names the canonical language.
func (l LanguageID) IsCanonical() bool { return l == Canonical }

func (l LanguageID) String() string {
	if l == Canonical {
		return "(canonical)"
	}
	return string(l)
}

func (l LanguageID) MarshalJSON() ([]byte, error) {
	if l == Canonical {
		return []byte("null"), nil
	}
	return json.Marshal(string(l))
}

func (l *LanguageID) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*l = Canonical
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	*l = LanguageID(s)
	return nil
}

// Meta holds the storage fields every record carries.
type Meta struct {
	Key       string `json:"key"`
	Type      Kind   `json:"type,omitempty"`
	CreatedAt int64  `json:"createdAt"` // unix milliseconds
	UpdatedAt int64  `json:"updatedAt"` // unix milliseconds
}

// ListItem is embedded in every list entity.
type ListItem struct {
	Meta
	ID         int64      `json:"id"`
	LanguageID LanguageID `json:"languageId"`
	SortOrder  int        `json:"sortOrder"`
}

// Item gives generic repositories access to the embedded ListItem.
func (i *ListItem) Item() *ListItem { return i }

// Experience is one position held.
type Experience struct {
	ListItem
	Company     string `json:"company"`
	Position    string `json:"position"`
	Location    string `json:"location,omitempty"`
	StartDate   string `json:"startDate"`
	EndDate     string `json:"endDate,omitempty"`
	Current     bool   `json:"current,omitempty"`
	Description string `json:"description"`
}

// Education is one degree or school.
type Education struct {
	ListItem
	Institution string `json:"institution"`
	Degree      string `json:"degree"`
	Field       string `json:"field,omitempty"`
	StartDate   string `json:"startDate,omitempty"`
	EndDate     string `json:"endDate,omitempty"`
	Description string `json:"description"`
}

// Course is a completed course or certification.
type Course struct {
	ListItem
	Name           string `json:"name"`
	Provider       string `json:"provider,omitempty"`
	CompletionDate string `json:"completionDate"`
	URL            string `json:"url,omitempty"`
	Description    string `json:"description"`
}

// Skill is a single skill entry.
type Skill struct {
	ListItem
	Name        string `json:"name"`
	Level       string `json:"level,omitempty"`
	Category    string `json:"category,omitempty"`
	Description string `json:"description"`
}

// SingletonBase is embedded in every one-per-language record.
type SingletonBase struct {
	Meta
	LanguageID LanguageID `json:"languageId"`
}

// Base gives generic repositories access to the embedded SingletonBase.
func (b *SingletonBase) Base() *SingletonBase { return b }

// Personal holds contact details and the long-form text blocks.
type Personal struct {
	SingletonBase
	FullName      string `json:"fullName"`
	Title         string `json:"title,omitempty"`
	Email         string `json:"email,omitempty" validate:"omitempty,email"`
	Phone         string `json:"phone,omitempty"`
	Location      string `json:"location,omitempty"`
	Website       string `json:"website,omitempty"`
	BirthDate     string `json:"birthDate,omitempty"`
	Photo         string `json:"photo,omitempty"`
	About         string `json:"about,omitempty"`
	SkillsSummary string `json:"skillsSummary,omitempty"`
}

// Links maps a social-link key (linkedin, github, ...) to its URL.
type Links struct {
	SingletonBase
	Entries map[string]string `json:"entries"`
}

// Footer is the free text printed at the bottom of the CV.
type Footer struct {
	SingletonBase
	Text string `json:"text"`
}

// Freelance is the free text describing freelance availability.
type Freelance struct {
	SingletonBase
	Text string `json:"text"`
}

// Settings holds workspace-wide preferences and the current selections.
type Settings struct {
	SingletonBase
	DefaultLanguage    LanguageID   `json:"defaultLanguage"`
	AvailableLanguages []LanguageID `json:"availableLanguages,omitempty"`
	DefaultCurrency    string       `json:"defaultCurrency,omitempty" validate:"omitempty,len=3,uppercase"`
	SelectedLanguage   LanguageID   `json:"selectedLanguage"`
	SelectedTemplateID string       `json:"selectedTemplateId,omitempty"`
}

// Dismissals is the set of canonical identities of one kind that must no
// longer be suggested while editing one overlay language.
type Dismissals struct {
	Meta
	Kind       Kind       `json:"kind"`
	LanguageID LanguageID `json:"languageId"`
	Dismissed  []int64    `json:"dismissed"`
}

// Contains reports whether id is in the set.
func (d *Dismissals) Contains(id int64) bool {
	for _, v := range d.Dismissed {
		if v == id {
			return true
		}
	}
	return false
}

// CVData is one language's worth of CV content, as read from the store.
type CVData struct {
	LanguageID LanguageID
	Personal   *Personal
	Links      *Links
	Footer     *Footer
	Freelance  *Freelance
	Experience []Experience
	Education  []Education
	Courses    []Course
	Skills     []Skill
}
