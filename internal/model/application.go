package model

// ApplicationStatus tracks where a job application stands.
type ApplicationStatus string

const (
	StatusDraft     ApplicationStatus = "draft"
	StatusSent      ApplicationStatus = "sent"
	StatusInterview ApplicationStatus = "interview"
	StatusOffer     ApplicationStatus = "offer"
	StatusRejected  ApplicationStatus = "rejected"
	StatusAccepted  ApplicationStatus = "accepted"
	StatusWithdrawn ApplicationStatus = "withdrawn"
)

// Application pairs job metadata with the CV exactly as it was sent.
// Snapshot is written once at creation and never refreshed from live data.
type Application struct {
	Meta
	ID         string            `json:"id"`
	Company    string            `json:"company" validate:"required,max=200"`
	Position   string            `json:"position" validate:"required,max=200"`
	URL        string            `json:"url,omitempty" validate:"omitempty,url"`
	Date       string            `json:"date" validate:"omitempty,datetime=2006-01-02"`
	Status     ApplicationStatus `json:"status" validate:"oneof=draft sent interview offer rejected accepted withdrawn"`
	Salary     string            `json:"salary,omitempty"`
	Currency   string            `json:"currency,omitempty" validate:"omitempty,len=3,uppercase"`
	Notes      string            `json:"notes,omitempty"`
	LanguageID LanguageID        `json:"languageId"`
	TemplateID string            `json:"templateId"`
	Snapshot   Projection        `json:"snapshot"`
}
