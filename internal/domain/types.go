package domain

import "time"

// Entry represents one catalog item (a tool)
type Entry struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Description    string    `json:"description"`
	Website        string    `json:"website,omitempty"`
	Functions      []string  `json:"functions"`
	Roles          []string  `json:"roles"`
	UseCase        string    `json:"use_case"`
	TechnicalLevel string    `json:"technical_level"`
	GDPRCompliant  bool      `json:"gdpr_compliant"`
	DataResidency  bool      `json:"data_residency"`
	AIActCompliant bool      `json:"ai_act_compliant"`
	Company        *Company  `json:"company,omitempty"`
	CreatedAt      time.Time `json:"created_at,omitempty"`
}

// Company describes the vendor behind an entry. It is informational only.
type Company struct {
	Name          string `json:"name"`
	FoundedYear   int    `json:"founded_year,omitempty"`
	Location      string `json:"location,omitempty"`
	EmployeeCount string `json:"employee_count,omitempty"`
}

// Review is free-text feedback attached to one entry
type Review struct {
	ID         string    `json:"id"`
	ToolID     string    `json:"tool_id"`
	Text       string    `json:"text"`
	AuthorName string    `json:"author_name"`
	Rating     int       `json:"rating"`
	CreatedAt  time.Time `json:"created_at"`
	// Local is set when the review was accepted without reaching the store.
	Local bool `json:"local,omitempty"`
}

// Subscription is a newsletter sign-up
type Subscription struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// Query is an open-ended request left for manual follow-up
type Query struct {
	ID        string    `json:"id"`
	Name      string    `json:"name,omitempty"`
	Email     string    `json:"email"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

const (
	// AnonymousAuthor is used when a review is submitted without a name
	AnonymousAuthor = "Anonymous"
	// DefaultRating is used when a review is submitted without a rating
	DefaultRating = 5
)
