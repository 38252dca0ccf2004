// Package forms holds the user-submitted payloads and their validation.
package forms

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator"
	"github.com/pbaille/toolcat/internal/domain"
)

// EntrySubmission is the payload of the "submit a tool" form
type EntrySubmission struct {
	Name           string       `json:"name" validate:"required"`
	Description    string       `json:"description"`
	Website        string       `json:"website" validate:"omitempty,url"`
	Functions      []string     `json:"functions" validate:"unique"`
	Roles          []string     `json:"roles" validate:"unique"`
	UseCase        string       `json:"use_case"`
	TechnicalLevel string       `json:"technical_level"`
	GDPRCompliant  bool         `json:"gdpr_compliant"`
	DataResidency  bool         `json:"data_residency"`
	AIActCompliant bool         `json:"ai_act_compliant"`
	Company        CompanyInput `json:"company"`
	ContactEmail   string       `json:"contact_email" validate:"required,email"`
	Consent        bool         `json:"consent" validate:"required"`
}

// CompanyInput is the optional vendor block of an entry submission
type CompanyInput struct {
	Name          string `json:"name"`
	FoundedYear   int    `json:"founded_year" validate:"omitempty,min=1800,max=2100"`
	Location      string `json:"location"`
	EmployeeCount string `json:"employee_count"`
}

// SubscriptionInput is the payload of the newsletter form
type SubscriptionInput struct {
	Email string `json:"email" validate:"required,email"`
}

// QuerySubmission is the payload of the open-ended request form
type QuerySubmission struct {
	Name    string `json:"name"`
	Email   string `json:"email" validate:"required,email"`
	Message string `json:"message" validate:"required"`
	Consent bool   `json:"consent" validate:"required"`
}

// ReviewInput is the payload of the review form. Blank text is checked by
// catalog.ValidateReviewText; the tags here also require the tool id and
// keep a given rating within 1..5 (0 means the default).
type ReviewInput struct {
	ToolID     string `json:"tool_id" validate:"required"`
	Text       string `json:"text"`
	AuthorName string `json:"author_name"`
	Rating     int    `json:"rating" validate:"omitempty,min=1,max=5"`
}

// Clean trims free-text fields and lower-cases the contact email
func (s *EntrySubmission) Clean() {
	s.Name = strings.TrimSpace(s.Name)
	s.Description = strings.TrimSpace(s.Description)
	s.Website = strings.TrimSpace(s.Website)
	s.UseCase = strings.TrimSpace(s.UseCase)
	s.TechnicalLevel = strings.TrimSpace(s.TechnicalLevel)
	s.Functions = trimAll(s.Functions)
	s.Roles = trimAll(s.Roles)
	s.Company.Name = strings.TrimSpace(s.Company.Name)
	s.Company.Location = strings.TrimSpace(s.Company.Location)
	s.ContactEmail = cleanEmail(s.ContactEmail)
}

// Clean normalizes the email
func (s *SubscriptionInput) Clean() {
	s.Email = cleanEmail(s.Email)
}

// Clean trims the query fields and normalizes the email
func (q *QuerySubmission) Clean() {
	q.Name = strings.TrimSpace(q.Name)
	q.Email = cleanEmail(q.Email)
	q.Message = strings.TrimSpace(q.Message)
}

func cleanEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func trimAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// report JSON field names so errors line up with the submitted form
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// Validate checks a form payload against its struct tags and returns the
// first failure as a *domain.ValidationError.
func Validate(form any) error {
	err := validate.Struct(form)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return &domain.ValidationError{Reason: err.Error()}
	}

	fe := verrs[0]
	return &domain.ValidationError{Field: fieldPath(fe.Namespace()), Reason: reason(fe.Tag())}
}

// fieldPath drops the struct name from a validator namespace,
// "EntrySubmission.company.founded_year" becoming "company.founded_year".
func fieldPath(ns string) string {
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func reason(tag string) string {
	switch tag {
	case "required":
		return "required"
	case "email":
		return "invalid email"
	case "url":
		return "invalid url"
	case "unique":
		return "duplicate values"
	case "min", "max":
		return "out of range"
	}
	return "invalid"
}
