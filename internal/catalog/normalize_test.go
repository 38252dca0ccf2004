package catalog

import (
	"errors"
	"reflect"
	"testing"

	"github.com/pbaille/toolcat/internal/domain"
)

func TestNormalizeEntryDefaults(t *testing.T) {
	e, err := NormalizeEntry(domain.Record{
		"id":             "1",
		"name":           "DataSense",
		"functions":      nil,
		"gdpr_compliant": nil,
	})
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if e.Functions == nil || len(e.Functions) != 0 {
		t.Fatalf("functions should be an empty set, got %#v", e.Functions)
	}
	if e.Roles == nil || len(e.Roles) != 0 {
		t.Fatalf("roles should be an empty set, got %#v", e.Roles)
	}
	if e.GDPRCompliant || e.DataResidency || e.AIActCompliant {
		t.Fatalf("flags should default to false: %+v", e)
	}
	if e.Description != "" || e.UseCase != "" || e.TechnicalLevel != "" {
		t.Fatalf("strings should default to empty: %+v", e)
	}
	if e.Company != nil {
		t.Fatalf("expected no company, got %+v", e.Company)
	}
}

func TestNormalizeEntryCoercesTypes(t *testing.T) {
	e, err := NormalizeEntry(domain.Record{
		"id":               float64(42),
		"name":             "  LegalMind ",
		"functions":        []any{"Legal", "Legal", " Sales ", nil, ""},
		"role":             "Analyst",
		"useCase":          []any{"Contract review"},
		"technicalLevel":   "Low-code",
		"gdprCompliant":    "yes",
		"data_residency":   float64(1),
		"ai_act_compliant": true,
		"company": map[string]any{
			"name":         "Mind Inc",
			"founded_year": float64(2019),
			"location":     "Paris",
		},
	})
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}

	want := domain.Entry{
		ID:             "42",
		Name:           "LegalMind",
		Functions:      []string{"Legal", "Sales"},
		Roles:          []string{"Analyst"},
		UseCase:        "Contract review",
		TechnicalLevel: "Low-code",
		GDPRCompliant:  true,
		DataResidency:  true,
		AIActCompliant: true,
		Company:        &domain.Company{Name: "Mind Inc", FoundedYear: 2019, Location: "Paris"},
	}
	if !reflect.DeepEqual(e, want) {
		t.Fatalf("got %+v\nwant %+v", e, want)
	}
}

func TestNormalizeEntryFlatCompany(t *testing.T) {
	e, err := NormalizeEntry(domain.Record{
		"id": "1", "name": "X",
		"company_name": "Acme", "company_employee_count": "11-50",
	})
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if e.Company == nil || e.Company.Name != "Acme" || e.Company.EmployeeCount != "11-50" {
		t.Fatalf("unexpected company %+v", e.Company)
	}
}

func TestNormalizeEntryRequiresIdentity(t *testing.T) {
	for _, rec := range []domain.Record{
		{"name": "no id"},
		{"id": "1"},
		{"id": "  ", "name": "blank id"},
	} {
		if _, err := NormalizeEntry(rec); !errors.Is(err, ErrMissingIdentity) {
			t.Fatalf("record %v: expected ErrMissingIdentity, got %v", rec, err)
		}
	}
}

func TestNormalizeEntriesDropsUnidentified(t *testing.T) {
	entries := NormalizeEntries([]domain.Record{
		{"id": "1", "name": "First"},
		{"name": "No id"},
		{"id": "3", "name": "Third"},
	})
	if len(entries) != 2 || entries[0].ID != "1" || entries[1].ID != "3" {
		t.Fatalf("unexpected entries %+v", entries)
	}
}

func TestNormalizeReviewDefaults(t *testing.T) {
	r, err := NormalizeReview(domain.Record{"id": "r1", "toolId": "1", "text": "great", "created_at": "2026-01-02T10:00:00Z"})
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if r.AuthorName != domain.AnonymousAuthor || r.Rating != domain.DefaultRating {
		t.Fatalf("defaults not applied: %+v", r)
	}
	if r.ToolID != "1" || r.CreatedAt.IsZero() {
		t.Fatalf("unexpected review %+v", r)
	}
}
