package filter

import (
	"net/url"
	"reflect"
	"testing"
)

func TestToggleValueAddsAndRemoves(t *testing.T) {
	s := Default().ToggleValue(Roles, "Manager")
	if !s.Roles.Has("Manager") || s.Roles.Len() != 1 {
		t.Fatalf("expected Manager selected, got %v", s.Roles.Values())
	}
	s = s.ToggleValue(Roles, "Manager")
	if s.Roles.Len() != 0 {
		t.Fatalf("expected Manager removed, got %v", s.Roles.Values())
	}
}

func TestToggleValueTouchesOneDimension(t *testing.T) {
	s := State{Functions: NewSet("Sales"), Compliance: Compliance{AIAct: true}, SearchText: "x"}
	next := s.ToggleValue(UseCases, "Hiring")

	if !reflect.DeepEqual(next.Functions, s.Functions) || next.Compliance != s.Compliance || next.SearchText != "x" {
		t.Fatalf("unexpected change outside use cases: %+v", next)
	}
	if !next.UseCases.Has("Hiring") {
		t.Fatal("expected Hiring selected")
	}
}

func TestTransitionsLeavePreviousStateUsable(t *testing.T) {
	base := Default().ToggleValue(Functions, "Sales")
	next := base.ToggleValue(Functions, "Legal").ToggleValue(Functions, "Sales")

	if !reflect.DeepEqual(base.Functions.Values(), []string{"Sales"}) {
		t.Fatalf("base changed: %v", base.Functions.Values())
	}
	if !reflect.DeepEqual(next.Functions.Values(), []string{"Legal"}) {
		t.Fatalf("next: %v", next.Functions.Values())
	}

	// mutating a derived state's set must not leak into its parent
	next.Functions["Ops"] = struct{}{}
	if base.Functions.Has("Ops") {
		t.Fatal("derived state shares its set with the base state")
	}
}

func TestToggleComplianceFlipsOneFlag(t *testing.T) {
	s := Default().ToggleCompliance(DataResidency)
	if s.Compliance != (Compliance{DataResidency: true}) {
		t.Fatalf("got %+v", s.Compliance)
	}
	s = s.ToggleCompliance(AIAct).ToggleCompliance(DataResidency)
	if s.Compliance != (Compliance{AIAct: true}) {
		t.Fatalf("got %+v", s.Compliance)
	}
}

func TestResetReturnsDefault(t *testing.T) {
	s := Default().
		ToggleValue(TechnicalLevels, "No-code").
		ToggleCompliance(GDPR).
		SetSearchText("bot")
	if s.IsDefault() {
		t.Fatal("expected constrained state")
	}
	if !s.Reset().IsDefault() {
		t.Fatal("expected Reset to clear every constraint")
	}
}

func TestParseDimensionAndFlag(t *testing.T) {
	for _, d := range Dimensions() {
		got, err := ParseDimension(d.String())
		if err != nil || got != d {
			t.Fatalf("dimension %v: got %v, %v", d, got, err)
		}
	}
	for _, f := range Flags() {
		got, err := ParseFlag(f.String())
		if err != nil || got != f {
			t.Fatalf("flag %v: got %v, %v", f, got, err)
		}
	}
	if _, err := ParseDimension("industries"); err == nil {
		t.Fatal("expected error for unknown dimension")
	}
}

func TestQueryRoundTrip(t *testing.T) {
	s := Default().
		ToggleValue(Functions, "Sales").
		ToggleValue(Functions, "IT").
		ToggleValue(TechnicalLevels, "No-code").
		ToggleCompliance(AIAct).
		SetSearchText("chat")

	parsed := ParseQuery(s.Query())
	if !reflect.DeepEqual(parsed.Query(), s.Query()) {
		t.Fatalf("round trip mismatch: %v vs %v", parsed.Query(), s.Query())
	}
	if !parsed.Functions.Has("IT") || !parsed.Compliance.AIAct || parsed.SearchText != "chat" {
		t.Fatalf("unexpected parsed state %+v", parsed)
	}
}

func TestParseQueryIgnoresDuplicatesAndFalseFlags(t *testing.T) {
	v := url.Values{
		"role": {"Manager", "Manager", ""},
		"gdpr": {"false"},
		"x":    {"1"},
	}
	s := ParseQuery(v)
	if !reflect.DeepEqual(s.Roles.Values(), []string{"Manager"}) {
		t.Fatalf("roles: %v", s.Roles.Values())
	}
	if s.Compliance.GDPR {
		t.Fatal("gdpr=false must not set the flag")
	}
}

func TestFacets(t *testing.T) {
	entries := sampleEntries()
	s := Default().ToggleValue(Functions, "Sales")
	vocab := map[Dimension][]string{
		Functions:       {"Sales", "HR"},
		TechnicalLevels: {"No-code"},
	}

	facets := Facets(entries, s, vocab)
	if len(facets) != 2 {
		t.Fatalf("expected 2 facets, got %d", len(facets))
	}

	sales := facets[0].Values[0]
	if !sales.Selected || sales.Count != 2 {
		t.Fatalf("sales facet: %+v", sales)
	}
	if sales.Toggle != "" {
		t.Fatalf("toggling the only selection should yield the empty query, got %q", sales.Toggle)
	}

	hr := facets[0].Values[1]
	if hr.Selected || hr.Count != 3 {
		t.Fatalf("hr facet: %+v", hr)
	}

	noCode := facets[1].Values[0]
	if noCode.Count != 2 {
		t.Fatalf("no-code facet: %+v", noCode)
	}
}
