package filter

import (
	"strings"

	"github.com/pbaille/toolcat/internal/domain"
	"golang.org/x/text/cases"
)

// Predicate decides whether one entry passes a single constraint
type Predicate func(domain.Entry) bool

// Predicates returns one predicate per active constraint of s. Dimensions
// without a constraint contribute nothing, so a default state yields none.
// The returned predicates must not be shared between goroutines.
func Predicates(s State) []Predicate {
	var preds []Predicate

	if s.SearchText != "" {
		preds = append(preds, nameContains(s.SearchText))
	}
	if s.Functions.Len() > 0 {
		sel := s.Functions
		preds = append(preds, func(e domain.Entry) bool { return intersects(e.Functions, sel) })
	}
	if s.Roles.Len() > 0 {
		sel := s.Roles
		preds = append(preds, func(e domain.Entry) bool { return intersects(e.Roles, sel) })
	}
	if s.UseCases.Len() > 0 {
		sel := s.UseCases
		preds = append(preds, func(e domain.Entry) bool { return sel.Has(e.UseCase) })
	}
	if s.TechnicalLevels.Len() > 0 {
		sel := s.TechnicalLevels
		preds = append(preds, func(e domain.Entry) bool { return sel.Has(e.TechnicalLevel) })
	}
	if s.Compliance.GDPR {
		preds = append(preds, func(e domain.Entry) bool { return e.GDPRCompliant })
	}
	if s.Compliance.DataResidency {
		preds = append(preds, func(e domain.Entry) bool { return e.DataResidency })
	}
	if s.Compliance.AIAct {
		preds = append(preds, func(e domain.Entry) bool { return e.AIActCompliant })
	}

	return preds
}

// All composes predicates with AND. An empty list accepts everything.
func All(preds ...Predicate) Predicate {
	return func(e domain.Entry) bool {
		for _, p := range preds {
			if !p(e) {
				return false
			}
		}
		return true
	}
}

// Apply returns the entries that satisfy every active constraint of s, in
// their original order. The input slice and its entries are left untouched.
func Apply(entries []domain.Entry, s State) []domain.Entry {
	match := All(Predicates(s)...)

	out := make([]domain.Entry, 0, len(entries))
	for _, e := range entries {
		if match(e) {
			out = append(out, e)
		}
	}
	return out
}

// nameContains matches names containing text, ignoring case
func nameContains(text string) Predicate {
	fold := cases.Fold()
	needle := fold.String(text)
	return func(e domain.Entry) bool {
		return strings.Contains(fold.String(e.Name), needle)
	}
}

func intersects(values []string, sel Set) bool {
	for _, v := range values {
		if sel.Has(v) {
			return true
		}
	}
	return false
}
