package filter

import "github.com/pbaille/toolcat/internal/domain"

// Facet lists the selectable values of one dimension
type Facet struct {
	Dimension string       `json:"dimension"`
	Values    []FacetValue `json:"values"`
}

// FacetValue describes one selectable value. Count is the size of the result
// with this value selected, and Toggle is the encoded state after toggling it.
type FacetValue struct {
	Value    string `json:"value"`
	Selected bool   `json:"selected"`
	Count    int    `json:"count"`
	Toggle   string `json:"toggle"`
}

// Facets builds the facet list for every dimension present in vocab
func Facets(entries []domain.Entry, s State, vocab map[Dimension][]string) []Facet {
	var facets []Facet
	for _, d := range Dimensions() {
		values, ok := vocab[d]
		if !ok {
			continue
		}
		facet := Facet{Dimension: d.String(), Values: make([]FacetValue, 0, len(values))}
		for _, value := range values {
			selected := s.Values(d).Has(value)
			toggled := s.ToggleValue(d, value)

			withValue := toggled
			if selected {
				withValue = s
			}

			facet.Values = append(facet.Values, FacetValue{
				Value:    value,
				Selected: selected,
				Count:    len(Apply(entries, withValue)),
				Toggle:   toggled.Query().Encode(),
			})
		}
		facets = append(facets, facet)
	}
	return facets
}
