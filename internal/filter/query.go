package filter

import (
	"net/url"
	"strconv"
)

// Query string keys used to carry a State in URLs
const (
	keyFunction      = "function"
	keyRole          = "role"
	keyUseCase       = "use_case"
	keyLevel         = "level"
	keyGDPR          = "gdpr"
	keyDataResidency = "data_residency"
	keyAIAct         = "ai_act"
	keySearch        = "q"
)

var dimensionKeys = map[Dimension]string{
	Functions:       keyFunction,
	Roles:           keyRole,
	UseCases:        keyUseCase,
	TechnicalLevels: keyLevel,
}

var flagKeys = map[Flag]string{
	GDPR:          keyGDPR,
	DataResidency: keyDataResidency,
	AIAct:         keyAIAct,
}

// ParseQuery reads a State from URL query values. Unknown keys are ignored,
// and flags only count as set when they parse as a true boolean.
func ParseQuery(v url.Values) State {
	s := Default()
	for _, d := range Dimensions() {
		for _, value := range v[dimensionKeys[d]] {
			if value == "" || s.Values(d).Has(value) {
				continue
			}
			s = s.ToggleValue(d, value)
		}
	}
	for _, f := range Flags() {
		if on, err := strconv.ParseBool(v.Get(flagKeys[f])); err == nil && on {
			s = s.ToggleCompliance(f)
		}
	}
	return s.SetSearchText(v.Get(keySearch))
}

// Query encodes s as URL query values, the inverse of ParseQuery
func (s State) Query() url.Values {
	v := url.Values{}
	for _, d := range Dimensions() {
		for _, value := range s.Values(d).Values() {
			v.Add(dimensionKeys[d], value)
		}
	}
	for _, f := range Flags() {
		if s.Compliance.Get(f) {
			v.Set(flagKeys[f], "true")
		}
	}
	if s.SearchText != "" {
		v.Set(keySearch, s.SearchText)
	}
	return v
}
