// Package filter derives the visible subset of catalog entries from the
// user's current selection. Everything here is pure: no function mutates
// its inputs, and every transition returns a fresh State.
package filter

import (
	"fmt"
	"sort"
)

// Dimension names a categorical filter dimension
type Dimension int

const (
	Functions Dimension = iota
	Roles
	UseCases
	TechnicalLevels
)

var dimensionNames = [...]string{"functions", "roles", "useCases", "technicalLevels"}

// Dimensions lists every categorical dimension in display order
func Dimensions() []Dimension {
	return []Dimension{Functions, Roles, UseCases, TechnicalLevels}
}

func (d Dimension) String() string {
	if d < 0 || int(d) >= len(dimensionNames) {
		return fmt.Sprintf("Dimension(%d)", int(d))
	}
	return dimensionNames[d]
}

// ParseDimension maps a dimension name back to its value
func ParseDimension(s string) (Dimension, error) {
	for i, name := range dimensionNames {
		if name == s {
			return Dimension(i), nil
		}
	}
	return 0, fmt.Errorf("unknown filter dimension %q", s)
}

// Flag names a compliance requirement
type Flag int

const (
	GDPR Flag = iota
	DataResidency
	AIAct
)

var flagNames = [...]string{"gdpr", "dataResidency", "aiAct"}

// Flags lists every compliance flag
func Flags() []Flag {
	return []Flag{GDPR, DataResidency, AIAct}
}

func (f Flag) String() string {
	if f < 0 || int(f) >= len(flagNames) {
		return fmt.Sprintf("Flag(%d)", int(f))
	}
	return flagNames[f]
}

// ParseFlag maps a flag name back to its value
func ParseFlag(s string) (Flag, error) {
	for i, name := range flagNames {
		if name == s {
			return Flag(i), nil
		}
	}
	return 0, fmt.Errorf("unknown compliance flag %q", s)
}

// Set is an unordered set of selected values. A nil or empty Set places no
// constraint on its dimension. Transitions never modify a Set in place.
type Set map[string]struct{}

// NewSet builds a Set from values, collapsing duplicates
func NewSet(values ...string) Set {
	s := make(Set, len(values))
	for _, v := range values {
		s[v] = struct{}{}
	}
	return s
}

// Has reports whether v is selected
func (s Set) Has(v string) bool {
	_, ok := s[v]
	return ok
}

// Len returns the number of selected values
func (s Set) Len() int { return len(s) }

// Values returns the selected values in sorted order
func (s Set) Values() []string {
	out := make([]string, 0, len(s))
	for v := range s {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

func (s Set) clone() Set {
	if s == nil {
		return nil
	}
	out := make(Set, len(s))
	for v := range s {
		out[v] = struct{}{}
	}
	return out
}

func (s Set) toggle(v string) Set {
	out := make(Set, len(s)+1)
	for existing := range s {
		out[existing] = struct{}{}
	}
	if _, ok := out[v]; ok {
		delete(out, v)
	} else {
		out[v] = struct{}{}
	}
	return out
}

// Compliance holds the required compliance flags. A false field places no
// constraint; it never means "must be non-compliant".
type Compliance struct {
	GDPR          bool `json:"gdpr"`
	DataResidency bool `json:"dataResidency"`
	AIAct         bool `json:"aiAct"`
}

// Get returns the requirement for one flag
func (c Compliance) Get(f Flag) bool {
	switch f {
	case GDPR:
		return c.GDPR
	case DataResidency:
		return c.DataResidency
	case AIAct:
		return c.AIAct
	}
	return false
}

// State is the user's current filter and search selection
type State struct {
	Functions       Set
	Roles           Set
	UseCases        Set
	TechnicalLevels Set
	Compliance      Compliance
	SearchText      string
}

// Default returns the canonical state with no constraints
func Default() State {
	return State{}
}

// Values returns the selection for one dimension
func (s State) Values(d Dimension) Set {
	switch d {
	case Functions:
		return s.Functions
	case Roles:
		return s.Roles
	case UseCases:
		return s.UseCases
	case TechnicalLevels:
		return s.TechnicalLevels
	}
	return nil
}

// IsDefault reports whether the state places no constraint at all
func (s State) IsDefault() bool {
	for _, d := range Dimensions() {
		if s.Values(d).Len() > 0 {
			return false
		}
	}
	return s.Compliance == (Compliance{}) && s.SearchText == ""
}

// ToggleValue adds value to the dimension's selection, or removes it when
// already selected. Other dimensions are untouched.
func (s State) ToggleValue(d Dimension, value string) State {
	next := s.clone()
	toggled := s.Values(d).toggle(value)
	switch d {
	case Functions:
		next.Functions = toggled
	case Roles:
		next.Roles = toggled
	case UseCases:
		next.UseCases = toggled
	case TechnicalLevels:
		next.TechnicalLevels = toggled
	}
	return next
}

// ToggleCompliance flips exactly one compliance requirement
func (s State) ToggleCompliance(f Flag) State {
	next := s.clone()
	switch f {
	case GDPR:
		next.Compliance.GDPR = !s.Compliance.GDPR
	case DataResidency:
		next.Compliance.DataResidency = !s.Compliance.DataResidency
	case AIAct:
		next.Compliance.AIAct = !s.Compliance.AIAct
	}
	return next
}

// SetSearchText replaces the search text
func (s State) SetSearchText(text string) State {
	next := s.clone()
	next.SearchText = text
	return next
}

// Reset returns the default state
func (s State) Reset() State {
	return Default()
}

func (s State) clone() State {
	return State{
		Functions:       s.Functions.clone(),
		Roles:           s.Roles.clone(),
		UseCases:        s.UseCases.clone(),
		TechnicalLevels: s.TechnicalLevels.clone(),
		Compliance:      s.Compliance,
		SearchText:      s.SearchText,
	}
}
