package model

import (
	"strings"

	"github.com/doowon-lab/dwportal/pkg/domain/types"
)

// FormState is the transient, uncommitted values of an open create/edit
// form: a flat map of external key to the latest entered value. It is owned
// by exactly one open form and discarded on close or successful submit.
type FormState map[string]string

// Set applies an edit. The last write for a key wins.
func (s FormState) Set(key, value string) {
	s[key] = value
}

// Get returns the current value for a key, or the empty string
func (s FormState) Get(key string) string {
	return s[key]
}

// IsBlank reports whether the key is absent or holds only whitespace
func (s FormState) IsBlank(key string) bool {
	return strings.TrimSpace(s[key]) == ""
}

// Clear resets the form state to empty
func (s FormState) Clear() {
	for k := range s {
		delete(s, k)
	}
}

// Clone returns a copy of the form state
func (s FormState) Clone() FormState {
	copied := make(FormState, len(s))
	for k, v := range s {
		copied[k] = v
	}
	return copied
}

// FormControl is one rendered input in a form layout
type FormControl struct {
	FieldID     int               `json:"fieldId"`
	Name        string            `json:"name"`
	ExternalKey string            `json:"codebeamerId"`
	Control     types.ControlKind `json:"control"`
	Required    bool              `json:"required"`
	Readonly    bool              `json:"readonly"`
	Options     []string          `json:"options,omitempty"`
	Placeholder string            `json:"placeholder,omitempty"`
	Value       string            `json:"value,omitempty"`
}

// FormGroup is an ordered group of controls under a heading
type FormGroup struct {
	Title    string        `json:"title"`
	Controls []FormControl `json:"controls"`
}

// FormLayout is the renderable shape of a section's form: required fields
// first, then optional, each preserving descriptor order.
type FormLayout struct {
	Section types.Section `json:"section"`
	Groups  []FormGroup   `json:"groups"`
}

// ValidationResult is the outcome of validating a form state against a
// section's descriptors. Errors are in descriptor order and every
// independent failure appears.
type ValidationResult struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors"`
}
