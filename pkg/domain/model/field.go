package model

import (
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/doowon-lab/dwportal/pkg/domain/types"
)

// FieldDescriptor describes one editable/displayable attribute of a section.
// The JSON tags match the persisted document and the portal API; the external
// key has historically been called "codebeamerId" on the wire.
type FieldDescriptor struct {
	ID          int             `json:"id"`
	Name        string          `json:"name"`
	ExternalKey string          `json:"codebeamerId"`
	Type        types.FieldType `json:"type"`
	Required    bool            `json:"required"`
	Readonly    bool            `json:"readonly"`
	Options     []string        `json:"options,omitempty"`
	ReferenceID int             `json:"referenceId"`
}

// Validate checks if the descriptor is well-formed
func (d *FieldDescriptor) Validate() error {
	if d.Name == "" {
		return goerr.New("field name is required", goerr.V("id", d.ID))
	}
	if d.ExternalKey == "" {
		return goerr.New("field external key is required", goerr.V("id", d.ID), goerr.V("name", d.Name))
	}
	if !d.Type.IsValid() {
		return goerr.New("invalid field type", goerr.V("id", d.ID), goerr.V("type", d.Type))
	}
	if d.Type == types.FieldTypeSelector && len(d.Options) == 0 {
		return goerr.New("selector field requires at least one option", goerr.V("id", d.ID), goerr.V("name", d.Name))
	}
	return nil
}

// Clone returns a deep copy of the descriptor
func (d *FieldDescriptor) Clone() FieldDescriptor {
	copied := *d
	if d.Options != nil {
		copied.Options = make([]string, len(d.Options))
		copy(copied.Options, d.Options)
	}
	return copied
}

// ValidateDescriptors checks a section's descriptor list: ids and external
// keys must be unique within the list.
func ValidateDescriptors(descriptors []FieldDescriptor) error {
	ids := make(map[int]bool, len(descriptors))
	keys := make(map[string]bool, len(descriptors))
	for i := range descriptors {
		d := &descriptors[i]
		if err := d.Validate(); err != nil {
			return goerr.Wrap(err, "invalid field descriptor", goerr.V("index", i))
		}
		if ids[d.ID] {
			return goerr.New("duplicate field ID", goerr.V("id", d.ID))
		}
		ids[d.ID] = true
		if keys[d.ExternalKey] {
			return goerr.New("duplicate external key", goerr.V("key", d.ExternalKey))
		}
		keys[d.ExternalKey] = true
	}
	return nil
}

// SectionMap is the whole persisted configuration document. Saves replace
// the entire document; there is no per-section patch.
type SectionMap struct {
	FieldConfigs  map[types.Section][]FieldDescriptor `json:"fieldConfigs"`
	SectionTitles map[types.Section]string            `json:"sectionTitles"`
	TrackerIDs    map[types.Section]int               `json:"trackerIds"`
	LastUpdated   time.Time                           `json:"lastUpdated"`
}

// Validate checks every section's descriptor list
func (m *SectionMap) Validate() error {
	for section, descriptors := range m.FieldConfigs {
		if !section.IsValid() {
			return goerr.New("unknown section", goerr.V("section", section))
		}
		if err := ValidateDescriptors(descriptors); err != nil {
			return goerr.Wrap(err, "invalid section config", goerr.V("section", section))
		}
	}
	return nil
}

// Clone returns a deep copy of the section map
func (m *SectionMap) Clone() *SectionMap {
	copied := &SectionMap{
		FieldConfigs:  make(map[types.Section][]FieldDescriptor, len(m.FieldConfigs)),
		SectionTitles: make(map[types.Section]string, len(m.SectionTitles)),
		TrackerIDs:    make(map[types.Section]int, len(m.TrackerIDs)),
		LastUpdated:   m.LastUpdated,
	}
	for section, descriptors := range m.FieldConfigs {
		list := make([]FieldDescriptor, len(descriptors))
		for i := range descriptors {
			list[i] = descriptors[i].Clone()
		}
		copied.FieldConfigs[section] = list
	}
	for section, title := range m.SectionTitles {
		copied.SectionTitles[section] = title
	}
	for section, id := range m.TrackerIDs {
		copied.TrackerIDs[section] = id
	}
	return copied
}
