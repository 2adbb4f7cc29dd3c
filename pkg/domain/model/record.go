package model

import (
	"encoding/json"
	"fmt"
)

// FieldValueKind discriminates the shapes the downstream tracker returns for
// a custom field value.
type FieldValueKind int

const (
	// ValueScalar is a plain string/number value
	ValueScalar FieldValueKind = iota
	// ValueChoice is a single selected option object ({name: ...})
	ValueChoice
	// ValueMultiChoice is a list of selected options
	ValueMultiChoice
	// ValueObject is any other object shape, kept as its JSON text
	ValueObject
)

// FieldValue is a custom field value resolved into a tagged union at record
// ingestion time, so display extraction is a single switch instead of
// repeated shape probing.
type FieldValue struct {
	FieldID int
	Kind    FieldValueKind
	Scalar  string
	Choice  string
	Choices []string
	Object  string
}

// Display returns the human-readable string for the value: scalar, the
// selected choice name, the first of multiple choices, or the stringified
// object, in that order.
func (v *FieldValue) Display() string {
	switch v.Kind {
	case ValueScalar:
		return v.Scalar
	case ValueChoice:
		return v.Choice
	case ValueMultiChoice:
		if len(v.Choices) > 0 {
			return v.Choices[0]
		}
		return ""
	case ValueObject:
		return v.Object
	default:
		return ""
	}
}

// Clone returns a deep copy of the field value
func (v *FieldValue) Clone() FieldValue {
	copied := *v
	if v.Choices != nil {
		copied.Choices = make([]string, len(v.Choices))
		copy(copied.Choices, v.Choices)
	}
	return copied
}

// ResolveFieldValue converts a raw downstream value into the union. The
// tracker inconsistently ships a plain scalar, a {name:...} object, a
// values[] list of option objects, or something else entirely.
func ResolveFieldValue(fieldID int, value any, values []any) FieldValue {
	fv := FieldValue{FieldID: fieldID}

	if len(values) > 0 {
		fv.Kind = ValueMultiChoice
		fv.Choices = make([]string, 0, len(values))
		for _, raw := range values {
			fv.Choices = append(fv.Choices, choiceName(raw))
		}
		return fv
	}

	switch v := value.(type) {
	case nil:
		fv.Kind = ValueScalar
	case string:
		fv.Kind = ValueScalar
		fv.Scalar = v
	case float64:
		fv.Kind = ValueScalar
		fv.Scalar = formatNumber(v)
	case bool:
		fv.Kind = ValueScalar
		fv.Scalar = fmt.Sprintf("%t", v)
	case map[string]any:
		if name, ok := v["name"].(string); ok {
			fv.Kind = ValueChoice
			fv.Choice = name
			return fv
		}
		fv.Kind = ValueObject
		if data, err := json.Marshal(v); err == nil {
			fv.Object = string(data)
		}
	default:
		fv.Kind = ValueScalar
		fv.Scalar = fmt.Sprint(v)
	}
	return fv
}

func choiceName(raw any) string {
	if obj, ok := raw.(map[string]any); ok {
		if name, ok := obj["name"].(string); ok {
			return name
		}
	}
	if s, ok := raw.(string); ok {
		return s
	}
	return fmt.Sprint(raw)
}

func formatNumber(f float64) string {
	if f == float64(int64(f)) {
		return fmt.Sprintf("%d", int64(f))
	}
	return fmt.Sprintf("%g", f)
}

// Record is one item fetched from the downstream tracker. Custom field
// values are resolved once at ingestion; Flat carries any conventional
// custom_field_N keys found directly on the item for the extraction
// fallback chain.
type Record struct {
	ID           int64
	Name         string
	Status       string
	CustomFields []FieldValue
	Flat         map[string]string
}

// CustomField returns the resolved value for the given downstream field id,
// or nil if the record has no such field.
func (r *Record) CustomField(referenceID int) *FieldValue {
	for i := range r.CustomFields {
		if r.CustomFields[i].FieldID == referenceID {
			return &r.CustomFields[i]
		}
	}
	return nil
}

// Clone returns a deep copy of the record
func (r *Record) Clone() *Record {
	copied := &Record{
		ID:     r.ID,
		Name:   r.Name,
		Status: r.Status,
	}
	if r.CustomFields != nil {
		copied.CustomFields = make([]FieldValue, len(r.CustomFields))
		for i := range r.CustomFields {
			copied.CustomFields[i] = r.CustomFields[i].Clone()
		}
	}
	if r.Flat != nil {
		copied.Flat = make(map[string]string, len(r.Flat))
		for k, v := range r.Flat {
			copied.Flat[k] = v
		}
	}
	return copied
}
