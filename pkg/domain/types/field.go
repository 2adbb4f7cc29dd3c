package types

// FieldType represents the semantic type of a configured field. It determines
// both the rendered input control and the outbound wire type.
type FieldType string

const (
	FieldTypeString     FieldType = "string"
	FieldTypeNumber     FieldType = "number"
	FieldTypeCalendar   FieldType = "calendar"
	FieldTypeSelector   FieldType = "selector"
	FieldTypeTextarea   FieldType = "textarea"
	FieldTypeAttachment FieldType = "attachment"
)

// AllFieldTypes returns all valid field types
func AllFieldTypes() []FieldType {
	return []FieldType{
		FieldTypeString,
		FieldTypeNumber,
		FieldTypeCalendar,
		FieldTypeSelector,
		FieldTypeTextarea,
		FieldTypeAttachment,
	}
}

// IsValid checks if the field type is valid
func (t FieldType) IsValid() bool {
	switch t {
	case FieldTypeString,
		FieldTypeNumber,
		FieldTypeCalendar,
		FieldTypeSelector,
		FieldTypeTextarea,
		FieldTypeAttachment:
		return true
	default:
		return false
	}
}

// String returns the string representation of the field type
func (t FieldType) String() string {
	return string(t)
}

// ControlKind is the input control a field renders as
type ControlKind string

const (
	ControlText     ControlKind = "text"
	ControlNumber   ControlKind = "number"
	ControlDate     ControlKind = "date"
	ControlSelect   ControlKind = "select"
	ControlTextarea ControlKind = "textarea"
	ControlFile     ControlKind = "file"
)

// Control returns the input control kind for the field type
func (t FieldType) Control() ControlKind {
	switch t {
	case FieldTypeNumber:
		return ControlNumber
	case FieldTypeCalendar:
		return ControlDate
	case FieldTypeSelector:
		return ControlSelect
	case FieldTypeTextarea:
		return ControlTextarea
	case FieldTypeAttachment:
		return ControlFile
	default:
		return ControlText
	}
}
