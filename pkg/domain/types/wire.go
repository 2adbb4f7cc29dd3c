package types

// WireType is the downstream tracker's field-value type discriminator
type WireType string

const (
	WireText    WireType = "TextFieldValue"
	WireInteger WireType = "IntegerFieldValue"
	WireDate    WireType = "DateFieldValue"
	WireChoice  WireType = "ChoiceFieldValue"
)

// Wire returns the outbound wire type for the field type. Selector fields
// map to ChoiceFieldValue here; the transformer demotes them to plain text
// before sending (the tracker's choice-by-id mechanism is bypassed).
func (t FieldType) Wire() WireType {
	switch t {
	case FieldTypeNumber:
		return WireInteger
	case FieldTypeCalendar:
		return WireDate
	case FieldTypeSelector:
		return WireChoice
	default:
		return WireText
	}
}

// String returns the string representation of the wire type
func (w WireType) String() string {
	return string(w)
}
