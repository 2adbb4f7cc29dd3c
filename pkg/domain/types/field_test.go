package types_test

import (
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/doowon-lab/dwportal/pkg/domain/types"
)

func TestFieldTypeIsValid(t *testing.T) {
	for _, ft := range types.AllFieldTypes() {
		gt.Bool(t, ft.IsValid()).True()
	}
	gt.Bool(t, types.FieldType("checkbox").IsValid()).False()
	gt.Bool(t, types.FieldType("").IsValid()).False()
}

func TestFieldTypeWire(t *testing.T) {
	gt.Value(t, types.FieldTypeString.Wire()).Equal(types.WireText)
	gt.Value(t, types.FieldTypeTextarea.Wire()).Equal(types.WireText)
	gt.Value(t, types.FieldTypeNumber.Wire()).Equal(types.WireInteger)
	gt.Value(t, types.FieldTypeCalendar.Wire()).Equal(types.WireDate)
	gt.Value(t, types.FieldTypeSelector.Wire()).Equal(types.WireChoice)
	gt.Value(t, types.FieldTypeAttachment.Wire()).Equal(types.WireText)
}

func TestFieldTypeControl(t *testing.T) {
	gt.Value(t, types.FieldTypeString.Control()).Equal(types.ControlText)
	gt.Value(t, types.FieldTypeNumber.Control()).Equal(types.ControlNumber)
	gt.Value(t, types.FieldTypeCalendar.Control()).Equal(types.ControlDate)
	gt.Value(t, types.FieldTypeSelector.Control()).Equal(types.ControlSelect)
	gt.Value(t, types.FieldTypeTextarea.Control()).Equal(types.ControlTextarea)
	gt.Value(t, types.FieldTypeAttachment.Control()).Equal(types.ControlFile)
}

func TestSectionIsValid(t *testing.T) {
	gt.Array(t, types.AllSections()).Length(5)
	for _, s := range types.AllSections() {
		gt.Bool(t, s.IsValid()).True()
	}
	gt.Bool(t, types.Section("unknown-section").IsValid()).False()
}
