package usecase

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/doowon-lab/dwportal/pkg/domain/model"
	"github.com/doowon-lab/dwportal/pkg/domain/types"
)

// Korean UI strings for the form surface
const (
	groupRequiredTitle = "필수 항목"
	groupOptionalTitle = "선택 항목"
	selectSentinel     = "선택하세요"

	msgRequired      = "%s은(는) 필수 입력 항목입니다."
	msgInvalidNumber = "%s은(는) 숫자여야 합니다."
	msgInvalidDate   = "%s은(는) 유효한 날짜여야 합니다."
)

// FormEngine builds form layouts from section descriptors and validates
// submitted form state against them. It is stateless; the transient form
// values live in model.FormState owned by the open form.
type FormEngine struct{}

func NewFormEngine() *FormEngine {
	return &FormEngine{}
}

// Layout produces the renderable form shape: required fields first, then
// optional, each group preserving descriptor order.
func (e *FormEngine) Layout(section types.Section, descriptors []model.FieldDescriptor) model.FormLayout {
	required := model.FormGroup{Title: groupRequiredTitle}
	optional := model.FormGroup{Title: groupOptionalTitle}

	for i := range descriptors {
		control := e.control(&descriptors[i])
		if descriptors[i].Required {
			required.Controls = append(required.Controls, control)
		} else {
			optional.Controls = append(optional.Controls, control)
		}
	}

	return model.FormLayout{
		Section: section,
		Groups:  []model.FormGroup{required, optional},
	}
}

func (e *FormEngine) control(d *model.FieldDescriptor) model.FormControl {
	control := model.FormControl{
		FieldID:     d.ID,
		Name:        d.Name,
		ExternalKey: d.ExternalKey,
		Control:     d.Type.Control(),
		Required:    d.Required,
		Readonly:    d.Readonly,
	}
	if d.Type == types.FieldTypeSelector {
		control.Options = append([]string{selectSentinel}, d.Options...)
	}
	return control
}

// Validate checks submitted values against the section's descriptors. All
// independent failures are reported, in descriptor order.
func (e *FormEngine) Validate(state model.FormState, descriptors []model.FieldDescriptor) model.ValidationResult {
	var errs []string

	for i := range descriptors {
		d := &descriptors[i]
		if d.Type == types.FieldTypeAttachment {
			continue // files are staged outside the form state
		}

		if state.IsBlank(d.ExternalKey) {
			if d.Required {
				errs = append(errs, fmt.Sprintf(msgRequired, d.Name))
			}
			continue
		}

		value := strings.TrimSpace(state.Get(d.ExternalKey))
		switch d.Type {
		case types.FieldTypeNumber:
			if _, err := strconv.ParseFloat(value, 64); err != nil {
				errs = append(errs, fmt.Sprintf(msgInvalidNumber, d.Name))
			}
		case types.FieldTypeCalendar:
			if _, ok := parseDate(value); !ok {
				errs = append(errs, fmt.Sprintf(msgInvalidDate, d.Name))
			}
		}
	}

	return model.ValidationResult{
		Valid:  len(errs) == 0,
		Errors: errs,
	}
}

// PopulateFromRecord builds the initial form state for an edit form. Values
// go through the same extraction chain as the table; calendar values are
// normalized to the date-input format.
func (e *FormEngine) PopulateFromRecord(record *model.Record, descriptors []model.FieldDescriptor) model.FormState {
	state := make(model.FormState, len(descriptors))
	for i := range descriptors {
		d := &descriptors[i]
		value := ExtractFieldValue(record, d)
		if value == "" {
			continue
		}
		if d.Type == types.FieldTypeCalendar {
			value = formatDate(value)
		}
		state.Set(d.ExternalKey, value)
	}
	return state
}
