package usecase_test

import (
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/doowon-lab/dwportal/pkg/domain/model"
	"github.com/doowon-lab/dwportal/pkg/domain/types"
	"github.com/doowon-lab/dwportal/pkg/usecase"
)

func testDescriptors() []model.FieldDescriptor {
	return []model.FieldDescriptor{
		{ID: 1, Name: "제목", ExternalKey: "name", Type: types.FieldTypeString, Required: true, ReferenceID: 0},
		{ID: 2, Name: "수량", ExternalKey: "custom_field_1001", Type: types.FieldTypeNumber, Required: true, ReferenceID: 1001},
		{ID: 3, Name: "보고 일자", ExternalKey: "custom_field_1002", Type: types.FieldTypeCalendar, ReferenceID: 1002},
		{ID: 4, Name: "구분", ExternalKey: "custom_field_1003", Type: types.FieldTypeSelector, Options: []string{"국내", "해외"}, ReferenceID: 1003},
		{ID: 5, Name: "비고", ExternalKey: "custom_field_1004", Type: types.FieldTypeTextarea, ReferenceID: 1004},
	}
}

func TestLayoutGroupsRequiredFirst(t *testing.T) {
	engine := usecase.NewFormEngine()
	layout := engine.Layout(types.SectionWeeklyReports, testDescriptors())

	gt.Value(t, layout.Section).Equal(types.SectionWeeklyReports)
	gt.Array(t, layout.Groups).Length(2)
	gt.Value(t, layout.Groups[0].Title).Equal("필수 항목")
	gt.Value(t, layout.Groups[1].Title).Equal("선택 항목")

	gt.Array(t, layout.Groups[0].Controls).Length(2)
	gt.Value(t, layout.Groups[0].Controls[0].Name).Equal("제목")
	gt.Value(t, layout.Groups[0].Controls[1].Control).Equal(types.ControlNumber)

	gt.Array(t, layout.Groups[1].Controls).Length(3)
	gt.Value(t, layout.Groups[1].Controls[0].Control).Equal(types.ControlDate)
}

func TestLayoutSelectorSentinelOption(t *testing.T) {
	engine := usecase.NewFormEngine()
	layout := engine.Layout(types.SectionHardware, testDescriptors())

	selector := layout.Groups[1].Controls[1]
	gt.Value(t, selector.Control).Equal(types.ControlSelect)
	gt.Array(t, selector.Options).Length(3)
	gt.Value(t, selector.Options[0]).Equal("선택하세요")
	gt.Value(t, selector.Options[1]).Equal("국내")
}

func TestValidateReportsAllFailuresInOrder(t *testing.T) {
	engine := usecase.NewFormEngine()
	state := model.FormState{
		"custom_field_1001": "abc",  // not a number
		"custom_field_1002": "내일", // not a date
	}

	result := engine.Validate(state, testDescriptors())
	gt.Bool(t, result.Valid).False()
	gt.Array(t, result.Errors).Length(3)
	gt.Value(t, result.Errors[0]).Equal("제목은(는) 필수 입력 항목입니다.")
	gt.Value(t, result.Errors[1]).Equal("수량은(는) 숫자여야 합니다.")
	gt.Value(t, result.Errors[2]).Equal("보고 일자은(는) 유효한 날짜여야 합니다.")
}

func TestValidatePassesOnGoodInput(t *testing.T) {
	engine := usecase.NewFormEngine()
	state := model.FormState{
		"name":              "주간보고 34주차",
		"custom_field_1001": "42",
		"custom_field_1002": "2026-08-28",
	}

	result := engine.Validate(state, testDescriptors())
	gt.Bool(t, result.Valid).True()
	gt.Array(t, result.Errors).Length(0)
}

func TestValidateBlankOptionalFieldsSkipped(t *testing.T) {
	engine := usecase.NewFormEngine()
	state := model.FormState{
		"name":              "보고",
		"custom_field_1001": "1",
		"custom_field_1002": "   ",
	}

	result := engine.Validate(state, testDescriptors())
	gt.Bool(t, result.Valid).True()
}

func TestPopulateFromRecord(t *testing.T) {
	engine := usecase.NewFormEngine()
	record := &model.Record{
		ID:   10,
		Name: "기존 보고서",
		CustomFields: []model.FieldValue{
			{FieldID: 1001, Kind: model.ValueScalar, Scalar: "7"},
			{FieldID: 1002, Kind: model.ValueScalar, Scalar: "2026-08-20T00:00:00Z"},
			{FieldID: 1003, Kind: model.ValueChoice, Choice: "해외"},
		},
	}

	state := engine.PopulateFromRecord(record, testDescriptors())
	gt.Value(t, state.Get("name")).Equal("기존 보고서")
	gt.Value(t, state.Get("custom_field_1001")).Equal("7")
	gt.Value(t, state.Get("custom_field_1002")).Equal("2026-08-20")
	gt.Value(t, state.Get("custom_field_1003")).Equal("해외")
	gt.Bool(t, state.IsBlank("custom_field_1004")).True()
}

func TestPopulateUsesFlatFallback(t *testing.T) {
	engine := usecase.NewFormEngine()
	record := &model.Record{
		ID:   11,
		Name: "플랫 키",
		Flat: map[string]string{"custom_field_1004": "비고 내용"},
	}

	state := engine.PopulateFromRecord(record, testDescriptors())
	gt.Value(t, state.Get("custom_field_1004")).Equal("비고 내용")
}
