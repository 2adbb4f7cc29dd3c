package model

import "github.com/doowon-lab/dwportal/pkg/domain/types"

// DefaultSectionMap returns the built-in field configuration used when no
// persisted document exists or the persisted document is unreadable. The
// admin configuration flow replaces it wholesale on first save.
func DefaultSectionMap() *SectionMap {
	return &SectionMap{
		FieldConfigs: map[types.Section][]FieldDescriptor{
			types.SectionWeeklyReports: {
				{ID: 1, Name: "제목", ExternalKey: "name", Type: types.FieldTypeString, Required: true},
				{ID: 2, Name: "보고 주차", ExternalKey: "custom_field_1001", Type: types.FieldTypeCalendar, Required: true, ReferenceID: 1001},
				{ID: 3, Name: "주요 업무", ExternalKey: "custom_field_1002", Type: types.FieldTypeTextarea, Required: true, ReferenceID: 1002},
				{ID: 4, Name: "차주 계획", ExternalKey: "custom_field_1003", Type: types.FieldTypeTextarea, ReferenceID: 1003},
				{ID: 5, Name: "특이 사항", ExternalKey: "custom_field_1004", Type: types.FieldTypeString, ReferenceID: 1004},
			},
			types.SectionTravelReports: {
				{ID: 1, Name: "제목", ExternalKey: "name", Type: types.FieldTypeString, Required: true},
				{ID: 2, Name: "출장지", ExternalKey: "custom_field_2001", Type: types.FieldTypeString, Required: true, ReferenceID: 2001},
				{ID: 3, Name: "출발일", ExternalKey: "custom_field_2002", Type: types.FieldTypeCalendar, Required: true, ReferenceID: 2002},
				{ID: 4, Name: "복귀일", ExternalKey: "custom_field_2003", Type: types.FieldTypeCalendar, Required: true, ReferenceID: 2003},
				{ID: 5, Name: "출장 목적", ExternalKey: "custom_field_2004", Type: types.FieldTypeTextarea, Required: true, ReferenceID: 2004},
				{ID: 6, Name: "경비", ExternalKey: "custom_field_2005", Type: types.FieldTypeNumber, ReferenceID: 2005},
				{ID: 7, Name: "증빙 서류", ExternalKey: "custom_field_2006", Type: types.FieldTypeAttachment, ReferenceID: 2006},
			},
			types.SectionHardware: {
				{ID: 1, Name: "장비명", ExternalKey: "name", Type: types.FieldTypeString, Required: true},
				{ID: 2, Name: "버전", ExternalKey: "custom_field_3001", Type: types.FieldTypeString, Required: true, ReferenceID: 3001},
				{ID: 3, Name: "상태", ExternalKey: "status", Type: types.FieldTypeSelector, Readonly: true, Options: []string{"사용중", "수리중", "폐기"}},
				{ID: 4, Name: "도입일", ExternalKey: "custom_field_3002", Type: types.FieldTypeCalendar, ReferenceID: 3002},
				{ID: 5, Name: "비고", ExternalKey: "custom_field_3003", Type: types.FieldTypeTextarea, ReferenceID: 3003},
			},
			types.SectionEquipment: {
				{ID: 1, Name: "설비명", ExternalKey: "name", Type: types.FieldTypeString, Required: true},
				{ID: 2, Name: "관리 번호", ExternalKey: "custom_field_4001", Type: types.FieldTypeString, Required: true, ReferenceID: 4001},
				{ID: 3, Name: "설치 위치", ExternalKey: "custom_field_4002", Type: types.FieldTypeString, ReferenceID: 4002},
				{ID: 4, Name: "점검 주기", ExternalKey: "custom_field_4003", Type: types.FieldTypeSelector, Options: []string{"월간", "분기", "반기", "연간"}, ReferenceID: 4003},
				{ID: 5, Name: "최근 점검일", ExternalKey: "custom_field_4004", Type: types.FieldTypeCalendar, ReferenceID: 4004},
			},
			types.SectionExternalTraining: {
				{ID: 1, Name: "교육명", ExternalKey: "name", Type: types.FieldTypeString, Required: true},
				{ID: 2, Name: "교육 기관", ExternalKey: "custom_field_5001", Type: types.FieldTypeString, Required: true, ReferenceID: 5001},
				{ID: 3, Name: "시작일", ExternalKey: "custom_field_5002", Type: types.FieldTypeCalendar, Required: true, ReferenceID: 5002},
				{ID: 4, Name: "종료일", ExternalKey: "custom_field_5003", Type: types.FieldTypeCalendar, ReferenceID: 5003},
				{ID: 5, Name: "교육비", ExternalKey: "custom_field_5004", Type: types.FieldTypeNumber, ReferenceID: 5004},
				{ID: 6, Name: "수료증", ExternalKey: "custom_field_5005", Type: types.FieldTypeAttachment, ReferenceID: 5005},
			},
		},
		SectionTitles: map[types.Section]string{
			types.SectionWeeklyReports:    "주간보고",
			types.SectionTravelReports:    "출장보고",
			types.SectionHardware:         "하드웨어 관리",
			types.SectionEquipment:        "설비 관리",
			types.SectionExternalTraining: "외부 교육",
		},
		TrackerIDs: map[types.Section]int{},
	}
}
