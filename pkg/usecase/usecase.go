package usecase

import (
	"github.com/doowon-lab/dwportal/pkg/domain/interfaces"
	"github.com/doowon-lab/dwportal/pkg/domain/types"
)

// UseCases bundles the portal's use cases. One ReportUseCase exists per
// section; they share the repository and tracker client but keep their own
// submit state.
type UseCases struct {
	repo    interfaces.Repository
	tracker interfaces.Tracker

	Auth    *AuthUseCase
	Config  *ConfigUseCase
	Form    *FormEngine
	Table   *TableView
	Reports map[types.Section]*ReportUseCase
}

type Option func(*UseCases)

func New(repo interfaces.Repository, tracker interfaces.Tracker, opts ...Option) *UseCases {
	uc := &UseCases{
		repo:    repo,
		tracker: tracker,
	}

	for _, opt := range opts {
		opt(uc)
	}

	uc.Auth = NewAuthUseCase(repo, tracker)
	uc.Config = NewConfigUseCase(repo)
	uc.Form = NewFormEngine()
	uc.Table = NewTableView()

	uc.Reports = make(map[types.Section]*ReportUseCase, len(types.AllSections()))
	for _, section := range types.AllSections() {
		uc.Reports[section] = NewReportUseCase(section, repo, tracker, uc.Form, uc.Table)
	}

	return uc
}

// Report returns the report use case for a section, nil when unknown
func (uc *UseCases) Report(section types.Section) *ReportUseCase {
	return uc.Reports[section]
}
