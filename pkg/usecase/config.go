package usecase

import (
	"context"

	"github.com/m-mizutani/goerr/v2"

	"github.com/doowon-lab/dwportal/pkg/domain/interfaces"
	"github.com/doowon-lab/dwportal/pkg/domain/model"
	"github.com/doowon-lab/dwportal/pkg/domain/types"
)

// ConfigUseCase serves the field configuration document: section descriptor
// lists, display titles and tracker bindings.
type ConfigUseCase struct {
	repo interfaces.Repository
}

func NewConfigUseCase(repo interfaces.Repository) *ConfigUseCase {
	return &ConfigUseCase{repo: repo}
}

// SectionMap returns the whole configuration document
func (uc *ConfigUseCase) SectionMap(ctx context.Context) (*model.SectionMap, error) {
	m, err := uc.repo.Load(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load field configuration")
	}
	return m, nil
}

// SaveSectionMap replaces the whole configuration document
func (uc *ConfigUseCase) SaveSectionMap(ctx context.Context, m *model.SectionMap) error {
	if err := m.Validate(); err != nil {
		return goerr.Wrap(err, "invalid field configuration")
	}
	if err := uc.repo.Save(ctx, m); err != nil {
		return goerr.Wrap(ErrConfigSave, "save failed", goerr.V("cause", err.Error()))
	}
	return nil
}

// GetSection returns the ordered descriptor list for a section
func (uc *ConfigUseCase) GetSection(ctx context.Context, section types.Section) ([]model.FieldDescriptor, error) {
	if !section.IsValid() {
		return nil, goerr.Wrap(ErrSectionNotFound, "unknown section", goerr.V(SectionKey, section))
	}
	descriptors, err := uc.repo.GetSection(ctx, section)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load section config", goerr.V(SectionKey, section))
	}
	return descriptors, nil
}

// TrackerID returns the downstream tracker bound to a section. An unbound
// section is reported the same as an unknown one.
func (uc *ConfigUseCase) TrackerID(ctx context.Context, section types.Section) (int, error) {
	if !section.IsValid() {
		return 0, goerr.Wrap(ErrSectionNotFound, "unknown section", goerr.V(SectionKey, section))
	}
	trackerID, err := uc.repo.TrackerID(ctx, section)
	if err != nil {
		return 0, goerr.Wrap(ErrSectionNotFound, "section has no tracker binding",
			goerr.V(SectionKey, section), goerr.V("cause", err.Error()))
	}
	return trackerID, nil
}
