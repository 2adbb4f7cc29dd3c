package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/doowon-lab/dwportal/pkg/domain/types"
	"github.com/doowon-lab/dwportal/pkg/repository/memory"
	"github.com/doowon-lab/dwportal/pkg/usecase"
)

func TestGetSectionUnknown(t *testing.T) {
	uc := usecase.NewConfigUseCase(memory.New())

	_, err := uc.GetSection(context.Background(), "no-such-section")
	gt.Error(t, err)
	gt.Bool(t, errors.Is(err, usecase.ErrSectionNotFound)).True()
}

func TestGetSectionReturnsDefaults(t *testing.T) {
	uc := usecase.NewConfigUseCase(memory.New())

	descriptors := gt.R1(uc.GetSection(context.Background(), types.SectionWeeklyReports)).NoError(t)
	gt.Number(t, len(descriptors)).Greater(0)
}

func TestTrackerIDUnbound(t *testing.T) {
	uc := usecase.NewConfigUseCase(memory.New())

	_, err := uc.TrackerID(context.Background(), types.SectionWeeklyReports)
	gt.Error(t, err)
	gt.Bool(t, errors.Is(err, usecase.ErrSectionNotFound)).True()
}

func TestSaveSectionMapRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()
	uc := usecase.NewConfigUseCase(repo)

	m := gt.R1(uc.SectionMap(ctx)).NoError(t)
	m.TrackerIDs[types.SectionHardware] = 4711
	gt.NoError(t, uc.SaveSectionMap(ctx, m))

	trackerID := gt.R1(uc.TrackerID(ctx, types.SectionHardware)).NoError(t)
	gt.Value(t, trackerID).Equal(4711)
}

func TestSaveSectionMapRejectsInvalid(t *testing.T) {
	ctx := context.Background()
	uc := usecase.NewConfigUseCase(memory.New())

	m := gt.R1(uc.SectionMap(ctx)).NoError(t)
	broken := m.FieldConfigs[types.SectionWeeklyReports]
	broken[0].ExternalKey = ""
	m.FieldConfigs[types.SectionWeeklyReports] = broken

	gt.Error(t, uc.SaveSectionMap(ctx, m))
}
