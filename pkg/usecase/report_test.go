package usecase_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"

	"github.com/doowon-lab/dwportal/pkg/domain/interfaces"
	"github.com/doowon-lab/dwportal/pkg/domain/model"
	"github.com/doowon-lab/dwportal/pkg/domain/model/auth"
	"github.com/doowon-lab/dwportal/pkg/domain/types"
	"github.com/doowon-lab/dwportal/pkg/repository/memory"
	"github.com/doowon-lab/dwportal/pkg/service/codebeamer"
	"github.com/doowon-lab/dwportal/pkg/usecase"
)

// fakeTracker implements interfaces.Tracker with per-method hooks
type fakeTracker struct {
	listItems   func(ctx context.Context, trackerID int) ([]*model.Record, error)
	createItem  func(ctx context.Context, trackerID int, rec *model.OutboundRecord) (*model.Record, error)
	updateItem  func(ctx context.Context, itemID int64, fields []model.CustomFieldEntry) error
	deleteItem  func(ctx context.Context, itemID int64) error
	uploadFiles func(ctx context.Context, itemID int64, files []model.Attachment) ([]model.AttachmentResult, error)
}

var _ interfaces.Tracker = &fakeTracker{}

func (f *fakeTracker) Ping(ctx context.Context) error                          { return nil }
func (f *fakeTracker) Verify(ctx context.Context, cred auth.Credential) error  { return nil }
func (f *fakeTracker) ListProjects(ctx context.Context, cred auth.Credential) (json.RawMessage, error) {
	return json.RawMessage(`[]`), nil
}
func (f *fakeTracker) ListTrackers(ctx context.Context, cred auth.Credential, projectID int) (json.RawMessage, error) {
	return json.RawMessage(`[]`), nil
}

func (f *fakeTracker) ListItems(ctx context.Context, cred auth.Credential, trackerID int, opts ...interfaces.ListItemsOption) ([]*model.Record, error) {
	return f.listItems(ctx, trackerID)
}

func (f *fakeTracker) GetItem(ctx context.Context, cred auth.Credential, itemID int64) (*model.Record, error) {
	return &model.Record{ID: itemID}, nil
}

func (f *fakeTracker) CreateItem(ctx context.Context, cred auth.Credential, trackerID int, rec *model.OutboundRecord) (*model.Record, error) {
	return f.createItem(ctx, trackerID, rec)
}

func (f *fakeTracker) UpdateItemFields(ctx context.Context, cred auth.Credential, itemID int64, fields []model.CustomFieldEntry) error {
	return f.updateItem(ctx, itemID, fields)
}

func (f *fakeTracker) DeleteItem(ctx context.Context, cred auth.Credential, itemID int64) error {
	return f.deleteItem(ctx, itemID)
}

func (f *fakeTracker) UploadAttachments(ctx context.Context, cred auth.Credential, itemID int64, files []model.Attachment) ([]model.AttachmentResult, error) {
	if f.uploadFiles == nil {
		results := make([]model.AttachmentResult, len(files))
		for i, file := range files {
			results[i] = model.AttachmentResult{Name: file.FileName, Success: true}
		}
		return results, nil
	}
	return f.uploadFiles(ctx, itemID, files)
}

func sessionContext(t *testing.T) context.Context {
	t.Helper()
	token := auth.NewToken("tester", "dGVzdGVyOnB3")
	return auth.ContextWithToken(context.Background(), token)
}

func setupReportWith(t *testing.T, tracker interfaces.Tracker, descriptors []model.FieldDescriptor) *usecase.ReportUseCase {
	t.Helper()
	ctx := context.Background()

	repo := memory.New()
	m := gt.R1(repo.Load(ctx)).NoError(t)
	m.FieldConfigs[types.SectionWeeklyReports] = descriptors
	m.TrackerIDs[types.SectionWeeklyReports] = 100
	gt.NoError(t, repo.Save(ctx, m))

	uc := usecase.New(repo, tracker)
	return uc.Report(types.SectionWeeklyReports)
}

func setupReport(t *testing.T, tracker interfaces.Tracker) *usecase.ReportUseCase {
	t.Helper()
	return setupReportWith(t, tracker, testDescriptors())
}

// validState satisfies both required fields of testDescriptors
func validState() model.FormState {
	return model.FormState{
		"name":              "주간보고 34주차",
		"custom_field_1001": "3",
	}
}

func TestCreateSubmitsToBoundTracker(t *testing.T) {
	var gotTrackerID int
	tracker := &fakeTracker{
		createItem: func(ctx context.Context, trackerID int, rec *model.OutboundRecord) (*model.Record, error) {
			gotTrackerID = trackerID
			return &model.Record{ID: 777, Name: rec.Name}, nil
		},
	}

	report := setupReport(t, tracker)
	created := gt.R1(report.Create(sessionContext(t), validState(), nil)).NoError(t)
	gt.Value(t, created.ID).Equal(int64(777))
	gt.Value(t, gotTrackerID).Equal(100)
}

func TestCreateRejectsInvalidForm(t *testing.T) {
	var called bool
	tracker := &fakeTracker{
		createItem: func(ctx context.Context, trackerID int, rec *model.OutboundRecord) (*model.Record, error) {
			called = true
			return nil, nil
		},
	}

	report := setupReport(t, tracker)
	_, err := report.Create(sessionContext(t), model.FormState{}, nil)
	gt.Error(t, err)
	gt.Bool(t, errors.Is(err, usecase.ErrValidation)).True()
	gt.Bool(t, called).False()
}

func TestCreateRequiresSession(t *testing.T) {
	tracker := &fakeTracker{
		createItem: func(ctx context.Context, trackerID int, rec *model.OutboundRecord) (*model.Record, error) {
			return &model.Record{ID: 1}, nil
		},
	}

	report := setupReport(t, tracker)
	_, err := report.Create(context.Background(), validState(), nil)
	gt.Error(t, err)
	gt.Bool(t, errors.Is(err, usecase.ErrAuthFailed)).True()
}

func TestCreateWithoutTrackerBindingIsSectionNotFound(t *testing.T) {
	var called bool
	tracker := &fakeTracker{
		createItem: func(ctx context.Context, trackerID int, rec *model.OutboundRecord) (*model.Record, error) {
			called = true
			return nil, nil
		},
	}

	ctx := context.Background()
	repo := memory.New()
	m := gt.R1(repo.Load(ctx)).NoError(t)
	m.FieldConfigs[types.SectionWeeklyReports] = testDescriptors()
	gt.NoError(t, repo.Save(ctx, m))

	uc := usecase.New(repo, tracker)
	report := uc.Report(types.SectionWeeklyReports)

	// Defaults bind no tracker; the miss must carry the shared sentinel
	// so the API maps it to 404, not a downstream failure.
	_, err := report.Create(sessionContext(t), validState(), nil)
	gt.Error(t, err)
	gt.Bool(t, errors.Is(err, usecase.ErrSectionNotFound)).True()
	gt.Bool(t, called).False()
}

func TestCreateConcurrentSubmitIsNoOp(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	var calls atomic.Int32

	tracker := &fakeTracker{
		createItem: func(ctx context.Context, trackerID int, rec *model.OutboundRecord) (*model.Record, error) {
			calls.Add(1)
			close(started)
			<-release
			return &model.Record{ID: 1}, nil
		},
	}

	report := setupReport(t, tracker)
	ctx := sessionContext(t)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		created := gt.R1(report.Create(ctx, validState(), nil)).NoError(t)
		gt.Value(t, created.ID).Equal(int64(1))
	}()

	<-started
	// Second submit while the first is in flight: silent no-op
	second, err := report.Create(ctx, validState(), nil)
	gt.NoError(t, err)
	gt.Value(t, second).Nil()

	close(release)
	wg.Wait()
	gt.Number(t, int(calls.Load())).Equal(1)
}

func TestCreatePartialAttachmentFailure(t *testing.T) {
	tracker := &fakeTracker{
		createItem: func(ctx context.Context, trackerID int, rec *model.OutboundRecord) (*model.Record, error) {
			return &model.Record{ID: 9}, nil
		},
		uploadFiles: func(ctx context.Context, itemID int64, files []model.Attachment) ([]model.AttachmentResult, error) {
			return []model.AttachmentResult{
				{Name: "a.pdf", Success: true},
				{Name: "b.pdf", Success: false, Error: "too large"},
			}, nil
		},
	}

	report := setupReport(t, tracker)
	files := []model.Attachment{
		{FileName: "a.pdf", Content: []byte("x")},
		{FileName: "b.pdf", Content: []byte("y")},
	}

	created, err := report.Create(sessionContext(t), validState(), files)
	gt.Error(t, err)
	gt.Bool(t, errors.Is(err, usecase.ErrPartialAttachment)).True()
	// The record itself was committed despite the upload failure
	gt.Value(t, created).NotNil()
	gt.Value(t, created.ID).Equal(int64(9))
}

func TestUpdateRejectsEmptyEdit(t *testing.T) {
	var called bool
	tracker := &fakeTracker{
		updateItem: func(ctx context.Context, itemID int64, fields []model.CustomFieldEntry) error {
			called = true
			return nil
		},
	}

	// Optional-only descriptors: a fully blank edit passes validation and
	// must be rejected before any network call.
	report := setupReportWith(t, tracker, []model.FieldDescriptor{
		{ID: 1, Name: "비고", ExternalKey: "custom_field_1004", Type: types.FieldTypeTextarea, ReferenceID: 1004},
	})
	err := report.Update(sessionContext(t), 5, model.FormState{}, nil)
	gt.Error(t, err)
	gt.Bool(t, errors.Is(err, usecase.ErrNothingToUpdate)).True()
	gt.Bool(t, called).False()
}

func TestUpdateSendsNonBlankFields(t *testing.T) {
	var gotFields []model.CustomFieldEntry
	tracker := &fakeTracker{
		updateItem: func(ctx context.Context, itemID int64, fields []model.CustomFieldEntry) error {
			gotFields = fields
			return nil
		},
	}

	report := setupReport(t, tracker)
	state := model.FormState{
		"name":              "주간보고 34주차",
		"custom_field_1001": "3",
		"custom_field_1004": "업데이트",
	}
	// name feeds the record title, not a field entry; the two custom
	// fields are the only outbound updates
	gt.NoError(t, report.Update(sessionContext(t), 5, state, nil))
	gt.Array(t, gotFields).Length(2)
}

func TestDelete(t *testing.T) {
	var gotID int64
	tracker := &fakeTracker{
		deleteItem: func(ctx context.Context, itemID int64) error {
			gotID = itemID
			return nil
		},
	}

	report := setupReport(t, tracker)
	gt.NoError(t, report.Delete(sessionContext(t), 42))
	gt.Value(t, gotID).Equal(int64(42))
}

func TestReloadRetriesTransientFailures(t *testing.T) {
	var calls atomic.Int32
	tracker := &fakeTracker{
		listItems: func(ctx context.Context, trackerID int) ([]*model.Record, error) {
			if calls.Add(1) < 3 {
				return nil, goerr.Wrap(codebeamer.ErrUnavailable, "connection refused")
			}
			return []*model.Record{{ID: 1, Name: "r"}}, nil
		},
	}

	report := setupReport(t, tracker)
	records := gt.R1(report.Reload(sessionContext(t))).NoError(t)
	gt.Array(t, records).Length(1)
	gt.Number(t, int(calls.Load())).Equal(3)
	gt.Array(t, report.Records()).Length(1)
}

func TestReloadDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	tracker := &fakeTracker{
		listItems: func(ctx context.Context, trackerID int) ([]*model.Record, error) {
			calls.Add(1)
			return nil, goerr.Wrap(codebeamer.ErrRejected, "forbidden", goerr.V("status", 403))
		},
	}

	report := setupReport(t, tracker)
	_, err := report.Reload(sessionContext(t))
	gt.Error(t, err)
	gt.Number(t, int(calls.Load())).Equal(1)
}
