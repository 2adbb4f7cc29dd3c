package usecase

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/doowon-lab/dwportal/pkg/domain/interfaces"
	"github.com/doowon-lab/dwportal/pkg/domain/model"
	"github.com/doowon-lab/dwportal/pkg/domain/model/auth"
	"github.com/doowon-lab/dwportal/pkg/domain/types"
	"github.com/doowon-lab/dwportal/pkg/service/codebeamer"
	"github.com/doowon-lab/dwportal/pkg/utils/logging"
)

const (
	reloadAttempts = 3
	reloadBackoff  = time.Second // linear: 1s, 2s
)

// ReportUseCase drives one section's record lifecycle: list, create, edit,
// delete. One instance exists per section; the submit guard and record
// cache are instance state.
type ReportUseCase struct {
	section types.Section
	repo    interfaces.Repository
	tracker interfaces.Tracker
	form    *FormEngine
	table   *TableView

	submitting atomic.Bool

	mu      sync.RWMutex
	records []*model.Record
}

func NewReportUseCase(section types.Section, repo interfaces.Repository, tracker interfaces.Tracker, form *FormEngine, table *TableView) *ReportUseCase {
	return &ReportUseCase{
		section: section,
		repo:    repo,
		tracker: tracker,
		form:    form,
		table:   table,
	}
}

// Section returns the section this use case serves
func (uc *ReportUseCase) Section() types.Section {
	return uc.section
}

// Records returns the cached record list from the last reload
func (uc *ReportUseCase) Records() []*model.Record {
	uc.mu.RLock()
	defer uc.mu.RUnlock()
	return uc.records
}

// RenderTable renders the cached records into a display page
func (uc *ReportUseCase) RenderTable(ctx context.Context, page model.PageState, search model.SearchOptions) (model.TablePage, error) {
	descriptors, err := uc.repo.GetSection(ctx, uc.section)
	if err != nil {
		return model.TablePage{}, goerr.Wrap(err, "failed to load section config", goerr.V(SectionKey, uc.section))
	}
	return uc.table.Render(uc.Records(), descriptors, page, search), nil
}

// credential pulls the session's downstream credential from the context.
// The auth middleware guarantees a token on every protected route.
func credential(ctx context.Context) (auth.Credential, error) {
	token := auth.TokenFromContext(ctx)
	if token == nil {
		return "", goerr.Wrap(ErrAuthFailed, "no session in context")
	}
	return token.Credential, nil
}

// Create validates and submits a new record, then uploads any staged
// attachments against the created item. A concurrent submit is a silent
// no-op while the first one is in flight.
func (uc *ReportUseCase) Create(ctx context.Context, state model.FormState, files []model.Attachment) (*model.Record, error) {
	if !uc.submitting.CompareAndSwap(false, true) {
		logging.From(ctx).Warn("submit already in flight, ignoring", "section", uc.section)
		return nil, nil
	}
	defer uc.submitting.Store(false)

	cred, err := credential(ctx)
	if err != nil {
		return nil, err
	}

	descriptors, err := uc.repo.GetSection(ctx, uc.section)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load section config", goerr.V(SectionKey, uc.section))
	}

	if result := uc.form.Validate(state, descriptors); !result.Valid {
		return nil, goerr.Wrap(ErrValidation, "create form rejected",
			goerr.V(SectionKey, uc.section), goerr.V(MessagesKey, result.Errors))
	}

	trackerID, err := uc.repo.TrackerID(ctx, uc.section)
	if err != nil {
		return nil, goerr.Wrap(err, "section has no tracker binding", goerr.V(SectionKey, uc.section))
	}

	outbound := Transform(ctx, uc.section, state, descriptors)
	created, err := uc.tracker.CreateItem(ctx, cred, trackerID, outbound)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create record",
			goerr.V(SectionKey, uc.section), goerr.V("tracker_id", trackerID))
	}

	logging.From(ctx).Info("record created",
		"section", uc.section, "item_id", created.ID, "name", created.Name)

	if err := uc.uploadAttachments(ctx, cred, created.ID, files); err != nil {
		return created, err
	}
	return created, nil
}

// Update validates and submits field changes for an existing record
func (uc *ReportUseCase) Update(ctx context.Context, itemID int64, state model.FormState, files []model.Attachment) error {
	if !uc.submitting.CompareAndSwap(false, true) {
		logging.From(ctx).Warn("submit already in flight, ignoring", "section", uc.section)
		return nil
	}
	defer uc.submitting.Store(false)

	cred, err := credential(ctx)
	if err != nil {
		return err
	}

	descriptors, err := uc.repo.GetSection(ctx, uc.section)
	if err != nil {
		return goerr.Wrap(err, "failed to load section config", goerr.V(SectionKey, uc.section))
	}

	if result := uc.form.Validate(state, descriptors); !result.Valid {
		return goerr.Wrap(ErrValidation, "edit form rejected",
			goerr.V(SectionKey, uc.section), goerr.V(MessagesKey, result.Errors))
	}

	entries, err := TransformUpdate(ctx, state, descriptors)
	if err != nil {
		return err
	}

	if err := uc.tracker.UpdateItemFields(ctx, cred, itemID, entries); err != nil {
		return goerr.Wrap(err, "failed to update record",
			goerr.V(SectionKey, uc.section), goerr.V(ItemIDKey, itemID))
	}

	logging.From(ctx).Info("record updated",
		"section", uc.section, "item_id", itemID, "fields", len(entries))

	return uc.uploadAttachments(ctx, cred, itemID, files)
}

// Delete removes a record from the section's tracker
func (uc *ReportUseCase) Delete(ctx context.Context, itemID int64) error {
	cred, err := credential(ctx)
	if err != nil {
		return err
	}
	if err := uc.tracker.DeleteItem(ctx, cred, itemID); err != nil {
		return goerr.Wrap(err, "failed to delete record",
			goerr.V(SectionKey, uc.section), goerr.V(ItemIDKey, itemID))
	}
	logging.From(ctx).Info("record deleted", "section", uc.section, "item_id", itemID)
	return nil
}

// Reload refetches the section's full record set from the tracker. Transient
// downstream failures (network, 5xx) are retried with linear backoff; client
// errors surface immediately.
func (uc *ReportUseCase) Reload(ctx context.Context) ([]*model.Record, error) {
	cred, err := credential(ctx)
	if err != nil {
		return nil, err
	}

	trackerID, err := uc.repo.TrackerID(ctx, uc.section)
	if err != nil {
		return nil, goerr.Wrap(err, "section has no tracker binding", goerr.V(SectionKey, uc.section))
	}

	var records []*model.Record
	var lastErr error
	for attempt := 1; attempt <= reloadAttempts; attempt++ {
		records, lastErr = uc.tracker.ListItems(ctx, cred, trackerID,
			interfaces.WithIncludeFields(true))
		if lastErr == nil {
			break
		}
		if !codebeamer.IsTransient(lastErr) {
			return nil, goerr.Wrap(lastErr, "failed to load records",
				goerr.V(SectionKey, uc.section), goerr.V("tracker_id", trackerID))
		}
		if attempt == reloadAttempts {
			break
		}

		wait := time.Duration(attempt) * reloadBackoff
		logging.From(ctx).Warn("reload failed, retrying",
			"section", uc.section, "attempt", attempt, "wait", wait, "error", lastErr.Error())
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, goerr.Wrap(ctx.Err(), "reload cancelled", goerr.V(SectionKey, uc.section))
		case <-timer.C:
		}
	}
	if lastErr != nil {
		return nil, goerr.Wrap(lastErr, "failed to load records after retries",
			goerr.V(SectionKey, uc.section), goerr.V("tracker_id", trackerID))
	}

	uc.mu.Lock()
	uc.records = records
	uc.mu.Unlock()

	logging.From(ctx).Info("records reloaded", "section", uc.section, "count", len(records))
	return records, nil
}

// uploadAttachments pushes staged files and reports partial failure without
// rolling back the parent record.
func (uc *ReportUseCase) uploadAttachments(ctx context.Context, cred auth.Credential, itemID int64, files []model.Attachment) error {
	if len(files) == 0 {
		return nil
	}

	results, err := uc.tracker.UploadAttachments(ctx, cred, itemID, files)
	if err != nil {
		return goerr.Wrap(err, "attachment upload aborted",
			goerr.V(SectionKey, uc.section), goerr.V(ItemIDKey, itemID))
	}

	for _, result := range results {
		if !result.Success {
			return goerr.Wrap(ErrPartialAttachment, "attachment upload incomplete",
				goerr.V(SectionKey, uc.section), goerr.V(ItemIDKey, itemID),
				goerr.V(ResultsKey, results))
		}
	}
	return nil
}
