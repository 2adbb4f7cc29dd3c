package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/goerr/v2"

	"github.com/doowon-lab/dwportal/pkg/domain/interfaces"
	"github.com/doowon-lab/dwportal/pkg/domain/model"
	"github.com/doowon-lab/dwportal/pkg/domain/model/auth"
	"github.com/doowon-lab/dwportal/pkg/service/codebeamer"
	"github.com/doowon-lab/dwportal/pkg/usecase"
	"github.com/doowon-lab/dwportal/pkg/utils/async"
	"github.com/doowon-lab/dwportal/pkg/utils/errutil"
)

type itemFieldPayload struct {
	FieldID int    `json:"fieldId"`
	Value   string `json:"value"`
}

type itemPayload struct {
	ID     int64              `json:"id"`
	Name   string             `json:"name"`
	Status string             `json:"status,omitempty"`
	Fields []itemFieldPayload `json:"fields,omitempty"`
}

type itemResponse struct {
	Success bool        `json:"success"`
	Item    itemPayload `json:"item"`
}

type itemListResponse struct {
	Success  bool          `json:"success"`
	Items    []itemPayload `json:"items"`
	Total    int           `json:"total"`
	Page     int           `json:"page"`
	PageSize int           `json:"pageSize"`
	HasMore  bool          `json:"hasMore"`
}

type tableViewResponse struct {
	Success bool            `json:"success"`
	Table   model.TablePage `json:"table"`
}

type attachmentsResponse struct {
	Success     bool                     `json:"success"`
	Attachments []model.AttachmentResult `json:"attachments"`
}

type validationErrorResponse struct {
	Success bool     `json:"success"`
	Error   string   `json:"error"`
	Errors  []string `json:"errors,omitempty"`
}

type reportRequest struct {
	Values map[string]string `json:"values"`
}

func toItemPayload(record *model.Record) itemPayload {
	payload := itemPayload{
		ID:     record.ID,
		Name:   record.Name,
		Status: record.Status,
	}
	for i := range record.CustomFields {
		fv := &record.CustomFields[i]
		payload.Fields = append(payload.Fields, itemFieldPayload{
			FieldID: fv.FieldID,
			Value:   fv.Display(),
		})
	}
	return payload
}

func sessionCredential(r *http.Request) auth.Credential {
	if token := auth.TokenFromContext(r.Context()); token != nil {
		return token.Credential
	}
	return ""
}

// refreshInBackground re-syncs the section cache after a mutation so the
// next table view reflects it without a blocking reload.
func refreshInBackground(r *http.Request, report *usecase.ReportUseCase) {
	token := auth.TokenFromContext(r.Context())
	async.Dispatch(r.Context(), func(ctx context.Context) error {
		if token != nil {
			ctx = auth.ContextWithToken(ctx, token)
		}
		_, err := report.Reload(ctx)
		return err
	})
}

// statusForTrackerError passes downstream 4xx through and maps everything
// else to 502.
func statusForTrackerError(err error) int {
	if status := codebeamer.StatusOf(err); status >= 400 && status < 500 {
		return status
	}
	return http.StatusBadGateway
}

func int64Param(r *http.Request, name string) (int64, error) {
	value, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil {
		return 0, goerr.Wrap(err, "invalid path parameter", goerr.V("param", name))
	}
	return value, nil
}

// listProjectsHandler proxies the downstream project catalog
func listProjectsHandler(tracker interfaces.Tracker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data, err := tracker.ListProjects(r.Context(), sessionCredential(r))
		if err != nil {
			errutil.HandleHTTP(r.Context(), w, err, statusForTrackerError(err))
			return
		}
		writeRaw(r.Context(), w, data)
	}
}

// listTrackersHandler proxies a project's tracker catalog
func listTrackersHandler(tracker interfaces.Tracker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID, err := int64Param(r, "projectID")
		if err != nil {
			errutil.HandleHTTP(r.Context(), w, err, http.StatusBadRequest)
			return
		}
		data, err := tracker.ListTrackers(r.Context(), sessionCredential(r), int(projectID))
		if err != nil {
			errutil.HandleHTTP(r.Context(), w, err, statusForTrackerError(err))
			return
		}
		writeRaw(r.Context(), w, data)
	}
}

// listItemsHandler aggregates a tracker's items client-side
func listItemsHandler(tracker interfaces.Tracker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		trackerID, err := int64Param(r, "trackerID")
		if err != nil {
			errutil.HandleHTTP(r.Context(), w, err, http.StatusBadRequest)
			return
		}

		var opts []interfaces.ListItemsOption
		if r.URL.Query().Get("includeFields") == "true" {
			opts = append(opts, interfaces.WithIncludeFields(true))
		}
		maxItems, _ := strconv.Atoi(r.URL.Query().Get("maxItems"))
		if maxItems > 0 {
			opts = append(opts, interfaces.WithMaxItems(maxItems))
		}

		records, err := tracker.ListItems(r.Context(), sessionCredential(r), int(trackerID), opts...)
		if err != nil {
			errutil.HandleHTTP(r.Context(), w, err, statusForTrackerError(err))
			return
		}

		items := make([]itemPayload, 0, len(records))
		for _, record := range records {
			items = append(items, toItemPayload(record))
		}
		writeJSON(r.Context(), w, http.StatusOK, itemListResponse{
			Success:  true,
			Items:    items,
			Total:    len(items),
			Page:     1,
			PageSize: len(items),
			HasMore:  maxItems > 0 && len(items) >= maxItems,
		})
	}
}

// getItemHandler fetches one item with full field detail
func getItemHandler(tracker interfaces.Tracker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		itemID, err := int64Param(r, "itemID")
		if err != nil {
			errutil.HandleHTTP(r.Context(), w, err, http.StatusBadRequest)
			return
		}
		record, err := tracker.GetItem(r.Context(), sessionCredential(r), itemID)
		if err != nil {
			errutil.HandleHTTP(r.Context(), w, err, statusForTrackerError(err))
			return
		}
		writeJSON(r.Context(), w, http.StatusOK, itemResponse{Success: true, Item: toItemPayload(record)})
	}
}

// createItemHandler proxies a raw outbound record to a tracker
func createItemHandler(tracker interfaces.Tracker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		trackerID, err := int64Param(r, "trackerID")
		if err != nil {
			errutil.HandleHTTP(r.Context(), w, err, http.StatusBadRequest)
			return
		}

		var outbound model.OutboundRecord
		if err := json.NewDecoder(r.Body).Decode(&outbound); err != nil {
			errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "invalid record payload"), http.StatusBadRequest)
			return
		}

		created, err := tracker.CreateItem(r.Context(), sessionCredential(r), int(trackerID), &outbound)
		if err != nil {
			errutil.HandleHTTP(r.Context(), w, err, statusForTrackerError(err))
			return
		}
		writeJSON(r.Context(), w, http.StatusOK, itemResponse{Success: true, Item: toItemPayload(created)})
	}
}

// updateItemFieldsHandler replaces field values on an item
func updateItemFieldsHandler(tracker interfaces.Tracker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		itemID, err := int64Param(r, "itemID")
		if err != nil {
			errutil.HandleHTTP(r.Context(), w, err, http.StatusBadRequest)
			return
		}

		var body struct {
			FieldValues []model.CustomFieldEntry `json:"fieldValues"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "invalid field values payload"), http.StatusBadRequest)
			return
		}

		if err := tracker.UpdateItemFields(r.Context(), sessionCredential(r), itemID, body.FieldValues); err != nil {
			errutil.HandleHTTP(r.Context(), w, err, statusForTrackerError(err))
			return
		}
		writeJSON(r.Context(), w, http.StatusOK, successResponse{Success: true})
	}
}

// deleteItemHandler removes an item
func deleteItemHandler(tracker interfaces.Tracker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		itemID, err := int64Param(r, "itemID")
		if err != nil {
			errutil.HandleHTTP(r.Context(), w, err, http.StatusBadRequest)
			return
		}
		if err := tracker.DeleteItem(r.Context(), sessionCredential(r), itemID); err != nil {
			errutil.HandleHTTP(r.Context(), w, err, statusForTrackerError(err))
			return
		}
		writeJSON(r.Context(), w, http.StatusOK, successResponse{Success: true})
	}
}

// uploadAttachmentsHandler pushes 1..N multipart files against an item with
// one result per file.
func uploadAttachmentsHandler(tracker interfaces.Tracker) http.HandlerFunc {
	const maxUploadMemory = 32 << 20

	return func(w http.ResponseWriter, r *http.Request) {
		itemID, err := int64Param(r, "itemID")
		if err != nil {
			errutil.HandleHTTP(r.Context(), w, err, http.StatusBadRequest)
			return
		}

		if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
			errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "invalid multipart body"), http.StatusBadRequest)
			return
		}

		var files []model.Attachment
		for _, headers := range r.MultipartForm.File {
			for _, header := range headers {
				file, err := header.Open()
				if err != nil {
					errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "failed to open uploaded file",
						goerr.V("file", header.Filename)), http.StatusBadRequest)
					return
				}
				content, err := io.ReadAll(file)
				file.Close() //nolint:errcheck,gosec
				if err != nil {
					errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "failed to read uploaded file",
						goerr.V("file", header.Filename)), http.StatusBadRequest)
					return
				}
				files = append(files, model.Attachment{FileName: header.Filename, Content: content})
			}
		}

		if len(files) == 0 {
			errutil.HandleHTTP(r.Context(), w, goerr.New("no files in request"), http.StatusBadRequest)
			return
		}

		results, err := tracker.UploadAttachments(r.Context(), sessionCredential(r), itemID, files)
		if err != nil {
			errutil.HandleHTTP(r.Context(), w, err, statusForTrackerError(err))
			return
		}

		allOK := true
		for _, result := range results {
			if !result.Success {
				allOK = false
				break
			}
		}
		writeJSON(r.Context(), w, http.StatusOK, attachmentsResponse{Success: allOK, Attachments: results})
	}
}

// tableViewHandler renders a section's records into a display page
func tableViewHandler(uc *usecase.UseCases) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		section, err := sectionParam(r)
		if err != nil {
			errutil.HandleHTTP(r.Context(), w, err, http.StatusNotFound)
			return
		}
		report := uc.Report(section)

		q := r.URL.Query()
		if q.Get("refresh") == "true" || len(report.Records()) == 0 {
			if _, err := report.Reload(r.Context()); err != nil {
				errutil.HandleHTTP(r.Context(), w, err, statusForTrackerError(err))
				return
			}
		}

		page, _ := strconv.Atoi(q.Get("page"))
		pageSize, _ := strconv.Atoi(q.Get("pageSize"))
		pageState := model.PageState{Page: page, PageSize: pageSize}
		search := model.SearchOptions{
			Query:         q.Get("query"),
			CaseSensitive: q.Get("caseSensitive") == "true",
			WholeWord:     q.Get("wholeWord") == "true",
			Regex:         q.Get("regex") == "true",
		}

		table, err := report.RenderTable(r.Context(), pageState, search)
		if err != nil {
			errutil.HandleHTTP(r.Context(), w, err, http.StatusInternalServerError)
			return
		}
		writeJSON(r.Context(), w, http.StatusOK, tableViewResponse{Success: true, Table: table})
	}
}

// createReportHandler runs the full server-side submit path for a section
func createReportHandler(uc *usecase.UseCases) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		section, err := sectionParam(r)
		if err != nil {
			errutil.HandleHTTP(r.Context(), w, err, http.StatusNotFound)
			return
		}

		var req reportRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "invalid report payload"), http.StatusBadRequest)
			return
		}

		report := uc.Report(section)
		created, err := report.Create(r.Context(), model.FormState(req.Values), nil)
		if err != nil {
			handleReportError(w, r, err)
			return
		}
		if created == nil {
			// A submit was already in flight; the first one wins
			writeJSON(r.Context(), w, http.StatusConflict, errorResponse{Error: "처리 중입니다. 잠시 후 다시 시도해 주세요."})
			return
		}
		refreshInBackground(r, report)
		writeJSON(r.Context(), w, http.StatusOK, itemResponse{Success: true, Item: toItemPayload(created)})
	}
}

// updateReportHandler runs the server-side edit path for a section
func updateReportHandler(uc *usecase.UseCases) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		section, err := sectionParam(r)
		if err != nil {
			errutil.HandleHTTP(r.Context(), w, err, http.StatusNotFound)
			return
		}
		itemID, err := int64Param(r, "itemID")
		if err != nil {
			errutil.HandleHTTP(r.Context(), w, err, http.StatusBadRequest)
			return
		}

		var req reportRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "invalid report payload"), http.StatusBadRequest)
			return
		}

		report := uc.Report(section)
		if err := report.Update(r.Context(), itemID, model.FormState(req.Values), nil); err != nil {
			handleReportError(w, r, err)
			return
		}
		refreshInBackground(r, report)
		writeJSON(r.Context(), w, http.StatusOK, successResponse{Success: true})
	}
}

// deleteReportHandler removes a section record
func deleteReportHandler(uc *usecase.UseCases) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		section, err := sectionParam(r)
		if err != nil {
			errutil.HandleHTTP(r.Context(), w, err, http.StatusNotFound)
			return
		}
		itemID, err := int64Param(r, "itemID")
		if err != nil {
			errutil.HandleHTTP(r.Context(), w, err, http.StatusBadRequest)
			return
		}

		report := uc.Report(section)
		if err := report.Delete(r.Context(), itemID); err != nil {
			handleReportError(w, r, err)
			return
		}
		refreshInBackground(r, report)
		writeJSON(r.Context(), w, http.StatusOK, successResponse{Success: true})
	}
}

// handleReportError maps use case failures onto the response envelope
func handleReportError(w http.ResponseWriter, r *http.Request, err error) {
	ctx := r.Context()

	switch {
	case errors.Is(err, usecase.ErrValidation):
		resp := validationErrorResponse{Error: "입력값을 확인해 주세요."}
		if ge := goerr.Unwrap(err); ge != nil {
			if messages, ok := ge.Values()[usecase.MessagesKey].([]string); ok {
				resp.Errors = messages
			}
		}
		writeJSON(ctx, w, http.StatusBadRequest, resp)
	case errors.Is(err, usecase.ErrNothingToUpdate):
		writeJSON(ctx, w, http.StatusBadRequest, errorResponse{Error: "변경된 항목이 없습니다."})
	case errors.Is(err, usecase.ErrPartialAttachment):
		resp := attachmentsResponse{Success: false}
		if ge := goerr.Unwrap(err); ge != nil {
			if results, ok := ge.Values()[usecase.ResultsKey].([]model.AttachmentResult); ok {
				resp.Attachments = results
			}
		}
		writeJSON(ctx, w, http.StatusOK, resp)
	case errors.Is(err, usecase.ErrSectionNotFound):
		errutil.HandleHTTP(ctx, w, err, http.StatusNotFound)
	case errors.Is(err, usecase.ErrAuthFailed):
		errutil.HandleHTTP(ctx, w, err, http.StatusUnauthorized)
	default:
		errutil.HandleHTTP(ctx, w, err, statusForTrackerError(err))
	}
}
