package codebeamer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"golang.org/x/sync/errgroup"

	"github.com/doowon-lab/dwportal/pkg/domain/interfaces"
	"github.com/doowon-lab/dwportal/pkg/domain/model"
	"github.com/doowon-lab/dwportal/pkg/domain/model/auth"
	"github.com/doowon-lab/dwportal/pkg/utils/logging"
	"github.com/doowon-lab/dwportal/pkg/utils/safe"
)

// ErrUnavailable marks network-level failures (connection refused, timeout).
// Read paths may retry these.
var ErrUnavailable = goerr.New("downstream tracker unavailable")

// ErrRejected marks a downstream HTTP error response. The raw body is kept
// for operator diagnosis; this is an internal tool where transparency beats
// sanitization.
var ErrRejected = goerr.New("downstream tracker rejected request")

const (
	defaultPageSize      = 25
	defaultPageDelay     = time.Second
	defaultRateLimitWait = 5 * time.Second
	defaultMaxPages      = 100
	defaultTimeout       = 10 * time.Second

	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"

	maxUploadConcurrency = 4
)

// Client talks to a CodeBeamer instance over its v3 REST API, forwarding
// the session's Basic credential on every call.
type Client struct {
	baseURL       string
	httpClient    *http.Client
	pageDelay     time.Duration
	rateLimitWait time.Duration
	maxPages      int
}

var _ interfaces.Tracker = &Client{}

// Option is a functional option for the client
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client (tests)
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithPageDelay sets the wait between aggregated list pages
func WithPageDelay(d time.Duration) Option {
	return func(c *Client) {
		c.pageDelay = d
	}
}

// WithRateLimitWait sets the wait after an HTTP 429 before retrying a page
func WithRateLimitWait(d time.Duration) Option {
	return func(c *Client) {
		c.rateLimitWait = d
	}
}

// WithMaxPages caps how many downstream pages one List call will walk
func WithMaxPages(n int) Option {
	return func(c *Client) {
		c.maxPages = n
	}
}

// New creates a tracker client for the given base URL
func New(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, goerr.New("tracker base URL is required")
	}

	c := &Client{
		baseURL:       baseURL,
		httpClient:    &http.Client{Timeout: defaultTimeout},
		pageDelay:     defaultPageDelay,
		rateLimitWait: defaultRateLimitWait,
		maxPages:      defaultMaxPages,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Client) newRequest(ctx context.Context, cred auth.Credential, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to build request", goerr.V("path", path))
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if cred != "" {
		req.Header.Set("Authorization", "Basic "+string(cred))
	}
	return req, nil
}

// do runs the request and returns the response body for 2xx responses.
// Network failures map to ErrUnavailable, HTTP errors to ErrRejected with
// the raw downstream body attached.
func (c *Client) do(req *http.Request) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, goerr.Wrap(ErrUnavailable, "request failed",
			goerr.V("method", req.Method),
			goerr.V("path", req.URL.Path),
			goerr.V("cause", err.Error()))
	}
	defer safe.Close(req.Context(), resp.Body)

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, goerr.Wrap(ErrUnavailable, "failed to read response",
			goerr.V("path", req.URL.Path),
			goerr.V("cause", err.Error()))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, goerr.Wrap(ErrRejected, "unexpected status",
			goerr.V("method", req.Method),
			goerr.V("path", req.URL.Path),
			goerr.V("status", resp.StatusCode),
			goerr.V("body", string(data)))
	}

	return data, nil
}

// StatusOf extracts the downstream HTTP status from an error, 0 if none
func StatusOf(err error) int {
	if ge := goerr.Unwrap(err); ge != nil {
		if status, ok := ge.Values()["status"].(int); ok {
			return status
		}
	}
	return 0
}

// IsTransient reports whether the error is worth retrying on a read path:
// a network failure or a downstream 5xx.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrUnavailable) {
		return true
	}
	return StatusOf(err) >= 500
}

// Ping checks the tracker is reachable, without credentials
func (c *Client) Ping(ctx context.Context) error {
	req, err := c.newRequest(ctx, "", http.MethodGet, "/ping", nil)
	if err != nil {
		return err
	}
	if _, err := c.do(req); err != nil {
		return goerr.Wrap(err, "tracker ping failed")
	}
	return nil
}

// Verify checks a Basic credential by issuing an authenticated request
func (c *Client) Verify(ctx context.Context, cred auth.Credential) error {
	req, err := c.newRequest(ctx, cred, http.MethodGet, "/api/v3/users", nil)
	if err != nil {
		return err
	}
	if _, err := c.do(req); err != nil {
		return goerr.Wrap(err, "credential verification failed")
	}
	return nil
}

// ListProjects proxies the project catalog verbatim
func (c *Client) ListProjects(ctx context.Context, cred auth.Credential) (json.RawMessage, error) {
	req, err := c.newRequest(ctx, cred, http.MethodGet, "/api/v3/projects", nil)
	if err != nil {
		return nil, err
	}
	data, err := c.do(req)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list projects")
	}
	return data, nil
}

// ListTrackers proxies a project's tracker catalog verbatim
func (c *Client) ListTrackers(ctx context.Context, cred auth.Credential, projectID int) (json.RawMessage, error) {
	path := fmt.Sprintf("/api/v3/projects/%d/trackers", projectID)
	req, err := c.newRequest(ctx, cred, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	data, err := c.do(req)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list trackers", goerr.V("project_id", projectID))
	}
	return data, nil
}

// ListItems walks all server-side pages of a tracker's items and returns
// the aggregate. It waits between pages, backs off on HTTP 429, and stops
// at the page cap; the tracker's own paging is an implementation detail the
// portal re-pages client-side.
func (c *Client) ListItems(ctx context.Context, cred auth.Credential, trackerID int, opts ...interfaces.ListItemsOption) ([]*model.Record, error) {
	cfg := interfaces.BuildListItemsConfig(opts...)
	logger := logging.From(ctx)

	var records []*model.Record
	page := 1

	for page <= c.maxPages {
		path := fmt.Sprintf("/api/v3/trackers/%d/items?page=%d&pageSize=%d", trackerID, page, defaultPageSize)
		if cfg.IncludeFields() {
			path += "&includeFields=true"
		}

		req, err := c.newRequest(ctx, cred, http.MethodGet, path, nil)
		if err != nil {
			return nil, err
		}

		data, err := c.do(req)
		if err != nil {
			if StatusOf(err) == http.StatusTooManyRequests {
				logger.Warn("rate limit hit, waiting before retry",
					"tracker_id", trackerID, "page", page, "wait", c.rateLimitWait)
				if werr := sleepCtx(ctx, c.rateLimitWait); werr != nil {
					return nil, werr
				}
				continue
			}
			return nil, goerr.Wrap(err, "failed to fetch tracker items",
				goerr.V("tracker_id", trackerID), goerr.V("page", page))
		}

		rawItems, err := decodeItemPage(data)
		if err != nil {
			return nil, goerr.Wrap(err, "unexpected item page shape",
				goerr.V("tracker_id", trackerID), goerr.V("page", page))
		}

		for _, raw := range rawItems {
			rec, err := decodeRecord(raw)
			if err != nil {
				return nil, goerr.Wrap(err, "failed to decode item",
					goerr.V("tracker_id", trackerID), goerr.V("page", page))
			}
			records = append(records, rec)
			if cfg.MaxItems() > 0 && len(records) >= cfg.MaxItems() {
				return records, nil
			}
		}

		if len(rawItems) < defaultPageSize {
			break
		}
		page++

		if page > c.maxPages {
			logger.Warn("reached page cap, stopping aggregation",
				"tracker_id", trackerID, "max_pages", c.maxPages)
			break
		}
		if err := sleepCtx(ctx, c.pageDelay); err != nil {
			return nil, err
		}
	}

	return records, nil
}

// GetItem fetches one item with full field detail
func (c *Client) GetItem(ctx context.Context, cred auth.Credential, itemID int64) (*model.Record, error) {
	path := fmt.Sprintf("/api/v3/items/%d", itemID)
	req, err := c.newRequest(ctx, cred, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	data, err := c.do(req)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to fetch item", goerr.V("item_id", itemID))
	}
	rec, err := decodeRecord(data)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to decode item", goerr.V("item_id", itemID))
	}
	return rec, nil
}

// CreateItem posts an outbound record to a tracker and returns the created
// item.
func (c *Client) CreateItem(ctx context.Context, cred auth.Credential, trackerID int, rec *model.OutboundRecord) (*model.Record, error) {
	payload, err := json.Marshal(rec)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to encode outbound record")
	}

	path := fmt.Sprintf("/api/v3/trackers/%d/items", trackerID)
	req, err := c.newRequest(ctx, cred, http.MethodPost, path, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	data, err := c.do(req)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create item", goerr.V("tracker_id", trackerID))
	}
	created, err := decodeRecord(data)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to decode created item", goerr.V("tracker_id", trackerID))
	}
	return created, nil
}

// UpdateItemFields replaces the given field values on an item. The tracker
// does not support replacing other attributes in place.
func (c *Client) UpdateItemFields(ctx context.Context, cred auth.Credential, itemID int64, fields []model.CustomFieldEntry) error {
	payload, err := json.Marshal(map[string]any{"fieldValues": fields})
	if err != nil {
		return goerr.Wrap(err, "failed to encode field updates")
	}

	path := fmt.Sprintf("/api/v3/items/%d/fields", itemID)
	req, err := c.newRequest(ctx, cred, http.MethodPut, path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	if _, err := c.do(req); err != nil {
		return goerr.Wrap(err, "failed to update item fields", goerr.V("item_id", itemID))
	}
	return nil
}

// DeleteItem removes an item by id
func (c *Client) DeleteItem(ctx context.Context, cred auth.Credential, itemID int64) error {
	path := fmt.Sprintf("/api/v3/items/%d", itemID)
	req, err := c.newRequest(ctx, cred, http.MethodDelete, path, nil)
	if err != nil {
		return err
	}
	if _, err := c.do(req); err != nil {
		return goerr.Wrap(err, "failed to delete item", goerr.V("item_id", itemID))
	}
	return nil
}

// UploadAttachments uploads each file against the item, bounded-parallel.
// One result per file; a failed file never aborts the others.
func (c *Client) UploadAttachments(ctx context.Context, cred auth.Credential, itemID int64, files []model.Attachment) ([]model.AttachmentResult, error) {
	results := make([]model.AttachmentResult, len(files))

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(maxUploadConcurrency)

	for i := range files {
		eg.Go(func() error {
			file := &files[i]
			results[i] = model.AttachmentResult{Name: file.FileName}
			if err := c.uploadOne(egCtx, cred, itemID, file); err != nil {
				results[i].Error = err.Error()
				logging.From(ctx).Warn("attachment upload failed",
					"item_id", itemID, "file", file.FileName, "error", err.Error())
				return nil // per-file failure is reported, not propagated
			}
			results[i].Success = true
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return results, err
	}
	return results, nil
}

func (c *Client) uploadOne(ctx context.Context, cred auth.Credential, itemID int64, file *model.Attachment) error {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("attachments", file.FileName)
	if err != nil {
		return goerr.Wrap(err, "failed to build multipart body", goerr.V("file", file.FileName))
	}
	if _, err := part.Write(file.Content); err != nil {
		return goerr.Wrap(err, "failed to write multipart body", goerr.V("file", file.FileName))
	}
	if err := writer.Close(); err != nil {
		return goerr.Wrap(err, "failed to finish multipart body", goerr.V("file", file.FileName))
	}

	path := fmt.Sprintf("/api/v3/items/%d/attachments", itemID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, &body)
	if err != nil {
		return goerr.Wrap(err, "failed to build upload request", goerr.V("file", file.FileName))
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if cred != "" {
		req.Header.Set("Authorization", "Basic "+string(cred))
	}

	if _, err := c.do(req); err != nil {
		return err
	}
	return nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return goerr.Wrap(ctx.Err(), "cancelled while waiting")
	case <-timer.C:
		return nil
	}
}
