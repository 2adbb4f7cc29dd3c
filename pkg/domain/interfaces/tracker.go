package interfaces

import (
	"context"
	"encoding/json"

	"github.com/doowon-lab/dwportal/pkg/domain/model"
	"github.com/doowon-lab/dwportal/pkg/domain/model/auth"
)

// ListItemsOption is a functional option for Tracker.ListItems
type ListItemsOption func(*ListItemsConfig)

// ListItemsConfig holds resolved list options
type ListItemsConfig struct {
	maxItems      int
	includeFields bool
}

// WithMaxItems caps the number of aggregated items. Zero means unlimited
// (up to the client's page cap).
func WithMaxItems(n int) ListItemsOption {
	return func(c *ListItemsConfig) {
		c.maxItems = n
	}
}

// WithIncludeFields requests full field detail for each item
func WithIncludeFields(include bool) ListItemsOption {
	return func(c *ListItemsConfig) {
		c.includeFields = include
	}
}

// BuildListItemsConfig builds a ListItemsConfig from options
func BuildListItemsConfig(opts ...ListItemsOption) *ListItemsConfig {
	cfg := &ListItemsConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// MaxItems returns the item cap, 0 for unlimited
func (c *ListItemsConfig) MaxItems() int { return c.maxItems }

// IncludeFields reports whether full field detail was requested
func (c *ListItemsConfig) IncludeFields() bool { return c.includeFields }

// Tracker is the downstream issue-tracking system. Every call forwards the
// session's Basic credential; the tracker is the authority on all records.
type Tracker interface {
	// Ping checks reachability without credentials
	Ping(ctx context.Context) error

	// Verify checks a credential by issuing an authenticated request
	Verify(ctx context.Context, cred auth.Credential) error

	// ListProjects and ListTrackers proxy the downstream catalog verbatim
	ListProjects(ctx context.Context, cred auth.Credential) (json.RawMessage, error)
	ListTrackers(ctx context.Context, cred auth.Credential, projectID int) (json.RawMessage, error)

	// ListItems aggregates all server-side pages of a tracker's items
	ListItems(ctx context.Context, cred auth.Credential, trackerID int, opts ...ListItemsOption) ([]*model.Record, error)

	GetItem(ctx context.Context, cred auth.Credential, itemID int64) (*model.Record, error)
	CreateItem(ctx context.Context, cred auth.Credential, trackerID int, rec *model.OutboundRecord) (*model.Record, error)
	UpdateItemFields(ctx context.Context, cred auth.Credential, itemID int64, fields []model.CustomFieldEntry) error
	DeleteItem(ctx context.Context, cred auth.Credential, itemID int64) error

	// UploadAttachments uploads 1..N files against an item. The result slice
	// always has one entry per file; per-file failure does not abort the rest.
	UploadAttachments(ctx context.Context, cred auth.Credential, itemID int64, files []model.Attachment) ([]model.AttachmentResult, error)
}
