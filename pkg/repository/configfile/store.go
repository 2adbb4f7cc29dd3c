package configfile

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/doowon-lab/dwportal/pkg/domain/interfaces"
	"github.com/doowon-lab/dwportal/pkg/domain/model"
	"github.com/doowon-lab/dwportal/pkg/domain/types"
	"github.com/doowon-lab/dwportal/pkg/utils/logging"
)

// ErrSectionNotFound is the shared repository sentinel for a section with
// no configuration or tracker binding
var ErrSectionNotFound = interfaces.ErrSectionNotFound

// ErrSaveFailed is returned when persisting the section map fails. The
// previously persisted document is left untouched.
var ErrSaveFailed = goerr.New("failed to save field configuration")

// Repository persists the section map as one JSON document. Reads fail
// soft: a missing or corrupt file yields the defaults. Writes go to a temp
// file in the same directory and are renamed into place, so a failed write
// never corrupts the previous document. Concurrent writers from separate
// processes race last-write-wins; this store is for a low-traffic internal
// admin flow.
type Repository struct {
	mu       sync.RWMutex
	path     string
	defaults *model.SectionMap
	tokens   *tokenStore
}

var _ interfaces.Repository = &Repository{}

// Option is a functional option for the file store
type Option func(*Repository)

// WithDefaults overrides the built-in default section map, e.g. from a
// bootstrap configuration file.
func WithDefaults(defaults *model.SectionMap) Option {
	return func(r *Repository) {
		r.defaults = defaults
	}
}

// New creates a file-backed repository. The file does not need to exist.
func New(path string, opts ...Option) (*Repository, error) {
	if path == "" {
		return nil, goerr.New("config file path is required")
	}

	r := &Repository{
		path:     path,
		defaults: model.DefaultSectionMap(),
		tokens:   newTokenStore(),
	}
	for _, opt := range opts {
		opt(r)
	}

	if err := r.defaults.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid default section map")
	}

	return r, nil
}

// Load returns the persisted section map, or the defaults when the file is
// missing or unreadable. A read failure is a warning, never an error.
func (r *Repository) Load(ctx context.Context) (*model.SectionMap, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.loadLocked(ctx), nil
}

func (r *Repository) loadLocked(ctx context.Context) *model.SectionMap {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			logging.From(ctx).Warn("failed to read field config file, using defaults",
				"path", r.path, "error", err.Error())
		}
		return r.defaults.Clone()
	}

	var m model.SectionMap
	if err := json.Unmarshal(data, &m); err != nil {
		logging.From(ctx).Warn("field config file is corrupt, using defaults",
			"path", r.path, "error", err.Error())
		return r.defaults.Clone()
	}
	if err := m.Validate(); err != nil {
		logging.From(ctx).Warn("field config file is invalid, using defaults",
			"path", r.path, "error", err.Error())
		return r.defaults.Clone()
	}

	return &m
}

// Save atomically replaces the persisted document
func (r *Repository) Save(ctx context.Context, m *model.SectionMap) error {
	if err := m.Validate(); err != nil {
		return goerr.Wrap(err, "invalid section map")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	stamped := m.Clone()
	stamped.LastUpdated = time.Now().UTC()

	data, err := json.MarshalIndent(stamped, "", "  ")
	if err != nil {
		return goerr.Wrap(ErrSaveFailed, "failed to encode section map", goerr.V("cause", err.Error()))
	}

	dir := filepath.Dir(r.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(r.path)+".tmp-*")
	if err != nil {
		return goerr.Wrap(ErrSaveFailed, "failed to create temp file", goerr.V("dir", dir), goerr.V("cause", err.Error()))
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()          //nolint:errcheck // already failing
		os.Remove(tmpName)   //nolint:errcheck // best effort cleanup
		return goerr.Wrap(ErrSaveFailed, "failed to write temp file", goerr.V("path", tmpName), goerr.V("cause", err.Error()))
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName) //nolint:errcheck // best effort cleanup
		return goerr.Wrap(ErrSaveFailed, "failed to flush temp file", goerr.V("path", tmpName), goerr.V("cause", err.Error()))
	}

	if err := os.Rename(tmpName, r.path); err != nil {
		os.Remove(tmpName) //nolint:errcheck // best effort cleanup
		return goerr.Wrap(ErrSaveFailed, "failed to replace config file", goerr.V("path", r.path), goerr.V("cause", err.Error()))
	}

	return nil
}

// GetSection returns the descriptor list for a section
func (r *Repository) GetSection(ctx context.Context, section types.Section) ([]model.FieldDescriptor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m := r.loadLocked(ctx)
	descriptors, ok := m.FieldConfigs[section]
	if !ok {
		return nil, goerr.Wrap(ErrSectionNotFound, "no field config", goerr.V("section", section))
	}
	return descriptors, nil
}

// TrackerID returns the tracker bound to a section
func (r *Repository) TrackerID(ctx context.Context, section types.Section) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m := r.loadLocked(ctx)
	id, ok := m.TrackerIDs[section]
	if !ok {
		return 0, goerr.Wrap(ErrSectionNotFound, "no tracker binding", goerr.V("section", section))
	}
	return id, nil
}

// Close is a no-op; the store holds no open handles between calls
func (r *Repository) Close() error {
	return nil
}
