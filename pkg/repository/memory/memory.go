package memory

import (
	"context"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/doowon-lab/dwportal/pkg/domain/interfaces"
	"github.com/doowon-lab/dwportal/pkg/domain/model"
	"github.com/doowon-lab/dwportal/pkg/domain/types"
)

// ErrNotFound is returned when a requested entity does not exist
var ErrNotFound = goerr.New("not found")

// ErrSectionNotFound is the shared repository sentinel for a section with
// no configuration or tracker binding
var ErrSectionNotFound = interfaces.ErrSectionNotFound

// Repository is an in-memory implementation for tests and development mode
type Repository struct {
	mu       sync.RWMutex
	sections *model.SectionMap
	tokens   *tokenStore
}

var _ interfaces.Repository = &Repository{}

// New creates an in-memory repository seeded with the built-in defaults
func New() *Repository {
	return NewWithDefaults(model.DefaultSectionMap())
}

// NewWithDefaults creates an in-memory repository seeded with the given
// section map.
func NewWithDefaults(defaults *model.SectionMap) *Repository {
	return &Repository{
		sections: defaults.Clone(),
		tokens:   newTokenStore(),
	}
}

// Load returns a copy of the current section map
func (r *Repository) Load(ctx context.Context) (*model.SectionMap, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sections.Clone(), nil
}

// Save replaces the whole section map
func (r *Repository) Save(ctx context.Context, m *model.SectionMap) error {
	if err := m.Validate(); err != nil {
		return goerr.Wrap(err, "invalid section map")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	replaced := m.Clone()
	replaced.LastUpdated = time.Now().UTC()
	r.sections = replaced
	return nil
}

// GetSection returns the descriptor list for a section
func (r *Repository) GetSection(ctx context.Context, section types.Section) ([]model.FieldDescriptor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	descriptors, ok := r.sections.FieldConfigs[section]
	if !ok {
		return nil, goerr.Wrap(ErrSectionNotFound, "no field config", goerr.V("section", section))
	}

	copied := make([]model.FieldDescriptor, len(descriptors))
	for i := range descriptors {
		copied[i] = descriptors[i].Clone()
	}
	return copied, nil
}

// TrackerID returns the tracker bound to a section
func (r *Repository) TrackerID(ctx context.Context, section types.Section) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.sections.TrackerIDs[section]
	if !ok {
		return 0, goerr.Wrap(ErrSectionNotFound, "no tracker binding", goerr.V("section", section))
	}
	return id, nil
}

// Close is a no-op for the in-memory repository
func (r *Repository) Close() error {
	return nil
}
