package interfaces

import (
	"context"

	"github.com/doowon-lab/dwportal/pkg/domain/model"
	"github.com/doowon-lab/dwportal/pkg/domain/model/auth"
	"github.com/doowon-lab/dwportal/pkg/domain/types"
)

// Repository defines the interface for portal state: the persisted field
// configuration document plus ephemeral session tokens.
type Repository interface {
	// Load returns the current section map. Implementations fail soft: a
	// missing or corrupt backing store yields built-in defaults, never an
	// error for the read path.
	Load(ctx context.Context) (*model.SectionMap, error)

	// Save atomically replaces the whole section map. On failure the
	// previously persisted state is left untouched.
	Save(ctx context.Context, m *model.SectionMap) error

	// GetSection returns the ordered descriptor list for a section, or
	// ErrSectionNotFound.
	GetSection(ctx context.Context, section types.Section) ([]model.FieldDescriptor, error)

	// TrackerID returns the downstream tracker bound to a section, or
	// ErrSectionNotFound when the section has no binding.
	TrackerID(ctx context.Context, section types.Section) (int, error)

	// Session token methods
	PutToken(ctx context.Context, token *auth.Token) error
	GetToken(ctx context.Context, tokenID auth.TokenID) (*auth.Token, error)
	DeleteToken(ctx context.Context, tokenID auth.TokenID) error

	Close() error
}
