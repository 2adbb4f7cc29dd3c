package usecase

import (
	"github.com/m-mizutani/goerr/v2"

	"github.com/doowon-lab/dwportal/pkg/domain/interfaces"
)

// Sentinel errors for the use case layer. Handlers map these to HTTP
// status codes; everything else is a 500.
var (
	// ErrSectionNotFound shares the repository sentinel so errors.Is
	// matches whether the miss came from this layer or the store
	ErrSectionNotFound = interfaces.ErrSectionNotFound
	ErrConfigSave      = goerr.New("failed to save field configuration")
	ErrValidation      = goerr.New("form validation failed")
	ErrNothingToUpdate = goerr.New("no fields to update")

	// ErrPartialAttachment means the record itself was committed but one or
	// more attachment uploads failed. The per-file results are attached.
	ErrPartialAttachment = goerr.New("some attachments failed to upload")

	// ErrAuthFailed covers both bad credentials and invalid sessions
	ErrAuthFailed = goerr.New("authentication failed")
)

// Context keys for error values
const (
	SectionKey  = "section"
	ItemIDKey   = "item_id"
	MessagesKey = "messages"
	ResultsKey  = "results"
)
