package model

import "github.com/doowon-lab/dwportal/pkg/domain/types"

// CustomFieldEntry is one typed field value in an outbound create or update
// payload, keyed by the downstream field's reference id.
type CustomFieldEntry struct {
	FieldID int            `json:"fieldId"`
	Type    types.WireType `json:"type"`
	Name    string         `json:"name,omitempty"`
	Value   any            `json:"value"`
}

// OutboundRecord is the wire shape for creating a tracker item. It is
// always well-formed: zero custom fields is valid.
type OutboundRecord struct {
	Name         string             `json:"name"`
	Description  string             `json:"description"`
	CustomFields []CustomFieldEntry `json:"customFields"`
}

// Attachment is one staged upload file
type Attachment struct {
	FileName string
	Content  []byte
}

// AttachmentResult reports the outcome of uploading one file. Partial
// failure never rolls back the parent record.
type AttachmentResult struct {
	Name    string `json:"name"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}
