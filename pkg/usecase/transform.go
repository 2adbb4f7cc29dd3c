package usecase

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/doowon-lab/dwportal/pkg/domain/model"
	"github.com/doowon-lab/dwportal/pkg/domain/types"
	"github.com/doowon-lab/dwportal/pkg/utils/logging"
)

const defaultDescription = "Auto-generated entry"

// Transform converts a validated form state into the outbound create
// payload. It always produces a well-formed record: name and description
// fall back to generated values when absent.
func Transform(ctx context.Context, section types.Section, state model.FormState, descriptors []model.FieldDescriptor) *model.OutboundRecord {
	record := &model.OutboundRecord{
		Name:         recordName(section, state),
		Description:  recordDescription(state, descriptors),
		CustomFields: customFieldEntries(ctx, state, descriptors),
	}
	return record
}

// TransformUpdate converts an edit form state into field-level updates.
// Only non-blank values are sent; zero updatable fields is rejected before
// any network call.
func TransformUpdate(ctx context.Context, state model.FormState, descriptors []model.FieldDescriptor) ([]model.CustomFieldEntry, error) {
	entries := customFieldEntries(ctx, state, descriptors)
	if len(entries) == 0 {
		return nil, goerr.Wrap(ErrNothingToUpdate, "edit form has no non-blank fields")
	}
	return entries, nil
}

func recordName(section types.Section, state model.FormState) string {
	if !state.IsBlank("name") {
		return strings.TrimSpace(state.Get("name"))
	}
	if !state.IsBlank("title") {
		return strings.TrimSpace(state.Get("title"))
	}
	return fmt.Sprintf("%s - %s", section, time.Now().Format(displayDateFormat))
}

func recordDescription(state model.FormState, descriptors []model.FieldDescriptor) string {
	if !state.IsBlank("description") {
		return strings.TrimSpace(state.Get("description"))
	}

	// First non-blank value in descriptor order, skipping the fields that
	// already feed name/description.
	for i := range descriptors {
		key := descriptors[i].ExternalKey
		if key == "name" || key == "title" || key == "description" {
			continue
		}
		if !state.IsBlank(key) {
			return "Entry created: " + strings.TrimSpace(state.Get(key))
		}
	}

	return defaultDescription
}

// customFieldEntries builds the typed field entries keyed by reference id.
// Readonly descriptors, blank values and the name/title/description keys
// are skipped. Unparseable number/date values are dropped with a warning
// rather than failing the whole submit.
func customFieldEntries(ctx context.Context, state model.FormState, descriptors []model.FieldDescriptor) []model.CustomFieldEntry {
	var entries []model.CustomFieldEntry
	logger := logging.From(ctx)

	for i := range descriptors {
		d := &descriptors[i]
		if d.Readonly || d.Type == types.FieldTypeAttachment {
			continue
		}
		switch d.ExternalKey {
		case "name", "title", "description":
			continue
		}
		if state.IsBlank(d.ExternalKey) {
			continue
		}

		value := strings.TrimSpace(state.Get(d.ExternalKey))
		entry := model.CustomFieldEntry{
			FieldID: d.ReferenceID,
			Name:    d.Name,
		}

		switch wire := d.Type.Wire(); wire {
		case types.WireInteger:
			n, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				logger.Warn("dropping unparseable number field",
					"field", d.Name, "key", d.ExternalKey, "value", value)
				continue
			}
			entry.Type = types.WireInteger
			entry.Value = n
		case types.WireDate:
			t, ok := parseDate(value)
			if !ok {
				logger.Warn("dropping unparseable date field",
					"field", d.Name, "key", d.ExternalKey, "value", value)
				continue
			}
			entry.Type = types.WireDate
			entry.Value = t.Format(time.RFC3339)
		default:
			// Selector values are sent as plain text; the tracker's
			// choice-by-id mechanism is bypassed on purpose.
			entry.Type = types.WireText
			entry.Value = value
		}

		entries = append(entries, entry)
	}

	return entries
}
