package usecase

import (
	"fmt"
	"time"

	"github.com/doowon-lab/dwportal/pkg/domain/model"
)

// displayDateFormat is the portal's date rendering (Korean locale)
const displayDateFormat = "2006-01-02"

// dateParseLayouts are the accepted inbound date shapes, tried in order
var dateParseLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
	"2006-01-02 15:04:05",
}

// ExtractFieldValue resolves a record's display value for one descriptor.
// Priority: name/status special cases, then the resolved custom field value
// matched by reference id, then the conventional flat custom_field_N key,
// then empty.
func ExtractFieldValue(record *model.Record, d *model.FieldDescriptor) string {
	switch d.ExternalKey {
	case "name", "title":
		return record.Name
	case "status":
		return record.Status
	}

	if fv := record.CustomField(d.ReferenceID); fv != nil {
		if display := fv.Display(); display != "" {
			return display
		}
	}

	if flat, ok := record.Flat[fmt.Sprintf("custom_field_%d", d.ReferenceID)]; ok {
		return flat
	}

	return ""
}

// parseDate tries the accepted date shapes in order
func parseDate(value string) (time.Time, bool) {
	for _, layout := range dateParseLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// formatDate renders a raw date value for display, passing the raw string
// through when it does not parse.
func formatDate(value string) string {
	if t, ok := parseDate(value); ok {
		return t.Format(displayDateFormat)
	}
	return value
}
