package codebeamer

import (
	"encoding/json"
	"strings"

	"github.com/doowon-lab/dwportal/pkg/domain/model"
)

// wireCustomField is one custom field entry as the tracker returns it. The
// field identifier key has drifted across tracker versions (fieldId, id,
// referenceId), and the value is a scalar, a {name} object, or a values[]
// list depending on the field type.
type wireCustomField struct {
	FieldID     int    `json:"fieldId"`
	ID          int    `json:"id"`
	ReferenceID int    `json:"referenceId"`
	Name        string `json:"name"`
	Value       any    `json:"value"`
	Values      []any  `json:"values"`
}

func (f *wireCustomField) fieldID() int {
	if f.FieldID != 0 {
		return f.FieldID
	}
	if f.ID != 0 {
		return f.ID
	}
	return f.ReferenceID
}

// wireItem is one tracker item as returned by the downstream API
type wireItem struct {
	ID           int64             `json:"id"`
	Name         string            `json:"name"`
	Status       json.RawMessage   `json:"status"`
	CustomFields []wireCustomField `json:"customFields"`
}

// toRecord resolves the item into the domain record, including the
// conventional custom_field_N flat keys some tracker versions ship at the
// top level. raw is the full item JSON for flat-key extraction.
func (it *wireItem) toRecord(raw json.RawMessage) *model.Record {
	rec := &model.Record{
		ID:     it.ID,
		Name:   it.Name,
		Status: decodeStatus(it.Status),
	}

	if len(it.CustomFields) > 0 {
		rec.CustomFields = make([]model.FieldValue, 0, len(it.CustomFields))
		for i := range it.CustomFields {
			cf := &it.CustomFields[i]
			rec.CustomFields = append(rec.CustomFields, model.ResolveFieldValue(cf.fieldID(), cf.Value, cf.Values))
		}
	}

	if len(raw) > 0 {
		var top map[string]any
		if err := json.Unmarshal(raw, &top); err == nil {
			for key, value := range top {
				if !strings.HasPrefix(key, "custom_field_") {
					continue
				}
				fv := model.ResolveFieldValue(0, value, nil)
				if display := fv.Display(); display != "" {
					if rec.Flat == nil {
						rec.Flat = make(map[string]string)
					}
					rec.Flat[key] = display
				}
			}
		}
	}

	return rec
}

// decodeStatus accepts both a bare string and a {name:...} object
func decodeStatus(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var obj struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil {
		return obj.Name
	}
	return ""
}

// decodeItemPage accepts the four historical list response shapes: a bare
// array, {itemRefs:[...]}, {items:[...]} or {data:[...]}.
func decodeItemPage(data []byte) ([]json.RawMessage, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err == nil {
		return items, nil
	}

	var wrapped struct {
		ItemRefs []json.RawMessage `json:"itemRefs"`
		Items    []json.RawMessage `json:"items"`
		Data     []json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return nil, err
	}
	switch {
	case wrapped.ItemRefs != nil:
		return wrapped.ItemRefs, nil
	case wrapped.Items != nil:
		return wrapped.Items, nil
	case wrapped.Data != nil:
		return wrapped.Data, nil
	default:
		return nil, nil
	}
}

func decodeRecord(data []byte) (*model.Record, error) {
	var item wireItem
	if err := json.Unmarshal(data, &item); err != nil {
		return nil, err
	}
	return item.toRecord(data), nil
}
