package usecase

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/doowon-lab/dwportal/pkg/domain/model"
	"github.com/doowon-lab/dwportal/pkg/domain/types"
)

const (
	emptyTablePlaceholder = "데이터가 없습니다."
	actionsColumnTitle    = "작업"

	cellTruncateRunes = 50
)

// TableView renders a section's records into a display-ready page. Render
// is a pure function of its inputs: the same records, descriptors, page
// state and search always produce an identical page.
type TableView struct{}

func NewTableView() *TableView {
	return &TableView{}
}

// Render filters, paginates and formats records for display
func (v *TableView) Render(records []*model.Record, descriptors []model.FieldDescriptor, page model.PageState, search model.SearchOptions) model.TablePage {
	page = page.Normalize()

	columns := make([]string, 0, len(descriptors)+2)
	columns = append(columns, "ID")
	for i := range descriptors {
		columns = append(columns, descriptors[i].Name)
	}
	columns = append(columns, actionsColumnTitle)

	filtered := v.filter(records, descriptors, search)

	total := len(filtered)
	totalPages := (total + page.PageSize - 1) / page.PageSize
	if totalPages < 1 {
		totalPages = 1
	}
	if page.Page > totalPages {
		page.Page = totalPages
	}

	result := model.TablePage{
		Columns:    columns,
		Page:       page.Page,
		PageSize:   page.PageSize,
		TotalPages: totalPages,
		Total:      total,
	}

	if total == 0 {
		result.Placeholder = emptyTablePlaceholder
		return result
	}

	start := (page.Page - 1) * page.PageSize
	end := start + page.PageSize
	if end > total {
		end = total
	}

	result.StartIndex = start + 1
	result.EndIndex = end
	result.Rows = make([]model.TableRow, 0, end-start)
	for _, record := range filtered[start:end] {
		result.Rows = append(result.Rows, v.row(record, descriptors))
	}

	return result
}

func (v *TableView) row(record *model.Record, descriptors []model.FieldDescriptor) model.TableRow {
	row := model.TableRow{
		RecordID: record.ID,
		Cells:    make([]model.TableCell, 0, len(descriptors)+1),
	}
	row.Cells = append(row.Cells, model.TableCell{Text: strconv.FormatInt(record.ID, 10)})

	for i := range descriptors {
		d := &descriptors[i]
		value := ExtractFieldValue(record, d)

		switch d.Type {
		case types.FieldTypeCalendar:
			if value != "" {
				value = formatDate(value)
			}
			row.Cells = append(row.Cells, model.TableCell{Text: value})
		case types.FieldTypeString, types.FieldTypeTextarea:
			row.Cells = append(row.Cells, truncateCell(value))
		default:
			row.Cells = append(row.Cells, model.TableCell{Text: value})
		}
	}

	return row
}

// truncateCell shortens long display text, keeping the full value for hover
func truncateCell(value string) model.TableCell {
	runes := []rune(value)
	if len(runes) <= cellTruncateRunes {
		return model.TableCell{Text: value}
	}
	return model.TableCell{
		Text:  string(runes[:cellTruncateRunes]) + "…",
		Title: value,
	}
}

func (v *TableView) filter(records []*model.Record, descriptors []model.FieldDescriptor, search model.SearchOptions) []*model.Record {
	if search.Query == "" {
		return records
	}

	match := newMatcher(search)
	var filtered []*model.Record
	for _, record := range records {
		if match(searchText(record, descriptors)) {
			filtered = append(filtered, record)
		}
	}
	return filtered
}

// searchText is the untruncated haystack for one record: id, name and every
// extracted display value.
func searchText(record *model.Record, descriptors []model.FieldDescriptor) string {
	var b strings.Builder
	b.WriteString(strconv.FormatInt(record.ID, 10))
	b.WriteByte(' ')
	b.WriteString(record.Name)
	for i := range descriptors {
		b.WriteByte(' ')
		b.WriteString(ExtractFieldValue(record, &descriptors[i]))
	}
	return b.String()
}

// newMatcher compiles the search options into a predicate. An invalid regex
// silently degrades to substring matching.
func newMatcher(search model.SearchOptions) func(string) bool {
	query := search.Query

	if search.Regex {
		pattern := query
		if !search.CaseSensitive {
			pattern = "(?i)" + pattern
		}
		if re, err := regexp.Compile(pattern); err == nil {
			return re.MatchString
		}
	}

	if search.WholeWord {
		want := query
		if !search.CaseSensitive {
			want = strings.ToLower(want)
		}
		return func(text string) bool {
			for _, word := range strings.Fields(text) {
				if !search.CaseSensitive {
					word = strings.ToLower(word)
				}
				if word == want {
					return true
				}
			}
			return false
		}
	}

	if search.CaseSensitive {
		return func(text string) bool {
			return strings.Contains(text, query)
		}
	}

	lowered := strings.ToLower(query)
	return func(text string) bool {
		return strings.Contains(strings.ToLower(text), lowered)
	}
}
