package model

// PageSizes are the selectable page sizes for table views
var PageSizes = []int{10, 25, 50, 100}

// DefaultPageSize is used when no page size has been chosen
const DefaultPageSize = 25

// PageState is 1-indexed pagination state for a table view
type PageState struct {
	Page     int `json:"page"`
	PageSize int `json:"pageSize"`
}

// Normalize clamps the state to sane values: a known page size and a page
// of at least 1. Page upper-bound clamping depends on the row count and is
// done by the table view.
func (p PageState) Normalize() PageState {
	valid := false
	for _, size := range PageSizes {
		if p.PageSize == size {
			valid = true
			break
		}
	}
	if !valid {
		p.PageSize = DefaultPageSize
	}
	if p.Page < 1 {
		p.Page = 1
	}
	return p
}

// SearchOptions control table filtering. Zero value means no filter.
type SearchOptions struct {
	Query         string `json:"query"`
	CaseSensitive bool   `json:"caseSensitive"`
	WholeWord     bool   `json:"wholeWord"`
	Regex         bool   `json:"regex"`
}

// TableCell is one rendered cell. Title carries the untruncated value when
// the display text was shortened.
type TableCell struct {
	Text  string `json:"text"`
	Title string `json:"title,omitempty"`
}

// TableRow is one rendered record row
type TableRow struct {
	RecordID int64       `json:"recordId"`
	Cells    []TableCell `json:"cells"`
}

// TablePage is the fully computed, display-ready page of a table view. It
// is a pure function of (records, descriptors, page state, search), so
// rendering the same inputs twice yields identical pages.
type TablePage struct {
	Columns     []string   `json:"columns"`
	Rows        []TableRow `json:"rows"`
	Placeholder string     `json:"placeholder,omitempty"`
	Page        int        `json:"page"`
	PageSize    int        `json:"pageSize"`
	TotalPages  int        `json:"totalPages"`
	Total       int        `json:"total"`
	StartIndex  int        `json:"startIndex"` // 1-indexed, 0 when empty
	EndIndex    int        `json:"endIndex"`
}
