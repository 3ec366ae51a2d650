package table

import "sort"

// SortSpec names the active sort column. An empty Column means rows keep
// their insertion order.
type SortSpec struct {
	Column    string `json:"column,omitempty" yaml:"column,omitempty"`
	Ascending bool   `json:"ascending" yaml:"ascending"`
}

// Active reports whether a sort column is set.
func (s SortSpec) Active() bool {
	return s.Column != ""
}

// Pagination describes the visible window of the active view.
type Pagination struct {
	Page        int `json:"page" yaml:"page"`
	TotalPages  int `json:"totalPages" yaml:"totalPages"`
	RowsPerPage int `json:"rowsPerPage" yaml:"rowsPerPage"`
	TotalRows   int `json:"totalRows" yaml:"totalRows"`
}

// State is the mutable view state of a table. It is owned by exactly one
// Table and only changed through its methods; the helpers below are pure.
type State struct {
	Sort        SortSpec
	RowsPerPage int
	Page        int
	Paginate    bool
}

// TotalPages returns max(1, ceil(n/rowsPerPage)).
func TotalPages(n, rowsPerPage int) int {
	if rowsPerPage <= 0 || n <= 0 {
		return 1
	}
	return max(1, (n+rowsPerPage-1)/rowsPerPage)
}

// ClampPage forces page into [1, totalPages].
func ClampPage(page, totalPages int) int {
	if totalPages < 1 {
		totalPages = 1
	}
	if page < 1 {
		return 1
	}
	if page > totalPages {
		return totalPages
	}
	return page
}

// PageWindow returns the half-open range [start, end) of the active view
// shown on page.
func PageWindow(page, rowsPerPage, n int) (int, int) {
	if n <= 0 {
		return 0, 0
	}
	if rowsPerPage <= 0 {
		return 0, n
	}
	start := (page - 1) * rowsPerPage
	if start < 0 {
		start = 0
	}
	if start > n {
		start = n
	}
	end := min(start+rowsPerPage, n)
	return start, end
}

// effectiveRowsPerPage collapses the view into one page when pagination is
// switched off.
func (s State) effectiveRowsPerPage(n int) int {
	if !s.Paginate {
		return max(n, 1)
	}
	return s.RowsPerPage
}

// Pagination derives the pagination spec for a view of n rows. RowsPerPage
// is the configured value even when pagination is off.
func (s State) Pagination(n int) Pagination {
	total := TotalPages(n, s.effectiveRowsPerPage(n))
	return Pagination{
		Page:        ClampPage(s.Page, total),
		TotalPages:  total,
		RowsPerPage: s.RowsPerPage,
		TotalRows:   n,
	}
}

// window returns the [start, end) range of the current page in a view of n
// rows.
func (s State) window(n int) (int, int) {
	p := s.Pagination(n)
	return PageWindow(p.Page, s.effectiveRowsPerPage(n), n)
}

// clamped returns s with Page forced into range for a view of n rows.
func (s State) clamped(n int) State {
	s.Page = s.Pagination(n).Page
	return s
}

// deriveView computes sort(filter(master)). The sort is stable over
// insertion order, so equal keys keep their relative order in either
// direction.
func deriveView(master []entry, pred Predicate, less func(a, b Row) int) []entry {
	view := make([]entry, 0, len(master))
	for _, e := range master {
		if pred == nil || pred(e.row) {
			view = append(view, e)
		}
	}
	if less != nil {
		sort.SliceStable(view, func(i, j int) bool {
			return less(view[i].row, view[j].row) < 0
		})
	}
	return view
}

// insertSorted places e after every element that does not compare greater,
// which is where a stable sort of master would put a newly appended row.
func insertSorted(view []entry, e entry, cmp func(a, b Row) int) []entry {
	idx := sort.Search(len(view), func(i int) bool {
		return cmp(view[i].row, e.row) > 0
	})
	view = append(view, entry{})
	copy(view[idx+1:], view[idx:])
	view[idx] = e
	return view
}

// pageEntries slices the current page out of view.
func pageEntries(view []entry, s State) []entry {
	start, end := s.window(len(view))
	return view[start:end]
}
