package table

// Mount is the presentation adapter a table draws into. Draw runs
// synchronously after every state change and returns the hit regions of
// what it drew, which the controller rebinds to.
type Mount interface {
	Draw(Snapshot) Layout
}

// Detacher is implemented by mounts that hold resources to release when the
// table is destroyed.
type Detacher interface {
	Detach()
}

// MountFunc adapts a function into a Mount.
type MountFunc func(Snapshot) Layout

func (f MountFunc) Draw(s Snapshot) Layout {
	return f(s)
}

// SortDirection is the sort state of a single column as shown to adapters.
type SortDirection int

const (
	SortNone SortDirection = iota
	SortAscending
	SortDescending
)

// ColumnView is the read-only column metadata handed to adapters.
type ColumnView struct {
	Key        string        `json:"key" yaml:"key"`
	Label      string        `json:"label" yaml:"label"`
	Type       string        `json:"type" yaml:"type"`
	Sortable   bool          `json:"sortable" yaml:"sortable"`
	AlignRight bool          `json:"alignRight,omitempty" yaml:"alignRight,omitempty"`
	Width      int           `json:"width,omitempty" yaml:"width,omitempty"`
	Direction  SortDirection `json:"-" yaml:"-"`
}

// NavState reports which pagination controls are live.
type NavState struct {
	First bool
	Prev  bool
	Next  bool
	Last  bool
}

// Enabled reports whether the control for action is live.
func (n NavState) Enabled(action NavAction) bool {
	switch action {
	case NavFirst:
		return n.First
	case NavPrev:
		return n.Prev
	case NavNext:
		return n.Next
	case NavLast:
		return n.Last
	default:
		return false
	}
}

// Snapshot is everything an adapter needs to draw the current page. Rows
// are copies; mutating them does not affect the table.
type Snapshot struct {
	TableID    string
	Columns    []ColumnView
	Rows       []Row
	Cells      [][]string
	FirstIndex int
	Sort       SortSpec
	Pagination Pagination
	Nav        NavState

	ShowPagination bool
	AllowSorting   bool
	Filtered       bool
	EditingPage    bool
	EditBuffer     string

	ClassPrefix  string
	EmptyMessage string
}

// Empty reports whether the visible page has no rows.
func (s Snapshot) Empty() bool {
	return len(s.Rows) == 0
}
