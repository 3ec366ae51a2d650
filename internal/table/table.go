// Package table implements the view-state engine of a paginated, sortable,
// filterable table over an in-memory row set.
//
// A Table owns the master rows, the active view derived from them
// (sort(filter(master))) and the pagination window over that view. Every
// mutation recomputes what it invalidates, clamps the current page and then
// redraws the Mount synchronously. A Table is not safe for concurrent use.
package table

import (
	"context"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/text/collate"

	applog "github.com/kong/tablectl/internal/log"
)

// Table is the view-state engine.
type Table struct {
	id       string
	cfg      config
	columns  []Column
	colIndex map[string]int
	store    *store
	filter   Predicate
	state    State
	mount    Mount
	bus      bus
	ctrl     *Controller
	collator *collate.Collator
	logger   *slog.Logger

	destroyed bool
}

// New validates its inputs and draws the first page. A nil mount, nil rows
// or an invalid column list fail with a *ConfigurationError.
func New(mount Mount, rows []Row, columns []Column, opts ...Option) (*Table, error) {
	if mount == nil {
		return nil, &ConfigurationError{Field: "mount", Err: ErrNoMount}
	}
	if rows == nil {
		return nil, &ConfigurationError{Field: "rows", Err: ErrNoRows}
	}

	cols := make([]Column, len(columns))
	for i, col := range columns {
		col.Key = strings.TrimSpace(col.Key)
		cols[i] = col
	}
	index, err := validateColumns(cols)
	if err != nil {
		return nil, err
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	logger := cfg.logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	id := uuid.NewString()

	t := &Table{
		id:       id,
		cfg:      cfg,
		columns:  cols,
		colIndex: index,
		store:    newStore(rows),
		state: State{
			RowsPerPage: cfg.rowsPerPage,
			Page:        1,
			Paginate:    cfg.showPagination,
		},
		mount:    mount,
		collator: newCollator(cfg.locale),
		logger:   logger.With(slog.String("table_id", id)),
	}
	t.ctrl = &Controller{table: t}
	t.registerCallbacks()

	if cfg.initialSort != nil && t.canSort(cfg.initialSort.Column) {
		t.state.Sort = *cfg.initialSort
	}
	t.recompute()
	t.state = t.state.clamped(len(t.store.view))
	t.redraw()

	return t, nil
}

func (t *Table) registerCallbacks() {
	if fn := t.cfg.onSort; fn != nil {
		t.bus.subscribe(func(e Event) {
			if e.Kind == EventSortChanged {
				fn(e.Sort.Column, e.Sort.Ascending)
			}
		})
	}
	if fn := t.cfg.onPageChange; fn != nil {
		t.bus.subscribe(func(e Event) {
			if e.Kind == EventPageChanged {
				fn(e.Page, e.TotalPages)
			}
		})
	}
	if fn := t.cfg.onRowClick; fn != nil {
		t.bus.subscribe(func(e Event) {
			if e.Kind == EventRowActivated {
				fn(e.Row, e.RowIndex, e.Raw)
			}
		})
	}
}

// ID returns the instance identifier used in logs.
func (t *Table) ID() string {
	return t.id
}

// Columns returns a copy of the column descriptors.
func (t *Table) Columns() []Column {
	return append([]Column(nil), t.columns...)
}

// Controller returns the interaction controller bound to this table.
func (t *Table) Controller() *Controller {
	return t.ctrl
}

// Subscribe registers l for every subsequent event and returns a function
// that removes it.
func (t *Table) Subscribe(l Listener) (func(), error) {
	if t.destroyed {
		return nil, ErrDestroyed
	}
	return t.bus.subscribe(l), nil
}

// SetData replaces the master rows. The active filter and sort stay
// applied and the page resets to 1.
func (t *Table) SetData(rows []Row) error {
	if t.destroyed {
		return ErrDestroyed
	}
	t.store.replace(rows)
	t.recompute()
	t.resetPage()
	t.trace("data replaced", slog.Int("rows", len(rows)))
	t.redraw()
	return nil
}

// AddRow appends row to the master collection. It joins the active view
// only when it satisfies the active filter; placement follows the
// configured AddRowPlacement. The current page is clamped, not reset.
func (t *Table) AddRow(row Row) error {
	if t.destroyed {
		return ErrDestroyed
	}
	e := t.store.append(row)
	if t.filter == nil || t.filter(e.row) {
		cmp := t.sortComparator()
		if cmp != nil && t.cfg.placement == AddRowSorted {
			t.store.view = insertSorted(t.store.view, e, cmp)
		} else {
			t.store.view = append(t.store.view, e)
		}
	}
	t.clampPage()
	t.redraw()
	return nil
}

// RemoveRows deletes every master row matching pred and returns how many
// were removed.
func (t *Table) RemoveRows(pred Predicate) (int, error) {
	if t.destroyed {
		return 0, ErrDestroyed
	}
	n := t.store.remove(pred)
	if n == 0 {
		return 0, nil
	}
	t.clampPage()
	t.trace("rows removed", slog.Int("removed", n))
	t.redraw()
	return n, nil
}

// Filter replaces the active filter, keeps the current sort and resets the
// page to 1. A nil predicate clears the filter.
func (t *Table) Filter(pred Predicate) error {
	if t.destroyed {
		return ErrDestroyed
	}
	t.filter = pred
	t.recompute()
	t.resetPage()
	t.trace("filter applied", slog.Bool("active", pred != nil), slog.Int("matches", len(t.store.view)))
	t.redraw()
	return nil
}

// ClearFilter removes the active filter.
func (t *Table) ClearFilter() error {
	return t.Filter(nil)
}

// Filtered reports whether a filter predicate is active.
func (t *Table) Filtered() bool {
	return t.filter != nil
}

// Sort orders the active view by column. Unknown or unsortable columns and
// tables with sorting disabled ignore the request.
func (t *Table) Sort(column string, ascending bool) error {
	if t.destroyed {
		return ErrDestroyed
	}
	column = strings.TrimSpace(column)
	if !t.canSort(column) {
		return nil
	}
	t.state.Sort = SortSpec{Column: column, Ascending: ascending}
	t.recompute()
	t.resetPage()
	t.trace("sorted", slog.String("column", column), slog.Bool("ascending", ascending))
	t.redraw()
	t.bus.emit(Event{Kind: EventSortChanged, Sort: t.state.Sort})
	return nil
}

// ToggleSort sorts by column, choosing the direction from the configured
// TogglePolicy.
func (t *Table) ToggleSort(column string) error {
	if t.destroyed {
		return ErrDestroyed
	}
	column = strings.TrimSpace(column)
	if !t.canSort(column) {
		return nil
	}
	current := t.state.Sort
	ascending := true
	switch t.cfg.togglePolicy {
	case ToggleAlternate:
		if current.Active() {
			ascending = !current.Ascending
		}
	default:
		if current.Column == column {
			ascending = !current.Ascending
		}
	}
	return t.Sort(column, ascending)
}

// GoToPage shows page. Out-of-range pages and the current page are no-ops
// and emit nothing.
func (t *Table) GoToPage(page int) error {
	if t.destroyed {
		return ErrDestroyed
	}
	p := t.Pagination()
	if page < 1 || page > p.TotalPages {
		t.logger.Debug("ignoring out of range page", slog.Int("page", page), slog.Int("total_pages", p.TotalPages))
		return nil
	}
	if page == p.Page {
		return nil
	}
	t.state.Page = page
	t.clampPage()
	t.redraw()
	t.bus.emit(Event{Kind: EventPageChanged, Page: page, TotalPages: p.TotalPages})
	return nil
}

// Navigate maps a pagination control onto GoToPage.
func (t *Table) Navigate(action NavAction) error {
	if t.destroyed {
		return ErrDestroyed
	}
	p := t.Pagination()
	switch action {
	case NavFirst:
		return t.GoToPage(1)
	case NavPrev:
		return t.GoToPage(max(1, p.Page-1))
	case NavNext:
		return t.GoToPage(min(p.TotalPages, p.Page+1))
	case NavLast:
		return t.GoToPage(p.TotalPages)
	default:
		t.logger.Debug("ignoring unknown navigation action", slog.Int("action", int(action)))
		return nil
	}
}

// VisibleData returns copies of the rows on the current page.
func (t *Table) VisibleData() ([]Row, error) {
	if t.destroyed {
		return nil, ErrDestroyed
	}
	page := pageEntries(t.store.view, t.state)
	rows := make([]Row, len(page))
	for i, e := range page {
		rows[i] = e.row.Clone()
	}
	return rows, nil
}

// ActiveView returns copies of every row of the active view, in order.
func (t *Table) ActiveView() ([]Row, error) {
	if t.destroyed {
		return nil, ErrDestroyed
	}
	rows := make([]Row, len(t.store.view))
	for i, e := range t.store.view {
		rows[i] = e.row.Clone()
	}
	return rows, nil
}

// MasterLen returns the size of the master collection.
func (t *Table) MasterLen() int {
	if t.destroyed {
		return 0
	}
	return len(t.store.master)
}

// Pagination returns the pagination spec of the active view.
func (t *Table) Pagination() Pagination {
	if t.destroyed {
		return Pagination{Page: 1, TotalPages: 1}
	}
	return t.state.Pagination(len(t.store.view))
}

// SortSpec returns the active sort. A destroyed table reports no sort.
func (t *Table) SortSpec() SortSpec {
	if t.destroyed {
		return SortSpec{}
	}
	return t.state.Sort
}

// Snapshot builds the read-only view handed to the mount.
func (t *Table) Snapshot() (Snapshot, error) {
	if t.destroyed {
		return Snapshot{}, ErrDestroyed
	}
	return t.snapshot(), nil
}

// Redraw draws the current page again without changing any state. Mounts
// call it when their drawing surface changed, for example after a resize.
func (t *Table) Redraw() error {
	if t.destroyed {
		return ErrDestroyed
	}
	t.redraw()
	return nil
}

// Destroy releases rows, listeners and the mount. Every later call returns
// ErrDestroyed.
func (t *Table) Destroy() error {
	if t.destroyed {
		return ErrDestroyed
	}
	// set first so listeners reacting to EventDestroyed see a dead table
	t.destroyed = true
	t.bus.emit(Event{Kind: EventDestroyed})
	if d, ok := t.mount.(Detacher); ok {
		d.Detach()
	}
	t.store.release()
	t.filter = nil
	t.mount = nil
	t.bus.reset()
	t.ctrl.reset()
	t.trace("destroyed")
	return nil
}

func (t *Table) canSort(column string) bool {
	if !t.cfg.allowSorting {
		t.logger.Debug("ignoring sort, sorting is disabled", slog.String("column", column))
		return false
	}
	idx, ok := t.colIndex[column]
	if !ok {
		t.logger.Debug("ignoring sort on unknown column", slog.String("column", column))
		return false
	}
	if !t.columns[idx].Sortable() {
		t.logger.Debug("ignoring sort on unsortable column", slog.String("column", column))
		return false
	}
	return true
}

func (t *Table) sortComparator() func(a, b Row) int {
	spec := t.state.Sort
	if !spec.Active() {
		return nil
	}
	idx, ok := t.colIndex[spec.Column]
	if !ok {
		return nil
	}
	return rowComparator(idx, newComparator(t.columns[idx].Type, t.collator), spec.Ascending)
}

func (t *Table) recompute() {
	t.store.view = deriveView(t.store.master, t.filter, t.sortComparator())
}

func (t *Table) resetPage() {
	t.state.Page = 1
	t.clampPage()
}

// clampPage forces the page into range. An open page edit follows the page
// so its input never names a page that no longer exists.
func (t *Table) clampPage() {
	t.state = t.state.clamped(len(t.store.view))
	if t.ctrl.editing {
		t.ctrl.buffer = strconv.Itoa(t.state.Page)
	}
}

func (t *Table) snapshot() Snapshot {
	p := t.Pagination()
	start, _ := t.state.window(len(t.store.view))
	page := pageEntries(t.store.view, t.state)

	cols := make([]ColumnView, len(t.columns))
	for i, col := range t.columns {
		dir := SortNone
		if t.state.Sort.Column == col.Key {
			dir = SortDescending
			if t.state.Sort.Ascending {
				dir = SortAscending
			}
		}
		cols[i] = ColumnView{
			Key:        col.Key,
			Label:      col.Title(),
			Type:       col.Type.String(),
			Sortable:   t.cfg.allowSorting && col.Sortable(),
			AlignRight: col.AlignRight(),
			Width:      col.Width,
			Direction:  dir,
		}
	}

	rows := make([]Row, len(page))
	cells := make([][]string, len(page))
	for i, e := range page {
		rows[i] = e.row.Clone()
		formatted := make([]string, len(t.columns))
		for j, col := range t.columns {
			formatted[j] = col.Format(e.row, j)
		}
		cells[i] = formatted
	}

	return Snapshot{
		TableID:    t.id,
		Columns:    cols,
		Rows:       rows,
		Cells:      cells,
		FirstIndex: start,
		Sort:       t.state.Sort,
		Pagination: p,
		Nav: NavState{
			First: p.Page > 1,
			Prev:  p.Page > 1,
			Next:  p.Page < p.TotalPages,
			Last:  p.Page < p.TotalPages,
		},
		ShowPagination: t.cfg.showPagination,
		AllowSorting:   t.cfg.allowSorting,
		Filtered:       t.filter != nil,
		EditingPage:    t.ctrl.editing,
		EditBuffer:     t.ctrl.buffer,
		ClassPrefix:    t.cfg.classPrefix,
		EmptyMessage:   t.cfg.emptyMessage,
	}
}

// redraw hands a fresh snapshot to the mount and rebinds the controller to
// whatever was drawn.
func (t *Table) redraw() {
	layout := t.mount.Draw(t.snapshot())
	t.ctrl.Rebind(layout)
	t.bus.emit(Event{Kind: EventRedraw})
}

func (t *Table) trace(msg string, attrs ...slog.Attr) {
	t.logger.LogAttrs(context.Background(), applog.LevelTrace, msg, attrs...)
}
