package table

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
)

// NavAction names a pagination control.
type NavAction int

const (
	NavFirst NavAction = iota
	NavPrev
	NavNext
	NavLast
)

func (a NavAction) String() string {
	switch a {
	case NavFirst:
		return "first"
	case NavPrev:
		return "prev"
	case NavNext:
		return "next"
	case NavLast:
		return "last"
	default:
		return fmt.Sprintf("unknown(%d)", int(a))
	}
}

// ParseNavAction converts a control name into a NavAction.
func ParseNavAction(s string) (NavAction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "first":
		return NavFirst, nil
	case "prev", "previous":
		return NavPrev, nil
	case "next":
		return NavNext, nil
	case "last":
		return NavLast, nil
	default:
		return NavFirst, fmt.Errorf("invalid navigation action %q", s)
	}
}

// RegionKind classifies an interactive region drawn by an adapter.
type RegionKind int

const (
	RegionHeader RegionKind = iota
	RegionNav
	RegionPageIndicator
	RegionRow
)

// Region is a rectangle the adapter drew that reacts to clicks.
type Region struct {
	Kind   RegionKind
	X, Y   int
	Width  int
	Height int

	// Column is set for RegionHeader.
	Column string
	// Action is set for RegionNav.
	Action NavAction
	// Row is the page-relative row index for RegionRow.
	Row int
}

// Contains reports whether the point lies inside the region.
func (r Region) Contains(x, y int) bool {
	h := max(r.Height, 1)
	return x >= r.X && x < r.X+r.Width && y >= r.Y && y < r.Y+h
}

// Layout lists the interactive regions of a drawn page.
type Layout struct {
	Regions []Region
}

// Controller turns gestures into table operations. Its hit regions are
// replaced after every redraw since the drawn elements may have moved.
type Controller struct {
	table   *Table
	regions []Region
	editing bool
	buffer  string
}

// Rebind replaces the hit regions with those of the latest drawing.
func (c *Controller) Rebind(layout Layout) {
	c.regions = append(c.regions[:0], layout.Regions...)
}

// Regions returns the currently bound hit regions.
func (c *Controller) Regions() []Region {
	return append([]Region(nil), c.regions...)
}

// Editing reports whether the page indicator is in edit mode.
func (c *Controller) Editing() bool {
	return c.editing
}

// ClickHeader handles a click on a column header.
func (c *Controller) ClickHeader(column string) error {
	return c.table.ToggleSort(column)
}

// NavEnabled reports whether the control for action is live. Controls at
// their bound, or hidden with pagination off, are disabled.
func (c *Controller) NavEnabled(action NavAction) bool {
	t := c.table
	if t.destroyed || !t.cfg.showPagination {
		return false
	}
	p := t.Pagination()
	switch action {
	case NavFirst, NavPrev:
		return p.Page > 1
	case NavNext, NavLast:
		return p.Page < p.TotalPages
	default:
		return false
	}
}

// ClickNav handles a click on a pagination control.
func (c *Controller) ClickNav(action NavAction) error {
	if c.table.destroyed {
		return ErrDestroyed
	}
	if !c.NavEnabled(action) {
		return nil
	}
	return c.table.Navigate(action)
}

// ClickPageIndicator enters page edit mode.
func (c *Controller) ClickPageIndicator() error {
	return c.BeginPageEdit()
}

// BeginPageEdit swaps the static page indicator for an input seeded with the
// current page.
func (c *Controller) BeginPageEdit() error {
	t := c.table
	if t.destroyed {
		return ErrDestroyed
	}
	if !t.cfg.showPagination || c.editing {
		return nil
	}
	c.editing = true
	c.buffer = strconv.Itoa(t.Pagination().Page)
	t.redraw()
	return nil
}

// ConfirmPageEdit leaves edit mode and moves to input when it is an
// in-range integer other than the current page. Anything else is ignored.
func (c *Controller) ConfirmPageEdit(input string) error {
	t := c.table
	if t.destroyed {
		return ErrDestroyed
	}
	if !c.editing {
		return nil
	}
	c.editing = false
	c.buffer = ""

	page, err := strconv.Atoi(strings.TrimSpace(input))
	p := t.Pagination()
	if err != nil || page < 1 || page > p.TotalPages || page == p.Page {
		t.logger.Debug("discarding page edit", slog.String("input", input))
		t.redraw()
		return nil
	}
	if err := t.GoToPage(page); err != nil {
		return err
	}
	return nil
}

// CancelPageEdit leaves edit mode without side effects.
func (c *Controller) CancelPageEdit() error {
	t := c.table
	if t.destroyed {
		return ErrDestroyed
	}
	if !c.editing {
		return nil
	}
	c.editing = false
	c.buffer = ""
	t.redraw()
	return nil
}

// ClickRow activates the row at pageIndex on the current page. Listeners
// receive the row's index within the active view.
func (c *Controller) ClickRow(pageIndex int, raw any) error {
	t := c.table
	if t.destroyed {
		return ErrDestroyed
	}
	start, end := t.state.window(len(t.store.view))
	index := start + pageIndex
	if pageIndex < 0 || index >= end {
		t.logger.Debug("ignoring click outside page", slog.Int("row", pageIndex))
		return nil
	}
	t.bus.emit(Event{
		Kind:     EventRowActivated,
		Row:      t.store.view[index].row.Clone(),
		RowIndex: index,
		Raw:      raw,
	})
	return nil
}

// Click hit-tests the bound regions and dispatches the matching gesture.
// It reports whether a region was hit.
func (c *Controller) Click(x, y int, raw any) (bool, error) {
	if c.table.destroyed {
		return false, ErrDestroyed
	}
	for _, r := range c.regions {
		if !r.Contains(x, y) {
			continue
		}
		switch r.Kind {
		case RegionHeader:
			return true, c.ClickHeader(r.Column)
		case RegionNav:
			return true, c.ClickNav(r.Action)
		case RegionPageIndicator:
			return true, c.ClickPageIndicator()
		case RegionRow:
			return true, c.ClickRow(r.Row, raw)
		}
	}
	return false, nil
}

func (c *Controller) reset() {
	c.regions = nil
	c.editing = false
	c.buffer = ""
}
