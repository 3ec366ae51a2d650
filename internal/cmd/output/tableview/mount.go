package tableview

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	tablepkg "github.com/kong/tablectl/internal/table"
	"github.com/kong/tablectl/internal/theme"
)

// Mount draws table snapshots into a bordered bubbles table with a
// pagination bar underneath. It reports the screen regions of the headers,
// the visible rows and the live pagination controls.
type Mount struct {
	grid        table.Model
	palette     theme.Palette
	styles      table.Styles
	box         lipgloss.Style
	bar         barStyles
	interactive bool
	title       string

	width    int
	height   int
	reserved int

	snapshot tablepkg.Snapshot
	widths   []int
	editView string
	layout   tablepkg.Layout
	drawn    bool
	detached bool
}

// MountOptions configure a Mount.
type MountOptions struct {
	Palette     theme.Palette
	Interactive bool
	Title       string
	Width       int
	Height      int
	// Reserved is the number of terminal lines kept free below the
	// pagination bar, for example for a status area.
	Reserved int
}

// NewMount creates a Mount. Pass it to table.New to draw the first page.
func NewMount(opts MountOptions) *Mount {
	m := &Mount{
		palette:     opts.Palette,
		interactive: opts.Interactive,
		title:       strings.TrimSpace(opts.Title),
		width:       opts.Width,
		height:      opts.Height,
		reserved:    opts.Reserved,
	}
	m.styles = newTableStyles(opts.Palette, opts.Interactive)
	m.box = newTableBoxStyle(opts.Palette)
	m.bar = newBarStyles(opts.Palette)
	m.grid = table.New(
		table.WithStyles(m.styles),
		table.WithKeyMap(gridKeyMap()),
		table.WithFocused(opts.Interactive),
	)
	return m
}

// gridKeyMap leaves only row movement to the grid. Paging belongs to the
// table engine.
func gridKeyMap() table.KeyMap {
	none := key.NewBinding(key.WithDisabled())
	return table.KeyMap{
		LineUp: key.NewBinding(
			key.WithKeys("up", "k", "ctrl+p"),
			key.WithHelp("↑/k", "up"),
		),
		LineDown: key.NewBinding(
			key.WithKeys("down", "j", "ctrl+n"),
			key.WithHelp("↓/j", "down"),
		),
		PageUp:       none,
		PageDown:     none,
		HalfPageUp:   none,
		HalfPageDown: none,
		GotoTop:      none,
		GotoBottom:   none,
	}
}

// Draw implements table.Mount.
func (m *Mount) Draw(s tablepkg.Snapshot) tablepkg.Layout {
	pageChanged := !m.drawn ||
		s.Pagination.Page != m.snapshot.Pagination.Page ||
		s.FirstIndex != m.snapshot.FirstIndex
	m.snapshot = s
	m.drawn = true
	if m.detached {
		return tablepkg.Layout{}
	}

	headers := make([]string, len(s.Columns))
	hints := make([]int, len(s.Columns))
	for i, col := range s.Columns {
		headers[i] = headerTitle(col)
		hints[i] = col.Width
	}
	cells := displayCells(s)

	limit := 0
	if m.width > 0 {
		frame, _ := m.box.GetFrameSize()
		limit = m.width - frame - cellPadding*len(headers)
	}
	m.widths, _ = calculateColumnWidths(headers, cells, limit, hints)
	alignCells(s.Columns, cells, m.widths)

	columns := make([]table.Column, len(headers))
	for i, h := range headers {
		columns[i] = table.Column{Title: h, Width: m.widths[i]}
	}
	rows := make([]table.Row, len(cells))
	for i, c := range cells {
		rows[i] = c
	}

	m.grid.SetRows(nil)
	m.grid.SetColumns(columns)
	m.grid.SetRows(rows)
	m.grid.SetWidth(sum(m.widths) + cellPadding*len(m.widths))
	if len(rows) == 0 {
		m.grid.SetHeight(2)
	} else {
		setTableHeight(&m.grid, len(rows), m.height, m.interactive, m.chromeHeight())
	}
	if pageChanged || m.grid.Cursor() >= len(rows) {
		m.grid.SetCursor(0)
	}

	m.layout = m.computeLayout()
	return m.layout
}

// Detach implements table.Detacher.
func (m *Mount) Detach() {
	m.detached = true
	m.grid.SetRows(nil)
	m.layout = tablepkg.Layout{}
}

// Layout returns the regions of the last drawing.
func (m *Mount) Layout() tablepkg.Layout {
	return m.layout
}

// Snapshot returns the last drawn snapshot.
func (m *Mount) Snapshot() tablepkg.Snapshot {
	return m.snapshot
}

// Resize records the terminal size used by the next Draw.
func (m *Mount) Resize(width, height int) {
	m.width, m.height = width, height
}

// SetReserved records the lines kept free below the pagination bar.
func (m *Mount) SetReserved(lines int) {
	m.reserved = max(lines, 0)
}

// SetPalette restyles the mount for the next Draw.
func (m *Mount) SetPalette(p theme.Palette) {
	m.palette = p
	m.styles = newTableStyles(p, m.interactive)
	m.box = newTableBoxStyle(p)
	m.bar = newBarStyles(p)
	m.grid.SetStyles(m.styles)
}

// SetEditView sets the rendered page input shown while the page indicator
// is being edited.
func (m *Mount) SetEditView(view string) {
	m.editView = view
}

// Cursor returns the page relative index of the highlighted row.
func (m *Mount) Cursor() int {
	return m.grid.Cursor()
}

// SetCursor highlights the row at the page relative index.
func (m *Mount) SetCursor(index int) {
	if index >= 0 && index < len(m.snapshot.Rows) {
		m.grid.SetCursor(index)
	}
}

// MoveCursor moves the highlight by delta rows within the page.
func (m *Mount) MoveCursor(delta int) {
	switch {
	case delta < 0:
		m.grid.MoveUp(-delta)
	case delta > 0:
		m.grid.MoveDown(delta)
	}
}

// Update forwards cursor movement to the grid.
func (m *Mount) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	m.grid, cmd = m.grid.Update(msg)
	return cmd
}

// titleHeight is the number of lines drawn above the box.
func (m *Mount) titleHeight() int {
	if m.title == "" {
		return 0
	}
	return lipgloss.Height(m.title)
}

// chromeHeight is everything but the grid: title, box borders, pagination
// bar and the reserved lines.
func (m *Mount) chromeHeight() int {
	_, frame := m.box.GetFrameSize()
	h := m.titleHeight() + frame + m.reserved
	if m.snapshot.ShowPagination {
		h++
	}
	return h
}

func (m *Mount) computeLayout() tablepkg.Layout {
	s := m.snapshot
	var regions []tablepkg.Region

	top := m.titleHeight() + 1
	x := boxInset
	for i, col := range s.Columns {
		w := m.widths[i] + cellPadding
		if col.Sortable {
			regions = append(regions, tablepkg.Region{
				Kind:   tablepkg.RegionHeader,
				X:      x,
				Y:      top,
				Width:  w,
				Column: col.Key,
			})
		}
		x += w
	}

	// Rows are only addressable when the grid shows the whole page.
	if visible := m.grid.Height(); visible >= len(s.Rows) {
		width := sum(m.widths) + cellPadding*len(m.widths)
		for i := range s.Rows {
			regions = append(regions, tablepkg.Region{
				Kind:  tablepkg.RegionRow,
				X:     boxInset,
				Y:     top + 1 + i,
				Width: width,
				Row:   i,
			})
		}
	}

	if s.ShowPagination {
		barY := top + 1 + m.grid.Height() + 1
		regions = append(regions, placeSegments(paginationSegments(s, m.editView), barY)...)
	}
	return tablepkg.Layout{Regions: regions}
}

// View renders the title, the boxed grid and the pagination bar.
func (m *Mount) View() string {
	var sections []string
	if m.title != "" {
		sections = append(sections, m.title)
	}

	content := m.grid.View()
	if m.snapshot.Empty() {
		lines := strings.Split(content, "\n")
		msg := m.bar.empty.Render(m.snapshot.EmptyMessage)
		lines[len(lines)-1] = padStatusLine(" "+msg, lipgloss.Width(lines[0]))
		content = strings.Join(lines, "\n")
	}
	if m.interactive {
		content = NormalizeSelectedRow(content, m.styles.Selected)
	}
	sections = append(sections, m.box.Render(content))

	if m.snapshot.ShowPagination {
		sections = append(sections, m.renderBar())
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m *Mount) renderBar() string {
	segments := paginationSegments(m.snapshot, m.editView)
	parts := make([]string, len(segments))
	for i, seg := range segments {
		switch {
		case seg.editing:
			parts[i] = m.bar.editing.Render(seg.text)
		case seg.disabled:
			parts[i] = m.bar.disabled.Render(seg.text)
		case seg.region != nil && seg.region.Kind == tablepkg.RegionPageIndicator:
			parts[i] = m.bar.indicator.Render(seg.text)
		default:
			parts[i] = m.bar.control.Render(seg.text)
		}
	}
	return barIndent + strings.Join(parts, barGap)
}

// setTableHeight sizes the grid to its rows, bounded by the terminal when
// interactive.
func setTableHeight(tbl *table.Model, rowCount, termHeight int, interactive bool, reservedHeight int) {
	if tbl == nil {
		return
	}
	if !interactive {
		tbl.SetHeight(rowCount + 1) // include header
		return
	}

	const minHeight = 3

	target := rowCount + 1
	if termHeight > 0 {
		available := max(termHeight-reservedHeight, minHeight)
		target = clamp(target, minHeight, available)
	}
	tbl.SetHeight(target)
}
