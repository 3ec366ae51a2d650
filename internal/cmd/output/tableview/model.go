package tableview

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"unicode"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/kong/tablectl/internal/predicate"
	tablepkg "github.com/kong/tablectl/internal/table"
	"github.com/kong/tablectl/internal/theme"
)

var writeClipboardText = clipboard.WriteAll

const (
	// statusRows is the number of lines inside the status box.
	statusRows     = 2
	minDetailWidth = 24
	maxDetailWidth = 60
	pageInputLimit = 6
)

type bubbleModel struct {
	tbl     *tablepkg.Table
	mount   *Mount
	columns []tablepkg.Column
	keys    keyMap
	help    help.Model
	logger  *slog.Logger

	pageInput   textinput.Model
	filterInput textinput.Model
	filtering   bool
	baseFilter  tablepkg.Predicate
	query       string
	activeKey   string

	detail     viewport.Model
	detailOpen bool
	detailRow  tablepkg.Row

	palette     theme.Palette
	detailStyle lipgloss.Style
	statusStyle lipgloss.Style

	footer        string
	statusMessage string
	showHelp      bool
	useAltScreen  bool
	windowWidth   int
	windowHeight  int

	unsubscribe func()
}

func newBubbleModel(
	tbl *tablepkg.Table,
	mount *Mount,
	columns []tablepkg.Column,
	cfg config,
	palette theme.Palette,
	initialWidth,
	initialHeight int,
) *bubbleModel {
	pageInput := textinput.New()
	pageInput.Prompt = ""
	pageInput.CharLimit = pageInputLimit

	filterInput := textinput.New()
	filterInput.Prompt = "/"
	filterInput.Placeholder = "filter rows"
	filterInput.CharLimit = 256

	detail := viewport.New(minDetailWidth, 1)
	detail.KeyMap = viewport.KeyMap{
		HalfPageUp:   key.NewBinding(key.WithKeys("ctrl+u")),
		HalfPageDown: key.NewBinding(key.WithKeys("ctrl+d")),
	}

	logger := cfg.logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	m := &bubbleModel{
		tbl:          tbl,
		mount:        mount,
		columns:      append([]tablepkg.Column(nil), columns...),
		keys:         defaultKeyMap(),
		help:         help.New(),
		logger:       logger.With(slog.String("table_id", tbl.ID())),
		pageInput:    pageInput,
		filterInput:  filterInput,
		baseFilter:   cfg.filter,
		detail:       detail,
		palette:      palette,
		detailStyle:  newDetailBoxStyle(palette),
		statusStyle:  newStatusBoxStyle(palette),
		footer:       cfg.footer,
		useAltScreen: true,
		windowWidth:  initialWidth,
		windowHeight: initialHeight,
	}
	m.activeKey = tbl.SortSpec().Column
	if m.activeKey == "" {
		if keys := m.sortableKeys(); len(keys) > 0 {
			m.activeKey = keys[0]
		}
	}

	unsubscribe, err := tbl.Subscribe(m.onEvent)
	if err == nil {
		m.unsubscribe = unsubscribe
	}
	m.relayout()
	return m
}

func (m *bubbleModel) Init() tea.Cmd {
	return nil
}

// close detaches the model from the table.
func (m *bubbleModel) close() {
	if m.unsubscribe != nil {
		m.unsubscribe()
		m.unsubscribe = nil
	}
}

func (m *bubbleModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) { //nolint:ireturn
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.windowWidth = msg.Width
		m.windowHeight = msg.Height
		m.help.Width = msg.Width
		m.relayout()
		return m, nil
	case tea.MouseMsg:
		return m, m.handleMouse(msg)
	case tea.KeyMsg:
		switch {
		case m.tbl.Controller().Editing():
			return m.handlePageEditKey(msg)
		case m.filtering:
			return m.handleFilterKey(msg)
		default:
			return m.handleKey(msg)
		}
	}

	// cursor blinks and other input housekeeping
	var cmd tea.Cmd
	switch {
	case m.tbl.Controller().Editing():
		m.pageInput, cmd = m.pageInput.Update(msg)
		m.refreshEditView()
	case m.filtering:
		m.filterInput, cmd = m.filterInput.Update(msg)
	}
	return m, cmd
}

func (m *bubbleModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	ctrl := m.tbl.Controller()
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m.quit()
	case key.Matches(msg, m.keys.AltScreen):
		m.useAltScreen = !m.useAltScreen
		if m.useAltScreen {
			return m, tea.EnterAltScreen
		}
		return m, tea.ExitAltScreen
	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
		m.help.ShowAll = m.showHelp
		m.relayout()
	case key.Matches(msg, m.keys.Back):
		switch {
		case m.detailOpen:
			m.closeDetail()
		case m.query != "":
			m.applyQuery("")
			m.setStatus("Filter cleared")
		default:
			return m.quit()
		}
	case key.Matches(msg, m.keys.Theme):
		m.cycleTheme()
	case key.Matches(msg, m.keys.PrevPage):
		m.check(ctrl.ClickNav(tablepkg.NavPrev))
	case key.Matches(msg, m.keys.NextPage):
		m.check(ctrl.ClickNav(tablepkg.NavNext))
	case key.Matches(msg, m.keys.FirstPage):
		m.check(ctrl.ClickNav(tablepkg.NavFirst))
	case key.Matches(msg, m.keys.LastPage):
		m.check(ctrl.ClickNav(tablepkg.NavLast))
	case key.Matches(msg, m.keys.NextColumn):
		m.moveColumn(1)
	case key.Matches(msg, m.keys.PrevColumn):
		m.moveColumn(-1)
	case key.Matches(msg, m.keys.Sort):
		if m.activeKey == "" {
			m.setStatus("No sortable columns")
			break
		}
		m.check(ctrl.ClickHeader(m.activeKey))
	case key.Matches(msg, m.keys.EditPage):
		return m, m.beginPageEdit()
	case key.Matches(msg, m.keys.Filter):
		return m, m.beginFilter()
	case key.Matches(msg, m.keys.Open):
		if m.mount.Snapshot().Empty() {
			break
		}
		m.check(ctrl.ClickRow(m.mount.Cursor(), msg))
	case key.Matches(msg, m.keys.Copy):
		m.copyRow()
	default:
		var cmds []tea.Cmd
		cmds = append(cmds, m.mount.Update(msg))
		if m.detailOpen {
			var cmd tea.Cmd
			m.detail, cmd = m.detail.Update(msg)
			cmds = append(cmds, cmd)
			m.syncDetail()
		}
		return m, tea.Batch(cmds...)
	}
	return m, nil
}

func (m *bubbleModel) quit() (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	if m.useAltScreen {
		cmds = append(cmds, tea.ExitAltScreen)
		m.useAltScreen = false
	}
	cmds = append(cmds, tea.Quit)
	return m, tea.Batch(cmds...)
}

// beginPageEdit swaps the page indicator for an input seeded with the
// current page.
func (m *bubbleModel) beginPageEdit() tea.Cmd {
	if m.tbl.Controller().Editing() || !m.mount.Snapshot().ShowPagination {
		return nil
	}
	m.pageInput.SetValue(strconv.Itoa(m.tbl.Pagination().Page))
	m.pageInput.CursorEnd()
	cmd := m.pageInput.Focus()
	m.mount.SetEditView(m.pageInput.View())
	m.check(m.tbl.Controller().BeginPageEdit())
	return cmd
}

func (m *bubbleModel) handlePageEditKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		return m.quit()
	case tea.KeyEnter:
		m.finishPageEdit(true)
		return m, nil
	case tea.KeyEsc:
		m.finishPageEdit(false)
		return m, nil
	case tea.KeyRunes:
		for _, r := range msg.Runes {
			if !unicode.IsDigit(r) {
				return m, nil
			}
		}
	}
	var cmd tea.Cmd
	m.pageInput, cmd = m.pageInput.Update(msg)
	m.refreshEditView()
	return m, cmd
}

func (m *bubbleModel) refreshEditView() {
	m.mount.SetEditView(m.pageInput.View())
	m.check(m.tbl.Redraw())
}

// finishPageEdit leaves page edit mode, moving to the typed page when
// confirm is set.
func (m *bubbleModel) finishPageEdit(confirm bool) {
	ctrl := m.tbl.Controller()
	value := m.pageInput.Value()
	m.pageInput.Blur()
	m.mount.SetEditView("")
	if confirm {
		m.check(ctrl.ConfirmPageEdit(value))
		return
	}
	m.check(ctrl.CancelPageEdit())
}

func (m *bubbleModel) beginFilter() tea.Cmd {
	m.filtering = true
	m.filterInput.SetValue(m.query)
	m.filterInput.CursorEnd()
	return m.filterInput.Focus()
}

func (m *bubbleModel) handleFilterKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		return m.quit()
	case tea.KeyEnter:
		m.filtering = false
		m.filterInput.Blur()
		return m, nil
	case tea.KeyEsc:
		m.filtering = false
		m.filterInput.Blur()
		m.applyQuery("")
		return m, nil
	}
	var cmd tea.Cmd
	m.filterInput, cmd = m.filterInput.Update(msg)
	if value := m.filterInput.Value(); value != m.query {
		m.applyQuery(value)
	}
	return m, cmd
}

// applyQuery narrows the rows to those containing query, on top of the
// filter expression the view was started with.
func (m *bubbleModel) applyQuery(query string) {
	m.query = query
	text := predicate.Text(query, m.columns)
	base := m.baseFilter

	var err error
	switch {
	case text == nil && base == nil:
		err = m.tbl.ClearFilter()
	case text == nil:
		err = m.tbl.Filter(base)
	case base == nil:
		err = m.tbl.Filter(text)
	default:
		err = m.tbl.Filter(func(row tablepkg.Row) bool {
			return base(row) && text(row)
		})
	}
	m.check(err)
	m.syncDetail()
}

func (m *bubbleModel) handleMouse(msg tea.MouseMsg) tea.Cmd {
	switch msg.Button {
	case tea.MouseButtonWheelUp:
		m.mount.MoveCursor(-1)
		m.syncDetail()
		return nil
	case tea.MouseButtonWheelDown:
		m.mount.MoveCursor(1)
		m.syncDetail()
		return nil
	case tea.MouseButtonLeft:
	default:
		return nil
	}
	if msg.Action != tea.MouseActionPress {
		return nil
	}

	ctrl := m.tbl.Controller()
	region, hit := m.regionAt(msg.X, msg.Y)
	if ctrl.Editing() {
		// clicking anywhere but the input commits the edit
		if !hit || region.Kind != tablepkg.RegionPageIndicator {
			m.finishPageEdit(true)
		}
		return nil
	}
	if hit && region.Kind == tablepkg.RegionPageIndicator {
		return m.beginPageEdit()
	}
	if hit && region.Kind == tablepkg.RegionHeader {
		m.activeKey = region.Column
	}
	_, err := ctrl.Click(msg.X, msg.Y, msg)
	m.check(err)
	return nil
}

func (m *bubbleModel) regionAt(x, y int) (tablepkg.Region, bool) {
	for _, r := range m.tbl.Controller().Regions() {
		if r.Contains(x, y) {
			return r, true
		}
	}
	return tablepkg.Region{}, false
}

func (m *bubbleModel) onEvent(e tablepkg.Event) {
	switch e.Kind {
	case tablepkg.EventRowActivated:
		m.mount.SetCursor(e.RowIndex - m.mount.Snapshot().FirstIndex)
		m.openDetail(e.Row)
	case tablepkg.EventSortChanged:
		direction := "descending"
		if e.Sort.Ascending {
			direction = "ascending"
		}
		m.activeKey = e.Sort.Column
		m.setStatus(fmt.Sprintf("Sorted by %s %s", m.columnLabel(e.Sort.Column), direction))
	case tablepkg.EventPageChanged:
		m.logger.Debug("page changed",
			slog.Int("page", e.Page),
			slog.Int("total_pages", e.TotalPages))
		m.syncDetail()
	}
}

func (m *bubbleModel) sortableKeys() []string {
	var keys []string
	for _, col := range m.mount.Snapshot().Columns {
		if col.Sortable {
			keys = append(keys, col.Key)
		}
	}
	return keys
}

// moveColumn changes the column the sort key acts on.
func (m *bubbleModel) moveColumn(delta int) {
	keys := m.sortableKeys()
	if len(keys) == 0 {
		m.setStatus("No sortable columns")
		return
	}
	idx := 0
	for i, k := range keys {
		if k == m.activeKey {
			idx = i
			break
		}
	}
	idx = (idx + delta + len(keys)) % len(keys)
	m.activeKey = keys[idx]
	m.setStatus(fmt.Sprintf("Column: %s (press s to sort)", m.columnLabel(m.activeKey)))
}

func (m *bubbleModel) columnLabel(key string) string {
	for _, col := range m.columns {
		if col.Key == key {
			return col.Title()
		}
	}
	return key
}

func (m *bubbleModel) cursorRow() (tablepkg.Row, bool) {
	rows := m.mount.Snapshot().Rows
	idx := m.mount.Cursor()
	if idx < 0 || idx >= len(rows) {
		return nil, false
	}
	return rows[idx], true
}

func (m *bubbleModel) openDetail(row tablepkg.Row) {
	m.detailRow = row
	if !m.detailOpen {
		m.detailOpen = true
		m.relayout()
		return
	}
	m.detail.SetContent(m.renderDetail())
	m.detail.GotoTop()
}

func (m *bubbleModel) closeDetail() {
	m.detailOpen = false
	m.detailRow = nil
	m.relayout()
}

// syncDetail keeps an open detail pane on the highlighted row.
func (m *bubbleModel) syncDetail() {
	if !m.detailOpen {
		return
	}
	if row, ok := m.cursorRow(); ok {
		m.detailRow = row
		m.detail.SetContent(m.renderDetail())
	}
}

func (m *bubbleModel) renderDetail() string {
	var b strings.Builder
	for i, col := range m.columns {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%s: %s", col.Title(), col.Format(m.detailRow, i))
	}
	content := wordwrap.String(b.String(), max(m.detail.Width, 1))
	return stylizeDetailContent(content, m.palette)
}

func (m *bubbleModel) detailWidth() int {
	return clamp(m.windowWidth/3, minDetailWidth, maxDetailWidth)
}

// relayout resizes the mount around the detail pane and status area and
// redraws.
func (m *bubbleModel) relayout() {
	width := m.windowWidth
	if m.detailOpen && width > 0 {
		dw := m.detailWidth()
		frame, _ := m.detailStyle.GetFrameSize()
		m.detail.Width = max(dw-frame, 1)
		width = max(width-dw, 1)
	}
	m.mount.Resize(width, m.windowHeight)
	m.mount.SetReserved(m.statusHeight())
	m.check(m.tbl.Redraw())

	if m.detailOpen {
		_, frame := m.detailStyle.GetFrameSize()
		m.detail.Height = max(lipgloss.Height(m.mount.View())-frame, 1)
		m.detail.SetContent(m.renderDetail())
	}
}

func (m *bubbleModel) statusHeight() int {
	_, frame := m.statusStyle.GetFrameSize()
	rows := statusRows
	if m.showHelp {
		rows = max(rows, lipgloss.Height(m.help.View(m.keys)))
	}
	return frame + rows
}

func (m *bubbleModel) copyRow() {
	row := m.detailRow
	if !m.detailOpen {
		var ok bool
		if row, ok = m.cursorRow(); !ok {
			return
		}
	}
	cells := make([]string, len(m.columns))
	for i, col := range m.columns {
		cells[i] = col.Format(row, i)
	}
	if err := writeClipboardText(strings.Join(cells, "\t")); err != nil {
		m.setStatus(fmt.Sprintf("Unable to copy: %v", err))
		return
	}
	m.setStatus("Copied row to clipboard")
}

// cycleTheme switches to the next registered palette for this session.
func (m *bubbleModel) cycleTheme() {
	name := theme.Next(m.palette.Name)
	p, ok := theme.Get(name)
	if !ok {
		return
	}
	m.applyPalette(p)
	m.setStatus(fmt.Sprintf("Theme: %s (set color-theme: %s in config to persist)", p.DisplayName, name))
}

func (m *bubbleModel) applyPalette(p theme.Palette) {
	m.palette = p
	m.detailStyle = newDetailBoxStyle(p)
	m.statusStyle = newStatusBoxStyle(p)
	m.mount.SetPalette(p)
	m.check(m.tbl.Redraw())
	if m.detailOpen {
		m.detail.SetContent(m.renderDetail())
	}
}

func (m *bubbleModel) check(err error) {
	if err == nil {
		return
	}
	m.logger.Error("table operation failed", slog.Any("error", err))
	m.setStatus(fmt.Sprintf("Error: %v", err))
}

func (m *bubbleModel) setStatus(msg string) {
	m.statusMessage = strings.TrimSpace(msg)
}

func (m *bubbleModel) View() string {
	main := m.mount.View()
	if m.detailOpen {
		box := m.detailStyle.Render(m.detail.View())
		main = lipgloss.JoinHorizontal(lipgloss.Top, main, box)
	}
	return lipgloss.JoinVertical(lipgloss.Left, main, m.renderStatusArea(lipgloss.Width(main)))
}

func (m *bubbleModel) renderStatusArea(widthHint int) string {
	width := widthHint
	if m.windowWidth > 0 && (width <= 0 || width > m.windowWidth) {
		width = m.windowWidth
	}
	if width <= 0 {
		width = 80
	}

	frameWidth, _ := m.statusStyle.GetFrameSize()
	innerWidth := max(width-frameWidth, 1)

	if m.showHelp {
		lines := strings.Split(m.help.View(m.keys), "\n")
		for i, line := range lines {
			lines[i] = padStatusLine(line, innerWidth)
		}
		return m.statusStyle.Render(strings.Join(lines, "\n"))
	}
	return m.statusStyle.Render(strings.Join(m.buildStatusRows(innerWidth), "\n"))
}

func (m *bubbleModel) buildStatusRows(innerWidth int) []string {
	faint := lipgloss.NewStyle().Faint(true)
	s := m.mount.Snapshot()

	summary := rangeSummary(s)
	if s.Filtered {
		summary += " (filtered)"
	}
	if m.query != "" && !m.filtering {
		summary += " · /" + m.query
	}
	rows := []string{renderStatusRow(summary, faint.Render("Press ? for help"), innerWidth)}

	var second string
	switch {
	case m.filtering:
		second = m.palette.ForegroundStyle(theme.ColorAccent).Render(m.filterInput.View())
	case m.statusMessage != "":
		second = faint.Render(m.statusMessage)
	case m.footer != "":
		second = faint.Render(m.footer)
	case m.activeKey != "":
		second = faint.Render(fmt.Sprintf("Column: %s", m.columnLabel(m.activeKey)))
	}
	rows = append(rows, padStatusLine(truncateWithEllipsis(second, innerWidth), innerWidth))
	return rows
}

func renderStatusRow(left, right string, width int) string {
	leftWidth := lipgloss.Width(left)
	rightWidth := lipgloss.Width(right)

	if width < 1 {
		width = max(leftWidth+rightWidth, 1)
	}

	switch {
	case rightWidth == 0 && leftWidth == 0:
		return strings.Repeat(" ", width)
	case rightWidth == 0:
		return padStatusLine(left, width)
	case leftWidth == 0:
		if rightWidth >= width {
			return right
		}
		return strings.Repeat(" ", width-rightWidth) + right
	default:
		gap := max(width-leftWidth-rightWidth, 1)
		return left + strings.Repeat(" ", gap) + right
	}
}

func padStatusLine(value string, width int) string {
	if width < 1 {
		return value
	}
	lineWidth := lipgloss.Width(value)
	if lineWidth >= width {
		return value
	}
	return value + strings.Repeat(" ", width-lineWidth)
}
