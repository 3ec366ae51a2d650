package tableview

import (
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	tablepkg "github.com/kong/tablectl/internal/table"
	"github.com/kong/tablectl/internal/theme"
)

func executeCmd(t *testing.T, model *bubbleModel, cmd tea.Cmd) *bubbleModel {
	t.Helper()
	queue := []tea.Cmd{cmd}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		if current == nil {
			continue
		}
		msg := current()
		switch m := msg.(type) {
		case tea.BatchMsg:
			queue = append(queue, []tea.Cmd(m)...)
			continue
		case nil:
			continue
		}
		updated, next := model.Update(msg)
		bm, ok := updated.(*bubbleModel)
		require.True(t, ok)
		model = bm
		if next != nil {
			queue = append(queue, next)
		}
	}
	return model
}

func newTestModel(t *testing.T, cfg config, opts ...tablepkg.Option) *bubbleModel {
	t.Helper()
	palette := theme.Current()
	mount := NewMount(MountOptions{Palette: palette, Interactive: true, Width: 100, Height: 30})
	opts = append([]tablepkg.Option{tablepkg.WithRowsPerPage(2)}, opts...)
	tbl, err := tablepkg.New(mount, fruitRows(), fruitColumns(), opts...)
	require.NoError(t, err)
	if cfg.filter != nil {
		require.NoError(t, tbl.Filter(cfg.filter))
	}
	m := newBubbleModel(tbl, mount, fruitColumns(), cfg, palette, 100, 30)
	t.Cleanup(func() {
		m.close()
		_ = tbl.Destroy()
	})
	return m
}

// press feeds keys to the model. Commands are dropped since focused inputs
// return blink ticks that never settle.
func press(t *testing.T, m *bubbleModel, keys ...tea.KeyMsg) {
	t.Helper()
	for _, k := range keys {
		updated, _ := m.Update(k)
		require.Same(t, m, updated)
	}
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func keyOf(kt tea.KeyType) tea.KeyMsg {
	return tea.KeyMsg{Type: kt}
}

func click(t *testing.T, m *bubbleModel, x, y int) {
	t.Helper()
	updated, _ := m.Update(tea.MouseMsg{
		X:      x,
		Y:      y,
		Button: tea.MouseButtonLeft,
		Action: tea.MouseActionPress,
	})
	require.Same(t, m, updated)
}

func region(t *testing.T, m *bubbleModel, match func(tablepkg.Region) bool) tablepkg.Region {
	t.Helper()
	for _, r := range m.tbl.Controller().Regions() {
		if match(r) {
			return r
		}
	}
	require.FailNow(t, "region not bound")
	return tablepkg.Region{}
}

func visibleNames(t *testing.T, m *bubbleModel) []string {
	t.Helper()
	rows, err := m.tbl.VisibleData()
	require.NoError(t, err)
	names := make([]string, len(rows))
	for i, row := range rows {
		names[i] = row[0].(string)
	}
	return names
}

func TestModel_PageNavigationKeys(t *testing.T) {
	m := newTestModel(t, config{})
	var pages []int
	_, err := m.tbl.Subscribe(func(e tablepkg.Event) {
		if e.Kind == tablepkg.EventPageChanged {
			pages = append(pages, e.Page)
		}
	})
	require.NoError(t, err)

	press(t, m, keyOf(tea.KeyRight))
	require.Equal(t, []string{"Cherry", "Date"}, visibleNames(t, m))

	press(t, m, keyOf(tea.KeyEnd))
	require.Equal(t, []string{"Elderberry"}, visibleNames(t, m))

	// next is disabled on the last page
	press(t, m, runes("l"))
	require.Equal(t, 3, m.tbl.Pagination().Page)

	press(t, m, keyOf(tea.KeyLeft), keyOf(tea.KeyHome))
	require.Equal(t, 1, m.tbl.Pagination().Page)
	require.Equal(t, []int{2, 3, 2, 1}, pages)
	require.Contains(t, ansi.Strip(m.View()), "Rows 1-2 of 5")
}

func TestModel_SortKeys(t *testing.T) {
	m := newTestModel(t, config{})
	require.Equal(t, "name", m.activeKey)

	press(t, m, runes("s"))
	require.Equal(t, tablepkg.SortSpec{Column: "name", Ascending: true}, m.tbl.SortSpec())
	press(t, m, runes("s"))
	require.Equal(t, tablepkg.SortSpec{Column: "name", Ascending: false}, m.tbl.SortSpec())
	require.Equal(t, []string{"Elderberry", "Date"}, visibleNames(t, m))
	require.Equal(t, "Sorted by Name descending", m.statusMessage)

	press(t, m, keyOf(tea.KeyTab), runes("s"))
	require.Equal(t, tablepkg.SortSpec{Column: "qty", Ascending: true}, m.tbl.SortSpec())
	require.Equal(t, []string{"Banana", "Apple"}, visibleNames(t, m))

	press(t, m, keyOf(tea.KeyShiftTab))
	require.Equal(t, "name", m.activeKey)
}

func TestModel_PageEdit(t *testing.T) {
	m := newTestModel(t, config{})

	press(t, m, runes("g"))
	require.True(t, m.tbl.Controller().Editing())
	require.Equal(t, "1", m.pageInput.Value())

	// letters are ignored
	press(t, m, runes("x"))
	require.Equal(t, "1", m.pageInput.Value())

	press(t, m, keyOf(tea.KeyBackspace), runes("3"))
	require.Equal(t, "3", m.pageInput.Value())
	require.Contains(t, ansi.Strip(m.View()), "Page 3")

	press(t, m, keyOf(tea.KeyEnter))
	require.False(t, m.tbl.Controller().Editing())
	require.Equal(t, 3, m.tbl.Pagination().Page)
}

func TestModel_PageEditOutOfRangeAndCancel(t *testing.T) {
	m := newTestModel(t, config{})

	press(t, m, runes("g"), keyOf(tea.KeyBackspace), runes("9"), keyOf(tea.KeyEnter))
	require.False(t, m.tbl.Controller().Editing())
	require.Equal(t, 1, m.tbl.Pagination().Page)

	press(t, m, runes("g"), keyOf(tea.KeyBackspace), runes("2"), keyOf(tea.KeyEsc))
	require.False(t, m.tbl.Controller().Editing())
	require.Equal(t, 1, m.tbl.Pagination().Page)
	require.Contains(t, ansi.Strip(m.View()), "Page 1 of 3")
}

func TestModel_TextFilter(t *testing.T) {
	m := newTestModel(t, config{})
	press(t, m, keyOf(tea.KeyRight))

	press(t, m, runes("/"), runes("an"))
	require.True(t, m.filtering)
	require.True(t, m.tbl.Filtered())
	require.Equal(t, []string{"Banana"}, visibleNames(t, m))
	require.Equal(t, 1, m.tbl.Pagination().Page)

	press(t, m, keyOf(tea.KeyEnter))
	require.False(t, m.filtering)
	require.Contains(t, ansi.Strip(m.View()), "/an")

	// esc outside the input clears the filter
	press(t, m, keyOf(tea.KeyEsc))
	require.False(t, m.tbl.Filtered())
	require.Equal(t, "Filter cleared", m.statusMessage)
}

func TestModel_TextFilterKeepsBaseFilter(t *testing.T) {
	m := newTestModel(t, config{filter: func(row tablepkg.Row) bool {
		return row[1].(float64) >= 2
	}})
	require.Equal(t, []string{"Cherry", "Date"}, visibleNames(t, m))

	press(t, m, runes("/"), runes("e"))
	view, err := m.tbl.ActiveView()
	require.NoError(t, err)
	require.Len(t, view, 3)

	press(t, m, keyOf(tea.KeyEsc))
	view, err = m.tbl.ActiveView()
	require.NoError(t, err)
	require.Len(t, view, 3)
	require.True(t, m.tbl.Filtered())
}

func TestModel_OpenDetailAndCopy(t *testing.T) {
	m := newTestModel(t, config{})
	var copied string
	prev := writeClipboardText
	writeClipboardText = func(s string) error {
		copied = s
		return nil
	}
	t.Cleanup(func() { writeClipboardText = prev })

	press(t, m, keyOf(tea.KeyDown), keyOf(tea.KeyEnter))
	require.True(t, m.detailOpen)
	require.Empty(t, cmp.Diff(tablepkg.Row{"Banana", 0.25}, m.detailRow))
	require.Contains(t, ansi.Strip(m.View()), "Name: Banana")

	press(t, m, runes("y"))
	require.Equal(t, "Banana\t0.25", copied)
	require.Equal(t, "Copied row to clipboard", m.statusMessage)

	// the pane follows the cursor
	press(t, m, keyOf(tea.KeyUp))
	require.Equal(t, "Apple", m.detailRow[0])

	press(t, m, keyOf(tea.KeyEsc))
	require.False(t, m.detailOpen)
}

func TestModel_CopyFailure(t *testing.T) {
	m := newTestModel(t, config{})
	prev := writeClipboardText
	writeClipboardText = func(string) error { return errors.New("no clipboard") }
	t.Cleanup(func() { writeClipboardText = prev })

	press(t, m, runes("y"))
	require.Equal(t, "Unable to copy: no clipboard", m.statusMessage)
}

func TestModel_RowActivatedEvent(t *testing.T) {
	m := newTestModel(t, config{})
	press(t, m, keyOf(tea.KeyRight))

	var got []tablepkg.Event
	_, err := m.tbl.Subscribe(func(e tablepkg.Event) {
		if e.Kind == tablepkg.EventRowActivated {
			got = append(got, e)
		}
	})
	require.NoError(t, err)

	row := region(t, m, func(r tablepkg.Region) bool {
		return r.Kind == tablepkg.RegionRow && r.Row == 1
	})
	click(t, m, row.X+1, row.Y)

	require.Len(t, got, 1)
	require.Equal(t, 3, got[0].RowIndex)
	require.Equal(t, "Date", got[0].Row[0])
	require.IsType(t, tea.MouseMsg{}, got[0].Raw)
	require.Equal(t, 1, m.mount.Cursor())
	require.True(t, m.detailOpen)
}

func TestModel_MouseHeaderAndNav(t *testing.T) {
	m := newTestModel(t, config{})

	header := region(t, m, func(r tablepkg.Region) bool {
		return r.Kind == tablepkg.RegionHeader && r.Column == "qty"
	})
	click(t, m, header.X, header.Y)
	require.Equal(t, tablepkg.SortSpec{Column: "qty", Ascending: true}, m.tbl.SortSpec())
	require.Equal(t, "qty", m.activeKey)

	last := region(t, m, func(r tablepkg.Region) bool {
		return r.Kind == tablepkg.RegionNav && r.Action == tablepkg.NavLast
	})
	click(t, m, last.X, last.Y)
	require.Equal(t, 3, m.tbl.Pagination().Page)

	// disabled controls are not bound
	for _, r := range m.tbl.Controller().Regions() {
		if r.Kind == tablepkg.RegionNav {
			require.Contains(t, []tablepkg.NavAction{tablepkg.NavFirst, tablepkg.NavPrev}, r.Action)
		}
	}
}

func TestModel_MousePageEditCommitsOnFocusLoss(t *testing.T) {
	m := newTestModel(t, config{})

	indicator := region(t, m, func(r tablepkg.Region) bool {
		return r.Kind == tablepkg.RegionPageIndicator
	})
	click(t, m, indicator.X, indicator.Y)
	require.True(t, m.tbl.Controller().Editing())

	press(t, m, keyOf(tea.KeyBackspace), runes("2"))
	click(t, m, 0, 0)
	require.False(t, m.tbl.Controller().Editing())
	require.Equal(t, 2, m.tbl.Pagination().Page)
}

func TestModel_ThemeAndHelp(t *testing.T) {
	m := newTestModel(t, config{})
	before := m.palette.Name

	press(t, m, runes("t"))
	require.Equal(t, theme.Next(before), m.palette.Name)
	require.Contains(t, m.statusMessage, "Theme:")

	press(t, m, runes("?"))
	require.True(t, m.showHelp)
	require.Contains(t, ansi.Strip(m.View()), "next page")
	press(t, m, runes("?"))
	require.False(t, m.showHelp)
}

func TestModel_ResizeFitsWindow(t *testing.T) {
	m := newTestModel(t, config{footer: "press q to quit"})
	updated, cmd := m.Update(tea.WindowSizeMsg{Width: 80, Height: 12})
	require.Nil(t, cmd)
	require.Same(t, m, updated)

	view := m.View()
	require.LessOrEqual(t, lipgloss.Height(view), 12)
	require.Contains(t, ansi.Strip(view), "press q to quit")
}

func TestModel_Quit(t *testing.T) {
	m := newTestModel(t, config{})
	_, cmd := m.Update(runes("q"))
	require.NotNil(t, cmd)

	m = executeCmd(t, m, cmd)
	require.False(t, m.useAltScreen)
}
