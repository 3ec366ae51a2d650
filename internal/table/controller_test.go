package table

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
)

// gridLayout draws the header on line 0, page rows below it and the
// pagination bar under the rows. Nav controls are only bound while live.
func gridLayout(s Snapshot) Layout {
	var regions []Region
	for i, col := range s.Columns {
		regions = append(regions, Region{Kind: RegionHeader, X: i * 10, Y: 0, Width: 10, Column: col.Key})
	}
	for i := range s.Rows {
		regions = append(regions, Region{Kind: RegionRow, X: 0, Y: 1 + i, Width: 10 * len(s.Columns), Row: i})
	}
	if !s.ShowPagination {
		return Layout{Regions: regions}
	}
	bar := 1 + len(s.Rows)
	for i, action := range []NavAction{NavFirst, NavPrev, NavNext, NavLast} {
		if !s.Nav.Enabled(action) {
			continue
		}
		regions = append(regions, Region{Kind: RegionNav, X: i * 4, Y: bar, Width: 3, Action: action})
	}
	regions = append(regions, Region{Kind: RegionPageIndicator, X: 20, Y: bar, Width: 8})
	return Layout{Regions: regions}
}

func newGridTable(t *testing.T, opts ...Option) (*Table, *recordingMount) {
	t.Helper()
	m := &recordingMount{layout: gridLayout}
	tbl, err := New(m, fiveRows(), numberColumns(), opts...)
	require.NoError(t, err)
	return tbl, m
}

func TestParseNavAction(t *testing.T) {
	for input, want := range map[string]NavAction{
		"first":    NavFirst,
		"Prev":     NavPrev,
		"previous": NavPrev,
		" next ":   NavNext,
		"LAST":     NavLast,
	} {
		got, err := ParseNavAction(input)
		require.NoError(t, err)
		require.Equal(t, want, got, input)
		require.NotEmpty(t, got.String())
	}

	_, err := ParseNavAction("sideways")
	require.Error(t, err)
}

func TestRegionContains(t *testing.T) {
	r := Region{X: 2, Y: 3, Width: 4}

	require.True(t, r.Contains(2, 3))
	require.True(t, r.Contains(5, 3))
	require.False(t, r.Contains(6, 3))
	require.False(t, r.Contains(2, 4))
	require.False(t, r.Contains(1, 3))
}

func TestClickHeaderTogglesSort(t *testing.T) {
	tbl, _ := newGridTable(t)
	ctrl := tbl.Controller()

	hit, err := ctrl.Click(11, 0, nil)
	require.NoError(t, err)
	require.True(t, hit)
	require.Equal(t, SortSpec{Column: "s", Ascending: true}, tbl.SortSpec())

	hit, err = ctrl.Click(12, 0, nil)
	require.NoError(t, err)
	require.True(t, hit)
	require.Equal(t, SortSpec{Column: "s", Ascending: false}, tbl.SortSpec())
}

func TestClickMissesReportFalse(t *testing.T) {
	tbl, _ := newGridTable(t)

	hit, err := tbl.Controller().Click(500, 500, nil)
	require.NoError(t, err)
	require.False(t, hit)
}

func TestClickNavRebindsAfterRedraw(t *testing.T) {
	tbl, _ := newGridTable(t, WithRowsPerPage(2))
	ctrl := tbl.Controller()
	bar := 3

	// next
	hit, err := ctrl.Click(8, bar, nil)
	require.NoError(t, err)
	require.True(t, hit)
	require.Equal(t, 2, tbl.Pagination().Page)

	// last
	_, err = ctrl.Click(12, bar, nil)
	require.NoError(t, err)
	require.Equal(t, 3, tbl.Pagination().Page)

	// the last page has one row, so the bar moved up and next is gone
	hit, err = ctrl.Click(8, 2, nil)
	require.NoError(t, err)
	require.False(t, hit)
	require.Equal(t, 3, tbl.Pagination().Page)

	for _, r := range ctrl.Regions() {
		require.False(t, r.Kind == RegionNav && (r.Action == NavNext || r.Action == NavLast))
	}
}

func TestClickNavIgnoresDisabledControls(t *testing.T) {
	tbl, _ := newGridTable(t, WithRowsPerPage(2))
	pages := collect(t, tbl, EventPageChanged)
	ctrl := tbl.Controller()

	require.False(t, ctrl.NavEnabled(NavFirst))
	require.False(t, ctrl.NavEnabled(NavPrev))
	require.True(t, ctrl.NavEnabled(NavNext))

	require.NoError(t, ctrl.ClickNav(NavPrev))
	require.NoError(t, ctrl.ClickNav(NavFirst))
	require.Empty(t, *pages)
}

func TestClickRowReportsActiveViewIndex(t *testing.T) {
	tbl, _ := newGridTable(t, WithRowsPerPage(2))
	rows := collect(t, tbl, EventRowActivated)

	require.NoError(t, tbl.Sort("n", false))
	require.NoError(t, tbl.GoToPage(2))

	hit, err := tbl.Controller().Click(3, 2, "mouse")
	require.NoError(t, err)
	require.True(t, hit)

	require.Equal(t, []Event{{
		Kind:     EventRowActivated,
		Row:      Row{2, "b"},
		RowIndex: 3,
		Raw:      "mouse",
	}}, *rows)
}

func TestClickRowOutsidePageIsIgnored(t *testing.T) {
	tbl, _ := newGridTable(t, WithRowsPerPage(2))
	rows := collect(t, tbl, EventRowActivated)

	require.NoError(t, tbl.Controller().ClickRow(2, nil))
	require.NoError(t, tbl.Controller().ClickRow(-1, nil))
	require.Empty(t, *rows)
}

func TestPageEdit(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantPage int
		events   int
	}{
		{name: "valid page", input: "3", wantPage: 3, events: 1},
		{name: "surrounding space", input: " 2 ", wantPage: 2, events: 1},
		{name: "not a number", input: "abc", wantPage: 1, events: 0},
		{name: "out of range", input: "9", wantPage: 1, events: 0},
		{name: "zero", input: "0", wantPage: 1, events: 0},
		{name: "current page", input: "1", wantPage: 1, events: 0},
		{name: "empty", input: "", wantPage: 1, events: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl, m := newGridTable(t, WithRowsPerPage(2))
			pages := collect(t, tbl, EventPageChanged)
			ctrl := tbl.Controller()

			hit, err := ctrl.Click(21, 3, nil)
			require.NoError(t, err)
			require.True(t, hit)
			require.True(t, ctrl.Editing())
			require.True(t, m.last().EditingPage)
			require.Equal(t, "1", m.last().EditBuffer)

			require.NoError(t, ctrl.ConfirmPageEdit(tt.input))

			require.False(t, ctrl.Editing())
			require.False(t, m.last().EditingPage)
			require.Equal(t, tt.wantPage, tbl.Pagination().Page)
			require.Len(t, *pages, tt.events)
		})
	}
}

func TestCancelPageEdit(t *testing.T) {
	tbl, m := newGridTable(t, WithRowsPerPage(2))
	ctrl := tbl.Controller()

	require.NoError(t, ctrl.BeginPageEdit())
	draws := len(m.draws)
	require.NoError(t, ctrl.CancelPageEdit())

	require.False(t, ctrl.Editing())
	require.Len(t, m.draws, draws+1)
	require.False(t, m.last().EditingPage)

	require.NoError(t, ctrl.CancelPageEdit())
	require.NoError(t, ctrl.ConfirmPageEdit("2"))
	require.Equal(t, 1, tbl.Pagination().Page)
}

func TestPageEditUnavailableWithoutPagination(t *testing.T) {
	tbl, _ := newGridTable(t, WithPagination(false))

	require.NoError(t, tbl.Controller().BeginPageEdit())
	require.False(t, tbl.Controller().Editing())
}

func TestMountFuncAdaptsFunctions(t *testing.T) {
	var seen int
	mount := MountFunc(func(s Snapshot) Layout {
		seen = s.Pagination.TotalRows
		return Layout{Regions: []Region{{Kind: RegionHeader, Width: 1, Column: "n"}}}
	})

	tbl, err := New(mount, fiveRows(), numberColumns())
	require.NoError(t, err)

	require.Equal(t, 5, seen)
	require.Len(t, tbl.Controller().Regions(), 1)
}

func TestPageEditFollowsPageAfterMutations(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Table) error
		page   int
	}{
		{
			name:   "sort resets page",
			mutate: func(tbl *Table) error { return tbl.Sort("n", false) },
			page:   1,
		},
		{
			name:   "filter resets page",
			mutate: func(tbl *Table) error { return tbl.Filter(func(r Row) bool { return r[0].(int) > 1 }) },
			page:   1,
		},
		{
			name:   "set data resets page",
			mutate: func(tbl *Table) error { return tbl.SetData(fiveRows()) },
			page:   1,
		},
		{
			name: "remove rows clamps page",
			mutate: func(tbl *Table) error {
				_, err := tbl.RemoveRows(func(r Row) bool { return r[0].(int) == 5 })
				return err
			},
			page: 2,
		},
		{
			name:   "navigation moves page",
			mutate: func(tbl *Table) error { return tbl.Navigate(NavFirst) },
			page:   1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl, m := newGridTable(t, WithRowsPerPage(2))
			ctrl := tbl.Controller()
			require.NoError(t, tbl.GoToPage(3))
			require.NoError(t, ctrl.BeginPageEdit())
			require.Equal(t, "3", m.last().EditBuffer)

			require.NoError(t, tt.mutate(tbl))

			require.True(t, ctrl.Editing())
			require.Equal(t, tt.page, tbl.Pagination().Page)
			require.True(t, m.last().EditingPage)
			require.Equal(t, strconv.Itoa(tt.page), m.last().EditBuffer)
		})
	}
}

func TestOnRowClickPanicPropagates(t *testing.T) {
	tbl, _ := newGridTable(t, OnRowClick(func(Row, int, any) { panic("boom") }))

	require.PanicsWithValue(t, "boom", func() {
		_ = tbl.Controller().ClickRow(0, nil)
	})
}
