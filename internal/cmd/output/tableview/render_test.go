package tableview

import (
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/require"

	"github.com/kong/tablectl/internal/iostreams"
	tablepkg "github.com/kong/tablectl/internal/table"
	"github.com/kong/tablectl/internal/theme"
)

func fruitColumns() []tablepkg.Column {
	return []tablepkg.Column{
		{Key: "name", Label: "Name"},
		{Key: "qty", Label: "Qty", Type: tablepkg.TypeNumber, Flags: tablepkg.ColumnAlignRight},
	}
}

func fruitRows() []tablepkg.Row {
	return []tablepkg.Row{
		{"Apple", 1.5},
		{"Banana", 0.25},
		{"Cherry", 3.0},
		{"Date", 2.0},
		{"Elderberry", 4.0},
	}
}

func renderStatic(t *testing.T, rows []tablepkg.Row, opts ...Option) string {
	t.Helper()
	streams, _, out, _ := iostreams.NewTestIOStreams()
	require.NoError(t, Render(&streams, fruitColumns(), rows, opts...))
	return ansi.Strip(out.String())
}

func TestRender_StaticOutput(t *testing.T) {
	out := renderStatic(t, fruitRows(),
		WithTitle("Fruit"),
		WithTableOptions(tablepkg.WithRowsPerPage(2)),
	)

	require.Contains(t, out, "Fruit")
	require.Contains(t, out, "Name")
	require.Contains(t, out, "Apple")
	require.Contains(t, out, "Banana")
	require.NotContains(t, out, "Cherry")
	require.Contains(t, out, "Page 1 of 3")
	require.Contains(t, out, "»")
}

func TestRender_StaticInitialPageAndSort(t *testing.T) {
	out := renderStatic(t, fruitRows(),
		WithInitialPage(2),
		WithTableOptions(
			tablepkg.WithRowsPerPage(2),
			tablepkg.WithInitialSort("qty", false),
		),
	)

	// descending by qty: Elderberry, Cherry | Date, Apple | Banana
	require.Contains(t, out, "Qty ▼")
	require.Contains(t, out, "Date")
	require.Contains(t, out, "Apple")
	require.NotContains(t, out, "Elderberry")
	require.Contains(t, out, "Page 2 of 3")
}

func TestRender_StaticFilter(t *testing.T) {
	out := renderStatic(t, fruitRows(),
		WithFilter(func(row tablepkg.Row) bool {
			return row[1].(float64) > 2
		}),
		WithFooter("filtered by qty"),
	)

	require.Contains(t, out, "Cherry")
	require.Contains(t, out, "Elderberry")
	require.NotContains(t, out, "Apple")
	require.Contains(t, out, "Page 1 of 1")
	require.Contains(t, out, "filtered by qty")
}

func TestRender_StaticEmpty(t *testing.T) {
	out := renderStatic(t, []tablepkg.Row{},
		WithTableOptions(tablepkg.WithEmptyMessage("Nothing here")),
	)
	require.Contains(t, out, "Nothing here")
	require.Contains(t, out, "Page 1 of 1")
}

func TestRender_StaticWithoutPagination(t *testing.T) {
	out := renderStatic(t, fruitRows(),
		WithTableOptions(
			tablepkg.WithRowsPerPage(2),
			tablepkg.WithPagination(false),
		),
	)
	require.Contains(t, out, "Elderberry")
	require.NotContains(t, out, "Page")
}

func TestRender_NoColumns(t *testing.T) {
	streams, _, out, _ := iostreams.NewTestIOStreams()
	require.NoError(t, Render(&streams, nil, nil))
	require.Equal(t, "No data to display.\n", out.String())
}

func TestRender_ConfigurationError(t *testing.T) {
	streams, _, _, _ := iostreams.NewTestIOStreams()
	err := Render(&streams, fruitColumns(), nil)

	var cfgErr *tablepkg.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
}

func TestRender_RequiresOutput(t *testing.T) {
	require.Error(t, Render(nil, fruitColumns(), fruitRows()))
}

func TestIsTerminal(t *testing.T) {
	streams, _, _, _ := iostreams.NewTestIOStreams()
	require.False(t, IsTerminal(streams.Out))
}

func newStaticMount(t *testing.T, rows []tablepkg.Row, opts ...tablepkg.Option) (*Mount, *tablepkg.Table) {
	t.Helper()
	mount := NewMount(MountOptions{Palette: theme.Current(), Width: 120, Height: 40})
	tbl, err := tablepkg.New(mount, rows, fruitColumns(), opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = tbl.Destroy() })
	return mount, tbl
}

func regionsOf(layout tablepkg.Layout, kind tablepkg.RegionKind) []tablepkg.Region {
	var out []tablepkg.Region
	for _, r := range layout.Regions {
		if r.Kind == kind {
			out = append(out, r)
		}
	}
	return out
}

// column returns the display column at which needle starts on line.
func column(t *testing.T, line, needle string) int {
	t.Helper()
	idx := strings.Index(line, needle)
	require.GreaterOrEqual(t, idx, 0, "%q not found in %q", needle, line)
	return ansi.StringWidth(line[:idx])
}

func TestMount_LayoutMatchesView(t *testing.T) {
	mount, tbl := newStaticMount(t, fruitRows(), tablepkg.WithRowsPerPage(2))
	layout := mount.Layout()
	lines := strings.Split(ansi.Strip(mount.View()), "\n")

	headers := regionsOf(layout, tablepkg.RegionHeader)
	require.Len(t, headers, 2)
	require.Equal(t, "name", headers[0].Column)
	require.Equal(t, "qty", headers[1].Column)
	for _, h := range headers {
		label := map[string]string{"name": "Name", "qty": "Qty"}[h.Column]
		require.Equal(t, h.X+1, column(t, lines[h.Y], label))
	}

	rows := regionsOf(layout, tablepkg.RegionRow)
	require.Len(t, rows, 2)
	require.Equal(t, 0, rows[0].Row)
	require.Contains(t, lines[rows[0].Y], "Apple")
	require.Contains(t, lines[rows[1].Y], "Banana")

	// first page: only next and last are live
	nav := regionsOf(layout, tablepkg.RegionNav)
	require.Len(t, nav, 2)
	require.Equal(t, tablepkg.NavNext, nav[0].Action)
	require.Equal(t, tablepkg.NavLast, nav[1].Action)
	require.Equal(t, nav[0].X, column(t, lines[nav[0].Y], "›"))

	indicator := regionsOf(layout, tablepkg.RegionPageIndicator)
	require.Len(t, indicator, 1)
	require.Equal(t, indicator[0].X, column(t, lines[indicator[0].Y], "Page 1 of 3"))
	require.Equal(t, len("Page 1 of 3"), indicator[0].Width)

	require.ElementsMatch(t, layout.Regions, tbl.Controller().Regions())
}

func TestMount_ClickThroughController(t *testing.T) {
	mount, tbl := newStaticMount(t, fruitRows(), tablepkg.WithRowsPerPage(2))

	next := regionsOf(mount.Layout(), tablepkg.RegionNav)[0]
	hit, err := tbl.Controller().Click(next.X, next.Y, nil)
	require.NoError(t, err)
	require.True(t, hit)
	require.Equal(t, 2, tbl.Pagination().Page)

	// every control is live in the middle
	require.Len(t, regionsOf(mount.Layout(), tablepkg.RegionNav), 4)

	header := regionsOf(mount.Layout(), tablepkg.RegionHeader)[1]
	_, err = tbl.Controller().Click(header.X+1, header.Y, nil)
	require.NoError(t, err)
	require.Equal(t, tablepkg.SortSpec{Column: "qty", Ascending: true}, tbl.SortSpec())
	require.Equal(t, 1, tbl.Pagination().Page)
	require.Contains(t, ansi.Strip(mount.View()), "Qty ▲")

	hit, err = tbl.Controller().Click(0, 0, nil)
	require.NoError(t, err)
	require.False(t, hit)
}

func TestMount_EditingIndicator(t *testing.T) {
	mount, tbl := newStaticMount(t, fruitRows(), tablepkg.WithRowsPerPage(2))
	mount.SetEditView("12")
	require.NoError(t, tbl.Controller().BeginPageEdit())
	require.Contains(t, ansi.Strip(mount.View()), "Page 12 of 3")

	require.NoError(t, tbl.Controller().CancelPageEdit())
	require.Contains(t, ansi.Strip(mount.View()), "Page 1 of 3")
}

func TestMount_EmptyMessage(t *testing.T) {
	mount, _ := newStaticMount(t, []tablepkg.Row{})
	require.Empty(t, regionsOf(mount.Layout(), tablepkg.RegionRow))
	require.Contains(t, ansi.Strip(mount.View()), "No data available")
}

func TestMount_Detach(t *testing.T) {
	mount, tbl := newStaticMount(t, fruitRows())
	require.NoError(t, tbl.Destroy())
	require.Empty(t, mount.Layout().Regions)
}

func TestMount_UnsortableHeadersHaveNoRegion(t *testing.T) {
	mount, _ := newStaticMount(t, fruitRows(), tablepkg.WithSorting(false))
	require.Empty(t, regionsOf(mount.Layout(), tablepkg.RegionHeader))
}
