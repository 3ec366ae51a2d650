package html

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kong/tablectl/internal/table"
)

func columns() []table.Column {
	return []table.Column{
		{Key: "name", Label: "Name"},
		{Key: "price", Label: "Price", Type: table.TypeNumber, Flags: table.ColumnAlignRight},
		{Key: "note", Label: "Note", Flags: table.ColumnNoSort},
	}
}

func rows() []table.Row {
	return []table.Row{
		{"Widget", 9.5, "<b>bold</b>"},
		{"Gadget", 3.0, "plain"},
		{"Doohickey", 12.0, ""},
	}
}

func TestMountRendersClasses(t *testing.T) {
	m := NewMount()
	tbl, err := table.New(m, rows(), columns(),
		table.WithRowsPerPage(2),
		table.WithClassPrefix("inv"),
		table.WithInitialSort("price", false),
	)
	require.NoError(t, err)
	require.NoError(t, m.Err())

	out := m.HTML()
	require.Contains(t, out, `<div class="inv" id="inv-`+tbl.ID()[:8]+`">`)
	require.Contains(t, out, `<tr class="inv__header">`)
	require.Contains(t, out, `class="inv__column inv__column--sortable inv--sorted-desc" data-key="price" data-type="number" role="button"`)
	require.Contains(t, out, `class="inv__column" data-key="note" data-type="string"`)
	require.Contains(t, out, "Price ▼</th>")
	require.Equal(t, 2, strings.Count(out, `<tr class="inv__row"`))
	require.Contains(t, out, `<tr class="inv__row" data-index="0">`)
	require.Contains(t, out, `<td class="inv__cell inv__cell--right">12</td>`)
	require.Contains(t, out, `<nav class="inv__pagination">`)
	require.Contains(t, out, `<button type="button" class="inv__nav" data-action="first" disabled>«</button>`)
	require.Contains(t, out, `<button type="button" class="inv__nav" data-action="next">›</button>`)
	require.Contains(t, out, "Page 1 of 2")
	require.NotContains(t, out, "Gadget")
}

func TestMountFollowsState(t *testing.T) {
	m := NewMount()
	tbl, err := table.New(m, rows(), columns(), table.WithRowsPerPage(2))
	require.NoError(t, err)

	require.NoError(t, tbl.GoToPage(2))
	out := m.HTML()
	require.Contains(t, out, "Doohickey")
	require.Contains(t, out, `data-index="2"`)
	require.Contains(t, out, `data-action="last" disabled`)
	require.Contains(t, out, "sortable-table__pagination")

	require.NoError(t, tbl.Controller().BeginPageEdit())
	require.Contains(t, m.HTML(), `<input class="sortable-table__page-input" type="number" min="1" max="2" value="2">`)

	require.NoError(t, tbl.Destroy())
	require.Empty(t, m.HTML())
}

func TestMountEscapesCells(t *testing.T) {
	m := NewMount()
	_, err := table.New(m, rows(), columns())
	require.NoError(t, err)

	out := m.HTML()
	require.Contains(t, out, "&lt;b&gt;bold&lt;/b&gt;")
	require.NotContains(t, out, "<b>bold</b>")
}

func TestMountEmpty(t *testing.T) {
	m := NewMount()
	_, err := table.New(m, []table.Row{}, columns(),
		table.WithEmptyMessage("Nothing <here>"),
		table.WithPagination(false),
	)
	require.NoError(t, err)

	out := m.HTML()
	require.Contains(t, out, `<tr class="sortable-table__empty">`)
	require.Contains(t, out, `<td colspan="3">Nothing &lt;here&gt;</td>`)
	require.NotContains(t, out, "__pagination")
}

func TestWrite(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, table.Snapshot{
		TableID:     "0123456789",
		ClassPrefix: "t",
		Columns:     []table.ColumnView{{Key: "a", Label: "A", Type: "string"}},
		Cells:       [][]string{{"x"}},
		Rows:        []table.Row{{"x"}},
		Pagination:  table.Pagination{Page: 1, TotalPages: 1, RowsPerPage: 25, TotalRows: 1},
	}))
	require.Contains(t, buf.String(), `id="t-01234567"`)
	require.Contains(t, buf.String(), `<td class="t__cell">x</td>`)
}
