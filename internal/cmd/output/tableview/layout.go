package tableview

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/x/ansi"
	"github.com/mattn/go-runewidth"

	tablepkg "github.com/kong/tablectl/internal/table"
	"github.com/kong/tablectl/internal/util"
)

const (
	minColumnWidth = 6
	maxColumnWidth = 60

	// cellPadding is the horizontal padding of every bubbles table cell.
	cellPadding = 2
	// boxInset is the border plus padding between a box edge and its content.
	boxInset = 2

	sortAscendingMark  = "▲"
	sortDescendingMark = "▼"
)

// headerTitle appends the sort indicator of the column to its label.
func headerTitle(col tablepkg.ColumnView) string {
	switch col.Direction {
	case tablepkg.SortAscending:
		return col.Label + " " + sortAscendingMark
	case tablepkg.SortDescending:
		return col.Label + " " + sortDescendingMark
	default:
		return col.Label
	}
}

// displayCells flattens the formatted cells of a snapshot for a single line
// grid and shortens UUIDs in identifier columns.
func displayCells(s tablepkg.Snapshot) [][]string {
	idCols := make(map[int]bool)
	for i, col := range s.Columns {
		if isIDHeaderKey(normalizeHeaderKey(col.Key)) || isIDHeaderKey(normalizeHeaderKey(col.Label)) {
			idCols[i] = true
		}
	}

	out := make([][]string, len(s.Cells))
	for i, row := range s.Cells {
		cells := make([]string, len(s.Columns))
		for j := range s.Columns {
			if j >= len(row) {
				continue
			}
			v := strings.Join(strings.Fields(row[j]), " ")
			if idCols[j] {
				v = util.AbbreviateUUID(v)
			}
			cells[j] = v
		}
		out[i] = cells
	}
	return out
}

// alignCells right aligns the cells of right aligned columns within their
// width.
func alignCells(cols []tablepkg.ColumnView, cells [][]string, widths []int) {
	for j, col := range cols {
		if !col.AlignRight || j >= len(widths) {
			continue
		}
		for _, row := range cells {
			row[j] = runewidth.FillLeft(row[j], widths[j])
		}
	}
}

func isIDHeaderKey(key string) bool {
	key = strings.TrimSpace(key)
	if key == "" {
		return false
	}
	switch key {
	case "id", "uuid", "uid", "identifier":
		return true
	}
	for _, suffix := range []string{" id", " uuid", " uid", " identifier"} {
		if strings.HasSuffix(key, suffix) {
			return true
		}
	}
	return false
}

func normalizeHeaderKey(header string) string {
	header = strings.ReplaceAll(header, "_", " ")
	header = strings.ReplaceAll(header, "-", " ")
	return strings.Join(strings.Fields(strings.ToLower(header)), " ")
}

// calculateColumnWidths sizes every column to its widest cell within
// [minColumnWidth, maxColumnWidth] and then shrinks the widest columns until
// the total fits widthLimit. A positive hint pins a column's width.
func calculateColumnWidths(headers []string, rows [][]string, widthLimit int, hints []int) ([]int, []int) {
	widths := make([]int, len(headers))
	minWidths := make([]int, len(headers))
	for i, header := range headers {
		if i < len(hints) && hints[i] > 0 {
			widths[i], minWidths[i] = hints[i], hints[i]
			continue
		}

		headerWidth := runewidth.StringWidth(header)
		minWidth := clamp(headerWidth, minColumnWidth, maxColumnWidth)
		minWidths[i] = minWidth

		maxWidth := headerWidth
		for _, row := range rows {
			if i < len(row) {
				if w := runewidth.StringWidth(row[i]); w > maxWidth {
					maxWidth = w
				}
			}
		}
		widths[i] = max(clamp(maxWidth, minColumnWidth, maxColumnWidth), minWidth)
	}

	if widthLimit <= 0 {
		return widths, minWidths
	}

	total := sum(widths)
	for total > widthLimit {
		idx := widestColumnAboveMin(widths, minWidths)
		if idx == -1 {
			break
		}
		widths[idx]--
		total--
	}
	return widths, minWidths
}

func sum(values []int) int {
	total := 0
	for _, v := range values {
		total += v
	}
	return total
}

func widestColumnAboveMin(widths, minWidths []int) int {
	idx := -1
	maxWidth := math.MinInt
	for i, width := range widths {
		if width > maxWidth && width > minWidths[i] {
			maxWidth = width
			idx = i
		}
	}
	return idx
}

func clamp(val, minVal, maxVal int) int {
	if val < minVal {
		return minVal
	}
	if val > maxVal {
		return maxVal
	}
	return val
}

// barSegment is one piece of the pagination bar. Interactive segments carry
// the region they bind once placed.
type barSegment struct {
	text     string
	disabled bool
	editing  bool
	region   *tablepkg.Region
}

const (
	barIndent = "  "
	barGap    = "  "
)

// paginationSegments lays out « ‹ Page X of Y › ». editView replaces the
// page number while the indicator is being edited.
func paginationSegments(s tablepkg.Snapshot, editView string) []barSegment {
	p := s.Pagination
	nav := func(label string, action tablepkg.NavAction) barSegment {
		seg := barSegment{text: label, disabled: !s.Nav.Enabled(action)}
		if !seg.disabled {
			seg.region = &tablepkg.Region{Kind: tablepkg.RegionNav, Action: action}
		}
		return seg
	}

	indicator := barSegment{
		text:   fmt.Sprintf("Page %d of %d", p.Page, p.TotalPages),
		region: &tablepkg.Region{Kind: tablepkg.RegionPageIndicator},
	}
	if s.EditingPage {
		indicator.text = fmt.Sprintf("Page %s of %d", editView, p.TotalPages)
		indicator.editing = true
	}

	return []barSegment{
		nav("«", tablepkg.NavFirst),
		nav("‹", tablepkg.NavPrev),
		indicator,
		nav("›", tablepkg.NavNext),
		nav("»", tablepkg.NavLast),
	}
}

// placeSegments assigns x offsets to the segments on line y and returns the
// regions of the live ones.
func placeSegments(segments []barSegment, y int) []tablepkg.Region {
	var regions []tablepkg.Region
	x := ansi.StringWidth(barIndent)
	for i, seg := range segments {
		if i > 0 {
			x += ansi.StringWidth(barGap)
		}
		w := ansi.StringWidth(seg.text)
		if seg.region != nil {
			r := *seg.region
			r.X, r.Y, r.Width, r.Height = x, y, w, 1
			regions = append(regions, r)
		}
		x += w
	}
	return regions
}

// rangeSummary describes the rows shown on the page, e.g. "Rows 26-50 of 120".
func rangeSummary(s tablepkg.Snapshot) string {
	total := s.Pagination.TotalRows
	if total == 0 {
		return "No rows"
	}
	first := s.FirstIndex + 1
	last := s.FirstIndex + len(s.Rows)
	return fmt.Sprintf("Rows %d-%d of %d", first, last, total)
}

func truncateWithEllipsis(s string, maxLen int) string {
	if maxLen <= 0 || ansi.StringWidth(s) <= maxLen {
		return s
	}
	return ansi.Truncate(s, maxLen, "…")
}
