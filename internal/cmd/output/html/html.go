// Package html draws table pages as self-contained HTML fragments. Class
// names are derived from the table's class prefix so several tables can be
// styled independently on one page.
package html

import (
	"bytes"
	"html/template"
	"io"

	"github.com/Masterminds/sprig/v3"

	"github.com/kong/tablectl/internal/table"
)

const fragment = `<div class="{{ .ClassPrefix }}" id="{{ .ClassPrefix }}-{{ .TableID | trunc 8 }}">
  <table class="{{ .ClassPrefix }}__table">
    <thead>
      <tr class="{{ .ClassPrefix }}__header">
      {{- range .Columns }}
        <th {{ headerAttrs $.ClassPrefix . }}>{{ .Label }}{{ sortMark .Direction }}</th>
      {{- end }}
      </tr>
    </thead>
    <tbody>
    {{- range $i, $cells := .Cells }}
      <tr class="{{ $.ClassPrefix }}__row" data-index="{{ add $.FirstIndex $i }}">
      {{- range $j, $cell := $cells }}
        <td class="{{ $.ClassPrefix }}__cell{{ if (index $.Columns $j).AlignRight }} {{ $.ClassPrefix }}__cell--right{{ end }}">{{ $cell }}</td>
      {{- end }}
      </tr>
    {{- else }}
      <tr class="{{ $.ClassPrefix }}__empty">
        <td colspan="{{ len $.Columns }}">{{ $.EmptyMessage }}</td>
      </tr>
    {{- end }}
    </tbody>
  </table>
  {{- if .ShowPagination }}
  <nav class="{{ .ClassPrefix }}__pagination">
    {{ navButton .ClassPrefix "first" "«" .Nav.First }}
    {{ navButton .ClassPrefix "prev" "‹" .Nav.Prev }}
    {{- if .EditingPage }}
    <span class="{{ .ClassPrefix }}__page">Page <input class="{{ .ClassPrefix }}__page-input" type="number" min="1" max="{{ .Pagination.TotalPages }}" value="{{ .EditBuffer }}"> of {{ .Pagination.TotalPages }}</span>
    {{- else }}
    <span class="{{ .ClassPrefix }}__page">Page {{ .Pagination.Page }} of {{ .Pagination.TotalPages }}</span>
    {{- end }}
    {{ navButton .ClassPrefix "next" "›" .Nav.Next }}
    {{ navButton .ClassPrefix "last" "»" .Nav.Last }}
  </nav>
  {{- end }}
</div>
`

var fragmentTemplate = template.Must(template.New("table").
	Funcs(sprig.HtmlFuncMap()).
	Funcs(template.FuncMap{
		"headerAttrs": headerAttrs,
		"sortMark":    sortMark,
		"navButton":   navButton,
	}).
	Parse(fragment))

// headerAttrs renders the attributes of a column header cell.
func headerAttrs(prefix string, col table.ColumnView) template.HTMLAttr {
	var b bytes.Buffer
	b.WriteString(`class="`)
	template.HTMLEscape(&b, []byte(prefix+"__column"))
	if col.Sortable {
		b.WriteByte(' ')
		template.HTMLEscape(&b, []byte(prefix+"__column--sortable"))
	}
	switch col.Direction {
	case table.SortAscending:
		b.WriteByte(' ')
		template.HTMLEscape(&b, []byte(prefix+"--sorted-asc"))
	case table.SortDescending:
		b.WriteByte(' ')
		template.HTMLEscape(&b, []byte(prefix+"--sorted-desc"))
	}
	b.WriteString(`" data-key="`)
	template.HTMLEscape(&b, []byte(col.Key))
	b.WriteString(`" data-type="`)
	template.HTMLEscape(&b, []byte(col.Type))
	b.WriteByte('"')
	if col.Sortable {
		b.WriteString(` role="button"`)
	}
	return template.HTMLAttr(b.String()) //nolint:gosec // every value is escaped above
}

func sortMark(dir table.SortDirection) string {
	switch dir {
	case table.SortAscending:
		return " ▲"
	case table.SortDescending:
		return " ▼"
	default:
		return ""
	}
}

func navButton(prefix, action, label string, enabled bool) template.HTML {
	var b bytes.Buffer
	b.WriteString(`<button type="button" class="`)
	template.HTMLEscape(&b, []byte(prefix+"__nav"))
	b.WriteString(`" data-action="`)
	template.HTMLEscape(&b, []byte(action))
	b.WriteByte('"')
	if !enabled {
		b.WriteString(" disabled")
	}
	b.WriteByte('>')
	template.HTMLEscape(&b, []byte(label))
	b.WriteString("</button>")
	return template.HTML(b.String()) //nolint:gosec // every value is escaped above
}

// Mount renders every snapshot it is handed. It reports no hit regions;
// interaction is left to the page embedding the fragment.
type Mount struct {
	html string
	err  error
}

// NewMount returns an empty Mount.
func NewMount() *Mount {
	return &Mount{}
}

// Draw implements table.Mount.
func (m *Mount) Draw(s table.Snapshot) table.Layout {
	var buf bytes.Buffer
	if err := Write(&buf, s); err != nil {
		m.err = err
		return table.Layout{}
	}
	m.html, m.err = buf.String(), nil
	return table.Layout{}
}

// Detach implements table.Detacher.
func (m *Mount) Detach() {
	m.html = ""
}

// HTML returns the fragment of the last drawing.
func (m *Mount) HTML() string {
	return m.html
}

// Err returns the error of the last drawing, if any.
func (m *Mount) Err() error {
	return m.err
}

// Write renders s as an HTML fragment to w.
func Write(w io.Writer, s table.Snapshot) error {
	return fragmentTemplate.Execute(w, s)
}
