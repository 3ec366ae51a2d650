package source

import (
	"fmt"
	"os"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"
	"sigs.k8s.io/yaml"

	errpkg "github.com/kong/tablectl/internal/err"
	"github.com/kong/tablectl/internal/table"
	"github.com/kong/tablectl/internal/util"
)

const (
	AlignLeft  = "left"
	AlignRight = "right"
)

// ColumnSpec describes one column in a column spec file. Format is a
// text/template executed with .Value (the cell) and .Row (the row keyed by
// column) and the sprig function library.
type ColumnSpec struct {
	Key      string `json:"key" yaml:"key"`
	Label    string `json:"label,omitempty" yaml:"label,omitempty"`
	Type     string `json:"type,omitempty" yaml:"type,omitempty"`
	Sortable *bool  `json:"sortable,omitempty" yaml:"sortable,omitempty"`
	Width    int    `json:"width,omitempty" yaml:"width,omitempty"`
	Align    string `json:"align,omitempty" yaml:"align,omitempty"`
	Format   string `json:"format,omitempty" yaml:"format,omitempty"`
}

// Spec is the content of a column spec file. Defaults fill the unset fields
// of every column.
type Spec struct {
	Defaults ColumnSpec   `json:"defaults,omitempty" yaml:"defaults,omitempty"`
	Columns  []ColumnSpec `json:"columns" yaml:"columns"`
}

// ReadSpecFile loads a YAML or JSON column spec file.
func ReadSpecFile(path string) (*Spec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read column spec: %w", err)
	}
	spec, err := ParseSpec(data)
	if err != nil {
		return nil, fmt.Errorf("invalid column spec %q: %w", path, err)
	}
	return spec, nil
}

// ParseSpec decodes a column spec document and applies its defaults.
// Unknown fields are rejected.
func ParseSpec(data []byte) (*Spec, error) {
	var spec Spec
	if err := yaml.UnmarshalStrict(data, &spec); err != nil {
		return nil, err
	}
	if len(spec.Columns) == 0 {
		return nil, fmt.Errorf("no columns defined")
	}
	defaults := spec.Defaults
	defaults.Key = ""
	for i := range spec.Columns {
		if err := util.ApplyDefaults(defaults, &spec.Columns[i]); err != nil {
			return nil, err
		}
	}
	return &spec, nil
}

// Apply projects the dataset onto the columns of spec, in spec order.
// Every invalid column is reported.
func (d *Dataset) Apply(spec *Spec) error {
	bucket := &errpkg.ErrorsBucket{Msg: "invalid column spec:"}

	columns := make([]table.Column, 0, len(spec.Columns))
	positions := make([]int, 0, len(spec.Columns))
	formats := make([]string, 0, len(spec.Columns))
	for _, cs := range spec.Columns {
		pos := d.lookup(cs.Key)
		if pos < 0 {
			bucket.Add(fmt.Errorf("column %q not found in %s", cs.Key, d.Name))
			continue
		}
		col, err := cs.apply(d.Columns[pos])
		if err != nil {
			bucket.Add(err)
			continue
		}
		columns = append(columns, col)
		positions = append(positions, pos)
		formats = append(formats, cs.Format)
	}

	for i, format := range formats {
		if format == "" {
			continue
		}
		fn, err := templateFormatter(columns[i].Key, format, columns)
		if err != nil {
			bucket.Add(err)
			continue
		}
		columns[i].Formatter = fn
	}
	if err := bucket.ErrOrNil(); err != nil {
		return err
	}

	for i, pos := range positions {
		if columns[i].Type != d.Columns[pos].Type {
			convertColumn(d.Rows, pos, columns[i].Type)
		}
	}
	for i, row := range d.Rows {
		projected := make(table.Row, len(positions))
		for j, pos := range positions {
			projected[j] = row.Value(pos)
		}
		d.Rows[i] = projected
	}
	d.Columns = columns
	return nil
}

// lookup finds a column by key, label or the slug of either.
func (d *Dataset) lookup(key string) int {
	key = strings.TrimSpace(key)
	slug := util.GenerateSlug(key)
	for i, col := range d.Columns {
		if col.Key == key || col.Label == key {
			return i
		}
	}
	for i, col := range d.Columns {
		if col.Key == slug {
			return i
		}
	}
	return -1
}

// apply overrides the presentation of col. The column keeps its key so
// format templates can rely on it.
func (cs ColumnSpec) apply(col table.Column) (table.Column, error) {
	if cs.Label != "" {
		col.Label = cs.Label
	}
	if cs.Type != "" {
		typ, err := table.ParseValueType(cs.Type)
		if err != nil {
			return col, fmt.Errorf("column %q: %w", cs.Key, err)
		}
		if typ != col.Type {
			col.Flags &^= table.ColumnAlignRight
			if typ == table.TypeNumber {
				col.Flags |= table.ColumnAlignRight
			}
		}
		col.Type = typ
	}
	if cs.Sortable != nil {
		col.Flags &^= table.ColumnNoSort
		if !*cs.Sortable {
			col.Flags |= table.ColumnNoSort
		}
	}
	if cs.Width < 0 {
		return col, fmt.Errorf("column %q: width must not be negative, got %d", cs.Key, cs.Width)
	}
	col.Width = cs.Width
	switch strings.ToLower(strings.TrimSpace(cs.Align)) {
	case "":
	case AlignLeft:
		col.Flags &^= table.ColumnAlignRight
	case AlignRight:
		col.Flags |= table.ColumnAlignRight
	default:
		return col, fmt.Errorf("column %q: invalid align %q, must be one of %v",
			cs.Key, cs.Align, []string{AlignLeft, AlignRight})
	}
	return col, nil
}

// templateFormatter compiles format into a cell formatter. Execution errors
// fall back to the plain value.
func templateFormatter(key, format string, columns []table.Column) (table.Formatter, error) {
	tmpl, err := template.New(key).
		Funcs(sprig.TxtFuncMap()).
		Option("missingkey=zero").
		Parse(format)
	if err != nil {
		return nil, fmt.Errorf("column %q: invalid format: %w", key, err)
	}
	return func(value any, row table.Row) string {
		var sb strings.Builder
		data := map[string]any{
			"Value": value,
			"Row":   row.Object(columns),
		}
		if err := tmpl.Execute(&sb, data); err != nil {
			if value == nil {
				return ""
			}
			return fmt.Sprint(value)
		}
		return sb.String()
	}, nil
}

// Describe converts column descriptors back into spec entries.
func Describe(columns []table.Column) []ColumnSpec {
	specs := make([]ColumnSpec, len(columns))
	for i, col := range columns {
		sortable := col.Sortable()
		cs := ColumnSpec{
			Key:      col.Key,
			Label:    col.Title(),
			Type:     col.Type.String(),
			Sortable: &sortable,
			Width:    col.Width,
			Align:    AlignLeft,
		}
		if col.AlignRight() {
			cs.Align = AlignRight
		}
		specs[i] = cs
	}
	return specs
}
