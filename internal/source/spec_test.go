package source

import (
	"testing"

	"github.com/stretchr/testify/require"

	errpkg "github.com/kong/tablectl/internal/err"
	"github.com/kong/tablectl/internal/table"
)

func sampleDataset() *Dataset {
	f := &frame{
		fields: []field{{name: "Name"}, {name: "Price"}, {name: "Qty"}},
		rows: []table.Row{
			{"widget", "9.5", "3"},
			{"gadget", "12", "1"},
		},
	}
	return &Dataset{Name: "sample", Columns: describe(f), Rows: f.rows}
}

func TestParseSpecAppliesDefaults(t *testing.T) {
	spec, err := ParseSpec([]byte(`
defaults:
  align: right
  sortable: false
columns:
  - key: name
    align: left
  - key: price
    sortable: true
    width: 8
`))
	require.NoError(t, err)
	require.Len(t, spec.Columns, 2)

	require.Equal(t, AlignLeft, spec.Columns[0].Align)
	require.NotNil(t, spec.Columns[0].Sortable)
	require.False(t, *spec.Columns[0].Sortable)

	require.Equal(t, AlignRight, spec.Columns[1].Align)
	require.True(t, *spec.Columns[1].Sortable)
	require.Equal(t, 8, spec.Columns[1].Width)
}

func TestParseSpecRejectsUnknownFields(t *testing.T) {
	_, err := ParseSpec([]byte(`{"columns": [{"key": "a", "colour": "red"}]}`))
	require.Error(t, err)

	_, err = ParseSpec([]byte(`columns: []`))
	require.ErrorContains(t, err, "no columns")
}

func TestApplyProjectsAndOverrides(t *testing.T) {
	ds := sampleDataset()
	spec, err := ParseSpec([]byte(`
columns:
  - key: Qty
    label: Quantity
    sortable: false
  - key: name
    format: '{{ .Value | upper }} x{{ .Row.qty }}'
`))
	require.NoError(t, err)

	require.NoError(t, ds.Apply(spec))

	require.Equal(t, []string{"qty", "name"}, keys(ds.Columns))
	require.Equal(t, "Quantity", ds.Columns[0].Title())
	require.False(t, ds.Columns[0].Sortable())
	require.True(t, ds.Columns[0].AlignRight())
	requireRows(t, []table.Row{{3.0, "widget"}, {1.0, "gadget"}}, ds.Rows)
	require.Equal(t, "WIDGET x3", ds.Columns[1].Format(ds.Rows[0], 1))
}

func TestApplyConvertsOnTypeChange(t *testing.T) {
	ds := &Dataset{
		Name:    "codes",
		Columns: []table.Column{{Key: "code", Type: table.TypeString}},
		Rows:    []table.Row{{"10"}, {"9"}},
	}
	spec := &Spec{Columns: []ColumnSpec{{Key: "code", Type: "number"}}}

	require.NoError(t, ds.Apply(spec))
	require.Equal(t, table.TypeNumber, ds.Columns[0].Type)
	require.True(t, ds.Columns[0].AlignRight())
	requireRows(t, []table.Row{{10.0}, {9.0}}, ds.Rows)
}

func TestApplyCollectsEveryError(t *testing.T) {
	ds := sampleDataset()
	spec := &Spec{Columns: []ColumnSpec{
		{Key: "missing"},
		{Key: "name", Type: "uuid"},
		{Key: "price", Align: "centre"},
		{Key: "qty", Format: "{{ .Value "},
	}}

	err := ds.Apply(spec)
	require.Error(t, err)

	var bucket *errpkg.ErrorsBucket
	require.ErrorAs(t, err, &bucket)
	require.Len(t, bucket.Errors, 4)

	require.Equal(t, []string{"name", "price", "qty"}, keys(ds.Columns), "dataset is untouched on error")
}

func TestDescribeRoundTripsColumnFlags(t *testing.T) {
	ds := sampleDataset()
	ds.Columns[0].Flags |= table.ColumnNoSort

	specs := Describe(ds.Columns)

	require.Len(t, specs, 3)
	require.Equal(t, "Name", specs[0].Label)
	require.False(t, *specs[0].Sortable)
	require.Equal(t, "string", specs[0].Type)
	require.Equal(t, AlignRight, specs[1].Align)
	require.Equal(t, "number", specs[1].Type)
}
