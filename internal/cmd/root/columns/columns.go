package columns

import (
	"fmt"

	"github.com/segmentio/cli"
	"github.com/spf13/cobra"
	"sigs.k8s.io/yaml"

	"github.com/kong/tablectl/internal/cmd"
	"github.com/kong/tablectl/internal/cmd/common"
	"github.com/kong/tablectl/internal/cmd/output/markdown"
	"github.com/kong/tablectl/internal/cmd/output/tableview"
	"github.com/kong/tablectl/internal/meta"
	"github.com/kong/tablectl/internal/source"
	"github.com/kong/tablectl/internal/util/normalizers"
)

var (
	columnsUse   = "columns"
	columnsShort = "Describe the columns of a data file"
	columnsLong  = normalizers.LongDesc(`
		Print the columns detected in a data file together with their inferred
		type. The yaml output is a column spec that can be edited and passed back
		with --columns to relabel, reorder or format the table.`)
	columnsExamples = normalizers.Examples(fmt.Sprintf(`
		# Show the columns of a CSV file
		%[1]s columns --file products.csv
		# Start a column spec from the detected columns
		%[1]s columns --file products.csv -o yaml > columns.yaml
		%[1]s view --file products.csv --columns columns.yaml
		`, meta.CLIName))
)

// NewColumnsCmd creates the columns command.
func NewColumnsCmd() *cobra.Command {
	c := &cobra.Command{
		Use:     columnsUse,
		Short:   columnsShort,
		Long:    columnsLong,
		Example: columnsExamples,
		Aliases: []string{"cols"},
		Args:    cobra.NoArgs,
		RunE: func(c *cobra.Command, args []string) error {
			helper := cmd.BuildHelper(c, args)
			if err := validate(helper); err != nil {
				return err
			}
			return run(helper)
		},
	}
	cmd.AddSourceFlags(c)
	return c
}

func validate(helper cmd.Helper) error {
	outType, err := helper.GetOutputFormat()
	if err != nil {
		return err
	}
	if outType == common.HTML {
		return &cmd.ConfigurationError{
			Err: fmt.Errorf("%s columns does not support %s output", meta.CLIName, outType.String()),
		}
	}
	return nil
}

func run(helper cmd.Helper) error {
	outType, err := helper.GetOutputFormat()
	if err != nil {
		return err
	}
	ds, err := cmd.LoadDataset(helper)
	if err != nil {
		return err
	}
	specs := source.Describe(ds.Columns)
	out := helper.GetStreams().Out

	switch outType {
	case common.YAML:
		body, err := yaml.Marshal(map[string]any{"columns": specs})
		if err != nil {
			return cmd.PrepareExecutionErrorFromErr(helper, err)
		}
		_, err = out.Write(body)
		return err
	case common.TEXT:
		doc := fmt.Sprintf("## %s\n\n%d rows, %d columns\n\n%s",
			ds.Name, len(ds.Rows), len(specs), specTable(specs))
		_, err = fmt.Fprintln(out, markdown.Render(doc, markdown.Options{
			Plain: !tableview.IsTerminal(out),
		}))
		return err
	default:
		printer, err := cli.Format(outType.String(), out)
		if err != nil {
			return err
		}
		defer printer.Flush()
		printer.Print(specs)
		return nil
	}
}

func specTable(specs []source.ColumnSpec) string {
	rows := make([][]string, len(specs))
	for i, s := range specs {
		sortable := "yes"
		if s.Sortable != nil && !*s.Sortable {
			sortable = "no"
		}
		align := s.Align
		if align == "" {
			align = source.AlignLeft
		}
		rows[i] = []string{s.Key, s.Label, s.Type, sortable, align}
	}
	return markdown.Table([]string{"Key", "Label", "Type", "Sortable", "Align"}, rows)
}
