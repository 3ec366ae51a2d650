package render

import (
	"fmt"
	"log/slog"

	"github.com/segmentio/cli"
	"github.com/spf13/cobra"

	"github.com/kong/tablectl/internal/cmd"
	"github.com/kong/tablectl/internal/cmd/common"
	"github.com/kong/tablectl/internal/cmd/output/html"
	"github.com/kong/tablectl/internal/cmd/output/jq"
	"github.com/kong/tablectl/internal/cmd/output/tableview"
	"github.com/kong/tablectl/internal/meta"
	"github.com/kong/tablectl/internal/predicate"
	"github.com/kong/tablectl/internal/source"
	"github.com/kong/tablectl/internal/table"
	"github.com/kong/tablectl/internal/util/normalizers"
)

var (
	renderUse   = "render"
	renderShort = "Print one page of a table"
	renderLong  = normalizers.LongDesc(`
		Render loads a data file, applies the filter, sort and page settings and
		prints the selected page once. The text format draws the same table as the
		interactive view, html emits a self contained fragment and json or yaml
		describe the page with its rows.`)
	renderExample = normalizers.Examples(fmt.Sprintf(`
		# Print the second page of a CSV file sorted by price
		%[1]s render --file products.csv --sort price:desc --page 2
		# Emit an HTML fragment with custom class names
		%[1]s render --file products.csv -o html --css-prefix inventory
		# Extract the names on the first page
		%[1]s render --file products.csv -o json --jq '.rows[].name' -r
		`, meta.CLIName))
)

type sortOutput struct {
	Column    string `json:"column"    yaml:"column"`
	Direction string `json:"direction" yaml:"direction"`
}

type columnOutput struct {
	Key      string `json:"key"      yaml:"key"`
	Label    string `json:"label"    yaml:"label"`
	Type     string `json:"type"     yaml:"type"`
	Sortable bool   `json:"sortable" yaml:"sortable"`
}

type pageOutput struct {
	Page        int              `json:"page"           yaml:"page"`
	TotalPages  int              `json:"totalPages"     yaml:"totalPages"`
	RowsPerPage int              `json:"rowsPerPage"    yaml:"rowsPerPage"`
	TotalRows   int              `json:"totalRows"      yaml:"totalRows"`
	Sort        *sortOutput      `json:"sort,omitempty" yaml:"sort,omitempty"`
	Columns     []columnOutput   `json:"columns"        yaml:"columns"`
	Rows        []map[string]any `json:"rows"           yaml:"rows"`
}

// NewRenderCmd builds the render command.
func NewRenderCmd() *cobra.Command {
	rv := &cobra.Command{
		Use:     renderUse,
		Short:   renderShort,
		Long:    renderLong,
		Example: renderExample,
		Args:    cobra.NoArgs,
		PreRunE: func(c *cobra.Command, args []string) error {
			return bindFlags(cmd.BuildHelper(c, args))
		},
		RunE: func(c *cobra.Command, args []string) error {
			helper := cmd.BuildHelper(c, args)
			if err := validate(helper); err != nil {
				return err
			}
			return run(helper)
		},
	}

	cmd.AddSourceFlags(rv)
	cmd.AddFilterFlags(rv)
	cmd.AddTableFlags(rv.Flags())
	rv.Flags().String(common.CSSPrefixFlagName, table.DefaultClassPrefix,
		fmt.Sprintf(`Class name prefix of the html output.
- Config path: [ %s ]`, common.CSSPrefixConfigPath))
	jq.AddFlags(rv.Flags())

	return rv
}

func bindFlags(helper cmd.Helper) error {
	cfg, err := helper.GetConfig()
	if err != nil {
		return err
	}
	flags := helper.GetCmd().Flags()
	if err := cmd.BindTableFlags(cfg, flags); err != nil {
		return err
	}
	return jq.BindFlags(cfg, flags)
}

func validate(helper cmd.Helper) error {
	outType, err := helper.GetOutputFormat()
	if err != nil {
		return err
	}
	cfg, err := helper.GetConfig()
	if err != nil {
		return err
	}
	settings, err := jq.ResolveSettings(helper.GetCmd(), cfg)
	if err != nil {
		return err
	}
	if err := settings.Validate(outType); err != nil {
		return err
	}
	_, err = cmd.InitialPage(helper)
	return err
}

func run(helper cmd.Helper) error {
	outType, err := helper.GetOutputFormat()
	if err != nil {
		return err
	}
	cfg, err := helper.GetConfig()
	if err != nil {
		return err
	}
	logger, err := helper.GetLogger()
	if err != nil {
		return err
	}
	streams := helper.GetStreams()

	ds, err := cmd.LoadDataset(helper)
	if err != nil {
		return err
	}
	filter, err := cmd.CompileFilter(helper, ds.Columns)
	if err != nil {
		return err
	}
	page, err := cmd.InitialPage(helper)
	if err != nil {
		return err
	}
	opts, err := cmd.TableOptions(cfg, logger)
	if err != nil {
		return err
	}

	if outType == common.TEXT {
		err = tableview.Render(streams, ds.Columns, ds.Rows,
			tableview.WithStatic(),
			tableview.WithTitle(ds.Name),
			tableview.WithTableOptions(opts...),
			tableview.WithFilter(filter),
			tableview.WithInitialPage(page),
			tableview.WithLogger(logger),
		)
		return cmd.WrapTableError(helper, err)
	}

	if outType == common.HTML {
		mount := html.NewMount()
		tbl, err := newTable(mount, ds, opts, filter, page)
		if err != nil {
			return cmd.WrapTableError(helper, err)
		}
		defer func() { _ = tbl.Destroy() }()
		if err := mount.Err(); err != nil {
			return cmd.PrepareExecutionErrorFromErr(helper, err)
		}
		_, err = fmt.Fprint(streams.Out, mount.HTML())
		return err
	}

	tbl, err := newTable(table.MountFunc(func(table.Snapshot) table.Layout { return table.Layout{} }),
		ds, opts, filter, page)
	if err != nil {
		return cmd.WrapTableError(helper, err)
	}
	defer func() { _ = tbl.Destroy() }()

	payload, err := newPageOutput(tbl)
	if err != nil {
		return cmd.PrepareExecutionErrorFromErr(helper, err)
	}
	return printPage(helper, outType, payload, logger)
}

func printPage(helper cmd.Helper, outType common.OutputFormat, payload pageOutput, logger *slog.Logger) error {
	cfg, err := helper.GetConfig()
	if err != nil {
		return err
	}
	settings, err := jq.ResolveSettings(helper.GetCmd(), cfg)
	if err != nil {
		return err
	}
	out := helper.GetStreams().Out

	result, written, err := jq.Apply(payload, outType, settings, out)
	if err != nil {
		return err
	}
	if written {
		return nil
	}
	if settings.Enabled() {
		logger.Debug("applied jq expression", slog.String("expression", settings.Filter))
	}

	printer, err := cli.Format(outType.String(), out)
	if err != nil {
		return err
	}
	defer printer.Flush()
	printer.Print(result)
	return nil
}

// newTable builds a table over ds and moves it to the requested filter and page.
func newTable(mount table.Mount, ds *source.Dataset, opts []table.Option, filter table.Predicate, page int) (*table.Table, error) {
	tbl, err := table.New(mount, ds.Rows, ds.Columns, opts...)
	if err != nil {
		return nil, err
	}
	if filter != nil {
		if err := tbl.Filter(filter); err != nil {
			return nil, err
		}
	}
	if err := tbl.GoToPage(page); err != nil {
		return nil, err
	}
	return tbl, nil
}

func newPageOutput(tbl *table.Table) (pageOutput, error) {
	snapshot, err := tbl.Snapshot()
	if err != nil {
		return pageOutput{}, err
	}
	rows, err := tbl.VisibleData()
	if err != nil {
		return pageOutput{}, err
	}

	p := tbl.Pagination()
	columns := tbl.Columns()
	out := pageOutput{
		Page:        p.Page,
		TotalPages:  p.TotalPages,
		RowsPerPage: p.RowsPerPage,
		TotalRows:   p.TotalRows,
		Columns:     make([]columnOutput, len(columns)),
	}
	for i, col := range columns {
		out.Columns[i] = columnOutput{
			Key:      col.Key,
			Label:    col.Title(),
			Type:     col.Type.String(),
			Sortable: snapshot.Columns[i].Sortable,
		}
	}
	if spec := tbl.SortSpec(); spec.Active() {
		dir := "descending"
		if spec.Ascending {
			dir = "ascending"
		}
		out.Sort = &sortOutput{Column: spec.Column, Direction: dir}
	}

	out.Rows = make([]map[string]any, len(rows))
	for i, row := range rows {
		obj := row.Object(columns)
		for k, v := range obj {
			obj[k] = predicate.Normalize(v)
		}
		out.Rows[i] = obj
	}
	return out, nil
}
