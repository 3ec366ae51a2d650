package view

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/kong/tablectl/internal/cmd"
	"github.com/kong/tablectl/internal/cmd/common"
	"github.com/kong/tablectl/internal/cmd/output/tableview"
	applog "github.com/kong/tablectl/internal/log"
	"github.com/kong/tablectl/internal/meta"
	"github.com/kong/tablectl/internal/util/normalizers"
)

var (
	viewUse   = "view"
	viewShort = "Browse a data file in an interactive table"
	viewLong  = normalizers.LongDesc(`
		Open a data file in a paginated, sortable table. Use the arrow keys or
		the pager buttons to move between pages, s to sort by the focused column,
		/ to filter rows and g to type a page number.

		When the output is not a terminal the selected page is printed once.`)
	viewExamples = normalizers.Examples(fmt.Sprintf(`
		# Browse a CSV file, 10 rows per page
		%[1]s view --file products.csv --rows-per-page 10
		# Start on page 3 of a SQLite query, sorted by name
		%[1]s view --sqlite shop.db --query 'select * from orders' --sort name --page 3
		# Only show rows matching a jq expression
		%[1]s view -f products.json --filter '.price > 10'
		`, meta.CLIName))
)

// NewViewCmd creates the interactive table browser.
func NewViewCmd() *cobra.Command {
	c := &cobra.Command{
		Use:     viewUse,
		Short:   viewShort,
		Long:    viewLong,
		Example: viewExamples,
		Aliases: []string{"v"},
		Args:    cobra.NoArgs,
		PreRunE: func(c *cobra.Command, args []string) error {
			helper := cmd.BuildHelper(c, args)
			cfg, err := helper.GetConfig()
			if err != nil {
				return err
			}
			return cmd.BindTableFlags(cfg, c.Flags())
		},
		RunE: func(c *cobra.Command, args []string) error {
			helper := cmd.BuildHelper(c, args)
			if err := validate(helper); err != nil {
				return err
			}
			return run(helper)
		},
	}

	cmd.AddSourceFlags(c)
	cmd.AddFilterFlags(c)
	cmd.AddTableFlags(c.Flags())

	return c
}

func validate(helper cmd.Helper) error {
	outType, err := helper.GetOutputFormat()
	if err != nil {
		return err
	}
	if outType != common.TEXT {
		return &cmd.ConfigurationError{
			Err: fmt.Errorf("%s view only supports text output, use %s render for %s",
				meta.CLIName, meta.CLIName, outType.String()),
		}
	}
	_, err = cmd.InitialPage(helper)
	return err
}

func run(helper cmd.Helper) error {
	cfg, err := helper.GetConfig()
	if err != nil {
		return err
	}
	logger, err := helper.GetLogger()
	if err != nil {
		return err
	}

	ds, err := cmd.LoadDataset(helper)
	if err != nil {
		return err
	}

	ctx := applog.WithViewLogContext(helper.GetContext(), applog.ViewLogContext{
		Source:     ds.Name,
		SourceKind: string(ds.Kind),
	})
	logger = applog.LoggerWithViewContext(ctx, logger)
	logger.Debug("loaded dataset", slog.Int("rows", len(ds.Rows)), slog.Int("columns", len(ds.Columns)))

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

	err = tableview.Render(helper.GetStreams(), ds.Columns, ds.Rows,
		tableview.WithTitle(ds.Name),
		tableview.WithFooter(footer(len(ds.Rows), ds.Name)),
		tableview.WithTableOptions(opts...),
		tableview.WithFilter(filter),
		tableview.WithInitialPage(page),
		tableview.WithLogger(logger),
	)
	return cmd.WrapTableError(helper, err, "source", ds.Name)
}

func footer(rows int, name string) string {
	if rows == 1 {
		return fmt.Sprintf("1 row loaded from %s", name)
	}
	return fmt.Sprintf("%d rows loaded from %s", rows, name)
}
