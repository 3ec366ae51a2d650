package profile

import (
	"errors"
	"fmt"

	"github.com/segmentio/cli"
	"github.com/spf13/cast"
	"github.com/spf13/cobra"

	"github.com/kong/tablectl/internal/cmd"
	"github.com/kong/tablectl/internal/cmd/common"
	"github.com/kong/tablectl/internal/cmd/output/tableview"
	"github.com/kong/tablectl/internal/config"
	"github.com/kong/tablectl/internal/meta"
	"github.com/kong/tablectl/internal/profile"
	"github.com/kong/tablectl/internal/table"
	"github.com/kong/tablectl/internal/util/normalizers"
)

var (
	profileUse   = "profiles"
	profileShort = "List and create configuration profiles"
	profileLong  = normalizers.LongDesc(`
		Profiles group table settings, output format and logging options in the
		configuration file. Without arguments the profiles are listed with the
		table settings they define.`)
	profileExamples = normalizers.Examples(fmt.Sprintf(`
		# List the profiles of the default configuration file
		%[1]s profiles
		# Create a profile and use it
		%[1]s profiles create reports
		%[1]s render -p reports --file sales.csv
		`, meta.CLIName))
)

type profileOutput struct {
	Name        string `json:"name"        yaml:"name"`
	Active      bool   `json:"active"      yaml:"active"`
	Output      string `json:"output"      yaml:"output"`
	RowsPerPage int    `json:"rowsPerPage" yaml:"rowsPerPage"`
	Sort        string `json:"sort"        yaml:"sort"`
	FilterLang  string `json:"filterLang"  yaml:"filterLang"`
}

var profileColumns = []table.Column{
	{Key: "name", Label: "Profile"},
	{Key: "output", Label: "Output"},
	{Key: "rows-per-page", Label: "Rows/Page", Type: table.TypeNumber, Flags: table.ColumnAlignRight},
	{Key: "sort", Label: "Sort"},
	{Key: "filter-lang", Label: "Filter"},
}

func NewProfileCmd() *cobra.Command {
	rv := &cobra.Command{
		Use:     profileUse,
		Short:   profileShort,
		Long:    profileLong,
		Example: profileExamples,
		Aliases: []string{"profile"},
		Args:    cobra.NoArgs,
		RunE: func(c *cobra.Command, args []string) error {
			helper := cmd.BuildHelper(c, args)
			m, err := managerFrom(c)
			if err != nil {
				return err
			}
			return runList(helper, m)
		},
	}
	rv.AddCommand(newCreateCmd())
	return rv
}

func newCreateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create NAME",
		Short: "Create a profile with the default table settings",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			helper := cmd.BuildHelper(c, args)
			m, err := managerFrom(c)
			if err != nil {
				return err
			}
			return runCreate(helper, m, args[0])
		},
	}
}

func managerFrom(c *cobra.Command) (profile.Manager, error) {
	m, ok := c.Context().Value(profile.ProfileManagerKey).(profile.Manager)
	if !ok || m == nil {
		return nil, errors.New("no profile manager found in context")
	}
	return m, nil
}

func runList(helper cmd.Helper, m profile.Manager) error {
	outType, err := helper.GetOutputFormat()
	if err != nil {
		return err
	}
	cfg, err := helper.GetConfig()
	if err != nil {
		return err
	}

	var outputs []profileOutput
	for _, name := range m.GetProfiles() {
		values, err := m.GetProfile(name)
		if err != nil {
			return cmd.PrepareExecutionErrorFromErr(helper, err, "profile", name)
		}
		outputs = append(outputs, newProfileOutput(name, name == cfg.GetProfile(), values))
	}

	switch outType {
	case common.JSON, common.YAML:
		p, err := cli.Format(outType.String(), helper.GetStreams().Out)
		if err != nil {
			return err
		}
		defer p.Flush()
		p.Print(outputs)
		return nil
	case common.HTML:
		return &cmd.ConfigurationError{Err: fmt.Errorf("%s does not support html output", profileUse)}
	}

	rows := make([]table.Row, len(outputs))
	for i, o := range outputs {
		name := o.Name
		if o.Active {
			name = "*" + name
		}
		rows[i] = table.Row{name, o.Output, o.RowsPerPage, o.Sort, o.FilterLang}
	}
	logger, err := helper.GetLogger()
	if err != nil {
		return err
	}
	return tableview.Render(helper.GetStreams(), profileColumns, rows,
		tableview.WithStatic(),
		tableview.WithTitle("Profiles"),
		tableview.WithTableOptions(table.WithPagination(false)),
		tableview.WithLogger(logger),
	)
}

func newProfileOutput(name string, active bool, values map[string]any) profileOutput {
	tableValues := cast.ToStringMap(values["table"])
	out := profileOutput{
		Name:        name,
		Active:      active,
		Output:      cast.ToString(values[common.OutputConfigPath]),
		RowsPerPage: cast.ToInt(tableValues[common.RowsPerPageFlagName]),
		Sort:        cast.ToString(tableValues[common.SortFlagName]),
		FilterLang:  cast.ToString(tableValues[common.FilterLangFlagName]),
	}
	if out.Output == "" {
		out.Output = common.DefaultOutputFormat
	}
	if out.RowsPerPage <= 0 {
		out.RowsPerPage = common.DefaultRowsPerPage
	}
	if out.FilterLang == "" {
		out.FilterLang = common.DefaultFilterLang
	}
	return out
}

func runCreate(helper cmd.Helper, m profile.Manager, name string) error {
	cfg, err := helper.GetConfig()
	if err != nil {
		return err
	}
	err = m.CreateProfile(name, map[string]any{
		common.OutputConfigPath: common.DefaultOutputFormat,
		"table":                 config.DefaultTableSettings(),
	})
	if errors.Is(err, profile.ErrProfileExists) || errors.Is(err, profile.ErrProfileNameEmpty) {
		return &cmd.ConfigurationError{Err: fmt.Errorf("%w: %q", err, name)}
	}
	if err != nil {
		return cmd.PrepareExecutionErrorFromErr(helper, err, "profile", name)
	}
	if err := cfg.Save(); err != nil {
		return cmd.PrepareExecutionError("failed to save configuration", err, helper.GetCmd(), "path", cfg.GetPath())
	}
	_, err = fmt.Fprintf(helper.GetStreams().Out, "created profile %s in %s\n", name, cfg.GetPath())
	return err
}
