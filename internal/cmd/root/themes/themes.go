package themes

import (
	"errors"
	"io"
	"strings"

	"github.com/segmentio/cli"
	"github.com/spf13/cobra"

	"github.com/kong/tablectl/internal/cmd"
	cmdcommon "github.com/kong/tablectl/internal/cmd/common"
	"github.com/kong/tablectl/internal/cmd/output/jq"
	"github.com/kong/tablectl/internal/cmd/output/tableview"
	"github.com/kong/tablectl/internal/config"
	"github.com/kong/tablectl/internal/table"
	"github.com/kong/tablectl/internal/theme"
	"github.com/kong/tablectl/internal/util/normalizers"
)

// NewThemesCmd creates the command listing the color themes.
func NewThemesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "themes",
		Short: "List available color themes",
		Long: normalizers.LongDesc(`Display all registered color themes and a small sample
of their palette. The active theme is marked with an asterisk.`),
		Args: cobra.NoArgs,
		RunE: func(c *cobra.Command, args []string) error {
			return runListThemes(cmd.BuildHelper(c, args))
		},
	}
}

type themeOutput struct {
	ID        string `json:"id"              yaml:"id"`
	Name      string `json:"name"            yaml:"name"`
	Active    bool   `json:"active"          yaml:"active"`
	Primary   string `json:"primary"         yaml:"primary"`
	Secondary string `json:"secondary"       yaml:"secondary"`
	About     string `json:"about,omitempty" yaml:"about,omitempty"`
}

var themeColumns = []table.Column{
	{Key: "id", Label: "ID"},
	{Key: "name", Label: "Name"},
	{Key: "primary", Label: "Primary", Flags: table.ColumnNoSort},
	{Key: "secondary", Label: "Secondary", Flags: table.ColumnNoSort},
	{Key: "about", Label: "About", Flags: table.ColumnNoSort},
}

func runListThemes(helper cmd.Helper) error {
	streams := helper.GetStreams()
	cfg, err := helper.GetConfig()
	if err != nil {
		return err
	}
	outFormat, err := helper.GetOutputFormat()
	if err != nil {
		return err
	}

	outputs := buildThemeOutputs(activeThemeName(helper, cfg))

	switch outFormat {
	case cmdcommon.JSON, cmdcommon.YAML:
		printer, err := cli.Format(outFormat.String(), streams.Out)
		if err != nil {
			return err
		}
		defer printer.Flush()
		printer.Print(outputs)
		return nil
	case cmdcommon.HTML:
		return &cmd.ConfigurationError{Err: errHTMLUnsupported}
	}

	useColor := shouldRenderColor(cfg, streams.Out)
	rows := make([]table.Row, len(outputs))
	for i, o := range outputs {
		pal, _ := theme.Get(o.ID)
		id := o.ID
		if o.Active {
			id = "*" + id
		}
		rows[i] = table.Row{
			id,
			o.Name,
			renderSample(pal, theme.ColorPrimary, o.Primary, useColor),
			renderSample(pal, theme.ColorAccent, o.Secondary, useColor),
			o.About,
		}
	}

	logger, err := helper.GetLogger()
	if err != nil {
		return err
	}
	opts := []tableview.Option{
		tableview.WithStatic(),
		tableview.WithTitle("Available Themes"),
		tableview.WithTableOptions(table.WithPagination(false)),
		tableview.WithLogger(logger),
	}
	if !theme.IsConfiguredExplicitly() {
		opts = append(opts, tableview.WithFooter(
			"Theme detected from the terminal background, set --color-theme to override"))
	}
	return tableview.Render(streams, themeColumns, rows, opts...)
}

var errHTMLUnsupported = errors.New("themes does not support html output")

func shouldRenderColor(cfg config.Hook, out io.Writer) bool {
	modeStr := strings.ToLower(strings.TrimSpace(cfg.GetString(cmdcommon.ColorConfigPath)))
	mode, err := cmdcommon.ColorModeStringToIota(modeStr)
	if err != nil {
		mode = cmdcommon.ColorModeAuto
	}
	return jq.ShouldUseColor(mode, out)
}

func activeThemeName(helper cmd.Helper, cfg config.Hook) string {
	name := strings.ToLower(strings.TrimSpace(cfg.GetString(cmdcommon.ColorThemeConfigPath)))
	if name == "" {
		name = theme.FromContext(helper.GetContext()).Name
	}
	return name
}

func buildThemeOutputs(activeName string) []themeOutput {
	ids := theme.Available()
	names := theme.AvailableDisplayNames()
	outputs := make([]themeOutput, 0, len(ids))
	for _, id := range ids {
		pal, ok := theme.Get(id)
		if !ok {
			continue
		}
		name := strings.TrimSpace(names[id])
		if name == "" {
			name = pal.Name
		}
		outputs = append(outputs, themeOutput{
			ID:        pal.Name,
			Name:      name,
			Active:    strings.EqualFold(pal.Name, activeName),
			Primary:   pal.Color(theme.ColorPrimary).Light,
			Secondary: pal.Color(theme.ColorAccent).Light,
			About:     strings.TrimSpace(pal.About),
		})
	}
	return outputs
}

func renderSample(p theme.Palette, token theme.Token, hex string, useColor bool) string {
	if !useColor {
		return hex
	}
	const blockWidth = 3
	return p.BackgroundStyle(token).Render(strings.Repeat(" ", blockWidth)) + " " + hex
}
