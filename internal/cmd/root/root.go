package root

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/muesli/termenv"
	"github.com/segmentio/cli"
	"github.com/spf13/cobra"

	"github.com/kong/tablectl/internal/build"
	"github.com/kong/tablectl/internal/cmd"
	"github.com/kong/tablectl/internal/cmd/common"
	"github.com/kong/tablectl/internal/cmd/root/columns"
	profilecmd "github.com/kong/tablectl/internal/cmd/root/profile"
	"github.com/kong/tablectl/internal/cmd/root/render"
	"github.com/kong/tablectl/internal/cmd/root/themes"
	"github.com/kong/tablectl/internal/cmd/root/version"
	"github.com/kong/tablectl/internal/cmd/root/view"
	"github.com/kong/tablectl/internal/config"
	"github.com/kong/tablectl/internal/iostreams"
	applog "github.com/kong/tablectl/internal/log"
	"github.com/kong/tablectl/internal/meta"
	"github.com/kong/tablectl/internal/profile"
	"github.com/kong/tablectl/internal/theme"
	"github.com/kong/tablectl/internal/util"
	"github.com/kong/tablectl/internal/util/normalizers"
)

var (
	rootLong = normalizers.LongDesc(`
		tablectl browses tabular data in the terminal. CSV, TSV, JSON, YAML,
		Arrow IPC and SQLite sources are shown in a paginated table that can be
		sorted by clicking a header and filtered with jq or JMESPath expressions.

		Pages can also be rendered once as text, JSON, YAML or an HTML fragment.`)

	rootShort = fmt.Sprintf("%s shows data files as sortable, paginated tables", meta.CLIName)

	rootCmd *cobra.Command

	// Stores the global runtime value for the Configuration file path,
	configFilePath        string
	defaultConfigFilePath string
	currProfile           = profile.DefaultProfile

	currConfig   *config.ProfiledConfig
	streams      *iostreams.IOStreams
	pMgr         profile.Manager
	outputFormat = cmd.NewEnum([]string{"json", "yaml", "text", "html"}, common.DefaultOutputFormat)
	logLevel     = cmd.NewEnum([]string{"trace", "debug", "info", "warn", "error"}, common.DefaultLogLevel)
	colorMode    = cmd.NewEnum([]string{"auto", "always", "never"}, common.DefaultColorMode)
	colorTheme   = theme.NewFlag(common.DefaultColorTheme)

	logFile      *os.File
	activeLogger *slog.Logger
	buildInfo    *build.Info
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           meta.CLIName,
		Short:         rootShort,
		Long:          rootLong,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(c *cobra.Command, _ []string) error {
			logger, err := newLogger()
			if err != nil {
				return err
			}
			if err := applyTheme(); err != nil {
				return err
			}

			ctx := context.WithValue(c.Context(), config.ConfigKey, config.Hook(currConfig))
			ctx = context.WithValue(ctx, iostreams.StreamsKey, streams)
			ctx = context.WithValue(ctx, profile.ProfileManagerKey, pMgr)
			ctx = context.WithValue(ctx, build.InfoKey, buildInfo)
			ctx = theme.ContextWithPalette(ctx, theme.Current())
			ctx = applog.WithViewLogContext(ctx, applog.ViewLogContext{
				CommandPath: c.CommandPath(),
				Profile:     currProfile,
			})
			activeLogger = applog.LoggerWithViewContext(ctx, logger)
			ctx = context.WithValue(ctx, applog.LoggerKey, activeLogger)
			c.SetContext(ctx)
			return nil
		},
	}

	// parses all flags not just the target command
	rootCmd.TraverseChildren = true

	rootCmd.PersistentFlags().StringVar(&configFilePath, common.ConfigFilePathFlagName,
		defaultConfigFilePath, "Path to the configuration file to load.")

	rootCmd.PersistentFlags().StringVarP(&currProfile, common.ProfileFlagName, common.ProfileFlagShort,
		profile.DefaultProfile,
		fmt.Sprintf(`Specify the profile to use for this command.
- Env: [ %s_PROFILE ]`, meta.EnvPrefix))

	// -------------------------------------------------------------------------
	// Enum flags are validated by pflag when parsed, config values are
	// validated again when the command helper reads them.
	rootCmd.PersistentFlags().VarP(outputFormat, common.OutputFlagName, common.OutputFlagShort,
		fmt.Sprintf(`Configures the output format.
- Config path: [ %s ]
- Allowed    : [ %s ]`,
			common.OutputConfigPath, strings.Join(outputFormat.Allowed, "|")))

	rootCmd.PersistentFlags().Var(logLevel, common.LogLevelFlagName,
		fmt.Sprintf(`Configures the logging level. Execution logs are written to the log file.
- Config path: [ %s ]
- Allowed    : [ %s ]`,
			common.LogLevelConfigPath, strings.Join(logLevel.Allowed, "|")))
	// -------------------------------------------------------------------------

	rootCmd.PersistentFlags().String(common.LogFileFlagName, "",
		fmt.Sprintf(`Write execution logs to the specified file instead of STDERR.
- Config path: [ %s ]`, common.LogFileConfigPath))

	rootCmd.PersistentFlags().Var(colorTheme, common.ColorThemeFlagName,
		fmt.Sprintf(`Configures the color theme of the table views.
- Config path: [ %s ]
- Allowed    : [ %s ]`,
			common.ColorThemeConfigPath, strings.Join(theme.Available(), "|")))

	rootCmd.PersistentFlags().Var(colorMode, common.ColorFlagName,
		fmt.Sprintf(`Controls colored output of jq results and theme samples.
- Config path: [ %s ]
- Allowed    : [ %s ]`,
			common.ColorConfigPath, strings.Join(colorMode.Allowed, "|")))

	return rootCmd
}

// addCommands adds the root subcommands to the command.
func addCommands() {
	rootCmd.AddCommand(
		view.NewViewCmd(),
		render.NewRenderCmd(),
		columns.NewColumnsCmd(),
		themes.NewThemesCmd(),
		profilecmd.NewProfileCmd(),
		version.NewVersionCmd(),
	)
}

func init() {
	var err error
	defaultConfigFilePath, err = config.GetDefaultConfigFilePath()
	util.CheckError(err)
	configFilePath = defaultConfigFilePath

	cobra.OnInitialize(initConfig)
	rootCmd = newRootCmd()
	addCommands()

	// Because the profile is not part of the configuration, we can't use viper
	// to read it following it's built in priorities.  So here we look for a well known
	// profile variable and set our package level variable if it's set before
	// continuing to process the command run.  This creates a ENV_VAR < CLI_FLAG priority
	profileEnvVar, found := os.LookupEnv(fmt.Sprintf("%s_PROFILE", meta.EnvPrefix))
	if found {
		currProfile = profileEnvVar
	}
}

func initConfig() {
	cfg, e1 := config.GetConfig(configFilePath, currProfile, defaultConfigFilePath)
	util.CheckError(e1)
	currConfig = cfg

	pMgr = profile.NewManager(cfg.Viper)

	for path, name := range map[string]string{
		common.OutputConfigPath:   common.OutputFlagName,
		common.LogLevelConfigPath: common.LogLevelFlagName,
		common.LogFileConfigPath:  common.LogFileFlagName,
		common.ColorConfigPath:    common.ColorFlagName,
	} {
		f := rootCmd.PersistentFlags().Lookup(name)
		util.CheckError(cfg.BindFlag(path, f))
	}
}

// newLogger opens the configured log file and builds the command logger.
// Records go to stderr when no log file is configured.
func newLogger() (*slog.Logger, error) {
	level := applog.ConfigLevelStringToSlogLevel(currConfig.GetString(common.LogLevelConfigPath))

	var w io.Writer = streams.ErrOut
	var mirror io.Writer = streams.ErrOut
	if path := currConfig.GetString(common.LogFileConfigPath); path != "" {
		f, err := applog.OpenLogFile(path)
		if err != nil {
			return nil, &cmd.ConfigurationError{Err: err}
		}
		logFile = f
		w = f
	} else {
		mirror = nil
	}
	return applog.NewLogger(w, mirror, level), nil
}

// applyTheme activates the theme chosen by flag or configuration, falling
// back to a palette matching the terminal background.
func applyTheme() error {
	name := ""
	if f := rootCmd.PersistentFlags().Lookup(common.ColorThemeFlagName); f != nil && f.Changed {
		name = colorTheme.Value()
	} else {
		name = strings.TrimSpace(currConfig.GetString(common.ColorThemeConfigPath))
	}
	theme.SetConfiguredExplicitly(name != "")
	if name == "" {
		name = theme.DetectDefault(termenv.NewOutput(streams.Out))
	}
	if err := theme.SetCurrent(name); err != nil {
		return &cmd.ConfigurationError{Err: err}
	}
	return nil
}

// Execute runs the command tree and exits the process with status 1 when a
// command fails.
func Execute(ctx context.Context, s *iostreams.IOStreams, bi *build.Info) {
	buildInfo = bi
	cobra.EnableTraverseRunHooks = true
	streams = s
	err := rootCmd.ExecuteContext(ctx)
	if err == nil {
		closeLogFile()
		return
	}

	var executionError *cmd.ExecutionError
	if errors.As(err, &executionError) && logFile != nil && activeLogger != nil {
		// the error is printed below, keep the record in the log file only
		restore := applog.SuspendErrorMirroring()
		activeLogger.Error(executionError.Msg, append(executionError.Attrs, "error", executionError.Err)...)
		restore()
	}
	closeLogFile()
	printError(s.ErrOut, err)
	os.Exit(1)
}

func closeLogFile() {
	if logFile != nil {
		_ = logFile.Close()
		logFile = nil
	}
}

// printError writes err in the selected output format. Structured formats
// get an object so scripts can parse failures.
func printError(w io.Writer, err error) {
	format := outputFormat.String()
	if currConfig != nil {
		format = currConfig.GetString(common.OutputConfigPath)
	}
	if format != common.JSON.String() && format != common.YAML.String() {
		fmt.Fprintf(w, "Error: %s\n", err)
		return
	}

	out := map[string]any{"error": err.Error()}
	var executionError *cmd.ExecutionError
	if errors.As(err, &executionError) && executionError.Msg != "" && executionError.Err != nil {
		out["error"] = executionError.Msg
		out["detail"] = executionError.Err.Error()
	}
	printer, perr := cli.Format(format, w)
	if perr != nil {
		fmt.Fprintf(w, "Error: %s\n", err)
		return
	}
	printer.Print(out)
	printer.Flush()
}
