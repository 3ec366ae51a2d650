package common

import "fmt"

// Represents an enum of valid values for the format of the output for this CLI execution
type OutputFormat int

type LogLevel int

// ColorMode controls when colored output is produced.
type ColorMode int

const (
	JSON OutputFormat = iota
	YAML
	TEXT
	HTML
)

const (
	ColorModeAuto ColorMode = iota
	ColorModeAlways
	ColorModeNever
)

const (
	TRACE LogLevel = iota
	DEBUG
	INFO
	WARN
	ERROR
)

const (
	// related to the --output flag
	DefaultOutputFormat = "text"
	OutputFlagName      = "output"
	OutputFlagShort     = "o"
	OutputConfigPath    = OutputFlagName

	// related to the --color flag
	ColorFlagName    = "color"
	ColorConfigPath  = ColorFlagName
	DefaultColorMode = "auto"

	// related to the --profile flag
	ProfileFlagName  = "profile"
	ProfileFlagShort = "p"

	// related to the --config-file flag
	ConfigFilePathFlagName = "config-file"

	// related to the --log-level flag
	LogLevelFlagName   = "log-level"
	DefaultLogLevel    = "info"
	LogLevelConfigPath = LogLevelFlagName

	// related to the --log-file flag
	LogFileFlagName   = "log-file"
	LogFileConfigPath = LogFileFlagName

	// related to the --color-theme flag
	ColorThemeFlagName   = "color-theme"
	ColorThemeConfigPath = ColorThemeFlagName
	DefaultColorTheme    = "tablectl-light"
)

// Table settings shared by the view and render commands. Every flag is
// bound to the config path of the same name under "table.".
const (
	TableConfigPrefix = "table."

	RowsPerPageFlagName   = "rows-per-page"
	RowsPerPageConfigPath = TableConfigPrefix + RowsPerPageFlagName
	DefaultRowsPerPage    = 25

	ShowPaginationConfigPath = TableConfigPrefix + "show-pagination"
	NoPaginationFlagName     = "no-pagination"

	AllowSortingConfigPath = TableConfigPrefix + "allow-sorting"
	NoSortingFlagName      = "no-sorting"

	CSSPrefixFlagName   = "css-prefix"
	CSSPrefixConfigPath = TableConfigPrefix + CSSPrefixFlagName

	EmptyMessageFlagName   = "empty-message"
	EmptyMessageConfigPath = TableConfigPrefix + EmptyMessageFlagName

	SortFlagName   = "sort"
	SortConfigPath = TableConfigPrefix + SortFlagName

	TogglePolicyFlagName   = "toggle-policy"
	TogglePolicyConfigPath = TableConfigPrefix + TogglePolicyFlagName

	AddRowPlacementConfigPath = TableConfigPrefix + "add-row-placement"

	LocaleFlagName   = "locale"
	LocaleConfigPath = TableConfigPrefix + LocaleFlagName
	DefaultLocale    = "en"

	FilterLangFlagName   = "filter-lang"
	FilterLangConfigPath = TableConfigPrefix + FilterLangFlagName
	DefaultFilterLang    = "jq"
)

func (of OutputFormat) String() string {
	return [...]string{"json", "yaml", "text", "html"}[of]
}

func OutputFormatStringToIota(format string) (OutputFormat, error) {
	switch format {
	case "json":
		return JSON, nil
	case "yaml":
		return YAML, nil
	case "text":
		return TEXT, nil
	case "html":
		return HTML, nil
	default:
		return TEXT, fmt.Errorf("invalid output format %q, must be one of %v", format,
			[]string{"json", "yaml", "text", "html"})
	}
}

func (ll LogLevel) String() string {
	return [...]string{"trace", "debug", "info", "warn", "error"}[ll]
}

func LogLevelStringToIota(level string) (LogLevel, error) {
	switch level {
	case "trace":
		return TRACE, nil
	case "debug":
		return DEBUG, nil
	case "info":
		return INFO, nil
	case "warn":
		return WARN, nil
	case "error":
		return ERROR, nil
	default:
		return ERROR, fmt.Errorf("invalid log level %q, must be one of %v", level,
			[]string{"trace", "debug", "info", "warn", "error"})
	}
}

func (cm ColorMode) String() string {
	switch cm {
	case ColorModeAlways:
		return "always"
	case ColorModeNever:
		return "never"
	default:
		return "auto"
	}
}

func ColorModeStringToIota(mode string) (ColorMode, error) {
	switch mode {
	case "auto", "":
		return ColorModeAuto, nil
	case "always":
		return ColorModeAlways, nil
	case "never":
		return ColorModeNever, nil
	default:
		return ColorModeAuto, fmt.Errorf("invalid color mode %q, must be one of %v", mode,
			[]string{"auto", "always", "never"})
	}
}
