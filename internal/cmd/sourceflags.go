package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kong/tablectl/internal/cmd/common"
	"github.com/kong/tablectl/internal/predicate"
	"github.com/kong/tablectl/internal/source"
	"github.com/kong/tablectl/internal/table"
)

const (
	FileFlagName       = "file"
	FileFlagShort      = "f"
	FormatFlagName     = "format"
	SQLiteFlagName     = "sqlite"
	QueryFlagName      = "query"
	ColumnsFlagName    = "columns"
	FilterFlagName     = "filter"
	PageFlagName       = "page"
	defaultFormatValue = "auto"
)

// AddSourceFlags registers the flags selecting the data a command reads.
func AddSourceFlags(c *cobra.Command) {
	kinds := []string{defaultFormatValue}
	for _, k := range source.Kinds {
		kinds = append(kinds, string(k))
	}
	format := NewEnum(kinds, defaultFormatValue)

	c.Flags().StringP(FileFlagName, FileFlagShort, "",
		"Data file to read (csv, tsv, json, yaml, arrow or sqlite).")
	c.Flags().Var(format, FormatFlagName,
		fmt.Sprintf(`Format of the data file. By default it is derived from the file extension.
- Allowed    : [ %s ]`, strings.Join(format.Allowed, "|")))
	c.Flags().String(SQLiteFlagName, "", "SQLite database to read rows from.")
	c.Flags().String(QueryFlagName, "",
		"SQL query run against the --sqlite database. Required when it holds more than one table.")
	c.Flags().String(ColumnsFlagName, "",
		"YAML or JSON column spec file selecting, labelling and formatting columns.")
	c.MarkFlagsMutuallyExclusive(FileFlagName, SQLiteFlagName)
}

// AddFilterFlags registers the row filter and starting page flags.
func AddFilterFlags(c *cobra.Command) {
	langs := make([]string, len(predicate.Langs))
	for i, l := range predicate.Langs {
		langs[i] = string(l)
	}
	lang := NewEnum(langs, common.DefaultFilterLang)

	c.Flags().String(FilterFlagName, "",
		"Expression selecting the rows to show. Each row is evaluated as an object keyed by column.")
	c.Flags().Var(lang, common.FilterLangFlagName,
		fmt.Sprintf(`Language of the --%s expression.
- Config path: [ %s ]
- Allowed    : [ %s ]`, FilterFlagName, common.FilterLangConfigPath, strings.Join(lang.Allowed, "|")))
	c.Flags().Int(PageFlagName, 1, "Page to show first. Pages outside the result are ignored.")
}

// SourceOptions builds the source options from the flags of helper's command.
func SourceOptions(helper Helper) (source.Options, error) {
	flags := helper.GetCmd().Flags()
	file, _ := flags.GetString(FileFlagName)
	db, _ := flags.GetString(SQLiteFlagName)
	format, _ := flags.GetString(FormatFlagName)
	query, _ := flags.GetString(QueryFlagName)
	columns, _ := flags.GetString(ColumnsFlagName)

	kind, err := source.ParseKind(format)
	if err != nil {
		return source.Options{}, &ConfigurationError{Err: err}
	}

	opts := source.Options{Path: file, Kind: kind, Query: query, ColumnSpec: columns}
	if db != "" {
		opts.Path, opts.Kind = db, source.KindSQLite
	}
	if opts.Path == "" {
		return source.Options{}, &ConfigurationError{
			Err: fmt.Errorf("one of --%s or --%s is required", FileFlagName, SQLiteFlagName),
		}
	}
	if query != "" && db == "" && kind != source.KindSQLite {
		detected, _ := source.DetectKind(opts.Path)
		if detected != source.KindSQLite {
			return source.Options{}, &ConfigurationError{
				Err: fmt.Errorf("--%s is only supported for sqlite sources", QueryFlagName),
			}
		}
	}
	if logger, err := helper.GetLogger(); err == nil {
		opts.Logger = logger
	}
	return opts, nil
}

// LoadDataset reads the data selected by the source flags.
func LoadDataset(helper Helper) (*source.Dataset, error) {
	opts, err := SourceOptions(helper)
	if err != nil {
		return nil, err
	}
	ds, err := source.Load(helper.GetContext(), opts)
	if err != nil {
		if errors.Is(err, source.ErrUnknownKind) {
			return nil, &ConfigurationError{Err: err}
		}
		return nil, PrepareExecutionErrorFromErr(helper, err, "source", opts.Path)
	}
	return ds, nil
}

// CompileFilter compiles the --filter expression against columns. A nil
// predicate is returned when no filter was given.
func CompileFilter(helper Helper, columns []table.Column) (table.Predicate, error) {
	expr, _ := helper.GetCmd().Flags().GetString(FilterFlagName)
	if strings.TrimSpace(expr) == "" {
		return nil, nil
	}
	cfg, err := helper.GetConfig()
	if err != nil {
		return nil, err
	}
	lang, err := predicate.ParseLang(cfg.GetString(common.FilterLangConfigPath))
	if err != nil {
		return nil, &ConfigurationError{Err: err}
	}
	pred, err := predicate.Compile(lang, expr, columns)
	if err != nil {
		return nil, &ConfigurationError{Err: err}
	}
	return pred, nil
}

// InitialPage returns the --page flag, rejecting values below one.
func InitialPage(helper Helper) (int, error) {
	page, err := helper.GetCmd().Flags().GetInt(PageFlagName)
	if err != nil {
		return 1, nil
	}
	if page < 1 {
		return 1, &ConfigurationError{Err: fmt.Errorf("--%s must be at least 1, got %d", PageFlagName, page)}
	}
	return page, nil
}
