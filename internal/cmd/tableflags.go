package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/pflag"
	"golang.org/x/text/language"

	"github.com/kong/tablectl/internal/cmd/common"
	"github.com/kong/tablectl/internal/config"
	"github.com/kong/tablectl/internal/table"
)

// AddTableFlags registers the table settings shared by the view and render
// commands.
func AddTableFlags(flags *pflag.FlagSet) {
	flags.Int(common.RowsPerPageFlagName, common.DefaultRowsPerPage,
		fmt.Sprintf(`Number of rows on each page.
- Config path: [ %s ]`, common.RowsPerPageConfigPath))

	flags.Bool(common.NoPaginationFlagName, false,
		fmt.Sprintf(`Show every row on a single page.
- Config path: [ %s ] (inverted)`, common.ShowPaginationConfigPath))

	flags.Bool(common.NoSortingFlagName, false,
		fmt.Sprintf(`Disable sorting from column headers.
- Config path: [ %s ] (inverted)`, common.AllowSortingConfigPath))

	flags.String(common.EmptyMessageFlagName, table.DefaultEmptyMessage,
		fmt.Sprintf(`Message shown when no rows are visible.
- Config path: [ %s ]`, common.EmptyMessageConfigPath))

	flags.String(common.SortFlagName, "",
		fmt.Sprintf(`Initial sort as <column>[:asc|desc].
- Config path: [ %s ]`, common.SortConfigPath))

	toggle := NewEnum([]string{
		table.ToggleNewColumnAscending.String(),
		table.ToggleAlternate.String(),
	}, table.ToggleNewColumnAscending.String())
	flags.Var(toggle, common.TogglePolicyFlagName,
		fmt.Sprintf(`How repeated header clicks choose a direction.
- Config path: [ %s ]
- Allowed    : [ %s ]`, common.TogglePolicyConfigPath, strings.Join(toggle.Allowed, "|")))

	flags.String(common.LocaleFlagName, common.DefaultLocale,
		fmt.Sprintf(`BCP 47 language tag used to collate string columns.
- Config path: [ %s ]`, common.LocaleConfigPath))
}

// BindTableFlags binds the table flags to their config paths. The negative
// --no-* flags override their positive settings only when given.
func BindTableFlags(cfg config.Hook, flags *pflag.FlagSet) error {
	bindings := []struct{ flag, path string }{
		{common.RowsPerPageFlagName, common.RowsPerPageConfigPath},
		{common.EmptyMessageFlagName, common.EmptyMessageConfigPath},
		{common.SortFlagName, common.SortConfigPath},
		{common.TogglePolicyFlagName, common.TogglePolicyConfigPath},
		{common.LocaleFlagName, common.LocaleConfigPath},
		{common.CSSPrefixFlagName, common.CSSPrefixConfigPath},
		{common.FilterLangFlagName, common.FilterLangConfigPath},
	}
	for _, b := range bindings {
		f := flags.Lookup(b.flag)
		if f == nil {
			continue
		}
		if err := cfg.BindFlag(b.path, f); err != nil {
			return err
		}
	}

	for flag, path := range map[string]string{
		common.NoPaginationFlagName: common.ShowPaginationConfigPath,
		common.NoSortingFlagName:    common.AllowSortingConfigPath,
	} {
		if !flags.Changed(flag) {
			continue
		}
		off, err := flags.GetBool(flag)
		if err != nil {
			return err
		}
		cfg.Set(path, !off)
	}
	return nil
}

// ParseSort splits a "<column>[:asc|desc]" sort setting.
func ParseSort(s string) (column string, ascending bool, err error) {
	column, dir, found := strings.Cut(strings.TrimSpace(s), ":")
	column = strings.TrimSpace(column)
	if column == "" {
		return "", false, fmt.Errorf("invalid sort %q, expected <column>[:asc|desc]", s)
	}
	if !found {
		return column, true, nil
	}
	switch strings.ToLower(strings.TrimSpace(dir)) {
	case "asc", "ascending":
		return column, true, nil
	case "desc", "descending":
		return column, false, nil
	default:
		return "", false, fmt.Errorf("invalid sort direction %q, must be asc or desc", dir)
	}
}

func boolOrElse(cfg config.Hook, key string, orElse bool) bool {
	if cfg.Get(key) == nil {
		return orElse
	}
	return cfg.GetBool(key)
}

// TableOptions resolves the table.* settings of cfg into engine options.
func TableOptions(cfg config.Hook, logger *slog.Logger) ([]table.Option, error) {
	rowsPerPage := cfg.GetIntOrElse(common.RowsPerPageConfigPath, common.DefaultRowsPerPage)
	if rowsPerPage <= 0 {
		return nil, &ConfigurationError{
			Err: fmt.Errorf("%s must be greater than zero, got %d", common.RowsPerPageConfigPath, rowsPerPage),
		}
	}

	opts := []table.Option{
		table.WithRowsPerPage(rowsPerPage),
		table.WithPagination(boolOrElse(cfg, common.ShowPaginationConfigPath, true)),
		table.WithSorting(boolOrElse(cfg, common.AllowSortingConfigPath, true)),
	}
	if logger != nil {
		opts = append(opts, table.WithLogger(logger))
	}
	if prefix := strings.TrimSpace(cfg.GetString(common.CSSPrefixConfigPath)); prefix != "" {
		opts = append(opts, table.WithClassPrefix(prefix))
	}
	if msg := cfg.GetString(common.EmptyMessageConfigPath); msg != "" {
		opts = append(opts, table.WithEmptyMessage(msg))
	}

	if sort := strings.TrimSpace(cfg.GetString(common.SortConfigPath)); sort != "" {
		column, ascending, err := ParseSort(sort)
		if err != nil {
			return nil, &ConfigurationError{Err: err}
		}
		opts = append(opts, table.WithInitialSort(column, ascending))
	}

	policy, err := table.ParseTogglePolicy(cfg.GetString(common.TogglePolicyConfigPath))
	if err != nil {
		return nil, &ConfigurationError{Err: err}
	}
	placement, err := table.ParseAddRowPlacement(cfg.GetString(common.AddRowPlacementConfigPath))
	if err != nil {
		return nil, &ConfigurationError{Err: err}
	}
	opts = append(opts, table.WithTogglePolicy(policy), table.WithAddRowPlacement(placement))

	if locale := strings.TrimSpace(cfg.GetString(common.LocaleConfigPath)); locale != "" {
		tag, err := language.Parse(locale)
		if err != nil {
			return nil, &ConfigurationError{Err: fmt.Errorf("invalid %s %q: %w", common.LocaleConfigPath, locale, err)}
		}
		opts = append(opts, table.WithLocale(tag))
	}
	return opts, nil
}

// WrapTableError maps errors returned by the table engine: construction
// failures become configuration errors, everything else an execution error.
func WrapTableError(helper Helper, err error, attrs ...any) error {
	if err == nil {
		return nil
	}
	var cfgErr *table.ConfigurationError
	if errors.As(err, &cfgErr) {
		return &ConfigurationError{Err: err}
	}
	return PrepareExecutionErrorFromErr(helper, err, attrs...)
}
