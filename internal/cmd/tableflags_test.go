package cmd

import (
	"testing"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"

	"github.com/kong/tablectl/internal/cmd/common"
	"github.com/kong/tablectl/internal/config"
	"github.com/kong/tablectl/internal/table"
)

func newConfig() *config.ProfiledConfig {
	return config.BuildProfiledConfig("test", "", viper.New())
}

func newTable(t *testing.T, opts []table.Option) *table.Table {
	t.Helper()
	rows := []table.Row{{"b", 2.0}, {"a", 1.0}, {"c", 3.0}}
	columns := []table.Column{
		{Key: "name"},
		{Key: "n", Type: table.TypeNumber},
	}
	tbl, err := table.New(table.MountFunc(func(table.Snapshot) table.Layout { return table.Layout{} }),
		rows, columns, opts...)
	require.NoError(t, err)
	return tbl
}

func snapshotOf(t *testing.T, tbl *table.Table) table.Snapshot {
	t.Helper()
	s, err := tbl.Snapshot()
	require.NoError(t, err)
	return s
}

func visible(t *testing.T, tbl *table.Table) []table.Row {
	t.Helper()
	rows, err := tbl.VisibleData()
	require.NoError(t, err)
	return rows
}

func TestParseSort(t *testing.T) {
	tests := []struct {
		in        string
		column    string
		ascending bool
		wantErr   bool
	}{
		{in: "price", column: "price", ascending: true},
		{in: "price:desc", column: "price", ascending: false},
		{in: " price : ASC ", column: "price", ascending: true},
		{in: "price:descending", column: "price", ascending: false},
		{in: ":desc", wantErr: true},
		{in: "price:up", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			column, ascending, err := ParseSort(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.column, column)
			require.Equal(t, tt.ascending, ascending)
		})
	}
}

func TestTableOptionsDefaults(t *testing.T) {
	opts, err := TableOptions(newConfig(), nil)
	require.NoError(t, err)

	tbl := newTable(t, opts)
	require.Equal(t, common.DefaultRowsPerPage, tbl.Pagination().RowsPerPage)
	require.False(t, tbl.SortSpec().Active())
	require.Equal(t, table.DefaultClassPrefix, snapshotOf(t, tbl).ClassPrefix)
	require.True(t, snapshotOf(t, tbl).ShowPagination)
	require.True(t, snapshotOf(t, tbl).AllowSorting)
}

func TestTableOptionsFromFlags(t *testing.T) {
	cfg := newConfig()
	flags := pflag.NewFlagSet("view", pflag.ContinueOnError)
	AddTableFlags(flags)
	flags.String(common.CSSPrefixFlagName, "", "")
	require.NoError(t, flags.Parse([]string{
		"--rows-per-page", "2",
		"--sort", "n:desc",
		"--css-prefix", "inv",
		"--toggle-policy", "alternate",
	}))
	require.NoError(t, BindTableFlags(cfg, flags))

	opts, err := TableOptions(cfg, nil)
	require.NoError(t, err)

	tbl := newTable(t, opts)
	require.Equal(t, 2, tbl.Pagination().RowsPerPage)
	require.Equal(t, 2, tbl.Pagination().TotalPages)
	require.Equal(t, table.SortSpec{Column: "n", Ascending: false}, tbl.SortSpec())
	require.Equal(t, "c", visible(t, tbl)[0][0])
	require.True(t, snapshotOf(t, tbl).AllowSorting)
	require.Equal(t, "inv", snapshotOf(t, tbl).ClassPrefix)
}

func TestTableOptionsNegativeFlags(t *testing.T) {
	cfg := newConfig()
	flags := pflag.NewFlagSet("view", pflag.ContinueOnError)
	AddTableFlags(flags)
	require.NoError(t, flags.Parse([]string{"--no-pagination", "--no-sorting", "--rows-per-page", "1", "--sort", "n"}))
	require.NoError(t, BindTableFlags(cfg, flags))

	opts, err := TableOptions(cfg, nil)
	require.NoError(t, err)
	tbl := newTable(t, opts)
	require.False(t, snapshotOf(t, tbl).ShowPagination)
	require.False(t, snapshotOf(t, tbl).AllowSorting)
	require.False(t, tbl.SortSpec().Active())
	require.Len(t, visible(t, tbl), 3)
}

func TestTableOptionsRejectsBadSettings(t *testing.T) {
	for key, value := range map[string]any{
		common.RowsPerPageConfigPath:     0,
		common.SortConfigPath:            "name:sideways",
		common.TogglePolicyConfigPath:    "random",
		common.AddRowPlacementConfigPath: "middle",
		common.LocaleConfigPath:          "not a locale!",
	} {
		t.Run(key, func(t *testing.T) {
			cfg := newConfig()
			cfg.Set(key, value)
			_, err := TableOptions(cfg, nil)
			var cfgErr *ConfigurationError
			require.ErrorAs(t, err, &cfgErr)
		})
	}
}
