package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kong/tablectl/internal/cmd/common"
	utilviper "github.com/kong/tablectl/internal/util/viper"
)

func TestBuildProfiledConfig_ProfileEnvWithDashes(t *testing.T) {
	t.Setenv("TABLECTL_TEAM_A_B_C_TABLE_ROWS_PER_PAGE", "10")

	profile := "team-a-b-c"
	mainv := utilviper.NewViper("nonexistent.yaml")

	cfg := BuildProfiledConfig(profile, "nonexistent.yaml", mainv)

	require.Equal(t, 10, cfg.GetInt(common.RowsPerPageConfigPath))
	require.Equal(t, profile, cfg.GetProfile())
}

func TestGetConfigInitializesDefaultFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg, err := GetConfig(path, "default", path)
	require.NoError(t, err)

	require.Equal(t, common.DefaultOutputFormat, cfg.GetString(common.OutputConfigPath))
	require.Equal(t, common.DefaultRowsPerPage, cfg.GetInt(common.RowsPerPageConfigPath))
	require.True(t, cfg.GetBool(common.ShowPaginationConfigPath))
	require.Equal(t, "jq", cfg.GetString(common.FilterLangConfigPath))
	require.Equal(t, 7, cfg.GetIntOrElse("table.missing", 7))
}

func TestGetConfigRejectsMissingExplicitPath(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "absent.yaml")

	_, err := GetConfig(missing, "default", filepath.Join(t.TempDir(), "config.yaml"))
	require.Error(t, err)
}
