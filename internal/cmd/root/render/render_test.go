package render

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
	"sigs.k8s.io/yaml"

	cmdpkg "github.com/kong/tablectl/internal/cmd"
	"github.com/kong/tablectl/internal/cmd/common"
	"github.com/kong/tablectl/internal/config"
	"github.com/kong/tablectl/internal/iostreams"
	"github.com/kong/tablectl/test/cmd"
)

const productsCSV = `name,price,in stock
Widget,12.5,true
Gadget,3,false
Doohickey,40,true
Sprocket,7.25,true
`

func writeCSV(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "products.csv")
	require.NoError(t, os.WriteFile(path, []byte(productsCSV), 0o600))
	return path
}

func execute(t *testing.T, format common.OutputFormat, args ...string) (string, error) {
	t.Helper()
	c := NewRenderCmd()
	require.NoError(t, c.ParseFlags(args))

	cfg := config.BuildProfiledConfig("test", "", viper.New())
	all, _, out, _ := iostreams.NewTestIOStreams()
	helper := &cmd.MockHelper{
		GetCmdMock:          func() *cobra.Command { return c },
		GetStreamsMock:      func() *iostreams.IOStreams { return &all },
		GetConfigMock:       func() (config.Hook, error) { return cfg, nil },
		GetOutputFormatMock: func() (common.OutputFormat, error) { return format, nil },
	}
	require.NoError(t, bindFlags(helper))
	if err := validate(helper); err != nil {
		return "", err
	}
	err := run(helper)
	return out.String(), err
}

func TestRenderJSONPage(t *testing.T) {
	out, err := execute(t, common.JSON,
		"--file", writeCSV(t), "--sort", "price:desc", "--rows-per-page", "2", "--page", "2")
	require.NoError(t, err)

	var got pageOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Equal(t, 2, got.Page)
	require.Equal(t, 2, got.TotalPages)
	require.Equal(t, 4, got.TotalRows)
	require.Equal(t, &sortOutput{Column: "price", Direction: "descending"}, got.Sort)
	require.Len(t, got.Columns, 3)
	require.Equal(t, "in-stock", got.Columns[2].Key)
	require.Equal(t, "number", got.Columns[1].Type)

	require.Len(t, got.Rows, 2)
	require.Equal(t, "Sprocket", got.Rows[0]["name"])
	require.Equal(t, "Gadget", got.Rows[1]["name"])
}

func TestRenderFilter(t *testing.T) {
	out, err := execute(t, common.JSON, "--file", writeCSV(t), "--filter", ".price > 10")
	require.NoError(t, err)

	var got pageOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Equal(t, 2, got.TotalRows)
	require.Nil(t, got.Sort)
}

func TestRenderJQRawOutput(t *testing.T) {
	out, err := execute(t, common.JSON,
		"--file", writeCSV(t), "--sort", "name", "--jq", ".rows[].name", "-r")
	require.NoError(t, err)
	require.Equal(t, "Doohickey\nGadget\nSprocket\nWidget\n", out)
}

func TestRenderYAML(t *testing.T) {
	out, err := execute(t, common.YAML, "--file", writeCSV(t), "--rows-per-page", "3")
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(out), &got))
	require.EqualValues(t, 2, got["totalPages"])
	require.Len(t, got["rows"], 3)
}

func TestRenderHTML(t *testing.T) {
	out, err := execute(t, common.HTML, "--file", writeCSV(t), "--css-prefix", "inventory")
	require.NoError(t, err)
	require.Contains(t, out, `class="inventory__table"`)
	require.Contains(t, out, "Doohickey")
	require.Contains(t, out, "Page 1 of 1")
}

func TestRenderText(t *testing.T) {
	out, err := execute(t, common.TEXT, "--file", writeCSV(t), "--rows-per-page", "2")
	require.NoError(t, err)
	require.Contains(t, out, "products")
	require.Contains(t, out, "Widget")
	require.NotContains(t, out, "Doohickey")
}

func TestRenderRejectsJQWithText(t *testing.T) {
	_, err := execute(t, common.TEXT, "--file", writeCSV(t), "--jq", ".rows")
	var cfgErr *cmdpkg.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
}

func TestRenderRejectsBadFilter(t *testing.T) {
	_, err := execute(t, common.JSON, "--file", writeCSV(t), "--filter", ".price >")
	var cfgErr *cmdpkg.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
}

func TestRenderMissingFile(t *testing.T) {
	_, err := execute(t, common.JSON, "--file", filepath.Join(t.TempDir(), "nope.csv"))
	var execErr *cmdpkg.ExecutionError
	require.ErrorAs(t, err, &execErr)
}

func TestRenderRequiresSource(t *testing.T) {
	_, err := execute(t, common.JSON)
	var cfgErr *cmdpkg.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
}

func TestRenderJSONWithoutPaginationKeepsRowsPerPage(t *testing.T) {
	out, err := execute(t, common.JSON,
		"--file", writeCSV(t), "--rows-per-page", "3", "--no-pagination")
	require.NoError(t, err)

	var got pageOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Equal(t, 3, got.RowsPerPage)
	require.Equal(t, 1, got.TotalPages)
	require.Len(t, got.Rows, 4)
}
