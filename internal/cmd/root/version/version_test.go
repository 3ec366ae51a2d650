package version

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kong/tablectl/internal/build"
	cmdpkg "github.com/kong/tablectl/internal/cmd"
	"github.com/kong/tablectl/internal/cmd/common"
	"github.com/kong/tablectl/internal/config"
	"github.com/kong/tablectl/internal/iostreams"
	"github.com/kong/tablectl/test/cmd"
	testConfig "github.com/kong/tablectl/test/config"
)

func newHelper(streams *iostreams.IOStreams, format common.OutputFormat, showCommit bool) *cmd.MockHelper {
	return &cmd.MockHelper{
		GetOutputFormatMock: func() (common.OutputFormat, error) {
			return format, nil
		},
		GetConfigMock: func() (config.Hook, error) {
			return &testConfig.MockConfigHook{
				GetBoolMock: func(key string) bool {
					return key == ShowCommitConfigPath && showCommit
				},
			}, nil
		},
		GetStreamsMock: func() *iostreams.IOStreams {
			return streams
		},
		GetBuildInfoMock: func() (*build.Info, error) {
			return &build.Info{Version: "1.2.0", Commit: "abc1234", Date: "2026-10-01"}, nil
		},
	}
}

func Test_VersionCmd(t *testing.T) {
	all, _, out, _ := iostreams.NewTestIOStreams()
	helper := newHelper(&all, common.TEXT, false)

	require.NoError(t, validate(helper))
	require.NoError(t, run(helper))
	require.Equal(t, "1.2.0\n", out.String())
}

func Test_VersionCmdShowCommit(t *testing.T) {
	all, _, out, _ := iostreams.NewTestIOStreams()
	require.NoError(t, run(newHelper(&all, common.TEXT, true)))
	require.Equal(t, "1.2.0 (abc1234)\n", out.String())
}

func Test_VersionCmdJSONOutput(t *testing.T) {
	all, _, out, _ := iostreams.NewTestIOStreams()
	require.NoError(t, run(newHelper(&all, common.JSON, true)))

	var got map[string]string
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	require.Equal(t, map[string]string{
		"version": "1.2.0",
		"commit":  "abc1234",
		"date":    "2026-10-01",
	}, got)
}

func Test_VersionCmdRejectsHTML(t *testing.T) {
	all, _, _, _ := iostreams.NewTestIOStreams()
	err := validate(newHelper(&all, common.HTML, false))

	var cfgErr *cmdpkg.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
}
