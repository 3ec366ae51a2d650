package themes

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	cmdpkg "github.com/kong/tablectl/internal/cmd"
	cmdcommon "github.com/kong/tablectl/internal/cmd/common"
	"github.com/kong/tablectl/internal/config"
	"github.com/kong/tablectl/internal/iostreams"
	"github.com/kong/tablectl/internal/theme"
	"github.com/kong/tablectl/test/cmd"
	testConfig "github.com/kong/tablectl/test/config"
)

func newHelper(streams *iostreams.IOStreams, format cmdcommon.OutputFormat, active string) *cmd.MockHelper {
	cfg := &testConfig.MockConfigHook{}
	cfg.SetString(cmdcommon.ColorThemeConfigPath, active)
	return &cmd.MockHelper{
		GetStreamsMock:      func() *iostreams.IOStreams { return streams },
		GetConfigMock:       func() (config.Hook, error) { return cfg, nil },
		GetOutputFormatMock: func() (cmdcommon.OutputFormat, error) { return format, nil },
	}
}

func TestListThemesJSON(t *testing.T) {
	all, _, out, _ := iostreams.NewTestIOStreams()
	require.NoError(t, runListThemes(newHelper(&all, cmdcommon.JSON, "nord")))

	var got []themeOutput
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	require.Len(t, got, len(theme.Available()))

	active := 0
	for _, o := range got {
		require.NotEmpty(t, o.Primary)
		if o.Active {
			active++
			require.Equal(t, "nord", o.ID)
		}
	}
	require.Equal(t, 1, active)
}

func TestListThemesText(t *testing.T) {
	all, _, out, _ := iostreams.NewTestIOStreams()
	require.NoError(t, runListThemes(newHelper(&all, cmdcommon.TEXT, theme.DefaultName)))

	require.Contains(t, out.String(), "Available Themes")
	require.Contains(t, out.String(), "*"+theme.DefaultName)
	require.Contains(t, out.String(), "dracula")
}

func TestListThemesRejectsHTML(t *testing.T) {
	all, _, _, _ := iostreams.NewTestIOStreams()
	err := runListThemes(newHelper(&all, cmdcommon.HTML, ""))

	var cfgErr *cmdpkg.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
}

func TestRenderSampleWithoutColor(t *testing.T) {
	pal, ok := theme.Get("nord")
	require.True(t, ok)
	require.Equal(t, "#88c0d0", renderSample(pal, theme.ColorPrimary, "#88c0d0", false))
}

func TestListThemesTextNotesDetectedTheme(t *testing.T) {
	theme.SetConfiguredExplicitly(false)
	all, _, out, _ := iostreams.NewTestIOStreams()
	require.NoError(t, runListThemes(newHelper(&all, cmdcommon.TEXT, "")))
	require.Contains(t, out.String(), "Theme detected from the terminal background")

	theme.SetConfiguredExplicitly(true)
	t.Cleanup(func() { theme.SetConfiguredExplicitly(false) })
	all, _, out, _ = iostreams.NewTestIOStreams()
	require.NoError(t, runListThemes(newHelper(&all, cmdcommon.TEXT, "nord")))
	require.NotContains(t, out.String(), "Theme detected")
}
