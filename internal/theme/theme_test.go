package theme

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuiltinPalettesRegistered(t *testing.T) {
	ids := Available()

	require.Contains(t, ids, DefaultName)
	require.Contains(t, ids, DarkName)
	require.Contains(t, ids, "nord")
	require.True(t, Exists(LegacyName))
}

func TestNextCyclesThroughThemes(t *testing.T) {
	ids := Available()
	seen := map[string]bool{}

	name := ids[0]
	for range ids {
		seen[name] = true
		name = Next(name)
	}

	require.Len(t, seen, len(ids))
	require.Equal(t, ids[0], name)
	require.Equal(t, ids[0], Next("does-not-exist"))
}

func TestSeedPaletteDerivesContrastText(t *testing.T) {
	p, ok := Get("dracula")
	require.True(t, ok)

	require.Equal(t, "#282A36", p.Color(ColorSurface).Dark)
	require.Equal(t, "#121418", p.Color(ColorSuccessText).Light)
	require.Equal(t, "#F8F8F8", p.Color(ColorInfoText).Light)
}

func TestFlagRejectsUnknownTheme(t *testing.T) {
	f := NewFlag("")
	require.Equal(t, DefaultName, f.String())

	require.NoError(t, f.Set("Nord"))
	require.Equal(t, "nord", f.Value())
	require.Error(t, f.Set("neon"))
}

func TestSetCurrent(t *testing.T) {
	t.Cleanup(func() { _ = SetCurrent(DefaultName) })

	require.NoError(t, SetCurrent(DarkName))
	require.Equal(t, DarkName, CurrentName())
	require.Error(t, SetCurrent("neon"))
}
