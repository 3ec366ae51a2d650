package markdown

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTable(t *testing.T) {
	got := Table([]string{"Key", "Label"}, [][]string{
		{"qty", "Quantity"},
		{"note", "a|b\nc"},
	})
	require.Equal(t, "| Key | Label |\n| --- | --- |\n| qty | Quantity |\n| note | a\\|b c |\n", got)
}

func TestRenderPlain(t *testing.T) {
	out := Render("# Columns\n\n"+Table([]string{"Key", "Type"}, [][]string{{"qty", "number"}}),
		Options{Plain: true, Width: 80})

	require.Contains(t, out, "Columns")
	require.Contains(t, out, "qty")
	require.Contains(t, out, "number")
	require.NotContains(t, out, "\x1b[")
	require.NotContains(t, out, "| --- |")
}
