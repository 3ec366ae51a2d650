package normalizers

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLongDesc(t *testing.T) {
	got := LongDesc(`
		Open a data file in a paginated table.

		  Rows can be sorted.
	`)
	require.Equal(t, "Open a data file in a paginated table.\n\n  Rows can be sorted.", got)
}

func TestExamples(t *testing.T) {
	got := Examples(`
		# View a CSV file
		tablectl view --file data.csv
	`)
	require.Equal(t, "  # View a CSV file\n  tablectl view --file data.csv", got)
	require.Empty(t, Examples("  \n "))
}
