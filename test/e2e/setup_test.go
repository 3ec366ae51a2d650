//go:build e2e

package e2e

import (
	"testing"

	"github.com/kong/tablectl/test/e2e/harness"
)

// TestMain ensures the binary is prepared once before running e2e tests.
func TestMain(m *testing.M) {
	// Initialize artifacts dir and build/resolve binary once so early failures are clear.
	if _, err := harness.BinPath(); err != nil {
		panic(err)
	}
	m.Run()
}

const productsCSV = `name,price,in-stock
Widget,12.5,true
Gadget,3,false
Doohickey,40,true
Sprocket,7.25,true
`

func newCLI(t *testing.T) *harness.CLI {
	t.Helper()
	cli, err := harness.NewCLIT(t)
	if err != nil {
		t.Fatalf("harness init failed: %v", err)
	}
	return cli
}

func writeProducts(t *testing.T, cli *harness.CLI) string {
	t.Helper()
	path, err := cli.WriteFile("products.csv", productsCSV)
	if err != nil {
		t.Fatalf("writing fixture: %v", err)
	}
	return path
}
