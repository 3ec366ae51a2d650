//go:build e2e

package e2e

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/kong/tablectl/test/e2e/harness"
)

type renderedPage struct {
	Page       int              `json:"page"`
	TotalPages int              `json:"totalPages"`
	TotalRows  int              `json:"totalRows"`
	Rows       []map[string]any `json:"rows"`
}

func Test_Render_SortedPage_JSON(t *testing.T) {
	cli := newCLI(t)
	var out renderedPage
	res, err := cli.RunJSON(context.Background(), &out, "render",
		"--file", writeProducts(t, cli), "--sort", "price:desc", "--rows-per-page", "2", "--page", "2")
	if err != nil {
		t.Fatalf("command failed: exit=%d stderr=%s err=%v", res.ExitCode, res.Stderr, err)
	}
	if out.Page != 2 || out.TotalPages != 2 || out.TotalRows != 4 {
		t.Fatalf("unexpected pagination: %+v", out)
	}
	if len(out.Rows) != 2 || out.Rows[0]["name"] != "Sprocket" || out.Rows[1]["name"] != "Gadget" {
		t.Fatalf("unexpected rows: %v", out.Rows)
	}
}

func Test_Render_Filter_JSON(t *testing.T) {
	cli := newCLI(t)
	var out renderedPage
	res, err := cli.RunJSON(context.Background(), &out, "render",
		"--file", writeProducts(t, cli), "--filter", ".price > 10")
	if err != nil {
		t.Fatalf("command failed: exit=%d stderr=%s err=%v", res.ExitCode, res.Stderr, err)
	}
	if out.TotalRows != 2 {
		t.Fatalf("expected 2 filtered rows, got %d", out.TotalRows)
	}
}

func Test_Render_Text_IsStatic(t *testing.T) {
	cli := newCLI(t)
	res, err := cli.Run(context.Background(), "render", "--file", writeProducts(t, cli), "-o", "text")
	if err != nil {
		t.Fatalf("command failed: exit=%d stderr=%s err=%v", res.ExitCode, res.Stderr, err)
	}
	for _, name := range []string{"Widget", "Gadget", "Doohickey", "Sprocket"} {
		if !strings.Contains(res.Stdout, name) {
			t.Fatalf("expected %q in output:\n%s", name, res.Stdout)
		}
	}
	if strings.Contains(res.Stdout, "\x1b[") {
		t.Fatalf("expected no escape sequences when stdout is not a terminal")
	}
}

func Test_Render_MissingFile_Fails(t *testing.T) {
	cli := newCLI(t)
	res, err := cli.Run(context.Background(), "render", "--file", "does-not-exist.csv")
	var cmdErr *harness.CommandError
	if !errors.As(err, &cmdErr) {
		t.Fatalf("expected command error, got %v", err)
	}
	if res.ExitCode != 1 {
		t.Fatalf("expected exit code 1, got %d", res.ExitCode)
	}
	if !strings.Contains(res.Stderr, "Error:") {
		t.Fatalf("expected error on stderr, got %q", res.Stderr)
	}
}
