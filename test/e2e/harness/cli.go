//go:build e2e

package harness

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// CLI runs the tablectl binary against an isolated configuration directory.
type CLI struct {
	BinPath   string
	Env       []string
	WorkDir   string
	Profile   string
	ConfigDir string // XDG_CONFIG_HOME
	Timeout   time.Duration
	TestDir   string
}

type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
	Duration time.Duration
}

// CommandError wraps execution failures with the captured Result.
type CommandError struct {
	Result Result
	Err    error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("%v (exit=%d): %s", e.Err, e.Result.ExitCode, strings.TrimSpace(e.Result.Stderr))
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// NewCLIT constructs a CLI instance under the per-run artifacts dir using the test's name.
func NewCLIT(t *testing.T) (*CLI, error) {
	t.Helper()
	bin, err := BinPath()
	if err != nil {
		return nil, err
	}
	rd, err := ensureRunDir()
	if err != nil {
		return nil, err
	}
	testDir := filepath.Join(rd, "tests", sanitizeName(t.Name()))
	cfgDir := filepath.Join(testDir, "config")
	if err := os.MkdirAll(cfgDir, 0o755); err != nil {
		return nil, err
	}
	cli := &CLI{
		BinPath:   bin,
		Env:       append(os.Environ(), "XDG_CONFIG_HOME="+cfgDir, "NO_COLOR=1"),
		Profile:   "e2e",
		ConfigDir: cfgDir,
		Timeout:   60 * time.Second,
		TestDir:   testDir,
	}
	if err := writeProfileConfig(cfgDir, cli.Profile, levelString(logLevel)); err != nil {
		return nil, err
	}
	Infof("TestConfig: test=%s dir=%s bin=%s", t.Name(), testDir, bin)
	return cli, nil
}

// WriteFile stores a fixture under the test directory and returns its path.
func (c *CLI) WriteFile(name, content string) (string, error) {
	path := filepath.Join(c.TestDir, "data", name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}
	return path, os.WriteFile(path, []byte(content), 0o600)
}

// Run executes tablectl with args. --profile is appended unless given.
func (c *CLI) Run(ctx context.Context, args ...string) (Result, error) {
	if !hasArg(args, "--profile", "-p") && c.Profile != "" {
		args = append(args, "--profile", c.Profile)
	}
	if !hasArg(args, "--log-file") {
		args = append(args, "--log-file", filepath.Join(c.TestDir, "tablectl.log"))
	}

	var cancel context.CancelFunc
	if c.Timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, c.BinPath, args...)
	cmd.Dir = c.WorkDir
	cmd.Env = c.Env
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	Debugf("Run: %s", strings.Join(cmd.Args, " "))
	err := cmd.Run()
	res := Result{Stdout: stdout.String(), Stderr: stderr.String(), Duration: time.Since(start)}
	if err != nil {
		res.ExitCode = -1
		if ee, ok := err.(*exec.ExitError); ok {
			res.ExitCode = ee.ExitCode()
		}
		Debugf("Run: exit=%d stderr=%q", res.ExitCode, res.Stderr)
		return res, &CommandError{Result: res, Err: err}
	}
	return res, nil
}

// RunJSON runs the command forcing JSON output and unmarshals stdout into out.
func (c *CLI) RunJSON(ctx context.Context, out any, args ...string) (Result, error) {
	if !hasArg(args, "--output", "-o") {
		args = append(args, "-o", "json")
	}
	res, err := c.Run(ctx, args...)
	if err != nil {
		return res, err
	}
	if err := json.Unmarshal([]byte(res.Stdout), out); err != nil {
		return res, fmt.Errorf("decoding stdout: %w", err)
	}
	return res, nil
}

func hasArg(args []string, names ...string) bool {
	for _, a := range args {
		for _, n := range names {
			if a == n || strings.HasPrefix(a, n+"=") {
				return true
			}
		}
	}
	return false
}

func sanitizeName(s string) string {
	r := strings.NewReplacer("/", "_", " ", "_", ":", "_")
	return r.Replace(s)
}

// writeProfileConfig writes a minimal config.yaml under <cfgDir>/tablectl.
func writeProfileConfig(cfgDir, profile, logLevel string) error {
	appDir := filepath.Join(cfgDir, "tablectl")
	if err := os.MkdirAll(appDir, 0o755); err != nil {
		return err
	}
	y := fmt.Sprintf("%s:\n  output: text\n  log-level: %s\n  color-theme: tablectl-light\n  table:\n    rows-per-page: 25\n",
		profile, logLevel)
	path := filepath.Join(appDir, "config.yaml")
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	return os.WriteFile(path, []byte(y), 0o644)
}
