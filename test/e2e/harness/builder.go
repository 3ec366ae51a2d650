//go:build e2e

package harness

import (
	"errors"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
)

var (
	buildOnce sync.Once
	binPath   string
	buildErr  error
)

// BinPath returns the path to the e2e-built tablectl binary. It builds once per test session.
func BinPath() (string, error) {
	buildOnce.Do(func() {
		rd, err := ensureRunDir()
		if err != nil {
			buildErr = err
			return
		}
		// Allow overriding the binary path for faster iteration.
		if override := os.Getenv("TABLECTL_E2E_BIN"); override != "" {
			fi, err := os.Stat(override)
			if err != nil || fi.IsDir() {
				buildErr = errors.New("TABLECTL_E2E_BIN set but not a file")
				return
			}
			dest := filepath.Join(rd, "bin", exeName("tablectl"))
			_ = os.MkdirAll(filepath.Dir(dest), 0o755)
			if err := copyFile(override, dest); err != nil {
				Debugf("Copy failed, using override path directly: %v", err)
				binPath = override
				return
			}
			binPath = dest
			Infof("Copied override binary to: %s", dest)
			return
		}

		modRoot, err := moduleRoot()
		if err != nil {
			buildErr = err
			return
		}
		out := filepath.Join(rd, "bin", exeName("tablectl"))
		_ = os.MkdirAll(filepath.Dir(out), 0o755)
		args := []string{"build", "-trimpath"}
		if ld := os.Getenv("TABLECTL_E2E_LDFLAGS"); ld != "" {
			args = append(args, "-ldflags", ld)
		}
		args = append(args, "-o", out)
		cmd := exec.Command("go", args...)
		cmd.Dir = modRoot
		// modernc.org/sqlite is pure Go, the binary builds without cgo
		cmd.Env = append(os.Environ(), "CGO_ENABLED=0")
		Debugf("Executing: %s (dir=%s)", strings.Join(cmd.Args, " "), cmd.Dir)
		if output, err := cmd.CombinedOutput(); err != nil {
			Errorf("go build failed: %s", output)
			buildErr = err
			return
		}
		Infof("Built tablectl binary: %s", out)
		binPath = out
	})
	return binPath, buildErr
}

func exeName(name string) string {
	if runtime.GOOS == "windows" {
		return name + ".exe"
	}
	return name
}

// moduleRoot finds the repository root by walking up to the nearest go.mod.
func moduleRoot() (string, error) {
	_, file, _, _ := runtime.Caller(0)
	dir := filepath.Dir(file)
	for i := 0; i < 10; i++ {
		cand := filepath.Join(dir, "go.mod")
		if fi, err := os.Stat(cand); err == nil && !fi.IsDir() {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", errors.New("could not locate module root (go.mod)")
}

// ensureRunDir creates or returns the per-run artifacts dir and configures logging.
func ensureRunDir() (string, error) {
	if runDirPath != "" {
		return runDirPath, nil
	}
	if base := os.Getenv("TABLECTL_E2E_ARTIFACTS_DIR"); base != "" {
		if err := os.MkdirAll(base, 0o755); err != nil {
			return "", err
		}
		initRunLogging(base)
		Infof("Using provided artifacts dir: %s", base)
		return base, nil
	}
	d, err := os.MkdirTemp("", "tablectl-e2e-run-")
	if err != nil {
		return "", err
	}
	initRunLogging(d)
	Infof("Created artifacts dir: %s", d)
	return d, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer func() { _ = out.Close() }()
	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	if err := out.Chmod(0o755); err != nil {
		return err
	}
	return out.Sync()
}
