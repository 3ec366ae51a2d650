//go:build e2e

package harness

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	levelDebug = iota
	levelInfo
	levelWarn
	levelError
)

var (
	// logLevel controls what gets written to run.log and stderr, and is
	// propagated to tablectl as --log-level.
	logLevel   = parseLogLevel(os.Getenv("TABLECTL_E2E_LOG_LEVEL"), levelWarn)
	runLogFile *os.File
	runDirPath string
)

// initRunLogging tees harness logs into <runDir>/run.log.
func initRunLogging(runDir string) {
	runDirPath = runDir
	if err := os.MkdirAll(runDir, 0o755); err != nil {
		return
	}
	f, err := os.OpenFile(filepath.Join(runDir, "run.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err == nil {
		runLogFile = f
	}
}

func logf(level int, format string, args ...any) {
	if level < logLevel {
		return
	}
	ts := time.Now().Format(time.RFC3339)
	msg := fmt.Sprintf("%s [e2e %s] "+format+"\n", append([]any{ts, levelString(level)}, args...)...)
	_, _ = os.Stderr.WriteString(msg)
	if runLogFile != nil {
		_, _ = runLogFile.WriteString(msg)
	}
}

func Debugf(format string, args ...any) { logf(levelDebug, format, args...) }
func Infof(format string, args ...any)  { logf(levelInfo, format, args...) }
func Warnf(format string, args ...any)  { logf(levelWarn, format, args...) }
func Errorf(format string, args ...any) { logf(levelError, format, args...) }

func parseLogLevel(v string, emptyDefault int) int {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "trace", "debug":
		return levelDebug
	case "info":
		return levelInfo
	case "warn":
		return levelWarn
	case "error":
		return levelError
	case "":
		return emptyDefault
	default:
		return levelInfo
	}
}

func levelString(level int) string {
	switch level {
	case levelDebug:
		return "debug"
	case levelWarn:
		return "warn"
	case levelError:
		return "error"
	default:
		return "info"
	}
}
