package log

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func newDualLogger(primaryBuf, secondaryBuf *bytes.Buffer) *slog.Logger {
	primary := slog.NewTextHandler(primaryBuf, &slog.HandlerOptions{Level: slog.LevelInfo})
	secondary := slog.NewTextHandler(secondaryBuf, &slog.HandlerOptions{Level: slog.LevelError})
	return slog.New(NewDualHandler(primary, secondary))
}

func TestDualHandlerMirroring(t *testing.T) {
	tests := []struct {
		name       string
		setup      func() func()
		wantMirror bool
	}{
		{
			name:       "enabled",
			setup:      func() func() { EnableErrorMirroring(); return func() {} },
			wantMirror: true,
		},
		{
			name:  "disabled",
			setup: func() func() { DisableErrorMirroring(); return func() {} },
		},
		{
			name:  "suspended",
			setup: SuspendErrorMirroring,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Cleanup(EnableErrorMirroring)
			restore := tt.setup()
			defer restore()

			var primaryBuf, secondaryBuf bytes.Buffer
			logger := newDualLogger(&primaryBuf, &secondaryBuf)
			logger.Error("sort failed", slog.String("column", "price"))
			logger.Info("page drawn")

			require.Contains(t, primaryBuf.String(), "sort failed")
			require.Contains(t, primaryBuf.String(), "page drawn")
			require.NotContains(t, secondaryBuf.String(), "page drawn")
			if tt.wantMirror {
				require.Contains(t, secondaryBuf.String(), "column=price")
			} else {
				require.Empty(t, secondaryBuf.String())
			}
		})
	}
}

func TestSuspendErrorMirroringRestoresPreviousSetting(t *testing.T) {
	t.Cleanup(EnableErrorMirroring)

	EnableErrorMirroring()
	outer := SuspendErrorMirroring()
	require.False(t, errorMirroringEnabled())

	inner := SuspendErrorMirroring()
	inner()
	require.False(t, errorMirroringEnabled(), "inner restore keeps the outer suspension")

	outer()
	require.True(t, errorMirroringEnabled())

	DisableErrorMirroring()
	SuspendErrorMirroring()()
	require.False(t, errorMirroringEnabled())
}

func TestNewLoggerWithoutMirror(t *testing.T) {
	t.Cleanup(EnableErrorMirroring)
	EnableErrorMirroring()

	var buf bytes.Buffer
	logger := NewLogger(&buf, nil, LevelTrace)
	logger.Log(t.Context(), LevelTrace, "view derived", slog.Int("rows", 3))
	logger.Error("mount failed")

	require.Contains(t, buf.String(), "level=TRACE")
	require.Contains(t, buf.String(), "rows=3")
	require.Contains(t, buf.String(), "mount failed")
}

func TestNewLoggerMirrorsErrors(t *testing.T) {
	t.Cleanup(EnableErrorMirroring)
	EnableErrorMirroring()

	var file, console bytes.Buffer
	logger := NewLogger(&file, &console, slog.LevelInfo)
	logger.Debug("hidden")
	logger.Error("source unreadable", slog.String("path", "data.csv"))

	require.NotContains(t, file.String(), "hidden")
	require.Contains(t, file.String(), "source unreadable")
	require.Contains(t, console.String(), "source unreadable")
	require.Contains(t, console.String(), "data.csv")
}
