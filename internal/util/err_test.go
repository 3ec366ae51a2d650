package util

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCheckError(t *testing.T) {
	var buf bytes.Buffer
	code := -1
	origOut, origExit := errOut, exitFunc
	t.Cleanup(func() { errOut, exitFunc = origOut, origExit })
	errOut = &buf
	exitFunc = func(c int) { code = c }

	CheckError(nil)
	require.Equal(t, -1, code)
	require.Empty(t, buf.String())

	CheckError(errors.New("config file not found"))
	require.Equal(t, 1, code)
	require.Equal(t, "Error: config file not found\n", buf.String())
}
