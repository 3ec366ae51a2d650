package iostreams

import (
	"bytes"
	"io"
	"os"
	"sync"
)

// IOStreams are the readers and writers a command talks through. Commands
// never touch os.Stdout directly so tests can capture every byte.
type IOStreams struct {
	In     io.Reader
	Out    io.Writer
	ErrOut io.Writer
}

// Key is the context key type for the command streams.
type Key struct{}

// StreamsKey stores *IOStreams on the command context.
var StreamsKey = Key{}

var (
	osOnce    sync.Once
	osStreams *IOStreams
)

// GetOSIOStreams returns the process streams, built once.
func GetOSIOStreams() *IOStreams {
	osOnce.Do(func() {
		osStreams = &IOStreams{In: os.Stdin, Out: os.Stdout, ErrOut: os.Stderr}
	})
	return osStreams
}

// NewTestIOStreams returns streams backed by buffers along with the buffers
// themselves. None of them is a terminal, so table output is static.
func NewTestIOStreams() (IOStreams, *bytes.Buffer, *bytes.Buffer, *bytes.Buffer) {
	in, out, errOut := &bytes.Buffer{}, &bytes.Buffer{}, &bytes.Buffer{}
	return IOStreams{In: in, Out: out, ErrOut: errOut}, in, out, errOut
}
