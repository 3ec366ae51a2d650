package iostreams

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGetOSIOStreamsIsShared(t *testing.T) {
	require.Same(t, GetOSIOStreams(), GetOSIOStreams())
}

func TestNewTestIOStreamsCapturesOutput(t *testing.T) {
	s, in, out, errOut := NewTestIOStreams()
	in.WriteString("name,price\n")

	_, err := s.Out.Write([]byte("rows"))
	require.NoError(t, err)
	_, err = s.ErrOut.Write([]byte("Error: boom"))
	require.NoError(t, err)

	require.Equal(t, "rows", out.String())
	require.Equal(t, "Error: boom", errOut.String())
	buf := make([]byte, 4)
	_, err = s.In.Read(buf)
	require.NoError(t, err)
	require.Equal(t, "name", string(buf))
}
