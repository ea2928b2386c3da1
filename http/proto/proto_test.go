package proto

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFromString(t *testing.T) {
	require.Equal(t, HTTP10, FromString("HTTP/1.0"))
	require.Equal(t, HTTP11, FromString("HTTP/1.1"))
	require.Equal(t, Unknown, FromString("HTTP/2.0"))
	require.Equal(t, Unknown, FromString("http/1.1"))
	require.Equal(t, "HTTP/1.1", HTTP11.String())
}
