package clipboard

import (
	"bytes"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTerminalWritesOSC52(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Terminal{Out: &buf}.Write("SCORE 120"))

	out := buf.String()
	assert.Contains(t, out, "\x1b]52;c;")
	assert.Contains(t, out, base64.StdEncoding.EncodeToString([]byte("SCORE 120")))
}

func TestTerminalWithoutOutput(t *testing.T) {
	assert.ErrorIs(t, Terminal{}.Write("x"), ErrUnavailable)
}
