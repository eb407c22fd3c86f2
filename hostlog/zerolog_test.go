package hostlog

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestZerologAdapterWritesKeyValuePairs(t *testing.T) {
	var buf bytes.Buffer
	z := Zerolog{L: zerolog.New(&buf)}

	z.Info("update started", "node", 9, "path", "/app.bin")

	require.Contains(t, buf.String(), "update started")
	require.Contains(t, buf.String(), "\"node\":9")
	require.Contains(t, buf.String(), "\"path\":\"/app.bin\"")
}

func TestZerologAdapterIgnoresDanglingKey(t *testing.T) {
	var buf bytes.Buffer
	z := Zerolog{L: zerolog.New(&buf)}

	require.NotPanics(t, func() {
		z.Warn("odd keyvals", "onlyKey")
	})
	require.Contains(t, buf.String(), "odd keyvals")
}

func TestNewFallsBackToInfoOnUnknownLevel(t *testing.T) {
	l := New("not-a-level")
	require.Equal(t, zerolog.InfoLevel, l.GetLevel())
}
