package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_JSONFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "graphpanel.log")
	l, closer, err := New(Config{Level: "debug", Format: "json", Output: path})
	require.NoError(t, err)

	l.Debug().Str("graph", "g1").Msg("submit")
	l.Trace().Msg("dropped")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"graph":"g1"`)
	assert.Contains(t, string(data), `"message":"submit"`)
	assert.NotContains(t, string(data), "dropped")
	assert.Equal(t, zerolog.DebugLevel, l.GetLevel())
}

func TestNew_Defaults(t *testing.T) {
	l, closer, err := New(Config{})
	require.NoError(t, err)
	assert.NoError(t, closer.Close())
	assert.Equal(t, zerolog.InfoLevel, l.GetLevel())
}

func TestNew_Invalid(t *testing.T) {
	_, _, err := New(Config{Level: "loud"})
	assert.Error(t, err)

	_, _, err = New(Config{Format: "xml"})
	assert.Error(t, err)
}

func TestInit_SetsGlobal(t *testing.T) {
	saved := Logger
	t.Cleanup(func() { Logger = saved })

	path := filepath.Join(t.TempDir(), "out.log")
	closer, err := Init(Config{Level: "warn", Format: "json", Output: path})
	require.NoError(t, err)
	defer closer.Close()

	assert.Equal(t, zerolog.WarnLevel, Logger.GetLevel())
}

func TestIsStream(t *testing.T) {
	for _, out := range []string{"", "stderr", "STDOUT", " stdout "} {
		assert.True(t, IsStream(out), out)
	}
	assert.False(t, IsStream("logs/graphpanel.log"))
}
