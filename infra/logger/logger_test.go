package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_ReturnsLogger(t *testing.T) {
	l := New("test")
	require.NotNil(t, l)
	// Must not panic on any level.
	l.Debugf("debug %d", 1)
	l.Debugw("debug", map[string]any{"k": "v"})
	l.Infof("info")
	l.Warnf("warn")
	l.Errorf("error")
}

func TestNew_DevConsoleMode(t *testing.T) {
	t.Setenv("APP_ENV", "dev")
	l := New("test")
	require.NotNil(t, l)
	l.Infof("console mode")
}

func TestSetLevel(t *testing.T) {
	require.NoError(t, SetLevel("debug"))
	require.NoError(t, SetLevel("WARN"))
	assert.Error(t, SetLevel("loud"))
}
