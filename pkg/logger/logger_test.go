package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	log, err := New(Config{Level: "debug", Format: "json", OutputPath: "stdout"})
	require.NoError(t, err)
	assert.NotNil(t, log)
}

func TestNew_ConsoleFormat(t *testing.T) {
	log, err := New(Config{Level: "info", Format: "console", OutputPath: "stderr"})
	require.NoError(t, err)
	assert.NotNil(t, log)
}

func TestNew_InvalidLevelFallsBack(t *testing.T) {
	log, err := New(Config{Level: "loud", Format: "json", OutputPath: "stdout"})
	require.NoError(t, err)
	assert.NotNil(t, log)
}

func TestNewDefault(t *testing.T) {
	assert.NotNil(t, NewDefault())
}
