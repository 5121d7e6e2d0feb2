package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetLogger_FallsBackWithoutInit(t *testing.T) {
	globalLogger = nil
	assert.NotNil(t, GetLogger())

	// Must not panic before Init
	Info("hello", "k", "v")
	Warn("hello")
}

func TestInit_RejectsUnknownLevel(t *testing.T) {
	err := Init("development", "chatty")
	require.Error(t, err)
}

func TestInit_Production(t *testing.T) {
	require.NoError(t, Init("production", "warn"))
	defer func() { globalLogger = nil }()

	assert.False(t, GetLogger().Desugar().Core().Enabled(-1), "debug should be disabled at warn")
	assert.NotNil(t, WithRequest("req-1", "GET", "/airports/search"))
}
