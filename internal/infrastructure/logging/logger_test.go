package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, err := New(Config{Level: "loud"})
	assert.Error(t, err)
}

func TestNewBuildsLogger(t *testing.T) {
	logger, err := New(Config{Level: "warn", OutputPaths: []string{"stderr"}})
	require.NoError(t, err)
	require.NotNil(t, logger.Logger)

	assert.False(t, logger.Core().Enabled(zapcore.DebugLevel))
	assert.True(t, logger.Core().Enabled(zapcore.WarnLevel))
}

func TestComponentOnNilLogger(t *testing.T) {
	var l *Logger
	assert.NotNil(t, l.Component("registry"))
	assert.NotNil(t, OrNop(nil))
}

func TestConfigFor(t *testing.T) {
	tests := []struct {
		name        string
		level       string
		development bool
		want        Config
	}{
		{"production default", "", false, DefaultConfig()},
		{"production level", "warn", false, Config{Level: "warn", OutputPaths: []string{"stdout"}}},
		{"development keeps debug", "info", true, DevelopmentConfig()},
		{"development explicit level", "error", true, Config{Level: "error", Development: true, OutputPaths: []string{"stdout"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ConfigFor(tt.level, tt.development))
		})
	}
}

func TestNewDevelopmentLogger(t *testing.T) {
	logger, err := New(ConfigFor("info", true))
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zapcore.DebugLevel))
}

func TestNewNopDiscards(t *testing.T) {
	logger := NewNop()
	assert.False(t, logger.Core().Enabled(zapcore.ErrorLevel))
	assert.NotNil(t, logger.Component("bridge"))
}
