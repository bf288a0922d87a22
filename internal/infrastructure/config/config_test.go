package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsMatchDefault(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, Default(), cfg)
	assert.Equal(t, "0.0.0.0:8000", cfg.Server.Addr())
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9100")
	t.Setenv("SESSION_DEBOUNCE", "25ms")
	t.Setenv("SESSION_HISTORY", "4")
	t.Setenv("VFS_SEED_DIR", "/srv/garrysmod/lua")
	t.Setenv("VFS_SEED_PATTERNS", "**/*.lua")
	t.Setenv("COMPLETION_FEED_URL", "https://example.com/gwiki.json")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9100", cfg.Server.Port)
	assert.Equal(t, 25*time.Millisecond, cfg.Session.Debounce)
	assert.Equal(t, 4, cfg.Session.HistorySize)
	assert.Equal(t, "/srv/garrysmod/lua", cfg.VFS.SeedDir)
	assert.Equal(t, []string{"**/*.lua"}, cfg.VFS.Patterns)
	assert.Equal(t, "https://example.com/gwiki.json", cfg.Completion.FeedURL)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"unparsable duration", "SESSION_DEBOUNCE", "soon"},
		{"zero history", "SESSION_HISTORY", "0"},
		{"zero match timeout", "SEARCH_MATCH_TIMEOUT", "0s"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.val)

			_, err := Load()
			assert.Error(t, err)
			assert.Equal(t, Default(), LoadOrDefault())
		})
	}
}
