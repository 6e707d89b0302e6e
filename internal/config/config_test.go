package config_test

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloudify-cosmo/cloudify-language-server/internal/config"
)

func TestLoadOverlaysDefaults(t *testing.T) {
	cfg, err := config.Load(map[string]any{
		"lint_enabled":  false,
		"extra_plugins": []string{"cloudify-custom-plugin"},
	})
	require.NoError(t, err)

	assert.False(t, cfg.LintEnabled)
	assert.Equal(t, []string{"cloudify-custom-plugin"}, cfg.ExtraPlugins)
	assert.Equal(t, config.Default().MarketplaceURL, cfg.MarketplaceURL)
	assert.Equal(t, time.Second, cfg.RefreshInterval())
}

func TestLoadNil(t *testing.T) {
	cfg, err := config.Load(nil)
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
}

func TestLoadRejectsInvalid(t *testing.T) {
	_, err := config.Load(map[string]any{"lint_max_concurrent": 0})
	assert.Error(t, err)

	_, err = config.Load(map[string]any{"lint_enabled": "yes"})
	assert.Error(t, err)
}

func TestLoadFromYAML(t *testing.T) {
	cfg, err := config.LoadFromYAML(strings.NewReader("lint_command: /opt/bin/cfy-lint\ncache_dir: /var/cache/cfy\ncache_ttl_hours: 2\n"))
	require.NoError(t, err)
	assert.Equal(t, "/opt/bin/cfy-lint", cfg.LintCommand)
	assert.Equal(t, filepath.Join("/var/cache/cfy", "node-types.db"), cfg.CachePath())
	assert.Equal(t, 2*time.Hour, cfg.CacheTTL())
	assert.Equal(t, 100, cfg.MaxNumberOfProblems)

	cfg, err = config.LoadFromYAML(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
}

func TestCachePathFollowsXDG(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_STATE_HOME", dir)
	assert.Equal(t, filepath.Join(dir, "cloudify-ls", "node-types.db"), config.Default().CachePath())
}

func TestOverlay(t *testing.T) {
	base := config.Default()
	base.ExtraPlugins = []string{"cloudify-base-plugin"}
	base.LintEnabled = false

	cfg, err := base.Overlay(map[string]any{"extra_plugins": []string{"cloudify-other-plugin"}})
	require.NoError(t, err)
	assert.False(t, cfg.LintEnabled)
	assert.Equal(t, []string{"cloudify-other-plugin"}, cfg.ExtraPlugins)
	assert.Equal(t, []string{"cloudify-base-plugin"}, base.ExtraPlugins)
}
