package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsWhenFileMissing(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))

	require.NoError(t, err)
	defaults := Defaults()
	assert.Equal(t, defaults.Listen, cfg.Listen)
	assert.Equal(t, defaults.Database, cfg.Database)
	assert.Equal(t, defaults.Display, cfg.Display)
	assert.Equal(t, defaults.Google, cfg.Google)
	assert.Equal(t, defaults.Sync, cfg.Sync)
	assert.Empty(t, cfg.ICS)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
listen: 0.0.0.0:9000
db:
  path: /tmp/calbar-test.db
display:
  timezone: Australia/Melbourne
  nextwithin: 2h
google:
  enabled: false
ics:
  - id: holidays
    name: Public holidays
    url: https://example.com/holidays.ics
    timezone: Europe/Warsaw
sync:
  cron: "@hourly"
`), 0o600))

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:9000", cfg.Listen)
	assert.Equal(t, "/tmp/calbar-test.db", cfg.Database.Path)
	assert.Equal(t, "Australia/Melbourne", cfg.Display.Timezone)
	assert.Equal(t, 2*time.Hour, cfg.Display.NextWithin)
	assert.Equal(t, 100, cfg.Display.HorizonDays)
	assert.False(t, cfg.Google.Enabled)
	assert.Equal(t, 8085, cfg.Google.CallbackPort)
	assert.Equal(t, []ICSFeed{{
		ID:       "holidays",
		Name:     "Public holidays",
		URL:      "https://example.com/holidays.ics",
		Timezone: "Europe/Warsaw",
	}}, cfg.ICS)
	assert.Equal(t, "@hourly", cfg.Sync.Cron)
}

func TestLoad_EnvironmentOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("listen: 0.0.0.0:9000\n"), 0o600))
	t.Setenv("CALBAR_LISTEN", "127.0.0.1:7000")
	t.Setenv("CALBAR_DISPLAY_TIMEZONE", "Asia/Tokyo")

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:7000", cfg.Listen)
	assert.Equal(t, "Asia/Tokyo", cfg.Display.Timezone)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("listen: [unclosed\n"), 0o600))

	_, err := Load(path)

	assert.Error(t, err)
}

func TestDirsFollowXDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/xdg/config")
	t.Setenv("XDG_DATA_HOME", "/xdg/data")

	assert.Equal(t, "/xdg/config/calbar", ConfigDir())
	assert.Equal(t, "/xdg/data/calbar", DataDir())
	assert.Equal(t, "/xdg/config/calbar/config.yaml", DefaultPath())
}
