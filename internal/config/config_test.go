package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	viper.Reset()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, "roster", cfg.Database.DBName)
	assert.Equal(t, 6379, cfg.Redis.Port)
	assert.Equal(t, 720*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, 3, cfg.Scheduler.HorizonMonths)
	assert.Equal(t, "0 2 * * *", cfg.Scheduler.MaterializeCron)
	assert.Equal(t, 4, cfg.Leave.MaxOpenRequests)
	assert.Equal(t, 6, cfg.Leave.UpcomingLimit)
	assert.Equal(t, "auckland", cfg.Holiday.Region)
	assert.Equal(t, 12*time.Hour, cfg.Holiday.CacheTTL)
}

func TestLoadFromFile(t *testing.T) {
	viper.Reset()

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := []byte(`
server:
  port: 9090
leave:
  max_open_requests: 2
holiday:
  region: wellington
`)
	require.NoError(t, os.WriteFile(path, content, 0o644))

	cfg, err := LoadWithPath(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 2, cfg.Leave.MaxOpenRequests)
	assert.Equal(t, "wellington", cfg.Holiday.Region)
	// Untouched sections keep their defaults
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, 6, cfg.Leave.UpcomingLimit)
}
