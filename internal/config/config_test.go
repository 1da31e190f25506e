package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, 8001, cfg.Server.Port)
	assert.Equal(t, "mongo", cfg.Database.Driver)
	assert.Equal(t, 24*time.Hour, cfg.JWT.Expiry())
	assert.Equal(t, 48, cfg.Archive.AutoArchiveDelayHours)
	assert.Equal(t, time.Hour, cfg.Archive.SweepInterval)
	assert.True(t, cfg.Archive.SweepEnabled)
	assert.True(t, cfg.Lifecycle.EnforceTransitions)
	assert.Equal(t, "America/Chicago", cfg.Calendar.Timezone)
	assert.Equal(t, 2*time.Hour, cfg.Calendar.ORDuration)
	assert.False(t, cfg.SMTP.Configured())
	assert.Equal(t, "oproom", cfg.Metrics.Prefix)
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("OPROOM_SERVER_PORT", "9090")
	t.Setenv("OPROOM_DATABASE_DRIVER", "memory")
	t.Setenv("MONGO_URL", "mongodb://legacy:27017")
	t.Setenv("AUTO_ARCHIVE_DELAY_HOURS", "12")

	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "memory", cfg.Database.Driver)
	assert.Equal(t, "mongodb://legacy:27017", cfg.Database.URI)
	assert.Equal(t, 12, cfg.Archive.AutoArchiveDelayHours)
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := []byte(`
database:
  driver: memory
archive:
  sweep_interval: 10m
smtp:
  username: scheduler@umn.edu
  password: secret
`)
	require.NoError(t, os.WriteFile(path, yaml, 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "memory", cfg.Database.Driver)
	assert.Equal(t, 10*time.Minute, cfg.Archive.SweepInterval)
	assert.True(t, cfg.SMTP.Configured())
}

func TestLoadConfigMissingExplicitFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestValidateRejectsUnknownDriver(t *testing.T) {
	t.Setenv("OPROOM_DATABASE_DRIVER", "postgres")
	_, err := LoadConfig("")
	assert.ErrorContains(t, err, "unsupported database driver")
}

func TestValidateRejectsOutOfRangeDelay(t *testing.T) {
	t.Setenv("OPROOM_DATABASE_DRIVER", "memory")
	t.Setenv("AUTO_ARCHIVE_DELAY_HOURS", "3000000")
	_, err := LoadConfig("")
	assert.ErrorContains(t, err, "must not exceed")
}
