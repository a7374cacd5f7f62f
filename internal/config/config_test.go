package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, int64(64<<20), cfg.Server.MaxUploadBytes)
	assert.Equal(t, 2*time.Hour, cfg.Session.TTL)
	assert.Equal(t, 800, cfg.Chart.Width)
	assert.Equal(t, 600, cfg.Chart.Height)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Empty(t, cfg.AWS.S3Bucket)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	t.Setenv("PORT", "9090")
	t.Setenv("SESSION_TTL", "15m")
	t.Setenv("ALLOWED_ORIGINS", "http://lab.local, ,http://localhost:3000")
	t.Setenv("S3_BUCKET", "heka-exports")
	t.Setenv("METRICS_ENABLED", "false")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, 15*time.Minute, cfg.Session.TTL)
	assert.Equal(t, []string{"http://lab.local", "http://localhost:3000"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, "heka-exports", cfg.AWS.S3Bucket)
	assert.False(t, cfg.Metrics.Enabled)
}
