package config

import (
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server  ServerConfig
	AWS     AWSConfig
	Session SessionConfig
	Chart   ChartConfig
	Metrics MetricsConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port           string
	Env            string
	LogLevel       string
	AllowedOrigins []string
	MaxUploadBytes int64
}

// AWSConfig holds configuration for the instrument export share. An empty
// S3Bucket disables import.
type AWSConfig struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	S3Bucket        string
	S3Endpoint      string
}

// SessionConfig holds recording session configuration
type SessionConfig struct {
	TTL time.Duration
}

// ChartConfig holds chart rendering configuration
type ChartConfig struct {
	Width  int
	Height int
}

// MetricsConfig holds metrics configuration
type MetricsConfig struct {
	Enabled bool
}

// Load loads configuration from environment variables and .env files
func Load() (*Config, error) {
	// Set defaults
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("ENVIRONMENT", "dev")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("ALLOWED_ORIGINS", "http://localhost:5173,http://localhost:3000")
	viper.SetDefault("MAX_UPLOAD_BYTES", 64<<20)
	viper.SetDefault("SESSION_TTL", "2h")
	viper.SetDefault("CHART_WIDTH", 800)
	viper.SetDefault("CHART_HEIGHT", 600)
	viper.SetDefault("METRICS_ENABLED", true)
	viper.SetDefault("AWS_REGION", "us-east-1")
	viper.SetDefault("AWS_ACCESS_KEY_ID", "")
	viper.SetDefault("AWS_SECRET_ACCESS_KEY", "")
	viper.SetDefault("S3_BUCKET", "")
	viper.SetDefault("S3_ENDPOINT", "")

	// Read from .env files based on environment
	env := viper.GetString("ENVIRONMENT")
	if env == "" {
		env = "dev"
	}

	viper.SetConfigName(".env." + env)
	viper.SetConfigType("env")
	viper.AddConfigPath(".")

	_ = viper.ReadInConfig() // file may not exist

	// Environment variables override .env file values
	viper.AutomaticEnv()

	for _, key := range []string{
		"PORT", "ENVIRONMENT", "LOG_LEVEL", "ALLOWED_ORIGINS", "MAX_UPLOAD_BYTES",
		"SESSION_TTL", "CHART_WIDTH", "CHART_HEIGHT", "METRICS_ENABLED",
		"AWS_REGION", "AWS_ACCESS_KEY_ID", "AWS_SECRET_ACCESS_KEY", "S3_BUCKET", "S3_ENDPOINT",
	} {
		_ = viper.BindEnv(key)
	}

	var config Config
	config.Server.Port = viper.GetString("PORT")
	config.Server.Env = viper.GetString("ENVIRONMENT")
	config.Server.LogLevel = viper.GetString("LOG_LEVEL")
	config.Server.AllowedOrigins = splitList(viper.GetString("ALLOWED_ORIGINS"))
	config.Server.MaxUploadBytes = viper.GetInt64("MAX_UPLOAD_BYTES")
	config.Session.TTL = viper.GetDuration("SESSION_TTL")
	config.Chart.Width = viper.GetInt("CHART_WIDTH")
	config.Chart.Height = viper.GetInt("CHART_HEIGHT")
	config.Metrics.Enabled = viper.GetBool("METRICS_ENABLED")
	config.AWS.Region = viper.GetString("AWS_REGION")
	config.AWS.AccessKeyID = viper.GetString("AWS_ACCESS_KEY_ID")
	config.AWS.SecretAccessKey = viper.GetString("AWS_SECRET_ACCESS_KEY")
	config.AWS.S3Bucket = viper.GetString("S3_BUCKET")
	config.AWS.S3Endpoint = viper.GetString("S3_ENDPOINT")

	log.Debug().
		Strs("allowed_origins", config.Server.AllowedOrigins).
		Str("s3_bucket", config.AWS.S3Bucket).
		Dur("session_ttl", config.Session.TTL).
		Msg("Configuration loaded")

	return &config, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
