package config

import (
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"leakwatch/pkg/threat"
)

func newTestLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel) // Reduce log noise in tests
	return logger
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(newTestLogger())
	require.NoError(t, err)

	require.Equal(t, logrus.InfoLevel, cfg.LogLevel)
	require.Equal(t, "7d", cfg.Timeframe)
	require.Equal(t, 10, cfg.TopThreatLimit)
	require.Equal(t, 1000, cfg.CacheMaxSize)
	require.Equal(t, 30*24*time.Hour, cfg.CacheRetention)
	require.Empty(t, cfg.AMQPUrl)
	require.Equal(t, "leakwatch.reports", cfg.AMQPQueueName)
	require.Equal(t, 0, cfg.HTTPPort)

	require.NotNil(t, cfg.Scoring)
	require.Equal(t, 40, cfg.Scoring.BaseScores[threat.LevelCritical])
	require.Equal(t, 2.0, cfg.Scoring.PlatformMultipliers["darkweb"])
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("REPORT_TIMEFRAME", "24h")
	t.Setenv("TOP_THREAT_LIMIT", "5")
	t.Setenv("REPORT_CACHE_MAX_SIZE", "50")
	t.Setenv("REPORT_RETENTION_DAYS", "7")
	t.Setenv("HTTP_PORT", "9090")

	cfg, err := Load(newTestLogger())
	require.NoError(t, err)

	require.Equal(t, logrus.DebugLevel, cfg.LogLevel)
	require.Equal(t, "24h", cfg.Timeframe)
	require.Equal(t, 5, cfg.TopThreatLimit)
	require.Equal(t, 50, cfg.CacheMaxSize)
	require.Equal(t, 7*24*time.Hour, cfg.CacheRetention)
	require.Equal(t, 9090, cfg.HTTPPort)
}

func TestLoadRejectsNonPositiveRetention(t *testing.T) {
	t.Setenv("REPORT_RETENTION_DAYS", "0")

	_, err := Load(newTestLogger())
	require.Error(t, err)
}

func TestLoadScoringOverrides(t *testing.T) {
	t.Setenv("PLATFORM_MULTIPLIERS", "darkweb:3.0, irc:0.5")
	t.Setenv("SENSITIVE_DATA_TYPES", "Credentials, Trade Secrets")
	t.Setenv("RISK_BASE_SCORES", "critical:50,high:35,medium:20,low:5")

	cfg, err := Load(newTestLogger())
	require.NoError(t, err)

	require.Equal(t, map[string]float64{"darkweb": 3.0, "irc": 0.5}, cfg.Scoring.PlatformMultipliers)
	require.Equal(t, []string{"Credentials", "Trade Secrets"}, cfg.Scoring.SensitiveDataTypes)
	require.Equal(t, 50, cfg.Scoring.BaseScores[threat.LevelCritical])
	require.Equal(t, 5, cfg.Scoring.BaseScores[threat.LevelLow])
}

func TestLoadRejectsMalformedMultipliers(t *testing.T) {
	t.Setenv("PLATFORM_MULTIPLIERS", "darkweb=3.0")

	_, err := Load(newTestLogger())
	require.Error(t, err)
}

func TestLoadInvalidLogLevelFallsBack(t *testing.T) {
	t.Setenv("LOG_LEVEL", "chatty")

	cfg, err := Load(newTestLogger())
	require.NoError(t, err)
	require.Equal(t, logrus.InfoLevel, cfg.LogLevel)
}
