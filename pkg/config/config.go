// Package config loads the runtime configuration from environment
// variables, with an optional .env file. The scoring tables, sensitive
// data-type list and report limits are all overridable here so they can
// be recalibrated without touching the algorithms.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"leakwatch/pkg/errors"
	"leakwatch/pkg/scoring"
	"leakwatch/pkg/threat"
)

// Config is the complete application configuration.
type Config struct {
	// Logging
	LogLevel logrus.Level

	// Reporting
	Timeframe      string
	TopThreatLimit int
	CacheMaxSize   int
	CacheRetention time.Duration

	// Scoring tables
	Scoring *scoring.Config

	// AMQP report publishing (disabled when URL is empty)
	AMQPUrl       string
	AMQPQueueName string

	// HTTP metrics/report endpoint (disabled when 0)
	HTTPPort int
}

// Load reads configuration from the environment. A missing .env file is
// not an error; explicit environment variables always win.
func Load(logger *logrus.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Debug("No .env file found, using environment variables only")
	}

	config := &Config{
		LogLevel:       parseLogLevel(os.Getenv("LOG_LEVEL"), logger),
		Timeframe:      getEnvString("REPORT_TIMEFRAME", "7d"),
		TopThreatLimit: getEnvInt("TOP_THREAT_LIMIT", 10),
		CacheMaxSize:   getEnvInt("REPORT_CACHE_MAX_SIZE", 1000),
		AMQPUrl:        os.Getenv("AMQP_URL"),
		AMQPQueueName:  getEnvString("AMQP_QUEUE_NAME", "leakwatch.reports"),
		HTTPPort:       getEnvInt("HTTP_PORT", 0),
	}

	retentionDays := getEnvInt("REPORT_RETENTION_DAYS", 30)
	if retentionDays <= 0 {
		return nil, errors.NewInvalidInput("REPORT_RETENTION_DAYS must be positive",
			map[string]interface{}{"value": retentionDays})
	}
	config.CacheRetention = time.Duration(retentionDays) * 24 * time.Hour

	if config.TopThreatLimit < 1 {
		logger.Warn("Invalid TOP_THREAT_LIMIT; defaulting to 10")
		config.TopThreatLimit = 10
	}

	scoringConfig, err := loadScoringConfig(logger)
	if err != nil {
		return nil, err
	}
	config.Scoring = scoringConfig

	return config, nil
}

// loadScoringConfig starts from the built-in tables and applies any
// environment overrides.
func loadScoringConfig(logger *logrus.Logger) (*scoring.Config, error) {
	cfg := scoring.DefaultConfig()

	if raw := os.Getenv("PLATFORM_MULTIPLIERS"); raw != "" {
		multipliers, err := parseFloatTable(raw)
		if err != nil {
			return nil, errors.Wrap(err, "invalid PLATFORM_MULTIPLIERS")
		}
		cfg.PlatformMultipliers = multipliers
		logger.WithField("platforms", len(multipliers)).Info("Platform multiplier table overridden")
	}

	if raw := os.Getenv("SENSITIVE_DATA_TYPES"); raw != "" {
		cfg.SensitiveDataTypes = splitAndTrim(raw)
		logger.WithField("types", len(cfg.SensitiveDataTypes)).Info("Sensitive data-type list overridden")
	}

	if raw := os.Getenv("RISK_BASE_SCORES"); raw != "" {
		scores, err := parseIntTable(raw)
		if err != nil {
			return nil, errors.Wrap(err, "invalid RISK_BASE_SCORES")
		}
		baseScores := make(map[threat.Level]int, len(scores))
		for name, score := range scores {
			baseScores[threat.ParseLevel(name)] = score
		}
		cfg.BaseScores = baseScores
		logger.Info("Risk base-score table overridden")
	}

	return cfg, nil
}

func parseLogLevel(value string, logger *logrus.Logger) logrus.Level {
	if value == "" {
		return logrus.InfoLevel
	}
	level, err := logrus.ParseLevel(value)
	if err != nil {
		logger.WithField("log_level", value).Warn("Invalid LOG_LEVEL; defaulting to info")
		return logrus.InfoLevel
	}
	return level
}

// parseFloatTable parses "name:value,name:value" pairs.
func parseFloatTable(raw string) (map[string]float64, error) {
	table := make(map[string]float64)
	for _, pair := range strings.Split(raw, ",") {
		name, value, ok := strings.Cut(strings.TrimSpace(pair), ":")
		if !ok {
			return nil, errors.New("expected name:value pair", map[string]interface{}{"pair": pair})
		}
		parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return nil, errors.Wrap(err, "invalid numeric value", map[string]interface{}{"pair": pair})
		}
		table[strings.ToLower(strings.TrimSpace(name))] = parsed
	}
	return table, nil
}

// parseIntTable parses "name:value,name:value" pairs.
func parseIntTable(raw string) (map[string]int, error) {
	table := make(map[string]int)
	for _, pair := range strings.Split(raw, ",") {
		name, value, ok := strings.Cut(strings.TrimSpace(pair), ":")
		if !ok {
			return nil, errors.New("expected name:value pair", map[string]interface{}{"pair": pair})
		}
		parsed, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return nil, errors.Wrap(err, "invalid integer value", map[string]interface{}{"pair": pair})
		}
		table[strings.TrimSpace(name)] = parsed
	}
	return table, nil
}

func splitAndTrim(raw string) []string {
	var values []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			values = append(values, trimmed)
		}
	}
	return values
}

func getEnvString(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}
