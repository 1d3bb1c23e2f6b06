package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
)

// SourceMode selects where POST /api/analyze/source reads its tables
type SourceMode string

const (
	SourceNone   SourceMode = "none"
	SourceSQL    SourceMode = "sql"
	SourceDynamo SourceMode = "dynamo"
)

// Config holds all configuration for the application
type Config struct {
	Port           string
	AllowedOrigins []string
	WSReadTimeout  time.Duration
	WSWriteTimeout time.Duration
	LogLevel       string
	PingPeriod     time.Duration
	PongWait       time.Duration
	WriteWait      time.Duration
	MaxMessageSize int64

	// Analysis
	ProfilePath    string
	Location       *time.Location
	MaxUploadBytes int64

	// Stored input tables
	SourceMode SourceMode
	SQLDriver  string
	SQLDSN     string
	// Create the default SQL tables on start
	SQLAutoMigrate bool

	// Scheduled analysis of the stored source; zero interval disables it
	ScheduleInterval     time.Duration
	ScheduleLookbackDays int

	// Recent results kept for GET /api/runs
	RunCacheSize int

	// Run notifications
	AMQPURL        string
	AMQPExchange   string
	AMQPRoutingKey string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	config := &Config{
		Port:           getEnv("PORT", "8080"),
		AllowedOrigins: strings.Split(getEnv("ALLOWED_ORIGINS", "http://localhost:5173"), ","),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		ProfilePath:    getEnv("SCORING_PROFILE", ""),
		SQLDriver:      getEnv("SQL_DRIVER", "sqlite"),
		SQLDSN:         getEnv("SQL_DSN", "chat-analyzer.db"),
		AMQPURL:        getEnv("AMQP_URL", ""),
		AMQPExchange:   getEnv("AMQP_EXCHANGE", "chat-analyzer"),
		AMQPRoutingKey: getEnv("AMQP_ROUTING_KEY", "run.completed"),
	}

	// Parse WebSocket timeouts
	wsReadTimeout, err := strconv.Atoi(getEnv("WS_READ_TIMEOUT", "60"))
	if err != nil {
		return nil, fmt.Errorf("invalid WS_READ_TIMEOUT: %w", err)
	}
	config.WSReadTimeout = time.Duration(wsReadTimeout) * time.Second

	wsWriteTimeout, err := strconv.Atoi(getEnv("WS_WRITE_TIMEOUT", "10"))
	if err != nil {
		return nil, fmt.Errorf("invalid WS_WRITE_TIMEOUT: %w", err)
	}
	config.WSWriteTimeout = time.Duration(wsWriteTimeout) * time.Second

	// Calculate WebSocket constants
	config.PongWait = config.WSReadTimeout
	config.PingPeriod = (config.PongWait * 9) / 10 // Must be less than pongWait
	config.WriteWait = config.WSWriteTimeout
	config.MaxMessageSize = 512

	maxUploadMB, err := strconv.Atoi(getEnv("MAX_UPLOAD_MB", "32"))
	if err != nil || maxUploadMB <= 0 {
		return nil, fmt.Errorf("invalid MAX_UPLOAD_MB: %q", os.Getenv("MAX_UPLOAD_MB"))
	}
	config.MaxUploadBytes = int64(maxUploadMB) << 20

	config.Location, err = time.LoadLocation(getEnv("TIMEZONE", "Asia/Seoul"))
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE: %w", err)
	}

	config.ScheduleInterval, err = time.ParseDuration(getEnv("SCHEDULE_INTERVAL", "0s"))
	if err != nil || config.ScheduleInterval < 0 {
		return nil, fmt.Errorf("invalid SCHEDULE_INTERVAL: %q", os.Getenv("SCHEDULE_INTERVAL"))
	}

	config.ScheduleLookbackDays, err = strconv.Atoi(getEnv("SCHEDULE_LOOKBACK_DAYS", "1"))
	if err != nil || config.ScheduleLookbackDays < 1 {
		return nil, fmt.Errorf("invalid SCHEDULE_LOOKBACK_DAYS: %q", os.Getenv("SCHEDULE_LOOKBACK_DAYS"))
	}

	config.RunCacheSize, err = strconv.Atoi(getEnv("RUN_CACHE_SIZE", "20"))
	if err != nil || config.RunCacheSize < 1 {
		return nil, fmt.Errorf("invalid RUN_CACHE_SIZE: %q", os.Getenv("RUN_CACHE_SIZE"))
	}

	config.SQLAutoMigrate, err = strconv.ParseBool(getEnv("SQL_AUTO_MIGRATE", "false"))
	if err != nil {
		return nil, fmt.Errorf("invalid SQL_AUTO_MIGRATE: %w", err)
	}

	switch mode := SourceMode(getEnv("SOURCE_MODE", string(SourceNone))); mode {
	case SourceNone, SourceSQL, SourceDynamo:
		config.SourceMode = mode
	default:
		return nil, fmt.Errorf("invalid SOURCE_MODE: %q", mode)
	}

	// Trim spaces from allowed origins
	for i, origin := range config.AllowedOrigins {
		config.AllowedOrigins[i] = strings.TrimSpace(origin)
	}

	return config, nil
}

// getEnv gets an environment variable with a fallback default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
