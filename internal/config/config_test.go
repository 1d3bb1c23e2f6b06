package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr bool
		check   func(*testing.T, *Config)
	}{
		{
			name: "default values",
			env:  map[string]string{},
			check: func(t *testing.T, cfg *Config) {
				if cfg.Port != "8080" {
					t.Errorf("expected port 8080, got %s", cfg.Port)
				}
				if cfg.LogLevel != "info" {
					t.Errorf("expected log level info, got %s", cfg.LogLevel)
				}
				if cfg.WSReadTimeout != 60*time.Second {
					t.Errorf("expected WSReadTimeout 60s, got %v", cfg.WSReadTimeout)
				}
				if cfg.SourceMode != SourceNone {
					t.Errorf("expected source mode none, got %s", cfg.SourceMode)
				}
				if cfg.MaxUploadBytes != 32<<20 {
					t.Errorf("expected 32MB upload limit, got %d", cfg.MaxUploadBytes)
				}
				if cfg.Location.String() != "Asia/Seoul" {
					t.Errorf("expected Asia/Seoul, got %s", cfg.Location)
				}
				if cfg.AMQPURL != "" {
					t.Errorf("expected notifications disabled, got %s", cfg.AMQPURL)
				}
				if cfg.ScheduleInterval != 0 || cfg.ScheduleLookbackDays != 1 {
					t.Errorf("expected schedule disabled with 1-day lookback, got %v/%d", cfg.ScheduleInterval, cfg.ScheduleLookbackDays)
				}
				if cfg.RunCacheSize != 20 {
					t.Errorf("expected run cache size 20, got %d", cfg.RunCacheSize)
				}
				if cfg.SQLAutoMigrate {
					t.Error("expected auto migration off by default")
				}
			},
		},
		{
			name: "custom values",
			env: map[string]string{
				"PORT":                   "9000",
				"LOG_LEVEL":              "debug",
				"WS_READ_TIMEOUT":        "30",
				"WS_WRITE_TIMEOUT":       "5",
				"ALLOWED_ORIGINS":        "http://example.com,http://test.com",
				"SOURCE_MODE":            "sql",
				"SQL_DRIVER":             "postgres",
				"SQL_AUTO_MIGRATE":       "true",
				"TIMEZONE":               "UTC",
				"MAX_UPLOAD_MB":          "8",
				"SCORING_PROFILE":        "/etc/chat-analyzer/profile.yaml",
				"SCHEDULE_INTERVAL":      "24h",
				"SCHEDULE_LOOKBACK_DAYS": "7",
			},
			check: func(t *testing.T, cfg *Config) {
				if cfg.Port != "9000" {
					t.Errorf("expected port 9000, got %s", cfg.Port)
				}
				if cfg.LogLevel != "debug" {
					t.Errorf("expected log level debug, got %s", cfg.LogLevel)
				}
				if cfg.WSReadTimeout != 30*time.Second {
					t.Errorf("expected WSReadTimeout 30s, got %v", cfg.WSReadTimeout)
				}
				if cfg.WSWriteTimeout != 5*time.Second {
					t.Errorf("expected WSWriteTimeout 5s, got %v", cfg.WSWriteTimeout)
				}
				if len(cfg.AllowedOrigins) != 2 {
					t.Errorf("expected 2 allowed origins, got %d", len(cfg.AllowedOrigins))
				}
				if cfg.SourceMode != SourceSQL || cfg.SQLDriver != "postgres" || !cfg.SQLAutoMigrate {
					t.Errorf("unexpected source settings: %s %s %v", cfg.SourceMode, cfg.SQLDriver, cfg.SQLAutoMigrate)
				}
				if cfg.Location != time.UTC {
					t.Errorf("expected UTC, got %s", cfg.Location)
				}
				if cfg.MaxUploadBytes != 8<<20 {
					t.Errorf("expected 8MB upload limit, got %d", cfg.MaxUploadBytes)
				}
				if cfg.ProfilePath != "/etc/chat-analyzer/profile.yaml" {
					t.Errorf("unexpected profile path %s", cfg.ProfilePath)
				}
				if cfg.ScheduleInterval != 24*time.Hour || cfg.ScheduleLookbackDays != 7 {
					t.Errorf("unexpected schedule %v/%d", cfg.ScheduleInterval, cfg.ScheduleLookbackDays)
				}
			},
		},
		{
			name: "invalid WS_READ_TIMEOUT",
			env: map[string]string{
				"WS_READ_TIMEOUT": "invalid",
			},
			wantErr: true,
		},
		{
			name:    "invalid SOURCE_MODE",
			env:     map[string]string{"SOURCE_MODE": "ftp"},
			wantErr: true,
		},
		{
			name:    "invalid TIMEZONE",
			env:     map[string]string{"TIMEZONE": "Mars/Olympus"},
			wantErr: true,
		},
		{
			name:    "invalid MAX_UPLOAD_MB",
			env:     map[string]string{"MAX_UPLOAD_MB": "0"},
			wantErr: true,
		},
		{
			name:    "invalid SCHEDULE_INTERVAL",
			env:     map[string]string{"SCHEDULE_INTERVAL": "daily"},
			wantErr: true,
		},
		{
			name:    "invalid SQL_AUTO_MIGRATE",
			env:     map[string]string{"SQL_AUTO_MIGRATE": "sometimes"},
			wantErr: true,
		},
		{
			name:    "invalid SCHEDULE_LOOKBACK_DAYS",
			env:     map[string]string{"SCHEDULE_LOOKBACK_DAYS": "0"},
			wantErr: true,
		},
		{
			name: "invalid WS_WRITE_TIMEOUT",
			env: map[string]string{
				"WS_WRITE_TIMEOUT": "invalid",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Clear environment
			os.Clearenv()

			// Set test environment variables
			for k, v := range tt.env {
				os.Setenv(k, v)
			}

			// Load config
			cfg, err := Load()

			// Check error
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error, got nil")
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			// Run custom checks
			if tt.check != nil {
				tt.check(t, cfg)
			}
		})
	}
}

func TestWebSocketConstants(t *testing.T) {
	// Clear environment and set clean defaults
	os.Clearenv()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	// PongWait should equal WSReadTimeout
	if cfg.PongWait != cfg.WSReadTimeout {
		t.Errorf("PongWait (%v) should equal WSReadTimeout (%v)", cfg.PongWait, cfg.WSReadTimeout)
	}

	// PingPeriod should be less than PongWait
	if cfg.PingPeriod >= cfg.PongWait {
		t.Errorf("PingPeriod (%v) should be less than PongWait (%v)", cfg.PingPeriod, cfg.PongWait)
	}

	// WriteWait should equal WSWriteTimeout
	if cfg.WriteWait != cfg.WSWriteTimeout {
		t.Errorf("WriteWait (%v) should equal WSWriteTimeout (%v)", cfg.WriteWait, cfg.WSWriteTimeout)
	}

	// MaxMessageSize should be set
	if cfg.MaxMessageSize <= 0 {
		t.Errorf("MaxMessageSize should be positive, got %d", cfg.MaxMessageSize)
	}
}
