package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata" // TIMEZONE must resolve on hosts without a zoneinfo database

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"

	"taxiledger/internal/log"
)

const DefaultTimeZone = "Asia/Seoul"

type Config struct {
	// HTTP Server
	Port string `yaml:"port"`

	// Record store
	DataBackend  string `yaml:"data_backend"`
	SQLiteDBPath string `yaml:"sqlite_db_path"`
	DataFile     string `yaml:"data_file"` // memory backend persistence, empty keeps data in memory only

	// AMQP, empty URL disables change events
	AMQPURL      string `yaml:"amqp_url"`
	AMQPExchange string `yaml:"amqp_exchange"`
	AMQPQueue    string `yaml:"amqp_queue"`

	// Backup worker
	BackupDir      string `yaml:"backup_dir"`
	BackupSchedule string `yaml:"backup_schedule"`

	// Google Sheets summary export, empty spreadsheet id disables it
	GoogleSpreadsheetID    string `yaml:"google_spreadsheet_id"`
	GoogleSummarySheetName string `yaml:"google_summary_sheet_name"`

	TimeZone  string `yaml:"timezone"`
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
}

func defaults() *Config {
	return &Config{
		Port:                   "8081",
		DataBackend:            "sqlite",
		SQLiteDBPath:           "./data/taxiledger.db",
		AMQPExchange:           "taxiledger",
		AMQPQueue:              "ledger_changes",
		BackupDir:              "./data/backups",
		BackupSchedule:         "0 4 * * *",
		GoogleSummarySheetName: "월별요약",
		TimeZone:               DefaultTimeZone,
		LogLevel:               "info",
		LogFormat:              "text",
	}
}

// Load builds the configuration from defaults, then the YAML file named by
// CONFIG_FILE if set, then environment variables.
func Load() (*Config, error) {
	cfg := defaults()

	if path := strings.TrimSpace(os.Getenv("CONFIG_FILE")); path != "" {
		if err := cfg.overlayFile(path); err != nil {
			return nil, err
		}
	}

	cfg.Port = getEnv("PORT", cfg.Port)
	cfg.DataBackend = getEnv("DATA_BACKEND", cfg.DataBackend)
	cfg.SQLiteDBPath = getEnv("SQLITE_DB_PATH", cfg.SQLiteDBPath)
	cfg.DataFile = getEnv("DATA_FILE", cfg.DataFile)
	cfg.AMQPURL = getEnv("AMQP_URL", cfg.AMQPURL)
	cfg.AMQPExchange = getEnv("AMQP_EXCHANGE", cfg.AMQPExchange)
	cfg.AMQPQueue = getEnv("AMQP_QUEUE", cfg.AMQPQueue)
	cfg.BackupDir = getEnv("BACKUP_DIR", cfg.BackupDir)
	cfg.BackupSchedule = getEnv("BACKUP_SCHEDULE", cfg.BackupSchedule)
	cfg.GoogleSpreadsheetID = getEnv("GOOGLE_SPREADSHEET_ID", cfg.GoogleSpreadsheetID)
	cfg.GoogleSummarySheetName = getEnv("GOOGLE_SUMMARY_SHEET_NAME", cfg.GoogleSummarySheetName)
	cfg.TimeZone = getEnv("TIMEZONE", cfg.TimeZone)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.LogFormat = getEnv("LOG_FORMAT", cfg.LogFormat)

	return cfg, nil
}

func (c *Config) overlayFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

// Location resolves TimeZone.
func (c *Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.TimeZone)
}

// AMQPEnabled reports whether change events should be published and consumed.
func (c *Config) AMQPEnabled() bool {
	return c.AMQPURL != ""
}

// Validate checks every field and reports all problems at once.
func (c *Config) Validate() error {
	var problems []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		problems = append(problems, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		problems = append(problems, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	validBackends := []string{"memory", "sqlite"}
	switch c.DataBackend {
	case "memory":
	case "sqlite":
		if strings.TrimSpace(c.SQLiteDBPath) == "" {
			problems = append(problems, "SQLite database path cannot be empty when using sqlite backend")
		}
	default:
		problems = append(problems, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, validBackends))
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			problems = append(problems, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			problems = append(problems, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			problems = append(problems, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			problems = append(problems, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if strings.TrimSpace(c.BackupDir) == "" {
		problems = append(problems, "backup directory cannot be empty")
	}
	if c.BackupSchedule != "" {
		if _, err := cron.ParseStandard(c.BackupSchedule); err != nil {
			problems = append(problems, fmt.Sprintf("invalid backup schedule '%s': %v", c.BackupSchedule, err))
		}
	}

	if c.GoogleSpreadsheetID != "" && strings.TrimSpace(c.GoogleSummarySheetName) == "" {
		problems = append(problems, "Google summary sheet name is required when a spreadsheet id is set")
	}

	if _, err := c.Location(); err != nil || c.TimeZone == "" {
		problems = append(problems, fmt.Sprintf("invalid time zone '%s'", c.TimeZone))
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		problems = append(problems, fmt.Sprintf("invalid log level '%s': must be debug, info, warn or error", c.LogLevel))
	}
	if f := strings.ToLower(c.LogFormat); f != "text" && f != "json" {
		problems = append(problems, fmt.Sprintf("invalid log format '%s': must be text or json", c.LogFormat))
	}

	if len(problems) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(problems, "\n- "))
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}
