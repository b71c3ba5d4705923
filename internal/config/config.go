// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Load layers a YAML file, an optional .env file and environment variables on top.
// - Validation failures wrap ErrInvalidConfig.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/okian/rollcall/internal/domain/dedupe"
	"github.com/okian/rollcall/internal/domain/model"
)

// Source kinds accepted in source_kind.
const (
	SourceCSV  = "csv"
	SourceHTTP = "http"
	SourceSQL  = "sql"
)

// SQL drivers accepted in sql_driver.
const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// SourceKind selects the attendance feed: csv, http or sql.
	SourceKind string `koanf:"source_kind"`

	SourcePath      string `koanf:"source_path"`
	SourceURL       string `koanf:"source_url"`
	SourceTimeoutMS int    `koanf:"source_timeout_ms"`

	SQLDriver string `koanf:"sql_driver"`
	SQLDSN    string `koanf:"sql_dsn"`
	SQLQuery  string `koanf:"sql_query"`

	// Column names in the feed. A "-" disables the rank or label column.
	ColumnDate  string `koanf:"column_date"`
	ColumnName  string `koanf:"column_name"`
	ColumnRank  string `koanf:"column_rank"`
	ColumnLabel string `koanf:"column_label"`

	DateLayouts      []string `koanf:"date_layouts"`
	FirstPlaceLabels []string `koanf:"first_place_labels"`

	// DedupeKeep picks the surviving row of a (name, date) group: first or last.
	DedupeKeep string `koanf:"dedupe_keep"`

	RefreshIntervalSeconds int `koanf:"refresh_interval_seconds"`

	TopAttendanceK int `koanf:"top_attendance_k"`
	TopPromptnessK int `koanf:"top_promptness_k"`

	// DefaultStartDate (YYYY-MM-DD) is used when a request has no start.
	DefaultStartDate string `koanf:"default_start_date"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:               "info",
		LogFormat:              "text",
		Addr:                   ":9080",
		SourceKind:             SourceCSV,
		SourcePath:             "attendance.csv",
		SourceTimeoutMS:        10_000,
		SQLDriver:              DriverSQLite,
		SQLQuery:               "SELECT date, name, idx FROM attendance",
		ColumnDate:             "date",
		ColumnName:             "name",
		ColumnRank:             "idx",
		ColumnLabel:            "label",
		DateLayouts:            []string{"2006-01-02", "2006-01-02 15:04:05", time.RFC3339},
		FirstPlaceLabels:       []string{"1st", "1st place", "first", "1등"},
		DedupeKeep:             string(dedupe.KeepFirst),
		RefreshIntervalSeconds: 43_200,
		TopAttendanceK:         7,
		TopPromptnessK:         5,
		DefaultStartDate:       "",
	}
}

// RefreshInterval returns the cache lifetime.
func (c *Config) RefreshInterval() time.Duration {
	return time.Duration(c.RefreshIntervalSeconds) * time.Second
}

// SourceTimeout returns the per-fetch deadline.
func (c *Config) SourceTimeout() time.Duration {
	return time.Duration(c.SourceTimeoutMS) * time.Millisecond
}

// DedupePolicy parses DedupeKeep.
func (c *Config) DedupePolicy() (dedupe.Policy, error) {
	return dedupe.ParsePolicy(c.DedupeKeep)
}

// DefaultStart parses DefaultStartDate; ok is false when it is unset.
func (c *Config) DefaultStart() (d model.Date, ok bool, err error) {
	if strings.TrimSpace(c.DefaultStartDate) == "" {
		return model.Date{}, false, nil
	}
	d, err = model.ParseDate(c.DefaultStartDate)
	if err != nil {
		return model.Date{}, false, err
	}
	return d, true, nil
}

// Validate reports the first configuration problem found.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Addr) == "" {
		return invalid("addr must not be empty")
	}
	switch strings.ToLower(c.LogFormat) {
	case "", "text", "json":
	default:
		return invalid("log_format %q must be text or json", c.LogFormat)
	}

	switch c.SourceKind {
	case SourceCSV:
		if c.SourcePath == "" {
			return invalid("source_path is required for source_kind=csv")
		}
	case SourceHTTP:
		if c.SourceURL == "" {
			return invalid("source_url is required for source_kind=http")
		}
	case SourceSQL:
		if c.SQLDriver != DriverSQLite && c.SQLDriver != DriverPostgres {
			return invalid("sql_driver %q must be %s or %s", c.SQLDriver, DriverSQLite, DriverPostgres)
		}
		if c.SQLDSN == "" {
			return invalid("sql_dsn is required for source_kind=sql")
		}
	default:
		return invalid("source_kind %q must be csv, http or sql", c.SourceKind)
	}

	if c.SourceTimeoutMS <= 0 {
		return invalid("source_timeout_ms must be positive")
	}
	if c.ColumnDate == "" || c.ColumnName == "" {
		return invalid("column_date and column_name must not be empty")
	}
	if _, err := c.DedupePolicy(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if c.RefreshIntervalSeconds < 0 {
		return invalid("refresh_interval_seconds must not be negative")
	}
	if c.TopAttendanceK <= 0 || c.TopPromptnessK <= 0 {
		return invalid("top_attendance_k and top_promptness_k must be positive")
	}
	if _, _, err := c.DefaultStart(); err != nil {
		return fmt.Errorf("%w: default_start_date: %w", ErrInvalidConfig, err)
	}
	return nil
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfig, fmt.Sprintf(format, args...))
}
