// internal/config/config.go
package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/valpere/LeadScrapexter/pkg/types"
)

// Settings is the complete runtime configuration. Unmarshalling happens on
// top of DefaultSettings, so absent keys keep their defaults and a fully
// empty file is a valid configuration.
type Settings struct {
	// Active gates all extraction; when false every pass returns empty.
	Active bool `yaml:"active" json:"active"`

	ExtractEmails  bool `yaml:"extract_emails" json:"extract_emails"`
	ExtractPhones  bool `yaml:"extract_phones" json:"extract_phones"`
	ExtractSocials bool `yaml:"extract_socials" json:"extract_socials"`
	ExtractSERP    bool `yaml:"extract_serp" json:"extract_serp"`
	ValidateEmails bool `yaml:"validate_emails" json:"validate_emails"`
	GenerateNames  bool `yaml:"generate_names" json:"generate_names"`
	Autosave       bool `yaml:"autosave" json:"autosave"`
	ProfileMode    bool `yaml:"profile_mode" json:"profile_mode"`

	SelectedCountries []types.CountryCode `yaml:"selected_countries" json:"selected_countries"`

	Session    SessionSettings    `yaml:"session" json:"session"`
	Store      StoreSettings      `yaml:"store" json:"store"`
	Export     ExportSettings     `yaml:"export" json:"export"`
	Monitoring MonitoringSettings `yaml:"monitoring" json:"monitoring"`
	Logging    LoggingSettings    `yaml:"logging" json:"logging"`
}

// SessionSettings bounds a single extraction pass.
type SessionSettings struct {
	// Timeout is the hard deadline for one pass; on expiry an empty
	// timed-out result is produced instead of an error.
	Timeout types.Duration `yaml:"timeout" json:"timeout"`
	// AutoRunInterval throttles automatic re-runs; zero disables them.
	AutoRunInterval types.Duration `yaml:"auto_run_interval" json:"auto_run_interval"`
	// BrowserTimeout bounds page snapshotting.
	BrowserTimeout types.Duration `yaml:"browser_timeout" json:"browser_timeout"`
}

// StoreSettings locates the persistent lead database.
type StoreSettings struct {
	Path string `yaml:"path" json:"path"`
}

// ExportSettings selects the export sink.
type ExportSettings struct {
	Format string `yaml:"format" json:"format"`
	// File is the output path for file-shaped formats.
	File string `yaml:"file" json:"file"`
	// DSN is the connection string for database sinks.
	DSN   string `yaml:"dsn,omitempty" json:"dsn,omitempty"`
	Table string `yaml:"table,omitempty" json:"table,omitempty"`
}

// MonitoringSettings configures the metrics/health HTTP listener.
type MonitoringSettings struct {
	Enabled bool   `yaml:"enabled" json:"enabled"`
	Address string `yaml:"address" json:"address"`
}

// LoggingSettings configures log output.
type LoggingSettings struct {
	Level string `yaml:"level" json:"level"`
}

var exportFormats = map[string]struct{}{
	"csv": {}, "json": {}, "yaml": {}, "excel": {}, "sqlite": {}, "postgres": {},
}

// DefaultSettings mirrors the out-of-the-box behavior: everything on except
// SERP scraping, autosave and profile mode, countries IN/US/UK.
func DefaultSettings() Settings {
	return Settings{
		Active:         true,
		ExtractEmails:  true,
		ExtractPhones:  true,
		ExtractSocials: true,
		ExtractSERP:    false,
		ValidateEmails: true,
		GenerateNames:  true,
		Autosave:       false,
		ProfileMode:    false,
		SelectedCountries: []types.CountryCode{
			types.CountryIN, types.CountryUS, types.CountryUK,
		},
		Session: SessionSettings{
			Timeout:        types.Duration(3 * time.Second),
			BrowserTimeout: types.Duration(30 * time.Second),
		},
		Store: StoreSettings{
			Path: "leads.db",
		},
		Export: ExportSettings{
			Format: "json",
			File:   "leads.json",
		},
		Monitoring: MonitoringSettings{
			Enabled: false,
			Address: ":9090",
		},
		Logging: LoggingSettings{
			Level: "info",
		},
	}
}

// LoadFromFile loads settings from a YAML file.
func LoadFromFile(filename string) (*Settings, error) {
	if filename == "" {
		return nil, fmt.Errorf("configuration filename cannot be empty")
	}
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return nil, fmt.Errorf("configuration file not found: %s", filename)
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file: %w", err)
	}
	return LoadFromBytes(data)
}

// LoadFromBytes loads settings from YAML bytes. Environment variables in
// the document are expanded before parsing.
func LoadFromBytes(data []byte) (*Settings, error) {
	expanded := os.ExpandEnv(string(data))

	settings := DefaultSettings()
	if err := yaml.Unmarshal([]byte(expanded), &settings); err != nil {
		return nil, fmt.Errorf("failed to parse YAML configuration: %w", err)
	}

	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &settings, nil
}

// LoadFromReader loads settings from an io.Reader.
func LoadFromReader(reader io.Reader) (*Settings, error) {
	if reader == nil {
		return nil, fmt.Errorf("reader cannot be nil")
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read from reader: %w", err)
	}
	return LoadFromBytes(data)
}

// SaveToFile writes settings to a YAML file, creating directories as needed.
func SaveToFile(settings *Settings, filename string) error {
	if settings == nil {
		return fmt.Errorf("settings cannot be nil")
	}
	if filename == "" {
		return fmt.Errorf("filename cannot be empty")
	}
	if err := settings.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	data, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("failed to marshal configuration: %w", err)
	}
	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write configuration file: %w", err)
	}
	return nil
}

// Validate checks the settings for structural errors.
func (s *Settings) Validate() error {
	for _, country := range s.SelectedCountries {
		if !country.IsValid() {
			return fmt.Errorf("unknown country code: %s", country)
		}
	}
	if s.ExtractPhones && len(s.SelectedCountries) == 0 {
		return fmt.Errorf("phone extraction requires at least one selected country")
	}

	if s.Session.Timeout <= 0 {
		return fmt.Errorf("session timeout must be positive, got %s", s.Session.Timeout)
	}
	if s.Session.AutoRunInterval < 0 {
		return fmt.Errorf("auto run interval cannot be negative")
	}
	if s.Session.BrowserTimeout <= 0 {
		return fmt.Errorf("browser timeout must be positive, got %s", s.Session.BrowserTimeout)
	}

	if s.Store.Path == "" {
		return fmt.Errorf("store path cannot be empty")
	}

	if _, ok := exportFormats[s.Export.Format]; !ok {
		return fmt.Errorf("unsupported export format: %s", s.Export.Format)
	}
	switch s.Export.Format {
	case "postgres":
		if s.Export.DSN == "" {
			return fmt.Errorf("postgres export requires a dsn")
		}
	case "csv", "json", "yaml", "excel", "sqlite":
		if s.Export.File == "" {
			return fmt.Errorf("%s export requires a file path", s.Export.Format)
		}
	}

	if s.Monitoring.Enabled && s.Monitoring.Address == "" {
		return fmt.Errorf("monitoring requires a listen address")
	}

	switch s.Logging.Level {
	case "debug", "info", "warn", "error", "":
	default:
		return fmt.Errorf("unknown log level: %s", s.Logging.Level)
	}
	return nil
}
