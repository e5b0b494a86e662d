// internal/config/config_test.go
package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/valpere/LeadScrapexter/pkg/types"
)

func TestLoadFromBytesDefaults(t *testing.T) {
	settings, err := LoadFromBytes([]byte("{}"))
	if err != nil {
		t.Fatalf("LoadFromBytes() error: %v", err)
	}

	if !settings.Active || !settings.ExtractEmails || !settings.ExtractPhones {
		t.Error("extraction toggles must default on")
	}
	if settings.ExtractSERP || settings.Autosave || settings.ProfileMode {
		t.Error("serp, autosave and profile mode must default off")
	}
	expected := []types.CountryCode{types.CountryIN, types.CountryUS, types.CountryUK}
	if len(settings.SelectedCountries) != len(expected) {
		t.Fatalf("SelectedCountries = %v, want %v", settings.SelectedCountries, expected)
	}
	for i, c := range expected {
		if settings.SelectedCountries[i] != c {
			t.Errorf("SelectedCountries[%d] = %s, want %s", i, settings.SelectedCountries[i], c)
		}
	}
	if settings.Session.Timeout.ToDuration() != 3*time.Second {
		t.Errorf("Session.Timeout = %s, want 3s", settings.Session.Timeout)
	}
}

func TestLoadFromBytesOverrides(t *testing.T) {
	yaml := `
extract_serp: true
validate_emails: false
selected_countries: [IN]
session:
  timeout: 5s
export:
  format: csv
  file: leads.csv
logging:
  level: debug
`
	settings, err := LoadFromBytes([]byte(yaml))
	if err != nil {
		t.Fatalf("LoadFromBytes() error: %v", err)
	}

	if !settings.ExtractSERP {
		t.Error("extract_serp override lost")
	}
	if settings.ValidateEmails {
		t.Error("validate_emails override lost")
	}
	if len(settings.SelectedCountries) != 1 || settings.SelectedCountries[0] != types.CountryIN {
		t.Errorf("SelectedCountries = %v, want [IN]", settings.SelectedCountries)
	}
	if settings.Session.Timeout.ToDuration() != 5*time.Second {
		t.Errorf("Session.Timeout = %s, want 5s", settings.Session.Timeout)
	}
	if settings.Export.Format != "csv" || settings.Export.File != "leads.csv" {
		t.Errorf("Export = %+v", settings.Export)
	}
	// Untouched keys keep defaults.
	if !settings.ExtractEmails || settings.Store.Path != "leads.db" {
		t.Error("defaults lost for keys absent from the document")
	}
}

func TestLoadFromBytesEnvExpansion(t *testing.T) {
	os.Setenv("LEADS_STORE_PATH", "/tmp/custom.db")
	defer os.Unsetenv("LEADS_STORE_PATH")

	settings, err := LoadFromBytes([]byte("store:\n  path: ${LEADS_STORE_PATH}\n"))
	if err != nil {
		t.Fatalf("LoadFromBytes() error: %v", err)
	}
	if settings.Store.Path != "/tmp/custom.db" {
		t.Errorf("Store.Path = %q, want expanded env value", settings.Store.Path)
	}
}

func TestValidateRejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Settings)
	}{
		{"unknown country", func(s *Settings) {
			s.SelectedCountries = []types.CountryCode{"XX"}
		}},
		{"phones without countries", func(s *Settings) {
			s.SelectedCountries = nil
		}},
		{"zero timeout", func(s *Settings) {
			s.Session.Timeout = 0
		}},
		{"empty store path", func(s *Settings) {
			s.Store.Path = ""
		}},
		{"bad export format", func(s *Settings) {
			s.Export.Format = "xml"
		}},
		{"postgres without dsn", func(s *Settings) {
			s.Export.Format = "postgres"
			s.Export.DSN = ""
		}},
		{"bad log level", func(s *Settings) {
			s.Logging.Level = "loud"
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			settings := DefaultSettings()
			tt.mutate(&settings)
			if err := settings.Validate(); err == nil {
				t.Error("Validate() accepted invalid settings")
			}
		})
	}
}

func TestSaveAndReloadRoundTrip(t *testing.T) {
	settings := DefaultSettings()
	settings.ExtractSERP = true
	settings.SelectedCountries = []types.CountryCode{types.CountryDE, types.CountryFR}

	path := filepath.Join(t.TempDir(), "conf", "settings.yaml")
	if err := SaveToFile(&settings, path); err != nil {
		t.Fatalf("SaveToFile() error: %v", err)
	}

	reloaded, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile() error: %v", err)
	}
	if !reloaded.ExtractSERP {
		t.Error("round trip lost extract_serp")
	}
	if len(reloaded.SelectedCountries) != 2 || reloaded.SelectedCountries[0] != types.CountryDE {
		t.Errorf("round trip countries = %v", reloaded.SelectedCountries)
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	if _, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("missing file must be an error")
	}
}
