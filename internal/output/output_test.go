// internal/output/output_test.go
package output

import (
	"database/sql"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/valpere/LeadScrapexter/internal/config"
	"github.com/valpere/LeadScrapexter/internal/utils"
	"github.com/valpere/LeadScrapexter/pkg/types"
)

func sampleState() types.SavedState {
	return types.SavedState{
		Emails: []types.EmailRecord{
			{Address: "jane@acme.com", DisplayName: "Jane Doe"},
			{Address: "sales@acme.com"},
		},
		Phones: []types.PhoneRecord{
			{E164: "+919876543210"},
		},
		SocialLinks: []types.SocialLink{
			{Platform: types.PlatformInstagram, CanonicalURL: "https://www.instagram.com/acmecorp", Username: "acmecorp", Score: 9},
		},
		SERPLinkedIn: []string{"https://www.linkedin.com/in/jane-doe"},
	}
}

func TestLeadRows(t *testing.T) {
	rows := LeadRows(sampleState())
	if len(rows) != 5 {
		t.Fatalf("expected 5 rows, got %d", len(rows))
	}

	if rows[0]["kind"] != "email" || rows[0]["value"] != "jane@acme.com" {
		t.Errorf("unexpected first row: %v", rows[0])
	}
	if rows[0]["display_name"] != "Jane Doe" {
		t.Errorf("expected display_name on first row, got %v", rows[0])
	}
	if _, ok := rows[1]["display_name"]; ok {
		t.Errorf("row without display name should omit the column: %v", rows[1])
	}
	if rows[2]["kind"] != "phone" || rows[2]["value"] != "+919876543210" {
		t.Errorf("unexpected phone row: %v", rows[2])
	}
	if rows[3]["platform"] != "Instagram" {
		t.Errorf("unexpected social row: %v", rows[3])
	}
	if rows[4]["kind"] != "serp_linkedin" {
		t.Errorf("unexpected serp row: %v", rows[4])
	}
}

func TestProfileRows(t *testing.T) {
	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	rows := ProfileRows([]types.ProfileRecord{{
		Platform:      types.PlatformLinkedIn,
		ProfileURL:    "https://www.linkedin.com/in/jane-doe",
		FullName:      "Jane Doe",
		Username:      "jane-doe",
		ExternalLinks: []string{"https://janedoe.dev"},
		ID:            "abc123",
		CreatedAt:     created,
	}})
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	if rows[0]["full_name"] != "Jane Doe" || rows[0]["links"] != "https://janedoe.dev" {
		t.Errorf("unexpected profile row: %v", rows[0])
	}
	if rows[0]["created_at"] != "2026-03-01T12:00:00Z" {
		t.Errorf("unexpected created_at: %v", rows[0]["created_at"])
	}
}

func TestCSVWriterStableHeaders(t *testing.T) {
	path := filepath.Join(t.TempDir(), "leads.csv")
	writer, err := NewCSVWriter(path)
	if err != nil {
		t.Fatalf("NewCSVWriter: %v", err)
	}
	if err := writer.Write(LeadRows(sampleState())); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("open output: %v", err)
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		t.Fatalf("read CSV: %v", err)
	}
	if len(records) != 6 {
		t.Fatalf("expected header plus 5 rows, got %d", len(records))
	}

	header := strings.Join(records[0], ",")
	if header != "display_name,kind,platform,score,username,value" {
		t.Errorf("unexpected header order: %s", header)
	}
}

func TestJSONWriterRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "leads.json")
	writer, err := NewJSONWriter(path)
	if err != nil {
		t.Fatalf("NewJSONWriter: %v", err)
	}
	if err := writer.Write(LeadRows(sampleState())); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	var decoded []map[string]interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if len(decoded) != 5 {
		t.Fatalf("expected 5 rows, got %d", len(decoded))
	}
	if decoded[0]["value"] != "jane@acme.com" {
		t.Errorf("unexpected first row: %v", decoded[0])
	}
}

func TestYAMLWriterRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "leads.yaml")
	writer, err := NewYAMLWriter(path)
	if err != nil {
		t.Fatalf("NewYAMLWriter: %v", err)
	}
	if err := writer.Write(LeadRows(sampleState())); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	var decoded []map[string]interface{}
	if err := yaml.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if len(decoded) != 5 {
		t.Fatalf("expected 5 rows, got %d", len(decoded))
	}
}

func TestSQLiteWriterCreatesAndInserts(t *testing.T) {
	path := filepath.Join(t.TempDir(), "export.db")
	writer, err := NewSQLiteWriter(path, "leads")
	if err != nil {
		t.Fatalf("NewSQLiteWriter: %v", err)
	}
	if err := writer.Write(LeadRows(sampleState())); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		t.Fatalf("open exported database: %v", err)
	}
	defer db.Close()

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM leads").Scan(&count); err != nil {
		t.Fatalf("count rows: %v", err)
	}
	if count != 5 {
		t.Errorf("expected 5 rows, got %d", count)
	}

	var value string
	err = db.QueryRow("SELECT value FROM leads WHERE kind = 'phone'").Scan(&value)
	if err != nil {
		t.Fatalf("select phone row: %v", err)
	}
	if value != "+919876543210" {
		t.Errorf("unexpected phone value: %s", value)
	}
}

func TestSQLiteWriterRejectsBadTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "export.db")
	if _, err := NewSQLiteWriter(path, "leads; DROP TABLE leads"); err == nil {
		t.Fatal("expected error for invalid table name")
	}
}

func TestExcelWriterSavesWorkbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "leads.xlsx")
	writer, err := NewExcelWriter(path, "leads")
	if err != nil {
		t.Fatalf("NewExcelWriter: %v", err)
	}
	if err := writer.Write(LeadRows(sampleState())); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat workbook: %v", err)
	}
	if info.Size() == 0 {
		t.Error("workbook file is empty")
	}
}

func TestManagerSelectsWriter(t *testing.T) {
	dir := t.TempDir()
	logger := utils.NewLogger()

	tests := []struct {
		format string
		file   string
	}{
		{"csv", "leads.csv"},
		{"json", "leads.json"},
		{"yaml", "leads.yaml"},
		{"sqlite", "leads.db"},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			manager := NewManager(config.ExportSettings{
				Format: tt.format,
				File:   filepath.Join(dir, tt.file),
			}, nil, logger)
			if err := manager.ExportLeads(sampleState()); err != nil {
				t.Fatalf("ExportLeads(%s): %v", tt.format, err)
			}
			if _, err := os.Stat(filepath.Join(dir, tt.file)); err != nil {
				t.Errorf("expected output file for %s: %v", tt.format, err)
			}
		})
	}
}

func TestManagerUnsupportedFormat(t *testing.T) {
	manager := NewManager(config.ExportSettings{Format: "xml", File: "out.xml"}, nil, utils.NewLogger())
	if err := manager.ExportLeads(sampleState()); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestManagerExportsProfiles(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profiles.json")
	manager := NewManager(config.ExportSettings{Format: "json", File: path}, nil, utils.NewLogger())

	profiles := []types.ProfileRecord{{
		Platform:   types.PlatformLinkedIn,
		ProfileURL: "https://www.linkedin.com/in/jane-doe",
		FullName:   "Jane Doe",
		ID:         "abc123",
		CreatedAt:  time.Now(),
	}}
	if err := manager.ExportProfiles(profiles); err != nil {
		t.Fatalf("ExportProfiles: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if !strings.Contains(string(data), "jane-doe") {
		t.Errorf("profile export missing profile URL: %s", data)
	}
}
