// internal/store/sqlite_test.go
package store

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/valpere/LeadScrapexter/pkg/types"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "leads.db"), nil)
	if err != nil {
		t.Fatalf("NewSQLiteStore() error: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLiteStoreSettingsRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if raw, err := s.Settings(ctx); err != nil || raw != nil {
		t.Fatalf("empty store Settings() = %s, %v; want nil, nil", raw, err)
	}

	doc := json.RawMessage(`{"active":true,"selected_countries":["IN","US"]}`)
	if err := s.SetSettings(ctx, doc); err != nil {
		t.Fatalf("SetSettings() error: %v", err)
	}

	raw, err := s.Settings(ctx)
	if err != nil {
		t.Fatalf("Settings() error: %v", err)
	}
	var decoded struct {
		Active    bool     `json:"active"`
		Countries []string `json:"selected_countries"`
	}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("stored settings not decodable: %v", err)
	}
	if !decoded.Active || len(decoded.Countries) != 2 {
		t.Errorf("settings round trip lost data: %+v", decoded)
	}

	if err := s.SetSettings(ctx, json.RawMessage(`{broken`)); err == nil {
		t.Error("SetSettings accepted invalid JSON")
	}
}

func TestSQLiteStoreAppendResults(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first := types.ExtractionResult{
		Emails: []types.EmailRecord{{Address: "jane@acme.com"}},
		Phones: []types.PhoneRecord{{E164: "+919876543210"}},
	}
	second := types.ExtractionResult{
		Emails:       []types.EmailRecord{{Address: "jane@acme.com"}, {Address: "john@acme.com"}},
		SERPLinkedIn: []string{"https://www.linkedin.com/in/jane-doe"},
	}

	if _, err := s.AppendResults(ctx, first); err != nil {
		t.Fatalf("first AppendResults() error: %v", err)
	}
	merged, err := s.AppendResults(ctx, second)
	if err != nil {
		t.Fatalf("second AppendResults() error: %v", err)
	}

	if len(merged.Emails) != 2 || len(merged.Phones) != 1 || len(merged.SERPLinkedIn) != 1 {
		t.Fatalf("merged counts = %v, want 2 emails, 1 phone, 1 serp link", merged.Counts())
	}

	saved, err := s.Saved(ctx)
	if err != nil {
		t.Fatalf("Saved() error: %v", err)
	}
	if len(saved.Emails) != 2 {
		t.Errorf("persisted saved state = %v, want the merged emails", saved.Emails)
	}

	if err := s.ClearSaved(ctx); err != nil {
		t.Fatalf("ClearSaved() error: %v", err)
	}
	saved, err = s.Saved(ctx)
	if err != nil || len(saved.Emails) != 0 {
		t.Errorf("after clear, Saved() = %+v, %v; want empty state", saved, err)
	}
}

func TestSQLiteStoreResultsReplacedWholesale(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.SetResults(ctx, types.ExtractionResult{
		Emails: []types.EmailRecord{{Address: "old@acme.com"}},
	}); err != nil {
		t.Fatalf("SetResults() error: %v", err)
	}
	if err := s.SetResults(ctx, types.ExtractionResult{
		Phones: []types.PhoneRecord{{E164: "+12125551234"}},
	}); err != nil {
		t.Fatalf("SetResults() error: %v", err)
	}

	result, err := s.Results(ctx)
	if err != nil {
		t.Fatalf("Results() error: %v", err)
	}
	if len(result.Emails) != 0 || len(result.Phones) != 1 {
		t.Errorf("Results() = %+v, want only the second pass", result)
	}
}

func TestSQLiteStoreProfileUpsert(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	profile := types.ProfileRecord{
		Platform:   types.PlatformLinkedIn,
		ProfileURL: "https://www.linkedin.com/in/jane-doe",
		FullName:   "Jane Doe",
		ID:         "abc123",
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.UpsertProfile(ctx, profile); err != nil {
		t.Fatalf("UpsertProfile() error: %v", err)
	}

	// Same identity under a tracking-tagged URL must update, not duplicate.
	profile.ProfileURL = "https://linkedin.com/in/jane-doe/?utm_source=serp"
	profile.Headline = "VP Engineering"
	if err := s.UpsertProfile(ctx, profile); err != nil {
		t.Fatalf("UpsertProfile() update error: %v", err)
	}

	profiles, err := s.SavedProfiles(ctx)
	if err != nil {
		t.Fatalf("SavedProfiles() error: %v", err)
	}
	if len(profiles) != 1 {
		t.Fatalf("SavedProfiles() = %d rows, want 1 after upsert", len(profiles))
	}
	if profiles[0].Headline != "VP Engineering" {
		t.Errorf("Headline = %q, upsert did not replace the document", profiles[0].Headline)
	}

	if err := s.DeleteProfile(ctx, "https://www.linkedin.com/in/jane-doe"); err != nil {
		t.Fatalf("DeleteProfile() error: %v", err)
	}
	profiles, err = s.SavedProfiles(ctx)
	if err != nil || len(profiles) != 0 {
		t.Errorf("after delete, SavedProfiles() = %v, %v; want empty", profiles, err)
	}

	if err := s.UpsertProfile(ctx, types.ProfileRecord{}); err == nil {
		t.Error("UpsertProfile accepted an empty profile URL")
	}
}
