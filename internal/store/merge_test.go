// internal/store/merge_test.go
package store

import (
	"reflect"
	"testing"

	"github.com/valpere/LeadScrapexter/pkg/types"
)

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"+919876543210", "9876543210"},
		{"919876543210", "9876543210"},
		{"009876543210", "9876543210"},
		{"+12125551234", "2125551234"},
		{"+447912345678", "7912345678"},
		{"98765 43210", "9876543210"},
		{"(212) 555-1234", "2125551234"},
	}
	for _, tt := range tests {
		if got := NormalizePhone(tt.in); got != tt.want {
			t.Errorf("NormalizePhone(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"https://www.instagram.com/janedoe/", "instagram.com/janedoe"},
		{"http://instagram.com/JaneDoe?utm_source=share", "instagram.com/janedoe"},
		{"https://www.facebook.com/profile.php?id=42", "facebook.com/profile.php?id=42"},
		{"https://acme.com", "acme.com"},
	}
	for _, tt := range tests {
		if got := NormalizeURL(tt.in); got != tt.want {
			t.Errorf("NormalizeURL(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestMergeAppendsAndOverwrites(t *testing.T) {
	saved := types.SavedState{
		Emails: []types.EmailRecord{{Address: "jane@acme.com"}},
		Phones: []types.PhoneRecord{{E164: "+919876543210"}},
	}
	result := types.ExtractionResult{
		Emails: []types.EmailRecord{
			{Address: "jane@acme.com", DisplayName: "Jane"},
			{Address: "john@acme.com"},
		},
		Phones: []types.PhoneRecord{{E164: "+12125551234"}},
		SocialLinks: []types.SocialLink{
			{Platform: types.PlatformInstagram, CanonicalURL: "https://www.instagram.com/janedoe", Username: "janedoe", Score: 9},
		},
		SERPLinkedIn: []string{"https://www.linkedin.com/in/jane-doe"},
	}

	merged := Merge(saved, result)

	expectedEmails := []types.EmailRecord{
		{Address: "jane@acme.com", DisplayName: "Jane"},
		{Address: "john@acme.com"},
	}
	if !reflect.DeepEqual(merged.Emails, expectedEmails) {
		t.Errorf("Emails = %v, want %v", merged.Emails, expectedEmails)
	}
	if len(merged.Phones) != 2 {
		t.Errorf("Phones = %v, want the saved and the new number", merged.Phones)
	}
	if len(merged.SocialLinks) != 1 || len(merged.SERPLinkedIn) != 1 {
		t.Errorf("social/serp not appended: %+v", merged)
	}
	// Input state untouched.
	if saved.Emails[0].DisplayName != "" {
		t.Error("Merge mutated its input")
	}
}

func TestMergeIdempotent(t *testing.T) {
	saved := types.SavedState{
		Emails:       []types.EmailRecord{{Address: "jane@acme.com"}},
		SERPLinkedIn: []string{"https://www.linkedin.com/in/jane-doe"},
	}
	result := types.ExtractionResult{
		Emails:       []types.EmailRecord{{Address: "JANE@acme.com"}, {Address: "john@acme.com"}},
		Phones:       []types.PhoneRecord{{E164: "+919876543210"}},
		SERPLinkedIn: []string{"https://www.linkedin.com/in/jane-doe?trk=serp", "https://www.linkedin.com/in/john-smith"},
	}

	once := Merge(saved, result)
	twice := Merge(once, result)
	if !reflect.DeepEqual(once, twice) {
		t.Fatalf("merge not idempotent:\nonce:  %+v\ntwice: %+v", once, twice)
	}
}

func TestMergePhoneIdentityCollapsesPrefixes(t *testing.T) {
	saved := types.SavedState{Phones: []types.PhoneRecord{{E164: "+919876543210"}}}
	result := types.ExtractionResult{Phones: []types.PhoneRecord{{E164: "9876543210"}}}

	merged := Merge(saved, result)
	if len(merged.Phones) != 1 {
		t.Fatalf("Phones = %v, want one entry: identities must collapse across dial prefixes", merged.Phones)
	}
}

func TestMergeURLIdentityIgnoresTracking(t *testing.T) {
	saved := types.SavedState{SERPLinkedIn: []string{"https://www.linkedin.com/in/jane-doe"}}
	result := types.ExtractionResult{SERPLinkedIn: []string{"https://linkedin.com/in/jane-doe/?utm_source=share"}}

	merged := Merge(saved, result)
	if len(merged.SERPLinkedIn) != 1 {
		t.Fatalf("SERPLinkedIn = %v, want one entry", merged.SERPLinkedIn)
	}
}
