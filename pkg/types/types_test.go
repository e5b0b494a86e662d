// pkg/types/types_test.go
package types

import "testing"

func TestPlatformPriorityOrder(t *testing.T) {
	if PlatformWhatsApp.Priority() >= PlatformInstagram.Priority() {
		t.Error("WhatsApp should rank before Instagram")
	}
	if PlatformTwitter.Priority() >= PlatformFacebook.Priority() {
		t.Error("Twitter should rank before Facebook")
	}
	if PlatformWebsite.Priority() != 99 {
		t.Errorf("Website should have no social priority, got %d", PlatformWebsite.Priority())
	}
}

func TestPlatformIsValid(t *testing.T) {
	tests := []struct {
		platform Platform
		valid    bool
	}{
		{PlatformInstagram, true},
		{PlatformWebsite, true},
		{Platform("myspace"), false},
		{Platform(""), false},
	}

	for _, tt := range tests {
		if got := tt.platform.IsValid(); got != tt.valid {
			t.Errorf("Platform(%q).IsValid() = %v, want %v", tt.platform, got, tt.valid)
		}
	}
}

func TestSocialLinkValidate(t *testing.T) {
	valid := SocialLink{Platform: PlatformInstagram, CanonicalURL: "https://www.instagram.com/janedoe"}
	if err := valid.Validate(); err != nil {
		t.Errorf("Unexpected validation error: %v", err)
	}

	noScheme := SocialLink{Platform: PlatformInstagram, CanonicalURL: "http://www.instagram.com/janedoe"}
	if err := noScheme.Validate(); err == nil {
		t.Error("Expected error for non-https canonical URL")
	}

	badPlatform := SocialLink{Platform: Platform("orkut"), CanonicalURL: "https://orkut.com/u"}
	if err := badPlatform.Validate(); err == nil {
		t.Error("Expected error for unknown platform")
	}
}

func TestEmailRecordKey(t *testing.T) {
	r := EmailRecord{Address: "Jane@Company.COM"}
	if r.Key() != "jane@company.com" {
		t.Errorf("Expected lowercased key, got %q", r.Key())
	}
}

func TestExtractionResultTotalLeads(t *testing.T) {
	r := ExtractionResult{
		Emails: []EmailRecord{{Address: "a@b.com"}, {Address: "c@d.com"}},
		Phones: []PhoneRecord{{E164: "+919876543210"}},
		ByPlatform: map[Platform][]string{
			PlatformInstagram: {"https://www.instagram.com/janedoe"},
			PlatformWebsite:   {"https://example.io", "https://other.io"},
		},
		SERPLinkedIn: []string{"https://www.linkedin.com/in/jane"},
	}

	// Website links are excluded from the lead count.
	if got := r.TotalLeads(); got != 5 {
		t.Errorf("TotalLeads() = %d, want 5", got)
	}
}
