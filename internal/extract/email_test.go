// internal/extract/email_test.go
package extract

import (
	"reflect"
	"testing"
)

func newTestEmailEngine(t *testing.T, cfg EmailConfig) *EmailEngine {
	t.Helper()
	return NewEmailEngine(cfg, nil)
}

func mustPage(t *testing.T, html, pageURL string) *PageDocument {
	t.Helper()
	page, err := NewPageDocument(html, pageURL)
	if err != nil {
		t.Fatalf("failed to build page document: %v", err)
	}
	return page
}

func TestCleanEmail(t *testing.T) {
	engine := newTestEmailEngine(t, EmailConfig{})

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "already clean",
			input:    "jane@company.com",
			expected: "jane@company.com",
		},
		{
			name:     "junk suffix glued to TLD",
			input:    "jane@company.comread",
			expected: "jane@company.com",
		},
		{
			name:     "whatsapp suffix glued to TLD",
			input:    "sales@acme.inwhatsapp",
			expected: "sales@acme.in",
		},
		{
			name:     "uppercase is folded",
			input:    "Jane.Doe@Company.COM",
			expected: "jane.doe@company.com",
		},
		{
			name:     "mailto prefix stripped",
			input:    "mailto:info@acme.io",
			expected: "info@acme.io",
		},
		{
			name:     "leading punctuation stripped",
			input:    ">>jane@company.com",
			expected: "jane@company.com",
		},
		{
			name:     "trailing punctuation stripped",
			input:    "jane@company.com,",
			expected: "jane@company.com",
		},
		{
			name:     "compound TLD survives",
			input:    "jane@mail.company.co.uk",
			expected: "jane@mail.company.co.uk",
		},
		{
			name:     "no at sign",
			input:    "not-an-email",
			expected: "",
		},
		{
			name:     "too short",
			input:    "a@b.c",
			expected: "",
		},
		{
			name:     "empty input",
			input:    "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := engine.CleanEmail(tt.input)
			if got != tt.expected {
				t.Errorf("CleanEmail(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestIsValid(t *testing.T) {
	engine := newTestEmailEngine(t, EmailConfig{})

	tests := []struct {
		email string
		valid bool
	}{
		{"jane@company.com", true},
		{"john+work@gmail.com", true},
		{"a@mail.company.co", true},
		{"test@test.com", false},        // placeholder
		{"example@example.com", false},  // placeholder
		{"someone@example.com", false},  // spam domain
		{"test@realcompany.com", false}, // fake local prefix
		{"demo@realcompany.com", false},
		{"noreply@acme.io", false},
		{"icon@2x.png", false}, // asset filename
		{"style@main.css", false},
		{"jane@c.o", false},        // domain too short
		{"jane@no-dot", false},     // no dot in domain
		{".jane@company.com", false},
		{"ja..ne@company.com", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := engine.IsValid(tt.email); got != tt.valid {
			t.Errorf("IsValid(%q) = %v, want %v", tt.email, got, tt.valid)
		}
	}
}

func TestExtractDedupedAndSorted(t *testing.T) {
	html := `<html><body>
		<p>Contact john@example.io or JOHN@EXAMPLE.IO for info.</p>
		<p>Also alice@foo.com works.</p>
		<a href="mailto:bob@bar.co?subject=hi">Mail Bob</a>
	</body></html>`

	engine := newTestEmailEngine(t, EmailConfig{})
	result := engine.Extract(mustPage(t, html, "https://acme.com/contact"), true)

	var got []string
	for _, rec := range result.Valid {
		got = append(got, rec.Address)
	}
	expected := []string{"alice@foo.com", "bob@bar.co", "john@example.io"}
	if !reflect.DeepEqual(got, expected) {
		t.Fatalf("valid addresses = %v, want %v", got, expected)
	}
}

func TestExtractRoutesInvalid(t *testing.T) {
	html := `<html><body><p>Write to test@test.com or jane@company.com</p></body></html>`

	engine := newTestEmailEngine(t, EmailConfig{})
	result := engine.Extract(mustPage(t, html, "https://acme.com"), true)

	if len(result.Valid) != 1 || result.Valid[0].Address != "jane@company.com" {
		t.Fatalf("valid = %v, want only jane@company.com", result.Valid)
	}
	if len(result.Invalid) != 1 || result.Invalid[0] != "test@test.com" {
		t.Fatalf("invalid = %v, want only test@test.com", result.Invalid)
	}
}

func TestExtractValidationDisabled(t *testing.T) {
	html := `<html><body><p>Write to test@test.com</p></body></html>`

	engine := newTestEmailEngine(t, EmailConfig{})
	result := engine.Extract(mustPage(t, html, "https://acme.com"), false)

	if len(result.Valid) != 1 || result.Valid[0].Address != "test@test.com" {
		t.Fatalf("valid = %v, want test@test.com passed through", result.Valid)
	}
	if len(result.Invalid) != 0 {
		t.Fatalf("invalid = %v, want empty", result.Invalid)
	}
}

func TestExtractFromHiddenSources(t *testing.T) {
	html := `<html><head>
		<meta name="description" content="Reach us at meta@acme-corp.com today">
		<script type="application/ld+json">{"email":"jsonld@acme-corp.com"}</script>
	</head><body>
		<div data-email="attr@acme-corp.com"></div>
		<span aria-label="email us at aria@acme-corp.com"></span>
	</body></html>`

	engine := newTestEmailEngine(t, EmailConfig{})
	result := engine.Extract(mustPage(t, html, "https://acme.com"), true)

	expected := []string{
		"aria@acme-corp.com",
		"attr@acme-corp.com",
		"jsonld@acme-corp.com",
		"meta@acme-corp.com",
	}
	var got []string
	for _, rec := range result.Valid {
		got = append(got, rec.Address)
	}
	if !reflect.DeepEqual(got, expected) {
		t.Fatalf("valid = %v, want %v", got, expected)
	}
}

func TestExtractGeneratesDisplayNames(t *testing.T) {
	html := `<html><body><p>jane.doe@acme-corp.com</p></body></html>`

	engine := newTestEmailEngine(t, EmailConfig{GenerateNames: true})
	result := engine.Extract(mustPage(t, html, "https://acme.com"), true)

	if len(result.Valid) != 1 {
		t.Fatalf("expected one valid email, got %d", len(result.Valid))
	}
	if result.Valid[0].DisplayName != "Jane Doe" {
		t.Errorf("display name = %q, want %q", result.Valid[0].DisplayName, "Jane Doe")
	}
}

func TestExtractNilPage(t *testing.T) {
	engine := newTestEmailEngine(t, EmailConfig{})
	result := engine.Extract(nil, true)
	if len(result.Valid) != 0 || len(result.Invalid) != 0 {
		t.Fatalf("expected empty result for nil page, got %+v", result)
	}
}
