// cmd/leadscrapexter/main_test.go
package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/valpere/LeadScrapexter/pkg/types"
)

func TestCLIVersion(t *testing.T) {
	version = "test-version"
	buildTime = "2026-08-31"
	gitCommit = "abc123"

	output := captureOutput(func() {
		printVersion()
	})

	if !strings.Contains(output, "test-version") {
		t.Errorf("version output should contain version, got: %s", output)
	}
	if !strings.Contains(output, "2026-08-31") {
		t.Errorf("version output should contain build time, got: %s", output)
	}
	if !strings.Contains(output, "abc123") {
		t.Errorf("version output should contain git commit, got: %s", output)
	}
}

func TestCLIHelp(t *testing.T) {
	output := captureOutput(func() {
		printUsage()
	})

	commands := []string{"extract", "merge", "saved", "export", "profiles", "validate", "template", "version"}
	for _, cmd := range commands {
		if !strings.Contains(output, cmd) {
			t.Errorf("help output should contain command %q, got: %s", cmd, output)
		}
	}
}

func TestFlagHelpers(t *testing.T) {
	oldArgs := os.Args
	defer func() { os.Args = oldArgs }()

	os.Args = []string{"leadscrapexter", "extract", "page.html", "--config", "custom.yaml", "-v"}

	if !hasFlag("-v") {
		t.Error("hasFlag should find -v")
	}
	if hasFlag("--verbose") {
		t.Error("hasFlag should not find --verbose")
	}
	if got := flagValue("--config"); got != "custom.yaml" {
		t.Errorf("flagValue(--config) = %q, want custom.yaml", got)
	}
	if got := flagValue("--missing"); got != "" {
		t.Errorf("flagValue(--missing) = %q, want empty", got)
	}
}

func TestLoadEnvironmentFromConfigFlag(t *testing.T) {
	oldArgs := os.Args
	defer func() { os.Args = oldArgs }()

	path := filepath.Join(t.TempDir(), "leadscrapexter.yaml")
	yaml := "store:\n  path: custom.db\nsession:\n  timeout: 7s\n"
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	os.Args = []string{"leadscrapexter", "saved", "--config", path}

	settings, logger := loadEnvironment()
	if logger == nil {
		t.Fatal("expected a logger")
	}
	if settings.Store.Path != "custom.db" {
		t.Errorf("Store.Path = %q, want custom.db", settings.Store.Path)
	}
	if settings.Session.Timeout.ToDuration() != 7*time.Second {
		t.Errorf("Session.Timeout = %s, want 7s", settings.Session.Timeout)
	}
	// Keys absent from the file keep their defaults.
	if !settings.ExtractEmails {
		t.Error("expected default toggles to survive a partial config")
	}
}

func TestPrintResultSummary(t *testing.T) {
	result := types.ExtractionResult{
		Emails: []types.EmailRecord{{Address: "jane@acme.com"}},
		Phones: []types.PhoneRecord{{E164: "+919876543210"}},
		BestLinks: []types.SocialLink{
			{Platform: types.PlatformWhatsApp, CanonicalURL: "https://wa.me/919876543210"},
			{Platform: types.PlatformInstagram, CanonicalURL: "https://www.instagram.com/acmecorp"},
		},
		SocialLinks: []types.SocialLink{
			{Platform: types.PlatformWhatsApp, CanonicalURL: "https://wa.me/919876543210"},
			{Platform: types.PlatformInstagram, CanonicalURL: "https://www.instagram.com/acmecorp"},
		},
		ByPlatform: map[types.Platform][]string{
			types.PlatformWhatsApp:  {"https://wa.me/919876543210"},
			types.PlatformInstagram: {"https://www.instagram.com/acmecorp"},
		},
	}

	output := captureOutput(func() {
		printResultSummary(result)
	})

	if !strings.Contains(output, "4 leads") {
		t.Errorf("summary should report total leads, got: %s", output)
	}
	whatsapp := strings.Index(output, "https://wa.me/919876543210")
	instagram := strings.Index(output, "https://www.instagram.com/acmecorp")
	if whatsapp < 0 || instagram < 0 {
		t.Fatalf("summary should list best links, got: %s", output)
	}
	if whatsapp > instagram {
		t.Errorf("best links should keep their platform-priority order, got: %s", output)
	}
}

func TestPrintResultSummaryTimedOut(t *testing.T) {
	output := captureOutput(func() {
		printResultSummary(types.ExtractionResult{TimedOut: true})
	})
	if !strings.Contains(output, "timed out") {
		t.Errorf("summary should report the timeout, got: %s", output)
	}
}

// captureOutput captures stdout during function execution
func captureOutput(f func()) string {
	old := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	outC := make(chan string)
	go func() {
		var buf bytes.Buffer
		io.Copy(&buf, r)
		outC <- buf.String()
	}()

	f()
	w.Close()
	os.Stdout = old
	out := <-outC

	return out
}
