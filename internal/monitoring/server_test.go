// internal/monitoring/server_test.go
package monitoring

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/valpere/LeadScrapexter/pkg/types"
)

func TestMetricsEndpoint(t *testing.T) {
	metrics := NewMetrics()
	metrics.RecordPass(PassOK, 120*time.Millisecond)
	metrics.RecordLeads(types.ExtractionResult{
		Emails: []types.EmailRecord{{Address: "jane@acme.com"}},
		Phones: []types.PhoneRecord{{E164: "+919876543210"}},
	})

	server := httptest.NewServer(NewServer(metrics, nil, nil).Routes())
	defer server.Close()

	resp, err := http.Get(server.URL + "/metrics")
	if err != nil {
		t.Fatalf("metrics request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("reading metrics body: %v", err)
	}
	if !strings.Contains(string(body), "leadscrapexter_session_passes_total") {
		t.Error("metrics output missing pass counter")
	}

	families, err := metrics.Registry().Gather()
	if err != nil {
		t.Fatalf("Gather() error: %v", err)
	}
	names := make(map[string]bool, len(families))
	for _, f := range families {
		names[f.GetName()] = true
	}
	for _, want := range []string{
		"leadscrapexter_session_passes_total",
		"leadscrapexter_extract_leads_total",
	} {
		if !names[want] {
			t.Errorf("metric %s not registered", want)
		}
	}
}

func TestHealthEndpoint(t *testing.T) {
	server := httptest.NewServer(NewServer(NewMetrics(), nil, nil).Routes())
	defer server.Close()

	resp, err := http.Get(server.URL + "/health")
	if err != nil {
		t.Fatalf("health request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected status 200, got %d", resp.StatusCode)
	}
}

func TestReadyEndpointReportsFailingCheck(t *testing.T) {
	checks := []HealthCheck{
		{Name: "store", Check: func(ctx context.Context) error { return nil }},
		{Name: "broken", Check: func(ctx context.Context) error {
			return fmt.Errorf("connection refused")
		}},
	}
	server := httptest.NewServer(NewServer(NewMetrics(), checks, nil).Routes())
	defer server.Close()

	resp, err := http.Get(server.URL + "/ready")
	if err != nil {
		t.Fatalf("ready request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("expected status 503, got %d", resp.StatusCode)
	}

	var body struct {
		Status string            `json:"status"`
		Checks map[string]string `json:"checks"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("ready response not JSON: %v", err)
	}
	if body.Status != "unavailable" {
		t.Errorf("status = %q, want unavailable", body.Status)
	}
	if body.Checks["store"] != "ok" || body.Checks["broken"] != "connection refused" {
		t.Errorf("checks = %v", body.Checks)
	}
}
