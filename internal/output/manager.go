// internal/output/manager.go
package output

import (
	"fmt"
	"time"

	"github.com/valpere/LeadScrapexter/internal/config"
	"github.com/valpere/LeadScrapexter/internal/monitoring"
	"github.com/valpere/LeadScrapexter/internal/utils"
	"github.com/valpere/LeadScrapexter/pkg/types"
)

// Manager selects a writer based on the export settings and drives the
// write/close cycle for lead and profile exports.
type Manager struct {
	settings config.ExportSettings
	metrics  *monitoring.Metrics
	logger   utils.Logger
}

// NewManager creates an export manager. Metrics may be nil.
func NewManager(settings config.ExportSettings, metrics *monitoring.Metrics, logger utils.Logger) *Manager {
	if logger == nil {
		logger = utils.NewLogger()
	}
	return &Manager{
		settings: settings,
		metrics:  metrics,
		logger:   logger,
	}
}

// ExportLeads writes the saved leads through the configured sink.
func (m *Manager) ExportLeads(saved types.SavedState) error {
	return m.export(LeadRows(saved), "leads")
}

// ExportProfiles writes the saved profiles through the configured sink.
func (m *Manager) ExportProfiles(profiles []types.ProfileRecord) error {
	return m.export(ProfileRows(profiles), "profiles")
}

func (m *Manager) export(rows []map[string]interface{}, kind string) error {
	start := time.Now()

	writer, err := m.getWriter(kind)
	if err != nil {
		m.recordError()
		return err
	}

	if err := writer.Write(rows); err != nil {
		writer.Close()
		m.recordError()
		return fmt.Errorf("failed to write %s export: %w", kind, err)
	}
	if err := writer.Close(); err != nil {
		m.recordError()
		return fmt.Errorf("failed to finalize %s export: %w", kind, err)
	}

	if m.metrics != nil {
		m.metrics.RecordExport(m.settings.Format, len(rows))
	}
	m.logger.Infof("exported %d %s rows as %s in %v", len(rows), kind, m.settings.Format, time.Since(start))
	return nil
}

func (m *Manager) getWriter(kind string) (Writer, error) {
	table := m.settings.Table
	if table == "" {
		table = kind
	}

	switch Format(m.settings.Format) {
	case FormatCSV:
		return NewCSVWriter(m.settings.File)
	case FormatJSON:
		return NewJSONWriter(m.settings.File)
	case FormatYAML:
		return NewYAMLWriter(m.settings.File)
	case FormatExcel:
		return NewExcelWriter(m.settings.File, kind)
	case FormatSQLite:
		return NewSQLiteWriter(m.settings.File, table)
	case FormatPostgres:
		return NewPostgresWriter(m.settings.DSN, table)
	default:
		return nil, fmt.Errorf("unsupported export format: %s", m.settings.Format)
	}
}

func (m *Manager) recordError() {
	if m.metrics != nil {
		m.metrics.RecordExportError(m.settings.Format)
	}
}
