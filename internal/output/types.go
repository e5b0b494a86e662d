// internal/output/types.go
package output

import (
	"strings"
	"time"

	"github.com/valpere/LeadScrapexter/pkg/types"
)

// Format selects an export sink.
type Format string

const (
	FormatCSV      Format = "csv"
	FormatJSON     Format = "json"
	FormatYAML     Format = "yaml"
	FormatExcel    Format = "excel"
	FormatSQLite   Format = "sqlite"
	FormatPostgres Format = "postgres"
)

// ValidFormats returns all supported export formats.
func ValidFormats() []Format {
	return []Format{FormatCSV, FormatJSON, FormatYAML, FormatExcel, FormatSQLite, FormatPostgres}
}

// Writer writes rows to a sink. Rows are uniform maps; every writer
// derives its column set from the keys it sees.
type Writer interface {
	Write(rows []map[string]interface{}) error
	Close() error
}

// LeadRows flattens the saved state into one row per lead, every family
// sharing the kind/value column pair so mixed exports stay greppable.
func LeadRows(saved types.SavedState) []map[string]interface{} {
	rows := make([]map[string]interface{}, 0, len(saved.Emails)+len(saved.Phones)+len(saved.SocialLinks)+len(saved.SERPLinkedIn))

	for _, rec := range saved.Emails {
		row := map[string]interface{}{
			"kind":  "email",
			"value": rec.Address,
		}
		if rec.DisplayName != "" {
			row["display_name"] = rec.DisplayName
		}
		rows = append(rows, row)
	}
	for _, rec := range saved.Phones {
		rows = append(rows, map[string]interface{}{
			"kind":  "phone",
			"value": rec.E164,
		})
	}
	for _, link := range saved.SocialLinks {
		rows = append(rows, map[string]interface{}{
			"kind":     "social",
			"value":    link.CanonicalURL,
			"platform": link.Platform.DisplayName(),
			"username": link.Username,
			"score":    link.Score,
		})
	}
	for _, url := range saved.SERPLinkedIn {
		rows = append(rows, map[string]interface{}{
			"kind":  "serp_linkedin",
			"value": url,
		})
	}
	return rows
}

// ProfileRows flattens profile records into export rows.
func ProfileRows(profiles []types.ProfileRecord) []map[string]interface{} {
	rows := make([]map[string]interface{}, 0, len(profiles))
	for _, p := range profiles {
		rows = append(rows, map[string]interface{}{
			"id":          p.ID,
			"platform":    p.Platform.DisplayName(),
			"profile_url": p.ProfileURL,
			"full_name":   p.FullName,
			"username":    p.Username,
			"headline":    p.Headline,
			"location":    p.Location,
			"company":     p.CompanyName,
			"email":       p.Email,
			"phone":       p.Phone,
			"links":       strings.Join(p.ExternalLinks, " "),
			"created_at":  p.CreatedAt.Format(time.RFC3339),
		})
	}
	return rows
}
