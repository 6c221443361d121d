// ABOUTME: Facet option discovery for the filter bar
// ABOUTME: Collects distinct readiness levels, stages, states, and owners from the dataset
package filters

import (
	"sort"

	"github.com/wolfcarports/salesdesk/models"
)

// FacetOptions holds the distinct values offered for each inclusion filter.
type FacetOptions struct {
	Readiness     []string
	LeadStage     []string
	CustomerStage []string
	States        []string
	Owners        []string
}

// Options scans the dataset for the distinct facet values, sorted and
// capped the way the filter bar presents them.
func Options(rows []models.LeadRecord) FacetOptions {
	return FacetOptions{
		Readiness:     distinct(rows, func(r *models.LeadRecord) string { return r.ReadinessLevel }, 20),
		LeadStage:     distinct(rows, func(r *models.LeadRecord) string { return r.Field("Leads_Stage") }, 30),
		CustomerStage: distinct(rows, func(r *models.LeadRecord) string { return r.Field("Customers_Stage") }, 30),
		States:        distinct(rows, func(r *models.LeadRecord) string { return r.State }, 100),
		Owners:        distinct(rows, func(r *models.LeadRecord) string { return r.Owner }, 50),
	}
}

func distinct(rows []models.LeadRecord, value func(*models.LeadRecord) string, limit int) []string {
	seen := map[string]bool{}
	for i := range rows {
		if v := value(&rows[i]); v != "" {
			seen[v] = true
		}
	}
	values := make([]string, 0, len(seen))
	for v := range seen {
		values = append(values, v)
	}
	sort.Strings(values)
	if len(values) > limit {
		values = values[:limit]
	}
	return values
}
