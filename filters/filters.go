// ABOUTME: Filter and ranking engine over the loaded lead dataset
// ABOUTME: Applies owner scoping, stage exclusion, facet filters, toggles, search, and sort
package filters

import (
	"sort"
	"strings"
	"time"

	"github.com/wolfcarports/salesdesk/models"
)

// EngagementToggles is the fixed set of boolean flag columns a caller may
// switch on. A toggle whose column is absent from the snapshot is a no-op
// rather than an error, so upstream schema drift degrades quietly.
var EngagementToggles = []string{
	"Leads_NotCalledIn30Days", "Leads_LastCallLessthan30Days",
	"Leads_Text_TextedWithIn30days", "Customers_Text_TextedWithIn30days",
	"Leads_with_extended_calls", "Customers_with_extended_calls",
	"Initial_Readiness_level_Check", "Site_Prep_Status_Check",
	"Permit_Status_Check", "Ready_to_install_in_Check",
	"Leads_State_Check", "Number_of_quotes_Check", "Same_dimension_quotes_Check",
	"Last_quote_dimensions_Check", "ProximityCheck", "EZ_Pay_Qualified",
}

// interactionColumns maps the interaction selector to the lead-side and
// customer-side flag columns; a row passes when any present column is true.
var interactionColumns = map[string][]string{
	"Called":         {"Leads_Called", "Customers_Called"},
	"Spoken":         {"Leads_Spoken", "Customers_Spoken"},
	"RepeatedSpoken": {"Leads_RepeatedSpoken", "Customers_RepeatedSpoken"},
}

// Criteria is one session's filter and sort selection.
type Criteria struct {
	Readiness     []string
	LeadStage     []string
	CustomerStage []string
	States        []string
	// Engagement switches toggles on by column name; only names in
	// EngagementToggles are honored.
	Engagement map[string]bool
	// Interaction is "", "Called", "Spoken", or "RepeatedSpoken".
	Interaction string
	Query       string
	// OwnersOverride restricts to the given owners; managers only.
	OwnersOverride []string
	SortBy         string
	SortAsc        bool
}

// Apply produces the visible, ordered subset for a viewer plus a readable
// description of the active filter. Pure: the input slice is not modified.
func Apply(rows []models.LeadRecord, viewer *models.User, c Criteria) ([]models.LeadRecord, string) {
	out := make([]models.LeadRecord, 0, len(rows))

	readiness := toSet(c.Readiness)
	leadStage := toSet(c.LeadStage)
	customerStage := toSet(c.CustomerStage)
	states := toSet(c.States)
	owners := allowedOwners(viewer, c)
	query := strings.ToLower(strings.TrimSpace(c.Query))

	interCols := presentInteractionColumns(rows, c.Interaction)

	for _, r := range rows {
		if !owners[r.Owner] {
			continue
		}
		// Stage exclusion applies before and regardless of caller filters
		if models.ExcludedStages[r.Field("Leads_Stage")] || models.ExcludedStages[r.Field("Customers_Stage")] {
			continue
		}
		if len(readiness) > 0 && !readiness[r.ReadinessLevel] {
			continue
		}
		if len(leadStage) > 0 && !leadStage[r.Field("Leads_Stage")] {
			continue
		}
		if len(customerStage) > 0 && !customerStage[r.Field("Customers_Stage")] {
			continue
		}
		if len(states) > 0 && !states[r.State] {
			continue
		}
		if !passesToggles(rows, r, c.Engagement) {
			continue
		}
		if len(interCols) > 0 && !anyTrue(r, interCols) {
			continue
		}
		if query != "" && !matchesQuery(r, query) {
			continue
		}
		out = append(out, r)
	}

	sortRows(out, c.SortBy, c.SortAsc)
	return out, describe(c)
}

func allowedOwners(viewer *models.User, c Criteria) map[string]bool {
	if viewer.IsManager() && len(c.OwnersOverride) > 0 {
		return toSet(c.OwnersOverride)
	}
	allowed := map[string]bool{models.SharedPoolOwner: true}
	if viewer != nil && viewer.OwnerValue != "" {
		allowed[viewer.OwnerValue] = true
	}
	return allowed
}

// columnPresent reports whether the snapshot carried the named column at
// all. Parsed rows share one header, so the first row is authoritative.
func columnPresent(rows []models.LeadRecord, col string) bool {
	if len(rows) == 0 {
		return false
	}
	_, ok := rows[0].Fields[col]
	return ok
}

func passesToggles(rows []models.LeadRecord, r models.LeadRecord, engagement map[string]bool) bool {
	if len(engagement) == 0 {
		return true
	}
	for _, col := range EngagementToggles {
		if !engagement[col] || !columnPresent(rows, col) {
			continue
		}
		if !strings.EqualFold(r.Field(col), "true") {
			return false
		}
	}
	return true
}

func presentInteractionColumns(rows []models.LeadRecord, interaction string) []string {
	var present []string
	for _, col := range interactionColumns[interaction] {
		if columnPresent(rows, col) {
			present = append(present, col)
		}
	}
	return present
}

func anyTrue(r models.LeadRecord, cols []string) bool {
	for _, col := range cols {
		if strings.EqualFold(r.Field(col), "true") {
			return true
		}
	}
	return false
}

func matchesQuery(r models.LeadRecord, query string) bool {
	parts := []string{r.DisplayName, r.PrimaryEmail, r.City, r.State}
	parts = append(parts, r.AllPhones...)
	hay := strings.ToLower(strings.Join(parts, " "))
	return strings.Contains(hay, query)
}

// sortRows orders by the requested column, ascending or descending, rows
// with a missing sort value always last. Unknown columns fall back to the
// display name. The sort is stable, so equal keys keep dataset order.
func sortRows(rows []models.LeadRecord, sortBy string, asc bool) {
	if sortBy == "" {
		sortBy = "display_name"
	}
	sort.SliceStable(rows, func(i, j int) bool {
		li, ni := sortKey(&rows[i], sortBy)
		lj, nj := sortKey(&rows[j], sortBy)
		if ni != nj {
			return nj // missing values sink regardless of direction
		}
		if ni && nj {
			return false
		}
		if li == lj {
			return false
		}
		if asc {
			return less(li, lj)
		}
		return less(lj, li)
	})
}

type sortValue struct {
	str  string
	num  float64
	ts   time.Time
	kind byte // 's', 'n', 't'
}

func less(a, b sortValue) bool {
	switch a.kind {
	case 'n':
		return a.num < b.num
	case 't':
		return a.ts.Before(b.ts)
	default:
		return a.str < b.str
	}
}

// sortKey extracts the comparable value for a column; the bool reports a
// missing value.
func sortKey(r *models.LeadRecord, col string) (sortValue, bool) {
	switch col {
	case "display_name":
		return sortValue{str: r.DisplayName, kind: 's'}, false
	case "state":
		return sortValue{str: r.State, kind: 's'}, false
	case "city":
		return sortValue{str: r.City, kind: 's'}, false
	case "value_proxy_num":
		return sortValue{num: r.ValueProxy, kind: 'n'}, false
	case "Initial_Readiness_level":
		return sortValue{str: r.ReadinessLevel, kind: 's'}, false
	case "last_call_dt":
		if r.LastCallAt == nil {
			return sortValue{kind: 't'}, true
		}
		return sortValue{ts: *r.LastCallAt, kind: 't'}, false
	case "last_text_dt":
		if r.LastTextAt == nil {
			return sortValue{kind: 't'}, true
		}
		return sortValue{ts: *r.LastTextAt, kind: 't'}, false
	default:
		if v, ok := r.Fields[col]; ok {
			return sortValue{str: v, kind: 's'}, false
		}
		return sortValue{str: r.DisplayName, kind: 's'}, false
	}
}

// describe builds the human-readable filter summary joined with " AND ".
func describe(c Criteria) string {
	var parts []string
	if len(c.Readiness) > 0 {
		parts = append(parts, "Ready: "+strings.Join(c.Readiness, ", "))
	}
	if len(c.LeadStage) > 0 {
		parts = append(parts, "Stage: "+strings.Join(c.LeadStage, ", "))
	}
	if len(c.States) > 0 {
		parts = append(parts, "States: "+strings.Join(c.States, ", "))
	}
	for _, col := range EngagementToggles {
		if c.Engagement[col] {
			parts = append(parts, strings.ReplaceAll(col, "_", " "))
		}
	}
	if c.Interaction != "" {
		parts = append(parts, c.Interaction)
	}
	if len(parts) == 0 {
		return "All"
	}
	return strings.Join(parts, " AND ")
}

func toSet(values []string) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[v] = true
	}
	return set
}
