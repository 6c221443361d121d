package filters

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfcarports/salesdesk/models"
)

func lead(id, owner, state, leadStage string, fields map[string]string) models.LeadRecord {
	if fields == nil {
		fields = map[string]string{}
	}
	fields["Leads_Stage"] = leadStage
	if _, ok := fields["Customers_Stage"]; !ok {
		fields["Customers_Stage"] = ""
	}
	return models.LeadRecord{
		EntityID:    id,
		Fields:      fields,
		DisplayName: "Lead " + id,
		Owner:       owner,
		State:       state,
	}
}

func repViewer() *models.User {
	return &models.User{Role: models.RoleRep, OwnerValue: "Ivan Torres"}
}

func managerViewer() *models.User {
	return &models.User{Role: models.RoleManager, OwnerValue: "Dana Wolf"}
}

func TestRepScopeNeverLeaksOtherOwners(t *testing.T) {
	rows := []models.LeadRecord{
		lead("1", "Ivan Torres", "TX", "Hot Lead", nil),
		lead("2", models.SharedPoolOwner, "TX", "Hot Lead", nil),
		lead("3", "Someone Else", "TX", "Hot Lead", nil),
	}

	visible, _ := Apply(rows, repViewer(), Criteria{})
	require.Len(t, visible, 2)
	for _, r := range visible {
		assert.Contains(t, []string{"Ivan Torres", models.SharedPoolOwner}, r.Owner)
	}

	// An owners override is ignored for non-managers
	visible, _ = Apply(rows, repViewer(), Criteria{OwnersOverride: []string{"Someone Else"}})
	for _, r := range visible {
		assert.NotEqual(t, "Someone Else", r.Owner)
	}
}

func TestManagerOwnersOverride(t *testing.T) {
	rows := []models.LeadRecord{
		lead("1", "Ivan Torres", "TX", "Hot Lead", nil),
		lead("2", "Someone Else", "TX", "Hot Lead", nil),
		lead("3", "Dana Wolf", "TX", "Hot Lead", nil),
	}

	visible, _ := Apply(rows, managerViewer(), Criteria{OwnersOverride: []string{"Someone Else"}})
	require.Len(t, visible, 1)
	assert.Equal(t, "2", visible[0].EntityID)

	// Without an override a manager is scoped like a rep
	visible, _ = Apply(rows, managerViewer(), Criteria{})
	require.Len(t, visible, 1)
	assert.Equal(t, "3", visible[0].EntityID)
}

func TestExcludedStagesAlwaysRemoved(t *testing.T) {
	rows := []models.LeadRecord{
		lead("1", models.SharedPoolOwner, "TX", "Cold Lead", nil),
		lead("2", models.SharedPoolOwner, "TX", "Hot Lead", map[string]string{"Customers_Stage": "Payment confirmed"}),
		lead("3", models.SharedPoolOwner, "TX", "Hot Lead", nil),
	}

	// Even asking for the excluded stage explicitly cannot surface it
	visible, _ := Apply(rows, repViewer(), Criteria{LeadStage: []string{"Cold Lead", "Hot Lead"}})
	require.Len(t, visible, 1)
	assert.Equal(t, "3", visible[0].EntityID)
}

func TestFacetFilters(t *testing.T) {
	rows := []models.LeadRecord{
		lead("1", models.SharedPoolOwner, "TX", "Hot Lead", nil),
		lead("2", models.SharedPoolOwner, "OK", "Hot Lead", nil),
		lead("3", models.SharedPoolOwner, "NC", "New Lead", nil),
	}
	rows[0].ReadinessLevel = "Level 3"
	rows[1].ReadinessLevel = "Level 1"

	visible, _ := Apply(rows, repViewer(), Criteria{States: []string{"TX", "OK"}})
	assert.Len(t, visible, 2)

	visible, _ = Apply(rows, repViewer(), Criteria{Readiness: []string{"Level 3"}})
	require.Len(t, visible, 1)
	assert.Equal(t, "1", visible[0].EntityID)

	visible, _ = Apply(rows, repViewer(), Criteria{LeadStage: []string{"New Lead"}})
	require.Len(t, visible, 1)
	assert.Equal(t, "3", visible[0].EntityID)

	// Empty facet sets pass everything through
	visible, _ = Apply(rows, repViewer(), Criteria{})
	assert.Len(t, visible, 3)
}

func TestEngagementTogglesComposeWithAND(t *testing.T) {
	rows := []models.LeadRecord{
		lead("1", models.SharedPoolOwner, "TX", "Hot Lead", map[string]string{
			"Leads_NotCalledIn30Days": "TRUE", "EZ_Pay_Qualified": "true",
		}),
		lead("2", models.SharedPoolOwner, "TX", "Hot Lead", map[string]string{
			"Leads_NotCalledIn30Days": "true", "EZ_Pay_Qualified": "false",
		}),
	}

	visible, _ := Apply(rows, repViewer(), Criteria{Engagement: map[string]bool{
		"Leads_NotCalledIn30Days": true,
	}})
	assert.Len(t, visible, 2, "case-insensitive true matches")

	visible, _ = Apply(rows, repViewer(), Criteria{Engagement: map[string]bool{
		"Leads_NotCalledIn30Days": true,
		"EZ_Pay_Qualified":        true,
	}})
	require.Len(t, visible, 1)
	assert.Equal(t, "1", visible[0].EntityID)
}

func TestToggleForAbsentColumnIsNoOp(t *testing.T) {
	rows := []models.LeadRecord{
		lead("1", models.SharedPoolOwner, "TX", "Hot Lead", nil),
	}

	visible, _ := Apply(rows, repViewer(), Criteria{Engagement: map[string]bool{
		"Site_Prep_Status_Check": true,
	}})
	assert.Len(t, visible, 1, "toggle over a missing column must not filter")
}

func TestInteractionSelectorORsAcrossColumns(t *testing.T) {
	rows := []models.LeadRecord{
		lead("1", models.SharedPoolOwner, "TX", "Hot Lead", map[string]string{
			"Leads_Spoken": "true", "Customers_Spoken": "false",
		}),
		lead("2", models.SharedPoolOwner, "TX", "Hot Lead", map[string]string{
			"Leads_Spoken": "false", "Customers_Spoken": "true",
		}),
		lead("3", models.SharedPoolOwner, "TX", "Hot Lead", map[string]string{
			"Leads_Spoken": "false", "Customers_Spoken": "false",
		}),
	}

	visible, _ := Apply(rows, repViewer(), Criteria{Interaction: "Spoken"})
	require.Len(t, visible, 2)
}

func TestFreeTextSearch(t *testing.T) {
	rows := []models.LeadRecord{
		lead("1", models.SharedPoolOwner, "TX", "Hot Lead", nil),
		lead("2", models.SharedPoolOwner, "OK", "Hot Lead", nil),
	}
	rows[0].PrimaryEmail = "jane@example.com"
	rows[0].AllPhones = []string{"+15551230001"}
	rows[1].City = "Tulsa"

	visible, _ := Apply(rows, repViewer(), Criteria{Query: "JANE@example"})
	require.Len(t, visible, 1)
	assert.Equal(t, "1", visible[0].EntityID)

	visible, _ = Apply(rows, repViewer(), Criteria{Query: "5551230001"})
	require.Len(t, visible, 1)
	assert.Equal(t, "1", visible[0].EntityID)

	visible, _ = Apply(rows, repViewer(), Criteria{Query: "tulsa"})
	require.Len(t, visible, 1)
	assert.Equal(t, "2", visible[0].EntityID)

	visible, _ = Apply(rows, repViewer(), Criteria{Query: "   "})
	assert.Len(t, visible, 2, "blank query is no restriction")
}

func TestSortByValueDescendingNullsLast(t *testing.T) {
	rows := []models.LeadRecord{
		lead("1", models.SharedPoolOwner, "TX", "Hot Lead", nil),
		lead("2", models.SharedPoolOwner, "OK", "Hot Lead", nil),
		lead("3", models.SharedPoolOwner, "TX", "Hot Lead", nil),
	}
	rows[0].ValueProxy = 4500
	rows[1].ValueProxy = 9800
	rows[2].ValueProxy = 1200

	visible, _ := Apply(rows, repViewer(), Criteria{
		States: []string{"TX", "OK"},
		SortBy: "value_proxy_num",
	})
	// descending
	visible2, _ := Apply(rows, repViewer(), Criteria{SortBy: "value_proxy_num", SortAsc: false})
	assert.Equal(t, "2", visible2[0].EntityID)
	assert.Equal(t, "3", visible2[2].EntityID)

	// ascending (SortAsc default false means descending; set true)
	visible, _ = Apply(rows, repViewer(), Criteria{SortBy: "value_proxy_num", SortAsc: true})
	assert.Equal(t, "3", visible[0].EntityID)
	assert.Equal(t, "2", visible[2].EntityID)
}

func TestSortDatesNullsLastBothDirections(t *testing.T) {
	early := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	late := time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)
	rows := []models.LeadRecord{
		lead("1", models.SharedPoolOwner, "TX", "Hot Lead", nil),
		lead("2", models.SharedPoolOwner, "TX", "Hot Lead", nil),
		lead("3", models.SharedPoolOwner, "TX", "Hot Lead", nil),
	}
	rows[0].LastCallAt = &late
	rows[2].LastCallAt = &early
	// rows[1] has no last call date

	asc, _ := Apply(rows, repViewer(), Criteria{SortBy: "last_call_dt", SortAsc: true})
	assert.Equal(t, []string{"3", "1", "2"}, ids(asc))

	desc, _ := Apply(rows, repViewer(), Criteria{SortBy: "last_call_dt", SortAsc: false})
	assert.Equal(t, []string{"1", "3", "2"}, ids(desc), "null dates sink even when descending")
}

func TestSortUnknownColumnFallsBackToDisplayName(t *testing.T) {
	rows := []models.LeadRecord{
		lead("2", models.SharedPoolOwner, "TX", "Hot Lead", nil),
		lead("1", models.SharedPoolOwner, "TX", "Hot Lead", nil),
	}

	visible, _ := Apply(rows, repViewer(), Criteria{SortBy: "No_Such_Column", SortAsc: true})
	assert.Equal(t, []string{"1", "2"}, ids(visible))
}

func TestFilterLabel(t *testing.T) {
	_, label := Apply(nil, repViewer(), Criteria{})
	assert.Equal(t, "All", label)

	_, label = Apply(nil, repViewer(), Criteria{
		Readiness:   []string{"Level 3"},
		States:      []string{"TX", "OK"},
		Engagement:  map[string]bool{"EZ_Pay_Qualified": true},
		Interaction: "Spoken",
	})
	assert.Equal(t, "Ready: Level 3 AND States: TX, OK AND EZ Pay Qualified AND Spoken", label)
}

func TestOptions(t *testing.T) {
	rows := []models.LeadRecord{
		lead("1", "Ivan Torres", "TX", "Hot Lead", nil),
		lead("2", models.SharedPoolOwner, "OK", "New Lead", nil),
		lead("3", "Ivan Torres", "TX", "Hot Lead", nil),
	}
	rows[0].ReadinessLevel = "Level 2"

	opts := Options(rows)
	assert.Equal(t, []string{"Level 2"}, opts.Readiness)
	assert.Equal(t, []string{"Hot Lead", "New Lead"}, opts.LeadStage)
	assert.Equal(t, []string{"OK", "TX"}, opts.States)
	assert.Equal(t, []string{"Ivan Torres", models.SharedPoolOwner}, opts.Owners)
}

func ids(rows []models.LeadRecord) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.EntityID
	}
	return out
}
