// ABOUTME: Readiness scoring engine for the lead questionnaire
// ABOUTME: Maps answer keys to points and assigns a Level 1-4 bucket from the total
package readiness

import (
	"math"
)

// Answer keys shared with the stored questionnaire rows. Unknown or missing
// answers fall back to AnswerDontKnow, which scores zero everywhere.
const AnswerDontKnow = "i_dont_know"

// Question dimension names, in questionnaire order.
const (
	QuestionLandStatus       = "land_status"
	QuestionSiteReady        = "site_ready"
	QuestionPermitStatus     = "permit_status"
	QuestionLicenseStatus    = "license_status"
	QuestionDrawingsStatus   = "drawings_status"
	QuestionFinancingStatus  = "financing_status"
	QuestionFinancingCompany = "financing_company"
	QuestionInstallTimeframe = "install_timeframe"
)

// Questions lists every dimension in display order.
var Questions = []string{
	QuestionLandStatus, QuestionSiteReady, QuestionPermitStatus,
	QuestionLicenseStatus, QuestionDrawingsStatus, QuestionFinancingStatus,
	QuestionFinancingCompany, QuestionInstallTimeframe,
}

// Option pairs an answer key with its human label for form rendering.
type Option struct {
	Key   string
	Label string
}

var (
	LandOptions = []Option{
		{"i_have_not_decided_on_the_location_yet", "Haven't decided location"},
		{"i_need_to_buy_the_land", "Need to buy land"},
		{"i_have_not_started_any_site_prep_yet", "No site prep yet"},
		{"i_need_to_grade_the_land", "Need to grade land"},
		{"i_need_to_pour_concrete_or_gravel", "Need to pour base (concrete/gravel)"},
		{AnswerDontKnow, "I don't know"},
	}
	SiteReadyOptions = []Option{
		{"site_is_ready", "Site is ready"},
		{"i_dont_need_foundation", "Don't need foundation"},
		{AnswerDontKnow, "I don't know"},
	}
	PermitOptions = []Option{
		{"i_don't_need_permits_on_my_land", "Don't need permits"},
		{"i_need_help_with_permits", "Need help with permits"},
		{"i_need_to_look_into_permits", "Need to look into permits"},
		{"i_already_have_my_permits", "Already have permits"},
		{AnswerDontKnow, "I don't know"},
	}
	LicenseOptions = []Option{
		{"contractors_license_require", "Contractor's license required"},
		{"i_dont_need_contractors_license", "Don't need contractor's license"},
		{AnswerDontKnow, "I don't know"},
	}
	DrawingsOptions = []Option{
		{"i_need_site_specific_drawings", "Need site-specific drawings"},
		{"i_dont_need_site_specific_drawings", "Don't need site-specific drawings"},
		{AnswerDontKnow, "I don't know"},
	}
	FinancingOptions = []Option{
		{"i_require_financing", "Require financing"},
		{"i_dont_need_financing", "Don't need financing"},
		{"maybe", "Maybe / not sure"},
		{AnswerDontKnow, "I don't know"},
	}
	FinancingCompanyOptions = []Option{
		{"i_have_my_own_financing_company", "I have my own financing company"},
		{"i_dont_have_a_financing_company_yet", "I don't have a financing company yet"},
		{AnswerDontKnow, "I don't know"},
	}
	ScheduleOptions = []Option{
		{"asap", "ASAP"},
		{"2-4_weeks", "2-4 weeks"},
		{"4-8_weeks", "4-8 weeks"},
		{"2-3_months", "2-3 months"},
		{"3+_months", "3+ months"},
		{AnswerDontKnow, "I don't know"},
	}
)

// OptionsFor returns the answer set of a question dimension, or nil for an
// unknown dimension.
func OptionsFor(question string) []Option {
	switch question {
	case QuestionLandStatus:
		return LandOptions
	case QuestionSiteReady:
		return SiteReadyOptions
	case QuestionPermitStatus:
		return PermitOptions
	case QuestionLicenseStatus:
		return LicenseOptions
	case QuestionDrawingsStatus:
		return DrawingsOptions
	case QuestionFinancingStatus:
		return FinancingOptions
	case QuestionFinancingCompany:
		return FinancingCompanyOptions
	case QuestionInstallTimeframe:
		return ScheduleOptions
	}
	return nil
}

var points = map[string]map[string]float64{
	QuestionLandStatus: {
		"i_have_not_decided_on_the_location_yet": 0.0,
		"i_need_to_buy_the_land":                 0.0,
		"i_have_not_started_any_site_prep_yet":   0.0,
		"i_need_to_grade_the_land":               0.5,
		"i_need_to_pour_concrete_or_gravel":      0.5,
		AnswerDontKnow:                           0.0,
	},
	QuestionSiteReady: {
		"site_is_ready":          3.0,
		"i_dont_need_foundation": 2.0,
		AnswerDontKnow:           0.0,
	},
	QuestionPermitStatus: {
		"i_don't_need_permits_on_my_land": 2.0,
		"i_need_help_with_permits":        0.0,
		"i_need_to_look_into_permits":     0.0,
		"i_already_have_my_permits":       2.0,
		AnswerDontKnow:                    0.0,
	},
	QuestionLicenseStatus: {
		"contractors_license_require":     0.0,
		"i_dont_need_contractors_license": 1.0,
		AnswerDontKnow:                    0.0,
	},
	QuestionDrawingsStatus: {
		"i_need_site_specific_drawings":      0.0,
		"i_dont_need_site_specific_drawings": 1.0,
		AnswerDontKnow:                       0.0,
	},
	QuestionFinancingStatus: {
		"i_require_financing":   0.0,
		"i_dont_need_financing": 1.0,
		"maybe":                 0.0,
		AnswerDontKnow:          0.0,
	},
	QuestionFinancingCompany: {
		"i_have_my_own_financing_company":     0.5,
		"i_dont_have_a_financing_company_yet": 0.0,
		AnswerDontKnow:                        0.0,
	},
	QuestionInstallTimeframe: {
		"asap":         3.0,
		"2-4_weeks":    2.5,
		"4-8_weeks":    2.0,
		"2-3_months":   1.0,
		"3+_months":    0.5,
		AnswerDontKnow: 0.0,
	},
}

func lookup(question string, answers map[string]string) float64 {
	answer, ok := answers[question]
	if !ok {
		answer = AnswerDontKnow
	}
	return points[question][answer]
}

// Score totals the questionnaire answers. A ready (or foundation-free) site
// zeroes the land contribution, and financing-company points only count when
// financing is actually required. Total is rounded to 2 decimal places.
func Score(answers map[string]string) float64 {
	land := lookup(QuestionLandStatus, answers)
	site := lookup(QuestionSiteReady, answers)
	if answers[QuestionSiteReady] == "site_is_ready" || answers[QuestionSiteReady] == "i_dont_need_foundation" {
		land = 0.0
	}

	permit := lookup(QuestionPermitStatus, answers)
	license := lookup(QuestionLicenseStatus, answers)
	drawings := lookup(QuestionDrawingsStatus, answers)
	financing := lookup(QuestionFinancingStatus, answers)

	finco := 0.0
	if answers[QuestionFinancingStatus] == "i_require_financing" {
		finco = lookup(QuestionFinancingCompany, answers)
	}

	schedule := lookup(QuestionInstallTimeframe, answers)

	total := land + site + permit + license + drawings + financing + finco + schedule
	return math.Round(total*100) / 100
}

// AssignLevel buckets a score into Level 1-4. Boundaries are half-open on
// the left: a score of exactly 2.5 is Level 2.
func AssignLevel(score float64) string {
	switch {
	case score < 2.5:
		return "Level 1"
	case score < 5.0:
		return "Level 2"
	case score < 9.0:
		return "Level 3"
	default:
		return "Level 4"
	}
}

// Compute scores the answers and assigns the level in one call.
func Compute(answers map[string]string) (float64, string) {
	s := Score(answers)
	return s, AssignLevel(s)
}
