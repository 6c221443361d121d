package readiness

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScoreEmptyAnswers(t *testing.T) {
	score, level := Compute(nil)
	assert.Equal(t, 0.0, score)
	assert.Equal(t, "Level 1", level)
}

func TestScoreUnknownKeysTreatedAsDontKnow(t *testing.T) {
	answers := map[string]string{
		QuestionLandStatus:       "some_future_answer_key",
		QuestionSiteReady:        "also_unknown",
		QuestionInstallTimeframe: "asap",
	}
	assert.Equal(t, 3.0, Score(answers))
}

func TestScoreFullyReadyLead(t *testing.T) {
	answers := map[string]string{
		QuestionLandStatus:       "i_need_to_grade_the_land",
		QuestionSiteReady:        "site_is_ready",
		QuestionPermitStatus:     "i_already_have_my_permits",
		QuestionLicenseStatus:    "i_dont_need_contractors_license",
		QuestionDrawingsStatus:   "i_dont_need_site_specific_drawings",
		QuestionFinancingStatus:  "i_dont_need_financing",
		QuestionInstallTimeframe: "asap",
	}
	// land 0.5 is overridden to 0 because the site is ready:
	// 3 + 2 + 1 + 1 + 1 + 3 = 11
	score, level := Compute(answers)
	assert.Equal(t, 11.0, score)
	assert.Equal(t, "Level 4", level)
}

func TestSiteReadyOverridesLand(t *testing.T) {
	answers := map[string]string{
		QuestionLandStatus: "i_need_to_pour_concrete_or_gravel",
		QuestionSiteReady:  "site_is_ready",
	}
	assert.Equal(t, 3.0, Score(answers), "land points must be zeroed when site is ready")

	answers[QuestionSiteReady] = "i_dont_need_foundation"
	assert.Equal(t, 2.0, Score(answers), "land points must be zeroed when no foundation is needed")

	answers[QuestionSiteReady] = AnswerDontKnow
	assert.Equal(t, 0.5, Score(answers), "land points count when the site is not ready")
}

func TestSiteReadyOverrideWithLandToBuy(t *testing.T) {
	answers := map[string]string{
		QuestionLandStatus: "i_need_to_buy_the_land",
		QuestionSiteReady:  "site_is_ready",
	}
	assert.Equal(t, 3.0, Score(answers))
}

func TestFinancingCompanyGatedOnFinancingStatus(t *testing.T) {
	answers := map[string]string{
		QuestionFinancingStatus:  "i_dont_need_financing",
		QuestionFinancingCompany: "i_have_my_own_financing_company",
	}
	// financing 1.0, finco suppressed
	assert.Equal(t, 1.0, Score(answers))

	answers[QuestionFinancingStatus] = "maybe"
	assert.Equal(t, 0.0, Score(answers))

	answers[QuestionFinancingStatus] = "i_require_financing"
	assert.Equal(t, 0.5, Score(answers), "finco points count only when financing is required")
}

func TestAssignLevelBoundaries(t *testing.T) {
	tests := []struct {
		score float64
		level string
	}{
		{0.0, "Level 1"},
		{2.49, "Level 1"},
		{2.5, "Level 2"},
		{4.99, "Level 2"},
		{5.0, "Level 3"},
		{8.99, "Level 3"},
		{9.0, "Level 4"},
		{14.0, "Level 4"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.level, AssignLevel(tt.score), "score %v", tt.score)
	}
}

func TestScoreDeterministic(t *testing.T) {
	answers := map[string]string{
		QuestionSiteReady:        "i_dont_need_foundation",
		QuestionPermitStatus:     "i_don't_need_permits_on_my_land",
		QuestionInstallTimeframe: "2-4_weeks",
	}
	first := Score(answers)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Score(answers))
	}
	assert.Equal(t, 6.5, first)
}

func TestEveryScoreLandsInExactlyOneBucket(t *testing.T) {
	for _, land := range LandOptions {
		for _, site := range SiteReadyOptions {
			for _, sched := range ScheduleOptions {
				answers := map[string]string{
					QuestionLandStatus:       land.Key,
					QuestionSiteReady:        site.Key,
					QuestionInstallTimeframe: sched.Key,
				}
				_, level := Compute(answers)
				assert.Contains(t, []string{"Level 1", "Level 2", "Level 3", "Level 4"}, level)
			}
		}
	}
}
