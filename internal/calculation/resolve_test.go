package calculation

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uwbench/renewal/internal/domain"
)

func TestSummarizeExperience(t *testing.T) {
	records := monthlySeries(12, month(2025, time.June), 1000, 400, 100)

	s := SummarizeExperience(records)
	assert.Equal(t, 12, s.Months)
	assert.True(t, s.TotalMemberMonths.Equal(dec(12000)))
	assert.True(t, s.TotalClaims.Equal(dec(6000000)))
	assert.True(t, s.ExperiencePMPM.Equal(dec(500)))
	assert.True(t, s.MedicalShare.Equal(dec(0.8)))
	assert.True(t, s.RxShare.Equal(dec(0.2)))
}

func TestSummarizeExperienceRetentionTiers(t *testing.T) {
	cases := []struct {
		memberMonthsPerMonth float64
		expected             decimal.Decimal
	}{
		{3000, largeGroupRetention},  // 36,000 member months
		{1000, mediumGroupRetention}, // 12,000 member months
		{500, smallGroupRetention},   // 6,000 member months
	}
	for _, tc := range cases {
		records := monthlySeries(12, month(2025, time.June), tc.memberMonthsPerMonth, 400, 100)
		s := SummarizeExperience(records)
		assert.True(t, s.RetentionPct.Equal(tc.expected),
			"member months %s: got %s", s.TotalMemberMonths, s.RetentionPct)
	}
}

func TestSummarizeExperienceEmptySeries(t *testing.T) {
	s := SummarizeExperience(nil)
	assert.True(t, s.ExperiencePMPM.IsZero())
	assert.True(t, s.MedicalShare.Equal(defaultMedicalShare))
	assert.True(t, s.RetentionPct.Equal(smallGroupRetention))
}

func TestResolveNorthfieldDefaults(t *testing.T) {
	records := monthlySeries(12, month(2025, time.June), 1000, 400, 100)
	s := SummarizeExperience(records)

	p := ResolveNorthfield(nil, nil, s)

	assert.True(t, p.PoolingThreshold.Equal(decimal.NewFromInt(125000)))
	assert.Equal(t, 20, p.ProjectionMonthsCurrent)
	assert.Equal(t, 28, p.ProjectionMonthsPrior)
	require.Len(t, p.ExperienceWeights, 2)
	assert.True(t, p.ExperienceWeights[0].Equal(dec(0.70)))
	assert.True(t, p.ExperienceWeights[1].Equal(dec(0.30)))

	require.NotNil(t, p.Credibility)
	credSum := p.Credibility.Experience.Add(p.Credibility.Manual)
	assert.True(t, credSum.Equal(decimal.NewFromInt(1)), "credibility weights sum to 1, got %s", credSum)

	// Manual basis falls back to the experience PMPM without manual rates.
	assert.True(t, p.ManualBasePMPM.Equal(dec(500)))

	// Retention splits the 14% medium-group tier 60/15/25.
	retentionSum := p.AdminRetentionPct.Add(p.TaxRetentionPct).Add(p.OtherRetentionPct)
	assert.True(t, retentionSum.Equal(mediumGroupRetention), "got %s", retentionSum)

	// Current premium defaults to the retention-grossed experience PMPM.
	expected := dec(500).Div(decimal.NewFromInt(1).Sub(mediumGroupRetention))
	assert.True(t, p.CurrentPremiumPMPM.Equal(expected))
	assert.Nil(t, p.SuggestedRateAction)
}

func TestResolveNorthfieldOverridesWin(t *testing.T) {
	records := monthlySeries(12, month(2025, time.June), 1000, 400, 100)
	s := SummarizeExperience(records)

	overrides := &domain.NorthfieldOverrides{
		PoolingFactor:      decPtr(0.156),
		CurrentPremiumPMPM: decPtr(620),
		Credibility:        &domain.CredibilityWeights{Experience: dec(0.55), Manual: dec(0.45)},
	}
	manual := &domain.ManualRates{MedicalPMPM: dec(430), RxPMPM: dec(120)}

	p := ResolveNorthfield(overrides, manual, s)
	assert.True(t, p.PoolingFactor.Equal(dec(0.156)))
	assert.True(t, p.CurrentPremiumPMPM.Equal(dec(620)))
	assert.True(t, p.Credibility.Experience.Equal(dec(0.55)))
	assert.True(t, p.ManualBasePMPM.Equal(dec(550)), "manual rates beat the experience fallback")
}

func TestResolveCascadeDefaults(t *testing.T) {
	records := monthlySeries(12, month(2025, time.June), 1000, 400, 100)
	s := SummarizeExperience(records)

	p := ResolveCascade(nil, nil, s)

	assert.True(t, p.PoolingThreshold.Equal(decimal.NewFromInt(50000)))
	weightSum := p.ExperienceWeight.Add(p.ManualWeight)
	assert.True(t, weightSum.Equal(decimal.NewFromInt(1)), "weights sum to 1, got %s", weightSum)

	// Engine-computed defaults stay unset.
	assert.Nil(t, p.LargeClaimAddBackPMPM)
	assert.Nil(t, p.CurrentPremiumPMPM)
	assert.Nil(t, p.ProjectedMemberMonths)
}

func TestResolveAtlasDefaults(t *testing.T) {
	records := monthlySeries(12, month(2025, time.June), 1000, 400, 100)
	s := SummarizeExperience(records)

	p := ResolveAtlas(nil, nil, s)

	assert.True(t, p.PoolingThreshold.Equal(decimal.NewFromInt(175000)))
	assert.Equal(t, 18, p.TrendMonthsCurrent)
	assert.Equal(t, 30, p.TrendMonthsPrior)
	assert.True(t, p.CurrentWeight.Equal(dec(0.75)))
	assert.True(t, p.PriorWeight.Equal(dec(0.25)))

	// Retention splits the tiered total 55/20/15/10.
	retentionSum := p.AdminPct.Add(p.CommissionPct).Add(p.PremiumTaxPct).Add(p.ProfitPct)
	assert.True(t, retentionSum.Equal(mediumGroupRetention), "got %s", retentionSum)
	assert.True(t, p.CurrentPremiumPMPM.Sign() > 0)
}

func TestResolveMeridianPlan(t *testing.T) {
	records := monthlySeries(12, month(2025, time.June), 1000, 400, 100)
	s := SummarizeExperience(records)

	data := meridianTestData("PPO", 600, 420, 110)
	overrides := domain.MeridianPlanOverrides{PlanID: "PPO", Enrollment: dec(450)}

	p := ResolveMeridianPlan(overrides, &data, nil, s)

	assert.Equal(t, "PPO", p.PlanID)
	assert.True(t, p.Enrollment.Equal(dec(450)), "enrollment passes through with no placeholder")
	assert.True(t, p.MedicalPooling.Equal(decimal.NewFromInt(100000)))

	// Plan-level quantities derive from the plan's own data: 7,200 member
	// months and a 530 PMPM experience basis.
	assert.True(t, p.ManualClaimsPMPM.Equal(dec(530)), "got %s", p.ManualClaimsPMPM)
	assert.True(t, p.PoolingChargePMPM.Sign() > 0)
	assert.True(t, p.CredibilityFactor.Sign() > 0)
	assert.True(t, p.CredibilityFactor.LessThanOrEqual(decimal.NewFromInt(1)))

	// Group-level retention tier applies, split 80/20 across retention and tax.
	retentionSum := p.RetentionPct.Add(p.TaxPct)
	assert.True(t, retentionSum.Equal(mediumGroupRetention), "got %s", retentionSum)
}

func TestResolveMeridianPlanEnrollmentNotDefaulted(t *testing.T) {
	s := SummarizeExperience(nil)
	p := ResolveMeridianPlan(domain.MeridianPlanOverrides{PlanID: "HMO"}, nil, nil, s)
	assert.True(t, p.Enrollment.IsZero(), "a missing enrollment must stay zero for the engine to reject")
}
