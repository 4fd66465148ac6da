package calculation

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uwbench/renewal/internal/domain"
)

func meridianTestData(planID string, memberMonths, medPMPM, rxPMPM float64) domain.MeridianPlanData {
	return domain.MeridianPlanData{
		PlanID:  planID,
		Monthly: monthlySeries(12, month(2025, time.June), memberMonths, medPMPM, rxPMPM),
	}
}

func TestMeridianCalculateComposite(t *testing.T) {
	params := []domain.MeridianPlanParameters{
		meridianTestPlanParams("PPO", 700),
		meridianTestPlanParams("HMO", 300),
	}
	data := []domain.MeridianPlanData{
		meridianTestData("PPO", 800, 420, 110),
		meridianTestData("HMO", 350, 360, 95),
	}

	engine := NewMeridianEngine(params, data, month(2025, time.October))
	result, err := engine.Calculate(context.Background())
	require.NoError(t, err)

	require.Len(t, result.Plans, 2)
	for _, plan := range result.Plans {
		assert.True(t, plan.RequiredPMPM.Sign() > 0)
		assert.Equal(t, 12, plan.Periods.Current.Months)
		expectedAction := plan.RequiredPMPM.Div(plan.CurrentPMPM).Sub(decimal.NewFromInt(1))
		assert.True(t, plan.RateAction.Equal(expectedAction))
	}

	// Composite weights by enrollment share: 700/1000 and 300/1000.
	ppo, hmo := result.Plans[0], result.Plans[1]
	expectedCurrent := ppo.CurrentPMPM.Mul(dec(0.7)).Add(hmo.CurrentPMPM.Mul(dec(0.3)))
	expectedProjected := ppo.RequiredPMPM.Mul(dec(0.7)).Add(hmo.RequiredPMPM.Mul(dec(0.3)))
	assert.True(t, result.CompositeCurrentPMPM.Equal(expectedCurrent))
	assert.True(t, result.CompositeProjectedPMPM.Equal(expectedProjected))

	expectedAction := expectedProjected.Div(expectedCurrent).Sub(decimal.NewFromInt(1))
	assert.True(t, result.CompositeRateAction.Equal(expectedAction))

	// Enrollment shares sum to 1, premiums reconcile.
	assert.True(t, result.Enrollment.TotalEnrollment.Equal(dec(1000)))
	var shareSum, premiumSum decimal.Decimal
	for _, share := range result.Enrollment.PlanShares {
		shareSum = shareSum.Add(share.Share)
		premiumSum = premiumSum.Add(share.MonthlyPremium)
	}
	assert.True(t, shareSum.Equal(decimal.NewFromInt(1)), "got %s", shareSum)
	assert.True(t, result.Enrollment.TotalMonthlyPremium.Equal(premiumSum))
	assert.True(t, result.Enrollment.TotalAnnualPremium.Equal(premiumSum.Mul(decimal.NewFromInt(12))))
}

func TestMeridianPlanLedgerShape(t *testing.T) {
	params := []domain.MeridianPlanParameters{meridianTestPlanParams("PPO", 500)}
	data := []domain.MeridianPlanData{meridianTestData("PPO", 600, 400, 100)}

	engine := NewMeridianEngine(params, data, month(2025, time.October))
	result, err := engine.Calculate(context.Background())
	require.NoError(t, err)

	plan := result.Plans[0]
	assert.Len(t, plan.MedicalLines, 6)
	assert.Len(t, plan.RxLines, 6)

	// Sub-ledger lines keep both columns until the period blend.
	for _, line := range plan.MedicalLines {
		assert.NotNil(t, line.Renewal, "medical line %q must carry a renewal column", line.Label)
	}
	blendSeen := false
	for _, line := range plan.TotalLines {
		if line.Label == "Period-blended PMPM" {
			blendSeen = true
		}
		if blendSeen {
			assert.Nil(t, line.Renewal, "line %q follows the blend and must carry a single column", line.Label)
		} else {
			assert.NotNil(t, line.Renewal, "line %q precedes the blend and must carry both columns", line.Label)
		}
	}
	assert.True(t, blendSeen)
}

func TestMeridianPlanDataNotFound(t *testing.T) {
	params := []domain.MeridianPlanParameters{meridianTestPlanParams("PPO", 500)}

	engine := NewMeridianEngine(params, nil, month(2025, time.October))
	_, err := engine.Calculate(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPlanDataNotFound)

	var notFoundErr *PlanDataNotFoundError
	require.ErrorAs(t, err, &notFoundErr)
	assert.Equal(t, "PPO", notFoundErr.PlanID)
}

func TestMeridianEnrollmentRequired(t *testing.T) {
	params := []domain.MeridianPlanParameters{meridianTestPlanParams("PPO", 0)}
	data := []domain.MeridianPlanData{meridianTestData("PPO", 600, 400, 100)}

	engine := NewMeridianEngine(params, data, month(2025, time.October))
	_, err := engine.Calculate(context.Background())
	assert.ErrorIs(t, err, ErrMissingParameter)
}

func TestMeridianNoPlans(t *testing.T) {
	engine := NewMeridianEngine(nil, nil, month(2025, time.October))
	_, err := engine.Calculate(context.Background())
	assert.ErrorIs(t, err, ErrMissingParameter)
}

func TestMeridianLargeRateActionWarning(t *testing.T) {
	params := []domain.MeridianPlanParameters{meridianTestPlanParams("PPO", 500)}
	// A current premium far below the required premium forces a large action.
	params[0].CurrentPremiumPMPM = dec(200)
	data := []domain.MeridianPlanData{meridianTestData("PPO", 600, 400, 100)}

	engine := NewMeridianEngine(params, data, month(2025, time.October))
	result, err := engine.Calculate(context.Background())
	require.NoError(t, err)

	assert.Contains(t, warningCodes(result.Warnings), domain.WarnLargeRateAction)
	assert.True(t, result.Plans[0].RateAction.GreaterThan(dec(0.25)))
}

func TestMeridianContextCancellation(t *testing.T) {
	params := []domain.MeridianPlanParameters{meridianTestPlanParams("PPO", 500)}
	data := []domain.MeridianPlanData{meridianTestData("PPO", 600, 400, 100)}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	engine := NewMeridianEngine(params, data, month(2025, time.October))
	_, err := engine.Calculate(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
