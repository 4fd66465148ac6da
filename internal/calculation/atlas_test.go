package calculation

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uwbench/renewal/internal/domain"
)

func TestAtlasCalculateFullLedger(t *testing.T) {
	records := monthlySeries(24, month(2025, time.June), 1000, 400, 100)
	claimants := []domain.LargeClaimant{
		{ClaimantID: "LC-1", IncurredDate: month(2025, time.February), TotalAmount: dec(250000)},
	}

	engine := NewAtlasEngine(records, claimants, month(2025, time.October), atlasTestParams())
	result, err := engine.Calculate()
	require.NoError(t, err)

	require.Len(t, result.Lines, 28)

	line1 := result.Line("1")
	require.NotNil(t, line1)
	assert.True(t, line1.Current.Medical.Equal(dec(400)))
	require.NotNil(t, line1.Prior, "line 1 carries a prior column with 24 months of data")
	assert.True(t, line1.Prior.Medical.Equal(dec(400)))

	line2 := result.Line("2")
	line3 := result.Line("3")
	assert.True(t, line3.Current.Total.Equal(line1.Current.Total.Add(line2.Current.Total)), "3 = 1 + 2")

	// $250K claimant against the $175K threshold over 12,000 member months.
	line4 := result.Line("4")
	assert.True(t, line4.Current.Total.Equal(dec(6.25)), "got %s", line4.Current.Total)

	line5 := result.Line("5")
	assert.True(t, line5.Current.Total.Equal(line3.Current.Total.Sub(line4.Current.Total)), "5 = 3 - 4")

	// Prior columns end at the period blend.
	for _, id := range []domain.LineID{"11", "12", "13", "18", "24"} {
		assert.Nil(t, result.Line(id).Prior, "line %s must not carry a prior column", id)
	}

	line11 := result.Line("11")
	line12 := result.Line("12")
	line13 := result.Line("13")
	assert.True(t, line13.Current.Total.Equal(line11.Current.Total.Add(line12.Current.Total)), "13 = 11 + 12")

	// Credibility: sqrt(12000 / 48000) = 0.5.
	assert.InDelta(t, 0.5, result.Credibility.InexactFloat64(), 1e-9)

	line18 := result.Line("18")
	line24 := result.Line("24")
	totalRetention := dec(0.08).Add(dec(0.03)).Add(dec(0.02)).Add(dec(0.015))
	grossed := line18.Current.Total.Div(decimal.NewFromInt(1).Sub(totalRetention))
	assert.InDelta(t, grossed.InexactFloat64(), line24.Current.Total.InexactFloat64(), 1e-6)

	line25 := result.Line("25")
	assert.True(t, line25.Current.Total.Equal(dec(580)))
	expectedAction := line24.Current.Total.Div(line25.Current.Total).Sub(decimal.NewFromInt(1))
	assert.True(t, result.RateAction.Equal(expectedAction))

	line28 := result.Line("28")
	assert.True(t, line28.Current.Total.Equal(line24.Current.Total))
	assert.True(t, result.RequiredPremiumPMPM.Equal(line24.Current.Total))
}

func TestAtlasTrendFactorLinePerCoverage(t *testing.T) {
	records := monthlySeries(24, month(2025, time.June), 1000, 400, 100)

	engine := NewAtlasEngine(records, nil, month(2025, time.October), atlasTestParams())
	result, err := engine.Calculate()
	require.NoError(t, err)

	// Line 8 reports the factor each coverage is actually trended by.
	line8 := result.Line("8")
	require.NotNil(t, line8)
	assert.True(t, line8.Current.Medical.Equal(compoundTrendFactor(dec(0.09), 18)))
	assert.True(t, line8.Current.Rx.Equal(compoundTrendFactor(dec(0.11), 18)))
	assert.False(t, line8.Current.Medical.Equal(line8.Current.Rx))

	require.NotNil(t, line8.Prior)
	assert.True(t, line8.Prior.Medical.Equal(compoundTrendFactor(dec(0.09), 30)))
	assert.True(t, line8.Prior.Rx.Equal(compoundTrendFactor(dec(0.11), 30)))

	// The reported factors reconcile with the trended amounts on line 9.
	line7 := result.Line("7")
	line9 := result.Line("9")
	assert.True(t, line9.Current.Medical.Equal(line7.Current.Medical.Mul(line8.Current.Medical)))
	assert.True(t, line9.Current.Rx.Equal(line7.Current.Rx.Mul(line8.Current.Rx)))
}

func TestAtlasCalculateShortPeriod(t *testing.T) {
	records := monthlySeries(8, month(2025, time.June), 1000, 400, 100)

	engine := NewAtlasEngine(records, nil, month(2025, time.October), atlasTestParams())
	result, err := engine.Calculate()
	require.NoError(t, err)

	assert.Equal(t, 8, result.Periods.Current.Months)
	assert.False(t, result.Periods.HasPrior())
	assert.Nil(t, result.Line("1").Prior)
	assert.True(t, result.DataQuality.AnnualizationApplied)

	// Credibility reflects the smaller member-month base: sqrt(8000/48000).
	assert.InDelta(t, 0.4082, result.Credibility.InexactFloat64(), 1e-3)
}

func TestAtlasCredibilityCap(t *testing.T) {
	records := monthlySeries(24, month(2025, time.June), 10000, 400, 100)

	engine := NewAtlasEngine(records, nil, month(2025, time.October), atlasTestParams())
	result, err := engine.Calculate()
	require.NoError(t, err)

	// 120,000 current-period member months against 48,000 full credibility caps at 1.
	assert.True(t, result.Credibility.Equal(decimal.NewFromInt(1)))

	// At full credibility, the blend reduces to the experience claims.
	line13 := result.Line("13")
	line18 := result.Line("18")
	assert.InDelta(t, line13.Current.Total.InexactFloat64(), line18.Current.Total.InexactFloat64(), 1e-9)
}

func TestAtlasValidateCurrentPremiumRequired(t *testing.T) {
	params := atlasTestParams()
	params.CurrentPremiumPMPM = dec(0)

	engine := NewAtlasEngine(monthlySeries(24, month(2025, time.June), 1000, 400, 100), nil, month(2025, time.October), params)
	_, err := engine.Calculate()
	require.Error(t, err)

	var missingErr *MissingParameterError
	require.ErrorAs(t, err, &missingErr)
	assert.Equal(t, "current_premium_pmpm", missingErr.Name)
}

func TestAtlasValidateRetentionGrossUp(t *testing.T) {
	params := atlasTestParams()
	params.AdminPct = dec(0.50)
	params.CommissionPct = dec(0.30)
	params.PremiumTaxPct = dec(0.15)
	params.ProfitPct = dec(0.10)

	engine := NewAtlasEngine(monthlySeries(24, month(2025, time.June), 1000, 400, 100), nil, month(2025, time.October), params)
	_, err := engine.Calculate()
	assert.ErrorIs(t, err, ErrMissingParameter)
}
