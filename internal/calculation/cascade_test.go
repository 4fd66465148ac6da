package calculation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uwbench/renewal/internal/domain"
)

func TestCascadeCalculateFourMonths(t *testing.T) {
	records := monthlySeries(4, month(2025, time.June), 500, 350, 90)

	engine := NewCascadeEngine(records, nil, month(2025, time.October), cascadeTestParams())
	result, err := engine.Calculate()
	require.NoError(t, err)

	require.Len(t, result.Lines, 20)
	assert.Equal(t, 4, result.Period.Months)
	assert.True(t, result.DataQuality.AnnualizationApplied)

	// 2000 member months over 4 months annualizes to 6000.
	assert.True(t, result.ProjectedMemberMonths.Equal(dec(6000)), "got %s", result.ProjectedMemberMonths)

	line1 := result.LineByNumber(1)
	require.NotNil(t, line1)
	assert.True(t, line1.PMPM.Equal(dec(440)), "got %s", line1.PMPM)
	assert.True(t, line1.Annual.Equal(line1.PMPM.Mul(result.ProjectedMemberMonths)))

	line3 := result.LineByNumber(3)
	line2 := result.LineByNumber(2)
	assert.True(t, line3.PMPM.Equal(line1.PMPM.Sub(line2.PMPM)), "3 = 1 - 2")

	line9 := result.LineByNumber(9)
	line7 := result.LineByNumber(7)
	line8 := result.LineByNumber(8)
	assert.True(t, line9.PMPM.Equal(line7.PMPM.Add(line8.PMPM)), "9 = 7 + 8")

	line11 := result.LineByNumber(11)
	line10 := result.LineByNumber(10)
	expectedBlend := line9.PMPM.Mul(dec(0.60)).Add(line10.PMPM.Mul(dec(0.40)))
	assert.True(t, line11.PMPM.Equal(expectedBlend), "11 = 9 x expW + 10 x manW")

	line18 := result.LineByNumber(18)
	loadings := line11.PMPM.Mul(dec(0.10).Add(dec(0.04)).Add(dec(0.025)).Add(dec(0.05)).Add(dec(0.02)))
	assert.InDelta(t, line11.PMPM.Add(loadings).InexactFloat64(), line18.PMPM.InexactFloat64(), 1e-9)

	// Default current premium is 122% of the experience claim cost.
	line19 := result.LineByNumber(19)
	assert.True(t, line19.PMPM.Equal(line3.PMPM.Mul(dec(1.22))))

	line20 := result.LineByNumber(20)
	expectedChange := line18.PMPM.Sub(line19.PMPM).Div(line19.PMPM)
	assert.True(t, line20.PMPM.Equal(expectedChange))
	assert.True(t, result.RequiredRateChange.Equal(expectedChange))
	assert.True(t, result.RequiredPremiumAnnual.Equal(line18.PMPM.Mul(result.ProjectedMemberMonths)))
}

func TestCascadePooledAddBackDefault(t *testing.T) {
	records := monthlySeries(12, month(2025, time.June), 500, 350, 90)
	claimants := []domain.LargeClaimant{
		{ClaimantID: "LC-1", IncurredDate: month(2025, time.January), TotalAmount: dec(110000)},
	}

	engine := NewCascadeEngine(records, claimants, month(2025, time.October), cascadeTestParams())
	result, err := engine.Calculate()
	require.NoError(t, err)

	// Excess is 60000 over 6000 member months; add-back defaults to 30%
	// of the pooled PMPM.
	line2 := result.LineByNumber(2)
	assert.True(t, line2.PMPM.Equal(dec(10)), "got %s", line2.PMPM)
	line8 := result.LineByNumber(8)
	assert.True(t, line8.PMPM.Equal(dec(3)), "got %s", line8.PMPM)
	assert.False(t, result.DataQuality.AnnualizationApplied)
}

func TestCascadeSuppliedOverridesWin(t *testing.T) {
	records := monthlySeries(12, month(2025, time.June), 500, 350, 90)
	params := cascadeTestParams()
	params.LargeClaimAddBackPMPM = decPtr(7.5)
	params.CurrentPremiumPMPM = decPtr(525)
	params.ProjectedMemberMonths = decPtr(7200)

	engine := NewCascadeEngine(records, nil, month(2025, time.October), params)
	result, err := engine.Calculate()
	require.NoError(t, err)

	assert.True(t, result.LineByNumber(8).PMPM.Equal(dec(7.5)))
	assert.True(t, result.LineByNumber(19).PMPM.Equal(dec(525)))
	assert.True(t, result.ProjectedMemberMonths.Equal(dec(7200)))
}

func TestCascadeCorridorWarning(t *testing.T) {
	records := monthlySeries(12, month(2025, time.June), 500, 350, 90)
	params := cascadeTestParams()
	// A manual basis far above experience pushes the blend outside the band.
	params.ManualClaimCostPMPM = dec(1200)
	params.ExperienceWeight = dec(0.50)
	params.ManualWeight = dec(0.50)
	params.CorridorPct = dec(0.05)

	engine := NewCascadeEngine(records, nil, month(2025, time.October), params)
	result, err := engine.Calculate()
	require.NoError(t, err)

	assert.Contains(t, warningCodes(result.Warnings), domain.WarnCorridorExceeded)

	// Informational only: the blend still prices through unchanged.
	line11 := result.LineByNumber(11)
	line9 := result.LineByNumber(9)
	expectedBlend := line9.PMPM.Mul(dec(0.50)).Add(dec(1200).Mul(dec(0.50)))
	assert.True(t, line11.PMPM.Equal(expectedBlend))
}

func TestCascadeInsufficientData(t *testing.T) {
	records := monthlySeries(3, month(2025, time.June), 500, 350, 90)

	engine := NewCascadeEngine(records, nil, month(2025, time.October), cascadeTestParams())
	_, err := engine.Calculate()
	assert.ErrorIs(t, err, ErrInsufficientData)
}

func TestCascadeUsesCurrentPeriodOnly(t *testing.T) {
	records := monthlySeries(24, month(2025, time.June), 500, 350, 90)

	engine := NewCascadeEngine(records, nil, month(2025, time.October), cascadeTestParams())
	result, err := engine.Calculate()
	require.NoError(t, err)

	assert.Equal(t, 12, result.Period.Months)
	// 12 months x 500 member months, already a full year.
	assert.True(t, result.ProjectedMemberMonths.Equal(dec(6000)))
}
