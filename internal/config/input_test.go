package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uwbench/renewal/internal/domain"
)

const validYAML = `
group_id: G-100
carrier: northfield
effective_date: 2025-10-01T00:00:00Z
monthly_experience:
  - month: 2025-01-01T00:00:00Z
    medical_member_months: 1000
    rx_member_months: 1000
    total_member_months: 1000
    medical_claims: 400000
    rx_claims: 100000
    total_claims: 500000
  - month: 2025-02-01T00:00:00Z
    medical_member_months: 1010
    rx_member_months: 1010
    total_member_months: 1010
    medical_claims: 410000
    rx_claims: 102000
    total_claims: 512000
large_claimants:
  - claimant_id: LC-1
    incurred_date: 2025-01-15T00:00:00Z
    total_amount: 200000
manual_rates:
  medical_pmpm: 430
  rx_pmpm: 110
northfield:
  pooling_factor: 0.156
  current_premium_pmpm: 600
`

func writeTempYAML(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "input.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadFromFile(t *testing.T) {
	parser := NewInputParser()
	input, err := parser.LoadFromFile(writeTempYAML(t, validYAML))
	require.NoError(t, err)

	assert.Equal(t, "G-100", input.GroupID)
	assert.Equal(t, domain.CarrierNorthfield, input.Carrier)
	require.Len(t, input.Monthly, 2)
	assert.True(t, input.Monthly[0].MedicalClaims.Equal(decimal.NewFromInt(400000)))
	require.Len(t, input.LargeClaimants, 1)
	assert.Equal(t, "LC-1", input.LargeClaimants[0].ClaimantID)
	require.NotNil(t, input.Northfield)
	assert.True(t, input.Northfield.PoolingFactor.Equal(decimal.NewFromFloat(0.156)))
	require.NotNil(t, input.ManualRates)
	assert.True(t, input.ManualRates.TotalPMPM().Equal(decimal.NewFromInt(540)))
}

func TestLoadFromFileMissing(t *testing.T) {
	parser := NewInputParser()
	_, err := parser.LoadFromFile(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read file")
}

func TestLoadFromFileBadYAML(t *testing.T) {
	parser := NewInputParser()
	_, err := parser.LoadFromFile(writeTempYAML(t, "group_id: [unclosed"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}

func baseInput() *domain.RenewalInput {
	mm := decimal.NewFromInt(1000)
	claims := decimal.NewFromInt(500000)
	return &domain.RenewalInput{
		GroupID:       "G-1",
		Carrier:       domain.CarrierNorthfield,
		EffectiveDate: time.Date(2025, 10, 1, 0, 0, 0, 0, time.UTC),
		Monthly: []domain.MonthlyClaimsRecord{{
			Month:               time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
			MedicalMemberMonths: mm, RxMemberMonths: mm, TotalMemberMonths: mm,
			MedicalClaims: claims, RxClaims: claims, TotalClaims: claims,
		}},
	}
}

func TestValidateInputRejectsBadCarrier(t *testing.T) {
	input := baseInput()
	input.Carrier = "acme"

	err := NewInputParser().ValidateInput(input)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "carrier")
}

func TestValidateInputRequiresGroupAndDate(t *testing.T) {
	parser := NewInputParser()

	input := baseInput()
	input.GroupID = ""
	assert.ErrorContains(t, parser.ValidateInput(input), "group_id")

	input = baseInput()
	input.EffectiveDate = time.Time{}
	assert.ErrorContains(t, parser.ValidateInput(input), "effective_date")

	input = baseInput()
	input.Monthly = nil
	assert.ErrorContains(t, parser.ValidateInput(input), "monthly_experience")
}

func TestValidateInputRejectsNegativeClaims(t *testing.T) {
	input := baseInput()
	input.Monthly[0].MedicalClaims = decimal.NewFromInt(-5)

	err := NewInputParser().ValidateInput(input)
	assert.ErrorContains(t, err, "medical claims cannot be negative")
}

func TestValidateInputClaimantSplitMustReconcile(t *testing.T) {
	med := decimal.NewFromInt(120000)
	rx := decimal.NewFromInt(50000)
	input := baseInput()
	input.LargeClaimants = []domain.LargeClaimant{{
		ClaimantID:    "LC-1",
		IncurredDate:  time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC),
		TotalAmount:   decimal.NewFromInt(200000),
		MedicalAmount: &med,
		RxAmount:      &rx,
	}}

	err := NewInputParser().ValidateInput(input)
	assert.ErrorContains(t, err, "must sum to the total amount")
}

func TestValidateInputMeridianRequiresMatchingData(t *testing.T) {
	input := baseInput()
	input.Carrier = domain.CarrierMeridian
	input.Monthly = nil
	input.Meridian = &domain.MeridianInput{
		PlanParameters: []domain.MeridianPlanOverrides{
			{PlanID: "PPO", Enrollment: decimal.NewFromInt(500)},
		},
	}

	err := NewInputParser().ValidateInput(input)
	assert.ErrorContains(t, err, "no matching plan_data entry")
}

func TestValidateInputMeridianEnrollmentPositive(t *testing.T) {
	mm := decimal.NewFromInt(500)
	claims := decimal.NewFromInt(200000)
	input := baseInput()
	input.Carrier = domain.CarrierMeridian
	input.Monthly = nil
	input.Meridian = &domain.MeridianInput{
		PlanParameters: []domain.MeridianPlanOverrides{{PlanID: "PPO"}},
		PlanData: []domain.MeridianPlanData{{
			PlanID: "PPO",
			Monthly: []domain.MonthlyClaimsRecord{{
				Month:               time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
				MedicalMemberMonths: mm, RxMemberMonths: mm, TotalMemberMonths: mm,
				MedicalClaims: claims, RxClaims: claims, TotalClaims: claims,
			}},
		}},
	}

	err := NewInputParser().ValidateInput(input)
	assert.ErrorContains(t, err, "enrollment must be positive")
}

func TestValidateInputWeightSums(t *testing.T) {
	w1 := decimal.NewFromFloat(0.7)
	w2 := decimal.NewFromFloat(0.4)
	input := baseInput()
	input.Northfield = &domain.NorthfieldOverrides{
		ExperienceWeights: []decimal.Decimal{w1, w2},
	}

	err := NewInputParser().ValidateInput(input)
	assert.ErrorContains(t, err, "must sum to 1")

	input = baseInput()
	input.Carrier = domain.CarrierCascade
	input.Cascade = &domain.CascadeOverrides{ExperienceWeight: &w1}
	err = NewInputParser().ValidateInput(input)
	assert.ErrorContains(t, err, "supplied together")
}

func TestValidateInputSuggestedActionFloor(t *testing.T) {
	parser := NewInputParser()

	floor := decimal.NewFromInt(-1)
	input := baseInput()
	input.Northfield = &domain.NorthfieldOverrides{SuggestedRateAction: &floor}
	assert.ErrorContains(t, parser.ValidateInput(input), "suggested rate action must be greater than -1")

	below := decimal.NewFromFloat(-1.2)
	input = baseInput()
	input.Northfield = &domain.NorthfieldOverrides{SuggestedRateAction: &below}
	assert.ErrorContains(t, parser.ValidateInput(input), "suggested rate action must be greater than -1")

	decrease := decimal.NewFromFloat(-0.3)
	input = baseInput()
	input.Northfield = &domain.NorthfieldOverrides{SuggestedRateAction: &decrease}
	assert.NoError(t, parser.ValidateInput(input))
}
