package config

import (
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"github.com/uwbench/renewal/internal/domain"
	"gopkg.in/yaml.v3"
)

// InputParser handles parsing of renewal input files
type InputParser struct{}

// NewInputParser creates a new input parser
func NewInputParser() *InputParser {
	return &InputParser{}
}

// LoadFromFile loads a renewal input from a YAML file
func (ip *InputParser) LoadFromFile(filename string) (*domain.RenewalInput, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filename, err)
	}

	var input domain.RenewalInput
	if err := yaml.Unmarshal(data, &input); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := ip.ValidateInput(&input); err != nil {
		return nil, fmt.Errorf("input validation failed: %w", err)
	}

	return &input, nil
}

// ValidateInput validates the loaded renewal input
func (ip *InputParser) ValidateInput(input *domain.RenewalInput) error {
	if input.GroupID == "" {
		return fmt.Errorf("group_id is required")
	}
	if !input.Carrier.Valid() {
		return fmt.Errorf("carrier must be one of %v, got %q", domain.Carriers, input.Carrier)
	}
	if input.EffectiveDate.IsZero() {
		return fmt.Errorf("effective_date is required")
	}

	// Meridian carries its experience per plan; every other carrier needs
	// the group-level series.
	if input.Carrier != domain.CarrierMeridian && len(input.Monthly) == 0 {
		return fmt.Errorf("monthly_experience is required")
	}

	for i, record := range input.Monthly {
		if err := ip.validateMonthlyRecord(&record); err != nil {
			return fmt.Errorf("monthly_experience[%d] validation failed: %w", i, err)
		}
	}
	for i, claimant := range input.LargeClaimants {
		if err := ip.validateLargeClaimant(&claimant); err != nil {
			return fmt.Errorf("large_claimants[%d] validation failed: %w", i, err)
		}
	}

	if input.ManualRates != nil {
		if input.ManualRates.MedicalPMPM.LessThan(decimal.Zero) {
			return fmt.Errorf("manual medical PMPM cannot be negative")
		}
		if input.ManualRates.RxPMPM.LessThan(decimal.Zero) {
			return fmt.Errorf("manual rx PMPM cannot be negative")
		}
	}

	if input.Carrier == domain.CarrierMeridian {
		if err := ip.validateMeridianInput(input.Meridian); err != nil {
			return fmt.Errorf("meridian validation failed: %w", err)
		}
	}
	if input.Northfield != nil {
		if err := ip.validateNorthfieldOverrides(input.Northfield); err != nil {
			return fmt.Errorf("northfield validation failed: %w", err)
		}
	}
	if input.Cascade != nil {
		if err := ip.validateCascadeOverrides(input.Cascade); err != nil {
			return fmt.Errorf("cascade validation failed: %w", err)
		}
	}

	return nil
}

// validateMonthlyRecord validates one month of experience data
func (ip *InputParser) validateMonthlyRecord(record *domain.MonthlyClaimsRecord) error {
	if record.Month.IsZero() {
		return fmt.Errorf("month is required")
	}
	if record.MedicalMemberMonths.LessThan(decimal.Zero) {
		return fmt.Errorf("medical member months cannot be negative")
	}
	if record.RxMemberMonths.LessThan(decimal.Zero) {
		return fmt.Errorf("rx member months cannot be negative")
	}
	if record.TotalMemberMonths.LessThan(decimal.Zero) {
		return fmt.Errorf("total member months cannot be negative")
	}
	if record.MedicalClaims.LessThan(decimal.Zero) {
		return fmt.Errorf("medical claims cannot be negative")
	}
	if record.RxClaims.LessThan(decimal.Zero) {
		return fmt.Errorf("rx claims cannot be negative")
	}
	if record.TotalClaims.LessThan(decimal.Zero) {
		return fmt.Errorf("total claims cannot be negative")
	}
	return nil
}

// validateLargeClaimant validates one large-claimant record
func (ip *InputParser) validateLargeClaimant(claimant *domain.LargeClaimant) error {
	if claimant.ClaimantID == "" {
		return fmt.Errorf("claimant_id is required")
	}
	if claimant.IncurredDate.IsZero() {
		return fmt.Errorf("incurred_date is required")
	}
	if claimant.TotalAmount.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("total amount must be positive")
	}
	if claimant.MedicalAmount != nil && claimant.MedicalAmount.LessThan(decimal.Zero) {
		return fmt.Errorf("medical amount cannot be negative")
	}
	if claimant.RxAmount != nil && claimant.RxAmount.LessThan(decimal.Zero) {
		return fmt.Errorf("rx amount cannot be negative")
	}
	if claimant.HasSplit() {
		split := claimant.MedicalAmount.Add(*claimant.RxAmount)
		if !split.Equal(claimant.TotalAmount) {
			return fmt.Errorf("medical and rx amounts must sum to the total amount")
		}
	}
	return nil
}

// validateMeridianInput validates the per-plan parameter and data blocks
func (ip *InputParser) validateMeridianInput(m *domain.MeridianInput) error {
	if m == nil || len(m.PlanParameters) == 0 {
		return fmt.Errorf("at least one plan parameter entry is required")
	}

	dataByPlan := make(map[string]bool, len(m.PlanData))
	for i, pd := range m.PlanData {
		if pd.PlanID == "" {
			return fmt.Errorf("plan_data[%d]: plan_id is required", i)
		}
		if dataByPlan[pd.PlanID] {
			return fmt.Errorf("plan_data: duplicate plan %s", pd.PlanID)
		}
		dataByPlan[pd.PlanID] = true
		if len(pd.Monthly) == 0 {
			return fmt.Errorf("plan_data[%d] (%s): monthly experience is required", i, pd.PlanID)
		}
		for j, record := range pd.Monthly {
			if err := ip.validateMonthlyRecord(&record); err != nil {
				return fmt.Errorf("plan %s monthly[%d] validation failed: %w", pd.PlanID, j, err)
			}
		}
		for j, claimant := range pd.LargeClaimants {
			if err := ip.validateLargeClaimant(&claimant); err != nil {
				return fmt.Errorf("plan %s large_claimants[%d] validation failed: %w", pd.PlanID, j, err)
			}
		}
	}

	seen := make(map[string]bool, len(m.PlanParameters))
	for i, pp := range m.PlanParameters {
		if pp.PlanID == "" {
			return fmt.Errorf("plan_parameters[%d]: plan_id is required", i)
		}
		if seen[pp.PlanID] {
			return fmt.Errorf("plan_parameters: duplicate plan %s", pp.PlanID)
		}
		seen[pp.PlanID] = true
		if pp.Enrollment.LessThanOrEqual(decimal.Zero) {
			return fmt.Errorf("plan %s: enrollment must be positive", pp.PlanID)
		}
		if !dataByPlan[pp.PlanID] {
			return fmt.Errorf("plan %s: no matching plan_data entry", pp.PlanID)
		}
	}

	return nil
}

// validateNorthfieldOverrides validates the caller-supplied Northfield block
func (ip *InputParser) validateNorthfieldOverrides(o *domain.NorthfieldOverrides) error {
	if len(o.ExperienceWeights) != 0 && len(o.ExperienceWeights) != 2 {
		return fmt.Errorf("experience_weights must have exactly two entries (current, prior)")
	}
	if len(o.ExperienceWeights) == 2 {
		sum := o.ExperienceWeights[0].Add(o.ExperienceWeights[1])
		if !sum.Equal(decimal.NewFromInt(1)) {
			return fmt.Errorf("experience_weights must sum to 1, got %s", sum)
		}
	}
	if o.Credibility != nil {
		sum := o.Credibility.Experience.Add(o.Credibility.Manual)
		if !sum.Equal(decimal.NewFromInt(1)) {
			return fmt.Errorf("credibility weights must sum to 1, got %s", sum)
		}
	}
	if o.CurrentPremiumPMPM != nil && o.CurrentPremiumPMPM.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("current premium PMPM must be positive")
	}
	if o.SuggestedRateAction != nil && o.SuggestedRateAction.LessThanOrEqual(decimal.NewFromInt(-1)) {
		return fmt.Errorf("suggested rate action must be greater than -1, got %s", o.SuggestedRateAction)
	}
	return nil
}

// validateCascadeOverrides validates the caller-supplied Cascade block
func (ip *InputParser) validateCascadeOverrides(o *domain.CascadeOverrides) error {
	if (o.ExperienceWeight == nil) != (o.ManualWeight == nil) {
		return fmt.Errorf("experience_weight and manual_weight must be supplied together")
	}
	if o.ExperienceWeight != nil {
		sum := o.ExperienceWeight.Add(*o.ManualWeight)
		if !sum.Equal(decimal.NewFromInt(1)) {
			return fmt.Errorf("experience and manual weights must sum to 1, got %s", sum)
		}
	}
	if o.ProjectedMemberMonths != nil && o.ProjectedMemberMonths.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("projected member months must be positive")
	}
	return nil
}
