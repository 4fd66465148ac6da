package domain

import "time"

// MeridianInput carries the per-plan parameter entries and the per-plan
// raw data. Every parameter entry must have a matching data record.
type MeridianInput struct {
	PlanParameters []MeridianPlanOverrides `yaml:"plan_parameters" json:"plan_parameters"`
	PlanData       []MeridianPlanData      `yaml:"plan_data" json:"plan_data"`
}

// RenewalInput is the carrier-agnostic record the dispatcher consumes: raw
// monthly experience, large claimants, manual-rate basis and a (possibly
// partially populated) carrier-specific override block. Missing override
// fields are derived from experience data by the resolve rules.
type RenewalInput struct {
	GroupID        string                `yaml:"group_id" json:"group_id"`
	Carrier        Carrier               `yaml:"carrier" json:"carrier"`
	EffectiveDate  time.Time             `yaml:"effective_date" json:"effective_date"`
	Monthly        []MonthlyClaimsRecord `yaml:"monthly_experience" json:"monthly_experience"`
	LargeClaimants []LargeClaimant       `yaml:"large_claimants,omitempty" json:"large_claimants,omitempty"`
	ManualRates    *ManualRates          `yaml:"manual_rates,omitempty" json:"manual_rates,omitempty"`

	Northfield *NorthfieldOverrides `yaml:"northfield,omitempty" json:"northfield,omitempty"`
	Meridian   *MeridianInput       `yaml:"meridian,omitempty" json:"meridian,omitempty"`
	Cascade    *CascadeOverrides    `yaml:"cascade,omitempty" json:"cascade,omitempty"`
	Atlas      *AtlasOverrides      `yaml:"atlas,omitempty" json:"atlas,omitempty"`
}
