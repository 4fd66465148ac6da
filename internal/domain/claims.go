package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// MonthlyClaimsRecord holds one calendar month of experience for a group.
// Month is normalized to the first day of the month. Records are immutable
// once ingested; the ordered series is the primary input to period
// resolution.
type MonthlyClaimsRecord struct {
	Month               time.Time       `yaml:"month" json:"month"`
	MedicalMemberMonths decimal.Decimal `yaml:"medical_member_months" json:"medical_member_months"`
	RxMemberMonths      decimal.Decimal `yaml:"rx_member_months" json:"rx_member_months"`
	TotalMemberMonths   decimal.Decimal `yaml:"total_member_months" json:"total_member_months"`
	MedicalClaims       decimal.Decimal `yaml:"medical_claims" json:"medical_claims"`
	RxClaims            decimal.Decimal `yaml:"rx_claims" json:"rx_claims"`
	TotalClaims         decimal.Decimal `yaml:"total_claims" json:"total_claims"`
}

// LargeClaimant is a single high-cost claimant episode. The medical/rx
// split is optional; pooling attributes unsplit excess entirely to medical.
// Claimants are only ever used in aggregate.
type LargeClaimant struct {
	ClaimantID    string           `yaml:"claimant_id" json:"claimant_id"`
	IncurredDate  time.Time        `yaml:"incurred_date" json:"incurred_date"`
	TotalAmount   decimal.Decimal  `yaml:"total_amount" json:"total_amount"`
	MedicalAmount *decimal.Decimal `yaml:"medical_amount,omitempty" json:"medical_amount,omitempty"`
	RxAmount      *decimal.Decimal `yaml:"rx_amount,omitempty" json:"rx_amount,omitempty"`
}

// HasSplit reports whether the claimant carries its own medical/rx split.
func (lc *LargeClaimant) HasSplit() bool {
	return lc.MedicalAmount != nil && lc.RxAmount != nil
}

// ManualRates is the manual (community) rate basis supplied with an input.
type ManualRates struct {
	MedicalPMPM decimal.Decimal `yaml:"medical_pmpm" json:"medical_pmpm"`
	RxPMPM      decimal.Decimal `yaml:"rx_pmpm" json:"rx_pmpm"`
}

// TotalPMPM returns the combined manual rate.
func (m ManualRates) TotalPMPM() decimal.Decimal {
	return m.MedicalPMPM.Add(m.RxPMPM)
}
