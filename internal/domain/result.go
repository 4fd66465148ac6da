package domain

import "github.com/shopspring/decimal"

// WarningCode classifies a non-fatal data-quality finding.
type WarningCode string

const (
	WarnLimitedPeriod            WarningCode = "limited_period"
	WarnVeryLimitedPeriod        WarningCode = "very_limited_period"
	WarnNoPriorPeriod            WarningCode = "no_prior_period"
	WarnMonthMissingClaims       WarningCode = "month_missing_claims"
	WarnClaimantOutsidePeriods   WarningCode = "claimant_outside_periods"
	WarnPoolingThresholdMismatch WarningCode = "pooling_threshold_mismatch"
	WarnLargeRateAction          WarningCode = "large_rate_action"
	WarnCorridorExceeded         WarningCode = "corridor_exceeded"
)

// Warning is a non-fatal finding accumulated alongside a successful result.
type Warning struct {
	Code    WarningCode `json:"code"`
	Message string      `json:"message"`
}

// DataQuality summarizes how complete and credible the input data was.
type DataQuality struct {
	Completeness         decimal.Decimal `json:"completeness"` // fraction of months with claims and member-months
	AnnualizationApplied bool            `json:"annualizationApplied"`
	CredibilityScore     decimal.Decimal `json:"credibilityScore"`
}

// CalculationStep is one headline step in the flattened generic view.
type CalculationStep struct {
	Label string          `json:"label"`
	Value decimal.Decimal `json:"value"`
}

// NorthfieldResult is the native output of the Northfield engine: the full
// 39-line ledger plus the renewal-action summary.
type NorthfieldResult struct {
	Lines                []CalculationLine `json:"lines"`
	Periods              ExperiencePeriods `json:"periods"`
	FinalPremiumPMPM     CoverageAmounts   `json:"finalPremiumPmpm"`
	CurrentPremiumPMPM   decimal.Decimal   `json:"currentPremiumPmpm"`
	CalculatedRateAction decimal.Decimal   `json:"calculatedRateAction"`
	SuggestedRateAction  decimal.Decimal   `json:"suggestedRateAction"`
	ProjectedRevenuePMPM decimal.Decimal   `json:"projectedRevenuePmpm"`
	LossRatio            decimal.Decimal   `json:"lossRatio"`
	Warnings             []Warning         `json:"warnings"`
	DataQuality          DataQuality       `json:"dataQuality"`
}

// Line returns the ledger line with the given identifier, or nil if the
// ledger does not carry it.
func (r *NorthfieldResult) Line(id LineID) *CalculationLine {
	for i := range r.Lines {
		if r.Lines[i].ID == id {
			return &r.Lines[i]
		}
	}
	return nil
}

// MeridianPlanResult is the outcome for a single Meridian plan.
type MeridianPlanResult struct {
	PlanID       string            `json:"planId"`
	Enrollment   decimal.Decimal   `json:"enrollment"`
	MedicalLines []MeridianLine    `json:"medicalLines"`
	RxLines      []MeridianLine    `json:"rxLines"`
	TotalLines   []MeridianLine    `json:"totalLines"`
	Periods      ExperiencePeriods `json:"periods"`
	CurrentPMPM  decimal.Decimal   `json:"currentPmpm"`
	RequiredPMPM decimal.Decimal   `json:"requiredPmpm"`
	RateAction   decimal.Decimal   `json:"rateAction"`
}

// MeridianPlanShare is one plan's slice of the group enrollment.
type MeridianPlanShare struct {
	PlanID         string          `json:"planId"`
	Enrollment     decimal.Decimal `json:"enrollment"`
	Share          decimal.Decimal `json:"share"` // fraction of total enrollment
	MonthlyPremium decimal.Decimal `json:"monthlyPremium"`
}

// MeridianEnrollmentSummary aggregates enrollment and premium across plans.
type MeridianEnrollmentSummary struct {
	TotalEnrollment     decimal.Decimal     `json:"totalEnrollment"`
	TotalMonthlyPremium decimal.Decimal     `json:"totalMonthlyPremium"`
	TotalAnnualPremium  decimal.Decimal     `json:"totalAnnualPremium"`
	PlanShares          []MeridianPlanShare `json:"planShares"`
}

// MeridianResult is the native output of the Meridian engine.
type MeridianResult struct {
	Plans                  []MeridianPlanResult      `json:"plans"`
	CompositeCurrentPMPM   decimal.Decimal           `json:"compositeCurrentPmpm"`
	CompositeProjectedPMPM decimal.Decimal           `json:"compositeProjectedPmpm"`
	CompositeRateAction    decimal.Decimal           `json:"compositeRateAction"`
	Enrollment             MeridianEnrollmentSummary `json:"enrollment"`
	Warnings               []Warning                 `json:"warnings"`
	DataQuality            DataQuality               `json:"dataQuality"`
}

// CascadeResult is the native output of the Cascade engine: a dual
// PMPM/annual ledger over the single current period.
type CascadeResult struct {
	Lines                 []DualLine      `json:"lines"`
	Period                Period          `json:"period"`
	ProjectedMemberMonths decimal.Decimal `json:"projectedMemberMonths"`
	RequiredPremiumPMPM   decimal.Decimal `json:"requiredPremiumPmpm"`
	RequiredPremiumAnnual decimal.Decimal `json:"requiredPremiumAnnual"`
	CurrentPremiumPMPM    decimal.Decimal `json:"currentPremiumPmpm"`
	RequiredRateChange    decimal.Decimal `json:"requiredRateChange"`
	Warnings              []Warning       `json:"warnings"`
	DataQuality           DataQuality     `json:"dataQuality"`
}

// LineByNumber returns the Cascade ledger line with the given number.
func (r *CascadeResult) LineByNumber(n int) *DualLine {
	for i := range r.Lines {
		if r.Lines[i].Number == n {
			return &r.Lines[i]
		}
	}
	return nil
}

// AtlasResult is the native output of the Atlas engine.
type AtlasResult struct {
	Lines               []CalculationLine `json:"lines"`
	Periods             ExperiencePeriods `json:"periods"`
	Credibility         decimal.Decimal   `json:"credibility"`
	RequiredPremiumPMPM decimal.Decimal   `json:"requiredPremiumPmpm"`
	CurrentPremiumPMPM  decimal.Decimal   `json:"currentPremiumPmpm"`
	RateAction          decimal.Decimal   `json:"rateAction"`
	Warnings            []Warning         `json:"warnings"`
	DataQuality         DataQuality       `json:"dataQuality"`
}

// Line returns the ledger line with the given identifier.
func (r *AtlasResult) Line(id LineID) *CalculationLine {
	for i := range r.Lines {
		if r.Lines[i].ID == id {
			return &r.Lines[i]
		}
	}
	return nil
}

// DetailedResults holds the complete native ledger under a carrier-keyed
// slot so consumers get lossless access to the audit trail.
type DetailedResults struct {
	Northfield *NorthfieldResult `json:"northfield,omitempty"`
	Meridian   *MeridianResult   `json:"meridian,omitempty"`
	Cascade    *CascadeResult    `json:"cascade,omitempty"`
	Atlas      *AtlasResult      `json:"atlas,omitempty"`
}

// RenewalResult is the carrier-agnostic envelope handed to external
// consumers. All currency values are in the group's base currency;
// rate-change values are fractions (0.05 = 5%), never pre-multiplied.
// Immutable after construction.
type RenewalResult struct {
	RunID              string            `json:"runId"`
	GroupID            string            `json:"groupId"`
	Carrier            Carrier           `json:"carrier"`
	CurrentPMPM        decimal.Decimal   `json:"currentPmpm"`
	ProjectedPMPM      decimal.Decimal   `json:"projectedPmpm"`
	RequiredRateChange decimal.Decimal   `json:"requiredRateChange"`
	ProposedRateChange decimal.Decimal   `json:"proposedRateChange"`
	Steps              []CalculationStep `json:"steps"`
	Warnings           []Warning         `json:"warnings"`
	Periods            ExperiencePeriods `json:"periods"`
	DataQuality        DataQuality       `json:"dataQuality"`
	Detailed           DetailedResults   `json:"detailed"`
}
