package domain

import "github.com/shopspring/decimal"

// CredibilityWeights is the experience/manual blend applied at a carrier's
// credibility step. The pair is expected to sum to 1.
type CredibilityWeights struct {
	Experience decimal.Decimal `yaml:"experience" json:"experience"`
	Manual     decimal.Decimal `yaml:"manual" json:"manual"`
}

// NorthfieldParameters is the fully resolved configuration for the
// Northfield engine. Construction happens once per calculation via the
// dispatcher's resolve step; the engine never mutates it.
type NorthfieldParameters struct {
	PoolingThreshold        decimal.Decimal
	PoolingFactor           decimal.Decimal
	MedicalTrend            decimal.Decimal // annual fraction, e.g. 0.09
	RxTrend                 decimal.Decimal
	ProjectionMonthsCurrent int // midpoint-to-renewal months for the current period
	ProjectionMonthsPrior   int // longer, reflecting the older midpoint
	UnderwritingAdjustment  decimal.Decimal
	PlanChangeAdjustment    decimal.Decimal
	MemberChangeAdjustment  decimal.Decimal
	ExperienceWeights       []decimal.Decimal // exactly two: current, prior
	Credibility             *CredibilityWeights
	ManualBasePMPM          decimal.Decimal
	AgeSexFactor            decimal.Decimal
	ManualAdjustment        decimal.Decimal
	OtherAdjustment         decimal.Decimal
	ReformItemsPMPM         decimal.Decimal
	CommissionPMPM          decimal.Decimal
	FeesPMPM                decimal.Decimal
	AdminRetentionPct       decimal.Decimal
	TaxRetentionPct         decimal.Decimal
	OtherRetentionPct       decimal.Decimal
	CurrentPremiumPMPM      decimal.Decimal
	SuggestedRateAction     *decimal.Decimal // nil: use the calculated action
}

// NorthfieldOverrides is the all-optional caller-supplied counterpart of
// NorthfieldParameters. Nil fields are filled from experience data by the
// dispatcher's resolve rules.
type NorthfieldOverrides struct {
	PoolingThreshold        *decimal.Decimal    `yaml:"pooling_threshold,omitempty" json:"pooling_threshold,omitempty"`
	PoolingFactor           *decimal.Decimal    `yaml:"pooling_factor,omitempty" json:"pooling_factor,omitempty"`
	MedicalTrend            *decimal.Decimal    `yaml:"medical_trend,omitempty" json:"medical_trend,omitempty"`
	RxTrend                 *decimal.Decimal    `yaml:"rx_trend,omitempty" json:"rx_trend,omitempty"`
	ProjectionMonthsCurrent *int                `yaml:"projection_months_current,omitempty" json:"projection_months_current,omitempty"`
	ProjectionMonthsPrior   *int                `yaml:"projection_months_prior,omitempty" json:"projection_months_prior,omitempty"`
	UnderwritingAdjustment  *decimal.Decimal    `yaml:"underwriting_adjustment,omitempty" json:"underwriting_adjustment,omitempty"`
	PlanChangeAdjustment    *decimal.Decimal    `yaml:"plan_change_adjustment,omitempty" json:"plan_change_adjustment,omitempty"`
	MemberChangeAdjustment  *decimal.Decimal    `yaml:"member_change_adjustment,omitempty" json:"member_change_adjustment,omitempty"`
	ExperienceWeights       []decimal.Decimal   `yaml:"experience_weights,omitempty" json:"experience_weights,omitempty"`
	Credibility             *CredibilityWeights `yaml:"credibility,omitempty" json:"credibility,omitempty"`
	ManualBasePMPM          *decimal.Decimal    `yaml:"manual_base_pmpm,omitempty" json:"manual_base_pmpm,omitempty"`
	AgeSexFactor            *decimal.Decimal    `yaml:"age_sex_factor,omitempty" json:"age_sex_factor,omitempty"`
	ManualAdjustment        *decimal.Decimal    `yaml:"manual_adjustment,omitempty" json:"manual_adjustment,omitempty"`
	OtherAdjustment         *decimal.Decimal    `yaml:"other_adjustment,omitempty" json:"other_adjustment,omitempty"`
	ReformItemsPMPM         *decimal.Decimal    `yaml:"reform_items_pmpm,omitempty" json:"reform_items_pmpm,omitempty"`
	CommissionPMPM          *decimal.Decimal    `yaml:"commission_pmpm,omitempty" json:"commission_pmpm,omitempty"`
	FeesPMPM                *decimal.Decimal    `yaml:"fees_pmpm,omitempty" json:"fees_pmpm,omitempty"`
	AdminRetentionPct       *decimal.Decimal    `yaml:"admin_retention_pct,omitempty" json:"admin_retention_pct,omitempty"`
	TaxRetentionPct         *decimal.Decimal    `yaml:"tax_retention_pct,omitempty" json:"tax_retention_pct,omitempty"`
	OtherRetentionPct       *decimal.Decimal    `yaml:"other_retention_pct,omitempty" json:"other_retention_pct,omitempty"`
	CurrentPremiumPMPM      *decimal.Decimal    `yaml:"current_premium_pmpm,omitempty" json:"current_premium_pmpm,omitempty"`
	SuggestedRateAction     *decimal.Decimal    `yaml:"suggested_rate_action,omitempty" json:"suggested_rate_action,omitempty"`
}

// CascadeParameters is the resolved configuration for the Cascade engine.
// LargeClaimAddBackPMPM, CurrentPremiumPMPM and ProjectedMemberMonths stay
// optional here because their defaults depend on values the engine itself
// computes (30% of pooled claims, 122% of experience PMPM, annualized
// member months).
type CascadeParameters struct {
	PoolingThreshold      decimal.Decimal
	DemographicAdjustment decimal.Decimal
	AnnualTrendFactor     decimal.Decimal // e.g. 1.10; projected as factor^(midpoint/12)
	MidpointMonths        decimal.Decimal
	LargeClaimAddBackPMPM *decimal.Decimal
	ManualClaimCostPMPM   decimal.Decimal
	ExperienceWeight      decimal.Decimal
	ManualWeight          decimal.Decimal
	CorridorPct           decimal.Decimal // claims-fluctuation corridor half-width
	AdminPct              decimal.Decimal
	CommissionPct         decimal.Decimal
	PremiumTaxPct         decimal.Decimal
	ProfitPct             decimal.Decimal
	OtherPct              decimal.Decimal
	CurrentPremiumPMPM    *decimal.Decimal
	ProjectedMemberMonths *decimal.Decimal
}

// CascadeOverrides is the caller-supplied counterpart of CascadeParameters.
type CascadeOverrides struct {
	PoolingThreshold      *decimal.Decimal `yaml:"pooling_threshold,omitempty" json:"pooling_threshold,omitempty"`
	DemographicAdjustment *decimal.Decimal `yaml:"demographic_adjustment,omitempty" json:"demographic_adjustment,omitempty"`
	AnnualTrendFactor     *decimal.Decimal `yaml:"annual_trend_factor,omitempty" json:"annual_trend_factor,omitempty"`
	MidpointMonths        *decimal.Decimal `yaml:"midpoint_months,omitempty" json:"midpoint_months,omitempty"`
	LargeClaimAddBackPMPM *decimal.Decimal `yaml:"large_claim_add_back_pmpm,omitempty" json:"large_claim_add_back_pmpm,omitempty"`
	ManualClaimCostPMPM   *decimal.Decimal `yaml:"manual_claim_cost_pmpm,omitempty" json:"manual_claim_cost_pmpm,omitempty"`
	ExperienceWeight      *decimal.Decimal `yaml:"experience_weight,omitempty" json:"experience_weight,omitempty"`
	ManualWeight          *decimal.Decimal `yaml:"manual_weight,omitempty" json:"manual_weight,omitempty"`
	CorridorPct           *decimal.Decimal `yaml:"corridor_pct,omitempty" json:"corridor_pct,omitempty"`
	AdminPct              *decimal.Decimal `yaml:"admin_pct,omitempty" json:"admin_pct,omitempty"`
	CommissionPct         *decimal.Decimal `yaml:"commission_pct,omitempty" json:"commission_pct,omitempty"`
	PremiumTaxPct         *decimal.Decimal `yaml:"premium_tax_pct,omitempty" json:"premium_tax_pct,omitempty"`
	ProfitPct             *decimal.Decimal `yaml:"profit_pct,omitempty" json:"profit_pct,omitempty"`
	OtherPct              *decimal.Decimal `yaml:"other_pct,omitempty" json:"other_pct,omitempty"`
	CurrentPremiumPMPM    *decimal.Decimal `yaml:"current_premium_pmpm,omitempty" json:"current_premium_pmpm,omitempty"`
	ProjectedMemberMonths *decimal.Decimal `yaml:"projected_member_months,omitempty" json:"projected_member_months,omitempty"`
}

// AtlasParameters is the resolved configuration for the Atlas engine.
type AtlasParameters struct {
	PoolingThreshold            decimal.Decimal
	PoolingFactor               decimal.Decimal
	DeductibleSuppression       decimal.Decimal // near 1.0
	MedicalTrend                decimal.Decimal
	RxTrend                     decimal.Decimal
	TrendMonthsCurrent          int
	TrendMonthsPrior            int
	CurrentWeight               decimal.Decimal
	PriorWeight                 decimal.Decimal
	FullCredibilityMemberMonths decimal.Decimal
	ManualClaimsPMPM            decimal.Decimal
	ManualAdjustment            decimal.Decimal
	AdminPct                    decimal.Decimal
	CommissionPct               decimal.Decimal
	PremiumTaxPct               decimal.Decimal
	ProfitPct                   decimal.Decimal
	CurrentPremiumPMPM          decimal.Decimal
}

// AtlasOverrides is the caller-supplied counterpart of AtlasParameters.
type AtlasOverrides struct {
	PoolingThreshold            *decimal.Decimal `yaml:"pooling_threshold,omitempty" json:"pooling_threshold,omitempty"`
	PoolingFactor               *decimal.Decimal `yaml:"pooling_factor,omitempty" json:"pooling_factor,omitempty"`
	DeductibleSuppression       *decimal.Decimal `yaml:"deductible_suppression,omitempty" json:"deductible_suppression,omitempty"`
	MedicalTrend                *decimal.Decimal `yaml:"medical_trend,omitempty" json:"medical_trend,omitempty"`
	RxTrend                     *decimal.Decimal `yaml:"rx_trend,omitempty" json:"rx_trend,omitempty"`
	TrendMonthsCurrent          *int             `yaml:"trend_months_current,omitempty" json:"trend_months_current,omitempty"`
	TrendMonthsPrior            *int             `yaml:"trend_months_prior,omitempty" json:"trend_months_prior,omitempty"`
	CurrentWeight               *decimal.Decimal `yaml:"current_weight,omitempty" json:"current_weight,omitempty"`
	PriorWeight                 *decimal.Decimal `yaml:"prior_weight,omitempty" json:"prior_weight,omitempty"`
	FullCredibilityMemberMonths *decimal.Decimal `yaml:"full_credibility_member_months,omitempty" json:"full_credibility_member_months,omitempty"`
	ManualClaimsPMPM            *decimal.Decimal `yaml:"manual_claims_pmpm,omitempty" json:"manual_claims_pmpm,omitempty"`
	ManualAdjustment            *decimal.Decimal `yaml:"manual_adjustment,omitempty" json:"manual_adjustment,omitempty"`
	AdminPct                    *decimal.Decimal `yaml:"admin_pct,omitempty" json:"admin_pct,omitempty"`
	CommissionPct               *decimal.Decimal `yaml:"commission_pct,omitempty" json:"commission_pct,omitempty"`
	PremiumTaxPct               *decimal.Decimal `yaml:"premium_tax_pct,omitempty" json:"premium_tax_pct,omitempty"`
	ProfitPct                   *decimal.Decimal `yaml:"profit_pct,omitempty" json:"profit_pct,omitempty"`
	CurrentPremiumPMPM          *decimal.Decimal `yaml:"current_premium_pmpm,omitempty" json:"current_premium_pmpm,omitempty"`
}

// MeridianPlanParameters is the resolved per-plan configuration for the
// Meridian engine. Enrollment is always required; there is no placeholder
// fallback.
type MeridianPlanParameters struct {
	PlanID                string
	Enrollment            decimal.Decimal
	MedicalPooling        decimal.Decimal
	RxPooling             decimal.Decimal
	MedicalIBNRFactor     decimal.Decimal
	RxIBNRFactor          decimal.Decimal
	MedicalTrendCurrent   decimal.Decimal // factor applied to the current column
	MedicalTrendRenewal   decimal.Decimal // factor applied to the renewal column
	RxTrendCurrent        decimal.Decimal
	RxTrendRenewal        decimal.Decimal
	AgeAdjustment         decimal.Decimal
	BenefitAdjustment     decimal.Decimal
	PoolingChargePMPM     decimal.Decimal
	CurrentWeight         decimal.Decimal
	RenewalWeight         decimal.Decimal
	MemberChargesPMPM     decimal.Decimal
	ManualClaimsPMPM      decimal.Decimal
	CredibilityFactor     decimal.Decimal
	RetentionPct          decimal.Decimal
	TaxPct                decimal.Decimal
	ACAFeesPMPM           decimal.Decimal
	UnderwriterAdjustment decimal.Decimal
	PathwayToSavings      decimal.Decimal
	CurrentPremiumPMPM    decimal.Decimal
}

// MeridianPlanOverrides is the caller-supplied counterpart of
// MeridianPlanParameters. PlanID and Enrollment are mandatory even here.
type MeridianPlanOverrides struct {
	PlanID                string           `yaml:"plan_id" json:"plan_id"`
	Enrollment            decimal.Decimal  `yaml:"enrollment" json:"enrollment"`
	MedicalPooling        *decimal.Decimal `yaml:"medical_pooling,omitempty" json:"medical_pooling,omitempty"`
	RxPooling             *decimal.Decimal `yaml:"rx_pooling,omitempty" json:"rx_pooling,omitempty"`
	MedicalIBNRFactor     *decimal.Decimal `yaml:"medical_ibnr_factor,omitempty" json:"medical_ibnr_factor,omitempty"`
	RxIBNRFactor          *decimal.Decimal `yaml:"rx_ibnr_factor,omitempty" json:"rx_ibnr_factor,omitempty"`
	MedicalTrendCurrent   *decimal.Decimal `yaml:"medical_trend_current,omitempty" json:"medical_trend_current,omitempty"`
	MedicalTrendRenewal   *decimal.Decimal `yaml:"medical_trend_renewal,omitempty" json:"medical_trend_renewal,omitempty"`
	RxTrendCurrent        *decimal.Decimal `yaml:"rx_trend_current,omitempty" json:"rx_trend_current,omitempty"`
	RxTrendRenewal        *decimal.Decimal `yaml:"rx_trend_renewal,omitempty" json:"rx_trend_renewal,omitempty"`
	AgeAdjustment         *decimal.Decimal `yaml:"age_adjustment,omitempty" json:"age_adjustment,omitempty"`
	BenefitAdjustment     *decimal.Decimal `yaml:"benefit_adjustment,omitempty" json:"benefit_adjustment,omitempty"`
	PoolingChargePMPM     *decimal.Decimal `yaml:"pooling_charge_pmpm,omitempty" json:"pooling_charge_pmpm,omitempty"`
	CurrentWeight         *decimal.Decimal `yaml:"current_weight,omitempty" json:"current_weight,omitempty"`
	RenewalWeight         *decimal.Decimal `yaml:"renewal_weight,omitempty" json:"renewal_weight,omitempty"`
	MemberChargesPMPM     *decimal.Decimal `yaml:"member_charges_pmpm,omitempty" json:"member_charges_pmpm,omitempty"`
	ManualClaimsPMPM      *decimal.Decimal `yaml:"manual_claims_pmpm,omitempty" json:"manual_claims_pmpm,omitempty"`
	CredibilityFactor     *decimal.Decimal `yaml:"credibility_factor,omitempty" json:"credibility_factor,omitempty"`
	RetentionPct          *decimal.Decimal `yaml:"retention_pct,omitempty" json:"retention_pct,omitempty"`
	TaxPct                *decimal.Decimal `yaml:"tax_pct,omitempty" json:"tax_pct,omitempty"`
	ACAFeesPMPM           *decimal.Decimal `yaml:"aca_fees_pmpm,omitempty" json:"aca_fees_pmpm,omitempty"`
	UnderwriterAdjustment *decimal.Decimal `yaml:"underwriter_adjustment,omitempty" json:"underwriter_adjustment,omitempty"`
	PathwayToSavings      *decimal.Decimal `yaml:"pathway_to_savings,omitempty" json:"pathway_to_savings,omitempty"`
	CurrentPremiumPMPM    *decimal.Decimal `yaml:"current_premium_pmpm,omitempty" json:"current_premium_pmpm,omitempty"`
}

// MeridianPlanData is the raw experience for one Meridian plan.
type MeridianPlanData struct {
	PlanID         string                `yaml:"plan_id" json:"plan_id"`
	Monthly        []MonthlyClaimsRecord `yaml:"monthly" json:"monthly"`
	LargeClaimants []LargeClaimant       `yaml:"large_claimants,omitempty" json:"large_claimants,omitempty"`
}
