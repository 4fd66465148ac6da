package calculation

import (
	"math"

	"github.com/shopspring/decimal"
	"github.com/uwbench/renewal/internal/domain"
)

// Group-size retention tiers. Larger groups carry proportionally less
// retention load.
var (
	largeGroupMemberMonths  = decimal.NewFromInt(30000)
	mediumGroupMemberMonths = decimal.NewFromInt(10000)

	largeGroupRetention  = decimal.NewFromFloat(0.125)
	mediumGroupRetention = decimal.NewFromFloat(0.14)
	smallGroupRetention  = decimal.NewFromFloat(0.155)

	// defaultMedicalShare applies only when no experience claims exist to
	// derive the actual medical/rx mix from.
	defaultMedicalShare = decimal.NewFromFloat(0.85)
)

// ExperienceSummary holds the shared quantities derived once per run and
// consumed by every carrier's default-parameter rules.
type ExperienceSummary struct {
	TotalMedicalClaims decimal.Decimal
	TotalRxClaims      decimal.Decimal
	TotalClaims        decimal.Decimal
	TotalMemberMonths  decimal.Decimal
	ExperiencePMPM     decimal.Decimal
	MedicalShare       decimal.Decimal
	RxShare            decimal.Decimal
	RetentionPct       decimal.Decimal
	Months             int
}

// SummarizeExperience computes the shared derived quantities from the raw
// monthly series.
func SummarizeExperience(records []domain.MonthlyClaimsRecord) ExperienceSummary {
	s := ExperienceSummary{Months: len(distinctMonthsDescending(records))}
	for _, r := range records {
		s.TotalMedicalClaims = s.TotalMedicalClaims.Add(r.MedicalClaims)
		s.TotalRxClaims = s.TotalRxClaims.Add(r.RxClaims)
		s.TotalClaims = s.TotalClaims.Add(r.TotalClaims)
		s.TotalMemberMonths = s.TotalMemberMonths.Add(r.TotalMemberMonths)
	}
	if s.TotalMemberMonths.Sign() > 0 {
		s.ExperiencePMPM = s.TotalClaims.Div(s.TotalMemberMonths)
	}
	s.MedicalShare = defaultMedicalShare
	if s.TotalClaims.Sign() > 0 {
		s.MedicalShare = s.TotalMedicalClaims.Div(s.TotalClaims)
	}
	s.RxShare = decimal.NewFromInt(1).Sub(s.MedicalShare)

	switch {
	case s.TotalMemberMonths.GreaterThan(largeGroupMemberMonths):
		s.RetentionPct = largeGroupRetention
	case s.TotalMemberMonths.GreaterThan(mediumGroupMemberMonths):
		s.RetentionPct = mediumGroupRetention
	default:
		s.RetentionPct = smallGroupRetention
	}
	return s
}

// sqrtCredibility is min(1, sqrt(memberMonths/fullCredibility)).
func sqrtCredibility(memberMonths, fullCredibility decimal.Decimal) decimal.Decimal {
	if fullCredibility.Sign() <= 0 || memberMonths.Sign() <= 0 {
		return decimal.Zero
	}
	c := decimal.NewFromFloat(math.Sqrt(memberMonths.Div(fullCredibility).InexactFloat64()))
	if c.GreaterThan(decimal.NewFromInt(1)) {
		return decimal.NewFromInt(1)
	}
	return c
}

// premiumEstimate grosses the experience claim cost up by the tiered
// retention to estimate an unknown current premium.
func premiumEstimate(s ExperienceSummary) decimal.Decimal {
	return s.ExperiencePMPM.Div(decimal.NewFromInt(1).Sub(s.RetentionPct))
}

func orDefault(override *decimal.Decimal, def decimal.Decimal) decimal.Decimal {
	if override != nil {
		return *override
	}
	return def
}

func orDefaultInt(override *int, def int) int {
	if override != nil {
		return *override
	}
	return def
}

// manualBasis prefers the supplied manual rates, falling back to the
// experience PMPM when no manual basis exists.
func manualBasis(manual *domain.ManualRates, s ExperienceSummary) decimal.Decimal {
	if manual != nil {
		return manual.TotalPMPM()
	}
	return s.ExperiencePMPM
}

// Northfield defaults.
var (
	northfieldDefaultPoolingFactor = decimal.NewFromFloat(0.15)
	northfieldDefaultMedicalTrend  = decimal.NewFromFloat(0.09)
	northfieldDefaultRxTrend       = decimal.NewFromFloat(0.11)
	northfieldFullCredibilityMM    = decimal.NewFromInt(120000)
	one                            = decimal.NewFromInt(1)
)

// ResolveNorthfield fills every Northfield parameter, caller override
// first, derived rule second. Retention splits the tiered total 60/15/25
// across admin, tax and other.
func ResolveNorthfield(o *domain.NorthfieldOverrides, manual *domain.ManualRates, s ExperienceSummary) domain.NorthfieldParameters {
	if o == nil {
		o = &domain.NorthfieldOverrides{}
	}
	weights := o.ExperienceWeights
	if len(weights) == 0 {
		weights = []decimal.Decimal{decimal.NewFromFloat(0.70), decimal.NewFromFloat(0.30)}
	}
	cred := o.Credibility
	if cred == nil {
		exp := sqrtCredibility(s.TotalMemberMonths, northfieldFullCredibilityMM)
		cred = &domain.CredibilityWeights{Experience: exp, Manual: one.Sub(exp)}
	}
	return domain.NorthfieldParameters{
		PoolingThreshold:        orDefault(o.PoolingThreshold, NorthfieldPoolingThreshold),
		PoolingFactor:           orDefault(o.PoolingFactor, northfieldDefaultPoolingFactor),
		MedicalTrend:            orDefault(o.MedicalTrend, northfieldDefaultMedicalTrend),
		RxTrend:                 orDefault(o.RxTrend, northfieldDefaultRxTrend),
		ProjectionMonthsCurrent: orDefaultInt(o.ProjectionMonthsCurrent, 20),
		ProjectionMonthsPrior:   orDefaultInt(o.ProjectionMonthsPrior, 28),
		UnderwritingAdjustment:  orDefault(o.UnderwritingAdjustment, one),
		PlanChangeAdjustment:    orDefault(o.PlanChangeAdjustment, one),
		MemberChangeAdjustment:  orDefault(o.MemberChangeAdjustment, one),
		ExperienceWeights:       weights,
		Credibility:             cred,
		ManualBasePMPM:          orDefault(o.ManualBasePMPM, manualBasis(manual, s)),
		AgeSexFactor:            orDefault(o.AgeSexFactor, one),
		ManualAdjustment:        orDefault(o.ManualAdjustment, one),
		OtherAdjustment:         orDefault(o.OtherAdjustment, one),
		ReformItemsPMPM:         orDefault(o.ReformItemsPMPM, decimal.Zero),
		CommissionPMPM:          orDefault(o.CommissionPMPM, decimal.Zero),
		FeesPMPM:                orDefault(o.FeesPMPM, decimal.Zero),
		AdminRetentionPct:       orDefault(o.AdminRetentionPct, s.RetentionPct.Mul(decimal.NewFromFloat(0.60))),
		TaxRetentionPct:         orDefault(o.TaxRetentionPct, s.RetentionPct.Mul(decimal.NewFromFloat(0.15))),
		OtherRetentionPct:       orDefault(o.OtherRetentionPct, s.RetentionPct.Mul(decimal.NewFromFloat(0.25))),
		CurrentPremiumPMPM:      orDefault(o.CurrentPremiumPMPM, premiumEstimate(s)),
		SuggestedRateAction:     o.SuggestedRateAction,
	}
}

// Cascade defaults.
var (
	cascadeDefaultThreshold   = decimal.NewFromInt(50000)
	cascadeDefaultTrendFactor = decimal.NewFromFloat(1.10)
	cascadeDefaultMidpoint    = decimal.NewFromInt(18)
	cascadeDefaultCorridor    = decimal.NewFromFloat(0.075)
	cascadeFullCredibilityMM  = decimal.NewFromInt(100000)
)

// ResolveCascade fills every Cascade parameter. Current premium, add-back
// and projected member months stay nil when not supplied; their defaults
// depend on ledger intermediates the engine computes itself.
func ResolveCascade(o *domain.CascadeOverrides, manual *domain.ManualRates, s ExperienceSummary) domain.CascadeParameters {
	if o == nil {
		o = &domain.CascadeOverrides{}
	}
	expWeight := o.ExperienceWeight
	manWeight := o.ManualWeight
	if expWeight == nil {
		w := sqrtCredibility(s.TotalMemberMonths, cascadeFullCredibilityMM)
		expWeight = &w
	}
	if manWeight == nil {
		w := one.Sub(*expWeight)
		manWeight = &w
	}
	return domain.CascadeParameters{
		PoolingThreshold:      orDefault(o.PoolingThreshold, cascadeDefaultThreshold),
		DemographicAdjustment: orDefault(o.DemographicAdjustment, one),
		AnnualTrendFactor:     orDefault(o.AnnualTrendFactor, cascadeDefaultTrendFactor),
		MidpointMonths:        orDefault(o.MidpointMonths, cascadeDefaultMidpoint),
		LargeClaimAddBackPMPM: o.LargeClaimAddBackPMPM,
		ManualClaimCostPMPM:   orDefault(o.ManualClaimCostPMPM, manualBasis(manual, s)),
		ExperienceWeight:      *expWeight,
		ManualWeight:          *manWeight,
		CorridorPct:           orDefault(o.CorridorPct, cascadeDefaultCorridor),
		AdminPct:              orDefault(o.AdminPct, cascadeDefaultAdminPct),
		CommissionPct:         orDefault(o.CommissionPct, cascadeDefaultCommissionPct),
		PremiumTaxPct:         orDefault(o.PremiumTaxPct, cascadeDefaultTaxPct),
		ProfitPct:             orDefault(o.ProfitPct, cascadeDefaultProfitPct),
		OtherPct:              orDefault(o.OtherPct, cascadeDefaultOtherPct),
		CurrentPremiumPMPM:    o.CurrentPremiumPMPM,
		ProjectedMemberMonths: o.ProjectedMemberMonths,
	}
}

// Atlas defaults.
var (
	atlasDefaultThreshold   = decimal.NewFromInt(175000)
	atlasDefaultFactor      = decimal.NewFromFloat(0.14)
	atlasDefaultSuppression = decimal.NewFromFloat(0.997)
	atlasFullCredibilityMM  = decimal.NewFromInt(12000)
)

// ResolveAtlas fills every Atlas parameter. Retention splits the tiered
// total 55/20/15/10 across admin, commission, tax and profit.
func ResolveAtlas(o *domain.AtlasOverrides, manual *domain.ManualRates, s ExperienceSummary) domain.AtlasParameters {
	if o == nil {
		o = &domain.AtlasOverrides{}
	}
	return domain.AtlasParameters{
		PoolingThreshold:            orDefault(o.PoolingThreshold, atlasDefaultThreshold),
		PoolingFactor:               orDefault(o.PoolingFactor, atlasDefaultFactor),
		DeductibleSuppression:       orDefault(o.DeductibleSuppression, atlasDefaultSuppression),
		MedicalTrend:                orDefault(o.MedicalTrend, northfieldDefaultMedicalTrend),
		RxTrend:                     orDefault(o.RxTrend, northfieldDefaultRxTrend),
		TrendMonthsCurrent:          orDefaultInt(o.TrendMonthsCurrent, 18),
		TrendMonthsPrior:            orDefaultInt(o.TrendMonthsPrior, 30),
		CurrentWeight:               orDefault(o.CurrentWeight, decimal.NewFromFloat(0.75)),
		PriorWeight:                 orDefault(o.PriorWeight, decimal.NewFromFloat(0.25)),
		FullCredibilityMemberMonths: orDefault(o.FullCredibilityMemberMonths, atlasFullCredibilityMM),
		ManualClaimsPMPM:            orDefault(o.ManualClaimsPMPM, manualBasis(manual, s)),
		ManualAdjustment:            orDefault(o.ManualAdjustment, one),
		AdminPct:                    orDefault(o.AdminPct, s.RetentionPct.Mul(decimal.NewFromFloat(0.55))),
		CommissionPct:               orDefault(o.CommissionPct, s.RetentionPct.Mul(decimal.NewFromFloat(0.20))),
		PremiumTaxPct:               orDefault(o.PremiumTaxPct, s.RetentionPct.Mul(decimal.NewFromFloat(0.15))),
		ProfitPct:                   orDefault(o.ProfitPct, s.RetentionPct.Mul(decimal.NewFromFloat(0.10))),
		CurrentPremiumPMPM:          orDefault(o.CurrentPremiumPMPM, premiumEstimate(s)),
	}
}

// Meridian defaults.
var (
	meridianDefaultMedPooling   = decimal.NewFromInt(100000)
	meridianDefaultRxPooling    = decimal.NewFromInt(100000)
	meridianDefaultMedIBNR      = decimal.NewFromFloat(1.02)
	meridianDefaultRxIBNR       = decimal.NewFromFloat(1.005)
	meridianDefaultMedTrendCur  = decimal.NewFromFloat(1.05)
	meridianDefaultMedTrendRen  = decimal.NewFromFloat(1.12)
	meridianDefaultRxTrendCur   = decimal.NewFromFloat(1.06)
	meridianDefaultRxTrendRen   = decimal.NewFromFloat(1.15)
	meridianDefaultPoolingShare = decimal.NewFromFloat(0.15)
	meridianFullCredibilityMM   = decimal.NewFromInt(60000)
	half                        = decimal.NewFromFloat(0.5)
)

// ResolveMeridianPlan fills one plan's parameters from its overrides, its
// own raw data and the group summary. Enrollment has no default: a
// missing enrollment surfaces as an engine error, never a placeholder.
func ResolveMeridianPlan(o domain.MeridianPlanOverrides, data *domain.MeridianPlanData, manual *domain.ManualRates, s ExperienceSummary) domain.MeridianPlanParameters {
	planSummary := s
	if data != nil {
		planSummary = SummarizeExperience(data.Monthly)
		// Group-size retention tiering follows the whole group, not the
		// single plan.
		planSummary.RetentionPct = s.RetentionPct
	}

	medPooling := orDefault(o.MedicalPooling, meridianDefaultMedPooling)
	poolingCharge := decimal.Zero
	if planSummary.TotalMemberMonths.Sign() > 0 {
		poolingCharge = medPooling.Mul(meridianDefaultPoolingShare).Div(planSummary.TotalMemberMonths)
	}
	return domain.MeridianPlanParameters{
		PlanID:                o.PlanID,
		Enrollment:            o.Enrollment,
		MedicalPooling:        medPooling,
		RxPooling:             orDefault(o.RxPooling, meridianDefaultRxPooling),
		MedicalIBNRFactor:     orDefault(o.MedicalIBNRFactor, meridianDefaultMedIBNR),
		RxIBNRFactor:          orDefault(o.RxIBNRFactor, meridianDefaultRxIBNR),
		MedicalTrendCurrent:   orDefault(o.MedicalTrendCurrent, meridianDefaultMedTrendCur),
		MedicalTrendRenewal:   orDefault(o.MedicalTrendRenewal, meridianDefaultMedTrendRen),
		RxTrendCurrent:        orDefault(o.RxTrendCurrent, meridianDefaultRxTrendCur),
		RxTrendRenewal:        orDefault(o.RxTrendRenewal, meridianDefaultRxTrendRen),
		AgeAdjustment:         orDefault(o.AgeAdjustment, one),
		BenefitAdjustment:     orDefault(o.BenefitAdjustment, one),
		PoolingChargePMPM:     orDefault(o.PoolingChargePMPM, poolingCharge),
		CurrentWeight:         orDefault(o.CurrentWeight, half),
		RenewalWeight:         orDefault(o.RenewalWeight, half),
		MemberChargesPMPM:     orDefault(o.MemberChargesPMPM, decimal.Zero),
		ManualClaimsPMPM:      orDefault(o.ManualClaimsPMPM, manualBasis(manual, planSummary)),
		CredibilityFactor:     orDefault(o.CredibilityFactor, sqrtCredibility(planSummary.TotalMemberMonths, meridianFullCredibilityMM)),
		RetentionPct:          orDefault(o.RetentionPct, planSummary.RetentionPct.Mul(decimal.NewFromFloat(0.80))),
		TaxPct:                orDefault(o.TaxPct, planSummary.RetentionPct.Mul(decimal.NewFromFloat(0.20))),
		ACAFeesPMPM:           orDefault(o.ACAFeesPMPM, decimal.Zero),
		UnderwriterAdjustment: orDefault(o.UnderwriterAdjustment, one),
		PathwayToSavings:      orDefault(o.PathwayToSavings, one),
		CurrentPremiumPMPM:    orDefault(o.CurrentPremiumPMPM, premiumEstimate(planSummary)),
	}
}
