package calculation

import (
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"
	"github.com/uwbench/renewal/internal/domain"
)

// NorthfieldPoolingThreshold is the threshold the Northfield methodology
// is filed at. A different value still calculates but is flagged.
var NorthfieldPoolingThreshold = decimal.NewFromInt(125000)

// NorthfieldEngine executes the Northfield 39-line renewal worksheet:
// experience rating A-R, manual rating S-V, renewal action W-AM. Pooled
// claims come out at the filed $125K threshold, current and prior periods
// blend 70/30, and experience and manual premiums blend by credibility.
type NorthfieldEngine struct {
	Monthly       []domain.MonthlyClaimsRecord
	Claimants     []domain.LargeClaimant
	EffectiveDate time.Time
	Params        domain.NorthfieldParameters
	Logger        Logger
}

// NewNorthfieldEngine builds an engine over one group's full input.
func NewNorthfieldEngine(monthly []domain.MonthlyClaimsRecord, claimants []domain.LargeClaimant, effectiveDate time.Time, params domain.NorthfieldParameters) *NorthfieldEngine {
	return &NorthfieldEngine{
		Monthly:       monthly,
		Claimants:     claimants,
		EffectiveDate: effectiveDate,
		Params:        params,
		Logger:        NopLogger{},
	}
}

// SetLogger replaces the engine logger; nil restores the no-op logger.
func (e *NorthfieldEngine) SetLogger(l Logger) {
	if l == nil {
		l = NopLogger{}
	}
	e.Logger = l
}

// one converts a decimal into the (1 + rate) form.
func onePlus(rate decimal.Decimal) decimal.Decimal {
	return decimal.NewFromInt(1).Add(rate)
}

// compoundTrendFactor is (1+annual)^(months/12). Fractional exponents are
// computed in float space; trend factors do not need exact decimal
// arithmetic the way currency sums do.
func compoundTrendFactor(annual decimal.Decimal, months int) decimal.Decimal {
	f := math.Pow(onePlus(annual).InexactFloat64(), float64(months)/12.0)
	return decimal.NewFromFloat(f)
}

func (e *NorthfieldEngine) validate() ([]domain.Warning, error) {
	p := &e.Params
	if p.Credibility == nil {
		return nil, &MissingParameterError{Carrier: domain.CarrierNorthfield, Name: "credibility"}
	}
	if len(p.ExperienceWeights) != 2 {
		return nil, fmt.Errorf("northfield: %w: experience_weights must hold exactly two weights (current, prior), got %d",
			ErrMissingParameter, len(p.ExperienceWeights))
	}
	if p.CurrentPremiumPMPM.Sign() <= 0 {
		return nil, &MissingParameterError{Carrier: domain.CarrierNorthfield, Name: "current_premium_pmpm"}
	}
	totalRetention := p.AdminRetentionPct.Add(p.TaxRetentionPct).Add(p.OtherRetentionPct)
	if totalRetention.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return nil, fmt.Errorf("northfield: %w: retention percentages sum to %s, premium gross-up is undefined",
			ErrMissingParameter, totalRetention)
	}
	if p.SuggestedRateAction != nil && p.SuggestedRateAction.LessThanOrEqual(decimal.NewFromInt(-1)) {
		return nil, fmt.Errorf("northfield: %w: suggested rate action %s leaves no projected revenue",
			ErrMissingParameter, p.SuggestedRateAction)
	}

	var warnings []domain.Warning
	if !p.PoolingThreshold.Equal(NorthfieldPoolingThreshold) {
		warnings = append(warnings, domain.Warning{
			Code: domain.WarnPoolingThresholdMismatch,
			Message: fmt.Sprintf("pooling threshold %s differs from the filed %s",
				p.PoolingThreshold, NorthfieldPoolingThreshold),
		})
	}
	return warnings, nil
}

// periodExperience is everything the ledger needs from one period.
type periodExperience struct {
	claims       domain.CoverageAmounts
	memberMonths domain.CoverageAmounts
	pooled       domain.CoverageAmounts
}

func (e *NorthfieldEngine) experienceFor(period domain.Period, label string) (periodExperience, error) {
	mm := MemberMonthsForPeriod(e.Monthly, period)
	if mm.Medical.Sign() <= 0 || mm.Rx.Sign() <= 0 || mm.Total.Sign() <= 0 {
		return periodExperience{}, &ZeroMemberMonthsError{PeriodLabel: label}
	}
	return periodExperience{
		claims:       ClaimsForPeriod(e.Monthly, period),
		memberMonths: mm,
		pooled:       PooledClaimsForPeriod(e.Claimants, period, e.Params.PoolingThreshold),
	}, nil
}

// Calculate validates the input, then executes the 39 lines in strict
// order. Lines A-I carry prior-period columns when a prior period exists;
// from the blend at line J onward prior is nil by construction.
func (e *NorthfieldEngine) Calculate() (*domain.NorthfieldResult, error) {
	warnings, err := e.validate()
	if err != nil {
		return nil, err
	}

	periods, err := DetermineExperiencePeriods(e.Monthly, e.EffectiveDate)
	if err != nil {
		return nil, err
	}
	qualityWarnings, err := ValidateDataQuality(e.Monthly, periods)
	if err != nil {
		return nil, err
	}
	warnings = append(warnings, qualityWarnings...)
	warnings = append(warnings, ValidateLargeClaimantPeriods(e.Claimants, periods)...)

	cur, err := e.experienceFor(periods.Current, "current")
	if err != nil {
		return nil, err
	}
	var prior *periodExperience
	if periods.Prior != nil {
		pe, err := e.experienceFor(*periods.Prior, "prior")
		if err != nil {
			return nil, err
		}
		prior = &pe
	}

	p := &e.Params
	e.Logger.Debugf("northfield: %d months current, prior=%v, threshold=%s",
		periods.Current.Months, periods.Prior != nil, p.PoolingThreshold)

	ledger := make([]domain.CalculationLine, 0, len(domain.NorthfieldLineOrder))
	add := func(id domain.LineID, label, formula string, current domain.CoverageAmounts, priorVal *domain.CoverageAmounts) domain.CoverageAmounts {
		ledger = append(ledger, domain.CalculationLine{
			ID: id, Label: label, Formula: formula,
			Current: current, Prior: priorVal,
		})
		return current
	}
	// both computes a line for the current column and, when a prior period
	// exists, the prior column from the same formula.
	both := func(id domain.LineID, label, formula string,
		f func(pe periodExperience, isPrior bool) domain.CoverageAmounts) (domain.CoverageAmounts, *domain.CoverageAmounts) {
		currentVal := f(cur, false)
		var priorVal *domain.CoverageAmounts
		if prior != nil {
			pv := f(*prior, true)
			priorVal = &pv
		}
		add(id, label, formula, currentVal, priorVal)
		return currentVal, priorVal
	}

	// Experience rating, lines A-R.
	lineA, lineAPrior := both(domain.LineA, "Medical claims PMPM", "medical claims / medical member months",
		func(pe periodExperience, _ bool) domain.CoverageAmounts {
			v := pe.claims.Medical.Div(pe.memberMonths.Medical)
			return domain.CoverageAmounts{Medical: v, Total: v}
		})
	lineB, lineBPrior := both(domain.LineB, "Pooled claims over threshold PMPM", "excess over pooling threshold / medical member months",
		func(pe periodExperience, _ bool) domain.CoverageAmounts {
			v := pe.pooled.Total.Div(pe.memberMonths.Medical)
			return domain.CoverageAmounts{Medical: v, Total: v}
		})
	lineC := lineA.Sub(lineB)
	var lineCPrior *domain.CoverageAmounts
	if lineAPrior != nil && lineBPrior != nil {
		pv := lineAPrior.Sub(*lineBPrior)
		lineCPrior = &pv
	}
	add(domain.LineC, "Net medical claims PMPM", "A - B", lineC, lineCPrior)

	lineD, lineDPrior := both(domain.LineD, "Rx claims PMPM", "rx claims / rx member months",
		func(pe periodExperience, _ bool) domain.CoverageAmounts {
			v := pe.claims.Rx.Div(pe.memberMonths.Rx)
			return domain.CoverageAmounts{Rx: v, Total: v}
		})

	lineE := lineC.Add(lineD)
	var lineEPrior *domain.CoverageAmounts
	if lineCPrior != nil && lineDPrior != nil {
		pv := lineCPrior.Add(*lineDPrior)
		lineEPrior = &pv
	}
	add(domain.LineE, "Total net claims PMPM", "C + D", lineE, lineEPrior)

	lineF := lineE.MulFactor(p.UnderwritingAdjustment)
	var lineFPrior *domain.CoverageAmounts
	if lineEPrior != nil {
		pv := lineEPrior.MulFactor(p.UnderwritingAdjustment)
		lineFPrior = &pv
	}
	add(domain.LineF, "Underwriting adjusted claims PMPM", "E x underwriting adjustment", lineF, lineFPrior)

	trend := func(v domain.CoverageAmounts, months int) domain.CoverageAmounts {
		med := v.Medical.Mul(compoundTrendFactor(p.MedicalTrend, months))
		rx := v.Rx.Mul(compoundTrendFactor(p.RxTrend, months))
		return domain.CoverageAmounts{Medical: med, Rx: rx, Total: med.Add(rx)}
	}
	lineG := trend(lineF, p.ProjectionMonthsCurrent)
	var lineGPrior *domain.CoverageAmounts
	if lineFPrior != nil {
		pv := trend(*lineFPrior, p.ProjectionMonthsPrior)
		lineGPrior = &pv
	}
	add(domain.LineG, "Trended claims PMPM", "F x (1+trend)^(projection months/12)", lineG, lineGPrior)

	factorPrior := func() *domain.CoverageAmounts {
		if prior == nil {
			return nil
		}
		pv := domain.Uniform(p.PlanChangeAdjustment)
		return &pv
	}
	add(domain.LineH, "Plan change adjustment", "factor", domain.Uniform(p.PlanChangeAdjustment), factorPrior())

	lineI := lineG.MulFactor(p.PlanChangeAdjustment)
	var lineIPrior *domain.CoverageAmounts
	if lineGPrior != nil {
		pv := lineGPrior.MulFactor(p.PlanChangeAdjustment)
		lineIPrior = &pv
	}
	add(domain.LineI, "Adjusted trended claims PMPM", "G x H", lineI, lineIPrior)

	// Line J blends the periods; no line from here on has a prior column.
	var lineJ domain.CoverageAmounts
	if lineIPrior != nil {
		lineJ = lineI.MulFactor(p.ExperienceWeights[0]).Add(lineIPrior.MulFactor(p.ExperienceWeights[1]))
	} else {
		lineJ = lineI
	}
	add(domain.LineJ, "Experience-weighted claims PMPM", "I current x w1 + I prior x w2", lineJ, nil)

	lineK := add(domain.LineK, "Member change adjusted claims PMPM", "J x member change adjustment",
		lineJ.MulFactor(p.MemberChangeAdjustment), nil)

	poolingCharge := p.PoolingThreshold.Mul(p.PoolingFactor).Div(cur.memberMonths.Total)
	lineL := add(domain.LineL, "Pooling charge PMPM", "threshold x pooling factor / current member months",
		domain.CoverageAmounts{Medical: poolingCharge, Total: poolingCharge}, nil)

	lineM := add(domain.LineM, "Expected claims PMPM", "K + L", lineK.Add(lineL), nil)

	add(domain.LineN, "Administration retention", "percent of premium", domain.Uniform(p.AdminRetentionPct), nil)
	add(domain.LineO, "Premium tax retention", "percent of premium", domain.Uniform(p.TaxRetentionPct), nil)
	add(domain.LineP, "Other retention", "percent of premium", domain.Uniform(p.OtherRetentionPct), nil)
	totalRetention := p.AdminRetentionPct.Add(p.TaxRetentionPct).Add(p.OtherRetentionPct)
	add(domain.LineQ, "Total retention", "N + O + P", domain.Uniform(totalRetention), nil)

	grossUp := decimal.NewFromInt(1).Div(decimal.NewFromInt(1).Sub(totalRetention))
	lineR := add(domain.LineR, "Experience premium PMPM", "M / (1 - Q)", lineM.MulFactor(grossUp), nil)

	// Manual rating, lines S-V. The medical/rx split always follows the mix
	// actually observed in the experience data.
	medShare := decimal.NewFromFloat(0.85)
	if cur.claims.Total.Sign() > 0 {
		medShare = cur.claims.Medical.Div(cur.claims.Total)
	}
	rxShare := decimal.NewFromInt(1).Sub(medShare)
	splitByMix := func(total decimal.Decimal) domain.CoverageAmounts {
		return domain.CoverageAmounts{
			Medical: total.Mul(medShare),
			Rx:      total.Mul(rxShare),
			Total:   total,
		}
	}

	lineS := add(domain.LineS, "Manual base rate PMPM", "manual basis split by experience mix",
		splitByMix(p.ManualBasePMPM), nil)
	add(domain.LineT, "Age/sex factor", "factor", domain.Uniform(p.AgeSexFactor), nil)
	lineU := add(domain.LineU, "Age/sex adjusted manual PMPM", "S x T", lineS.MulFactor(p.AgeSexFactor), nil)
	lineV := add(domain.LineV, "Adjusted manual premium PMPM", "U x manual adjustment",
		lineU.MulFactor(p.ManualAdjustment), nil)

	// Renewal action, lines W-AM.
	cred := p.Credibility
	lineW := add(domain.LineW, "Credibility-weighted experience premium PMPM", "R x experience credibility",
		lineR.MulFactor(cred.Experience), nil)
	lineX := add(domain.LineX, "Credibility-weighted manual premium PMPM", "V x manual credibility",
		lineV.MulFactor(cred.Manual), nil)
	lineY := add(domain.LineY, "Blended premium PMPM", "W + X", lineW.Add(lineX), nil)

	add(domain.LineZ, "Other adjustment", "factor", domain.Uniform(p.OtherAdjustment), nil)
	lineAA := add(domain.LineAA, "Adjusted blended premium PMPM", "Y x Z", lineY.MulFactor(p.OtherAdjustment), nil)

	lineAB := add(domain.LineAB, "Reform items PMPM", "split by experience mix", splitByMix(p.ReformItemsPMPM), nil)
	lineAC := add(domain.LineAC, "Commission PMPM", "split by experience mix", splitByMix(p.CommissionPMPM), nil)
	lineAD := add(domain.LineAD, "Fees PMPM", "split by experience mix", splitByMix(p.FeesPMPM), nil)

	lineAE := add(domain.LineAE, "Required premium PMPM", "AA + AB + AC + AD",
		lineAA.Add(lineAB).Add(lineAC).Add(lineAD), nil)

	lineAF := add(domain.LineAF, "Current revenue PMPM", "current premium split by experience mix",
		splitByMix(p.CurrentPremiumPMPM), nil)

	calculatedAction := lineAE.Total.Sub(lineAF.Total).Div(lineAF.Total)
	add(domain.LineAG, "Calculated renewal action", "(AE - AF) / AF", domain.Uniform(calculatedAction), nil)

	suggestedAction := calculatedAction
	if p.SuggestedRateAction != nil {
		suggestedAction = *p.SuggestedRateAction
	}
	add(domain.LineAH, "Suggested renewal action", "supplied, else AG", domain.Uniform(suggestedAction), nil)

	lineAI := add(domain.LineAI, "Projected revenue PMPM", "AF x (1 + AH)",
		lineAF.MulFactor(onePlus(suggestedAction)), nil)

	lineAJ := add(domain.LineAJ, "Margin PMPM", "AI - AE", lineAI.Sub(lineAE), nil)
	marginPct := lineAJ.Total.Div(lineAI.Total)
	add(domain.LineAK, "Margin percent", "AJ / AI", domain.Uniform(marginPct), nil)

	lossRatio := lineM.Total.Div(lineAI.Total)
	add(domain.LineAL, "Projected loss ratio", "M / AI", domain.Uniform(lossRatio), nil)

	add(domain.LineAM, "Final required premium PMPM", "AE restated", lineAE, nil)

	result := &domain.NorthfieldResult{
		Lines:                ledger,
		Periods:              periods,
		FinalPremiumPMPM:     lineAE,
		CurrentPremiumPMPM:   p.CurrentPremiumPMPM,
		CalculatedRateAction: calculatedAction,
		SuggestedRateAction:  suggestedAction,
		ProjectedRevenuePMPM: lineAI.Total,
		LossRatio:            lossRatio,
		Warnings:             warnings,
		DataQuality: domain.DataQuality{
			Completeness:         CompletenessFraction(e.Monthly),
			AnnualizationApplied: periods.Current.Months < 12,
			CredibilityScore:     cred.Experience,
		},
	}
	e.Logger.Infof("northfield: required %s PMPM, calculated action %s",
		lineAE.Total.StringFixed(2), calculatedAction.StringFixed(4))
	return result, nil
}
