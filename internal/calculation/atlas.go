package calculation

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"github.com/uwbench/renewal/internal/domain"
)

// AtlasEngine executes the Atlas 28-line worksheet: pooling at ~$175K, a
// deductible suppression factor near 1.0, sqrt-based credibility against a
// full-credibility member-month count, and a 75/25 current/prior blend.
// Contract shape matches Northfield: validate, build the ledger, summarize.
type AtlasEngine struct {
	Monthly       []domain.MonthlyClaimsRecord
	Claimants     []domain.LargeClaimant
	EffectiveDate time.Time
	Params        domain.AtlasParameters
	Logger        Logger
}

// NewAtlasEngine builds an engine over one group's full input.
func NewAtlasEngine(monthly []domain.MonthlyClaimsRecord, claimants []domain.LargeClaimant, effectiveDate time.Time, params domain.AtlasParameters) *AtlasEngine {
	return &AtlasEngine{
		Monthly:       monthly,
		Claimants:     claimants,
		EffectiveDate: effectiveDate,
		Params:        params,
		Logger:        NopLogger{},
	}
}

// SetLogger replaces the engine logger; nil restores the no-op logger.
func (e *AtlasEngine) SetLogger(l Logger) {
	if l == nil {
		l = NopLogger{}
	}
	e.Logger = l
}

func (e *AtlasEngine) validate() error {
	p := &e.Params
	if p.CurrentPremiumPMPM.Sign() <= 0 {
		return &MissingParameterError{Carrier: domain.CarrierAtlas, Name: "current_premium_pmpm"}
	}
	if p.FullCredibilityMemberMonths.Sign() <= 0 {
		return &MissingParameterError{Carrier: domain.CarrierAtlas, Name: "full_credibility_member_months"}
	}
	totalRetention := p.AdminPct.Add(p.CommissionPct).Add(p.PremiumTaxPct).Add(p.ProfitPct)
	if totalRetention.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return fmt.Errorf("atlas: %w: retention percentages sum to %s, premium gross-up is undefined",
			ErrMissingParameter, totalRetention)
	}
	return nil
}

// Calculate runs the 28 numbered lines in strict order. Lines 1-10 carry
// prior-period columns when a prior period exists; the blend at line 11
// consumes them, so lines from 11 onward have nil prior.
func (e *AtlasEngine) Calculate() (*domain.AtlasResult, error) {
	if err := e.validate(); err != nil {
		return nil, err
	}

	periods, err := DetermineExperiencePeriods(e.Monthly, e.EffectiveDate)
	if err != nil {
		return nil, err
	}
	warnings, err := ValidateDataQuality(e.Monthly, periods)
	if err != nil {
		return nil, err
	}
	warnings = append(warnings, ValidateLargeClaimantPeriods(e.Claimants, periods)...)

	p := &e.Params

	curMM := MemberMonthsForPeriod(e.Monthly, periods.Current)
	if curMM.Medical.Sign() <= 0 || curMM.Rx.Sign() <= 0 || curMM.Total.Sign() <= 0 {
		return nil, &ZeroMemberMonthsError{PeriodLabel: "current"}
	}
	curClaims := ClaimsForPeriod(e.Monthly, periods.Current)
	curPooled := PooledClaimsForPeriod(e.Claimants, periods.Current, p.PoolingThreshold)

	var priorMM, priorClaims, priorPooled domain.CoverageAmounts
	hasPrior := periods.Prior != nil
	if hasPrior {
		priorMM = MemberMonthsForPeriod(e.Monthly, *periods.Prior)
		if priorMM.Medical.Sign() <= 0 || priorMM.Rx.Sign() <= 0 || priorMM.Total.Sign() <= 0 {
			return nil, &ZeroMemberMonthsError{PeriodLabel: "prior"}
		}
		priorClaims = ClaimsForPeriod(e.Monthly, *periods.Prior)
		priorPooled = PooledClaimsForPeriod(e.Claimants, *periods.Prior, p.PoolingThreshold)
	}

	ledger := make([]domain.CalculationLine, 0, 28)
	add := func(n int, label, formula string, current domain.CoverageAmounts, prior *domain.CoverageAmounts) domain.CoverageAmounts {
		ledger = append(ledger, domain.CalculationLine{
			ID: domain.LineID(strconv.Itoa(n)), Label: label, Formula: formula,
			Current: current, Prior: prior,
		})
		return current
	}
	priorOf := func(v domain.CoverageAmounts) *domain.CoverageAmounts {
		if !hasPrior {
			return nil
		}
		return &v
	}

	medPMPM := func(claims, mm domain.CoverageAmounts) domain.CoverageAmounts {
		v := claims.Medical.Div(mm.Medical)
		return domain.CoverageAmounts{Medical: v, Total: v}
	}
	rxPMPM := func(claims, mm domain.CoverageAmounts) domain.CoverageAmounts {
		v := claims.Rx.Div(mm.Rx)
		return domain.CoverageAmounts{Rx: v, Total: v}
	}
	pooledPMPM := func(pooled, mm domain.CoverageAmounts) domain.CoverageAmounts {
		v := pooled.Total.Div(mm.Medical)
		return domain.CoverageAmounts{Medical: v, Total: v}
	}

	var line1Prior, line2Prior, line4Prior domain.CoverageAmounts
	if hasPrior {
		line1Prior = medPMPM(priorClaims, priorMM)
		line2Prior = rxPMPM(priorClaims, priorMM)
		line4Prior = pooledPMPM(priorPooled, priorMM)
	}
	line5Prior := line1Prior.Add(line2Prior).Sub(line4Prior)

	line1 := add(1, "Medical claims PMPM", "medical claims / medical member months",
		medPMPM(curClaims, curMM), priorOf(line1Prior))
	line2 := add(2, "Rx claims PMPM", "rx claims / rx member months",
		rxPMPM(curClaims, curMM), priorOf(line2Prior))
	line3 := add(3, "Total claims PMPM", "line 1 + line 2",
		line1.Add(line2), priorOf(line1Prior.Add(line2Prior)))
	line4 := add(4, "Pooled claims over threshold PMPM", "excess over pooling threshold / medical member months",
		pooledPMPM(curPooled, curMM), priorOf(line4Prior))
	line5 := add(5, "Net claims PMPM", "line 3 - line 4",
		line3.Sub(line4), priorOf(line5Prior))

	add(6, "Deductible suppression factor", "factor",
		domain.Uniform(p.DeductibleSuppression), priorOf(domain.Uniform(p.DeductibleSuppression)))
	line7 := add(7, "Suppressed claims PMPM", "line 5 x line 6",
		line5.MulFactor(p.DeductibleSuppression), priorOf(line5Prior.MulFactor(p.DeductibleSuppression)))
	line7Prior := line5Prior.MulFactor(p.DeductibleSuppression)

	trend := func(v domain.CoverageAmounts, months int) domain.CoverageAmounts {
		med := v.Medical.Mul(compoundTrendFactor(p.MedicalTrend, months))
		rx := v.Rx.Mul(compoundTrendFactor(p.RxTrend, months))
		return domain.CoverageAmounts{Medical: med, Rx: rx, Total: med.Add(rx)}
	}
	trendFactors := func(months int) domain.CoverageAmounts {
		return domain.CoverageAmounts{
			Medical: compoundTrendFactor(p.MedicalTrend, months),
			Rx:      compoundTrendFactor(p.RxTrend, months),
		}
	}
	add(8, "Trend factors", "(1+trend)^(trend months/12) per coverage",
		trendFactors(p.TrendMonthsCurrent), priorOf(trendFactors(p.TrendMonthsPrior)))
	line9 := add(9, "Trended claims PMPM", "line 7 x line 8",
		trend(line7, p.TrendMonthsCurrent), priorOf(trend(line7Prior, p.TrendMonthsPrior)))
	line9Prior := trend(line7Prior, p.TrendMonthsPrior)

	add(10, "Period weights", "current / prior",
		domain.Uniform(p.CurrentWeight), priorOf(domain.Uniform(p.PriorWeight)))

	// Line 11 blends the periods; no line from here on has a prior column.
	line11Val := line9
	if hasPrior {
		line11Val = line9.MulFactor(p.CurrentWeight).Add(line9Prior.MulFactor(p.PriorWeight))
	}
	line11 := add(11, "Weighted experience claims PMPM", "line 9 current x weight + line 9 prior x weight", line11Val, nil)

	poolingCharge := p.PoolingThreshold.Mul(p.PoolingFactor).Div(curMM.Total)
	line12 := add(12, "Pooling charge PMPM", "threshold x pooling factor / current member months",
		domain.CoverageAmounts{Medical: poolingCharge, Total: poolingCharge}, nil)
	line13 := add(13, "Expected experience claims PMPM", "line 11 + line 12", line11.Add(line12), nil)

	credibility := decimal.NewFromFloat(math.Sqrt(
		curMM.Total.Div(p.FullCredibilityMemberMonths).InexactFloat64()))
	if credibility.GreaterThan(decimal.NewFromInt(1)) {
		credibility = decimal.NewFromInt(1)
	}
	add(14, "Credibility factor", "min(1, sqrt(member months / full credibility member months))",
		domain.Uniform(credibility), nil)

	medShare := decimal.NewFromFloat(0.85)
	if curClaims.Total.Sign() > 0 {
		medShare = curClaims.Medical.Div(curClaims.Total)
	}
	splitByMix := func(total decimal.Decimal) domain.CoverageAmounts {
		med := total.Mul(medShare)
		return domain.CoverageAmounts{Medical: med, Rx: total.Sub(med), Total: total}
	}
	line15 := add(15, "Manual claims PMPM", "manual basis split by experience mix", splitByMix(p.ManualClaimsPMPM), nil)
	add(16, "Manual adjustment factor", "factor", domain.Uniform(p.ManualAdjustment), nil)
	line17 := add(17, "Adjusted manual claims PMPM", "line 15 x line 16", line15.MulFactor(p.ManualAdjustment), nil)

	complement := decimal.NewFromInt(1).Sub(credibility)
	line18 := add(18, "Credibility-blended claims PMPM", "line 14 x line 13 + (1 - line 14) x line 17",
		line13.MulFactor(credibility).Add(line17.MulFactor(complement)), nil)

	add(19, "Administration", "percent of premium", domain.Uniform(p.AdminPct), nil)
	add(20, "Commission", "percent of premium", domain.Uniform(p.CommissionPct), nil)
	add(21, "Premium tax", "percent of premium", domain.Uniform(p.PremiumTaxPct), nil)
	add(22, "Profit and risk", "percent of premium", domain.Uniform(p.ProfitPct), nil)
	totalRetention := p.AdminPct.Add(p.CommissionPct).Add(p.PremiumTaxPct).Add(p.ProfitPct)
	add(23, "Total retention", "lines 19 + 20 + 21 + 22", domain.Uniform(totalRetention), nil)

	grossUp := decimal.NewFromInt(1).Div(decimal.NewFromInt(1).Sub(totalRetention))
	line24 := add(24, "Required premium PMPM", "line 18 / (1 - line 23)", line18.MulFactor(grossUp), nil)

	line25 := add(25, "Current premium PMPM", "supplied or derived from experience",
		splitByMix(p.CurrentPremiumPMPM), nil)
	rateAction := line24.Total.Div(line25.Total).Sub(decimal.NewFromInt(1))
	add(26, "Required rate action", "line 24 / line 25 - 1", domain.Uniform(rateAction), nil)

	annualMM := curMM.Total.Div(decimal.NewFromInt(int64(periods.Current.Months))).Mul(twelve)
	add(27, "Projected annual premium", "line 24 x annualized member months",
		line24.MulFactor(annualMM), nil)
	add(28, "Final required premium PMPM", "line 24 restated", line24, nil)

	result := &domain.AtlasResult{
		Lines:               ledger,
		Periods:             periods,
		Credibility:         credibility,
		RequiredPremiumPMPM: line24.Total,
		CurrentPremiumPMPM:  p.CurrentPremiumPMPM,
		RateAction:          rateAction,
		Warnings:            warnings,
		DataQuality: domain.DataQuality{
			Completeness:         CompletenessFraction(e.Monthly),
			AnnualizationApplied: periods.Current.Months < 12,
			CredibilityScore:     credibility,
		},
	}
	e.Logger.Infof("atlas: required %s PMPM, credibility %s, rate action %s",
		line24.Total.StringFixed(2), credibility.StringFixed(4), rateAction.StringFixed(4))
	return result, nil
}
