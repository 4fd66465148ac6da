package calculation

import (
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"
	"github.com/uwbench/renewal/internal/domain"
)

// Cascade loading defaults, as fractions of blended claim cost.
var (
	cascadeDefaultAdminPct      = decimal.NewFromFloat(0.10)
	cascadeDefaultCommissionPct = decimal.NewFromFloat(0.04)
	cascadeDefaultTaxPct        = decimal.NewFromFloat(0.025)
	cascadeDefaultProfitPct     = decimal.NewFromFloat(0.05)
	cascadeDefaultOtherPct      = decimal.NewFromFloat(0.02)

	// cascadeAddBackShare estimates the large-claim add-back when the
	// caller does not supply one: 30% of pooled claims.
	cascadeAddBackShare = decimal.NewFromFloat(0.30)

	// cascadePremiumMarkup estimates current premium at 122% of the
	// experience claim cost when none is supplied.
	cascadePremiumMarkup = decimal.NewFromFloat(1.22)
)

// CascadeEngine executes the Cascade worksheet: a single current-period
// calculation where every line carries both a PMPM and an annualized
// value. Pooling uses the lowest threshold of the four carriers (~$50K),
// and the claims-fluctuation corridor is evaluated informationally only.
type CascadeEngine struct {
	Monthly       []domain.MonthlyClaimsRecord
	Claimants     []domain.LargeClaimant
	EffectiveDate time.Time
	Params        domain.CascadeParameters
	Logger        Logger
}

// NewCascadeEngine builds an engine over one group's full input.
func NewCascadeEngine(monthly []domain.MonthlyClaimsRecord, claimants []domain.LargeClaimant, effectiveDate time.Time, params domain.CascadeParameters) *CascadeEngine {
	return &CascadeEngine{
		Monthly:       monthly,
		Claimants:     claimants,
		EffectiveDate: effectiveDate,
		Params:        params,
		Logger:        NopLogger{},
	}
}

// SetLogger replaces the engine logger; nil restores the no-op logger.
func (e *CascadeEngine) SetLogger(l Logger) {
	if l == nil {
		l = NopLogger{}
	}
	e.Logger = l
}

// Calculate runs the dual-column ledger over the current period.
func (e *CascadeEngine) Calculate() (*domain.CascadeResult, error) {
	if distinct := len(distinctMonthsDescending(e.Monthly)); distinct < MinimumMonths {
		return nil, fmt.Errorf("cascade requires at least %d months of claims data, got %d: %w",
			MinimumMonths, distinct, ErrInsufficientData)
	}

	periods, err := DetermineExperiencePeriods(e.Monthly, e.EffectiveDate)
	if err != nil {
		return nil, err
	}
	// Cascade rates on the current period only; a prior period, when
	// present, is simply not consulted.
	period := periods.Current

	warnings, err := ValidateDataQuality(e.Monthly, domain.ExperiencePeriods{Current: period})
	if err != nil {
		return nil, err
	}
	warnings = append(warnings, ValidateLargeClaimantPeriods(e.Claimants, domain.ExperiencePeriods{Current: period})...)

	mm := MemberMonthsForPeriod(e.Monthly, period)
	if mm.Total.Sign() <= 0 {
		return nil, &ZeroMemberMonthsError{PeriodLabel: "current"}
	}
	claims := ClaimsForPeriod(e.Monthly, period)
	pooled := PooledClaimsForPeriod(e.Claimants, period, e.Params.PoolingThreshold)

	p := &e.Params
	projectedMM := decimal.Zero
	if p.ProjectedMemberMonths != nil {
		projectedMM = *p.ProjectedMemberMonths
	} else {
		projectedMM = mm.Total.Div(decimal.NewFromInt(int64(period.Months))).Mul(twelve)
	}

	ledger := make([]domain.DualLine, 0, 20)
	amount := func(n int, label, formula string, pmpm decimal.Decimal) decimal.Decimal {
		ledger = append(ledger, domain.DualLine{
			Number: n, Label: label, Formula: formula,
			PMPM: pmpm, Annual: pmpm.Mul(projectedMM),
		})
		return pmpm
	}
	factor := func(n int, label, formula string, v decimal.Decimal) decimal.Decimal {
		ledger = append(ledger, domain.DualLine{
			Number: n, Label: label, Formula: formula,
			PMPM: v, Annual: v,
		})
		return v
	}

	line1 := amount(1, "Total paid claims PMPM", "claims / member months", claims.Total.Div(mm.Total))
	line2 := amount(2, "Pooled claims over threshold PMPM", "excess over threshold / member months", pooled.Total.Div(mm.Total))
	line3 := amount(3, "Experience claim cost PMPM", "line 1 - line 2", line1.Sub(line2))
	factor(4, "Demographic adjustment", "factor", p.DemographicAdjustment)
	line5 := amount(5, "Adjusted claim cost PMPM", "line 3 x line 4", line3.Mul(p.DemographicAdjustment))

	trendFactor := decimal.NewFromFloat(math.Pow(
		p.AnnualTrendFactor.InexactFloat64(),
		p.MidpointMonths.InexactFloat64()/12.0,
	))
	factor(6, "Trend factor", "annual trend ^ (midpoint months / 12)", trendFactor)
	line7 := amount(7, "Trended claim cost PMPM", "line 5 x line 6", line5.Mul(trendFactor))

	addBack := pooled.Total.Div(mm.Total).Mul(cascadeAddBackShare)
	addBackFormula := "30% of pooled claims PMPM"
	if p.LargeClaimAddBackPMPM != nil {
		addBack = *p.LargeClaimAddBackPMPM
		addBackFormula = "supplied"
	}
	line8 := amount(8, "Large-claim add-back PMPM", addBackFormula, addBack)
	line9 := amount(9, "Total projected claims PMPM", "line 7 + line 8", line7.Add(line8))

	line10 := amount(10, "Manual claim cost PMPM", "manual basis", p.ManualClaimCostPMPM)
	line11 := amount(11, "Blended claim cost PMPM", "line 9 x experience weight + line 10 x manual weight",
		line9.Mul(p.ExperienceWeight).Add(line10.Mul(p.ManualWeight)))

	// Claims-fluctuation corridor: informational in this version. The band
	// is checked and reported but never alters the premium.
	factor(12, "Claims-fluctuation corridor", "informational band", p.CorridorPct)
	if line9.Sign() > 0 && p.CorridorPct.Sign() > 0 {
		deviation := line11.Sub(line9).Div(line9).Abs()
		if deviation.GreaterThan(p.CorridorPct) {
			warnings = append(warnings, domain.Warning{
				Code: domain.WarnCorridorExceeded,
				Message: fmt.Sprintf("blended claim cost deviates %s from projected claims, outside the %s corridor",
					deviation.StringFixed(4), p.CorridorPct.StringFixed(4)),
			})
		}
	}

	line13 := amount(13, "Administration PMPM", "percent of blended claims", line11.Mul(p.AdminPct))
	line14 := amount(14, "Commissions PMPM", "percent of blended claims", line11.Mul(p.CommissionPct))
	line15 := amount(15, "Premium tax PMPM", "percent of blended claims", line11.Mul(p.PremiumTaxPct))
	line16 := amount(16, "Profit and contingency PMPM", "percent of blended claims", line11.Mul(p.ProfitPct))
	line17 := amount(17, "Other expenses PMPM", "percent of blended claims", line11.Mul(p.OtherPct))

	line18 := amount(18, "Total required premium PMPM", "line 11 + lines 13-17",
		line11.Add(line13).Add(line14).Add(line15).Add(line16).Add(line17))

	currentPremium := line3.Mul(cascadePremiumMarkup)
	currentFormula := "122% of experience claim cost"
	if p.CurrentPremiumPMPM != nil {
		currentPremium = *p.CurrentPremiumPMPM
		currentFormula = "supplied"
	}
	line19 := amount(19, "Current premium PMPM", currentFormula, currentPremium)
	if line19.Sign() <= 0 {
		return nil, &MissingParameterError{Carrier: domain.CarrierCascade, Name: "current_premium_pmpm"}
	}
	rateChange := line18.Sub(line19).Div(line19)
	factor(20, "Required rate change", "(line 18 - line 19) / line 19", rateChange)

	result := &domain.CascadeResult{
		Lines:                 ledger,
		Period:                period,
		ProjectedMemberMonths: projectedMM,
		RequiredPremiumPMPM:   line18,
		RequiredPremiumAnnual: line18.Mul(projectedMM),
		CurrentPremiumPMPM:    line19,
		RequiredRateChange:    rateChange,
		Warnings:              warnings,
		DataQuality: domain.DataQuality{
			Completeness:         CompletenessFraction(e.Monthly),
			AnnualizationApplied: period.Months < 12,
			CredibilityScore:     p.ExperienceWeight,
		},
	}
	e.Logger.Infof("cascade: required %s PMPM over %d months, rate change %s",
		line18.StringFixed(2), period.Months, rateChange.StringFixed(4))
	return result, nil
}
