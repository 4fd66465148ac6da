package calculation

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/uwbench/renewal/internal/domain"
)

// meridianActionWarningBand flags any single plan whose rate action
// exceeds this magnitude.
var meridianActionWarningBand = decimal.NewFromFloat(0.25)

// MeridianEngine executes the Meridian multi-plan renewal: every plan is
// rated independently (medical and pharmacy sub-ledgers merged into a
// total ledger), then the group answer is the enrollment-weighted
// composite across plans. Plans do not read each other's intermediates,
// so the per-plan step is order-insensitive.
type MeridianEngine struct {
	PlanParameters []domain.MeridianPlanParameters
	PlanData       []domain.MeridianPlanData
	EffectiveDate  time.Time
	Logger         Logger
}

// NewMeridianEngine builds an engine over the group's plan set.
func NewMeridianEngine(params []domain.MeridianPlanParameters, data []domain.MeridianPlanData, effectiveDate time.Time) *MeridianEngine {
	return &MeridianEngine{
		PlanParameters: params,
		PlanData:       data,
		EffectiveDate:  effectiveDate,
		Logger:         NopLogger{},
	}
}

// SetLogger replaces the engine logger; nil restores the no-op logger.
func (e *MeridianEngine) SetLogger(l Logger) {
	if l == nil {
		l = NopLogger{}
	}
	e.Logger = l
}

func (e *MeridianEngine) dataFor(planID string) *domain.MeridianPlanData {
	for i := range e.PlanData {
		if e.PlanData[i].PlanID == planID {
			return &e.PlanData[i]
		}
	}
	return nil
}

// Calculate rates every plan and composites the results. A parameter entry
// with no matching data record fails fast rather than silently skipping
// the plan.
func (e *MeridianEngine) Calculate(ctx context.Context) (*domain.MeridianResult, error) {
	if len(e.PlanParameters) == 0 {
		return nil, &MissingParameterError{Carrier: domain.CarrierMeridian, Name: "plan_parameters"}
	}

	var (
		plans       []domain.MeridianPlanResult
		warnings    []domain.Warning
		allMonthly  []domain.MonthlyClaimsRecord
		annualized  bool
		totalEnroll decimal.Decimal
	)
	for i := range e.PlanParameters {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		pp := &e.PlanParameters[i]
		if pp.Enrollment.Sign() <= 0 {
			return nil, &MissingParameterError{Carrier: domain.CarrierMeridian, Name: fmt.Sprintf("enrollment (plan %s)", pp.PlanID)}
		}
		data := e.dataFor(pp.PlanID)
		if data == nil {
			return nil, &PlanDataNotFoundError{PlanID: pp.PlanID}
		}
		plan, planWarnings, err := e.calculatePlan(pp, data)
		if err != nil {
			return nil, fmt.Errorf("plan %s: %w", pp.PlanID, err)
		}
		plans = append(plans, *plan)
		warnings = append(warnings, planWarnings...)
		allMonthly = append(allMonthly, data.Monthly...)
		annualized = annualized || plan.Periods.Current.Months < 12
		totalEnroll = totalEnroll.Add(pp.Enrollment)
	}

	// Composite: each plan weighs in by its share of group enrollment.
	var compositeCurrent, compositeProjected, weightedCred decimal.Decimal
	summary := domain.MeridianEnrollmentSummary{TotalEnrollment: totalEnroll}
	for i := range plans {
		p := &plans[i]
		weight := p.Enrollment.Div(totalEnroll)
		compositeCurrent = compositeCurrent.Add(p.CurrentPMPM.Mul(weight))
		compositeProjected = compositeProjected.Add(p.RequiredPMPM.Mul(weight))
		weightedCred = weightedCred.Add(e.PlanParameters[i].CredibilityFactor.Mul(weight))

		monthly := p.RequiredPMPM.Mul(p.Enrollment)
		summary.PlanShares = append(summary.PlanShares, domain.MeridianPlanShare{
			PlanID:         p.PlanID,
			Enrollment:     p.Enrollment,
			Share:          weight,
			MonthlyPremium: monthly,
		})
		summary.TotalMonthlyPremium = summary.TotalMonthlyPremium.Add(monthly)
	}
	summary.TotalAnnualPremium = summary.TotalMonthlyPremium.Mul(twelve)
	compositeAction := compositeProjected.Div(compositeCurrent).Sub(decimal.NewFromInt(1))

	result := &domain.MeridianResult{
		Plans:                  plans,
		CompositeCurrentPMPM:   compositeCurrent,
		CompositeProjectedPMPM: compositeProjected,
		CompositeRateAction:    compositeAction,
		Enrollment:             summary,
		Warnings:               warnings,
		DataQuality: domain.DataQuality{
			Completeness:         CompletenessFraction(allMonthly),
			AnnualizationApplied: annualized,
			CredibilityScore:     weightedCred,
		},
	}
	e.Logger.Infof("meridian: %d plans, composite action %s", len(plans), compositeAction.StringFixed(4))
	return result, nil
}

// coverageSubLedger builds the medical or pharmacy sub-ledger: claims,
// pooling, net, PMPM, IBNR completion, then the current/renewal trend
// split.
func coverageSubLedger(label string, claims, pooled, memberMonths, ibnr, trendCurrent, trendRenewal decimal.Decimal) ([]domain.MeridianLine, decimal.Decimal, decimal.Decimal, error) {
	if memberMonths.Sign() <= 0 {
		return nil, decimal.Zero, decimal.Zero, &ZeroMemberMonthsError{PeriodLabel: label}
	}
	dual := func(v decimal.Decimal) (decimal.Decimal, *decimal.Decimal) {
		r := v
		return v, &r
	}
	var lines []domain.MeridianLine
	addDual := func(lbl, formula string, v decimal.Decimal) decimal.Decimal {
		c, r := dual(v)
		lines = append(lines, domain.MeridianLine{Label: lbl, Formula: formula, Current: c, Renewal: r})
		return v
	}

	incurred := addDual(label+" incurred claims", "period total", claims)
	pooledOut := addDual(label+" pooled claims over threshold", "excess over pooling threshold", pooled)
	net := addDual(label+" net claims", "incurred - pooled", incurred.Sub(pooledOut))
	pmpm := addDual(label+" net claims PMPM", "net claims / member months", net.Div(memberMonths))
	completed := addDual(label+" IBNR-completed PMPM", "PMPM x IBNR factor", pmpm.Mul(ibnr))

	cur := completed.Mul(trendCurrent)
	ren := completed.Mul(trendRenewal)
	lines = append(lines, domain.MeridianLine{
		Label: label + " trended PMPM", Formula: "IBNR-completed x trend factor",
		Current: cur, Renewal: &ren,
	})
	return lines, cur, ren, nil
}

func (e *MeridianEngine) calculatePlan(pp *domain.MeridianPlanParameters, data *domain.MeridianPlanData) (*domain.MeridianPlanResult, []domain.Warning, error) {
	if pp.CurrentPremiumPMPM.Sign() <= 0 {
		return nil, nil, &MissingParameterError{Carrier: domain.CarrierMeridian, Name: fmt.Sprintf("current_premium_pmpm (plan %s)", pp.PlanID)}
	}
	retention := pp.RetentionPct.Add(pp.TaxPct)
	if retention.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return nil, nil, fmt.Errorf("%w: retention and tax sum to %s", ErrMissingParameter, retention)
	}

	periods, err := DetermineExperiencePeriods(data.Monthly, e.EffectiveDate)
	if err != nil {
		return nil, nil, err
	}
	warnings, err := ValidateDataQuality(data.Monthly, periods)
	if err != nil {
		return nil, nil, err
	}
	warnings = append(warnings, ValidateLargeClaimantPeriods(data.LargeClaimants, periods)...)

	mm := MemberMonthsForPeriod(data.Monthly, periods.Current)
	claims := ClaimsForPeriod(data.Monthly, periods.Current)
	medPooled := PooledClaimsForPeriod(data.LargeClaimants, periods.Current, pp.MedicalPooling)
	rxPooled := PooledClaimsForPeriod(data.LargeClaimants, periods.Current, pp.RxPooling)

	medLines, medCur, medRen, err := coverageSubLedger("medical",
		claims.Medical, medPooled.Medical, mm.Medical,
		pp.MedicalIBNRFactor, pp.MedicalTrendCurrent, pp.MedicalTrendRenewal)
	if err != nil {
		return nil, nil, err
	}
	rxLines, rxCur, rxRen, err := coverageSubLedger("pharmacy",
		claims.Rx, rxPooled.Rx, mm.Rx,
		pp.RxIBNRFactor, pp.RxTrendCurrent, pp.RxTrendRenewal)
	if err != nil {
		return nil, nil, err
	}

	var total []domain.MeridianLine
	addBoth := func(label, formula string, cur, ren decimal.Decimal) (decimal.Decimal, decimal.Decimal) {
		r := ren
		total = append(total, domain.MeridianLine{Label: label, Formula: formula, Current: cur, Renewal: &r})
		return cur, ren
	}
	addSingle := func(label, formula string, v decimal.Decimal) decimal.Decimal {
		total = append(total, domain.MeridianLine{Label: label, Formula: formula, Current: v})
		return v
	}

	cur, ren := addBoth("Combined medical + pharmacy PMPM", "medical + pharmacy trended", medCur.Add(rxCur), medRen.Add(rxRen))
	cur, ren = addBoth("Age adjusted PMPM", "x age adjustment", cur.Mul(pp.AgeAdjustment), ren.Mul(pp.AgeAdjustment))
	cur, ren = addBoth("Plus pooling charge PMPM", "+ pooling charge", cur.Add(pp.PoolingChargePMPM), ren.Add(pp.PoolingChargePMPM))
	cur, ren = addBoth("Benefit adjusted PMPM", "x benefit adjustment", cur.Mul(pp.BenefitAdjustment), ren.Mul(pp.BenefitAdjustment))

	// Period blend collapses the current/renewal columns; lines from here
	// on carry a single value.
	blended := addSingle("Period-blended PMPM", "current x weight + renewal x weight",
		cur.Mul(pp.CurrentWeight).Add(ren.Mul(pp.RenewalWeight)))
	withCharges := addSingle("Plus member charges PMPM", "+ member charges", blended.Add(pp.MemberChargesPMPM))

	complement := decimal.NewFromInt(1).Sub(pp.CredibilityFactor)
	credBlended := addSingle("Credibility-blended claims PMPM", "credibility x experience + (1 - credibility) x manual",
		withCharges.Mul(pp.CredibilityFactor).Add(pp.ManualClaimsPMPM.Mul(complement)))

	grossed := addSingle("Grossed up for retention and tax PMPM", "/ (1 - retention - tax)",
		credBlended.Div(decimal.NewFromInt(1).Sub(retention)))
	withACA := addSingle("Plus ACA fees PMPM", "+ ACA fees", grossed.Add(pp.ACAFeesPMPM))
	uwAdjusted := addSingle("Underwriter adjusted PMPM", "x underwriter adjustment", withACA.Mul(pp.UnderwriterAdjustment))
	required := addSingle("Pathway-to-savings adjusted PMPM", "x pathway to savings", uwAdjusted.Mul(pp.PathwayToSavings))

	addSingle("Current premium PMPM", "supplied", pp.CurrentPremiumPMPM)
	rateAction := required.Div(pp.CurrentPremiumPMPM).Sub(decimal.NewFromInt(1))
	addSingle("Required rate action", "required / current - 1", rateAction)

	if rateAction.Abs().GreaterThan(meridianActionWarningBand) {
		warnings = append(warnings, domain.Warning{
			Code: domain.WarnLargeRateAction,
			Message: fmt.Sprintf("plan %s rate action %s exceeds the %s review band",
				pp.PlanID, rateAction.StringFixed(4), meridianActionWarningBand.StringFixed(2)),
		})
	}

	return &domain.MeridianPlanResult{
		PlanID:       pp.PlanID,
		Enrollment:   pp.Enrollment,
		MedicalLines: medLines,
		RxLines:      rxLines,
		TotalLines:   total,
		Periods:      periods,
		CurrentPMPM:  pp.CurrentPremiumPMPM,
		RequiredPMPM: required,
		RateAction:   rateAction,
	}, warnings, nil
}
