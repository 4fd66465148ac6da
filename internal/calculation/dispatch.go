package calculation

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/uwbench/renewal/internal/domain"
)

// Dispatcher normalizes raw renewal input into fully resolved carrier
// parameters, runs the matching engine and flattens the native ledger
// into the carrier-agnostic envelope.
type Dispatcher struct {
	Logger Logger
}

// NewDispatcher builds a dispatcher with a no-op logger.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{Logger: NopLogger{}}
}

// SetLogger replaces the dispatcher logger; nil restores the no-op logger.
func (d *Dispatcher) SetLogger(l Logger) {
	if l == nil {
		l = NopLogger{}
	}
	d.Logger = l
}

// Dispatch runs one renewal calculation end to end. Parameter resolution
// happens here, in two stages: shared quantities are summarized from the
// raw experience, then each carrier's explicit defaulting rules fill the
// gaps the caller left open. Engines receive complete parameters only.
func (d *Dispatcher) Dispatch(ctx context.Context, input *domain.RenewalInput) (*domain.RenewalResult, error) {
	if input == nil {
		return nil, fmt.Errorf("nil input: %w", ErrMissingParameter)
	}
	if !input.Carrier.Valid() {
		return nil, &UnsupportedCarrierError{Carrier: input.Carrier}
	}

	summary := SummarizeExperience(input.Monthly)
	d.Logger.Debugf("dispatch: group %s carrier %s, %d months, %s member-months",
		input.GroupID, input.Carrier, summary.Months, summary.TotalMemberMonths)

	result := &domain.RenewalResult{
		RunID:   uuid.NewString(),
		GroupID: input.GroupID,
		Carrier: input.Carrier,
	}

	var err error
	switch input.Carrier {
	case domain.CarrierNorthfield:
		err = d.runNorthfield(input, summary, result)
	case domain.CarrierMeridian:
		err = d.runMeridian(ctx, input, summary, result)
	case domain.CarrierCascade:
		err = d.runCascade(input, summary, result)
	case domain.CarrierAtlas:
		err = d.runAtlas(input, summary, result)
	}
	if err != nil {
		return nil, fmt.Errorf("%s calculation failed: %w", input.Carrier, err)
	}

	d.Logger.Infof("dispatch: run %s complete, required rate change %s",
		result.RunID, result.RequiredRateChange.StringFixed(4))
	return result, nil
}

func (d *Dispatcher) runNorthfield(input *domain.RenewalInput, summary ExperienceSummary, out *domain.RenewalResult) error {
	params := ResolveNorthfield(input.Northfield, input.ManualRates, summary)
	engine := NewNorthfieldEngine(input.Monthly, input.LargeClaimants, input.EffectiveDate, params)
	engine.SetLogger(d.Logger)
	r, err := engine.Calculate()
	if err != nil {
		return err
	}

	out.CurrentPMPM = r.CurrentPremiumPMPM
	out.ProjectedPMPM = r.FinalPremiumPMPM.Total
	out.RequiredRateChange = r.CalculatedRateAction
	out.ProposedRateChange = r.SuggestedRateAction
	out.Warnings = r.Warnings
	out.Periods = r.Periods
	out.DataQuality = r.DataQuality
	out.Detailed.Northfield = r
	out.Steps = northfieldSteps(r)
	return nil
}

// northfieldSteps lifts the headline rows of the 39-line ledger into the
// flattened generic view.
func northfieldSteps(r *domain.NorthfieldResult) []domain.CalculationStep {
	steps := make([]domain.CalculationStep, 0, 8)
	add := func(id domain.LineID, label string) {
		if line := r.Line(id); line != nil {
			steps = append(steps, domain.CalculationStep{Label: label, Value: line.Current.Total})
		}
	}
	add(domain.LineM, "Expected claims PMPM")
	add(domain.LineR, "Experience premium PMPM")
	add(domain.LineV, "Manual premium PMPM")
	add(domain.LineY, "Credibility-blended premium PMPM")
	add(domain.LineAE, "Required premium PMPM")
	add(domain.LineAF, "Current premium PMPM")
	add(domain.LineAG, "Calculated rate action")
	add(domain.LineAL, "Projected loss ratio")
	return steps
}

func (d *Dispatcher) runMeridian(ctx context.Context, input *domain.RenewalInput, summary ExperienceSummary, out *domain.RenewalResult) error {
	if input.Meridian == nil || len(input.Meridian.PlanParameters) == 0 {
		return &MissingParameterError{Carrier: domain.CarrierMeridian, Name: "plan_parameters"}
	}

	// Meridian experience arrives per plan; when the group-level series is
	// empty, the shared summary is rebuilt over the union of plan data so
	// retention tiering still sees the whole group.
	if len(input.Monthly) == 0 {
		var all []domain.MonthlyClaimsRecord
		for _, pd := range input.Meridian.PlanData {
			all = append(all, pd.Monthly...)
		}
		summary = SummarizeExperience(all)
	}

	params := make([]domain.MeridianPlanParameters, 0, len(input.Meridian.PlanParameters))
	for _, o := range input.Meridian.PlanParameters {
		var data *domain.MeridianPlanData
		for i := range input.Meridian.PlanData {
			if input.Meridian.PlanData[i].PlanID == o.PlanID {
				data = &input.Meridian.PlanData[i]
				break
			}
		}
		params = append(params, ResolveMeridianPlan(o, data, input.ManualRates, summary))
	}

	engine := NewMeridianEngine(params, input.Meridian.PlanData, input.EffectiveDate)
	engine.SetLogger(d.Logger)
	r, err := engine.Calculate(ctx)
	if err != nil {
		return err
	}

	out.CurrentPMPM = r.CompositeCurrentPMPM
	out.ProjectedPMPM = r.CompositeProjectedPMPM
	out.RequiredRateChange = r.CompositeRateAction
	out.ProposedRateChange = r.CompositeRateAction
	out.Warnings = r.Warnings
	out.DataQuality = r.DataQuality
	if len(r.Plans) > 0 {
		out.Periods = r.Plans[0].Periods
	}
	out.Detailed.Meridian = r

	steps := make([]domain.CalculationStep, 0, len(r.Plans)+3)
	for _, p := range r.Plans {
		steps = append(steps, domain.CalculationStep{
			Label: fmt.Sprintf("Plan %s rate action", p.PlanID),
			Value: p.RateAction,
		})
	}
	steps = append(steps,
		domain.CalculationStep{Label: "Composite current PMPM", Value: r.CompositeCurrentPMPM},
		domain.CalculationStep{Label: "Composite required PMPM", Value: r.CompositeProjectedPMPM},
		domain.CalculationStep{Label: "Composite rate action", Value: r.CompositeRateAction},
	)
	out.Steps = steps
	return nil
}

func (d *Dispatcher) runCascade(input *domain.RenewalInput, summary ExperienceSummary, out *domain.RenewalResult) error {
	params := ResolveCascade(input.Cascade, input.ManualRates, summary)
	engine := NewCascadeEngine(input.Monthly, input.LargeClaimants, input.EffectiveDate, params)
	engine.SetLogger(d.Logger)
	r, err := engine.Calculate()
	if err != nil {
		return err
	}

	out.CurrentPMPM = r.CurrentPremiumPMPM
	out.ProjectedPMPM = r.RequiredPremiumPMPM
	out.RequiredRateChange = r.RequiredRateChange
	out.ProposedRateChange = r.RequiredRateChange
	out.Warnings = r.Warnings
	out.Periods = domain.ExperiencePeriods{Current: r.Period}
	out.DataQuality = r.DataQuality
	out.Detailed.Cascade = r
	out.Steps = cascadeSteps(r)
	return nil
}

func cascadeSteps(r *domain.CascadeResult) []domain.CalculationStep {
	steps := make([]domain.CalculationStep, 0, 6)
	add := func(n int, label string) {
		if line := r.LineByNumber(n); line != nil {
			steps = append(steps, domain.CalculationStep{Label: label, Value: line.PMPM})
		}
	}
	add(3, "Experience claim cost PMPM")
	add(9, "Projected claims PMPM")
	add(11, "Blended claim cost PMPM")
	add(18, "Required premium PMPM")
	add(19, "Current premium PMPM")
	add(20, "Required rate change")
	return steps
}

func (d *Dispatcher) runAtlas(input *domain.RenewalInput, summary ExperienceSummary, out *domain.RenewalResult) error {
	params := ResolveAtlas(input.Atlas, input.ManualRates, summary)
	engine := NewAtlasEngine(input.Monthly, input.LargeClaimants, input.EffectiveDate, params)
	engine.SetLogger(d.Logger)
	r, err := engine.Calculate()
	if err != nil {
		return err
	}

	out.CurrentPMPM = r.CurrentPremiumPMPM
	out.ProjectedPMPM = r.RequiredPremiumPMPM
	out.RequiredRateChange = r.RateAction
	out.ProposedRateChange = r.RateAction
	out.Warnings = r.Warnings
	out.Periods = r.Periods
	out.DataQuality = r.DataQuality
	out.Detailed.Atlas = r
	out.Steps = atlasSteps(r)
	return nil
}

func atlasSteps(r *domain.AtlasResult) []domain.CalculationStep {
	steps := make([]domain.CalculationStep, 0, 6)
	add := func(n string, label string) {
		if line := r.Line(domain.LineID(n)); line != nil {
			steps = append(steps, domain.CalculationStep{Label: label, Value: line.Current.Total})
		}
	}
	add("11", "Blended experience PMPM")
	add("18", "Credibility-weighted claims PMPM")
	add("24", "Required premium PMPM")
	add("25", "Current premium PMPM")
	add("26", "Rate action")
	steps = append(steps, domain.CalculationStep{Label: "Credibility", Value: r.Credibility})
	return steps
}
