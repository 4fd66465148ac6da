package calculation

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/uwbench/renewal/internal/domain"
)

// MinimumMonths is the smallest claims series any carrier will rate.
const MinimumMonths = 4

var twelve = decimal.NewFromInt(12)

func firstOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

func endOfMonth(t time.Time) time.Time {
	return firstOfMonth(t).AddDate(0, 1, 0).AddDate(0, 0, -1)
}

// DetermineExperiencePeriods derives the current (and, with at least 24
// months of data, prior) experience periods from a monthly claims series.
// With 24+ months the current period is the most recent 12 and the prior
// period the 12 preceding it; otherwise the current period spans all
// available months and no prior period exists. The renewal effective date
// is accepted for interface completeness; period boundaries depend only on
// the data.
func DetermineExperiencePeriods(records []domain.MonthlyClaimsRecord, _ time.Time) (domain.ExperiencePeriods, error) {
	months := distinctMonthsDescending(records)
	if len(months) < MinimumMonths {
		return domain.ExperiencePeriods{}, &InsufficientDataError{
			MonthsAvailable: len(months),
			MonthsRequired:  MinimumMonths,
		}
	}

	if len(months) >= 24 {
		current := domain.Period{
			Start:  months[11],
			End:    endOfMonth(months[0]),
			Months: 12,
		}
		prior := domain.Period{
			Start:  months[23],
			End:    endOfMonth(months[12]),
			Months: 12,
		}
		return domain.ExperiencePeriods{Current: current, Prior: &prior}, nil
	}

	current := domain.Period{
		Start:  months[len(months)-1],
		End:    endOfMonth(months[0]),
		Months: len(months),
	}
	return domain.ExperiencePeriods{Current: current}, nil
}

// distinctMonthsDescending normalizes record months to the first of the
// month, removes duplicates, and sorts most recent first.
func distinctMonthsDescending(records []domain.MonthlyClaimsRecord) []time.Time {
	seen := make(map[time.Time]struct{}, len(records))
	months := make([]time.Time, 0, len(records))
	for _, r := range records {
		m := firstOfMonth(r.Month)
		if _, ok := seen[m]; ok {
			continue
		}
		seen[m] = struct{}{}
		months = append(months, m)
	}
	sort.Slice(months, func(i, j int) bool { return months[i].After(months[j]) })
	return months
}

// MemberMonthsForPeriod sums medical, rx and total member-months over
// records whose month falls within the period.
func MemberMonthsForPeriod(records []domain.MonthlyClaimsRecord, period domain.Period) domain.CoverageAmounts {
	var out domain.CoverageAmounts
	for _, r := range records {
		if period.Contains(firstOfMonth(r.Month)) {
			out.Medical = out.Medical.Add(r.MedicalMemberMonths)
			out.Rx = out.Rx.Add(r.RxMemberMonths)
			out.Total = out.Total.Add(r.TotalMemberMonths)
		}
	}
	return out
}

// ClaimsForPeriod sums incurred claims over records whose month falls
// within the period.
func ClaimsForPeriod(records []domain.MonthlyClaimsRecord, period domain.Period) domain.CoverageAmounts {
	var out domain.CoverageAmounts
	for _, r := range records {
		if period.Contains(firstOfMonth(r.Month)) {
			out.Medical = out.Medical.Add(r.MedicalClaims)
			out.Rx = out.Rx.Add(r.RxClaims)
			out.Total = out.Total.Add(r.TotalClaims)
		}
	}
	return out
}

// PooledClaimsForPeriod sums each in-period claimant's excess over the
// pooling threshold. A claimant with its own medical/rx split has the
// excess allocated proportionally; without one the full excess is
// attributed to medical.
func PooledClaimsForPeriod(claimants []domain.LargeClaimant, period domain.Period, threshold decimal.Decimal) domain.CoverageAmounts {
	var out domain.CoverageAmounts
	for i := range claimants {
		lc := &claimants[i]
		if !period.Contains(lc.IncurredDate) {
			continue
		}
		excess := lc.TotalAmount.Sub(threshold)
		if excess.Sign() <= 0 {
			continue
		}
		if lc.HasSplit() && lc.TotalAmount.Sign() > 0 {
			medShare := lc.MedicalAmount.Div(lc.TotalAmount)
			med := excess.Mul(medShare)
			out.Medical = out.Medical.Add(med)
			out.Rx = out.Rx.Add(excess.Sub(med))
		} else {
			out.Medical = out.Medical.Add(excess)
		}
		out.Total = out.Total.Add(excess)
	}
	return out
}

// AnnualizedExperience is the result of scaling a sub-year period up to a
// full-year equivalent.
type AnnualizedExperience struct {
	Claims       domain.CoverageAmounts
	MemberMonths domain.CoverageAmounts
}

// AnnualizeClaims scales summed claims and member-months by
// 12/actualMonths. Annualization only applies below a full year; twelve or
// more months is an error, not a no-op.
func AnnualizeClaims(records []domain.MonthlyClaimsRecord, actualMonths int) (AnnualizedExperience, error) {
	if actualMonths >= 12 {
		return AnnualizedExperience{}, fmt.Errorf("%w: got %d months", ErrAnnualizeFullYear, actualMonths)
	}
	if actualMonths <= 0 {
		return AnnualizedExperience{}, fmt.Errorf("%w: got %d months", ErrAnnualizeFullYear, actualMonths)
	}
	factor := twelve.Div(decimal.NewFromInt(int64(actualMonths)))

	var claims, mm domain.CoverageAmounts
	for _, r := range records {
		claims.Medical = claims.Medical.Add(r.MedicalClaims)
		claims.Rx = claims.Rx.Add(r.RxClaims)
		claims.Total = claims.Total.Add(r.TotalClaims)
		mm.Medical = mm.Medical.Add(r.MedicalMemberMonths)
		mm.Rx = mm.Rx.Add(r.RxMemberMonths)
		mm.Total = mm.Total.Add(r.TotalMemberMonths)
	}
	return AnnualizedExperience{
		Claims:       claims.MulFactor(factor),
		MemberMonths: mm.MulFactor(factor),
	}, nil
}

// ValidateLargeClaimantPeriods flags claimants whose incurred date falls
// outside both experience periods. Such rows usually mean data entered for
// the wrong experience window; they are warnings, never fatal.
func ValidateLargeClaimantPeriods(claimants []domain.LargeClaimant, periods domain.ExperiencePeriods) []domain.Warning {
	var warnings []domain.Warning
	for i := range claimants {
		lc := &claimants[i]
		if periods.Current.Contains(lc.IncurredDate) {
			continue
		}
		if periods.Prior != nil && periods.Prior.Contains(lc.IncurredDate) {
			continue
		}
		warnings = append(warnings, domain.Warning{
			Code: domain.WarnClaimantOutsidePeriods,
			Message: fmt.Sprintf("claimant %s incurred %s outside current and prior experience periods",
				lc.ClaimantID, lc.IncurredDate.Format("2006-01-02")),
		})
	}
	return warnings
}

// ValidateDataQuality aggregates non-fatal findings about the claims
// series. A month with zero member-months is the one fatal case: it makes
// PMPM division undefined for any period containing it.
func ValidateDataQuality(records []domain.MonthlyClaimsRecord, periods domain.ExperiencePeriods) ([]domain.Warning, error) {
	var warnings []domain.Warning

	if periods.Current.Months < 12 {
		warnings = append(warnings, domain.Warning{
			Code:    domain.WarnLimitedPeriod,
			Message: fmt.Sprintf("only %d months of experience; results are based on a limited period", periods.Current.Months),
		})
	}
	if periods.Current.Months < 6 {
		warnings = append(warnings, domain.Warning{
			Code:    domain.WarnVeryLimitedPeriod,
			Message: fmt.Sprintf("only %d months of experience; results carry very limited credibility", periods.Current.Months),
		})
	}
	if periods.Prior == nil {
		warnings = append(warnings, domain.Warning{
			Code:    domain.WarnNoPriorPeriod,
			Message: "fewer than 24 months of data; no prior experience period",
		})
	}

	for _, r := range records {
		label := firstOfMonth(r.Month).Format("2006-01")
		if r.TotalMemberMonths.Sign() <= 0 {
			return warnings, &ZeroMemberMonthsError{PeriodLabel: label}
		}
		if r.TotalClaims.Sign() == 0 {
			warnings = append(warnings, domain.Warning{
				Code:    domain.WarnMonthMissingClaims,
				Message: fmt.Sprintf("month %s has no incurred claims", label),
			})
		}
	}
	return warnings, nil
}

// CompletenessFraction is the share of months carrying both claims and
// member-months. Feeds the data-quality summary on every result.
func CompletenessFraction(records []domain.MonthlyClaimsRecord) decimal.Decimal {
	if len(records) == 0 {
		return decimal.Zero
	}
	complete := 0
	for _, r := range records {
		if r.TotalClaims.Sign() > 0 && r.TotalMemberMonths.Sign() > 0 {
			complete++
		}
	}
	return decimal.NewFromInt(int64(complete)).Div(decimal.NewFromInt(int64(len(records))))
}
