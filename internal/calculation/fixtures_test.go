package calculation

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/uwbench/renewal/internal/domain"
)

func dec(f float64) decimal.Decimal { return decimal.NewFromFloat(f) }

func decPtr(f float64) *decimal.Decimal {
	d := decimal.NewFromFloat(f)
	return &d
}

func month(year int, m time.Month) time.Time {
	return time.Date(year, m, 1, 0, 0, 0, 0, time.UTC)
}

// monthlySeries builds n months of uniform experience ending with endMonth.
func monthlySeries(n int, endMonth time.Time, memberMonths, medPMPM, rxPMPM float64) []domain.MonthlyClaimsRecord {
	mm := decimal.NewFromFloat(memberMonths)
	med := mm.Mul(decimal.NewFromFloat(medPMPM))
	rx := mm.Mul(decimal.NewFromFloat(rxPMPM))
	records := make([]domain.MonthlyClaimsRecord, 0, n)
	for i := n - 1; i >= 0; i-- {
		records = append(records, domain.MonthlyClaimsRecord{
			Month:               endMonth.AddDate(0, -i, 0),
			MedicalMemberMonths: mm,
			RxMemberMonths:      mm,
			TotalMemberMonths:   mm,
			MedicalClaims:       med,
			RxClaims:            rx,
			TotalClaims:         med.Add(rx),
		})
	}
	return records
}

func northfieldTestParams() domain.NorthfieldParameters {
	return domain.NorthfieldParameters{
		PoolingThreshold:        decimal.NewFromInt(125000),
		PoolingFactor:           dec(0.156),
		MedicalTrend:            dec(0.09),
		RxTrend:                 dec(0.11),
		ProjectionMonthsCurrent: 20,
		ProjectionMonthsPrior:   28,
		UnderwritingAdjustment:  decimal.NewFromInt(1),
		PlanChangeAdjustment:    decimal.NewFromInt(1),
		MemberChangeAdjustment:  decimal.NewFromInt(1),
		ExperienceWeights:       []decimal.Decimal{dec(0.70), dec(0.30)},
		Credibility:             &domain.CredibilityWeights{Experience: dec(0.60), Manual: dec(0.40)},
		ManualBasePMPM:          dec(550),
		AgeSexFactor:            decimal.NewFromInt(1),
		ManualAdjustment:        decimal.NewFromInt(1),
		OtherAdjustment:         decimal.NewFromInt(1),
		ReformItemsPMPM:         dec(5),
		CommissionPMPM:          dec(10),
		FeesPMPM:                dec(5),
		AdminRetentionPct:       dec(0.07),
		TaxRetentionPct:         dec(0.025),
		OtherRetentionPct:       dec(0.02),
		CurrentPremiumPMPM:      dec(600),
	}
}

func cascadeTestParams() domain.CascadeParameters {
	return domain.CascadeParameters{
		PoolingThreshold:      decimal.NewFromInt(50000),
		DemographicAdjustment: decimal.NewFromInt(1),
		AnnualTrendFactor:     dec(1.10),
		MidpointMonths:        decimal.NewFromInt(18),
		ManualClaimCostPMPM:   dec(450),
		ExperienceWeight:      dec(0.60),
		ManualWeight:          dec(0.40),
		CorridorPct:           dec(0.075),
		AdminPct:              dec(0.10),
		CommissionPct:         dec(0.04),
		PremiumTaxPct:         dec(0.025),
		ProfitPct:             dec(0.05),
		OtherPct:              dec(0.02),
	}
}

func atlasTestParams() domain.AtlasParameters {
	return domain.AtlasParameters{
		PoolingThreshold:            decimal.NewFromInt(175000),
		PoolingFactor:               dec(0.14),
		DeductibleSuppression:       dec(0.997),
		MedicalTrend:                dec(0.09),
		RxTrend:                     dec(0.11),
		TrendMonthsCurrent:          18,
		TrendMonthsPrior:            30,
		CurrentWeight:               dec(0.75),
		PriorWeight:                 dec(0.25),
		FullCredibilityMemberMonths: decimal.NewFromInt(48000),
		ManualClaimsPMPM:            dec(520),
		ManualAdjustment:            decimal.NewFromInt(1),
		AdminPct:                    dec(0.08),
		CommissionPct:               dec(0.03),
		PremiumTaxPct:               dec(0.02),
		ProfitPct:                   dec(0.015),
		CurrentPremiumPMPM:          dec(580),
	}
}

func meridianTestPlanParams(planID string, enrollment float64) domain.MeridianPlanParameters {
	return domain.MeridianPlanParameters{
		PlanID:                planID,
		Enrollment:            dec(enrollment),
		MedicalPooling:        decimal.NewFromInt(100000),
		RxPooling:             decimal.NewFromInt(100000),
		MedicalIBNRFactor:     dec(1.02),
		RxIBNRFactor:          dec(1.005),
		MedicalTrendCurrent:   dec(1.05),
		MedicalTrendRenewal:   dec(1.12),
		RxTrendCurrent:        dec(1.06),
		RxTrendRenewal:        dec(1.15),
		AgeAdjustment:         decimal.NewFromInt(1),
		BenefitAdjustment:     decimal.NewFromInt(1),
		PoolingChargePMPM:     dec(12),
		CurrentWeight:         dec(0.5),
		RenewalWeight:         dec(0.5),
		ManualClaimsPMPM:      dec(480),
		CredibilityFactor:     dec(0.7),
		RetentionPct:          dec(0.11),
		TaxPct:                dec(0.025),
		ACAFeesPMPM:           dec(3),
		UnderwriterAdjustment: decimal.NewFromInt(1),
		PathwayToSavings:      decimal.NewFromInt(1),
		CurrentPremiumPMPM:    dec(560),
	}
}
