package output

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/uwbench/renewal/internal/domain"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	sectionStyle = lipgloss.NewStyle().Bold(true).Underline(true)
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	valueStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
)

// ConsoleFormatter renders a renewal result as a styled text report.
type ConsoleFormatter struct{}

func (f *ConsoleFormatter) Name() string { return "console" }

func (f *ConsoleFormatter) FormatRenewal(result *domain.RenewalResult) (string, error) {
	if result == nil {
		return "", fmt.Errorf("result cannot be nil")
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("RENEWAL PROJECTION - GROUP %s (%s)", result.GroupID, strings.ToUpper(string(result.Carrier)))))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("Run: %s\n\n", result.RunID))

	b.WriteString(sectionStyle.Render("SUMMARY"))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("  Current premium PMPM:    %s\n", FormatCurrency(result.CurrentPMPM)))
	b.WriteString(fmt.Sprintf("  Required premium PMPM:   %s\n", FormatCurrency(result.ProjectedPMPM)))
	b.WriteString(fmt.Sprintf("  Required rate change:    %s\n", valueStyle.Render(FormatPercent(result.RequiredRateChange))))
	if !result.ProposedRateChange.Equal(result.RequiredRateChange) {
		b.WriteString(fmt.Sprintf("  Proposed rate change:    %s\n", valueStyle.Render(FormatPercent(result.ProposedRateChange))))
	}
	b.WriteString("\n")

	b.WriteString(sectionStyle.Render("EXPERIENCE PERIODS"))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("  Current: %s to %s (%d months)\n",
		result.Periods.Current.Start.Format("2006-01"),
		result.Periods.Current.End.Format("2006-01"),
		result.Periods.Current.Months))
	if result.Periods.HasPrior() {
		b.WriteString(fmt.Sprintf("  Prior:   %s to %s (%d months)\n",
			result.Periods.Prior.Start.Format("2006-01"),
			result.Periods.Prior.End.Format("2006-01"),
			result.Periods.Prior.Months))
	}
	b.WriteString("\n")

	if len(result.Steps) > 0 {
		b.WriteString(sectionStyle.Render("CALCULATION STEPS"))
		b.WriteString("\n")
		width := 0
		for _, s := range result.Steps {
			if len(s.Label) > width {
				width = len(s.Label)
			}
		}
		for _, s := range result.Steps {
			b.WriteString(fmt.Sprintf("  %-*s  %s\n", width, s.Label, s.Value.StringFixed(4)))
		}
		b.WriteString("\n")
	}

	f.writeDetail(&b, result)

	b.WriteString(sectionStyle.Render("DATA QUALITY"))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("  Completeness:          %s\n", FormatPercent(result.DataQuality.Completeness)))
	b.WriteString(fmt.Sprintf("  Credibility score:     %s\n", FormatFactor(result.DataQuality.CredibilityScore)))
	b.WriteString(fmt.Sprintf("  Annualization applied: %t\n", result.DataQuality.AnnualizationApplied))

	if len(result.Warnings) > 0 {
		b.WriteString("\n")
		b.WriteString(sectionStyle.Render("WARNINGS"))
		b.WriteString("\n")
		for _, w := range result.Warnings {
			b.WriteString(warnStyle.Render(fmt.Sprintf("  [%s] %s", w.Code, w.Message)))
			b.WriteString("\n")
		}
	}

	return b.String(), nil
}

// writeDetail renders the carrier-native ledger when one is attached.
func (f *ConsoleFormatter) writeDetail(b *strings.Builder, result *domain.RenewalResult) {
	switch {
	case result.Detailed.Northfield != nil:
		writeCoverageLedger(b, "WORKSHEET", result.Detailed.Northfield.Lines)
	case result.Detailed.Atlas != nil:
		writeCoverageLedger(b, "WORKSHEET", result.Detailed.Atlas.Lines)
	case result.Detailed.Cascade != nil:
		b.WriteString(sectionStyle.Render("WORKSHEET"))
		b.WriteString("\n")
		b.WriteString(fmt.Sprintf("  %-4s %-42s %14s %16s\n", "Line", "Description", "PMPM", "Annual"))
		for _, line := range result.Detailed.Cascade.Lines {
			b.WriteString(fmt.Sprintf("  %-4d %-42s %14s %16s\n",
				line.Number, line.Label, line.PMPM.StringFixed(2), line.Annual.StringFixed(2)))
		}
		b.WriteString("\n")
	case result.Detailed.Meridian != nil:
		writeMeridianDetail(b, result.Detailed.Meridian)
	}
}

func writeCoverageLedger(b *strings.Builder, title string, lines []domain.CalculationLine) {
	b.WriteString(sectionStyle.Render(title))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("  %-4s %-42s %12s %12s %12s %12s\n",
		"Line", "Description", "Medical", "Rx", "Total", "Prior"))
	for _, line := range lines {
		prior := "-"
		if line.Prior != nil {
			prior = line.Prior.Total.StringFixed(2)
		}
		b.WriteString(fmt.Sprintf("  %-4s %-42s %12s %12s %12s %12s\n",
			line.ID, line.Label,
			line.Current.Medical.StringFixed(2),
			line.Current.Rx.StringFixed(2),
			line.Current.Total.StringFixed(2),
			prior))
	}
	b.WriteString("\n")
}

func writeMeridianDetail(b *strings.Builder, r *domain.MeridianResult) {
	for _, plan := range r.Plans {
		b.WriteString(sectionStyle.Render(fmt.Sprintf("PLAN %s", plan.PlanID)))
		b.WriteString("\n")
		b.WriteString(fmt.Sprintf("  Enrollment: %s   Current: %s   Required: %s   Action: %s\n",
			plan.Enrollment, FormatCurrency(plan.CurrentPMPM),
			FormatCurrency(plan.RequiredPMPM), FormatPercent(plan.RateAction)))
		b.WriteString(fmt.Sprintf("  %-46s %14s %14s\n", "Description", "Current", "Renewal"))
		for _, line := range plan.TotalLines {
			renewal := "-"
			if line.Renewal != nil {
				renewal = line.Renewal.StringFixed(2)
			}
			b.WriteString(fmt.Sprintf("  %-46s %14s %14s\n", line.Label, line.Current.StringFixed(2), renewal))
		}
		b.WriteString("\n")
	}

	b.WriteString(sectionStyle.Render("ENROLLMENT"))
	b.WriteString("\n")
	for _, share := range r.Enrollment.PlanShares {
		b.WriteString(fmt.Sprintf("  Plan %-10s %8s members (%s)  %s/month\n",
			share.PlanID, share.Enrollment, FormatPercent(share.Share), FormatCurrency(share.MonthlyPremium)))
	}
	b.WriteString(fmt.Sprintf("  Total monthly premium: %s\n", FormatCurrency(r.Enrollment.TotalMonthlyPremium)))
	b.WriteString(fmt.Sprintf("  Total annual premium:  %s\n", FormatCurrency(r.Enrollment.TotalAnnualPremium)))
	b.WriteString("\n")
}
