package output

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"github.com/uwbench/renewal/internal/domain"
)

// CSVFormatter writes the summary and calculation steps as CSV, one row
// per step. Detailed ledgers stay in the JSON view.
type CSVFormatter struct{}

func (f *CSVFormatter) Name() string { return "csv" }

func (f *CSVFormatter) FormatRenewal(result *domain.RenewalResult) (string, error) {
	if result == nil {
		return "", fmt.Errorf("result cannot be nil")
	}

	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)

	header := []string{"RunID", "GroupID", "Carrier", "Step", "Value"}
	if err := w.Write(header); err != nil {
		return "", err
	}

	base := []string{result.RunID, result.GroupID, string(result.Carrier)}
	summary := []domain.CalculationStep{
		{Label: "CurrentPMPM", Value: result.CurrentPMPM},
		{Label: "ProjectedPMPM", Value: result.ProjectedPMPM},
		{Label: "RequiredRateChange", Value: result.RequiredRateChange},
		{Label: "ProposedRateChange", Value: result.ProposedRateChange},
	}
	for _, step := range append(summary, result.Steps...) {
		row := append(append([]string(nil), base...), step.Label, step.Value.StringFixed(6))
		if err := w.Write(row); err != nil {
			return "", err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}
	return buf.String(), nil
}
