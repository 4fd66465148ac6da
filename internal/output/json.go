package output

import (
	"fmt"

	json "github.com/goccy/go-json"
	"github.com/uwbench/renewal/internal/domain"
)

// JSONFormatter renders the full result envelope, detailed ledgers
// included, as indented JSON.
type JSONFormatter struct{}

func (f *JSONFormatter) Name() string { return "json" }

func (f *JSONFormatter) FormatRenewal(result *domain.RenewalResult) (string, error) {
	if result == nil {
		return "", fmt.Errorf("result cannot be nil")
	}
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal result: %w", err)
	}
	return string(data), nil
}
