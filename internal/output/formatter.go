package output

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/uwbench/renewal/internal/domain"
)

// RenewalFormatter defines a formatter for renewal results
type RenewalFormatter interface {
	FormatRenewal(result *domain.RenewalResult) (string, error)
	Name() string
}

// NewFormatter creates a formatter based on the format name
func NewFormatter(format string) (RenewalFormatter, error) {
	switch strings.ToLower(format) {
	case "", "console":
		return &ConsoleFormatter{}, nil
	case "json":
		return &JSONFormatter{}, nil
	case "csv":
		return &CSVFormatter{}, nil
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}

// FormatCurrency renders a PMPM or dollar value as $X,XXX.XX
func FormatCurrency(value decimal.Decimal) string {
	s := value.StringFixed(2)
	negative := strings.HasPrefix(s, "-")
	if negative {
		s = s[1:]
	}
	parts := strings.SplitN(s, ".", 2)
	whole := parts[0]
	var grouped []string
	for len(whole) > 3 {
		grouped = append([]string{whole[len(whole)-3:]}, grouped...)
		whole = whole[:len(whole)-3]
	}
	grouped = append([]string{whole}, grouped...)
	out := "$" + strings.Join(grouped, ",") + "." + parts[1]
	if negative {
		out = "-" + out
	}
	return out
}

// FormatPercent renders a fraction as a signed percentage, 0.057 -> +5.70%
func FormatPercent(value decimal.Decimal) string {
	pct := value.Mul(decimal.NewFromInt(100))
	if pct.Sign() >= 0 {
		return "+" + pct.StringFixed(2) + "%"
	}
	return pct.StringFixed(2) + "%"
}

// FormatFactor renders a multiplicative factor with four places
func FormatFactor(value decimal.Decimal) string {
	return value.StringFixed(4)
}
