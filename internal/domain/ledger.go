package domain

import "github.com/shopspring/decimal"

// CoverageAmounts is one ledger cell split by coverage. Total is carried
// explicitly rather than recomputed so that factor lines (where Total is a
// factor, not a sum) stay representable.
type CoverageAmounts struct {
	Medical decimal.Decimal `json:"medical"`
	Rx      decimal.Decimal `json:"rx"`
	Total   decimal.Decimal `json:"total"`
}

// Add returns the cell-wise sum.
func (c CoverageAmounts) Add(o CoverageAmounts) CoverageAmounts {
	return CoverageAmounts{
		Medical: c.Medical.Add(o.Medical),
		Rx:      c.Rx.Add(o.Rx),
		Total:   c.Total.Add(o.Total),
	}
}

// Sub returns the cell-wise difference.
func (c CoverageAmounts) Sub(o CoverageAmounts) CoverageAmounts {
	return CoverageAmounts{
		Medical: c.Medical.Sub(o.Medical),
		Rx:      c.Rx.Sub(o.Rx),
		Total:   c.Total.Sub(o.Total),
	}
}

// MulFactor scales every cell by a single factor.
func (c CoverageAmounts) MulFactor(f decimal.Decimal) CoverageAmounts {
	return CoverageAmounts{
		Medical: c.Medical.Mul(f),
		Rx:      c.Rx.Mul(f),
		Total:   c.Total.Mul(f),
	}
}

// Uniform builds a cell with the same value in every column. Used for
// factor and percentage lines.
func Uniform(v decimal.Decimal) CoverageAmounts {
	return CoverageAmounts{Medical: v, Rx: v, Total: v}
}

// LineID identifies one line of a carrier ledger. Northfield uses the
// alphabetic sequence A through AM; Atlas uses numbered identifiers.
type LineID string

// Northfield line identifiers, in calculation order.
const (
	LineA  LineID = "A"
	LineB  LineID = "B"
	LineC  LineID = "C"
	LineD  LineID = "D"
	LineE  LineID = "E"
	LineF  LineID = "F"
	LineG  LineID = "G"
	LineH  LineID = "H"
	LineI  LineID = "I"
	LineJ  LineID = "J"
	LineK  LineID = "K"
	LineL  LineID = "L"
	LineM  LineID = "M"
	LineN  LineID = "N"
	LineO  LineID = "O"
	LineP  LineID = "P"
	LineQ  LineID = "Q"
	LineR  LineID = "R"
	LineS  LineID = "S"
	LineT  LineID = "T"
	LineU  LineID = "U"
	LineV  LineID = "V"
	LineW  LineID = "W"
	LineX  LineID = "X"
	LineY  LineID = "Y"
	LineZ  LineID = "Z"
	LineAA LineID = "AA"
	LineAB LineID = "AB"
	LineAC LineID = "AC"
	LineAD LineID = "AD"
	LineAE LineID = "AE"
	LineAF LineID = "AF"
	LineAG LineID = "AG"
	LineAH LineID = "AH"
	LineAI LineID = "AI"
	LineAJ LineID = "AJ"
	LineAK LineID = "AK"
	LineAL LineID = "AL"
	LineAM LineID = "AM"
)

// NorthfieldLineOrder is the complete 39-line sequence.
var NorthfieldLineOrder = []LineID{
	LineA, LineB, LineC, LineD, LineE, LineF, LineG, LineH, LineI,
	LineJ, LineK, LineL, LineM, LineN, LineO, LineP, LineQ, LineR,
	LineS, LineT, LineU, LineV,
	LineW, LineX, LineY, LineZ, LineAA, LineAB, LineAC, LineAD,
	LineAE, LineAF, LineAG, LineAH, LineAI, LineAJ, LineAK, LineAL, LineAM,
}

// CalculationLine is one row of a carrier ledger. Prior is nil for lines
// that have no prior-period concept (everything past a blend point), which
// is distinct from a prior value of zero. The ordered line list is the
// audit trail: every derived number stays traceable to the line that
// produced it.
type CalculationLine struct {
	ID      LineID           `json:"id"`
	Label   string           `json:"label"`
	Formula string           `json:"formula,omitempty"`
	Current CoverageAmounts  `json:"current"`
	Prior   *CoverageAmounts `json:"prior,omitempty"`
}

// DualLine is one row of the Cascade ledger, which carries both a PMPM
// value and the annualized value (PMPM x projected member months).
type DualLine struct {
	Number  int             `json:"number"`
	Label   string          `json:"label"`
	Formula string          `json:"formula,omitempty"`
	PMPM    decimal.Decimal `json:"pmpm"`
	Annual  decimal.Decimal `json:"annual"`
}

// MeridianLine is one row of a Meridian sub-ledger. Renewal is nil once
// the current/renewal columns have been blended.
type MeridianLine struct {
	Label   string           `json:"label"`
	Formula string           `json:"formula,omitempty"`
	Current decimal.Decimal  `json:"current"`
	Renewal *decimal.Decimal `json:"renewal,omitempty"`
}
