package calculation

import (
	"errors"
	"fmt"

	"github.com/uwbench/renewal/internal/domain"
)

// Sentinel errors, for use with errors.Is. Structured variants below carry
// the context callers need to attribute the failure.
var (
	// ErrInsufficientData is returned when fewer months of claims data
	// exist than a calculation requires.
	ErrInsufficientData = errors.New("insufficient claims data")

	// ErrMissingParameter is returned when a required carrier parameter is
	// absent after resolution.
	ErrMissingParameter = errors.New("missing required parameter")

	// ErrPlanDataNotFound is returned when a plan parameter entry has no
	// matching plan data record.
	ErrPlanDataNotFound = errors.New("plan data not found")

	// ErrZeroMemberMonths is returned when a period carries zero
	// member-months, which makes every PMPM division undefined.
	ErrZeroMemberMonths = errors.New("zero member-months in period")

	// ErrUnsupportedCarrier is returned by the dispatcher for an unknown
	// carrier tag.
	ErrUnsupportedCarrier = errors.New("unsupported carrier")

	// ErrAnnualizeFullYear is returned when annualization is requested for
	// twelve or more months of data.
	ErrAnnualizeFullYear = errors.New("annualization requires fewer than 12 months")
)

// InsufficientDataError reports how far short the input fell.
type InsufficientDataError struct {
	MonthsAvailable int
	MonthsRequired  int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("insufficient claims data: %d months available, %d required",
		e.MonthsAvailable, e.MonthsRequired)
}

func (e *InsufficientDataError) Unwrap() error { return ErrInsufficientData }

// MissingParameterError names the absent parameter and its carrier.
type MissingParameterError struct {
	Carrier domain.Carrier
	Name    string
}

func (e *MissingParameterError) Error() string {
	return fmt.Sprintf("%s: missing required parameter %q", e.Carrier, e.Name)
}

func (e *MissingParameterError) Unwrap() error { return ErrMissingParameter }

// PlanDataNotFoundError identifies the orphaned plan parameter entry.
type PlanDataNotFoundError struct {
	PlanID string
}

func (e *PlanDataNotFoundError) Error() string {
	return fmt.Sprintf("no plan data record for plan %q", e.PlanID)
}

func (e *PlanDataNotFoundError) Unwrap() error { return ErrPlanDataNotFound }

// ZeroMemberMonthsError names the period whose exposure base is empty.
type ZeroMemberMonthsError struct {
	PeriodLabel string
}

func (e *ZeroMemberMonthsError) Error() string {
	return fmt.Sprintf("%s period has zero member-months; PMPM values are undefined", e.PeriodLabel)
}

func (e *ZeroMemberMonthsError) Unwrap() error { return ErrZeroMemberMonths }

// UnsupportedCarrierError names the unknown tag.
type UnsupportedCarrierError struct {
	Carrier domain.Carrier
}

func (e *UnsupportedCarrierError) Error() string {
	return fmt.Sprintf("unsupported carrier %q", e.Carrier)
}

func (e *UnsupportedCarrierError) Unwrap() error { return ErrUnsupportedCarrier }
