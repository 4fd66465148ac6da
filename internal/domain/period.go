package domain

import "time"

// Period is a contiguous date range covering a whole number of months.
// Start is the first day of the earliest month, End the last day of the
// latest month. Periods are derived per calculation run, never stored.
type Period struct {
	Start  time.Time `json:"start"`
	End    time.Time `json:"end"`
	Months int       `json:"months"`
}

// Contains reports whether t falls within [Start, End] inclusive.
func (p Period) Contains(t time.Time) bool {
	return !t.Before(p.Start) && !t.After(p.End)
}

// ExperiencePeriods pairs the current experience period with the optional
// prior period. Prior is present only when at least 24 months of data
// exist; nil means "no prior period", which downstream ledgers must not
// conflate with a zero-valued prior.
type ExperiencePeriods struct {
	Current Period  `json:"current"`
	Prior   *Period `json:"prior,omitempty"`
}

// HasPrior reports whether a prior experience period exists.
func (ep ExperiencePeriods) HasPrior() bool { return ep.Prior != nil }
