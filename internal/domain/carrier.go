package domain

// Carrier identifies which carrier's rating methodology applies to a
// renewal calculation. Each carrier defines its own ledger of named lines.
type Carrier string

const (
	CarrierNorthfield Carrier = "northfield"
	CarrierMeridian   Carrier = "meridian"
	CarrierCascade    Carrier = "cascade"
	CarrierAtlas      Carrier = "atlas"
)

// Carriers lists every supported carrier tag in display order.
var Carriers = []Carrier{CarrierNorthfield, CarrierMeridian, CarrierCascade, CarrierAtlas}

// Valid reports whether the tag names a supported carrier.
func (c Carrier) Valid() bool {
	switch c {
	case CarrierNorthfield, CarrierMeridian, CarrierCascade, CarrierAtlas:
		return true
	}
	return false
}

func (c Carrier) String() string { return string(c) }
