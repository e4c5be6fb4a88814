package domain

// Unit is a canonical quantity unit token produced by the unit parser.
// Units outside the canonical set are raw fallback labels taken verbatim
// from the quantity text.
type Unit string

// Canonical units
const (
	UnitGram       Unit = "g"
	UnitKilogram   Unit = "kg"
	UnitPound      Unit = "lb"
	UnitOunce      Unit = "oz"
	UnitFluidOunce Unit = "fl oz"
	UnitMilliliter Unit = "ml"
	UnitLiter      Unit = "l"
	UnitCount      Unit = "count"
)

// UnitKind classifies a unit by what it measures.
type UnitKind int

const (
	KindUnknown UnitKind = iota
	KindMass
	KindVolume
	KindCount
)

func (k UnitKind) String() string {
	switch k {
	case KindMass:
		return "mass"
	case KindVolume:
		return "volume"
	case KindCount:
		return "count"
	default:
		return "unknown"
	}
}

// Kind reports what a canonical unit measures. Fallback labels are KindUnknown.
func (u Unit) Kind() UnitKind {
	switch u {
	case UnitGram, UnitKilogram, UnitPound, UnitOunce:
		return KindMass
	case UnitFluidOunce, UnitMilliliter, UnitLiter:
		return KindVolume
	case UnitCount:
		return KindCount
	default:
		return KindUnknown
	}
}

// IsCanonical reports whether u belongs to the closed canonical set.
func (u Unit) IsCanonical() bool {
	return u.Kind() != KindUnknown
}

func (u Unit) String() string {
	return string(u)
}

// ParsedQuantity is the structured form of a free-text quantity.
// Value and Unit are either both set or both nil.
type ParsedQuantity struct {
	Value *float64 `json:"unitValue"`
	Unit  *Unit    `json:"unitUnit"`
}

// Absent reports whether no quantity could be extracted.
func (q ParsedQuantity) Absent() bool {
	return q.Value == nil || q.Unit == nil
}
