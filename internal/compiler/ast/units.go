package ast

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// UnitGroup is the physical dimension a unit measures. Units only convert
// within their group.
type UnitGroup int

const (
	// UnknownUnit is any unit the conversion table does not know
	UnknownUnit UnitGroup = iota
	// LengthUnit covers in, cm, pc, mm, pt, px
	LengthUnit
	// AngleUnit covers deg, grad, rad, turn
	AngleUnit
	// TimeUnit covers s, ms
	TimeUnit
	// FrequencyUnit covers Hz, kHz
	FrequencyUnit
	// ResolutionUnit covers dpi, dpcm, dppx
	ResolutionUnit
)

var unitGroups = map[string]UnitGroup{
	"in": LengthUnit, "cm": LengthUnit, "pc": LengthUnit, "mm": LengthUnit, "pt": LengthUnit, "px": LengthUnit,
	"deg": AngleUnit, "grad": AngleUnit, "rad": AngleUnit, "turn": AngleUnit,
	"s": TimeUnit, "ms": TimeUnit,
	"Hz": FrequencyUnit, "kHz": FrequencyUnit,
	"dpi": ResolutionUnit, "dpcm": ResolutionUnit, "dppx": ResolutionUnit,
}

// conversionFactors[from][to] is how many `to` make one `from`. Every pair is
// listed explicitly so conversions never chain through a third unit.
var conversionFactors = map[string]map[string]float64{
	"in": {"in": 1, "cm": 2.54, "pc": 6, "mm": 25.4, "pt": 72, "px": 96},
	"cm": {"in": 1 / 2.54, "cm": 1, "pc": 6 / 2.54, "mm": 10, "pt": 72 / 2.54, "px": 96 / 2.54},
	"pc": {"in": 1.0 / 6, "cm": 2.54 / 6, "pc": 1, "mm": 25.4 / 6, "pt": 12, "px": 16},
	"mm": {"in": 1 / 25.4, "cm": 0.1, "pc": 6 / 25.4, "mm": 1, "pt": 72 / 25.4, "px": 96 / 25.4},
	"pt": {"in": 1.0 / 72, "cm": 2.54 / 72, "pc": 6.0 / 72, "mm": 25.4 / 72, "pt": 1, "px": 96.0 / 72},
	"px": {"in": 1.0 / 96, "cm": 2.54 / 96, "pc": 6.0 / 96, "mm": 25.4 / 96, "pt": 72.0 / 96, "px": 1},

	"deg":  {"deg": 1, "grad": 40.0 / 36, "rad": math.Pi / 180, "turn": 1.0 / 360},
	"grad": {"deg": 36.0 / 40, "grad": 1, "rad": math.Pi / 200, "turn": 1.0 / 400},
	"rad":  {"deg": 180 / math.Pi, "grad": 200 / math.Pi, "rad": 1, "turn": 0.5 / math.Pi},
	"turn": {"deg": 360, "grad": 400, "rad": 2 * math.Pi, "turn": 1},

	"s":  {"s": 1, "ms": 1000},
	"ms": {"s": 1.0 / 1000, "ms": 1},

	"Hz":  {"Hz": 1, "kHz": 1.0 / 1000},
	"kHz": {"Hz": 1000, "kHz": 1},

	"dpi":  {"dpi": 1, "dpcm": 1 / 2.54, "dppx": 1.0 / 96},
	"dpcm": {"dpi": 2.54, "dpcm": 1, "dppx": 2.54 / 96},
	"dppx": {"dpi": 96, "dpcm": 96 / 2.54, "dppx": 1},
}

// GroupOf returns the group a unit belongs to.
func GroupOf(unit string) UnitGroup {
	return unitGroups[unit]
}

// ConversionFactor returns how many `to` units make one `from` unit. It
// reports false when the units are in different groups or unknown.
func ConversionFactor(from, to string) (float64, bool) {
	if from == to {
		return 1, true
	}
	row, ok := conversionFactors[from]
	if !ok {
		return 0, false
	}
	f, ok := row[to]
	return f, ok
}

// UnitError reports arithmetic or comparison between incompatible units.
type UnitError struct {
	Left  string
	Right string
}

func (e *UnitError) Error() string {
	return fmt.Sprintf("Incompatible units: '%s' and '%s'.", e.Right, e.Left)
}

// parseUnit splits "px*em/s" into numerators and denominators.
func parseUnit(unit string, denominators *[]string) []string {
	var numerators []string
	num, den, hasDen := strings.Cut(unit, "/")
	for _, u := range strings.Split(num, "*") {
		if u != "" {
			numerators = append(numerators, u)
		}
	}
	if hasDen {
		for _, u := range strings.Split(den, "*") {
			if u != "" {
				*denominators = append(*denominators, u)
			}
		}
	}
	return numerators
}

// Unit returns the unit string, e.g. "px", "px*em" or "px/s".
func (n *Number) Unit() string {
	var b strings.Builder
	b.WriteString(strings.Join(n.Numerators, "*"))
	if len(n.Denominators) > 0 {
		b.WriteByte('/')
		b.WriteString(strings.Join(n.Denominators, "*"))
	}
	return b.String()
}

// IsUnitless reports whether the number has no units at all.
func (n *Number) IsUnitless() bool {
	return len(n.Numerators) == 0 && len(n.Denominators) == 0
}

// IsValidCSSUnit reports whether the number can be written to CSS, which
// allows at most one numerator and no denominators.
func (n *Number) IsValidCSSUnit() bool {
	return len(n.Numerators) <= 1 && len(n.Denominators) == 0
}

// Clone returns a copy that does not share unit slices with n.
func (n *Number) Clone() *Number {
	cpy := *n
	cpy.Numerators = append([]string(nil), n.Numerators...)
	cpy.Denominators = append([]string(nil), n.Denominators...)
	return &cpy
}

// FindConvertibleUnit returns the first unit of n that has a known group.
func (n *Number) FindConvertibleUnit() string {
	for _, u := range n.Numerators {
		if GroupOf(u) != UnknownUnit {
			return u
		}
	}
	for _, u := range n.Denominators {
		if GroupOf(u) != UnknownUnit {
			return u
		}
	}
	return ""
}

// Normalize cancels matching units between numerator and denominator,
// converting convertible pairs and scaling the value, then converts every
// unit in preferred's group to preferred. Units are left sorted by name.
func (n *Number) Normalize(preferred string) {
	exponents := map[string]int{}
	for _, u := range n.Numerators {
		exponents[u]++
	}
	for _, u := range n.Denominators {
		exponents[u]--
	}

	factor := 1.0
	for _, den := range n.Denominators {
		if exponents[den] >= 0 || GroupOf(den) == UnknownUnit {
			continue
		}
		for _, num := range n.Numerators {
			if exponents[num] <= 0 || GroupOf(num) != GroupOf(den) {
				continue
			}
			f, _ := ConversionFactor(num, den)
			factor *= f
			exponents[num]--
			exponents[den]++
			break
		}
	}

	n.Numerators, n.Denominators = unitsFromExponents(exponents)
	n.Value *= factor
	n.Convert(preferred)
}

// Convert rewrites every unit in preferred's group as preferred, scaling the
// value. Units outside that group are untouched.
func (n *Number) Convert(preferred string) {
	group := GroupOf(preferred)
	if preferred == "" || group == UnknownUnit {
		return
	}
	exponents := map[string]int{}
	for i, u := range n.Numerators {
		if GroupOf(u) == group {
			f, _ := ConversionFactor(u, preferred)
			n.Value *= f
			n.Numerators[i] = preferred
		}
		exponents[n.Numerators[i]]++
	}
	for i, u := range n.Denominators {
		if GroupOf(u) == group {
			f, _ := ConversionFactor(u, preferred)
			n.Value /= f
			n.Denominators[i] = preferred
		}
		exponents[n.Denominators[i]]--
	}
	n.Numerators, n.Denominators = unitsFromExponents(exponents)
}

func unitsFromExponents(exponents map[string]int) (numerators, denominators []string) {
	names := make([]string, 0, len(exponents))
	for u := range exponents {
		names = append(names, u)
	}
	sort.Strings(names)
	for _, u := range names {
		if u == "" {
			continue
		}
		for e := exponents[u]; e > 0; e-- {
			numerators = append(numerators, u)
		}
		for e := exponents[u]; e < 0; e++ {
			denominators = append(denominators, u)
		}
	}
	return numerators, denominators
}

// Equivalent converts copies of n and other to a common unit and reports whether
// they denote the same quantity. Numbers whose known units belong to different
// groups are an error rather than unequal.
func (n *Number) Equivalent(other *Number) (bool, error) {
	l, r := n.Clone(), other.Clone()
	unit := l.FindConvertibleUnit()
	l.Normalize(unit)
	r.Normalize(unit)
	if l.Unit() != r.Unit() {
		lu, ru := l.FindConvertibleUnit(), r.FindConvertibleUnit()
		if lu != "" && ru != "" && GroupOf(lu) != GroupOf(ru) {
			return false, &UnitError{Left: l.Unit(), Right: r.Unit()}
		}
		return false, nil
	}
	return NearlyEqual(l.Value, r.Value), nil
}

// NumberEpsilon is the tolerance used when comparing converted values.
const NumberEpsilon = 1e-10

// NearlyEqual compares two floats with a tolerance relative to their size.
func NearlyEqual(a, b float64) bool {
	if a == b {
		return true
	}
	scale := math.Max(1, math.Max(math.Abs(a), math.Abs(b)))
	return math.Abs(a-b) < NumberEpsilon*scale
}
