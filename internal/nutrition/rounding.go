package nutrition

import (
	"github.com/shopspring/decimal"

	"github.com/nutrical/backend/internal/domain"
)

// RoundingClass names a rounding rule shared by several nutrients
type RoundingClass string

const (
	ClassEnergy      RoundingClass = "energy"
	ClassMacro       RoundingClass = "macro"
	ClassCholesterol RoundingClass = "cholesterol"
	ClassSodium      RoundingClass = "sodium"
	ClassDefault     RoundingClass = "default"
)

// PercentBasis selects which value %DV is computed from
type PercentBasis string

const (
	BasisRaw     PercentBasis = "raw"
	BasisRounded PercentBasis = "rounded"
)

// Band is one interval of a rounding rule. A value falls into the band when it is
// below Upper (or at most Upper when Inclusive); an Unbounded band takes the rest.
// Inside a band the value snaps to the nearest multiple of Step, collapses to zero
// when Step is zero, or becomes a "less than Upper" label when LessThan is set.
type Band struct {
	Upper     decimal.Decimal
	Inclusive bool
	Unbounded bool
	Step      decimal.Decimal
	LessThan  bool
}

func (b Band) contains(v decimal.Decimal) bool {
	switch {
	case b.Unbounded:
		return true
	case b.Inclusive:
		return v.LessThanOrEqual(b.Upper)
	default:
		return v.LessThan(b.Upper)
	}
}

func (b Band) apply(v decimal.Decimal) domain.RoundedValue {
	switch {
	case b.LessThan:
		return domain.RoundedValue{Value: b.Upper, LessThan: true}
	case b.Step.IsZero():
		return domain.RoundedValue{Value: decimal.Zero}
	default:
		return domain.RoundedValue{Value: nearestMultiple(v, b.Step)}
	}
}

// nearestMultiple rounds half away from zero
func nearestMultiple(v, step decimal.Decimal) decimal.Decimal {
	return v.Div(step).Round(0).Mul(step)
}

// Rule is an ordered list of bands, lowest first
type Rule struct {
	Bands []Band
}

var fallbackStep = decimal.New(1, -2)

func (r Rule) band(v decimal.Decimal) int {
	for i, b := range r.Bands {
		if b.contains(v) {
			return i
		}
	}
	return -1
}

// Apply rounds v. Snapping to a multiple can move a value across a band edge
// (cholesterol 5.2 rounds to 5, which sits in the "less than 5" band), so the
// result is re-banded until it stops moving. This makes Apply idempotent.
func (r Rule) Apply(v decimal.Decimal) domain.RoundedValue {
	idx := r.band(v)
	if idx < 0 {
		return domain.RoundedValue{Value: v.Round(2)}
	}
	out := r.Bands[idx].apply(v)
	for range r.Bands {
		next := r.band(out.Value)
		if next == idx || next < 0 {
			break
		}
		idx = next
		out = r.Bands[idx].apply(out.Value)
	}
	return out
}

// RoundingProfile is a complete regulatory rounding regime: per-class rules, the
// nutrient-to-class mapping and the %DV basis.
type RoundingProfile struct {
	Name         string
	PercentBasis PercentBasis
	Rules        map[RoundingClass]Rule
	Classes      map[string]RoundingClass
}

// ClassOf returns the rounding class of a nutrient key
func (p *RoundingProfile) ClassOf(key string) RoundingClass {
	if c, ok := p.Classes[key]; ok {
		return c
	}
	return ClassDefault
}

// RuleFor returns the rule applied to key, falling back to the default class
// and finally to two decimal places.
func (p *RoundingProfile) RuleFor(key string) Rule {
	if r, ok := p.Rules[p.ClassOf(key)]; ok {
		return r
	}
	if r, ok := p.Rules[ClassDefault]; ok {
		return r
	}
	return Rule{Bands: []Band{{Unbounded: true, Step: fallbackStep}}}
}

// Round applies the rule for key to v
func (p *RoundingProfile) Round(key string, v decimal.Decimal) domain.RoundedValue {
	return p.RuleFor(key).Apply(v)
}

func below(upper string) Band {
	return Band{Upper: decimal.RequireFromString(upper)}
}

func upTo(upper, step string) Band {
	return Band{Upper: decimal.RequireFromString(upper), Inclusive: true, Step: decimal.RequireFromString(step)}
}

func beyond(step string) Band {
	return Band{Unbounded: true, Step: decimal.RequireFromString(step)}
}

// FDAProfileName is the name of the built-in US FDA profile
const FDAProfileName = "fda"

// FDAProfile returns the US FDA 21 CFR 101.9 rounding regime
func FDAProfile() *RoundingProfile {
	macro := Rule{Bands: []Band{below("0.5"), withStep(below("5"), "0.5"), beyond("1")}}
	classes := map[string]RoundingClass{
		"calories":    ClassEnergy,
		"cholesterol": ClassCholesterol,
		"sodium":      ClassSodium,
	}
	for _, k := range []string{
		"total_fat", "saturated_fat", "trans_fat", "total_carbs",
		"dietary_fiber", "total_sugars", "added_sugars", "protein",
	} {
		classes[k] = ClassMacro
	}
	return &RoundingProfile{
		Name:         FDAProfileName,
		PercentBasis: BasisRounded,
		Rules: map[RoundingClass]Rule{
			ClassEnergy:      {Bands: []Band{below("5"), upTo("50", "5"), beyond("10")}},
			ClassMacro:       macro,
			ClassCholesterol: {Bands: []Band{below("2"), lessThan("5"), beyond("5")}},
			ClassSodium:      {Bands: []Band{below("5"), upTo("140", "5"), beyond("10")}},
			ClassDefault:     {Bands: []Band{beyond("0.01")}},
		},
		Classes: classes,
	}
}

func withStep(b Band, step string) Band {
	b.Step = decimal.RequireFromString(step)
	return b
}

func lessThan(upper string) Band {
	return Band{Upper: decimal.RequireFromString(upper), Inclusive: true, LessThan: true}
}
