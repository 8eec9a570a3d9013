package nutrition

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/nutrical/backend/internal/domain"
)

// Dimension is the physical quantity a unit measures
type Dimension int

const (
	Mass Dimension = iota + 1
	Volume
)

func (d Dimension) String() string {
	switch d {
	case Mass:
		return "mass"
	case Volume:
		return "volume"
	}
	return "unknown"
}

type unitDef struct {
	dim    Dimension
	factor decimal.Decimal // size of one unit in grams or millilitres
}

func mustDecimal(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

var unitTable = map[string]unitDef{
	"mcg":   {Mass, mustDecimal("0.000001")},
	"mg":    {Mass, mustDecimal("0.001")},
	"g":     {Mass, decimal.NewFromInt(1)},
	"kg":    {Mass, decimal.NewFromInt(1000)},
	"oz":    {Mass, mustDecimal("28.349523125")},
	"lb":    {Mass, mustDecimal("453.59237")},
	"ml":    {Volume, decimal.NewFromInt(1)},
	"l":     {Volume, decimal.NewFromInt(1000)},
	"tsp":   {Volume, mustDecimal("4.92892159375")},
	"tbsp":  {Volume, mustDecimal("14.78676478125")},
	"cup":   {Volume, mustDecimal("236.5882365")},
	"fl_oz": {Volume, mustDecimal("29.5735295625")},
}

var unitAliases = map[string]string{
	"ug": "mcg", "µg": "mcg", "microgram": "mcg", "micrograms": "mcg",
	"gram": "g", "grams": "g", "milligram": "mg", "milligrams": "mg",
	"kilogram": "kg", "kilograms": "kg", "ounce": "oz", "ounces": "oz",
	"pound": "lb", "pounds": "lb", "lbs": "lb",
	"milliliter": "ml", "milliliters": "ml", "millilitre": "ml", "millilitres": "ml",
	"liter": "l", "liters": "l", "litre": "l", "litres": "l",
	"teaspoon": "tsp", "teaspoons": "tsp", "tablespoon": "tbsp", "tablespoons": "tbsp",
	"cups": "cup", "fl oz": "fl_oz", "floz": "fl_oz",
}

// NormalizeUnit returns the canonical spelling of unit and whether it is known
func NormalizeUnit(unit string) (string, bool) {
	u := strings.ToLower(strings.TrimSpace(unit))
	if alias, ok := unitAliases[u]; ok {
		u = alias
	}
	_, ok := unitTable[u]
	return u, ok
}

// DimensionOf returns the dimension of unit
func DimensionOf(unit string) (Dimension, bool) {
	u, ok := NormalizeUnit(unit)
	if !ok {
		return 0, false
	}
	return unitTable[u].dim, true
}

// BaseUnit returns "g" for mass units and "ml" for volume units
func BaseUnit(unit string) (string, bool) {
	dim, ok := DimensionOf(unit)
	if !ok {
		return "", false
	}
	if dim == Mass {
		return "g", true
	}
	return "ml", true
}

// Convert expresses qty of from in unit to. Both units must share a dimension;
// mass/volume conversion needs a density and is refused.
func Convert(qty decimal.Decimal, from, to string) (decimal.Decimal, error) {
	f, ok := NormalizeUnit(from)
	if !ok {
		return decimal.Zero, domain.InvalidInput("unit", from, "", "unknown unit")
	}
	t, ok := NormalizeUnit(to)
	if !ok {
		return decimal.Zero, domain.InvalidInput("unit", to, "", "unknown unit")
	}
	if f == t {
		return qty, nil
	}
	fd, td := unitTable[f], unitTable[t]
	if fd.dim != td.dim {
		return decimal.Zero, domain.InvalidInput("unit", from, "",
			"cannot convert %s (%s) to %s (%s)", f, fd.dim, t, td.dim)
	}
	return qty.Mul(fd.factor).Div(td.factor), nil
}
