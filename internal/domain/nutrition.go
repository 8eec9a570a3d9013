package domain

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// RoundedValue is a display-rounded nutrient amount. LessThan marks a threshold label
// such as "Less than 5mg": Value then holds the threshold, not a measurement.
type RoundedValue struct {
	Value    decimal.Decimal `json:"value"`
	LessThan bool            `json:"lessThan,omitempty"`
}

// Format renders the value with its unit the way it is printed on a label
func (r RoundedValue) Format(unit string) string {
	if r.LessThan {
		return "Less than " + r.Value.String() + unit
	}
	return r.Value.String() + unit
}

// Equal compares numerically, ignoring decimal exponent differences
func (r RoundedValue) Equal(o RoundedValue) bool {
	return r.LessThan == o.LessThan && r.Value.Equal(o.Value)
}

// PercentDV is a percent daily value that may be unavailable.
// The zero value is unavailable, which is distinct from a measured 0%.
type PercentDV struct {
	value     decimal.Decimal
	available bool
}

// PercentUnavailable is returned when no reference value exists for a nutrient
var PercentUnavailable = PercentDV{}

// NewPercentDV returns an available percentage
func NewPercentDV(v decimal.Decimal) PercentDV {
	return PercentDV{value: v, available: true}
}

// Available reports whether a reference value existed
func (p PercentDV) Available() bool { return p.available }

// Value returns the percentage; only meaningful when Available
func (p PercentDV) Value() decimal.Decimal { return p.value }

func (p PercentDV) String() string {
	if !p.available {
		return ""
	}
	return p.value.String() + "%"
}

// MarshalJSON encodes an unavailable percentage as null
func (p PercentDV) MarshalJSON() ([]byte, error) {
	if !p.available {
		return []byte("null"), nil
	}
	return []byte(p.value.String()), nil
}

// UnmarshalJSON decodes null as unavailable
func (p *PercentDV) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*p = PercentUnavailable
		return nil
	}
	var v decimal.Decimal
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*p = NewPercentDV(v)
	return nil
}

// NutrientAmount is the computed value of one nutrient in a summary
type NutrientAmount struct {
	Key         string          `json:"key"`
	Unit        string          `json:"unit"`
	RecipeTotal decimal.Decimal `json:"recipeTotal"`
	Raw         decimal.Decimal `json:"raw"` // per serving (or per 100), 2 decimal places
	Rounded     RoundedValue    `json:"rounded"`
	Display     string          `json:"display"`
	PercentDV   PercentDV       `json:"percentDv"`
}

// NutritionSummary is the computed, rounded panel for one product.
// Only saved labels persist a copy of it.
type NutritionSummary struct {
	ProductID          string                    `json:"productId,omitempty"`
	Mode               DisplayMode               `json:"mode"`
	ServingSize        decimal.Decimal           `json:"servingSize"`
	ServingUnit        string                    `json:"servingUnit"`
	TotalWeight        decimal.Decimal           `json:"totalWeight"`
	ServingMultiplier  decimal.Decimal           `json:"servingMultiplier"`
	RoundingProfile    string                    `json:"roundingProfile"`
	ReferenceTableCode string                    `json:"referenceTableCode,omitempty"`
	Nutrients          map[string]NutrientAmount `json:"nutrients"`
	Warnings           []string                  `json:"warnings,omitempty"`
}

// Get returns the amount computed for key
func (s *NutritionSummary) Get(key string) (NutrientAmount, bool) {
	a, ok := s.Nutrients[key]
	return a, ok
}

// DailyValueSource records which tier supplied a display entry's reference value
type DailyValueSource string

const (
	DailyValueOverride DailyValueSource = "override"
	DailyValueTable    DailyValueSource = "table"
	DailyValueNone     DailyValueSource = "none"
)

// DisplayEntry is one resolved, ordered row of a label panel
type DisplayEntry struct {
	NutrientKey      string           `json:"nutrientKey"`
	Name             string           `json:"name"`
	Unit             string           `json:"unit"`
	Amount           RoundedValue     `json:"amount"`
	Display          string           `json:"display"`
	PercentDV        PercentDV        `json:"percentDv"`
	ShowPercentDV    bool             `json:"showPercentDv"`
	DailyValue       *decimal.Decimal `json:"dailyValue,omitempty"`
	DailyValueUnit   string           `json:"dailyValueUnit,omitempty"`
	DailyValueSource DailyValueSource `json:"dailyValueSource"`
	IndentLevel      int              `json:"indentLevel"`
	IsBold           bool             `json:"isBold"`
	IsMandatory      bool             `json:"isMandatory"`
}
