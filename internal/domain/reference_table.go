package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ReferenceTable is a named, region-scoped set of daily reference values (RDA/NRV)
type ReferenceTable struct {
	ID            string                      `json:"id"`
	Code          string                      `json:"code"`
	Name          string                      `json:"name"`
	Description   string                      `json:"description,omitempty"`
	Region        string                      `json:"region"`
	EffectiveDate time.Time                   `json:"effectiveDate"`
	CalorieBase   int                         `json:"calorieBase"`
	Values        map[string]*decimal.Decimal `json:"values"` // nil entry means no %DV applies
	Units         map[string]string           `json:"units,omitempty"`
	IsActive      bool                        `json:"isActive"`
	IsDefault     bool                        `json:"isDefault"`
	CreatedAt     time.Time                   `json:"createdAt"`
	UpdatedAt     time.Time                   `json:"updatedAt"`
}

// NormalizeRegion returns the stored form of a region code: trimmed, upper case
func NormalizeRegion(region string) string {
	return strings.ToUpper(strings.TrimSpace(region))
}

// DailyValue returns the reference value for key and whether one exists
func (t *ReferenceTable) DailyValue(key string) (decimal.Decimal, bool) {
	if t == nil {
		return decimal.Zero, false
	}
	v, ok := t.Values[key]
	if !ok || v == nil {
		return decimal.Zero, false
	}
	return *v, true
}

// Validate enforces code/name presence and strictly positive reference values
func (t *ReferenceTable) Validate() error {
	if t.Code == "" {
		return InvalidInput("reference table", t.ID, "code", "code is required")
	}
	if t.Name == "" {
		return InvalidInput("reference table", t.Code, "name", "name is required")
	}
	if t.CalorieBase < 0 {
		return InvalidInput("reference table", t.Code, "calorieBase", "must not be negative")
	}
	for key, v := range t.Values {
		if v != nil && !v.IsPositive() {
			return InvalidInput("reference table", t.Code, key, "daily value must be greater than zero, got %s", v)
		}
	}
	return nil
}
