package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Ingredient is a master ingredient with nutrient amounts per a canonical reference amount
type Ingredient struct {
	ID         string                     `json:"id"`
	Name       string                     `json:"name"`
	NameAr     string                     `json:"nameAr,omitempty"`
	Category   string                     `json:"category,omitempty"`
	Nutrients  map[string]decimal.Decimal `json:"nutrients"`
	PerAmount  decimal.Decimal            `json:"perAmount"`
	PerUnit    string                     `json:"perUnit"`
	IsVerified bool                       `json:"isVerified"`
	Source     string                     `json:"source,omitempty"`
	CreatedAt  time.Time                  `json:"createdAt"`
	UpdatedAt  time.Time                  `json:"updatedAt"`
}

// Amount returns the nutrient amount per reference amount, zero when untracked
func (i *Ingredient) Amount(key string) decimal.Decimal {
	return i.Nutrients[key]
}

// Validate checks the profile invariants: per_amount > 0 and no negative amounts
func (i *Ingredient) Validate() error {
	if i.Name == "" {
		return InvalidInput("ingredient", i.ID, "name", "name is required")
	}
	if !i.PerAmount.IsPositive() {
		return InvalidInput("ingredient", i.ID, "perAmount", "must be greater than zero, got %s", i.PerAmount)
	}
	if i.PerUnit == "" {
		return InvalidInput("ingredient", i.ID, "perUnit", "unit is required")
	}
	for key, v := range i.Nutrients {
		if v.IsNegative() {
			return InvalidInput("ingredient", i.ID, key, "nutrient amount must not be negative, got %s", v)
		}
	}
	return nil
}
