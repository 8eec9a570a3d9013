package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is a user's recipe: a serving definition plus ordered ingredient components
type Product struct {
	ID                   string            `json:"id"`
	OwnerID              string            `json:"ownerId"`
	Name                 string            `json:"name"`
	NameAr               string            `json:"nameAr,omitempty"`
	Description          string            `json:"description,omitempty"`
	ServingSize          decimal.Decimal   `json:"servingSize"`
	ServingUnit          string            `json:"servingUnit"`
	ServingDescription   string            `json:"servingDescription,omitempty"`
	ServingsPerContainer decimal.Decimal   `json:"servingsPerContainer"`
	TotalWeight          decimal.Decimal   `json:"totalWeight"` // explicit yield; zero means derive from components
	Components           []RecipeComponent `json:"components"`
	Allergens            []ProductAllergen `json:"allergens"`
	CreatedAt            time.Time         `json:"createdAt"`
	UpdatedAt            time.Time         `json:"updatedAt"`
}

// RecipeComponent is one ingredient usage inside a product
type RecipeComponent struct {
	ID            string          `json:"id"`
	ProductID     string          `json:"productId"`
	IngredientID  string          `json:"ingredientId"`
	Quantity      decimal.Decimal `json:"quantity"`
	Unit          string          `json:"unit"`
	DisplayName   string          `json:"displayName,omitempty"` // overrides the ingredient name in the ingredient statement
	DisplayNameAr string          `json:"displayNameAr,omitempty"`
	DisplayOrder  int             `json:"displayOrder"`
}

// Validate checks the product-level invariants that do not need ingredient data
func (p *Product) Validate() error {
	if p.Name == "" {
		return InvalidInput("product", p.ID, "name", "name is required")
	}
	if !p.ServingSize.IsPositive() {
		return InvalidInput("product", p.ID, "servingSize", "must be greater than zero, got %s", p.ServingSize)
	}
	if p.ServingUnit == "" {
		return InvalidInput("product", p.ID, "servingUnit", "unit is required")
	}
	if p.TotalWeight.IsNegative() {
		return InvalidInput("product", p.ID, "totalWeight", "must not be negative, got %s", p.TotalWeight)
	}
	for _, c := range p.Components {
		if err := c.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Validate rejects negative quantities and missing references
func (c *RecipeComponent) Validate() error {
	if c.IngredientID == "" {
		return InvalidInput("component", c.ID, "ingredientId", "ingredient is required")
	}
	if c.Quantity.IsNegative() {
		return InvalidInput("component", c.ID, "quantity", "must not be negative, got %s", c.Quantity)
	}
	if c.Unit == "" {
		return InvalidInput("component", c.ID, "unit", "unit is required")
	}
	return nil
}
