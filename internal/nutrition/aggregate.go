package nutrition

import (
	"github.com/shopspring/decimal"

	"github.com/nutrical/backend/internal/domain"
)

// Component is a recipe line joined with its ingredient profile
type Component struct {
	ID         string
	Quantity   decimal.Decimal
	Unit       string
	Ingredient *domain.Ingredient
}

// Totals is the result of scaling a recipe to one serving
type Totals struct {
	Recipe            map[string]decimal.Decimal
	PerServing        map[string]decimal.Decimal
	ServingMultiplier decimal.Decimal
	// WeightFallback is set when the recipe weight was not positive and the
	// per-serving values are the unscaled recipe totals
	WeightFallback bool
}

var hundred = decimal.NewFromInt(100)

// multiplier is how many ingredient reference amounts a component contributes
func multiplier(c Component) (decimal.Decimal, error) {
	ing := c.Ingredient
	if !ing.PerAmount.IsPositive() {
		return decimal.Zero, nil
	}
	qty, err := Convert(c.Quantity, c.Unit, ing.PerUnit)
	if err != nil {
		return decimal.Zero, domain.InvalidInput("component", c.ID, "unit",
			"ingredient %q is measured per %s %s, cannot use %s", ing.ID, ing.PerAmount, ing.PerUnit, c.Unit)
	}
	return qty.Div(ing.PerAmount), nil
}

// Aggregate sums each key across components and scales the totals to
// servingSize/totalWeight. Both weights must be in the same unit. A non-positive
// totalWeight yields a multiplier of one and sets WeightFallback. Per-serving
// values keep two decimal places.
func Aggregate(components []Component, keys []string, servingSize, totalWeight decimal.Decimal) (*Totals, error) {
	out := &Totals{
		Recipe:     make(map[string]decimal.Decimal, len(keys)),
		PerServing: make(map[string]decimal.Decimal, len(keys)),
	}
	for _, k := range keys {
		out.Recipe[k] = decimal.Zero
	}

	for _, c := range components {
		if c.Ingredient == nil {
			return nil, domain.NotFound("ingredient", c.ID)
		}
		m, err := multiplier(c)
		if err != nil {
			return nil, err
		}
		for _, k := range keys {
			amount, ok := c.Ingredient.Nutrients[k]
			if !ok {
				continue
			}
			out.Recipe[k] = out.Recipe[k].Add(amount.Mul(m))
		}
	}

	if totalWeight.IsPositive() {
		out.ServingMultiplier = servingSize.Div(totalWeight)
	} else {
		out.ServingMultiplier = decimal.NewFromInt(1)
		out.WeightFallback = true
	}
	for k, v := range out.Recipe {
		out.PerServing[k] = v.Mul(out.ServingMultiplier).Round(2)
	}
	return out, nil
}

// RecipeWeight sums component quantities expressed in unit. Components measured
// in another dimension cannot be summed and are rejected.
func RecipeWeight(components []Component, unit string) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, c := range components {
		q, err := Convert(c.Quantity, c.Unit, unit)
		if err != nil {
			return decimal.Zero, domain.InvalidInput("component", c.ID, "unit",
				"cannot add %s to a recipe weighed in %s", c.Unit, unit)
		}
		total = total.Add(q)
	}
	return total, nil
}
