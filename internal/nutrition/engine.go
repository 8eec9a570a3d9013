package nutrition

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/nutrical/backend/internal/domain"
)

// SummaryKeys are computed when no catalog is supplied
var SummaryKeys = []string{
	"calories", "total_fat", "saturated_fat", "trans_fat", "cholesterol", "sodium",
	"total_carbs", "dietary_fiber", "total_sugars", "added_sugars", "protein",
	"vitamin_d", "calcium", "iron", "potassium",
}

// SummaryOptions control a single summary computation
type SummaryOptions struct {
	Mode domain.DisplayMode
	// Reference supplies daily values for %DV; nil leaves every %DV unavailable
	Reference *domain.ReferenceTable
	// Catalog restricts and describes the computed nutrients; empty means SummaryKeys
	Catalog []domain.NutrientDefinition
	// AllowWeightFallback reports recipe totals when the recipe weight is zero
	// instead of failing
	AllowWeightFallback bool
}

// Engine computes nutrition summaries and label panels under one rounding profile.
// It holds no mutable state and is safe for concurrent use.
type Engine struct {
	profile *RoundingProfile
}

// NewEngine returns an engine for profile, or for the FDA profile when nil
func NewEngine(profile *RoundingProfile) *Engine {
	if profile == nil {
		profile = FDAProfile()
	}
	return &Engine{profile: profile}
}

// Profile returns the engine's rounding profile
func (e *Engine) Profile() *RoundingProfile {
	return e.profile
}

// Round applies the profile's rule for key
func (e *Engine) Round(key string, v decimal.Decimal) domain.RoundedValue {
	return e.profile.Round(key, v)
}

// PercentOf returns round(value / dailyValue * 100); unavailable when dailyValue is not positive
func PercentOf(value, dailyValue decimal.Decimal) domain.PercentDV {
	if !dailyValue.IsPositive() {
		return domain.PercentUnavailable
	}
	return domain.NewPercentDV(value.Div(dailyValue).Mul(hundred).Round(0))
}

// PercentDailyValue looks key up in table and computes %DV for value
func (e *Engine) PercentDailyValue(key string, value decimal.Decimal, table *domain.ReferenceTable) domain.PercentDV {
	dv, ok := table.DailyValue(key)
	if !ok {
		return domain.PercentUnavailable
	}
	return PercentOf(value, dv)
}

// percentBasis picks the value %DV is computed from. A "less than" label has no
// measured rounded amount, so the raw value is used.
func (e *Engine) percentBasis(raw decimal.Decimal, rounded domain.RoundedValue) decimal.Decimal {
	if e.profile.PercentBasis == BasisRounded && !rounded.LessThan {
		return rounded.Value
	}
	return raw
}

// ComputeSummary aggregates product over ingredients (keyed by ingredient id),
// rounds every nutrient and computes %DV against opts.Reference.
func (e *Engine) ComputeSummary(product *domain.Product, ingredients map[string]*domain.Ingredient, opts SummaryOptions) (*domain.NutritionSummary, error) {
	if err := product.Validate(); err != nil {
		return nil, err
	}
	if _, ok := NormalizeUnit(product.ServingUnit); !ok {
		return nil, domain.InvalidInput("product", product.ID, "servingUnit", "unknown unit %q", product.ServingUnit)
	}
	mode := opts.Mode
	if mode == "" {
		mode = domain.DisplayPerServing
	}

	components := make([]Component, 0, len(product.Components))
	for _, rc := range product.Components {
		ing, ok := ingredients[rc.IngredientID]
		if !ok || ing == nil {
			return nil, domain.NotFound("ingredient", rc.IngredientID)
		}
		components = append(components, Component{ID: rc.ID, Quantity: rc.Quantity, Unit: rc.Unit, Ingredient: ing})
	}

	totalWeight := product.TotalWeight
	if !totalWeight.IsPositive() {
		w, err := RecipeWeight(components, product.ServingUnit)
		if err != nil {
			return nil, err
		}
		totalWeight = w
	}
	if !totalWeight.IsPositive() && !opts.AllowWeightFallback && len(components) > 0 {
		return nil, domain.InvalidInput("product", product.ID, "totalWeight", "recipe weight must be greater than zero")
	}

	serving := product.ServingSize
	if mode == domain.DisplayPer100 {
		base, _ := BaseUnit(product.ServingUnit)
		v, err := Convert(hundred, base, product.ServingUnit)
		if err != nil {
			return nil, err
		}
		serving = v
	}

	defs := catalogFor(opts.Catalog)
	keys := make([]string, 0, len(defs))
	for k := range defs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	totals, err := Aggregate(components, keys, serving, totalWeight)
	if err != nil {
		return nil, err
	}

	summary := &domain.NutritionSummary{
		ProductID:         product.ID,
		Mode:              mode,
		ServingSize:       serving,
		ServingUnit:       product.ServingUnit,
		TotalWeight:       totalWeight,
		ServingMultiplier: totals.ServingMultiplier,
		RoundingProfile:   e.profile.Name,
		Nutrients:         make(map[string]domain.NutrientAmount, len(keys)),
	}
	if opts.Reference != nil {
		summary.ReferenceTableCode = opts.Reference.Code
	}
	if totals.WeightFallback && len(components) > 0 {
		summary.Warnings = append(summary.Warnings, "recipe weight is zero; values are recipe totals")
	}

	for _, k := range keys {
		def := defs[k]
		raw := totals.PerServing[k]
		rounded := e.Round(k, raw)
		summary.Nutrients[k] = domain.NutrientAmount{
			Key:         k,
			Unit:        def.Unit,
			RecipeTotal: totals.Recipe[k],
			Raw:         raw,
			Rounded:     rounded,
			Display:     rounded.Format(displayUnit(def)),
			PercentDV:   e.PercentDailyValue(k, e.percentBasis(raw, rounded), opts.Reference),
		}
	}
	return summary, nil
}

// energy values are printed bare ("Calories 230")
func displayUnit(def domain.NutrientDefinition) string {
	if def.Category == domain.CategoryEnergy {
		return ""
	}
	return def.Unit
}

func catalogFor(catalog []domain.NutrientDefinition) map[string]domain.NutrientDefinition {
	out := make(map[string]domain.NutrientDefinition)
	if len(catalog) == 0 {
		defaults := DefaultNutrients()
		byKey := make(map[string]domain.NutrientDefinition, len(defaults))
		for _, d := range defaults {
			byKey[d.Key] = d
		}
		for _, k := range SummaryKeys {
			out[k] = byKey[k]
		}
		return out
	}
	for _, d := range catalog {
		if d.IsActive {
			out[d.Key] = d
		}
	}
	return out
}
