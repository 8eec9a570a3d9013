package usda

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/nutrical/backend/internal/domain"
	"github.com/nutrical/backend/internal/nutrition"
)

// FoodData Central nutrient ids
const (
	NutrientIDProtein      = 1003
	NutrientIDTotalFat     = 1004
	NutrientIDCarbohydrate = 1005
	NutrientIDEnergy       = 1008
	NutrientIDSugarsTotal  = 2000
	NutrientIDSugarsLegacy = 1063
	NutrientIDFiber        = 1079
	NutrientIDCalcium      = 1087
	NutrientIDIron         = 1089
	NutrientIDMagnesium    = 1090
	NutrientIDPhosphorus   = 1091
	NutrientIDPotassium    = 1092
	NutrientIDSodium       = 1093
	NutrientIDZinc         = 1095
	NutrientIDCopper       = 1098
	NutrientIDManganese    = 1101
	NutrientIDSelenium     = 1103
	NutrientIDVitaminA     = 1106
	NutrientIDVitaminE     = 1109
	NutrientIDVitaminD     = 1114
	NutrientIDVitaminC     = 1162
	NutrientIDThiamin      = 1165
	NutrientIDRiboflavin   = 1166
	NutrientIDNiacin       = 1167
	NutrientIDPantothenic  = 1170
	NutrientIDVitaminB6    = 1175
	NutrientIDFolateDFE    = 1190
	NutrientIDVitaminB12   = 1178
	NutrientIDCholine      = 1180
	NutrientIDVitaminK     = 1185
	NutrientIDAddedSugars  = 1235
	NutrientIDCholesterol  = 1253
	NutrientIDTransFat     = 1257
	NutrientIDSaturatedFat = 1258
)

type catalogTarget struct {
	key  string
	unit string
}

// nutrientMap maps FoodData Central ids onto catalog keys and their catalog units
var nutrientMap = map[int]catalogTarget{
	NutrientIDEnergy:       {"calories", "kcal"},
	NutrientIDTotalFat:     {"total_fat", "g"},
	NutrientIDSaturatedFat: {"saturated_fat", "g"},
	NutrientIDTransFat:     {"trans_fat", "g"},
	NutrientIDCholesterol:  {"cholesterol", "mg"},
	NutrientIDSodium:       {"sodium", "mg"},
	NutrientIDCarbohydrate: {"total_carbs", "g"},
	NutrientIDFiber:        {"dietary_fiber", "g"},
	NutrientIDSugarsTotal:  {"total_sugars", "g"},
	NutrientIDSugarsLegacy: {"total_sugars", "g"},
	NutrientIDAddedSugars:  {"added_sugars", "g"},
	NutrientIDProtein:      {"protein", "g"},
	NutrientIDVitaminD:     {"vitamin_d", "mcg"},
	NutrientIDCalcium:      {"calcium", "mg"},
	NutrientIDIron:         {"iron", "mg"},
	NutrientIDPotassium:    {"potassium", "mg"},
	NutrientIDVitaminA:     {"vitamin_a", "mcg"},
	NutrientIDVitaminC:     {"vitamin_c", "mg"},
	NutrientIDVitaminE:     {"vitamin_e", "mg"},
	NutrientIDVitaminK:     {"vitamin_k", "mcg"},
	NutrientIDThiamin:      {"thiamin", "mg"},
	NutrientIDRiboflavin:   {"riboflavin", "mg"},
	NutrientIDNiacin:       {"niacin", "mg"},
	NutrientIDVitaminB6:    {"vitamin_b6", "mg"},
	NutrientIDFolateDFE:    {"folate", "mcg"},
	NutrientIDVitaminB12:   {"vitamin_b12", "mcg"},
	NutrientIDPantothenic:  {"pantothenic_acid", "mg"},
	NutrientIDCholine:      {"choline", "mg"},
	NutrientIDPhosphorus:   {"phosphorus", "mg"},
	NutrientIDMagnesium:    {"magnesium", "mg"},
	NutrientIDZinc:         {"zinc", "mg"},
	NutrientIDSelenium:     {"selenium", "mcg"},
	NutrientIDCopper:       {"copper", "mg"},
	NutrientIDManganese:    {"manganese", "mg"},
}

// MapToIngredient converts a FoodData Central food into an unverified ingredient
// profile per 100 g. Nutrients reported in another mass unit than the catalog's
// are converted; energy reported in kJ and negative amounts are skipped.
func MapToIngredient(food *domain.USDAFood) *domain.Ingredient {
	return &domain.Ingredient{
		Name:      strings.TrimSpace(food.Description),
		Category:  food.FoodClass,
		Nutrients: extractNutrients(food.Nutrients),
		PerAmount: decimal.NewFromInt(100),
		PerUnit:   "g",
		Source:    fmt.Sprintf("USDA FDC %d", food.FdcID),
	}
}

func extractNutrients(usdaNutrients []domain.USDANutrient) map[string]decimal.Decimal {
	nutrients := make(map[string]decimal.Decimal)
	for _, n := range usdaNutrients {
		target, ok := nutrientMap[n.NutrientID]
		if !ok || n.Value < 0 {
			continue
		}
		// the legacy sugars id only fills a gap left by the current one
		if n.NutrientID == NutrientIDSugarsLegacy {
			if _, seen := nutrients[target.key]; seen {
				continue
			}
		}
		v, ok := convertAmount(decimal.NewFromFloat(n.Value), n.UnitName, target.unit)
		if !ok {
			continue
		}
		nutrients[target.key] = v
	}
	return nutrients
}

func convertAmount(v decimal.Decimal, from, to string) (decimal.Decimal, bool) {
	from = strings.ToLower(strings.TrimSpace(from))
	if from == "" || from == to {
		return v, true
	}
	if to == "kcal" {
		return v, from == "kcal"
	}
	out, err := nutrition.Convert(v, from, to)
	if err != nil {
		return decimal.Zero, false
	}
	return out.Round(4), true
}

// CandidatesFrom trims a search response into the hits offered for import
func CandidatesFrom(resp *domain.USDASearchResponse) []domain.USDACandidate {
	if resp == nil {
		return []domain.USDACandidate{}
	}
	out := make([]domain.USDACandidate, 0, len(resp.Foods))
	for _, f := range resp.Foods {
		out = append(out, domain.USDACandidate{
			FdcID:       f.FdcID,
			Description: f.Description,
			DataType:    f.DataType,
			BrandOwner:  f.BrandOwner,
			Calories:    FindNutrientValue(f.Nutrients, NutrientIDEnergy),
		})
	}
	return out
}

// FindNutrientValue finds a specific nutrient value by ID
func FindNutrientValue(nutrients []domain.USDANutrient, nutrientID int) float64 {
	for _, nutrient := range nutrients {
		if nutrient.NutrientID == nutrientID {
			return nutrient.Value
		}
	}
	return 0.0
}
