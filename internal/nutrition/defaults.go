package nutrition

import (
	"github.com/shopspring/decimal"

	"github.com/nutrical/backend/internal/domain"
)

type defaultNutrient struct {
	key      string
	en, ar   string
	unit     string
	category domain.NutrientCategory
	parent   string
	required bool
	bold     bool
	dv       string
}

var defaultCatalog = []defaultNutrient{
	{"calories", "Calories", "السعرات الحرارية", "kcal", domain.CategoryEnergy, "", true, true, ""},
	{"total_fat", "Total Fat", "إجمالي الدهون", "g", domain.CategoryMacro, "", true, true, "78"},
	{"saturated_fat", "Saturated Fat", "الدهون المشبعة", "g", domain.CategoryMacro, "total_fat", true, false, "20"},
	{"trans_fat", "Trans Fat", "الدهون المتحولة", "g", domain.CategoryMacro, "total_fat", true, false, ""},
	{"cholesterol", "Cholesterol", "الكوليسترول", "mg", domain.CategoryMacro, "", true, true, "300"},
	{"sodium", "Sodium", "الصوديوم", "mg", domain.CategoryMineral, "", true, true, "2300"},
	{"total_carbs", "Total Carbohydrate", "إجمالي الكربوهيدرات", "g", domain.CategoryMacro, "", true, true, "275"},
	{"dietary_fiber", "Dietary Fiber", "الألياف الغذائية", "g", domain.CategoryMacro, "total_carbs", true, false, "28"},
	{"total_sugars", "Total Sugars", "إجمالي السكريات", "g", domain.CategoryMacro, "total_carbs", true, false, ""},
	{"added_sugars", "Added Sugars", "السكريات المضافة", "g", domain.CategoryMacro, "total_sugars", true, false, "50"},
	{"protein", "Protein", "البروتين", "g", domain.CategoryMacro, "", true, true, "50"},
	{"vitamin_d", "Vitamin D", "فيتامين د", "mcg", domain.CategoryVitamin, "", true, false, "20"},
	{"calcium", "Calcium", "الكالسيوم", "mg", domain.CategoryMineral, "", true, false, "1300"},
	{"iron", "Iron", "الحديد", "mg", domain.CategoryMineral, "", true, false, "18"},
	{"potassium", "Potassium", "البوتاسيوم", "mg", domain.CategoryMineral, "", true, false, "4700"},
	{"vitamin_a", "Vitamin A", "", "mcg", domain.CategoryVitamin, "", false, false, "900"},
	{"vitamin_c", "Vitamin C", "", "mg", domain.CategoryVitamin, "", false, false, "90"},
	{"vitamin_e", "Vitamin E", "", "mg", domain.CategoryVitamin, "", false, false, "15"},
	{"vitamin_k", "Vitamin K", "", "mcg", domain.CategoryVitamin, "", false, false, "120"},
	{"thiamin", "Thiamin", "", "mg", domain.CategoryVitamin, "", false, false, "1.2"},
	{"riboflavin", "Riboflavin", "", "mg", domain.CategoryVitamin, "", false, false, "1.3"},
	{"niacin", "Niacin", "", "mg", domain.CategoryVitamin, "", false, false, "16"},
	{"vitamin_b6", "Vitamin B6", "", "mg", domain.CategoryVitamin, "", false, false, "1.7"},
	{"folate", "Folate", "", "mcg", domain.CategoryVitamin, "", false, false, "400"},
	{"vitamin_b12", "Vitamin B12", "", "mcg", domain.CategoryVitamin, "", false, false, "2.4"},
	{"biotin", "Biotin", "", "mcg", domain.CategoryVitamin, "", false, false, "30"},
	{"pantothenic_acid", "Pantothenic Acid", "", "mg", domain.CategoryVitamin, "", false, false, "5"},
	{"choline", "Choline", "", "mg", domain.CategoryVitamin, "", false, false, "550"},
	{"phosphorus", "Phosphorus", "", "mg", domain.CategoryMineral, "", false, false, "1250"},
	{"iodine", "Iodine", "", "mcg", domain.CategoryMineral, "", false, false, "150"},
	{"magnesium", "Magnesium", "", "mg", domain.CategoryMineral, "", false, false, "420"},
	{"zinc", "Zinc", "", "mg", domain.CategoryMineral, "", false, false, "11"},
	{"selenium", "Selenium", "", "mcg", domain.CategoryMineral, "", false, false, "55"},
	{"copper", "Copper", "", "mg", domain.CategoryMineral, "", false, false, "0.9"},
	{"manganese", "Manganese", "", "mg", domain.CategoryMineral, "", false, false, "2.3"},
	{"chromium", "Chromium", "", "mcg", domain.CategoryMineral, "", false, false, "35"},
	{"molybdenum", "Molybdenum", "", "mcg", domain.CategoryMineral, "", false, false, "45"},
	{"chloride", "Chloride", "", "mg", domain.CategoryMineral, "", false, false, "2300"},
}

// DefaultNutrients returns the seed catalog in default display order
func DefaultNutrients() []domain.NutrientDefinition {
	out := make([]domain.NutrientDefinition, 0, len(defaultCatalog))
	for i, n := range defaultCatalog {
		out = append(out, domain.NutrientDefinition{
			Key:               n.key,
			Names:             domain.NutrientNames{En: n.en, Ar: n.ar},
			Unit:              n.unit,
			Category:          n.category,
			ParentKey:         n.parent,
			IsMandatoryGlobal: n.required,
			DefaultOrder:      i + 1,
			IsActive:          true,
		})
	}
	return out
}

// FDA2020Table returns the US daily values in effect from 2020 (2000 kcal diet)
func FDA2020Table() *domain.ReferenceTable {
	t := &domain.ReferenceTable{
		Code:        "FDA_2020",
		Name:        "FDA Daily Values (2020)",
		Description: "US FDA daily reference values, 21 CFR 101.9",
		Region:      "US",
		CalorieBase: 2000,
		Values:      map[string]*decimal.Decimal{},
		Units:       map[string]string{},
		IsActive:    true,
		IsDefault:   true,
	}
	for _, n := range defaultCatalog {
		if n.dv == "" {
			t.Values[n.key] = nil
			continue
		}
		v := decimal.RequireFromString(n.dv)
		t.Values[n.key] = &v
		t.Units[n.key] = n.unit
	}
	return t
}

// FDALabelType returns the standard US panel configured over the mandatory
// nutrients. Indentation follows the catalog hierarchy.
func FDALabelType() (*domain.LabelType, error) {
	defs := DefaultNutrients()
	tree, err := BuildTree(defs)
	if err != nil {
		return nil, err
	}
	lt := &domain.LabelType{
		Code:             "FDA_STANDARD",
		Name:             "FDA Standard Vertical",
		Category:         "regulatory",
		Region:           "US",
		Languages:        []string{"en"},
		DisplayModes:     []domain.DisplayMode{domain.DisplayPerServing},
		DailyCalorieBase: 2000,
		EnergyUnit:       "kcal",
		SodiumDisplay:    "sodium",
		Width:            300,
		Height:           600,
		Typography:       domain.DefaultTypography,
		Border:           domain.DefaultBorder,
		ColorScheme:      domain.DefaultColorScheme,
		Footnotes: []domain.Footnote{{
			Text:     "The % Daily Value (DV) tells you how much a nutrient in a serving of food contributes to a daily diet. 2,000 calories a day is used for general nutrition advice.",
			Required: true,
		}},
		IsActive: true,
		IsSystem: true,
	}
	for i, n := range defaultCatalog {
		if !n.required {
			continue
		}
		lt.Nutrients = append(lt.Nutrients, domain.LabelTypeNutrient{
			NutrientKey:   n.key,
			IsMandatory:   true,
			ShowByDefault: true,
			ShowPercentDV: n.dv != "",
			DisplayOrder:  i + 1,
			IndentLevel:   domain.Indent(DefaultIndent(tree, n.key)),
			IsBold:        n.bold,
		})
	}
	return lt, nil
}

// DefaultIndent is the tree depth of key clamped to the label indent range
func DefaultIndent(tree *NutrientTree, key string) int {
	d := tree.Depth(key)
	switch {
	case d < 0:
		return 0
	case d > domain.MaxIndentLevel:
		return domain.MaxIndentLevel
	}
	return d
}

// DefaultAllergens is the allergen master list: the nine FDA major food
// allergens followed by common additions from other regulations
func DefaultAllergens() []domain.Allergen {
	major := []struct{ en, ar string }{
		{"Milk", "حليب"},
		{"Eggs", "بيض"},
		{"Fish", "سمك"},
		{"Shellfish", "المحار"},
		{"Tree Nuts", "المكسرات"},
		{"Peanuts", "فول سوداني"},
		{"Wheat", "قمح"},
		{"Soybeans", "فول الصويا"},
		{"Sesame", "سمسم"},
	}
	extra := []struct{ en, ar string }{
		{"Gluten", "غلوتين"},
		{"Mustard", "خردل"},
		{"Celery", "كرفس"},
		{"Lupin", "ترمس"},
		{"Molluscs", "رخويات"},
		{"Sulphites", "كبريتات"},
	}
	out := make([]domain.Allergen, 0, len(major)+len(extra))
	for _, a := range major {
		out = append(out, domain.Allergen{Name: a.en, NameAr: a.ar, IsMajor: true, IsActive: true})
	}
	for _, a := range extra {
		out = append(out, domain.Allergen{Name: a.en, NameAr: a.ar, IsActive: true})
	}
	return out
}
