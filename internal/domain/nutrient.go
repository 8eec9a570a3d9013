package domain

import (
	"regexp"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// NutrientCategory groups nutrients for admin listing and rounding defaults
type NutrientCategory string

const (
	CategoryEnergy  NutrientCategory = "energy"
	CategoryMacro   NutrientCategory = "macro"
	CategoryVitamin NutrientCategory = "vitamin"
	CategoryMineral NutrientCategory = "mineral"
	CategoryOther   NutrientCategory = "other"
)

// NutrientCategories lists every recognised category in display order
var NutrientCategories = []NutrientCategory{
	CategoryEnergy, CategoryMacro, CategoryVitamin, CategoryMineral, CategoryOther,
}

// Valid reports whether c is a recognised category
func (c NutrientCategory) Valid() bool {
	for _, known := range NutrientCategories {
		if c == known {
			return true
		}
	}
	return false
}

// NutrientNames holds the per-language display names of a nutrient
type NutrientNames struct {
	En string `json:"en"`
	Ar string `json:"ar,omitempty"`
	Hi string `json:"hi,omitempty"`
	Zh string `json:"zh,omitempty"`
}

// NutrientDefinition is the master definition of a nutrient that can appear on a label
type NutrientDefinition struct {
	ID                string           `json:"id"`
	Key               string           `json:"key"`
	Names             NutrientNames    `json:"names"`
	Unit              string           `json:"unit"` // g, mg, mcg, kcal, kJ
	Category          NutrientCategory `json:"category"`
	ParentKey         string           `json:"parentKey,omitempty"`
	IsMandatoryGlobal bool             `json:"isMandatoryGlobal"`
	DefaultOrder      int              `json:"defaultOrder"`
	IsActive          bool             `json:"isActive"`
	CreatedAt         time.Time        `json:"createdAt"`
	UpdatedAt         time.Time        `json:"updatedAt"`
}

var keyPattern = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// Validate checks the key format, unit presence and category
func (n *NutrientDefinition) Validate() error {
	if !keyPattern.MatchString(n.Key) {
		return InvalidInput("nutrient", n.Key, "key", "must be lowercase letters, digits and underscores starting with a letter")
	}
	if n.Unit == "" {
		return InvalidInput("nutrient", n.Key, "unit", "unit is required")
	}
	if !n.Category.Valid() {
		return InvalidInput("nutrient", n.Key, "category", "unknown category %q", n.Category)
	}
	if n.ParentKey == n.Key {
		return InvalidInput("nutrient", n.Key, "parentKey", "a nutrient cannot be its own parent")
	}
	return nil
}

var titleCaser = cases.Title(language.English)

// DisplayName returns the name for lang, falling back to English and then to the title-cased key
func (n NutrientDefinition) DisplayName(lang string) string {
	var name string
	switch lang {
	case "ar":
		name = n.Names.Ar
	case "hi":
		name = n.Names.Hi
	case "zh":
		name = n.Names.Zh
	}
	if name == "" {
		name = n.Names.En
	}
	if name == "" {
		name = titleCaser.String(strings.ReplaceAll(n.Key, "_", " "))
	}
	return name
}
