package domain

import (
	"regexp"
	"time"
)

// Allergen is an entry of the allergen master list. IsMajor marks the FDA major
// food allergens.
type Allergen struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	NameAr    string    `json:"nameAr,omitempty"`
	Icon      string    `json:"icon,omitempty"`
	Color     string    `json:"color,omitempty"`
	IsMajor   bool      `json:"isMajor"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
}

var hexColor = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// DisplayName returns the name in language, falling back to English
func (a *Allergen) DisplayName(language string) string {
	if language == "ar" && a.NameAr != "" {
		return a.NameAr
	}
	return a.Name
}

func (a *Allergen) Validate() error {
	if a.Name == "" {
		return InvalidInput("allergen", a.ID, "name", "name is required")
	}
	if a.Color != "" && !hexColor.MatchString(a.Color) {
		return InvalidInput("allergen", a.Name, "color", "must be a #rrggbb colour, got %q", a.Color)
	}
	return nil
}

// AllergenStatus says how a product relates to an allergen
type AllergenStatus string

const (
	AllergenContains   AllergenStatus = "contains"
	AllergenMayContain AllergenStatus = "may_contain"
	AllergenFreeFrom   AllergenStatus = "free_from"
)

func (s AllergenStatus) Valid() bool {
	switch s {
	case AllergenContains, AllergenMayContain, AllergenFreeFrom:
		return true
	}
	return false
}

// ProductAllergen links a product to an allergen. Allergen is filled on reads.
type ProductAllergen struct {
	ID         string         `json:"id"`
	ProductID  string         `json:"productId"`
	AllergenID string         `json:"allergenId"`
	Status     AllergenStatus `json:"status"`
	Allergen   *Allergen      `json:"allergen,omitempty"`
}

// AllergenFilter narrows allergen listings
type AllergenFilter struct {
	MajorOnly  bool
	ActiveOnly bool
}
