package nutrition

import (
	"sort"
	"strings"

	"github.com/nutrical/backend/internal/domain"
)

func listSeparator(language string) string {
	if language == "ar" {
		return "، "
	}
	return ", "
}

// IngredientStatement lists the product's components by DisplayOrder, keeping
// recipe order on ties. A component's display name wins over the ingredient
// name, and a name already listed is not repeated.
func IngredientStatement(p *domain.Product, ingredients map[string]*domain.Ingredient, language string) string {
	components := append([]domain.RecipeComponent(nil), p.Components...)
	sort.SliceStable(components, func(i, j int) bool {
		return components[i].DisplayOrder < components[j].DisplayOrder
	})

	seen := make(map[string]bool, len(components))
	names := make([]string, 0, len(components))
	for _, c := range components {
		name := strings.TrimSpace(componentName(c, ingredients[c.IngredientID], language))
		if name == "" || seen[strings.ToLower(name)] {
			continue
		}
		seen[strings.ToLower(name)] = true
		names = append(names, name)
	}
	return strings.Join(names, listSeparator(language))
}

func componentName(c domain.RecipeComponent, ing *domain.Ingredient, language string) string {
	if language == "ar" {
		if c.DisplayNameAr != "" {
			return c.DisplayNameAr
		}
		if c.DisplayName == "" && ing != nil && ing.NameAr != "" {
			return ing.NameAr
		}
	}
	if c.DisplayName != "" {
		return c.DisplayName
	}
	if ing != nil {
		return ing.Name
	}
	return ""
}

// AllergenStatements groups the product's allergen links by status. Major
// allergens come first, then by name. Links without a loaded or active
// allergen are skipped.
func AllergenStatements(links []domain.ProductAllergen, language string) (contains, mayContain, freeFrom string) {
	sorted := make([]domain.ProductAllergen, 0, len(links))
	for _, l := range links {
		if l.Allergen != nil && l.Allergen.IsActive {
			sorted = append(sorted, l)
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i].Allergen, sorted[j].Allergen
		if a.IsMajor != b.IsMajor {
			return a.IsMajor
		}
		return a.Name < b.Name
	})

	groups := map[domain.AllergenStatus][]string{}
	for _, l := range sorted {
		groups[l.Status] = append(groups[l.Status], l.Allergen.DisplayName(language))
	}
	sep := listSeparator(language)
	return strings.Join(groups[domain.AllergenContains], sep),
		strings.Join(groups[domain.AllergenMayContain], sep),
		strings.Join(groups[domain.AllergenFreeFrom], sep)
}

// BuildLabelText assembles the ingredient and allergen statements of p
func BuildLabelText(p *domain.Product, ingredients map[string]*domain.Ingredient, language string) domain.LabelText {
	text := domain.LabelText{Ingredients: IngredientStatement(p, ingredients, language)}
	text.Contains, text.MayContain, text.FreeFrom = AllergenStatements(p.Allergens, language)
	return text
}
