package usecase

import (
	"context"

	"github.com/nutrical/backend/internal/domain"
	"github.com/nutrical/backend/internal/nutrition"
)

// ProductService manages an owner's recipes and their allergen declarations
type ProductService struct {
	products    domain.ProductRepository
	ingredients domain.IngredientRepository
	allergens   domain.AllergenRepository
}

// NewProductService creates a product service
func NewProductService(
	products domain.ProductRepository,
	ingredients domain.IngredientRepository,
	allergens domain.AllergenRepository,
) *ProductService {
	return &ProductService{products: products, ingredients: ingredients, allergens: allergens}
}

func requireOwner(ownerID string) error {
	if ownerID == "" {
		return domain.InvalidInput("product", "", "ownerId", "owner is required")
	}
	return nil
}

func (s *ProductService) List(ctx context.Context, ownerID string, page, pageSize int) ([]domain.Product, int64, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, 0, err
	}
	offset, limit := Page(page, pageSize)
	return s.products.List(ctx, ownerID, offset, limit)
}

func (s *ProductService) Get(ctx context.Context, ownerID, id string) (*domain.Product, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}
	return s.products.Get(ctx, ownerID, id)
}

// Create stores p for ownerID together with any components and allergen
// declarations it already carries
func (s *ProductService) Create(ctx context.Context, ownerID string, p *domain.Product) error {
	if err := requireOwner(ownerID); err != nil {
		return err
	}
	p.OwnerID = ownerID
	if err := normalizeProduct(p); err != nil {
		return err
	}
	if len(p.Components) > 0 {
		if err := s.checkComponents(ctx, p.Components); err != nil {
			return err
		}
	}
	links := p.Allergens
	p.Allergens = nil
	if err := s.checkAllergens(ctx, p.ID, links); err != nil {
		return err
	}
	if err := s.products.Create(ctx, p); err != nil {
		return err
	}
	if len(links) == 0 {
		return nil
	}
	if err := s.products.SetAllergens(ctx, ownerID, p.ID, links); err != nil {
		return err
	}
	saved, err := s.products.Get(ctx, ownerID, p.ID)
	if err != nil {
		return err
	}
	*p = *saved
	return nil
}

// Update saves the serving definition and descriptive fields of a product
func (s *ProductService) Update(ctx context.Context, ownerID, id string, p *domain.Product) error {
	if err := requireOwner(ownerID); err != nil {
		return err
	}
	p.ID = id
	p.OwnerID = ownerID
	p.Components = nil
	p.Allergens = nil
	if err := normalizeProduct(p); err != nil {
		return err
	}
	return s.products.Update(ctx, p)
}

func (s *ProductService) Delete(ctx context.Context, ownerID, id string) error {
	if err := requireOwner(ownerID); err != nil {
		return err
	}
	return s.products.Delete(ctx, ownerID, id)
}

// AddComponent appends an ingredient usage. The quantity unit must be
// convertible to the ingredient's reference unit.
func (s *ProductService) AddComponent(ctx context.Context, ownerID, productID string, c *domain.RecipeComponent) error {
	if err := requireOwner(ownerID); err != nil {
		return err
	}
	c.ProductID = productID
	if err := c.Validate(); err != nil {
		return err
	}
	if err := s.checkComponents(ctx, []domain.RecipeComponent{*c}); err != nil {
		return err
	}
	unit, _ := nutrition.NormalizeUnit(c.Unit)
	c.Unit = unit
	return s.products.AddComponent(ctx, ownerID, c)
}

func (s *ProductService) RemoveComponent(ctx context.Context, ownerID, productID, componentID string) error {
	if err := requireOwner(ownerID); err != nil {
		return err
	}
	return s.products.RemoveComponent(ctx, ownerID, productID, componentID)
}

// Allergens returns the product's allergen declarations
func (s *ProductService) Allergens(ctx context.Context, ownerID, productID string) ([]domain.ProductAllergen, error) {
	p, err := s.Get(ctx, ownerID, productID)
	if err != nil {
		return nil, err
	}
	return p.Allergens, nil
}

// SetAllergens replaces the product's allergen declarations. An empty status
// means contains; each allergen may be declared once.
func (s *ProductService) SetAllergens(ctx context.Context, ownerID, productID string, links []domain.ProductAllergen) ([]domain.ProductAllergen, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}
	if err := s.checkAllergens(ctx, productID, links); err != nil {
		return nil, err
	}
	if err := s.products.SetAllergens(ctx, ownerID, productID, links); err != nil {
		return nil, err
	}
	return s.Allergens(ctx, ownerID, productID)
}

// checkAllergens normalises links and verifies every allergen exists
func (s *ProductService) checkAllergens(ctx context.Context, productID string, links []domain.ProductAllergen) error {
	if err := normalizeAllergenLinks(productID, links); err != nil {
		return err
	}
	for _, l := range links {
		if _, err := s.allergens.Get(ctx, l.AllergenID); err != nil {
			return err
		}
	}
	return nil
}

func normalizeAllergenLinks(productID string, links []domain.ProductAllergen) error {
	seen := make(map[string]bool, len(links))
	for i := range links {
		l := &links[i]
		if l.AllergenID == "" {
			return domain.InvalidInput("product", productID, "allergenId", "allergen is required")
		}
		if seen[l.AllergenID] {
			return domain.InvalidInput("product", productID, "allergens", "allergen %q declared twice", l.AllergenID)
		}
		seen[l.AllergenID] = true
		if l.Status == "" {
			l.Status = domain.AllergenContains
		}
		if !l.Status.Valid() {
			return domain.InvalidInput("product", productID, "status", "unknown allergen status %q", l.Status)
		}
		l.Allergen = nil
	}
	return nil
}

func normalizeProduct(p *domain.Product) error {
	if err := p.Validate(); err != nil {
		return err
	}
	unit, ok := nutrition.NormalizeUnit(p.ServingUnit)
	if !ok {
		return domain.InvalidInput("product", p.ID, "servingUnit", "unknown unit %q", p.ServingUnit)
	}
	p.ServingUnit = unit
	for i := range p.Components {
		if u, ok := nutrition.NormalizeUnit(p.Components[i].Unit); ok {
			p.Components[i].Unit = u
		}
	}
	return nil
}

// checkComponents verifies every referenced ingredient exists and that each
// quantity can be expressed in the ingredient's reference unit
func (s *ProductService) checkComponents(ctx context.Context, components []domain.RecipeComponent) error {
	ids := make([]string, 0, len(components))
	for _, c := range components {
		ids = append(ids, c.IngredientID)
	}
	found, err := s.ingredients.GetMany(ctx, ids)
	if err != nil {
		return err
	}
	for _, c := range components {
		ing, ok := found[c.IngredientID]
		if !ok {
			return domain.NotFound("ingredient", c.IngredientID)
		}
		if _, err := nutrition.Convert(c.Quantity, c.Unit, ing.PerUnit); err != nil {
			return domain.InvalidInput("component", c.IngredientID, "unit",
				"%s cannot be measured in %s", ing.Name, c.Unit)
		}
	}
	return nil
}
