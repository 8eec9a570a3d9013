package domain

import (
	"context"
	"time"
)

// CacheRepository defines the interface for caching operations
type CacheRepository interface {
	Get(ctx context.Context, key string) (interface{}, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// USDAClient defines the interface for interacting with USDA FoodData Central API
type USDAClient interface {
	SearchFoods(ctx context.Context, query string) (*USDASearchResponse, error)
	GetFoodDetails(ctx context.Context, fdcID string) (*USDAFood, error)
}

// NutrientRepository persists the nutrient catalog
type NutrientRepository interface {
	List(ctx context.Context, filter NutrientFilter) ([]NutrientDefinition, error)
	GetByKey(ctx context.Context, key string) (*NutrientDefinition, error)
	Create(ctx context.Context, defs ...*NutrientDefinition) error
	Update(ctx context.Context, def *NutrientDefinition) error
	Delete(ctx context.Context, key string) error
	// CountReferences returns how many label configs and child nutrients point at key
	CountReferences(ctx context.Context, key string) (configs int64, children int64, err error)
}

// NutrientFilter narrows catalog listings
type NutrientFilter struct {
	Category   NutrientCategory
	ActiveOnly bool
}

// IngredientRepository persists master ingredients
type IngredientRepository interface {
	List(ctx context.Context, search string, offset, limit int) ([]Ingredient, int64, error)
	Get(ctx context.Context, id string) (*Ingredient, error)
	GetMany(ctx context.Context, ids []string) (map[string]*Ingredient, error)
	Create(ctx context.Context, ing *Ingredient) error
	Update(ctx context.Context, ing *Ingredient) error
	Delete(ctx context.Context, id string) error
}

// ProductRepository persists products scoped to their owner
type ProductRepository interface {
	List(ctx context.Context, ownerID string, offset, limit int) ([]Product, int64, error)
	Get(ctx context.Context, ownerID, id string) (*Product, error)
	Create(ctx context.Context, p *Product) error
	Update(ctx context.Context, p *Product) error
	Delete(ctx context.Context, ownerID, id string) error
	AddComponent(ctx context.Context, ownerID string, c *RecipeComponent) error
	RemoveComponent(ctx context.Context, ownerID, productID, componentID string) error
	// SetAllergens replaces every allergen link of the product in one transaction
	SetAllergens(ctx context.Context, ownerID, productID string, links []ProductAllergen) error
}

// AllergenRepository persists the allergen master list
type AllergenRepository interface {
	List(ctx context.Context, filter AllergenFilter) ([]Allergen, error)
	Get(ctx context.Context, id string) (*Allergen, error)
	Create(ctx context.Context, a *Allergen) error
	Update(ctx context.Context, a *Allergen) error
	// Delete refuses while a product still links the allergen
	Delete(ctx context.Context, id string) error
}

// LabelRepository persists generated labels scoped to their owner
type LabelRepository interface {
	List(ctx context.Context, ownerID, productID string) ([]Label, error)
	Get(ctx context.Context, ownerID, id string) (*Label, error)
	// Create assigns the next version number of the product
	Create(ctx context.Context, l *Label) error
	Delete(ctx context.Context, ownerID, id string) error
}

// ReferenceTableRepository persists RDA/NRV tables
type ReferenceTableRepository interface {
	List(ctx context.Context, region string, activeOnly bool) ([]ReferenceTable, error)
	Get(ctx context.Context, id string) (*ReferenceTable, error)
	GetByCode(ctx context.Context, code string) (*ReferenceTable, error)
	GetDefault(ctx context.Context, region string) (*ReferenceTable, error)
	Create(ctx context.Context, t *ReferenceTable) error
	Update(ctx context.Context, t *ReferenceTable) error
	Delete(ctx context.Context, id string) error
	Regions(ctx context.Context) ([]string, error)
	// SetDefault atomically clears the default flag of every other table in the
	// table's region and sets it on id
	SetDefault(ctx context.Context, id string) error
}

// LabelTypeRepository persists label types together with their nutrient configs
type LabelTypeRepository interface {
	List(ctx context.Context, activeOnly bool) ([]LabelType, error)
	Get(ctx context.Context, id string) (*LabelType, error)
	GetByCode(ctx context.Context, code string) (*LabelType, error)
	Create(ctx context.Context, lt *LabelType) error
	Update(ctx context.Context, lt *LabelType) error
	Delete(ctx context.Context, id string) error
	// ReplaceNutrients swaps the full config set of a label type in one transaction
	ReplaceNutrients(ctx context.Context, labelTypeID string, configs []LabelTypeNutrient) error
	// ApplyDailyValues writes override values for matching nutrient keys and returns how many configs changed
	ApplyDailyValues(ctx context.Context, labelTypeID string, table *ReferenceTable) (int, error)
}
