package database

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/nutrical/backend/internal/domain"
)

// ProductRepository stores products and their recipe components. Every query is
// scoped to the owner so one tenant never sees another's recipes.
type ProductRepository struct {
	db *gorm.DB
}

// NewProductRepository creates a product repository over db
func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

func preloadComponents(db *gorm.DB) *gorm.DB {
	return db.Order("display_order").Order("id")
}

func withRecipe(db *gorm.DB) *gorm.DB {
	return db.Preload("Components", preloadComponents).Preload("Allergens.Allergen")
}

func loadProduct(db *gorm.DB, ownerID, id string) (*domain.Product, error) {
	var row productRow
	if err := withRecipe(db).
		Where("owner_id = ?", ownerID).
		First(&row, "id = ?", id).Error; err != nil {
		return nil, translate(err, "product", id)
	}
	return row.toDomain(), nil
}

func (r *ProductRepository) List(ctx context.Context, ownerID string, offset, limit int) ([]domain.Product, int64, error) {
	query := r.db.WithContext(ctx).Model(&productRow{}).Where("owner_id = ?", ownerID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []productRow
	if err := withRecipe(query).
		Order("updated_at DESC").
		Offset(offset).Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	out := make([]domain.Product, 0, len(rows))
	for i := range rows {
		out = append(out, *rows[i].toDomain())
	}
	return out, total, nil
}

func (r *ProductRepository) Get(ctx context.Context, ownerID, id string) (*domain.Product, error) {
	return loadProduct(r.db.WithContext(ctx), ownerID, id)
}

// Create inserts the product together with its components
func (r *ProductRepository) Create(ctx context.Context, p *domain.Product) error {
	row := newProductRow(p)
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return translate(err, "product", p.Name)
	}
	*p = *row.toDomain()
	return nil
}

// Update saves the product fields; components are managed separately
func (r *ProductRepository) Update(ctx context.Context, p *domain.Product) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing productRow
		if err := tx.Where("owner_id = ?", p.OwnerID).First(&existing, "id = ?", p.ID).Error; err != nil {
			return translate(err, "product", p.ID)
		}
		row := newProductRow(p)
		row.Components = nil
		row.CreatedAt = existing.CreatedAt
		if err := tx.Omit(clause.Associations).Save(row).Error; err != nil {
			return translate(err, "product", p.ID)
		}

		saved, err := loadProduct(tx, p.OwnerID, p.ID)
		if err != nil {
			return err
		}
		*p = *saved
		return nil
	})
}

func (r *ProductRepository) Delete(ctx context.Context, ownerID, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := r.ensureOwned(tx, ownerID, id); err != nil {
			return err
		}
		for _, child := range []any{&componentRow{}, &productAllergenRow{}, &labelRow{}} {
			if err := tx.Where("product_id = ?", id).Delete(child).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&productRow{}, "id = ?", id).Error
	})
}

func (r *ProductRepository) AddComponent(ctx context.Context, ownerID string, c *domain.RecipeComponent) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := r.ensureOwned(tx, ownerID, c.ProductID); err != nil {
			return err
		}
		row := newComponentRow(c)
		if err := tx.Create(&row).Error; err != nil {
			return translate(err, "component", c.IngredientID)
		}
		if err := tx.Model(&productRow{}).Where("id = ?", c.ProductID).Update("updated_at", time.Now()).Error; err != nil {
			return err
		}
		*c = row.toDomain()
		return nil
	})
}

func (r *ProductRepository) RemoveComponent(ctx context.Context, ownerID, productID, componentID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := r.ensureOwned(tx, ownerID, productID); err != nil {
			return err
		}
		res := tx.Where("product_id = ?", productID).Delete(&componentRow{}, "id = ?", componentID)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.NotFound("component", componentID)
		}
		return nil
	})
}

// SetAllergens replaces the product's allergen links. Every allergen must exist.
func (r *ProductRepository) SetAllergens(ctx context.Context, ownerID, productID string, links []domain.ProductAllergen) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := r.ensureOwned(tx, ownerID, productID); err != nil {
			return err
		}
		if len(links) > 0 {
			ids := make([]string, 0, len(links))
			for _, l := range links {
				ids = append(ids, l.AllergenID)
			}
			var known []string
			if err := tx.Model(&allergenRow{}).Where("id IN ?", ids).Pluck("id", &known).Error; err != nil {
				return err
			}
			have := make(map[string]bool, len(known))
			for _, id := range known {
				have[id] = true
			}
			for _, id := range ids {
				if !have[id] {
					return domain.NotFound("allergen", id)
				}
			}
		}

		if err := tx.Where("product_id = ?", productID).Delete(&productAllergenRow{}).Error; err != nil {
			return err
		}
		for _, l := range links {
			row := productAllergenRow{ProductID: productID, AllergenID: l.AllergenID, Status: string(l.Status)}
			if err := tx.Omit(clause.Associations).Create(&row).Error; err != nil {
				return translate(err, "product allergen", l.AllergenID)
			}
		}
		return tx.Model(&productRow{}).Where("id = ?", productID).Update("updated_at", time.Now()).Error
	})
}

func (r *ProductRepository) ensureOwned(tx *gorm.DB, ownerID, id string) error {
	var n int64
	if err := tx.Model(&productRow{}).Where("id = ? AND owner_id = ?", id, ownerID).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return domain.NotFound("product", id)
	}
	return nil
}
