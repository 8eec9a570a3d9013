package database

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/nutrical/backend/internal/domain"
)

// IngredientRepository stores master ingredients
type IngredientRepository struct {
	db *gorm.DB
}

// NewIngredientRepository creates an ingredient repository over db
func NewIngredientRepository(db *gorm.DB) *IngredientRepository {
	return &IngredientRepository{db: db}
}

func (r *IngredientRepository) List(ctx context.Context, search string, offset, limit int) ([]domain.Ingredient, int64, error) {
	query := r.db.WithContext(ctx).Model(&ingredientRow{})
	if s := strings.TrimSpace(search); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(name_ar) LIKE ?", like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []ingredientRow
	if err := query.Order("name").Offset(offset).Limit(limit).Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	out := make([]domain.Ingredient, 0, len(rows))
	for i := range rows {
		out = append(out, *rows[i].toDomain())
	}
	return out, total, nil
}

func (r *IngredientRepository) Get(ctx context.Context, id string) (*domain.Ingredient, error) {
	var row ingredientRow
	if err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return nil, translate(err, "ingredient", id)
	}
	return row.toDomain(), nil
}

// GetMany loads the ingredients with the given ids. Missing ids are simply absent
// from the result.
func (r *IngredientRepository) GetMany(ctx context.Context, ids []string) (map[string]*domain.Ingredient, error) {
	out := make(map[string]*domain.Ingredient, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []ingredientRow
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	for i := range rows {
		out[rows[i].ID] = rows[i].toDomain()
	}
	return out, nil
}

func (r *IngredientRepository) Create(ctx context.Context, ing *domain.Ingredient) error {
	row := newIngredientRow(ing)
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return translate(err, "ingredient", ing.Name)
	}
	*ing = *row.toDomain()
	return nil
}

func (r *IngredientRepository) Update(ctx context.Context, ing *domain.Ingredient) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing ingredientRow
		if err := tx.Select("id", "created_at").First(&existing, "id = ?", ing.ID).Error; err != nil {
			return translate(err, "ingredient", ing.ID)
		}
		row := newIngredientRow(ing)
		row.CreatedAt = existing.CreatedAt
		if err := tx.Save(row).Error; err != nil {
			return translate(err, "ingredient", ing.ID)
		}
		*ing = *row.toDomain()
		return nil
	})
}

// Delete refuses to remove an ingredient that a recipe still uses
func (r *IngredientRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var uses int64
		if err := tx.Model(&componentRow{}).Where("ingredient_id = ?", id).Count(&uses).Error; err != nil {
			return err
		}
		if uses > 0 {
			return domain.Conflict("ingredient", id, "used by %d recipe components", uses)
		}
		res := tx.Delete(&ingredientRow{}, "id = ?", id)
		if res.Error != nil {
			return translate(res.Error, "ingredient", id)
		}
		if res.RowsAffected == 0 {
			return domain.NotFound("ingredient", id)
		}
		return nil
	})
}
