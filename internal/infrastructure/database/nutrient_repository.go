package database

import (
	"context"

	"gorm.io/gorm"

	"github.com/nutrical/backend/internal/domain"
)

// NutrientRepository stores the nutrient catalog
type NutrientRepository struct {
	db *gorm.DB
}

// NewNutrientRepository creates a catalog repository over db
func NewNutrientRepository(db *gorm.DB) *NutrientRepository {
	return &NutrientRepository{db: db}
}

func (r *NutrientRepository) List(ctx context.Context, filter domain.NutrientFilter) ([]domain.NutrientDefinition, error) {
	query := r.db.WithContext(ctx).Model(&nutrientRow{})
	if filter.Category != "" {
		query = query.Where("category = ?", string(filter.Category))
	}
	if filter.ActiveOnly {
		query = query.Where("is_active = ?", true)
	}

	var rows []nutrientRow
	if err := query.Order("default_order").Order("nutrient_key").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]domain.NutrientDefinition, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].toDomain())
	}
	return out, nil
}

func (r *NutrientRepository) GetByKey(ctx context.Context, key string) (*domain.NutrientDefinition, error) {
	var row nutrientRow
	if err := r.db.WithContext(ctx).Where("nutrient_key = ?", key).First(&row).Error; err != nil {
		return nil, translate(err, "nutrient", key)
	}
	def := row.toDomain()
	return &def, nil
}

// Create inserts all definitions in one transaction; any duplicate key aborts the batch
func (r *NutrientRepository) Create(ctx context.Context, defs ...*domain.NutrientDefinition) error {
	if len(defs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, def := range defs {
			row := newNutrientRow(def)
			if err := tx.Create(row).Error; err != nil {
				return translate(err, "nutrient", def.Key)
			}
			*def = row.toDomain()
		}
		return nil
	})
}

// Update saves every mutable field of the definition identified by def.Key
func (r *NutrientRepository) Update(ctx context.Context, def *domain.NutrientDefinition) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing nutrientRow
		if err := tx.Where("nutrient_key = ?", def.Key).First(&existing).Error; err != nil {
			return translate(err, "nutrient", def.Key)
		}
		row := newNutrientRow(def)
		row.ID = existing.ID
		row.CreatedAt = existing.CreatedAt
		if err := tx.Save(row).Error; err != nil {
			return translate(err, "nutrient", def.Key)
		}
		*def = row.toDomain()
		return nil
	})
}

func (r *NutrientRepository) Delete(ctx context.Context, key string) error {
	res := r.db.WithContext(ctx).Where("nutrient_key = ?", key).Delete(&nutrientRow{})
	if res.Error != nil {
		return translate(res.Error, "nutrient", key)
	}
	if res.RowsAffected == 0 {
		return domain.NotFound("nutrient", key)
	}
	return nil
}

func (r *NutrientRepository) CountReferences(ctx context.Context, key string) (configs int64, children int64, err error) {
	db := r.db.WithContext(ctx)
	if err = db.Model(&labelNutrientRow{}).Where("nutrient_key = ?", key).Count(&configs).Error; err != nil {
		return 0, 0, err
	}
	if err = db.Model(&nutrientRow{}).Where("parent_key = ?", key).Count(&children).Error; err != nil {
		return 0, 0, err
	}
	return configs, children, nil
}
