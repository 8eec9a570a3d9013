package database

import (
	"context"

	"gorm.io/gorm"

	"github.com/nutrical/backend/internal/domain"
)

// AllergenRepository stores the allergen master list
type AllergenRepository struct {
	db *gorm.DB
}

// NewAllergenRepository creates an allergen repository over db
func NewAllergenRepository(db *gorm.DB) *AllergenRepository {
	return &AllergenRepository{db: db}
}

// List returns major allergens first, then by name
func (r *AllergenRepository) List(ctx context.Context, filter domain.AllergenFilter) ([]domain.Allergen, error) {
	query := r.db.WithContext(ctx).Model(&allergenRow{})
	if filter.MajorOnly {
		query = query.Where("is_major = ?", true)
	}
	if filter.ActiveOnly {
		query = query.Where("is_active = ?", true)
	}

	var rows []allergenRow
	if err := query.Order("is_major DESC").Order("name").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]domain.Allergen, 0, len(rows))
	for i := range rows {
		out = append(out, *rows[i].toDomain())
	}
	return out, nil
}

func (r *AllergenRepository) Get(ctx context.Context, id string) (*domain.Allergen, error) {
	var row allergenRow
	if err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return nil, translate(err, "allergen", id)
	}
	return row.toDomain(), nil
}

func (r *AllergenRepository) Create(ctx context.Context, a *domain.Allergen) error {
	row := newAllergenRow(a)
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return translate(err, "allergen", a.Name)
	}
	*a = *row.toDomain()
	return nil
}

func (r *AllergenRepository) Update(ctx context.Context, a *domain.Allergen) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing allergenRow
		if err := tx.First(&existing, "id = ?", a.ID).Error; err != nil {
			return translate(err, "allergen", a.ID)
		}
		row := newAllergenRow(a)
		row.CreatedAt = existing.CreatedAt
		if err := tx.Save(row).Error; err != nil {
			return translate(err, "allergen", a.Name)
		}
		*a = *row.toDomain()
		return nil
	})
}

// Delete refuses while a product still links the allergen
func (r *AllergenRepository) Delete(ctx context.Context, id string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var links int64
		if err := tx.Model(&productAllergenRow{}).Where("allergen_id = ?", id).Count(&links).Error; err != nil {
			return err
		}
		if links > 0 {
			return domain.Conflict("allergen", id, "declared by %d products", links)
		}
		res := tx.Delete(&allergenRow{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	return translate(err, "allergen", id)
}
