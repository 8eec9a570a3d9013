package database

import (
	"context"

	"gorm.io/gorm"

	"github.com/nutrical/backend/internal/domain"
)

// LabelRepository stores generated labels. Queries are scoped to the owner.
type LabelRepository struct {
	db *gorm.DB
}

// NewLabelRepository creates a label repository over db
func NewLabelRepository(db *gorm.DB) *LabelRepository {
	return &LabelRepository{db: db}
}

// List returns the owner's labels, newest version first. An empty productID
// lists labels of every product.
func (r *LabelRepository) List(ctx context.Context, ownerID, productID string) ([]domain.Label, error) {
	query := r.db.WithContext(ctx).Where("owner_id = ?", ownerID)
	if productID != "" {
		query = query.Where("product_id = ?", productID)
	}
	var rows []labelRow
	if err := query.Order("created_at DESC").Order("version DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]domain.Label, 0, len(rows))
	for i := range rows {
		out = append(out, *rows[i].toDomain())
	}
	return out, nil
}

func (r *LabelRepository) Get(ctx context.Context, ownerID, id string) (*domain.Label, error) {
	var row labelRow
	if err := r.db.WithContext(ctx).Where("owner_id = ?", ownerID).First(&row, "id = ?", id).Error; err != nil {
		return nil, translate(err, "label", id)
	}
	return row.toDomain(), nil
}

// Create stores l as the next version of its product. Two writers racing for
// the same version collide on the unique index and one gets ErrConflict.
func (r *LabelRepository) Create(ctx context.Context, l *domain.Label) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var owned int64
		if err := tx.Model(&productRow{}).Where("id = ? AND owner_id = ?", l.ProductID, l.OwnerID).Count(&owned).Error; err != nil {
			return err
		}
		if owned == 0 {
			return domain.NotFound("product", l.ProductID)
		}

		var latest int
		if err := tx.Model(&labelRow{}).
			Where("product_id = ?", l.ProductID).
			Select("COALESCE(MAX(version), 0)").
			Scan(&latest).Error; err != nil {
			return err
		}
		row := newLabelRow(l)
		row.Version = latest + 1
		if err := tx.Create(row).Error; err != nil {
			return err
		}
		*l = *row.toDomain()
		return nil
	})
	return translate(err, "label", l.ProductID)
}

func (r *LabelRepository) Delete(ctx context.Context, ownerID, id string) error {
	res := r.db.WithContext(ctx).Where("owner_id = ?", ownerID).Delete(&labelRow{}, "id = ?", id)
	if res.Error != nil {
		return translate(res.Error, "label", id)
	}
	if res.RowsAffected == 0 {
		return domain.NotFound("label", id)
	}
	return nil
}
