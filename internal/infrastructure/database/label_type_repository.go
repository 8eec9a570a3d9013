package database

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/nutrical/backend/internal/domain"
)

// LabelTypeRepository stores label types with their nutrient configs
type LabelTypeRepository struct {
	db *gorm.DB
}

// NewLabelTypeRepository creates a label type repository over db
func NewLabelTypeRepository(db *gorm.DB) *LabelTypeRepository {
	return &LabelTypeRepository{db: db}
}

func orderNutrients(db *gorm.DB) *gorm.DB {
	return db.Order("display_order").Order("nutrient_key")
}

func (r *LabelTypeRepository) List(ctx context.Context, activeOnly bool) ([]domain.LabelType, error) {
	query := r.db.WithContext(ctx).Preload("Nutrients", orderNutrients)
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}

	var rows []labelTypeRow
	if err := query.Order("code").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]domain.LabelType, 0, len(rows))
	for i := range rows {
		out = append(out, *rows[i].toDomain())
	}
	return out, nil
}

func (r *LabelTypeRepository) Get(ctx context.Context, id string) (*domain.LabelType, error) {
	var row labelTypeRow
	if err := r.db.WithContext(ctx).Preload("Nutrients", orderNutrients).First(&row, "id = ?", id).Error; err != nil {
		return nil, translate(err, "label type", id)
	}
	return row.toDomain(), nil
}

func (r *LabelTypeRepository) GetByCode(ctx context.Context, code string) (*domain.LabelType, error) {
	var row labelTypeRow
	if err := r.db.WithContext(ctx).Preload("Nutrients", orderNutrients).First(&row, "code = ?", code).Error; err != nil {
		return nil, translate(err, "label type", code)
	}
	return row.toDomain(), nil
}

// Create inserts the label type and its nutrient configs in one statement batch
func (r *LabelTypeRepository) Create(ctx context.Context, lt *domain.LabelType) error {
	row := newLabelTypeRow(lt)
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return translate(err, "label type", lt.Code)
	}
	*lt = *row.toDomain()
	return nil
}

// Update saves label-level fields; nutrient configs go through ReplaceNutrients
func (r *LabelTypeRepository) Update(ctx context.Context, lt *domain.LabelType) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing labelTypeRow
		if err := tx.Select("id", "created_at").First(&existing, "id = ?", lt.ID).Error; err != nil {
			return err
		}
		row := newLabelTypeRow(lt)
		row.Nutrients = nil
		row.CreatedAt = existing.CreatedAt
		if err := tx.Omit("Nutrients").Save(row).Error; err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return translate(err, "label type", lt.ID)
	}
	updated, err := r.Get(ctx, lt.ID)
	if err != nil {
		return err
	}
	*lt = *updated
	return nil
}

func (r *LabelTypeRepository) Delete(ctx context.Context, id string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("label_type_id = ?", id).Delete(&labelNutrientRow{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&labelTypeRow{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	return translate(err, "label type", id)
}

// ReplaceNutrients swaps the full config set of a label type atomically
func (r *LabelTypeRepository) ReplaceNutrients(ctx context.Context, labelTypeID string, configs []domain.LabelTypeNutrient) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := touchLabelType(tx, labelTypeID); err != nil {
			return err
		}
		if err := tx.Where("label_type_id = ?", labelTypeID).Delete(&labelNutrientRow{}).Error; err != nil {
			return err
		}
		if len(configs) == 0 {
			return nil
		}
		rows := make([]labelNutrientRow, 0, len(configs))
		for i := range configs {
			row := newLabelNutrientRow(labelTypeID, &configs[i])
			row.ID = ""
			rows = append(rows, row)
		}
		return tx.Create(&rows).Error
	})
	return translate(err, "label type", labelTypeID)
}

// ApplyDailyValues copies the table's value for every configured nutrient the
// table defines into the config's override, links the table, and returns how
// many configs were written.
func (r *LabelTypeRepository) ApplyDailyValues(ctx context.Context, labelTypeID string, table *domain.ReferenceTable) (int, error) {
	var applied int
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := touchLabelType(tx, labelTypeID); err != nil {
			return err
		}
		var configs []labelNutrientRow
		if err := tx.Where("label_type_id = ?", labelTypeID).Find(&configs).Error; err != nil {
			return err
		}
		for _, cfg := range configs {
			v, ok := table.DailyValue(cfg.NutrientKey)
			if !ok {
				continue
			}
			updates := map[string]any{"daily_value": decimal.NewNullDecimal(v)}
			if unit := table.Units[cfg.NutrientKey]; unit != "" {
				updates["daily_value_unit"] = unit
			}
			if err := tx.Model(&labelNutrientRow{}).Where("id = ?", cfg.ID).Updates(updates).Error; err != nil {
				return err
			}
			applied++
		}
		return tx.Model(&labelTypeRow{}).Where("id = ?", labelTypeID).Update("reference_table_id", table.ID).Error
	})
	if err != nil {
		return 0, translate(err, "label type", labelTypeID)
	}
	return applied, nil
}

func touchLabelType(tx *gorm.DB, id string) error {
	res := tx.Model(&labelTypeRow{}).Where("id = ?", id).Update("updated_at", time.Now())
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
