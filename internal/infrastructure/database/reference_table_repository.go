package database

import (
	"context"

	"gorm.io/gorm"

	"github.com/nutrical/backend/internal/domain"
)

// ReferenceTableRepository stores RDA/NRV tables and owns the one-default-per-region rule
type ReferenceTableRepository struct {
	db *gorm.DB
}

// NewReferenceTableRepository creates a reference table repository over db
func NewReferenceTableRepository(db *gorm.DB) *ReferenceTableRepository {
	return &ReferenceTableRepository{db: db}
}

func (r *ReferenceTableRepository) List(ctx context.Context, region string, activeOnly bool) ([]domain.ReferenceTable, error) {
	query := r.db.WithContext(ctx).Model(&referenceTableRow{})
	if region != "" {
		query = query.Where("region = ?", region)
	}
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}

	var rows []referenceTableRow
	if err := query.Order("region").Order("code").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]domain.ReferenceTable, 0, len(rows))
	for i := range rows {
		out = append(out, *rows[i].toDomain())
	}
	return out, nil
}

func (r *ReferenceTableRepository) Get(ctx context.Context, id string) (*domain.ReferenceTable, error) {
	var row referenceTableRow
	if err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return nil, translate(err, "reference table", id)
	}
	return row.toDomain(), nil
}

func (r *ReferenceTableRepository) GetByCode(ctx context.Context, code string) (*domain.ReferenceTable, error) {
	var row referenceTableRow
	if err := r.db.WithContext(ctx).First(&row, "code = ?", code).Error; err != nil {
		return nil, translate(err, "reference table", code)
	}
	return row.toDomain(), nil
}

func (r *ReferenceTableRepository) GetDefault(ctx context.Context, region string) (*domain.ReferenceTable, error) {
	var row referenceTableRow
	if err := r.db.WithContext(ctx).
		Where("region = ? AND is_default = ?", region, true).
		First(&row).Error; err != nil {
		return nil, translate(err, "default reference table", region)
	}
	return row.toDomain(), nil
}

// Create inserts t. When t is marked default the flag is moved to it in the same
// transaction.
func (r *ReferenceTableRepository) Create(ctx context.Context, t *domain.ReferenceTable) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row := newReferenceTableRow(t)
		row.IsDefault = false
		if err := tx.Create(row).Error; err != nil {
			return err
		}
		if t.IsDefault {
			if err := ReassignExclusive(tx, defaultTableGroup, row.ID, row.Region); err != nil {
				return err
			}
			row.IsDefault = true
		}
		*t = *row.toDomain()
		return nil
	})
	return translate(err, "reference table", t.Code)
}

// Update saves t. Clearing IsDefault is allowed; setting it moves the flag.
func (r *ReferenceTableRepository) Update(ctx context.Context, t *domain.ReferenceTable) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing referenceTableRow
		if err := tx.Select("id", "created_at").First(&existing, "id = ?", t.ID).Error; err != nil {
			return err
		}
		row := newReferenceTableRow(t)
		row.CreatedAt = existing.CreatedAt
		row.IsDefault = false
		if err := tx.Save(row).Error; err != nil {
			return err
		}
		if t.IsDefault {
			if err := ReassignExclusive(tx, defaultTableGroup, row.ID, row.Region); err != nil {
				return err
			}
			row.IsDefault = true
		}
		*t = *row.toDomain()
		return nil
	})
	return translate(err, "reference table", t.ID)
}

// Delete refuses to remove a table that a label type still links
func (r *ReferenceTableRepository) Delete(ctx context.Context, id string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var links int64
		if err := tx.Model(&labelTypeRow{}).Where("reference_table_id = ?", id).Count(&links).Error; err != nil {
			return err
		}
		if links > 0 {
			return domain.Conflict("reference table", id, "linked by %d label types", links)
		}
		res := tx.Delete(&referenceTableRow{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	return translate(err, "reference table", id)
}

// Regions returns the distinct non-empty regions, sorted
func (r *ReferenceTableRepository) Regions(ctx context.Context) ([]string, error) {
	var regions []string
	if err := r.db.WithContext(ctx).
		Model(&referenceTableRow{}).
		Where("region <> ''").
		Distinct("region").
		Order("region").
		Pluck("region", &regions).Error; err != nil {
		return nil, err
	}
	return regions, nil
}

// SetDefault makes id the only default table of its region. Concurrent calls for
// the same region serialize on the row updates; a call that still collides on
// the partial unique index fails with ErrConflict and leaves the other winner intact.
func (r *ReferenceTableRepository) SetDefault(ctx context.Context, id string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row referenceTableRow
		if err := tx.Select("id", "region").First(&row, "id = ?", id).Error; err != nil {
			return err
		}
		return ReassignExclusive(tx, defaultTableGroup, row.ID, row.Region)
	})
	return translate(err, "reference table", id)
}
