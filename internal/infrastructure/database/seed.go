package database

import (
	"context"
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"github.com/nutrical/backend/internal/domain"
	"github.com/nutrical/backend/internal/nutrition"
)

// Seed loads the default nutrient catalog, the FDA 2020 daily values, the FDA
// label type and the allergen master list. Each part is skipped once its table
// holds any row.
func Seed(ctx context.Context, db *gorm.DB) error {
	if err := seedCatalog(ctx, db); err != nil {
		return err
	}
	return seedAllergens(ctx, db)
}

func seedCatalog(ctx context.Context, db *gorm.DB) error {
	var count int64
	if err := db.WithContext(ctx).Model(&nutrientRow{}).Count(&count).Error; err != nil {
		return fmt.Errorf("count nutrients: %w", err)
	}
	if count > 0 {
		return nil
	}

	defs := nutrition.DefaultNutrients()
	ptrs := make([]*domain.NutrientDefinition, len(defs))
	for i := range defs {
		ptrs[i] = &defs[i]
	}
	if err := NewNutrientRepository(db).Create(ctx, ptrs...); err != nil {
		return fmt.Errorf("seed nutrients: %w", err)
	}

	table := nutrition.FDA2020Table()
	if err := NewReferenceTableRepository(db).Create(ctx, table); err != nil {
		return fmt.Errorf("seed reference table: %w", err)
	}

	lt, err := nutrition.FDALabelType()
	if err != nil {
		return fmt.Errorf("build default label type: %w", err)
	}
	lt.ReferenceTableID = table.ID
	if err := NewLabelTypeRepository(db).Create(ctx, lt); err != nil {
		return fmt.Errorf("seed label type: %w", err)
	}

	slog.Info("seeded reference data",
		"component", "database",
		"nutrients", len(defs),
		"reference_table", table.Code,
		"label_type", lt.Code)
	return nil
}

func seedAllergens(ctx context.Context, db *gorm.DB) error {
	var count int64
	if err := db.WithContext(ctx).Model(&allergenRow{}).Count(&count).Error; err != nil {
		return fmt.Errorf("count allergens: %w", err)
	}
	if count > 0 {
		return nil
	}

	repo := NewAllergenRepository(db)
	allergens := nutrition.DefaultAllergens()
	for i := range allergens {
		if err := repo.Create(ctx, &allergens[i]); err != nil {
			return fmt.Errorf("seed allergen %s: %w", allergens[i].Name, err)
		}
	}
	slog.Info("seeded allergens", "component", "database", "allergens", len(allergens))
	return nil
}
