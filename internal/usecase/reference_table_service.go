package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/nutrical/backend/internal/domain"
)

// ReferenceTableService manages RDA/NRV tables and the per-region default
type ReferenceTableService struct {
	tables     domain.ReferenceTableRepository
	labelTypes domain.LabelTypeRepository
	nutrients  domain.NutrientRepository
	logger     *slog.Logger
}

// NewReferenceTableService creates a reference table service
func NewReferenceTableService(
	tables domain.ReferenceTableRepository,
	labelTypes domain.LabelTypeRepository,
	nutrients domain.NutrientRepository,
) *ReferenceTableService {
	return &ReferenceTableService{
		tables:     tables,
		labelTypes: labelTypes,
		nutrients:  nutrients,
		logger:     slog.Default().With("component", "reference_tables"),
	}
}

func (s *ReferenceTableService) List(ctx context.Context, region string, activeOnly bool) ([]domain.ReferenceTable, error) {
	return s.tables.List(ctx, domain.NormalizeRegion(region), activeOnly)
}

func (s *ReferenceTableService) Get(ctx context.Context, id string) (*domain.ReferenceTable, error) {
	return s.tables.Get(ctx, id)
}

func (s *ReferenceTableService) GetByCode(ctx context.Context, code string) (*domain.ReferenceTable, error) {
	return s.tables.GetByCode(ctx, code)
}

// Regions lists every region that has at least one table
func (s *ReferenceTableService) Regions(ctx context.Context) ([]string, error) {
	return s.tables.Regions(ctx)
}

// Create stores t. A table created as default takes the flag from its region's
// previous default in the same transaction.
func (s *ReferenceTableService) Create(ctx context.Context, t *domain.ReferenceTable) error {
	if err := s.prepare(ctx, t); err != nil {
		return err
	}
	return s.tables.Create(ctx, t)
}

func (s *ReferenceTableService) Update(ctx context.Context, id string, t *domain.ReferenceTable) error {
	t.ID = id
	if err := s.prepare(ctx, t); err != nil {
		return err
	}
	return s.tables.Update(ctx, t)
}

// Delete removes a table; the repository refuses while a label type links it
func (s *ReferenceTableService) Delete(ctx context.Context, id string) error {
	return s.tables.Delete(ctx, id)
}

// SetDefault makes tableID the single default of region. An empty region means
// the table's own region; a different region is rejected rather than moving the table.
func (s *ReferenceTableService) SetDefault(ctx context.Context, tableID, region string) (*domain.ReferenceTable, error) {
	t, err := s.tables.Get(ctx, tableID)
	if err != nil {
		return nil, err
	}
	region = domain.NormalizeRegion(region)
	if region != "" && region != t.Region {
		return nil, domain.InvalidInput("reference table", t.Code, "region",
			"table belongs to region %q, not %q", t.Region, region)
	}
	if t.Region == "" {
		return nil, domain.InvalidInput("reference table", t.Code, "region", "a table without a region cannot be a default")
	}
	if !t.IsActive {
		return nil, domain.InvalidInput("reference table", t.Code, "isActive", "an inactive table cannot be a default")
	}

	if err := s.tables.SetDefault(ctx, tableID); err != nil {
		return nil, err
	}
	s.logger.Info("default reference table set", "region", t.Region, "code", t.Code)
	return s.tables.Get(ctx, tableID)
}

// ApplyToLabelType copies the table's daily values onto the label type's
// nutrient configs matched by key and links the table. Configs for nutrients
// the table does not define keep their values. Returns how many configs changed.
func (s *ReferenceTableService) ApplyToLabelType(ctx context.Context, tableID, labelTypeID string) (int, error) {
	t, err := s.tables.Get(ctx, tableID)
	if err != nil {
		return 0, err
	}
	if _, err := s.labelTypes.Get(ctx, labelTypeID); err != nil {
		return 0, err
	}
	n, err := s.labelTypes.ApplyDailyValues(ctx, labelTypeID, t)
	if err != nil {
		return 0, err
	}
	s.logger.Info("reference table applied", "code", t.Code, "label_type_id", labelTypeID, "updated", n)
	return n, nil
}

// Duplicate copies a table under a new code. The copy is never the default.
func (s *ReferenceTableService) Duplicate(ctx context.Context, id, code, name string) (*domain.ReferenceTable, error) {
	src, err := s.tables.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if code == "" {
		code = src.Code + "_COPY"
	}
	if name == "" {
		name = src.Name + " (copy)"
	}

	dup := &domain.ReferenceTable{
		Code:          code,
		Name:          name,
		Description:   src.Description,
		Region:        src.Region,
		EffectiveDate: src.EffectiveDate,
		CalorieBase:   src.CalorieBase,
		Values:        make(map[string]*decimal.Decimal, len(src.Values)),
		Units:         make(map[string]string, len(src.Units)),
		IsActive:      src.IsActive,
		IsDefault:     false,
	}
	for k, v := range src.Values {
		if v != nil {
			c := *v
			dup.Values[k] = &c
		} else {
			dup.Values[k] = nil
		}
	}
	for k, u := range src.Units {
		dup.Units[k] = u
	}

	if err := s.tables.Create(ctx, dup); err != nil {
		return nil, err
	}
	return dup, nil
}

// prepare validates t and checks every value key names a catalog nutrient
func (s *ReferenceTableService) prepare(ctx context.Context, t *domain.ReferenceTable) error {
	t.Region = domain.NormalizeRegion(t.Region)
	if err := t.Validate(); err != nil {
		return err
	}
	if len(t.Values) == 0 {
		return nil
	}
	defs, err := s.nutrients.List(ctx, domain.NutrientFilter{})
	if err != nil {
		return fmt.Errorf("list catalog: %w", err)
	}
	known := make(map[string]string, len(defs))
	for _, d := range defs {
		known[d.Key] = d.Unit
	}
	if t.Units == nil {
		t.Units = make(map[string]string)
	}
	for key := range t.Values {
		unit, ok := known[key]
		if !ok {
			return domain.InvalidInput("reference table", t.Code, key, "unknown nutrient")
		}
		if t.Units[key] == "" {
			t.Units[key] = unit
		}
	}
	return nil
}
