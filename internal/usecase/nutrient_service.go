package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nutrical/backend/internal/domain"
	"github.com/nutrical/backend/internal/nutrition"
)

// NutrientService maintains the nutrient catalog and keeps its hierarchy a valid tree
type NutrientService struct {
	repo   domain.NutrientRepository
	logger *slog.Logger
}

// NewNutrientService creates a catalog service over repo
func NewNutrientService(repo domain.NutrientRepository) *NutrientService {
	return &NutrientService{
		repo:   repo,
		logger: slog.Default().With("component", "nutrients"),
	}
}

func (s *NutrientService) List(ctx context.Context, filter domain.NutrientFilter) ([]domain.NutrientDefinition, error) {
	if filter.Category != "" && !filter.Category.Valid() {
		return nil, domain.InvalidInput("nutrient", "", "category", "unknown category %q", filter.Category)
	}
	return s.repo.List(ctx, filter)
}

func (s *NutrientService) Get(ctx context.Context, key string) (*domain.NutrientDefinition, error) {
	return s.repo.GetByKey(ctx, key)
}

// Categories returns the recognised nutrient categories in display order
func (s *NutrientService) Categories() []domain.NutrientCategory {
	return domain.NutrientCategories
}

// Create adds one definition after checking the catalog stays a valid tree
func (s *NutrientService) Create(ctx context.Context, def *domain.NutrientDefinition) error {
	return s.BulkCreate(ctx, []*domain.NutrientDefinition{def})
}

// BulkCreate adds all definitions atomically. Parents may be defined in the
// same batch in any order.
func (s *NutrientService) BulkCreate(ctx context.Context, defs []*domain.NutrientDefinition) error {
	if len(defs) == 0 {
		return domain.InvalidInput("nutrient", "", "", "no nutrients given")
	}
	for _, def := range defs {
		if err := def.Validate(); err != nil {
			return err
		}
	}

	existing, err := s.repo.List(ctx, domain.NutrientFilter{})
	if err != nil {
		return fmt.Errorf("list catalog: %w", err)
	}
	candidate := make([]domain.NutrientDefinition, 0, len(existing)+len(defs))
	candidate = append(candidate, existing...)
	for _, def := range defs {
		candidate = append(candidate, *def)
	}
	if _, err := nutrition.BuildTree(candidate); err != nil {
		return err
	}

	if err := s.repo.Create(ctx, defs...); err != nil {
		return err
	}
	s.logger.Info("nutrients created", "count", len(defs))
	return nil
}

// Update replaces the mutable fields of key. The key itself never changes;
// unit and category are frozen while any label type configures the nutrient.
func (s *NutrientService) Update(ctx context.Context, key string, def *domain.NutrientDefinition) error {
	if def.Key == "" {
		def.Key = key
	}
	if def.Key != key {
		return domain.InvalidInput("nutrient", key, "key", "key is immutable")
	}
	if err := def.Validate(); err != nil {
		return err
	}

	current, err := s.repo.GetByKey(ctx, key)
	if err != nil {
		return err
	}
	if def.Unit != current.Unit || def.Category != current.Category {
		configs, _, err := s.repo.CountReferences(ctx, key)
		if err != nil {
			return fmt.Errorf("count references: %w", err)
		}
		if configs > 0 {
			return domain.Conflict("nutrient", key, "unit and category cannot change while %d label configs use it", configs)
		}
	}

	if def.ParentKey != current.ParentKey {
		all, err := s.repo.List(ctx, domain.NutrientFilter{})
		if err != nil {
			return fmt.Errorf("list catalog: %w", err)
		}
		for i := range all {
			if all[i].Key == key {
				all[i] = *def
			}
		}
		if _, err := nutrition.BuildTree(all); err != nil {
			return err
		}
	}

	return s.repo.Update(ctx, def)
}

// Toggle flips the active flag of key
func (s *NutrientService) Toggle(ctx context.Context, key string) (*domain.NutrientDefinition, error) {
	def, err := s.repo.GetByKey(ctx, key)
	if err != nil {
		return nil, err
	}
	def.IsActive = !def.IsActive
	if err := s.repo.Update(ctx, def); err != nil {
		return nil, err
	}
	return def, nil
}

// Delete removes key unless a label config or a child nutrient still points at it
func (s *NutrientService) Delete(ctx context.Context, key string) error {
	if _, err := s.repo.GetByKey(ctx, key); err != nil {
		return err
	}
	configs, children, err := s.repo.CountReferences(ctx, key)
	if err != nil {
		return fmt.Errorf("count references: %w", err)
	}
	if configs > 0 || children > 0 {
		return domain.Conflict("nutrient", key, "referenced by %d label configs and %d child nutrients", configs, children)
	}
	if err := s.repo.Delete(ctx, key); err != nil {
		return err
	}
	s.logger.Info("nutrient deleted", "key", key)
	return nil
}

// Tree builds the hierarchy of the whole catalog, inactive nutrients included
func (s *NutrientService) Tree(ctx context.Context) (*nutrition.NutrientTree, error) {
	defs, err := s.repo.List(ctx, domain.NutrientFilter{})
	if err != nil {
		return nil, err
	}
	return nutrition.BuildTree(defs)
}
