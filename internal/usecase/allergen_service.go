package usecase

import (
	"context"
	"log/slog"
	"strings"

	"github.com/nutrical/backend/internal/domain"
)

// AllergenService manages the allergen master list
type AllergenService struct {
	allergens domain.AllergenRepository
	logger    *slog.Logger
}

// NewAllergenService creates an allergen service
func NewAllergenService(allergens domain.AllergenRepository) *AllergenService {
	return &AllergenService{
		allergens: allergens,
		logger:    slog.Default().With("component", "allergens"),
	}
}

func (s *AllergenService) List(ctx context.Context, filter domain.AllergenFilter) ([]domain.Allergen, error) {
	return s.allergens.List(ctx, filter)
}

func (s *AllergenService) Get(ctx context.Context, id string) (*domain.Allergen, error) {
	return s.allergens.Get(ctx, id)
}

func (s *AllergenService) Create(ctx context.Context, a *domain.Allergen) error {
	normalizeAllergen(a)
	if err := a.Validate(); err != nil {
		return err
	}
	if err := s.allergens.Create(ctx, a); err != nil {
		return err
	}
	s.logger.Info("allergen created", "name", a.Name, "major", a.IsMajor)
	return nil
}

func (s *AllergenService) Update(ctx context.Context, id string, a *domain.Allergen) error {
	a.ID = id
	normalizeAllergen(a)
	if err := a.Validate(); err != nil {
		return err
	}
	return s.allergens.Update(ctx, a)
}

// Delete removes an allergen no product declares
func (s *AllergenService) Delete(ctx context.Context, id string) error {
	return s.allergens.Delete(ctx, id)
}

func normalizeAllergen(a *domain.Allergen) {
	a.Name = strings.TrimSpace(a.Name)
	a.NameAr = strings.TrimSpace(a.NameAr)
	a.Color = strings.ToLower(a.Color)
}
