package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/nutrical/backend/internal/domain"
	"github.com/nutrical/backend/internal/infrastructure/usda"
	"github.com/nutrical/backend/internal/nutrition"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// IngredientServiceConfig holds configuration for the ingredient service
type IngredientServiceConfig struct {
	CacheTTL time.Duration
	// USDAEnabled is false when no FoodData Central key is configured
	USDAEnabled bool
}

// IngredientService manages the master ingredient list and USDA imports
type IngredientService struct {
	repo       domain.IngredientRepository
	usdaClient domain.USDAClient
	cache      domain.CacheRepository
	cacheTTL   time.Duration
	usdaOn     bool
	logger     *slog.Logger
}

// NewIngredientService creates an ingredient service with dependencies
func NewIngredientService(
	repo domain.IngredientRepository,
	usdaClient domain.USDAClient,
	cache domain.CacheRepository,
	config IngredientServiceConfig,
) *IngredientService {
	cacheTTL := config.CacheTTL
	if cacheTTL == 0 {
		cacheTTL = 720 * time.Hour
	}
	return &IngredientService{
		repo:       repo,
		usdaClient: usdaClient,
		cache:      cache,
		cacheTTL:   cacheTTL,
		usdaOn:     config.USDAEnabled && usdaClient != nil,
		logger:     slog.Default().With("component", "ingredients"),
	}
}

// Page converts a 1-based page and size into an offset and limit
func Page(page, pageSize int) (offset, limit int) {
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	if page < 1 {
		page = 1
	}
	return (page - 1) * pageSize, pageSize
}

func (s *IngredientService) List(ctx context.Context, search string, page, pageSize int) ([]domain.Ingredient, int64, error) {
	offset, limit := Page(page, pageSize)
	return s.repo.List(ctx, search, offset, limit)
}

func (s *IngredientService) Get(ctx context.Context, id string) (*domain.Ingredient, error) {
	return s.repo.Get(ctx, id)
}

func (s *IngredientService) Create(ctx context.Context, ing *domain.Ingredient) error {
	if err := normalizeIngredient(ing); err != nil {
		return err
	}
	return s.repo.Create(ctx, ing)
}

func (s *IngredientService) Update(ctx context.Context, id string, ing *domain.Ingredient) error {
	ing.ID = id
	if err := normalizeIngredient(ing); err != nil {
		return err
	}
	return s.repo.Update(ctx, ing)
}

// Delete removes an ingredient; the repository refuses while a recipe uses it
func (s *IngredientService) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

// normalizeIngredient validates ing and rewrites its reference unit canonically
func normalizeIngredient(ing *domain.Ingredient) error {
	if err := ing.Validate(); err != nil {
		return err
	}
	unit, ok := nutrition.NormalizeUnit(ing.PerUnit)
	if !ok {
		return domain.InvalidInput("ingredient", ing.Name, "perUnit", "unknown unit %q", ing.PerUnit)
	}
	ing.PerUnit = unit
	return nil
}

// SearchUSDA returns FoodData Central candidates for query, best match first.
// Results are cached per normalized query.
func (s *IngredientService) SearchUSDA(ctx context.Context, query string) ([]domain.USDACandidate, error) {
	if !s.usdaOn {
		return nil, domain.ErrUSDANotConfigured
	}
	cleaned := cleanSearchQuery(query)
	if cleaned == "" {
		return nil, domain.InvalidInput("usda search", query, "query", "query is empty after cleaning")
	}

	cacheKey := "usda:search:" + normalizeForCacheKey(cleaned)
	if cached, err := s.cache.Get(ctx, cacheKey); err == nil {
		if candidates, ok := cached.([]domain.USDACandidate); ok {
			return candidates, nil
		}
	}

	resp, err := s.usdaClient.SearchFoods(ctx, cleaned)
	if err != nil {
		return nil, err
	}
	candidates := rankCandidates(cleaned, usda.CandidatesFrom(resp))

	if err := s.cache.Set(ctx, cacheKey, candidates, s.cacheTTL); err != nil {
		s.logger.Warn("cache set failed", "key", cacheKey, "error", err)
	}
	return candidates, nil
}

// ImportUSDA fetches one food by FDC id and stores it as an unverified ingredient
func (s *IngredientService) ImportUSDA(ctx context.Context, fdcID int) (*domain.Ingredient, error) {
	if !s.usdaOn {
		return nil, domain.ErrUSDANotConfigured
	}
	if fdcID <= 0 {
		return nil, domain.InvalidInput("usda food", strconv.Itoa(fdcID), "fdcId", "must be a positive id")
	}

	food, err := s.foodDetails(ctx, strconv.Itoa(fdcID))
	if err != nil {
		return nil, err
	}
	ing := usda.MapToIngredient(food)
	if ing.Name == "" {
		ing.Name = fmt.Sprintf("FDC %d", fdcID)
	}
	if err := s.Create(ctx, ing); err != nil {
		return nil, err
	}

	s.logger.Info("ingredient imported", "fdc_id", fdcID, "id", ing.ID, "nutrients", len(ing.Nutrients))
	return ing, nil
}

func (s *IngredientService) foodDetails(ctx context.Context, fdcID string) (*domain.USDAFood, error) {
	cacheKey := "usda:food:" + fdcID
	if cached, err := s.cache.Get(ctx, cacheKey); err == nil {
		if food, ok := cached.(*domain.USDAFood); ok {
			return food, nil
		}
	}

	food, err := s.usdaClient.GetFoodDetails(ctx, fdcID)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(ctx, cacheKey, food, s.cacheTTL); err != nil {
		s.logger.Warn("cache set failed", "key", cacheKey, "error", err)
	}
	return food, nil
}
