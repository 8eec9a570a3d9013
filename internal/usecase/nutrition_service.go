package usecase

import (
	"context"
	"errors"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/nutrical/backend/internal/domain"
	"github.com/nutrical/backend/internal/nutrition"
)

// NutritionServiceConfig holds configuration for the nutrition service
type NutritionServiceConfig struct {
	DefaultRegion       string
	AllowWeightFallback bool
}

// SummaryRequest selects how a product summary is computed
type SummaryRequest struct {
	Mode domain.DisplayMode
	// Region picks the region's default reference table; empty uses the configured default
	Region string
	// ReferenceTableCode picks a table explicitly and wins over Region
	ReferenceTableCode string
}

// NutritionService loads a product with everything it references and runs the
// nutrition engine over it
type NutritionService struct {
	products    domain.ProductRepository
	ingredients domain.IngredientRepository
	nutrients   domain.NutrientRepository
	tables      domain.ReferenceTableRepository
	engine      *nutrition.Engine
	config      NutritionServiceConfig
	logger      *slog.Logger
}

// NewNutritionService creates a nutrition service with dependencies
func NewNutritionService(
	products domain.ProductRepository,
	ingredients domain.IngredientRepository,
	nutrients domain.NutrientRepository,
	tables domain.ReferenceTableRepository,
	engine *nutrition.Engine,
	config NutritionServiceConfig,
) *NutritionService {
	if engine == nil {
		engine = nutrition.NewEngine(nil)
	}
	config.DefaultRegion = domain.NormalizeRegion(config.DefaultRegion)
	if config.DefaultRegion == "" {
		config.DefaultRegion = "US"
	}
	return &NutritionService{
		products:    products,
		ingredients: ingredients,
		nutrients:   nutrients,
		tables:      tables,
		engine:      engine,
		config:      config,
		logger:      slog.Default().With("component", "nutrition"),
	}
}

// Engine returns the engine summaries are computed with
func (s *NutritionService) Engine() *nutrition.Engine {
	return s.engine
}

// ComputeNutritionSummary aggregates, rounds and scores the product's recipe.
// Ingredients, the active catalog and the reference table load concurrently;
// any failure aborts the whole computation.
func (s *NutritionService) ComputeNutritionSummary(ctx context.Context, ownerID, productID string, req SummaryRequest) (*domain.NutritionSummary, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}
	if req.Mode != "" && req.Mode != domain.DisplayPerServing && req.Mode != domain.DisplayPer100 {
		return nil, domain.InvalidInput("product", productID, "mode", "unknown display mode %q", req.Mode)
	}
	product, err := s.products.Get(ctx, ownerID, productID)
	if err != nil {
		return nil, err
	}

	var (
		ingredients map[string]*domain.Ingredient
		catalog     []domain.NutrientDefinition
		table       *domain.ReferenceTable
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		ids := make([]string, 0, len(product.Components))
		for _, c := range product.Components {
			ids = append(ids, c.IngredientID)
		}
		var err error
		ingredients, err = s.ingredients.GetMany(gctx, ids)
		return err
	})
	g.Go(func() error {
		var err error
		catalog, err = s.nutrients.List(gctx, domain.NutrientFilter{ActiveOnly: true})
		return err
	})
	g.Go(func() error {
		var err error
		table, err = s.referenceTable(gctx, req)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	summary, err := s.engine.ComputeSummary(product, ingredients, nutrition.SummaryOptions{
		Mode:                req.Mode,
		Reference:           table,
		Catalog:             catalog,
		AllowWeightFallback: s.config.AllowWeightFallback,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Debug("summary computed",
		"product_id", productID,
		"mode", summary.Mode,
		"reference_table", summary.ReferenceTableCode,
		"nutrients", len(summary.Nutrients))
	return summary, nil
}

// referenceTable resolves the table %DV is computed against. A region without a
// default yields nil and every %DV is then unavailable; an explicit code must exist.
func (s *NutritionService) referenceTable(ctx context.Context, req SummaryRequest) (*domain.ReferenceTable, error) {
	if req.ReferenceTableCode != "" {
		return s.tables.GetByCode(ctx, req.ReferenceTableCode)
	}
	region := domain.NormalizeRegion(req.Region)
	if region == "" {
		region = s.config.DefaultRegion
	}
	table, err := s.tables.GetDefault(ctx, region)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	return table, err
}
