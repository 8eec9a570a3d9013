package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/nutrical/backend/config"
	httpDelivery "github.com/nutrical/backend/internal/delivery/http"
	"github.com/nutrical/backend/internal/infrastructure/cache"
	"github.com/nutrical/backend/internal/infrastructure/database"
	"github.com/nutrical/backend/internal/infrastructure/usda"
	"github.com/nutrical/backend/internal/nutrition"
	"github.com/nutrical/backend/internal/usecase"
)

const version = "1.0.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.Logging)
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func newLogger(cfg config.LoggingConfig) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(cfg.Format, "text") {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}

func run(cfg *config.Config, logger *slog.Logger) error {
	logger.Info("starting nutrical backend",
		"version", version,
		"environment", cfg.Server.Environment,
		"port", cfg.Server.Port)

	db, err := database.Open(database.Config{
		Driver:       cfg.Database.Driver,
		DSN:          cfg.Database.DSN,
		MaxOpenConns: cfg.Database.MaxOpenConns,
		Debug:        cfg.Server.Environment == "development",
		Logger:       logger,
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := database.Close(db); err != nil {
			logger.Warn("close database", "error", err)
		}
	}()
	if err := database.Migrate(db); err != nil {
		return err
	}
	if cfg.Database.Seed {
		if err := database.Seed(context.Background(), db); err != nil {
			return err
		}
	}

	profiles := nutrition.NewProfileRegistry()
	if cfg.Nutrition.ProfilesFile != "" {
		if err := profiles.LoadFile(cfg.Nutrition.ProfilesFile); err != nil {
			return fmt.Errorf("load rounding profiles: %w", err)
		}
	}
	profile, ok := profiles.Get(cfg.Nutrition.RoundingProfile)
	if !ok {
		return fmt.Errorf("unknown rounding profile %q (have %v)", cfg.Nutrition.RoundingProfile, profiles.Names())
	}
	engine := nutrition.NewEngine(profile)
	logger.Info("rounding profile selected", "profile", profile.Name)

	memoryCache := cache.NewMemoryCache(cfg.Cache.TTL, cfg.Cache.CleanupInterval)

	usdaClient := usda.NewClient(cfg.USDA.APIKey, cfg.USDA.BaseURL, cfg.RateLimit.USDA)
	if cfg.Server.Environment == "development" {
		usdaClient.SetDebug(true)
	}
	if !usdaClient.Configured() {
		logger.Warn("USDA API key not configured, ingredient import disabled")
	}

	nutrients := database.NewNutrientRepository(db)
	ingredients := database.NewIngredientRepository(db)
	products := database.NewProductRepository(db)
	tables := database.NewReferenceTableRepository(db)
	labelTypes := database.NewLabelTypeRepository(db)
	allergens := database.NewAllergenRepository(db)
	labels := database.NewLabelRepository(db)

	labelTypeService := usecase.NewLabelTypeService(labelTypes, tables, nutrients, engine, cfg.Nutrition.DefaultRegion)
	nutritionService := usecase.NewNutritionService(products, ingredients, nutrients, tables, engine, usecase.NutritionServiceConfig{
		DefaultRegion:       cfg.Nutrition.DefaultRegion,
		AllowWeightFallback: cfg.Nutrition.AllowWeightFallback,
	})

	handler := httpDelivery.NewHandler(httpDelivery.Services{
		Nutrients:       usecase.NewNutrientService(nutrients),
		ReferenceTables: usecase.NewReferenceTableService(tables, labelTypes, nutrients),
		LabelTypes:      labelTypeService,
		Ingredients: usecase.NewIngredientService(ingredients, usdaClient, memoryCache, usecase.IngredientServiceConfig{
			CacheTTL:    cfg.Cache.TTL,
			USDAEnabled: usdaClient.Configured(),
		}),
		Allergens: usecase.NewAllergenService(allergens),
		Products:  usecase.NewProductService(products, ingredients, allergens),
		Nutrition: nutritionService,
		Labels:    usecase.NewLabelService(labels, products, ingredients, nutritionService, labelTypeService),
	}, database.Pinger(db))

	router := httpDelivery.SetupRouter(cfg, handler, logger.With("component", "http"))

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
