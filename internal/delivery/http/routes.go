package http

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/nutrical/backend/config"
)

// SetupRouter creates and configures the Gin router
func SetupRouter(cfg *config.Config, handler *Handler, logger *slog.Logger) *gin.Engine {
	// Set Gin mode based on environment
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Global middleware
	router.Use(RecoveryMiddleware())
	router.Use(LoggerMiddleware(logger))
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))
	router.Use(RateLimitMiddleware(cfg.RateLimit.PerIP))
	router.NoRoute(notFoundRoute)

	// Health check endpoint
	router.GET("/health", handler.HealthCheck)

	v1 := router.Group("/api/v1")
	{
		nutrients := v1.Group("/nutrients")
		{
			nutrients.GET("", handler.ListNutrients)
			nutrients.POST("", handler.CreateNutrient)
			nutrients.POST("/bulk", handler.BulkCreateNutrients)
			nutrients.GET("/categories", handler.NutrientCategories)
			nutrients.GET("/tree", handler.NutrientTree)
			nutrients.GET("/:key", handler.GetNutrient)
			nutrients.PUT("/:key", handler.UpdateNutrient)
			nutrients.DELETE("/:key", handler.DeleteNutrient)
			nutrients.POST("/:key/toggle", handler.ToggleNutrient)
		}

		tables := v1.Group("/reference-tables")
		{
			tables.GET("", handler.ListReferenceTables)
			tables.POST("", handler.CreateReferenceTable)
			tables.GET("/regions", handler.ReferenceTableRegions)
			tables.GET("/:id", handler.GetReferenceTable)
			tables.PUT("/:id", handler.UpdateReferenceTable)
			tables.DELETE("/:id", handler.DeleteReferenceTable)
			tables.POST("/:id/default", handler.SetDefaultReferenceTable)
			tables.POST("/:id/apply/:labelTypeId", handler.ApplyReferenceTable)
			tables.POST("/:id/duplicate", handler.DuplicateReferenceTable)
		}

		labels := v1.Group("/label-types")
		{
			labels.GET("", handler.ListLabelTypes)
			labels.POST("", handler.CreateLabelType)
			labels.GET("/:id", handler.GetLabelType)
			labels.PUT("/:id", handler.UpdateLabelType)
			labels.DELETE("/:id", handler.DeleteLabelType)
			labels.POST("/:id/duplicate", handler.DuplicateLabelType)
			labels.GET("/:id/nutrients", handler.LabelTypeNutrients)
			labels.PUT("/:id/nutrients", handler.ReplaceLabelTypeNutrients)
			labels.POST("/:id/nutrients/reorder", handler.ReorderLabelTypeNutrients)
		}

		ingredients := v1.Group("/ingredients")
		{
			ingredients.GET("", handler.ListIngredients)
			ingredients.POST("", handler.CreateIngredient)
			ingredients.GET("/usda/search", handler.SearchUSDA)
			ingredients.POST("/usda/import", handler.ImportUSDA)
			ingredients.GET("/:id", handler.GetIngredient)
			ingredients.PUT("/:id", handler.UpdateIngredient)
			ingredients.DELETE("/:id", handler.DeleteIngredient)
		}

		allergens := v1.Group("/allergens")
		{
			allergens.GET("", handler.ListAllergens)
			allergens.POST("", handler.CreateAllergen)
			allergens.GET("/:id", handler.GetAllergen)
			allergens.PUT("/:id", handler.UpdateAllergen)
			allergens.DELETE("/:id", handler.DeleteAllergen)
		}

		products := v1.Group("/products", RequireOwner())
		{
			products.GET("", handler.ListProducts)
			products.POST("", handler.CreateProduct)
			products.GET("/:id", handler.GetProduct)
			products.PUT("/:id", handler.UpdateProduct)
			products.DELETE("/:id", handler.DeleteProduct)
			products.POST("/:id/ingredients", handler.AddProductComponent)
			products.DELETE("/:id/ingredients/:componentId", handler.RemoveProductComponent)
			products.GET("/:id/nutrition", handler.ProductNutrition)
			products.GET("/:id/label/:labelTypeCode", handler.ProductLabel)
			products.GET("/:id/allergens", handler.ProductAllergens)
			products.PUT("/:id/allergens", handler.SetProductAllergens)
			products.GET("/:id/labels", handler.ListProductLabels)
			products.POST("/:id/labels", handler.GenerateProductLabel)
			products.GET("/:id/labels/:labelId", handler.GetProductLabel)
			products.DELETE("/:id/labels/:labelId", handler.DeleteProductLabel)
		}
	}

	return router
}
