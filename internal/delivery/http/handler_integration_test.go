package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nutrical/backend/config"
	"github.com/nutrical/backend/internal/domain"
	"github.com/nutrical/backend/internal/infrastructure/cache"
	"github.com/nutrical/backend/internal/infrastructure/database"
	"github.com/nutrical/backend/internal/nutrition"
	"github.com/nutrical/backend/internal/usecase"
)

// TestMain sets up test environment before running tests
func TestMain(m *testing.M) {
	// Set Gin to test mode once for all tests
	gin.SetMode(gin.TestMode)

	os.Exit(m.Run())
}

const testOwner = "user-1"

// stubUSDAClient serves canned FoodData Central responses
type stubUSDAClient struct {
	search *domain.USDASearchResponse
	food   *domain.USDAFood
	err    error
}

func (s *stubUSDAClient) SearchFoods(ctx context.Context, query string) (*domain.USDASearchResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.search, nil
}

func (s *stubUSDAClient) GetFoodDetails(ctx context.Context, fdcID string) (*domain.USDAFood, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.food == nil {
		return nil, domain.NotFound("usda food", fdcID)
	}
	return s.food, nil
}

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Port:           "8080",
			Environment:    "test",
			AllowedOrigins: []string{"https://*.nutrical.app", "http://localhost:3000"},
		},
		Nutrition: config.NutritionConfig{DefaultRegion: "US"},
	}
}

// setupTestRouter wires the full stack over a seeded in-memory database.
// A nil client leaves USDA import unconfigured.
func setupTestRouter(t *testing.T, client domain.USDAClient) *gin.Engine {
	t.Helper()
	cfg := testConfig()

	db, err := database.Open(database.Config{Driver: "sqlite", DSN: ":memory:"})
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { _ = database.Close(db) })
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if err := database.Seed(context.Background(), db); err != nil {
		t.Fatalf("seed: %v", err)
	}

	nutrients := database.NewNutrientRepository(db)
	ingredients := database.NewIngredientRepository(db)
	products := database.NewProductRepository(db)
	tables := database.NewReferenceTableRepository(db)
	labelTypes := database.NewLabelTypeRepository(db)
	allergens := database.NewAllergenRepository(db)
	engine := nutrition.NewEngine(nil)

	labelTypeService := usecase.NewLabelTypeService(labelTypes, tables, nutrients, engine, cfg.Nutrition.DefaultRegion)
	nutritionService := usecase.NewNutritionService(products, ingredients, nutrients, tables, engine,
		usecase.NutritionServiceConfig{DefaultRegion: cfg.Nutrition.DefaultRegion})

	handler := NewHandler(Services{
		Nutrients:       usecase.NewNutrientService(nutrients),
		ReferenceTables: usecase.NewReferenceTableService(tables, labelTypes, nutrients),
		LabelTypes:      labelTypeService,
		Ingredients: usecase.NewIngredientService(ingredients, client, cache.NewMemoryCache(time.Minute, time.Minute),
			usecase.IngredientServiceConfig{USDAEnabled: client != nil}),
		Allergens: usecase.NewAllergenService(allergens),
		Products:  usecase.NewProductService(products, ingredients, allergens),
		Nutrition: nutritionService,
		Labels: usecase.NewLabelService(database.NewLabelRepository(db), products, ingredients,
			nutritionService, labelTypeService),
	}, database.Pinger(db))

	return SetupRouter(cfg, handler, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func do(router *gin.Engine, method, path, body string, headers ...string) *httptest.ResponseRecorder {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func asOwner(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	return do(router, method, path, body, ownerHeader, testOwner)
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %T: %v (body %s)", v, err, w.Body.String())
	}
	return v
}

func expectStatus(t *testing.T, w *httptest.ResponseRecorder, want int) {
	t.Helper()
	if w.Code != want {
		t.Fatalf("Status = %d, want %d (body %s)", w.Code, want, w.Body.String())
	}
}

// createOilProduct stores an oil ingredient and a 15 g serving product made of 100 g of it
func createOilProduct(t *testing.T, router *gin.Engine) string {
	t.Helper()
	w := do(router, "POST", "/api/v1/ingredients",
		`{"name":"Olive oil","perAmount":"100","perUnit":"grams","nutrients":{"calories":"884","total_fat":"100","saturated_fat":"14","sodium":"2"}}`)
	expectStatus(t, w, http.StatusCreated)
	ing := decode[domain.Ingredient](t, w)
	if ing.PerUnit != "g" {
		t.Errorf("perUnit = %q, want g", ing.PerUnit)
	}

	w = asOwner(router, "POST", "/api/v1/products", `{"name":"Dressing","servingSize":"15","servingUnit":"g"}`)
	expectStatus(t, w, http.StatusCreated)
	p := decode[domain.Product](t, w)

	w = asOwner(router, "POST", "/api/v1/products/"+p.ID+"/ingredients",
		fmt.Sprintf(`{"ingredientId":%q,"quantity":"100","unit":"g"}`, ing.ID))
	expectStatus(t, w, http.StatusCreated)
	return p.ID
}

func labelTypeByCode(t *testing.T, router *gin.Engine, code string) domain.LabelType {
	t.Helper()
	w := do(router, "GET", "/api/v1/label-types", "")
	expectStatus(t, w, http.StatusOK)
	for _, lt := range decode[[]domain.LabelType](t, w) {
		if lt.Code == code {
			return lt
		}
	}
	t.Fatalf("label type %s not listed", code)
	return domain.LabelType{}
}

func createTable(t *testing.T, router *gin.Engine, body string) domain.ReferenceTable {
	t.Helper()
	w := do(router, "POST", "/api/v1/reference-tables", body)
	expectStatus(t, w, http.StatusCreated)
	return decode[domain.ReferenceTable](t, w)
}

// TestHealthCheckEndpoint tests the health check endpoint
func TestHealthCheckEndpoint(t *testing.T) {
	t.Run("returns healthy status", func(t *testing.T) {
		router := setupTestRouter(t, nil)

		w := do(router, "GET", "/health", "")

		expectStatus(t, w, http.StatusOK)
		response := decode[map[string]any](t, w)
		if response["status"] != "healthy" {
			t.Errorf("status = %v, want healthy", response["status"])
		}
		if response["service"] != "nutrical-backend" {
			t.Errorf("service = %v, want nutrical-backend", response["service"])
		}
		version, ok := response["version"].(string)
		if !ok || strings.TrimSpace(version) == "" {
			t.Errorf("version = %v, want non-empty string", response["version"])
		}
	})

	t.Run("accepts GET requests only", func(t *testing.T) {
		router := setupTestRouter(t, nil)

		for _, method := range []string{"POST", "PUT", "DELETE", "PATCH"} {
			w := do(router, method, "/health", "")
			if w.Code != http.StatusNotFound {
				t.Errorf("Method %s: Status = %d, want %d", method, w.Code, http.StatusNotFound)
			}
		}
	})

	t.Run("reports an unreachable database", func(t *testing.T) {
		handler := NewHandler(Services{}, func(context.Context) error { return errors.New("connection refused") })
		router := SetupRouter(testConfig(), handler, slog.New(slog.NewTextHandler(io.Discard, nil)))

		w := do(router, "GET", "/health", "")

		expectStatus(t, w, http.StatusServiceUnavailable)
	})
}

func TestNutrientEndpoints(t *testing.T) {
	router := setupTestRouter(t, nil)

	t.Run("lists the seeded catalog", func(t *testing.T) {
		w := do(router, "GET", "/api/v1/nutrients?category=vitamin", "")
		expectStatus(t, w, http.StatusOK)
		defs := decode[[]domain.NutrientDefinition](t, w)
		if len(defs) == 0 {
			t.Fatal("no vitamins listed")
		}
		for _, d := range defs {
			if d.Category != domain.CategoryVitamin {
				t.Errorf("%s category = %s", d.Key, d.Category)
			}
		}
	})

	t.Run("rejects an unknown category", func(t *testing.T) {
		w := do(router, "GET", "/api/v1/nutrients?category=sweets", "")
		expectStatus(t, w, http.StatusBadRequest)
	})

	t.Run("tree nests children under parents", func(t *testing.T) {
		w := do(router, "GET", "/api/v1/nutrients/tree", "")
		expectStatus(t, w, http.StatusOK)
		roots := decode[[]*nutrientNode](t, w)
		var carbs *nutrientNode
		for _, r := range roots {
			if r.Key == "total_carbs" {
				carbs = r
			}
			if r.Key == "added_sugars" {
				t.Error("added_sugars listed as a root")
			}
		}
		if carbs == nil || len(carbs.Children) != 2 {
			t.Fatalf("total_carbs children = %+v", carbs)
		}
	})

	t.Run("create, toggle and delete", func(t *testing.T) {
		w := do(router, "POST", "/api/v1/nutrients",
			`{"key":"erythritol","names":{"en":"Erythritol"},"unit":"g","category":"macro","parentKey":"total_carbs","isActive":true}`)
		expectStatus(t, w, http.StatusCreated)

		w = do(router, "POST", "/api/v1/nutrients",
			`{"key":"erythritol","names":{"en":"Erythritol"},"unit":"g","category":"macro"}`)
		expectStatus(t, w, http.StatusConflict)

		w = do(router, "POST", "/api/v1/nutrients/erythritol/toggle", "")
		expectStatus(t, w, http.StatusOK)
		if decode[domain.NutrientDefinition](t, w).IsActive {
			t.Error("toggle left the nutrient active")
		}

		w = do(router, "DELETE", "/api/v1/nutrients/erythritol", "")
		expectStatus(t, w, http.StatusNoContent)
		w = do(router, "GET", "/api/v1/nutrients/erythritol", "")
		expectStatus(t, w, http.StatusNotFound)
	})

	t.Run("referenced nutrients cannot be deleted", func(t *testing.T) {
		w := do(router, "DELETE", "/api/v1/nutrients/total_fat", "")
		expectStatus(t, w, http.StatusConflict)
	})

	t.Run("dangling parent is a configuration error", func(t *testing.T) {
		w := do(router, "POST", "/api/v1/nutrients",
			`{"key":"polyols","names":{"en":"Polyols"},"unit":"g","category":"macro","parentKey":"missing"}`)
		expectStatus(t, w, http.StatusUnprocessableEntity)
	})
}

func TestReferenceTableEndpoints(t *testing.T) {
	router := setupTestRouter(t, nil)

	t.Run("setting a default clears the previous one", func(t *testing.T) {
		old := createTable(t, router,
			`{"code":"FDA_1993","name":"FDA 1993","region":"us","calorieBase":2000,"values":{"total_fat":"65","sodium":"2400"},"isActive":true}`)
		if old.Region != "US" || old.IsDefault {
			t.Fatalf("created table = %+v", old)
		}

		w := do(router, "POST", "/api/v1/reference-tables/"+old.ID+"/default", "")
		expectStatus(t, w, http.StatusOK)
		if !decode[domain.ReferenceTable](t, w).IsDefault {
			t.Error("table not marked default")
		}

		w = do(router, "GET", "/api/v1/reference-tables?region=US", "")
		expectStatus(t, w, http.StatusOK)
		defaults := 0
		for _, tbl := range decode[[]domain.ReferenceTable](t, w) {
			if tbl.IsDefault {
				defaults++
				if tbl.Code != "FDA_1993" {
					t.Errorf("default = %s, want FDA_1993", tbl.Code)
				}
			}
		}
		if defaults != 1 {
			t.Errorf("US defaults = %d, want 1", defaults)
		}
	})

	t.Run("region mismatch is rejected", func(t *testing.T) {
		eu := createTable(t, router, `{"code":"EU_RI","name":"EU RI","region":"EU","values":{"total_fat":"70"},"isActive":true}`)

		w := do(router, "POST", "/api/v1/reference-tables/"+eu.ID+"/default", `{"region":"US"}`)

		expectStatus(t, w, http.StatusBadRequest)
	})

	t.Run("regions are listed", func(t *testing.T) {
		w := do(router, "GET", "/api/v1/reference-tables/regions", "")
		expectStatus(t, w, http.StatusOK)
		regions := decode[[]string](t, w)
		if len(regions) != 2 {
			t.Errorf("regions = %v, want EU and US", regions)
		}
	})

	t.Run("unknown table", func(t *testing.T) {
		w := do(router, "POST", "/api/v1/reference-tables/nope/default", "")
		expectStatus(t, w, http.StatusNotFound)
	})

	t.Run("zero daily value is invalid", func(t *testing.T) {
		w := do(router, "POST", "/api/v1/reference-tables", `{"code":"BAD","name":"Bad","region":"US","values":{"sodium":"0"}}`)
		expectStatus(t, w, http.StatusBadRequest)
	})

	t.Run("duplicate is never the default", func(t *testing.T) {
		w := do(router, "GET", "/api/v1/reference-tables?region=US", "")
		var src domain.ReferenceTable
		for _, tbl := range decode[[]domain.ReferenceTable](t, w) {
			if tbl.IsDefault {
				src = tbl
			}
		}

		w = do(router, "POST", "/api/v1/reference-tables/"+src.ID+"/duplicate", "")
		expectStatus(t, w, http.StatusCreated)
		dup := decode[domain.ReferenceTable](t, w)
		if dup.IsDefault || dup.Code != src.Code+"_COPY" {
			t.Errorf("duplicate = %s default=%v", dup.Code, dup.IsDefault)
		}
	})
}

func TestLabelTypeEndpoints(t *testing.T) {
	router := setupTestRouter(t, nil)
	fda := labelTypeByCode(t, router, "FDA_STANDARD")

	t.Run("system label types cannot be deleted", func(t *testing.T) {
		w := do(router, "DELETE", "/api/v1/label-types/"+fda.ID, "")
		expectStatus(t, w, http.StatusConflict)
	})

	t.Run("unknown fields are rejected", func(t *testing.T) {
		w := do(router, "POST", "/api/v1/label-types", `{"code":"X","name":"X","colour":"red"}`)
		expectStatus(t, w, http.StatusBadRequest)
		if decode[map[string]any](t, w)["field"] != "body" {
			t.Errorf("body = %s", w.Body.String())
		}
	})

	t.Run("duplicate, reorder and replace configs", func(t *testing.T) {
		w := do(router, "POST", "/api/v1/label-types/"+fda.ID+"/duplicate", `{"code":"FDA_SHORT","name":"Short"}`)
		expectStatus(t, w, http.StatusCreated)
		dup := decode[domain.LabelType](t, w)

		w = do(router, "POST", "/api/v1/label-types/"+dup.ID+"/nutrients/reorder", `{"keys":["protein","calories"]}`)
		expectStatus(t, w, http.StatusOK)
		configs := decode[[]domain.LabelTypeNutrient](t, w)
		if configs[0].NutrientKey != "protein" || configs[1].NutrientKey != "calories" {
			t.Errorf("order = %s, %s", configs[0].NutrientKey, configs[1].NutrientKey)
		}

		w = do(router, "PUT", "/api/v1/label-types/"+dup.ID+"/nutrients",
			`[{"nutrientKey":"calories","isMandatory":true,"displayOrder":1},{"nutrientKey":"sodium","displayOrder":2,"showPercentDv":true}]`)
		expectStatus(t, w, http.StatusOK)
		if got := decode[[]domain.LabelTypeNutrient](t, w); len(got) != 2 {
			t.Errorf("configs = %d, want 2", len(got))
		}

		w = do(router, "PUT", "/api/v1/label-types/"+dup.ID+"/nutrients", `[{"nutrientKey":"sodium","indentLevel":4}]`)
		expectStatus(t, w, http.StatusBadRequest)

		w = do(router, "DELETE", "/api/v1/label-types/"+dup.ID, "")
		expectStatus(t, w, http.StatusNoContent)
	})

	t.Run("apply a reference table", func(t *testing.T) {
		eu := createTable(t, router, `{"code":"EU_RI","name":"EU RI","region":"EU","values":{"total_fat":"70","protein":"50"},"isActive":true}`)

		w := do(router, "POST", "/api/v1/reference-tables/"+eu.ID+"/apply/"+fda.ID, "")
		expectStatus(t, w, http.StatusOK)
		if n := decode[map[string]int](t, w)["updated"]; n != 2 {
			t.Errorf("updated = %d, want 2", n)
		}

		w = do(router, "GET", "/api/v1/label-types/"+fda.ID, "")
		expectStatus(t, w, http.StatusOK)
		if decode[domain.LabelType](t, w).ReferenceTableID != eu.ID {
			t.Error("label type not linked to the applied table")
		}
	})
}

func TestProductNutritionFlow(t *testing.T) {
	router := setupTestRouter(t, nil)
	productID := createOilProduct(t, router)

	t.Run("summary per serving", func(t *testing.T) {
		w := asOwner(router, "GET", "/api/v1/products/"+productID+"/nutrition", "")
		expectStatus(t, w, http.StatusOK)
		summary := decode[domain.NutritionSummary](t, w)

		if summary.ReferenceTableCode != "FDA_2020" {
			t.Errorf("reference table = %q", summary.ReferenceTableCode)
		}
		// 884 kcal x 0.15 = 132.6, rounded to the nearest 10
		if got := summary.Nutrients["calories"].Display; got != "130" {
			t.Errorf("calories = %q, want 130", got)
		}
		fat := summary.Nutrients["total_fat"]
		if fat.Display != "15g" || fat.PercentDV.String() != "19%" {
			t.Errorf("fat = %q %q, want 15g 19%%", fat.Display, fat.PercentDV.String())
		}
		if summary.Nutrients["trans_fat"].PercentDV.Available() {
			t.Error("trans fat has no daily value")
		}
	})

	t.Run("summary per 100", func(t *testing.T) {
		w := asOwner(router, "GET", "/api/v1/products/"+productID+"/nutrition?mode=per_100", "")
		expectStatus(t, w, http.StatusOK)
		summary := decode[domain.NutritionSummary](t, w)
		if got := summary.Nutrients["total_fat"].Display; got != "100g" {
			t.Errorf("fat per 100 = %q, want 100g", got)
		}
	})

	t.Run("region default table drives %DV", func(t *testing.T) {
		eu := createTable(t, router, `{"code":"EU_RI","name":"EU RI","region":"EU","values":{"total_fat":"70"},"isActive":true}`)
		w := do(router, "POST", "/api/v1/reference-tables/"+eu.ID+"/default", "")
		expectStatus(t, w, http.StatusOK)

		w = asOwner(router, "GET", "/api/v1/products/"+productID+"/nutrition?region=EU", "")
		expectStatus(t, w, http.StatusOK)
		summary := decode[domain.NutritionSummary](t, w)
		// 15 / 70 = 21.4%
		if got := summary.Nutrients["total_fat"].PercentDV.String(); got != "21%" {
			t.Errorf("fat %%DV = %q, want 21%%", got)
		}
	})

	t.Run("unknown table code", func(t *testing.T) {
		w := asOwner(router, "GET", "/api/v1/products/"+productID+"/nutrition?table=NOPE", "")
		expectStatus(t, w, http.StatusNotFound)
	})

	t.Run("unknown mode", func(t *testing.T) {
		w := asOwner(router, "GET", "/api/v1/products/"+productID+"/nutrition?mode=per_gram", "")
		expectStatus(t, w, http.StatusBadRequest)
	})

	t.Run("label panel", func(t *testing.T) {
		w := asOwner(router, "GET", "/api/v1/products/"+productID+"/label/FDA_STANDARD?lang=ar", "")
		expectStatus(t, w, http.StatusOK)
		panel := decode[usecase.LabelPanel](t, w)

		if len(panel.Entries) != 15 {
			t.Fatalf("entries = %d, want 15", len(panel.Entries))
		}
		first := panel.Entries[0]
		if first.NutrientKey != "calories" || first.Name != "السعرات الحرارية" {
			t.Errorf("first entry = %s %q", first.NutrientKey, first.Name)
		}
		for _, e := range panel.Entries {
			switch e.NutrientKey {
			case "total_fat":
				if e.PercentDV.String() != "19%" || e.DailyValueSource != domain.DailyValueTable {
					t.Errorf("total_fat = %q from %s", e.PercentDV.String(), e.DailyValueSource)
				}
			case "saturated_fat":
				if e.IndentLevel != 1 {
					t.Errorf("saturated_fat indent = %d, want 1", e.IndentLevel)
				}
			}
		}
	})

	t.Run("unknown label type", func(t *testing.T) {
		w := asOwner(router, "GET", "/api/v1/products/"+productID+"/label/NOPE", "")
		expectStatus(t, w, http.StatusNotFound)
	})
}

func TestProductOwnership(t *testing.T) {
	router := setupTestRouter(t, nil)
	productID := createOilProduct(t, router)

	t.Run("missing owner header", func(t *testing.T) {
		w := do(router, "GET", "/api/v1/products/"+productID, "")
		expectStatus(t, w, http.StatusUnauthorized)
	})

	t.Run("another owner sees nothing", func(t *testing.T) {
		w := do(router, "GET", "/api/v1/products/"+productID+"/nutrition", "", ownerHeader, "user-2")
		expectStatus(t, w, http.StatusNotFound)

		w = do(router, "GET", "/api/v1/products", "", ownerHeader, "user-2")
		expectStatus(t, w, http.StatusOK)
		if page := decode[pageResponse[domain.Product]](t, w); page.Total != 0 || len(page.Items) != 0 {
			t.Errorf("page = %+v", page)
		}
	})

	t.Run("owner lists and removes components", func(t *testing.T) {
		w := asOwner(router, "GET", "/api/v1/products/"+productID, "")
		expectStatus(t, w, http.StatusOK)
		p := decode[domain.Product](t, w)
		if len(p.Components) != 1 {
			t.Fatalf("components = %d, want 1", len(p.Components))
		}

		w = asOwner(router, "DELETE", "/api/v1/products/"+productID+"/ingredients/"+p.Components[0].ID, "")
		expectStatus(t, w, http.StatusNoContent)
		w = asOwner(router, "DELETE", "/api/v1/products/"+productID+"/ingredients/"+p.Components[0].ID, "")
		expectStatus(t, w, http.StatusNotFound)
	})

	t.Run("incompatible component unit", func(t *testing.T) {
		w := do(router, "GET", "/api/v1/ingredients?search=olive", "")
		expectStatus(t, w, http.StatusOK)
		page := decode[pageResponse[domain.Ingredient]](t, w)
		if len(page.Items) != 1 {
			t.Fatalf("ingredients = %d, want 1", len(page.Items))
		}

		w = asOwner(router, "POST", "/api/v1/products/"+productID+"/ingredients",
			fmt.Sprintf(`{"ingredientId":%q,"quantity":"1","unit":"cup"}`, page.Items[0].ID))
		expectStatus(t, w, http.StatusBadRequest)
	})
}

func TestIngredientEndpoints(t *testing.T) {
	t.Run("ingredients in use cannot be deleted", func(t *testing.T) {
		router := setupTestRouter(t, nil)
		createOilProduct(t, router)

		w := do(router, "GET", "/api/v1/ingredients", "")
		page := decode[pageResponse[domain.Ingredient]](t, w)
		if page.Page != 1 || page.PageSize != 20 || page.Total != 1 {
			t.Fatalf("page = %+v", page)
		}

		w = do(router, "DELETE", "/api/v1/ingredients/"+page.Items[0].ID, "")
		expectStatus(t, w, http.StatusConflict)
	})

	t.Run("bad paging parameter", func(t *testing.T) {
		router := setupTestRouter(t, nil)
		w := do(router, "GET", "/api/v1/ingredients?page=two", "")
		expectStatus(t, w, http.StatusBadRequest)
	})

	t.Run("usda not configured", func(t *testing.T) {
		router := setupTestRouter(t, nil)
		w := do(router, "GET", "/api/v1/ingredients/usda/search?q=rice", "")
		expectStatus(t, w, http.StatusServiceUnavailable)
	})

	t.Run("usda search and import", func(t *testing.T) {
		client := &stubUSDAClient{
			search: &domain.USDASearchResponse{
				Foods:     []domain.USDAFood{{FdcID: 169756, Description: "Rice, white, cooked", DataType: "SR Legacy"}},
				TotalHits: 1,
			},
			food: &domain.USDAFood{
				FdcID:       169756,
				Description: "Rice, white, cooked",
				DataType:    "SR Legacy",
				Nutrients:   []domain.USDANutrient{{NutrientID: 1008, UnitName: "KCAL", Value: 130}},
			},
		}
		router := setupTestRouter(t, client)

		w := do(router, "GET", "/api/v1/ingredients/usda/search?q=white+rice", "")
		expectStatus(t, w, http.StatusOK)
		var result struct {
			Candidates []domain.USDACandidate `json:"candidates"`
		}
		if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil {
			t.Fatal(err)
		}
		if len(result.Candidates) != 1 || result.Candidates[0].FdcID != 169756 {
			t.Errorf("candidates = %+v", result.Candidates)
		}

		w = do(router, "POST", "/api/v1/ingredients/usda/import", `{"fdcId":169756}`)
		expectStatus(t, w, http.StatusCreated)
		ing := decode[domain.Ingredient](t, w)
		if ing.IsVerified || !strings.HasPrefix(ing.Source, "USDA") {
			t.Errorf("imported = %+v", ing)
		}
	})

	t.Run("usda upstream failure", func(t *testing.T) {
		router := setupTestRouter(t, &stubUSDAClient{err: domain.ErrUSDAAPIFailure})
		w := do(router, "GET", "/api/v1/ingredients/usda/search?q=rice", "")
		expectStatus(t, w, http.StatusBadGateway)
	})
}

func TestErrorStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{domain.InvalidInput("product", "p1", "name", "required"), http.StatusBadRequest},
		{domain.Configuration("label type", "X", "missing table"), http.StatusUnprocessableEntity},
		{domain.Conflict("nutrient", "fat", "exists"), http.StatusConflict},
		{domain.NotFound("product", "p1"), http.StatusNotFound},
		{fmt.Errorf("search: %w", domain.ErrUSDAAPIFailure), http.StatusBadGateway},
		{domain.ErrUSDANotConfigured, http.StatusServiceUnavailable},
		{context.DeadlineExceeded, http.StatusGatewayTimeout},
		{errors.New("disk full"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := errorStatus(tt.err); got != tt.want {
			t.Errorf("errorStatus(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

// TestCORSIntegration tests CORS in the full router setup
func TestCORSIntegration(t *testing.T) {
	router := setupTestRouter(t, nil)

	t.Run("health endpoint has CORS for the admin app", func(t *testing.T) {
		w := do(router, "GET", "/health", "", "Origin", "https://admin.nutrical.app")

		if w.Header().Get("Access-Control-Allow-Origin") != "https://admin.nutrical.app" {
			t.Errorf("CORS header not set correctly")
		}
	})

	t.Run("preflight allows the owner header", func(t *testing.T) {
		w := do(router, "OPTIONS", "/api/v1/products", "", "Origin", "http://localhost:3000")

		expectStatus(t, w, http.StatusNoContent)
		if !strings.Contains(w.Header().Get("Access-Control-Allow-Headers"), ownerHeader) {
			t.Errorf("Access-Control-Allow-Headers = %q", w.Header().Get("Access-Control-Allow-Headers"))
		}
	})
}

// TestRecoveryMiddleware tests panic recovery
func TestRecoveryMiddleware(t *testing.T) {
	t.Run("recovers from panic without crashing server", func(t *testing.T) {
		router := gin.New()
		router.Use(RecoveryMiddleware())
		router.GET("/panic", func(c *gin.Context) {
			panic("test panic")
		})

		w := do(router, "GET", "/panic", "")

		if w.Code != http.StatusInternalServerError {
			t.Errorf("Status = %d, want %d", w.Code, http.StatusInternalServerError)
		}
	})
}

// TestAPIVersioning tests that routes live under /api/v1
func TestAPIVersioning(t *testing.T) {
	router := setupTestRouter(t, nil)

	t.Run("non-versioned routes return 404", func(t *testing.T) {
		w := do(router, "GET", "/nutrients", "")
		expectStatus(t, w, http.StatusNotFound)
		if !strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
			t.Errorf("Content-Type = %q, want JSON", w.Header().Get("Content-Type"))
		}
	})
}

func allergenIDs(t *testing.T, router *gin.Engine) map[string]string {
	t.Helper()
	w := do(router, "GET", "/api/v1/allergens", "")
	expectStatus(t, w, http.StatusOK)
	ids := map[string]string{}
	for _, a := range decode[[]domain.Allergen](t, w) {
		ids[a.Name] = a.ID
	}
	return ids
}

func TestAllergenEndpoints(t *testing.T) {
	router := setupTestRouter(t, nil)

	t.Run("seeded list puts major allergens first", func(t *testing.T) {
		w := do(router, "GET", "/api/v1/allergens", "")
		expectStatus(t, w, http.StatusOK)
		all := decode[[]domain.Allergen](t, w)
		if len(all) != 15 {
			t.Fatalf("allergens = %d, want 15", len(all))
		}
		for i, a := range all {
			if a.IsMajor != (i < 9) {
				t.Errorf("allergen %d %s major = %v", i, a.Name, a.IsMajor)
			}
		}

		w = do(router, "GET", "/api/v1/allergens?major=true", "")
		expectStatus(t, w, http.StatusOK)
		if n := len(decode[[]domain.Allergen](t, w)); n != 9 {
			t.Errorf("major allergens = %d, want 9", n)
		}
		expectStatus(t, do(router, "GET", "/api/v1/allergens?major=maybe", ""), http.StatusBadRequest)
	})

	t.Run("create update delete", func(t *testing.T) {
		w := do(router, "POST", "/api/v1/allergens", `{"name":"Pine nuts","color":"#AA8800","isActive":true}`)
		expectStatus(t, w, http.StatusCreated)
		a := decode[domain.Allergen](t, w)
		if a.Color != "#aa8800" {
			t.Errorf("color = %q", a.Color)
		}

		expectStatus(t, do(router, "POST", "/api/v1/allergens", `{"name":"Pine nuts"}`), http.StatusConflict)
		expectStatus(t, do(router, "POST", "/api/v1/allergens", `{"name":"Pine nuts 2","color":"red"}`), http.StatusBadRequest)

		w = do(router, "PUT", "/api/v1/allergens/"+a.ID, `{"name":"Pine nuts","nameAr":"صنوبر","isActive":true}`)
		expectStatus(t, w, http.StatusOK)
		if got := decode[domain.Allergen](t, w); got.NameAr != "صنوبر" {
			t.Errorf("nameAr = %q", got.NameAr)
		}

		expectStatus(t, do(router, "DELETE", "/api/v1/allergens/"+a.ID, ""), http.StatusNoContent)
		expectStatus(t, do(router, "GET", "/api/v1/allergens/"+a.ID, ""), http.StatusNotFound)
	})
}

func TestProductLabelFlow(t *testing.T) {
	router := setupTestRouter(t, nil)
	productID := createOilProduct(t, router)
	ids := allergenIDs(t, router)
	base := "/api/v1/products/" + productID

	t.Run("declare allergens", func(t *testing.T) {
		body := fmt.Sprintf(`{"allergens":[{"allergenId":%q},{"allergenId":%q,"status":"may_contain"}]}`, ids["Sesame"], ids["Milk"])
		w := asOwner(router, "PUT", base+"/allergens", body)
		expectStatus(t, w, http.StatusOK)
		links := decode[[]domain.ProductAllergen](t, w)
		if len(links) != 2 {
			t.Fatalf("links = %d, want 2", len(links))
		}

		bad := fmt.Sprintf(`{"allergens":[{"allergenId":%q,"status":"traces"}]}`, ids["Sesame"])
		expectStatus(t, asOwner(router, "PUT", base+"/allergens", bad), http.StatusBadRequest)
		expectStatus(t, asOwner(router, "PUT", base+"/allergens", `{"allergens":[{"allergenId":"missing"}]}`), http.StatusNotFound)
		expectStatus(t, do(router, "PUT", base+"/allergens", body, ownerHeader, "user-2"), http.StatusNotFound)

		w = asOwner(router, "GET", base+"/allergens", "")
		expectStatus(t, w, http.StatusOK)
		if n := len(decode[[]domain.ProductAllergen](t, w)); n != 2 {
			t.Errorf("stored links = %d, want 2", n)
		}
	})

	t.Run("preview carries statements", func(t *testing.T) {
		w := asOwner(router, "GET", base+"/label/FDA_STANDARD", "")
		expectStatus(t, w, http.StatusOK)
		panel := decode[usecase.LabelPanel](t, w)
		want := domain.LabelText{Ingredients: "Olive oil", Contains: "Sesame", MayContain: "Milk"}
		if panel.Text != want {
			t.Errorf("text = %+v, want %+v", panel.Text, want)
		}
		if panel.Language != "en" {
			t.Errorf("language = %q", panel.Language)
		}

		w = asOwner(router, "GET", base+"/labels", "")
		expectStatus(t, w, http.StatusOK)
		if n := len(decode[[]domain.Label](t, w)); n != 0 {
			t.Errorf("preview stored %d labels", n)
		}
	})

	var first domain.Label
	t.Run("generate snapshots", func(t *testing.T) {
		w := asOwner(router, "POST", base+"/labels", `{"labelTypeCode":"FDA_STANDARD"}`)
		expectStatus(t, w, http.StatusCreated)
		first = decode[domain.Label](t, w)
		if first.Version != 1 || first.Snapshot.Text.Contains != "Sesame" {
			t.Fatalf("first label = v%d %+v", first.Version, first.Snapshot.Text)
		}

		w = asOwner(router, "PUT", base, `{"name":"Dressing","servingSize":"30","servingUnit":"g"}`)
		expectStatus(t, w, http.StatusOK)

		w = asOwner(router, "POST", base+"/labels", `{"labelTypeCode":"FDA_STANDARD","name":"Large serving"}`)
		expectStatus(t, w, http.StatusCreated)
		second := decode[domain.Label](t, w)
		if second.Version != 2 || second.Name != "Large serving" {
			t.Errorf("second label = v%d %q", second.Version, second.Name)
		}

		w = asOwner(router, "GET", base+"/labels/"+first.ID, "")
		expectStatus(t, w, http.StatusOK)
		again := decode[domain.Label](t, w)
		oldFat := again.Snapshot.Summary.Nutrients["total_fat"].Display
		if oldFat != first.Snapshot.Summary.Nutrients["total_fat"].Display {
			t.Errorf("saved label changed to %q", oldFat)
		}
		if oldFat == second.Snapshot.Summary.Nutrients["total_fat"].Display {
			t.Errorf("new serving size not reflected, both %q", oldFat)
		}

		expectStatus(t, asOwner(router, "POST", base+"/labels", `{"labelTypeCode":"NOPE"}`), http.StatusNotFound)
		expectStatus(t, asOwner(router, "POST", base+"/labels", `{}`), http.StatusBadRequest)
	})

	t.Run("list and delete", func(t *testing.T) {
		w := asOwner(router, "GET", base+"/labels", "")
		expectStatus(t, w, http.StatusOK)
		labels := decode[[]domain.Label](t, w)
		if len(labels) != 2 {
			t.Fatalf("labels = %d, want 2", len(labels))
		}
		if labels[0].Version != 2 {
			t.Errorf("newest label is v%d", labels[0].Version)
		}

		expectStatus(t, do(router, "GET", base+"/labels/"+first.ID, "", ownerHeader, "user-2"), http.StatusNotFound)
		expectStatus(t, asOwner(router, "DELETE", base+"/labels/"+first.ID, ""), http.StatusNoContent)
		expectStatus(t, asOwner(router, "GET", base+"/labels/"+first.ID, ""), http.StatusNotFound)
	})
}
