package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nutrical/backend/internal/domain"
	"github.com/nutrical/backend/internal/usecase"
)

func (h *Handler) ListProducts(c *gin.Context) {
	page, pageSize, err := paging(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	items, total, err := h.svc.Products.List(c.Request.Context(), ownerFrom(c), page, pageSize)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, newPage(items, total, page, pageSize))
}

func (h *Handler) GetProduct(c *gin.Context) {
	p, err := h.svc.Products.Get(c.Request.Context(), ownerFrom(c), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handler) CreateProduct(c *gin.Context) {
	var p domain.Product
	if err := bind(c, &p); err != nil {
		h.fail(c, err)
		return
	}
	if err := h.svc.Products.Create(c.Request.Context(), ownerFrom(c), &p); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (h *Handler) UpdateProduct(c *gin.Context) {
	var p domain.Product
	if err := bind(c, &p); err != nil {
		h.fail(c, err)
		return
	}
	owner, id := ownerFrom(c), c.Param("id")
	if err := h.svc.Products.Update(c.Request.Context(), owner, id, &p); err != nil {
		h.fail(c, err)
		return
	}
	updated, err := h.svc.Products.Get(c.Request.Context(), owner, id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *Handler) DeleteProduct(c *gin.Context) {
	if err := h.svc.Products.Delete(c.Request.Context(), ownerFrom(c), c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) AddProductComponent(c *gin.Context) {
	var comp domain.RecipeComponent
	if err := bind(c, &comp); err != nil {
		h.fail(c, err)
		return
	}
	if err := h.svc.Products.AddComponent(c.Request.Context(), ownerFrom(c), c.Param("id"), &comp); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, comp)
}

func (h *Handler) RemoveProductComponent(c *gin.Context) {
	err := h.svc.Products.RemoveComponent(c.Request.Context(), ownerFrom(c), c.Param("id"), c.Param("componentId"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func summaryRequest(c *gin.Context) usecase.SummaryRequest {
	return usecase.SummaryRequest{
		Mode:               domain.DisplayMode(c.Query("mode")),
		Region:             c.Query("region"),
		ReferenceTableCode: c.Query("table"),
	}
}

// ProductNutrition computes the product's nutrition summary
func (h *Handler) ProductNutrition(c *gin.Context) {
	summary, err := h.svc.Nutrition.ComputeNutritionSummary(c.Request.Context(), ownerFrom(c), c.Param("id"), summaryRequest(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func labelRequest(c *gin.Context, labelTypeCode string) usecase.LabelRequest {
	return usecase.LabelRequest{
		LabelTypeCode: labelTypeCode,
		Language:      c.Query("lang"),
		Summary:       summaryRequest(c),
	}
}

// ProductLabel previews the product's label with the named label type,
// including its ingredient and allergen statements
func (h *Handler) ProductLabel(c *gin.Context) {
	panel, err := h.svc.Labels.Preview(c.Request.Context(), ownerFrom(c), c.Param("id"), labelRequest(c, c.Param("labelTypeCode")))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, panel)
}

type allergenLinksRequest struct {
	Allergens []domain.ProductAllergen `json:"allergens"`
}

func (h *Handler) ProductAllergens(c *gin.Context) {
	links, err := h.svc.Products.Allergens(c.Request.Context(), ownerFrom(c), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	if links == nil {
		links = []domain.ProductAllergen{}
	}
	c.JSON(http.StatusOK, links)
}

// SetProductAllergens replaces every allergen declaration of the product
func (h *Handler) SetProductAllergens(c *gin.Context) {
	var req allergenLinksRequest
	if err := bind(c, &req); err != nil {
		h.fail(c, err)
		return
	}
	links, err := h.svc.Products.SetAllergens(c.Request.Context(), ownerFrom(c), c.Param("id"), req.Allergens)
	if err != nil {
		h.fail(c, err)
		return
	}
	if links == nil {
		links = []domain.ProductAllergen{}
	}
	c.JSON(http.StatusOK, links)
}

type generateLabelRequest struct {
	LabelTypeCode string `json:"labelTypeCode"`
	Name          string `json:"name"`
}

// GenerateProductLabel saves a label snapshot as the product's next version.
// Summary options come from the query string as for previews.
func (h *Handler) GenerateProductLabel(c *gin.Context) {
	var req generateLabelRequest
	if err := bind(c, &req); err != nil {
		h.fail(c, err)
		return
	}
	label, err := h.svc.Labels.Generate(c.Request.Context(), ownerFrom(c), c.Param("id"), req.Name, labelRequest(c, req.LabelTypeCode))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, label)
}

func (h *Handler) ListProductLabels(c *gin.Context) {
	labels, err := h.svc.Labels.List(c.Request.Context(), ownerFrom(c), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	if labels == nil {
		labels = []domain.Label{}
	}
	c.JSON(http.StatusOK, labels)
}

func (h *Handler) GetProductLabel(c *gin.Context) {
	label, err := h.svc.Labels.Get(c.Request.Context(), ownerFrom(c), c.Param("id"), c.Param("labelId"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, label)
}

func (h *Handler) DeleteProductLabel(c *gin.Context) {
	if err := h.svc.Labels.Delete(c.Request.Context(), ownerFrom(c), c.Param("id"), c.Param("labelId")); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
