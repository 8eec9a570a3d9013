package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nutrical/backend/internal/domain"
)

// ListAllergens returns the allergen master list, major allergens first
func (h *Handler) ListAllergens(c *gin.Context) {
	majorOnly, err := queryBool(c, "major")
	if err != nil {
		h.fail(c, err)
		return
	}
	activeOnly, err := queryBool(c, "active")
	if err != nil {
		h.fail(c, err)
		return
	}
	items, err := h.svc.Allergens.List(c.Request.Context(), domain.AllergenFilter{
		MajorOnly:  majorOnly,
		ActiveOnly: activeOnly,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	if items == nil {
		items = []domain.Allergen{}
	}
	c.JSON(http.StatusOK, items)
}

func (h *Handler) GetAllergen(c *gin.Context) {
	a, err := h.svc.Allergens.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

func (h *Handler) CreateAllergen(c *gin.Context) {
	var a domain.Allergen
	if err := bind(c, &a); err != nil {
		h.fail(c, err)
		return
	}
	if err := h.svc.Allergens.Create(c.Request.Context(), &a); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, a)
}

func (h *Handler) UpdateAllergen(c *gin.Context) {
	var a domain.Allergen
	if err := bind(c, &a); err != nil {
		h.fail(c, err)
		return
	}
	if err := h.svc.Allergens.Update(c.Request.Context(), c.Param("id"), &a); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

func (h *Handler) DeleteAllergen(c *gin.Context) {
	if err := h.svc.Allergens.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
