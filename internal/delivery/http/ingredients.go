package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nutrical/backend/internal/domain"
)

type importRequest struct {
	FdcID int `json:"fdcId"`
}

func (h *Handler) ListIngredients(c *gin.Context) {
	page, pageSize, err := paging(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	items, total, err := h.svc.Ingredients.List(c.Request.Context(), c.Query("search"), page, pageSize)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, newPage(items, total, page, pageSize))
}

func (h *Handler) GetIngredient(c *gin.Context) {
	ing, err := h.svc.Ingredients.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, ing)
}

func (h *Handler) CreateIngredient(c *gin.Context) {
	var ing domain.Ingredient
	if err := bind(c, &ing); err != nil {
		h.fail(c, err)
		return
	}
	if err := h.svc.Ingredients.Create(c.Request.Context(), &ing); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, ing)
}

func (h *Handler) UpdateIngredient(c *gin.Context) {
	var ing domain.Ingredient
	if err := bind(c, &ing); err != nil {
		h.fail(c, err)
		return
	}
	id := c.Param("id")
	if err := h.svc.Ingredients.Update(c.Request.Context(), id, &ing); err != nil {
		h.fail(c, err)
		return
	}
	updated, err := h.svc.Ingredients.Get(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *Handler) DeleteIngredient(c *gin.Context) {
	if err := h.svc.Ingredients.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// SearchUSDA returns ranked FoodData Central candidates for the q parameter
func (h *Handler) SearchUSDA(c *gin.Context) {
	candidates, err := h.svc.Ingredients.SearchUSDA(c.Request.Context(), c.Query("q"))
	if err != nil {
		h.fail(c, err)
		return
	}
	if candidates == nil {
		candidates = []domain.USDACandidate{}
	}
	c.JSON(http.StatusOK, gin.H{"query": c.Query("q"), "candidates": candidates})
}

func (h *Handler) ImportUSDA(c *gin.Context) {
	var req importRequest
	if err := bind(c, &req); err != nil {
		h.fail(c, err)
		return
	}
	ing, err := h.svc.Ingredients.ImportUSDA(c.Request.Context(), req.FdcID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, ing)
}
