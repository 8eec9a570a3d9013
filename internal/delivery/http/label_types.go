package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nutrical/backend/internal/domain"
)

type reorderRequest struct {
	Keys []string `json:"keys"`
}

func (h *Handler) ListLabelTypes(c *gin.Context) {
	activeOnly, err := queryBool(c, "active")
	if err != nil {
		h.fail(c, err)
		return
	}
	lts, err := h.svc.LabelTypes.List(c.Request.Context(), activeOnly)
	if err != nil {
		h.fail(c, err)
		return
	}
	if lts == nil {
		lts = []domain.LabelType{}
	}
	c.JSON(http.StatusOK, lts)
}

func (h *Handler) GetLabelType(c *gin.Context) {
	lt, err := h.svc.LabelTypes.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, lt)
}

func (h *Handler) CreateLabelType(c *gin.Context) {
	var lt domain.LabelType
	if err := bind(c, &lt); err != nil {
		h.fail(c, err)
		return
	}
	if err := h.svc.LabelTypes.Create(c.Request.Context(), &lt); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, lt)
}

func (h *Handler) UpdateLabelType(c *gin.Context) {
	var lt domain.LabelType
	if err := bind(c, &lt); err != nil {
		h.fail(c, err)
		return
	}
	id := c.Param("id")
	if err := h.svc.LabelTypes.Update(c.Request.Context(), id, &lt); err != nil {
		h.fail(c, err)
		return
	}
	updated, err := h.svc.LabelTypes.Get(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *Handler) DeleteLabelType(c *gin.Context) {
	if err := h.svc.LabelTypes.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) DuplicateLabelType(c *gin.Context) {
	var req copyRequest
	if err := bindOptional(c, &req); err != nil {
		h.fail(c, err)
		return
	}
	lt, err := h.svc.LabelTypes.Duplicate(c.Request.Context(), c.Param("id"), req.Code, req.Name)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, lt)
}

func (h *Handler) LabelTypeNutrients(c *gin.Context) {
	configs, err := h.svc.LabelTypes.Nutrients(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	respondConfigs(c, configs)
}

func (h *Handler) ReplaceLabelTypeNutrients(c *gin.Context) {
	var configs []domain.LabelTypeNutrient
	if err := bind(c, &configs); err != nil {
		h.fail(c, err)
		return
	}
	saved, err := h.svc.LabelTypes.ReplaceNutrients(c.Request.Context(), c.Param("id"), configs)
	if err != nil {
		h.fail(c, err)
		return
	}
	respondConfigs(c, saved)
}

func (h *Handler) ReorderLabelTypeNutrients(c *gin.Context) {
	var req reorderRequest
	if err := bind(c, &req); err != nil {
		h.fail(c, err)
		return
	}
	saved, err := h.svc.LabelTypes.Reorder(c.Request.Context(), c.Param("id"), req.Keys)
	if err != nil {
		h.fail(c, err)
		return
	}
	respondConfigs(c, saved)
}

func respondConfigs(c *gin.Context, configs []domain.LabelTypeNutrient) {
	if configs == nil {
		configs = []domain.LabelTypeNutrient{}
	}
	c.JSON(http.StatusOK, configs)
}
