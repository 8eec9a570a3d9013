package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nutrical/backend/internal/domain"
)

type setDefaultRequest struct {
	Region string `json:"region"`
}

func (h *Handler) ListReferenceTables(c *gin.Context) {
	activeOnly, err := queryBool(c, "active")
	if err != nil {
		h.fail(c, err)
		return
	}
	tables, err := h.svc.ReferenceTables.List(c.Request.Context(), c.Query("region"), activeOnly)
	if err != nil {
		h.fail(c, err)
		return
	}
	if tables == nil {
		tables = []domain.ReferenceTable{}
	}
	c.JSON(http.StatusOK, tables)
}

func (h *Handler) ReferenceTableRegions(c *gin.Context) {
	regions, err := h.svc.ReferenceTables.Regions(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	if regions == nil {
		regions = []string{}
	}
	c.JSON(http.StatusOK, regions)
}

func (h *Handler) GetReferenceTable(c *gin.Context) {
	t, err := h.svc.ReferenceTables.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

func (h *Handler) CreateReferenceTable(c *gin.Context) {
	var t domain.ReferenceTable
	if err := bind(c, &t); err != nil {
		h.fail(c, err)
		return
	}
	if err := h.svc.ReferenceTables.Create(c.Request.Context(), &t); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, t)
}

func (h *Handler) UpdateReferenceTable(c *gin.Context) {
	var t domain.ReferenceTable
	if err := bind(c, &t); err != nil {
		h.fail(c, err)
		return
	}
	id := c.Param("id")
	if err := h.svc.ReferenceTables.Update(c.Request.Context(), id, &t); err != nil {
		h.fail(c, err)
		return
	}
	updated, err := h.svc.ReferenceTables.Get(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *Handler) DeleteReferenceTable(c *gin.Context) {
	if err := h.svc.ReferenceTables.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// SetDefaultReferenceTable makes the table its region's only default. The body
// is optional; a region in it must match the table's own.
func (h *Handler) SetDefaultReferenceTable(c *gin.Context) {
	var req setDefaultRequest
	if err := bindOptional(c, &req); err != nil {
		h.fail(c, err)
		return
	}
	t, err := h.svc.ReferenceTables.SetDefault(c.Request.Context(), c.Param("id"), req.Region)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

func (h *Handler) ApplyReferenceTable(c *gin.Context) {
	n, err := h.svc.ReferenceTables.ApplyToLabelType(c.Request.Context(), c.Param("id"), c.Param("labelTypeId"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": n})
}

func (h *Handler) DuplicateReferenceTable(c *gin.Context) {
	var req copyRequest
	if err := bindOptional(c, &req); err != nil {
		h.fail(c, err)
		return
	}
	t, err := h.svc.ReferenceTables.Duplicate(c.Request.Context(), c.Param("id"), req.Code, req.Name)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, t)
}
