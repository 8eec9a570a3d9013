package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nutrical/backend/internal/domain"
)

// nutrientNode is one catalog entry with its children, as rendered by the tree endpoint
type nutrientNode struct {
	domain.NutrientDefinition
	Depth    int             `json:"depth"`
	Children []*nutrientNode `json:"children,omitempty"`
}

func (h *Handler) ListNutrients(c *gin.Context) {
	activeOnly, err := queryBool(c, "active")
	if err != nil {
		h.fail(c, err)
		return
	}
	defs, err := h.svc.Nutrients.List(c.Request.Context(), domain.NutrientFilter{
		Category:   domain.NutrientCategory(c.Query("category")),
		ActiveOnly: activeOnly,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	if defs == nil {
		defs = []domain.NutrientDefinition{}
	}
	c.JSON(http.StatusOK, defs)
}

func (h *Handler) NutrientCategories(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.Nutrients.Categories())
}

// NutrientTree renders the catalog hierarchy rooted at the top-level nutrients
func (h *Handler) NutrientTree(c *gin.Context) {
	tree, err := h.svc.Nutrients.Tree(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	nodes := make(map[string]*nutrientNode, tree.Len())
	roots := []*nutrientNode{}
	tree.Walk(func(def domain.NutrientDefinition, depth int) {
		node := &nutrientNode{NutrientDefinition: def, Depth: depth}
		nodes[def.Key] = node
		if parent, ok := nodes[def.ParentKey]; ok {
			parent.Children = append(parent.Children, node)
			return
		}
		roots = append(roots, node)
	})
	c.JSON(http.StatusOK, roots)
}

func (h *Handler) GetNutrient(c *gin.Context) {
	def, err := h.svc.Nutrients.Get(c.Request.Context(), c.Param("key"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, def)
}

func (h *Handler) CreateNutrient(c *gin.Context) {
	var def domain.NutrientDefinition
	if err := bind(c, &def); err != nil {
		h.fail(c, err)
		return
	}
	if err := h.svc.Nutrients.Create(c.Request.Context(), &def); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, def)
}

func (h *Handler) BulkCreateNutrients(c *gin.Context) {
	var defs []*domain.NutrientDefinition
	if err := bind(c, &defs); err != nil {
		h.fail(c, err)
		return
	}
	if err := h.svc.Nutrients.BulkCreate(c.Request.Context(), defs); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"created": len(defs), "nutrients": defs})
}

func (h *Handler) UpdateNutrient(c *gin.Context) {
	var def domain.NutrientDefinition
	if err := bind(c, &def); err != nil {
		h.fail(c, err)
		return
	}
	key := c.Param("key")
	if err := h.svc.Nutrients.Update(c.Request.Context(), key, &def); err != nil {
		h.fail(c, err)
		return
	}
	updated, err := h.svc.Nutrients.Get(c.Request.Context(), key)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *Handler) ToggleNutrient(c *gin.Context) {
	def, err := h.svc.Nutrients.Toggle(c.Request.Context(), c.Param("key"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, def)
}

func (h *Handler) DeleteNutrient(c *gin.Context) {
	if err := h.svc.Nutrients.Delete(c.Request.Context(), c.Param("key")); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
