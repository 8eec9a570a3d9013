package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/nutrical/backend/internal/domain"
	"github.com/nutrical/backend/internal/usecase"
)

const (
	serviceName = "nutrical-backend"
	version     = "1.0.0"
)

// Services bundles the use cases the API exposes
type Services struct {
	Nutrients       *usecase.NutrientService
	ReferenceTables *usecase.ReferenceTableService
	LabelTypes      *usecase.LabelTypeService
	Ingredients     *usecase.IngredientService
	Allergens       *usecase.AllergenService
	Products        *usecase.ProductService
	Nutrition       *usecase.NutritionService
	Labels          *usecase.LabelService
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	svc    Services
	ping   func(context.Context) error
	logger *slog.Logger
}

// NewHandler creates a new HTTP handler. ping reports storage health and may be nil.
func NewHandler(svc Services, ping func(context.Context) error) *Handler {
	return &Handler{
		svc:    svc,
		ping:   ping,
		logger: slog.Default().With("component", "http"),
	}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	status, code := "healthy", http.StatusOK
	if h.ping != nil {
		if err := h.ping(c.Request.Context()); err != nil {
			h.logger.Error("health check failed", "error", err)
			status, code = "unhealthy", http.StatusServiceUnavailable
		}
	}
	c.JSON(code, gin.H{
		"status":  status,
		"service": serviceName,
		"version": version,
	})
}

// errorStatus maps the domain error taxonomy onto HTTP status codes
func errorStatus(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrConfiguration):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrUSDANotConfigured):
		return http.StatusServiceUnavailable
	case errors.Is(err, domain.ErrUSDAAPIFailure):
		return http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}

func (h *Handler) fail(c *gin.Context, err error) {
	code := errorStatus(err)
	_ = c.Error(err)
	if code == http.StatusInternalServerError {
		h.logger.Error("request failed", "path", c.FullPath(), "error", err)
		c.JSON(code, gin.H{"error": "internal server error"})
		return
	}
	body := gin.H{"error": err.Error()}
	var de *domain.Error
	if errors.As(err, &de) && de.Field != "" {
		body["field"] = de.Field
	}
	c.JSON(code, body)
}

// bind decodes the JSON body into dest, rejecting unknown fields
func bind(c *gin.Context, dest any) error {
	dec := json.NewDecoder(c.Request.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dest); err != nil {
		if errors.Is(err, io.EOF) {
			return domain.InvalidInput("request", "", "body", "request body is required")
		}
		return domain.InvalidInput("request", "", "body", "%v", err)
	}
	return nil
}

func queryInt(c *gin.Context, name string, fallback int) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, domain.InvalidInput("request", "", name, "must be an integer, got %q", raw)
	}
	return n, nil
}

func queryBool(c *gin.Context, name string) (bool, error) {
	raw := c.Query(name)
	if raw == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return false, domain.InvalidInput("request", "", name, "must be a boolean, got %q", raw)
	}
	return b, nil
}

func paging(c *gin.Context) (page, pageSize int, err error) {
	if page, err = queryInt(c, "page", 1); err != nil {
		return 0, 0, err
	}
	if pageSize, err = queryInt(c, "pageSize", 0); err != nil {
		return 0, 0, err
	}
	return page, pageSize, nil
}

type pageResponse[T any] struct {
	Items    []T   `json:"items"`
	Total    int64 `json:"total"`
	Page     int   `json:"page"`
	PageSize int   `json:"pageSize"`
}

func newPage[T any](items []T, total int64, page, pageSize int) pageResponse[T] {
	offset, limit := usecase.Page(page, pageSize)
	if items == nil {
		items = []T{}
	}
	return pageResponse[T]{Items: items, Total: total, Page: offset/limit + 1, PageSize: limit}
}

// copyRequest names a new code and name for a duplicated entity
type copyRequest struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

func bindOptional(c *gin.Context, dest any) error {
	if c.Request.ContentLength == 0 {
		return nil
	}
	return bind(c, dest)
}

func notFoundRoute(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("no route for %s %s", c.Request.Method, c.Request.URL.Path)})
}
