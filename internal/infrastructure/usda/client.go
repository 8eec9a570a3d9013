package usda

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/nutrical/backend/internal/domain"
)

const (
	maxAttempts    = 3
	searchPageSize = 25
	searchTypes    = "Foundation,SR Legacy,Survey (FNDDS),Branded"
)

// Client handles communication with the USDA FoodData Central API
type Client struct {
	httpClient  *http.Client
	apiKey      string
	baseURL     string
	rateLimiter *rate.Limiter
	logger      *slog.Logger
	debug       bool
}

// NewClient creates a USDA API client limited to requestsPerHour.
// FoodData Central allows 1000 requests per hour per key.
func NewClient(apiKey, baseURL string, requestsPerHour int) *Client {
	if requestsPerHour <= 0 {
		requestsPerHour = 1000
	}
	limiter := rate.NewLimiter(rate.Limit(float64(requestsPerHour)/3600), 10)

	return &Client{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		apiKey:      apiKey,
		baseURL:     baseURL,
		rateLimiter: limiter,
		logger:      slog.Default().With("component", "usda"),
	}
}

// SetDebug enables logging of error response bodies
func (c *Client) SetDebug(debug bool) {
	c.debug = debug
}

// Configured reports whether an API key is set
func (c *Client) Configured() bool {
	return c.apiKey != ""
}

func exponentialBackoff(attempt int) time.Duration {
	return time.Duration(500*(1<<(attempt-1))) * time.Millisecond
}

// SearchFoods searches FoodData Central. No hits is an empty response, not an error.
func (c *Client) SearchFoods(ctx context.Context, query string) (*domain.USDASearchResponse, error) {
	params := url.Values{}
	params.Add("query", query)
	params.Add("api_key", c.apiKey)
	params.Add("dataType", searchTypes)
	params.Add("pageSize", strconv.Itoa(searchPageSize))
	reqURL := fmt.Sprintf("%s/v1/foods/search?%s", c.baseURL, params.Encode())

	var resp domain.USDASearchResponse
	if err := c.getJSON(ctx, reqURL, &resp, "usda search", query); err != nil {
		return nil, err
	}
	if resp.Foods == nil {
		resp.Foods = []domain.USDAFood{}
	}

	c.logger.Debug("search completed", "query", query, "hits", len(resp.Foods))
	return &resp, nil
}

// GetFoodDetails retrieves the full nutrient profile of one food by FDC id
func (c *Client) GetFoodDetails(ctx context.Context, fdcID string) (*domain.USDAFood, error) {
	if _, err := strconv.Atoi(fdcID); err != nil {
		return nil, domain.InvalidInput("usda food", fdcID, "fdcId", "must be numeric")
	}

	params := url.Values{}
	params.Add("api_key", c.apiKey)
	reqURL := fmt.Sprintf("%s/v1/food/%s?%s", c.baseURL, url.PathEscape(fdcID), params.Encode())

	var food domain.USDAFood
	if err := c.getJSON(ctx, reqURL, &food, "usda food", fdcID); err != nil {
		return nil, err
	}
	return &food, nil
}

// getJSON performs a rate-limited GET and decodes the body into dest. Transport
// errors, 429 and 5xx responses are retried with exponential backoff; 404 maps
// to a NotFound error for entity/id.
func (c *Client) getJSON(ctx context.Context, reqURL string, dest any, entity, id string) error {
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(exponentialBackoff(attempt - 1)):
			}
		}

		if err := c.rateLimiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter: %w", err)
		}

		resp, err := c.doRequest(ctx, reqURL)
		if err != nil {
			c.logger.Warn("request failed", "entity", entity, "id", id, "attempt", attempt, "error", err)
			lastErr = err
			continue
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("%w: read body: %v", domain.ErrUSDAAPIFailure, err)
			continue
		}

		switch {
		case resp.StatusCode == http.StatusOK:
			if err := json.Unmarshal(body, dest); err != nil {
				return fmt.Errorf("%w: decode response: %v", domain.ErrUSDAAPIFailure, err)
			}
			return nil
		case resp.StatusCode == http.StatusNotFound:
			return domain.NotFound(entity, id)
		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
			c.logResponse(entity, id, attempt, resp.StatusCode, body)
			lastErr = fmt.Errorf("%w: status %d", domain.ErrUSDAAPIFailure, resp.StatusCode)
		default:
			c.logResponse(entity, id, attempt, resp.StatusCode, body)
			return fmt.Errorf("%w: status %d", domain.ErrUSDAAPIFailure, resp.StatusCode)
		}
	}

	c.logger.Error("all retries failed", "entity", entity, "id", id, "error", lastErr)
	return lastErr
}

func (c *Client) doRequest(ctx context.Context, reqURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", "NutriCal/1.0")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUSDAAPIFailure, err)
	}
	return resp, nil
}

func (c *Client) logResponse(entity, id string, attempt, status int, body []byte) {
	attrs := []any{"entity", entity, "id", id, "attempt", attempt, "status", status}
	if c.debug {
		attrs = append(attrs, "body", string(body))
	}
	c.logger.Warn("api error", attrs...)
}
