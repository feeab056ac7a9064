package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"delivery-service/internal/engine"
)

const productCacheTTL = 5 * time.Minute

// ProductInfo is the product descriptor fetched from the products-service.
type ProductInfo struct {
	Handle      string             `json:"handle"`
	Tags        []string           `json:"tags"`
	StockStatus engine.StockStatus `json:"stockStatus"`
}

type productResponse struct {
	Success bool         `json:"success"`
	Data    *ProductInfo `json:"data,omitempty"`
	Message *string      `json:"message,omitempty"`
}

// ProductsClient resolves product tags and stock status from the
// products-service, with a get-or-fetch redis cache keyed by tenant and
// handle. The estimation engine never performs this lookup itself; resolved
// tags are handed to it as plain inputs.
type ProductsClient struct {
	baseURL    string
	httpClient *http.Client
	redis      *redis.Client
	logger     *logrus.Entry
}

// NewProductsClient creates a new products client. A nil redis client
// disables caching.
func NewProductsClient(redisClient *redis.Client, logger *logrus.Logger) *ProductsClient {
	baseURL := os.Getenv("PRODUCTS_SERVICE_URL")
	if baseURL == "" {
		baseURL = "http://products-service:8080"
	}
	return &ProductsClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		redis:      redisClient,
		logger:     logger.WithField("component", "clients.products"),
	}
}

// GetProduct fetches a product by handle, serving from cache when possible.
func (c *ProductsClient) GetProduct(ctx context.Context, tenantID, handle string) (*ProductInfo, error) {
	cacheKey := fmt.Sprintf("tesseract:delivery:product:%s:%s", tenantID, handle)

	if c.redis != nil {
		val, err := c.redis.Get(ctx, cacheKey).Result()
		if err == nil {
			var info ProductInfo
			if err := json.Unmarshal([]byte(val), &info); err == nil {
				return &info, nil
			}
		}
	}

	info, err := c.fetchProduct(ctx, tenantID, handle)
	if err != nil {
		return nil, err
	}

	if c.redis != nil {
		if data, marshalErr := json.Marshal(info); marshalErr == nil {
			c.redis.Set(ctx, cacheKey, data, productCacheTTL)
		}
	}
	return info, nil
}

func (c *ProductsClient) fetchProduct(ctx context.Context, tenantID, handle string) (*ProductInfo, error) {
	endpoint := fmt.Sprintf("%s/api/v1/products/by-handle/%s", c.baseURL, url.PathEscape(handle))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-Tenant-ID", tenantID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("products-service request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		c.logger.WithFields(logrus.Fields{
			"status": resp.StatusCode,
			"handle": handle,
		}).Warn("products-service returned non-OK status")
		return nil, fmt.Errorf("products-service returned status %d", resp.StatusCode)
	}

	var envelope productResponse
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("failed to parse products-service response: %w", err)
	}
	if !envelope.Success || envelope.Data == nil {
		return nil, fmt.Errorf("product %s not found", handle)
	}
	return envelope.Data, nil
}
