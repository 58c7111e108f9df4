// Package finder queries the product-finder collaborator, mapping the
// slot set a processed query produced onto its search parameters.
package finder

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ravin00/VoiceMart-Shopping-Assistant/resilience"
	"github.com/ravin00/VoiceMart-Shopping-Assistant/types"
)

const defaultLimit = 10

// Client calls the product-finder search API.
type Client struct {
	BaseURL string
	APIKey  string
	HTTP    *http.Client
	breaker *resilience.CircuitBreaker
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		APIKey:  apiKey,
		HTTP:    &http.Client{Timeout: 15 * time.Second},
		breaker: resilience.NewCircuitBreaker(5, 30*time.Second),
	}
}

// RequestFromSlots builds a search request from a processed query's
// slot set. The product phrase is the free-text query; brand, category
// and price bounds become filters.
func RequestFromSlots(slots map[string]any) types.ProductSearchRequest {
	req := types.ProductSearchRequest{Limit: defaultLimit}
	if s, ok := slots["product"].(string); ok {
		req.Query = s
	}
	if s, ok := slots["category"].(string); ok {
		req.Category = s
	}
	if s, ok := slots["brand"].(string); ok {
		req.Brand = s
	}
	if f, ok := slots["price_min"].(float64); ok {
		req.MinPrice = f
	}
	if f, ok := slots["price_max"].(float64); ok {
		req.MaxPrice = f
	}
	return req
}

// Search runs one product search with retries behind the breaker.
func (c *Client) Search(ctx context.Context, req types.ProductSearchRequest) (*types.ProductSearchResponse, error) {
	if req.Limit <= 0 {
		req.Limit = defaultLimit
	}

	var result *types.ProductSearchResponse
	err := c.breaker.Execute(func() error {
		return resilience.Retry(ctx, func() error {
			r, callErr := c.doSearch(ctx, req)
			if callErr != nil {
				return callErr
			}
			result = r
			return nil
		})
	})
	return result, err
}

func (c *Client) doSearch(ctx context.Context, req types.ProductSearchRequest) (*types.ProductSearchResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/v1/products:search", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.APIKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.APIKey)
	}

	resp, err := c.HTTP.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &resilience.StatusError{Status: resp.StatusCode, Body: strings.TrimSpace(string(b))}
	}

	var out types.ProductSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	if out.Count == 0 {
		out.Count = len(out.Products)
	}
	return &out, nil
}
