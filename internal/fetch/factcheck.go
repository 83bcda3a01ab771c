package fetch

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
)

// FactCheckClient queries the Google Fact Check Tools claims:search API
// (lane A: targeted lookups for specific, disputable claims).
type FactCheckClient struct {
	apiKey     string
	apiURL     string
	pageSize   int
	maxAgeDays int
	httpClient *http.Client
	limiter    *Limiter
	logger     *slog.Logger
}

// NewFactCheckClient creates a new fact-check fetcher. An empty API key is
// allowed; searches then return no results instead of failing the caller.
func NewFactCheckClient(apiKey, apiURL string, timeout time.Duration, limiter *Limiter, logger *slog.Logger) *FactCheckClient {
	if logger == nil {
		logger = slog.Default()
	}
	return &FactCheckClient{
		apiKey:     apiKey,
		apiURL:     apiURL,
		pageSize:   50,
		maxAgeDays: 30,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		limiter: limiter,
		logger:  logger,
	}
}

type factCheckResponse struct {
	Claims []Claim `json:"claims"`
}

// Search looks up published fact checks matching the query
func (c *FactCheckClient) Search(ctx context.Context, query string) ([]Claim, error) {
	if c.apiKey == "" {
		c.logger.Warn("fact check API key not set, skipping lookup")
		return nil, nil
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx, c.apiURL); err != nil {
			return nil, fmt.Errorf("rate limit: %w", err)
		}
	}

	params := url.Values{}
	params.Set("key", c.apiKey)
	params.Set("query", query)
	params.Set("pageSize", strconv.Itoa(c.pageSize))
	params.Set("maxAgeDays", strconv.Itoa(c.maxAgeDays))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch fact checks: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fact check API returned %d: %s", resp.StatusCode, string(body))
	}

	var parsed factCheckResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	c.logger.Info("fact check search complete", "query", query, "results", len(parsed.Claims))
	return parsed.Claims, nil
}
