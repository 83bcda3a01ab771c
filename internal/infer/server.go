package infer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"claimlens/internal/model"
)

// ServerClient talks to the NLI inference server over HTTP. The server
// hosts the cross-encoder model and exposes stance, safety, and saliency
// endpoints returning JSON.
type ServerClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewServerClient creates a client for the inference server
func NewServerClient(config Config) (*ServerClient, error) {
	baseURL := config.BaseURL
	if baseURL == "" {
		return nil, fmt.Errorf("inference server base URL is required")
	}

	timeout := config.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}

	return &ServerClient{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

type stanceRequest struct {
	Claim    string `json:"claim"`
	Evidence string `json:"evidence"`
}

type safetyRequest struct {
	Text string `json:"text"`
}

type safetyResponse struct {
	SafetyCritical bool    `json:"safety_critical"`
	Entailment     float64 `json:"entailment"`
}

type saliencyRequest struct {
	Text string `json:"text"`
}

type serverError struct {
	Error string `json:"error"`
}

// Predict classifies the stance of evidence toward a claim
func (c *ServerClient) Predict(ctx context.Context, claim, evidence string) (model.StanceResult, error) {
	var result model.StanceResult
	err := c.post(ctx, "/stance", stanceRequest{Claim: claim, Evidence: evidence}, &result)
	if err != nil {
		return model.StanceResult{}, fmt.Errorf("stance predict: %w", err)
	}
	return result, nil
}

// CheckSafety reports whether the text is safety-critical
func (c *ServerClient) CheckSafety(ctx context.Context, text string) (bool, error) {
	var resp safetyResponse
	if err := c.post(ctx, "/safety", safetyRequest{Text: text}, &resp); err != nil {
		return false, fmt.Errorf("safety check: %w", err)
	}
	return resp.SafetyCritical, nil
}

// Explain returns the per-token saliency heatmap
func (c *ServerClient) Explain(ctx context.Context, text string) ([]model.HeatmapEntry, error) {
	var entries []model.HeatmapEntry
	if err := c.post(ctx, "/saliency", saliencyRequest{Text: text}, &entries); err != nil {
		return nil, fmt.Errorf("saliency explain: %w", err)
	}
	return entries, nil
}

// post sends a JSON request and decodes the JSON response
func (c *ServerClient) post(ctx context.Context, path string, body interface{}, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var srvErr serverError
		if json.Unmarshal(data, &srvErr) == nil && srvErr.Error != "" {
			return fmt.Errorf("server returned %d: %s", resp.StatusCode, srvErr.Error)
		}
		return fmt.Errorf("server returned %d", resp.StatusCode)
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
