// Package infer provides clients for the stance, safety, and saliency
// classification models, which run out of process.
package infer

import (
	"context"
	"time"

	"claimlens/internal/model"
)

// StanceClassifier judges the relationship between evidence and a claim
type StanceClassifier interface {
	// Predict returns the stance of the evidence text toward the claim
	Predict(ctx context.Context, claim, evidence string) (model.StanceResult, error)
}

// SafetyChecker detects semantically safety-critical text
type SafetyChecker interface {
	// CheckSafety reports whether the text describes physical danger,
	// health risks, or death
	CheckSafety(ctx context.Context, text string) (bool, error)
}

// SaliencyExplainer produces a per-token heatmap of the risk model's focus
type SaliencyExplainer interface {
	// Explain returns token saliency scores in original token order,
	// control tokens stripped
	Explain(ctx context.Context, text string) ([]model.HeatmapEntry, error)
}

// Config holds classifier backend configuration
type Config struct {
	// Provider name: "server" or "openai"
	Provider string

	// BaseURL of the inference server or a custom OpenAI-compatible endpoint
	BaseURL string

	// APIKey for the OpenAI backend
	APIKey string

	// Model name (backend-specific)
	Model string

	// Timeout for classification requests
	Timeout time.Duration
}

// ConfigFromModel converts model.InferConfig to infer.Config
func ConfigFromModel(mc model.InferConfig) Config {
	return Config{
		Provider: mc.Provider,
		BaseURL:  mc.BaseURL,
		APIKey:   mc.APIKey,
		Model:    mc.Model,
		Timeout:  mc.Timeout,
	}
}
