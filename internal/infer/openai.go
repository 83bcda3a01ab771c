package infer

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"claimlens/internal/model"
)

// OpenAIClassifier implements stance and safety classification through an
// OpenAI-compatible chat API with JSON-object responses. It does not
// implement saliency: token-level attribution needs model internals that a
// chat API does not expose.
type OpenAIClassifier struct {
	client *openai.Client
	config Config
}

// NewOpenAIClassifier creates a new OpenAI-backed classifier
func NewOpenAIClassifier(config Config) (*OpenAIClassifier, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}

	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}

	return &OpenAIClassifier{
		client: openai.NewClientWithConfig(clientConfig),
		config: config,
	}, nil
}

type stanceJSON struct {
	Label        string  `json:"label"`
	Confidence   float64 `json:"confidence"`
	Distribution struct {
		Refutes  float64 `json:"refutes"`
		Supports float64 `json:"supports"`
		Neutral  float64 `json:"neutral"`
	} `json:"distribution"`
}

const stanceSystemPrompt = `You are a natural language inference classifier.
Given EVIDENCE and a CLAIM, decide whether the evidence supports, refutes,
or is neutral toward the claim. Respond with a JSON object:
{"label": "supports"|"refutes"|"neutral", "confidence": 0..1,
 "distribution": {"refutes": 0..1, "supports": 0..1, "neutral": 0..1}}
The distribution must sum to 1. Do not include any other keys.`

// Predict classifies the stance of evidence toward a claim
func (c *OpenAIClassifier) Predict(ctx context.Context, claim, evidence string) (model.StanceResult, error) {
	content, err := c.complete(ctx, stanceSystemPrompt,
		fmt.Sprintf("EVIDENCE: %s\n\nCLAIM: %s", evidence, claim))
	if err != nil {
		return model.StanceResult{}, fmt.Errorf("stance predict: %w", err)
	}

	var parsed stanceJSON
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		return model.StanceResult{}, fmt.Errorf("parse stance response: %w", err)
	}

	label := model.StanceLabel(strings.ToLower(parsed.Label))
	switch label {
	case model.StanceSupports, model.StanceRefutes, model.StanceNeutral:
	default:
		return model.StanceResult{}, fmt.Errorf("unexpected stance label: %q", parsed.Label)
	}

	return model.StanceResult{
		Label:      label,
		Confidence: parsed.Confidence,
		Distribution: model.Distribution{
			Refutes:  parsed.Distribution.Refutes,
			Supports: parsed.Distribution.Supports,
			Neutral:  parsed.Distribution.Neutral,
		},
	}, nil
}

const safetySystemPrompt = `You judge whether text semantically describes a
situation involving physical danger, health risks, or death. Respond with a
JSON object: {"safety_critical": true|false}. Do not include any other keys.`

type safetyJSON struct {
	SafetyCritical bool `json:"safety_critical"`
}

// CheckSafety reports whether the text is safety-critical
func (c *OpenAIClassifier) CheckSafety(ctx context.Context, text string) (bool, error) {
	content, err := c.complete(ctx, safetySystemPrompt, text)
	if err != nil {
		return false, fmt.Errorf("safety check: %w", err)
	}

	var parsed safetyJSON
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		return false, fmt.Errorf("parse safety response: %w", err)
	}
	return parsed.SafetyCritical, nil
}

// complete runs one chat completion constrained to a JSON object response
func (c *OpenAIClassifier) complete(ctx context.Context, system, user string) (string, error) {
	chatModel := c.config.Model
	if chatModel == "" {
		chatModel = openai.GPT4oMini
	}

	timeout := c.config.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: chatModel,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		Temperature: 0,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return "", fmt.Errorf("OpenAI API error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from OpenAI")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
