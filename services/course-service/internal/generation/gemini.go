package generation

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

// GeminiProvider generates text with one Gemini API key
type GeminiProvider struct {
	client *genai.Client
	model  string
}

// NewGeminiProvider creates a Gemini backed provider
func NewGeminiProvider(ctx context.Context, apiKey, model string) (*GeminiProvider, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiProvider{client: client, model: model}, nil
}

// NewGeminiClient builds a Client from a primary key and an optional fallback key
func NewGeminiClient(ctx context.Context, apiKey, fallbackAPIKey, model string, logger *zap.Logger) (*Client, error) {
	primary, err := NewGeminiProvider(ctx, apiKey, model)
	if err != nil {
		return nil, err
	}
	if fallbackAPIKey == "" {
		return NewClient(primary, nil, logger), nil
	}

	fallback, err := NewGeminiProvider(ctx, fallbackAPIKey, model)
	if err != nil {
		return nil, fmt.Errorf("fallback credential: %w", err)
	}
	return NewClient(primary, fallback, logger), nil
}

// Generate implements Provider
func (p *GeminiProvider) Generate(ctx context.Context, prompt string, req Request) (string, error) {
	config := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(float32(1)),
		TopP:            genai.Ptr(float32(0.95)),
		MaxOutputTokens: 8192,
	}
	if req.Temperature != nil {
		config.Temperature = req.Temperature
	}
	if req.JSON {
		config.ResponseMIMEType = "application/json"
	}
	if req.SystemInstruction != "" {
		config.SystemInstruction = genai.NewContentFromText(req.SystemInstruction, genai.RoleUser)
	}

	resp, err := p.client.Models.GenerateContent(ctx, p.model, genai.Text(prompt), config)
	if err != nil {
		return "", classifyGeminiError(err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", &Error{Class: ClassUnknown, Err: ErrEmptyResponse}
	}

	return text, nil
}

// classifyGeminiError wraps a Gemini SDK error into a classified *Error
func classifyGeminiError(err error) error {
	var apiErr genai.APIError
	if !errors.As(err, &apiErr) {
		return &Error{Class: ClassUnknown, Err: err}
	}

	class := ClassifyStatus(apiErr.Code)
	if class == ClassUnknown {
		switch apiErr.Status {
		case "RESOURCE_EXHAUSTED":
			class = ClassRateLimited
		case "UNAVAILABLE", "INTERNAL", "DEADLINE_EXCEEDED":
			class = ClassServiceUnavailable
		case "UNAUTHENTICATED", "PERMISSION_DENIED":
			class = ClassUnauthorized
		}
	}

	return &Error{Class: class, StatusCode: apiErr.Code, Err: err}
}
