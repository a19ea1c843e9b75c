// Package gemini implements the audit text generator on Google's Gemini API.
package gemini

import (
	"context"
	"errors"
	"fmt"

	"github.com/abelzeko/petrodata/internal/audit"
	"google.golang.org/genai"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gemini-2.5-flash"

// Low temperature keeps the audit factual.
const temperature float32 = 0.2

// Service generates audit text with a Gemini model.
type Service struct {
	client *genai.Client
	model  string
}

// NewGeminiService creates a service for apiKey. baseURL overrides the API
// endpoint and is only set in tests.
func NewGeminiService(ctx context.Context, apiKey, model, baseURL string) (*Service, error) {
	if apiKey == "" {
		return nil, errors.New("Gemini API key is not set")
	}
	if model == "" {
		model = DefaultModel
	}

	cfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if baseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: baseURL}
	}

	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return &Service{client: client, model: model}, nil
}

// Generate returns the model's text for prompt.
func (s *Service) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := s.client.Models.GenerateContent(ctx, s.model, genai.Text(prompt), &genai.GenerateContentConfig{
		Temperature: genai.Ptr(temperature),
	})
	if err != nil {
		return "", fmt.Errorf("%w: error calling Gemini API: %v", audit.ErrServiceUnavailable, err)
	}
	return resp.Text(), nil
}
