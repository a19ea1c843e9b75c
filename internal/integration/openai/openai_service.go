// Package openai implements the audit text generator on the OpenAI chat API.
package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/abelzeko/petrodata/internal/audit"
	"github.com/invopop/jsonschema"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/rs/zerolog/log"
)

// Service generates audits with an OpenAI chat model. It satisfies both
// audit.Generator and audit.StructuredGenerator.
type Service struct {
	client openai.Client
	model  openai.ChatModel
	schema interface{}
}

// GenerateSchema generates a JSON schema for a given type.
func GenerateSchema[T any]() interface{} {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var v T
	schema := reflector.Reflect(v)
	return schema
}

// NewOpenAIService creates a service for apiKey. An empty model selects GPT-4o.
func NewOpenAIService(apiKey, model string, opts ...option.RequestOption) (*Service, error) {
	if apiKey == "" {
		return nil, errors.New("OpenAI API key is not set")
	}
	if model == "" {
		model = string(openai.ChatModelGPT4o)
	}

	// Audits are never retried automatically.
	opts = append([]option.RequestOption{option.WithAPIKey(apiKey), option.WithMaxRetries(0)}, opts...)
	return &Service{
		client: openai.NewClient(opts...),
		model:  openai.ChatModel(model),
		schema: GenerateSchema[audit.Analysis](),
	}, nil
}

const systemPrompt = "You are a meticulous oil and gas operations auditor. Answer strictly from the data you are given."

// Generate returns the model's text answer to prompt.
func (s *Service) Generate(ctx context.Context, prompt string) (string, error) {
	chat, err := s.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(prompt),
		},
		Model:       s.model,
		Temperature: openai.Float(0.2),
	})
	if err != nil {
		return "", fmt.Errorf("%w: error calling OpenAI API: %v", audit.ErrServiceUnavailable, err)
	}

	if len(chat.Choices) == 0 {
		return "", nil
	}
	return chat.Choices[0].Message.Content, nil
}

// Analyze asks for an audit shaped as audit.Analysis using a strict JSON schema.
func (s *Service) Analyze(ctx context.Context, prompt string) (*audit.Analysis, error) {
	schemaParam := openai.ResponseFormatJSONSchemaJSONSchemaParam{
		Name:        "audit_analysis",
		Description: openai.String("Audit summary with flagged items and recommendations"),
		Schema:      s.schema,
		Strict:      openai.Bool(true),
	}

	respFormat := openai.ChatCompletionNewParamsResponseFormatUnion{
		OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{JSONSchema: schemaParam},
	}

	chat, err := s.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt + " Output strictly in JSON."),
			openai.UserMessage(prompt),
		},
		ResponseFormat: respFormat,
		Model:          s.model,
		Temperature:    openai.Float(0.2),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: error calling OpenAI API: %v", audit.ErrServiceUnavailable, err)
	}

	if len(chat.Choices) == 0 || chat.Choices[0].Message.Content == "" {
		return nil, fmt.Errorf("%w: received empty response from OpenAI", audit.ErrServiceUnavailable)
	}

	var analysis audit.Analysis
	if err := json.Unmarshal([]byte(chat.Choices[0].Message.Content), &analysis); err != nil {
		log.Error().Err(err).Str("raw", chat.Choices[0].Message.Content).Msg("Failed to unmarshal OpenAI response")
		return nil, fmt.Errorf("%w: error unmarshalling OpenAI response: %v", audit.ErrServiceUnavailable, err)
	}
	return &analysis, nil
}
