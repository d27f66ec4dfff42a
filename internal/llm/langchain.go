package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// LangChainClient genera respuestas con cualquier API compatible con OpenAI.
type LangChainClient struct {
	model llms.Model
}

// NewLangChainClient crea un cliente OpenAI-compatible via langchaingo.
func NewLangChainClient(baseURL, apiKey, model string) (*LangChainClient, error) {
	if apiKey == "" {
		// Ollama y otros servidores locales ignoran el token pero openai.New lo exige.
		apiKey = "storypals"
	}
	opts := []openai.Option{openai.WithToken(apiKey)}
	if baseURL != "" {
		opts = append(opts, openai.WithBaseURL(baseURL))
	}
	if model != "" {
		opts = append(opts, openai.WithModel(model))
	}
	m, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("init openai client: %w", err)
	}
	return &LangChainClient{model: m}, nil
}

func (c *LangChainClient) Generate(ctx context.Context, model, prompt string) (string, error) {
	var callOpts []llms.CallOption
	if model != "" {
		callOpts = append(callOpts, llms.WithModel(model))
	}
	completion, err := llms.GenerateFromSinglePrompt(ctx, c.model, prompt, callOpts...)
	if err != nil {
		return "", fmt.Errorf("llm generate: %w", err)
	}
	if strings.TrimSpace(completion) == "" {
		return "", ErrEmptyResponse
	}
	return completion, nil
}
