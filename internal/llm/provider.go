package llm

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"storypals/internal/config"
)

const (
	ProviderOllama = "ollama"
	ProviderOpenAI = "openai"
)

// NewFromConfig elige el proveedor de respuestas segun LLM_PROVIDER.
func NewFromConfig(cfg *config.Config, logger *zap.Logger) (LLMClient, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.LLMProvider)) {
	case "", ProviderOllama:
		return NewOllamaClient(cfg.LLMBaseURL, cfg.LLMModel, logger), nil
	case ProviderOpenAI:
		return NewLangChainClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModel)
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.LLMProvider)
	}
}
