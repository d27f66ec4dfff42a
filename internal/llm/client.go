package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// LLMClient define la interfaz para generar respuestas con un LLM.
type LLMClient interface {
	Generate(ctx context.Context, model, prompt string) (string, error)
}

var (
	ErrModelNotFound = errors.New("llm model not found")
	ErrEmptyResponse = errors.New("llm empty response")
)

// OllamaClient implementa LLMClient contra la API /api/generate de Ollama.
type OllamaClient struct {
	baseURL      string
	defaultModel string
	client       *http.Client
	logger       *zap.Logger
}

// NewOllamaClient construye un cliente HTTP apuntando a un servidor Ollama.
func NewOllamaClient(baseURL, defaultModel string, logger *zap.Logger) *OllamaClient {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OllamaClient{
		baseURL:      strings.TrimRight(baseURL, "/"),
		defaultModel: defaultModel,
		client:       &http.Client{Timeout: 120 * time.Second},
		logger:       logger,
	}
}

func (c *OllamaClient) Generate(ctx context.Context, model, prompt string) (string, error) {
	if c.defaultModel != "" {
		model = c.defaultModel
	}
	bodyBytes, err := json.Marshal(generateRequest{
		Model:  model,
		Prompt: prompt,
		Stream: false,
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/generate", bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return "", fmt.Errorf("%w: %s", ErrModelNotFound, model)
	}
	if resp.StatusCode >= 400 {
		c.logger.Warn("ollama error response",
			zap.Int("status", resp.StatusCode),
			zap.String("body", string(respBody)),
		)
		return "", fmt.Errorf("llm http error: status=%d", resp.StatusCode)
	}

	var gr generateResponse
	if err := json.Unmarshal(respBody, &gr); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}
	if gr.Error != "" {
		return "", fmt.Errorf("llm api error: %s", gr.Error)
	}
	if strings.TrimSpace(gr.Response) == "" {
		return "", ErrEmptyResponse
	}

	return gr.Response, nil
}

type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type generateResponse struct {
	Response string `json:"response"`
	Error    string `json:"error,omitempty"`
}
