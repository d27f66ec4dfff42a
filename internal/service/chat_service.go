package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"storypals/internal/domain"
	"storypals/internal/llm"
)

var (
	ErrChatServiceNotConfigured = errors.New("chat service not configured")
	ErrEmptyMessage             = errors.New("message content is required")
	ErrUnknownCharacter         = errors.New("unknown character")
	ErrReplyFailed              = errors.New("could not generate reply")
)

const maxMessageLength = 2000

// ChatService genera la respuesta de un personaje a un mensaje del usuario.
type ChatService struct {
	llmClient llm.LLMClient
	logger    *zap.Logger
}

func NewChatService(llmClient llm.LLMClient, logger *zap.Logger) *ChatService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChatService{llmClient: llmClient, logger: logger}
}

// Reply devuelve el texto generado por el personaje identificado por characterKey.
func (s *ChatService) Reply(ctx context.Context, characterKey, content string) (string, error) {
	if s == nil || s.llmClient == nil {
		return "", ErrChatServiceNotConfigured
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return "", ErrEmptyMessage
	}
	if runes := []rune(content); len(runes) > maxMessageLength {
		content = string(runes[:maxMessageLength])
	}
	character, ok := domain.FindCharacter(characterKey)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownCharacter, characterKey)
	}

	reply, err := s.llmClient.Generate(ctx, character.Model, BuildCharacterPrompt(character, content))
	if err != nil {
		s.logger.Warn("llm generate failed",
			zap.String("character_id", character.ID),
			zap.Error(err),
		)
		return "", fmt.Errorf("%w: %w", ErrReplyFailed, err)
	}
	reply = strings.TrimSpace(reply)
	if reply == "" {
		s.logger.Warn("llm returned empty reply", zap.String("character_id", character.ID))
		return "", fmt.Errorf("%w: empty reply", ErrReplyFailed)
	}
	return reply, nil
}

// BuildCharacterPrompt arma el prompt del personaje para un mensaje.
func BuildCharacterPrompt(character domain.Character, content string) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("You are %s, %s. %s\n", character.Name, strings.ToLower(character.Title), character.Description))
	sb.WriteString("You are talking with a young child. Keep answers short, warm and age-appropriate.\n")
	sb.WriteString("Never ask for personal information and gently steer away from scary or unsafe topics.\n\n")
	sb.WriteString(fmt.Sprintf("Character: %s\nUser: %s\nAssistant:", character.Name, content))
	return sb.String()
}
