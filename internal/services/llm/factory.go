package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/onboard/internal/common"
	"github.com/ternarybob/onboard/internal/interfaces"
)

// ChatService implements interfaces.LLMService on top of the ProviderFactory,
// always targeting the configured default provider and model.
type ChatService struct {
	factory  *ProviderFactory
	provider ProviderType
	model    string
	logger   arbor.ILogger
}

// NewLLMService creates the chat service for the configured default provider
func NewLLMService(cfg *common.Config, factory *ProviderFactory, logger arbor.ILogger) (interfaces.LLMService, error) {
	provider := ProviderType(cfg.LLM.DefaultProvider)
	switch provider {
	case ProviderGemini, ProviderClaude:
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.LLM.DefaultProvider)
	}

	if !factory.HasCredentials(provider) {
		logger.Warn().
			Str("provider", string(provider)).
			Msg("No API key configured - classification and answer composition will fail until one is set")
	}

	service := &ChatService{
		factory:  factory,
		provider: provider,
		model:    factory.GetDefaultModel(provider),
		logger:   logger,
	}

	logger.Info().
		Str("provider", string(provider)).
		Str("model", service.model).
		Dur("timeout", factory.Timeout()).
		Msg("LLM service initialized")

	return service, nil
}

// Chat generates a completion response based on the conversation history
func (s *ChatService) Chat(ctx context.Context, messages []interfaces.Message) (string, error) {
	if len(messages) == 0 {
		return "", fmt.Errorf("messages cannot be empty for chat completion")
	}

	startTime := time.Now()
	resp, err := s.factory.GenerateContent(ctx, &ContentRequest{
		Messages: messages,
		Model:    string(s.provider) + "/" + s.model,
	})
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("provider", string(s.provider)).
			Int("message_count", len(messages)).
			Msg("Chat completion failed")
		return "", fmt.Errorf("chat completion failed: %w", err)
	}

	s.logger.Debug().
		Str("provider", string(s.provider)).
		Int("message_count", len(messages)).
		Int("response_length", len(resp.Text)).
		Dur("duration", time.Since(startTime)).
		Msg("Chat completion completed")

	return resp.Text, nil
}

// HealthCheck exercises the chat model with a minimal probe
func (s *ChatService) HealthCheck(ctx context.Context) error {
	if !s.factory.HasCredentials(s.provider) {
		return fmt.Errorf("%s: %w", s.provider, ErrMissingAPIKey)
	}

	healthCheckCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	response, err := s.Chat(healthCheckCtx, []interfaces.Message{
		{Role: interfaces.RoleUser, Content: "ping"},
	})
	if err != nil {
		return fmt.Errorf("%s probe failed: %w", s.provider, err)
	}
	if len(strings.TrimSpace(response)) == 0 {
		return fmt.Errorf("%s probe returned empty response", s.provider)
	}
	return nil
}

// Name returns the provider name
func (s *ChatService) Name() string {
	return string(s.provider)
}

// Close releases the provider clients
func (s *ChatService) Close() error {
	s.logger.Debug().Str("provider", string(s.provider)).Msg("Closing LLM service")
	return s.factory.Close()
}
