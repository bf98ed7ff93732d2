// Package ai provides factory functions for creating language model adapters.
package ai

import (
	"context"
	"fmt"
	"time"

	anthropicllm "github.com/custodia-labs/repodoc-cli/internal/adapters/driven/llm/anthropic"
	geminillm "github.com/custodia-labs/repodoc-cli/internal/adapters/driven/llm/gemini"
	ollamallm "github.com/custodia-labs/repodoc-cli/internal/adapters/driven/llm/ollama"
	openaillm "github.com/custodia-labs/repodoc-cli/internal/adapters/driven/llm/openai"
	"github.com/custodia-labs/repodoc-cli/internal/core/domain"
	"github.com/custodia-labs/repodoc-cli/internal/core/ports/driven"
	"github.com/custodia-labs/repodoc-cli/internal/logger"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 10 * time.Second

// CreateAndValidateLLMService creates an LLM service and checks that it is reachable.
//
// Rejected credentials or an unknown model fail with ErrLLMUnavailable. A
// transient failure such as rate limiting only logs a warning, since
// generation retries on its own.
func CreateAndValidateLLMService(ctx context.Context, settings domain.LLMSettings) (driven.LLMService, error) {
	svc, err := CreateLLMService(ctx, settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrLLMUnavailable, err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := svc.Ping(pingCtx); err != nil {
		if driven.IsRetryable(err) {
			logger.Warn("%s is not responding yet: %v", settings.Provider.Description(), err)
			return svc, nil
		}
		_ = svc.Close()
		return nil, fmt.Errorf("%w: %s unreachable: %w", domain.ErrLLMUnavailable, settings.Provider, err)
	}

	logger.Debug("using %s model %s", settings.Provider.Description(), svc.ModelName())
	return svc, nil
}

// CreateLLMService creates the adapter for the configured provider.
func CreateLLMService(ctx context.Context, settings domain.LLMSettings) (driven.LLMService, error) {
	if !settings.Provider.IsValid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedProvider, settings.Provider)
	}
	if !settings.IsConfigured() {
		return nil, fmt.Errorf("%w: %s", domain.ErrMissingCredential, settings.Provider.APIKeyEnv())
	}

	switch settings.Provider {
	case domain.AIProviderOllama:
		return ollamallm.NewLLMService(ollamallm.LLMConfig{
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		}), nil

	case domain.AIProviderOpenAI:
		return openaillm.NewLLMService(openaillm.LLMConfig{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})

	case domain.AIProviderGemini:
		return geminillm.NewLLMService(ctx, geminillm.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})

	default:
		return anthropicllm.NewLLMService(anthropicllm.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})
	}
}
