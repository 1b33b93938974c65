package providers

import (
	"context"

	"model-eval/config"
	"model-eval/internal/logger"
	"model-eval/models"
)

// NewRegistryFromConfig builds an adapter for every provider that has an API
// key. Providers without a key, or whose adapter cannot be built, stay
// unconfigured.
func NewRegistryFromConfig(ctx context.Context, cfg config.ProvidersConfig) *Registry {
	var adapters []Adapter

	build := func(p models.Provider, pc config.ProviderConfig, fn func(Config) (Adapter, error)) {
		fields := logger.Fields{"provider": string(p)}
		if pc.APIKey == "" {
			logger.InfoWithFields("provider not configured", fields)
			return
		}
		a, err := fn(Config{
			APIKey:       pc.APIKey,
			BaseURL:      pc.BaseURL,
			DefaultModel: pc.DefaultModel,
			Timeout:      pc.Timeout,
		})
		if err != nil {
			fields["error"] = err.Error()
			logger.ErrorWithFields("provider adapter init failed", fields)
			return
		}
		fields["default_model"] = pc.DefaultModel
		logger.InfoWithFields("provider configured", fields)
		adapters = append(adapters, a)
	}

	build(models.ProviderOpenAI, cfg.OpenAI, func(c Config) (Adapter, error) { return NewOpenAIAdapter(c) })
	build(models.ProviderAnthropic, cfg.Anthropic, func(c Config) (Adapter, error) { return NewAnthropicAdapter(c) })
	build(models.ProviderGoogle, cfg.Google, func(c Config) (Adapter, error) { return NewGoogleAdapter(ctx, c) })

	return NewRegistry(adapters...)
}
