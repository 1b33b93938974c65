package providers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"model-eval/config"
	"model-eval/models"
)

func TestNewRegistryFromConfigSkipsProvidersWithoutKey(t *testing.T) {
	reg := NewRegistryFromConfig(context.Background(), config.ProvidersConfig{
		OpenAI:    config.ProviderConfig{APIKey: "sk-test", DefaultModel: "gpt-4"},
		Anthropic: config.ProviderConfig{APIKey: "  "},
	})

	assert.True(t, reg.Configured(models.ProviderOpenAI))
	assert.False(t, reg.Configured(models.ProviderAnthropic))
	assert.False(t, reg.Configured(models.ProviderGoogle))

	a, ok := reg.Get(models.ProviderOpenAI)
	assert.True(t, ok)
	assert.Equal(t, "gpt-4", a.(*OpenAIAdapter).defaultModel)
}

func TestNewRegistryFromConfigEmpty(t *testing.T) {
	reg := NewRegistryFromConfig(context.Background(), config.ProvidersConfig{})
	for _, p := range models.AllProviders {
		assert.False(t, reg.Configured(p))
	}
}
