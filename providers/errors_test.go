package providers

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"model-eval/models"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		message string
		want    ErrorKind
	}{
		{"429", 429, "", KindRateLimited},
		{"quota message", 400, "You exceeded your current quota", KindRateLimited},
		{"resource exhausted", 0, "RESOURCE_EXHAUSTED: try later", KindRateLimited},
		{"401", 401, "", KindAuthFailed},
		{"403", 403, "", KindAuthFailed},
		{"invalid api key message", 400, "API key not valid", KindAuthFailed},
		{"500", 500, "", KindProviderUnavailable},
		{"503", 503, "", KindProviderUnavailable},
		{"anthropic overloaded", 529, "overloaded_error: Overloaded", KindProviderUnavailable},
		{"bad request", 400, "max_tokens too large", KindProviderError},
		{"network", 0, "dial tcp: connection refused", KindProviderError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, classify(tt.status, tt.message))
		})
	}
}

func TestErrorWrapsCause(t *testing.T) {
	cause := errors.New("boom")
	err := newError(models.ProviderGoogle, 0, "", cause)

	assert.Equal(t, "boom", err.Message)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "google provider_error: boom", err.Error())

	err = newError(models.ProviderOpenAI, 503, "", nil)
	assert.Equal(t, "Service Unavailable", err.Message)
	assert.Contains(t, err.Error(), "status 503")
}

func TestRegistry(t *testing.T) {
	a, err := NewAnthropicAdapter(Config{APIKey: "k"})
	assert.NoError(t, err)

	r := NewRegistry(a, nil)
	got, ok := r.Get(models.ProviderAnthropic)
	assert.True(t, ok)
	assert.Same(t, a, got)
	assert.False(t, r.Configured(models.ProviderOpenAI))

	var empty *Registry
	assert.False(t, empty.Configured(models.ProviderGoogle))
}
