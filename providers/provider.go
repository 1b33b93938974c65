package providers

import (
	"context"
	"net/http"
	"time"

	"model-eval/internal/logger"
	"model-eval/models"
	"model-eval/trace"
)

// Options are the generation parameters of one call. Nil fields fall back to
// the adapter defaults.
type Options struct {
	Model            string
	Temperature      *float64
	MaxTokens        *int
	TopP             *float64
	FrequencyPenalty *float64
	PresencePenalty  *float64
}

// Result is the normalized outcome of a successful call.
type Result struct {
	// Model is the model that served the call after defaults were applied.
	Model    string
	Response string
	Metrics  models.EvaluationMetrics
}

// Adapter is implemented by each LLM vendor.
// Generate issues exactly one external request and never retries.
type Adapter interface {
	Provider() models.Provider
	Generate(ctx context.Context, prompt string, opts Options) (*Result, error)
}

// Config holds the immutable settings an adapter is built from.
type Config struct {
	APIKey       string
	BaseURL      string
	DefaultModel string
	Timeout      time.Duration
	// HTTPClient overrides the client built from Timeout.
	HTTPClient *http.Client
}

// Registry maps providers to their configured adapters.
// It is built once at startup and only read afterwards.
type Registry struct {
	adapters map[models.Provider]Adapter
}

func NewRegistry(adapters ...Adapter) *Registry {
	m := make(map[models.Provider]Adapter, len(adapters))
	for _, a := range adapters {
		if a != nil {
			m[a.Provider()] = a
		}
	}
	return &Registry{adapters: m}
}

func (r *Registry) Get(p models.Provider) (Adapter, bool) {
	if r == nil {
		return nil, false
	}
	a, ok := r.adapters[p]
	return a, ok
}

func (r *Registry) Configured(p models.Provider) bool {
	_, ok := r.Get(p)
	return ok
}

func modelOrDefault(model, def string) string {
	if model != "" {
		return model
	}
	return def
}

func logCall(ctx context.Context, p models.Provider, model string, latency time.Duration, err error) {
	fields := logger.Fields(trace.Fields(ctx))
	fields["provider"] = string(p)
	fields["model"] = model
	fields["duration_ms"] = latency.Milliseconds()
	if err != nil {
		fields["outcome"] = "error"
		fields["error"] = err.Error()
		logger.WarnWithFields("provider call failed", fields)
		return
	}
	fields["outcome"] = "ok"
	logger.InfoWithFields("provider call completed", fields)
}
