package services

import (
	"context"
	"errors"
	"sync"

	"model-eval/eventbus"
	"model-eval/models"
	"model-eval/parser"
	"model-eval/providers"
	"model-eval/repositories"
)

type fakeAdapter struct {
	provider models.Provider
	response string
	err      error

	mu    sync.Mutex
	calls []providers.Options
}

func (f *fakeAdapter) Provider() models.Provider { return f.provider }

func (f *fakeAdapter) Generate(_ context.Context, prompt string, opts providers.Options) (*providers.Result, error) {
	f.mu.Lock()
	f.calls = append(f.calls, opts)
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	model := opts.Model
	if model == "" {
		model = "default-" + string(f.provider)
	}
	cost := 0.001
	return &providers.Result{
		Model:    model,
		Response: f.response + ":" + prompt,
		Metrics: models.EvaluationMetrics{
			LatencyMs:        100,
			PromptTokens:     10,
			CompletionTokens: 20,
			TotalTokens:      30,
			CostUSD:          &cost,
		},
	}, nil
}

func (f *fakeAdapter) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

// failingBatchStore fails every batch insert after the first allowed ones.
type failingBatchStore struct {
	EvaluationStore
	allowed int
}

func (s *failingBatchStore) BeginBatch(ctx context.Context) (repositories.EvaluationBatch, error) {
	b, err := s.EvaluationStore.BeginBatch(ctx)
	if err != nil {
		return nil, err
	}
	return &failingBatch{EvaluationBatch: b, allowed: s.allowed}, nil
}

type failingBatch struct {
	repositories.EvaluationBatch
	allowed int
}

var errDiskFull = errors.New("disk full")

func (b *failingBatch) Insert(ctx context.Context, e *models.Evaluation) error {
	if b.allowed <= 0 {
		return errDiskFull
	}
	b.allowed--
	return b.EvaluationBatch.Insert(ctx, e)
}

type stubImporter struct {
	article *parser.Article
	err     error
	gotURL  string
}

func (s *stubImporter) Import(_ context.Context, rawURL string) (*parser.Article, error) {
	s.gotURL = rawURL
	if s.err != nil {
		return nil, s.err
	}
	return s.article, nil
}

type recordingBus struct {
	mu     sync.Mutex
	topics []string
	types  []string
	err    error
}

func (b *recordingBus) Publish(_ context.Context, topic string, evt eventbus.Event) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.topics = append(b.topics, topic)
	b.types = append(b.types, evt.Type)
	return b.err
}

func (b *recordingBus) Close() {}

// stallingBus blocks every publish until its context ends, like a broker
// that never acknowledges.
type stallingBus struct {
	mu          sync.Mutex
	calls       int
	hadDeadline bool
}

func (b *stallingBus) Publish(ctx context.Context, _ string, _ eventbus.Event) error {
	_, ok := ctx.Deadline()
	b.mu.Lock()
	b.calls++
	b.hadDeadline = ok
	b.mu.Unlock()
	<-ctx.Done()
	return ctx.Err()
}

func (b *stallingBus) Close() {}
