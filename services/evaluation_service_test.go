package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"model-eval/models"
	"model-eval/providers"
	"model-eval/repositories/memory"
)

type evalFixture struct {
	store   *memory.Store
	prompts *PromptService
	svc     *EvaluationService
	bus     *recordingBus
	prompt  *models.Prompt
}

func newEvalFixture(t *testing.T, adapters ...providers.Adapter) *evalFixture {
	t.Helper()
	store := memory.NewStore()
	bus := &recordingBus{}
	f := &evalFixture{
		store:   store,
		bus:     bus,
		prompts: NewPromptService(store.Prompts(), nil, bus),
		svc:     NewEvaluationService(store.Prompts(), store.Evaluations(), providers.NewRegistry(adapters...), bus),
	}
	run := 0
	f.svc.newRunID = func() string {
		run++
		return "run-" + string(rune('0'+run))
	}
	p, err := f.prompts.Create(context.Background(), "u1", CreatePromptInput{Title: "Greeting", Content: "Say hello"})
	require.NoError(t, err)
	f.prompt = p
	return f
}

func (f *evalFixture) stored(t *testing.T) []models.Evaluation {
	t.Helper()
	items, err := f.store.Evaluations().List(context.Background(), "u1")
	require.NoError(t, err)
	return items
}

func ptr[T any](v T) *T { return &v }

func TestEvaluateStoresOneEvaluation(t *testing.T) {
	openai := &fakeAdapter{provider: models.ProviderOpenAI, response: "hi"}
	f := newEvalFixture(t, openai)

	ev, err := f.svc.Evaluate(context.Background(), "u1", f.prompt.ID.Hex(), models.ProviderConfig{
		Provider:    "OpenAI",
		Model:       "gpt-4",
		Temperature: ptr(0.2),
		MaxTokens:   ptr(50),
	})
	require.NoError(t, err)

	assert.False(t, ev.ID.IsZero())
	assert.Equal(t, f.prompt.ID, ev.PromptID)
	assert.Equal(t, models.ProviderOpenAI, ev.Provider)
	assert.Equal(t, "gpt-4", ev.Model)
	assert.Equal(t, "hi:Say hello", ev.Response)
	assert.Equal(t, "run-1", ev.RunID)
	assert.Equal(t, int64(30), ev.Metrics.TotalTokens)

	require.Equal(t, 1, openai.callCount())
	assert.Equal(t, 0.2, *openai.calls[0].Temperature)
	assert.Equal(t, 50, *openai.calls[0].MaxTokens)

	assert.Len(t, f.stored(t), 1)
	assert.Equal(t, []string{"evaluation.run_completed"}, f.bus.types)
}

func TestEvaluateValidation(t *testing.T) {
	f := newEvalFixture(t, &fakeAdapter{provider: models.ProviderOpenAI})
	ctx := context.Background()
	id := f.prompt.ID.Hex()

	tests := []struct {
		name     string
		promptID string
		cfg      models.ProviderConfig
		want     error
	}{
		{"missing model", id, models.ProviderConfig{Provider: "openai"}, nil},
		{"missing provider", id, models.ProviderConfig{Model: "gpt-4"}, nil},
		{"unknown prompt", primitive.NewObjectID().Hex(), models.ProviderConfig{Provider: "openai", Model: "m"}, ErrPromptNotFound},
		{"malformed prompt id", "not-hex", models.ProviderConfig{Provider: "openai", Model: "m"}, ErrPromptNotFound},
		{"invalid provider", id, models.ProviderConfig{Provider: "mistral", Model: "m"}, ErrInvalidProvider},
		{"unconfigured provider", id, models.ProviderConfig{Provider: "google", Model: "m"}, ErrProviderNotConfigured},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Evaluate(ctx, "u1", tt.promptID, tt.cfg)
			require.Error(t, err)
			if tt.want == nil {
				var verr *ValidationError
				assert.ErrorAs(t, err, &verr)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
	assert.Empty(t, f.stored(t))
}

func TestEvaluateOtherUsersPrompt(t *testing.T) {
	f := newEvalFixture(t, &fakeAdapter{provider: models.ProviderOpenAI})

	_, err := f.svc.Evaluate(context.Background(), "u2", f.prompt.ID.Hex(), models.ProviderConfig{Provider: "openai", Model: "m"})
	assert.ErrorIs(t, err, ErrPromptNotFound)
}

func TestEvaluateAdapterErrorStoresNothing(t *testing.T) {
	perr := &providers.Error{Provider: models.ProviderOpenAI, Kind: providers.KindRateLimited, StatusCode: 429, Message: "slow down"}
	f := newEvalFixture(t, &fakeAdapter{provider: models.ProviderOpenAI, err: perr})

	_, err := f.svc.Evaluate(context.Background(), "u1", f.prompt.ID.Hex(), models.ProviderConfig{Provider: "openai", Model: "m"})
	var got *providers.Error
	require.ErrorAs(t, err, &got)
	assert.Equal(t, providers.KindRateLimited, got.Kind)
	assert.Empty(t, f.stored(t))
	assert.Empty(t, f.bus.types)
}

func TestEvaluateManyAllSucceed(t *testing.T) {
	f := newEvalFixture(t,
		&fakeAdapter{provider: models.ProviderOpenAI, response: "a"},
		&fakeAdapter{provider: models.ProviderAnthropic, response: "b"},
		&fakeAdapter{provider: models.ProviderGoogle, response: "c"},
	)

	res, err := f.svc.EvaluateMany(context.Background(), "u1", f.prompt.ID.Hex(), []models.ProviderConfig{
		{Provider: "openai", Model: "gpt-4"},
		{Provider: "anthropic", Model: "claude-3-haiku-20240307"},
		{Provider: "google"},
	})
	require.NoError(t, err)

	require.Len(t, res.Successful, 3)
	assert.Empty(t, res.Failed)
	assert.False(t, res.Partial())
	for _, e := range res.Successful {
		assert.Equal(t, res.RunID, e.RunID)
		assert.Equal(t, f.prompt.ID, e.PromptID)
	}
	assert.Equal(t, models.ProviderOpenAI, res.Successful[0].Provider)
	assert.Equal(t, models.ProviderAnthropic, res.Successful[1].Provider)
	assert.Equal(t, "default-google", res.Successful[2].Model)
	assert.Len(t, f.stored(t), 3)
	assert.Equal(t, []string{"evaluation.run_completed"}, f.bus.types)
}

func TestEvaluateManyPartialSuccess(t *testing.T) {
	failing := &fakeAdapter{
		provider: models.ProviderGoogle,
		err:      &providers.Error{Provider: models.ProviderGoogle, Kind: providers.KindAuthFailed, StatusCode: 403, Message: "bad key"},
	}
	f := newEvalFixture(t, &fakeAdapter{provider: models.ProviderOpenAI, response: "ok"}, failing)

	configs := []models.ProviderConfig{
		{Provider: "openai", Model: "gpt-4"},
		{Provider: "mistral", Model: "large"},
		{Provider: "anthropic", Model: "claude-3-opus-20240229"},
		{Provider: "google", Model: "gemini-pro"},
	}
	res, err := f.svc.EvaluateMany(context.Background(), "u1", f.prompt.ID.Hex(), configs)
	require.NoError(t, err)

	assert.True(t, res.Partial())
	assert.Equal(t, len(configs), len(res.Successful)+len(res.Failed))
	require.Len(t, res.Successful, 1)
	require.Len(t, res.Failed, 3)

	assert.Equal(t, models.FailedEvaluation{Provider: "mistral", Model: "large", Error: "Invalid provider: mistral"}, res.Failed[0])
	assert.Equal(t, "Provider not configured: anthropic", res.Failed[1].Error)
	assert.Equal(t, "google", res.Failed[2].Provider)
	assert.Contains(t, res.Failed[2].Error, "bad key")

	stored := f.stored(t)
	require.Len(t, stored, 1)
	assert.Equal(t, res.Successful[0].ID, stored[0].ID)
}

func TestEvaluateManyAllFail(t *testing.T) {
	f := newEvalFixture(t, &fakeAdapter{provider: models.ProviderOpenAI, err: errors.New("boom")})

	_, err := f.svc.EvaluateMany(context.Background(), "u1", f.prompt.ID.Hex(), []models.ProviderConfig{
		{Provider: "openai", Model: "gpt-4"},
		{Provider: "bogus", Model: "x"},
	})
	var all *AllProvidersFailedError
	require.ErrorAs(t, err, &all)
	require.Len(t, all.Failed, 2)
	assert.Equal(t, "boom", all.Failed[0].Error)
	assert.Equal(t, "Invalid provider: bogus", all.Failed[1].Error)

	assert.Empty(t, f.stored(t))
	assert.Empty(t, f.bus.types)
}

func TestEvaluateManyStorageErrorAbortsRun(t *testing.T) {
	f := newEvalFixture(t,
		&fakeAdapter{provider: models.ProviderOpenAI},
		&fakeAdapter{provider: models.ProviderAnthropic},
	)
	f.svc.evaluations = &failingBatchStore{EvaluationStore: f.store.Evaluations(), allowed: 1}

	_, err := f.svc.EvaluateMany(context.Background(), "u1", f.prompt.ID.Hex(), []models.ProviderConfig{
		{Provider: "openai", Model: "a"},
		{Provider: "anthropic", Model: "b"},
	})
	require.ErrorIs(t, err, errDiskFull)
	var all *AllProvidersFailedError
	assert.False(t, errors.As(err, &all))
	assert.Empty(t, f.stored(t))
}

func TestEvaluateManyValidation(t *testing.T) {
	f := newEvalFixture(t, &fakeAdapter{provider: models.ProviderOpenAI})
	ctx := context.Background()

	_, err := f.svc.EvaluateMany(ctx, "u1", f.prompt.ID.Hex(), nil)
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)

	_, err = f.svc.EvaluateMany(ctx, "u1", "", []models.ProviderConfig{{Provider: "openai"}})
	assert.ErrorAs(t, err, &verr)

	_, err = f.svc.EvaluateMany(ctx, "u1", primitive.NewObjectID().Hex(), []models.ProviderConfig{{Provider: "openai"}})
	assert.ErrorIs(t, err, ErrPromptNotFound)
}

func TestGetPopulatesPromptUntilDeleted(t *testing.T) {
	f := newEvalFixture(t, &fakeAdapter{provider: models.ProviderOpenAI})
	ctx := context.Background()

	ev, err := f.svc.Evaluate(ctx, "u1", f.prompt.ID.Hex(), models.ProviderConfig{Provider: "openai", Model: "m"})
	require.NoError(t, err)

	got, err := f.svc.Get(ctx, "u1", ev.ID.Hex())
	require.NoError(t, err)
	require.NotNil(t, got.Prompt)
	assert.Equal(t, "Greeting", got.Prompt.Title)

	list, err := f.svc.ListAll(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.NotNil(t, list[0].Prompt)

	require.NoError(t, f.prompts.Delete(ctx, "u1", f.prompt.ID.Hex()))

	got, err = f.svc.Get(ctx, "u1", ev.ID.Hex())
	require.NoError(t, err)
	assert.Nil(t, got.Prompt)
	assert.Equal(t, ev.ID, got.ID)

	_, err = f.svc.Get(ctx, "u2", ev.ID.Hex())
	assert.ErrorIs(t, err, ErrEvaluationNotFound)
	_, err = f.svc.Get(ctx, "u1", "zzz")
	assert.ErrorIs(t, err, ErrEvaluationNotFound)
}

func TestSummary(t *testing.T) {
	f := newEvalFixture(t)
	ctx := context.Background()
	evals := f.store.Evaluations()

	cost := 0.5
	require.NoError(t, evals.Insert(ctx, &models.Evaluation{
		PromptID: f.prompt.ID, UserID: "u1", Provider: models.ProviderOpenAI,
		Metrics: models.EvaluationMetrics{LatencyMs: 100, TotalTokens: 10, CostUSD: &cost},
	}))
	require.NoError(t, evals.Insert(ctx, &models.Evaluation{
		PromptID: f.prompt.ID, UserID: "u1", Provider: models.ProviderGoogle,
		Metrics: models.EvaluationMetrics{LatencyMs: 300, TotalTokens: 30},
	}))

	sum, err := f.svc.Summary(ctx, "u1", f.prompt.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, 200.0, sum.AverageLatency)
	assert.Equal(t, int64(40), sum.TotalTokens)
	assert.Equal(t, 20.0, sum.AverageTokens)
	assert.InDelta(t, 0.5, sum.TotalCostUSD, 1e-9)
	assert.Len(t, sum.Results, 2)

	_, err = f.svc.Summary(ctx, "u2", f.prompt.ID.Hex())
	assert.ErrorIs(t, err, ErrNoEvaluations)
	_, err = f.svc.Summary(ctx, "u1", primitive.NewObjectID().Hex())
	assert.ErrorIs(t, err, ErrNoEvaluations)
}

func TestListByPromptEmpty(t *testing.T) {
	f := newEvalFixture(t)

	items, err := f.svc.ListByPrompt(context.Background(), "u1", f.prompt.ID.Hex())
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
}

func TestDeleteEvaluation(t *testing.T) {
	f := newEvalFixture(t, &fakeAdapter{provider: models.ProviderOpenAI})
	ctx := context.Background()

	ev, err := f.svc.Evaluate(ctx, "u1", f.prompt.ID.Hex(), models.ProviderConfig{Provider: "openai", Model: "m"})
	require.NoError(t, err)

	assert.ErrorIs(t, f.svc.Delete(ctx, "u2", ev.ID.Hex()), ErrEvaluationNotFound)
	require.NoError(t, f.svc.Delete(ctx, "u1", ev.ID.Hex()))
	assert.ErrorIs(t, f.svc.Delete(ctx, "u1", ev.ID.Hex()), ErrEvaluationNotFound)
	assert.Contains(t, f.bus.types, "evaluation.deleted")
}

func TestPublishFailureDoesNotFailRun(t *testing.T) {
	f := newEvalFixture(t, &fakeAdapter{provider: models.ProviderOpenAI})
	f.bus.err = errors.New("broker down")

	_, err := f.svc.Evaluate(context.Background(), "u1", f.prompt.ID.Hex(), models.ProviderConfig{Provider: "openai", Model: "m"})
	require.NoError(t, err)
	assert.Len(t, f.stored(t), 1)
}

func TestPublishWaitIsBoundedAfterCommit(t *testing.T) {
	old := publishTimeout
	publishTimeout = 50 * time.Millisecond
	t.Cleanup(func() { publishTimeout = old })

	ctx := context.Background()
	store := memory.NewStore()
	bus := &stallingBus{}
	prompts := NewPromptService(store.Prompts(), nil, bus)
	p, err := prompts.Create(ctx, "u1", CreatePromptInput{Title: "t", Content: "c"})
	require.NoError(t, err)
	svc := NewEvaluationService(store.Prompts(), store.Evaluations(),
		providers.NewRegistry(&fakeAdapter{provider: models.ProviderOpenAI}), bus)

	reqCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	start := time.Now()
	res, err := svc.EvaluateMany(reqCtx, "u1", p.ID.Hex(), []models.ProviderConfig{{Provider: "openai", Model: "m"}})
	require.NoError(t, err)
	assert.Len(t, res.Successful, 1)
	assert.Less(t, time.Since(start), 2*time.Second)

	start = time.Now()
	require.NoError(t, prompts.Delete(reqCtx, "u1", p.ID.Hex()))
	assert.Less(t, time.Since(start), 2*time.Second)

	bus.mu.Lock()
	defer bus.mu.Unlock()
	assert.Equal(t, 2, bus.calls)
	assert.True(t, bus.hadDeadline)
}
