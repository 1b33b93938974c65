package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"model-eval/eventbus"
	"model-eval/events"
	"model-eval/internal/logger"
	"model-eval/models"
	"model-eval/providers"
	"model-eval/repositories"
	"model-eval/trace"
)

// EvaluationService runs prompts against providers and manages the results.
type EvaluationService struct {
	prompts     PromptStore
	evaluations EvaluationStore
	registry    *providers.Registry
	bus         eventbus.Publisher
	newRunID    func() string
}

func NewEvaluationService(prompts PromptStore, evaluations EvaluationStore, registry *providers.Registry, bus eventbus.Publisher) *EvaluationService {
	if bus == nil {
		bus = eventbus.NoopBus{}
	}
	return &EvaluationService{
		prompts:     prompts,
		evaluations: evaluations,
		registry:    registry,
		bus:         bus,
		newRunID:    uuid.NewString,
	}
}

// EvaluationDetail is an evaluation with its prompt attached when the prompt
// still exists.
type EvaluationDetail struct {
	models.Evaluation
	Prompt *models.Prompt `json:"prompt,omitempty"`
}

// MultiResult is the outcome of a multi-provider run.
// len(Successful)+len(Failed) always equals the number of configs.
type MultiResult struct {
	RunID      string                    `json:"runId"`
	Successful []models.Evaluation       `json:"successful"`
	Failed     []models.FailedEvaluation `json:"failed"`
}

// Partial reports whether some but not all configs failed.
func (r *MultiResult) Partial() bool {
	return len(r.Failed) > 0 && len(r.Successful) > 0
}

// Evaluate runs one prompt against one provider and stores the result.
func (s *EvaluationService) Evaluate(ctx context.Context, userID, promptID string, cfg models.ProviderConfig) (*models.Evaluation, error) {
	if strings.TrimSpace(promptID) == "" || strings.TrimSpace(cfg.Provider) == "" || strings.TrimSpace(cfg.Model) == "" {
		return nil, invalid("promptId, provider and model are required")
	}
	prompt, err := s.loadPrompt(ctx, userID, promptID)
	if err != nil {
		return nil, err
	}
	adapter, err := s.adapterFor(cfg.Provider)
	if err != nil {
		return nil, err
	}

	runID := s.newRunID()
	ev, err := s.generate(ctx, adapter, prompt, userID, runID, cfg)
	if err != nil {
		return nil, err
	}
	if err := s.evaluations.Insert(ctx, ev); err != nil {
		return nil, fmt.Errorf("store evaluation: %w", err)
	}

	s.publishRun(ctx, runID, userID, prompt.ID, []models.Evaluation{*ev}, nil)
	return ev, nil
}

// EvaluateMany runs one prompt against each config in order and stores all
// successful results in a single batch. Failures are collected per config.
// If every config fails nothing is stored and AllProvidersFailedError is
// returned. A storage error aborts the whole run.
func (s *EvaluationService) EvaluateMany(ctx context.Context, userID, promptID string, configs []models.ProviderConfig) (*MultiResult, error) {
	if strings.TrimSpace(promptID) == "" {
		return nil, invalid("promptId is required")
	}
	if len(configs) == 0 {
		return nil, invalid("providers must be a non-empty array")
	}
	prompt, err := s.loadPrompt(ctx, userID, promptID)
	if err != nil {
		return nil, err
	}

	batch, err := s.evaluations.BeginBatch(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin evaluation batch: %w", err)
	}
	defer batch.Close(ctx)

	runID := s.newRunID()
	result := &MultiResult{
		RunID:      runID,
		Successful: make([]models.Evaluation, 0, len(configs)),
		Failed:     []models.FailedEvaluation{},
	}

	for _, cfg := range configs {
		adapter, err := s.adapterFor(cfg.Provider)
		if err != nil {
			result.Failed = append(result.Failed, failure(cfg, failureMessage(cfg, err)))
			continue
		}
		ev, err := s.generate(ctx, adapter, prompt, userID, runID, cfg)
		if err != nil {
			result.Failed = append(result.Failed, failure(cfg, err.Error()))
			continue
		}
		if err := batch.Insert(ctx, ev); err != nil {
			_ = batch.Abort(ctx)
			return nil, fmt.Errorf("store evaluation: %w", err)
		}
		result.Successful = append(result.Successful, *ev)
	}

	if len(result.Successful) == 0 {
		_ = batch.Abort(ctx)
		return nil, &AllProvidersFailedError{Failed: result.Failed}
	}
	if err := batch.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit evaluations: %w", err)
	}

	fields := logger.Fields(trace.Fields(ctx))
	fields["run_id"] = runID
	fields["prompt_id"] = prompt.ID.Hex()
	fields["successful"] = len(result.Successful)
	fields["failed"] = len(result.Failed)
	logger.InfoWithFields("evaluation run committed", fields)

	s.publishRun(ctx, runID, userID, prompt.ID, result.Successful, result.Failed)
	return result, nil
}

// Get returns one evaluation with its prompt populated.
func (s *EvaluationService) Get(ctx context.Context, userID, hexID string) (*EvaluationDetail, error) {
	id, err := parseID(hexID, ErrEvaluationNotFound)
	if err != nil {
		return nil, err
	}
	ev, err := s.evaluations.FindByID(ctx, userID, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrEvaluationNotFound
		}
		return nil, err
	}
	detail := &EvaluationDetail{Evaluation: *ev}
	p, err := s.prompts.FindByID(ctx, userID, ev.PromptID)
	switch {
	case err == nil:
		detail.Prompt = p
	case errors.Is(err, repositories.ErrNotFound):
	default:
		return nil, err
	}
	return detail, nil
}

// ListAll returns every evaluation of the user newest first, prompts populated.
func (s *EvaluationService) ListAll(ctx context.Context, userID string) ([]EvaluationDetail, error) {
	items, err := s.evaluations.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.withPrompts(ctx, userID, items)
}

// ListByPrompt returns the evaluations of one prompt newest first.
func (s *EvaluationService) ListByPrompt(ctx context.Context, userID, promptID string) ([]models.Evaluation, error) {
	id, err := parseID(promptID, ErrPromptNotFound)
	if err != nil {
		return nil, err
	}
	items, err := s.evaluations.ListByPrompt(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []models.Evaluation{}
	}
	return items, nil
}

// Summary aggregates latency, tokens and cost over a prompt's evaluations.
// Evaluations without a cost count as zero.
func (s *EvaluationService) Summary(ctx context.Context, userID, promptID string) (*models.EvaluationSummary, error) {
	items, err := s.ListByPrompt(ctx, userID, promptID)
	if err != nil {
		if errors.Is(err, ErrPromptNotFound) {
			return nil, ErrNoEvaluations
		}
		return nil, err
	}
	if len(items) == 0 {
		return nil, ErrNoEvaluations
	}
	return summarize(items), nil
}

func summarize(items []models.Evaluation) *models.EvaluationSummary {
	var latency, tokens int64
	var cost float64
	for _, e := range items {
		latency += e.Metrics.LatencyMs
		tokens += e.Metrics.TotalTokens
		if e.Metrics.CostUSD != nil {
			cost += *e.Metrics.CostUSD
		}
	}
	n := float64(len(items))
	return &models.EvaluationSummary{
		AverageLatency: float64(latency) / n,
		TotalTokens:    tokens,
		AverageTokens:  float64(tokens) / n,
		TotalCostUSD:   cost,
		Results:        items,
	}
}

// Delete removes one evaluation.
func (s *EvaluationService) Delete(ctx context.Context, userID, hexID string) error {
	id, err := parseID(hexID, ErrEvaluationNotFound)
	if err != nil {
		return err
	}
	if err := s.evaluations.Delete(ctx, userID, id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrEvaluationNotFound
		}
		return err
	}
	publish(ctx, s.bus, eventbus.TopicEvaluationEvents, "", events.EvaluationDeletedEvent{
		BaseEvent:    events.NewBaseEvent(hexID, events.EvaluationDeleted),
		EvaluationID: hexID,
		UserID:       userID,
	})
	return nil
}

func (s *EvaluationService) loadPrompt(ctx context.Context, userID, hexID string) (*models.Prompt, error) {
	id, err := parseID(hexID, ErrPromptNotFound)
	if err != nil {
		return nil, err
	}
	p, err := s.prompts.FindByID(ctx, userID, id)
	if err != nil {
		return nil, promptErr(err)
	}
	return p, nil
}

func (s *EvaluationService) adapterFor(name string) (providers.Adapter, error) {
	p, ok := models.ParseProvider(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrInvalidProvider, name)
	}
	adapter, ok := s.registry.Get(p)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrProviderNotConfigured, p)
	}
	return adapter, nil
}

func (s *EvaluationService) generate(ctx context.Context, adapter providers.Adapter, prompt *models.Prompt, userID, runID string, cfg models.ProviderConfig) (*models.Evaluation, error) {
	res, err := adapter.Generate(ctx, prompt.Content, providers.Options{
		Model:            strings.TrimSpace(cfg.Model),
		Temperature:      cfg.Temperature,
		MaxTokens:        cfg.MaxTokens,
		TopP:             cfg.TopP,
		FrequencyPenalty: cfg.FrequencyPenalty,
		PresencePenalty:  cfg.PresencePenalty,
	})
	if err != nil {
		return nil, err
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = res.Model
	}
	return &models.Evaluation{
		CreatedAt: time.Now().UTC(),
		PromptID:  prompt.ID,
		UserID:    userID,
		RunID:     runID,
		Provider:  adapter.Provider(),
		Model:     model,
		Response:  res.Response,
		Metrics:   res.Metrics,
	}, nil
}

func (s *EvaluationService) withPrompts(ctx context.Context, userID string, items []models.Evaluation) ([]EvaluationDetail, error) {
	out := make([]EvaluationDetail, 0, len(items))
	if len(items) == 0 {
		return out, nil
	}
	ids := make([]primitive.ObjectID, 0, len(items))
	seen := make(map[primitive.ObjectID]struct{}, len(items))
	for _, e := range items {
		if _, ok := seen[e.PromptID]; ok {
			continue
		}
		seen[e.PromptID] = struct{}{}
		ids = append(ids, e.PromptID)
	}
	prompts, err := s.prompts.FindByIDs(ctx, userID, ids)
	if err != nil {
		return nil, err
	}
	for _, e := range items {
		d := EvaluationDetail{Evaluation: e}
		if p, ok := prompts[e.PromptID]; ok {
			p := p
			d.Prompt = &p
		}
		out = append(out, d)
	}
	return out, nil
}

func (s *EvaluationService) publishRun(ctx context.Context, runID, userID string, promptID primitive.ObjectID, ok []models.Evaluation, failed []models.FailedEvaluation) {
	refs := make([]events.EvaluationRef, 0, len(ok))
	for _, e := range ok {
		refs = append(refs, events.EvaluationRef{
			EvaluationID: e.ID.Hex(),
			Provider:     string(e.Provider),
			Model:        e.Model,
			LatencyMs:    e.Metrics.LatencyMs,
			TotalTokens:  e.Metrics.TotalTokens,
			CostUSD:      e.Metrics.CostUSD,
		})
	}
	failedRefs := make([]events.FailedRef, 0, len(failed))
	for _, f := range failed {
		failedRefs = append(failedRefs, events.FailedRef{Provider: f.Provider, Model: f.Model, Error: f.Error})
	}
	publish(ctx, s.bus, eventbus.TopicEvaluationEvents, runID, events.EvaluationRunCompletedEvent{
		BaseEvent:  events.NewBaseEvent(runID, events.EvaluationRunCompleted),
		RunID:      runID,
		UserID:     userID,
		PromptID:   promptID.Hex(),
		Successful: refs,
		Failed:     failedRefs,
	})
}

func failure(cfg models.ProviderConfig, msg string) models.FailedEvaluation {
	return models.FailedEvaluation{Provider: cfg.Provider, Model: cfg.Model, Error: msg}
}

func failureMessage(cfg models.ProviderConfig, err error) string {
	switch {
	case errors.Is(err, ErrInvalidProvider):
		return "Invalid provider: " + cfg.Provider
	case errors.Is(err, ErrProviderNotConfigured):
		return "Provider not configured: " + cfg.Provider
	}
	return err.Error()
}
