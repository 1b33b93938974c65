// Package memory keeps prompts and evaluations in process memory. It offers the
// same ownership filtering and all-or-nothing batches as the Mongo repositories.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"model-eval/models"
	"model-eval/repositories"
)

// Store is shared by both repositories so a batch commit and a concurrent
// read serialize on the same lock.
type Store struct {
	mu          sync.RWMutex
	prompts     map[primitive.ObjectID]models.Prompt
	evaluations map[primitive.ObjectID]models.Evaluation
}

func NewStore() *Store {
	return &Store{
		prompts:     map[primitive.ObjectID]models.Prompt{},
		evaluations: map[primitive.ObjectID]models.Evaluation{},
	}
}

func (s *Store) Prompts() *PromptRepository { return &PromptRepository{s: s} }

func (s *Store) Evaluations() *EvaluationRepository { return &EvaluationRepository{s: s} }

type PromptRepository struct {
	s *Store
}

func (r *PromptRepository) Insert(_ context.Context, p *models.Prompt) error {
	now := time.Now().UTC()
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
	if p.Tags == nil {
		p.Tags = []string{}
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.prompts[p.ID] = clonePrompt(*p)
	return nil
}

func (r *PromptRepository) FindByID(_ context.Context, userID string, id primitive.ObjectID) (*models.Prompt, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.prompts[id]
	if !ok || p.UserID != userID {
		return nil, repositories.ErrNotFound
	}
	out := clonePrompt(p)
	return &out, nil
}

func (r *PromptRepository) FindByIDs(_ context.Context, userID string, ids []primitive.ObjectID) (map[primitive.ObjectID]models.Prompt, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make(map[primitive.ObjectID]models.Prompt, len(ids))
	for _, id := range ids {
		if p, ok := r.s.prompts[id]; ok && p.UserID == userID {
			out[id] = clonePrompt(p)
		}
	}
	return out, nil
}

func (r *PromptRepository) List(_ context.Context, userID, tag string) ([]models.Prompt, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []models.Prompt{}
	for _, p := range r.s.prompts {
		if p.UserID != userID || (tag != "" && !p.HasTag(tag)) {
			continue
		}
		out = append(out, clonePrompt(p))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID.Hex() > out[j].ID.Hex()
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *PromptRepository) Update(_ context.Context, userID string, id primitive.ObjectID, u repositories.PromptUpdate) (*models.Prompt, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.prompts[id]
	if !ok || p.UserID != userID {
		return nil, repositories.ErrNotFound
	}
	if u.Title != nil {
		p.Title = *u.Title
	}
	if u.Content != nil {
		p.Content = *u.Content
	}
	if u.Tags != nil {
		p.Tags = append([]string{}, (*u.Tags)...)
	}
	p.UpdatedAt = time.Now().UTC()
	r.s.prompts[id] = p
	out := clonePrompt(p)
	return &out, nil
}

func (r *PromptRepository) Delete(_ context.Context, userID string, id primitive.ObjectID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.prompts[id]
	if !ok || p.UserID != userID {
		return repositories.ErrNotFound
	}
	delete(r.s.prompts, id)
	return nil
}

type EvaluationRepository struct {
	s *Store
}

func prepare(e *models.Evaluation) {
	if e.ID.IsZero() {
		e.ID = primitive.NewObjectID()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
}

func (r *EvaluationRepository) Insert(_ context.Context, e *models.Evaluation) error {
	prepare(e)
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.evaluations[e.ID] = *e
	return nil
}

func (r *EvaluationRepository) BeginBatch(_ context.Context) (repositories.EvaluationBatch, error) {
	return &batch{s: r.s}, nil
}

func (r *EvaluationRepository) FindByID(_ context.Context, userID string, id primitive.ObjectID) (*models.Evaluation, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	e, ok := r.s.evaluations[id]
	if !ok || e.UserID != userID {
		return nil, repositories.ErrNotFound
	}
	return &e, nil
}

func (r *EvaluationRepository) List(_ context.Context, userID string) ([]models.Evaluation, error) {
	return r.filter(func(e models.Evaluation) bool { return e.UserID == userID }), nil
}

func (r *EvaluationRepository) ListByPrompt(_ context.Context, userID string, promptID primitive.ObjectID) ([]models.Evaluation, error) {
	return r.filter(func(e models.Evaluation) bool {
		return e.UserID == userID && e.PromptID == promptID
	}), nil
}

func (r *EvaluationRepository) filter(keep func(models.Evaluation) bool) []models.Evaluation {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []models.Evaluation{}
	for _, e := range r.s.evaluations {
		if keep(e) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID.Hex() > out[j].ID.Hex()
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

func (r *EvaluationRepository) Delete(_ context.Context, userID string, id primitive.ObjectID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e, ok := r.s.evaluations[id]
	if !ok || e.UserID != userID {
		return repositories.ErrNotFound
	}
	delete(r.s.evaluations, id)
	return nil
}

// batch stages inserts and applies them under one write lock on commit.
type batch struct {
	s      *Store
	staged []models.Evaluation
	done   bool
}

func (b *batch) Insert(_ context.Context, e *models.Evaluation) error {
	if b.done {
		return repositories.ErrBatchClosed
	}
	prepare(e)
	b.staged = append(b.staged, *e)
	return nil
}

func (b *batch) Commit(_ context.Context) error {
	if b.done {
		return repositories.ErrBatchClosed
	}
	b.done = true
	b.s.mu.Lock()
	defer b.s.mu.Unlock()
	for _, e := range b.staged {
		b.s.evaluations[e.ID] = e
	}
	b.staged = nil
	return nil
}

func (b *batch) Abort(_ context.Context) error {
	if b.done {
		return repositories.ErrBatchClosed
	}
	b.done = true
	b.staged = nil
	return nil
}

func (b *batch) Close(ctx context.Context) {
	if !b.done {
		_ = b.Abort(ctx)
	}
}

func clonePrompt(p models.Prompt) models.Prompt {
	p.Tags = append([]string{}, p.Tags...)
	return p
}
