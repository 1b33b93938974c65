package repositories

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/mongo"

	"model-eval/models"
)

// ErrNotFound is returned when no document matches the id and owner.
var ErrNotFound = errors.New("not found")

// ErrBatchClosed is returned when a batch is used after Commit or Abort.
var ErrBatchClosed = errors.New("evaluation batch already closed")

// EvaluationBatch stages evaluation inserts that become visible together on
// Commit. Close must always be called; it aborts a batch that was not committed.
type EvaluationBatch interface {
	Insert(ctx context.Context, e *models.Evaluation) error
	Commit(ctx context.Context) error
	Abort(ctx context.Context) error
	Close(ctx context.Context)
}

// PromptUpdate carries the fields to change. Nil fields are left as they are.
type PromptUpdate struct {
	Title   *string
	Content *string
	Tags    *[]string
}

func notFound(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	return err
}
