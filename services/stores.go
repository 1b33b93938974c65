package services

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"model-eval/models"
	"model-eval/parser"
	"model-eval/repositories"
)

// PromptStore is satisfied by repositories.PromptRepository and the
// in-memory store.
type PromptStore interface {
	Insert(ctx context.Context, p *models.Prompt) error
	FindByID(ctx context.Context, userID string, id primitive.ObjectID) (*models.Prompt, error)
	FindByIDs(ctx context.Context, userID string, ids []primitive.ObjectID) (map[primitive.ObjectID]models.Prompt, error)
	List(ctx context.Context, userID, tag string) ([]models.Prompt, error)
	Update(ctx context.Context, userID string, id primitive.ObjectID, u repositories.PromptUpdate) (*models.Prompt, error)
	Delete(ctx context.Context, userID string, id primitive.ObjectID) error
}

// EvaluationStore is satisfied by repositories.EvaluationRepository and the
// in-memory store.
type EvaluationStore interface {
	Insert(ctx context.Context, e *models.Evaluation) error
	BeginBatch(ctx context.Context) (repositories.EvaluationBatch, error)
	FindByID(ctx context.Context, userID string, id primitive.ObjectID) (*models.Evaluation, error)
	List(ctx context.Context, userID string) ([]models.Evaluation, error)
	ListByPrompt(ctx context.Context, userID string, promptID primitive.ObjectID) ([]models.Evaluation, error)
	Delete(ctx context.Context, userID string, id primitive.ObjectID) error
}

// ArticleImporter fetches a page and extracts its readable text.
type ArticleImporter interface {
	Import(ctx context.Context, rawURL string) (*parser.Article, error)
}

// parseID treats a malformed hex id like an unknown one.
func parseID(hexID string, notFound error) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(hexID)
	if err != nil {
		return primitive.NilObjectID, notFound
	}
	return id, nil
}
