package repositories

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"model-eval/models"
)

const PromptsCollection = "prompts"

type PromptRepository struct {
	col *mongo.Collection
}

func NewPromptRepository(db *mongo.Database) *PromptRepository {
	return &PromptRepository{col: db.Collection(PromptsCollection)}
}

// Insert inserts a new prompt document and fills its id and timestamps.
func (r *PromptRepository) Insert(ctx context.Context, p *models.Prompt) error {
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
	_, err := r.col.InsertOne(ctx, p)
	return err
}

// FindByID returns a prompt owned by userID
func (r *PromptRepository) FindByID(ctx context.Context, userID string, id primitive.ObjectID) (*models.Prompt, error) {
	var p models.Prompt
	if err := r.col.FindOne(ctx, bson.M{"_id": id, "user_id": userID}).Decode(&p); err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

// FindByIDs returns the prompts among ids that userID owns, keyed by id.
func (r *PromptRepository) FindByIDs(ctx context.Context, userID string, ids []primitive.ObjectID) (map[primitive.ObjectID]models.Prompt, error) {
	out := make(map[primitive.ObjectID]models.Prompt, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	cur, err := r.col.Find(ctx, bson.M{"_id": bson.M{"$in": ids}, "user_id": userID})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	for cur.Next(ctx) {
		var p models.Prompt
		if err := cur.Decode(&p); err != nil {
			return nil, err
		}
		out[p.ID] = p
	}
	return out, cur.Err()
}

// List returns userID's prompts newest first. An empty tag means no tag filter.
func (r *PromptRepository) List(ctx context.Context, userID, tag string) ([]models.Prompt, error) {
	filter := bson.M{"user_id": userID}
	if tag != "" {
		filter["tags"] = tag
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.Prompt{}
	for cur.Next(ctx) {
		var p models.Prompt
		if err := cur.Decode(&p); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, cur.Err()
}

// Update applies the non-nil fields of u and returns the updated prompt.
func (r *PromptRepository) Update(ctx context.Context, userID string, id primitive.ObjectID, u PromptUpdate) (*models.Prompt, error) {
	set := bson.M{"updated_at": time.Now().UTC()}
	if u.Title != nil {
		set["title"] = *u.Title
	}
	if u.Content != nil {
		set["content"] = *u.Content
	}
	if u.Tags != nil {
		tags := *u.Tags
		if tags == nil {
			tags = []string{}
		}
		set["tags"] = tags
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var p models.Prompt
	err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": id, "user_id": userID}, bson.M{"$set": set}, opts).Decode(&p)
	if err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

// Delete removes a prompt. Evaluations referencing it are kept.
func (r *PromptRepository) Delete(ctx context.Context, userID string, id primitive.ObjectID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id, "user_id": userID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
