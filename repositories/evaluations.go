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

const EvaluationsCollection = "evaluations"

type EvaluationRepository struct {
	col *mongo.Collection
}

func NewEvaluationRepository(db *mongo.Database) *EvaluationRepository {
	return &EvaluationRepository{col: db.Collection(EvaluationsCollection)}
}

func prepareEvaluation(e *models.Evaluation) {
	if e.ID.IsZero() {
		e.ID = primitive.NewObjectID()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
}

// Insert inserts a single evaluation outside of any transaction.
func (r *EvaluationRepository) Insert(ctx context.Context, e *models.Evaluation) error {
	prepareEvaluation(e)
	_, err := r.col.InsertOne(ctx, e)
	return err
}

// BeginBatch starts a session with an open multi-document transaction.
// The deployment must be a replica set or sharded cluster.
func (r *EvaluationRepository) BeginBatch(ctx context.Context) (EvaluationBatch, error) {
	sess, err := r.col.Database().Client().StartSession()
	if err != nil {
		return nil, err
	}
	if err := sess.StartTransaction(); err != nil {
		sess.EndSession(ctx)
		return nil, err
	}
	return &mongoBatch{col: r.col, sess: sess}, nil
}

// FindByID returns an evaluation owned by userID
func (r *EvaluationRepository) FindByID(ctx context.Context, userID string, id primitive.ObjectID) (*models.Evaluation, error) {
	var e models.Evaluation
	if err := r.col.FindOne(ctx, bson.M{"_id": id, "user_id": userID}).Decode(&e); err != nil {
		return nil, notFound(err)
	}
	return &e, nil
}

// List returns all of userID's evaluations newest first.
func (r *EvaluationRepository) List(ctx context.Context, userID string) ([]models.Evaluation, error) {
	return r.find(ctx, bson.M{"user_id": userID})
}

// ListByPrompt returns userID's evaluations of one prompt newest first.
func (r *EvaluationRepository) ListByPrompt(ctx context.Context, userID string, promptID primitive.ObjectID) ([]models.Evaluation, error) {
	return r.find(ctx, bson.M{"user_id": userID, "prompt_id": promptID})
}

func (r *EvaluationRepository) find(ctx context.Context, filter bson.M) ([]models.Evaluation, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.Evaluation{}
	for cur.Next(ctx) {
		var e models.Evaluation
		if err := cur.Decode(&e); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, cur.Err()
}

func (r *EvaluationRepository) Delete(ctx context.Context, userID string, id primitive.ObjectID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id, "user_id": userID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

type mongoBatch struct {
	col  *mongo.Collection
	sess mongo.Session
	done bool
}

func (b *mongoBatch) Insert(ctx context.Context, e *models.Evaluation) error {
	if b.done {
		return ErrBatchClosed
	}
	prepareEvaluation(e)
	_, err := b.col.InsertOne(mongo.NewSessionContext(ctx, b.sess), e)
	return err
}

func (b *mongoBatch) Commit(ctx context.Context) error {
	if b.done {
		return ErrBatchClosed
	}
	b.done = true
	return b.sess.CommitTransaction(ctx)
}

func (b *mongoBatch) Abort(ctx context.Context) error {
	if b.done {
		return ErrBatchClosed
	}
	b.done = true
	return b.sess.AbortTransaction(ctx)
}

func (b *mongoBatch) Close(ctx context.Context) {
	if !b.done {
		b.done = true
		_ = b.sess.AbortTransaction(ctx)
	}
	b.sess.EndSession(ctx)
}
