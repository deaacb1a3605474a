package repository

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/todoapp/todo-api/internal/model"
)

// DefaultOperationTimeout bounds a single collection call when no timeout is configured.
const DefaultOperationTimeout = 5 * time.Second

type todoDocument struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Title       string             `bson:"title"`
	Description *string            `bson:"description"`
	Completed   bool               `bson:"completed"`
	Priority    string             `bson:"priority"`
	CreatedAt   time.Time          `bson:"created_at"`
}

func (d todoDocument) toModel() model.Todo {
	return model.Todo{
		ID:          d.ID.Hex(),
		Title:       d.Title,
		Description: d.Description,
		Completed:   d.Completed,
		Priority:    model.Priority(d.Priority),
		CreatedAt:   d.CreatedAt.UTC(),
	}
}

type MongoTodoRepository struct {
	coll      *mongo.Collection
	opTimeout time.Duration
	now       func() time.Time
}

func NewMongoTodo(coll *mongo.Collection, opTimeout time.Duration) *MongoTodoRepository {
	if opTimeout <= 0 {
		opTimeout = DefaultOperationTimeout
	}
	return &MongoTodoRepository{
		coll:      coll,
		opTimeout: opTimeout,
		now:       time.Now,
	}
}

func (r *MongoTodoRepository) Create(ctx context.Context, todo model.Todo) (model.Todo, error) {
	ctx, cancel := context.WithTimeout(ctx, r.opTimeout)
	defer cancel()

	doc := todoDocument{
		ID:          primitive.NewObjectID(),
		Title:       todo.Title,
		Description: todo.Description,
		Completed:   todo.Completed,
		Priority:    string(todo.Priority),
		CreatedAt:   r.now().UTC().Truncate(time.Millisecond),
	}

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return model.Todo{}, fmt.Errorf("failed to insert todo: %w", err)
	}
	return doc.toModel(), nil
}

func (r *MongoTodoRepository) List(ctx context.Context, filter model.TodoFilter, limit int) ([]model.Todo, error) {
	ctx, cancel := context.WithTimeout(ctx, r.opTimeout)
	defer cancel()

	opts := options.Find().SetLimit(int64(normalizeLimit(limit)))
	cursor, err := r.coll.Find(ctx, filterDocument(filter), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list todos: %w", err)
	}
	return decodeTodos(ctx, cursor)
}

func (r *MongoTodoRepository) GetByID(ctx context.Context, id string) (model.Todo, error) {
	oid, err := parseObjectID(id)
	if err != nil {
		return model.Todo{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, r.opTimeout)
	defer cancel()

	var doc todoDocument
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		return model.Todo{}, mapMongoError("failed to get todo", err)
	}
	return doc.toModel(), nil
}

func (r *MongoTodoRepository) Update(ctx context.Context, id string, patch model.TodoPatch) (model.Todo, error) {
	if patch.IsEmpty() {
		return model.Todo{}, ErrNoFieldsToUpdate
	}
	oid, err := parseObjectID(id)
	if err != nil {
		return model.Todo{}, err
	}

	set := bson.M{}
	if patch.Title != nil {
		set["title"] = *patch.Title
	}
	if patch.Description != nil {
		set["description"] = *patch.Description
	}
	if patch.Completed != nil {
		set["completed"] = *patch.Completed
	}
	if patch.Priority != nil {
		set["priority"] = string(*patch.Priority)
	}

	ctx, cancel := context.WithTimeout(ctx, r.opTimeout)
	defer cancel()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc todoDocument
	err = r.coll.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": set}, opts).Decode(&doc)
	if err != nil {
		return model.Todo{}, mapMongoError("failed to update todo", err)
	}
	return doc.toModel(), nil
}

func (r *MongoTodoRepository) Delete(ctx context.Context, id string) error {
	oid, err := parseObjectID(id)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, r.opTimeout)
	defer cancel()

	result, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("failed to delete todo: %w", err)
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Toggle flips completed server-side with a pipeline update so concurrent toggles
// never read a stale value.
func (r *MongoTodoRepository) Toggle(ctx context.Context, id string) (model.Todo, error) {
	oid, err := parseObjectID(id)
	if err != nil {
		return model.Todo{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, r.opTimeout)
	defer cancel()

	update := mongo.Pipeline{
		{{Key: "$set", Value: bson.D{
			{Key: "completed", Value: bson.D{{Key: "$not", Value: bson.A{"$completed"}}}},
		}}},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc todoDocument
	if err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": oid}, update, opts).Decode(&doc); err != nil {
		return model.Todo{}, mapMongoError("failed to toggle todo", err)
	}
	return doc.toModel(), nil
}

func (r *MongoTodoRepository) Count(ctx context.Context, filter model.TodoFilter) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, r.opTimeout)
	defer cancel()

	n, err := r.coll.CountDocuments(ctx, filterDocument(filter))
	if err != nil {
		return 0, fmt.Errorf("failed to count todos: %w", err)
	}
	return n, nil
}

func (r *MongoTodoRepository) Search(ctx context.Context, keyword string) ([]model.Todo, error) {
	ctx, cancel := context.WithTimeout(ctx, r.opTimeout)
	defer cancel()

	pattern := primitive.Regex{Pattern: regexp.QuoteMeta(keyword), Options: "i"}
	query := bson.M{"$or": bson.A{
		bson.M{"title": pattern},
		bson.M{"description": pattern},
	}}

	cursor, err := r.coll.Find(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to search todos: %w", err)
	}
	return decodeTodos(ctx, cursor)
}

func filterDocument(f model.TodoFilter) bson.M {
	query := bson.M{}
	if f.Completed != nil {
		query["completed"] = *f.Completed
	}
	if f.Priority != nil {
		query["priority"] = string(*f.Priority)
	}
	return query
}

func decodeTodos(ctx context.Context, cursor *mongo.Cursor) ([]model.Todo, error) {
	var docs []todoDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode todos: %w", err)
	}

	todos := make([]model.Todo, 0, len(docs))
	for _, d := range docs {
		todos = append(todos, d.toModel())
	}
	return todos, nil
}

func parseObjectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return oid, nil
}

func mapMongoError(msg string, err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// ensure compile-time interface compliance
var _ TodoRepository = (*MongoTodoRepository)(nil)
