package repository

import (
	"context"
	"errors"

	"github.com/todoapp/todo-api/internal/model"
)

// DefaultListLimit applies when List is called with a non-positive limit.
const DefaultListLimit = 100

var (
	ErrNotFound         = errors.New("todo not found")
	ErrInvalidID        = errors.New("invalid todo id")
	ErrNoFieldsToUpdate = errors.New("no fields to update")
)

// TodoRepository is implemented by every storage medium. Implementations must be
// safe for concurrent use.
type TodoRepository interface {
	Create(ctx context.Context, todo model.Todo) (model.Todo, error)
	List(ctx context.Context, filter model.TodoFilter, limit int) ([]model.Todo, error)
	GetByID(ctx context.Context, id string) (model.Todo, error)
	Update(ctx context.Context, id string, patch model.TodoPatch) (model.Todo, error)
	Delete(ctx context.Context, id string) error
	Toggle(ctx context.Context, id string) (model.Todo, error)
	Count(ctx context.Context, filter model.TodoFilter) (int64, error)
	Search(ctx context.Context, keyword string) ([]model.Todo, error)
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	return limit
}
