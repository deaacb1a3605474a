package repository

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/todoapp/todo-api/internal/model"
)

// MemoryTodoRepository keeps todos in insertion order for the lifetime of the process.
// Ids come from a counter that only grows, so a deleted id is never handed out again.
type MemoryTodoRepository struct {
	mu     sync.RWMutex
	todos  []model.Todo
	nextID uint64
	now    func() time.Time
}

func NewMemoryTodo() *MemoryTodoRepository {
	return &MemoryTodoRepository{
		nextID: 1,
		now:    time.Now,
	}
}

func (r *MemoryTodoRepository) Create(ctx context.Context, todo model.Todo) (model.Todo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	todo.ID = strconv.FormatUint(r.nextID, 10)
	todo.CreatedAt = r.now().UTC().Truncate(time.Millisecond)
	todo.Description = cloneString(todo.Description)
	r.nextID++

	r.todos = append(r.todos, todo)
	return cloneTodo(todo), nil
}

func (r *MemoryTodoRepository) List(ctx context.Context, filter model.TodoFilter, limit int) ([]model.Todo, error) {
	limit = normalizeLimit(limit)

	r.mu.RLock()
	defer r.mu.RUnlock()

	todos := []model.Todo{}
	for _, t := range r.todos {
		if len(todos) == limit {
			break
		}
		if filter.Matches(t) {
			todos = append(todos, cloneTodo(t))
		}
	}
	return todos, nil
}

func (r *MemoryTodoRepository) GetByID(ctx context.Context, id string) (model.Todo, error) {
	if err := validateMemoryID(id); err != nil {
		return model.Todo{}, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	i := r.indexOf(id)
	if i < 0 {
		return model.Todo{}, ErrNotFound
	}
	return cloneTodo(r.todos[i]), nil
}

func (r *MemoryTodoRepository) Update(ctx context.Context, id string, patch model.TodoPatch) (model.Todo, error) {
	if patch.IsEmpty() {
		return model.Todo{}, ErrNoFieldsToUpdate
	}
	if err := validateMemoryID(id); err != nil {
		return model.Todo{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return model.Todo{}, ErrNotFound
	}
	r.todos[i] = patch.Apply(r.todos[i])
	return cloneTodo(r.todos[i]), nil
}

func (r *MemoryTodoRepository) Delete(ctx context.Context, id string) error {
	if err := validateMemoryID(id); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return ErrNotFound
	}
	r.todos = append(r.todos[:i], r.todos[i+1:]...)
	return nil
}

func (r *MemoryTodoRepository) Toggle(ctx context.Context, id string) (model.Todo, error) {
	if err := validateMemoryID(id); err != nil {
		return model.Todo{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return model.Todo{}, ErrNotFound
	}
	r.todos[i].Completed = !r.todos[i].Completed
	return cloneTodo(r.todos[i]), nil
}

func (r *MemoryTodoRepository) Count(ctx context.Context, filter model.TodoFilter) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var n int64
	for _, t := range r.todos {
		if filter.Matches(t) {
			n++
		}
	}
	return n, nil
}

func (r *MemoryTodoRepository) Search(ctx context.Context, keyword string) ([]model.Todo, error) {
	needle := strings.ToLower(keyword)

	r.mu.RLock()
	defer r.mu.RUnlock()

	results := []model.Todo{}
	for _, t := range r.todos {
		if strings.Contains(strings.ToLower(t.Title), needle) ||
			(t.Description != nil && strings.Contains(strings.ToLower(*t.Description), needle)) {
			results = append(results, cloneTodo(t))
		}
	}
	return results, nil
}

// Len reports how many todos are currently stored.
func (r *MemoryTodoRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.todos)
}

// indexOf must be called with mu held.
func (r *MemoryTodoRepository) indexOf(id string) int {
	for i, t := range r.todos {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func validateMemoryID(id string) error {
	n, err := strconv.ParseUint(id, 10, 64)
	if err != nil || n == 0 {
		return ErrInvalidID
	}
	return nil
}

func cloneTodo(t model.Todo) model.Todo {
	t.Description = cloneString(t.Description)
	return t
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

var _ TodoRepository = (*MemoryTodoRepository)(nil)
