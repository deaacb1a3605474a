package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/todoapp/todo-api/internal/model"
	"github.com/todoapp/todo-api/internal/repository"
)

type CreateTodoInput struct {
	Title       string         `json:"title" validate:"required"`
	Description *string        `json:"description"`
	Completed   bool           `json:"completed"`
	Priority    model.Priority `json:"priority" validate:"omitempty,oneof=high medium low"`
}

type UpdateTodoInput struct {
	Title       *string         `json:"title" validate:"omitnil,min=1"`
	Description *string         `json:"description"`
	Completed   *bool           `json:"completed"`
	Priority    *model.Priority `json:"priority" validate:"omitnil,oneof=high medium low"`
}

func (in UpdateTodoInput) patch() model.TodoPatch {
	return model.TodoPatch{
		Title:       in.Title,
		Description: in.Description,
		Completed:   in.Completed,
		Priority:    in.Priority,
	}
}

type ListTodosInput struct {
	Completed *bool
	Priority  *model.Priority `json:"priority" validate:"omitnil,oneof=high medium low"`
	Limit     int
}

type TodoService struct {
	repo repository.TodoRepository
}

func NewTodoService(repo repository.TodoRepository) *TodoService {
	return &TodoService{repo: repo}
}

func (s *TodoService) Create(ctx context.Context, input CreateTodoInput) (model.Todo, error) {
	if err := validateInput(input); err != nil {
		return model.Todo{}, err
	}

	priority := input.Priority
	if priority == "" {
		priority = model.PriorityMedium
	}

	todo := model.Todo{
		Title:       input.Title,
		Description: input.Description,
		Completed:   input.Completed,
		Priority:    priority,
	}

	created, err := s.repo.Create(ctx, todo)
	if err != nil {
		return model.Todo{}, mapRepositoryError(err, "create todo")
	}
	return created, nil
}

func (s *TodoService) List(ctx context.Context, input ListTodosInput) ([]model.Todo, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	filter := model.TodoFilter{Completed: input.Completed, Priority: input.Priority}
	todos, err := s.repo.List(ctx, filter, input.Limit)
	if err != nil {
		return nil, mapRepositoryError(err, "list todos")
	}
	return todos, nil
}

func (s *TodoService) GetByID(ctx context.Context, id string) (model.Todo, error) {
	todo, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return model.Todo{}, mapRepositoryError(err, "get todo")
	}
	return todo, nil
}

func (s *TodoService) Update(ctx context.Context, id string, input UpdateTodoInput) (model.Todo, error) {
	patch := input.patch()
	if patch.IsEmpty() {
		return model.Todo{}, ErrNoFieldsToUpdate
	}
	if err := validateInput(input); err != nil {
		return model.Todo{}, err
	}

	updated, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		return model.Todo{}, mapRepositoryError(err, "update todo")
	}
	return updated, nil
}

func (s *TodoService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return mapRepositoryError(err, "delete todo")
	}
	return nil
}

func (s *TodoService) Toggle(ctx context.Context, id string) (model.Todo, error) {
	todo, err := s.repo.Toggle(ctx, id)
	if err != nil {
		return model.Todo{}, mapRepositoryError(err, "toggle todo")
	}
	return todo, nil
}

func (s *TodoService) Search(ctx context.Context, keyword string) ([]model.Todo, error) {
	if strings.TrimSpace(keyword) == "" {
		return nil, fmt.Errorf("%w: keyword is required", ErrInvalidInput)
	}

	results, err := s.repo.Search(ctx, keyword)
	if err != nil {
		return nil, mapRepositoryError(err, "search todos")
	}
	return results, nil
}

// Stats issues one count per bucket, so the numbers are not a single snapshot
// when writes race with the call.
func (s *TodoService) Stats(ctx context.Context) (model.TodoStats, error) {
	completed := true
	high, medium, low := model.PriorityHigh, model.PriorityMedium, model.PriorityLow

	var stats model.TodoStats
	counts := []struct {
		dst    *int64
		filter model.TodoFilter
	}{
		{&stats.Total, model.TodoFilter{}},
		{&stats.Completed, model.TodoFilter{Completed: &completed}},
		{&stats.ByPriority.High, model.TodoFilter{Priority: &high}},
		{&stats.ByPriority.Medium, model.TodoFilter{Priority: &medium}},
		{&stats.ByPriority.Low, model.TodoFilter{Priority: &low}},
	}

	for _, c := range counts {
		n, err := s.repo.Count(ctx, c.filter)
		if err != nil {
			return model.TodoStats{}, mapRepositoryError(err, "count todos")
		}
		*c.dst = n
	}

	stats.Pending = stats.Total - stats.Completed
	return stats, nil
}

func mapRepositoryError(err error, action string) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, repository.ErrInvalidID):
		return ErrInvalidID
	case errors.Is(err, repository.ErrNoFieldsToUpdate):
		return ErrNoFieldsToUpdate
	default:
		return fmt.Errorf("failed to %s: %w", action, err)
	}
}
