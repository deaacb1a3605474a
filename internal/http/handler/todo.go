package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/todoapp/todo-api/internal/middleware"
	"github.com/todoapp/todo-api/internal/model"
	"github.com/todoapp/todo-api/internal/service"
)

const (
	msgCreated = "Todo created successfully"
	msgUpdated = "Todo updated successfully"
	msgDeleted = "Todo deleted successfully"
	msgToggled = "Todo status toggled"
)

type TodoHandler struct {
	svc *service.TodoService
}

func NewTodoHandler(svc *service.TodoService) *TodoHandler {
	return &TodoHandler{svc: svc}
}

// ServeHTTP routes /api/todos, /api/todos/search, /api/todos/{id} and /api/todos/{id}/toggle
func (h *TodoHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/todos")
	path = strings.Trim(path, "/")

	parts := strings.SplitN(path, "/", 2)
	todoID := parts[0]
	subPath := ""
	if len(parts) > 1 {
		subPath = parts[1]
	}

	// /api/todos/search
	if todoID == "search" && subPath == "" {
		if r.Method != http.MethodGet {
			writeMethodNotAllowed(w, http.MethodGet)
			return
		}
		h.handleSearch(w, r)
		return
	}

	// /api/todos/{id}/toggle
	if todoID != "" && subPath == "toggle" {
		if r.Method != http.MethodPatch {
			writeMethodNotAllowed(w, http.MethodPatch)
			return
		}
		h.handleToggle(w, r, todoID)
		return
	}

	if subPath != "" {
		WriteError(w, http.StatusNotFound, "NOT_FOUND", "route not found")
		return
	}

	// /api/todos/{id}
	if todoID != "" {
		switch r.Method {
		case http.MethodGet:
			h.handleGetByID(w, r, todoID)
		case http.MethodPut:
			h.handleUpdate(w, r, todoID)
		case http.MethodDelete:
			h.handleDelete(w, r, todoID)
		default:
			writeMethodNotAllowed(w, http.MethodGet, http.MethodPut, http.MethodDelete)
		}
		return
	}

	// /api/todos
	switch r.Method {
	case http.MethodGet:
		h.handleList(w, r)
	case http.MethodPost:
		h.handleCreate(w, r)
	default:
		writeMethodNotAllowed(w, http.MethodGet, http.MethodPost)
	}
}

func (h *TodoHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var input service.CreateTodoInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		WriteError(w, http.StatusBadRequest, "INVALID_JSON", "invalid request body")
		return
	}

	todo, err := h.svc.Create(r.Context(), input)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	WriteJSON(w, http.StatusOK, MessageResponse{Message: msgCreated, Todo: &todo})
}

type listTodosResponse struct {
	Total int          `json:"total"`
	Todos []model.Todo `json:"todos"`
}

func (h *TodoHandler) handleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var input service.ListTodosInput

	if v := q.Get("completed"); v != "" {
		completed, err := strconv.ParseBool(v)
		if err != nil {
			WriteError(w, http.StatusBadRequest, "INVALID_INPUT", "completed must be true or false")
			return
		}
		input.Completed = &completed
	}

	if v := q.Get("priority"); v != "" {
		priority := model.Priority(v)
		input.Priority = &priority
	}

	if v := q.Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil {
			WriteError(w, http.StatusBadRequest, "INVALID_INPUT", "limit must be an integer")
			return
		}
		input.Limit = limit
	}

	todos, err := h.svc.List(r.Context(), input)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	WriteJSON(w, http.StatusOK, listTodosResponse{Total: len(todos), Todos: todos})
}

func (h *TodoHandler) handleGetByID(w http.ResponseWriter, r *http.Request, todoID string) {
	todo, err := h.svc.GetByID(r.Context(), todoID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	WriteJSON(w, http.StatusOK, todo)
}

func (h *TodoHandler) handleUpdate(w http.ResponseWriter, r *http.Request, todoID string) {
	var input service.UpdateTodoInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		WriteError(w, http.StatusBadRequest, "INVALID_JSON", "invalid request body")
		return
	}

	todo, err := h.svc.Update(r.Context(), todoID, input)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	WriteJSON(w, http.StatusOK, MessageResponse{Message: msgUpdated, Todo: &todo})
}

func (h *TodoHandler) handleDelete(w http.ResponseWriter, r *http.Request, todoID string) {
	if err := h.svc.Delete(r.Context(), todoID); err != nil {
		handleServiceError(w, r, err)
		return
	}

	WriteJSON(w, http.StatusOK, MessageResponse{Message: msgDeleted})
}

func (h *TodoHandler) handleToggle(w http.ResponseWriter, r *http.Request, todoID string) {
	todo, err := h.svc.Toggle(r.Context(), todoID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	WriteJSON(w, http.StatusOK, MessageResponse{Message: msgToggled, Todo: &todo})
}

type searchResponse struct {
	Keyword string       `json:"keyword"`
	Count   int          `json:"count"`
	Results []model.Todo `json:"results"`
}

func (h *TodoHandler) handleSearch(w http.ResponseWriter, r *http.Request) {
	keyword := r.URL.Query().Get("keyword")

	results, err := h.svc.Search(r.Context(), keyword)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	WriteJSON(w, http.StatusOK, searchResponse{Keyword: keyword, Count: len(results), Results: results})
}

func handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		WriteError(w, http.StatusNotFound, "NOT_FOUND", "Todo not found")
	case errors.Is(err, service.ErrInvalidID):
		WriteError(w, http.StatusBadRequest, "INVALID_ID", "Invalid todo ID")
	case errors.Is(err, service.ErrNoFieldsToUpdate):
		WriteError(w, http.StatusBadRequest, "NO_FIELDS_TO_UPDATE", "No fields to update")
	case errors.Is(err, service.ErrInvalidInput):
		WriteError(w, http.StatusBadRequest, "INVALID_INPUT", err.Error())
	default:
		slog.ErrorContext(r.Context(), "request failed",
			"request_id", middleware.GetRequestID(r),
			"error", err,
		)
		WriteError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	}
}
