package handler

import (
	"net/http"

	"github.com/todoapp/todo-api/internal/service"
)

type apiRootResponse struct {
	Message        string            `json:"message"`
	DatabaseStatus string            `json:"database_status"`
	Endpoints      map[string]string `json:"endpoints"`
}

var apiEndpoints = map[string]string{
	"todos":   "/api/todos",
	"search":  "/api/todos/search?keyword=",
	"stats":   "/api/stats",
	"health":  "/api/health",
	"db_info": "/api/db-info",
}

// APIRootHandler describes the API at GET /api.
type APIRootHandler struct {
	db Database
}

func NewAPIRootHandler(db Database) *APIRootHandler {
	return &APIRootHandler{db: db}
}

func (h *APIRootHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		WriteError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "only GET is allowed")
		return
	}

	WriteJSON(w, http.StatusOK, apiRootResponse{
		Message:        "Todo API",
		DatabaseStatus: h.db.Status(r.Context()),
		Endpoints:      apiEndpoints,
	})
}

type StatsHandler struct {
	svc *service.TodoService
}

func NewStatsHandler(svc *service.TodoService) *StatsHandler {
	return &StatsHandler{svc: svc}
}

func (h *StatsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		WriteError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "only GET is allowed")
		return
	}

	stats, err := h.svc.Stats(r.Context())
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	WriteJSON(w, http.StatusOK, stats)
}
