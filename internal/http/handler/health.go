package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/todoapp/todo-api/internal/backend"
)

// Database reports on the storage medium selected at startup.
type Database interface {
	Status(ctx context.Context) string
	Info(ctx context.Context) backend.Info
}

type HealthHandler struct {
	db  Database
	now func() time.Time
}

func NewHealthHandler(db Database) *HealthHandler {
	return &HealthHandler{db: db, now: time.Now}
}

type healthResponse struct {
	Status    string `json:"status"`
	Database  string `json:"database"`
	Timestamp string `json:"timestamp"`
}

// ServeHTTP always answers healthy; the database field carries the medium's state.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		WriteError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "only GET is allowed")
		return
	}

	WriteJSON(w, http.StatusOK, healthResponse{
		Status:    "healthy",
		Database:  h.db.Status(r.Context()),
		Timestamp: h.now().UTC().Format(time.RFC3339Nano),
	})
}

type DBInfoHandler struct {
	db Database
}

func NewDBInfoHandler(db Database) *DBInfoHandler {
	return &DBInfoHandler{db: db}
}

func (h *DBInfoHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		WriteError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "only GET is allowed")
		return
	}

	WriteJSON(w, http.StatusOK, h.db.Info(r.Context()))
}
