package http

import (
	"net/http"

	"github.com/todoapp/todo-api/internal/http/handler"
	"github.com/todoapp/todo-api/internal/service"
	"github.com/todoapp/todo-api/internal/web"
)

func NewRouter(todoSvc *service.TodoService, db handler.Database, pages *web.Pages) http.Handler {
	mux := http.NewServeMux()

	mux.Handle("/api", handler.NewAPIRootHandler(db))
	mux.Handle("/api/health", handler.NewHealthHandler(db))
	mux.Handle("/api/db-info", handler.NewDBInfoHandler(db))
	mux.Handle("/api/stats", handler.NewStatsHandler(todoSvc))

	// Todo CRUD API, including /search and /{id}/toggle
	todoHandler := handler.NewTodoHandler(todoSvc)
	mux.Handle("/api/todos", todoHandler)
	mux.Handle("/api/todos/", todoHandler)

	// Unknown /api paths get the JSON envelope instead of falling through to the pages
	mux.HandleFunc("/api/", func(w http.ResponseWriter, r *http.Request) {
		handler.WriteError(w, http.StatusNotFound, "NOT_FOUND", "route not found")
	})

	mux.Handle("/static/", web.Static())
	mux.Handle("/", pages)

	return mux
}
