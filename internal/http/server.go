package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/todoapp/todo-api/internal/http/handler"
	"github.com/todoapp/todo-api/internal/middleware"
	"github.com/todoapp/todo-api/internal/service"
	"github.com/todoapp/todo-api/internal/web"
)

type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

func NewServer(port string, logger *slog.Logger, todoSvc *service.TodoService, db handler.Database) (*Server, error) {
	pages, err := web.NewPages(logger)
	if err != nil {
		return nil, fmt.Errorf("failed to load pages: %w", err)
	}

	router := NewRouter(todoSvc, db, pages)

	// Apply middleware chain: request id -> recovery -> logging -> router
	chain := middleware.RequestID()(
		middleware.Recovery(logger)(
			middleware.Logging(logger)(router),
		),
	)

	return &Server{
		httpServer: &http.Server{
			Addr:         fmt.Sprintf(":%s", port),
			Handler:      chain,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		logger: logger,
	}, nil
}

func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

func (s *Server) Start() error {
	s.logger.Info("starting server", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down server")
	return s.httpServer.Shutdown(ctx)
}
