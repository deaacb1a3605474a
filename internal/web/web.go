// Package web serves the HTML pages and static assets that sit in front of the JSON API.
// Templates and assets are embedded so the binary has no runtime file dependencies.
package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"strings"

	"github.com/todoapp/todo-api/internal/model"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

const (
	pageIndex = "index.html"
	pageTodos = "todos.html"
	pageItem  = "item.html"
)

// PageData is the model passed to every page template.
type PageData struct {
	Title      string
	Message    string
	ItemID     string
	Priorities []model.Priority
}

type Pages struct {
	templates map[string]*template.Template
	logger    *slog.Logger
}

func NewPages(logger *slog.Logger) (*Pages, error) {
	templates := make(map[string]*template.Template)
	for _, name := range []string{pageIndex, pageTodos, pageItem} {
		tmpl, err := template.ParseFS(templateFS, "templates/layout.html", "templates/"+name)
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", name, err)
		}
		templates[name] = tmpl
	}
	return &Pages{templates: templates, logger: logger}, nil
}

// ServeHTTP routes /, /todos and /items/{id}. Any other path is a 404.
func (p *Pages) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	switch {
	case r.URL.Path == "/":
		p.render(w, pageIndex, PageData{Title: "Home", Message: "Welcome to the Todo API"})
	case r.URL.Path == "/todos":
		p.render(w, pageTodos, PageData{Title: "Todos", Priorities: model.Priorities})
	case strings.HasPrefix(r.URL.Path, "/items/"):
		id := strings.TrimPrefix(r.URL.Path, "/items/")
		if id == "" || strings.Contains(id, "/") {
			http.NotFound(w, r)
			return
		}
		p.render(w, pageItem, PageData{Title: "Item " + id, ItemID: id})
	default:
		http.NotFound(w, r)
	}
}

func (p *Pages) render(w http.ResponseWriter, name string, data PageData) {
	var buf bytes.Buffer
	if err := p.templates[name].ExecuteTemplate(&buf, "layout", data); err != nil {
		p.logger.Error("failed to render page", "page", name, "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		p.logger.Error("failed to write page", "page", name, "error", err)
	}
}

// Static serves the embedded assets. Mount it under /static/.
func Static() http.Handler {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		// the embed pattern guarantees the directory exists
		panic(err)
	}
	return http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
}
