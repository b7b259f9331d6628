package httpx

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"strings"
)

func (s *Server) serverError(w http.ResponseWriter, r *http.Request, err error) {
	s.Log.Error("server error",
		"method", r.Method,
		"path", r.URL.Path,
		"error", err.Error(),
		"stack", string(debug.Stack()),
	)
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

func (s *Server) clientError(w http.ResponseWriter, status int) {
	http.Error(w, http.StatusText(status), status)
}

func (s *Server) notFound(w http.ResponseWriter) {
	s.clientError(w, http.StatusNotFound)
}

func (s *Server) forbidden(w http.ResponseWriter) {
	s.clientError(w, http.StatusForbidden)
}

func (s *Server) methodNotAllowed(w http.ResponseWriter, methods ...string) {
	w.Header().Set("Allow", strings.Join(methods, ", "))
	s.clientError(w, http.StatusMethodNotAllowed)
}

// render writes a page, turning template failures into a 500.
func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, page string, data *pageData) {
	if data.User == nil {
		data.User = userFrom(r)
	}
	if err := s.views.Render(w, status, page, data); err != nil {
		s.serverError(w, r, fmt.Errorf("render: %w", err))
	}
}
