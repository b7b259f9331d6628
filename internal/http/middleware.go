package httpx

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"blog/internal/auth"
	"blog/internal/models"
)

var requestCounter, _ = otel.Meter("blog/internal/http").Int64Counter(
	"blog.http.requests",
	metric.WithDescription("HTTP requests served, by method and status"),
)

func userFrom(r *http.Request) *models.User { return auth.UserFrom(r.Context()) }

func (s *Server) withSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := r.Cookie(auth.CookieName)
		if err != nil || c.Value == "" {
			next.ServeHTTP(w, r)
			return
		}
		u, err := s.Auth.UserFromSession(r.Context(), c.Value)
		switch {
		case err == nil:
			r = r.WithContext(auth.WithUser(r.Context(), u))
		case errors.Is(err, auth.ErrNoSession):
			s.Auth.ClearCookie(w)
		default:
			s.Log.Warn("session lookup failed", "error", err)
		}
		next.ServeHTTP(w, r)
	})
}

// requireAuth sends anonymous callers to the login page, remembering
// where they were going.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := auth.UserIDFrom(r.Context()); !ok {
			http.Redirect(w, r, "/login/?next="+url.QueryEscape(r.URL.RequestURI()), http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type statusRW struct {
	http.ResponseWriter
	status int
}

func (w *statusRW) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// WithAccessLog logs METHOD PATH -> STATUS (duration) per request.
func (s *Server) WithAccessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusRW{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)
		d := time.Since(start)
		requestCounter.Add(r.Context(), 1, metric.WithAttributes(
			attribute.String("http.method", r.Method),
			attribute.String("http.status_class", strconv.Itoa(sw.status/100)+"xx"),
		))
		s.Log.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", sw.status,
			"duration", d.Truncate(time.Microsecond),
		)
	})
}

func (s *Server) WithRecover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				w.Header().Set("Connection", "close")
				s.serverError(w, r, fmt.Errorf("panic: %v", rec))
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func WithTimeout(next http.Handler, d time.Duration) http.Handler {
	return http.TimeoutHandler(next, d, "request timeout")
}
