package httpx

import (
	"io/fs"
	"log/slog"
	"net/http"
	"regexp"

	"blog/internal/app"
	"blog/internal/auth"
	"blog/internal/store"
	"blog/internal/util"
	"blog/web"
)

// PageSize is the number of posts on one listing page.
const PageSize = 10

type Server struct {
	Store *store.Store
	Auth  *auth.Manager
	Cfg   app.Config
	Log   *slog.Logger
	Mux   *http.ServeMux

	views   *util.Renderer
	handler http.Handler
}

func NewServer(s *store.Store, am *auth.Manager, cfg app.Config, log *slog.Logger) (*Server, error) {
	views, err := util.NewRenderer(web.Templates, "templates")
	if err != nil {
		return nil, err
	}
	static, err := fs.Sub(web.Static, "static")
	if err != nil {
		return nil, err
	}

	srv := &Server{Store: s, Auth: am, Cfg: cfg, Log: log, Mux: http.NewServeMux(), views: views}
	srv.routes(static)

	var h http.Handler = srv.withSession(srv.Mux)
	if cfg.RequestTimeout > 0 {
		h = WithTimeout(h, cfg.RequestTimeout)
	}
	h = srv.WithAccessLog(h)
	srv.handler = srv.WithRecover(h)
	return srv, nil
}

func (s *Server) routes(static fs.FS) {
	s.Mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(static)))

	s.Mux.HandleFunc("GET /{$}", s.handleHome)
	s.Mux.Handle("GET /posts/{$}", s.requireAuth(http.HandlerFunc(s.handleMyPosts)))
	s.Mux.HandleFunc("/login/{$}", s.handleLogin)
	s.Mux.HandleFunc("/logout/{$}", s.handleLogout)
	s.Mux.HandleFunc("/register/{$}", s.handleRegister)
	s.Mux.Handle("/posts/create/{$}", s.requireAuth(http.HandlerFunc(s.handlePostCreate)))
	s.Mux.HandleFunc("/posts/", s.handlePostRoutes)
	s.Mux.HandleFunc("GET /profile/{username}/{$}", s.handleProfile)
	s.Mux.Handle("POST /post/{id}/like/{$}", s.requireAuth(http.HandlerFunc(s.handleToggleLike)))
	s.Mux.Handle("POST /comment/{id}/like/{$}", s.requireAuth(http.HandlerFunc(s.handleToggleCommentLike)))
}

var (
	postDetailPath = regexp.MustCompile(`^/posts/detail/(\d+)/$`)
	postUpdatePath = regexp.MustCompile(`^/posts/(\d+)/update/$`)
	postDeletePath = regexp.MustCompile(`^/posts/(\d+)/delete/$`)
)

// handlePostRoutes dispatches the /posts/... routes whose patterns would
// overlap in a ServeMux (/posts/detail/{id}/ and /posts/{id}/update/).
func (s *Server) handlePostRoutes(w http.ResponseWriter, r *http.Request) {
	var (
		m    []string
		next http.Handler
	)
	switch {
	case postDetailPath.MatchString(r.URL.Path):
		m, next = postDetailPath.FindStringSubmatch(r.URL.Path), http.HandlerFunc(s.handlePostDetail)
	case postUpdatePath.MatchString(r.URL.Path):
		m, next = postUpdatePath.FindStringSubmatch(r.URL.Path), s.requireAuth(http.HandlerFunc(s.handlePostUpdate))
	case postDeletePath.MatchString(r.URL.Path):
		m, next = postDeletePath.FindStringSubmatch(r.URL.Path), s.requireAuth(http.HandlerFunc(s.handlePostDelete))
	case r.URL.Path == "/posts/":
		// GET has its own exact route
		s.methodNotAllowed(w, http.MethodGet, http.MethodHead)
		return
	default:
		s.notFound(w)
		return
	}
	if r.Method != http.MethodGet && r.Method != http.MethodHead && r.Method != http.MethodPost {
		s.methodNotAllowed(w, http.MethodGet, http.MethodPost)
		return
	}
	r.SetPathValue("id", m[1])
	next.ServeHTTP(w, r)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { s.handler.ServeHTTP(w, r) }
