package httpui

import (
	"net/http"
	"strings"

	"login-ui/internal/auth"
	"login-ui/internal/config"
	"login-ui/internal/logging"
	"login-ui/internal/login"
	"login-ui/internal/metrics"
	"login-ui/internal/session"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type Server struct {
	cfg       *config.Config
	sessions  session.Store
	templates *Templates
	metrics   *metrics.Manager
	login     *login.Controller
}

func NewServer(cfg *config.Config, credentials *auth.Credentials, sessions session.Store, metricsManager *metrics.Manager) (*Server, error) {
	tmpls, err := ParseTemplates(cfg.BasePath)
	if err != nil {
		return nil, err
	}
	s := &Server{cfg: cfg, sessions: sessions, templates: tmpls, metrics: metricsManager}
	s.login = login.NewController(tmpls, credentials, sessions, http.HandlerFunc(s.homeView), s.errorView, metricsManager)
	return s, nil
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(logging.RequestLogger())
	r.Use(s.metrics.RequestMetrics())

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	r.Handle("/metrics", s.metrics.Handler())

	fs := http.FileServer(http.Dir(s.templates.staticDir))
	r.Handle("/static/*", http.StripPrefix("/static/", fs))

	r.Group(func(pr chi.Router) {
		pr.Use(session.Middleware(s.sessions))

		pr.Get("/", s.homeView)
		pr.Get("/login", s.login.ShowLoginForm)
		pr.Post("/login", s.login.ProcessLogin)
		pr.Get("/logout", s.login.Logout)
		pr.Post("/logout", s.login.Logout)

		pr.With(auth.RequireLogin(s.login.IsLoggedIn, s.path("/login"))).Get("/account", s.accountView)
	})

	if s.cfg.BasePath == "" {
		return r
	}

	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if trimmed, ok := s.stripBasePath(req.URL.Path); ok {
			clone := req.Clone(req.Context())
			clone.URL.Path = trimmed
			clone.URL.RawPath = ""
			if req.URL.RawQuery != "" {
				clone.RequestURI = trimmed + "?" + req.URL.RawQuery
			} else {
				clone.RequestURI = trimmed
			}
			r.ServeHTTP(w, clone)
			return
		}
		http.NotFound(w, req)
	})
}

func (s *Server) stripBasePath(p string) (string, bool) {
	base := s.cfg.BasePath
	if base == "" {
		return "", false
	}
	if p == base {
		return "/", true
	}
	if strings.HasPrefix(p, base+"/") {
		return strings.TrimPrefix(p, base), true
	}
	return "", false
}

func (s *Server) path(rel string) string {
	if !strings.HasPrefix(rel, "/") {
		rel = "/" + rel
	}
	base := s.cfg.BasePath
	if base == "" {
		return rel
	}
	if rel == "/" {
		return base
	}
	return base + rel
}

// CookiePath scopes session cookies to the mount point.
func CookiePath(cfg *config.Config) string {
	if cfg.BasePath == "" {
		return "/"
	}
	return cfg.BasePath
}
