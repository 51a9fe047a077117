package httpui

import (
	"io"
	"net/http"

	log "github.com/sirupsen/logrus"
)

func (s *Server) homeView(w http.ResponseWriter, r *http.Request) {
	username, loggedIn := s.login.Username(r)
	s.renderPage(w, "home", map[string]any{
		"Username": username,
		"LoggedIn": loggedIn,
	})
}

func (s *Server) errorView(w http.ResponseWriter, r *http.Request, message string) {
	s.renderPage(w, "error", map[string]any{"Message": message})
}

func (s *Server) accountView(w http.ResponseWriter, r *http.Request) {
	username, _ := s.login.Username(r)
	s.renderPage(w, "account", map[string]any{"Username": username})
}

func (s *Server) renderPage(w http.ResponseWriter, name string, args map[string]any) {
	html, err := s.templates.Render(name, args)
	if err != nil {
		log.Errorf("render %s: %s", name, err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	io.WriteString(w, html)
}
