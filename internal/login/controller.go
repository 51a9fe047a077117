// Package login implements the login form, credential submission, logout and
// the logged-in check on top of a per-client session.
package login

import (
	"io"
	"net/http"

	"login-ui/internal/metrics"
	"login-ui/internal/session"

	log "github.com/sirupsen/logrus"
)

const (
	TemplateLoginForm     = "loginForm"
	SessionKeyUsername    = "username"
	BadCredentialsMessage = "bad username or password"
)

// Renderer turns a template id and its arguments into HTML.
type Renderer interface {
	Render(name string, args map[string]any) (string, error)
}

type CredentialChecker interface {
	Check(username, password string) bool
}

// ErrorView writes the response for a failed operation.
type ErrorView func(w http.ResponseWriter, r *http.Request, message string)

type Controller struct {
	renderer    Renderer
	credentials CredentialChecker
	sessions    session.Store
	home        http.Handler
	errorView   ErrorView
	metrics     *metrics.Manager
}

func NewController(
	renderer Renderer,
	credentials CredentialChecker,
	sessions session.Store,
	home http.Handler,
	errorView ErrorView,
	metricsManager *metrics.Manager,
) *Controller {
	return &Controller{
		renderer:    renderer,
		credentials: credentials,
		sessions:    sessions,
		home:        home,
		errorView:   errorView,
		metrics:     metricsManager,
	}
}

func (c *Controller) ShowLoginForm(w http.ResponseWriter, r *http.Request) {
	html, err := c.renderer.Render(TemplateLoginForm, map[string]any{})
	if err != nil {
		log.Errorf("login: render %s: %s", TemplateLoginForm, err)
		http.Error(w, "unable to render login form", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	io.WriteString(w, html)
}

// ProcessLogin checks the submitted username and password. On success the
// username is stored in the session and the home view runs; otherwise the
// error view runs and the session is left untouched.
func (c *Controller) ProcessLogin(w http.ResponseWriter, r *http.Request) {
	sess, r := c.sessionFor(r)

	var username, password string
	if err := r.ParseForm(); err != nil {
		log.Warnf("login: parse form: %s", err)
	} else {
		username = r.PostForm.Get("username")
		password = r.PostForm.Get("password")
	}

	if !c.credentials.Check(username, password) {
		log.Infof("login: rejected credentials for [%s]", username)
		c.countAttempt(false)
		c.errorView(w, r, BadCredentialsMessage)
		return
	}

	// a successful login never reuses an id issued before authentication
	sess.Renew()
	sess.Set(SessionKeyUsername, username)
	if err := c.sessions.Save(w, r, sess); err != nil {
		log.Errorf("login: save session for [%s]: %s", username, err)
		http.Error(w, "unable to create session", http.StatusInternalServerError)
		return
	}

	log.Infof("login: [%s] logged in", username)
	c.countAttempt(true)
	c.home.ServeHTTP(w, r)
}

// IsLoggedIn reports whether the client's session holds a username. The
// stored value is not re-validated.
func (c *Controller) IsLoggedIn(r *http.Request) bool {
	_, ok := c.Username(r)
	return ok
}

func (c *Controller) Username(r *http.Request) (string, bool) {
	sess, _ := c.sessionFor(r)
	return sess.Get(SessionKeyUsername)
}

// Logout discards the whole session and shows the home view.
func (c *Controller) Logout(w http.ResponseWriter, r *http.Request) {
	sess, r := c.sessionFor(r)

	username, _ := sess.Get(SessionKeyUsername)
	sess.Clear()
	if err := c.sessions.Save(w, r, sess); err != nil {
		log.Errorf("logout: clear session for [%s]: %s", username, err)
		http.Error(w, "unable to clear session", http.StatusInternalServerError)
		return
	}

	log.Infof("logout: [%s] logged out", username)
	if c.metrics != nil {
		c.metrics.Logout()
	}
	c.home.ServeHTTP(w, r)
}

// sessionFor returns the request's session, loading it from the store when
// session.Middleware did not run.
func (c *Controller) sessionFor(r *http.Request) (*session.Session, *http.Request) {
	if sess, ok := session.FromContext(r.Context()); ok {
		return sess, r
	}
	sess, err := c.sessions.Load(r)
	if err != nil {
		log.Warnf("login: load session: %s", err)
		sess = session.New()
	}
	return sess, r.WithContext(session.NewContext(r.Context(), sess))
}

func (c *Controller) countAttempt(ok bool) {
	if c.metrics != nil {
		c.metrics.LoginAttempt(ok)
	}
}
