package httpui

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"login-ui/internal/auth"
	"login-ui/internal/config"
	"login-ui/internal/metrics"
	"login-ui/internal/session"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	srv     *Server
	router  http.Handler
	store   *session.MemoryStore
	metrics *metrics.Manager
}

func newTestServer(t *testing.T, basePath string) *testEnv {
	t.Helper()
	cfg := &config.Config{
		ListenAddr:     ":0",
		BasePath:       basePath,
		SessionBackend: config.BackendMemory,
		SessionSecret:  []byte("secret"),
	}
	store := session.NewMemoryStore(session.CookieOptions{Path: CookiePath(cfg)})
	m := metrics.NewTestManager()
	srv, err := NewServer(cfg, auth.DefaultCredentials(), store, m)
	require.NoError(t, err)
	return &testEnv{srv: srv, router: srv.Router(), store: store, metrics: m}
}

func (e *testEnv) do(t *testing.T, req *http.Request, cookies []*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func postLogin(path, username, password string) *http.Request {
	form := url.Values{"username": {username}, "password": {password}}
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestLoginFormRenders(t *testing.T) {
	env := newTestServer(t, "")

	rec := env.do(t, httptest.NewRequest(http.MethodGet, "/login", nil), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `action="/login"`)
	assert.Contains(t, body, `name="username"`)
	assert.Contains(t, body, `name="password"`)
	assert.Contains(t, body, "<title>Login · login-ui</title>")
}

func TestLoginSuccessShowsHomeAndPersistsSession(t *testing.T) {
	env := newTestServer(t, "")

	rec := env.do(t, postLogin("/login", "matt", "smith"), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Welcome, matt.")
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, 1, env.store.Count())

	home := env.do(t, httptest.NewRequest(http.MethodGet, "/", nil), cookies)
	assert.Contains(t, home.Body.String(), "Welcome, matt.")

	account := env.do(t, httptest.NewRequest(http.MethodGet, "/account", nil), cookies)
	require.Equal(t, http.StatusOK, account.Code)
	assert.Contains(t, account.Body.String(), "<strong>matt</strong>")

	assert.Equal(t, float64(1), testutil.ToFloat64(env.metrics.CounterLoginAttempts.WithLabelValues(metrics.ResultSuccess)))
}

func TestLoginFailureShowsError(t *testing.T) {
	env := newTestServer(t, "")

	rec := env.do(t, postLogin("/login", "Matt", "smith"), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "bad username or password")
	assert.NotContains(t, rec.Body.String(), "Welcome")
	assert.Empty(t, rec.Result().Cookies())
	assert.Equal(t, 0, env.store.Count())
}

func TestLogoutClearsSession(t *testing.T) {
	env := newTestServer(t, "")

	login := env.do(t, postLogin("/login", "admin", "admin"), nil)
	cookies := login.Result().Cookies()
	require.Len(t, cookies, 1)

	logout := env.do(t, httptest.NewRequest(http.MethodPost, "/logout", nil), cookies)
	require.Equal(t, http.StatusOK, logout.Code)
	assert.Contains(t, logout.Body.String(), "You are not logged in.")
	assert.Equal(t, 0, env.store.Count())

	account := env.do(t, httptest.NewRequest(http.MethodGet, "/account", nil), cookies)
	assert.Equal(t, http.StatusFound, account.Code)
	assert.Equal(t, "/login", account.Header().Get("Location"))
}

func TestCookieBackendLoginLogoutFlow(t *testing.T) {
	cfg := &config.Config{
		ListenAddr:     ":0",
		SessionBackend: config.BackendCookie,
		SessionSecret:  []byte("secret"),
	}
	store := session.NewCookieStore(cfg.SessionSecret, session.CookieOptions{Path: CookiePath(cfg)})
	srv, err := NewServer(cfg, auth.DefaultCredentials(), store, metrics.NewTestManager())
	require.NoError(t, err)
	env := &testEnv{srv: srv, router: srv.Router(), metrics: srv.metrics}

	login := env.do(t, postLogin("/login", "matt", "smith"), nil)
	require.Equal(t, http.StatusOK, login.Code)
	assert.Contains(t, login.Body.String(), "Welcome, matt.")
	cookies := login.Result().Cookies()
	require.Len(t, cookies, 1)

	home := env.do(t, httptest.NewRequest(http.MethodGet, "/", nil), cookies)
	assert.Contains(t, home.Body.String(), "Welcome, matt.")

	logout := env.do(t, httptest.NewRequest(http.MethodPost, "/logout", nil), cookies)
	require.Equal(t, http.StatusOK, logout.Code)
	assert.Contains(t, logout.Body.String(), "You are not logged in.")
	expired := logout.Result().Cookies()
	require.Len(t, expired, 1)
	assert.Equal(t, -1, expired[0].MaxAge)

	// a browser discards the expired cookie
	account := env.do(t, httptest.NewRequest(http.MethodGet, "/account", nil), nil)
	assert.Equal(t, http.StatusFound, account.Code)
	assert.Equal(t, "/login", account.Header().Get("Location"))

	// the value written with the expiry carries no login either
	replay := env.do(t, httptest.NewRequest(http.MethodGet, "/account", nil), []*http.Cookie{{Name: expired[0].Name, Value: expired[0].Value}})
	assert.Equal(t, http.StatusFound, replay.Code)
}

func TestStaticAssetsServed(t *testing.T) {
	env := newTestServer(t, "")

	rec := env.do(t, httptest.NewRequest(http.MethodGet, "/static/app.css", nil), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Body.String())
}

func TestAccountRequiresLogin(t *testing.T) {
	env := newTestServer(t, "")

	rec := env.do(t, httptest.NewRequest(http.MethodGet, "/account", nil), nil)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
}

func TestHomeAnonymous(t *testing.T) {
	env := newTestServer(t, "")

	rec := env.do(t, httptest.NewRequest(http.MethodGet, "/", nil), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "You are not logged in.")
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
}

func TestBasePathRouting(t *testing.T) {
	env := newTestServer(t, "/portal")

	form := env.do(t, httptest.NewRequest(http.MethodGet, "/portal/login", nil), nil)
	require.Equal(t, http.StatusOK, form.Code)
	assert.Contains(t, form.Body.String(), `action="/portal/login"`)

	login := env.do(t, postLogin("/portal/login", "matt", "smith"), nil)
	require.Equal(t, http.StatusOK, login.Code)
	cookies := login.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "/portal", cookies[0].Path)

	anon := env.do(t, httptest.NewRequest(http.MethodGet, "/portal/account", nil), nil)
	assert.Equal(t, http.StatusFound, anon.Code)
	assert.Equal(t, "/portal/login", anon.Header().Get("Location"))

	outside := env.do(t, httptest.NewRequest(http.MethodGet, "/login", nil), nil)
	assert.Equal(t, http.StatusNotFound, outside.Code)
}

func TestHealthAndMetrics(t *testing.T) {
	env := newTestServer(t, "")

	assert.Equal(t, http.StatusOK, env.do(t, httptest.NewRequest(http.MethodGet, "/healthz", nil), nil).Code)
	assert.Equal(t, http.StatusOK, env.do(t, httptest.NewRequest(http.MethodGet, "/readyz", nil), nil).Code)

	env.do(t, postLogin("/login", "x", "y"), nil)
	rec := env.do(t, httptest.NewRequest(http.MethodGet, "/metrics", nil), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `login_ui_test_login_attempts_total{result="failure"} 1`)
}

func TestTemplatesRenderUnknown(t *testing.T) {
	tmpls, err := ParseTemplates("")
	require.NoError(t, err)

	_, err = tmpls.Render("nope", map[string]any{})
	assert.Error(t, err)
	_, err = tmpls.Render("layout", map[string]any{})
	assert.Error(t, err)

	html, err := tmpls.Render("error", map[string]any{"Message": "<b>boom</b>", "Title": "Oops"})
	require.NoError(t, err)
	assert.Contains(t, html, "&lt;b&gt;boom&lt;/b&gt;")
	assert.Contains(t, html, "<title>Oops · login-ui</title>")
}
