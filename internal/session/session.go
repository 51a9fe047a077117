package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"net/http"
	"sort"
	"time"

	log "github.com/sirupsen/logrus"
)

const idCookieName = "session"

// Session is the per-client key/value state carried across requests.
type Session struct {
	ID     string
	values map[string]string
	renew  bool
}

func New() *Session {
	return &Session{values: make(map[string]string)}
}

func (s *Session) Get(key string) (string, bool) {
	v, ok := s.values[key]
	return v, ok
}

func (s *Session) Set(key, value string) {
	s.values[key] = value
}

// Renew makes the next Save issue a fresh id and discard the record stored
// under the current one. Stores without a server-side id ignore it.
func (s *Session) Renew() {
	s.renew = true
}

// Clear drops every key, not just the authentication one.
func (s *Session) Clear() {
	s.values = make(map[string]string)
}

func (s *Session) Len() int {
	return len(s.values)
}

// Keys returns the stored keys in sorted order.
func (s *Session) Keys() []string {
	keys := make([]string, 0, len(s.values))
	for k := range s.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Store loads and persists sessions for a request.
type Store interface {
	Load(r *http.Request) (*Session, error)
	Save(w http.ResponseWriter, r *http.Request, sess *Session) error
}

type CookieOptions struct {
	Path   string
	Secure bool
}

type contextKey string

const sessionContextKey contextKey = "session"

// Middleware loads the client's session once per request and stores it in
// the request context. A session that cannot be loaded is replaced by an
// empty one.
func Middleware(store Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, err := store.Load(r)
			if err != nil {
				log.Warnf("session: load for %s failed, starting empty: %s", r.URL.Path, err)
				sess = New()
			}
			next.ServeHTTP(w, r.WithContext(NewContext(r.Context(), sess)))
		})
	}
}

func FromContext(ctx context.Context) (*Session, bool) {
	sess, ok := ctx.Value(sessionContextKey).(*Session)
	return sess, ok && sess != nil
}

func NewContext(ctx context.Context, sess *Session) context.Context {
	return context.WithValue(ctx, sessionContextKey, sess)
}

func setIDCookie(w http.ResponseWriter, id string, opts CookieOptions) {
	http.SetCookie(w, &http.Cookie{
		Name:     idCookieName,
		Value:    id,
		Path:     cookiePath(opts),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   opts.Secure,
	})
}

func clearIDCookie(w http.ResponseWriter, opts CookieOptions) {
	http.SetCookie(w, &http.Cookie{
		Name:     idCookieName,
		Value:    "",
		Path:     cookiePath(opts),
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
	})
}

func cookiePath(opts CookieOptions) string {
	if opts.Path == "" {
		return "/"
	}
	return opts.Path
}

func randomString() (string, error) {
	buf := make([]byte, 32)
	_, err := rand.Read(buf)
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
