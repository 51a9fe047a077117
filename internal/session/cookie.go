package session

import (
	"fmt"
	"net/http"

	"github.com/gorilla/sessions"
)

const cookieSessionName = "login-ui-session"

// CookieStore keeps session values client-side in a signed cookie.
type CookieStore struct {
	store *sessions.CookieStore
}

func NewCookieStore(secret []byte, opts CookieOptions) *CookieStore {
	store := sessions.NewCookieStore(secret)
	store.Options = &sessions.Options{
		Path:     cookiePath(opts),
		HttpOnly: true,
		Secure:   opts.Secure,
		SameSite: http.SameSiteLaxMode,
	}
	// browser-session cookie, no server-side age check
	store.MaxAge(0)
	return &CookieStore{store: store}
}

func (c *CookieStore) Load(r *http.Request) (*Session, error) {
	gs, err := c.store.New(r, cookieSessionName)
	if err != nil {
		return nil, fmt.Errorf("decode session cookie: %w", err)
	}
	sess := New()
	for k, v := range gs.Values {
		key, ok := k.(string)
		if !ok {
			continue
		}
		val, ok := v.(string)
		if !ok {
			continue
		}
		sess.values[key] = val
	}
	if !gs.IsNew {
		sess.ID = cookieSessionName
	}
	return sess, nil
}

func (c *CookieStore) Save(w http.ResponseWriter, r *http.Request, sess *Session) error {
	gs := sessions.NewSession(c.store, cookieSessionName)
	opts := *c.store.Options
	gs.Options = &opts
	if sess.Len() == 0 {
		if sess.ID == "" {
			return nil
		}
		gs.Options.MaxAge = -1
	}
	for k, v := range sess.values {
		gs.Values[k] = v
	}
	if err := c.store.Save(r, w, gs); err != nil {
		return fmt.Errorf("save session cookie: %w", err)
	}
	sess.renew = false
	if sess.Len() == 0 {
		sess.ID = ""
	} else {
		sess.ID = cookieSessionName
	}
	return nil
}
