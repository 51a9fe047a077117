package session

import (
	"fmt"
	"net/http"
	"sync"
)

// MemoryStore keeps session values in process memory, keyed by a random id
// held in an HttpOnly cookie.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]map[string]string
	cookie   CookieOptions
}

func NewMemoryStore(opts CookieOptions) *MemoryStore {
	return &MemoryStore{sessions: make(map[string]map[string]string), cookie: opts}
}

func (s *MemoryStore) Load(r *http.Request) (*Session, error) {
	cookie, err := r.Cookie(idCookieName)
	if err != nil || cookie.Value == "" {
		return New(), nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.sessions[cookie.Value]
	if !ok {
		return New(), nil
	}
	sess := New()
	sess.ID = cookie.Value
	for k, v := range stored {
		sess.values[k] = v
	}
	return sess, nil
}

func (s *MemoryStore) Save(w http.ResponseWriter, r *http.Request, sess *Session) error {
	if sess.Len() == 0 {
		if sess.ID != "" {
			s.Delete(sess.ID)
			clearIDCookie(w, s.cookie)
			sess.ID = ""
		}
		return nil
	}
	if sess.ID == "" || sess.renew {
		id, err := randomString()
		if err != nil {
			return fmt.Errorf("generate session id: %w", err)
		}
		if sess.ID != "" {
			s.Delete(sess.ID)
		}
		sess.ID = id
		sess.renew = false
	}
	stored := make(map[string]string, sess.Len())
	for k, v := range sess.values {
		stored[k] = v
	}
	s.mu.Lock()
	s.sessions[sess.ID] = stored
	s.mu.Unlock()
	setIDCookie(w, sess.ID, s.cookie)
	return nil
}

func (s *MemoryStore) Delete(id string) {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
}

func (s *MemoryStore) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
