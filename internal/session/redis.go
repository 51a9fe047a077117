package session

import (
	"fmt"
	"net/http"

	"github.com/go-redis/redis/v8"
)

const redisKeyPrefix = "login-ui-session||"

// RedisStore keeps session values in a redis hash per session id.
type RedisStore struct {
	redisClient *redis.Client
	cookie      CookieOptions
	// ability to inject the id generator (for unit testing)
	NewIDFunc func() (string, error)
}

func NewRedisStore(redisClient *redis.Client, opts CookieOptions) *RedisStore {
	return &RedisStore{
		redisClient: redisClient,
		cookie:      opts,
		NewIDFunc:   randomString,
	}
}

func (s *RedisStore) Load(r *http.Request) (*Session, error) {
	cookie, err := r.Cookie(idCookieName)
	if err != nil || cookie.Value == "" {
		return New(), nil
	}

	cmd := s.redisClient.HGetAll(r.Context(), redisKeyPrefix+cookie.Value)
	if err := cmd.Err(); err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}

	stored := cmd.Val()
	sess := New()
	if len(stored) == 0 {
		return sess, nil
	}
	sess.ID = cookie.Value
	for k, v := range stored {
		sess.values[k] = v
	}
	return sess, nil
}

func (s *RedisStore) Save(w http.ResponseWriter, r *http.Request, sess *Session) error {
	ctx := r.Context()

	if sess.Len() == 0 {
		if sess.ID == "" {
			return nil
		}
		if err := s.redisClient.Del(ctx, redisKeyPrefix+sess.ID).Err(); err != nil {
			return fmt.Errorf("delete session: %w", err)
		}
		clearIDCookie(w, s.cookie)
		sess.ID = ""
		return nil
	}

	previousID := sess.ID
	if sess.ID == "" || sess.renew {
		id, err := s.NewIDFunc()
		if err != nil {
			return fmt.Errorf("generate session id: %w", err)
		}
		sess.ID = id
	}

	key := redisKeyPrefix + sess.ID
	// replace the whole hash so keys removed from the session disappear
	_, err := s.redisClient.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		if previousID != "" && previousID != sess.ID {
			pipe.Del(ctx, redisKeyPrefix+previousID)
		}
		pipe.Del(ctx, key)
		pipe.HSet(ctx, key, hashArgs(sess)...)
		return nil
	})
	if err != nil {
		sess.ID = previousID
		return fmt.Errorf("store session: %w", err)
	}
	sess.renew = false
	setIDCookie(w, sess.ID, s.cookie)
	return nil
}

func hashArgs(sess *Session) []interface{} {
	keys := sess.Keys()
	args := make([]interface{}, 0, 2*len(keys))
	for _, k := range keys {
		args = append(args, k, sess.values[k])
	}
	return args
}
