package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"login-ui/internal/auth"
	"login-ui/internal/config"
	"login-ui/internal/httpui"
	"login-ui/internal/logging"
	"login-ui/internal/metrics"
	"login-ui/internal/session"

	"github.com/go-redis/redis/v8"
	log "github.com/sirupsen/logrus"
)

var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	logging.Setup(logging.LoggerSetupParams{
		LogFileName:   cfg.Log.File,
		LogToStdout:   cfg.Log.ToStdout,
		LogLevel:      cfg.Log.Level,
		LogFormatJSON: cfg.Log.JSON,
	})

	credentials, err := auth.LoadCredentials(cfg.UsersFile)
	if err != nil {
		log.Fatal(err)
	}

	sessions, closeSessions, err := newSessionStore(cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer closeSessions()

	metricsManager := metrics.NewManager("login_ui", "server", metrics.SetupPrometheus())

	srv, err := httpui.NewServer(cfg, credentials, sessions, metricsManager)
	if err != nil {
		log.Fatal(err)
	}

	httpServer := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      srv.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	chOsInterrupt := make(chan os.Signal, 1)
	signal.Notify(chOsInterrupt, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Infof("login-ui %s listening on %s (session backend: %s)", version, cfg.ListenAddr, cfg.SessionBackend)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	<-chOsInterrupt
	log.Warnln("os interrupt received, shutting down ...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		log.Errorf("shutdown: %s", err)
	}
}

func newSessionStore(cfg *config.Config) (session.Store, func(), error) {
	opts := session.CookieOptions{
		Path:   httpui.CookiePath(cfg),
		Secure: cfg.SecureCookie,
	}

	switch cfg.SessionBackend {
	case config.BackendMemory:
		return session.NewMemoryStore(opts), func() {}, nil
	case config.BackendRedis:
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := rdb.Ping(ctx).Err(); err != nil {
			rdb.Close()
			return nil, nil, err
		}
		return session.NewRedisStore(rdb, opts), func() {
			if err := rdb.Close(); err != nil {
				log.Errorf("close redis: %s", err)
			}
		}, nil
	default:
		return session.NewCookieStore(cfg.SessionSecret, opts), func() {}, nil
	}
}
