package config

import (
	"crypto/rand"
	"fmt"
	"os"
	"path"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const defaultListenAddr = ":8080"
const defaultRedisAddr = "localhost:6379"
const defaultLogLevel = "info"
const secretLength = 32

const (
	BackendCookie = "cookie"
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type LogConfig struct {
	Level    string
	File     string
	ToStdout bool
	JSON     bool
}

type Config struct {
	ListenAddr     string
	BasePath       string
	UsersFile      string
	SessionBackend string
	SessionSecret  []byte
	SecureCookie   bool
	Redis          RedisConfig
	Log            LogConfig
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	backend := strings.ToLower(valueOrDefault("UI_SESSION_BACKEND", BackendCookie))
	switch backend {
	case BackendCookie, BackendMemory, BackendRedis:
	default:
		return nil, fmt.Errorf("invalid UI_SESSION_BACKEND: %q", backend)
	}

	secure, err := boolValue("UI_SECURE_COOKIE")
	if err != nil {
		return nil, err
	}

	sessionSecret, err := readSecret("UI_SESSION_SECRET")
	if err != nil {
		return nil, err
	}

	redisDB, err := strconv.Atoi(valueOrDefault("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	logToStdout, err := boolValue("LOG_TO_STDOUT")
	if err != nil {
		return nil, err
	}
	logJSON, err := boolValue("LOG_FORMAT_JSON")
	if err != nil {
		return nil, err
	}

	return &Config{
		ListenAddr:     valueOrDefault("UI_LISTEN_ADDR", defaultListenAddr),
		BasePath:       normalizeBasePath(os.Getenv("UI_BASE_PATH")),
		UsersFile:      os.Getenv("UI_USERS_FILE"),
		SessionBackend: backend,
		SessionSecret:  sessionSecret,
		SecureCookie:   secure,
		Redis: RedisConfig{
			Addr:     valueOrDefault("REDIS_ADDR", defaultRedisAddr),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Log: LogConfig{
			Level:    valueOrDefault("LOG_LEVEL", defaultLogLevel),
			File:     os.Getenv("LOG_FILE"),
			ToStdout: logToStdout,
			JSON:     logJSON,
		},
	}, nil
}

func valueOrDefault(key, def string) string {
	val := os.Getenv(key)
	if val == "" {
		return def
	}
	return val
}

func boolValue(key string) (bool, error) {
	val := os.Getenv(key)
	if val == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}

func readSecret(key string) ([]byte, error) {
	val := os.Getenv(key)
	if val != "" {
		return []byte(val), nil
	}
	buf := make([]byte, secretLength)
	_, err := rand.Read(buf)
	if err != nil {
		return nil, fmt.Errorf("generate secret: %w", err)
	}
	return buf, nil
}

func normalizeBasePath(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "/" {
		return ""
	}
	if !strings.HasPrefix(raw, "/") {
		raw = "/" + raw
	}
	clean := path.Clean(raw)
	if clean == "." || clean == "/" {
		return ""
	}
	return clean
}
