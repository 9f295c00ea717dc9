package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/kraig-tester/Simple-blog-website/internal/log"
)

const (
	SessionBackendSQLite = "sqlite"
	SessionBackendRedis  = "redis"
)

type Config struct {
	IsDev          bool
	Addr           string
	Port           string
	SignKey        []byte
	DBPath         string
	AdminEmails    []string
	SessionBackend string
	SessionTTL     time.Duration
	RedisAddr      string
	RedisPassword  string
}

// Load reads the environment, after merging in a .env file if one exists.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Warn.Print("No .env file found")
	}

	ttl, err := time.ParseDuration(getenv("SESSION_TTL", "24h"))
	if err != nil {
		return nil, fmt.Errorf("SESSION_TTL: %w", err)
	}

	cfg := &Config{
		IsDev:          os.Getenv("GO_ENV") == "development",
		Addr:           getenv("SERVER_ADDR", "localhost"),
		Port:           fmt.Sprintf(":%s", getenv("SERVER_PORT", "5000")),
		SignKey:        []byte(os.Getenv("SIGN_KEY")),
		DBPath:         getenv("DB_PATH", "./posts.db"),
		AdminEmails:    splitList(os.Getenv("ADMIN_EMAILS")),
		SessionBackend: getenv("SESSION_BACKEND", SessionBackendSQLite),
		SessionTTL:     ttl,
		RedisAddr:      getenv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:  os.Getenv("REDIS_PASSWORD"),
	}

	switch cfg.SessionBackend {
	case SessionBackendSQLite, SessionBackendRedis:
	default:
		return nil, fmt.Errorf("unknown SESSION_BACKEND %q", cfg.SessionBackend)
	}

	if len(cfg.SignKey) == 0 {
		if !cfg.IsDev {
			return nil, errors.New("SIGN_KEY must be set outside development")
		}
		log.Warn.Print("SIGN_KEY not set, using an insecure development key")
		cfg.SignKey = []byte("development-sign-key")
	}

	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
