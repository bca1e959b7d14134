package config

import (
	"os"
	"time"
)

// Server captures process-level configuration.
type Server struct {
	Addr            string
	DatabaseURL     string
	RedisURL        string
	ShutdownTimeout time.Duration
}

// SummaryCacheTTL bounds staleness of the cached report summary.
var SummaryCacheTTL = 5 * time.Minute

// FromEnv builds a Server config from environment variables so main stays
// lean. An empty DATABASE_URL selects the in-memory stores; an empty
// REDIS_URL disables the report cache.
func FromEnv() Server {
	addr := os.Getenv("PONTOS_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	shutdown := 10 * time.Second
	if raw := os.Getenv("PONTOS_SHUTDOWN_TIMEOUT"); raw != "" {
		if d, err := time.ParseDuration(raw); err == nil {
			shutdown = d
		}
	}

	return Server{
		Addr:            addr,
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		RedisURL:        os.Getenv("REDIS_URL"),
		ShutdownTimeout: shutdown,
	}
}
