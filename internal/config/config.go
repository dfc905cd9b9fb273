package config

import (
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	// BackendURL is the explicitly configured realtime backend endpoint.
	// Empty means "use the public origin".
	BackendURL string

	// PublicOrigin is the origin this client is reachable through (the
	// dev proxy in development, the serving origin in production). It is
	// the fallback endpoint and the loopback-rewrite target.
	PublicOrigin string

	// Devproxy settings.
	ListenAddr string
	StaticDir  string

	// Theme override for this run; empty defers to the stored preference.
	Theme string
}

// Load reads an optional .env file and then the environment. A missing
// .env file is not an error; explicit environment always wins because
// godotenv never overrides existing variables.
func Load() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		BackendURL:   os.Getenv("BACKEND_URL"),
		PublicOrigin: os.Getenv("PUBLIC_ORIGIN"),
		ListenAddr:   os.Getenv("LISTEN_ADDR"),
		StaticDir:    os.Getenv("STATIC_DIR"),
		Theme:        os.Getenv("THEME"),
	}
	if cfg.PublicOrigin == "" {
		cfg.PublicOrigin = "http://localhost:8080"
	}
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = ":8080"
	}
	if cfg.StaticDir == "" {
		cfg.StaticDir = "./public"
	}
	return cfg
}
