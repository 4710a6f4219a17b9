package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime settings for both binaries. Everything comes
// from the environment (optionally a .env in the working directory) with
// defaults that work against a local tuidod.
type Config struct {
	Client ClientConfig
	Server ServerConfig
	Logger LoggerConfig
}

type ClientConfig struct {
	BaseURL  string
	PageSize int
	Timeout  time.Duration
}

type ServerConfig struct {
	Addr            string
	DBPath          string
	CORSOrigins     []string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

type LoggerConfig struct {
	Level string
	File  string // client-side log sink; empty means ~/.tuido/tuido.log
}

// Load reads configuration so either binary can boot in any environment.
func Load() Config {
	_ = godotenv.Load(".env")

	return Config{
		Client: ClientConfig{
			BaseURL:  getString("TUIDO_BASE_URL", "http://127.0.0.1:8080"),
			PageSize: getInt("TUIDO_PAGE_SIZE", 200),
			Timeout:  getDuration("TUIDO_TIMEOUT", 10*time.Second),
		},
		Server: ServerConfig{
			Addr:            getString("TUIDOD_ADDR", ":8080"),
			DBPath:          getString("TUIDOD_DB", "./tuidod.db"),
			CORSOrigins:     []string{getString("TUIDOD_CORS_ORIGINS", "*")},
			ReadTimeout:     getDuration("TUIDOD_READ_TIMEOUT", 10*time.Second),
			WriteTimeout:    getDuration("TUIDOD_WRITE_TIMEOUT", 10*time.Second),
			IdleTimeout:     getDuration("TUIDOD_IDLE_TIMEOUT", 120*time.Second),
			ShutdownTimeout: getDuration("TUIDOD_SHUTDOWN_TIMEOUT", 15*time.Second),
		},
		Logger: LoggerConfig{
			Level: getString("TUIDO_LOG_LEVEL", "info"),
			File:  getString("TUIDO_LOG_FILE", defaultLogFile()),
		},
	}
}

func defaultLogFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "tuido.log"
	}
	return filepath.Join(home, ".tuido", "tuido.log")
}

func getString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
		if secs, err := strconv.Atoi(v); err == nil {
			return time.Duration(secs) * time.Second
		}
	}
	return fallback
}
