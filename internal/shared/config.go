package shared

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	AppEnv      string
	LogLevel    string
	HTTPAddr    string
	MetricsAddr string
	MySQLDSN    string
	RedisAddr   string
	RedisDB     int
	RedisPass   string

	BackendURL    string
	SentimentURL  string
	SearchCarsURL string

	UpstreamTimeout      time.Duration
	UpstreamRPS          int
	UpstreamRetries      int
	SentimentConcurrency int

	SessionTTL          time.Duration
	SecureCookies       bool
	RegisterConflict409 bool
	RequestTimeout      time.Duration
}

// Load reads the environment, after loading an optional .env file from the
// working directory. Variables already set win over the file.
func Load() Config {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Warn().Err(err).Msg(".env could not be loaded")
	}

	c := Config{
		AppEnv:      env("APP_ENV", "prod"),
		LogLevel:    env("LOG_LEVEL", "info"),
		HTTPAddr:    env("HTTP_ADDR", ":8080"),
		MetricsAddr: env("METRICS_ADDR", ":9100"),
		MySQLDSN:    env("MYSQL_DSN", "root:root@tcp(localhost:3306)/dealership?parseTime=true&charset=utf8mb4,utf8&loc=UTC"),
		RedisAddr:   env("REDIS_ADDR", "localhost:6379"),
		RedisPass:   env("REDIS_PASSWORD", ""),
		RedisDB:     atoi("REDIS_DB", 0),

		BackendURL:    env("BACKEND_URL", "http://database_api:3030"),
		SentimentURL:  env("SENTIMENT_URL", "http://sentiment_analyzer:5000/"),
		SearchCarsURL: env("SEARCHCARS_URL", "http://cars_inventory_api:3050/"),

		UpstreamTimeout:      time.Duration(atoi("UPSTREAM_TIMEOUT_SECONDS", 5)) * time.Second,
		UpstreamRPS:          atoi("UPSTREAM_RPS", 50),
		UpstreamRetries:      atoi("UPSTREAM_RETRIES", 2),
		SentimentConcurrency: atoi("SENTIMENT_CONCURRENCY", 4),

		SessionTTL:          time.Duration(atoi("SESSION_TTL_SECONDS", 1209600)) * time.Second,
		SecureCookies:       boolean("SECURE_COOKIES", false),
		RegisterConflict409: boolean("REGISTER_CONFLICT_409", false),
		RequestTimeout:      time.Duration(atoi("REQUEST_TIMEOUT_SECONDS", 15)) * time.Second,
	}
	if c.SessionTTL <= 0 {
		log.Warn().Msg("SESSION_TTL_SECONDS must be positive, using 14 days")
		c.SessionTTL = 14 * 24 * time.Hour
	}
	return c
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func atoi(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return n
		}
		log.Warn().Str("key", k).Str("value", v).Msg("not an integer, using default")
	}
	return def
}

func boolean(k string, def bool) bool {
	if v := os.Getenv(k); v != "" {
		if b, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
			return b
		}
		log.Warn().Str("key", k).Str("value", v).Msg("not a boolean, using default")
	}
	return def
}
