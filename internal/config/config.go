// internal/config/config.go
//
// Runtime configuration. Values come from the process environment, after
// an optional .env file has been loaded with godotenv. Bad values fall
// back to their defaults with a warning.

package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Config holds every tunable of the binary.
type Config struct {
	LogLevel string
	Port     string
	DBPath   string

	JWTSecret      string
	JWTExpiresDays int

	DailySalt        string
	WordsAnswersFile string
	WordsAllowedFile string

	AttemptLimit      bool
	MaxAttempts       int
	MaxIterations     int
	GuessTimeout      time.Duration
	MaxSourceFailures int
	BatchWorkers      int

	RateLimitRPS   int
	RateLimitBurst int
	SessionTTL     time.Duration
}

// Load reads .env (if present) and the environment.
func Load() Config {
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv reads the environment only.
func FromEnv() Config {
	return Config{
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		Port:              getEnv("PORT", "5175"),
		DBPath:            getEnv("DB_PATH", "./data/wordlebot.db"),
		JWTSecret:         getEnv("JWT_SECRET", "dev_secret_change_me"),
		JWTExpiresDays:    getEnvInt("JWT_EXPIRES_DAYS", 14),
		DailySalt:         getEnv("DAILY_SALT", "local_dev_salt"),
		WordsAnswersFile:  os.Getenv("WORDS_ANSWERS_FILE"),
		WordsAllowedFile:  os.Getenv("WORDS_ALLOWED_FILE"),
		AttemptLimit:      getEnvBool("ATTEMPT_LIMIT", true),
		MaxAttempts:       getEnvInt("MAX_ATTEMPTS", 6),
		MaxIterations:     getEnvInt("MAX_ITERATIONS", 50),
		GuessTimeout:      getEnvDuration("GUESS_TIMEOUT", 30*time.Second),
		MaxSourceFailures: getEnvInt("MAX_SOURCE_FAILURES", 3),
		BatchWorkers:      getEnvInt("BATCH_WORKERS", 4),
		RateLimitRPS:      getEnvInt("RATE_LIMIT_RPS", 5),
		RateLimitBurst:    getEnvInt("RATE_LIMIT_BURST", 10),
		SessionTTL:        getEnvDuration("SESSION_TTL", 24*time.Hour),
	}
}

// getEnv returns the value of k or def if unset/empty.
func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getEnvInt(k string, def int) int {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		log.Warn().Str("key", k).Str("value", v).Int("default", def).Msg("invalid int, using default")
		return def
	}
	return n
}

func getEnvBool(k string, def bool) bool {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		log.Warn().Str("key", k).Str("value", v).Bool("default", def).Msg("invalid bool, using default")
		return def
	}
	return b
}

func getEnvDuration(k string, def time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Warn().Str("key", k).Str("value", v).Dur("default", def).Msg("invalid duration, using default")
		return def
	}
	return d
}
