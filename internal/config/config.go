package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Load reads the .env file specified by TRACKFLOW_ENV (or .env by default),
// then loads the corresponding .secret file if it exists.
// All config is flat env vars read via os.Getenv after loading.
func Load() error {
	envFile := os.Getenv("TRACKFLOW_ENV")
	if envFile == "" {
		envFile = ".env"
	}

	// Missing files are fine; the environment may already be populated.
	_ = godotenv.Load(envFile)
	_ = godotenv.Load(envFile + ".secret")

	return nil
}

func ServerPort() int {
	port, err := strconv.Atoi(os.Getenv("SERVER_PORT"))
	if err != nil {
		return 8080
	}
	return port
}

func ServerAddr() string {
	return fmt.Sprintf(":%d", ServerPort())
}

func DatabaseURL() string {
	return os.Getenv("DATABASE_URL")
}

func MigrationsPath() string {
	p := os.Getenv("MIGRATIONS_PATH")
	if p == "" {
		return "migrations"
	}
	return p
}

func JWTSecret() string {
	return os.Getenv("JWT_SECRET")
}

// AccessTokenTTL defaults to eight days.
func AccessTokenTTL() time.Duration {
	return durationOr("ACCESS_TOKEN_TTL", 8*24*time.Hour)
}

// InviteTTL is how long an invite token stays redeemable. Defaults to 72h.
func InviteTTL() time.Duration {
	return durationOr("INVITE_TTL", 72*time.Hour)
}

// InviteAcceptURL is the front-end page that redeems invite tokens; the
// token is appended as a query parameter.
func InviteAcceptURL() string {
	u := os.Getenv("INVITE_ACCEPT_URL")
	if u == "" {
		return "http://localhost:5173/accept-invite"
	}
	return u
}

// AvatarDir is where uploaded employee avatars are written.
func AvatarDir() string {
	d := os.Getenv("AVATAR_DIR")
	if d == "" {
		return "avatars"
	}
	return d
}

// MaxAvatarBytes defaults to 5 MiB.
func MaxAvatarBytes() int64 {
	n, err := strconv.ParseInt(os.Getenv("MAX_AVATAR_BYTES"), 10, 64)
	if err != nil || n <= 0 {
		return 5 << 20
	}
	return n
}

// RateLimitRPS returns requests per second limit.
// Defaults to 100 if not set.
func RateLimitRPS() float64 {
	rps, err := strconv.ParseFloat(os.Getenv("RATE_LIMIT_RPS"), 64)
	if err != nil || rps <= 0 {
		return 100
	}
	return rps
}

// RateLimitBurst returns the burst size for rate limiting.
// Defaults to 20 if not set.
func RateLimitBurst() int {
	burst, err := strconv.Atoi(os.Getenv("RATE_LIMIT_BURST"))
	if err != nil || burst <= 0 {
		return 20
	}
	return burst
}

// LogLevel returns the log level (debug, info, warn, error).
// Defaults to "info" if not set.
func LogLevel() string {
	level := os.Getenv("LOG_LEVEL")
	if level == "" {
		return "info"
	}
	return level
}

// APIURL is the base URL the CLI talks to, including the /api/v1 prefix.
func APIURL() string {
	u := os.Getenv("TRACKFLOW_API_URL")
	if u == "" {
		return "http://localhost:8080/api/v1"
	}
	return u
}

// RequestTimeout bounds each CLI request. Defaults to 30s.
func RequestTimeout() time.Duration {
	return durationOr("TRACKFLOW_REQUEST_TIMEOUT", 30*time.Second)
}

// SessionFile is the durable client-side session document.
// Defaults to <user config dir>/trackflow/session.json.
func SessionFile() string {
	if p := os.Getenv("TRACKFLOW_SESSION_FILE"); p != "" {
		return p
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "trackflow", "session.json")
}

func durationOr(key string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(os.Getenv(key))
	if err != nil || d <= 0 {
		return def
	}
	return d
}
