package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// dotenvFile is loaded before the process environment is read. Variables
// already set in the environment are not overridden by it.
var dotenvFile = ".env"

// parseEnv overlays cfg with environment variables. Unset or empty variables
// leave the current value alone. A malformed .env file or duration panics.
func parseEnv(cfg *Config) {
	if _, err := os.Stat(dotenvFile); err == nil {
		if err := godotenv.Load(dotenvFile); err != nil {
			panic(err)
		}
	}

	str := func(name string, dst *string) {
		if v := strings.TrimSpace(os.Getenv(name)); v != "" {
			*dst = v
		}
	}

	str("API_URL", &cfg.APIURL)
	str("WS_URL", &cfg.WSURL)
	str("EXPERTCONNECT_DB", &cfg.DatabasePath)
	str("EXPERTCONNECT_KEY_FILE", &cfg.KeyFile)
	str("LOG_LEVEL", &cfg.LogLevel)
	str("LOG_FILE", &cfg.LogFile)
	str("S3_ENDPOINT", &cfg.S3Endpoint)
	str("S3_REGION", &cfg.S3Region)
	str("S3_BUCKET", &cfg.S3Bucket)
	str("S3_ACCESS_KEY", &cfg.S3AccessKey)
	str("S3_SECRET_KEY", &cfg.S3SecretKey)
	str("S3_PUBLIC_URL", &cfg.S3PublicURL)

	if v := strings.TrimSpace(os.Getenv("REQUEST_TIMEOUT")); v != "" {
		d, err := parseSeconds(v)
		if err != nil {
			panic(fmt.Errorf("REQUEST_TIMEOUT: %w", err))
		}
		cfg.RequestTimeout = d
	}

	if v := os.Getenv("ICE_SERVERS"); strings.TrimSpace(v) != "" {
		cfg.ICEServers = splitList(v)
	}
}

// parseSeconds accepts a Go duration ("15s") or a bare number of seconds.
func parseSeconds(v string) (time.Duration, error) {
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Second, nil
	}
	return time.ParseDuration(v)
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
