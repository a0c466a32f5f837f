package shared

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

const (
	DefaultPlaceBase      = "https://api.map.baidu.com/place/v3"
	DefaultRequestDelay   = 100 * time.Millisecond
	DefaultRequestTimeout = 10 * time.Second
	DefaultCacheTTL       = 24 * time.Hour

	sampleServerKey  = "YOUR_SERVER_AK_HERE"
	sampleBrowserKey = "YOUR_BROWSER_AK_HERE"
)

// ErrMissingConfig is returned by the Require* checks.
var ErrMissingConfig = errors.New("missing configuration")

type Config struct {
	AppEnv   string
	LogLevel string

	ServerKey      string
	BrowserKey     string
	PlaceBase      string
	RequestDelay   time.Duration
	RequestTimeout time.Duration
	InputEncoding  string

	MetricsAddr string
	HTTPAddr    string
	StaticDir   string

	RedisAddr string
	RedisPass string
	RedisDB   int
	CacheTTL  time.Duration
}

// Load reads .env (if present) and the process environment.
// Variables already set in the environment win over .env.
func Load() Config {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Warn().Err(err).Msg("could not parse .env")
	}
	return FromEnv()
}

// FromEnv builds a Config from the environment only.
func FromEnv() Config {
	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
			log.Warn().Str("key", k).Str("value", v).Msg("not an integer, using default")
		}
		return def
	}
	return Config{
		AppEnv:         env("APP_ENV", "dev"),
		LogLevel:       env("LOG_LEVEL", "info"),
		ServerKey:      strings.TrimSpace(os.Getenv("BAIDU_SERVER_AK")),
		BrowserKey:     strings.TrimSpace(os.Getenv("BAIDU_BROWSER_AK")),
		PlaceBase:      strings.TrimRight(env("BAIDU_PLACE_API_BASE", DefaultPlaceBase), "/"),
		RequestDelay:   seconds("REQUEST_DELAY", DefaultRequestDelay),
		RequestTimeout: seconds("REQUEST_TIMEOUT", DefaultRequestTimeout),
		InputEncoding:  env("INPUT_ENCODING", "utf-8"),
		MetricsAddr:    os.Getenv("METRICS_ADDR"),
		HTTPAddr:       env("HTTP_ADDR", ":8000"),
		StaticDir:      env("STATIC_DIR", "."),
		RedisAddr:      os.Getenv("REDIS_ADDR"),
		RedisPass:      os.Getenv("REDIS_PASSWORD"),
		RedisDB:        atoi("REDIS_DB", 0),
		CacheTTL:       time.Duration(atoi("PLACE_CACHE_TTL_SECONDS", int(DefaultCacheTTL/time.Second))) * time.Second,
	}
}

// RequireServerKey fails when the place-search key is unset or still the sample value.
func (c Config) RequireServerKey() error {
	if c.ServerKey == "" || c.ServerKey == sampleServerKey {
		return fmt.Errorf("%w: BAIDU_SERVER_AK is not set (https://lbsyun.baidu.com/apiconsole/key)", ErrMissingConfig)
	}
	return nil
}

// RequireBrowserKey fails when the browser-facing key is unset or still the sample value.
func (c Config) RequireBrowserKey() error {
	if c.BrowserKey == "" || c.BrowserKey == sampleBrowserKey {
		return fmt.Errorf("%w: BAIDU_BROWSER_AK is not set (https://lbsyun.baidu.com/apiconsole/key)", ErrMissingConfig)
	}
	return nil
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

// seconds parses a positive float number of seconds.
func seconds(k string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f <= 0 {
		log.Warn().Str("key", k).Str("value", v).Dur("default", def).Msg("invalid duration, using default")
		return def
	}
	return time.Duration(f * float64(time.Second))
}
