package config

import (
	"encoding/json"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configurable matchmaking parameters.
type Config struct {
	Step          int `json:"step"`           // rating bucket width
	MaxRange      int `json:"max_range"`      // bucket-expansion search half-width
	DefaultRating int `json:"default_rating"` // fallback rating on profile-store miss

	// TimeControls is the closed set of accepted time-control tags.
	TimeControls []string `json:"time_controls"`

	WSPort int `json:"ws_port"`

	DatabaseURL string `json:"-"` // Queue Index / Game / Player store (Postgres)
	RedisURL    string `json:"-"` // change stream + session binding

	IdentityJWKSBaseURL string `json:"-"` // upstream identity authority base URL

	StreamShardCount        int           `json:"stream_shard_count"`
	StreamClaimIdleDuration time.Duration `json:"-"`
}

// Defaults returns a Config with all default values from the spec.
func Defaults() *Config {
	return &Config{
		Step:                    50,
		MaxRange:                500,
		DefaultRating:           1200,
		TimeControls:            []string{"bullet", "blitz", "rapid"},
		WSPort:                  8080,
		StreamShardCount:        4,
		StreamClaimIdleDuration: 30 * time.Second,
	}
}

// Load reads configuration from an optional config.json file, then applies
// environment variable overrides. Fields not set in either source retain
// their default values.
func Load() *Config {
	cfg := Defaults()

	if f, err := os.Open("config.json"); err == nil {
		defer f.Close()
		if err := json.NewDecoder(f).Decode(cfg); err != nil {
			log.Printf("Warning: failed to parse config.json: %v", err)
		}
	}

	overrideInt(&cfg.Step, "STEP")
	overrideInt(&cfg.MaxRange, "MAX_RANGE")
	overrideInt(&cfg.DefaultRating, "DEFAULT_RATING")
	overrideInt(&cfg.WSPort, "WS_PORT")
	overrideInt(&cfg.StreamShardCount, "STREAM_SHARD_COUNT")
	overrideStringList(&cfg.TimeControls, "TIME_CONTROLS")
	overrideString(&cfg.DatabaseURL, "DATABASE_URL")
	overrideString(&cfg.RedisURL, "REDIS_URL")
	overrideString(&cfg.IdentityJWKSBaseURL, "IDENTITY_JWKS_BASE_URL")
	overrideDurationMS(&cfg.StreamClaimIdleDuration, "STREAM_CLAIM_IDLE_MS")

	return cfg
}

func overrideInt(field *int, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			*field = n
		} else {
			log.Printf("Warning: invalid value for %s: %q", envKey, val)
		}
	}
}

func overrideString(field *string, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		*field = val
	}
}

func overrideStringList(field *[]string, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		parts := strings.Split(val, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		*field = parts
	}
}

func overrideDurationMS(field *time.Duration, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			*field = time.Duration(n) * time.Millisecond
		} else {
			log.Printf("Warning: invalid value for %s: %q", envKey, val)
		}
	}
}

// AcceptsTimeControl reports whether tc is in the closed set of accepted tags.
func (c *Config) AcceptsTimeControl(tc string) bool {
	return AcceptsTimeControl(c.TimeControls, tc)
}

// AcceptsTimeControl reports whether tc appears in timeControls. Shared by
// Config and by any component (the Admission Gateway) that validates against
// a closed set of tags loaded independently of a full Config.
func AcceptsTimeControl(timeControls []string, tc string) bool {
	for _, t := range timeControls {
		if t == tc {
			return true
		}
	}
	return false
}
