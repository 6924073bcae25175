// Package config reads server settings from the environment.
package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"figtrace/pkg/trace"
)

// Config holds everything the web server needs to start.
type Config struct {
	Addr        string
	BaseURL     string
	FiguresPath string
	Debug       bool
	Trace       trace.Config
	RoundMax    time.Duration
	RoundMin    time.Duration
	RoundCount  int
	SessionIdle time.Duration
}

// Defaults for the round schedule.
const (
	DefaultRoundMax    = 10 * time.Second
	DefaultRoundMin    = 500 * time.Millisecond
	DefaultRoundCount  = 50
	DefaultSessionIdle = 30 * time.Minute
)

// FromEnv reads the configuration from the process environment.
func FromEnv() Config {
	return Parse(os.Getenv)
}

// Parse builds a configuration from getenv. Unset or unparsable values keep
// their defaults.
func Parse(getenv func(string) string) Config {
	cfg := Config{
		Addr:        ":8080",
		BaseURL:     strings.TrimRight(strings.TrimSpace(getenv("BASE_URL")), "/"),
		FiguresPath: strings.TrimSpace(getenv("FIGURES_PATH")),
		Debug:       strings.EqualFold(strings.TrimSpace(getenv("FIGTRACE_LOG_LEVEL")), "debug"),
		Trace:       trace.DefaultConfig(),
		RoundMax:    DefaultRoundMax,
		RoundMin:    DefaultRoundMin,
		RoundCount:  DefaultRoundCount,
		SessionIdle: DefaultSessionIdle,
	}
	if port := strings.TrimSpace(getenv("PORT")); port != "" {
		cfg.Addr = ":" + port
	}

	cfg.Trace.Sensitivity = positiveFloat(getenv, "FIGTRACE_SENSITIVITY", cfg.Trace.Sensitivity)
	cfg.Trace.MinEdgeLength = positiveFloat(getenv, "FIGTRACE_MIN_EDGE_LENGTH", cfg.Trace.MinEdgeLength)
	cfg.Trace.MinCornerAllowed = positiveFloat(getenv, "FIGTRACE_MIN_CORNER", cfg.Trace.MinCornerAllowed)
	cfg.Trace.MinVertexAngle = positiveFloat(getenv, "FIGTRACE_MIN_VERTEX", cfg.Trace.MinVertexAngle)
	if n := positiveInt(getenv, "FIGTRACE_MOVES_PER_LINE", 0); n > 0 {
		cfg.Trace.MinPointerMovesPerLine = n
	}
	if ms := positiveInt(getenv, "FIGTRACE_ROUND_MAX_MS", 0); ms > 0 {
		cfg.RoundMax = time.Duration(ms) * time.Millisecond
	}
	return cfg
}

func positiveFloat(getenv func(string) string, key string, fallback float64) float64 {
	raw := strings.TrimSpace(getenv(key))
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v <= 0 {
		log.Printf("config: ignoring %s=%q", key, raw)
		return fallback
	}
	return v
}

func positiveInt(getenv func(string) string, key string, fallback int) int {
	raw := strings.TrimSpace(getenv(key))
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		log.Printf("config: ignoring %s=%q", key, raw)
		return fallback
	}
	return v
}
