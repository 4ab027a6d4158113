package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// ConfigEnv names an optional YAML file read by Load.
const ConfigEnv = "PATROL_CONFIG"

type Runtime struct {
	HTTPAddr         string `yaml:"http_addr"`
	CacheMaxItems    int    `yaml:"cache_max_items"`
	StepBudgetFactor int    `yaml:"step_budget_factor"`
	Workers          int    `yaml:"workers"`
	ObsBuffer        int    `yaml:"obs_buffer"`
	Mode             string `yaml:"mode"`
	LogLevel         string `yaml:"log_level"`
}

func defaults() Runtime {
	return Runtime{
		HTTPAddr:         ":8080",
		CacheMaxItems:    1024,
		StepBudgetFactor: 10,
		Workers:          0,
		ObsBuffer:        4096,
		Mode:             "extrapolate",
		LogLevel:         "info",
	}
}

// Load reads the file named by PATROL_CONFIG, if any, then applies
// environment overrides. When the file cannot be used the error is
// returned together with the defaults plus environment overrides.
func Load() (Runtime, error) {
	r, err := LoadFile(os.Getenv(ConfigEnv))
	if err != nil {
		return fromEnv(defaults()).clamp(), err
	}
	return r, nil
}

// LoadFile overlays the YAML file at path on the defaults, then applies
// environment overrides. An empty path skips the file.
func LoadFile(path string) (Runtime, error) {
	r := defaults()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Runtime{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &r); err != nil {
			return Runtime{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	return fromEnv(r).clamp(), nil
}

func fromEnv(r Runtime) Runtime {
	r.HTTPAddr = getenv("HTTP_ADDR", r.HTTPAddr)
	r.CacheMaxItems = getenvInt("PATROL_CACHE_MAX_ITEMS", r.CacheMaxItems, 1)
	r.StepBudgetFactor = getenvInt("PATROL_STEP_BUDGET_FACTOR", r.StepBudgetFactor, 1)
	r.Workers = getenvInt("PATROL_WORKERS", r.Workers, 0)
	r.ObsBuffer = getenvInt("PATROL_OBS_BUFFER", r.ObsBuffer, 1)
	r.Mode = getenv("PATROL_MODE", r.Mode)
	r.LogLevel = getenv("LOG_LEVEL", r.LogLevel)
	return r
}

func (r Runtime) clamp() Runtime {
	d := defaults()
	if r.CacheMaxItems < 1 {
		r.CacheMaxItems = d.CacheMaxItems
	}
	if r.StepBudgetFactor < 1 {
		r.StepBudgetFactor = d.StepBudgetFactor
	}
	if r.Workers < 0 {
		r.Workers = d.Workers
	}
	if r.ObsBuffer < 1 {
		r.ObsBuffer = d.ObsBuffer
	}
	return r
}

// Logger returns a text logger at the configured level.
func (r Runtime) Logger(w io.Writer) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(r.LogLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback, min int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < min {
		return fallback
	}
	return v
}
