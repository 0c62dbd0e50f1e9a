package tdconfig

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/go-drift/tinydisplay/pkg/tderrors"
)

// EnvPrefix namespaces every environment-variable override.
const EnvPrefix = "TINYDISPLAY_"

// Config is the full engine configuration, §6's option set.
type Config struct {
	FPS                         int    `yaml:"fps"`
	Workers                     int    `yaml:"workers"`
	LookaheadTicks              uint64 `yaml:"lookahead_ticks"`
	FrameCacheSize              int    `yaml:"frame_cache_size"`
	RingBufferCapacity          int    `yaml:"ring_buffer_capacity"`
	PersistencePath             string `yaml:"persistence_path"`
	RetentionTicks              uint64 `yaml:"retention_ticks"`
	CheckpointIntervalTicks     uint64 `yaml:"checkpoint_interval_ticks"`
	ExpressionTimeBudgetNS      int64  `yaml:"expression_time_budget_ns"`
	ExpressionMemoryBudgetBytes int64  `yaml:"expression_memory_budget_bytes"`
	ExpressionCacheSize         int    `yaml:"expression_cache_size"`
	MarqueeFixedPointIterations int    `yaml:"marquee_fixed_point_iterations"`
	MetricsEnabled              bool   `yaml:"metrics_enabled"`
}

// Default returns the configuration spec.md §6 describes as defaults:
// frame_cache_size and lookahead_ticks derive from fps, the rest are
// fixed constants.
func Default() Config {
	const fps = 60
	return Config{
		FPS:                         fps,
		Workers:                     0,
		LookaheadTicks:              uint64(fps * 2),
		FrameCacheSize:              fps * 2,
		RingBufferCapacity:          1024,
		PersistencePath:             "tinydisplay.db",
		RetentionTicks:              0,
		CheckpointIntervalTicks:     fps * 10,
		ExpressionTimeBudgetNS:      1_000_000,
		ExpressionMemoryBudgetBytes: 65536,
		ExpressionCacheSize:         256,
		MarqueeFixedPointIterations: 16,
		MetricsEnabled:              true,
	}
}

// Load reads path (if it exists; a missing file is not an error, matching
// LoadOptional's behavior for the teacher's drift.yaml), applies
// TINYDISPLAY_-prefixed environment overrides, and validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("tdconfig: read %s: %w", path, err)
			}
		} else if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("tdconfig: parse %s: %w", path, err)
		}
	}

	applyEnvOverrides(&cfg, os.Environ())

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyEnvOverrides(cfg *Config, environ []string) {
	env := make(map[string]string, len(environ))
	for _, kv := range environ {
		k, v, ok := strings.Cut(kv, "=")
		if ok && strings.HasPrefix(k, EnvPrefix) {
			env[strings.TrimPrefix(k, EnvPrefix)] = v
		}
	}

	setInt := func(key string, dst *int) {
		if v, ok := env[key]; ok {
			if n, err := strconv.Atoi(v); err == nil {
				*dst = n
			}
		}
	}
	setUint64 := func(key string, dst *uint64) {
		if v, ok := env[key]; ok {
			if n, err := strconv.ParseUint(v, 10, 64); err == nil {
				*dst = n
			}
		}
	}
	setInt64 := func(key string, dst *int64) {
		if v, ok := env[key]; ok {
			if n, err := strconv.ParseInt(v, 10, 64); err == nil {
				*dst = n
			}
		}
	}
	setString := func(key string, dst *string) {
		if v, ok := env[key]; ok {
			*dst = v
		}
	}
	setBool := func(key string, dst *bool) {
		if v, ok := env[key]; ok {
			if b, err := strconv.ParseBool(v); err == nil {
				*dst = b
			}
		}
	}

	setInt("FPS", &cfg.FPS)
	setInt("WORKERS", &cfg.Workers)
	setUint64("LOOKAHEAD_TICKS", &cfg.LookaheadTicks)
	setInt("FRAME_CACHE_SIZE", &cfg.FrameCacheSize)
	setInt("RING_BUFFER_CAPACITY", &cfg.RingBufferCapacity)
	setString("PERSISTENCE_PATH", &cfg.PersistencePath)
	setUint64("RETENTION_TICKS", &cfg.RetentionTicks)
	setUint64("CHECKPOINT_INTERVAL_TICKS", &cfg.CheckpointIntervalTicks)
	setInt64("EXPRESSION_TIME_BUDGET_NS", &cfg.ExpressionTimeBudgetNS)
	setInt64("EXPRESSION_MEMORY_BUDGET_BYTES", &cfg.ExpressionMemoryBudgetBytes)
	setInt("EXPRESSION_CACHE_SIZE", &cfg.ExpressionCacheSize)
	setInt("MARQUEE_FIXED_POINT_ITERATIONS", &cfg.MarqueeFixedPointIterations)
	setBool("METRICS_ENABLED", &cfg.MetricsEnabled)
}

// Validate rejects out-of-range fields before any engine is constructed.
func (c Config) Validate() error {
	if c.FPS <= 0 {
		return &tderrors.ValidationError{Field: "fps", Value: c.FPS, Message: "must be positive"}
	}
	if c.Workers < 0 || c.Workers > 8 {
		return &tderrors.ValidationError{Field: "workers", Value: c.Workers, Message: "must be in [0,8]"}
	}
	if c.FrameCacheSize <= 0 {
		return &tderrors.ValidationError{Field: "frame_cache_size", Value: c.FrameCacheSize, Message: "must be positive"}
	}
	if c.LookaheadTicks > uint64(c.FrameCacheSize) {
		return &tderrors.ValidationError{Field: "lookahead_ticks", Value: c.LookaheadTicks, Message: "must not exceed frame_cache_size"}
	}
	if c.RingBufferCapacity <= 0 {
		return &tderrors.ValidationError{Field: "ring_buffer_capacity", Value: c.RingBufferCapacity, Message: "must be positive"}
	}
	if c.PersistencePath == "" {
		return &tderrors.ValidationError{Field: "persistence_path", Value: c.PersistencePath, Message: "must not be empty"}
	}
	if c.ExpressionTimeBudgetNS <= 0 {
		return &tderrors.ValidationError{Field: "expression_time_budget_ns", Value: c.ExpressionTimeBudgetNS, Message: "must be positive"}
	}
	if c.ExpressionMemoryBudgetBytes <= 0 {
		return &tderrors.ValidationError{Field: "expression_memory_budget_bytes", Value: c.ExpressionMemoryBudgetBytes, Message: "must be positive"}
	}
	if c.ExpressionCacheSize <= 0 {
		return &tderrors.ValidationError{Field: "expression_cache_size", Value: c.ExpressionCacheSize, Message: "must be positive"}
	}
	if c.MarqueeFixedPointIterations <= 0 {
		return &tderrors.ValidationError{Field: "marquee_fixed_point_iterations", Value: c.MarqueeFixedPointIterations, Message: "must be positive"}
	}
	return nil
}
