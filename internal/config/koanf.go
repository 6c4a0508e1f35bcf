// Simrec - Item Similarity and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/simrec

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	"github.com/tomtom215/simrec/internal/recommend"
)

// DefaultConfigPaths lists the config file locations searched in order.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/simrec/config.yaml",
	"/etc/simrec/config.yml",
}

// ConfigPathEnvVar overrides the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns the built-in defaults, applied before the config
// file and environment.
func defaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Driver:       "duckdb",
			DSN:          "/data/simrec/interactions.duckdb",
			MaxOpenConns: 0,
			QueryTimeout: 30 * time.Second,
			Breaker: BreakerConfig{
				MaxRequests:  3,
				Interval:     time.Minute,
				Timeout:      30 * time.Second,
				MinRequests:  10,
				FailureRatio: 0.6,
			},
		},
		PairStore: PairStoreConfig{
			Path:          "/data/simrec/pairs",
			InMemory:      false,
			SyncWrites:    false,
			MemTableSize:  16 << 20,
			NumCompactors: 2,
			GCInterval:    10 * time.Minute,
		},
		Engine: *recommend.DefaultConfig(),
		Recompute: RecomputeConfig{
			Transport:            "channel",
			Topic:                "simrec_ratings_changed",
			PoisonTopic:          "simrec_ratings_poison",
			SettleDelay:          0,
			RateLimit:            5,
			RateBurst:            10,
			Throttle:             0,
			MaxRetries:           3,
			RetryInitialInterval: 500 * time.Millisecond,
			RetryMaxInterval:     10 * time.Second,
			DedupTTL:             10 * time.Minute,
			DedupCapacity:        10000,
			ProfileCacheSize:     5000,
			ProfileCacheTTL:      5 * time.Minute,
			OutputBuffer:         256,
			RebuildInterval:      24 * time.Hour,
			RebuildOnStartup:     false,
			LockPath:             "/data/simrec/worker.lock",
		},
		NATS: NATSConfig{
			URL:           "nats://127.0.0.1:4222",
			DurablePrefix: "simrec",
			AckWait:       30 * time.Second,
		},
		Server: ServerConfig{
			Addr:            ":9090",
			ReadTimeout:     10 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Supervisor: SupervisorConfig{
			FailureThreshold: 5,
			FailureDecay:     30,
			FailureBackoff:   15 * time.Second,
			ShutdownTimeout:  10 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// Load reads configuration from defaults, the config file and environment,
// then validates it.
//
// Precedence: ENV > File > Defaults.
func Load() (*Config, error) {
	return LoadFile(findConfigFile())
}

// LoadFile is Load with an explicit config file path. An empty path skips
// the file layer.
func LoadFile(path string) (*Config, error) {
	k := koanf.New(".")

	// Layer 1: defaults
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: config file
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	// Layer 3: environment
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := &Config{}
	if err := unmarshalStrict(k, cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// unmarshalStrict decodes k into cfg and fails on keys that match no field.
func unmarshalStrict(k *koanf.Koanf, cfg *Config) error {
	return k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
				mapstructure.TextUnmarshallerHookFunc(),
			),
			Result:           cfg,
			TagName:          "koanf",
			WeaklyTypedInput: true,
			ErrorUnused:      true,
		},
	})
}

// findConfigFile returns the first existing config file, or "".
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// envMappings maps the supported environment variables to config paths.
var envMappings = map[string]string{
	"db_driver":        "database.driver",
	"db_dsn":           "database.dsn",
	"db_query_timeout": "database.query_timeout",

	"pairstore_path":      "pairstore.path",
	"pairstore_in_memory": "pairstore.in_memory",

	"similarity_metric":       "engine.metric",
	"recommend_mode":          "engine.mode",
	"recommend_top_k":         "engine.top_k",
	"recommend_positive_only": "engine.positive_only",

	"recompute_transport":    "recompute.transport",
	"recompute_settle_delay": "recompute.settle_delay",
	"recompute_rate_limit":   "recompute.rate_limit",
	"recompute_max_retries":  "recompute.max_retries",
	"profile_cache_ttl":      "recompute.profile_cache_ttl",
	"rebuild_interval":       "recompute.rebuild_interval",
	"rebuild_on_startup":     "recompute.rebuild_on_startup",
	"worker_lock_path":       "recompute.lock_path",

	"nats_url": "nats.url",

	"http_addr": "server.addr",

	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",

	"movielens_dir": "movielens.dir",
}

// envTransformFunc maps an environment variable name to a config path.
// Unmapped variables return "" and are skipped.
//
//   - LOG_LEVEL -> logging.level
//   - SIMILARITY_METRIC -> engine.metric
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}

// WatchConfigFile calls callback whenever the file at path changes. The
// caller must synchronise access to any configuration it reloads.
func WatchConfigFile(path string, callback func()) error {
	return file.Provider(path).Watch(func(_ interface{}, err error) {
		if err != nil {
			return
		}
		callback()
	})
}
