// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults; Load layers file and env on top.
// - External errors are wrapped with this package's sentinels.
package config

import (
	"runtime"
	"time"

	"github.com/okian/swatch/internal/domain/calibration"
)

// Cache backends.
const (
	CacheNone   = "none"
	CacheMemory = "memory"
	CacheRedis  = "redis"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	Server  Server  `koanf:"server"`
	Fetch   Fetch   `koanf:"fetch"`
	Cache   Cache   `koanf:"cache"`
	Redis   Redis   `koanf:"redis"`
	Workers Workers `koanf:"workers"`
	Metrics Metrics `koanf:"metrics"`

	// Calibration overrides individual thresholds of the default set.
	Calibration calibration.Set `koanf:"calibration"`
}

// Server configures the HTTP listener.
type Server struct {
	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr            string        `koanf:"addr"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`

	// MaxBodyBytes caps request bodies, uploaded images included.
	MaxBodyBytes int64 `koanf:"max_body_bytes"`
}

// Fetch configures image-by-URL loading.
type Fetch struct {
	Enabled  bool          `koanf:"enabled"`
	Timeout  time.Duration `koanf:"timeout"`
	MaxBytes int64         `koanf:"max_bytes"`
	Retries  int           `koanf:"retries"`
	Backoff  time.Duration `koanf:"backoff"`
	// AllowPrivateHosts permits loopback, private and link-local targets.
	AllowPrivateHosts bool `koanf:"allow_private_hosts"`
}

// Cache configures the classification result cache.
type Cache struct {
	// Backend is one of none, memory or redis.
	Backend string        `koanf:"backend"`
	Size    int           `koanf:"size"`
	TTL     time.Duration `koanf:"ttl"`
}

// Redis configures the shared cache backend.
type Redis struct {
	Addr      string `koanf:"addr"`
	Password  string `koanf:"password"`
	DB        int    `koanf:"db"`
	KeyPrefix string `koanf:"key_prefix"`
}

// Workers configures the batch garment scoring pool.
type Workers struct {
	Count     int `koanf:"count"`
	QueueSize int `koanf:"queue_size"`

	// MaxBatch caps garments per batch request.
	MaxBatch int `koanf:"max_batch"`
}

// Metrics configures Prometheus collection.
type Metrics struct {
	Enabled         bool          `koanf:"enabled"`
	RefreshInterval time.Duration `koanf:"refresh_interval"`
	Namespace       string        `koanf:"namespace"`
	Subsystem       string        `koanf:"subsystem"`
	Prefix          string        `koanf:"prefix"`
	// Buckets are latency histogram bounds in milliseconds, ascending.
	Buckets     []float64         `koanf:"buckets"`
	ConstLabels map[string]string `koanf:"const_labels"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel: "info",
		Server: Server{
			Addr:            ":9080",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			MaxBodyBytes:    16 << 20,
		},
		Fetch: Fetch{
			Enabled:  true,
			Timeout:  10 * time.Second,
			MaxBytes: 12 << 20,
			Retries:  2,
			Backoff:  200 * time.Millisecond,
		},
		Cache: Cache{
			Backend: CacheMemory,
			Size:    10_000,
			TTL:     24 * time.Hour,
		},
		Redis: Redis{
			Addr:      "localhost:6379",
			KeyPrefix: "swatch:",
		},
		Workers: Workers{
			Count:     runtime.NumCPU() * 2,
			QueueSize: 1_000,
			MaxBatch:  200,
		},
		Metrics: Metrics{
			Enabled:         true,
			RefreshInterval: 10 * time.Second,
			Namespace:       "swatch",
			Subsystem:       "classifier",
		},
		Calibration: calibration.Default(),
	}
}
