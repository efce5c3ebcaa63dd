package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the root configuration of the redcached command.
type Config struct {
	Backend BackendConfig `mapstructure:"backend"`
	Codec   CodecConfig   `mapstructure:"codec"`
	Client  ClientConfig  `mapstructure:"client"`
	Log     LogConfig     `mapstructure:"log"`
}

// BackendConfig selects and configures the byte store
type BackendConfig struct {
	Kind     string        `mapstructure:"kind"`     // memory, memcache, redis, bolt, bigcache, ristretto
	Addrs    []string      `mapstructure:"addrs"`    // memcache servers or redis addresses
	Password string        `mapstructure:"password"` // redis
	DB       int           `mapstructure:"db"`       // redis
	Timeout  time.Duration `mapstructure:"timeout"`

	Path   string `mapstructure:"path"`   // bolt file
	Bucket string `mapstructure:"bucket"` // bolt bucket

	Shards      int   `mapstructure:"shards"`       // bigcache
	MaxSizeMB   int   `mapstructure:"max_size_mb"`  // bigcache
	MaxCost     int64 `mapstructure:"max_cost"`     // ristretto
	NumCounters int64 `mapstructure:"num_counters"` // ristretto
}

// CodecConfig picks the payload codec for hashes and sets
type CodecConfig struct {
	Format        string `mapstructure:"format"`        // msgpack, cbor, json, protowire
	Deterministic bool   `mapstructure:"deterministic"` // cbor only
	MaxPayload    int    `mapstructure:"max_payload"`
}

type ClientConfig struct {
	Namespace     string        `mapstructure:"namespace"`
	TTL           time.Duration `mapstructure:"ttl"`
	Strict        bool          `mapstructure:"strict"`
	MaxCASRetries int           `mapstructure:"max_cas_retries"`
}

// LogConfig defines logging verbosity and output style
type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // json, console
}

var (
	backendKinds = []string{"memory", "memcache", "redis", "bolt", "bigcache", "ristretto"}
	codecFormats = []string{"msgpack", "cbor", "json", "protowire"}
)

// Load reads config.yaml from path (or the working directory) and overrides
// it with REDCACHED_* environment variables, e.g. REDCACHED_BACKEND_KIND.
// A missing file is not an error.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if path != "" {
		v.AddConfigPath(path)
	}
	v.AddConfigPath(".")

	v.SetEnvPrefix("REDCACHED")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects unknown backend kinds and codec formats.
func (c *Config) Validate() error {
	if !contains(backendKinds, c.Backend.Kind) {
		return fmt.Errorf("config: unknown backend.kind %q (want one of %s)", c.Backend.Kind, strings.Join(backendKinds, ", "))
	}
	if !contains(codecFormats, c.Codec.Format) {
		return fmt.Errorf("config: unknown codec.format %q (want one of %s)", c.Codec.Format, strings.Join(codecFormats, ", "))
	}
	if c.Client.MaxCASRetries < 0 {
		return errors.New("config: client.max_cas_retries must not be negative")
	}
	return nil
}

func contains(list []string, s string) bool {
	for _, x := range list {
		if x == s {
			return true
		}
	}
	return false
}

// setDefaults populates viper with fallback values if they are not provided via file or ENV.
// Every key needs a default so AutomaticEnv can see it during Unmarshal.
func setDefaults(v *viper.Viper) {
	// Backend
	v.SetDefault("backend.kind", "memory")
	v.SetDefault("backend.addrs", []string{"127.0.0.1:11211"})
	v.SetDefault("backend.password", "")
	v.SetDefault("backend.db", 0)
	v.SetDefault("backend.timeout", "500ms")
	v.SetDefault("backend.path", "redcached.db")
	v.SetDefault("backend.bucket", "redcached")
	v.SetDefault("backend.shards", 64)
	v.SetDefault("backend.max_size_mb", 0)
	v.SetDefault("backend.max_cost", 1<<26)
	v.SetDefault("backend.num_counters", 1_000_000)

	// Codec
	v.SetDefault("codec.format", "msgpack")
	v.SetDefault("codec.deterministic", true)
	v.SetDefault("codec.max_payload", 1<<20)

	// Client
	v.SetDefault("client.namespace", "")
	v.SetDefault("client.ttl", "0s")
	v.SetDefault("client.strict", false)
	v.SetDefault("client.max_cas_retries", 8)

	// Logger
	v.SetDefault("log.level", "warn")
	v.SetDefault("log.format", "console")
}
