// Package config loads the storefront configuration: defaults, then an
// optional YAML file, then STOREFRONT_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"golang.org/x/text/currency"
	"gopkg.in/yaml.v3"
)

const (
	BackendEmbedded = "embedded"
	BackendPostgres = "postgres"

	BlobFile   = "file"
	BlobRedis  = "redis"
	BlobS3     = "s3"
	BlobMemory = "memory"
)

type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Log        LogConfig        `yaml:"log"`
	Store      StoreConfig      `yaml:"store"`
	Credential CredentialConfig `yaml:"credential"`
	// Currency is the ISO 4217 code prices are denominated in.
	Currency string `yaml:"currency"`
}

type ServerConfig struct {
	Port            int           `yaml:"port"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type LogConfig struct {
	Format string `yaml:"format"`
	Level  string `yaml:"level"`
}

type StoreConfig struct {
	Backend     string         `yaml:"backend"`
	PostgresDSN string         `yaml:"postgres_dsn"`
	Embedded    EmbeddedConfig `yaml:"embedded"`
}

type EmbeddedConfig struct {
	Key         string     `yaml:"key"`
	SeedInitial bool       `yaml:"seed_initial"`
	Blob        BlobConfig `yaml:"blob"`
}

type BlobConfig struct {
	Backend     string   `yaml:"backend"`
	Dir         string   `yaml:"dir"`
	RedisAddr   string   `yaml:"redis_addr"`
	RedisPrefix string   `yaml:"redis_prefix"`
	S3          S3Config `yaml:"s3"`
}

type S3Config struct {
	Bucket   string `yaml:"bucket"`
	Region   string `yaml:"region"`
	Endpoint string `yaml:"endpoint"`
	Key      string `yaml:"key"`
	Secret   string `yaml:"secret"`
	Prefix   string `yaml:"prefix"`
}

type CredentialConfig struct {
	Scheme string `yaml:"scheme"`
}

func Default() Config {
	return Config{
		Server: ServerConfig{
			Port:            3000,
			ShutdownTimeout: 10 * time.Second,
		},
		Log: LogConfig{
			Format: "text",
			Level:  "info",
		},
		Store: StoreConfig{
			Backend: BackendEmbedded,
			Embedded: EmbeddedConfig{
				Key:         "ai_store_sqlite_v2.db",
				SeedInitial: true,
				Blob: BlobConfig{
					Backend:   BlobFile,
					Dir:       "data",
					RedisAddr: "localhost:6379",
					S3: S3Config{
						Region: "us-east-1",
					},
				},
			},
		},
		Credential: CredentialConfig{
			Scheme: "bcrypt",
		},
		Currency: "KRW",
	}
}

// Load reads path when it is not empty and exists, applies environment
// overrides and validates the result.
func Load(path string) (Config, error) {
	return load(path, os.LookupEnv)
}

func load(path string, lookup func(string) (string, bool)) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return Config{}, fmt.Errorf("os.ReadFile: %w", err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("yaml.Unmarshal[%s]: %w", path, err)
			}
		}
	}

	if err := applyEnv(&cfg, lookup); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func applyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	vars := map[string]*string{
		"STOREFRONT_LOG_FORMAT":        &cfg.Log.Format,
		"STOREFRONT_LOG_LEVEL":         &cfg.Log.Level,
		"STOREFRONT_STORE_BACKEND":     &cfg.Store.Backend,
		"STOREFRONT_POSTGRES_DSN":      &cfg.Store.PostgresDSN,
		"STOREFRONT_STORE_KEY":         &cfg.Store.Embedded.Key,
		"STOREFRONT_BLOB_BACKEND":      &cfg.Store.Embedded.Blob.Backend,
		"STOREFRONT_BLOB_DIR":          &cfg.Store.Embedded.Blob.Dir,
		"STOREFRONT_REDIS_ADDR":        &cfg.Store.Embedded.Blob.RedisAddr,
		"STOREFRONT_REDIS_PREFIX":      &cfg.Store.Embedded.Blob.RedisPrefix,
		"STOREFRONT_S3_BUCKET":         &cfg.Store.Embedded.Blob.S3.Bucket,
		"STOREFRONT_S3_REGION":         &cfg.Store.Embedded.Blob.S3.Region,
		"STOREFRONT_S3_ENDPOINT":       &cfg.Store.Embedded.Blob.S3.Endpoint,
		"STOREFRONT_S3_KEY":            &cfg.Store.Embedded.Blob.S3.Key,
		"STOREFRONT_S3_SECRET":         &cfg.Store.Embedded.Blob.S3.Secret,
		"STOREFRONT_S3_PREFIX":         &cfg.Store.Embedded.Blob.S3.Prefix,
		"STOREFRONT_CREDENTIAL_SCHEME": &cfg.Credential.Scheme,
		"STOREFRONT_CURRENCY":          &cfg.Currency,
	}
	for name, dst := range vars {
		if v, ok := lookup(name); ok {
			*dst = v
		}
	}

	// PORT is honoured for platforms that inject it
	for _, name := range []string{"PORT", "STOREFRONT_PORT"} {
		if v, ok := lookup(name); ok {
			port, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("%s[%s]: %w", name, v, err)
			}
			cfg.Server.Port = port
		}
	}

	if v, ok := lookup("STOREFRONT_SHUTDOWN_TIMEOUT"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("STOREFRONT_SHUTDOWN_TIMEOUT[%s]: %w", v, err)
		}
		cfg.Server.ShutdownTimeout = d
	}

	if v, ok := lookup("STOREFRONT_SEED_INITIAL"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("STOREFRONT_SEED_INITIAL[%s]: %w", v, err)
		}
		cfg.Store.Embedded.SeedInitial = b
	}

	return nil
}

func (c Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port[%d] is out of range", c.Server.Port)
	}
	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("server.shutdown_timeout must be positive")
	}

	if _, err := c.CurrencyUnit(); err != nil {
		return err
	}

	switch c.Store.Backend {
	case BackendPostgres:
		if c.Store.PostgresDSN == "" {
			return fmt.Errorf("store.postgres_dsn is empty")
		}
	case BackendEmbedded:
		if c.Store.Embedded.Key == "" {
			return fmt.Errorf("store.embedded.key is empty")
		}
		if err := c.Store.Embedded.Blob.validate(); err != nil {
			return err
		}
	default:
		return fmt.Errorf("store.backend[%s] is not supported", c.Store.Backend)
	}

	return nil
}

func (b BlobConfig) validate() error {
	switch b.Backend {
	case BlobFile:
		if b.Dir == "" {
			return fmt.Errorf("store.embedded.blob.dir is empty")
		}
	case BlobRedis:
		if b.RedisAddr == "" {
			return fmt.Errorf("store.embedded.blob.redis_addr is empty")
		}
	case BlobS3:
		if b.S3.Bucket == "" {
			return fmt.Errorf("store.embedded.blob.s3.bucket is empty")
		}
	case BlobMemory:
	default:
		return fmt.Errorf("store.embedded.blob.backend[%s] is not supported", b.Backend)
	}
	return nil
}

func (c Config) CurrencyUnit() (currency.Unit, error) {
	unit, err := currency.ParseISO(c.Currency)
	if err != nil {
		return currency.Unit{}, fmt.Errorf("currency[%s]: %w", c.Currency, err)
	}
	return unit, nil
}
