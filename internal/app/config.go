package app

import (
	"os"
	"slices"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"

	"github.com/xenking/swift-grocers/internal/checkout"
	"github.com/xenking/swift-grocers/internal/domain/order"
)

// Store backends.
const (
	BackendMemory   = "memory"
	BackendFile     = "file"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
)

var backends = []string{BackendMemory, BackendFile, BackendPostgres, BackendRedis}

// DefaultFiles are the config files tried when LoadConfig gets none.
var DefaultFiles = []string{"swiftcart.yaml", "/etc/swiftcart/config.yaml"}

// Config holds the complete application configuration, loadable from
// environment variables (SWIFT_ prefix) or YAML config files.
type Config struct {
	Store          string         `default:"file" usage:"Persisted store backend: memory, file, postgres or redis" yaml:"store"`
	DataDir        string         `default:".swiftcart" usage:"Directory for the file backend" yaml:"data_dir"`
	DatabaseURL    string         `usage:"PostgreSQL connection URL (SWIFT_DATABASE_URL or DATABASE_URL)" yaml:"database_url"`
	UserID         string         `default:"" usage:"Partition persisted data by user ID" yaml:"user_id"`
	DeliveryWindow time.Duration  `default:"48h" usage:"Estimated delivery offset for new orders" yaml:"delivery_window"`
	Redis          RedisConfig    `yaml:"redis"`
	Checkout       CheckoutConfig `yaml:"checkout"`
}

// RedisConfig configures the redis backend.
type RedisConfig struct {
	Addr     string `default:"localhost:6379" usage:"Redis address" yaml:"addr"`
	Password string `usage:"Redis password" yaml:"password"`
	DB       int    `default:"0" usage:"Redis database number" yaml:"db"`
	Prefix   string `default:"swiftcart:" usage:"Key prefix" yaml:"prefix"`
}

// CheckoutConfig controls the delivery fee rule, in minor currency units.
type CheckoutConfig struct {
	DeliveryFee           int64 `default:"500" usage:"Delivery fee charged at or below the threshold" yaml:"delivery_fee"`
	FreeDeliveryThreshold int64 `default:"5000" usage:"Subtotal above which delivery is free" yaml:"free_delivery_threshold"`
}

// Fees converts the fee settings for the checkout service.
func (c CheckoutConfig) Fees() checkout.Config {
	return checkout.Config{
		DeliveryFee:           c.DeliveryFee,
		FreeDeliveryThreshold: c.FreeDeliveryThreshold,
	}
}

// LoadConfig loads configuration from environment variables and YAML config
// files, then applies platform defaults. Command-line flags are left to the
// caller.
func LoadConfig(files ...string) (*Config, error) {
	if len(files) == 0 {
		files = DefaultFiles
	}

	var cfg Config
	loader := aconfig.LoaderFor(&cfg, aconfig.Config{
		EnvPrefix: "SWIFT",
		SkipFlags: true,
		Files:     files,
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
	})
	if err := loader.Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	cfg.applyPlatformDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks settings that depend on each other.
func (c *Config) Validate() error {
	if !slices.Contains(backends, c.Store) {
		return errors.Errorf("unknown store backend %q (want one of %v)", c.Store, backends)
	}
	switch c.Store {
	case BackendFile:
		if c.DataDir == "" {
			return errors.New("data dir is required for the file backend: set SWIFT_DATA_DIR")
		}
	case BackendPostgres:
		if c.DatabaseURL == "" {
			return errors.New("database URL is required: set SWIFT_DATABASE_URL or DATABASE_URL")
		}
	case BackendRedis:
		if c.Redis.Addr == "" {
			return errors.New("redis address is required: set SWIFT_REDIS_ADDR")
		}
	}
	if c.DeliveryWindow < 0 {
		return errors.Errorf("negative delivery window %s", c.DeliveryWindow)
	}
	if c.Checkout.DeliveryFee < 0 || c.Checkout.FreeDeliveryThreshold < 0 {
		return errors.New("checkout amounts must not be negative")
	}
	return nil
}

// applyPlatformDefaults maps platform-provided environment variables that use
// standard names like DATABASE_URL to the SWIFT_-prefixed configuration.
func (c *Config) applyPlatformDefaults() {
	if c.DatabaseURL == "" {
		if v := os.Getenv("DATABASE_URL"); v != "" {
			c.DatabaseURL = v
		}
	}
	if c.DeliveryWindow == 0 {
		c.DeliveryWindow = order.DefaultDeliveryWindow
	}
}
