package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"balanced.io/internal/domain/entity"
)

// Config holds the application configuration
type Config struct {
	Server  Server  `mapstructure:"server"`
	Ledger  Ledger  `mapstructure:"ledger"`
	Store   Store   `mapstructure:"store"`
	Auth    Auth    `mapstructure:"auth"`
	Log     Log     `mapstructure:"log"`
	Metrics Metrics `mapstructure:"metrics"`
}

// Server configuration
type Server struct {
	Port            string        `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"readTimeout"`
	WriteTimeout    time.Duration `mapstructure:"writeTimeout"`
	IdleTimeout     time.Duration `mapstructure:"idleTimeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdownTimeout"`
	CORSOrigins     []string      `mapstructure:"corsOrigins"`
}

// Ledger configuration
type Ledger struct {
	// Mode is entity.ModeSingle or entity.ModeMulti.
	Mode string `mapstructure:"mode"`
}

// Store configuration
type Store struct {
	Driver    string        `mapstructure:"driver"`
	URL       string        `mapstructure:"url"`
	Path      string        `mapstructure:"path"`
	DSN       string        `mapstructure:"dsn"`
	Bucket    string        `mapstructure:"bucket"`
	Table     string        `mapstructure:"table"`
	KeyPrefix string        `mapstructure:"keyPrefix"`
	Codec     string        `mapstructure:"codec"`
	Timeout   time.Duration `mapstructure:"timeout"`
	PoolSize  int           `mapstructure:"poolSize"`
}

// Auth configuration. Request signing is disabled when HMACSecret is empty.
type Auth struct {
	HMACSecret         string        `mapstructure:"hmacSecret"`
	TimestampTolerance time.Duration `mapstructure:"timestampTolerance"`
}

// Log configuration
type Log struct {
	Level string `mapstructure:"level"`
}

// Metrics configuration
type Metrics struct {
	Enabled bool `mapstructure:"enabled"`
}

// LoadConfig loads configuration from YAML files in configDir.
// Uses CONFIG_ENV environment variable to determine which config file to load
func LoadConfig(configDir string) (*Config, error) {
	// A missing .env file is not an error
	_ = godotenv.Load()

	configEnv := os.Getenv("CONFIG_ENV")
	if configEnv == "" {
		configEnv = "local"
	}

	v := viper.New()
	setDefaults(v)

	// Load base app-config.yaml as template/defaults (if it exists)
	baseConfigPath := fmt.Sprintf("%s/app-config.yaml", configDir)
	baseConfigExists := false
	if _, err := os.Stat(baseConfigPath); err == nil {
		v.SetConfigFile(baseConfigPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read base config file: %w", err)
		}
		baseConfigExists = true
	}

	// Merge environment-specific config (e.g., local.yaml when CONFIG_ENV=local)
	envConfigPath := fmt.Sprintf("%s/%s.yaml", configDir, configEnv)
	if _, err := os.Stat(envConfigPath); err == nil {
		v.SetConfigFile(envConfigPath)
		if baseConfigExists {
			if err := v.MergeInConfig(); err != nil {
				return nil, fmt.Errorf("failed to merge env config file: %w", err)
			}
		} else if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read env config file: %w", err)
		}
	}

	v.SetEnvPrefix("BALANCED")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.BindEnv("server.port", "BALANCED_SERVER_PORT", "PORT")
	v.BindEnv("store.url", "BALANCED_STORE_URL", "REDIS_URL")
	v.BindEnv("auth.hmacSecret", "BALANCED_AUTH_HMAC_SECRET", "HMAC_SECRET")
	v.BindEnv("store.keyPrefix", "BALANCED_STORE_KEY_PREFIX")
	v.BindEnv("auth.timestampTolerance", "BALANCED_AUTH_TIMESTAMP_TOLERANCE")
	v.BindEnv("server.corsOrigins", "BALANCED_SERVER_CORS_ORIGINS")
	v.BindEnv("server.shutdownTimeout", "BALANCED_SERVER_SHUTDOWN_TIMEOUT")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8081")
	v.SetDefault("server.readTimeout", 15*time.Second)
	v.SetDefault("server.writeTimeout", 15*time.Second)
	v.SetDefault("server.idleTimeout", 60*time.Second)
	v.SetDefault("server.shutdownTimeout", 5*time.Second)
	v.SetDefault("ledger.mode", entity.ModeSingle)
	v.SetDefault("store.driver", "redis")
	v.SetDefault("store.url", "redis://127.0.0.1:6379/0")
	v.SetDefault("store.path", "data/balances")
	v.SetDefault("store.bucket", "balances")
	v.SetDefault("store.table", "balances")
	v.SetDefault("store.codec", "json")
	v.SetDefault("store.timeout", 2*time.Second)
	v.SetDefault("store.poolSize", 16)
	v.SetDefault("auth.timestampTolerance", 5*time.Minute)
	v.SetDefault("log.level", "info")
	v.SetDefault("metrics.enabled", true)
}

// Validate rejects configurations the server cannot start with
func (c *Config) Validate() error {
	switch c.Ledger.Mode {
	case entity.ModeSingle, entity.ModeMulti:
	default:
		return fmt.Errorf("invalid ledger.mode %q: want %q or %q", c.Ledger.Mode, entity.ModeSingle, entity.ModeMulti)
	}
	if c.Store.Driver == "" {
		return fmt.Errorf("store.driver is required")
	}
	if c.Store.Timeout <= 0 {
		return fmt.Errorf("store.timeout must be positive")
	}
	return nil
}
