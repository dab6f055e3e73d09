package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Database DatabaseConfig `mapstructure:"database"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Log      LogConfig      `mapstructure:"log"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Kafka    KafkaConfig    `mapstructure:"kafka"`
	Catalog  CatalogConfig  `mapstructure:"catalog"`
	Legacy   LegacyConfig   `mapstructure:"legacy"`
	Request  RequestConfig  `mapstructure:"request"`
	Auto     AutoConfig     `mapstructure:"auto"`
	Migrate  MigrateConfig  `mapstructure:"migrations"`
	Rate     RateConfig     `mapstructure:"rate"`
}

type AppConfig struct {
	Host string `mapstructure:"host"`
}

type DatabaseConfig struct {
	URL string `mapstructure:"url"`
}

type JWTConfig struct {
	Secret string `mapstructure:"secret"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

// RedisConfig enables the catalog cache when Addr is set.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// KafkaConfig enables the Kafka audit sink when Brokers is set.
type KafkaConfig struct {
	Brokers    string `mapstructure:"brokers"`
	AuditTopic string `mapstructure:"audit_topic"`
}

func (k KafkaConfig) BrokerList() []string {
	var out []string
	for _, b := range strings.Split(k.Brokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	return out
}

type CatalogConfig struct {
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
}

type LegacyConfig struct {
	BatchWindow time.Duration `mapstructure:"batch_window"`
}

type RequestConfig struct {
	Timeout time.Duration `mapstructure:"timeout"`
}

// RateConfig limits requests per client address. A zero Limit disables it.
type RateConfig struct {
	Limit  int           `mapstructure:"limit"`
	Window time.Duration `mapstructure:"window"`
}

type AutoConfig struct {
	Migrate bool `mapstructure:"migrate"`
}

type MigrateConfig struct {
	Dir string `mapstructure:"dir"`
}

var defaults = map[string]interface{}{
	"app.host":            ":8080",
	"database.url":        "",
	"jwt.secret":          "",
	"log.level":           "info",
	"redis.addr":          "",
	"redis.password":      "",
	"redis.db":            0,
	"kafka.brokers":       "",
	"kafka.audit_topic":   "inventory-audit",
	"catalog.cache_ttl":   "10m",
	"legacy.batch_window": "10s",
	"request.timeout":     "30s",
	"auto.migrate":        false,
	"migrations.dir":      "./migrations",
	"rate.limit":          300,
	"rate.window":         "1m",
}

// Load reads an optional fieldstock.yaml from the working directory and
// overlays the environment. Nested keys map to env names by replacing the
// dot with an underscore, e.g. database.url is DATABASE_URL.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("fieldstock")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// Validate reports the keys serve needs. Postgres settings are only
// required when the in-memory store is not used.
func (c *Config) Validate(inMemory bool) error {
	var missing []string
	if c.JWT.Secret == "" {
		missing = append(missing, "JWT_SECRET")
	}
	if !inMemory && c.Database.URL == "" {
		missing = append(missing, "DATABASE_URL")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}
	if w := c.Legacy.BatchWindow; w != 0 && w < time.Millisecond {
		return fmt.Errorf("LEGACY_BATCH_WINDOW must be at least 1ms, got %s", w)
	}
	return nil
}
