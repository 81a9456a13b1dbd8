package config

import (
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Addr       string        `mapstructure:"addr"`
	DBDSN      string        `mapstructure:"db_dsn"`
	LogFile    string        `mapstructure:"log_file"`
	LogLevel   string        `mapstructure:"log_level"`
	CacheTTL   time.Duration `mapstructure:"cache_ttl"`
	BcryptCost int           `mapstructure:"bcrypt_cost"`
	RateLimit  int           `mapstructure:"rate_limit"`
}

// Load reads an optional config.yaml and STOREFRONT_* environment overrides.
func Load() (Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./")
	v.AddConfigPath("/etc/storefront/")

	v.SetDefault("addr", ":8080")
	v.SetDefault("db_dsn", "storefront.db")
	v.SetDefault("log_file", "")
	v.SetDefault("log_level", "info")
	v.SetDefault("cache_ttl", "30m")
	v.SetDefault("bcrypt_cost", 12)
	v.SetDefault("rate_limit", 60)

	v.SetEnvPrefix("STOREFRONT")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// Config file is optional; anything else is a real problem.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Config{}, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
