package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

//go:embed config.yml
var embeddedConfig []byte

// EnvPrefix namespaces the environment overrides, e.g. ROTINAAI_JWT_SECRETKEY.
const EnvPrefix = "ROTINAAI"

type JWTConfig struct {
	SecretKey string `mapstructure:"secretKey"`
	Issuer    string `mapstructure:"issuer"`
	Audience  string `mapstructure:"audience"`
}

type SettingsConfig struct {
	// StorageBackend is one of memory, cache, redis or postgres.
	StorageBackend string `mapstructure:"storageBackend"`
	// PersistenceMode is whole or field.
	PersistenceMode string `mapstructure:"persistenceMode"`
	// ThemeOwner is external or local.
	ThemeOwner     string        `mapstructure:"themeOwner"`
	PulseDuration  time.Duration `mapstructure:"pulseDuration"`
	ThemeCookie    string        `mapstructure:"themeCookie"`
	AllowedOrigins []string      `mapstructure:"allowedOrigins"`
}

type Config struct {
	Mode     string `mapstructure:"mode"`
	Dotenv   string `mapstructure:"dotenv"`
	Handlers struct {
		Prometheus struct {
			Port string `mapstructure:"port"`
		} `mapstructure:"prometheus"`
	} `mapstructure:"handlers"`
	Repositories struct {
		Postgres struct {
			Host              string `mapstructure:"host"`
			Password          string `mapstructure:"password"`
			Port              string `mapstructure:"port"`
			Username          string `mapstructure:"username"`
			DB                string `mapstructure:"db"`
			SSLMODE           string `mapstructure:"SSLMODE"`
			MAXCONWAITINGTIME int    `mapstructure:"MAXCONWAITINGTIME"`
		} `mapstructure:"postgres"`
		Redis struct {
			URL       string `mapstructure:"url"`
			KeyPrefix string `mapstructure:"keyPrefix"`
		} `mapstructure:"redis"`
	} `mapstructure:"repositories"`
	Server struct {
		HTTPPort string        `mapstructure:"HTTPPort"`
		Timeout  time.Duration `mapstructure:"HTTPTimeout"`
	} `mapstructure:"server"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Settings SettingsConfig `mapstructure:"settings"`
}

func InitConfig() (Config, error) {
	v := viper.New()

	v.AddConfigPath(".")
	v.AddConfigPath("config")
	v.AddConfigPath("/app/config")
	v.AddConfigPath("/usr/local/bin")

	v.SetConfigName("config")
	v.SetConfigType("yml")

	err := v.ReadInConfig()
	if err != nil {
		fmt.Printf("Warning: Failed to find file-based config: %s. Falling back to embedded config.\n", err)
		if err = v.ReadConfig(bytes.NewReader(embeddedConfig)); err != nil {
			return Config{}, fmt.Errorf("failed to read embedded config: %w", err)
		}
	}
	return load(v)
}

// Load reads configuration from the YAML in raw, applying environment
// overrides. It skips the config file search.
func Load(raw []byte) (Config, error) {
	v := viper.New()
	v.SetConfigType("yml")
	if err := v.ReadConfig(bytes.NewReader(raw)); err != nil {
		return Config{}, fmt.Errorf("failed to read config: %w", err)
	}
	return load(v)
}

func load(v *viper.Viper) (Config, error) {
	var config Config

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.Unmarshal(&config); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := config.validate(); err != nil {
		return Config{}, err
	}
	return config, nil
}

func (c Config) validate() error {
	switch c.Settings.StorageBackend {
	case "memory", "cache", "redis", "postgres":
	default:
		return fmt.Errorf("settings.storageBackend %q is not one of memory, cache, redis, postgres", c.Settings.StorageBackend)
	}
	switch c.Settings.PersistenceMode {
	case "whole", "field":
	default:
		return fmt.Errorf("settings.persistenceMode %q is not one of whole, field", c.Settings.PersistenceMode)
	}
	switch c.Settings.ThemeOwner {
	case "external", "local":
	default:
		return fmt.Errorf("settings.themeOwner %q is not one of external, local", c.Settings.ThemeOwner)
	}
	return nil
}
