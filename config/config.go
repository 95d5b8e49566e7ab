// Package config loads the bot configuration from a YAML file, the
// environment and .env.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	DefaultPath = "cvbot.yaml"
	EnvPrefix   = "CVBOT"
)

// Store and session backends.
const (
	DriverSQLite   = "sqlite"
	DriverFirebase = "firebase"
	DriverMemory   = "memory"
	DriverRedis    = "redis"
)

type Config struct {
	Bot      BotConfig      `mapstructure:"bot" yaml:"bot"`
	Log      LogConfig      `mapstructure:"log" yaml:"log"`
	Catalog  CatalogConfig  `mapstructure:"catalog" yaml:"catalog"`
	Store    StoreConfig    `mapstructure:"store" yaml:"store"`
	Firebase FirebaseConfig `mapstructure:"firebase" yaml:"firebase"`
	Session  SessionConfig  `mapstructure:"session" yaml:"session"`
	Render   RenderConfig   `mapstructure:"render" yaml:"render"`
	Metrics  MetricsConfig  `mapstructure:"metrics" yaml:"metrics"`
}

type BotConfig struct {
	Token string `mapstructure:"token" yaml:"token"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

type CatalogConfig struct {
	Path string `mapstructure:"path" yaml:"path,omitempty"` // empty uses the built-in catalog
}

type StoreConfig struct {
	Driver     string `mapstructure:"driver" yaml:"driver"`
	SQLitePath string `mapstructure:"sqlite_path" yaml:"sqlite_path"`
}

type FirebaseConfig struct {
	CredentialsFile string `mapstructure:"credentials_file" yaml:"credentials_file,omitempty"`
	DatabaseURL     string `mapstructure:"database_url" yaml:"database_url,omitempty"`
}

type SessionConfig struct {
	Driver   string        `mapstructure:"driver" yaml:"driver"`
	RedisURL string        `mapstructure:"redis_url" yaml:"redis_url,omitempty"`
	Prefix   string        `mapstructure:"prefix" yaml:"prefix"`
	TTL      time.Duration `mapstructure:"ttl" yaml:"ttl"`
}

type RenderConfig struct {
	TemplatePath string        `mapstructure:"template_path" yaml:"template_path,omitempty"`
	OutputDir    string        `mapstructure:"output_dir" yaml:"output_dir"`
	LaTeXBinary  string        `mapstructure:"latex_binary" yaml:"latex_binary"`
	Passes       int           `mapstructure:"passes" yaml:"passes"`
	Timeout      time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

type MetricsConfig struct {
	Addr string `mapstructure:"addr" yaml:"addr,omitempty"` // empty disables the endpoint
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("store.driver", DriverSQLite)
	v.SetDefault("store.sqlite_path", "cvbot.db")
	v.SetDefault("session.driver", DriverMemory)
	v.SetDefault("session.prefix", "cvbot")
	v.SetDefault("session.ttl", 24*time.Hour)
	v.SetDefault("render.output_dir", "output")
	v.SetDefault("render.latex_binary", "pdflatex")
	v.SetDefault("render.passes", 2)
	v.SetDefault("render.timeout", 60*time.Second)

	// bind keys without defaults so env overrides reach Unmarshal
	for _, key := range []string{
		"bot.token", "catalog.path",
		"firebase.credentials_file", "firebase.database_url",
		"session.redis_url", "render.template_path", "metrics.addr",
	} {
		_ = v.BindEnv(key)
	}
}

// Load reads path (a missing file is fine unless explicit is set), then
// applies CVBOT_* environment overrides, e.g. CVBOT_BOT_TOKEN for bot.token.
func Load(path string, explicit bool) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			missing := errors.As(err, &notFound) || errors.Is(err, os.ErrNotExist)
			if explicit || !missing {
				return nil, fmt.Errorf("failed to read config %s: %w", path, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}

// Validate checks the settings needed to run the bot.
func (c *Config) Validate() error {
	var errs []error
	if c.Bot.Token == "" {
		errs = append(errs, errors.New("bot.token is required (or set CVBOT_BOT_TOKEN)"))
	}

	switch c.Store.Driver {
	case DriverSQLite:
		if c.Store.SQLitePath == "" {
			errs = append(errs, errors.New("store.sqlite_path is required for the sqlite store"))
		}
	case DriverFirebase:
		if c.Firebase.CredentialsFile == "" || c.Firebase.DatabaseURL == "" {
			errs = append(errs, errors.New("firebase.credentials_file and firebase.database_url are required for the firebase store"))
		}
	case DriverMemory:
	default:
		errs = append(errs, fmt.Errorf("unknown store.driver %q (valid: sqlite, firebase, memory)", c.Store.Driver))
	}

	switch c.Session.Driver {
	case DriverRedis:
		if c.Session.RedisURL == "" {
			errs = append(errs, errors.New("session.redis_url is required for the redis session store"))
		}
	case DriverMemory:
	default:
		errs = append(errs, fmt.Errorf("unknown session.driver %q (valid: redis, memory)", c.Session.Driver))
	}

	if c.Render.Passes < 1 {
		errs = append(errs, errors.New("render.passes must be at least 1"))
	}
	if c.Render.Timeout <= 0 {
		errs = append(errs, errors.New("render.timeout must be positive"))
	}
	return errors.Join(errs...)
}

// Redacted returns the config as YAML with secrets masked.
func (c *Config) Redacted() ([]byte, error) {
	out := *c
	if out.Bot.Token != "" {
		out.Bot.Token = "****"
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(out); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
