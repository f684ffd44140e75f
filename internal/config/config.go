package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the full application configuration. Values come from an optional
// config file (config.yaml in the given path), overridden by TYPSET_* env vars.
type Config struct {
	Tools  ToolsConfig  `mapstructure:"tools"`
	Cache  CacheConfig  `mapstructure:"cache"`
	Render RenderConfig `mapstructure:"render"`
	Runner RunnerConfig `mapstructure:"runner"`
	Server ServerConfig `mapstructure:"server"`
	Misc   MiscConfig   `mapstructure:"misc"`
}

// ToolsConfig holds the executable names or paths of the external toolchains.
type ToolsConfig struct {
	Latex   string `mapstructure:"latex"`
	Dvisvgm string `mapstructure:"dvisvgm"`
	Typst   string `mapstructure:"typst"`
	Magick  string `mapstructure:"magick"`
}

// CacheConfig controls where rendered artifacts live.
// An empty Root means the platform user cache directory.
type CacheConfig struct {
	Root string `mapstructure:"root"`
}

// RenderConfig holds the defaults applied when a request leaves them unset.
type RenderConfig struct {
	Color   string `mapstructure:"color"`
	PPI     int    `mapstructure:"ppi"`
	Backend string `mapstructure:"backend"`
}

// RunnerConfig selects how external tools are invoked.
// Kind is "exec" (local binaries) or "docker" (inside a container).
type RunnerConfig struct {
	Kind      string `mapstructure:"kind"`
	Container string `mapstructure:"container"`
	Docker    string `mapstructure:"docker"`
}

type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutDownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout"`
	AllowedOrigins  string        `mapstructure:"allowed_origins"`
	GinMode         string        `mapstructure:"gin_mode"`
}

type MiscConfig struct {
	LogLevel string `mapstructure:"log_level"`
}

// LoadConfig reads configuration from confPath (optional) and the environment.
// Environment variables like TYPSET_TOOLS_LATEX override config file values.
func LoadConfig(confPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if confPath != "" {
		v.AddConfigPath(confPath)
	}
	v.AddConfigPath(".")

	setDefaults(v)

	v.AutomaticEnv()
	v.SetEnvPrefix("TYPSET")
	v.SetEnvKeyReplacer(envKeyReplacer())

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		// No config file is fine, defaults and env vars apply.
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}

// envKeyReplacer maps nested keys to env var shape, e.g. tools.latex -> TOOLS_LATEX.
func envKeyReplacer() *strings.Replacer {
	return strings.NewReplacer(".", "_")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("tools.latex", "latex")
	v.SetDefault("tools.dvisvgm", "dvisvgm")
	v.SetDefault("tools.typst", "typst")
	v.SetDefault("tools.magick", "magick")

	v.SetDefault("cache.root", "")

	v.SetDefault("render.color", "blue")
	v.SetDefault("render.ppi", 300)
	v.SetDefault("render.backend", "typst")

	v.SetDefault("runner.kind", "exec")
	v.SetDefault("runner.container", "typset-toolchain")
	v.SetDefault("runner.docker", "docker")

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", 60*time.Second)
	v.SetDefault("server.idle_timeout", 120*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("server.request_timeout", 60*time.Second)
	v.SetDefault("server.allowed_origins", "*")
	v.SetDefault("server.gin_mode", "release")

	v.SetDefault("misc.log_level", "info")
}
