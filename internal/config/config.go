package config

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	LogLevel string        `mapstructure:"log_level"`
	Compute  ComputeConfig `mapstructure:"compute"`
	Server   ServerConfig  `mapstructure:"server"`
	History  HistoryConfig `mapstructure:"history"`
}

type ComputeConfig struct {
	Kernel string `mapstructure:"kernel"`
	Format string `mapstructure:"format"`
}

type ServerConfig struct {
	ListenAddr      string `mapstructure:"listen_addr"`
	MaxDimension    int    `mapstructure:"max_dimension"`
	RequestTimeout  int    `mapstructure:"request_timeout"`
	ShutdownTimeout int    `mapstructure:"shutdown_timeout"`
}

type HistoryConfig struct {
	Limit int `mapstructure:"limit"`
}

type LoadOptions struct {
	Cmd        flagBinder
	ConfigFile string
	Defaults   Config
}

type flagBinder interface {
	Flags() *pflag.FlagSet
}

func DefaultConfig() Config {
	return Config{
		LogLevel: "info",
		Compute: ComputeConfig{
			Kernel: "scalar",
			Format: FormatText,
		},
		Server: ServerConfig{
			ListenAddr:      ":8080",
			MaxDimension:    1 << 20,
			RequestTimeout:  10,
			ShutdownTimeout: 30,
		},
		History: HistoryConfig{
			Limit: 50,
		},
	}
}

func RegisterFlags(fs *pflag.FlagSet, defaults Config) {
	fs.String("log-level", defaults.LogLevel, "Log level (debug|info|warn|error)")
	fs.String("compute-kernel", defaults.Compute.Kernel, "Float64 kernel (scalar|vecmath|gonum)")
	fs.String("compute-format", defaults.Compute.Format, "Output format (text|json)")
	fs.String("server-listen-addr", defaults.Server.ListenAddr, "HTTP listen address")
	fs.Int("server-max-dimension", defaults.Server.MaxDimension, "Maximum vector length accepted by POST /dot")
	fs.Int("server-request-timeout", defaults.Server.RequestTimeout, "Per-request timeout in seconds")
	fs.Int("server-shutdown-timeout", defaults.Server.ShutdownTimeout, "Graceful shutdown timeout in seconds")
	fs.Int("history-limit", defaults.History.Limit, "Number of calculations kept in history")
}

func Load(opts LoadOptions) (Config, error) {
	v := viper.New()

	setDefaults(v, opts.Defaults)
	if opts.Cmd != nil {
		if err := bindFlags(v, opts.Cmd.Flags()); err != nil {
			return Config{}, err
		}
	}

	v.SetEnvPrefix("DOTPROD")
	replacer := strings.NewReplacer("-", "_", ".", "_", "__", "_")
	v.SetEnvKeyReplacer(replacer)
	v.AutomaticEnv()

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	} else {
		v.SetConfigName("dotprod")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return Config{}, fmt.Errorf("read config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}

	format, err := NormalizeFormat(cfg.Compute.Format)
	if err != nil {
		return Config{}, err
	}
	cfg.Compute.Format = format

	return cfg, nil
}

func setDefaults(v *viper.Viper, c Config) {
	v.SetDefault("log_level", c.LogLevel)
	v.SetDefault("compute.kernel", c.Compute.Kernel)
	v.SetDefault("compute.format", c.Compute.Format)
	v.SetDefault("server.listen_addr", c.Server.ListenAddr)
	v.SetDefault("server.max_dimension", c.Server.MaxDimension)
	v.SetDefault("server.request_timeout", c.Server.RequestTimeout)
	v.SetDefault("server.shutdown_timeout", c.Server.ShutdownTimeout)
	v.SetDefault("history.limit", c.History.Limit)
}

// flagKeys maps each flag from RegisterFlags to its config key. Binding flags
// to the dotted keys directly keeps config file values visible to Unmarshal.
var flagKeys = map[string]string{
	"log-level":               "log_level",
	"compute-kernel":          "compute.kernel",
	"compute-format":          "compute.format",
	"server-listen-addr":      "server.listen_addr",
	"server-max-dimension":    "server.max_dimension",
	"server-request-timeout":  "server.request_timeout",
	"server-shutdown-timeout": "server.shutdown_timeout",
	"history-limit":           "history.limit",
}

func bindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	for name, key := range flagKeys {
		f := fs.Lookup(name)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("bind flag %s: %w", name, err)
		}
	}
	return nil
}
