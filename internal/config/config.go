package config

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

const envPrefix = "KONAN"

type Config interface {
	EnvConfig
	SDKConfig
	CorsConfig
}

// ServiceConfig is what the model service needs.
type ServiceConfig interface {
	EnvConfig
	CorsConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetEnv() string
	GetLogLevel() string
	GetLogFormat() string
}

type CorsConfig interface {
	GetAllowedOrigins() AllowedOrigins
}

type mainConfig struct {
	EnvVars
	SDK
	Cors
}

var _ Config = mainConfig{}

type loadOptions struct {
	configFile string
	overrides  map[string]any
}

// Option adjusts how the configuration is loaded.
type Option func(*loadOptions)

// WithConfigFile reads the given file instead of searching for konan.yaml.
func WithConfigFile(path string) Option {
	return func(o *loadOptions) {
		o.configFile = path
	}
}

// WithOverride sets a key above every other source, e.g. from a CLI flag.
func WithOverride(key string, value any) Option {
	return func(o *loadOptions) {
		o.overrides[key] = value
	}
}

// New loads defaults, then konan.yaml (from the working directory or
// $HOME/.konan), then KONAN_* environment variables, then overrides.
func New(options ...Option) (Config, error) {
	opts := &loadOptions{overrides: map[string]any{}}
	for _, opt := range options {
		opt(opts)
	}

	v := viper.New()
	setDefaults(v)

	if opts.configFile != "" {
		v.SetConfigFile(opts.configFile)
	} else {
		v.SetConfigName("konan")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.konan")
	}

	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, errors.Wrap(err, "[config.New] failed to read config")
		}
	}

	for k, val := range opts.overrides {
		v.Set(k, val)
	}

	return mainConfig{
		EnvVars: EnvVars{v: v},
		SDK:     SDK{v: v},
		Cors:    Cors{v: v},
	}, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(keyAPIURL, "https://api.konan.ai")
	v.SetDefault(keyAuthURL, "https://auth.konan.ai")
	v.SetDefault(keyVerbose, false)
	v.SetDefault(keyTimeout, "30s")
	v.SetDefault(keyPort, "8000")
	v.SetDefault(keyAppName, "Konan Model")
	v.SetDefault(keyEnv, "DEV")
	v.SetDefault(keyLogLevel, "info")
	v.SetDefault(keyLogFormat, "console")
	v.SetDefault(keyAllowedOrigins, "")
}
