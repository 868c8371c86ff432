package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

const (
	keyPort      = "port"
	keyAppName   = "app_name"
	keyEnv       = "env"
	keyLogLevel  = "log_level"
	keyLogFormat = "log_format"
)

type EnvVars struct {
	v *viper.Viper
}

var _ EnvConfig = EnvVars{}

// GetPort returns the listen address, always starting with ':'.
func (e EnvVars) GetPort() string {
	port := e.v.GetString(keyPort)
	if !strings.HasPrefix(port, ":") {
		port = fmt.Sprintf(":%s", port)
	}
	return port
}

func (e EnvVars) GetAppName() string {
	return e.v.GetString(keyAppName)
}

func (e EnvVars) GetEnv() string {
	return strings.ToUpper(e.v.GetString(keyEnv))
}

func (e EnvVars) GetLogLevel() string {
	return e.v.GetString(keyLogLevel)
}

// GetLogFormat is either "console" or "json".
func (e EnvVars) GetLogFormat() string {
	return e.v.GetString(keyLogFormat)
}
