package config

import (
	"time"

	"github.com/spf13/viper"
)

const (
	keyAPIURL   = "api_url"
	keyAuthURL  = "auth_url"
	keyEmail    = "email"
	keyPassword = "password"
	keyAPIKey   = "api_key"
	keyVerbose  = "verbose"
	keyTimeout  = "timeout"
)

// Exported keys for WithOverride.
const (
	KeyAPIURL   = keyAPIURL
	KeyAuthURL  = keyAuthURL
	KeyEmail    = keyEmail
	KeyPassword = keyPassword
	KeyAPIKey   = keyAPIKey
	KeyVerbose  = keyVerbose
	KeyTimeout  = keyTimeout
	KeyLogLevel = keyLogLevel
	KeyPort     = keyPort
	KeyEnv      = keyEnv
)

type SDKConfig interface {
	GetAPIURL() string
	GetAuthURL() string
	GetEmail() string
	GetPassword() string
	GetAPIKey() string
	GetVerbose() bool
	GetTimeout() time.Duration
}

type SDK struct {
	v *viper.Viper
}

var _ SDKConfig = SDK{}

func (s SDK) GetAPIURL() string {
	return s.v.GetString(keyAPIURL)
}

func (s SDK) GetAuthURL() string {
	return s.v.GetString(keyAuthURL)
}

func (s SDK) GetEmail() string {
	return s.v.GetString(keyEmail)
}

func (s SDK) GetPassword() string {
	return s.v.GetString(keyPassword)
}

func (s SDK) GetAPIKey() string {
	return s.v.GetString(keyAPIKey)
}

func (s SDK) GetVerbose() bool {
	return s.v.GetBool(keyVerbose)
}

// GetTimeout bounds a single HTTP round trip made by the CLI.
func (s SDK) GetTimeout() time.Duration {
	return s.v.GetDuration(keyTimeout)
}
