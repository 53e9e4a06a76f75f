package config

import (
	"fmt"

	"github.com/joho/godotenv"
)

type Config interface {
	EnvConfig
	DiscogsConfig
	SecurityConfig
	SessionConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetBaseURL() string
	GetEnv() string
}

type mainConfig struct {
	EnvVars
	Discogs
	Security
	Sessions
}

// New loads the process configuration. A .env file is read first if present
// (development convenience); real environment variables win. The process must
// not start without upstream consumer credentials, so New fails when they are
// absent.
func New() (Config, error) {
	_ = godotenv.Load()

	c := mainConfig{}
	if err := validate(c); err != nil {
		return nil, err
	}
	return c, nil
}

func validate(c Config) error {
	if c.GetConsumerKey() == "" {
		return fmt.Errorf("missing required configuration: %s", consumerKeyVar)
	}
	if c.GetConsumerSecret() == "" {
		return fmt.Errorf("missing required configuration: %s", consumerSecretVar)
	}
	return nil
}
