// Package config parses the process's environment variables into the
// settings the proxy needs at startup: the client-facing port, the
// upstream Redis address and TLS flag, the control-plane port, and the
// log level.
package config

import (
	"github.com/kelseyhightower/envconfig"
)

// Config holds every environment-derived setting the proxy needs at
// startup.
type Config struct {
	ProxyPort             string `envconfig:"PROXY_PORT" default:"6350"`
	RedisAddress          string `envconfig:"REDIS_ADDRESS" default:"127.0.0.1:6379"`
	IsRedisTLSConn        bool   `envconfig:"IS_REDIS_TLS_CONN" default:"false"`
	FaultConfigServerPort string `envconfig:"FAULT_CONFIG_SERVER_PORT" default:"8000"`
	LogLevel              string `envconfig:"LOG_LEVEL" default:"info"`

	// AnalyticsRedisAddress, if set, enables periodic mirroring of registry
	// stats into a Redis instance for external dashboards. Empty disables it.
	AnalyticsRedisAddress string `envconfig:"ANALYTICS_REDIS_ADDRESS" default:""`
}

// Load reads and validates the process environment into a Config.
func Load() (Config, error) {
	var c Config
	if err := envconfig.Process("", &c); err != nil {
		return Config{}, err
	}
	return c, nil
}
