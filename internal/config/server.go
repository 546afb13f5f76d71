package config

import (
	"time"
)

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	// ListenAddr is the address to listen on (e.g., ":8080")
	ListenAddr string

	// ReadTimeout is the maximum duration for reading the entire request
	ReadTimeout time.Duration

	// WriteTimeout is the maximum duration before timing out writes of the response
	WriteTimeout time.Duration

	// IdleTimeout is the maximum amount of time to wait for the next request
	IdleTimeout time.Duration

	// MaxHeaderBytes controls the maximum number of bytes the server will read parsing the request header's keys and values
	MaxHeaderBytes int

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown
	ShutdownTimeout time.Duration
}

const (
	defaultReadTimeout     = 30 * time.Second
	defaultWriteTimeout    = 30 * time.Second
	defaultIdleTimeout     = 120 * time.Second
	defaultMaxHeaderBytes  = 1 << 20 // 1 MB
	defaultShutdownTimeout = 15 * time.Second
)

// ParseServerConfig resolves server config with explicit precedence:
// ENV > AppConfig (YAML + merged defaults) > built-in defaults.
func ParseServerConfig(cfg AppConfig) ServerConfig {
	listen := ParseString("RATESD_LISTEN", "")
	if listen == "" {
		listen = cfg.ListenAddr
	}

	maxHeaderBytes := ParseInt("RATESD_SERVER_MAX_HEADER_BYTES", defaultMaxHeaderBytes)
	if maxHeaderBytes <= 0 {
		maxHeaderBytes = defaultMaxHeaderBytes
	}

	shutdownTimeout := ParseDuration("RATESD_SERVER_SHUTDOWN_TIMEOUT", defaultShutdownTimeout)
	if shutdownTimeout < 3*time.Second {
		shutdownTimeout = 3 * time.Second
	}

	return ServerConfig{
		ListenAddr:      listen,
		ReadTimeout:     ParseDuration("RATESD_SERVER_READ_TIMEOUT", defaultReadTimeout),
		WriteTimeout:    ParseDuration("RATESD_SERVER_WRITE_TIMEOUT", defaultWriteTimeout),
		IdleTimeout:     ParseDuration("RATESD_SERVER_IDLE_TIMEOUT", defaultIdleTimeout),
		MaxHeaderBytes:  maxHeaderBytes,
		ShutdownTimeout: shutdownTimeout,
	}
}
