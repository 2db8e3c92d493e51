// Package config provides configuration management for FormKeeper services.
package config

import (
	"fmt"
	"time"
)

// ServerConfig holds configuration for the HTTP and gRPC form services.
type ServerConfig struct {
	HTTPHost     string
	HTTPPort     int
	GRPCPort     int // 0 disables the gRPC listener
	DatabaseURL  string
	RedisURL     string // empty disables the definition cache
	CacheTTL     time.Duration
	MaxBodyBytes int64
	ReadTimeout  time.Duration
	LogLevel     string
	LogFormat    string
	LogFile      string
}

// DefaultServerConfig returns configuration with default values.
func DefaultServerConfig() *ServerConfig {
	return &ServerConfig{
		HTTPHost:     "127.0.0.1",
		HTTPPort:     3000,
		GRPCPort:     0,
		DatabaseURL:  "sqlite://./formkeeper.db",
		CacheTTL:     5 * time.Minute,
		MaxBodyBytes: 10 << 20,
		ReadTimeout:  15 * time.Second,
		LogLevel:     "info",
		LogFormat:    "json",
	}
}

// HTTPAddr returns the host:port the HTTP listener binds to.
func (c *ServerConfig) HTTPAddr() string {
	return fmt.Sprintf("%s:%d", c.HTTPHost, c.HTTPPort)
}

// GRPCAddr returns the gRPC listen address, or "" when gRPC is disabled.
func (c *ServerConfig) GRPCAddr() string {
	if c.GRPCPort == 0 {
		return ""
	}
	return fmt.Sprintf("%s:%d", c.HTTPHost, c.GRPCPort)
}
