package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

var validLogLevels = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}

var validLogFormats = map[string]bool{"json": true, "console": true}

// LoadConfig loads configuration from file using viper.
// CLI flags > environment > config file > defaults precedence.
func LoadConfig(configPath string) (*ServerConfig, error) {
	v := viper.New()

	def := DefaultServerConfig()
	v.SetDefault("http_host", def.HTTPHost)
	v.SetDefault("http_port", def.HTTPPort)
	v.SetDefault("grpc_port", def.GRPCPort)
	v.SetDefault("database_url", def.DatabaseURL)
	v.SetDefault("redis_url", def.RedisURL)
	v.SetDefault("cache_ttl", def.CacheTTL.String())
	v.SetDefault("max_body_bytes", def.MaxBodyBytes)
	v.SetDefault("read_timeout", def.ReadTimeout.String())
	v.SetDefault("log_level", def.LogLevel)
	v.SetDefault("log_format", def.LogFormat)
	v.SetDefault("log_file", def.LogFile)

	v.SetEnvPrefix("FK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &ServerConfig{
		HTTPHost:     v.GetString("http_host"),
		HTTPPort:     v.GetInt("http_port"),
		GRPCPort:     v.GetInt("grpc_port"),
		DatabaseURL:  v.GetString("database_url"),
		RedisURL:     v.GetString("redis_url"),
		CacheTTL:     v.GetDuration("cache_ttl"),
		MaxBodyBytes: v.GetInt64("max_body_bytes"),
		ReadTimeout:  v.GetDuration("read_timeout"),
		LogLevel:     strings.ToLower(v.GetString("log_level")),
		LogFormat:    strings.ToLower(v.GetString("log_format")),
		LogFile:      v.GetString("log_file"),
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks port ranges, positive limits and the logging settings.
// Commands call it again after applying flag overrides.
func Validate(cfg *ServerConfig) error {
	if cfg.HTTPPort <= 0 || cfg.HTTPPort > 65535 {
		return fmt.Errorf("http_port must be between 1 and 65535, got %d", cfg.HTTPPort)
	}
	if cfg.GRPCPort < 0 || cfg.GRPCPort > 65535 {
		return fmt.Errorf("grpc_port must be between 0 and 65535, got %d", cfg.GRPCPort)
	}
	if cfg.GRPCPort != 0 && cfg.GRPCPort == cfg.HTTPPort {
		return fmt.Errorf("grpc_port must differ from http_port, both are %d", cfg.GRPCPort)
	}
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		return fmt.Errorf("database_url must not be empty")
	}
	if cfg.CacheTTL <= 0 {
		return fmt.Errorf("cache_ttl must be positive, got %v", cfg.CacheTTL)
	}
	if cfg.MaxBodyBytes <= 0 {
		return fmt.Errorf("max_body_bytes must be positive, got %d", cfg.MaxBodyBytes)
	}
	if cfg.ReadTimeout <= 0 {
		return fmt.Errorf("read_timeout must be positive, got %v", cfg.ReadTimeout)
	}
	if !validLogLevels[cfg.LogLevel] {
		return fmt.Errorf("log_level must be one of debug, info, warn, error, got %q", cfg.LogLevel)
	}
	if !validLogFormats[cfg.LogFormat] {
		return fmt.Errorf("log_format must be json or console, got %q", cfg.LogFormat)
	}
	return nil
}
