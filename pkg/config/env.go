package config

import (
	"os"
	"strconv"
	"strings"
)

// Environment variables read by LoadEnvConfig.
const (
	EnvPort        = "SONGBOOK_PORT"
	EnvPath        = "SONGBOOK_PATH"
	EnvConfig      = "SONGBOOK_CONFIG"
	EnvSeed        = "SONGBOOK_SEED"
	EnvLogLevel    = "SONGBOOK_LOG_LEVEL"
	EnvLogFormat   = "SONGBOOK_LOG_FORMAT"
	EnvCORSOrigins = "SONGBOOK_CORS_ORIGINS"
)

// LoadEnvConfig applies SONGBOOK_* environment variables to cfg.
func LoadEnvConfig(cfg *Config) error {
	if cfg.Sources == nil {
		cfg.Sources = make(map[string]string)
	}

	if v, ok := lookupEnv(EnvPort); ok {
		port, err := strconv.Atoi(v)
		if err != nil {
			return &ConfigError{Path: EnvPort, Message: "invalid port " + strconv.Quote(v)}
		}
		cfg.Port = port
		cfg.Sources["port"] = SourceEnv
	}
	if v, ok := lookupEnv(EnvPath); ok {
		cfg.Path = v
		cfg.Sources["path"] = SourceEnv
	}
	if v, ok := lookupEnv(EnvSeed); ok {
		cfg.Seed = v
		cfg.Sources["seed"] = SourceEnv
	}
	if v, ok := lookupEnv(EnvLogLevel); ok {
		cfg.LogLevel = v
		cfg.Sources["logLevel"] = SourceEnv
	}
	if v, ok := lookupEnv(EnvLogFormat); ok {
		cfg.LogFormat = v
		cfg.Sources["logFormat"] = SourceEnv
	}
	if v, ok := lookupEnv(EnvCORSOrigins); ok {
		cfg.CORS.AllowOrigins = SplitList(v)
		cfg.Sources["cors.allowOrigins"] = SourceEnv
	}
	return nil
}

// lookupEnv treats empty and whitespace-only values as unset.
func lookupEnv(key string) (string, bool) {
	v, ok := os.LookupEnv(key)
	v = strings.TrimSpace(v)
	return v, ok && v != ""
}

// SplitList splits a comma-separated list, dropping blanks.
func SplitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
