package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestNewDefault(t *testing.T) {
	cfg := NewDefault()

	assert.Equal(t, 5000, cfg.Port)
	assert.Equal(t, "/graphql", cfg.Path)
	assert.Equal(t, "/metrics", cfg.MetricsPath)
	assert.Equal(t, 30, cfg.ReadTimeout)
	assert.Equal(t, 30, cfg.WriteTimeout)
	assert.True(t, cfg.Introspection)
	assert.True(t, cfg.Explorer)
	assert.True(t, cfg.Metrics)
	assert.True(t, cfg.CORS.Enabled)
	assert.True(t, cfg.CORS.IsWildcard())
	assert.Equal(t, SourceDefault, cfg.Sources["port"])
	assert.NoError(t, cfg.Validate())
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid defaults", func(*Config) {}, ""},
		{"zero port allowed", func(c *Config) { c.Port = 0 }, ""},
		{"port too high", func(c *Config) { c.Port = 70000 }, "port 70000 is out of range"},
		{"port negative", func(c *Config) { c.Port = -1 }, "port -1 is out of range"},
		{"relative path", func(c *Config) { c.Path = "graphql" }, `path "graphql" must start with /`},
		{"path on health endpoint", func(c *Config) { c.Path = "/healthz" }, "reserved for the health endpoint"},
		{"metrics path clash", func(c *Config) { c.MetricsPath = "/graphql" }, "conflicts with another endpoint"},
		{"metrics path ignored when disabled", func(c *Config) { c.Metrics = false; c.MetricsPath = "" }, ""},
		{"read timeout too high", func(c *Config) { c.ReadTimeout = 9999 }, "readTimeout 9999 is out of range"},
		{"write timeout negative", func(c *Config) { c.WriteTimeout = -1 }, "writeTimeout -1 is out of range"},
		{"bad log level", func(c *Config) { c.LogLevel = "loud" }, `invalid log level "loud"`},
		{"bad log format", func(c *Config) { c.LogFormat = "xml" }, `invalid log format "xml"`},
		{"cors without origins", func(c *Config) { c.CORS.AllowOrigins = nil }, "allowOrigins is empty"},
		{"cors disabled without origins", func(c *Config) { c.CORS.Enabled = false; c.CORS.AllowOrigins = nil }, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewDefault()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestConfig_Validate_ReportsAllProblems(t *testing.T) {
	cfg := NewDefault()
	cfg.Port = -1
	cfg.LogFormat = "xml"

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "port -1")
	assert.Contains(t, err.Error(), "invalid log format")
}

func TestLoadConfigFile(t *testing.T) {
	path := writeFile(t, t.TempDir(), "songbook.yaml", `
port: 8080
path: /api/graphql
seed: ./seed.yaml
explorer: false
logLevel: debug
cors:
  enabled: true
  allowOrigins:
    - https://example.com
`)

	cfg, err := LoadConfigFile(path)
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "/api/graphql", cfg.Path)
	assert.Equal(t, "./seed.yaml", cfg.Seed)
	assert.False(t, cfg.Explorer)
	assert.Equal(t, []string{"https://example.com"}, cfg.CORS.AllowOrigins)
	assert.True(t, cfg.SetFields["explorer"])
	assert.True(t, cfg.SetFields["cors.allowOrigins"])
	assert.False(t, cfg.SetFields["introspection"])
}

func TestLoadConfigFile_Errors(t *testing.T) {
	dir := t.TempDir()

	t.Run("not found", func(t *testing.T) {
		_, err := LoadConfigFile(filepath.Join(dir, "missing.yaml"))
		assert.True(t, errors.Is(err, ErrFileNotFound))
	})

	t.Run("empty", func(t *testing.T) {
		_, err := LoadConfigFile(writeFile(t, dir, "empty.yaml", "  \n"))
		assert.True(t, errors.Is(err, ErrEmptyFile))
	})

	t.Run("unknown key", func(t *testing.T) {
		_, err := LoadConfigFile(writeFile(t, dir, "unknown.yaml", "port: 1\nadminPort: 2\n"))
		var ce *ConfigError
		require.True(t, errors.As(err, &ce))
		assert.Equal(t, 2, ce.Line)
		assert.Contains(t, ce.Error(), "unknown.yaml (line 2)")
	})

	t.Run("wrong type", func(t *testing.T) {
		_, err := LoadConfigFile(writeFile(t, dir, "type.yaml", "port: lots\n"))
		var ce *ConfigError
		require.True(t, errors.As(err, &ce))
		assert.Contains(t, ce.Message, "cannot unmarshal")
	})
}

func TestConfigError_Error(t *testing.T) {
	assert.Equal(t, "a.yaml: bad", (&ConfigError{Path: "a.yaml", Message: "bad"}).Error())
	assert.Equal(t, "a.yaml (line 3): bad", (&ConfigError{Path: "a.yaml", Line: 3, Message: "bad"}).Error())
	assert.Equal(t, "a.yaml (line 3, column 7): bad", (&ConfigError{Path: "a.yaml", Line: 3, Column: 7, Message: "bad"}).Error())
}

func TestFindLineColumn(t *testing.T) {
	data := []byte("ab\ncd\nef")

	line, col := FindLineColumn(data, 4)
	assert.Equal(t, 2, line)
	assert.Equal(t, 2, col)

	line, col = FindLineColumn(data, 0)
	assert.Equal(t, 1, line)
	assert.Equal(t, 1, col)
}

func TestMergeConfig(t *testing.T) {
	t.Run("applies non-zero values", func(t *testing.T) {
		target := NewDefault()
		MergeConfig(target, &Config{Port: 9000, LogFormat: "json"}, SourceFlag)

		assert.Equal(t, 9000, target.Port)
		assert.Equal(t, "json", target.LogFormat)
		assert.Equal(t, "/graphql", target.Path)
		assert.Equal(t, SourceFlag, target.Sources["port"])
		assert.Equal(t, SourceDefault, target.Sources["path"])
	})

	t.Run("explicit false with SetFields", func(t *testing.T) {
		target := NewDefault()
		MergeConfig(target, &Config{
			SetFields: map[string]bool{"introspection": true, "cors.enabled": true},
		}, SourceFile)

		assert.False(t, target.Introspection)
		assert.False(t, target.CORS.Enabled)
		assert.True(t, target.Explorer)
		assert.Equal(t, SourceFile, target.Sources["introspection"])
	})

	t.Run("explicit zero with SetFields", func(t *testing.T) {
		target := NewDefault()
		MergeConfig(target, &Config{
			SetFields: map[string]bool{"port": true, "shutdownTimeout": true, "cors.maxAge": true},
		}, SourceFile)

		assert.Equal(t, 0, target.Port)
		assert.Equal(t, 0, target.ShutdownTimeout)
		assert.Equal(t, 0, target.CORS.MaxAge)
		assert.Equal(t, DefaultReadTimeout, target.ReadTimeout)
		assert.Equal(t, SourceFile, target.Sources["port"])
	})

	t.Run("zero without SetFields is ignored", func(t *testing.T) {
		target := NewDefault()
		MergeConfig(target, &Config{Port: 0, ReadTimeout: 0}, SourceFlag)

		assert.Equal(t, DefaultPort, target.Port)
		assert.Equal(t, DefaultReadTimeout, target.ReadTimeout)
	})

	t.Run("false without SetFields is ignored", func(t *testing.T) {
		target := NewDefault()
		MergeConfig(target, &Config{}, SourceFile)

		assert.True(t, target.Introspection)
		assert.True(t, target.CORS.Enabled)
	})

	t.Run("nil source", func(t *testing.T) {
		target := NewDefault()
		MergeConfig(target, nil, SourceFile)
		assert.Equal(t, 5000, target.Port)
	})
}

func TestLoadEnvConfig(t *testing.T) {
	t.Setenv(EnvPort, "6000")
	t.Setenv(EnvPath, "/gql")
	t.Setenv(EnvSeed, "seed.yaml")
	t.Setenv(EnvLogLevel, "DEBUG")
	t.Setenv(EnvLogFormat, "json")
	t.Setenv(EnvCORSOrigins, "https://a.example, https://b.example,")

	cfg := NewDefault()
	require.NoError(t, LoadEnvConfig(cfg))

	assert.Equal(t, 6000, cfg.Port)
	assert.Equal(t, "/gql", cfg.Path)
	assert.Equal(t, "seed.yaml", cfg.Seed)
	assert.Equal(t, "DEBUG", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowOrigins)
	assert.Equal(t, SourceEnv, cfg.Sources["port"])
	assert.NoError(t, cfg.Validate())
}

func TestLoadEnvConfig_InvalidPort(t *testing.T) {
	t.Setenv(EnvPort, "abc")

	err := LoadEnvConfig(NewDefault())
	var ce *ConfigError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, EnvPort, ce.Path)
}

func TestLoadEnvConfig_BlankIgnored(t *testing.T) {
	t.Setenv(EnvPath, "   ")

	cfg := NewDefault()
	require.NoError(t, LoadEnvConfig(cfg))
	assert.Equal(t, "/graphql", cfg.Path)
}

func TestLoadAll(t *testing.T) {
	t.Setenv(EnvConfig, "")
	t.Setenv(EnvPort, "")

	t.Run("explicit file then env", func(t *testing.T) {
		path := writeFile(t, t.TempDir(), "custom.yaml", "port: 7000\nlogFormat: json\nintrospection: false\n")
		t.Setenv(EnvLogFormat, "text")

		cfg, err := LoadAll(path)
		require.NoError(t, err)

		assert.Equal(t, 7000, cfg.Port)
		assert.Equal(t, "text", cfg.LogFormat)
		assert.False(t, cfg.Introspection)
		assert.Equal(t, path, cfg.ConfigFile)
		assert.Equal(t, SourceFile, cfg.Sources["port"])
		assert.Equal(t, SourceEnv, cfg.Sources["logFormat"])
	})

	t.Run("config from env variable", func(t *testing.T) {
		path := writeFile(t, t.TempDir(), "env.yaml", "path: /from-env-file\n")
		t.Setenv(EnvConfig, path)

		cfg, err := LoadAll("")
		require.NoError(t, err)
		assert.Equal(t, "/from-env-file", cfg.Path)
	})

	t.Run("explicit missing file", func(t *testing.T) {
		_, err := LoadAll(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.True(t, errors.Is(err, ErrFileNotFound))
	})
}

func TestFindConfigIn(t *testing.T) {
	dir := t.TempDir()
	assert.Empty(t, findConfigIn(dir))

	writeFile(t, dir, ".songbookrc.yaml", "port: 1\n")
	assert.Equal(t, filepath.Join(dir, ".songbookrc.yaml"), findConfigIn(dir))

	writeFile(t, dir, "songbook.yaml", "port: 1\n")
	assert.Equal(t, filepath.Join(dir, "songbook.yaml"), findConfigIn(dir))
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, SplitList(" a ,, b "))
	assert.Nil(t, SplitList(" , "))
}
