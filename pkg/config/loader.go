package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Sentinel errors returned by LoadConfigFile.
var (
	ErrFileNotFound = errors.New("config file not found")
	ErrEmptyFile    = errors.New("config file is empty")
)

// LocalConfigFileNames are the names to search for in the current directory (in order).
var LocalConfigFileNames = []string{"songbook.yaml", "songbook.yml", ".songbookrc.yaml"}

// FindLocalConfig searches the current directory for a config file.
// Returns an empty path when none exists.
func FindLocalConfig() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return findConfigIn(cwd), nil
}

func findConfigIn(dir string) string {
	for _, name := range LocalConfigFileNames {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// LoadConfigFile loads a Config from a YAML file. Unknown keys are rejected.
func LoadConfigFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyFile, path)
	}

	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, newConfigError(path, err)
	}

	var raw map[string]interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, newConfigError(path, err)
	}

	cfg.Sources = make(map[string]string)
	cfg.SetFields = setFields(raw, "")
	return &cfg, nil
}

// setFields flattens the keys of a decoded YAML document into dotted paths.
func setFields(raw map[string]interface{}, prefix string) map[string]bool {
	out := make(map[string]bool, len(raw))
	for key, value := range raw {
		out[prefix+key] = true
		if nested, ok := value.(map[string]interface{}); ok {
			for k := range setFields(nested, prefix+key+".") {
				out[k] = true
			}
		}
	}
	return out
}

// ConfigError represents a configuration file error with location info.
type ConfigError struct {
	Path    string
	Line    int
	Column  int
	Message string
}

func (e *ConfigError) Error() string {
	if e.Line > 0 {
		if e.Column > 0 {
			return e.Path + " (line " + strconv.Itoa(e.Line) + ", column " + strconv.Itoa(e.Column) + "): " + e.Message
		}
		return e.Path + " (line " + strconv.Itoa(e.Line) + "): " + e.Message
	}
	return e.Path + ": " + e.Message
}

var yamlLinePattern = regexp.MustCompile(`line (\d+)`)

func newConfigError(path string, err error) *ConfigError {
	ce := &ConfigError{Path: path, Message: err.Error()}
	if m := yamlLinePattern.FindStringSubmatch(err.Error()); m != nil {
		ce.Line, _ = strconv.Atoi(m[1])
	}
	return ce
}

// FindLineColumn finds the line and column number for a byte offset.
func FindLineColumn(data []byte, offset int64) (line, col int) {
	line = 1
	col = 1
	for i := int64(0); i < offset && int(i) < len(data); i++ {
		if data[i] == '\n' {
			line++
			col = 1
		} else {
			col++
		}
	}
	return line, col
}

// LoadAll loads configuration from defaults, a config file, and the environment.
// An explicit path (or SONGBOOK_CONFIG) must exist; otherwise the current
// directory is searched and a missing file is not an error.
// Flags are applied afterwards by the caller with MergeConfig.
func LoadAll(explicitPath string) (*Config, error) {
	cfg := NewDefault()

	path := explicitPath
	if path == "" {
		path = os.Getenv(EnvConfig)
	}
	if path == "" {
		found, err := FindLocalConfig()
		if err != nil {
			return nil, err
		}
		path = found
	}

	if path != "" {
		fileCfg, err := LoadConfigFile(path)
		if err != nil {
			return nil, err
		}
		MergeConfig(cfg, fileCfg, SourceFile)
		cfg.ConfigFile = path
	}

	if err := LoadEnvConfig(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}
