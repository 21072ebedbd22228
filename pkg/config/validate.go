package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/getmockd/songbook/pkg/logging"
)

// maxTimeout bounds the timeout settings, in seconds.
const maxTimeout = 3600

// Validate checks the configuration for values the server cannot run with.
// All problems are reported together.
func (c *Config) Validate() error {
	var errs []error

	if c.Port < 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port %d is out of range (0-65535)", c.Port))
	}
	if !strings.HasPrefix(c.Path, "/") {
		errs = append(errs, fmt.Errorf("path %q must start with /", c.Path))
	}
	if c.Path == HealthPath {
		errs = append(errs, fmt.Errorf("path %q is reserved for the health endpoint", c.Path))
	}
	if c.Metrics {
		if !strings.HasPrefix(c.MetricsPath, "/") {
			errs = append(errs, fmt.Errorf("metricsPath %q must start with /", c.MetricsPath))
		}
		if c.MetricsPath == c.Path || c.MetricsPath == HealthPath {
			errs = append(errs, fmt.Errorf("metricsPath %q conflicts with another endpoint", c.MetricsPath))
		}
	}
	for _, t := range []struct {
		name  string
		value int
	}{
		{"readTimeout", c.ReadTimeout},
		{"writeTimeout", c.WriteTimeout},
		{"shutdownTimeout", c.ShutdownTimeout},
	} {
		if t.value < 0 || t.value > maxTimeout {
			errs = append(errs, fmt.Errorf("%s %d is out of range (0-%d)", t.name, t.value, maxTimeout))
		}
	}
	if !logging.ValidLevel(c.LogLevel) {
		errs = append(errs, fmt.Errorf("invalid log level %q (valid: debug, info, warn, error)", c.LogLevel))
	}
	if !logging.ValidFormat(c.LogFormat) {
		errs = append(errs, fmt.Errorf("invalid log format %q (valid: text, json)", c.LogFormat))
	}
	if c.CORS.Enabled && len(c.CORS.AllowOrigins) == 0 {
		errs = append(errs, errors.New("cors is enabled but allowOrigins is empty"))
	}
	if c.CORS.MaxAge < 0 {
		errs = append(errs, fmt.Errorf("cors maxAge %d must not be negative", c.CORS.MaxAge))
	}

	return errors.Join(errs...)
}
