package config

// DefaultPort is the default HTTP port.
const DefaultPort = 5000

// DefaultPath is the default GraphQL endpoint path.
const DefaultPath = "/graphql"

// DefaultMetricsPath is the default Prometheus endpoint path.
const DefaultMetricsPath = "/metrics"

// HealthPath is where the health endpoint is served. It is not configurable.
const HealthPath = "/healthz"

// DefaultReadTimeout is the default read timeout in seconds.
const DefaultReadTimeout = 30

// DefaultWriteTimeout is the default write timeout in seconds.
const DefaultWriteTimeout = 30

// DefaultShutdownTimeout is the default graceful shutdown timeout in seconds.
const DefaultShutdownTimeout = 10

// DefaultLogLevel is the default log level.
const DefaultLogLevel = "info"

// DefaultLogFormat is the default log format.
const DefaultLogFormat = "text"

// NewDefault creates a new Config with default values.
func NewDefault() *Config {
	cfg := &Config{
		Port:            DefaultPort,
		Path:            DefaultPath,
		ReadTimeout:     DefaultReadTimeout,
		WriteTimeout:    DefaultWriteTimeout,
		ShutdownTimeout: DefaultShutdownTimeout,
		Introspection:   true,
		Explorer:        true,
		Metrics:         true,
		MetricsPath:     DefaultMetricsPath,
		LogLevel:        DefaultLogLevel,
		LogFormat:       DefaultLogFormat,
		CORS:            *DefaultCORSConfig(),
		Sources:         make(map[string]string),
	}

	for _, key := range []string{
		"port", "path", "readTimeout", "writeTimeout", "shutdownTimeout",
		"introspection", "explorer", "metrics", "metricsPath",
		"logLevel", "logFormat", "cors.enabled", "cors.allowOrigins",
	} {
		cfg.Sources[key] = SourceDefault
	}

	return cfg
}
