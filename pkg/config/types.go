package config

// Config is the complete server configuration.
type Config struct {
	// Server settings
	Port            int    `yaml:"port" json:"port"`
	Path            string `yaml:"path" json:"path"`
	ReadTimeout     int    `yaml:"readTimeout" json:"readTimeout"`
	WriteTimeout    int    `yaml:"writeTimeout" json:"writeTimeout"`
	ShutdownTimeout int    `yaml:"shutdownTimeout" json:"shutdownTimeout"`

	// Catalog settings
	Seed string `yaml:"seed,omitempty" json:"seed,omitempty"`

	// GraphQL settings
	Introspection bool `yaml:"introspection" json:"introspection"`
	Explorer      bool `yaml:"explorer" json:"explorer"`

	// Metrics settings
	Metrics     bool   `yaml:"metrics" json:"metrics"`
	MetricsPath string `yaml:"metricsPath" json:"metricsPath"`

	// Logging settings
	LogLevel  string `yaml:"logLevel" json:"logLevel"`
	LogFormat string `yaml:"logFormat" json:"logFormat"`

	CORS CORSConfig `yaml:"cors" json:"cors"`

	// ConfigFile is the path the file layer was read from, if any.
	ConfigFile string `yaml:"-" json:"configFile,omitempty"`

	// Sources tracks where each value came from (for debugging)
	Sources map[string]string `yaml:"-" json:"-"`

	// SetFields records the keys explicitly present in a loaded file or set by
	// flags, so an explicit false can override a true default.
	SetFields map[string]bool `yaml:"-" json:"-"`
}

// ConfigSource identifies where a config value originated.
const (
	SourceDefault = "default"
	SourceFile    = "file"
	SourceEnv     = "env"
	SourceFlag    = "flag"
)
