package config

// CORSConfig defines Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	// Enabled enables CORS handling. When false, no CORS headers are added.
	Enabled bool `json:"enabled" yaml:"enabled"`
	// AllowOrigins specifies allowed origins. "*" allows any origin.
	AllowOrigins []string `json:"allowOrigins,omitempty" yaml:"allowOrigins,omitempty"`
	// AllowMethods specifies allowed HTTP methods.
	// Default: ["GET", "POST", "OPTIONS"]
	AllowMethods []string `json:"allowMethods,omitempty" yaml:"allowMethods,omitempty"`
	// AllowHeaders specifies allowed request headers.
	// Default: ["Content-Type", "Authorization", "X-Requested-With", "Accept", "Origin"]
	AllowHeaders []string `json:"allowHeaders,omitempty" yaml:"allowHeaders,omitempty"`
	// ExposeHeaders specifies headers that browsers are allowed to access.
	ExposeHeaders []string `json:"exposeHeaders,omitempty" yaml:"exposeHeaders,omitempty"`
	// AllowCredentials indicates whether credentials are allowed.
	AllowCredentials bool `json:"allowCredentials,omitempty" yaml:"allowCredentials,omitempty"`
	// MaxAge is the preflight cache duration in seconds. Default: 86400 (24 hours)
	MaxAge int `json:"maxAge,omitempty" yaml:"maxAge,omitempty"`
}

// Default CORS lists.
var (
	DefaultCORSMethods = []string{"GET", "POST", "OPTIONS"}
	DefaultCORSHeaders = []string{"Content-Type", "Authorization", "X-Requested-With", "Accept", "Origin"}
)

// DefaultCORSConfig returns a CORSConfig that allows every origin.
func DefaultCORSConfig() *CORSConfig {
	return &CORSConfig{
		Enabled:      true,
		AllowOrigins: []string{"*"},
		AllowMethods: DefaultCORSMethods,
		AllowHeaders: DefaultCORSHeaders,
		MaxAge:       86400,
	}
}

// IsWildcard returns true if the CORS config allows all origins.
func (c *CORSConfig) IsWildcard() bool {
	if c == nil {
		return false
	}
	for _, origin := range c.AllowOrigins {
		if origin == "*" {
			return true
		}
	}
	return false
}

// GetAllowOriginValue returns the appropriate Access-Control-Allow-Origin header value
// for the given request origin. Returns empty string if origin is not allowed.
func (c *CORSConfig) GetAllowOriginValue(requestOrigin string) string {
	if c == nil || !c.Enabled {
		return ""
	}

	if c.IsWildcard() {
		// Cannot use * with credentials; echo the origin instead.
		if c.AllowCredentials {
			return requestOrigin
		}
		return "*"
	}

	for _, allowed := range c.AllowOrigins {
		if allowed == requestOrigin && requestOrigin != "" {
			return requestOrigin
		}
	}
	return ""
}
