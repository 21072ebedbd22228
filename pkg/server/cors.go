package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/getmockd/songbook/pkg/config"
)

// CORSMiddleware wraps an http.Handler with CORS handling based on configuration.
type CORSMiddleware struct {
	handler http.Handler
	config  *config.CORSConfig
}

// NewCORSMiddleware creates a new CORS middleware. A nil cfg allows every origin.
func NewCORSMiddleware(handler http.Handler, cfg *config.CORSConfig) *CORSMiddleware {
	if cfg == nil {
		cfg = config.DefaultCORSConfig()
	}
	return &CORSMiddleware{
		handler: handler,
		config:  cfg,
	}
}

// ServeHTTP implements the http.Handler interface.
func (m *CORSMiddleware) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !m.config.Enabled {
		m.handler.ServeHTTP(w, r)
		return
	}

	origin := r.Header.Get("Origin")
	allowOrigin := m.config.GetAllowOriginValue(origin)

	if allowOrigin != "" {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", allowOrigin)
		if allowOrigin != "*" {
			h.Add("Vary", "Origin")
		}

		methods := m.config.AllowMethods
		if len(methods) == 0 {
			methods = config.DefaultCORSMethods
		}
		h.Set("Access-Control-Allow-Methods", strings.Join(methods, ", "))

		headers := m.config.AllowHeaders
		if len(headers) == 0 {
			headers = config.DefaultCORSHeaders
		}
		h.Set("Access-Control-Allow-Headers", strings.Join(headers, ", "))

		if len(m.config.ExposeHeaders) > 0 {
			h.Set("Access-Control-Expose-Headers", strings.Join(m.config.ExposeHeaders, ", "))
		}
		if m.config.AllowCredentials {
			h.Set("Access-Control-Allow-Credentials", "true")
		}

		maxAge := m.config.MaxAge
		if maxAge <= 0 {
			maxAge = 86400
		}
		h.Set("Access-Control-Max-Age", strconv.Itoa(maxAge))
	}

	// Cross-origin preflight is answered here. Plain OPTIONS without an
	// Origin falls through to the endpoint.
	if r.Method == http.MethodOptions && origin != "" {
		if allowOrigin != "" {
			w.WriteHeader(http.StatusOK)
		} else {
			w.WriteHeader(http.StatusForbidden)
		}
		return
	}

	m.handler.ServeHTTP(w, r)
}
