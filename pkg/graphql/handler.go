package graphql

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/getmockd/songbook/pkg/logging"
	"github.com/getmockd/songbook/pkg/metrics"
)

// MaxRequestBodySize is the maximum allowed request body size (1MB).
const MaxRequestBodySize = 1 << 20 // 1MB

// Handler handles GraphQL HTTP requests.
type Handler struct {
	executor *Executor
	config   *Config
	explorer http.Handler
	log      *slog.Logger
	metrics  *metrics.Metrics
}

// NewHandler creates a new GraphQL HTTP handler.
func NewHandler(executor *Executor, config *Config) *Handler {
	if config == nil {
		config = &Config{Path: "/graphql", Introspection: true}
	}
	h := &Handler{
		executor: executor,
		config:   config,
		log:      logging.Nop(),
	}
	if config.Explorer {
		h.explorer = newExplorer(config)
	}
	return h
}

// SetLogger sets the logger for request summaries and resolver panics.
// Records carry the endpoint ID when one is configured.
func (h *Handler) SetLogger(log *slog.Logger) {
	if log == nil {
		return
	}
	if id := h.ID(); id != "" {
		log = log.With("endpoint", id)
	}
	h.log = log
	h.executor.SetLogger(log)
}

// SetMetrics sets the metrics that record executed operations. Nil disables them.
func (h *Handler) SetMetrics(m *metrics.Metrics) {
	h.metrics = m
}

// Schema returns the schema the endpoint serves.
func (h *Handler) Schema() *Schema {
	return h.executor.Schema()
}

// ID returns the endpoint identifier.
func (h *Handler) ID() string {
	return h.config.ID
}

// Pattern returns the URL path this handler serves.
func (h *Handler) Pattern() string {
	if h.config.Path == "" {
		return "/graphql"
	}
	return h.config.Path
}

// ServeHTTP handles GraphQL requests on the endpoint path.
//
//   - POST executes an application/json or application/graphql body.
//   - GET executes the query in the URL, or serves the explorer to browsers.
//   - OPTIONS answers preflight requests; CORS headers come from middleware.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	startTime := time.Now()

	switch r.Method {
	case http.MethodOptions:
		w.WriteHeader(http.StatusOK)
		return
	case http.MethodGet, http.MethodPost:
	default:
		w.Header().Set("Allow", "GET, POST, OPTIONS")
		h.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	if r.Method == http.MethodGet && h.wantsExplorer(r) {
		h.explorer.ServeHTTP(w, r)
		return
	}

	var req *GraphQLRequest
	var err error
	if r.Method == http.MethodGet {
		req, err = parseGetRequest(r)
	} else {
		req, err = parsePostRequest(w, r)
	}
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		h.log.Debug("rejected graphql request", "method", r.Method, "error", err)
		return
	}

	resp := h.executor.Execute(r.Context(), req)

	status := http.StatusOK
	if resp.HasCode(CodeMethodNotAllowed) {
		w.Header().Set("Allow", "POST")
		status = http.StatusMethodNotAllowed
	}
	h.writeResponse(w, status, resp)

	opType := resp.OperationType()
	h.metrics.ObserveOperation(opType, len(resp.Errors) > 0)
	h.log.Debug("graphql request",
		"method", r.Method,
		"operation", opType,
		"operationName", req.OperationName,
		"status", status,
		"errors", len(resp.Errors),
		"duration", time.Since(startTime),
	)
}

// wantsExplorer reports whether a GET comes from a browser asking for the page.
// The raw parameter forces JSON execution.
func (h *Handler) wantsExplorer(r *http.Request) bool {
	if h.explorer == nil {
		return false
	}
	q := r.URL.Query()
	if q.Has("raw") {
		return false
	}
	return strings.Contains(r.Header.Get("Accept"), "text/html")
}

// parseGetRequest parses a GraphQL request from GET query parameters.
// GET requests may only run queries.
func parseGetRequest(r *http.Request) (*GraphQLRequest, error) {
	query := r.URL.Query()

	req := &GraphQLRequest{
		Query:         query.Get("query"),
		OperationName: query.Get("operationName"),
		readOnly:      true,
	}
	if req.Query == "" {
		return nil, errors.New("query parameter is required")
	}

	if varsStr := query.Get("variables"); varsStr != "" {
		var variables map[string]interface{}
		if err := json.Unmarshal([]byte(varsStr), &variables); err != nil {
			return nil, errors.New("invalid variables JSON")
		}
		req.Variables = variables
	}

	return req, nil
}

// parsePostRequest parses a GraphQL request from a POST body.
func parsePostRequest(w http.ResponseWriter, r *http.Request) (*GraphQLRequest, error) {
	contentType := r.Header.Get("Content-Type")

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxRequestBodySize))
	defer func() { _ = r.Body.Close() }()
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, errors.New("request body too large")
		}
		return nil, errors.New("failed to read request body")
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, errors.New("empty request body")
	}

	if strings.HasPrefix(contentType, "application/graphql") {
		return &GraphQLRequest{Query: string(body)}, nil
	}

	var req GraphQLRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return nil, errors.New("invalid JSON request body")
	}
	if strings.TrimSpace(req.Query) == "" {
		return nil, errors.New("query is required")
	}
	return &req, nil
}

// writeError writes an error envelope with a null data member.
func (h *Handler) writeError(w http.ResponseWriter, statusCode int, message string) {
	h.writeResponse(w, statusCode, &GraphQLResponse{
		Errors: []GraphQLError{{Message: message}},
	})
}

func (h *Handler) writeResponse(w http.ResponseWriter, statusCode int, resp *GraphQLResponse) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(resp); err != nil {
		h.log.Error("failed to encode graphql response", "error", err)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"data":null,"errors":[{"message":"internal server error"}]}` + "\n"))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_, _ = w.Write(buf.Bytes())
}

// Endpoint creates a complete GraphQL endpoint from an SDL document and resolvers.
func Endpoint(sdl string, resolvers Resolvers, config *Config) (*Handler, error) {
	schema, err := ParseSchema(sdl)
	if err != nil {
		return nil, err
	}
	if err := schema.Validate(); err != nil {
		return nil, err
	}
	return NewHandler(NewExecutor(schema, resolvers, config), config), nil
}
