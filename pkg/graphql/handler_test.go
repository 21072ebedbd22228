package graphql

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/getmockd/songbook/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func newTestHandler(t *testing.T, config *Config) (*Handler, *[]map[string]interface{}) {
	t.Helper()
	if config == nil {
		config = &Config{Path: "/graphql", Introspection: true, Explorer: true}
	}
	e, authors := newTestExecutor(t, config)
	return NewHandler(e, config), authors
}

func decodeResponse(t *testing.T, rr *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("failed to unmarshal response %q: %v", rr.Body.String(), err)
	}
	return out
}

func TestHandler_ServeHTTP_POST_JSON(t *testing.T) {
	handler, _ := newTestHandler(t, nil)

	body := `{"query": "query($id: Int) { author(id: $id) { id name } }", "variables": {"id": 2}}`
	req := httptest.NewRequest(http.MethodPost, "/graphql", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("handler returned wrong status code: got %v want %v", rr.Code, http.StatusOK)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("handler returned wrong content type: got %v want application/json", ct)
	}

	want := `{"data":{"author":{"id":2,"name":"Black Sabath"}}}`
	if got := strings.TrimSpace(rr.Body.String()); got != want {
		t.Errorf("body = %s, want %s", got, want)
	}
}

func TestHandler_ServeHTTP_POST_GraphQL(t *testing.T) {
	handler, _ := newTestHandler(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/graphql", strings.NewReader(`{ authors { name } }`))
	req.Header.Set("Content-Type", "application/graphql")

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	out := decodeResponse(t, rr)
	authors := out["data"].(map[string]interface{})["authors"].([]interface{})
	if len(authors) != 2 {
		t.Errorf("authors = %v", authors)
	}
}

func TestHandler_ServeHTTP_GET(t *testing.T) {
	handler, _ := newTestHandler(t, nil)

	params := url.Values{}
	params.Set("query", `query Get($id: Int) { author(id: $id) { name } }`)
	params.Set("variables", `{"id": 1}`)
	params.Set("operationName", "Get")
	req := httptest.NewRequest(http.MethodGet, "/graphql?"+params.Encode(), nil)

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	want := `{"data":{"author":{"name":"AC/DC"}}}`
	if got := strings.TrimSpace(rr.Body.String()); got != want {
		t.Errorf("body = %s, want %s", got, want)
	}
}

func TestHandler_ServeHTTP_GET_MutationRefused(t *testing.T) {
	handler, authors := newTestHandler(t, nil)

	params := url.Values{}
	params.Set("query", `mutation { addAuthor(name: "x") { id } }`)
	req := httptest.NewRequest(http.MethodGet, "/graphql?"+params.Encode(), nil)

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rr.Code)
	}
	out := decodeResponse(t, rr)
	if v, ok := out["data"]; !ok || v != nil {
		t.Errorf("data = %v, want explicit null", v)
	}
	if len(*authors) != 2 {
		t.Error("mutation must not run over GET")
	}
}

func TestHandler_ServeHTTP_Explorer(t *testing.T) {
	t.Run("browser gets the page", func(t *testing.T) {
		handler, _ := newTestHandler(t, nil)
		req := httptest.NewRequest(http.MethodGet, "/graphql", nil)
		req.Header.Set("Accept", "text/html,application/xhtml+xml")

		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		if rr.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rr.Code)
		}
		if !strings.Contains(rr.Header().Get("Content-Type"), "text/html") {
			t.Errorf("content type = %q", rr.Header().Get("Content-Type"))
		}
		if !strings.Contains(strings.ToLower(rr.Body.String()), "graphiql") {
			t.Error("expected the GraphiQL page")
		}
	})

	t.Run("raw forces execution", func(t *testing.T) {
		handler, _ := newTestHandler(t, nil)
		req := httptest.NewRequest(http.MethodGet, "/graphql?raw&query="+url.QueryEscape("{ __typename }"), nil)
		req.Header.Set("Accept", "text/html")

		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		if got := strings.TrimSpace(rr.Body.String()); got != `{"data":{"__typename":"Query"}}` {
			t.Errorf("body = %s", got)
		}
	})

	t.Run("disabled explorer", func(t *testing.T) {
		handler, _ := newTestHandler(t, &Config{Path: "/graphql", Introspection: true})
		req := httptest.NewRequest(http.MethodGet, "/graphql", nil)
		req.Header.Set("Accept", "text/html")

		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		if rr.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rr.Code)
		}
	})
}

func TestHandler_ServeHTTP_OPTIONS(t *testing.T) {
	handler, _ := newTestHandler(t, nil)

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodOptions, "/graphql", nil))

	if rr.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rr.Code)
	}
	if rr.Body.Len() != 0 {
		t.Errorf("body = %q, want empty", rr.Body.String())
	}
}

func TestHandler_ServeHTTP_MethodNotAllowed(t *testing.T) {
	handler, _ := newTestHandler(t, nil)

	for _, method := range []string{http.MethodPut, http.MethodDelete, http.MethodPatch} {
		t.Run(method, func(t *testing.T) {
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, httptest.NewRequest(method, "/graphql", nil))

			if rr.Code != http.StatusMethodNotAllowed {
				t.Errorf("status = %d, want 405", rr.Code)
			}
			if rr.Header().Get("Allow") == "" {
				t.Error("expected an Allow header")
			}
			out := decodeResponse(t, rr)
			if len(out["errors"].([]interface{})) != 1 {
				t.Errorf("errors = %v", out["errors"])
			}
		})
	}
}

func TestHandler_ServeHTTP_BadRequests(t *testing.T) {
	handler, _ := newTestHandler(t, nil)

	tests := []struct {
		name        string
		method      string
		target      string
		contentType string
		body        string
		wantMessage string
	}{
		{"empty body", http.MethodPost, "/graphql", "application/json", "", "empty request body"},
		{"invalid JSON", http.MethodPost, "/graphql", "application/json", "{not json", "invalid JSON request body"},
		{"missing query", http.MethodPost, "/graphql", "application/json", `{"variables":{}}`, "query is required"},
		{"too large", http.MethodPost, "/graphql", "application/graphql", strings.Repeat(" ", MaxRequestBodySize+1) + "{ a }", "request body too large"},
		{"GET without query", http.MethodGet, "/graphql", "", "", "query parameter is required"},
		{"GET invalid variables", http.MethodGet, "/graphql?query=" + url.QueryEscape("{ authors { id } }") + "&variables=nope", "", "", "invalid variables JSON"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.target, strings.NewReader(tt.body))
			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			}
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			if rr.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rr.Code)
			}
			out := decodeResponse(t, rr)
			if v, ok := out["data"]; !ok || v != nil {
				t.Errorf("data = %v, want explicit null", v)
			}
			if msgs := errorMessages(out); len(msgs) != 1 || msgs[0] != tt.wantMessage {
				t.Errorf("errors = %v, want %q", msgs, tt.wantMessage)
			}
		})
	}
}

func TestHandler_ServeHTTP_ValidationErrorIsOK(t *testing.T) {
	handler, _ := newTestHandler(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/graphql", strings.NewReader(`{"query":"mutation { addAuthor { id } }"}`))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rr.Code)
	}
	out := decodeResponse(t, rr)
	if out["data"] != nil || len(errorMessages(out)) == 0 {
		t.Errorf("response = %v", out)
	}
}

func TestHandler_RecordsOperations(t *testing.T) {
	handler, _ := newTestHandler(t, nil)
	m := metrics.New()
	handler.SetMetrics(m)

	post := func(body string) {
		req := httptest.NewRequest(http.MethodPost, "/graphql", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		handler.ServeHTTP(httptest.NewRecorder(), req)
	}
	post(`{"query":"{ authors { id } }"}`)
	post(`{"query":"mutation { addAuthor(name: \"x\") { id } }"}`)
	post(`{"query":"{ broken }"}`)
	post(`{"query":"query($id: Int) { author(id: $id) { id } }","variables":{"id":"nope"}}`)
	post(`{"query":"{ authors "}`)

	// The label follows the selected operation, not the first keyword.
	post(`{"query":"fragment F on Author { id } mutation { addAuthor(name: \"y\") { ...F } }"}`)
	post(`{"query":"query Q { authors { id } } mutation M { addAuthor(name: \"z\") { id } }","operationName":"M"}`)

	tests := []struct {
		opType string
		status string
		want   float64
	}{
		{"query", metrics.StatusOK, 1},
		{"query", metrics.StatusError, 2},
		{"mutation", metrics.StatusOK, 3},
		{"unknown", metrics.StatusError, 1},
	}
	for _, tt := range tests {
		if got := testutil.ToFloat64(m.OperationsTotal.WithLabelValues(tt.opType, tt.status)); got != tt.want {
			t.Errorf("operations{%s,%s} = %v, want %v", tt.opType, tt.status, got, tt.want)
		}
	}
}

func TestNewHandler(t *testing.T) {
	e, _ := newTestExecutor(t, nil)

	h := NewHandler(e, nil)
	if h.Pattern() != "/graphql" {
		t.Errorf("Pattern() = %q, want /graphql", h.Pattern())
	}
	if h.explorer != nil {
		t.Error("explorer should be off without config")
	}

	h = NewHandler(e, &Config{ID: "songs", Path: "/api", Explorer: true})
	if h.ID() != "songs" || h.Pattern() != "/api" {
		t.Errorf("ID() = %q, Pattern() = %q", h.ID(), h.Pattern())
	}
	if h.explorer == nil {
		t.Error("explorer should be on")
	}
}

func TestHandler_SetLoggerTagsEndpoint(t *testing.T) {
	e, _ := newTestExecutor(t, nil)
	h := NewHandler(e, &Config{ID: "songs", Path: "/graphql"})

	var buf bytes.Buffer
	h.SetLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))

	req := httptest.NewRequest(http.MethodPost, "/graphql", strings.NewReader(`{ authors { id } }`))
	req.Header.Set("Content-Type", "application/graphql")
	h.ServeHTTP(httptest.NewRecorder(), req)

	if !strings.Contains(buf.String(), "endpoint=songs") {
		t.Errorf("log output %q missing endpoint attribute", buf.String())
	}
	if h.Schema() != e.Schema() {
		t.Error("Schema() should return the executor schema")
	}
}

func TestEndpoint(t *testing.T) {
	r := Resolvers{}
	r.Set("Query", "hello", func(_ context.Context, _ ResolveParams) (interface{}, error) {
		return "world", nil
	})

	h, err := Endpoint(`type Query { hello: String }`, r, &Config{Path: "/graphql"})
	if err != nil {
		t.Fatalf("Endpoint() error = %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/graphql", strings.NewReader(`{ hello }`))
	req.Header.Set("Content-Type", "application/graphql")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if got := strings.TrimSpace(rr.Body.String()); got != `{"data":{"hello":"world"}}` {
		t.Errorf("body = %s", got)
	}
}

func TestEndpoint_InvalidSchema(t *testing.T) {
	if _, err := Endpoint("type Query {", nil, nil); err == nil {
		t.Error("expected a parse error")
	}
	if _, err := Endpoint("type Author { id: Int }", nil, nil); err == nil {
		t.Error("expected an error for a schema without Query")
	}
}
