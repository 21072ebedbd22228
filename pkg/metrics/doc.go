// Package metrics exposes Prometheus metrics for the songbook server.
//
// Metrics are registered on a private registry so several servers (and tests)
// can live in one process. The registry also carries the Go runtime and process
// collectors.
//
// # Metrics
//
//   - songbook_http_requests_total: counter (labels: method, route, status)
//   - songbook_http_request_duration_seconds: histogram (labels: method, route)
//   - songbook_graphql_operations_total: counter (labels: operation, status)
//   - songbook_catalog_records: gauge (labels: type)
//   - songbook_uptime_seconds: gauge
//
// # Label Conventions
//
//   - method: GET, POST, OPTIONS (uppercase HTTP methods)
//   - route: the registered route, never the raw request path
//   - operation: query, mutation, unknown
//   - status: numeric HTTP codes for requests; ok or error for operations
//
// # Usage
//
//	m := metrics.New()
//	mux.Handle("/graphql", m.Instrument("/graphql", handler))
//	mux.Handle("/metrics", m.Handler())
//
// A nil *Metrics is valid and records nothing.
package metrics
