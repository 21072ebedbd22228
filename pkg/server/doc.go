// Package server runs the songbook HTTP server.
//
// It mounts the GraphQL endpoint, the health endpoint and the Prometheus
// endpoint on one listener, wraps them with request ids, access logging,
// metrics and CORS, and shuts them down gracefully.
package server
