// Package cli provides the command-line interface for songbook.
//
// Commands:
//   - serve: Start the GraphQL server (default command)
//   - schema: Print the GraphQL schema
//   - query: Send a GraphQL document to a running endpoint
//   - seed: Validate or print seed files
//   - config: Show the effective configuration and where each value came from
//   - version: Show build information
package cli
