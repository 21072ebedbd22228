package songbook

import _ "embed"

//go:embed schema.graphqls
var schemaSDL string

// SDL returns the GraphQL schema served by the endpoint.
func SDL() string {
	return schemaSDL
}
