package graphql

import (
	"net/http"

	"github.com/99designs/gqlgen/graphql/playground"
)

// newExplorer returns the GraphiQL page bound to the endpoint path.
func newExplorer(config *Config) http.Handler {
	title := config.Title
	if title == "" {
		title = "GraphiQL"
	}
	path := config.Path
	if path == "" {
		path = "/graphql"
	}
	return playground.Handler(title, path)
}
