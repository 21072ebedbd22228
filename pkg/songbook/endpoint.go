package songbook

import (
	"log/slog"

	"github.com/getmockd/songbook/pkg/catalog"
	"github.com/getmockd/songbook/pkg/graphql"
	"github.com/getmockd/songbook/pkg/logging"
	"github.com/getmockd/songbook/pkg/metrics"
)

// DefaultConfig returns the endpoint defaults: /graphql with introspection and
// the explorer enabled.
func DefaultConfig() *graphql.Config {
	return &graphql.Config{
		ID:            "songbook",
		Path:          "/graphql",
		Title:         "Songbook",
		Introspection: true,
		Explorer:      true,
	}
}

// NewEndpoint returns the GraphQL handler serving store. A nil cfg uses
// DefaultConfig; a nil log discards output; a nil m records no metrics.
func NewEndpoint(store catalog.Store, cfg *graphql.Config, log *slog.Logger, m *metrics.Metrics) (*graphql.Handler, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if log == nil {
		log = logging.Nop()
	}

	handler, err := graphql.Endpoint(SDL(), NewResolvers(store), cfg)
	if err != nil {
		return nil, err
	}
	handler.SetLogger(log)
	handler.SetMetrics(m)
	return handler, nil
}
