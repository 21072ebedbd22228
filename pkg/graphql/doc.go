// Package graphql executes GraphQL operations over a schema parsed with gqlparser.
//
// A Schema is built from SDL, resolvers are registered per "Type.field", and an
// Executor runs queries and mutations against them. Handler serves an Executor
// over HTTP, including the GraphiQL explorer for browsers.
//
// Key features:
//   - Parse GraphQL SDL schemas from strings or files
//   - Field collection with fragments, @skip and @include
//   - Non-null enforcement with null propagation
//   - Response objects keep selection order
//   - Introspection (__schema, __type) that can be switched off
//   - GET and POST transport; mutations are refused over GET
//
// Basic usage:
//
//	schema, err := graphql.ParseSchema(`
//	    type Query {
//	        author(id: Int): Author
//	    }
//	    type Author {
//	        id: Int!
//	        name: String!
//	    }
//	`)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	resolvers := graphql.Resolvers{}
//	resolvers.Set("Query", "author", func(ctx context.Context, p graphql.ResolveParams) (interface{}, error) {
//	    id, ok, err := graphql.IntArg(p.Args, "id")
//	    if err != nil || !ok {
//	        return nil, err
//	    }
//	    return map[string]interface{}{"id": id, "name": "AC/DC"}, nil
//	})
//
//	config := &graphql.Config{Path: "/graphql", Introspection: true, Explorer: true}
//	handler := graphql.NewHandler(graphql.NewExecutor(schema, resolvers, config), config)
//	http.Handle(config.Path, handler)
//
// Resolvers return plain Go values. Maps with string keys work with the default
// resolver; any other parent type needs a resolver per field. Slices of any
// element type complete as lists.
package graphql
