// Package songbook serves the authors and songs catalog as a GraphQL API.
//
// The schema lives in schema.graphqls and is compiled into the binary. Resolvers
// read and append through a catalog.Store; lookups that find nothing resolve to
// null rather than an error.
package songbook
