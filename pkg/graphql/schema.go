package graphql

import (
	"errors"
	"fmt"
	"maps"
	"os"
	"slices"

	"github.com/vektah/gqlparser/v2"
	"github.com/vektah/gqlparser/v2/ast"
)

// Schema represents a parsed GraphQL schema with convenient accessors
// for types, queries and mutations.
type Schema struct {
	ast       *ast.Schema
	source    string
	queries   map[string]*ast.FieldDefinition
	mutations map[string]*ast.FieldDefinition
}

// ParseSchema parses a GraphQL SDL string and returns a Schema.
func ParseSchema(sdl string) (*Schema, error) {
	return loadSchema(&ast.Source{Name: "schema", Input: sdl})
}

// ParseSchemaFile parses a GraphQL schema from a file and returns a Schema.
func ParseSchemaFile(path string) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema file %s: %w", path, err)
	}
	return loadSchema(&ast.Source{Name: path, Input: string(data)})
}

// MustParseSchema is like ParseSchema but panics on error.
// Use it for schemas compiled into the binary.
func MustParseSchema(sdl string) *Schema {
	s, err := ParseSchema(sdl)
	if err != nil {
		panic(err)
	}
	return s
}

func loadSchema(source *ast.Source) (*Schema, error) {
	schema, err := gqlparser.LoadSchema(source)
	if err != nil {
		return nil, fmt.Errorf("failed to parse GraphQL schema from %s: %w", source.Name, err)
	}

	s := &Schema{
		ast:       schema,
		source:    source.Input,
		queries:   make(map[string]*ast.FieldDefinition),
		mutations: make(map[string]*ast.FieldDefinition),
	}
	if schema.Query != nil {
		for _, field := range schema.Query.Fields {
			if !isIntrospectionField(field.Name) {
				s.queries[field.Name] = field
			}
		}
	}
	if schema.Mutation != nil {
		for _, field := range schema.Mutation.Fields {
			s.mutations[field.Name] = field
		}
	}
	return s, nil
}

// isIntrospectionField returns true if the field name is a built-in introspection field.
func isIntrospectionField(name string) bool {
	return len(name) >= 2 && name[0] == '_' && name[1] == '_'
}

// AST returns the underlying gqlparser AST schema.
func (s *Schema) AST() *ast.Schema {
	return s.ast
}

// Source returns the original SDL source string.
func (s *Schema) Source() string {
	return s.source
}

// GetType returns a type definition by name, or nil if not found.
func (s *Schema) GetType(name string) *ast.Definition {
	return s.ast.Types[name]
}

// GetField returns a field definition by type and field name.
func (s *Schema) GetField(typeName, fieldName string) *ast.FieldDefinition {
	def := s.GetType(typeName)
	if def == nil {
		return nil
	}
	return def.Fields.ForName(fieldName)
}

// ListQueries returns all query field names in sorted order.
func (s *Schema) ListQueries() []string {
	return slices.Sorted(maps.Keys(s.queries))
}

// ListMutations returns all mutation field names in sorted order.
func (s *Schema) ListMutations() []string {
	return slices.Sorted(maps.Keys(s.mutations))
}

// ListTypes returns all type names in sorted order, optionally filtering by kind.
// Built-in scalars and introspection types are included.
func (s *Schema) ListTypes(kinds ...ast.DefinitionKind) []string {
	names := make([]string, 0, len(s.ast.Types))
	for name, def := range s.ast.Types {
		if len(kinds) == 0 || slices.Contains(kinds, def.Kind) {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return names
}

// HasQuery returns true if the schema has a query type with fields.
func (s *Schema) HasQuery() bool {
	return s.ast.Query != nil && len(s.queries) > 0
}

// HasMutation returns true if the schema has a mutation type with fields.
func (s *Schema) HasMutation() bool {
	return s.ast.Mutation != nil && len(s.ast.Mutation.Fields) > 0
}

// HasSubscription returns true if the schema has a subscription type with fields.
func (s *Schema) HasSubscription() bool {
	return s.ast.Subscription != nil && len(s.ast.Subscription.Fields) > 0
}

// Validate performs checks beyond what gqlparser enforces while parsing.
func (s *Schema) Validate() error {
	if !s.HasQuery() {
		return errors.New("schema must define a Query type with at least one field")
	}
	return nil
}

// PossibleTypes returns the object types that may appear for def, in sorted order.
// For an object type that is def itself.
func (s *Schema) PossibleTypes(def *ast.Definition) []*ast.Definition {
	switch def.Kind {
	case ast.Object:
		return []*ast.Definition{def}
	case ast.Union:
		out := make([]*ast.Definition, 0, len(def.Types))
		for _, name := range slices.Sorted(slices.Values(def.Types)) {
			if t := s.GetType(name); t != nil {
				out = append(out, t)
			}
		}
		return out
	case ast.Interface:
		var out []*ast.Definition
		for _, name := range s.ListTypes(ast.Object) {
			t := s.GetType(name)
			if slices.Contains(t.Interfaces, def.Name) {
				out = append(out, t)
			}
		}
		return out
	default:
		return nil
	}
}

// IsPossibleType reports whether object may appear where abstract is expected.
func (s *Schema) IsPossibleType(abstract, object *ast.Definition) bool {
	return slices.ContainsFunc(s.PossibleTypes(abstract), func(d *ast.Definition) bool {
		return d.Name == object.Name
	})
}
