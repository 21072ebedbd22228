package graphql

import (
	"context"

	"github.com/99designs/gqlgen/graphql/introspection"
	"github.com/samber/lo"
	"github.com/vektah/gqlparser/v2/ast"
)

// Introspection runs through the regular executor: __schema and __type return
// gqlgen introspection nodes and the resolvers below expose them as the
// __Schema, __Type, __Field, __InputValue, __EnumValue and __Directive types.

func includeDeprecated(args map[string]interface{}) bool {
	v, _ := args["includeDeprecated"].(bool)
	return v
}

// deref turns the optional strings of the introspection model into null.
func deref(s *string) interface{} {
	if s == nil {
		return nil
	}
	return *s
}

func hasKind(t *introspection.Type, kinds ...ast.DefinitionKind) bool {
	return lo.Contains(kinds, ast.DefinitionKind(t.Kind()))
}

// introspectionResolvers builds the resolvers for the introspection types of schema.
func introspectionResolvers(schema *Schema) Resolvers {
	s := schema.AST()
	wrapped := introspection.WrapSchema(s)
	r := Resolvers{}

	// definition returns the named definition behind t, nil for wrappers.
	definition := func(t *introspection.Type) *ast.Definition {
		if name := t.Name(); name != nil {
			return s.Types[*name]
		}
		return nil
	}

	if s.Query != nil {
		r.Set(s.Query.Name, "__schema", func(_ context.Context, _ ResolveParams) (interface{}, error) {
			return wrapped, nil
		})
		r.Set(s.Query.Name, "__type", func(_ context.Context, p ResolveParams) (interface{}, error) {
			name, _ := StringArg(p.Args, "name")
			if def := s.Types[name]; def != nil {
				return introspection.WrapTypeFromDef(s, def), nil
			}
			return nil, nil
		})
	}

	// __Schema
	schemaField := func(field string, fn func(sc *introspection.Schema) interface{}) {
		r.Set("__Schema", field, func(_ context.Context, p ResolveParams) (interface{}, error) {
			sc, _ := p.Source.(*introspection.Schema)
			if sc == nil {
				return nil, nil
			}
			return fn(sc), nil
		})
	}
	schemaField("description", func(*introspection.Schema) interface{} {
		if s.Description == "" {
			return nil
		}
		return s.Description
	})
	schemaField("types", func(_ *introspection.Schema) interface{} {
		// ListTypes keeps the built-in __ types in the listing.
		return lo.Map(schema.ListTypes(), func(name string, _ int) *introspection.Type {
			return introspection.WrapTypeFromDef(s, s.Types[name])
		})
	})
	schemaField("queryType", func(sc *introspection.Schema) interface{} { return nilType(sc.QueryType()) })
	schemaField("mutationType", func(sc *introspection.Schema) interface{} { return nilType(sc.MutationType()) })
	schemaField("subscriptionType", func(sc *introspection.Schema) interface{} { return nilType(sc.SubscriptionType()) })
	schemaField("directives", func(sc *introspection.Schema) interface{} {
		return lo.ToSlicePtr(sc.Directives())
	})

	// __Type
	typeField := func(field string, fn func(t *introspection.Type, p ResolveParams) interface{}) {
		r.Set("__Type", field, func(_ context.Context, p ResolveParams) (interface{}, error) {
			t, _ := p.Source.(*introspection.Type)
			if t == nil {
				return nil, nil
			}
			return fn(t, p), nil
		})
	}
	typeField("kind", func(t *introspection.Type, _ ResolveParams) interface{} { return t.Kind() })
	typeField("name", func(t *introspection.Type, _ ResolveParams) interface{} { return deref(t.Name()) })
	typeField("description", func(t *introspection.Type, _ ResolveParams) interface{} { return deref(t.Description()) })
	typeField("specifiedByURL", func(t *introspection.Type, _ ResolveParams) interface{} {
		def := definition(t)
		if def == nil || def.Kind != ast.Scalar {
			return nil
		}
		if d := def.Directives.ForName("specifiedBy"); d != nil {
			if arg := d.Arguments.ForName("url"); arg != nil && arg.Value != nil {
				return arg.Value.Raw
			}
		}
		return nil
	})
	typeField("fields", func(t *introspection.Type, p ResolveParams) interface{} {
		if !hasKind(t, ast.Object, ast.Interface) {
			return nil
		}
		return lo.ToSlicePtr(t.Fields(includeDeprecated(p.Args)))
	})
	typeField("interfaces", func(t *introspection.Type, _ ResolveParams) interface{} {
		if !hasKind(t, ast.Object, ast.Interface) {
			return nil
		}
		return lo.ToSlicePtr(t.Interfaces())
	})
	typeField("possibleTypes", func(t *introspection.Type, _ ResolveParams) interface{} {
		if !hasKind(t, ast.Interface, ast.Union) {
			return nil
		}
		return lo.ToSlicePtr(t.PossibleTypes())
	})
	typeField("enumValues", func(t *introspection.Type, p ResolveParams) interface{} {
		if !hasKind(t, ast.Enum) {
			return nil
		}
		return lo.ToSlicePtr(t.EnumValues(includeDeprecated(p.Args)))
	})
	typeField("inputFields", func(t *introspection.Type, _ ResolveParams) interface{} {
		if !hasKind(t, ast.InputObject) {
			return nil
		}
		return lo.ToSlicePtr(t.InputFields())
	})
	typeField("ofType", func(t *introspection.Type, _ ResolveParams) interface{} { return nilType(t.OfType()) })
	typeField("isOneOf", func(t *introspection.Type, _ ResolveParams) interface{} {
		def := definition(t)
		if def == nil || def.Kind != ast.InputObject {
			return nil
		}
		return def.Directives.ForName("oneOf") != nil
	})

	// __Field
	fieldField := func(field string, fn func(f *introspection.Field) interface{}) {
		r.Set("__Field", field, func(_ context.Context, p ResolveParams) (interface{}, error) {
			f, _ := p.Source.(*introspection.Field)
			if f == nil {
				return nil, nil
			}
			return fn(f), nil
		})
	}
	fieldField("name", func(f *introspection.Field) interface{} { return f.Name })
	fieldField("description", func(f *introspection.Field) interface{} { return deref(f.Description()) })
	fieldField("args", func(f *introspection.Field) interface{} { return lo.ToSlicePtr(f.Args) })
	fieldField("type", func(f *introspection.Field) interface{} { return nilType(f.Type) })
	fieldField("isDeprecated", func(f *introspection.Field) interface{} { return f.IsDeprecated })
	fieldField("deprecationReason", func(f *introspection.Field) interface{} { return deref(f.DeprecationReason) })

	// __InputValue. The wrapped model carries no deprecation for arguments.
	inputField := func(field string, fn func(in *introspection.InputValue) interface{}) {
		r.Set("__InputValue", field, func(_ context.Context, p ResolveParams) (interface{}, error) {
			in, _ := p.Source.(*introspection.InputValue)
			if in == nil {
				return nil, nil
			}
			return fn(in), nil
		})
	}
	inputField("name", func(in *introspection.InputValue) interface{} { return in.Name })
	inputField("description", func(in *introspection.InputValue) interface{} { return deref(in.Description()) })
	inputField("type", func(in *introspection.InputValue) interface{} { return nilType(in.Type) })
	inputField("defaultValue", func(in *introspection.InputValue) interface{} { return deref(in.DefaultValue) })
	inputField("isDeprecated", func(*introspection.InputValue) interface{} { return false })
	inputField("deprecationReason", func(*introspection.InputValue) interface{} { return nil })

	// __EnumValue
	enumField := func(field string, fn func(v *introspection.EnumValue) interface{}) {
		r.Set("__EnumValue", field, func(_ context.Context, p ResolveParams) (interface{}, error) {
			v, _ := p.Source.(*introspection.EnumValue)
			if v == nil {
				return nil, nil
			}
			return fn(v), nil
		})
	}
	enumField("name", func(v *introspection.EnumValue) interface{} { return v.Name })
	enumField("description", func(v *introspection.EnumValue) interface{} { return deref(v.Description()) })
	enumField("isDeprecated", func(v *introspection.EnumValue) interface{} { return v.IsDeprecated })
	enumField("deprecationReason", func(v *introspection.EnumValue) interface{} { return deref(v.DeprecationReason) })

	// __Directive
	directiveField := func(field string, fn func(d *introspection.Directive) interface{}) {
		r.Set("__Directive", field, func(_ context.Context, p ResolveParams) (interface{}, error) {
			d, _ := p.Source.(*introspection.Directive)
			if d == nil {
				return nil, nil
			}
			return fn(d), nil
		})
	}
	directiveField("name", func(d *introspection.Directive) interface{} { return d.Name })
	directiveField("description", func(d *introspection.Directive) interface{} { return deref(d.Description()) })
	directiveField("locations", func(d *introspection.Directive) interface{} { return d.Locations })
	directiveField("args", func(d *introspection.Directive) interface{} { return lo.ToSlicePtr(d.Args) })
	directiveField("isRepeatable", func(d *introspection.Directive) interface{} {
		def := s.Directives[d.Name]
		return def != nil && def.IsRepeatable
	})

	return r
}

// nilType keeps a missing type untyped so it completes as null.
func nilType(t *introspection.Type) interface{} {
	if t == nil {
		return nil
	}
	return t
}
