package graphql

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"strings"

	"github.com/vektah/gqlparser/v2"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/gqlerror"
	"github.com/vektah/gqlparser/v2/validator"

	"github.com/getmockd/songbook/pkg/logging"
)

// Executor executes GraphQL operations against registered resolvers.
type Executor struct {
	schema    *Schema
	config    *Config
	resolvers Resolvers
	intro     Resolvers
	log       *slog.Logger
}

// NewExecutor creates a new GraphQL executor with the given schema, resolvers and configuration.
// A nil config enables introspection.
func NewExecutor(schema *Schema, resolvers Resolvers, config *Config) *Executor {
	if resolvers == nil {
		resolvers = Resolvers{}
	}
	if config == nil {
		config = &Config{Introspection: true}
	}
	return &Executor{
		schema:    schema,
		config:    config,
		resolvers: resolvers,
		intro:     introspectionResolvers(schema),
		log:       logging.Nop(),
	}
}

// SetLogger sets the logger used to report resolver panics.
func (e *Executor) SetLogger(log *slog.Logger) {
	if log != nil {
		e.log = log
	}
}

// Schema returns the schema the executor runs against.
func (e *Executor) Schema() *Schema {
	return e.schema
}

// execContext holds per-request execution state.
type execContext struct {
	doc    *ast.QueryDocument
	op     *ast.OperationDefinition
	vars   map[string]interface{}
	errors []*GraphQLError
}

func (ec *execContext) addError(err *GraphQLError) {
	ec.errors = append(ec.errors, err)
}

// collectedField groups the fields that share one response key.
type collectedField struct {
	key    string
	fields []*ast.Field
}

// Execute executes a GraphQL request and returns a response.
// Errors raised before execution starts leave Data nil.
func (e *Executor) Execute(ctx context.Context, req *GraphQLRequest) *GraphQLResponse {
	if req == nil || strings.TrimSpace(req.Query) == "" {
		return errorResponse(newCodedError("query is required", CodeBadUserInput))
	}

	doc, errs := gqlparser.LoadQuery(e.schema.AST(), req.Query)
	if len(errs) > 0 {
		resp := &GraphQLResponse{Errors: make([]GraphQLError, 0, len(errs))}
		for _, err := range errs {
			resp.Errors = append(resp.Errors, *convertGQLError(err))
		}
		return resp
	}

	op, gqlErr := selectOperation(doc, req.OperationName)
	if gqlErr != nil {
		return errorResponse(gqlErr)
	}

	if req.readOnly && op.Operation != ast.Query {
		return errorResponse(newCodedError(
			fmt.Sprintf("can only perform a %s operation from a POST request", op.Operation),
			CodeMethodNotAllowed)).withOperation(op)
	}

	root := e.rootType(op)
	if root == nil {
		return errorResponse(newCodedError(
			fmt.Sprintf("schema does not support %s operations", op.Operation), CodeValidationFailed)).withOperation(op)
	}

	vars, err := validator.VariableValues(e.schema.AST(), op, req.Variables)
	if err != nil {
		return errorResponse(convertVariableError(err)).withOperation(op)
	}

	ec := &execContext{doc: doc, op: op, vars: vars}
	data, ok := e.executeFields(ctx, ec, root, nil, op.SelectionSet, nil)

	resp := (&GraphQLResponse{}).withOperation(op)
	if ok {
		resp.Data = data
	}
	if len(ec.errors) > 0 {
		resp.Errors = make([]GraphQLError, len(ec.errors))
		for i, err := range ec.errors {
			resp.Errors[i] = *err
		}
	}
	return resp
}

// selectOperation picks the operation to run. A document holding several
// operations needs an operation name.
func selectOperation(doc *ast.QueryDocument, name string) (*ast.OperationDefinition, *GraphQLError) {
	if name == "" {
		switch len(doc.Operations) {
		case 0:
			return nil, newCodedError("no operation found in query", CodeOperationNotFound)
		case 1:
			return doc.Operations[0], nil
		default:
			return nil, newCodedError("operationName is required when the document contains multiple operations", CodeOperationNotFound)
		}
	}
	if op := doc.Operations.ForName(name); op != nil {
		return op, nil
	}
	return nil, newCodedError(fmt.Sprintf("operation %q not found", name), CodeOperationNotFound)
}

func (e *Executor) rootType(op *ast.OperationDefinition) *ast.Definition {
	switch op.Operation {
	case ast.Query:
		return e.schema.AST().Query
	case ast.Mutation:
		return e.schema.AST().Mutation
	default:
		// Subscriptions need a streaming transport this executor does not provide.
		return nil
	}
}

// executeFields resolves a selection set on one object value. Fields run in
// document order, which keeps mutation side effects serial. The bool is false
// when a non-null field failed and the whole object must become null.
func (e *Executor) executeFields(ctx context.Context, ec *execContext, objDef *ast.Definition, source interface{}, sels ast.SelectionSet, path []interface{}) (*OrderedMap, bool) {
	fields := e.collectFields(ec, objDef, sels)
	result := NewOrderedMap(len(fields))

	ok := true
	for _, cf := range fields {
		value, fieldOK := e.executeField(ctx, ec, objDef, source, cf, appendPath(path, cf.key))
		if !fieldOK {
			ok = false
			continue
		}
		result.Set(cf.key, value)
	}
	if !ok {
		return nil, false
	}
	return result, true
}

// collectFields flattens fragments and applies @skip/@include, grouping fields by response key.
func (e *Executor) collectFields(ec *execContext, objDef *ast.Definition, sels ast.SelectionSet) []collectedField {
	var out []collectedField
	index := make(map[string]int)
	e.collectInto(ec, objDef, sels, make(map[string]bool), &out, index)
	return out
}

func (e *Executor) collectInto(ec *execContext, objDef *ast.Definition, sels ast.SelectionSet, visited map[string]bool, out *[]collectedField, index map[string]int) {
	for _, sel := range sels {
		switch s := sel.(type) {
		case *ast.Field:
			if !shouldInclude(s.Directives, ec.vars) {
				continue
			}
			key := s.Alias
			if key == "" {
				key = s.Name
			}
			if i, ok := index[key]; ok {
				(*out)[i].fields = append((*out)[i].fields, s)
				continue
			}
			index[key] = len(*out)
			*out = append(*out, collectedField{key: key, fields: []*ast.Field{s}})

		case *ast.FragmentSpread:
			if visited[s.Name] || !shouldInclude(s.Directives, ec.vars) {
				continue
			}
			visited[s.Name] = true
			frag := s.Definition
			if frag == nil {
				frag = ec.doc.Fragments.ForName(s.Name)
			}
			if frag == nil || !e.fragmentApplies(objDef, frag.TypeCondition) {
				continue
			}
			e.collectInto(ec, objDef, frag.SelectionSet, visited, out, index)

		case *ast.InlineFragment:
			if !shouldInclude(s.Directives, ec.vars) || !e.fragmentApplies(objDef, s.TypeCondition) {
				continue
			}
			e.collectInto(ec, objDef, s.SelectionSet, visited, out, index)
		}
	}
}

func (e *Executor) fragmentApplies(objDef *ast.Definition, typeCondition string) bool {
	if typeCondition == "" || typeCondition == objDef.Name {
		return true
	}
	cond := e.schema.GetType(typeCondition)
	if cond == nil || cond.Kind == ast.Object {
		return false
	}
	return e.schema.IsPossibleType(cond, objDef)
}

// shouldInclude evaluates @skip and @include.
func shouldInclude(directives ast.DirectiveList, vars map[string]interface{}) bool {
	if d := directives.ForName("skip"); d != nil {
		if skip, _ := d.ArgumentMap(vars)["if"].(bool); skip {
			return false
		}
	}
	if d := directives.ForName("include"); d != nil {
		if include, _ := d.ArgumentMap(vars)["if"].(bool); !include {
			return false
		}
	}
	return true
}

// executeField resolves and completes one response key.
func (e *Executor) executeField(ctx context.Context, ec *execContext, objDef *ast.Definition, source interface{}, cf collectedField, path []interface{}) (interface{}, bool) {
	field := cf.fields[0]

	if field.Name == "__typename" {
		return objDef.Name, true
	}

	fieldDef := field.Definition
	if fieldDef == nil {
		fieldDef = objDef.Fields.ForName(field.Name)
	}
	if fieldDef == nil {
		ec.addError(fieldError(fmt.Sprintf("cannot query field %q on type %q", field.Name, objDef.Name), field, path))
		return nil, true
	}

	if isIntrospectionField(field.Name) && !e.config.Introspection {
		gqlErr := fieldError("GraphQL introspection is not allowed", field, path)
		gqlErr.Extensions = map[string]interface{}{"code": CodeIntrospectionOff}
		ec.addError(gqlErr)
		return nil, !fieldDef.Type.NonNull
	}

	if err := ctx.Err(); err != nil {
		gqlErr := fieldError("request cancelled", field, path)
		gqlErr.Extensions = map[string]interface{}{"code": CodeRequestCancelled}
		ec.addError(gqlErr)
		return nil, !fieldDef.Type.NonNull
	}

	args, err := argumentMap(fieldDef, field, ec.vars)
	if err != nil {
		gqlErr := fieldError(err.Error(), field, path)
		gqlErr.Extensions = map[string]interface{}{"code": CodeBadUserInput}
		ec.addError(gqlErr)
		return nil, !fieldDef.Type.NonNull
	}

	resolver, ok := e.lookupResolver(objDef, field.Name)
	if !ok {
		resolver = defaultResolver
	}

	value, err := e.callResolver(ctx, resolver, ResolveParams{
		Source: source,
		Args:   args,
		Field:  field,
		Path:   path,
	})
	if err != nil {
		ec.addError(resolverError(err, field, path))
		return nil, !fieldDef.Type.NonNull
	}

	return e.completeValue(ctx, ec, fieldDef.Type, cf.fields, value, path)
}

// lookupResolver prefers introspection resolvers for __schema, __type and the __ types.
func (e *Executor) lookupResolver(objDef *ast.Definition, fieldName string) (ResolverFunc, bool) {
	if isIntrospectionField(fieldName) || isIntrospectionField(objDef.Name) {
		if fn, ok := e.intro.Lookup(objDef.Name, fieldName); ok {
			return fn, true
		}
	}
	return e.resolvers.Lookup(objDef.Name, fieldName)
}

// argumentMap coerces the field arguments. gqlparser panics on malformed literals.
func argumentMap(def *ast.FieldDefinition, field *ast.Field, vars map[string]interface{}) (args map[string]interface{}, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("invalid arguments for field %q: %v", field.Name, r)
		}
	}()
	if field.Definition == nil {
		field.Definition = def
	}
	return field.ArgumentMap(vars), nil
}

// callResolver runs a resolver, turning a panic into an error.
func (e *Executor) callResolver(ctx context.Context, fn ResolverFunc, p ResolveParams) (value interface{}, err error) {
	defer func() {
		if r := recover(); r != nil {
			e.log.Error("resolver panic", "field", p.Field.Name, "path", p.Path, "panic", r)
			err = &GraphQLError{
				Message:    "internal server error",
				Extensions: map[string]interface{}{"code": CodeInternalServer},
			}
		}
	}()
	return fn(ctx, p)
}

// defaultResolver reads the field from a map parent.
func defaultResolver(_ context.Context, p ResolveParams) (interface{}, error) {
	return mapField(p.Source, p.Field.Name), nil
}

// mapField returns source[name] for maps with string keys, including named
// map types, and nil for anything else.
func mapField(source interface{}, name string) interface{} {
	switch src := source.(type) {
	case map[string]interface{}:
		return src[name]
	case *OrderedMap:
		v, _ := src.Get(name)
		return v
	}

	rv := reflect.ValueOf(source)
	if rv.Kind() == reflect.Map && rv.Type().Key().Kind() == reflect.String {
		v := rv.MapIndex(reflect.ValueOf(name).Convert(rv.Type().Key()))
		if v.IsValid() {
			return v.Interface()
		}
	}
	return nil
}

// completeValue shapes a resolved value to its declared type. The bool is false
// when null must propagate to the parent; the error is already recorded then.
func (e *Executor) completeValue(ctx context.Context, ec *execContext, typ *ast.Type, fields []*ast.Field, value interface{}, path []interface{}) (interface{}, bool) {
	if typ.NonNull {
		inner := *typ
		inner.NonNull = false
		v, ok := e.completeNullable(ctx, ec, &inner, fields, value, path)
		if !ok {
			return nil, false
		}
		if v == nil {
			field := fields[0]
			parent := ""
			if field.ObjectDefinition != nil {
				parent = field.ObjectDefinition.Name + "."
			}
			gqlErr := fieldError(fmt.Sprintf("Cannot return null for non-nullable field %s%s.", parent, field.Name), field, path)
			gqlErr.Extensions = map[string]interface{}{"code": CodeNullForNonNullable}
			ec.addError(gqlErr)
			return nil, false
		}
		return v, true
	}

	v, ok := e.completeNullable(ctx, ec, typ, fields, value, path)
	if !ok {
		return nil, true
	}
	return v, true
}

// completeNullable completes a value whose own position is nullable. The bool
// is false when a non-null descendant failed.
func (e *Executor) completeNullable(ctx context.Context, ec *execContext, typ *ast.Type, fields []*ast.Field, value interface{}, path []interface{}) (interface{}, bool) {
	if isNil(value) {
		return nil, true
	}

	if typ.Elem != nil {
		items, ok := toSlice(value)
		if !ok {
			ec.addError(fieldError(fmt.Sprintf("expected a list for field %q, got %T", fields[0].Name, value), fields[0], path))
			return nil, false
		}
		out := make([]interface{}, 0, len(items))
		for i, item := range items {
			v, ok := e.completeValue(ctx, ec, typ.Elem, fields, item, appendPath(path, i))
			if !ok {
				return nil, false
			}
			out = append(out, v)
		}
		return out, true
	}

	def := e.schema.GetType(typ.NamedType)
	if def == nil {
		ec.addError(fieldError(fmt.Sprintf("unknown type %q", typ.NamedType), fields[0], path))
		return nil, false
	}

	switch def.Kind {
	case ast.Scalar:
		v, err := serializeScalar(def.Name, value)
		if err != nil {
			ec.addError(fieldError(err.Error(), fields[0], path))
			return nil, false
		}
		return v, true

	case ast.Enum:
		name := fmt.Sprint(value)
		if def.EnumValues.ForName(name) == nil {
			ec.addError(fieldError(fmt.Sprintf("Enum %q cannot represent value: %q", def.Name, name), fields[0], path))
			return nil, false
		}
		return name, true

	case ast.Object:
		return e.executeFields(ctx, ec, def, value, mergeSelectionSets(fields), path)

	case ast.Interface, ast.Union:
		concrete := e.resolveAbstractType(def, value)
		if concrete == nil {
			ec.addError(fieldError(fmt.Sprintf("abstract type %q must resolve to an object type for value of type %T", def.Name, value), fields[0], path))
			return nil, false
		}
		return e.executeFields(ctx, ec, concrete, value, mergeSelectionSets(fields), path)

	default:
		ec.addError(fieldError(fmt.Sprintf("type %q cannot be used as an output type", def.Name), fields[0], path))
		return nil, false
	}
}

// resolveAbstractType finds the object type for an interface or union value
// from its "__typename" entry.
func (e *Executor) resolveAbstractType(def *ast.Definition, value interface{}) *ast.Definition {
	name, _ := mapField(value, "__typename").(string)
	if name == "" {
		return nil
	}
	concrete := e.schema.GetType(name)
	if concrete == nil || concrete.Kind != ast.Object || !e.schema.IsPossibleType(def, concrete) {
		return nil
	}
	return concrete
}

func mergeSelectionSets(fields []*ast.Field) ast.SelectionSet {
	if len(fields) == 1 {
		return fields[0].SelectionSet
	}
	var merged ast.SelectionSet
	for _, f := range fields {
		merged = append(merged, f.SelectionSet...)
	}
	return merged
}

func appendPath(path []interface{}, elem interface{}) []interface{} {
	out := make([]interface{}, len(path), len(path)+1)
	copy(out, path)
	return append(out, elem)
}

func isNil(v interface{}) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}

// toSlice accepts any slice or array so resolvers can return typed slices.
func toSlice(v interface{}) ([]interface{}, bool) {
	if items, ok := v.([]interface{}); ok {
		return items, true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	items := make([]interface{}, rv.Len())
	for i := range items {
		items[i] = rv.Index(i).Interface()
	}
	return items, true
}

// --- errors ---

func newCodedError(message, code string) *GraphQLError {
	return &GraphQLError{
		Message:    message,
		Extensions: map[string]interface{}{"code": code},
	}
}

func errorResponse(err *GraphQLError) *GraphQLResponse {
	return &GraphQLResponse{Errors: []GraphQLError{*err}}
}

func fieldError(message string, field *ast.Field, path []interface{}) *GraphQLError {
	return &GraphQLError{
		Message:   message,
		Locations: fieldLocations(field),
		Path:      path,
	}
}

func fieldLocations(field *ast.Field) []GraphQLErrorLocation {
	if field == nil || field.Position == nil {
		return nil
	}
	return []GraphQLErrorLocation{{Line: field.Position.Line, Column: field.Position.Column}}
}

// resolverError keeps the message and extensions of a *GraphQLError returned by
// a resolver and fills in location and path.
func resolverError(err error, field *ast.Field, path []interface{}) *GraphQLError {
	var gqlErr *GraphQLError
	if errors.As(err, &gqlErr) {
		out := *gqlErr
		if out.Locations == nil {
			out.Locations = fieldLocations(field)
		}
		if out.Path == nil {
			out.Path = path
		}
		return &out
	}
	return fieldError(err.Error(), field, path)
}

// convertGQLError converts a gqlparser error. Errors raised by a validation rule
// are validation failures; the rest come from the parser.
func convertGQLError(err *gqlerror.Error) *GraphQLError {
	out := &GraphQLError{
		Message:    err.Message,
		Extensions: make(map[string]interface{}, len(err.Extensions)+1),
	}
	for k, v := range err.Extensions {
		out.Extensions[k] = v
	}
	if err.Rule != "" {
		out.Extensions["code"] = CodeValidationFailed
	} else {
		out.Extensions["code"] = CodeParseFailed
	}
	for _, loc := range err.Locations {
		out.Locations = append(out.Locations, GraphQLErrorLocation{Line: loc.Line, Column: loc.Column})
	}
	for _, p := range err.Path {
		switch v := p.(type) {
		case ast.PathName:
			out.Path = append(out.Path, string(v))
		case ast.PathIndex:
			out.Path = append(out.Path, int(v))
		}
	}
	return out
}

func convertVariableError(err error) *GraphQLError {
	var gqlErr *gqlerror.Error
	if errors.As(err, &gqlErr) {
		out := convertGQLError(gqlErr)
		out.Extensions["code"] = CodeBadUserInput
		return out
	}
	return newCodedError(err.Error(), CodeBadUserInput)
}
