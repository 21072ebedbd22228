package graphql

import (
	"context"

	"github.com/vektah/gqlparser/v2/ast"
)

// Config configures a GraphQL endpoint.
type Config struct {
	// ID identifies this endpoint in logs and metrics.
	ID string `json:"id" yaml:"id"`
	// Path is the URL path where this GraphQL endpoint is served.
	Path string `json:"path" yaml:"path"`
	// Title is shown by the schema explorer.
	Title string `json:"title,omitempty" yaml:"title,omitempty"`
	// Introspection enables __schema and __type.
	Introspection bool `json:"introspection" yaml:"introspection"`
	// Explorer serves the interactive schema explorer to browsers on GET.
	// It needs Introspection to be useful.
	Explorer bool `json:"explorer" yaml:"explorer"`
}

// ResolveParams carries what a resolver needs to compute one field value.
type ResolveParams struct {
	// Source is the parent value. It is nil for root fields.
	Source interface{}
	// Args holds the coerced argument values. Absent optional arguments have no key.
	Args map[string]interface{}
	// Field is the selected field from the query document.
	Field *ast.Field
	// Path is the response path of this field.
	Path []interface{}
}

// ResolverFunc computes the value of one field.
// Returning (nil, nil) yields null. A non-nil error becomes a field error.
type ResolverFunc func(ctx context.Context, p ResolveParams) (interface{}, error)

// Resolvers maps field paths ("Query.song", "Song.author") to resolvers.
type Resolvers map[string]ResolverFunc

// Set registers fn under typeName.fieldName.
func (r Resolvers) Set(typeName, fieldName string, fn ResolverFunc) {
	r[FieldPath{TypeName: typeName, FieldName: fieldName}.String()] = fn
}

// Lookup returns the resolver registered for typeName.fieldName.
func (r Resolvers) Lookup(typeName, fieldName string) (ResolverFunc, bool) {
	fn, ok := r[FieldPath{TypeName: typeName, FieldName: fieldName}.String()]
	return fn, ok
}

// GraphQLError represents a GraphQL error in the response format.
type GraphQLError struct {
	// Message is the error message.
	Message string `json:"message"`
	// Locations indicates where in the query the error occurred.
	Locations []GraphQLErrorLocation `json:"locations,omitempty"`
	// Path is the response field path where the error occurred.
	Path []interface{} `json:"path,omitempty"`
	// Extensions contains additional error metadata.
	Extensions map[string]interface{} `json:"extensions,omitempty"`
}

// Error implements the error interface.
func (e *GraphQLError) Error() string {
	return e.Message
}

// GraphQLErrorLocation represents a location in the GraphQL query where an error occurred.
type GraphQLErrorLocation struct {
	// Line is the line number (1-indexed).
	Line int `json:"line"`
	// Column is the column number (1-indexed).
	Column int `json:"column"`
}

// GraphQLRequest represents an incoming GraphQL request.
type GraphQLRequest struct {
	// Query is the GraphQL query string.
	Query string `json:"query"`
	// OperationName is the name of the operation to execute (for multi-operation documents).
	OperationName string `json:"operationName,omitempty"`
	// Variables are the variable values for the query.
	Variables map[string]interface{} `json:"variables,omitempty"`

	// readOnly refuses mutations. Set for GET requests.
	readOnly bool
}

// GraphQLResponse represents a GraphQL response.
// Data is always encoded; it is null when the request failed before execution.
type GraphQLResponse struct {
	// Data contains the result of the query execution.
	Data interface{} `json:"data"`
	// Errors contains any errors that occurred during execution.
	Errors []GraphQLError `json:"errors,omitempty"`
	// Extensions contains additional response metadata.
	Extensions map[string]interface{} `json:"extensions,omitempty"`

	// operation is the type of the operation that was selected, if any.
	operation ast.Operation
}

func (r *GraphQLResponse) withOperation(op *ast.OperationDefinition) *GraphQLResponse {
	r.operation = op.Operation
	return r
}

// OperationType returns the type of the operation the executor selected,
// or "unknown" when the request failed before one was chosen.
func (r *GraphQLResponse) OperationType() string {
	if r.operation == "" {
		return "unknown"
	}
	return string(r.operation)
}

// Error codes set in GraphQLError.Extensions["code"].
const (
	CodeParseFailed        = "GRAPHQL_PARSE_FAILED"
	CodeValidationFailed   = "GRAPHQL_VALIDATION_FAILED"
	CodeBadUserInput       = "BAD_USER_INPUT"
	CodeOperationNotFound  = "OPERATION_NOT_FOUND"
	CodeMethodNotAllowed   = "METHOD_NOT_ALLOWED"
	CodeIntrospectionOff   = "INTROSPECTION_DISABLED"
	CodeInternalServer     = "INTERNAL_SERVER_ERROR"
	CodeRequestCancelled   = "REQUEST_CANCELLED"
	CodeNullForNonNullable = "NON_NULL_VIOLATION"
)

// HasCode reports whether any error in the response carries code.
func (r *GraphQLResponse) HasCode(code string) bool {
	for _, e := range r.Errors {
		if c, ok := e.Extensions["code"].(string); ok && c == code {
			return true
		}
	}
	return false
}

// FieldPath names a field of a type. It keys the Resolvers table as "Query.song".
type FieldPath struct {
	// TypeName is the parent type name (e.g., "Query", "Mutation", "Song").
	TypeName string
	// FieldName is the field name.
	FieldName string
}

// String returns the string representation of the field path.
func (fp FieldPath) String() string {
	return fp.TypeName + "." + fp.FieldName
}
