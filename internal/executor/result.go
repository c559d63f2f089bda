package executor

import "errors"

// Path locates a field in the response tree. Elements are response keys
// (string) or list indices (int).
type Path []PathElement

type PathElement any

// Error codes carried in GraphQLError.Extensions["code"].
const (
	CodeUnknownType          = "UNKNOWN_TYPE"
	CodeUnknownField         = "UNKNOWN_FIELD"
	CodeUnknownFragment      = "UNKNOWN_FRAGMENT"
	CodeResolverError        = "RESOLVER_ERROR"
	CodeNullabilityViolation = "NULLABILITY_VIOLATION"
	CodeCancelled            = "CANCELLED"
)

// Severity values carried in GraphQLError.Extensions["severity"]. A fatal
// error nulled an ancestor; a localized error only nulled its own field.
const (
	SeverityFatal     = "fatal"
	SeverityLocalized = "localized"
)

// GraphQLError is a located execution error attached to the response.
type GraphQLError struct {
	Message    string         `json:"message"`
	Path       Path           `json:"path,omitempty"`
	Extensions map[string]any `json:"extensions,omitempty"`
}

func (e GraphQLError) Error() string {
	return e.Message
}

func newError(message string, path Path, code, severity string) GraphQLError {
	ext := map[string]any{"code": code}
	if severity != "" {
		ext["severity"] = severity
	}
	return GraphQLError{Message: message, Path: path, Extensions: ext}
}

// errorCode extracts a domain code from an error. Errors may carry their own
// code by implementing ErrorCode() string; anything else is a resolver
// failure.
func errorCode(err error) string {
	var coded interface{ ErrorCode() string }
	if errors.As(err, &coded) {
		return coded.ErrorCode()
	}
	return CodeResolverError
}

// ExecutionResult is the outcome of executing one operation. Data preserves
// the request's field order; it is nil when a non-null violation reached the
// response root or the request was rejected before execution.
type ExecutionResult struct {
	Data   any            `json:"data"`
	Errors []GraphQLError `json:"errors,omitempty"`
}
