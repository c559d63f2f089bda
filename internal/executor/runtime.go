package executor

import (
	"context"
)

// Runtime is the host integration surface for field resolution, batching,
// abstract type resolution, and leaf-value serialization.
//
// Contract:
//   - The Executor runs breadth-first. At each depth it drains synchronous
//     fields via ResolveSync, then calls BatchResolveAsync once with every
//     async task collected at that depth. The next depth starts only after
//     those results are completed.
//   - ResolveSync is never invoked for fields marked async, and
//     BatchResolveAsync is only invoked when the depth produced at least one
//     async task.
//   - Errors become located GraphQL errors. A failure on a Non-Null field
//     nulls the nearest nullable ancestor; a failure on a nullable field
//     nulls the field alone.
//   - Sibling resolutions must not share mutable state: each call is a pure
//     function of (source, args, ctx). The Executor may invoke methods
//     concurrently across operations.
//
// Identifiers: objectType is the GraphQL type name, field the field name on
// that type. For root fields objectType is the root type name and source is
// nil. Args are already coerced Go values.
type Runtime interface {
	// ResolveSync resolves a synchronous field immediately. Return (nil, nil)
	// for a GraphQL null on a nullable field.
	ResolveSync(ctx context.Context, objectType string, field string, source any, args map[string]any) (any, error)

	// BatchResolveAsync resolves one depth of async tasks. Results must be
	// positional: results[i] corresponds to tasks[i], len(results) ==
	// len(tasks). Failures are per element; one failed task must not fail the
	// batch.
	BatchResolveAsync(ctx context.Context, tasks []AsyncResolveTask) []AsyncResolveResult

	// ResolveType returns the concrete object type name for a value of the
	// given abstract (interface or union) type.
	ResolveType(ctx context.Context, abstractType string, value any) (string, error)

	// SerializeLeafValue serializes a scalar or enum value to a JSON-safe Go
	// value. For enums, return the symbolic name as string.
	SerializeLeafValue(ctx context.Context, scalarOrEnumTypeName string, value any) (any, error)
}

// AsyncResolveTask is one pending async field resolution.
type AsyncResolveTask struct {
	// ObjectType is the parent GraphQL object type name for the field.
	ObjectType string
	// Field is the GraphQL field name to resolve.
	Field string
	// Source is the parent object value (nil for root fields).
	Source any
	// Args are the field arguments, coerced to Go values per the schema.
	Args map[string]any
}

// AsyncResolveResult is the outcome of one AsyncResolveTask.
type AsyncResolveResult struct {
	// Value is the resolved raw value prior to completion, or nil on error.
	Value any
	// Error is a failure specific to this element; other elements in the same
	// batch are unaffected.
	Error error
}
