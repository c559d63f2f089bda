// Package executor implements a breadth-first, batch-friendly query executor
// with runtime hooks for synchronous resolution, depth-wise batching of
// asynchronous work, abstract-type resolution, and leaf serialization.
//
// # Preparation
//
// Before any resolver runs, the executor:
//  1. Selects the operation (by name, or by uniqueness when unnamed).
//  2. Coerces variables against the operation's variable definitions. A
//     coercion failure rejects the request.
//  3. Validates the request shape against the schema: every selected field
//     must be declared on the type it is selected from, and every fragment
//     condition must name a known type. Shape errors (UNKNOWN_FIELD,
//     UNKNOWN_TYPE) reject the whole request with no partial execution.
//
// # Execution model
//
// Execution is level-by-level. Synchronous fields (schema.Field.Async ==
// false) expand immediately via Runtime.ResolveSync without adding batch
// depth; asynchronous fields discovered while expanding a depth are queued
// and resolved in a single Runtime.BatchResolveAsync call per depth. A
// request whose async dependency graph is d levels deep makes exactly d
// batch calls.
//
// Sibling fields are independent: each resolution is a pure function of
// (source, args, ctx), and the runtime may resolve a batch's tasks
// concurrently. The response is nevertheless deterministic: objects preserve
// the request's field order regardless of completion order.
//
// Root mutation fields are the exception to sibling independence: they
// execute serially, each root field (including its nested async work)
// completing before the next one starts.
//
// # Non-null propagation
//
// Every value position carries its nearest nullable ancestor (the null
// boundary). When a non-null field fails or completes null, the executor
// records a located error, writes null at the boundary, and tombstones the
// subtree so queued tasks beneath it are dropped before the next batch. If no
// nullable ancestor exists the whole response data becomes null. Failures on
// nullable fields stay local: the field is null and siblings proceed.
//
// Errors carry extensions: "code" classifies the failure (resolver errors may
// override it by implementing ErrorCode() string), and "severity" records
// whether the error nulled an ancestor ("fatal") or only its own field
// ("localized").
//
// # Cancellation
//
// Cancellation is honored at depth boundaries: an in-flight batch completes,
// remaining depths are discarded, and the response reports CANCELLED with
// null data.
package executor
