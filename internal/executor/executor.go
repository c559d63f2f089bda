package executor

import (
	"context"
	"fmt"
	"reflect"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	language "github.com/resolvent/resolvent/internal/language"
	schema "github.com/resolvent/resolvent/internal/schema"
)

// resultMap is the response object representation. Insertion order is the
// request field order, which json.Marshal preserves.
type resultMap = *orderedmap.OrderedMap[string, any]

func newResultMap() resultMap { return orderedmap.New[string, any]() }

// executionState holds the mutable state of one request.
type executionState struct {
	runtime        Runtime
	schema         *schema.Schema
	document       *language.QueryDocument
	variableValues map[string]any
	context        context.Context
	asyncTaskGroup []asyncTask
	errors         []GraphQLError
	// prefixes of paths voided by non-null propagation (tombstones)
	nullifiedPrefix map[string]struct{}
	// set when a non-null violation reached the response root
	rootNulled bool
}

// asyncTask is a pending async field resolution together with everything
// needed to complete and place its result.
type asyncTask struct {
	Task         AsyncResolveTask
	ResponsePath Path
	// NullBoundary is the nearest nullable ancestor at enqueue time; a
	// non-null violation of this field lands there. Empty means the response
	// root.
	NullBoundary Path
	FieldType    *schema.TypeRef
	Fields       []*language.Field
}

// asyncPending is the placeholder written into the response tree until the
// task's completion overwrites it.
type asyncPending struct{}

type Executor struct {
	runtime Runtime
	schema  *schema.Schema
}

func NewExecutor(runtime Runtime, schema *schema.Schema) *Executor {
	return &Executor{runtime: runtime, schema: schema}
}

// ExecuteRequest executes one operation of the document and returns the
// aggregated result. Request-shape errors (unknown types, unknown fields)
// reject the request before any resolver runs.
func (e *Executor) ExecuteRequest(
	ctx context.Context,
	document *language.QueryDocument,
	operationName string,
	variableValues map[string]any,
	initialValue any,
) *ExecutionResult {
	operation := getOperation(document, operationName)
	if operation == nil {
		return &ExecutionResult{Errors: []GraphQLError{{Message: "operation not found"}}}
	}

	coercedVariableValues, err := coerceVariableValues(e.schema, operation, variableValues)
	if err != nil {
		return &ExecutionResult{Errors: []GraphQLError{{Message: err.Error()}}}
	}

	var rootType *schema.Type
	switch operation.Operation {
	case language.Query:
		rootType = e.schema.GetQueryType()
	case language.Mutation:
		rootType = e.schema.GetMutationType()
	default:
		return &ExecutionResult{Errors: []GraphQLError{{Message: fmt.Sprintf("unsupported operation type: %s", operation.Operation)}}}
	}
	if rootType == nil {
		return &ExecutionResult{Errors: []GraphQLError{{Message: fmt.Sprintf("root type not found for %s operation", operation.Operation)}}}
	}

	if verr := validateRequest(e.schema, document, rootType, operation); verr != nil {
		return &ExecutionResult{Errors: []GraphQLError{*verr}}
	}

	state := &executionState{
		runtime:         e.runtime,
		schema:          e.schema,
		document:        document,
		variableValues:  coercedVariableValues,
		context:         ctx,
		errors:          []GraphQLError{},
		nullifiedPrefix: make(map[string]struct{}),
	}

	var responseRoot resultMap
	if operation.Operation == language.Mutation {
		responseRoot = executeMutationRoot(state, rootType, operation.SelectionSet, initialValue)
	} else {
		responseRoot = executeSelectionSet(state, rootType, operation.SelectionSet, initialValue, Path{}, Path{})
		if responseRoot == nil {
			state.rootNulled = true
		} else {
			drainAsyncTasks(state, responseRoot)
		}
	}

	if state.rootNulled {
		return &ExecutionResult{Data: nil, Errors: state.errors}
	}
	return &ExecutionResult{Data: responseRoot, Errors: state.errors}
}

// executeSelectionSet expands a selection set: sync fields immediately, async
// fields queued with a placeholder. boundary is the nearest nullable ancestor
// of this object; a nil return means the object was voided by a non-null
// violation and the caller must keep bubbling.
func executeSelectionSet(state *executionState, objectType *schema.Type, selectionSet language.SelectionSet, objectValue any, path Path, boundary Path) resultMap {
	groupedFields := collectFields(state, objectType, selectionSet)
	rm := newResultMap()

	for _, collectedField := range groupedFields.orderedFields() {
		responseName := collectedField.ResponseName
		fields := collectedField.Fields
		fieldPath := appendPath(path, responseName)

		fieldResult := executeFieldGroup(state, objectType, objectValue, fields, fieldPath, boundary)

		if fields[0].Name == "__typename" {
			rm.Set(responseName, fieldResult)
			continue
		}
		if _, pending := fieldResult.(asyncPending); pending {
			rm.Set(responseName, fieldResult)
			continue
		}

		fieldDef := objectType.Field(fields[0].Name)
		if fieldDef == nil {
			// Validated before execution; kept as a guard.
			continue
		}

		if schema.IsNonNull(fieldDef.Type) && isNullish(fieldResult) {
			// Void this object and drop queued work under the boundary.
			state.markNullifiedPrefix(boundary)
			return nil
		}

		if isNullish(fieldResult) {
			rm.Set(responseName, nil)
		} else {
			rm.Set(responseName, fieldResult)
		}
	}

	return rm
}

// executeMutationRoot executes root mutation fields serially: each root
// field, including all of its nested async work, completes before the next
// root field starts.
func executeMutationRoot(state *executionState, rootType *schema.Type, selectionSet language.SelectionSet, rootValue any) resultMap {
	groupedFields := collectFields(state, rootType, selectionSet)
	rm := newResultMap()

	for _, collectedField := range groupedFields.orderedFields() {
		responseName := collectedField.ResponseName
		fields := collectedField.Fields
		fieldPath := Path{PathElement(responseName)}

		fieldResult := executeFieldGroup(state, rootType, rootValue, fields, fieldPath, Path{})

		if fields[0].Name == "__typename" {
			rm.Set(responseName, fieldResult)
			continue
		}
		if _, pending := fieldResult.(asyncPending); pending {
			rm.Set(responseName, fieldResult)
			drainAsyncTasks(state, rm)
			if state.rootNulled {
				break
			}
			continue
		}

		fieldDef := rootType.Field(fields[0].Name)
		if fieldDef == nil {
			continue
		}

		if schema.IsNonNull(fieldDef.Type) && isNullish(fieldResult) {
			state.rootNulled = true
			break
		}

		if isNullish(fieldResult) {
			rm.Set(responseName, nil)
		} else {
			rm.Set(responseName, fieldResult)
		}

		drainAsyncTasks(state, rm)
		if state.rootNulled {
			break
		}
	}

	return rm
}

func executeFieldGroup(state *executionState, objectType *schema.Type, objectValue any, fields []*language.Field, path Path, boundary Path) any {
	field := fields[0]
	fieldName := field.Name

	if fieldName == "__typename" {
		return objectType.Name
	}

	fieldDef := objectType.Field(fieldName)
	if fieldDef == nil {
		state.errors = append(state.errors, newError(
			fmt.Sprintf("cannot query field %q on type %q", fieldName, objectType.Name),
			path, CodeUnknownField, ""))
		return nil
	}

	argumentValues := coerceArgumentValues(state, fieldDef, field.Arguments, path)

	if !fieldDef.Async {
		value, err := state.runtime.ResolveSync(state.context, objectType.Name, fieldName, objectValue, argumentValues)
		if err != nil {
			state.addResolverError(err, path, schema.IsNonNull(fieldDef.Type))
			return nil
		}
		return completeValue(state, fieldDef.Type, fields, value, path, boundary)
	}

	state.asyncTaskGroup = append(state.asyncTaskGroup, asyncTask{
		Task: AsyncResolveTask{
			ObjectType: objectType.Name,
			Field:      fieldName,
			Source:     objectValue,
			Args:       argumentValues,
		},
		ResponsePath: path,
		NullBoundary: boundary,
		FieldType:    fieldDef.Type,
		Fields:       fields,
	})
	return asyncPending{}
}

// drainAsyncTasks runs the depth-wise batch loop until no async work remains.
// Cancellation is honored at depth boundaries: in-flight batches complete,
// queued depths are discarded along with the response.
func drainAsyncTasks(state *executionState, responseRoot resultMap) {
	for len(state.asyncTaskGroup) > 0 {
		if err := state.context.Err(); err != nil {
			state.asyncTaskGroup = nil
			state.rootNulled = true
			state.errors = append(state.errors, newError("request cancelled: "+err.Error(), nil, CodeCancelled, ""))
			return
		}
		filtered, results := flushAsyncTasks(state)
		for i, r := range results {
			completeAsyncField(state, filtered[i], r, responseRoot)
		}
		if state.rootNulled {
			state.asyncTaskGroup = nil
			return
		}
	}
}

// flushAsyncTasks executes one depth's batch, after dropping tasks under
// tombstoned paths.
func flushAsyncTasks(state *executionState) ([]asyncTask, []AsyncResolveResult) {
	filtered := make([]asyncTask, 0, len(state.asyncTaskGroup))
	for _, at := range state.asyncTaskGroup {
		if state.hasNullifiedPrefix(at.ResponsePath) {
			continue
		}
		filtered = append(filtered, at)
	}
	state.asyncTaskGroup = nil

	if len(filtered) == 0 {
		return nil, nil
	}

	tasks := make([]AsyncResolveTask, len(filtered))
	for i, at := range filtered {
		tasks[i] = at.Task
	}
	results := state.runtime.BatchResolveAsync(state.context, tasks)
	return filtered, results
}

// completeAsyncField completes one async result, applying non-null
// propagation against the task's recorded boundary.
func completeAsyncField(state *executionState, at asyncTask, res AsyncResolveResult, responseRoot resultMap) {
	path := at.ResponsePath
	if state.rootNulled || state.hasNullifiedPrefix(path) {
		return
	}

	if res.Error != nil {
		fatal := schema.IsNonNull(at.FieldType)
		state.addResolverError(res.Error, path, fatal)
		if fatal {
			state.nullifyBoundary(at.NullBoundary, responseRoot)
		} else {
			setValueAtPath(responseRoot, path, nil)
		}
		return
	}

	completed := completeValue(state, at.FieldType, at.Fields, res.Value, path, at.NullBoundary)

	if schema.IsNonNull(at.FieldType) && isNullish(completed) {
		state.nullifyBoundary(at.NullBoundary, responseRoot)
		return
	}

	if isNullish(completed) {
		setValueAtPath(responseRoot, path, nil)
	} else {
		setValueAtPath(responseRoot, path, completed)
	}
}

// completeValue completes a resolved value against its declared type.
// boundary is the nearest nullable ancestor of the value's position; nullable
// positions become the boundary for their own descendants.
func completeValue(state *executionState, fieldType *schema.TypeRef, fields []*language.Field, result any, path Path, boundary Path) any {
	if schema.IsNonNull(fieldType) {
		completed := completeInnerValue(state, schema.Unwrap(fieldType), fields, result, path, boundary)
		if isNullish(completed) {
			if state.hasErrorUnderPath(path) {
				state.markFatalUnderPath(path)
			} else {
				state.errors = append(state.errors, newError(
					fmt.Sprintf("cannot return null for non-nullable field %s", pathToString(path)),
					path, CodeNullabilityViolation, SeverityFatal))
			}
			return nil
		}
		return completed
	}

	if isNullish(result) {
		return nil
	}
	// This position may legally be null: failures below land here.
	return completeInnerValue(state, fieldType, fields, result, path, path)
}

// completeInnerValue completes a non-null-stripped value: list, leaf, object
// or abstract.
func completeInnerValue(state *executionState, fieldType *schema.TypeRef, fields []*language.Field, result any, path Path, boundary Path) any {
	if isNullish(result) {
		return nil
	}

	if schema.IsList(fieldType) {
		return completeListValue(state, fieldType, fields, result, path, boundary)
	}

	namedType := schema.GetNamedType(fieldType)
	typeObj, err := state.schema.Get(namedType)
	if err != nil {
		state.addResolverError(err, path, false)
		return nil
	}

	switch typeObj.Kind {
	case schema.TypeKindScalar, schema.TypeKindEnum:
		serialized, err := state.runtime.SerializeLeafValue(state.context, namedType, result)
		if err != nil {
			state.addResolverError(err, path, false)
			return nil
		}
		return serialized
	case schema.TypeKindObject:
		return executeSelectionSet(state, typeObj, mergeSelectionSets(fields), result, path, boundary)
	case schema.TypeKindInterface, schema.TypeKindUnion:
		return completeAbstractValue(state, namedType, fields, result, path, boundary)
	default:
		state.errors = append(state.errors, newError(
			fmt.Sprintf("cannot complete value of unexpected type kind %s", typeObj.Kind),
			path, CodeResolverError, SeverityLocalized))
		return nil
	}
}

func completeListValue(state *executionState, listType *schema.TypeRef, fields []*language.Field, result any, path Path, boundary Path) any {
	var items []any
	if direct, ok := result.([]any); ok {
		items = direct
	} else {
		rv := reflect.ValueOf(result)
		if rv.Kind() != reflect.Slice {
			state.errors = append(state.errors, newError(
				fmt.Sprintf("expected list value, got %T", result),
				path, CodeResolverError, SeverityLocalized))
			return nil
		}
		items = make([]any, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			items[i] = rv.Index(i).Interface()
		}
	}

	inner := schema.Unwrap(listType)
	completed := make([]any, len(items))
	for i, item := range items {
		p := appendPath(path, i)
		v := completeValue(state, inner, fields, item, p, boundary)
		if schema.IsNonNull(inner) && isNullish(v) {
			// A non-null item violation voids the whole list.
			return nil
		}
		completed[i] = v
	}
	return completed
}

func completeAbstractValue(state *executionState, abstractTypeName string, fields []*language.Field, result any, path Path, boundary Path) any {
	typeName, err := state.runtime.ResolveType(state.context, abstractTypeName, result)
	if err != nil {
		state.addResolverError(err, path, false)
		return nil
	}
	objectType := state.schema.Types[typeName]
	if objectType == nil || objectType.Kind != schema.TypeKindObject {
		state.errors = append(state.errors, newError(
			fmt.Sprintf("abstract type %s must resolve to an object type, got %q", abstractTypeName, typeName),
			path, CodeResolverError, SeverityLocalized))
		return nil
	}
	return executeSelectionSet(state, objectType, mergeSelectionSets(fields), result, path, boundary)
}

func pathToString(path Path) string {
	result := ""
	for i, elem := range path {
		switch v := elem.(type) {
		case string:
			if i > 0 {
				result += "."
			}
			result += v
		case int:
			result += fmt.Sprintf("[%d]", v)
		}
	}
	return result
}

func appendPath(path Path, elem PathElement) Path {
	newPath := make(Path, len(path)+1)
	copy(newPath, path)
	newPath[len(path)] = elem
	return newPath
}

// nullifyBoundary writes nil at the nearest nullable ancestor and tombstones
// everything beneath it. An empty boundary voids the whole response.
func (s *executionState) nullifyBoundary(boundary Path, responseRoot resultMap) {
	if len(boundary) == 0 {
		s.rootNulled = true
		return
	}
	setValueAtPath(responseRoot, boundary, nil)
	s.markNullifiedPrefix(boundary)
}

func (s *executionState) markNullifiedPrefix(p Path) {
	key := pathToString(p)
	if key != "" {
		s.nullifiedPrefix[key] = struct{}{}
	}
}

func (s *executionState) hasNullifiedPrefix(p Path) bool {
	if len(s.nullifiedPrefix) == 0 {
		return false
	}
	cur := Path{}
	for _, elem := range p {
		cur = append(cur, elem)
		if _, ok := s.nullifiedPrefix[pathToString(cur)]; ok {
			return true
		}
	}
	return false
}

func getOperation(document *language.QueryDocument, operationName string) *language.OperationDefinition {
	if operationName == "" && len(document.Operations) == 1 {
		for _, op := range document.Operations {
			return op
		}
	}
	for _, op := range document.Operations {
		if op.Name == operationName {
			return op
		}
	}
	return nil
}

func (s *executionState) addResolverError(err error, path Path, fatal bool) {
	severity := SeverityLocalized
	if fatal {
		severity = SeverityFatal
	}
	s.errors = append(s.errors, newError(err.Error(), path, errorCode(err), severity))
}

// hasErrorUnderPath reports whether an error at the path or beneath it was
// already recorded, so non-null cascades do not stack duplicate errors.
func (s *executionState) hasErrorUnderPath(path Path) bool {
	for _, err := range s.errors {
		if pathHasPrefix(err.Path, path) {
			return true
		}
	}
	return false
}

// markFatalUnderPath upgrades recorded errors at or beneath the path to fatal
// severity, used when a deeper error ends up forcing ancestor nulling.
func (s *executionState) markFatalUnderPath(path Path) {
	for i := range s.errors {
		if pathHasPrefix(s.errors[i].Path, path) {
			if s.errors[i].Extensions == nil {
				s.errors[i].Extensions = map[string]any{}
			}
			s.errors[i].Extensions["severity"] = SeverityFatal
		}
	}
}

func pathHasPrefix(p Path, prefix Path) bool {
	if len(p) < len(prefix) {
		return false
	}
	for i := range prefix {
		if !reflect.DeepEqual(p[i], prefix[i]) {
			return false
		}
	}
	return true
}

// setValueAtPath writes a completed value into the response tree. Missing
// intermediates mean the subtree was voided; the write is dropped.
func setValueAtPath(responseRoot resultMap, path Path, value any) {
	if len(path) == 0 {
		return
	}
	var current any = responseRoot
	for _, elem := range path[:len(path)-1] {
		switch e := elem.(type) {
		case string:
			m, ok := current.(resultMap)
			if !ok {
				return
			}
			next, exists := m.Get(e)
			if !exists {
				return
			}
			current = next
		case int:
			slice, ok := current.([]any)
			if !ok || e >= len(slice) {
				return
			}
			current = slice[e]
		}
	}
	switch fe := path[len(path)-1].(type) {
	case string:
		if m, ok := current.(resultMap); ok {
			m.Set(fe, value)
		}
	case int:
		if slice, ok := current.([]any); ok && fe < len(slice) {
			slice[fe] = value
		}
	}
}

// mergeSelectionSets merges the selection sets of a merged field group.
func mergeSelectionSets(fields []*language.Field) language.SelectionSet {
	var merged language.SelectionSet
	for _, f := range fields {
		merged = append(merged, f.SelectionSet...)
	}
	return merged
}

// isNullish reports nil interfaces and typed nils.
func isNullish(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Interface, reflect.Ptr, reflect.Slice, reflect.Map, reflect.Func, reflect.Chan:
		return rv.IsNil()
	default:
		return false
	}
}
