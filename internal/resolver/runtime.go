package resolver

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	executor "github.com/resolvent/resolvent/internal/executor"
)

// ResolveSync resolves a field inline. Unregistered fields land here through
// the default property resolver.
func (m *Map) ResolveSync(ctx context.Context, objectType string, field string, source any, args map[string]any) (any, error) {
	return m.Lookup(objectType, field)(ctx, source, args)
}

// BatchResolveAsync resolves one depth's tasks with goroutine fan-out.
// Results are positional; a panic in one resolver fails its own slot only.
func (m *Map) BatchResolveAsync(ctx context.Context, tasks []executor.AsyncResolveTask) []executor.AsyncResolveResult {
	results := make([]executor.AsyncResolveResult, len(tasks))
	var wg sync.WaitGroup
	for i, task := range tasks {
		wg.Add(1)
		go func(i int, task executor.AsyncResolveTask) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					results[i] = executor.AsyncResolveResult{Error: fmt.Errorf("resolver panic: %v", r)}
				}
			}()
			fn := m.Lookup(task.ObjectType, task.Field)
			v, err := fn(ctx, task.Source, task.Args)
			results[i] = executor.AsyncResolveResult{Value: v, Error: err}
		}(i, task)
	}
	wg.Wait()
	return results
}

// ResolveType resolves the concrete type of a value in an abstract position:
// the registered type resolver first, then the value's __typename property.
func (m *Map) ResolveType(ctx context.Context, abstractType string, value any) (string, error) {
	m.mu.Lock()
	fn := m.typeResolvers[abstractType]
	m.mu.Unlock()
	if fn != nil {
		return fn(value)
	}
	if typename, ok := getProperty(value, "__typename"); ok {
		if name, ok := typename.(string); ok {
			return name, nil
		}
	}
	return "", fmt.Errorf("cannot resolve concrete type for %s value", abstractType)
}

// SerializeLeafValue serializes a scalar or enum value: the registered
// serializer if any, builtin scalar coercion otherwise, pass-through for
// enums and custom scalars.
func (m *Map) SerializeLeafValue(ctx context.Context, scalarOrEnumTypeName string, value any) (any, error) {
	m.mu.Lock()
	fn := m.serializers[scalarOrEnumTypeName]
	m.mu.Unlock()
	if fn != nil {
		return fn(value)
	}

	switch scalarOrEnumTypeName {
	case "Int":
		return serializeInt(value)
	case "Float":
		return serializeFloat(value)
	case "String":
		return serializeString(value)
	case "Boolean":
		return serializeBoolean(value)
	case "ID":
		return serializeID(value)
	default:
		return value, nil
	}
}

func serializeInt(value any) (any, error) {
	switch v := value.(type) {
	case int:
		return v, nil
	case int32:
		return int(v), nil
	case int64:
		return int(v), nil
	case float64:
		// Lossy conversions are errors, not truncations.
		if v == float64(int(v)) {
			return int(v), nil
		}
	case float32:
		if float64(v) == float64(int(v)) {
			return int(v), nil
		}
	}
	return nil, fmt.Errorf("cannot serialize %v (%T) as Int", value, value)
}

func serializeFloat(value any) (any, error) {
	switch v := value.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	}
	return nil, fmt.Errorf("cannot serialize %T as Float", value)
}

func serializeString(value any) (any, error) {
	if v, ok := value.(string); ok {
		return v, nil
	}
	return nil, fmt.Errorf("cannot serialize %T as String", value)
}

func serializeBoolean(value any) (any, error) {
	if v, ok := value.(bool); ok {
		return v, nil
	}
	return nil, fmt.Errorf("cannot serialize %T as Boolean", value)
}

func serializeID(value any) (any, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case int:
		return strconv.Itoa(v), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	}
	return nil, fmt.Errorf("cannot serialize %T as ID", value)
}
