package resolver

import (
	"context"
	"fmt"
	"sort"
	"sync"

	schema "github.com/resolvent/resolvent/internal/schema"
)

// Func resolves one field: a pure function of (parent, args, context).
type Func func(ctx context.Context, source any, args map[string]any) (any, error)

// TypeResolverFunc resolves the concrete object type for a value in an
// abstract (interface or union) position.
type TypeResolverFunc func(value any) (string, error)

// SerializerFunc converts a resolved leaf value into its transport form.
type SerializerFunc func(value any) (any, error)

// PropertyGetter lets non-map sources serve the default property resolver.
type PropertyGetter interface {
	GetProperty(name string) (any, bool)
}

// Map binds (type, field) pairs to resolver functions. Registration happens
// once at startup; Freeze validates the bindings against a schema and makes
// the map immutable. Fields without a registered resolver fall back to a
// default resolver reading the same-named property off the parent record, so
// plain scalar fields need no registration.
type Map struct {
	mu            sync.Mutex
	resolvers     map[string]Func
	typeResolvers map[string]TypeResolverFunc
	serializers   map[string]SerializerFunc
	frozen        bool
}

func NewMap() *Map {
	return &Map{
		resolvers:     make(map[string]Func),
		typeResolvers: make(map[string]TypeResolverFunc),
		serializers:   make(map[string]SerializerFunc),
	}
}

// Register binds fn to typeName.fieldName. Registering after Freeze or
// registering the same field twice panics: both are wiring bugs.
func (m *Map) Register(typeName, fieldName string, fn Func) *Map {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.frozen {
		panic(fmt.Sprintf("resolver: register %s.%s after freeze", typeName, fieldName))
	}
	key := typeName + "." + fieldName
	if _, exists := m.resolvers[key]; exists {
		panic(fmt.Sprintf("resolver: duplicate registration for %s", key))
	}
	m.resolvers[key] = fn
	return m
}

// RegisterTypeResolver binds a concrete-type resolver for an abstract type.
func (m *Map) RegisterTypeResolver(abstractType string, fn TypeResolverFunc) *Map {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.frozen {
		panic(fmt.Sprintf("resolver: register type resolver %s after freeze", abstractType))
	}
	m.typeResolvers[abstractType] = fn
	return m
}

// RegisterSerializer binds a leaf serializer for a scalar or enum type.
func (m *Map) RegisterSerializer(typeName string, fn SerializerFunc) *Map {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.frozen {
		panic(fmt.Sprintf("resolver: register serializer %s after freeze", typeName))
	}
	m.serializers[typeName] = fn
	return m
}

// Freeze validates every registration against the schema, marks registered
// fields for batched async resolution, and seals the map. Unregistered
// fields keep resolving synchronously through the default property resolver.
func (m *Map) Freeze(s *schema.Schema) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.frozen {
		return fmt.Errorf("resolver: already frozen")
	}

	keys := make([]string, 0, len(m.resolvers))
	for key := range m.resolvers {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		typeName, fieldName := splitKey(key)
		t, err := s.Get(typeName)
		if err != nil {
			return fmt.Errorf("resolver: %s: %w", key, err)
		}
		fieldDef := t.Field(fieldName)
		if fieldDef == nil {
			return fmt.Errorf("resolver: %s: type %s has no field %s", key, typeName, fieldName)
		}
		fieldDef.SetAsync(true)
	}

	for abstractType := range m.typeResolvers {
		t, err := s.Get(abstractType)
		if err != nil {
			return fmt.Errorf("resolver: type resolver %s: %w", abstractType, err)
		}
		if t.Kind != schema.TypeKindInterface && t.Kind != schema.TypeKindUnion {
			return fmt.Errorf("resolver: type resolver %s: %s is not abstract", abstractType, t.Kind)
		}
	}

	m.frozen = true
	return nil
}

// Lookup returns the resolver for the field: the registered one, or the
// default property resolver.
func (m *Map) Lookup(typeName, fieldName string) Func {
	m.mu.Lock()
	fn := m.resolvers[typeName+"."+fieldName]
	m.mu.Unlock()
	if fn != nil {
		return fn
	}
	return defaultPropertyResolver(fieldName)
}

// defaultPropertyResolver reads the same-named property off the parent.
func defaultPropertyResolver(fieldName string) Func {
	return func(ctx context.Context, source any, args map[string]any) (any, error) {
		v, _ := getProperty(source, fieldName)
		return v, nil
	}
}

func getProperty(source any, name string) (any, bool) {
	switch src := source.(type) {
	case map[string]any:
		v, ok := src[name]
		return v, ok
	case PropertyGetter:
		return src.GetProperty(name)
	default:
		return nil, false
	}
}

func splitKey(key string) (string, string) {
	for i := 0; i < len(key); i++ {
		if key[i] == '.' {
			return key[:i], key[i+1:]
		}
	}
	return key, ""
}
