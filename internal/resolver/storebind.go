package resolver

import (
	"strings"

	schema "github.com/resolvent/resolvent/internal/schema"
	store "github.com/resolvent/resolvent/internal/store"
)

// BindStoreConventions registers store-backed resolvers for every object
// field of s that follows the catalog naming conventions:
//
//   - a root query field returning a list of objects lists the collection
//   - a root query field with an "id" argument looks the record up by id
//   - mutation fields route on their arguments: an input object argument
//     alone creates, "id" alone deletes, "id" plus an input object updates
//   - an object field returning a list of objects filters the target
//     collection by "<parenttype>_id"
//   - an object field returning a single object dereferences "<field>_id"
//
// Collection names derive from the lowercased type name pluralized the way
// the seed fixtures name them (Game -> games, Category -> categories).
// Fields outside these shapes stay on the default property resolver.
// Register panics if a covered field was bound before this call.
func BindStoreConventions(m *Map, st *store.Store, s *schema.Schema) {
	if q := s.Types[s.QueryType]; q != nil {
		for _, f := range q.GetOrderedFields() {
			target := objectTarget(s, f)
			if target == nil {
				continue
			}
			kind := kindFor(target.Name)
			switch {
			case f.Type.IsList():
				m.Register(q.Name, f.Name, ListFunc(st, kind))
			case hasArgument(f, "id"):
				m.Register(q.Name, f.Name, GetByIDFunc(st, kind, "id"))
			}
		}
	}

	if mu := s.Types[s.MutationType]; mu != nil {
		for _, f := range mu.GetOrderedFields() {
			target := objectTarget(s, f)
			if target == nil {
				continue
			}
			kind := kindFor(target.Name)
			inputArg, inputType := inputObjectArgument(s, f)
			switch {
			case inputArg != "" && hasArgument(f, "id"):
				m.Register(mu.Name, f.Name, UpdateFunc(st, kind, "id", inputArg, inputType))
			case inputArg != "":
				m.Register(mu.Name, f.Name, CreateFunc(st, kind, inputArg, inputType))
			case hasArgument(f, "id"):
				m.Register(mu.Name, f.Name, DeleteFunc(st, kind, "id"))
			}
		}
	}

	for name, t := range s.Types {
		if t.Kind != schema.TypeKindObject || name == s.QueryType || name == s.MutationType || strings.HasPrefix(name, "__") {
			continue
		}
		for _, f := range t.GetOrderedFields() {
			target := objectTarget(s, f)
			if target == nil {
				continue
			}
			kind := kindFor(target.Name)
			if f.Type.IsList() {
				m.Register(name, f.Name, ForeignKeyFunc(st, kind, strings.ToLower(name)+"_id"))
			} else {
				m.Register(name, f.Name, ReferenceFunc(st, kind, f.Name+"_id"))
			}
		}
	}
}

// objectTarget returns the object type a field resolves into, or nil when
// the field is leaf-valued or targets a non-object type.
func objectTarget(s *schema.Schema, f *schema.Field) *schema.Type {
	t := s.Types[f.Type.GetNamedType()]
	if t == nil || t.Kind != schema.TypeKindObject {
		return nil
	}
	return t
}

func hasArgument(f *schema.Field, name string) bool {
	for _, a := range f.GetOrderedArguments() {
		if a.Name == name {
			return true
		}
	}
	return false
}

// inputObjectArgument returns the first argument declared with an input
// object type, along with that type's definition.
func inputObjectArgument(s *schema.Schema, f *schema.Field) (string, *schema.Type) {
	for _, a := range f.GetOrderedArguments() {
		if t := s.Types[a.Type.GetNamedType()]; t != nil && t.Kind == schema.TypeKindInputObject {
			return a.Name, t
		}
	}
	return "", nil
}

func kindFor(typeName string) string {
	n := strings.ToLower(typeName)
	switch {
	case strings.HasSuffix(n, "s"):
		return n + "es"
	case strings.HasSuffix(n, "y"):
		return n[:len(n)-1] + "ies"
	default:
		return n + "s"
	}
}
