package schema

import (
	"fmt"
	"strconv"

	language "github.com/resolvent/resolvent/internal/language"
)

// BuildFromSDL parses an SDL document and registers every declared type in a
// fresh Schema. All structural checks run here, at registration time: type
// reference consistency, duplicate names, and dangling named references all
// fail the build rather than surfacing during execution.
func BuildFromSDL(sdl string) (*Schema, error) {
	doc, err := language.ParseSchema("schema.graphql", sdl)
	if err != nil {
		return nil, err
	}

	s := NewSchema(describeSchema(doc))

	for _, def := range doc.Definitions {
		t, err := buildDefinition(def)
		if err != nil {
			return nil, err
		}
		if _, exists := s.Types[t.Name]; exists {
			return nil, fmt.Errorf("type %q declared twice", t.Name)
		}
		if err := validateType(t); err != nil {
			return nil, fmt.Errorf("type %q: %w", t.Name, err)
		}
		s.Types[t.Name] = t
	}
	for _, dd := range doc.Directives {
		s.AddDirective(buildDirectiveDefinition(dd))
	}

	bindOperationTypes(s, doc)
	bindPossibleTypes(s)

	if err := checkReferences(s); err != nil {
		return nil, err
	}
	return s, nil
}

func describeSchema(doc *language.SchemaDocument) string {
	for _, sd := range doc.Schema {
		if sd.Description != "" {
			return sd.Description
		}
	}
	return ""
}

// bindOperationTypes applies an explicit schema { ... } block when present and
// otherwise falls back to the conventional Query/Mutation type names.
func bindOperationTypes(s *Schema, doc *language.SchemaDocument) {
	bound := false
	for _, sd := range doc.Schema {
		for _, op := range sd.OperationTypes {
			switch op.Operation {
			case language.Query:
				s.SetQueryType(op.Type)
				bound = true
			case language.Mutation:
				s.SetMutationType(op.Type)
				bound = true
			}
		}
	}
	if bound {
		return
	}
	if _, ok := s.Types["Query"]; ok {
		s.SetQueryType("Query")
	}
	if _, ok := s.Types["Mutation"]; ok {
		s.SetMutationType("Mutation")
	}
}

// bindPossibleTypes back-fills interface possible types from the objects that
// declare the implementation.
func bindPossibleTypes(s *Schema) {
	for _, t := range s.Types {
		if t.Kind != TypeKindObject {
			continue
		}
		for _, ifaceName := range t.Interfaces {
			if iface, ok := s.Types[ifaceName]; ok && iface.Kind == TypeKindInterface {
				iface.AddPossibleType(t.Name)
			}
		}
	}
}

func buildDefinition(def *language.Definition) (*Type, error) {
	switch def.Kind {
	case language.Object, language.Interface:
		kind := TypeKindObject
		if def.Kind == language.Interface {
			kind = TypeKindInterface
		}
		t := NewType(def.Name, kind, def.Description)
		for _, iface := range def.Interfaces {
			t.AddInterface(iface)
		}
		for _, fd := range def.Fields {
			f, err := buildFieldDefinition(fd)
			if err != nil {
				return nil, fmt.Errorf("type %q: %w", def.Name, err)
			}
			t.AddField(f)
		}
		return t, nil
	case language.Union:
		t := NewType(def.Name, TypeKindUnion, def.Description)
		for _, name := range def.Types {
			t.AddPossibleType(name)
		}
		return t, nil
	case language.Enum:
		t := NewType(def.Name, TypeKindEnum, def.Description)
		for _, ev := range def.EnumValues {
			v := NewEnumValue(ev.Name, ev.Description)
			if reason, ok := deprecationReason(ev.Directives); ok {
				v.Deprecate(reason)
			}
			t.AddEnumValue(v)
		}
		return t, nil
	case language.InputObject:
		t := NewType(def.Name, TypeKindInputObject, def.Description)
		if def.Directives.ForName("oneOf") != nil {
			t.SetOneOf(true)
		}
		for _, fd := range def.Fields {
			iv := NewInputValue(fd.Name, fd.Description, typeRefFromAST(fd.Type))
			if fd.DefaultValue != nil {
				iv.SetDefault(valueFromAST(fd.DefaultValue))
			}
			if reason, ok := deprecationReason(fd.Directives); ok {
				iv.Deprecate(reason)
			}
			t.AddInputField(iv)
		}
		return t, nil
	case language.Scalar:
		t := NewType(def.Name, TypeKindScalar, def.Description)
		if sb := def.Directives.ForName("specifiedBy"); sb != nil {
			if arg := sb.Arguments.ForName("url"); arg != nil && arg.Value != nil {
				url := arg.Value.Raw
				t.SpecifiedByURL = &url
			}
		}
		return t, nil
	default:
		return nil, fmt.Errorf("unsupported definition kind %q for %q", def.Kind, def.Name)
	}
}

func buildFieldDefinition(fd *language.FieldDefinition) (*Field, error) {
	f := NewField(fd.Name, fd.Description, typeRefFromAST(fd.Type))
	for _, ad := range fd.Arguments {
		iv := NewInputValue(ad.Name, ad.Description, typeRefFromAST(ad.Type))
		if ad.DefaultValue != nil {
			iv.SetDefault(valueFromAST(ad.DefaultValue))
		}
		f.AddArgument(iv)
	}
	if reason, ok := deprecationReason(fd.Directives); ok {
		f.Deprecate(reason)
	}
	return f, nil
}

func buildDirectiveDefinition(dd *language.DirectiveDefinition) *Directive {
	d := NewDirective(dd.Name, dd.Description).SetRepeatable(dd.IsRepeatable)
	for _, loc := range dd.Locations {
		d.Locations = append(d.Locations, string(loc))
	}
	for _, ad := range dd.Arguments {
		iv := NewInputValue(ad.Name, ad.Description, typeRefFromAST(ad.Type))
		if ad.DefaultValue != nil {
			iv.SetDefault(valueFromAST(ad.DefaultValue))
		}
		d.AddArgument(iv)
	}
	return d
}

func deprecationReason(directives language.DirectiveList) (string, bool) {
	dep := directives.ForName("deprecated")
	if dep == nil {
		return "", false
	}
	if arg := dep.Arguments.ForName("reason"); arg != nil && arg.Value != nil {
		return arg.Value.Raw, true
	}
	return "", true
}

// typeRefFromAST converts a parsed type expression into the registry form.
func typeRefFromAST(t *language.Type) *TypeRef {
	if t == nil {
		return nil
	}
	if t.NonNull {
		return NonNullType(typeRefFromAST(&language.Type{NamedType: t.NamedType, Elem: t.Elem}))
	}
	if t.NamedType != "" {
		return NamedType(t.NamedType)
	}
	if t.Elem != nil {
		return ListType(typeRefFromAST(t.Elem))
	}
	return nil
}

// valueFromAST converts a constant AST value (default values only; variables
// never appear in SDL) to a Go value.
func valueFromAST(value *language.Value) any {
	if value == nil {
		return nil
	}
	switch value.Kind {
	case language.IntValue:
		iv, _ := strconv.Atoi(value.Raw)
		return iv
	case language.FloatValue:
		fv, _ := strconv.ParseFloat(value.Raw, 64)
		return fv
	case language.StringValue, language.BlockValue, language.EnumValue:
		return value.Raw
	case language.BooleanValue:
		return value.Raw == "true"
	case language.NullValue:
		return nil
	case language.ListValue:
		out := make([]any, len(value.Children))
		for i, c := range value.Children {
			out[i] = valueFromAST(c.Value)
		}
		return out
	case language.ObjectValue:
		m := make(map[string]any, len(value.Children))
		for _, c := range value.Children {
			m[c.Name] = valueFromAST(c.Value)
		}
		return m
	default:
		return nil
	}
}

// checkReferences verifies that every named reference resolves to a
// registered type.
func checkReferences(s *Schema) error {
	check := func(owner string, ref *TypeRef) error {
		name := GetNamedType(ref)
		if name == "" {
			return nil
		}
		if _, ok := s.Types[name]; !ok {
			return fmt.Errorf("%s references %w", owner, &UnknownTypeError{Name: name})
		}
		return nil
	}
	for _, t := range s.Types {
		for _, f := range t.Fields {
			if err := check(fmt.Sprintf("%s.%s", t.Name, f.Name), f.Type); err != nil {
				return err
			}
			for _, a := range f.Arguments {
				if err := check(fmt.Sprintf("%s.%s(%s:)", t.Name, f.Name, a.Name), a.Type); err != nil {
					return err
				}
			}
		}
		for _, v := range t.InputFields {
			if err := check(fmt.Sprintf("%s.%s", t.Name, v.Name), v.Type); err != nil {
				return err
			}
		}
	}
	return nil
}
