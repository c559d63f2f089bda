// Package schema holds the type registry: the declared object types, scalar
// kinds, and the list/nullability structure of every field, as registered at
// startup from SDL or built programmatically.
package schema

import "fmt"

// Schema is the registry of all named types and directives plus the root
// operation bindings. It is populated once at startup and treated as
// immutable afterwards.
type Schema struct {
	QueryType    string
	MutationType string
	Types        map[string]*Type // all named types keyed by name
	Directives   map[string]*Directive
	Description  string
}

// NewSchema creates a registry preloaded with the builtin scalars and the
// @skip/@include directives.
func NewSchema(description string) *Schema {
	s := &Schema{
		Types:       make(map[string]*Type),
		Directives:  make(map[string]*Directive),
		Description: description,
	}
	s.AddType(stringType).
		AddType(intType).
		AddType(floatType).
		AddType(booleanType).
		AddType(idType)
	s.AddDirective(includeDirective).
		AddDirective(skipDirective)
	return s
}

func (s *Schema) SetQueryType(name string) *Schema    { s.QueryType = name; return s }
func (s *Schema) SetMutationType(name string) *Schema { s.MutationType = name; return s }

// AddType registers a named type. Registration happens once at startup, so
// structural mistakes are programming errors: AddType panics on duplicate
// names and on malformed type references (a non-null wrapping a non-null, a
// named ref carrying an inner type, and so on).
func (s *Schema) AddType(t *Type) *Schema {
	if t == nil || t.Name == "" {
		panic("schema: AddType requires a named type")
	}
	if _, exists := s.Types[t.Name]; exists {
		panic(fmt.Sprintf("schema: type %q registered twice", t.Name))
	}
	if err := validateType(t); err != nil {
		panic(fmt.Sprintf("schema: invalid type %q: %v", t.Name, err))
	}
	s.Types[t.Name] = t
	return s
}

func (s *Schema) AddDirective(d *Directive) *Schema {
	if d == nil || d.Name == "" {
		panic("schema: AddDirective requires a named directive")
	}
	s.Directives[d.Name] = d
	return s
}

// Get returns the registered type or an UnknownTypeError.
func (s *Schema) Get(name string) (*Type, error) {
	if t, ok := s.Types[name]; ok {
		return t, nil
	}
	return nil, &UnknownTypeError{Name: name}
}

// GetQueryType returns the root query type (nil if absent).
func (s *Schema) GetQueryType() *Type { return s.Types[s.QueryType] }

// GetMutationType returns the root mutation type (nil if absent).
func (s *Schema) GetMutationType() *Type { return s.Types[s.MutationType] }

// UnknownTypeError reports a lookup of a type name that was never registered.
type UnknownTypeError struct{ Name string }

func (e *UnknownTypeError) Error() string     { return fmt.Sprintf("unknown type %q", e.Name) }
func (e *UnknownTypeError) ErrorCode() string { return "UNKNOWN_TYPE" }

// Type is a named type: object, interface, union, scalar, enum or input.
type Type struct {
	Name           string
	Kind           TypeKind
	Description    string
	Fields         []*Field      // OBJECT and INTERFACE, declaration order
	Interfaces     []string      // OBJECT and INTERFACE
	PossibleTypes  []string      // INTERFACE and UNION
	EnumValues     []*EnumValue  // ENUM
	InputFields    []*InputValue // INPUT_OBJECT, declaration order
	SpecifiedByURL *string
	OneOf          bool
}

func NewType(name string, kind TypeKind, description string) *Type {
	return &Type{Name: name, Kind: kind, Description: description}
}

func (t *Type) AddField(f *Field) *Type        { t.Fields = append(t.Fields, f); return t }
func (t *Type) AddInterface(name string) *Type { t.Interfaces = append(t.Interfaces, name); return t }
func (t *Type) AddPossibleType(name string) *Type {
	t.PossibleTypes = append(t.PossibleTypes, name)
	return t
}
func (t *Type) AddEnumValue(v *EnumValue) *Type   { t.EnumValues = append(t.EnumValues, v); return t }
func (t *Type) AddInputField(v *InputValue) *Type { t.InputFields = append(t.InputFields, v); return t }
func (t *Type) SetOneOf(oneOf bool) *Type         { t.OneOf = oneOf; return t }

// Field returns the declared field with the given name, or nil.
func (t *Type) Field(name string) *Field {
	for _, f := range t.Fields {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// InputField returns the declared input field with the given name, or nil.
func (t *Type) InputField(name string) *InputValue {
	for _, v := range t.InputFields {
		if v.Name == name {
			return v
		}
	}
	return nil
}

// GetOrderedFields returns the fields in declaration order.
func (t *Type) GetOrderedFields() []*Field { return t.Fields }

// GetOrderedInputFields returns the input fields in declaration order.
func (t *Type) GetOrderedInputFields() []*InputValue { return t.InputFields }

// IsLeaf reports whether values of this type have no subselections.
func (t *Type) IsLeaf() bool {
	return t.Kind == TypeKindScalar || t.Kind == TypeKindEnum
}

// Field is a field declared on an object or interface type.
type Field struct {
	Name              string
	Description       string
	Type              *TypeRef
	Arguments         []*InputValue
	Async             bool // resolved through the batched resolver path
	IsDeprecated      bool
	DeprecationReason string
}

func NewField(name, description string, t *TypeRef) *Field {
	return &Field{Name: name, Description: description, Type: t}
}

func (f *Field) SetAsync(async bool) *Field       { f.Async = async; return f }
func (f *Field) AddArgument(v *InputValue) *Field { f.Arguments = append(f.Arguments, v); return f }
func (f *Field) Deprecate(reason string) *Field {
	f.IsDeprecated = true
	f.DeprecationReason = reason
	return f
}

// GetOrderedArguments returns the arguments in declaration order.
func (f *Field) GetOrderedArguments() []*InputValue { return f.Arguments }

// NewFieldMap is a convenience for building a field list inline.
func NewFieldMap(fields ...*Field) []*Field { return fields }

// TypeKind represents the kind of a named type.
type TypeKind string

const (
	TypeKindScalar      TypeKind = "SCALAR"
	TypeKindObject      TypeKind = "OBJECT"
	TypeKindInterface   TypeKind = "INTERFACE"
	TypeKindUnion       TypeKind = "UNION"
	TypeKindEnum        TypeKind = "ENUM"
	TypeKindInputObject TypeKind = "INPUT_OBJECT"
)

// TypeRef references a type, possibly wrapped by list and non-null markers.
type TypeRef struct {
	Kind   TypeRefKind
	OfType *TypeRef // for LIST and NON_NULL
	Named  string   // for NAMED
}

type TypeRefKind string

const (
	TypeRefKindNamed   TypeRefKind = "NAMED"
	TypeRefKindList    TypeRefKind = "LIST"
	TypeRefKindNonNull TypeRefKind = "NON_NULL"
)

func (t *TypeRef) IsNonNull() bool {
	return t != nil && t.Kind == TypeRefKindNonNull
}

func (t *TypeRef) IsList() bool {
	if t == nil {
		return false
	}
	if t.Kind == TypeRefKindList {
		return true
	}
	return t.Kind == TypeRefKindNonNull && t.OfType != nil && t.OfType.Kind == TypeRefKindList
}

func (t *TypeRef) Unwrap() *TypeRef {
	if t.Kind == TypeRefKindNonNull || t.Kind == TypeRefKindList {
		return t.OfType
	}
	return t
}

func (t *TypeRef) GetNamedType() string {
	for cur := t; cur != nil; cur = cur.OfType {
		if cur.Named != "" {
			return cur.Named
		}
	}
	return ""
}

type EnumValue struct {
	Name              string
	Description       string
	IsDeprecated      bool
	DeprecationReason string
}

func NewEnumValue(name, description string) *EnumValue {
	return &EnumValue{Name: name, Description: description}
}

func (v *EnumValue) Deprecate(reason string) *EnumValue {
	v.IsDeprecated = true
	v.DeprecationReason = reason
	return v
}

type InputValue struct {
	Name              string
	Description       string
	Type              *TypeRef
	DefaultValue      any
	IsDeprecated      bool
	DeprecationReason string
}

func NewInputValue(name, description string, t *TypeRef) *InputValue {
	return &InputValue{Name: name, Description: description, Type: t}
}

func (v *InputValue) SetDefault(d any) *InputValue { v.DefaultValue = d; return v }
func (v *InputValue) Deprecate(reason string) *InputValue {
	v.IsDeprecated = true
	v.DeprecationReason = reason
	return v
}

type Directive struct {
	Name         string
	Description  string
	Locations    []string
	Arguments    []*InputValue
	IsRepeatable bool
}

func NewDirective(name, description string) *Directive {
	return &Directive{Name: name, Description: description}
}

func (d *Directive) SetRepeatable(r bool) *Directive      { d.IsRepeatable = r; return d }
func (d *Directive) AddArgument(v *InputValue) *Directive { d.Arguments = append(d.Arguments, v); return d }

func NonNullType(t *TypeRef) *TypeRef { return &TypeRef{Kind: TypeRefKindNonNull, OfType: t} }
func ListType(t *TypeRef) *TypeRef    { return &TypeRef{Kind: TypeRefKindList, OfType: t} }
func NamedType(name string) *TypeRef  { return &TypeRef{Kind: TypeRefKindNamed, Named: name} }

// IsNonNull reports whether the type is wrapped with Non-Null.
func IsNonNull(t *TypeRef) bool { return t != nil && t.IsNonNull() }

// IsList reports whether the type is (or is wrapped by) a list type.
func IsList(t *TypeRef) bool { return t != nil && t.IsList() }

// Unwrap removes one layer of Non-Null or List wrapping.
func Unwrap(t *TypeRef) *TypeRef { return t.Unwrap() }

// GetNamedType returns the innermost named type of the reference.
func GetNamedType(t *TypeRef) string { return t.GetNamedType() }

// Cardinality is the flattened list/nullability shape of a type reference.
// The four list combinations ([T], [T!], [T]!, [T!]!) map to distinct values
// and reconstruct losslessly via TypeRef.
type Cardinality struct {
	IsList       bool
	ListNullable bool // only meaningful when IsList
	ItemNullable bool // value nullability; item nullability when IsList
}

// CardinalityOf derives the descriptor from a type reference.
func CardinalityOf(t *TypeRef) Cardinality {
	outerNullable := !IsNonNull(t)
	if IsNonNull(t) {
		t = t.Unwrap()
	}
	if t == nil || t.Kind != TypeRefKindList {
		return Cardinality{ItemNullable: outerNullable}
	}
	return Cardinality{
		IsList:       true,
		ListNullable: outerNullable,
		ItemNullable: !IsNonNull(t.Unwrap()),
	}
}

// TypeRef reconstructs the wrapped reference around the given named type.
func (c Cardinality) TypeRef(named string) *TypeRef {
	ref := NamedType(named)
	if !c.ItemNullable {
		ref = NonNullType(ref)
	}
	if c.IsList {
		ref = ListType(ref)
		if !c.ListNullable {
			ref = NonNullType(ref)
		}
	}
	return ref
}

// validateType checks structural consistency of every type reference a type
// carries, so executors never see malformed wrapping.
func validateType(t *Type) error {
	seen := make(map[string]bool, len(t.Fields))
	for _, f := range t.Fields {
		if f.Name == "" {
			return fmt.Errorf("field with empty name")
		}
		if seen[f.Name] {
			return fmt.Errorf("field %q declared twice", f.Name)
		}
		seen[f.Name] = true
		if err := validateTypeRef(f.Type); err != nil {
			return fmt.Errorf("field %q: %w", f.Name, err)
		}
		for _, a := range f.Arguments {
			if err := validateTypeRef(a.Type); err != nil {
				return fmt.Errorf("field %q argument %q: %w", f.Name, a.Name, err)
			}
		}
	}
	for _, v := range t.InputFields {
		if err := validateTypeRef(v.Type); err != nil {
			return fmt.Errorf("input field %q: %w", v.Name, err)
		}
	}
	return nil
}

func validateTypeRef(t *TypeRef) error {
	if t == nil {
		return fmt.Errorf("missing type reference")
	}
	switch t.Kind {
	case TypeRefKindNamed:
		if t.Named == "" {
			return fmt.Errorf("named reference without a name")
		}
		if t.OfType != nil {
			return fmt.Errorf("named reference carries an inner type")
		}
		return nil
	case TypeRefKindList:
		if t.OfType == nil {
			return fmt.Errorf("list reference without an item type")
		}
		return validateTypeRef(t.OfType)
	case TypeRefKindNonNull:
		if t.OfType == nil {
			return fmt.Errorf("non-null reference without an inner type")
		}
		if t.OfType.Kind == TypeRefKindNonNull {
			return fmt.Errorf("non-null wrapping a non-null")
		}
		return validateTypeRef(t.OfType)
	default:
		return fmt.Errorf("unknown type reference kind %q", t.Kind)
	}
}
