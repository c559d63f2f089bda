package introspection

import (
	schema "github.com/resolvent/resolvent/internal/schema"
)

// extendWithIntrospection copies the schema and grafts on the introspection
// types plus the __schema/__type fields of the query root. The original
// schema is never modified.
func extendWithIntrospection(original *schema.Schema) *schema.Schema {
	extended := &schema.Schema{
		QueryType:    original.QueryType,
		MutationType: original.MutationType,
		Types:        make(map[string]*schema.Type, len(original.Types)+8),
		Directives:   original.Directives,
		Description:  original.Description,
	}
	for name, typ := range original.Types {
		extended.Types[name] = typ
	}

	addIntrospectionTypes(extended)

	queryType := extended.GetQueryType()
	if queryType == nil {
		return extended
	}

	// Copy the query root so the introspection fields stay out of the
	// original registry.
	queryCopy := &schema.Type{
		Name:        queryType.Name,
		Kind:        queryType.Kind,
		Description: queryType.Description,
		Fields:      make([]*schema.Field, len(queryType.Fields)),
		Interfaces:  queryType.Interfaces,
	}
	copy(queryCopy.Fields, queryType.Fields)
	queryCopy.Fields = append(queryCopy.Fields,
		schema.NewField("__schema",
			"Access the current type schema of this server.",
			schema.NonNullType(schema.NamedType("__Schema"))),
		schema.NewField("__type",
			"Request the type information of a single type.",
			schema.NamedType("__Type")).
			AddArgument(schema.NewInputValue("name",
				"The name of the type to look up.",
				schema.NonNullType(schema.NamedType("String")))),
	)
	extended.Types[queryType.Name] = queryCopy

	return extended
}

func addIntrospectionTypes(sch *schema.Schema) {
	sch.Types["__Schema"] = schemaType()
	sch.Types["__Type"] = typeType()
	sch.Types["__Field"] = fieldType()
	sch.Types["__InputValue"] = inputValueType()
	sch.Types["__EnumValue"] = enumValueType()
	sch.Types["__Directive"] = directiveType()
	sch.Types["__TypeKind"] = typeKindEnum()
	sch.Types["__DirectiveLocation"] = directiveLocationEnum()
}

func schemaType() *schema.Type {
	return schema.NewType("__Schema", schema.TypeKindObject,
		"A GraphQL Schema defines the capabilities of a GraphQL server.").
		AddField(schema.NewField("description", "", schema.NamedType("String"))).
		AddField(schema.NewField("types",
			"A list of all types supported by this server.",
			schema.NonNullType(schema.ListType(schema.NonNullType(schema.NamedType("__Type")))))).
		AddField(schema.NewField("queryType",
			"The type that query operations will be rooted at.",
			schema.NonNullType(schema.NamedType("__Type")))).
		AddField(schema.NewField("mutationType",
			"If this server supports mutation, the type that mutation operations will be rooted at.",
			schema.NamedType("__Type"))).
		AddField(schema.NewField("subscriptionType", "", schema.NamedType("__Type"))).
		AddField(schema.NewField("directives",
			"A list of all directives supported by this server.",
			schema.NonNullType(schema.ListType(schema.NonNullType(schema.NamedType("__Directive"))))))
}

func typeType() *schema.Type {
	return schema.NewType("__Type", schema.TypeKindObject,
		"The fundamental unit of any GraphQL Schema is the type.").
		AddField(schema.NewField("kind", "", schema.NonNullType(schema.NamedType("__TypeKind")))).
		AddField(schema.NewField("name", "", schema.NamedType("String"))).
		AddField(schema.NewField("description", "", schema.NamedType("String"))).
		AddField(schema.NewField("fields", "",
			schema.ListType(schema.NonNullType(schema.NamedType("__Field")))).
			AddArgument(schema.NewInputValue("includeDeprecated", "", schema.NamedType("Boolean")).SetDefault(false))).
		AddField(schema.NewField("interfaces", "",
			schema.ListType(schema.NonNullType(schema.NamedType("__Type"))))).
		AddField(schema.NewField("possibleTypes", "",
			schema.ListType(schema.NonNullType(schema.NamedType("__Type"))))).
		AddField(schema.NewField("enumValues", "",
			schema.ListType(schema.NonNullType(schema.NamedType("__EnumValue")))).
			AddArgument(schema.NewInputValue("includeDeprecated", "", schema.NamedType("Boolean")).SetDefault(false))).
		AddField(schema.NewField("inputFields", "",
			schema.ListType(schema.NonNullType(schema.NamedType("__InputValue")))).
			AddArgument(schema.NewInputValue("includeDeprecated", "", schema.NamedType("Boolean")).SetDefault(false))).
		AddField(schema.NewField("ofType", "", schema.NamedType("__Type"))).
		AddField(schema.NewField("specifiedByURL", "", schema.NamedType("String"))).
		AddField(schema.NewField("isOneOf", "", schema.NamedType("Boolean")))
}

func fieldType() *schema.Type {
	return schema.NewType("__Field", schema.TypeKindObject, "").
		AddField(schema.NewField("name", "", schema.NonNullType(schema.NamedType("String")))).
		AddField(schema.NewField("description", "", schema.NamedType("String"))).
		AddField(schema.NewField("args", "",
			schema.NonNullType(schema.ListType(schema.NonNullType(schema.NamedType("__InputValue"))))).
			AddArgument(schema.NewInputValue("includeDeprecated", "", schema.NamedType("Boolean")).SetDefault(false))).
		AddField(schema.NewField("type", "", schema.NonNullType(schema.NamedType("__Type")))).
		AddField(schema.NewField("isDeprecated", "", schema.NonNullType(schema.NamedType("Boolean")))).
		AddField(schema.NewField("deprecationReason", "", schema.NamedType("String")))
}

func inputValueType() *schema.Type {
	return schema.NewType("__InputValue", schema.TypeKindObject, "").
		AddField(schema.NewField("name", "", schema.NonNullType(schema.NamedType("String")))).
		AddField(schema.NewField("description", "", schema.NamedType("String"))).
		AddField(schema.NewField("type", "", schema.NonNullType(schema.NamedType("__Type")))).
		AddField(schema.NewField("defaultValue", "", schema.NamedType("String"))).
		AddField(schema.NewField("isDeprecated", "", schema.NonNullType(schema.NamedType("Boolean")))).
		AddField(schema.NewField("deprecationReason", "", schema.NamedType("String")))
}

func enumValueType() *schema.Type {
	return schema.NewType("__EnumValue", schema.TypeKindObject, "").
		AddField(schema.NewField("name", "", schema.NonNullType(schema.NamedType("String")))).
		AddField(schema.NewField("description", "", schema.NamedType("String"))).
		AddField(schema.NewField("isDeprecated", "", schema.NonNullType(schema.NamedType("Boolean")))).
		AddField(schema.NewField("deprecationReason", "", schema.NamedType("String")))
}

func directiveType() *schema.Type {
	return schema.NewType("__Directive", schema.TypeKindObject, "").
		AddField(schema.NewField("name", "", schema.NonNullType(schema.NamedType("String")))).
		AddField(schema.NewField("description", "", schema.NamedType("String"))).
		AddField(schema.NewField("isRepeatable", "", schema.NonNullType(schema.NamedType("Boolean")))).
		AddField(schema.NewField("locations", "",
			schema.NonNullType(schema.ListType(schema.NonNullType(schema.NamedType("__DirectiveLocation")))))).
		AddField(schema.NewField("args", "",
			schema.NonNullType(schema.ListType(schema.NonNullType(schema.NamedType("__InputValue"))))).
			AddArgument(schema.NewInputValue("includeDeprecated", "", schema.NamedType("Boolean")).SetDefault(false)))
}

func typeKindEnum() *schema.Type {
	t := schema.NewType("__TypeKind", schema.TypeKindEnum, "")
	for _, name := range []string{"SCALAR", "OBJECT", "INTERFACE", "UNION", "ENUM", "INPUT_OBJECT", "LIST", "NON_NULL"} {
		t.AddEnumValue(schema.NewEnumValue(name, ""))
	}
	return t
}

func directiveLocationEnum() *schema.Type {
	t := schema.NewType("__DirectiveLocation", schema.TypeKindEnum, "")
	for _, name := range []string{
		"QUERY", "MUTATION", "SUBSCRIPTION", "FIELD",
		"FRAGMENT_DEFINITION", "FRAGMENT_SPREAD", "INLINE_FRAGMENT", "VARIABLE_DEFINITION",
		"SCHEMA", "SCALAR", "OBJECT", "FIELD_DEFINITION", "ARGUMENT_DEFINITION",
		"INTERFACE", "UNION", "ENUM", "ENUM_VALUE", "INPUT_OBJECT", "INPUT_FIELD_DEFINITION",
	} {
		t.AddEnumValue(schema.NewEnumValue(name, ""))
	}
	return t
}
