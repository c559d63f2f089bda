package schema

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Render produces SDL from the registry. Output is deterministic: type and
// directive names are sorted lexicographically, fields stay in declaration
// order. Builtin scalars and @skip/@include are omitted.
func Render(s *Schema) string {
	if s == nil {
		return ""
	}
	var b strings.Builder

	renderSchemaBlock(&b, s)

	typeNames := make([]string, 0, len(s.Types))
	for name := range s.Types {
		if IsBuiltinScalar(name) {
			continue
		}
		typeNames = append(typeNames, name)
	}
	sort.Strings(typeNames)

	for _, name := range typeNames {
		t := s.Types[name]
		switch t.Kind {
		case TypeKindScalar:
			renderScalar(&b, t)
		case TypeKindEnum:
			renderEnum(&b, t)
		case TypeKindInputObject:
			renderInputObject(&b, t)
		case TypeKindObject:
			renderComposite(&b, "type", t)
		case TypeKindInterface:
			renderComposite(&b, "interface", t)
		case TypeKindUnion:
			renderUnion(&b, t)
		}
	}

	directiveNames := make([]string, 0, len(s.Directives))
	for name, d := range s.Directives {
		if d == includeDirective || d == skipDirective {
			continue
		}
		directiveNames = append(directiveNames, name)
	}
	sort.Strings(directiveNames)
	for _, name := range directiveNames {
		renderDirective(&b, s.Directives[name])
	}

	return strings.TrimRight(b.String(), "\n") + "\n"
}

// renderSchemaBlock emits an explicit schema { ... } block only when the root
// bindings deviate from the Query/Mutation convention.
func renderSchemaBlock(b *strings.Builder, s *Schema) {
	conventional := (s.QueryType == "" || s.QueryType == "Query") &&
		(s.MutationType == "" || s.MutationType == "Mutation")
	if conventional && s.Description == "" {
		return
	}
	renderDescription(b, s.Description)
	b.WriteString("schema {\n")
	if s.QueryType != "" {
		fmt.Fprintf(b, "  query: %s\n", s.QueryType)
	}
	if s.MutationType != "" {
		fmt.Fprintf(b, "  mutation: %s\n", s.MutationType)
	}
	b.WriteString("}\n\n")
}

func renderDescription(b *strings.Builder, desc string) {
	if desc == "" {
		return
	}
	b.WriteString("\"\"\"\n")
	b.WriteString(strings.ReplaceAll(desc, "\"", "\\\""))
	b.WriteString("\n\"\"\"\n")
}

func renderScalar(b *strings.Builder, t *Type) {
	renderDescription(b, t.Description)
	b.WriteString("scalar ")
	b.WriteString(t.Name)
	if t.SpecifiedByURL != nil {
		fmt.Fprintf(b, " @specifiedBy(url: %s)", strconv.Quote(*t.SpecifiedByURL))
	}
	b.WriteString("\n\n")
}

func renderEnum(b *strings.Builder, t *Type) {
	renderDescription(b, t.Description)
	fmt.Fprintf(b, "enum %s {\n", t.Name)
	for _, v := range t.EnumValues {
		renderDescription(b, v.Description)
		b.WriteString("  ")
		b.WriteString(v.Name)
		renderDeprecation(b, v.IsDeprecated, v.DeprecationReason)
		b.WriteString("\n")
	}
	b.WriteString("}\n\n")
}

func renderInputObject(b *strings.Builder, t *Type) {
	renderDescription(b, t.Description)
	b.WriteString("input ")
	b.WriteString(t.Name)
	if t.OneOf {
		b.WriteString(" @oneOf")
	}
	b.WriteString(" {\n")
	for _, v := range t.InputFields {
		renderDescription(b, v.Description)
		fmt.Fprintf(b, "  %s: %s", v.Name, renderTypeRef(v.Type))
		if v.DefaultValue != nil {
			b.WriteString(" = ")
			b.WriteString(renderValue(v.DefaultValue))
		}
		renderDeprecation(b, v.IsDeprecated, v.DeprecationReason)
		b.WriteString("\n")
	}
	b.WriteString("}\n\n")
}

func renderComposite(b *strings.Builder, keyword string, t *Type) {
	renderDescription(b, t.Description)
	b.WriteString(keyword)
	b.WriteString(" ")
	b.WriteString(t.Name)
	if len(t.Interfaces) > 0 {
		b.WriteString(" implements ")
		b.WriteString(strings.Join(t.Interfaces, " & "))
	}
	b.WriteString(" {\n")
	for _, f := range t.Fields {
		renderField(b, f)
	}
	b.WriteString("}\n\n")
}

func renderUnion(b *strings.Builder, t *Type) {
	renderDescription(b, t.Description)
	fmt.Fprintf(b, "union %s = %s\n\n", t.Name, strings.Join(t.PossibleTypes, " | "))
}

func renderField(b *strings.Builder, f *Field) {
	renderDescription(b, f.Description)
	b.WriteString("  ")
	b.WriteString(f.Name)
	renderArguments(b, f.Arguments)
	b.WriteString(": ")
	b.WriteString(renderTypeRef(f.Type))
	renderDeprecation(b, f.IsDeprecated, f.DeprecationReason)
	b.WriteString("\n")
}

func renderDirective(b *strings.Builder, d *Directive) {
	renderDescription(b, d.Description)
	b.WriteString("directive @")
	b.WriteString(d.Name)
	renderArguments(b, d.Arguments)
	if d.IsRepeatable {
		b.WriteString(" repeatable")
	}
	b.WriteString(" on ")
	b.WriteString(strings.Join(d.Locations, " | "))
	b.WriteString("\n\n")
}

func renderArguments(b *strings.Builder, args []*InputValue) {
	if len(args) == 0 {
		return
	}
	b.WriteString("(")
	for i, arg := range args {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(b, "%s: %s", arg.Name, renderTypeRef(arg.Type))
		if arg.DefaultValue != nil {
			b.WriteString(" = ")
			b.WriteString(renderValue(arg.DefaultValue))
		}
	}
	b.WriteString(")")
}

func renderDeprecation(b *strings.Builder, deprecated bool, reason string) {
	if !deprecated {
		return
	}
	b.WriteString(" @deprecated")
	if reason != "" {
		fmt.Fprintf(b, "(reason: %s)", strconv.Quote(reason))
	}
}

func renderTypeRef(t *TypeRef) string {
	if t == nil {
		return ""
	}
	switch t.Kind {
	case TypeRefKindNamed:
		return t.Named
	case TypeRefKindList:
		return "[" + renderTypeRef(t.OfType) + "]"
	case TypeRefKindNonNull:
		return renderTypeRef(t.OfType) + "!"
	default:
		return ""
	}
}

// renderValue renders a constant value for default positions.
func renderValue(value any) string {
	if value == nil {
		return "null"
	}
	switch v := value.(type) {
	case string:
		return strconv.Quote(v)
	case int:
		return strconv.Itoa(v)
	case int32:
		return strconv.FormatInt(int64(v), 10)
	case int64:
		return strconv.FormatInt(v, 10)
	case float32:
		return strconv.FormatFloat(float64(v), 'g', -1, 32)
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	case []any:
		parts := make([]string, len(v))
		for i, item := range v {
			parts[i] = renderValue(item)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = k + ": " + renderValue(v[k])
		}
		return "{" + strings.Join(parts, ", ") + "}"
	default:
		// Enum values arrive as bare identifiers.
		return fmt.Sprint(v)
	}
}
