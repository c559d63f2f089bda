package executor

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	schema "github.com/resolvent/resolvent/internal/schema"
)

func TestContext_OperationSelection(t *testing.T) {
	newSchema := func() *schema.Schema {
		return newSchemaWithQueryType(newObjectType("Query",
			schema.NewField("a", "", schema.NamedType("String")),
			schema.NewField("b", "", schema.NamedType("String")),
		))
	}

	t.Run("inline operation", func(t *testing.T) {
		rt := NewMockRuntime(map[string]MockResolver{"Query.a": NewMockValueResolver("A")})
		exec := NewExecutor(rt, newSchema())
		res := exec.ExecuteRequest(context.Background(), mustParseQuery(t, "{ a }"), "", nil, nil)

		if got, want := dataJSON(t, res), `{"a":"A"}`; got != want {
			t.Fatalf("data = %s, want %s", got, want)
		}
		if len(res.Errors) != 0 {
			t.Fatalf("unexpected errors: %v", res.Errors)
		}
	})

	t.Run("single named operation without name", func(t *testing.T) {
		rt := NewMockRuntime(map[string]MockResolver{"Query.a": NewMockValueResolver("A")})
		exec := NewExecutor(rt, newSchema())
		res := exec.ExecuteRequest(context.Background(), mustParseQuery(t, "query Foo { a }"), "", nil, nil)

		if got, want := dataJSON(t, res), `{"a":"A"}`; got != want {
			t.Fatalf("data = %s, want %s", got, want)
		}
	})

	t.Run("named operation provided", func(t *testing.T) {
		rt := NewMockRuntime(map[string]MockResolver{
			"Query.a": NewMockValueResolver("A"),
			"Query.b": NewMockValueResolver("B"),
		})
		exec := NewExecutor(rt, newSchema())
		res := exec.ExecuteRequest(context.Background(), mustParseQuery(t, "query Foo { a } query Bar { b }"), "Bar", nil, nil)

		if got, want := dataJSON(t, res), `{"b":"B"}`; got != want {
			t.Fatalf("data = %s, want %s", got, want)
		}
	})

	t.Run("no operation provided", func(t *testing.T) {
		exec := NewExecutor(NewMockRuntime(nil), newSchema())
		res := exec.ExecuteRequest(context.Background(), mustParseQuery(t, "fragment F on Query { a }"), "", nil, nil)

		want := []GraphQLError{{Message: "operation not found"}}
		if diff := cmp.Diff(want, res.Errors); diff != "" {
			t.Fatalf("errors mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("no name with multiple operations", func(t *testing.T) {
		exec := NewExecutor(NewMockRuntime(nil), newSchema())
		res := exec.ExecuteRequest(context.Background(), mustParseQuery(t, "query Foo { a } query Bar { b }"), "", nil, nil)

		want := []GraphQLError{{Message: "operation not found"}}
		if diff := cmp.Diff(want, res.Errors); diff != "" {
			t.Fatalf("errors mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("unknown operation name", func(t *testing.T) {
		exec := NewExecutor(NewMockRuntime(nil), newSchema())
		res := exec.ExecuteRequest(context.Background(), mustParseQuery(t, "query Foo { a } query Bar { b }"), "Baz", nil, nil)

		want := []GraphQLError{{Message: "operation not found"}}
		if diff := cmp.Diff(want, res.Errors); diff != "" {
			t.Fatalf("errors mismatch (-want +got):\n%s", diff)
		}
	})
}

func TestContext_VariableCoercion(t *testing.T) {
	newSchema := func() *schema.Schema {
		return newSchemaWithQueryType(newObjectType("Query",
			schema.NewField("echo", "", schema.NamedType("Int")).
				AddArgument(schema.NewInputValue("v", "", schema.NamedType("Int"))),
		))
	}
	echo := func(ctx context.Context, src any, args map[string]any) (any, error) { return args["v"], nil }

	t.Run("provided variable", func(t *testing.T) {
		rt := NewMockRuntime(map[string]MockResolver{"Query.echo": echo})
		exec := NewExecutor(rt, newSchema())
		res := exec.ExecuteRequest(context.Background(), mustParseQuery(t, "query($v: Int!){ echo(v:$v) }"), "", map[string]any{"v": 3}, nil)

		if got, want := dataJSON(t, res), `{"echo":3}`; got != want {
			t.Fatalf("data = %s, want %s", got, want)
		}
	})

	t.Run("use default", func(t *testing.T) {
		rt := NewMockRuntime(map[string]MockResolver{"Query.echo": echo})
		exec := NewExecutor(rt, newSchema())
		res := exec.ExecuteRequest(context.Background(), mustParseQuery(t, "query($v: Int = 5){ echo(v:$v) }"), "", nil, nil)

		if got, want := dataJSON(t, res), `{"echo":5}`; got != want {
			t.Fatalf("data = %s, want %s", got, want)
		}
	})

	t.Run("missing required variable", func(t *testing.T) {
		exec := NewExecutor(NewMockRuntime(nil), newSchema())
		res := exec.ExecuteRequest(context.Background(), mustParseQuery(t, "query($v: Int!){ echo(v:$v) }"), "", nil, nil)

		want := []GraphQLError{{Message: "variable $v of required type Int! was not provided"}}
		if diff := cmp.Diff(want, res.Errors); diff != "" {
			t.Fatalf("errors mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("null for non-null variable", func(t *testing.T) {
		exec := NewExecutor(NewMockRuntime(nil), newSchema())
		res := exec.ExecuteRequest(context.Background(), mustParseQuery(t, "query($v: Int!){ echo(v:$v) }"), "", map[string]any{"v": nil}, nil)

		want := []GraphQLError{{Message: "variable $v of type Int! cannot be null"}}
		if diff := cmp.Diff(want, res.Errors); diff != "" {
			t.Fatalf("errors mismatch (-want +got):\n%s", diff)
		}
	})
}
