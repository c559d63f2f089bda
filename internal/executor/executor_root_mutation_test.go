package executor

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	schema "github.com/resolvent/resolvent/internal/schema"
)

func mutationTestSchema(async bool) *schema.Schema {
	sch := schema.NewSchema("")
	sch.SetQueryType("Query")
	sch.SetMutationType("Mutation")
	sch.AddType(newObjectType("Query", schema.NewField("ok", "", schema.NamedType("Boolean"))))
	sch.AddType(newObjectType("Mutation",
		schema.NewField("m1", "", schema.NamedType("String")).SetAsync(async),
		schema.NewField("m2", "", schema.NamedType("String")).SetAsync(async),
		schema.NewField("m3", "", schema.NamedType("String")).SetAsync(async),
	))
	return sch
}

// Root mutation fields run serially in request order.
func TestMutation_SerialEvaluationOrder(t *testing.T) {
	rt := NewMockRuntime(map[string]MockResolver{
		"Mutation.m1": NewMockValueResolver("1"),
		"Mutation.m2": NewMockErrorResolver(errBoom),
		"Mutation.m3": NewMockValueResolver("3"),
	})
	exec := NewExecutor(rt, mutationTestSchema(false))

	res := exec.ExecuteRequest(context.Background(), mustParseQuery(t, "mutation { m1 m2 m3 }"), "", nil, nil)

	if got, want := dataJSON(t, res), `{"m1":"1","m2":null,"m3":"3"}`; got != want {
		t.Fatalf("data = %s, want %s", got, want)
	}
	want := []GraphQLError{newError("boom", Path{"m2"}, CodeResolverError, SeverityLocalized)}
	if diff := cmp.Diff(want, res.Errors); diff != "" {
		t.Fatalf("errors mismatch (-want +got):\n%s", diff)
	}
	wantCalls := []Call{
		{Kind: "sync", ObjectType: "Mutation", Field: "m1", Args: map[string]any{}},
		{Kind: "sync", ObjectType: "Mutation", Field: "m2", Args: map[string]any{}},
		{Kind: "sync", ObjectType: "Mutation", Field: "m3", Args: map[string]any{}},
	}
	if diff := cmp.Diff(wantCalls, rt.GetCalls()); diff != "" {
		t.Fatalf("calls mismatch (-want +got):\n%s", diff)
	}
}

// Async root mutation fields get one single-task batch each, never one
// shared batch: each root field completes before the next starts.
func TestMutation_AsyncRootFields_OneBatchEach(t *testing.T) {
	rt := NewMockRuntime(map[string]MockResolver{
		"Mutation.m1": NewMockValueResolver("1"),
		"Mutation.m2": NewMockValueResolver("2"),
		"Mutation.m3": NewMockValueResolver("3"),
	})
	exec := NewExecutor(rt, mutationTestSchema(true))

	res := exec.ExecuteRequest(context.Background(), mustParseQuery(t, "mutation { m1 m2 m3 }"), "", nil, nil)

	if got, want := dataJSON(t, res), `{"m1":"1","m2":"2","m3":"3"}`; got != want {
		t.Fatalf("data = %s, want %s", got, want)
	}
	wantCalls := []Call{
		{Kind: "async", ObjectType: "Mutation", Field: "m1", Args: map[string]any{}, BatchID: 1},
		{Kind: "async", ObjectType: "Mutation", Field: "m2", Args: map[string]any{}, BatchID: 2},
		{Kind: "async", ObjectType: "Mutation", Field: "m3", Args: map[string]any{}, BatchID: 3},
	}
	if diff := cmp.Diff(wantCalls, rt.GetCalls()); diff != "" {
		t.Fatalf("calls mismatch (-want +got):\n%s", diff)
	}
}

// A non-null root mutation failure voids the response and stops later root
// fields from executing.
func TestMutation_NonNullRootFailure_Aborts(t *testing.T) {
	sch := schema.NewSchema("")
	sch.SetQueryType("Query")
	sch.SetMutationType("Mutation")
	sch.AddType(newObjectType("Query", schema.NewField("ok", "", schema.NamedType("Boolean"))))
	sch.AddType(newObjectType("Mutation",
		schema.NewField("m1", "", schema.NamedType("String")),
		schema.NewField("m2", "", schema.NonNullType(schema.NamedType("String"))),
		schema.NewField("m3", "", schema.NamedType("String")),
	))
	rt := NewMockRuntime(map[string]MockResolver{
		"Mutation.m1": NewMockValueResolver("1"),
		"Mutation.m2": NewMockErrorResolver(errBoom),
		"Mutation.m3": NewMockValueResolver("3"),
	})
	exec := NewExecutor(rt, sch)

	res := exec.ExecuteRequest(context.Background(), mustParseQuery(t, "mutation { m1 m2 m3 }"), "", nil, nil)

	if res.Data != nil {
		t.Fatalf("data = %v, want nil", res.Data)
	}
	want := []GraphQLError{newError("boom", Path{"m2"}, CodeResolverError, SeverityFatal)}
	if diff := cmp.Diff(want, res.Errors); diff != "" {
		t.Fatalf("errors mismatch (-want +got):\n%s", diff)
	}
	for _, c := range rt.GetCalls() {
		if c.Field == "m3" {
			t.Fatalf("m3 executed after fatal m2 failure")
		}
	}
}
