package executor

import (
	"context"
	"testing"

	schema "github.com/resolvent/resolvent/internal/schema"
)

func orderingTestSchema() *schema.Schema {
	return newSchemaWithQueryType(
		newObjectType("Query",
			schema.NewField("game", "", schema.NamedType("Game")),
		),
		newObjectType("Game",
			schema.NewField("id", "", schema.NamedType("ID")),
			schema.NewField("title", "", schema.NamedType("String")),
			schema.NewField("year", "", schema.NamedType("Int")),
		).AddInterface("Node"),
	)
}

func orderingTestRuntime() *MockRuntime {
	return NewMockRuntime(map[string]MockResolver{
		"Query.game": NewMockValueResolver(map[string]any{}),
		"Game.id":    NewMockValueResolver("g1"),
		"Game.title": NewMockValueResolver("Zelda"),
		"Game.year":  NewMockValueResolver(1986),
	})
}

// Response keys come out in request order, aliases included.
func TestOrdering_ResponseKeysFollowRequestOrder(t *testing.T) {
	exec := NewExecutor(orderingTestRuntime(), orderingTestSchema())

	query := `{ game { year t: title id } }`
	res := exec.ExecuteRequest(context.Background(), mustParseQuery(t, query), "", nil, nil)

	if got, want := dataJSON(t, res), `{"game":{"year":1986,"t":"Zelda","id":"g1"}}`; got != want {
		t.Fatalf("data = %s, want %s", got, want)
	}
}

// Aliases let the same field appear twice under distinct response names, and
// each alias resolves independently.
func TestOrdering_AliasedDuplicates(t *testing.T) {
	rt := orderingTestRuntime()
	exec := NewExecutor(rt, orderingTestSchema())

	query := `{ game { a: title b: title } }`
	res := exec.ExecuteRequest(context.Background(), mustParseQuery(t, query), "", nil, nil)

	if got, want := dataJSON(t, res), `{"game":{"a":"Zelda","b":"Zelda"}}`; got != want {
		t.Fatalf("data = %s, want %s", got, want)
	}
	titleCalls := 0
	for _, c := range rt.GetCalls() {
		if c.ObjectType == "Game" && c.Field == "title" {
			titleCalls++
		}
	}
	if titleCalls != 2 {
		t.Fatalf("title resolved %d times, want 2", titleCalls)
	}
}

// Duplicate selections under the same response name merge into one group,
// keeping the first occurrence's position and resolving once.
func TestOrdering_DuplicateFieldsMergeOnce(t *testing.T) {
	rt := orderingTestRuntime()
	exec := NewExecutor(rt, orderingTestSchema())

	query := `{ game { title id title } }`
	res := exec.ExecuteRequest(context.Background(), mustParseQuery(t, query), "", nil, nil)

	if got, want := dataJSON(t, res), `{"game":{"title":"Zelda","id":"g1"}}`; got != want {
		t.Fatalf("data = %s, want %s", got, want)
	}
	titleCalls := 0
	for _, c := range rt.GetCalls() {
		if c.ObjectType == "Game" && c.Field == "title" {
			titleCalls++
		}
	}
	if titleCalls != 1 {
		t.Fatalf("title resolved %d times, want 1", titleCalls)
	}
}

// @skip and @include read their condition from variables.
func TestOrdering_SkipIncludeDirectives(t *testing.T) {
	exec := NewExecutor(orderingTestRuntime(), orderingTestSchema())

	query := `query Q($flag: Boolean!) {
		game {
			title @skip(if: $flag)
			id @include(if: $flag)
			year @skip(if: false)
		}
	}`

	res := exec.ExecuteRequest(context.Background(), mustParseQuery(t, query), "Q",
		map[string]any{"flag": true}, nil)
	if got, want := dataJSON(t, res), `{"game":{"id":"g1","year":1986}}`; got != want {
		t.Fatalf("flag=true data = %s, want %s", got, want)
	}

	res = exec.ExecuteRequest(context.Background(), mustParseQuery(t, query), "Q",
		map[string]any{"flag": false}, nil)
	if got, want := dataJSON(t, res), `{"game":{"title":"Zelda","year":1986}}`; got != want {
		t.Fatalf("flag=false data = %s, want %s", got, want)
	}
}

// Named fragments expand in place; spreading the same fragment twice expands
// it once.
func TestOrdering_FragmentSpreadExpandsOnce(t *testing.T) {
	rt := orderingTestRuntime()
	exec := NewExecutor(rt, orderingTestSchema())

	query := `
	{ game { ...Core year ...Core } }
	fragment Core on Game { id title }`
	res := exec.ExecuteRequest(context.Background(), mustParseQuery(t, query), "", nil, nil)

	if got, want := dataJSON(t, res), `{"game":{"id":"g1","title":"Zelda","year":1986}}`; got != want {
		t.Fatalf("data = %s, want %s", got, want)
	}
	idCalls := 0
	for _, c := range rt.GetCalls() {
		if c.ObjectType == "Game" && c.Field == "id" {
			idCalls++
		}
	}
	if idCalls != 1 {
		t.Fatalf("id resolved %d times, want 1", idCalls)
	}
}

// A fragment on an interface applies to implementing objects.
func TestOrdering_InterfaceFragmentApplies(t *testing.T) {
	sch := orderingTestSchema()
	sch.AddType(schema.NewType("Node", schema.TypeKindInterface, "").
		AddField(schema.NewField("id", "", schema.NamedType("ID"))).
		AddPossibleType("Game"))
	exec := NewExecutor(orderingTestRuntime(), sch)

	query := `
	{ game { ...Ident title } }
	fragment Ident on Node { id }`
	res := exec.ExecuteRequest(context.Background(), mustParseQuery(t, query), "", nil, nil)

	if got, want := dataJSON(t, res), `{"game":{"id":"g1","title":"Zelda"}}`; got != want {
		t.Fatalf("data = %s, want %s", got, want)
	}
}
