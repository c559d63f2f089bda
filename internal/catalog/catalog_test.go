package catalog

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	executor "github.com/resolvent/resolvent/internal/executor"
	language "github.com/resolvent/resolvent/internal/language"
	store "github.com/resolvent/resolvent/internal/store"
)

func newCatalog(t *testing.T) (*executor.Executor, *store.Store) {
	t.Helper()
	st := store.New()
	require.NoError(t, Seed(st))
	s, m, err := New(st)
	require.NoError(t, err)
	return executor.NewExecutor(m, s), st
}

func run(t *testing.T, exec *executor.Executor, query string, vars map[string]any) *executor.ExecutionResult {
	t.Helper()
	doc, err := language.ParseQuery(query)
	require.NoError(t, err)
	return exec.ExecuteRequest(context.Background(), doc, "", vars, nil)
}

func dataJSON(t *testing.T, res *executor.ExecutionResult) string {
	t.Helper()
	b, err := json.Marshal(res.Data)
	require.NoError(t, err)
	return string(b)
}

// Response shape mirrors the request: selected scalars only, request order,
// store order for the list.
func TestGamesTitlePlatform(t *testing.T) {
	exec, _ := newCatalog(t)

	res := run(t, exec, `{ games { title platform } }`, nil)

	require.Empty(t, res.Errors)
	want := `{"games":[` +
		`{"title":"Zelda, Tears of the Kingdom","platform":["Switch"]},` +
		`{"title":"Final Fantasy 7 Remake","platform":["PS5","Xbox"]},` +
		`{"title":"Elden Ring","platform":["multiplatform"]},` +
		`{"title":"Mario Kart","platform":["Switch"]},` +
		`{"title":"Pokemon Scarlet","platform":["PS5","Xbox","PC"]}]}`
	require.Equal(t, want, dataJSON(t, res))
}

// Foreign-key traversal: reviews per game, authors per review.
func TestRelationalTraversal(t *testing.T) {
	exec, _ := newCatalog(t)

	res := run(t, exec, `{ game(id: "2") { title reviews { rating author { name } } } }`, nil)

	require.Empty(t, res.Errors)
	want := `{"game":{"title":"Final Fantasy 7 Remake","reviews":[` +
		`{"rating":9,"author":{"name":"mario"}},` +
		`{"rating":7,"author":{"name":"mario"}}]}}`
	require.Equal(t, want, dataJSON(t, res))
}

func TestForeignKeyCounts(t *testing.T) {
	exec, _ := newCatalog(t)

	res := run(t, exec, `{ authors { name reviews { id } } }`, nil)
	require.Empty(t, res.Errors)

	data := res.Data
	b, err := json.Marshal(data)
	require.NoError(t, err)
	var decoded struct {
		Authors []struct {
			Name    string           `json:"name"`
			Reviews []map[string]any `json:"reviews"`
		} `json:"authors"`
	}
	require.NoError(t, json.Unmarshal(b, &decoded))
	counts := map[string]int{}
	for _, a := range decoded.Authors {
		counts[a.Name] = len(a.Reviews)
	}
	require.Equal(t, map[string]int{"mario": 2, "yoshi": 3, "peach": 2}, counts)
}

// An absent id on a nullable root field is null data, not an error.
func TestGameAbsentID(t *testing.T) {
	exec, _ := newCatalog(t)

	res := run(t, exec, `{ game(id: "404") { title } }`, nil)

	require.Empty(t, res.Errors)
	require.Equal(t, `{"game":null}`, dataJSON(t, res))
}

// A dangling non-null reference nulls the nearest nullable ancestor and
// records a fatal NOT_FOUND error at the failing path.
func TestDanglingReferenceNullsNearestNullableAncestor(t *testing.T) {
	exec, st := newCatalog(t)
	rec := st.Insert(context.Background(), "reviews", store.Record{
		"rating": 3, "content": "orphan", "author_id": "1", "game_id": "404",
	})

	res := run(t, exec, `query($id: ID!) { review(id: $id) { rating game { title } } }`,
		map[string]any{"id": rec["id"]})

	require.Equal(t, `{"review":null}`, dataJSON(t, res))
	require.Len(t, res.Errors, 1)
	require.Equal(t, executor.Path{"review", "game"}, res.Errors[0].Path)
	require.Equal(t, "NOT_FOUND", res.Errors[0].Extensions["code"])
	require.Equal(t, "fatal", res.Errors[0].Extensions["severity"])
}

// addGame is not idempotent: the same payload creates distinct records.
func TestAddGame(t *testing.T) {
	exec, st := newCatalog(t)

	mutation := `mutation($g: AddGameInput!) { addGame(game: $g) { id title platform } }`
	vars := map[string]any{"g": map[string]any{"title": "Metroid Prime", "platform": []any{"GameCube"}}}

	res := run(t, exec, mutation, vars)
	require.Empty(t, res.Errors)

	res2 := run(t, exec, mutation, vars)
	require.Empty(t, res2.Errors)

	require.Len(t, st.List(context.Background(), "games"), 7)
}

// deleteGame removes idempotently and returns the remaining games.
func TestDeleteGame(t *testing.T) {
	exec, _ := newCatalog(t)

	res := run(t, exec, `mutation { deleteGame(id: "1") { title } }`, nil)
	require.Empty(t, res.Errors)
	want := `{"deleteGame":[` +
		`{"title":"Final Fantasy 7 Remake"},` +
		`{"title":"Elden Ring"},` +
		`{"title":"Mario Kart"},` +
		`{"title":"Pokemon Scarlet"}]}`
	require.Equal(t, want, dataJSON(t, res))

	res = run(t, exec, `mutation { deleteGame(id: "1") { title } }`, nil)
	require.Empty(t, res.Errors)
	require.Equal(t, want, dataJSON(t, res))
}

// updateGame merges partially: omitted fields keep their values.
func TestUpdateGame(t *testing.T) {
	exec, _ := newCatalog(t)

	res := run(t, exec, `mutation { updateGame(id: "3", edits: {title: "Elden Ring DLC"}) { title platform } }`, nil)
	require.Empty(t, res.Errors)
	require.Equal(t, `{"updateGame":{"title":"Elden Ring DLC","platform":["multiplatform"]}}`, dataJSON(t, res))
}

// Updating an absent id surfaces NOT_FOUND; the non-null return type makes it
// fatal at the root.
func TestUpdateGameAbsentID(t *testing.T) {
	exec, _ := newCatalog(t)

	res := run(t, exec, `mutation { updateGame(id: "404", edits: {title: "x"}) { title } }`, nil)

	require.Nil(t, res.Data)
	require.Len(t, res.Errors, 1)
	require.Equal(t, "NOT_FOUND", res.Errors[0].Extensions["code"])
}

// Unknown fields reject the request before any resolver runs.
func TestUnknownFieldRejected(t *testing.T) {
	exec, _ := newCatalog(t)

	res := run(t, exec, `{ games { title publisher } }`, nil)

	require.Nil(t, res.Data)
	require.Len(t, res.Errors, 1)
	require.Equal(t, "UNKNOWN_FIELD", res.Errors[0].Extensions["code"])
}
