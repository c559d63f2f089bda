package resolver

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	schema "github.com/resolvent/resolvent/internal/schema"
	store "github.com/resolvent/resolvent/internal/store"
)

const bindSDL = `
type Query {
  games: [Game!]!
  game(id: ID!): Game
}

type Mutation {
  addGame(game: AddGameInput!): Game!
  deleteGame(id: ID!): [Game!]!
  updateGame(id: ID!, edits: EditGameInput!): Game!
}

type Game {
  id: ID!
  title: String!
  reviews: [Review!]
}

type Review {
  id: ID!
  rating: Int!
  game: Game!
}

input AddGameInput {
  title: String!
}

input EditGameInput {
  title: String
}
`

func boundMap(t *testing.T, st *store.Store) (*Map, *schema.Schema) {
	t.Helper()
	s, err := schema.BuildFromSDL(bindSDL)
	require.NoError(t, err)
	m := NewMap()
	BindStoreConventions(m, st, s)
	require.NoError(t, m.Freeze(s))
	return m, s
}

func TestBindStoreConventions_QueryRoots(t *testing.T) {
	st := seededStore(t)
	m, _ := boundMap(t, st)
	ctx := context.Background()

	out, err := m.Lookup("Query", "games")(ctx, nil, nil)
	require.NoError(t, err)
	require.Len(t, out.([]any), 2)

	one, err := m.Lookup("Query", "game")(ctx, nil, map[string]any{"id": "2"})
	require.NoError(t, err)
	require.Equal(t, "Mario", one.(store.Record)["title"])
}

func TestBindStoreConventions_Relations(t *testing.T) {
	st := seededStore(t)
	m, _ := boundMap(t, st)
	ctx := context.Background()

	reviews, err := m.Lookup("Game", "reviews")(ctx, map[string]any{"id": "1"}, nil)
	require.NoError(t, err)
	require.Len(t, reviews.([]any), 2)

	game, err := m.Lookup("Review", "game")(ctx, map[string]any{"game_id": "1"}, nil)
	require.NoError(t, err)
	require.Equal(t, "Zelda", game.(store.Record)["title"])
}

func TestBindStoreConventions_MutationRouting(t *testing.T) {
	st := seededStore(t)
	m, _ := boundMap(t, st)
	ctx := context.Background()

	created, err := m.Lookup("Mutation", "addGame")(ctx, nil, map[string]any{
		"game": map[string]any{"title": "Metroid"},
	})
	require.NoError(t, err)
	require.Equal(t, "Metroid", created.(store.Record)["title"])

	updated, err := m.Lookup("Mutation", "updateGame")(ctx, nil, map[string]any{
		"id":    "1",
		"edits": map[string]any{"title": "Zelda II"},
	})
	require.NoError(t, err)
	require.Equal(t, "Zelda II", updated.(store.Record)["title"])

	remaining, err := m.Lookup("Mutation", "deleteGame")(ctx, nil, map[string]any{"id": "2"})
	require.NoError(t, err)
	require.Len(t, remaining.([]any), 2) // Metroid added above, Mario removed
}

func TestKindForPluralization(t *testing.T) {
	require.Equal(t, "games", kindFor("Game"))
	require.Equal(t, "categories", kindFor("Category"))
	require.Equal(t, "statuses", kindFor("Status"))
}
