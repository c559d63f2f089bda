// Package catalog wires the demo games/reviews/authors graph: an SDL schema,
// store-backed resolvers, and a sample fixture.
package catalog

import (
	"fmt"

	resolver "github.com/resolvent/resolvent/internal/resolver"
	schema "github.com/resolvent/resolvent/internal/schema"
	store "github.com/resolvent/resolvent/internal/store"
)

const SDL = `
type Query {
  games: [Game!]!
  game(id: ID!): Game
  reviews: [Review!]!
  review(id: ID!): Review
  authors: [Author!]!
  author(id: ID!): Author
}

type Mutation {
  addGame(game: AddGameInput!): Game!
  deleteGame(id: ID!): [Game!]!
  updateGame(id: ID!, edits: EditGameInput!): Game!
}

type Game {
  id: ID!
  title: String!
  platform: [String!]!
  reviews: [Review!]
}

type Review {
  id: ID!
  rating: Int!
  content: String!
  game: Game!
  author: Author!
}

type Author {
  id: ID!
  name: String!
  verified: Boolean!
  reviews: [Review!]
}

input AddGameInput {
  title: String!
  platform: [String!]!
}

input EditGameInput {
  title: String
  platform: [String!]
}
`

// New builds the catalog schema and its resolver map over the store. The
// returned map is frozen and ready to serve as the executor runtime.
func New(st *store.Store) (*schema.Schema, *resolver.Map, error) {
	s, err := schema.BuildFromSDL(SDL)
	if err != nil {
		return nil, nil, fmt.Errorf("catalog schema: %w", err)
	}
	m := resolver.NewMap()
	if err := Register(m, st, s); err != nil {
		return nil, nil, err
	}
	return s, m, nil
}

// Register binds the catalog's relational and mutation resolvers and freezes
// the map. Scalar fields ride the default property resolver.
func Register(m *resolver.Map, st *store.Store, s *schema.Schema) error {
	addGameInput, err := s.Get("AddGameInput")
	if err != nil {
		return err
	}
	editGameInput, err := s.Get("EditGameInput")
	if err != nil {
		return err
	}

	m.Register("Query", "games", resolver.ListFunc(st, "games"))
	m.Register("Query", "game", resolver.GetByIDFunc(st, "games", "id"))
	m.Register("Query", "reviews", resolver.ListFunc(st, "reviews"))
	m.Register("Query", "review", resolver.GetByIDFunc(st, "reviews", "id"))
	m.Register("Query", "authors", resolver.ListFunc(st, "authors"))
	m.Register("Query", "author", resolver.GetByIDFunc(st, "authors", "id"))

	m.Register("Game", "reviews", resolver.ForeignKeyFunc(st, "reviews", "game_id"))
	m.Register("Author", "reviews", resolver.ForeignKeyFunc(st, "reviews", "author_id"))
	m.Register("Review", "game", resolver.ReferenceFunc(st, "games", "game_id"))
	m.Register("Review", "author", resolver.ReferenceFunc(st, "authors", "author_id"))

	m.Register("Mutation", "addGame", resolver.CreateFunc(st, "games", "game", addGameInput))
	m.Register("Mutation", "deleteGame", resolver.DeleteFunc(st, "games", "id"))
	m.Register("Mutation", "updateGame", resolver.UpdateFunc(st, "games", "id", "edits", editGameInput))

	return m.Freeze(s)
}

// seedYAML is the sample fixture: five games, three authors, seven reviews.
const seedYAML = `
games:
  - id: "1"
    title: "Zelda, Tears of the Kingdom"
    platform: ["Switch"]
  - id: "2"
    title: "Final Fantasy 7 Remake"
    platform: ["PS5", "Xbox"]
  - id: "3"
    title: "Elden Ring"
    platform: ["multiplatform"]
  - id: "4"
    title: "Mario Kart"
    platform: ["Switch"]
  - id: "5"
    title: "Pokemon Scarlet"
    platform: ["PS5", "Xbox", "PC"]
authors:
  - id: "1"
    name: "mario"
    verified: true
  - id: "2"
    name: "yoshi"
    verified: false
  - id: "3"
    name: "peach"
    verified: true
reviews:
  - id: "1"
    rating: 9
    content: "lorem ipsum"
    author_id: "1"
    game_id: "2"
  - id: "2"
    rating: 10
    content: "lorem ipsum"
    author_id: "2"
    game_id: "1"
  - id: "3"
    rating: 7
    content: "lorem ipsum"
    author_id: "3"
    game_id: "3"
  - id: "4"
    rating: 5
    content: "lorem ipsum"
    author_id: "2"
    game_id: "4"
  - id: "5"
    rating: 8
    content: "lorem ipsum"
    author_id: "2"
    game_id: "5"
  - id: "6"
    rating: 7
    content: "lorem ipsum"
    author_id: "1"
    game_id: "2"
  - id: "7"
    rating: 10
    content: "lorem ipsum"
    author_id: "3"
    game_id: "1"
`

// Seed loads the sample fixture into the store.
func Seed(st *store.Store) error {
	seed, err := store.ParseSeed([]byte(seedYAML))
	if err != nil {
		return err
	}
	st.LoadSeed(seed)
	return nil
}
