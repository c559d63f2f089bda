package store

import (
	"context"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func seededStore(t *testing.T) *Store {
	t.Helper()
	s := New()
	seed, err := ParseSeed([]byte(`
games:
  - id: "1"
    title: Zelda
  - id: "2"
    title: Mario
reviews:
  - id: "r1"
    game_id: "1"
    rating: 9
  - id: "r2"
    game_id: "1"
    rating: 7
  - id: "r3"
    game_id: "2"
    rating: 8
`))
	require.NoError(t, err)
	s.LoadSeed(seed)
	return s
}

func TestLookupByID(t *testing.T) {
	s := seededStore(t)
	ctx := context.Background()

	rec, ok := s.LookupByID(ctx, "games", "1")
	require.True(t, ok)
	require.Equal(t, "Zelda", rec["title"])

	_, ok = s.LookupByID(ctx, "games", "404")
	require.False(t, ok)
	_, ok = s.LookupByID(ctx, "nope", "1")
	require.False(t, ok)
}

func TestListKeepsInsertionOrder(t *testing.T) {
	s := seededStore(t)

	var titles []string
	for _, rec := range s.List(context.Background(), "games") {
		titles = append(titles, rec["title"].(string))
	}
	if diff := cmp.Diff([]string{"Zelda", "Mario"}, titles); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestFilterByForeignKey(t *testing.T) {
	s := seededStore(t)
	ctx := context.Background()

	got := s.FilterByForeignKey(ctx, "reviews", "game_id", "1")
	require.Len(t, got, 2)
	require.Equal(t, "r1", got[0]["id"])
	require.Equal(t, "r2", got[1]["id"])

	require.Empty(t, s.FilterByForeignKey(ctx, "reviews", "game_id", "404"))
}

// Inserting the same payload twice yields two distinct records.
func TestInsertAssignsDistinctIDs(t *testing.T) {
	s := New()
	ctx := context.Background()

	a := s.Insert(ctx, "games", Record{"title": "Metroid"})
	b := s.Insert(ctx, "games", Record{"title": "Metroid"})

	require.NotEmpty(t, a["id"])
	require.NotEqual(t, a["id"], b["id"])
	require.Len(t, s.List(ctx, "games"), 2)
}

func TestRemoveIsIdempotent(t *testing.T) {
	s := seededStore(t)
	ctx := context.Background()

	require.True(t, s.Remove(ctx, "games", "1"))
	require.False(t, s.Remove(ctx, "games", "1"))

	got := s.List(ctx, "games")
	require.Len(t, got, 1)
	require.Equal(t, "Mario", got[0]["title"])
}

func TestUpdatePartialMerge(t *testing.T) {
	s := seededStore(t)
	ctx := context.Background()

	rec, err := s.Update(ctx, "games", "1", Record{"title": "Zelda II"})
	require.NoError(t, err)
	require.Equal(t, "Zelda II", rec["title"])
	require.Equal(t, "1", rec["id"])

	// Omitted fields keep prior values; id is immutable.
	rec, err = s.Update(ctx, "games", "1", Record{"year": 1987, "id": "hijack"})
	require.NoError(t, err)
	require.Equal(t, "Zelda II", rec["title"])
	require.Equal(t, 1987, rec["year"])
	require.Equal(t, "1", rec["id"])
}

func TestUpdateAbsentID(t *testing.T) {
	s := seededStore(t)

	_, err := s.Update(context.Background(), "games", "404", Record{"title": "x"})
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	require.Equal(t, "games", nf.Kind)
	require.Equal(t, "NOT_FOUND", nf.ErrorCode())
}

// Returned records are copies: mutating them must not leak into the store.
func TestReadsReturnCopies(t *testing.T) {
	s := seededStore(t)
	ctx := context.Background()

	rec, _ := s.LookupByID(ctx, "games", "1")
	rec["title"] = "tampered"

	again, _ := s.LookupByID(ctx, "games", "1")
	require.Equal(t, "Zelda", again["title"])
}

// Concurrent updates on one id never lose writes.
func TestConcurrentUpdatesSerialize(t *testing.T) {
	s := New()
	ctx := context.Background()
	rec := s.Insert(ctx, "counters", Record{"n": 0})
	id := rec["id"].(string)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := s.Update(ctx, "counters", id, Record{"slot": i})
			require.NoError(t, err)
		}(i)
	}
	wg.Wait()

	got, ok := s.LookupByID(ctx, "counters", id)
	require.True(t, ok)
	require.Equal(t, 0, got["n"])
	require.Contains(t, got, "slot")
}

func TestParseSeedRejectsBadID(t *testing.T) {
	_, err := ParseSeed([]byte("games:\n  - id: 7\n    title: x\n"))
	require.Error(t, err)
}
