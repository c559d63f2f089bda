package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	eventbus "github.com/resolvent/resolvent/internal/eventbus"
	events "github.com/resolvent/resolvent/internal/events"
)

// Record is a single stored entity. The store owns identity: every record
// carries a string "id" property.
type Record = map[string]any

// NotFoundError reports a mutation against an absent id.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}

func (e *NotFoundError) ErrorCode() string { return "NOT_FOUND" }

// collection holds one entity kind's records in insertion order.
type collection struct {
	order []string
	byID  map[string]Record
}

// Store is an in-memory, insertion-ordered record store. Reads return
// defensive copies; mutations on the same id are serialized so concurrent
// read-modify-write sequences never interleave.
type Store struct {
	mu    sync.RWMutex
	kinds map[string]*collection

	idmu sync.Mutex
	ids  map[string]*sync.Mutex // "kind/id" -> mutation lock
}

func New() *Store {
	return &Store{
		kinds: make(map[string]*collection),
		ids:   make(map[string]*sync.Mutex),
	}
}

// LookupByID returns a copy of the record, or false when the kind or id is
// absent.
func (s *Store) LookupByID(ctx context.Context, kind, id string) (Record, bool) {
	defer s.publish(ctx, "lookup", kind, id, time.Now())

	s.mu.RLock()
	defer s.mu.RUnlock()
	c := s.kinds[kind]
	if c == nil {
		return nil, false
	}
	rec, ok := c.byID[id]
	if !ok {
		return nil, false
	}
	return cloneRecord(rec), true
}

// List returns all records of the kind in insertion order.
func (s *Store) List(ctx context.Context, kind string) []Record {
	defer s.publish(ctx, "list", kind, "", time.Now())

	s.mu.RLock()
	defer s.mu.RUnlock()
	c := s.kinds[kind]
	if c == nil {
		return []Record{}
	}
	out := make([]Record, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, cloneRecord(c.byID[id]))
	}
	return out
}

// FilterByForeignKey returns records whose fkField equals value, in insertion
// order.
func (s *Store) FilterByForeignKey(ctx context.Context, kind, fkField string, value any) []Record {
	defer s.publish(ctx, "filter", kind, "", time.Now())

	s.mu.RLock()
	defer s.mu.RUnlock()
	c := s.kinds[kind]
	if c == nil {
		return []Record{}
	}
	out := []Record{}
	for _, id := range c.order {
		rec := c.byID[id]
		if rec[fkField] == value {
			out = append(out, cloneRecord(rec))
		}
	}
	return out
}

// Insert stores a copy of the record under a freshly assigned id and returns
// the stored form. Inserting the same payload twice yields two records.
func (s *Store) Insert(ctx context.Context, kind string, rec Record) Record {
	id := uuid.NewString()
	defer s.publish(ctx, "insert", kind, id, time.Now())

	stored := cloneRecord(rec)
	stored["id"] = id

	s.mu.Lock()
	defer s.mu.Unlock()
	s.collection(kind).put(id, stored)
	return cloneRecord(stored)
}

// Remove deletes the record. Removing an absent id is a no-op returning
// false.
func (s *Store) Remove(ctx context.Context, kind, id string) bool {
	defer s.publish(ctx, "remove", kind, id, time.Now())

	unlock := s.lockID(kind, id)
	defer unlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.kinds[kind]
	if c == nil {
		return false
	}
	if _, ok := c.byID[id]; !ok {
		return false
	}
	delete(c.byID, id)
	for i, existing := range c.order {
		if existing == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	return true
}

// Update merges the partial record into the stored one: provided fields
// overwrite, omitted fields keep their prior values, the id never changes.
func (s *Store) Update(ctx context.Context, kind, id string, partial Record) (Record, error) {
	defer s.publish(ctx, "update", kind, id, time.Now())

	unlock := s.lockID(kind, id)
	defer unlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.kinds[kind]
	if c == nil {
		return nil, &NotFoundError{Kind: kind, ID: id}
	}
	rec, ok := c.byID[id]
	if !ok {
		return nil, &NotFoundError{Kind: kind, ID: id}
	}
	for k, v := range partial {
		if k == "id" {
			continue
		}
		rec[k] = v
	}
	return cloneRecord(rec), nil
}

// put used by seeding: keeps the record's declared id so fixture foreign keys
// stay valid.
func (s *Store) put(kind string, rec Record) {
	id, _ := rec["id"].(string)
	if id == "" {
		id = uuid.NewString()
		rec["id"] = id
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.collection(kind).put(id, rec)
}

// collection returns the kind's collection, creating it on first use.
// Caller holds s.mu.
func (s *Store) collection(kind string) *collection {
	c := s.kinds[kind]
	if c == nil {
		c = &collection{byID: make(map[string]Record)}
		s.kinds[kind] = c
	}
	return c
}

func (c *collection) put(id string, rec Record) {
	if _, exists := c.byID[id]; !exists {
		c.order = append(c.order, id)
	}
	c.byID[id] = rec
}

// lockID serializes mutations per (kind, id).
func (s *Store) lockID(kind, id string) func() {
	key := kind + "/" + id
	s.idmu.Lock()
	m := s.ids[key]
	if m == nil {
		m = &sync.Mutex{}
		s.ids[key] = m
	}
	s.idmu.Unlock()
	m.Lock()
	return m.Unlock
}

func (s *Store) publish(ctx context.Context, op, kind, id string, start time.Time) {
	eventbus.Publish(ctx, events.StoreOp{
		Op:       op,
		Kind:     kind,
		ID:       id,
		Duration: time.Since(start),
	})
}

// cloneRecord copies the top-level map. Nested values are shared; callers
// must not mutate them in place.
func cloneRecord(rec Record) Record {
	out := make(Record, len(rec))
	for k, v := range rec {
		out[k] = v
	}
	return out
}
