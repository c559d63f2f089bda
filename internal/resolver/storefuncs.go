package resolver

import (
	"context"
	"fmt"

	schema "github.com/resolvent/resolvent/internal/schema"
	store "github.com/resolvent/resolvent/internal/store"
)

// Store-backed resolver constructors. These cover the common shapes of a
// record-backed graph: list roots, id lookups, foreign-key traversals and the
// create/delete/update mutation trio.

// ListFunc returns every record of the kind in store order.
func ListFunc(st *store.Store, kind string) Func {
	return func(ctx context.Context, source any, args map[string]any) (any, error) {
		return recordsToAny(st.List(ctx, kind)), nil
	}
}

// GetByIDFunc looks a record up by the idArg argument. An absent record
// resolves to null; nullability is the field's concern.
func GetByIDFunc(st *store.Store, kind, idArg string) Func {
	return func(ctx context.Context, source any, args map[string]any) (any, error) {
		id, err := stringArg(args, idArg)
		if err != nil {
			return nil, err
		}
		rec, ok := st.LookupByID(ctx, kind, id)
		if !ok {
			return nil, nil
		}
		return rec, nil
	}
}

// ForeignKeyFunc returns the kind's records whose fkField equals the parent
// record's id, in store order.
func ForeignKeyFunc(st *store.Store, kind, fkField string) Func {
	return func(ctx context.Context, source any, args map[string]any) (any, error) {
		parentID, ok := getProperty(source, "id")
		if !ok {
			return nil, fmt.Errorf("parent record has no id")
		}
		return recordsToAny(st.FilterByForeignKey(ctx, kind, fkField, parentID)), nil
	}
}

// ReferenceFunc follows the parent's fkField to a record of the kind. A
// dangling reference is an error, not a null: reference fields are non-null
// in the owning schema.
func ReferenceFunc(st *store.Store, kind, fkField string) Func {
	return func(ctx context.Context, source any, args map[string]any) (any, error) {
		ref, ok := getProperty(source, fkField)
		if !ok {
			return nil, fmt.Errorf("record has no %s", fkField)
		}
		id, ok := ref.(string)
		if !ok {
			return nil, fmt.Errorf("%s is not a string id: %T", fkField, ref)
		}
		rec, found := st.LookupByID(ctx, kind, id)
		if !found {
			return nil, &store.NotFoundError{Kind: kind, ID: id}
		}
		return rec, nil
	}
}

// CreateFunc inserts a record built from the payloadArg input object, keeping
// only keys the input type declares. Each invocation creates a new record.
func CreateFunc(st *store.Store, kind, payloadArg string, inputType *schema.Type) Func {
	return func(ctx context.Context, source any, args map[string]any) (any, error) {
		payload, ok := args[payloadArg].(map[string]any)
		if !ok {
			return nil, fmt.Errorf("argument %q must be an input object", payloadArg)
		}
		rec := store.Record{}
		for _, fieldDef := range inputType.GetOrderedInputFields() {
			if v, present := payload[fieldDef.Name]; present {
				rec[fieldDef.Name] = v
			}
		}
		return st.Insert(ctx, kind, rec), nil
	}
}

// DeleteFunc removes the record named by idArg and returns the remaining
// collection. Deleting an absent id succeeds and returns the unchanged
// collection.
func DeleteFunc(st *store.Store, kind, idArg string) Func {
	return func(ctx context.Context, source any, args map[string]any) (any, error) {
		id, err := stringArg(args, idArg)
		if err != nil {
			return nil, err
		}
		st.Remove(ctx, kind, id)
		return recordsToAny(st.List(ctx, kind)), nil
	}
}

// UpdateFunc merges the editsArg input object into the record named by idArg.
// Omitted input fields keep their stored values; an absent id surfaces the
// store's not-found error.
func UpdateFunc(st *store.Store, kind, idArg, editsArg string, editsType *schema.Type) Func {
	return func(ctx context.Context, source any, args map[string]any) (any, error) {
		id, err := stringArg(args, idArg)
		if err != nil {
			return nil, err
		}
		edits, ok := args[editsArg].(map[string]any)
		if !ok {
			return nil, fmt.Errorf("argument %q must be an input object", editsArg)
		}
		partial := store.Record{}
		for _, fieldDef := range editsType.GetOrderedInputFields() {
			if v, present := edits[fieldDef.Name]; present {
				partial[fieldDef.Name] = v
			}
		}
		return st.Update(ctx, kind, id, partial)
	}
}

func stringArg(args map[string]any, name string) (string, error) {
	v, ok := args[name]
	if !ok {
		return "", fmt.Errorf("argument %q was not provided", name)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("argument %q must be a string id, got %T", name, v)
	}
	return s, nil
}

func recordsToAny(records []store.Record) []any {
	out := make([]any, len(records))
	for i, rec := range records {
		out[i] = rec
	}
	return out
}
