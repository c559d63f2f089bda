package executor

import (
	"fmt"

	language "github.com/resolvent/resolvent/internal/language"
	schema "github.com/resolvent/resolvent/internal/schema"
)

// validateRequest checks the request shape against the schema before any
// resolver runs: every selected field must exist on the type it is selected
// from, and every fragment condition must name a known type. A violation
// rejects the whole request with no partial execution.
func validateRequest(s *schema.Schema, document *language.QueryDocument, rootType *schema.Type, operation *language.OperationDefinition) *GraphQLError {
	v := &requestValidator{
		schema:   s,
		document: document,
		visited:  make(map[string]bool),
	}
	return v.validateSelectionSet(rootType, operation.SelectionSet)
}

type requestValidator struct {
	schema   *schema.Schema
	document *language.QueryDocument
	visited  map[string]bool
}

func (v *requestValidator) validateSelectionSet(onType *schema.Type, selectionSet language.SelectionSet) *GraphQLError {
	for _, selection := range selectionSet {
		switch sel := selection.(type) {
		case *language.Field:
			if err := v.validateField(onType, sel); err != nil {
				return err
			}
		case *language.InlineFragment:
			condType, err := v.conditionType(onType, sel.TypeCondition)
			if err != nil {
				return err
			}
			if err := v.validateSelectionSet(condType, sel.SelectionSet); err != nil {
				return err
			}
		case *language.FragmentSpread:
			if v.visited[sel.Name] {
				continue
			}
			v.visited[sel.Name] = true
			fragmentDef := v.document.Fragments.ForName(sel.Name)
			if fragmentDef == nil {
				return validationError(fmt.Sprintf("unknown fragment %q", sel.Name), CodeUnknownFragment)
			}
			condType, err := v.conditionType(onType, fragmentDef.TypeCondition)
			if err != nil {
				return err
			}
			if err := v.validateSelectionSet(condType, fragmentDef.SelectionSet); err != nil {
				return err
			}
		}
	}
	return nil
}

func (v *requestValidator) validateField(onType *schema.Type, field *language.Field) *GraphQLError {
	if field.Name == "__typename" {
		return nil
	}
	if onType.Kind == schema.TypeKindUnion {
		return validationError(
			fmt.Sprintf("cannot query field %q on union type %q; use a fragment with a type condition", field.Name, onType.Name),
			CodeUnknownField)
	}

	fieldDef := onType.Field(field.Name)
	if fieldDef == nil {
		return validationError(
			fmt.Sprintf("cannot query field %q on type %q", field.Name, onType.Name),
			CodeUnknownField)
	}

	if len(field.SelectionSet) == 0 {
		return nil
	}
	namedType := schema.GetNamedType(fieldDef.Type)
	childType, err := v.schema.Get(namedType)
	if err != nil {
		return validationError(err.Error(), CodeUnknownType)
	}
	if childType.IsLeaf() {
		return validationError(
			fmt.Sprintf("cannot select subfields of field %q: type %q has no fields", field.Name, namedType),
			CodeUnknownField)
	}
	return v.validateSelectionSet(childType, field.SelectionSet)
}

// conditionType resolves a fragment's type condition, defaulting to the
// enclosing type when absent.
func (v *requestValidator) conditionType(onType *schema.Type, condition string) (*schema.Type, *GraphQLError) {
	if condition == "" {
		return onType, nil
	}
	condType, err := v.schema.Get(condition)
	if err != nil {
		return nil, validationError(err.Error(), CodeUnknownType)
	}
	return condType, nil
}

func validationError(message, code string) *GraphQLError {
	ge := newError(message, nil, code, "")
	return &ge
}
