package executor

import (
	"encoding/json"
	"errors"
	"testing"

	language "github.com/resolvent/resolvent/internal/language"
)

var errBoom = errors.New("boom")

// mustParseQuery parses a GraphQL query and fails the test on error.
func mustParseQuery(t *testing.T, q string) *language.QueryDocument {
	t.Helper()
	d, err := language.ParseQuery(q)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	return d
}

// dataJSON marshals the result's Data; key order in the output is the
// request field order, so string comparison checks ordering too.
func dataJSON(t *testing.T, res *ExecutionResult) string {
	t.Helper()
	b, err := json.Marshal(res.Data)
	if err != nil {
		t.Fatalf("marshal data: %v", err)
	}
	return string(b)
}
