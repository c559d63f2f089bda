package logging

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	eventbus "github.com/resolvent/resolvent/internal/eventbus"
	events "github.com/resolvent/resolvent/internal/events"
)

func TestRegisterLogsOperations(t *testing.T) {
	eventbus.Use(eventbus.New())
	var buf bytes.Buffer
	l := slog.New(slog.NewJSONHandler(&buf, nil))
	Register(l)

	ctx := context.Background()
	eventbus.Publish(ctx, events.GraphQLFinish{
		OperationName: "Games",
		OperationType: "query",
		Duration:      3 * time.Millisecond,
	})

	out := buf.String()
	if !strings.Contains(out, `"msg":"graphql operation"`) {
		t.Fatalf("missing operation log: %s", out)
	}
	if !strings.Contains(out, `"operation":"Games"`) {
		t.Fatalf("missing operation name: %s", out)
	}
}

func TestStoreOpsLoggedOnlyOnFailure(t *testing.T) {
	eventbus.Use(eventbus.New())
	var buf bytes.Buffer
	Register(slog.New(slog.NewJSONHandler(&buf, nil)))

	ctx := context.Background()
	eventbus.Publish(ctx, events.StoreOp{Op: "lookup", Kind: "games", Duration: time.Millisecond})
	if buf.Len() != 0 {
		t.Fatalf("healthy store op should not be logged: %s", buf.String())
	}

	eventbus.Publish(ctx, events.StoreOp{Op: "update", Kind: "games", ID: "9", Err: errors.New("games \"9\" not found")})
	if !strings.Contains(buf.String(), `"msg":"store operation failed"`) {
		t.Fatalf("missing failure log: %s", buf.String())
	}
}
