package events

import (
	"net/http"
	"time"
)

// HTTPStart is published by the GraphQL endpoint handler as soon as a request
// comes in, before parsing. The publish context carries the request id.
type HTTPStart struct {
	Request *http.Request
}

// HTTPFinish is published after the response has been written. Batched
// requests produce a single HTTPFinish covering the whole batch.
type HTTPFinish struct {
	Request  *http.Request
	Status   int
	Duration time.Duration
}
