package events

import "time"

// StoreOp is emitted after a record store access completes.
type StoreOp struct {
	Op       string // lookup, list, filter, insert, remove, update
	Kind     string
	ID       string
	Err      error
	Duration time.Duration
}
