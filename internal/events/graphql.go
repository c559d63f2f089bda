package events

import "time"

// GraphQLStart is published once per operation, after query parsing and
// before the executor runs. In a batched request each entry publishes its
// own start/finish pair.
type GraphQLStart struct {
	Query         string
	OperationName string
	OperationType string // query or mutation
}

// GraphQLFinish is published when execution completes. Errors holds every
// error entry of the result, localized ones included, so subscribers can
// count or inspect them without reparsing the response.
type GraphQLFinish struct {
	Query         string
	OperationName string
	OperationType string
	Errors        []error
	Duration      time.Duration
}
