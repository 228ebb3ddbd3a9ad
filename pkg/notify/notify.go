// Package notify delivers informational messages on registration state
// transitions. Delivery is fire-and-forget: a failed dispatch is logged and
// never rolls back the write that triggered it.
package notify

import "log"

// Dispatcher is the narrow interface the core uses to announce transitions.
type Dispatcher interface {
	Dispatch(event string, payload map[string]interface{}) error
}

// LogDispatcher writes notifications to the process log. Stands in for the
// real email/push pipeline in development and tests.
type LogDispatcher struct{}

func NewLogDispatcher() *LogDispatcher {
	return &LogDispatcher{}
}

func (d *LogDispatcher) Dispatch(event string, payload map[string]interface{}) error {
	log.Printf("notify: %s %v", event, payload)
	return nil
}

// Noop discards every notification. Used in tests.
type Noop struct{}

func (Noop) Dispatch(string, map[string]interface{}) error { return nil }
