package application

import (
	"fmt"

	"wagerhub/domain/events"
)

// AssertEventType asserts an event to its concrete type, naming both types on failure
func AssertEventType[T events.Event](event events.Event) (T, error) {
	if e, ok := event.(T); ok {
		return e, nil
	}

	var zero T
	if event == nil {
		return zero, fmt.Errorf("event type assertion failed: expected %T, got nil", zero)
	}
	return zero, fmt.Errorf("event type assertion failed: expected %T, got %T (event.Type()=%s)", zero, event, event.Type())
}
