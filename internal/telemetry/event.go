// Package telemetry defines the analytics event model and the sinks events
// are emitted to.
package telemetry

import (
	"time"

	"github.com/google/uuid"
)

// EventProductCollectionInstance is emitted once per located
// product-collection block.
const EventProductCollectionInstance = "product_collection_instance"

// Properties is a flat mapping of scalar event properties. Nested values are
// serialized by the producer before they land here.
type Properties map[string]any

// Event is one analytics event.
type Event struct {
	ID    string     `json:"id"`
	Name  string     `json:"name"`
	Time  time.Time  `json:"time"`
	Props Properties `json:"props"`
}

// NewEvent creates an event with a fresh id and the current time.
func NewEvent(name string, props Properties) Event {
	return Event{
		ID:    uuid.NewString(),
		Name:  name,
		Time:  time.Now().UTC(),
		Props: props,
	}
}
