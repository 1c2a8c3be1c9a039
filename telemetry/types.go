package telemetry

import "time"

// Event is one analytics record. Events are advisory only; no part of
// the import pipeline depends on them being delivered.
type Event struct {
	ID         string                 `json:"id"`
	Name       string                 `json:"name"`
	Time       time.Time              `json:"time"`
	Properties map[string]interface{} `json:"properties,omitempty"`
}

// Tracker is a best-effort analytics sink. Implementations must never
// return errors or panic into callers; failures are logged and dropped.
type Tracker interface {
	Track(name string, properties map[string]interface{})
}
