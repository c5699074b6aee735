// Package updates fans client changes out to every real-time transport.
//
// The root client's hooks publish into a Broker, and each transport (SSE,
// WebSocket) is attached to it as a Subscriber.
package updates

import "time"

// Type names a client change.
type Type string

// Update types.
const (
	RunEvent        Type = "run.event"
	RunState        Type = "run.state"
	ViewsChanged    Type = "views.changed"
	BlobChanged     Type = "blob.changed"
	SequenceChanged Type = "sequence.changed"
	Diagnostic      Type = "diagnostic"
)

// Update is one client change with its payload.
type Update struct {
	Type      Type      `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
}
