package updates

// Subscriber adapts the update stream to one transport.
type Subscriber interface {
	// Send delivers an update. Implementations must not block.
	Send(Update) error

	// Close shuts the subscriber down.
	Close() error
}
