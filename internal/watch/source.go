package watch

// eventSource abstracts the OS change-notification mechanism behind readiness
// channels the loop can multiplex. A session holds at most one registration,
// made when the source is opened.
type eventSource interface {
	// Batches delivers decoded change records, one slice per drain. The
	// channel is closed when the source shuts down.
	Batches() <-chan []ChangeRecord

	// Errors delivers a source failure; the loop treats any receive as fatal.
	Errors() <-chan error

	// Close deregisters the watch and releases the notification instance.
	// Safe to call more than once.
	Close() error
}
