package domain

// IndexProgress is one event emitted while a parent is being indexed.
// Callers may ignore the event stream entirely without affecting
// correctness.
type IndexProgress struct {
	// Current is the number of chunks processed so far.
	Current int

	// Total is the number of chunks to process.
	Total int

	// Status is the record lifecycle state at this point.
	Status IndexStatus

	// Message is a human-readable description of the step.
	Message string
}
