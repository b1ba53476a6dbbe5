package recorder

// NoopRecorder is a no-op implementation used when SQLite is not configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordSubmission(_ *Submission) error { return nil }
func (n *NoopRecorder) RecordEvent(_ *Event) error           { return nil }
func (n *NoopRecorder) Close() error                         { return nil }
