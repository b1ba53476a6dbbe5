// Package recorder persists calculation submissions and funnel events for
// offline analytics. The calculation engine itself never touches storage;
// only the HTTP API records through this package.
package recorder

import "github.com/mortgagepulse/refinance-engine/pkg/scenarios"

// Submission holds one calculation request together with its outcome.
type Submission struct {
	Input  scenarios.LoanInput
	Result scenarios.Result
}

// Event records a single funnel event (e.g. a served cache hit or a rate
// table reload).
type Event struct {
	Name   string
	Detail string
}

// Recorder persists submissions and events for analysis.
type Recorder interface {
	RecordSubmission(sub *Submission) error
	RecordEvent(evt *Event) error
	Close() error
}
