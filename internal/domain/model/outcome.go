package model

// IngestStatus is the terminal state of one order ingestion.
type IngestStatus string

const (
	IngestCommitted IngestStatus = "committed"
	IngestRejected  IngestStatus = "rejected"
	IngestFailed    IngestStatus = "failed"
)

// Rejection and failure reasons reported to callers.
const (
	ReasonMissingField   = "missing-field"
	ReasonDuplicate      = "duplicate"
	ReasonMissingItemID  = "missing-item-id"
	ReasonInvalidRef     = "invalid-reference"
	ReasonInvalidPayload = "invalid-payload"
	ReasonTransaction    = "transaction-error"
	ReasonPanic          = "panic"
)

// IngestResult is the outcome of ingesting a single order.
type IngestResult struct {
	Status  IngestStatus
	OrderID int64
	Reason  string
	Updated bool
	Err     error
}

// Committed reports whether the order is durably stored.
func (r IngestResult) Committed() bool { return r.Status == IngestCommitted }

// BatchResult aggregates the outcomes of a batch, in input order.
type BatchResult struct {
	Accepted int
	Rejected int
	Failed   int
	Results  []IngestResult
}

// Add counts one more outcome.
func (b *BatchResult) Add(r IngestResult) {
	switch r.Status {
	case IngestCommitted:
		b.Accepted++
	case IngestRejected:
		b.Rejected++
	default:
		b.Failed++
	}
	b.Results = append(b.Results, r)
}
