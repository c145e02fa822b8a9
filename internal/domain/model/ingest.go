package model

import "time"

// IngestEvent carries one beneficiary record submission through the queue.
// EventID provides idempotency; the record's derived risk fields are filled
// in by the assessment workers before the record reaches the registry.
type IngestEvent struct {
	EventID string
	Record  BeneficiaryRecord
	TS      time.Time
}
