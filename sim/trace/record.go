// Package trace provides decision and dispatch recording for a replication.
// This package has no dependencies on sim/ and stores pure data types.
package trace

// AdmissionOutcome is the result of applying a section's admission policy.
type AdmissionOutcome string

const (
	OutcomeAdmitted AdmissionOutcome = "admitted"
	OutcomeQueued   AdmissionOutcome = "queued"
	OutcomeRejected AdmissionOutcome = "rejected"
)

// AdmissionRecord captures a single admission policy decision.
type AdmissionRecord struct {
	PatientID int              `json:"patient_id"`
	Section   string           `json:"section"`
	Clock     float64          `json:"clock"`
	Outcome   AdmissionOutcome `json:"outcome"`
}

// EvictionRecord captures a resident removed when ward capacity shrank.
type EvictionRecord struct {
	PatientID int     `json:"patient_id"`
	Section   string  `json:"section"`
	Clock     float64 `json:"clock"`
	Policy    string  `json:"policy"`
}

// DispatchRecord captures one event popped from the event queue.
// PatientID is 0 for events not tied to a patient.
type DispatchRecord struct {
	Seq       uint64  `json:"seq"`
	Clock     float64 `json:"clock"`
	Kind      string  `json:"kind"`
	PatientID int     `json:"patient_id,omitempty"`
}
