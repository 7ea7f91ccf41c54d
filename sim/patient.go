// Defines the Patient entity that flows through the hospital sections.
// Tracks class, surgery complexity, comorbidity and the enter/exit timestamps
// used by the analytics layer.

package sim

import (
	"fmt"
)

// PatientClass distinguishes emergency-path patients from elective ones.
type PatientClass string

const (
	ClassUrgent   PatientClass = "urgent"
	ClassOrdinary PatientClass = "ordinary"
)

// rank orders classes in priority queues: lower rank is served first.
func (c PatientClass) rank() int {
	if c == ClassUrgent {
		return 0
	}
	return 1
}

// Surgery is the complexity of the operation a patient needs.
type Surgery string

const (
	SurgerySimple  Surgery = "simple"
	SurgeryMedium  Surgery = "medium"
	SurgeryComplex Surgery = "complex"
)

// Outcome is the terminal (or current) disposition of a patient.
type Outcome string

const (
	OutcomeActive      Outcome = "active"
	OutcomeDischarged  Outcome = "discharged"
	OutcomeDied        Outcome = "died"
	OutcomeRejected    Outcome = "rejected"
	OutcomeTransferred Outcome = "transferred"
	OutcomeEvicted     Outcome = "evicted"
)

// Patient is created on arrival and held by reference by whichever section
// ledger or queue currently owns it. At any instant it is either occupying a
// bed, waiting in exactly one queue, or departed.
type Patient struct {
	ID           int          `json:"id"`
	Class        PatientClass `json:"class"`
	Surgery      Surgery      `json:"surgery"`
	Comorbid     bool         `json:"comorbid"`
	MassCasualty bool         `json:"mass_casualty,omitempty"`
	EnterTime    float64      `json:"enter_time"`
	ExitTime     *float64     `json:"exit_time,omitempty"` // nil until departure; set at most once
	Outcome      Outcome      `json:"outcome"`
	Resurgery    bool         `json:"resurgery,omitempty"`
}

// HasExited reports whether an exit time has been stamped.
func (p *Patient) HasExited() bool {
	return p.ExitTime != nil
}

// StayLength returns exit - enter, or false when the patient has not left.
func (p *Patient) StayLength() (float64, bool) {
	if p.ExitTime == nil {
		return 0, false
	}
	return *p.ExitTime - p.EnterTime, true
}

// depart stamps the exit time exactly once.
func (p *Patient) depart(at float64, outcome Outcome) {
	if p.ExitTime != nil {
		violate("depart", "patient", "patient %d already exited at %v", p.ID, *p.ExitTime)
	}
	if at < p.EnterTime {
		violate("depart", "patient", "patient %d exit %v precedes enter %v", p.ID, at, p.EnterTime)
	}
	t := at
	p.ExitTime = &t
	p.Outcome = outcome
}

// snapshot returns a copy that shares no mutable state with p.
func (p *Patient) snapshot() Patient {
	c := *p
	if p.ExitTime != nil {
		t := *p.ExitTime
		c.ExitTime = &t
	}
	return c
}

func (p Patient) String() string {
	return fmt.Sprintf("Patient: (ID: %d, Class: %s, Surgery: %s, Comorbid: %t, Enter: %.2f, Outcome: %s)",
		p.ID, p.Class, p.Surgery, p.Comorbid, p.EnterTime, p.Outcome)
}
