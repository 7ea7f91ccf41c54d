package sim

import (
	"github.com/sirupsen/logrus"

	"github.com/hospital-sim/hospital-sim/sim/trace"
)

// admit applies the uniform admission policy of a section: take a free bed,
// else wait in the section's queue, else (no queue, or queue at its bound)
// reject. The caller schedules service completion on trace.OutcomeAdmitted.
func (sim *Simulator) admit(s Section, p *Patient) trace.AdmissionOutcome {
	var outcome trace.AdmissionOutcome
	switch q := sim.queueFor(s); {
	case sim.ledger.HasRoom(s):
		sim.ledger.Occupy(s, p)
		outcome = trace.OutcomeAdmitted
	case q != nil && !q.Full():
		q.Push(p)
		sim.stats.Queued[s]++
		outcome = trace.OutcomeQueued
	default:
		sim.stats.Rejections[s]++
		outcome = trace.OutcomeRejected
		logrus.WithFields(logrus.Fields{
			"time":    sim.Clock,
			"section": s,
			"patient": p.ID,
		}).Debug("patient rejected")
	}
	sim.trace.RecordAdmission(trace.AdmissionRecord{
		PatientID: p.ID,
		Section:   string(s),
		Clock:     sim.Clock,
		Outcome:   outcome,
	})
	return outcome
}

// reject marks a patient that was never admitted. No exit time is stamped.
func (sim *Simulator) reject(p *Patient) {
	p.Outcome = OutcomeRejected
}

// queueFor returns the waiting line of a section, or nil if it has none.
func (sim *Simulator) queueFor(s Section) PatientQueue {
	switch s {
	case SectionEmergency:
		return sim.emergencyQ
	case SectionLab:
		return sim.labQ
	case SectionOR:
		return sim.orQ
	case SectionGeneral:
		return sim.generalQ
	case SectionICU:
		return sim.icuQ
	case SectionCCU:
		return sim.ccuQ
	default:
		return nil
	}
}
