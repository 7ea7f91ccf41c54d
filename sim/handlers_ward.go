package sim

import "github.com/sirupsen/logrus"

// handleWardDeparture discharges a patient from General, ICU or CCU and
// fills the freed beds from the ward's queue. A departure whose patient was
// evicted during a power outage no longer holds a bed and only triggers
// promotion.
func (sim *Simulator) handleWardDeparture(e *WardDepartureEvent) {
	s, p := e.Section, e.Patient
	w := sim.ledger.Ward(s)
	if s == SectionGeneral || w.IsResident(p) {
		sim.ledger.Release(s, p)
		p.depart(sim.Clock, OutcomeDischarged)
	} else {
		logrus.WithFields(logrus.Fields{
			"time":    sim.Clock,
			"section": s,
			"patient": p.ID,
		}).Debug("departure of evicted patient ignored")
	}
	sim.promoteWard(s)
}

// promoteWard admits queued patients while the ward has free beds. Each
// promoted patient leaves the OR bed it was blocking.
func (sim *Simulator) promoteWard(s Section) {
	q := sim.queueFor(s)
	for !q.IsEmpty() && sim.ledger.HasRoom(s) {
		next := q.Pop()
		sim.ledger.Occupy(s, next)
		sim.Schedule(sim.stayDuration(s), NewWardDepartureEvent(s, next))
		sim.Schedule(sim.cfg.ORCleanup, NewORCleanupCompleteEvent(next))
	}
}

// handleEmergencyDeparture frees the emergency bed of a patient who entered
// the OR. The exit time is stamped later, when the patient leaves a ward.
func (sim *Simulator) handleEmergencyDeparture(e *EmergencyDepartureEvent) {
	sim.ledger.Release(SectionEmergency, e.Patient)
	for !sim.emergencyQ.IsEmpty() && sim.ledger.HasRoom(SectionEmergency) {
		next := sim.emergencyQ.Pop()
		sim.ledger.Occupy(SectionEmergency, next)
		sim.Schedule(sim.cfg.AdminWorkUrgent, NewAdminWorkCompleteEvent(next))
	}
}
