package sim

import (
	"github.com/sirupsen/logrus"

	"github.com/hospital-sim/hospital-sim/sim/trace"
)

func (sim *Simulator) handleAdminWorkComplete(e *AdminWorkCompleteEvent) {
	p := e.Patient
	if sim.admit(SectionLab, p) == trace.OutcomeAdmitted {
		sim.Schedule(sim.labDuration(), NewLabWorkCompleteEvent(p))
	}
}

func (sim *Simulator) labDuration() float64 {
	return sim.rng.Uniform(sim.cfg.LabMin, sim.cfg.LabMax)
}

func (sim *Simulator) handleLabWorkComplete(e *LabWorkCompleteEvent) {
	p := e.Patient
	sim.ledger.Release(SectionLab, p)

	var wait float64
	if p.Class == ClassUrgent {
		wait = sim.rng.Triangular(sim.cfg.LabResultLow, sim.cfg.LabResultHigh, sim.cfg.LabResultMode)
	} else {
		wait = sim.cfg.PreOpDelay
	}
	sim.Schedule(wait, NewMoveToOREvent(p, false))

	for !sim.labQ.IsEmpty() && sim.ledger.HasRoom(SectionLab) {
		next := sim.labQ.Pop()
		sim.ledger.Occupy(SectionLab, next)
		sim.Schedule(sim.labDuration(), NewLabWorkCompleteEvent(next))
	}
}

// handleMoveToOR admits a patient into an operating room. A first visit
// also releases the bed the patient held upstream: pre-op holding for
// ordinary patients, the emergency room (via a zero-delay departure) for
// urgent ones. A patient turned away waits in the OR queue still holding
// that upstream bed.
func (sim *Simulator) handleMoveToOR(e *MoveToOREvent) {
	p := e.Patient
	if sim.admit(SectionOR, p) != trace.OutcomeAdmitted {
		return
	}
	if !e.Resurgery {
		switch p.Class {
		case ClassOrdinary:
			sim.ledger.Release(SectionPreOp, p)
		case ClassUrgent:
			sim.Schedule(0, NewEmergencyDepartureEvent(p))
		}
	}
	sim.Schedule(sim.operationDuration(p), NewOperationCompleteEvent(p))
}

// operationDuration draws a normal operation time for the patient's
// surgery. Negative draws are clamped to 0 or rejected, per ORDurationPolicy.
func (sim *Simulator) operationDuration(p *Patient) float64 {
	var d float64
	switch p.Surgery {
	case SurgeryComplex:
		d = sim.rng.Normal(sim.cfg.ORComplexMean, sim.cfg.ORComplexStdDev)
	case SurgeryMedium:
		d = sim.rng.Normal(sim.cfg.ORMediumMean, sim.cfg.ORMediumStdDev)
	default:
		d = sim.rng.Normal(sim.cfg.ORSimpleMean, sim.cfg.ORSimpleStdDev)
	}
	if d >= 0 {
		return d
	}
	if sim.cfg.ORDurationPolicy == "strict" {
		violate("operation", string(SectionOR), "negative %s operation duration %v for patient %d", p.Surgery, d, p.ID)
	}
	sim.stats.ClampedDurations++
	logrus.WithFields(logrus.Fields{
		"time":    sim.Clock,
		"patient": p.ID,
		"draw":    d,
	}).Warn("negative operation duration clamped to 0")
	return 0
}

func (sim *Simulator) handleOperationComplete(e *OperationCompleteEvent) {
	p := e.Patient
	switch p.Surgery {
	case SurgeryComplex:
		sim.completeComplex(p)
	case SurgeryMedium:
		u := sim.rng.Draw()
		switch {
		case u < sim.cfg.MediumGeneralProb:
			sim.transferFromOR(SectionGeneral, p)
		case u < sim.cfg.MediumGeneralProb+sim.cfg.MediumICUProb:
			sim.transferFromOR(SectionICU, p)
		default:
			sim.transferFromOR(SectionCCU, p)
		}
	default:
		sim.transferFromOR(SectionGeneral, p)
	}
}

func (sim *Simulator) completeComplex(p *Patient) {
	if sim.rng.Bernoulli(sim.cfg.ResurgeryProb) {
		sim.resurgery[p.ID] = true
		p.Resurgery = true
		sim.stats.Resurgeries++
		logrus.WithFields(logrus.Fields{"time": sim.Clock, "patient": p.ID}).Debug("resurgery")
		sim.Schedule(sim.cfg.ORCleanup, NewResurgeryCleanupEvent(p))
		sim.Schedule(sim.cfg.ORCleanup, NewMoveToOREvent(p, true))
		return
	}
	if _, seen := sim.resurgery[p.ID]; !seen {
		sim.resurgery[p.ID] = false
	}

	if sim.rng.Bernoulli(sim.cfg.ComplexDeathProb) {
		p.depart(sim.Clock, OutcomeDied)
		sim.stats.Deaths++
		sim.Schedule(sim.cfg.ORCleanup, NewORCleanupCompleteEvent(p))
		return
	}
	if p.Comorbid {
		sim.transferFromOR(SectionCCU, p)
	} else {
		sim.transferFromOR(SectionICU, p)
	}
}

// transferFromOR moves a patient into a post-operative ward. When the ward
// is full the patient waits in its queue and keeps the OR bed.
func (sim *Simulator) transferFromOR(s Section, p *Patient) {
	if sim.admit(s, p) != trace.OutcomeAdmitted {
		return
	}
	sim.Schedule(sim.stayDuration(s), NewWardDepartureEvent(s, p))
	sim.Schedule(sim.cfg.ORCleanup, NewORCleanupCompleteEvent(p))
}

func (sim *Simulator) stayDuration(s Section) float64 {
	switch s {
	case SectionICU:
		return sim.rng.Exponential(sim.cfg.ICUStayRate)
	case SectionCCU:
		return sim.rng.Exponential(sim.cfg.CCUStayRate)
	default:
		return sim.rng.Exponential(sim.cfg.GeneralStayRate)
	}
}

// handleORCleanupComplete frees the operating room and hands it to the next
// queued patient through a zero-delay Move-to-OR. A resurgery cleanup leaves
// the queue alone: the bed goes back to the same patient.
func (sim *Simulator) handleORCleanupComplete(e *ORCleanupCompleteEvent) {
	sim.ledger.Release(SectionOR, e.Patient)
	if e.Resurgery {
		return
	}
	if !sim.orQ.IsEmpty() && sim.ledger.HasRoom(SectionOR) {
		next := sim.orQ.Pop()
		sim.Schedule(0, NewMoveToOREvent(next, next.Resurgery))
	}
}
