package sim

import (
	"github.com/sirupsen/logrus"

	"github.com/hospital-sim/hospital-sim/sim/trace"
)

// drawSurgery consumes one draw: simple, medium, else complex.
func (sim *Simulator) drawSurgery() Surgery {
	u := sim.rng.Draw()
	switch {
	case u <= sim.cfg.SimpleSurgeryProb:
		return SurgerySimple
	case u <= sim.cfg.SimpleSurgeryProb+sim.cfg.MediumSurgeryProb:
		return SurgeryMedium
	default:
		return SurgeryComplex
	}
}

// drawComorbidity consumes one draw.
func (sim *Simulator) drawComorbidity() bool {
	return sim.rng.Draw() >= 1-sim.cfg.ComorbidityProb
}

func (sim *Simulator) handleUrgentArrival(_ *UrgentArrivalEvent) {
	if sim.rng.Bernoulli(sim.cfg.MassCasualtyProb) {
		size := sim.rng.IntN(sim.cfg.MassCasualtyMin, sim.cfg.MassCasualtyMax)
		sim.stats.MassCasualtyEvents++
		logrus.WithFields(logrus.Fields{"time": sim.Clock, "size": size}).Info("mass casualty event")
		sim.admitMassCasualty(size)
	}

	surgery := sim.drawSurgery()
	comorbid := sim.drawComorbidity()
	sim.admitUrgent(sim.newPatient(ClassUrgent, surgery, comorbid))

	sim.Schedule(sim.rng.Exponential(sim.cfg.UrgentArrivalRate), &UrgentArrivalEvent{})
}

// admitMassCasualty admits batch members one at a time. The first rejection
// drops the rest of the batch without creating them.
func (sim *Simulator) admitMassCasualty(size int) {
	for i := 0; i < size; i++ {
		p := sim.newPatient(ClassUrgent, sim.drawSurgery(), false)
		p.MassCasualty = true
		if !sim.admitUrgent(p) {
			if rest := size - i - 1; rest > 0 {
				sim.stats.Rejections[SectionEmergency] += rest
				logrus.WithFields(logrus.Fields{"time": sim.Clock, "dropped": rest}).Debug("mass casualty remainder rejected")
			}
			return
		}
	}
}

// admitUrgent applies emergency admission and reports whether the patient
// got a bed or a place in the ambulance buffer.
func (sim *Simulator) admitUrgent(p *Patient) bool {
	sim.emergencyFull = append(sim.emergencyFull, EmergencyFullSample{
		Time: sim.Clock,
		Full: !sim.ledger.HasRoom(SectionEmergency),
	})
	switch sim.admit(SectionEmergency, p) {
	case trace.OutcomeAdmitted:
		sim.Schedule(sim.cfg.AdminWorkUrgent, NewAdminWorkCompleteEvent(p))
		return true
	case trace.OutcomeQueued:
		return true
	default:
		sim.reject(p)
		return false
	}
}

func (sim *Simulator) handleOrdinaryArrival(_ *OrdinaryArrivalEvent) {
	surgery := sim.drawSurgery()
	comorbid := sim.drawComorbidity()
	p := sim.newPatient(ClassOrdinary, surgery, comorbid)

	if sim.admit(SectionPreOp, p) == trace.OutcomeAdmitted {
		sim.Schedule(sim.cfg.AdminWorkOrdinary, NewAdminWorkCompleteEvent(p))
	} else {
		sim.reject(p)
	}

	sim.Schedule(sim.rng.Exponential(sim.cfg.OrdinaryArrivalRate), &OrdinaryArrivalEvent{})
}
