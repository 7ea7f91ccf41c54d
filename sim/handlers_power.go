package sim

import (
	"math"

	"github.com/sirupsen/logrus"

	"github.com/hospital-sim/hospital-sim/sim/trace"
)

// powerWards are resized by outages, in eviction order.
var powerWards = []Section{SectionCCU, SectionICU}

// handlePowerOut shrinks ICU and CCU to PowerShrinkFactor of their current
// capacity (truncated), then evicts residents from the tail of each ward
// while occupancy >= the new capacity.
func (sim *Simulator) handlePowerOut(_ *PowerOutEvent) {
	sim.powerOn = false
	sim.stats.PowerOutages++

	for _, s := range powerWards {
		w := sim.ledger.Ward(s)
		sim.ledger.SetCapacity(s, int(float64(w.Capacity)*sim.cfg.PowerShrinkFactor))
	}
	for _, s := range powerWards {
		sim.evictOverflow(s)
	}
	logrus.WithFields(logrus.Fields{
		"time": sim.Clock,
		"icu":  sim.ledger.Ward(SectionICU).Capacity,
		"ccu":  sim.ledger.Ward(SectionCCU).Capacity,
	}).Info("power out")

	sim.Schedule(sim.nextOutageDelay(), &PowerOutEvent{})
	sim.Schedule(sim.cfg.PowerRestoreDelay, &PowerBackEvent{})
}

func (sim *Simulator) evictOverflow(s Section) {
	w := sim.ledger.Ward(s)
	for w.Occupied >= w.Capacity && w.Occupied > 0 {
		p := sim.ledger.EvictLast(s)
		sim.eviction.Evict(p, sim.Clock)
		sim.stats.Evictions++
		sim.trace.RecordEviction(trace.EvictionRecord{
			PatientID: p.ID,
			Section:   string(s),
			Clock:     sim.Clock,
			Policy:    sim.eviction.Name(),
		})
		logrus.WithFields(logrus.Fields{
			"time":    sim.Clock,
			"section": s,
			"patient": p.ID,
			"policy":  sim.eviction.Name(),
		}).Warn("patient evicted by power outage")
	}
}

// nextOutageDelay places the next outage uniformly inside the month that
// follows the current one.
func (sim *Simulator) nextOutageDelay() float64 {
	month := sim.cfg.MonthLength
	nextMonth := sim.Clock - math.Mod(sim.Clock, month) + month
	at := sim.rng.Uniform(nextMonth, nextMonth+month)
	return at - sim.Clock
}

// handlePowerBack divides ICU and CCU capacity by PowerShrinkFactor
// (truncated) and admits queued patients into the regained beds.
func (sim *Simulator) handlePowerBack(_ *PowerBackEvent) {
	sim.powerOn = true
	for _, s := range powerWards {
		w := sim.ledger.Ward(s)
		sim.ledger.SetCapacity(s, int(float64(w.Capacity)/sim.cfg.PowerShrinkFactor))
	}
	logrus.WithFields(logrus.Fields{
		"time": sim.Clock,
		"icu":  sim.ledger.Ward(SectionICU).Capacity,
		"ccu":  sim.ledger.Ward(SectionCCU).Capacity,
	}).Info("power restored")
	for _, s := range powerWards {
		sim.promoteWard(s)
	}
}
