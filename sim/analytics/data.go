// Package analytics turns the output of independent replications into
// per-frame ensemble averages and overall confidence intervals.
//
// It consumes only what the engine already produces: the notification log,
// the finalized patients, the emergency-full samples and the resurgery
// outcomes of each sim.Replication.
package analytics

import (
	"math"
	"sort"

	"github.com/hospital-sim/hospital-sim/sim"
)

// Series maps a simulated time to an observed value. A later observation at
// the same instant overwrites the earlier one.
type Series map[float64]float64

// Times returns the observation times in increasing order.
func (s Series) Times() []float64 {
	ts := make([]float64, 0, len(s))
	for t := range s {
		ts = append(ts, t)
	}
	sort.Float64s(ts)
	return ts
}

// Wait is the sojourn of one finalized patient.
type Wait struct {
	Enter float64 `json:"enter"`
	Stay  float64 `json:"stay"`
}

// ReplicationData is the time-keyed view of one replication.
type ReplicationData struct {
	Seed          int64             `json:"seed"`
	Horizon       float64           `json:"horizon"`
	Waits         []Wait            `json:"waits"`
	EmergencyFull Series            `json:"-"`
	Resurgery     Series            `json:"-"`
	Queues        map[string]Series `json:"-"`
	Occupancy     map[string]Series `json:"-"`
}

// FromReplication replays the notification log of r into per-resource
// series. Patients without an exit time are skipped.
func FromReplication(r *sim.Replication) *ReplicationData {
	d := &ReplicationData{
		Seed:          r.Seed,
		Horizon:       r.Horizon,
		EmergencyFull: Series{},
		Resurgery:     Series{},
		Queues:        make(map[string]Series, len(sim.QueueNames)),
		Occupancy:     make(map[string]Series, len(sim.Sections)),
	}
	for _, name := range sim.QueueNames {
		d.Queues[name] = Series{}
	}
	for _, s := range sim.Sections {
		d.Occupancy[string(s)] = Series{}
	}

	for _, n := range r.Notifications {
		switch n.Kind {
		case sim.KindQueue:
			if series, ok := d.Queues[n.Name]; ok {
				series[n.Time] = float64(n.Value)
			}
		case sim.KindOccupancy:
			if series, ok := d.Occupancy[n.Name]; ok {
				series[n.Time] = float64(n.Value)
			}
		}
	}

	for _, sample := range r.EmergencyFull {
		d.EmergencyFull[sample.Time] = boolValue(sample.Full)
	}

	enter := make(map[int]float64, len(r.Patients))
	for _, p := range r.Patients {
		enter[p.ID] = p.EnterTime
	}
	for _, id := range r.ResurgeryIDs() {
		if t, ok := enter[id]; ok {
			d.Resurgery[t] = boolValue(r.Resurgery[id])
		}
	}

	for _, p := range r.FinalizedPatients() {
		stay, _ := p.StayLength()
		d.Waits = append(d.Waits, Wait{Enter: p.EnterTime, Stay: stay})
	}
	return d
}

func boolValue(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

func frameIndex(t, frameLength float64) int {
	return int(math.Floor(t / frameLength))
}
