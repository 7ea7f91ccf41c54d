// sim/simulator.go
//
// The Simulator owns everything one replication mutates: the clock, the
// event queue, the ledger, the queues, the generator and the patient ledger.
// Nothing here is shared between replications.

package sim

import (
	"fmt"
	"math"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/hospital-sim/hospital-sim/sim/trace"
)

// Queue names used in notifications.
const (
	QueueEmergency = "emergency_queue"
	QueueLab       = "lab_queue"
	QueueOR        = "or_queue"
	QueueGeneral   = "general_queue"
	QueueICU       = "icu_queue"
	QueueCCU       = "ccu_queue"
)

// QueueNames lists every queue in report order.
var QueueNames = []string{QueueEmergency, QueueLab, QueueOR, QueueGeneral, QueueICU, QueueCCU}

// Stats counts modeled outcomes of one replication.
type Stats struct {
	EventsDispatched   int                  `json:"events_dispatched"`
	Arrivals           map[PatientClass]int `json:"arrivals"`
	Queued             map[Section]int      `json:"queued"`
	Rejections         map[Section]int      `json:"rejections"`
	MassCasualtyEvents int                  `json:"mass_casualty_events"`
	Deaths             int                  `json:"deaths"`
	Resurgeries        int                  `json:"resurgeries"`
	Evictions          int                  `json:"evictions"`
	PowerOutages       int                  `json:"power_outages"`
	ClampedDurations   int                  `json:"clamped_durations"`
}

func newStats() Stats {
	return Stats{
		Arrivals:   make(map[PatientClass]int),
		Queued:     make(map[Section]int),
		Rejections: make(map[Section]int),
	}
}

// TotalRejections sums rejections over every section.
func (s Stats) TotalRejections() int {
	n := 0
	for _, v := range s.Rejections {
		n += v
	}
	return n
}

// EmergencyFullSample records whether the emergency room had no free bed at
// the instant an urgent patient asked for one.
type EmergencyFullSample struct {
	Time float64 `json:"time"`
	Full bool    `json:"full"`
}

// Simulator is the discrete-event engine of one replication.
type Simulator struct {
	Clock   float64
	Horizon float64

	cfg      Config
	events   *EventQueue
	nextSeq  uint64
	rng      *Generator
	ledger   *Ledger
	notes    notifier
	eviction EvictionPolicy
	trace    *trace.SimulationTrace

	emergencyQ *PriorityQueue
	labQ       *PriorityQueue
	orQ        *PriorityQueue
	generalQ   *FIFOQueue
	icuQ       *FIFOQueue
	ccuQ       *FIFOQueue

	powerOn bool

	patients      []*Patient // in id order
	nextPatientID int

	stats         Stats
	emergencyFull []EmergencyFullSample
	resurgery     map[int]bool // complex patients only: did they return to the OR
}

// NewSimulator validates cfg and builds an idle simulator. Observers receive
// the notifications of each event once its handler returns. No events are
// scheduled until Start is called.
func NewSimulator(cfg Config, observers ...Observer) (*Simulator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	sim := &Simulator{
		Horizon:   cfg.Horizon,
		cfg:       cfg,
		events:    NewEventQueue(),
		rng:       NewGenerator(NewSimulationKey(cfg.Seed)),
		eviction:  NewEvictionPolicy(cfg.EvictionPolicy),
		trace:     trace.NewSimulationTrace(trace.TraceConfig{Level: trace.TraceLevel(cfg.TraceLevel)}),
		powerOn:   true,
		stats:     newStats(),
		resurgery: make(map[int]bool),
	}
	sim.notes.observers = append(sim.notes.observers, observers...)

	sim.ledger = NewLedger(cfg.Capacities(), func(s Section, occupied int) {
		sim.notes.emit(KindOccupancy, string(s), sim.Clock, occupied)
	})
	onQueue := func(name string, length int) {
		sim.notes.emit(KindQueue, name, sim.Clock, length)
	}
	sim.emergencyQ = NewPriorityQueue(QueueEmergency, cfg.AmbulanceBuffer, onQueue)
	sim.labQ = NewPriorityQueue(QueueLab, Unbounded, onQueue)
	sim.orQ = NewPriorityQueue(QueueOR, Unbounded, onQueue)
	sim.generalQ = NewFIFOQueue(QueueGeneral, Unbounded, onQueue)
	sim.icuQ = NewFIFOQueue(QueueICU, Unbounded, onQueue)
	sim.ccuQ = NewFIFOQueue(QueueCCU, Unbounded, onQueue)
	return sim, nil
}

// Start schedules the first urgent arrival, the first ordinary arrival and
// the first power outage, in that order.
func (sim *Simulator) Start() {
	sim.Schedule(sim.rng.Exponential(sim.cfg.UrgentArrivalRate), &UrgentArrivalEvent{})
	sim.Schedule(sim.rng.Exponential(sim.cfg.OrdinaryArrivalRate), &OrdinaryArrivalEvent{})
	sim.Schedule(sim.rng.Uniform(0, sim.cfg.FirstOutageWindow), &PowerOutEvent{})
}

// Schedule enqueues ev to fire delay minutes from now. delay = 0 is an
// immediate hand-off that still runs after the current handler returns.
func (sim *Simulator) Schedule(delay float64, ev Event) {
	if delay < 0 || math.IsNaN(delay) || math.IsInf(delay, 0) {
		violate("schedule", ev.Kind().String(), "delay must be a finite value >= 0, got %v", delay)
	}
	ev.stamp(sim.Clock+delay, sim.nextSeq)
	sim.nextSeq++
	sim.events.Schedule(ev)
}

// Run dispatches events in (time, sequence) order until the queue is empty
// or the next event lies beyond the horizon. An invariant violation aborts
// the replication and is returned as *InvariantError.
func (sim *Simulator) Run() (err error) {
	defer func() {
		if r := recover(); r != nil {
			iv, ok := r.(*InvariantError)
			if !ok {
				panic(r)
			}
			iv.Time = sim.Clock
			logrus.WithFields(logrus.Fields{
				"time":     sim.Clock,
				"op":       iv.Op,
				"resource": iv.Resource,
			}).Errorf("replication aborted: %s", iv.Detail)
			err = iv
		}
	}()

	for sim.events.Len() > 0 {
		if sim.events.Peek().Timestamp() > sim.Horizon {
			break
		}
		ev := sim.events.PopNext()
		if ev.Timestamp() < sim.Clock {
			violate("run", "clock", "clock went backwards: %v < %v", ev.Timestamp(), sim.Clock)
		}
		sim.Clock = ev.Timestamp()
		sim.stats.EventsDispatched++
		sim.trace.RecordDispatch(trace.DispatchRecord{
			Seq:       ev.Seq(),
			Clock:     sim.Clock,
			Kind:      ev.Kind().String(),
			PatientID: ev.PatientID(),
		})
		logrus.WithFields(logrus.Fields{
			"time":    sim.Clock,
			"kind":    ev.Kind(),
			"patient": ev.PatientID(),
		}).Debug("dispatch")

		ev.Execute(sim)
		sim.ledger.CheckBounds()
		sim.notes.flush()
	}
	logrus.Infof("replication seed=%d finished at t=%.2f after %d events (%d pending)",
		sim.cfg.Seed, sim.Clock, sim.stats.EventsDispatched, sim.events.Len())
	return nil
}

// Pending returns the number of events left in the queue.
func (sim *Simulator) Pending() int {
	return sim.events.Len()
}

// Ledger exposes the resource ledger for inspection.
func (sim *Simulator) Ledger() *Ledger {
	return sim.ledger
}

// Generator exposes the replication's variate generator.
func (sim *Simulator) Generator() *Generator {
	return sim.rng
}

// PowerOn reports the current power state.
func (sim *Simulator) PowerOn() bool {
	return sim.powerOn
}

// Stats returns a copy of the outcome counters.
func (sim *Simulator) Stats() Stats {
	out := sim.stats
	out.Arrivals = copyMap(sim.stats.Arrivals)
	out.Queued = copyMap(sim.stats.Queued)
	out.Rejections = copyMap(sim.stats.Rejections)
	return out
}

// Trace returns the replication trace, or nil when tracing is off.
func (sim *Simulator) Trace() *trace.SimulationTrace {
	return sim.trace
}

// Patients returns read-only snapshots of every patient created so far.
func (sim *Simulator) Patients() []Patient {
	out := make([]Patient, len(sim.patients))
	for i, p := range sim.patients {
		out[i] = p.snapshot()
	}
	return out
}

// QueueLength returns the current length of a named queue.
func (sim *Simulator) QueueLength(name string) int {
	for _, q := range []PatientQueue{sim.emergencyQ, sim.labQ, sim.orQ, sim.generalQ, sim.icuQ, sim.ccuQ} {
		if q.Name() == name {
			return q.Len()
		}
	}
	panic(fmt.Sprintf("QueueLength: unknown queue %q", name))
}

// newPatient registers a patient entering the system now.
func (sim *Simulator) newPatient(class PatientClass, surgery Surgery, comorbid bool) *Patient {
	sim.nextPatientID++
	p := &Patient{
		ID:        sim.nextPatientID,
		Class:     class,
		Surgery:   surgery,
		Comorbid:  comorbid,
		EnterTime: sim.Clock,
		Outcome:   OutcomeActive,
	}
	sim.patients = append(sim.patients, p)
	sim.stats.Arrivals[class]++
	return p
}

// Replication is everything one replication hands to the analytics layer.
type Replication struct {
	Seed          int64                  `json:"seed"`
	Horizon       float64                `json:"horizon"`
	EndClock      float64                `json:"end_clock"`
	Patients      []Patient              `json:"patients"`
	Notifications []Notification         `json:"notifications"`
	EmergencyFull []EmergencyFullSample  `json:"emergency_full"`
	Resurgery     map[int]bool           `json:"resurgery"`
	Stats         Stats                  `json:"stats"`
	Trace         *trace.SimulationTrace `json:"-"`
}

// FinalizedPatients returns only patients with an exit time.
func (r *Replication) FinalizedPatients() []Patient {
	out := make([]Patient, 0, len(r.Patients))
	for _, p := range r.Patients {
		if p.HasExited() {
			out = append(out, p)
		}
	}
	return out
}

// RunOneReplication runs a full replication for seed up to horizon, with all
// other parameters taken from cfg.
func RunOneReplication(seed int64, horizon float64, cfg Config) (*Replication, error) {
	cfg.Seed = seed
	cfg.Horizon = horizon
	log := &NotificationLog{}
	sim, err := NewSimulator(cfg, log)
	if err != nil {
		return nil, err
	}
	sim.Start()
	if err := sim.Run(); err != nil {
		return nil, fmt.Errorf("replication seed=%d: %w", seed, err)
	}
	return sim.result(log.Entries()), nil
}

func (sim *Simulator) result(notes []Notification) *Replication {
	resurgery := make(map[int]bool, len(sim.resurgery))
	for id, v := range sim.resurgery {
		resurgery[id] = v
	}
	return &Replication{
		Seed:          sim.cfg.Seed,
		Horizon:       sim.Horizon,
		EndClock:      sim.Clock,
		Patients:      sim.Patients(),
		Notifications: notes,
		EmergencyFull: append([]EmergencyFullSample(nil), sim.emergencyFull...),
		Resurgery:     resurgery,
		Stats:         sim.Stats(),
		Trace:         sim.trace,
	}
}

// ResurgeryIDs returns the ids of complex patients with a recorded resurgery
// outcome, sorted.
func (r *Replication) ResurgeryIDs() []int {
	ids := make([]int, 0, len(r.Resurgery))
	for id := range r.Resurgery {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

func copyMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
