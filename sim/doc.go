// Package sim provides the discrete-event simulation engine for hospital
// patient flow.
//
// # Reading Guide
//
// Start with these three files to understand the simulation kernel:
//   - patient.go: Patient entity (class, surgery, comorbidity, enter/exit times)
//   - event.go: Event types that drive the simulation (arrivals, service completions, outages)
//   - simulator.go: The event loop, the replication entry point and its result
//
// Then the state the handlers mutate:
//   - ledger.go: per-section capacity and occupancy, ICU/CCU resident tracking
//   - queue.go: FIFO and priority (urgent before ordinary) waiting lines
//   - admission.go: the admit / queue / reject policy shared by every section
//   - handlers_*.go: one handler per event kind
//
// # Determinism
//
// A replication draws every variate from one Generator (rng.go) seeded by
// Config.Seed, and the EventQueue breaks time ties by scheduling sequence.
// Two runs with the same Config therefore dispatch the same events in the
// same order and emit the same notifications.
//
// # Observing a run
//
// Every occupancy and queue-length change emits a Notification. They are
// buffered while a handler runs and delivered to each Observer once it
// returns. sim/analytics consumes them after the run; sim/trace records
// admission decisions and dispatched events when enabled.
//
// # Failures
//
// Rejections are modeled outcomes, counted in Stats. Broken invariants
// (negative occupancy, popping an empty queue, invalid distribution
// parameters) abort the replication with an *InvariantError returned from
// Simulator.Run. Bad configuration is reported as *ConfigError before any
// event is scheduled.
package sim
