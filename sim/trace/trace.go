package trace

// TraceLevel controls the verbosity of replication tracing.
type TraceLevel string

const (
	// TraceLevelNone disables tracing (zero overhead).
	TraceLevelNone TraceLevel = "none"
	// TraceLevelDecisions captures admission and eviction decisions.
	TraceLevelDecisions TraceLevel = "decisions"
	// TraceLevelEvents additionally captures every dispatched event.
	TraceLevelEvents TraceLevel = "events"
)

// validTraceLevels maps accepted trace level strings.
var validTraceLevels = map[TraceLevel]bool{
	TraceLevelNone:      true,
	TraceLevelDecisions: true,
	TraceLevelEvents:    true,
	"":                  true, // empty defaults to none
}

// IsValidTraceLevel returns true if the given level string is a recognized trace level.
func IsValidTraceLevel(level string) bool {
	return validTraceLevels[TraceLevel(level)]
}

// TraceConfig controls trace collection behavior.
type TraceConfig struct {
	Level TraceLevel
}

// SimulationTrace collects decision and dispatch records during one replication.
type SimulationTrace struct {
	Config     TraceConfig
	Admissions []AdmissionRecord
	Evictions  []EvictionRecord
	Dispatches []DispatchRecord
}

// NewSimulationTrace creates a SimulationTrace ready for recording.
// Returns nil for TraceLevelNone; every Record method is nil-safe.
func NewSimulationTrace(config TraceConfig) *SimulationTrace {
	if config.Level == "" || config.Level == TraceLevelNone {
		return nil
	}
	return &SimulationTrace{
		Config:     config,
		Admissions: make([]AdmissionRecord, 0),
		Evictions:  make([]EvictionRecord, 0),
		Dispatches: make([]DispatchRecord, 0),
	}
}

// RecordAdmission appends an admission decision record.
func (st *SimulationTrace) RecordAdmission(record AdmissionRecord) {
	if st == nil {
		return
	}
	st.Admissions = append(st.Admissions, record)
}

// RecordEviction appends a capacity-shrink eviction record.
func (st *SimulationTrace) RecordEviction(record EvictionRecord) {
	if st == nil {
		return
	}
	st.Evictions = append(st.Evictions, record)
}

// RecordDispatch appends a dispatched-event record. Ignored below TraceLevelEvents.
func (st *SimulationTrace) RecordDispatch(record DispatchRecord) {
	if st == nil || st.Config.Level != TraceLevelEvents {
		return
	}
	st.Dispatches = append(st.Dispatches, record)
}
