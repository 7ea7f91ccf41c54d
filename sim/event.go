package sim

// EventKind enumerates every event the simulator can dispatch.
type EventKind int

const (
	KindUrgentArrival EventKind = iota
	KindOrdinaryArrival
	KindAdminWorkComplete
	KindLabWorkComplete
	KindMoveToOR
	KindOperationComplete
	KindORCleanupComplete
	KindGeneralDeparture
	KindICUDeparture
	KindCCUDeparture
	KindEmergencyDeparture
	KindPowerOut
	KindPowerBack
)

var eventKindNames = [...]string{
	KindUrgentArrival:      "urgent_arrival",
	KindOrdinaryArrival:    "ordinary_arrival",
	KindAdminWorkComplete:  "admin_work_complete",
	KindLabWorkComplete:    "lab_work_complete",
	KindMoveToOR:           "move_to_or",
	KindOperationComplete:  "operation_complete",
	KindORCleanupComplete:  "or_cleanup_complete",
	KindGeneralDeparture:   "general_departure",
	KindICUDeparture:       "icu_departure",
	KindCCUDeparture:       "ccu_departure",
	KindEmergencyDeparture: "emergency_departure",
	KindPowerOut:           "power_out",
	KindPowerBack:          "power_back",
}

func (k EventKind) String() string {
	if k < 0 || int(k) >= len(eventKindNames) {
		return "unknown"
	}
	return eventKindNames[k]
}

// Event is a scheduled simulation event. The set of implementations is
// closed: stamp is unexported, so only this package can add kinds.
type Event interface {
	Timestamp() float64
	Seq() uint64
	Kind() EventKind
	PatientID() int
	Execute(sim *Simulator)
	stamp(at float64, seq uint64)
}

// baseEvent carries the scheduling fields shared by every event.
type baseEvent struct {
	time float64
	seq  uint64
}

func (e *baseEvent) Timestamp() float64 { return e.time }

func (e *baseEvent) Seq() uint64 { return e.seq }

// PatientID returns 0 for events that do not concern a single patient.
func (e *baseEvent) PatientID() int { return 0 }

func (e *baseEvent) stamp(at float64, seq uint64) {
	e.time = at
	e.seq = seq
}

// patientEvent is the base for events acting on one patient.
type patientEvent struct {
	baseEvent
	Patient *Patient
}

func (e *patientEvent) PatientID() int {
	if e.Patient == nil {
		return 0
	}
	return e.Patient.ID
}

func onPatient(p *Patient) patientEvent {
	if p == nil {
		panic("event: patient must not be nil")
	}
	return patientEvent{Patient: p}
}

// UrgentArrivalEvent brings one urgent patient, possibly preceded by a
// mass-casualty batch, to the emergency room.
type UrgentArrivalEvent struct{ baseEvent }

func (e *UrgentArrivalEvent) Kind() EventKind        { return KindUrgentArrival }
func (e *UrgentArrivalEvent) Execute(sim *Simulator) { sim.handleUrgentArrival(e) }

// OrdinaryArrivalEvent brings one elective patient to the pre-operative ward.
type OrdinaryArrivalEvent struct{ baseEvent }

func (e *OrdinaryArrivalEvent) Kind() EventKind        { return KindOrdinaryArrival }
func (e *OrdinaryArrivalEvent) Execute(sim *Simulator) { sim.handleOrdinaryArrival(e) }

// AdminWorkCompleteEvent ends admission paperwork and sends the patient to the lab.
type AdminWorkCompleteEvent struct{ patientEvent }

func NewAdminWorkCompleteEvent(p *Patient) *AdminWorkCompleteEvent {
	return &AdminWorkCompleteEvent{onPatient(p)}
}

func (e *AdminWorkCompleteEvent) Kind() EventKind        { return KindAdminWorkComplete }
func (e *AdminWorkCompleteEvent) Execute(sim *Simulator) { sim.handleAdminWorkComplete(e) }

// LabWorkCompleteEvent frees a lab bed once tests are done.
type LabWorkCompleteEvent struct{ patientEvent }

func NewLabWorkCompleteEvent(p *Patient) *LabWorkCompleteEvent {
	return &LabWorkCompleteEvent{onPatient(p)}
}

func (e *LabWorkCompleteEvent) Kind() EventKind        { return KindLabWorkComplete }
func (e *LabWorkCompleteEvent) Execute(sim *Simulator) { sim.handleLabWorkComplete(e) }

// MoveToOREvent asks for an operating room. Resurgery skips the
// emergency/pre-op bookkeeping because the patient holds no such bed.
type MoveToOREvent struct {
	patientEvent
	Resurgery bool
}

func NewMoveToOREvent(p *Patient, resurgery bool) *MoveToOREvent {
	return &MoveToOREvent{patientEvent: onPatient(p), Resurgery: resurgery}
}

func (e *MoveToOREvent) Kind() EventKind        { return KindMoveToOR }
func (e *MoveToOREvent) Execute(sim *Simulator) { sim.handleMoveToOR(e) }

// OperationCompleteEvent routes a patient out of surgery.
type OperationCompleteEvent struct{ patientEvent }

func NewOperationCompleteEvent(p *Patient) *OperationCompleteEvent {
	return &OperationCompleteEvent{onPatient(p)}
}

func (e *OperationCompleteEvent) Kind() EventKind        { return KindOperationComplete }
func (e *OperationCompleteEvent) Execute(sim *Simulator) { sim.handleOperationComplete(e) }

// ORCleanupCompleteEvent frees the operating room a patient used. When
// Resurgery is set the patient's own Move-to-OR takes the bed back, so the
// OR queue is not promoted.
type ORCleanupCompleteEvent struct {
	patientEvent
	Resurgery bool
}

func NewORCleanupCompleteEvent(p *Patient) *ORCleanupCompleteEvent {
	return &ORCleanupCompleteEvent{patientEvent: onPatient(p)}
}

func NewResurgeryCleanupEvent(p *Patient) *ORCleanupCompleteEvent {
	return &ORCleanupCompleteEvent{patientEvent: onPatient(p), Resurgery: true}
}

func (e *ORCleanupCompleteEvent) Kind() EventKind        { return KindORCleanupComplete }
func (e *ORCleanupCompleteEvent) Execute(sim *Simulator) { sim.handleORCleanupComplete(e) }

// WardDepartureEvent discharges a patient from General, ICU or CCU.
type WardDepartureEvent struct {
	patientEvent
	Section Section
}

func NewWardDepartureEvent(s Section, p *Patient) *WardDepartureEvent {
	switch s {
	case SectionGeneral, SectionICU, SectionCCU:
	default:
		panic("NewWardDepartureEvent: section must be general, icu or ccu, got " + string(s))
	}
	return &WardDepartureEvent{patientEvent: onPatient(p), Section: s}
}

func (e *WardDepartureEvent) Kind() EventKind {
	switch e.Section {
	case SectionICU:
		return KindICUDeparture
	case SectionCCU:
		return KindCCUDeparture
	default:
		return KindGeneralDeparture
	}
}

func (e *WardDepartureEvent) Execute(sim *Simulator) { sim.handleWardDeparture(e) }

// EmergencyDepartureEvent frees the emergency bed of a patient who went to surgery.
type EmergencyDepartureEvent struct{ patientEvent }

func NewEmergencyDepartureEvent(p *Patient) *EmergencyDepartureEvent {
	return &EmergencyDepartureEvent{onPatient(p)}
}

func (e *EmergencyDepartureEvent) Kind() EventKind        { return KindEmergencyDeparture }
func (e *EmergencyDepartureEvent) Execute(sim *Simulator) { sim.handleEmergencyDeparture(e) }

// PowerOutEvent shrinks ICU and CCU capacity and evicts the overflow.
type PowerOutEvent struct{ baseEvent }

func (e *PowerOutEvent) Kind() EventKind        { return KindPowerOut }
func (e *PowerOutEvent) Execute(sim *Simulator) { sim.handlePowerOut(e) }

// PowerBackEvent restores ICU and CCU capacity.
type PowerBackEvent struct{ baseEvent }

func (e *PowerBackEvent) Kind() EventKind        { return KindPowerBack }
func (e *PowerBackEvent) Execute(sim *Simulator) { sim.handlePowerBack(e) }
