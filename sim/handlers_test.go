package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pendingOfKind returns the queued events of one kind.
func pendingOfKind(sim *Simulator, kind EventKind) []Event {
	var out []Event
	for _, ev := range sim.events.events {
		if ev.Kind() == kind {
			out = append(out, ev)
		}
	}
	return out
}

func runUntil(t *testing.T, sim *Simulator, horizon float64) {
	t.Helper()
	sim.Horizon = horizon
	require.NoError(t, sim.Run())
}

func TestUrgentArrival_MassCasualty_FirstRejectionDropsRemainder(t *testing.T) {
	// GIVEN a certain mass casualty of three, one emergency bed and no buffer
	cfg := quietConfig()
	cfg.MassCasualtyProb = 1
	cfg.MassCasualtyMin = 3
	cfg.MassCasualtyMax = 3
	cfg.EmergencyCapacity = 1
	cfg.AmbulanceBuffer = 0
	sim, _ := newTestSimulator(t, cfg)
	sim.Schedule(0, &UrgentArrivalEvent{})

	// WHEN the arrival is handled
	runUntil(t, sim, 0)

	// THEN the first batch member is admitted, the second rejected, the third
	// never created, and the principal patient rejected too
	ps := sim.Patients()
	require.Len(t, ps, 3)
	assert.True(t, ps[0].MassCasualty)
	assert.True(t, ps[1].MassCasualty)
	assert.False(t, ps[2].MassCasualty)
	assert.False(t, ps[0].Comorbid)
	assert.False(t, ps[1].Comorbid)
	assert.Equal(t, OutcomeActive, ps[0].Outcome)
	assert.Equal(t, OutcomeRejected, ps[1].Outcome)
	assert.Equal(t, OutcomeRejected, ps[2].Outcome)

	stats := sim.Stats()
	assert.Equal(t, 1, stats.MassCasualtyEvents)
	assert.Equal(t, 3, stats.Rejections[SectionEmergency])
	assert.Equal(t, 3, stats.Arrivals[ClassUrgent])
}

func TestOrdinaryArrival_FullPreOp_Rejected(t *testing.T) {
	cfg := quietConfig()
	cfg.PreOpCapacity = 0
	sim, _ := newTestSimulator(t, cfg)
	sim.Schedule(0, &OrdinaryArrivalEvent{})

	runUntil(t, sim, 0)

	ps := sim.Patients()
	require.Len(t, ps, 1)
	assert.Equal(t, OutcomeRejected, ps[0].Outcome)
	assert.Equal(t, 1, sim.Stats().Rejections[SectionPreOp])
	assert.Empty(t, pendingOfKind(sim, KindAdminWorkComplete))
}

func TestOrdinaryArrival_AdmitsToPreOpAndLab(t *testing.T) {
	// GIVEN an ordinary arrival at t=0
	sim, _ := newTestSimulator(t, quietConfig())
	sim.Schedule(0, &OrdinaryArrivalEvent{})

	// WHEN admin work completes
	runUntil(t, sim, 10)

	// THEN the patient holds a pre-op bed and a lab bed
	assert.Equal(t, 1, sim.Ledger().Ward(SectionPreOp).Occupied)
	assert.Equal(t, 1, sim.Ledger().Ward(SectionLab).Occupied)
	labs := pendingOfKind(sim, KindLabWorkComplete)
	require.Len(t, labs, 1)
	assert.GreaterOrEqual(t, labs[0].Timestamp(), 10+28.0)
	assert.LessOrEqual(t, labs[0].Timestamp(), 10+32.0)
}

func TestLabWorkComplete_RoutesByClassAndPromotesQueue(t *testing.T) {
	// GIVEN an urgent patient in the lab and an ordinary one waiting
	sim, _ := newTestSimulator(t, quietConfig())
	urgent := sim.newPatient(ClassUrgent, SurgerySimple, false)
	ordinary := sim.newPatient(ClassOrdinary, SurgerySimple, false)
	sim.ledger.Occupy(SectionEmergency, urgent)
	sim.ledger.Occupy(SectionPreOp, ordinary)
	sim.ledger.Occupy(SectionLab, urgent)
	sim.labQ.Push(ordinary)
	sim.Schedule(0, NewLabWorkCompleteEvent(urgent))

	// WHEN the urgent patient's tests complete
	runUntil(t, sim, 0)

	// THEN the waiting patient takes the freed bed
	assert.Equal(t, 1, sim.Ledger().Ward(SectionLab).Occupied)
	assert.Equal(t, 0, sim.labQ.Len())
	labs := pendingOfKind(sim, KindLabWorkComplete)
	require.Len(t, labs, 1)
	assert.Equal(t, ordinary.ID, labs[0].PatientID())

	// THEN the urgent patient moves to the OR after a triangular lab-result wait
	moves := pendingOfKind(sim, KindMoveToOR)
	require.Len(t, moves, 1)
	assert.Equal(t, urgent.ID, moves[0].PatientID())
	assert.GreaterOrEqual(t, moves[0].Timestamp(), 5.0)
	assert.LessOrEqual(t, moves[0].Timestamp(), 100.0)

	// WHEN the ordinary patient's tests complete
	runUntil(t, sim, labs[0].Timestamp())

	// THEN it waits the fixed pre-OR delay
	var ordinaryMove Event
	for _, ev := range pendingOfKind(sim, KindMoveToOR) {
		if ev.PatientID() == ordinary.ID {
			ordinaryMove = ev
		}
	}
	require.NotNil(t, ordinaryMove)
	assert.InDelta(t, labs[0].Timestamp()+2880, ordinaryMove.Timestamp(), 1e-9)
}

func TestMoveToOR_Ordinary_ReleasesPreOpBed(t *testing.T) {
	sim, _ := newTestSimulator(t, quietConfig())
	p := sim.newPatient(ClassOrdinary, SurgerySimple, false)
	sim.ledger.Occupy(SectionPreOp, p)
	sim.Schedule(0, NewMoveToOREvent(p, false))

	runUntil(t, sim, 0)

	assert.Equal(t, 0, sim.Ledger().Ward(SectionPreOp).Occupied)
	assert.Equal(t, 1, sim.Ledger().Ward(SectionOR).Occupied)
	assert.Len(t, pendingOfKind(sim, KindOperationComplete), 1)
}

func TestMoveToOR_Urgent_FreesEmergencyBedImmediately(t *testing.T) {
	// GIVEN an urgent patient on an emergency bed with another waiting for it
	sim, _ := newTestSimulator(t, quietConfig())
	p := sim.newPatient(ClassUrgent, SurgeryMedium, false)
	waiting := sim.newPatient(ClassUrgent, SurgerySimple, false)
	sim.ledger.Occupy(SectionEmergency, p)
	for sim.ledger.HasRoom(SectionEmergency) {
		sim.ledger.Occupy(SectionEmergency, sim.newPatient(ClassUrgent, SurgerySimple, false))
	}
	sim.emergencyQ.Push(waiting)
	sim.Schedule(0, NewMoveToOREvent(p, false))

	// WHEN the patient enters the OR
	runUntil(t, sim, 0)

	// THEN the zero-delay departure handed the bed to the waiting patient
	assert.Equal(t, 1, sim.Ledger().Ward(SectionOR).Occupied)
	assert.Equal(t, 10, sim.Ledger().Ward(SectionEmergency).Occupied)
	assert.Equal(t, 0, sim.emergencyQ.Len())
	admins := pendingOfKind(sim, KindAdminWorkComplete)
	require.Len(t, admins, 1)
	assert.Equal(t, waiting.ID, admins[0].PatientID())
	assert.False(t, p.HasExited(), "emergency departure does not stamp exit")
}

func TestMoveToOR_FullOR_QueuesAndKeepsUpstreamBed(t *testing.T) {
	cfg := quietConfig()
	cfg.ORCapacity = 0
	sim, _ := newTestSimulator(t, cfg)
	p := sim.newPatient(ClassOrdinary, SurgerySimple, false)
	sim.ledger.Occupy(SectionPreOp, p)
	sim.Schedule(0, NewMoveToOREvent(p, false))

	runUntil(t, sim, 0)

	assert.Equal(t, 1, sim.orQ.Len())
	assert.Equal(t, 1, sim.Ledger().Ward(SectionPreOp).Occupied)
	assert.Empty(t, pendingOfKind(sim, KindOperationComplete))
}

func TestORCleanup_PromotesQueuedPatientViaZeroDelayMove(t *testing.T) {
	// GIVEN one OR bed held by a and b waiting with its pre-op bed
	cfg := quietConfig()
	cfg.ORCapacity = 1
	sim, _ := newTestSimulator(t, cfg)
	a := sim.newPatient(ClassUrgent, SurgerySimple, false)
	b := sim.newPatient(ClassOrdinary, SurgerySimple, false)
	sim.ledger.Occupy(SectionOR, a)
	sim.ledger.Occupy(SectionPreOp, b)
	sim.orQ.Push(b)
	sim.Schedule(0, NewORCleanupCompleteEvent(a))

	// WHEN cleanup completes
	runUntil(t, sim, 0)

	// THEN b took the bed and released its pre-op bed
	assert.Equal(t, 1, sim.Ledger().Ward(SectionOR).Occupied)
	assert.Equal(t, 0, sim.Ledger().Ward(SectionPreOp).Occupied)
	assert.Equal(t, 0, sim.orQ.Len())
	ops := pendingOfKind(sim, KindOperationComplete)
	require.Len(t, ops, 1)
	assert.Equal(t, b.ID, ops[0].PatientID())
}

func TestOperationComplete_Simple_GoesToGeneralAndCleansOR(t *testing.T) {
	sim, _ := newTestSimulator(t, quietConfig())
	p := sim.newPatient(ClassUrgent, SurgerySimple, false)
	sim.ledger.Occupy(SectionOR, p)
	sim.Schedule(0, NewOperationCompleteEvent(p))

	runUntil(t, sim, 0)

	assert.Equal(t, 1, sim.Ledger().Ward(SectionGeneral).Occupied)
	assert.Len(t, pendingOfKind(sim, KindGeneralDeparture), 1)
	cleanups := pendingOfKind(sim, KindORCleanupComplete)
	require.Len(t, cleanups, 1)
	assert.Equal(t, 10.0, cleanups[0].Timestamp())

	runUntil(t, sim, 10)
	assert.Equal(t, 0, sim.Ledger().Ward(SectionOR).Occupied)
}

func TestOperationComplete_FullWard_PatientBlocksOR(t *testing.T) {
	// GIVEN no general beds at all
	cfg := quietConfig()
	cfg.GeneralCapacity = 0
	sim, _ := newTestSimulator(t, cfg)
	p := sim.newPatient(ClassOrdinary, SurgerySimple, false)
	sim.ledger.Occupy(SectionOR, p)
	sim.Schedule(0, NewOperationCompleteEvent(p))

	// WHEN the operation completes
	runUntil(t, sim, 0)

	// THEN the patient waits for a ward bed while still holding the OR bed
	assert.Equal(t, 1, sim.generalQ.Len())
	assert.Equal(t, 1, sim.Ledger().Ward(SectionOR).Occupied)
	assert.Empty(t, pendingOfKind(sim, KindORCleanupComplete))
}

func TestOperationComplete_Medium_RoutesByDraw(t *testing.T) {
	// GIVEN medium patients always routed to ICU
	cfg := quietConfig()
	cfg.MediumGeneralProb = 0
	cfg.MediumICUProb = 1
	sim, _ := newTestSimulator(t, cfg)
	p := sim.newPatient(ClassUrgent, SurgeryMedium, true)
	sim.ledger.Occupy(SectionOR, p)
	sim.Schedule(0, NewOperationCompleteEvent(p))

	runUntil(t, sim, 0)

	assert.True(t, sim.Ledger().Ward(SectionICU).IsResident(p))
	assert.Len(t, pendingOfKind(sim, KindICUDeparture), 1)
}

func TestOperationComplete_Complex_ComorbidGoesToCCU(t *testing.T) {
	cfg := quietConfig()
	cfg.ResurgeryProb = 0
	cfg.ComplexDeathProb = 0
	sim, _ := newTestSimulator(t, cfg)
	p := sim.newPatient(ClassUrgent, SurgeryComplex, true)
	q := sim.newPatient(ClassUrgent, SurgeryComplex, false)
	sim.ledger.Occupy(SectionOR, p)
	sim.ledger.Occupy(SectionOR, q)
	sim.Schedule(0, NewOperationCompleteEvent(p))
	sim.Schedule(0, NewOperationCompleteEvent(q))

	runUntil(t, sim, 0)

	assert.True(t, sim.Ledger().Ward(SectionCCU).IsResident(p))
	assert.True(t, sim.Ledger().Ward(SectionICU).IsResident(q))
	assert.Equal(t, map[int]bool{p.ID: false, q.ID: false}, sim.resurgery)
}

func TestOperationComplete_Complex_Death(t *testing.T) {
	cfg := quietConfig()
	cfg.ResurgeryProb = 0
	cfg.ComplexDeathProb = 1
	sim, _ := newTestSimulator(t, cfg)
	p := sim.newPatient(ClassUrgent, SurgeryComplex, false)
	sim.ledger.Occupy(SectionOR, p)
	sim.Schedule(5, NewOperationCompleteEvent(p))

	runUntil(t, sim, 15)

	assert.Equal(t, OutcomeDied, p.Outcome)
	require.True(t, p.HasExited())
	assert.Equal(t, 5.0, *p.ExitTime)
	assert.Equal(t, 1, sim.Stats().Deaths)
	assert.Equal(t, 0, sim.Ledger().Ward(SectionOR).Occupied)
}

func TestOperationComplete_Complex_ResurgerySkipsUpstreamBookkeeping(t *testing.T) {
	// GIVEN an urgent complex patient whose emergency bed was already freed
	cfg := quietConfig()
	cfg.ResurgeryProb = 1
	sim, _ := newTestSimulator(t, cfg)
	p := sim.newPatient(ClassUrgent, SurgeryComplex, false)
	sim.ledger.Occupy(SectionOR, p)
	sim.Schedule(0, NewOperationCompleteEvent(p))

	// WHEN the operation completes
	runUntil(t, sim, 0)

	// THEN a cleanup and a resurgery move are both pending after the cleanup delay
	assert.True(t, p.Resurgery)
	assert.Equal(t, map[int]bool{p.ID: true}, sim.resurgery)
	cleanups := pendingOfKind(sim, KindORCleanupComplete)
	moves := pendingOfKind(sim, KindMoveToOR)
	require.Len(t, cleanups, 1)
	require.Len(t, moves, 1)
	assert.Less(t, cleanups[0].Seq(), moves[0].Seq())
	assert.True(t, moves[0].(*MoveToOREvent).Resurgery)
	assert.True(t, cleanups[0].(*ORCleanupCompleteEvent).Resurgery)

	// WHEN the cleanup delay elapses
	runUntil(t, sim, 10)

	// THEN the patient is back in the OR and no emergency departure was issued
	assert.Equal(t, 1, sim.Ledger().Ward(SectionOR).Occupied)
	assert.Equal(t, 3, sim.Stats().EventsDispatched)
	assert.Empty(t, pendingOfKind(sim, KindEmergencyDeparture))
	assert.Equal(t, 1, sim.Stats().Resurgeries)
	assert.Len(t, pendingOfKind(sim, KindOperationComplete), 1)
}

func TestResurgery_KeepsQueuedPatientsInArrivalOrder(t *testing.T) {
	// GIVEN one OR bed held by a complex patient due for resurgery
	// and two urgent patients queued behind it
	cfg := quietConfig()
	cfg.ORCapacity = 1
	cfg.ResurgeryProb = 1
	sim, _ := newTestSimulator(t, cfg)
	a := sim.newPatient(ClassUrgent, SurgeryComplex, false)
	b := sim.newPatient(ClassUrgent, SurgerySimple, false)
	c := sim.newPatient(ClassUrgent, SurgerySimple, false)
	sim.ledger.Occupy(SectionOR, a)
	sim.orQ.Push(b)
	sim.orQ.Push(c)
	sim.Schedule(0, NewOperationCompleteEvent(a))

	// WHEN the operation completes and the cleanup delay elapses
	runUntil(t, sim, cfg.ORCleanup)

	// THEN a is back on the table and b still heads the queue ahead of c
	assert.Equal(t, 1, sim.Ledger().Ward(SectionOR).Occupied)
	ops := pendingOfKind(sim, KindOperationComplete)
	require.Len(t, ops, 1)
	assert.Equal(t, a.ID, ops[0].PatientID())
	require.Equal(t, 2, sim.orQ.Len())
	assert.Equal(t, b.ID, sim.orQ.Peek().ID)
	assert.Zero(t, sim.Stats().Queued[SectionOR])
}

func TestWardDeparture_PromotesQueueAndReleasesBlockedOR(t *testing.T) {
	// GIVEN a full general ward and a patient waiting while holding an OR bed
	cfg := quietConfig()
	cfg.GeneralCapacity = 1
	sim, _ := newTestSimulator(t, cfg)
	resident := sim.newPatient(ClassOrdinary, SurgerySimple, false)
	waiting := sim.newPatient(ClassOrdinary, SurgerySimple, false)
	sim.ledger.Occupy(SectionGeneral, resident)
	sim.ledger.Occupy(SectionOR, waiting)
	sim.generalQ.Push(waiting)
	sim.Schedule(0, NewWardDepartureEvent(SectionGeneral, resident))

	// WHEN the resident leaves
	runUntil(t, sim, 0)

	// THEN the resident is discharged and the waiting patient takes the bed
	assert.Equal(t, OutcomeDischarged, resident.Outcome)
	require.True(t, resident.HasExited())
	assert.Equal(t, 1, sim.Ledger().Ward(SectionGeneral).Occupied)
	assert.Equal(t, 0, sim.generalQ.Len())
	assert.Len(t, pendingOfKind(sim, KindGeneralDeparture), 1)

	// WHEN the promoted patient's OR cleanup fires
	runUntil(t, sim, 10)

	// THEN the blocked OR bed is free
	assert.Equal(t, 0, sim.Ledger().Ward(SectionOR).Occupied)
}

func TestWardDeparture_EvictedPatient_IsIgnored(t *testing.T) {
	sim, _ := newTestSimulator(t, quietConfig())
	p := admitResidents(sim, SectionICU, 1)[0]
	sim.ledger.EvictLast(SectionICU)
	sim.Schedule(0, NewWardDepartureEvent(SectionICU, p))

	runUntil(t, sim, 0)

	assert.False(t, p.HasExited())
	assert.Equal(t, 0, sim.Ledger().Ward(SectionICU).Occupied)
}

func TestPowerBack_PromotesWaitingPatients(t *testing.T) {
	// GIVEN a shrunk CCU that is full with a patient waiting
	cfg := quietConfig()
	sim, _ := newTestSimulator(t, cfg)
	sim.ledger.SetCapacity(SectionCCU, 4)
	admitResidents(sim, SectionCCU, 4)
	waiting := sim.newPatient(ClassUrgent, SurgeryComplex, true)
	sim.ledger.Occupy(SectionOR, waiting)
	sim.ccuQ.Push(waiting)
	sim.powerOn = false
	sim.Schedule(0, &PowerBackEvent{})

	// WHEN power returns
	runUntil(t, sim, 0)

	// THEN capacity is restored and the waiting patient admitted
	assert.True(t, sim.PowerOn())
	assert.Equal(t, 5, sim.Ledger().Ward(SectionCCU).Capacity)
	assert.True(t, sim.Ledger().Ward(SectionCCU).IsResident(waiting))
	assert.Len(t, pendingOfKind(sim, KindORCleanupComplete), 1)
}

func TestNewWardDepartureEvent_RejectsOtherSections(t *testing.T) {
	assert.Panics(t, func() { NewWardDepartureEvent(SectionLab, &Patient{ID: 1}) })
	assert.Equal(t, KindCCUDeparture, NewWardDepartureEvent(SectionCCU, &Patient{ID: 1}).Kind())
}
