package sim

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// requireViolation runs fn and asserts it aborts with an *InvariantError.
func requireViolation(t *testing.T, fn func()) *InvariantError {
	t.Helper()
	var got *InvariantError
	func() {
		defer func() {
			r := recover()
			require.NotNil(t, r, "expected an invariant violation")
			iv, ok := r.(*InvariantError)
			require.True(t, ok, "expected *InvariantError, got %T: %v", r, r)
			got = iv
		}()
		fn()
	}()
	return got
}

// quietConfig returns the default hospital with mass casualties disabled and
// arrivals slowed to a trickle, for scenarios that inject their own events.
func quietConfig() Config {
	cfg := DefaultConfig()
	cfg.MassCasualtyProb = 0
	cfg.UrgentArrivalRate = 1e-9
	cfg.OrdinaryArrivalRate = 1e-9
	return cfg
}

// newTestSimulator builds an idle simulator that records notifications.
func newTestSimulator(t *testing.T, cfg Config) (*Simulator, *NotificationLog) {
	t.Helper()
	log := &NotificationLog{}
	sim, err := NewSimulator(cfg, log)
	require.NoError(t, err)
	return sim, log
}

// admitResidents places n fresh urgent patients directly into section s.
func admitResidents(sim *Simulator, s Section, n int) []*Patient {
	out := make([]*Patient, 0, n)
	for i := 0; i < n; i++ {
		p := sim.newPatient(ClassUrgent, SurgeryComplex, false)
		sim.ledger.Occupy(s, p)
		out = append(out, p)
	}
	return out
}
