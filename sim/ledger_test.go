package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func testCapacities() map[Section]int {
	cfg := DefaultConfig()
	return cfg.Capacities()
}

func TestLedger_OccupyAndRelease_NotifyNewCount(t *testing.T) {
	// GIVEN a ledger recording occupancy changes
	var got []int
	l := NewLedger(testCapacities(), func(s Section, n int) {
		if s == SectionLab {
			got = append(got, n)
		}
	})
	a, b := &Patient{ID: 1}, &Patient{ID: 2}

	// WHEN two patients take lab beds and one leaves
	l.Occupy(SectionLab, a)
	l.Occupy(SectionLab, b)
	l.Release(SectionLab, a)

	// THEN every change reported the new count in order
	assert.Equal(t, []int{1, 2, 1}, got)
	assert.Equal(t, 1, l.Ward(SectionLab).Occupied)
}

func TestLedger_Occupy_BeyondCapacity_IsInvariantViolation(t *testing.T) {
	l := NewLedger(testCapacities(), nil)
	for i := 0; i < 3; i++ {
		l.Occupy(SectionLab, &Patient{ID: i + 1})
	}
	assert.False(t, l.HasRoom(SectionLab))
	iv := requireViolation(t, func() { l.Occupy(SectionLab, &Patient{ID: 9}) })
	assert.Equal(t, "occupy", iv.Op)
	assert.Equal(t, "lab", iv.Resource)
}

func TestLedger_Release_BelowZero_IsInvariantViolation(t *testing.T) {
	l := NewLedger(testCapacities(), nil)
	iv := requireViolation(t, func() { l.Release(SectionOR, &Patient{ID: 1}) })
	assert.Equal(t, "release", iv.Op)
}

func TestLedger_TracksResidents_OnlyForICUAndCCU(t *testing.T) {
	l := NewLedger(testCapacities(), nil)
	p, q := &Patient{ID: 1}, &Patient{ID: 2}
	l.Occupy(SectionICU, p)
	l.Occupy(SectionGeneral, q)

	assert.True(t, l.Ward(SectionICU).IsResident(p))
	assert.Empty(t, l.Ward(SectionGeneral).Residents())

	l.Release(SectionICU, p)
	assert.False(t, l.Ward(SectionICU).IsResident(p))
	requireViolation(t, func() { l.Release(SectionICU, q) })
}

func TestLedger_EvictLast_RemovesTailResident(t *testing.T) {
	// GIVEN three CCU residents admitted in order
	l := NewLedger(testCapacities(), nil)
	ps := []*Patient{{ID: 1}, {ID: 2}, {ID: 3}}
	for _, p := range ps {
		l.Occupy(SectionCCU, p)
	}

	// WHEN the last resident is evicted
	got := l.EvictLast(SectionCCU)

	// THEN it is the most recent admission and its bed is free
	assert.Equal(t, 3, got.ID)
	assert.Equal(t, 2, l.Ward(SectionCCU).Occupied)
	assert.Equal(t, []*Patient{ps[0], ps[1]}, l.Ward(SectionCCU).Residents())
}

func TestLedger_EvictLast_UntrackedOrEmpty_IsInvariantViolation(t *testing.T) {
	l := NewLedger(testCapacities(), nil)
	requireViolation(t, func() { l.EvictLast(SectionGeneral) })
	requireViolation(t, func() { l.EvictLast(SectionICU) })
}

func TestLedger_SetCapacity_LeavesOccupancy(t *testing.T) {
	l := NewLedger(testCapacities(), nil)
	for i := 0; i < 5; i++ {
		l.Occupy(SectionCCU, &Patient{ID: i + 1})
	}
	l.SetCapacity(SectionCCU, 4)
	w := l.Ward(SectionCCU)
	assert.Equal(t, 4, w.Capacity)
	assert.Equal(t, 5, w.Occupied)
	requireViolation(t, func() { l.CheckBounds() })
	requireViolation(t, func() { l.SetCapacity(SectionCCU, -1) })
}

func TestNewLedger_MissingSection_Panics(t *testing.T) {
	assert.Panics(t, func() { NewLedger(map[Section]int{SectionLab: 3}, nil) })
}
