package sim

import (
	"fmt"
)

// Section names a bed-holding area of the hospital.
type Section string

const (
	SectionEmergency Section = "emergency"
	SectionLab       Section = "lab"
	SectionPreOp     Section = "pre_or"
	SectionOR        Section = "or"
	SectionGeneral   Section = "general"
	SectionICU       Section = "icu"
	SectionCCU       Section = "ccu"
)

// Sections lists every section in a fixed order used for reports and checks.
var Sections = []Section{
	SectionEmergency, SectionLab, SectionPreOp, SectionOR,
	SectionGeneral, SectionICU, SectionCCU,
}

// Ward is the occupancy record of one section.
// Residents are tracked only for wards subject to eviction (ICU, CCU).
type Ward struct {
	Section   Section
	Capacity  int
	Occupied  int
	residents []*Patient
	tracked   bool
}

// HasRoom reports whether one more patient can be admitted.
func (w *Ward) HasRoom() bool {
	return w.Occupied < w.Capacity
}

// Residents returns the tracked residents in admission order.
// Callers MUST NOT mutate the returned slice.
func (w *Ward) Residents() []*Patient {
	return w.residents
}

// IsResident reports whether p is currently tracked in this ward.
func (w *Ward) IsResident(p *Patient) bool {
	for _, r := range w.residents {
		if r == p {
			return true
		}
	}
	return false
}

// OccupancyFunc is invoked with the section and its new occupancy after
// every change.
type OccupancyFunc func(section Section, occupied int)

// Ledger tracks per-section occupancy against capacity.
//
// Occupancy may exceed capacity only between a capacity shrink and the
// evictions that follow it within the same event.
type Ledger struct {
	wards    map[Section]*Ward
	onChange OccupancyFunc
}

// NewLedger creates a ledger with the given capacities. Every section in
// Sections must be present. ICU and CCU track residents.
func NewLedger(capacities map[Section]int, onChange OccupancyFunc) *Ledger {
	l := &Ledger{wards: make(map[Section]*Ward, len(Sections)), onChange: onChange}
	for _, s := range Sections {
		c, ok := capacities[s]
		if !ok {
			panic(fmt.Sprintf("NewLedger: missing capacity for section %q", s))
		}
		l.wards[s] = &Ward{
			Section:  s,
			Capacity: c,
			tracked:  s == SectionICU || s == SectionCCU,
		}
	}
	return l
}

// Ward returns the record for section s.
func (l *Ledger) Ward(s Section) *Ward {
	w, ok := l.wards[s]
	if !ok {
		violate("lookup", string(s), "unknown section")
	}
	return w
}

// HasRoom reports whether section s can admit one more patient.
func (l *Ledger) HasRoom(s Section) bool {
	return l.Ward(s).HasRoom()
}

// Occupy assigns a bed in s to p.
func (l *Ledger) Occupy(s Section, p *Patient) {
	w := l.Ward(s)
	if w.Occupied+1 > w.Capacity {
		violate("occupy", string(s), "occupancy %d would exceed capacity %d", w.Occupied+1, w.Capacity)
	}
	w.Occupied++
	if w.tracked {
		w.residents = append(w.residents, p)
	}
	l.changed(w)
}

// Release frees the bed held by p in s.
func (l *Ledger) Release(s Section, p *Patient) {
	w := l.Ward(s)
	if w.Occupied-1 < 0 {
		violate("release", string(s), "occupancy would become negative")
	}
	if w.tracked {
		i := indexOf(w.residents, p)
		if i < 0 {
			violate("release", string(s), "patient %d is not a resident", p.ID)
		}
		w.residents = append(w.residents[:i], w.residents[i+1:]...)
	}
	w.Occupied--
	l.changed(w)
}

// EvictLast removes the most recently admitted resident of a tracked ward
// and frees its bed.
func (l *Ledger) EvictLast(s Section) *Patient {
	w := l.Ward(s)
	if !w.tracked {
		violate("evict", string(s), "section does not track residents")
	}
	if len(w.residents) == 0 {
		violate("evict", string(s), "no residents to evict with occupancy %d", w.Occupied)
	}
	n := len(w.residents)
	p := w.residents[n-1]
	w.residents[n-1] = nil
	w.residents = w.residents[:n-1]
	w.Occupied--
	l.changed(w)
	return p
}

// SetCapacity changes the bed count of s. Occupancy is left untouched.
func (l *Ledger) SetCapacity(s Section, capacity int) {
	if capacity < 0 {
		violate("resize", string(s), "capacity must be >= 0, got %d", capacity)
	}
	l.Ward(s).Capacity = capacity
}

// CheckBounds verifies 0 <= occupancy <= capacity for every section.
func (l *Ledger) CheckBounds() {
	for _, s := range Sections {
		w := l.wards[s]
		if w.Occupied < 0 || w.Occupied > w.Capacity {
			violate("check", string(s), "occupancy %d outside [0, %d]", w.Occupied, w.Capacity)
		}
	}
}

func (l *Ledger) changed(w *Ward) {
	if l.onChange != nil {
		l.onChange(w.Section, w.Occupied)
	}
}

func indexOf(ps []*Patient, p *Patient) int {
	for i, r := range ps {
		if r == p {
			return i
		}
	}
	return -1
}
