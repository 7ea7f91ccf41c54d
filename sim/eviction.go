package sim

import "fmt"

// EvictionPolicy decides what becomes of a resident removed from ICU or CCU
// when a power outage shrinks the ward below its occupancy.
type EvictionPolicy interface {
	Name() string
	Evict(p *Patient, now float64)
}

// DropEviction removes the patient without stamping an exit time. The
// patient stays unresolved and is excluded from finalized statistics.
type DropEviction struct{}

func (DropEviction) Name() string { return "drop" }

func (DropEviction) Evict(p *Patient, _ float64) {
	p.Outcome = OutcomeEvicted
}

// DischargeEviction treats the eviction as a transfer to another facility.
type DischargeEviction struct{}

func (DischargeEviction) Name() string { return "discharge" }

func (DischargeEviction) Evict(p *Patient, now float64) {
	p.depart(now, OutcomeTransferred)
}

// DeathEviction treats the eviction as a death.
type DeathEviction struct{}

func (DeathEviction) Name() string { return "death" }

func (DeathEviction) Evict(p *Patient, now float64) {
	p.depart(now, OutcomeDied)
}

// ValidEvictionPolicies is the set of recognized eviction policy names.
var ValidEvictionPolicies = map[string]bool{"": true, "drop": true, "discharge": true, "death": true}

// NewEvictionPolicy creates an eviction policy by name.
// An empty string defaults to DropEviction. Panics on unrecognized names.
func NewEvictionPolicy(name string) EvictionPolicy {
	switch name {
	case "", "drop":
		return DropEviction{}
	case "discharge":
		return DischargeEviction{}
	case "death":
		return DeathEviction{}
	default:
		panic(fmt.Sprintf("unknown eviction policy %q", name))
	}
}
