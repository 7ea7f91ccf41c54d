package sim

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/hospital-sim/hospital-sim/sim/trace"
)

// Config holds every start-up parameter of a replication. All times are in
// minutes, all rates are per minute. Loaded from YAML via LoadConfig(path).
type Config struct {
	Seed    int64   `yaml:"seed"`
	Horizon float64 `yaml:"horizon"` // stop draining events later than this

	// Section capacities (beds).
	EmergencyCapacity int `yaml:"emergency_capacity"`
	LabCapacity       int `yaml:"lab_capacity"`
	PreOpCapacity     int `yaml:"pre_or_capacity"`
	ORCapacity        int `yaml:"or_capacity"`
	GeneralCapacity   int `yaml:"general_capacity"`
	ICUCapacity       int `yaml:"icu_capacity"`
	CCUCapacity       int `yaml:"ccu_capacity"`
	AmbulanceBuffer   int `yaml:"ambulance_buffer"` // emergency queue bound

	// Arrivals.
	UrgentArrivalRate   float64 `yaml:"urgent_arrival_rate"`
	OrdinaryArrivalRate float64 `yaml:"ordinary_arrival_rate"`
	MassCasualtyProb    float64 `yaml:"mass_casualty_prob"`
	MassCasualtyMin     int     `yaml:"mass_casualty_min"`
	MassCasualtyMax     int     `yaml:"mass_casualty_max"`
	SimpleSurgeryProb   float64 `yaml:"simple_surgery_prob"`
	MediumSurgeryProb   float64 `yaml:"medium_surgery_prob"` // complex gets the remainder
	ComorbidityProb     float64 `yaml:"comorbidity_prob"`

	// Activity times.
	AdminWorkUrgent   float64 `yaml:"admin_work_urgent"`
	AdminWorkOrdinary float64 `yaml:"admin_work_ordinary"`
	LabMin            float64 `yaml:"lab_min"`
	LabMax            float64 `yaml:"lab_max"`
	LabResultLow      float64 `yaml:"lab_result_low"`
	LabResultHigh     float64 `yaml:"lab_result_high"`
	LabResultMode     float64 `yaml:"lab_result_mode"`
	PreOpDelay        float64 `yaml:"pre_or_delay"`
	ORSimpleMean      float64 `yaml:"or_simple_mean"`
	ORSimpleStdDev    float64 `yaml:"or_simple_stddev"`
	ORMediumMean      float64 `yaml:"or_medium_mean"`
	ORMediumStdDev    float64 `yaml:"or_medium_stddev"`
	ORComplexMean     float64 `yaml:"or_complex_mean"`
	ORComplexStdDev   float64 `yaml:"or_complex_stddev"`
	ORCleanup         float64 `yaml:"or_cleanup"`
	GeneralStayRate   float64 `yaml:"general_stay_rate"`
	ICUStayRate       float64 `yaml:"icu_stay_rate"`
	CCUStayRate       float64 `yaml:"ccu_stay_rate"`

	// Post-operative branching.
	ResurgeryProb     float64 `yaml:"resurgery_prob"`
	ComplexDeathProb  float64 `yaml:"complex_death_prob"`
	MediumGeneralProb float64 `yaml:"medium_general_prob"`
	MediumICUProb     float64 `yaml:"medium_icu_prob"` // CCU gets the remainder

	// Power outages.
	MonthLength       float64 `yaml:"month_length"`
	FirstOutageWindow float64 `yaml:"first_outage_window"`
	PowerRestoreDelay float64 `yaml:"power_restore_delay"`
	PowerShrinkFactor float64 `yaml:"power_shrink_factor"`

	// Policies.
	EvictionPolicy   string `yaml:"eviction_policy"`    // "drop" (default), "discharge", "death"
	ORDurationPolicy string `yaml:"or_duration_policy"` // "clamp" (default), "strict"
	TraceLevel       string `yaml:"trace_level"`        // "none" (default), "decisions", "events"
}

// DefaultConfig returns the reference hospital: three simulated months.
func DefaultConfig() Config {
	return Config{
		Seed:    42,
		Horizon: 3 * 43200,

		EmergencyCapacity: 10,
		LabCapacity:       3,
		PreOpCapacity:     25,
		ORCapacity:        50,
		GeneralCapacity:   40,
		ICUCapacity:       10,
		CCUCapacity:       5,
		AmbulanceBuffer:   10,

		UrgentArrivalRate:   4.0 / 60,
		OrdinaryArrivalRate: 1.0 / 60,
		MassCasualtyProb:    0.005,
		MassCasualtyMin:     2,
		MassCasualtyMax:     5,
		SimpleSurgeryProb:   0.5,
		MediumSurgeryProb:   0.45,
		ComorbidityProb:     0.25,

		AdminWorkUrgent:   10,
		AdminWorkOrdinary: 10,
		LabMin:            28,
		LabMax:            32,
		LabResultLow:      5,
		LabResultHigh:     100,
		LabResultMode:     75,
		PreOpDelay:        2880,
		ORSimpleMean:      30.22,
		ORSimpleStdDev:    4.95,
		ORMediumMean:      74.54,
		ORMediumStdDev:    9.95,
		ORComplexMean:     242.03,
		ORComplexStdDev:   63.27,
		ORCleanup:         10,
		GeneralStayRate:   1.0 / 3000,
		ICUStayRate:       1.0 / 1500,
		CCUStayRate:       1.0 / 1500,

		ResurgeryProb:     0.01,
		ComplexDeathProb:  0.1,
		MediumGeneralProb: 0.7,
		MediumICUProb:     0.1,

		MonthLength:       43200,
		FirstOutageWindow: 1440,
		PowerRestoreDelay: 1440,
		PowerShrinkFactor: 0.8,

		EvictionPolicy:   "drop",
		ORDurationPolicy: "clamp",
		TraceLevel:       "none",
	}
}

// ValidORDurationPolicies is the set of recognized OR-duration policy names.
var ValidORDurationPolicies = map[string]bool{"": true, "clamp": true, "strict": true}

// Capacities returns the per-section capacity map used to build a Ledger.
func (c *Config) Capacities() map[Section]int {
	return map[Section]int{
		SectionEmergency: c.EmergencyCapacity,
		SectionLab:       c.LabCapacity,
		SectionPreOp:     c.PreOpCapacity,
		SectionOR:        c.ORCapacity,
		SectionGeneral:   c.GeneralCapacity,
		SectionICU:       c.ICUCapacity,
		SectionCCU:       c.CCUCapacity,
	}
}

// Validate returns a *ConfigError for the first invalid field.
func (c *Config) Validate() error {
	if math.IsNaN(c.Horizon) || math.IsInf(c.Horizon, 0) || c.Horizon < 0 {
		return &ConfigError{Field: "horizon", Reason: fmt.Sprintf("must be a finite number >= 0, got %v", c.Horizon)}
	}
	for _, f := range []struct {
		name string
		val  int
	}{
		{"emergency_capacity", c.EmergencyCapacity},
		{"lab_capacity", c.LabCapacity},
		{"pre_or_capacity", c.PreOpCapacity},
		{"or_capacity", c.ORCapacity},
		{"general_capacity", c.GeneralCapacity},
		{"icu_capacity", c.ICUCapacity},
		{"ccu_capacity", c.CCUCapacity},
		{"ambulance_buffer", c.AmbulanceBuffer},
	} {
		if f.val < 0 {
			return &ConfigError{Field: f.name, Reason: fmt.Sprintf("must be >= 0, got %d", f.val)}
		}
	}
	for _, f := range []struct {
		name string
		val  float64
	}{
		{"urgent_arrival_rate", c.UrgentArrivalRate},
		{"ordinary_arrival_rate", c.OrdinaryArrivalRate},
		{"general_stay_rate", c.GeneralStayRate},
		{"icu_stay_rate", c.ICUStayRate},
		{"ccu_stay_rate", c.CCUStayRate},
		{"month_length", c.MonthLength},
		{"power_shrink_factor", c.PowerShrinkFactor},
	} {
		if err := validateFinitePositive(f.name, f.val); err != nil {
			return err
		}
	}
	for _, f := range []struct {
		name string
		val  float64
	}{
		{"admin_work_urgent", c.AdminWorkUrgent},
		{"admin_work_ordinary", c.AdminWorkOrdinary},
		{"lab_min", c.LabMin},
		{"lab_result_low", c.LabResultLow},
		{"pre_or_delay", c.PreOpDelay},
		{"or_simple_stddev", c.ORSimpleStdDev},
		{"or_medium_stddev", c.ORMediumStdDev},
		{"or_complex_stddev", c.ORComplexStdDev},
		{"or_cleanup", c.ORCleanup},
		{"first_outage_window", c.FirstOutageWindow},
		{"power_restore_delay", c.PowerRestoreDelay},
	} {
		if err := validateFiniteNonNegative(f.name, f.val); err != nil {
			return err
		}
	}
	for _, f := range []struct {
		name string
		val  float64
	}{
		{"mass_casualty_prob", c.MassCasualtyProb},
		{"simple_surgery_prob", c.SimpleSurgeryProb},
		{"medium_surgery_prob", c.MediumSurgeryProb},
		{"comorbidity_prob", c.ComorbidityProb},
		{"resurgery_prob", c.ResurgeryProb},
		{"complex_death_prob", c.ComplexDeathProb},
		{"medium_general_prob", c.MediumGeneralProb},
		{"medium_icu_prob", c.MediumICUProb},
	} {
		if err := validateProbability(f.name, f.val); err != nil {
			return err
		}
	}
	if c.SimpleSurgeryProb+c.MediumSurgeryProb > 1 {
		return &ConfigError{Field: "medium_surgery_prob", Reason: "simple + medium surgery probabilities exceed 1"}
	}
	if c.MediumGeneralProb+c.MediumICUProb > 1 {
		return &ConfigError{Field: "medium_icu_prob", Reason: "medium general + icu probabilities exceed 1"}
	}
	if c.PowerShrinkFactor > 1 {
		return &ConfigError{Field: "power_shrink_factor", Reason: fmt.Sprintf("must be <= 1, got %v", c.PowerShrinkFactor)}
	}
	if c.MassCasualtyMin < 0 || c.MassCasualtyMin > c.MassCasualtyMax {
		return &ConfigError{Field: "mass_casualty_min", Reason: fmt.Sprintf("need 0 <= min <= max, got [%d, %d]", c.MassCasualtyMin, c.MassCasualtyMax)}
	}
	if c.LabMin > c.LabMax || math.IsInf(c.LabMax, 0) {
		return &ConfigError{Field: "lab_max", Reason: fmt.Sprintf("need lab_min <= lab_max, got [%v, %v]", c.LabMin, c.LabMax)}
	}
	if !(c.LabResultLow <= c.LabResultMode && c.LabResultMode <= c.LabResultHigh) || math.IsInf(c.LabResultHigh, 0) {
		return &ConfigError{Field: "lab_result_mode", Reason: fmt.Sprintf("mode %v outside [%v, %v]", c.LabResultMode, c.LabResultLow, c.LabResultHigh)}
	}
	for _, f := range []struct {
		name string
		val  float64
	}{
		{"or_simple_mean", c.ORSimpleMean},
		{"or_medium_mean", c.ORMediumMean},
		{"or_complex_mean", c.ORComplexMean},
	} {
		if math.IsNaN(f.val) || math.IsInf(f.val, 0) {
			return &ConfigError{Field: f.name, Reason: fmt.Sprintf("must be a finite number, got %v", f.val)}
		}
	}
	if !ValidEvictionPolicies[c.EvictionPolicy] {
		return &ConfigError{Field: "eviction_policy", Reason: fmt.Sprintf("unknown policy %q; valid: drop, discharge, death", c.EvictionPolicy)}
	}
	if !ValidORDurationPolicies[c.ORDurationPolicy] {
		return &ConfigError{Field: "or_duration_policy", Reason: fmt.Sprintf("unknown policy %q; valid: clamp, strict", c.ORDurationPolicy)}
	}
	if !trace.IsValidTraceLevel(c.TraceLevel) {
		return &ConfigError{Field: "trace_level", Reason: fmt.Sprintf("unknown level %q; valid: none, decisions, events", c.TraceLevel)}
	}
	return nil
}

// LoadConfig reads a YAML file over DefaultConfig and validates the result.
// Uses strict parsing: unrecognized keys (typos) are rejected.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := DefaultConfig()
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config %s: %w", path, err)
	}
	return &cfg, nil
}

// YAML renders the configuration in the LoadConfig file format.
func (c Config) YAML() ([]byte, error) {
	return yaml.Marshal(c)
}

func validateFinitePositive(name string, val float64) error {
	if math.IsNaN(val) || math.IsInf(val, 0) {
		return &ConfigError{Field: name, Reason: fmt.Sprintf("must be a finite number, got %v", val)}
	}
	if val <= 0 {
		return &ConfigError{Field: name, Reason: fmt.Sprintf("must be positive, got %v", val)}
	}
	return nil
}

func validateFiniteNonNegative(name string, val float64) error {
	if math.IsNaN(val) || math.IsInf(val, 0) {
		return &ConfigError{Field: name, Reason: fmt.Sprintf("must be a finite number, got %v", val)}
	}
	if val < 0 {
		return &ConfigError{Field: name, Reason: fmt.Sprintf("must be non-negative, got %v", val)}
	}
	return nil
}

func validateProbability(name string, val float64) error {
	if math.IsNaN(val) || val < 0 || val > 1 {
		return &ConfigError{Field: name, Reason: fmt.Sprintf("must be a probability in [0, 1], got %v", val)}
	}
	return nil
}
