package trace

// SectionSummary counts admission outcomes for one section.
type SectionSummary struct {
	Admitted int
	Queued   int
	Rejected int
}

// TraceSummary aggregates statistics from a SimulationTrace.
type TraceSummary struct {
	TotalDecisions   int
	AdmittedCount    int
	QueuedCount      int
	RejectedCount    int
	EvictionCount    int
	DispatchCount    int
	PerSection       map[string]SectionSummary
	KindDistribution map[string]int // event kind → count of dispatches
}

// Summarize computes aggregate statistics from a SimulationTrace.
// Safe for nil or empty traces (returns zero-value fields).
func Summarize(st *SimulationTrace) *TraceSummary {
	summary := &TraceSummary{
		PerSection:       make(map[string]SectionSummary),
		KindDistribution: make(map[string]int),
	}
	if st == nil {
		return summary
	}

	summary.TotalDecisions = len(st.Admissions)
	for _, a := range st.Admissions {
		s := summary.PerSection[a.Section]
		switch a.Outcome {
		case OutcomeAdmitted:
			summary.AdmittedCount++
			s.Admitted++
		case OutcomeQueued:
			summary.QueuedCount++
			s.Queued++
		case OutcomeRejected:
			summary.RejectedCount++
			s.Rejected++
		}
		summary.PerSection[a.Section] = s
	}

	summary.EvictionCount = len(st.Evictions)
	summary.DispatchCount = len(st.Dispatches)
	for _, d := range st.Dispatches {
		summary.KindDistribution[d.Kind]++
	}

	return summary
}
