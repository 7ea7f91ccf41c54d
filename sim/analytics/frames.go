package analytics

import (
	"fmt"
	"strings"

	"github.com/hospital-sim/hospital-sim/sim"
)

const (
	MetricPatientWaits    = "patient_waits"
	MetricEmergencyIsFull = "emergency_is_full"
	MetricResurgery       = "resurgery"
	occupiedSuffix        = "_occupied"
)

// MetricNames lists every metric in report order.
var MetricNames = buildMetricNames()

func buildMetricNames() []string {
	names := []string{MetricPatientWaits, MetricEmergencyIsFull, MetricResurgery}
	names = append(names, sim.QueueNames...)
	for _, s := range sim.Sections {
		names = append(names, string(s)+occupiedSuffix)
	}
	return names
}

// FrameCount is the number of whole frames that fit in horizon.
func FrameCount(horizon, frameLength float64) int {
	if frameLength <= 0 {
		return 0
	}
	return int(horizon / frameLength)
}

// Frames returns the per-frame average of metric for one replication.
// Frames without observations carry the previous frame's value forward,
// starting from 0. Observations beyond the last whole frame are ignored.
func (d *ReplicationData) Frames(metric string, frameLength float64) ([]float64, error) {
	buckets := make(map[int][]float64)
	switch {
	case metric == MetricPatientWaits:
		for _, w := range d.Waits {
			f := frameIndex(w.Enter, frameLength)
			buckets[f] = append(buckets[f], w.Stay)
		}
	case metric == MetricEmergencyIsFull:
		bucketSeries(buckets, d.EmergencyFull, frameLength)
	case metric == MetricResurgery:
		bucketSeries(buckets, d.Resurgery, frameLength)
	case strings.HasSuffix(metric, occupiedSuffix):
		series, ok := d.Occupancy[strings.TrimSuffix(metric, occupiedSuffix)]
		if !ok {
			return nil, fmt.Errorf("unknown metric %q", metric)
		}
		bucketSeries(buckets, series, frameLength)
	default:
		series, ok := d.Queues[metric]
		if !ok {
			return nil, fmt.Errorf("unknown metric %q", metric)
		}
		bucketSeries(buckets, series, frameLength)
	}
	return fillFrames(buckets, FrameCount(d.Horizon, frameLength)), nil
}

func bucketSeries(buckets map[int][]float64, s Series, frameLength float64) {
	for _, t := range s.Times() {
		f := frameIndex(t, frameLength)
		buckets[f] = append(buckets[f], s[t])
	}
}

func fillFrames(buckets map[int][]float64, total int) []float64 {
	out := make([]float64, total)
	last := 0.0
	for f := 0; f < total; f++ {
		if vals, ok := buckets[f]; ok && len(vals) > 0 {
			sum := 0.0
			for _, v := range vals {
				sum += v
			}
			last = sum / float64(len(vals))
		}
		out[f] = last
	}
	return out
}
