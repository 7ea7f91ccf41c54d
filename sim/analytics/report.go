package analytics

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/hospital-sim/hospital-sim/sim"
)

// Options controls frame aggregation and interval estimation.
type Options struct {
	FrameLength float64        `yaml:"frame_length" json:"frame_length"` // minutes per frame
	Alpha       float64        `yaml:"alpha" json:"alpha"`               // significance level
	Cutoffs     map[string]int `yaml:"cutoffs" json:"cutoffs"`           // warm-up frames skipped per metric
}

// DefaultOptions uses eight-hour frames, a 95% interval and no warm-up.
func DefaultOptions() Options {
	return Options{FrameLength: 480, Alpha: 0.05}
}

// Validate returns an error for unusable options.
func (o Options) Validate() error {
	if !(o.FrameLength > 0) {
		return fmt.Errorf("frame length must be positive, got %v", o.FrameLength)
	}
	if !(o.Alpha > 0 && o.Alpha < 1) {
		return fmt.Errorf("alpha must be in (0, 1), got %v", o.Alpha)
	}
	for name, c := range o.Cutoffs {
		if c < 0 {
			return fmt.Errorf("cutoff for %s must be >= 0, got %d", name, c)
		}
	}
	return nil
}

// MetricResult holds the ensemble series and overall estimate of one metric.
type MetricResult struct {
	Ensemble   []float64  `json:"ensemble"`
	Estimation Estimation `json:"estimation"`
}

// Report is the analysis of one batch of replications.
type Report struct {
	RunID        string                  `json:"run_id"`
	Replications int                     `json:"replications"`
	Seeds        []int64                 `json:"seeds"`
	Horizon      float64                 `json:"horizon"`
	FrameLength  float64                 `json:"frame_length"`
	Alpha        float64                 `json:"alpha"`
	Metrics      map[string]MetricResult `json:"metrics"`
	Totals       sim.Stats               `json:"totals"`
}

// Analyze computes every metric in MetricNames across reps. All replications
// must share one horizon.
func Analyze(reps []*sim.Replication, opts Options) (*Report, error) {
	if len(reps) == 0 {
		return nil, errors.New("no replications to analyze")
	}
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("analysis options: %w", err)
	}
	horizon := reps[0].Horizon
	data := make([]*ReplicationData, len(reps))
	seeds := make([]int64, len(reps))
	for i, r := range reps {
		if r.Horizon != horizon {
			return nil, fmt.Errorf("replication seed=%d has horizon %v, expected %v", r.Seed, r.Horizon, horizon)
		}
		data[i] = FromReplication(r)
		seeds[i] = r.Seed
	}

	report := &Report{
		RunID:        uuid.NewString(),
		Replications: len(reps),
		Seeds:        seeds,
		Horizon:      horizon,
		FrameLength:  opts.FrameLength,
		Alpha:        opts.Alpha,
		Metrics:      make(map[string]MetricResult, len(MetricNames)),
		Totals:       sumStats(reps),
	}
	for _, metric := range MetricNames {
		per := make([][]float64, len(data))
		for i, d := range data {
			frames, err := d.Frames(metric, opts.FrameLength)
			if err != nil {
				return nil, err
			}
			per[i] = frames
		}
		ensemble := EnsembleMean(per)
		report.Metrics[metric] = MetricResult{
			Ensemble:   ensemble,
			Estimation: Estimate(ensemble, opts.Alpha, opts.Cutoffs[metric]),
		}
	}
	logrus.WithFields(logrus.Fields{
		"run_id":       report.RunID,
		"replications": report.Replications,
		"frames":       FrameCount(horizon, opts.FrameLength),
	}).Info("analysis complete")
	return report, nil
}

func sumStats(reps []*sim.Replication) sim.Stats {
	var total sim.Stats
	total.Arrivals = map[sim.PatientClass]int{}
	total.Queued = map[sim.Section]int{}
	total.Rejections = map[sim.Section]int{}
	for _, r := range reps {
		s := r.Stats
		for k, v := range s.Arrivals {
			total.Arrivals[k] += v
		}
		for k, v := range s.Queued {
			total.Queued[k] += v
		}
		for k, v := range s.Rejections {
			total.Rejections[k] += v
		}
		total.MassCasualtyEvents += s.MassCasualtyEvents
		total.Deaths += s.Deaths
		total.Resurgeries += s.Resurgeries
		total.Evictions += s.Evictions
		total.PowerOutages += s.PowerOutages
		total.ClampedDurations += s.ClampedDurations
		total.EventsDispatched += s.EventsDispatched
	}
	return total
}

// WriteReportJSON writes the report as indented JSON.
func WriteReportJSON(path string, r *Report) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling report: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	return nil
}

var notificationColumns = []string{"time", "kind", "name", "value"}

// WriteNotificationsCSV writes a replication's notification log, one row
// per occupancy or queue change, in emission order.
func WriteNotificationsCSV(path string, notes []sim.Notification) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating notifications file: %w", err)
	}
	defer func() { _ = file.Close() }()

	writer := csv.NewWriter(file)
	if err := writer.Write(notificationColumns); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}
	for i, n := range notes {
		row := []string{
			strconv.FormatFloat(n.Time, 'f', -1, 64),
			string(n.Kind),
			n.Name,
			strconv.Itoa(n.Value),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("writing CSV row %d: %w", i, err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("flushing notifications: %w", err)
	}
	return nil
}
