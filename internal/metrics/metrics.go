package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Recorder holds the collectors of one pipeline run on a private registry.
// A nil *Recorder is valid and records nothing.
type Recorder struct {
	reg *prometheus.Registry

	filesProcessed *prometheus.CounterVec
	pagesSelected  *prometheus.CounterVec
	outputPages    *prometheus.GaugeVec
	runDuration    prometheus.Gauge
}

// New returns a Recorder whose series carry pipeline as a constant label.
func New(pipeline string) *Recorder {
	labels := prometheus.Labels{"pipeline": pipeline}
	r := &Recorder{
		reg: prometheus.NewRegistry(),
		filesProcessed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   "pagesift",
				Name:        "files_processed_total",
				Help:        "Input files processed by result (ok, skipped, failed)",
				ConstLabels: labels,
			},
			[]string{"result"},
		),
		pagesSelected: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   "pagesift",
				Name:        "pages_selected_total",
				Help:        "Pages selected for an output category",
				ConstLabels: labels,
			},
			[]string{"category"},
		),
		outputPages: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace:   "pagesift",
				Name:        "output_pages",
				Help:        "Pages in the written output document",
				ConstLabels: labels,
			},
			[]string{"category"},
		),
		runDuration: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace:   "pagesift",
				Name:        "run_duration_seconds",
				Help:        "Wall time of the last run",
				ConstLabels: labels,
			},
		),
	}
	r.reg.MustRegister(r.filesProcessed, r.pagesSelected, r.outputPages, r.runDuration)
	return r
}

func (r *Recorder) FileProcessed(result string) {
	if r == nil {
		return
	}
	r.filesProcessed.WithLabelValues(result).Inc()
}

func (r *Recorder) PagesSelected(category string, n int) {
	if r == nil {
		return
	}
	r.pagesSelected.WithLabelValues(category).Add(float64(n))
}

func (r *Recorder) OutputPages(category string, n int) {
	if r == nil {
		return
	}
	r.outputPages.WithLabelValues(category).Set(float64(n))
}

func (r *Recorder) ObserveRun(d time.Duration) {
	if r == nil {
		return
	}
	r.runDuration.Set(d.Seconds())
}

// Gatherer exposes the private registry.
func (r *Recorder) Gatherer() prometheus.Gatherer { return r.reg }

// WriteTextfile writes all series in the text exposition format for the
// node_exporter textfile collector. An empty path is a no-op.
func (r *Recorder) WriteTextfile(path string) error {
	if r == nil || path == "" {
		return nil
	}
	return prometheus.WriteToTextfile(path, r.reg)
}
