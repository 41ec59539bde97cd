package metrics

import (
	"sync"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

const namespace = "mdpo"

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	once          sync.Once
	stageDuration *prom.HistogramVec
	documents     *prom.CounterVec
	units         *prom.CounterVec
	workers       prom.Gauge
}

// NewPrometheusRecorder constructs and registers Prometheus metrics (idempotent).
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{}
	pr.once.Do(func() {
		pr.stageDuration = prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Duration of extraction, export and merge stages",
			Buckets:   prom.DefBuckets,
		}, []string{"stage"})
		pr.documents = prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "documents_total",
			Help:      "Documents processed by outcome",
		}, []string{"result"})
		pr.units = prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "units_total",
			Help:      "Translation units extracted by kind",
		}, []string{"kind"})
		pr.workers = prom.NewGauge(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "extract_workers",
			Help:      "Worker count used by the last extraction run",
		})
		reg.MustRegister(pr.stageDuration, pr.documents, pr.units, pr.workers)
	})
	return pr
}

func (p *PrometheusRecorder) ObserveStageDuration(stage string, d time.Duration) {
	if p == nil || p.stageDuration == nil {
		return
	}
	p.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncDocumentResult(result ResultLabel) {
	if p == nil || p.documents == nil {
		return
	}
	p.documents.WithLabelValues(string(result)).Inc()
}

func (p *PrometheusRecorder) AddUnits(kind string, n int) {
	if p == nil || p.units == nil || n <= 0 {
		return
	}
	p.units.WithLabelValues(kind).Add(float64(n))
}

func (p *PrometheusRecorder) SetWorkers(n int) {
	if p == nil || p.workers == nil {
		return
	}
	p.workers.Set(float64(n))
}
