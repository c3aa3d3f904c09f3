// Package metrics exports benchmark results in the Prometheus text format so
// a node_exporter textfile collector can chart runs over time.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"lyricbench/internal/bench"
)

const namespace = "lyricbench"

// Recorder holds the gauges for a single run on a private registry.
type Recorder struct {
	reg      *prometheus.Registry
	latency  *prometheus.GaugeVec
	score    *prometheus.GaugeVec
	failures *prometheus.CounterVec
	corpus   prometheus.Gauge
	elapsed  prometheus.Gauge
}

func NewRecorder() *Recorder {
	r := &Recorder{
		reg: prometheus.NewRegistry(),
		latency: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "query_latency_nanoseconds",
			Help:      "Per-query lookup latency by provider, scenario and statistic.",
		}, []string{"provider", "scenario", "stat"}),
		score: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "composite_score",
			Help:      "Weighted speedup over the baseline provider.",
		}, []string{"provider", "baseline"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "provider_failures_total",
			Help:      "Scenarios in which a provider failed.",
		}, []string{"provider", "scenario"}),
		corpus: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "corpus_lines",
			Help:      "Number of lines in the benchmark corpus.",
		}),
		elapsed: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall time of the benchmark run.",
		}),
	}
	r.reg.MustRegister(r.latency, r.score, r.failures, r.corpus, r.elapsed)
	return r
}

// Observe records every measurement and score of res.
func (r *Recorder) Observe(res *bench.Result) {
	r.corpus.Set(float64(res.CorpusSize))
	r.elapsed.Set(res.Elapsed.Seconds())
	for _, sr := range res.Scenarios {
		scenario := sr.Scenario.Key()
		for name, m := range sr.ByProvider {
			if m.Failed() {
				r.failures.WithLabelValues(name, scenario).Inc()
				continue
			}
			r.latency.WithLabelValues(name, scenario, "avg").Set(float64(m.Stats.Avg))
			r.latency.WithLabelValues(name, scenario, "p95").Set(float64(m.Stats.P95))
			r.latency.WithLabelValues(name, scenario, "p99").Set(float64(m.Stats.P99))
		}
	}
	for _, sc := range res.Scores {
		r.score.WithLabelValues(sc.Provider, res.Baseline).Set(sc.Score)
	}
}

// WriteTextfile writes the gathered metrics to path atomically.
func (r *Recorder) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.reg)
}
