package report

import (
	"fmt"
	"io"
	"time"

	"gopkg.in/yaml.v3"

	"lyricbench/internal/bench"
)

type yamlRun struct {
	ID            string                 `yaml:"id"`
	StartedAt     time.Time              `yaml:"started_at"`
	ElapsedMs     int64                  `yaml:"elapsed_ms"`
	CorpusSize    int                    `yaml:"corpus_size"`
	TotalDuration int64                  `yaml:"total_duration_ms"`
	Baseline      string                 `yaml:"baseline"`
	Scenarios     []yamlScenario         `yaml:"scenarios"`
	Scores        []bench.CompositeScore `yaml:"scores"`
}

type yamlScenario struct {
	Key       string            `yaml:"key"`
	Label     string            `yaml:"label"`
	Weight    float64           `yaml:"weight"`
	Positions int               `yaml:"positions"`
	Providers []yamlMeasurement `yaml:"providers"`
}

type yamlMeasurement struct {
	Name  string              `yaml:"name"`
	Stats *bench.LatencyStats `yaml:"stats,omitempty"`
	Error string              `yaml:"error,omitempty"`
}

// WriteYAML exports res in a stable, provider-ordered layout.
func WriteYAML(w io.Writer, res *bench.Result) error {
	out := yamlRun{
		ID:            res.ID.String(),
		StartedAt:     res.StartedAt.UTC(),
		ElapsedMs:     res.Elapsed.Milliseconds(),
		CorpusSize:    res.CorpusSize,
		TotalDuration: res.TotalDuration,
		Baseline:      res.Baseline,
		Scores:        res.Scores,
	}
	for _, sr := range res.Scenarios {
		ys := yamlScenario{
			Key:       sr.Scenario.Key(),
			Label:     sr.Scenario.Label(),
			Weight:    sr.Weight,
			Positions: sr.Positions,
		}
		for _, name := range res.Providers {
			m := sr.ByProvider[name]
			ym := yamlMeasurement{Name: name}
			if m.Failed() {
				ym.Error = m.Err.Error()
			} else {
				stats := m.Stats
				ym.Stats = &stats
			}
			ys.Providers = append(ys.Providers, ym)
		}
		out.Scenarios = append(out.Scenarios, ys)
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("report: encode yaml: %w", err)
	}
	return enc.Close()
}
