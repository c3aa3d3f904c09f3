// Package report renders benchmark results for humans (Markdown) and for
// tooling (YAML).
package report

import (
	"bufio"
	"fmt"
	"io"

	"lyricbench/internal/bench"
)

// WriteMarkdown writes one table per scenario followed by the ranked
// composite scores. Latencies are integer nanoseconds, improvements two
// decimals, scores four.
func WriteMarkdown(w io.Writer, res *bench.Result) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "# Lyric position lookup benchmark\n\n")
	fmt.Fprintf(bw, "- Run: `%s`\n", res.ID)
	fmt.Fprintf(bw, "- Started: %s\n", res.StartedAt.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(bw, "- Corpus: %d lines, %d ms\n", res.CorpusSize, res.TotalDuration)
	fmt.Fprintf(bw, "- Baseline: %s\n\n", res.Baseline)

	for _, sr := range res.Scenarios {
		fmt.Fprintf(bw, "## %s\n\n", sr.Scenario.Label())
		fmt.Fprintf(bw, "| Provider | Avg (ns) | P95 (ns) | P99 (ns) | vs %s |\n", res.Baseline)
		fmt.Fprintf(bw, "|---|---|---|---|---|\n")

		base, hasBase := sr.ByProvider[res.Baseline]
		for _, name := range res.Providers {
			m, ok := sr.ByProvider[name]
			if !ok || m.Failed() {
				fmt.Fprintf(bw, "| %s | FAILED | FAILED | FAILED | n/a |\n", name)
				continue
			}
			improvement := "n/a"
			if hasBase && !base.Failed() {
				improvement = fmt.Sprintf("%.2f%%", bench.Improvement(base.Stats.Avg, m.Stats.Avg))
			}
			fmt.Fprintf(bw, "| %s | %d | %d | %d | %s |\n", name, m.Stats.Avg, m.Stats.P95, m.Stats.P99, improvement)
		}
		fmt.Fprintln(bw)
	}

	fmt.Fprintf(bw, "## Composite score (weighted)\n\n")
	fmt.Fprintf(bw, "| Rank | Provider | Score |\n")
	fmt.Fprintf(bw, "|---|---|---|\n")
	for i, s := range res.Scores {
		mark := ""
		if s.Incomplete {
			mark = " (incomplete)"
		}
		fmt.Fprintf(bw, "| %d | %s%s | %.4f |\n", i+1, s.Provider, mark, s.Score)
	}

	return bw.Flush()
}
