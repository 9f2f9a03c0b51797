package harness

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sugawarayuuta/sonnet"

	"github.com/sarchlab/branchstress/completion"
	"github.com/sarchlab/branchstress/stress"
)

// PrintResults outputs a report in a human-readable format.
func (h *Harness) PrintResults(report Report) {
	w := h.config.Output
	p := h.printer

	_, _ = fmt.Fprintln(w, "=== Branch Stress Results ===")
	_, _ = fmt.Fprintf(w, "Run: %s (%s)\n", report.RunID, report.Timestamp)
	_, _ = fmt.Fprintln(w, "")

	for _, r := range report.Predictors {
		_, _ = fmt.Fprintf(w, "Predictor: %s (%s)\n", r.Predictor, r.Kind)
		_, _ = fmt.Fprintf(w, "  Result: %d  Status: 0x%02X  Completed: %v\n", r.Result, r.Status, r.Completed)
		_, _ = fmt.Fprintln(w, "  --- Phases ---")
		for _, ph := range r.Phases {
			_, _ = p.Fprintf(w, "  %-16s %8d branches %6d mispredicted %5.2f%% penalty %8d cycles\n",
				ph.Phase, ph.Branches+ph.Indirect, ph.Mispredictions+ph.IndirectMisses,
				ph.MispredictionRate, ph.PenaltyCycles)
		}
		_, _ = fmt.Fprintln(w, "  --- Totals ---")
		_, _ = p.Fprintf(w, "  Conditional:     %d (%d mispredicted)\n", r.Branches, r.Mispredictions)
		_, _ = p.Fprintf(w, "  Indirect:        %d (%d target misses)\n", r.Indirect, r.IndirectMisses)
		_, _ = p.Fprintf(w, "  Mispredict rate: %.2f%%\n", r.MispredictionRate)
		_, _ = p.Fprintf(w, "  Direction:       %.2f%% correct (%.2f%% mispredicted)\n",
			r.DirectionAccuracy, r.DirectionMispredictionRate)
		_, _ = p.Fprintf(w, "  BTB hit rate:    %.2f%%\n", r.BTBHitRate)
		_, _ = p.Fprintf(w, "  Penalty cycles:  %d\n", r.PenaltyCycles)
		_, _ = fmt.Fprintf(w, "  Trace digest:    %s\n", r.TraceDigest)
		_, _ = fmt.Fprintf(w, "  Wall Time: %v\n", r.WallTime)
		_, _ = fmt.Fprintln(w, "")
	}

	if !report.Consistent {
		_, _ = fmt.Fprintln(w, "WARNING: predictors observed different branch traces")
	}
}

// PrintCSV outputs one row per predictor and phase.
func (h *Harness) PrintCSV(report Report) {
	w := h.config.Output
	_, _ = fmt.Fprintln(w,
		"predictor,phase,score,branches,mispredictions,indirect,indirect_misses,mispredict_rate,penalty_cycles")

	for _, r := range report.Predictors {
		for _, ph := range r.Phases {
			_, _ = fmt.Fprintf(w, "%s,%s,%d,%d,%d,%d,%d,%.3f,%d\n",
				ph.Predictor,
				ph.Phase,
				ph.Score,
				ph.Branches,
				ph.Mispredictions,
				ph.Indirect,
				ph.IndirectMisses,
				ph.MispredictionRate,
				ph.PenaltyCycles,
			)
		}
	}
}

// PrintJSON outputs the report as indented JSON.
func (h *Harness) PrintJSON(report Report) error {
	data, err := sonnet.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	data = append(data, '\n')
	_, err = h.config.Output.Write(data)
	return err
}

func formatParams(params []int32) string {
	parts := make([]string, len(params))
	for i, v := range params {
		parts[i] = strconv.Itoa(int(v))
	}
	return strings.Join(parts, ", ")
}

// PrintScores outputs the per-phase score table of a plain suite run.
func (h *Harness) PrintScores(results []stress.PhaseResult) {
	w := h.config.Output
	params := map[string]string{}
	for _, p := range stress.Phases() {
		params[p.Name] = formatParams(p.Params)
	}

	_, _ = fmt.Fprintf(w, "%-16s %-10s %10s\n", "PHASE", "PARAMS", "SCORE")
	for _, r := range results {
		_, _ = fmt.Fprintf(w, "%-16s %-10s %10s\n", r.Phase, params[r.Phase], h.printer.Sprintf("%d", r.Score))
	}
	_, _ = fmt.Fprintf(w, "%-16s %-10s %10s\n", "total", "", h.printer.Sprintf("%d", stress.Total(results)))
}

// PrintCompletion outputs the three completion registers.
func (h *Harness) PrintCompletion(c completion.Completion) {
	w := h.config.Output
	_, _ = fmt.Fprintf(w, "RESULT   [0x%03X] = %d\n", completion.ResultAddr, c.Result)
	_, _ = fmt.Fprintf(w, "STATUS   [0x%03X] = 0x%02X\n", completion.StatusAddr, c.Status)
	_, _ = fmt.Fprintf(w, "SENTINEL [0x%03X] = 0x%08X\n", completion.SentinelAddr, completion.SentinelValue)
}
