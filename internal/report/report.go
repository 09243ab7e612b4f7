// Package report renders a runner.Report for humans (text) or machines
// (JSON, YAML).
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"gopkg.in/yaml.v3"

	"github.com/pinchtab/todobench/internal/runner"
)

// PhaseStat aggregates the steps of one phase.
type PhaseStat struct {
	Phase string
	Steps int
	Total time.Duration
	Max   time.Duration
}

// Mean is the average step duration.
func (p PhaseStat) Mean() time.Duration {
	if p.Steps == 0 {
		return 0
	}
	return p.Total / time.Duration(p.Steps)
}

// Phases groups rep's steps by phase in first-seen order.
func Phases(rep *runner.Report) []PhaseStat {
	var out []PhaseStat
	idx := make(map[string]int)
	for _, s := range rep.Steps {
		i, ok := idx[s.Phase]
		if !ok {
			i = len(out)
			idx[s.Phase] = i
			out = append(out, PhaseStat{Phase: s.Phase})
		}
		p := &out[i]
		p.Steps++
		p.Total += s.Duration
		if s.Duration > p.Max {
			p.Max = s.Duration
		}
	}
	return out
}

// Write encodes rep to w in format ("text", "json" or "yaml").
func Write(w io.Writer, rep *runner.Report, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(rep)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(rep); err != nil {
			return err
		}
		return enc.Close()
	case "text", "":
		return writeText(w, rep)
	default:
		return fmt.Errorf("report: unknown format %q", format)
	}
}

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	failStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
)

func writeText(w io.Writer, rep *runner.Report) error {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("PHASE", "STEPS", "TOTAL", "MEAN", "MAX").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	for _, p := range Phases(rep) {
		t.Row(p.Phase, fmt.Sprint(p.Steps), round(p.Total), round(p.Mean()), round(p.Max))
	}

	if _, err := fmt.Fprintf(w, "%s: %d/%d steps in %s\n", rep.Suite, rep.Completed(), rep.Planned, round(rep.Duration)); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, t.Render()); err != nil {
		return err
	}
	if rep.Remaining >= 0 {
		if _, err := fmt.Fprintf(w, "entries remaining: %d\n", rep.Remaining); err != nil {
			return err
		}
	}
	switch {
	case rep.Failed != nil:
		_, err := fmt.Fprintln(w, failStyle.Render(fmt.Sprintf("FAILED at %q: %s", rep.Failed.Name, rep.Failed.Error)))
		return err
	case rep.Aborted:
		_, err := fmt.Fprintln(w, failStyle.Render("ABORTED"))
		return err
	}
	return nil
}

func round(d time.Duration) string {
	return d.Round(time.Microsecond).String()
}
