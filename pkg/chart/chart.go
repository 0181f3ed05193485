// Package chart renders execution history as a standalone HTML chart.
package chart

import (
	"fmt"
	"os"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/mfgops/swctl/internal/core/domain"
)

// WriteExecutionChart renders a bar chart of execution durations, one
// bar per execution in chronological order, to an HTML file.
func WriteExecutionChart(path, title string, executions []domain.Execution) error {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    title,
			Subtitle: "execution duration in seconds",
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)

	labels := make([]string, 0, len(executions))
	durations := make([]opts.BarData, 0, len(executions))

	// Newest first on the wire; chart oldest to newest.
	for i := len(executions) - 1; i >= 0; i-- {
		e := executions[i]
		labels = append(labels, executionLabel(e))
		durations = append(durations, opts.BarData{
			Name:  e.State,
			Value: durationSeconds(e),
		})
	}

	bar.SetXAxis(labels).AddSeries("duration", durations)

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating chart file: %w", err)
	}
	defer f.Close()

	if err := bar.Render(f); err != nil {
		return fmt.Errorf("rendering chart: %w", err)
	}
	return nil
}

func executionLabel(e domain.Execution) string {
	if e.StartTime == nil {
		return e.ID
	}
	return e.StartTime.UTC().Format("01-02 15:04")
}

// durationSeconds reports the execution's wall time. Executions still
// running, or missing either timestamp, chart as zero.
func durationSeconds(e domain.Execution) float64 {
	if e.StartTime == nil || e.EndTime == nil {
		return 0
	}
	d := e.EndTime.Sub(*e.StartTime)
	if d < 0 {
		return 0
	}
	return d.Round(time.Second).Seconds()
}
