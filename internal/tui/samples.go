package tui

import (
	"fmt"

	"github.com/NimbleMarkets/ntcharts/sparkline"
	"github.com/charmbracelet/lipgloss"

	"github.com/mabhi256/jalias/internal/report"
	"github.com/mabhi256/jalias/internal/trace"
	"github.com/mabhi256/jalias/utils"
)

const sparkHeight = 4

func (m *Model) renderSamples() string {
	names := report.SampleNames(m.outcome)
	if len(names) == 0 {
		return utils.MutedStyle.Render("No collectors were enabled for this run")
	}

	width := max(m.width-4, 20)
	var rows []string
	for _, name := range names {
		c, ok := trace.CollectorByName(name)
		if !ok {
			continue
		}
		samples := m.outcome.Samples[name]
		rows = append(rows, utils.HeaderStyle.Render(fmt.Sprintf("%s (%d samples)", name, len(samples))))
		for col, column := range c.Columns() {
			values := columnValues(samples, col)
			rows = append(rows,
				lipgloss.JoinHorizontal(lipgloss.Bottom,
					utils.PadRight(column, 10),
					renderSparkline(values, width-12),
				),
				utils.MutedStyle.Render(fmt.Sprintf("%10s last %s", "", lastValue(values))),
			)
		}
		rows = append(rows, "")
	}
	return m.lines(rows...)
}

func columnValues(samples []trace.Sample, col int) []float64 {
	values := make([]float64, 0, len(samples))
	for _, s := range samples {
		if col < len(s.Values) {
			values = append(values, s.Values[col])
		}
	}
	return values
}

func lastValue(values []float64) string {
	if len(values) == 0 {
		return "-"
	}
	return fmt.Sprintf("%.2f", values[len(values)-1])
}

func renderSparkline(values []float64, width int) string {
	sl := sparkline.New(width, sparkHeight)
	sl.PushAll(utils.Downsample(values, width))
	sl.Draw()
	return sl.View()
}
