package tui

import (
	"fmt"

	"github.com/mabhi256/jalias/internal/report"
	"github.com/mabhi256/jalias/utils"
)

func (m *Model) renderSummary() string {
	out := m.outcome
	dealloc := report.Tally(out.Deallocated)
	remaining := report.Tally(out.Remaining)

	rows := []string{
		utils.FormatKeyValue("Run", out.RunID, 14),
		utils.FormatKeyValue("Events", fmt.Sprintf("%d", out.Events), 14),
		utils.FormatKeyValue("Objects", fmt.Sprintf("%d", dealloc.Objects+remaining.Objects), 14),
		utils.FormatKeyValue("Elapsed", utils.FormatDuration(out.Elapsed), 14),
	}

	rows = append(rows, m.statSection("Deallocated objects", dealloc)...)
	rows = append(rows, m.statSection("Remaining objects", remaining)...)
	rows = append(rows, m.statSection("All objects", report.Combine(dealloc, remaining))...)

	rows = append(rows, "", utils.HeaderStyle.Render("Trace anomalies"))
	a := out.Anomalies
	if a.Total() == 0 {
		rows = append(rows, utils.GoodStyle.Render("None"))
	} else {
		rows = append(rows,
			utils.FormatKeyValue("Implicit objects", fmt.Sprintf("%d", a.ImplicitObjects), 22),
			utils.FormatKeyValue("Re-allocations", fmt.Sprintf("%d", a.Reannounced), 22),
			utils.FormatKeyValue("Stale removals", fmt.Sprintf("%d", a.StaleRemovals), 22),
			utils.FormatKeyValue("Residual deallocs", fmt.Sprintf("%d", a.ResidualDeallocs), 22),
			utils.FormatKeyValue("Null holders", fmt.Sprintf("%d", a.NullHolders), 22),
		)
	}
	return m.lines(rows...)
}

func (m *Model) statSection(title string, s report.Stats) []string {
	rows := []string{"", utils.HeaderStyle.Render(fmt.Sprintf("%s (%d)", title, s.Objects))}
	if s.Objects == 0 {
		return append(rows, utils.MutedStyle.Render("   No objects"))
	}
	barWidth := max(10, min(30, m.width/4))
	lines := report.StatLines(s)
	for i, st := range s.Monitors {
		bar := utils.CreateProgressBar(st.Ratio(), barWidth, utils.AcceptanceColor(st.Ratio()))
		rows = append(rows, fmt.Sprintf("%s %s", bar, utils.TruncateString(lines[i], max(m.width-barWidth-2, 20))))
	}
	return rows
}
