package tui

import (
	"fmt"
	"maps"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"github.com/mabhi256/jalias/internal/heap"
	"github.com/mabhi256/jalias/internal/report"
	"github.com/mabhi256/jalias/internal/trace"
	"github.com/mabhi256/jalias/utils"
)

const (
	idWidth   = 10
	typeWidth = 32
	flagWidth = 9
)

func bucketResults(out *trace.Outcome, b Bucket) map[string]heap.Result {
	switch b {
	case DeallocatedBucket:
		return out.Deallocated
	case RemainingBucket:
		return out.Remaining
	}
	all := maps.Clone(out.Deallocated)
	if all == nil {
		all = make(map[string]heap.Result, len(out.Remaining))
	}
	maps.Copy(all, out.Remaining)
	return all
}

func objectColumns(out *trace.Outcome) []table.Column {
	cols := []table.Column{
		{Title: "ID", Width: idWidth},
		{Title: "Type", Width: typeWidth},
		{Title: "State", Width: 11},
	}
	for _, name := range out.Templates {
		cols = append(cols, table.Column{
			Title: utils.TruncateString(name, 24),
			Width: max(flagWidth, min(len(name), 24)),
		})
	}
	return cols
}

// objectRows lists the objects of a bucket ordered by id, with the flags of
// every monitor in template order.
func objectRows(out *trace.Outcome, b Bucket) []table.Row {
	results := bucketResults(out, b)
	ids := report.SortedIDs(results)
	rows := make([]table.Row, 0, len(ids))
	for _, id := range ids {
		res := results[id]
		state := "deallocated"
		if _, ok := out.Remaining[id]; ok {
			state = "remaining"
		}
		row := table.Row{
			utils.TruncateString(id, idWidth),
			utils.TruncateString(res.Type, typeWidth),
			state,
		}
		for _, mon := range res.Monitors {
			row = append(row, report.Flags(mon.IsAccepting(), mon.IsFrozen()))
		}
		rows = append(rows, row)
	}
	return rows
}

func newObjectTable(out *trace.Outcome, b Bucket) table.Model {
	t := table.New(
		table.WithColumns(objectColumns(out)),
		table.WithRows(objectRows(out, b)),
		table.WithFocused(true),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(utils.BorderColor).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("#FFFFFF")).
		Background(utils.InfoColor)
	t.SetStyles(s)
	return t
}

func (m *Model) renderObjects() string {
	results := bucketResults(m.outcome, m.bucket)
	title := fmt.Sprintf("Objects: %s (%d)   ←/→ change bucket", m.bucket, len(results))
	if len(results) == 0 {
		return m.lines(utils.InfoStyle.Render(title), "", utils.MutedStyle.Render("No objects in this bucket"))
	}
	if m.showDetail {
		return m.lines(utils.InfoStyle.Render(title), "", m.renderDetail(results))
	}
	return m.lines(utils.InfoStyle.Render(title), m.objects.View())
}

// renderDetail shows the full monitor renderings of the selected object.
func (m *Model) renderDetail(results map[string]heap.Result) string {
	ids := report.SortedIDs(results)
	cursor := m.objects.Cursor()
	if cursor < 0 || cursor >= len(ids) {
		return ""
	}
	id := ids[cursor]
	res := results[id]

	rows := []string{
		utils.FormatKeyValue("Object", id, 8),
		utils.FormatKeyValue("Type", res.Type, 8),
		"",
		utils.MutedStyle.Render("A = Accepting, F = Frozen"),
	}
	for _, mon := range res.Monitors {
		style := utils.CriticalLightStyle
		if mon.IsAccepting() {
			style = utils.GoodLightStyle
		}
		rows = append(rows, fmt.Sprintf("%s  %s",
			style.Render(report.Flags(mon.IsAccepting(), mon.IsFrozen())),
			utils.TruncateString(mon.String(), max(m.width-12, 20))))
	}
	return m.lines(rows...)
}
