package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mabhi256/jalias/internal/trace"
	"github.com/mabhi256/jalias/utils"
)

func initialModel(source string, outcome *trace.Outcome) *Model {
	m := &Model{
		source:     source,
		outcome:    outcome,
		currentTab: SummaryTab,
		bucket:     AllBucket,
		width:      80,
		height:     24,
		help:       help.New(),
		keys:       DefaultKeyMap(),
	}
	m.objects = newObjectTable(outcome, m.bucket)
	m.resize()
	return m
}

func (m *Model) Init() tea.Cmd {
	return nil
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.resize()
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		case key.Matches(msg, m.keys.Tab1):
			m.switchTab(SummaryTab)
			return m, nil
		case key.Matches(msg, m.keys.Tab2):
			m.switchTab(ObjectsTab)
			return m, nil
		case key.Matches(msg, m.keys.Tab3):
			m.switchTab(SamplesTab)
			return m, nil
		case key.Matches(msg, m.keys.Tab):
			m.switchTab(utils.NextEnum(m.currentTab, SamplesTab))
			return m, nil
		}

		if m.currentTab == ObjectsTab {
			return m.handleObjectKeys(msg)
		}
	}
	return m, nil
}

func (m *Model) switchTab(tab TabType) {
	m.currentTab = tab
	m.showDetail = false
}

func (m *Model) handleObjectKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Left):
		m.setBucket(utils.PrevEnum(m.bucket, RemainingBucket))
		return m, nil
	case key.Matches(msg, m.keys.Right):
		m.setBucket(utils.NextEnum(m.bucket, RemainingBucket))
		return m, nil
	case key.Matches(msg, m.keys.Enter):
		m.showDetail = len(m.objects.Rows()) > 0
		return m, nil
	case key.Matches(msg, m.keys.Escape):
		m.showDetail = false
		return m, nil
	}

	var cmd tea.Cmd
	m.objects, cmd = m.objects.Update(msg)
	return m, cmd
}

func (m *Model) setBucket(b Bucket) {
	m.bucket = b
	m.showDetail = false
	m.objects.SetRows(objectRows(m.outcome, b))
	m.objects.SetCursor(0)
}

// resize fits the table between the header and the help bar.
func (m *Model) resize() {
	m.objects.SetWidth(max(m.width-2, 20))
	m.objects.SetHeight(max(m.height-8, 3))
}

func (m *Model) View() string {
	header := utils.TitleStyle.Render(fmt.Sprintf("jalias: %s", m.source))

	var content string
	switch m.currentTab {
	case SummaryTab:
		content = m.renderSummary()
	case ObjectsTab:
		content = m.renderObjects()
	case SamplesTab:
		content = m.renderSamples()
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		m.renderTabs(),
		"",
		content,
		"",
		utils.HelpBarStyle.Render(m.help.View(m.keys)),
	)
}

func (m *Model) renderTabs() string {
	tabs := make([]string, 0, 3)
	for _, t := range []TabType{SummaryTab, ObjectsTab, SamplesTab} {
		label := fmt.Sprintf("%d %s", int(t)+1, t)
		if t == m.currentTab {
			tabs = append(tabs, utils.TabActiveStyle.Render(label))
		} else {
			tabs = append(tabs, utils.TabInactiveStyle.Render(label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m *Model) lines(rows ...string) string {
	return strings.Join(rows, "\n")
}

func StartTUI(source string, outcome *trace.Outcome) error {
	program := tea.NewProgram(
		initialModel(source, outcome),
		tea.WithAltScreen(),
	)

	_, err := program.Run()
	return err
}
