package tui

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"

	"github.com/mabhi256/jalias/internal/trace"
)

type Model struct {
	// Data
	source  string
	outcome *trace.Outcome

	// UI State
	currentTab TabType
	bucket     Bucket
	width      int
	height     int
	showDetail bool

	objects table.Model
	help    help.Model
	keys    KeyMap
}

type TabType int

const (
	SummaryTab TabType = iota
	ObjectsTab
	SamplesTab
)

func (t TabType) String() string {
	switch t {
	case SummaryTab:
		return "Summary"
	case ObjectsTab:
		return "Objects"
	case SamplesTab:
		return "Samples"
	}
	return "?"
}

// Bucket selects which results the objects table lists.
type Bucket int

const (
	AllBucket Bucket = iota
	DeallocatedBucket
	RemainingBucket
)

func (b Bucket) String() string {
	switch b {
	case DeallocatedBucket:
		return "deallocated"
	case RemainingBucket:
		return "remaining"
	}
	return "all"
}

type KeyMap struct {
	Tab    key.Binding
	Tab1   key.Binding
	Tab2   key.Binding
	Tab3   key.Binding
	Left   key.Binding
	Right  key.Binding
	Enter  key.Binding
	Escape key.Binding
	Help   key.Binding
	Quit   key.Binding
}

func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Tab, k.Left, k.Right, k.Enter, k.Help, k.Quit}
}

func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Tab1, k.Tab2, k.Tab3, k.Tab},
		{k.Left, k.Right, k.Enter, k.Escape},
		{k.Help, k.Quit},
	}
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Tab:    key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next view")),
		Tab1:   key.NewBinding(key.WithKeys("1"), key.WithHelp("1", "summary")),
		Tab2:   key.NewBinding(key.WithKeys("2"), key.WithHelp("2", "objects")),
		Tab3:   key.NewBinding(key.WithKeys("3"), key.WithHelp("3", "samples")),
		Left:   key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "prev bucket")),
		Right:  key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "next bucket")),
		Enter:  key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "details")),
		Escape: key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		Help:   key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:   key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}
