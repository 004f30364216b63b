package tui

import (
	"github.com/charmbracelet/bubbles/v2/key"
)

type KeyMap struct {
	Quit,
	NextTab,
	PrevTab,
	FeedTab,
	CommitsTab,
	DiffTab,
	Filter,
	ClearFilter,
	ApplyFilter,
	Copy,
	Open key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		NextTab: key.NewBinding(
			key.WithKeys("tab", "l", "right"),
			key.WithHelp("tab", "next tab"),
		),
		PrevTab: key.NewBinding(
			key.WithKeys("shift+tab", "h", "left"),
			key.WithHelp("shift+tab", "previous tab"),
		),
		FeedTab: key.NewBinding(
			key.WithKeys("1"),
			key.WithHelp("1", "feed"),
		),
		CommitsTab: key.NewBinding(
			key.WithKeys("2"),
			key.WithHelp("2", "commits"),
		),
		DiffTab: key.NewBinding(
			key.WithKeys("3"),
			key.WithHelp("3", "diff"),
		),
		Filter: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "filter"),
		),
		ClearFilter: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "clear filter"),
		),
		ApplyFilter: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "apply"),
		),
		Copy: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "copy"),
		),
		Open: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "show diff"),
		),
	}
}

// ShortHelp returns the bindings shown in the help line.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{
		k.NextTab,
		k.Filter,
		k.Copy,
		k.Open,
		k.Quit,
	}
}

func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.FeedTab, k.CommitsTab, k.DiffTab, k.NextTab, k.PrevTab},
		{k.Filter, k.ClearFilter, k.Copy, k.Open, k.Quit},
	}
}
