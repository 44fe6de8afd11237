package ui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Quit      key.Binding
	Help      key.Binding
	Escape    key.Binding
	Search    key.Binding
	NextTab   key.Binding
	PrevTab   key.Binding
	Up        key.Binding
	Down      key.Binding
	Top       key.Binding
	Bottom    key.Binding
	Detail    key.Binding
	Star      key.Binding
	Remove    key.Binding
	Refresh   key.Binding
	Status    key.Binding
	Populate  key.Binding
	Ingest    key.Binding
	Debug     key.Binding
	JumpToTab key.Binding
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Search, k.NextTab, k.Star, k.Refresh, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Top, k.Bottom, k.Detail},
		{k.Search, k.NextTab, k.PrevTab, k.JumpToTab},
		{k.Star, k.Remove, k.Refresh, k.Status},
		{k.Populate, k.Ingest, k.Debug, k.Help, k.Quit},
	}
}

var keys = keyMap{
	Quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	Help:      key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
	Escape:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "close")),
	Search:    key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
	NextTab:   key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next tab")),
	PrevTab:   key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev tab")),
	Up:        key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k/↑", "up")),
	Down:      key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j/↓", "down")),
	Top:       key.NewBinding(key.WithKeys("g", "home"), key.WithHelp("g", "top")),
	Bottom:    key.NewBinding(key.WithKeys("G", "end"), key.WithHelp("G", "bottom")),
	Detail:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "details")),
	Star:      key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "add to collection")),
	Remove:    key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "remove from collection")),
	Refresh:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
	Status:    key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "check database")),
	Populate:  key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "sample data")),
	Ingest:    key.NewBinding(key.WithKeys("i"), key.WithHelp("i", "fetch arXiv")),
	Debug:     key.NewBinding(key.WithKeys("D"), key.WithHelp("D", "debug")),
	JumpToTab: key.NewBinding(key.WithKeys("1", "2", "3", "4", "5", "6"), key.WithHelp("1-6", "jump to tab")),
}
