package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Apply      key.Binding
	Reset      key.Binding
	Reload     key.Binding
	NextFocus  key.Binding
	PrevFocus  key.Binding
	Up         key.Binding
	Down       key.Binding
	Toggle     key.Binding
	CycleSort  key.Binding
	InStock    key.Binding
	DismissErr key.Binding
	Quit       key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Apply:      key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "apply now")),
		Reset:      key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("ctrl+r", "reset")),
		Reload:     key.NewBinding(key.WithKeys("f5"), key.WithHelp("f5", "reload")),
		NextFocus:  key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next field")),
		PrevFocus:  key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev field")),
		Up:         key.NewBinding(key.WithKeys("up"), key.WithHelp("↑", "up")),
		Down:       key.NewBinding(key.WithKeys("down"), key.WithHelp("↓", "down")),
		Toggle:     key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "toggle category")),
		CycleSort:  key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "sort")),
		InStock:    key.NewBinding(key.WithKeys("ctrl+t"), key.WithHelp("ctrl+t", "in stock only")),
		DismissErr: key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "dismiss")),
		Quit:       key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.NextFocus, k.Apply, k.CycleSort, k.InStock, k.Reset, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.NextFocus, k.PrevFocus, k.Up, k.Down, k.Toggle},
		{k.Apply, k.Reload, k.Reset, k.CycleSort, k.InStock},
		{k.DismissErr, k.Quit},
	}
}
