package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap holds the table and modal key bindings.
type KeyMap struct {
	Up       key.Binding
	Down     key.Binding
	Left     key.Binding
	Right    key.Binding
	SortAsc  key.Binding
	SortDesc key.Binding
	Create   key.Binding
	Edit     key.Binding
	Delete   key.Binding
	Reload   key.Binding
	Quit     key.Binding

	// ForceQuit works even while a prompt is open.
	ForceQuit key.Binding

	Accept key.Binding
	Cancel key.Binding
	Yes    key.Binding
	No     key.Binding
}

// DefaultKeyMap returns the standard bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up:        key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:      key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Left:      key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "left")),
		Right:     key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "right")),
		SortAsc:   key.NewBinding(key.WithKeys("("), key.WithHelp("(", "sort asc")),
		SortDesc:  key.NewBinding(key.WithKeys(")"), key.WithHelp(")", "sort desc")),
		Create:    key.NewBinding(key.WithKeys("ctrl+n"), key.WithHelp("ctrl+n", "new")),
		Edit:      key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit")),
		Delete:    key.NewBinding(key.WithKeys("delete"), key.WithHelp("del", "delete")),
		Reload:    key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
		Quit:      key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit")),
		ForceQuit: key.NewBinding(key.WithKeys("ctrl+c")),
		Accept:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "ok")),
		Cancel:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
		Yes:       key.NewBinding(key.WithKeys("y", "Y")),
		No:        key.NewBinding(key.WithKeys("n", "N")),
	}
}

// ShortHelp implements help.KeyMap.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.SortAsc, k.SortDesc, k.Create, k.Edit, k.Delete, k.Reload, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Left, k.Right},
		{k.SortAsc, k.SortDesc, k.Reload},
		{k.Create, k.Edit, k.Delete, k.Quit},
	}
}
