package coordinator

import (
	"github.com/charmbracelet/bubbles/key"

	"subs/internal/ui/input"
)

// KeyMap holds the global bindings tried after the active pane ignores a
// key, plus the pane keys shown in the help screen
type KeyMap struct {
	NextPane   key.Binding
	PrevPane   key.Binding
	Quit       key.Binding
	Redraw     key.Binding
	Suspend    key.Binding
	ReloadAll  key.Binding
	Watched    key.Binding
	NotWatched key.Binding
	Help       key.Binding

	// documented only; handled by the panes
	Move   key.Binding
	Jump   key.Binding
	Page   key.Binding
	Search key.Binding
	Next   key.Binding
	Count  key.Binding
	Choose key.Binding
	Order  key.Binding
	Tags   key.Binding
	Toggle key.Binding
	Open   key.Binding
}

// DefaultKeyMap returns the built-in bindings
func DefaultKeyMap() KeyMap {
	return KeyMap{
		NextPane:   key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next pane")),
		PrevPane:   key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "previous pane")),
		Quit:       key.NewBinding(key.WithKeys("q", "esc"), key.WithHelp("q/esc", "quit")),
		Redraw:     key.NewBinding(key.WithKeys("ctrl+l"), key.WithHelp("ctrl+l", "redraw")),
		Suspend:    key.NewBinding(key.WithKeys("ctrl+z"), key.WithHelp("ctrl+z", "suspend")),
		ReloadAll:  key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("ctrl+r", "reload all")),
		Watched:    key.NewBinding(key.WithKeys("w"), key.WithHelp("w", "only watched")),
		NotWatched: key.NewBinding(key.WithKeys("W"), key.WithHelp("W", "only not watched")),
		Help:       key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),

		Move:   key.NewBinding(key.WithKeys("j", "k", "down", "up"), key.WithHelp("j/k", "move")),
		Jump:   key.NewBinding(key.WithKeys("g", "G", "H", "M", "L"), key.WithHelp("g/G/H/M/L", "top/bottom/screen")),
		Page:   key.NewBinding(key.WithKeys("pgup", "pgdown", "ctrl+d", "ctrl+u"), key.WithHelp("pgup/pgdn", "page")),
		Search: key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search (!text negates)")),
		Next:   key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "next match / next unwatched")),
		Count:  key.NewBinding(key.WithKeys("0", "1", "2", "3", "4", "5", "6", "7", "8", "9"), key.WithHelp("0-9", "repeat count")),
		Choose: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "filter videos")),
		Order:  key.NewBinding(key.WithKeys("O", "R"), key.WithHelp("O/R", "order / reverse subscriptions")),
		Tags:   key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "edit subscription tags")),
		Toggle: key.NewBinding(key.WithKeys("N"), key.WithHelp("N", "toggle watched")),
		Open:   key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "open video")),
	}
}

// ShortHelp implements help.KeyMap
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.NextPane, k.Quit, k.Help}
}

// FullHelp implements help.KeyMap
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.NextPane, k.PrevPane, k.Quit, k.Redraw, k.Suspend, k.ReloadAll, k.Watched, k.NotWatched, k.Help},
		{k.Move, k.Jump, k.Page, k.Count, k.Search, k.Next},
		{k.Choose, k.Order, k.Tags, k.Toggle, k.Open},
	}
}

// keyName lets key codes be matched against bindings
type keyName int

func (k keyName) String() string { return input.Name(int(k)) }

func matches(code int, b ...key.Binding) bool {
	return key.Matches(keyName(code), b...)
}
