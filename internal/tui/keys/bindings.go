package keys

import "github.com/gdamore/tcell/v2"

// Action represents a keybinding action.
type Action struct {
	Key         tcell.Key
	Rune        rune
	Description string
	Handler     func()
	Visible     bool
}

// Matches returns true if the event matches this action.
func (a *Action) Matches(ev *tcell.EventKey) bool {
	if a.Key != tcell.KeyRune {
		return ev.Key() == a.Key
	}
	return ev.Key() == tcell.KeyRune && ev.Rune() == a.Rune
}

// Registry holds keybindings in registration order. Bindings that only
// apply while the messages pane has focus are kept apart from global ones
// so typing in the composer is never intercepted.
type Registry struct {
	global []*Action
	pane   []*Action
}

// NewRegistry creates a new keybinding registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// AddGlobal registers a binding that fires regardless of focus.
func (r *Registry) AddGlobal(action *Action) {
	r.global = append(r.global, action)
}

// AddPane registers a binding that fires only outside text input.
func (r *Registry) AddPane(action *Action) {
	r.pane = append(r.pane, action)
}

// Hints returns visible keybinding descriptions in registration order.
func (r *Registry) Hints() []string {
	var hints []string
	for _, a := range append(append([]*Action{}, r.pane...), r.global...) {
		if a.Visible {
			hints = append(hints, a.Description)
		}
	}
	return hints
}

// HandleEvent dispatches a key event to the first matching action.
// inInput reports whether a text field has focus. Returns true if a
// handler ran.
func (r *Registry) HandleEvent(ev *tcell.EventKey, inInput bool) bool {
	if !inInput {
		for _, a := range r.pane {
			if a.Matches(ev) {
				a.Handler()
				return true
			}
		}
	}
	for _, a := range r.global {
		if a.Matches(ev) {
			a.Handler()
			return true
		}
	}
	return false
}
