package keys

import (
	"testing"

	"github.com/gdamore/tcell/v2"
)

func TestRegistryScopes(t *testing.T) {
	r := NewRegistry()
	var quit, refresh int
	r.AddPane(&Action{Key: tcell.KeyRune, Rune: 'q', Description: "q:quit", Visible: true, Handler: func() { quit++ }})
	r.AddGlobal(&Action{Key: tcell.KeyCtrlR, Description: "^R:reload", Visible: true, Handler: func() { refresh++ }})

	q := tcell.NewEventKey(tcell.KeyRune, 'q', tcell.ModNone)
	if r.HandleEvent(q, true) {
		t.Error("pane binding must not fire while typing")
	}
	if !r.HandleEvent(q, false) || quit != 1 {
		t.Errorf("pane binding did not fire, quit = %d", quit)
	}

	ctrlR := tcell.NewEventKey(tcell.KeyCtrlR, 0, tcell.ModCtrl)
	if !r.HandleEvent(ctrlR, true) || refresh != 1 {
		t.Errorf("global binding did not fire, refresh = %d", refresh)
	}

	hints := r.Hints()
	if len(hints) != 2 || hints[0] != "q:quit" || hints[1] != "^R:reload" {
		t.Errorf("Hints() = %v", hints)
	}
}
