// Package tui is the terminal chat screen of one application thread.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/hirrd/hirrd/internal/chat"
	"github.com/hirrd/hirrd/internal/gate"
	"github.com/hirrd/hirrd/internal/tui/keys"
	"github.com/hirrd/hirrd/internal/tui/model"
	"github.com/hirrd/hirrd/internal/tui/ui"
	"github.com/hirrd/hirrd/internal/tui/views"
	"github.com/rivo/tview"
)

const flashFor = 5 * time.Second

// App is the TUI application shell around one chat.View.
type App struct {
	app       *tview.Application
	view      *chat.View
	gate      *gate.Gate
	theme     *ui.Theme
	thread    *views.ThreadView
	statusBar *views.StatusBar
	registry  *keys.Registry
	flash     model.Flash
	appID     string
	ctx       context.Context
	cancel    context.CancelFunc
}

// NewApp creates the TUI application for an unopened view.
func NewApp(v *chat.View, g *gate.Gate, instanceName, applicationID string) *App {
	ctx, cancel := context.WithCancel(context.Background())
	theme := ui.DefaultTheme()

	a := &App{
		app:       tview.NewApplication(),
		view:      v,
		gate:      g,
		theme:     theme,
		thread:    views.NewThreadView(theme),
		statusBar: views.NewStatusBar(theme),
		registry:  keys.NewRegistry(),
		appID:     applicationID,
		ctx:       ctx,
		cancel:    cancel,
	}

	a.statusBar.SetInstance(instanceName)
	a.statusBar.SetApplication(applicationID, "…")
	a.thread.SetThreadTitle(threadTitle("", applicationID))
	a.setupBindings()
	a.setupCallbacks()
	a.setupLayout()

	return a
}

func (a *App) setupBindings() {
	a.registry.AddPane(&keys.Action{
		Rune: 'q', Key: tcell.KeyRune,
		Description: "q:quit", Visible: true,
		Handler: func() { a.app.Stop() },
	})
	a.registry.AddPane(&keys.Action{
		Rune: 'i', Key: tcell.KeyRune,
		Description: "i:compose", Visible: true,
		Handler: func() { a.app.SetFocus(a.thread.Composer()) },
	})
	a.registry.AddGlobal(&keys.Action{
		Key:         tcell.KeyCtrlR,
		Description: "^R:reload", Visible: true,
		Handler:     func() { go a.reload() },
	})
	a.registry.AddGlobal(&keys.Action{
		Key:     tcell.KeyEscape,
		Handler: func() { a.app.SetFocus(a.thread.Messages()) },
	})
}

func (a *App) setupCallbacks() {
	a.view.OnChange(func() {
		a.app.QueueUpdateDraw(a.refresh)
	})
	a.thread.SetOnDraft(a.view.SetDraft)
	a.thread.SetOnSend(func(string) {
		go a.send()
	})
}

func (a *App) setupLayout() {
	root := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(a.thread, 0, 1, true).
		AddItem(a.statusBar, 1, 0, false)

	a.app.SetRoot(root, true)

	a.app.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		_, inInput := a.app.GetFocus().(*tview.InputField)
		if a.registry.HandleEvent(event, inInput) {
			return nil
		}
		return event
	})
}

// Run opens the view and blocks until the user quits.
func (a *App) Run() error {
	defer a.cancel()
	defer a.view.Close()

	go a.open()
	return a.app.Run()
}

func (a *App) open() {
	err := a.view.Open(a.ctx)
	if err != nil {
		a.setFlash(describe(err), true)
	}
	a.app.QueueUpdateDraw(a.refresh)
}

func (a *App) send() {
	_, err := a.view.Send(a.ctx)
	if err != nil {
		a.setFlash("Send failed: "+describe(err), true)
	}
	a.app.QueueUpdateDraw(a.refresh)
}

func (a *App) reload() {
	if err := a.view.Reconcile(a.ctx); err != nil {
		a.setFlash("Reload failed: "+describe(err), true)
	} else {
		a.setFlash("Reloaded", false)
	}
	a.app.QueueUpdateDraw(a.refresh)
}

func (a *App) setFlash(msg string, isErr bool) {
	a.flash.Set(msg, isErr, flashFor)
}

// refresh copies the view's state into the widgets. Runs on the UI goroutine.
func (a *App) refresh() {
	unlocked := a.view.Unlocked()
	a.thread.Update(a.view.Lines(time.Local), unlocked, chat.LockedText(a.gate))
	a.thread.SetDraft(a.view.Draft())

	a.thread.SetThreadTitle(threadTitle(a.view.Counterpart(), a.appID))
	a.statusBar.SetApplication(a.appID, a.view.Status())
	a.statusBar.SetLive(a.view.Connected())
	msg, isErr := a.flash.Get()
	if msg == "" {
		msg = strings.Join(a.registry.Hints(), "  ")
	}
	a.statusBar.SetFlash(msg, isErr)
}

// threadTitle names the other party once the application is known.
func threadTitle(counterpart, applicationID string) string {
	if counterpart == "" {
		return "Application " + applicationID
	}
	return "Chat with " + counterpart
}

// describe turns a chat error into a short user-facing sentence.
func describe(err error) string {
	switch {
	case errors.Is(err, chat.ErrUnauthorized):
		return chat.LockedTitle
	case errors.Is(err, chat.ErrValidation):
		return "message is empty"
	case errors.Is(err, chat.ErrNotFound):
		return "application not found"
	case errors.Is(err, chat.ErrFeedDisconnected):
		return "live updates unavailable"
	case errors.Is(err, chat.ErrTransient):
		return "daemon unavailable, try again"
	default:
		return fmt.Sprint(err)
	}
}
