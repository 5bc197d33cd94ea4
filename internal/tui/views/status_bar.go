package views

import (
	"fmt"
	"time"

	"github.com/hirrd/hirrd/internal/tui/ui"
	"github.com/rivo/tview"
)

// StatusBar displays the instance, the open application and feed health.
type StatusBar struct {
	*tview.TextView
	theme       *ui.Theme
	instance    string
	application string
	status      string
	live        bool
	flash       string
	flashTag    string
	now         func() time.Time
}

// NewStatusBar creates a new status bar.
func NewStatusBar(theme *ui.Theme) *StatusBar {
	tv := tview.NewTextView().
		SetDynamicColors(true)
	tv.SetBackgroundColor(tview.Styles.MoreContrastBackgroundColor)

	return &StatusBar{TextView: tv, theme: theme, now: time.Now}
}

// SetInstance updates the instance name display.
func (sb *StatusBar) SetInstance(name string) {
	sb.instance = name
	sb.render()
}

// SetApplication updates the application id and status display.
func (sb *StatusBar) SetApplication(id, status string) {
	sb.application = id
	sb.status = status
	sb.render()
}

// SetLive updates the live-delivery indicator.
func (sb *StatusBar) SetLive(live bool) {
	sb.live = live
	sb.render()
}

// SetFlash sets a temporary message. isErr selects the error color.
func (sb *StatusBar) SetFlash(msg string, isErr bool) {
	sb.flash = msg
	sb.flashTag = sb.theme.WarnTag
	if isErr {
		sb.flashTag = sb.theme.ErrTag
	}
	sb.render()
}

func (sb *StatusBar) render() {
	sb.Clear()
	_, _ = fmt.Fprint(sb, sb.line())
}

func (sb *StatusBar) line() string {
	live := fmt.Sprintf("[%s]offline[-]", sb.theme.ErrTag)
	if sb.live {
		live = fmt.Sprintf("[%s]live[-]", sb.theme.LiveTag)
	}

	line := fmt.Sprintf(" [::b]%s[-:-:-] | %s (%s) | %s | %s",
		sb.instance, tview.Escape(sb.application), sb.status, live, sb.now().Format("15:04"))
	if sb.flash != "" {
		line += fmt.Sprintf(" | [%s]%s[-]", sb.flashTag, tview.Escape(sb.flash))
	}
	return line
}
