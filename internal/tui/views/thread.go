package views

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/hirrd/hirrd/internal/chat"
	"github.com/hirrd/hirrd/internal/tui/ui"
	"github.com/rivo/tview"
)

// ThreadView displays one application's messages and a composer.
type ThreadView struct {
	*tview.Flex
	theme    *ui.Theme
	messages *tview.TextView
	composer *tview.InputField
	onSend   func(text string)
	onDraft  func(text string)
}

// NewThreadView creates a new thread view.
func NewThreadView(theme *ui.Theme) *ThreadView {
	messages := tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetWordWrap(true)
	messages.SetBorder(true)
	messages.SetBorderColor(theme.BorderColor)
	messages.SetBackgroundColor(theme.BgColor)
	messages.SetTextColor(theme.FgColor)
	messages.SetTitle(" Messages ")
	messages.SetTitleColor(theme.TitleColor)

	composer := tview.NewInputField().
		SetLabel(" > ").
		SetFieldWidth(0)
	composer.SetBorder(true)
	composer.SetBorderColor(theme.BorderColor)
	composer.SetBackgroundColor(theme.BgColor)
	composer.SetFieldBackgroundColor(theme.BgColor)
	composer.SetFieldTextColor(theme.FgColor)
	composer.SetLabelColor(theme.MenuKeyColor)
	composer.SetTitle(" Compose (i to focus, Enter to send) ")
	composer.SetTitleColor(theme.TitleColor)

	flex := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(messages, 0, 1, false).
		AddItem(composer, 3, 0, true)

	tv := &ThreadView{
		Flex:     flex,
		theme:    theme,
		messages: messages,
		composer: composer,
	}

	composer.SetChangedFunc(func(text string) {
		if tv.onDraft != nil {
			tv.onDraft(text)
		}
	})
	composer.SetDoneFunc(func(key tcell.Key) {
		if key == tcell.KeyEnter && tv.onSend != nil {
			tv.onSend(composer.GetText())
		}
	})

	return tv
}

// SetThreadTitle updates the border title.
func (tv *ThreadView) SetThreadTitle(title string) {
	tv.messages.SetTitle(fmt.Sprintf(" %s ", tview.Escape(sanitizeForTerminal(title))))
}

// SetOnSend sets the callback run when Enter is pressed in the composer.
func (tv *ThreadView) SetOnSend(fn func(text string)) {
	tv.onSend = fn
}

// SetOnDraft sets the callback run on every composer edit.
func (tv *ThreadView) SetOnDraft(fn func(text string)) {
	tv.onDraft = fn
}

// SetDraft replaces the composer text if it differs.
func (tv *ThreadView) SetDraft(text string) {
	if tv.composer.GetText() != text {
		tv.composer.SetText(text)
	}
}

// Update redraws the thread. A locked thread disables the composer.
func (tv *ThreadView) Update(lines []chat.Line, unlocked bool, lockedText string) {
	tv.messages.Clear()
	_, _ = fmt.Fprint(tv.messages, Render(tv.theme, lines, unlocked, lockedText))
	tv.messages.ScrollToEnd()

	tv.composer.SetDisabled(!unlocked)
	if unlocked {
		tv.messages.SetBorderColor(tv.theme.BorderColor)
	} else {
		tv.messages.SetBorderColor(tv.theme.LockedBorder)
	}
}

// Messages returns the messages text view (for focus management).
func (tv *ThreadView) Messages() *tview.TextView {
	return tv.messages
}

// Composer returns the input field (for focus management).
func (tv *ThreadView) Composer() *tview.InputField {
	return tv.composer
}

// Render produces the dynamic-color text of a thread.
func Render(theme *ui.Theme, lines []chat.Line, unlocked bool, lockedText string) string {
	var b strings.Builder
	if len(lines) == 0 && unlocked {
		fmt.Fprintf(&b, "[::d]%s[-:-:-]\n", chat.EmptyThreadText)
	}
	for _, l := range lines {
		color := theme.TheirsTag
		if l.Mine {
			color = theme.MineTag
		}
		fmt.Fprintf(&b, "[%s::b]%s[-:-:-] [::d]%s[-:-:-]\n%s\n\n",
			color,
			tview.Escape(sanitizeForTerminal(l.Author)), l.Clock,
			tview.Escape(sanitizeForTerminal(l.Text)))
	}
	if !unlocked {
		fmt.Fprintf(&b, "[%s::b]%s[-:-:-]\n%s\n", theme.WarnTag, chat.LockedTitle, tview.Escape(lockedText))
	}
	return b.String()
}
