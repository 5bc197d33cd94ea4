package ui

import "github.com/gdamore/tcell/v2"

// Theme holds color constants for the TUI.
type Theme struct {
	BgColor          tcell.Color
	FgColor          tcell.Color
	BorderColor      tcell.Color
	BorderFocusColor tcell.Color
	TitleColor       tcell.Color
	MenuKeyColor     tcell.Color
	LockedBorder     tcell.Color

	// Tag colors are tview color names used inside dynamic-color text.
	MineTag   string
	TheirsTag string
	WarnTag   string
	ErrTag    string
	LiveTag   string
}

// DefaultTheme returns a k9s-inspired dark theme.
func DefaultTheme() *Theme {
	return &Theme{
		BgColor:          tcell.ColorBlack,
		FgColor:          tcell.ColorCadetBlue,
		BorderColor:      tcell.ColorDodgerBlue,
		BorderFocusColor: tcell.ColorLightSkyBlue,
		TitleColor:       tcell.ColorFuchsia,
		MenuKeyColor:     tcell.ColorDodgerBlue,
		LockedBorder:     tcell.ColorOrangeRed,
		MineTag:          "aqua",
		TheirsTag:        "fuchsia",
		WarnTag:          "orange",
		ErrTag:           "orangered",
		LiveTag:          "green",
	}
}
