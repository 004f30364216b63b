package styles

import (
	"image/color"
	"sync"

	"github.com/charmbracelet/lipgloss/v2"
	"github.com/lucasb-eyer/go-colorful"
)

type Theme struct {
	Name string

	Primary   color.Color
	Secondary color.Color
	Tertiary  color.Color

	FgBase   color.Color
	FgMuted  color.Color
	FgSubtle color.Color

	BgBase   color.Color
	BgSubtle color.Color

	Error   color.Color
	Warning color.Color
	Success color.Color
	Info    color.Color

	styles     *Styles
	stylesOnce sync.Once
}

type Styles struct {
	Base     lipgloss.Style
	Muted    lipgloss.Style
	Subtle   lipgloss.Style
	Title    lipgloss.Style
	Selected lipgloss.Style

	TabActive   lipgloss.Style
	TabInactive lipgloss.Style

	Status      lipgloss.Style
	StatusError lipgloss.Style
}

func (t *Theme) S() *Styles {
	t.stylesOnce.Do(func() {
		t.styles = t.buildStyles()
	})
	return t.styles
}

func (t *Theme) buildStyles() *Styles {
	base := lipgloss.NewStyle().Foreground(t.FgBase)
	return &Styles{
		Base:     base,
		Muted:    base.Foreground(t.FgMuted),
		Subtle:   base.Foreground(t.FgSubtle),
		Title:    base.Foreground(t.Primary).Bold(true),
		Selected: base.Foreground(t.FgBase).Background(Blend(t.Secondary, t.Primary, 0.25)),

		TabActive:   base.Foreground(t.BgBase).Background(t.Primary).Padding(0, 1).Bold(true),
		TabInactive: base.Foreground(t.FgMuted).Background(Blend(t.BgBase, t.BgSubtle, 0.5)).Padding(0, 1),

		Status:      base.Foreground(t.FgMuted),
		StatusError: base.Foreground(t.Error),
	}
}

// Blend mixes a toward b in the Lab color space; t=0 is a and t=1 is b.
// Colors that cannot be converted return a unchanged.
func Blend(a, b color.Color, t float64) color.Color {
	ca, ok := colorful.MakeColor(a)
	if !ok {
		return a
	}
	cb, ok := colorful.MakeColor(b)
	if !ok {
		return a
	}
	t = min(max(t, 0), 1)
	return lipgloss.Color(ca.BlendLab(cb, t).Clamped().Hex())
}

var (
	currentMu sync.RWMutex
	current   = townTheme()
)

func CurrentTheme() *Theme {
	currentMu.RLock()
	defer currentMu.RUnlock()
	return current
}

func SetTheme(t *Theme) {
	currentMu.Lock()
	defer currentMu.Unlock()
	current = t
}

func townTheme() *Theme {
	return &Theme{
		Name: "town",

		Primary:   lipgloss.Color("#6B50FF"),
		Secondary: lipgloss.Color("#3A3943"),
		Tertiary:  lipgloss.Color("#68FFD6"),

		FgBase:   lipgloss.Color("#DFDBDD"),
		FgMuted:  lipgloss.Color("#858392"),
		FgSubtle: lipgloss.Color("#605F6B"),

		BgBase:   lipgloss.Color("#201F26"),
		BgSubtle: lipgloss.Color("#2D2C35"),

		Error:   lipgloss.Color("#EB4268"),
		Warning: lipgloss.Color("#E8FE96"),
		Success: lipgloss.Color("#12C78F"),
		Info:    lipgloss.Color("#00A4FF"),
	}
}
