package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/NeverVane/stockcatalog/internal/view"
)

type styles struct {
	title    lipgloss.Style
	updated  lipgloss.Style
	failed   lipgloss.Style
	input    lipgloss.Style
	fuzzy    lipgloss.Style
	card     lipgloss.Style
	positive lipgloss.Style
	negative lipgloss.Style
	muted    lipgloss.Style
	price    lipgloss.Style
	message  lipgloss.Style
	errorMsg lipgloss.Style
}

// newStyles picks colors for the configured scheme: "dark", "light" or
// "auto" (adapt to the terminal background)
func newStyles(scheme string) styles {
	color := func(light, dark string) lipgloss.TerminalColor {
		switch scheme {
		case "light":
			return lipgloss.Color(light)
		case "dark":
			return lipgloss.Color(dark)
		default:
			return lipgloss.AdaptiveColor{Light: light, Dark: dark}
		}
	}

	accent := color("4", "12")
	muted := color("244", "8")

	return styles{
		title:    lipgloss.NewStyle().Bold(true).Foreground(accent).MarginLeft(2),
		updated:  lipgloss.NewStyle().Foreground(muted),
		failed:   lipgloss.NewStyle().Foreground(color("1", "9")),
		input:    lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(accent).Padding(0, 1).MarginLeft(2).MarginRight(2),
		fuzzy:    lipgloss.NewStyle().Foreground(color("2", "10")),
		card:     lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(muted).Padding(0, 1).MarginLeft(2),
		positive: lipgloss.NewStyle().Bold(true).Foreground(color("2", "10")),
		negative: lipgloss.NewStyle().Bold(true).Foreground(color("1", "9")),
		muted:    lipgloss.NewStyle().Foreground(muted),
		price:    lipgloss.NewStyle().Bold(true),
		message:  lipgloss.NewStyle().Foreground(muted).MarginLeft(2),
		errorMsg: lipgloss.NewStyle().Foreground(color("1", "9")).MarginLeft(2),
	}
}

// renderResults draws the results area for a view at the given width
func (s styles) renderResults(v view.View, width int) string {
	if v.State == view.StateLoadError {
		return s.errorMsg.Render(v.Message)
	}
	if v.State != view.StateResults {
		return s.message.Render(v.Message)
	}

	cardWidth := width - 4
	if cardWidth < 20 {
		cardWidth = 20
	}

	blocks := make([]string, 0, len(v.Cards))
	for _, c := range v.Cards {
		blocks = append(blocks, s.renderCard(c, cardWidth))
	}
	return strings.Join(blocks, "\n")
}

func (s styles) renderCard(c view.Card, width int) string {
	title := s.negative
	if c.Tone == view.TonePositive {
		title = s.positive
	}

	lines := []string{
		title.Render(c.Title),
		s.muted.Render(c.CodeLine()),
		s.price.Render(c.Price),
		c.PackagingLine(),
		c.StockLine() + " " + s.muted.Render(c.FreshnessTag()),
	}
	return s.card.Width(width).Render(strings.Join(lines, "\n"))
}
