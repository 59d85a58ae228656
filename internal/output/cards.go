package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/NeverVane/stockcatalog/internal/catalog"
	"github.com/NeverVane/stockcatalog/internal/view"
)

// CardPrinter writes a results view as plain or colored text
type CardPrinter struct {
	colors *ColorFormatter
}

// NewCardPrinter creates a printer sharing the formatter's color settings
func (f *Formatter) NewCardPrinter() *CardPrinter {
	return &CardPrinter{colors: f.colorFormatter}
}

// Print writes the view: one block per card, or the view message
func (p *CardPrinter) Print(w io.Writer, v view.View) error {
	if v.State != view.StateResults {
		tone := StatusMuted
		if v.State == view.StateLoadError {
			tone = StatusError
		}
		_, err := fmt.Fprintln(w, p.colors.Colorize(v.Message, tone))
		return err
	}

	for i, card := range v.Cards {
		if i > 0 {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, p.card(card)); err != nil {
			return err
		}
	}
	return nil
}

func (p *CardPrinter) card(c view.Card) string {
	tone := StatusNegative
	if c.Tone == view.TonePositive {
		tone = StatusPositive
	}

	var b strings.Builder
	b.WriteString(p.colors.Colorize(p.colors.Bold(c.Title), tone))
	b.WriteString("\n")
	b.WriteString(p.colors.Colorize(c.CodeLine(), StatusMuted))
	b.WriteString("\n")
	b.WriteString(p.colors.Bold(c.Price))
	b.WriteString("\n")
	b.WriteString(c.PackagingLine())
	b.WriteString("\n")
	b.WriteString(c.StockLine())
	b.WriteString(" ")
	b.WriteString(p.colors.Colorize(c.FreshnessTag(), StatusMuted))
	b.WriteString("\n")
	return b.String()
}

// PrintJSON writes rows as an indented JSON array
func PrintJSON(w io.Writer, rows []catalog.Row) error {
	if rows == nil {
		rows = []catalog.Row{}
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(rows)
}
