// Package view maps search results to renderer-independent view models.
package view

import (
	"github.com/NeverVane/stockcatalog/internal/catalog"
	"github.com/NeverVane/stockcatalog/internal/locale"
)

// User-facing texts
const (
	PromptMessage    = "Digite um termo e clique em Pesquisar"
	NoResultsMessage = "Nenhum resultado"
	LoadErrorMessage = "Erro ao carregar JSONs"

	// Shown in place of the last-updated timestamp when loading fails
	LoadFailedHeader = "Falha ao carregar dados"
	LoadingHeader    = "Carregando…"
)

// State says which of the result-area layouts to draw
type State int

const (
	StatePrompt State = iota
	StateNoResults
	StateResults
	StateLoadError
)

func (s State) String() string {
	switch s {
	case StatePrompt:
		return "prompt"
	case StateNoResults:
		return "no_results"
	case StateResults:
		return "results"
	case StateLoadError:
		return "load_error"
	default:
		return "unknown"
	}
}

// Tone colors a card title by stock availability
type Tone int

const (
	ToneNegative Tone = iota
	TonePositive
)

func (t Tone) String() string {
	if t == TonePositive {
		return "positive"
	}
	return "negative"
}

// Card is one rendered row
type Card struct {
	Title     string `json:"title"`
	Tone      Tone   `json:"-"`
	Code      string `json:"code"`
	Company   string `json:"company"`
	Price     string `json:"price"`
	Packaging string `json:"packaging"`
	Stock     string `json:"stock"`
	UpdatedOn string `json:"updated_on"`
}

// View is the content of the results area
type View struct {
	State   State
	Message string
	Cards   []Card
}

// Render builds the results view. With no matches the view is a prompt
// before the first search and a no-results notice after it.
func Render(matches []catalog.Row, hasSearched bool, updatedOn string) View {
	if len(matches) == 0 {
		if hasSearched {
			return View{State: StateNoResults, Message: NoResultsMessage}
		}
		return View{State: StatePrompt, Message: PromptMessage}
	}

	cards := make([]Card, 0, len(matches))
	for _, row := range matches {
		cards = append(cards, NewCard(row, updatedOn))
	}
	return View{State: StateResults, Cards: cards}
}

// LoadFailed is the view shown when the snapshot could not be loaded
func LoadFailed() View {
	return View{State: StateLoadError, Message: LoadErrorMessage}
}

// NewCard formats a single row
func NewCard(row catalog.Row, updatedOn string) Card {
	tone := ToneNegative
	if row.InStock() {
		tone = TonePositive
	}

	return Card{
		Title:     row.Description,
		Tone:      tone,
		Code:      row.ProductID.String(),
		Company:   row.CompanyName,
		Price:     locale.Currency(row.RetailPrice),
		Packaging: row.Packaging.String(),
		Stock:     locale.Number(row.StockQuantity),
		UpdatedOn: updatedOn,
	}
}

// CodeLine is the "Código: X | Empresa: Y" subtitle
func (c Card) CodeLine() string {
	return "Código: " + c.Code + " | Empresa: " + c.Company
}

// PackagingLine is the packaging label line
func (c Card) PackagingLine() string {
	return "Embalagem: " + c.Packaging
}

// StockLine is the stock line without its freshness tag
func (c Card) StockLine() string {
	return "Saldo em estoque: " + c.Stock
}

// FreshnessTag is the "em dd/mm/yyyy" tag next to the stock line
func (c Card) FreshnessTag() string {
	return "em " + c.UpdatedOn
}
