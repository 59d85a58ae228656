// Package tui is the interactive stock lookup screen.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/NeverVane/stockcatalog/internal/app"
	"github.com/NeverVane/stockcatalog/internal/config"
	"github.com/NeverVane/stockcatalog/internal/loader"
	"github.com/NeverVane/stockcatalog/internal/logger"
	"github.com/NeverVane/stockcatalog/internal/search"
	"github.com/NeverVane/stockcatalog/internal/sentry"
	"github.com/NeverVane/stockcatalog/internal/view"
)

const appTitle = "Consulta de Estoque"

// LoadFunc produces the snapshot the screen searches
type LoadFunc func(ctx context.Context) (*loader.Snapshot, error)

// Options configures the TUI behavior
type Options struct {
	// Searched as soon as the snapshot is loaded
	InitialQuery string

	// Start with fuzzy description matching on
	Fuzzy        bool
	FuzzyOptions search.FuzzyOptions

	ColorScheme string
	AltScreen   bool
}

// OptionsFromConfig seeds options from the [search] and [tui] sections
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Fuzzy:        cfg.Search.FuzzyEnabled,
		FuzzyOptions: search.FuzzyOptions{Fuzziness: cfg.Search.Fuzziness},
		ColorScheme:  cfg.TUI.ColorScheme,
		AltScreen:    cfg.TUI.AltScreen,
	}
}

type loadedMsg struct {
	snapshot *loader.Snapshot
	err      error
	elapsed  time.Duration
}

type model struct {
	ctx  context.Context
	load LoadFunc
	opts Options

	// nil until the load finishes
	ctrl  *app.Controller
	state app.State
	view  view.View

	loading bool
	// Enter pressed while loading
	pending bool

	input    textinput.Model
	viewport viewport.Model
	help     help.Model
	keys     keyMap
	styles   styles

	width  int
	height int

	logger *logger.Logger
}

// Launch runs the screen until the user quits
func Launch(ctx context.Context, load LoadFunc, opts Options) error {
	log := logger.GetLogger().TUI()
	log.Info().Bool("fuzzy", opts.Fuzzy).Msg("Starting TUI")

	m := newModel(ctx, load, opts)
	progOpts := []tea.ProgramOption{tea.WithContext(ctx), tea.WithMouseCellMotion()}
	if opts.AltScreen {
		progOpts = append(progOpts, tea.WithAltScreen())
	}

	final, err := tea.NewProgram(m, progOpts...).Run()
	if fm, ok := final.(model); ok && fm.ctrl != nil {
		if cerr := fm.ctrl.Close(); cerr != nil {
			log.Warn().Err(cerr).Msg("Failed to close fuzzy index")
		}
	}
	if err != nil {
		return fmt.Errorf("TUI execution failed: %w", err)
	}
	return nil
}

func newModel(ctx context.Context, load LoadFunc, opts Options) model {
	ti := textinput.New()
	ti.Placeholder = "Código ou %descrição"
	ti.Prompt = "> "
	ti.CharLimit = 256
	ti.Width = 50
	ti.SetValue(opts.InitialQuery)
	ti.Focus()

	vp := viewport.New(80, 10)
	vp.KeyMap = scrollKeys(keys)

	return model{
		ctx:      ctx,
		load:     load,
		opts:     opts,
		state:    app.State{Query: opts.InitialQuery, Fuzzy: opts.Fuzzy},
		loading:  true,
		input:    ti,
		viewport: vp,
		help:     help.New(),
		keys:     keys,
		styles:   newStyles(opts.ColorScheme),
		logger:   logger.GetLogger().TUI(),
	}
}

// Init starts the snapshot load alongside the cursor blink
func (m model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.loadCmd())
}

func (m model) loadCmd() tea.Cmd {
	ctx, load := m.ctx, m.load
	return func() tea.Msg {
		start := time.Now()
		snap, err := load(ctx)
		return loadedMsg{snapshot: snap, err: err, elapsed: time.Since(start)}
	}
}

// Update handles all messages and updates the model
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.Width = max(10, m.width-12)
		m.help.Width = m.width
		m.resize()
		return m, nil

	case loadedMsg:
		return m.handleLoaded(msg), nil

	case tea.KeyMsg:
		return m.handleKeys(msg)

	case tea.MouseMsg:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m model) handleLoaded(msg loadedMsg) model {
	m.loading = false

	if msg.err != nil {
		m.logger.Error().Err(msg.err).Msg("Snapshot load failed")
		sentry.WithComponent("tui").CaptureError(msg.err, "load")
		m.ctrl = app.NewFailedController(msg.err)
	} else {
		m.logger.Debug().
			Int("rows", len(msg.snapshot.Rows)).
			Dur("elapsed", msg.elapsed).
			Msg("Snapshot loaded")
		sentry.WithComponent("tui").AddBreadcrumb("Snapshot loaded", "info", map[string]interface{}{
			"load_id": msg.snapshot.LoadID,
			"rows":    len(msg.snapshot.Rows),
		})
		m.ctrl = app.NewController(msg.snapshot, app.Options{Fuzzy: m.opts.FuzzyOptions})
	}
	m.setView(m.ctrl.Initial())

	if m.pending || m.opts.InitialQuery != "" {
		m.pending = false
		m.search()
	}
	return m
}

func (m model) handleKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Search):
		if m.ctrl == nil {
			m.pending = true
			return m, nil
		}
		m.search()
		return m, nil

	case key.Matches(msg, m.keys.Clear):
		m.input.SetValue("")
		if m.ctrl == nil {
			m.state = app.Type(m.state, "")
			m.pending = false
			return m, nil
		}
		var v view.View
		m.state, v = m.ctrl.Clear(m.state)
		m.setView(v)
		return m, nil

	case key.Matches(msg, m.keys.Fuzzy):
		m.state = app.ToggleFuzzy(m.state)
		m.logger.Debug().Bool("fuzzy", m.state.Fuzzy).Msg("Fuzzy matching toggled")
		return m, nil

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		m.resize()
		return m, nil

	case key.Matches(msg, m.keys.Up, m.keys.Down, m.keys.PageUp, m.keys.PageDown):
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.state = app.Type(m.state, m.input.Value())
	return m, cmd
}

func (m *model) search() {
	var v view.View
	m.state, v = m.ctrl.Search(m.state)
	m.setView(v)
}

func (m *model) setView(v view.View) {
	m.view = v
	m.viewport.SetContent(m.styles.renderResults(v, m.viewport.Width))
	m.viewport.GotoTop()
}

// resize gives the viewport whatever the fixed sections leave over
func (m *model) resize() {
	if m.width == 0 {
		return
	}
	fixed := lipgloss.Height(m.renderHeader()) + lipgloss.Height(m.renderInput()) + lipgloss.Height(m.renderHelp()) + 2
	m.viewport.Width = m.width
	m.viewport.Height = max(3, m.height-fixed)
	m.viewport.SetContent(m.styles.renderResults(m.view, m.viewport.Width))
}

// View implements tea.Model
func (m model) View() string {
	if m.width == 0 {
		return "Inicializando..."
	}

	body := m.viewport.View()
	if m.loading {
		body = m.styles.message.Render(view.LoadingHeader)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		m.renderInput(),
		"",
		body,
		"",
		m.renderHelp(),
	)
}

// headerText is the right side of the header
func (m model) headerText() string {
	switch {
	case m.loading:
		return view.LoadingHeader
	case m.ctrl.LoadErr() != nil:
		return m.ctrl.Header()
	default:
		return "Atualizado em: " + m.ctrl.Header()
	}
}

func (m model) renderHeader() string {
	title := m.styles.title.Render(appTitle)

	status := m.styles.updated.Render(m.headerText())
	if !m.loading && m.ctrl.LoadErr() != nil {
		status = m.styles.failed.Render(m.headerText())
	}

	padding := m.width - lipgloss.Width(title) - lipgloss.Width(status) - 2
	if padding < 1 {
		padding = 1
	}
	return title + strings.Repeat(" ", padding) + status
}

func (m model) renderInput() string {
	content := m.input.View()
	if m.state.Fuzzy {
		content += " " + m.styles.fuzzy.Render("[APROX]")
	}
	return m.styles.input.Render(content)
}

func (m model) renderHelp() string {
	return m.styles.message.Render(m.help.View(m.keys))
}
