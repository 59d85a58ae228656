package output

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"

	"github.com/NeverVane/stockcatalog/internal/config"
)

// ColorFormatter handles colored output based on configuration
type ColorFormatter struct {
	config  *config.OutputConfig
	enabled bool
	noColor bool
	isTTY   bool
	colors  map[string]string
}

// StatusType represents different types of CLI output status
type StatusType string

const (
	StatusSuccess StatusType = "success"
	StatusError   StatusType = "error"
	StatusWarning StatusType = "warning"
	StatusInfo    StatusType = "info"
	StatusTip     StatusType = "tip"
	StatusLoad    StatusType = "load"
	StatusConvert StatusType = "convert"
	StatusDone    StatusType = "done"

	// Card tones
	StatusPositive StatusType = "positive"
	StatusNegative StatusType = "negative"
	StatusMuted    StatusType = "muted"
)

// ANSI color codes
const (
	Reset = "\033[0m"
	Bold  = "\033[1m"
)

// NewColorFormatter creates a new color formatter with the given configuration
func NewColorFormatter(cfg *config.OutputConfig) *ColorFormatter {
	formatter := &ColorFormatter{
		config: cfg,
		isTTY:  isTerminal(),
		colors: make(map[string]string),
	}

	formatter.enabled = formatter.colorsAllowed()
	formatter.loadColorScheme()
	return formatter
}

// SetNoColor disables color output (for --no-color flag)
func (cf *ColorFormatter) SetNoColor(noColor bool) {
	cf.noColor = noColor
	cf.enabled = cf.colorsAllowed()
}

func (cf *ColorFormatter) colorsAllowed() bool {
	// NO_COLOR wins over everything (https://no-color.org)
	if os.Getenv("NO_COLOR") != "" || cf.noColor {
		return false
	}
	return cf.config.ColorsEnabled && (!cf.config.AutoDetectTTY || cf.isTTY)
}

// loadColorScheme loads the appropriate color scheme
func (cf *ColorFormatter) loadColorScheme() {
	switch cf.config.ColorScheme {
	case "conservative":
		cf.colors = getConservativeColors()
	case "custom":
		cf.colors = getCustomColors(cf.config.Colors)
	default:
		cf.colors = getModernColors()
	}
}

// Status indicator functions with colored ASCII replacements
func (cf *ColorFormatter) Success(message string) string {
	return cf.formatStatus("[OK]", message, StatusSuccess)
}

func (cf *ColorFormatter) Error(message string) string {
	return cf.formatStatus("[FAIL]", message, StatusError)
}

func (cf *ColorFormatter) Warning(message string) string {
	return cf.formatStatus("[WARN]", message, StatusWarning)
}

func (cf *ColorFormatter) Info(message string) string {
	return cf.formatStatus("[INFO]", message, StatusInfo)
}

func (cf *ColorFormatter) Tip(message string) string {
	return cf.formatStatus("[TIP]", message, StatusTip)
}

func (cf *ColorFormatter) Load(message string) string {
	return cf.formatStatus("[LOAD]", message, StatusLoad)
}

func (cf *ColorFormatter) Convert(message string) string {
	return cf.formatStatus("[XLSX]", message, StatusConvert)
}

func (cf *ColorFormatter) Done(message string) string {
	return cf.formatStatus("[DONE]", message, StatusDone)
}

// formatStatus formats a status message with colored indicator
func (cf *ColorFormatter) formatStatus(indicator, message string, statusType StatusType) string {
	if !cf.enabled {
		return indicator + " " + message
	}

	colorCode := cf.colors[string(statusType)]
	if colorCode == "" {
		return indicator + " " + message
	}

	return colorCode + indicator + Reset + " " + message
}

// Colorize applies color to text based on status type
func (cf *ColorFormatter) Colorize(text string, statusType StatusType) string {
	if !cf.enabled {
		return text
	}

	colorCode := cf.colors[string(statusType)]
	if colorCode == "" {
		return text
	}

	return colorCode + text + Reset
}

// Bold makes text bold (if colors are enabled)
func (cf *ColorFormatter) Bold(text string) string {
	if !cf.enabled {
		return text
	}
	return Bold + text + Reset
}

// Modern color scheme (bright colors)
func getModernColors() map[string]string {
	return map[string]string{
		"success":  hexToAnsi("#00FF00"),
		"error":    hexToAnsi("#FF0000"),
		"warning":  hexToAnsi("#FF8800"),
		"info":     hexToAnsi("#0088FF"),
		"tip":      hexToAnsi("#00FFFF"),
		"load":     hexToAnsi("#0088FF"),
		"convert":  hexToAnsi("#FF00FF"),
		"done":     hexToAnsi("#00FF00"),
		"positive": hexToAnsi("#00C853"),
		"negative": hexToAnsi("#FF5252"),
		"muted":    hexToAnsi("#808080"),
	}
}

// Conservative color scheme (16-color terminals)
func getConservativeColors() map[string]string {
	return map[string]string{
		"success":  "\033[32m",
		"error":    "\033[31m",
		"warning":  "\033[33m",
		"info":     "\033[34m",
		"tip":      "\033[36m",
		"load":     "\033[34m",
		"convert":  "\033[35m",
		"done":     "\033[32m",
		"positive": "\033[32m",
		"negative": "\033[31m",
		"muted":    "\033[90m",
	}
}

// Custom color scheme from config
func getCustomColors(colors config.ColorConfig) map[string]string {
	return map[string]string{
		"success":  hexToAnsi(colors.Success),
		"error":    hexToAnsi(colors.Error),
		"warning":  hexToAnsi(colors.Warning),
		"info":     hexToAnsi(colors.Info),
		"tip":      hexToAnsi(colors.Tip),
		"load":     hexToAnsi(colors.Info),
		"convert":  hexToAnsi(colors.Info),
		"done":     hexToAnsi(colors.Success),
		"positive": hexToAnsi(colors.Positive),
		"negative": hexToAnsi(colors.Negative),
		"muted":    hexToAnsi(colors.Muted),
	}
}

// hexToAnsi converts hex color to ANSI escape sequence
func hexToAnsi(hex string) string {
	if hex == "" {
		return ""
	}

	hex = strings.TrimPrefix(hex, "#")

	// "fff" -> "ffffff"
	if len(hex) == 3 {
		hex = string(hex[0]) + string(hex[0]) + string(hex[1]) + string(hex[1]) + string(hex[2]) + string(hex[2])
	}

	if len(hex) != 6 {
		return ""
	}

	r, err1 := strconv.ParseInt(hex[0:2], 16, 64)
	g, err2 := strconv.ParseInt(hex[2:4], 16, 64)
	b, err3 := strconv.ParseInt(hex[4:6], 16, 64)

	if err1 != nil || err2 != nil || err3 != nil {
		return ""
	}

	return fmt.Sprintf("\033[38;2;%d;%d;%dm", r, g, b)
}

// isTerminal checks if stdout is a terminal
func isTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// IsEnabled returns whether colors are currently enabled
func (cf *ColorFormatter) IsEnabled() bool {
	return cf.enabled
}

// GetVerbosity returns the current verbosity level
func (cf *ColorFormatter) GetVerbosity() string {
	return cf.config.Verbosity
}

// ShouldShowVerbose returns true if verbose output should be shown
func (cf *ColorFormatter) ShouldShowVerbose() bool {
	return cf.config.Verbosity == "verbose" || cf.config.Verbosity == "normal"
}

// Section creates a section header with separator
func (cf *ColorFormatter) Section(title string) string {
	underline := strings.Repeat("=", len([]rune(title)))
	if cf.enabled {
		return cf.Bold(title) + "\n" + underline
	}
	return title + "\n" + underline
}
