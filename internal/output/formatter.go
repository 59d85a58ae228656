package output

import (
	"fmt"
	"io"
	"os"

	"github.com/NeverVane/stockcatalog/internal/config"
)

// Formatter provides a high-level interface for CLI output formatting
type Formatter struct {
	colorFormatter *ColorFormatter
	out            io.Writer
	errOut         io.Writer
	verboseMode    bool
	quietMode      bool
}

// NewFormatter creates a new formatter instance from config
func NewFormatter(cfg *config.Config) *Formatter {
	return &Formatter{
		colorFormatter: NewColorFormatter(&cfg.Output),
		out:            os.Stdout,
		errOut:         os.Stderr,
	}
}

// SetOutput redirects normal and error output
func (f *Formatter) SetOutput(out, errOut io.Writer) {
	f.out = out
	f.errOut = errOut
}

// SetFlags configures the formatter based on command line flags
func (f *Formatter) SetFlags(verbose, quiet, noColor bool) {
	f.verboseMode = verbose
	f.quietMode = quiet
	f.colorFormatter.SetNoColor(noColor)
}

// Writer returns the normal output destination
func (f *Formatter) Writer() io.Writer {
	return f.out
}

// Success prints a success message (always shown unless quiet)
func (f *Formatter) Success(format string, args ...interface{}) {
	if !f.quietMode {
		fmt.Fprintln(f.out, f.colorFormatter.Success(fmt.Sprintf(format, args...)))
	}
}

// Error prints an error message (always shown)
func (f *Formatter) Error(format string, args ...interface{}) {
	fmt.Fprintln(f.errOut, f.colorFormatter.Error(fmt.Sprintf(format, args...)))
}

// Warning prints a warning message (always shown unless quiet)
func (f *Formatter) Warning(format string, args ...interface{}) {
	if !f.quietMode {
		fmt.Fprintln(f.errOut, f.colorFormatter.Warning(fmt.Sprintf(format, args...)))
	}
}

// Info prints an info message (shown in normal and verbose modes)
func (f *Formatter) Info(format string, args ...interface{}) {
	if !f.quietMode && (f.verboseMode || f.colorFormatter.ShouldShowVerbose()) {
		fmt.Fprintln(f.out, f.colorFormatter.Info(fmt.Sprintf(format, args...)))
	}
}

// Verbose prints a verbose message (only shown in verbose mode)
func (f *Formatter) Verbose(format string, args ...interface{}) {
	if f.IsVerbose() {
		fmt.Fprintln(f.errOut, f.colorFormatter.Info(fmt.Sprintf(format, args...)))
	}
}

// Tip prints a tip message (shown unless quiet)
func (f *Formatter) Tip(format string, args ...interface{}) {
	if !f.quietMode {
		fmt.Fprintln(f.out, f.colorFormatter.Tip(fmt.Sprintf(format, args...)))
	}
}

// Load prints a snapshot loading message (verbose only, so piped output stays clean)
func (f *Formatter) Load(format string, args ...interface{}) {
	if f.IsVerbose() {
		fmt.Fprintln(f.errOut, f.colorFormatter.Load(fmt.Sprintf(format, args...)))
	}
}

// Convert prints a spreadsheet conversion message
func (f *Formatter) Convert(format string, args ...interface{}) {
	if !f.quietMode {
		fmt.Fprintln(f.out, f.colorFormatter.Convert(fmt.Sprintf(format, args...)))
	}
}

// Done prints a completion message
func (f *Formatter) Done(format string, args ...interface{}) {
	if !f.quietMode {
		fmt.Fprintln(f.out, f.colorFormatter.Done(fmt.Sprintf(format, args...)))
	}
}

// Println prints a plain message with newline
func (f *Formatter) Println(format string, args ...interface{}) {
	if !f.quietMode {
		fmt.Fprintf(f.out, format+"\n", args...)
	}
}

// Header prints a formatted section header
func (f *Formatter) Header(title string) {
	if !f.quietMode {
		fmt.Fprintln(f.out, f.colorFormatter.Section(title))
		fmt.Fprintln(f.out)
	}
}

// Bold formats text as bold
func (f *Formatter) Bold(text string) string {
	return f.colorFormatter.Bold(text)
}

// Colorize applies color to text
func (f *Formatter) Colorize(text string, statusType StatusType) string {
	return f.colorFormatter.Colorize(text, statusType)
}

// IsColorsEnabled returns whether colors are enabled
func (f *Formatter) IsColorsEnabled() bool {
	return f.colorFormatter.IsEnabled()
}

// IsVerbose returns whether verbose mode is active
func (f *Formatter) IsVerbose() bool {
	return f.verboseMode || f.colorFormatter.GetVerbosity() == "verbose"
}

// IsQuiet returns whether quiet mode is active
func (f *Formatter) IsQuiet() bool {
	return f.quietMode
}
