package sentry

import (
	"github.com/rs/zerolog"
)

// BreadcrumbHook implements zerolog.Hook, recording log lines as breadcrumbs
// so a captured load or convert error carries the steps that preceded it.
// Errors themselves are captured explicitly, never from the log stream.
type BreadcrumbHook struct {
	minLevel zerolog.Level
	add      func(category, message, level string, data map[string]interface{})
}

// NewBreadcrumbHook records lines at or above minLevel on the global manager
func NewBreadcrumbHook(minLevel zerolog.Level) *BreadcrumbHook {
	return &BreadcrumbHook{
		minLevel: minLevel,
		add:      AddBreadcrumb,
	}
}

// Run is called by zerolog for each log event
func (h *BreadcrumbHook) Run(e *zerolog.Event, level zerolog.Level, msg string) {
	if msg == "" || level == zerolog.NoLevel || level == zerolog.Disabled {
		return
	}
	if level < h.minLevel {
		return
	}

	h.add("log", msg, breadcrumbLevel(level), nil)
}

func breadcrumbLevel(level zerolog.Level) string {
	switch level {
	case zerolog.TraceLevel, zerolog.DebugLevel:
		return "debug"
	case zerolog.WarnLevel:
		return "warning"
	case zerolog.ErrorLevel:
		return "error"
	case zerolog.FatalLevel, zerolog.PanicLevel:
		return "fatal"
	default:
		return "info"
	}
}
