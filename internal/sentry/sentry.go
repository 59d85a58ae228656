package sentry

import (
	"fmt"
	"runtime"
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/NeverVane/stockcatalog/internal/config"
	"github.com/NeverVane/stockcatalog/internal/logger"
)

const appName = "stockcatalog"

// Client wraps a Sentry hub with the viewer's release and privacy settings
type Client struct {
	hub         *sentry.Hub
	config      *Config
	logger      *logger.Logger
	initialized bool
	version     string
	commit      string
	buildDate   string
}

// Config contains Sentry-specific configuration
type Config struct {
	Enabled     bool
	DSN         string
	Environment string
	SampleRate  float64
	Debug       bool
	Release     string
}

// ConfigFrom copies the [sentry] section of the application config
func ConfigFrom(cfg *config.Config) *Config {
	if cfg == nil {
		return &Config{SampleRate: 1.0}
	}
	return &Config{
		Enabled:     cfg.Sentry.Enabled,
		DSN:         cfg.Sentry.DSN,
		Environment: cfg.Sentry.Environment,
		SampleRate:  cfg.Sentry.SampleRate,
		Debug:       cfg.Sentry.Debug,
		Release:     cfg.Sentry.Release,
	}
}

// NewClient creates a client. A disabled config or an empty DSN gives a
// client whose methods are no-ops.
func NewClient(cfg *Config, version, commit, buildDate string) (*Client, error) {
	if cfg == nil {
		cfg = &Config{}
	}

	client := &Client{
		config:    cfg,
		logger:    logger.GetLogger().WithComponent("sentry"),
		version:   version,
		commit:    commit,
		buildDate: buildDate,
	}

	if err := client.initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize Sentry client: %w", err)
	}

	return client, nil
}

func (c *Client) initialize() error {
	if !c.config.Enabled {
		c.logger.Debug().Msg("Sentry monitoring disabled")
		return nil
	}

	if c.config.DSN == "" {
		c.logger.Warn().Msg("Sentry DSN not configured, monitoring disabled")
		return nil
	}

	release := c.version
	if c.commit != "" {
		release = fmt.Sprintf("%s-%s", c.version, c.commit)
	}
	if c.config.Release != "" {
		release = c.config.Release
	}

	sdkClient, err := sentry.NewClient(sentry.ClientOptions{
		Dsn:              c.config.DSN,
		Environment:      c.config.Environment,
		Release:          release,
		SampleRate:       c.config.SampleRate,
		Debug:            c.config.Debug,
		AttachStacktrace: true,
		BeforeSend: func(event *sentry.Event, hint *sentry.EventHint) *sentry.Event {
			return sanitizeEvent(event)
		},
		BeforeBreadcrumb: func(breadcrumb *sentry.Breadcrumb, hint *sentry.BreadcrumbHint) *sentry.Breadcrumb {
			return sanitizeBreadcrumb(breadcrumb)
		},
	})
	if err != nil {
		return fmt.Errorf("failed to initialize Sentry SDK: %w", err)
	}

	c.hub = sentry.NewHub(sdkClient, sentry.NewScope())
	c.initialized = true
	c.configureScope()

	c.logger.Info().
		Str("environment", c.config.Environment).
		Str("release", release).
		Float64("sample_rate", c.config.SampleRate).
		Msg("Sentry monitoring initialized")

	return nil
}

func (c *Client) configureScope() {
	c.hub.ConfigureScope(func(scope *sentry.Scope) {
		scope.SetTag("app.name", appName)
		scope.SetTag("app.version", c.version)
		scope.SetTag("app.commit", c.commit)
		scope.SetTag("os", runtime.GOOS)
		scope.SetTag("arch", runtime.GOARCH)
		scope.SetTag("go_version", runtime.Version())

		scope.SetContext("application", sentry.Context{
			"name":       appName,
			"version":    c.version,
			"commit":     c.commit,
			"build_date": c.buildDate,
		})
	})
}

// CaptureError reports err tagged with the component and operation it came from
func (c *Client) CaptureError(err error, component, operation string, tags map[string]string) {
	if !c.initialized || err == nil {
		return
	}

	c.hub.WithScope(func(scope *sentry.Scope) {
		scope.SetTag("component", component)
		scope.SetTag("operation", operation)
		for key, value := range tags {
			scope.SetTag(key, sanitizeValue(value))
		}
		scope.SetContext("operation", sentry.Context{
			"component": component,
			"operation": operation,
			"timestamp": time.Now().UTC(),
		})

		c.hub.CaptureException(err)
	})

	c.logger.Debug().
		Str("component", component).
		Str("operation", operation).
		Err(err).
		Msg("Error captured by Sentry")
}

// AddBreadcrumb records an operation step attached to later events
func (c *Client) AddBreadcrumb(category, message, level string, data map[string]interface{}) {
	if !c.initialized {
		return
	}

	c.hub.AddBreadcrumb(&sentry.Breadcrumb{
		Category:  category,
		Message:   message,
		Level:     parseLevel(level),
		Data:      data,
		Timestamp: time.Now(),
	}, nil)
}

// Recover reports a recovered panic value
func (c *Client) Recover(recovered interface{}) {
	if !c.initialized || recovered == nil {
		return
	}
	c.hub.Recover(recovered)
}

// Flush waits for pending events
func (c *Client) Flush(timeout time.Duration) bool {
	if !c.initialized {
		return true
	}
	return c.hub.Flush(timeout)
}

// Close flushes and disables the client
func (c *Client) Close() {
	if c.initialized {
		c.Flush(2 * time.Second)
		c.initialized = false
		c.logger.Debug().Msg("Sentry client closed")
	}
}

// IsEnabled returns whether events are being sent
func (c *Client) IsEnabled() bool {
	return c.initialized
}

func parseLevel(level string) sentry.Level {
	switch level {
	case "debug":
		return sentry.LevelDebug
	case "warn", "warning":
		return sentry.LevelWarning
	case "error":
		return sentry.LevelError
	case "fatal":
		return sentry.LevelFatal
	default:
		return sentry.LevelInfo
	}
}
