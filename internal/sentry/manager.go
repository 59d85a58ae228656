package sentry

import (
	"fmt"
	"sync"
	"time"

	"github.com/NeverVane/stockcatalog/internal/logger"
)

// Manager provides global access to Sentry functionality
type Manager struct {
	client      *Client
	logger      *logger.Logger
	initialized bool
	mu          sync.RWMutex
}

var (
	globalManager *Manager
	managerMu     sync.Mutex
)

// Initialize sets up the global manager. Calling it again replaces the
// previous manager after closing it.
func Initialize(cfg *Config, version, commit, buildDate string) error {
	client, err := NewClient(cfg, version, commit, buildDate)
	if err != nil {
		return fmt.Errorf("failed to initialize Sentry manager: %w", err)
	}

	m := &Manager{
		client:      client,
		logger:      logger.GetLogger().WithComponent("sentry-manager"),
		initialized: true,
	}

	managerMu.Lock()
	previous := globalManager
	globalManager = m
	managerMu.Unlock()

	if previous != nil {
		previous.Close()
	}

	m.logger.Debug().
		Bool("enabled", client.IsEnabled()).
		Str("version", version).
		Msg("Sentry manager initialized")

	return nil
}

// GetManager returns the global manager, or a no-op manager before Initialize
func GetManager() *Manager {
	managerMu.Lock()
	defer managerMu.Unlock()

	if globalManager == nil {
		return &Manager{logger: logger.GetLogger().WithComponent("sentry-manager-noop")}
	}
	return globalManager
}

// IsEnabled returns whether Sentry monitoring is enabled
func (m *Manager) IsEnabled() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.initialized && m.client != nil && m.client.IsEnabled()
}

// CaptureError captures an error with merged tags
func (m *Manager) CaptureError(err error, component, operation string, tags ...map[string]string) {
	if !m.IsEnabled() || err == nil {
		return
	}

	merged := make(map[string]string)
	for _, tagMap := range tags {
		for k, v := range tagMap {
			merged[k] = v
		}
	}

	m.client.CaptureError(err, component, operation, merged)
}

// AddBreadcrumb adds a breadcrumb for operation tracking
func (m *Manager) AddBreadcrumb(category, message, level string, data map[string]interface{}) {
	if !m.IsEnabled() {
		return
	}
	m.client.AddBreadcrumb(category, message, level, data)
}

// Recover reports a recovered panic value
func (m *Manager) Recover(recovered interface{}) {
	if !m.IsEnabled() {
		return
	}
	m.client.Recover(recovered)
}

// WithComponent creates a component-specific error reporter
func (m *Manager) WithComponent(component string) *ComponentReporter {
	return &ComponentReporter{
		manager:   m,
		component: component,
	}
}

// Flush flushes pending Sentry events
func (m *Manager) Flush(timeout time.Duration) bool {
	if !m.IsEnabled() {
		return true
	}
	return m.client.Flush(timeout)
}

// Close closes the Sentry manager and client
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.initialized {
		return
	}
	if m.client != nil {
		m.client.Close()
	}
	m.initialized = false
}

// ComponentReporter provides component-specific error reporting
type ComponentReporter struct {
	manager   *Manager
	component string
}

// CaptureError captures an error for this component
func (cr *ComponentReporter) CaptureError(err error, operation string, tags ...map[string]string) {
	cr.manager.CaptureError(err, cr.component, operation, tags...)
}

// AddBreadcrumb adds a breadcrumb for this component
func (cr *ComponentReporter) AddBreadcrumb(message, level string, data map[string]interface{}) {
	merged := make(map[string]interface{}, len(data)+1)
	for k, v := range data {
		merged[k] = v
	}
	merged["component"] = cr.component

	cr.manager.AddBreadcrumb(cr.component, message, level, merged)
}

// Convenience functions for global access
func CaptureError(err error, component, operation string, tags ...map[string]string) {
	GetManager().CaptureError(err, component, operation, tags...)
}

func AddBreadcrumb(category, message, level string, data map[string]interface{}) {
	GetManager().AddBreadcrumb(category, message, level, data)
}

func WithComponent(component string) *ComponentReporter {
	return GetManager().WithComponent(component)
}

func Recover(recovered interface{}) {
	GetManager().Recover(recovered)
}

func IsEnabled() bool {
	return GetManager().IsEnabled()
}

func Flush(timeout time.Duration) bool {
	return GetManager().Flush(timeout)
}

func Close() {
	GetManager().Close()
}
