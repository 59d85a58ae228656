package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// DataDirEnv overrides data.base_dir when set
const DataDirEnv = "STK_DATA_DIR"

// Config represents the complete configuration for the stock catalog viewer
type Config struct {
	// Snapshot locations
	Data DataConfig `toml:"data"`

	// Company id -> display name lookup
	Companies CompaniesConfig `toml:"companies"`

	// Locale configuration
	Locale LocaleConfig `toml:"locale"`

	// Search configuration
	Search SearchConfig `toml:"search"`

	// TUI configuration
	TUI TUIConfig `toml:"tui"`

	// Output configuration
	Output OutputConfig `toml:"output"`

	// Logging configuration
	Logging LoggingConfig `toml:"logging"`

	// Sentry configuration
	Sentry SentryConfig `toml:"sentry"`

	// Spreadsheet conversion defaults
	Convert ConvertConfig `toml:"convert"`

	// Directory paths (computed, not stored in TOML)
	ConfigDir string `toml:"-"`
	DataDir   string `toml:"-"`
}

// DataConfig describes where the exported snapshots live
type DataConfig struct {
	// Base location for relative resource paths (directory or http(s) URL)
	BaseDir string `toml:"base_dir"`

	// Metadata resource holding updated_at
	Metadata string `toml:"metadata"`

	// Dataset resources, loaded in this order
	Sources []SourceConfig `toml:"sources"`
}

// SourceConfig is one company dataset
type SourceConfig struct {
	Name string `toml:"name"`
	Path string `toml:"path"`
}

// CompaniesConfig maps numeric company ids to display names
type CompaniesConfig struct {
	// Keys are numeric ids as strings ("1", "2")
	Names map[string]string `toml:"names"`

	// Label used for ids with no entry
	Unknown string `toml:"unknown"`
}

// LocaleConfig contains formatting settings
type LocaleConfig struct {
	// IANA time zone for timestamp display, empty means local time
	Timezone string `toml:"timezone"`
}

// SearchConfig contains search settings
type SearchConfig struct {
	// Start the TUI with fuzzy description matching on
	FuzzyEnabled bool `toml:"fuzzy_enabled"`

	// Edit distance for fuzzy matching (0-2)
	Fuzziness int `toml:"fuzziness"`
}

// TUIConfig contains TUI interface settings
type TUIConfig struct {
	// Color scheme (dark, light, auto)
	ColorScheme string `toml:"color_scheme"`

	// Run in the terminal's alternate screen
	AltScreen bool `toml:"alt_screen"`

	// Log file used while the TUI owns the terminal
	LogFile string `toml:"log_file"`
}

// OutputConfig contains CLI output formatting settings
type OutputConfig struct {
	// Enable colored output
	ColorsEnabled bool `toml:"colors_enabled"`

	// Color scheme: "modern", "conservative", "custom"
	ColorScheme string `toml:"color_scheme"`

	// Automatically disable colors when not in a TTY
	AutoDetectTTY bool `toml:"auto_detect_tty"`

	// Verbosity level: "minimal", "normal", "verbose"
	Verbosity string `toml:"verbosity"`

	// Custom color definitions (used when color_scheme = "custom")
	Colors ColorConfig `toml:"colors"`
}

// ColorConfig contains color definitions for different output types
type ColorConfig struct {
	Success  string `toml:"success"`
	Error    string `toml:"error"`
	Warning  string `toml:"warning"`
	Info     string `toml:"info"`
	Tip      string `toml:"tip"`
	Positive string `toml:"positive"`
	Negative string `toml:"negative"`
	Muted    string `toml:"muted"`
}

// LoggingConfig mirrors logger.Config
type LoggingConfig struct {
	Level     string `toml:"level"`
	Output    string `toml:"output"`
	Color     bool   `toml:"color"`
	Timestamp bool   `toml:"timestamp"`
	Caller    bool   `toml:"caller"`
}

// SentryConfig contains Sentry error monitoring settings
type SentryConfig struct {
	// Enable Sentry error monitoring
	Enabled bool `toml:"enabled"`

	// Sentry DSN for error reporting
	DSN string `toml:"dsn"`

	// Environment name (development, staging, production)
	Environment string `toml:"environment"`

	// Sample rate for error reporting (0.0 to 1.0)
	SampleRate float64 `toml:"sample_rate"`

	// Release version for error grouping
	Release string `toml:"release"`

	// Debug mode for Sentry SDK
	Debug bool `toml:"debug"`
}

// ConvertConfig holds defaults for the convert command
type ConvertConfig struct {
	// 0-based header row index
	HeaderRow int `toml:"header_row"`

	// JSON indentation, 0 for compact output
	Indent int `toml:"indent"`
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	homeDir, _ := os.UserHomeDir()
	configDir := filepath.Join(homeDir, ".config", "stockcatalog")
	dataDir := filepath.Join(homeDir, ".local", "share", "stockcatalog")

	return &Config{
		Data: DataConfig{
			BaseDir:  "data",
			Metadata: "data_att.json",
			Sources: []SourceConfig{
				{Name: "Cardoso", Path: "Cardoso.json"},
				{Name: "Machado", Path: "Machado.json"},
			},
		},
		Companies: CompaniesConfig{
			Names: map[string]string{
				"1": "Machado",
				"2": "Cardoso",
			},
			Unknown: "Desconhecida",
		},
		Locale: LocaleConfig{
			Timezone: "",
		},
		Search: SearchConfig{
			FuzzyEnabled: false,
			Fuzziness:    1,
		},
		TUI: TUIConfig{
			ColorScheme: "auto",
			AltScreen:   true,
			LogFile:     filepath.Join(dataDir, "tui.log"),
		},
		Output: OutputConfig{
			ColorsEnabled: true,
			ColorScheme:   "modern",
			AutoDetectTTY: true,
			Verbosity:     "minimal",
			Colors: ColorConfig{
				Success:  "#00FF00",
				Error:    "#FF0000",
				Warning:  "#FF8800",
				Info:     "#0088FF",
				Tip:      "#00FFFF",
				Positive: "#00C853",
				Negative: "#FF5252",
				Muted:    "#808080",
			},
		},
		Logging: LoggingConfig{
			Level:     "error",
			Output:    "stderr",
			Color:     true,
			Timestamp: true,
			Caller:    false,
		},
		Sentry: SentryConfig{
			Enabled:     false,
			DSN:         "",
			Environment: "production",
			SampleRate:  1.0,
		},
		Convert: ConvertConfig{
			HeaderRow: 0,
			Indent:    2,
		},
		ConfigDir: configDir,
		DataDir:   dataDir,
	}
}

// DefaultPath returns the default config file location
func DefaultPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(homeDir, ".config", "stockcatalog", "config.toml")
}

// Load loads configuration from the specified file path
func Load(configPath string) (*Config, error) {
	config := DefaultConfig()

	if configPath == "" {
		configPath = DefaultPath()
	}

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			if _, err := toml.DecodeFile(configPath, config); err != nil {
				return nil, fmt.Errorf("failed to parse config file %s: %w", configPath, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to stat config file %s: %w", configPath, err)
		}
	}

	if dir := os.Getenv(DataDirEnv); dir != "" {
		config.Data.BaseDir = dir
	}

	config.ApplyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// Save saves the configuration to the specified file path
func (c *Config) Save(configPath string) error {
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	file, err := os.Create(configPath)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer file.Close()

	if err := toml.NewEncoder(file).Encode(c); err != nil {
		return fmt.Errorf("failed to encode config as TOML: %w", err)
	}

	return nil
}

// ApplyDefaults fills in values TOML decoding left at their zero value
func (c *Config) ApplyDefaults() {
	defaults := DefaultConfig()

	if c.Data.BaseDir == "" {
		c.Data.BaseDir = "."
	}
	if c.Data.Metadata == "" {
		c.Data.Metadata = defaults.Data.Metadata
	}
	if c.Companies.Names == nil {
		c.Companies.Names = defaults.Companies.Names
	}
	if c.Companies.Unknown == "" {
		c.Companies.Unknown = defaults.Companies.Unknown
	}
	if c.Search.Fuzziness < 0 {
		c.Search.Fuzziness = 0
	}
	if c.TUI.ColorScheme == "" {
		c.TUI.ColorScheme = "auto"
	}
	if c.TUI.LogFile == "" {
		c.TUI.LogFile = defaults.TUI.LogFile
	}
	if c.Output.ColorScheme == "" {
		c.Output.ColorScheme = "modern"
	}
	if c.Output.Verbosity == "" {
		c.Output.Verbosity = "minimal"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "error"
	}
	if c.Logging.Output == "" {
		c.Logging.Output = "stderr"
	}
	if c.Sentry.SampleRate <= 0 {
		c.Sentry.SampleRate = 1.0
	}
	if c.Convert.Indent < 0 {
		c.Convert.Indent = 0
	}
}

// Validate validates the configuration values
func (c *Config) Validate() error {
	if len(c.Data.Sources) == 0 {
		return fmt.Errorf("data.sources must list at least one dataset")
	}
	for i, src := range c.Data.Sources {
		if strings.TrimSpace(src.Path) == "" {
			return fmt.Errorf("data.sources[%d].path is required", i)
		}
	}

	for id := range c.Companies.Names {
		if _, err := strconv.ParseFloat(strings.TrimSpace(id), 64); err != nil {
			return fmt.Errorf("companies.names key %q is not numeric", id)
		}
	}

	if c.Locale.Timezone != "" {
		if _, err := time.LoadLocation(c.Locale.Timezone); err != nil {
			return fmt.Errorf("locale.timezone: %w", err)
		}
	}

	if c.Search.Fuzziness > 2 {
		return fmt.Errorf("search.fuzziness must be between 0 and 2")
	}

	validColorSchemes := map[string]bool{"dark": true, "light": true, "auto": true}
	if !validColorSchemes[c.TUI.ColorScheme] {
		return fmt.Errorf("tui.color_scheme must be one of: dark, light, auto")
	}

	if c.Sentry.Enabled && c.Sentry.DSN == "" {
		return fmt.Errorf("sentry.dsn is required when sentry is enabled")
	}
	if c.Sentry.SampleRate > 1 {
		return fmt.Errorf("sentry.sample_rate must be between 0.0 and 1.0")
	}

	if c.Convert.HeaderRow < 0 {
		return fmt.Errorf("convert.header_row must be non-negative")
	}

	return nil
}

// Location returns the configured display time zone
func (c *Config) Location() *time.Location {
	if c.Locale.Timezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.Locale.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// ResolveResource turns a configured resource path into a fetchable location.
// URLs and absolute paths are returned unchanged; relative paths are joined
// onto data.base_dir, which may itself be a URL.
func (c *Config) ResolveResource(path string) string {
	if IsURL(path) || filepath.IsAbs(path) {
		return path
	}

	if IsURL(c.Data.BaseDir) {
		base, err := url.Parse(c.Data.BaseDir)
		if err != nil {
			return path
		}
		if !strings.HasSuffix(base.Path, "/") {
			base.Path += "/"
		}
		ref, err := url.Parse(filepath.ToSlash(path))
		if err != nil {
			return path
		}
		return base.ResolveReference(ref).String()
	}

	return filepath.Join(c.Data.BaseDir, path)
}

// MetadataLocation returns the resolved metadata resource
func (c *Config) MetadataLocation() string {
	return c.ResolveResource(c.Data.Metadata)
}

// SourceLocations returns the resolved dataset resources in configured order
func (c *Config) SourceLocations() []SourceConfig {
	out := make([]SourceConfig, len(c.Data.Sources))
	for i, src := range c.Data.Sources {
		out[i] = SourceConfig{Name: src.Name, Path: c.ResolveResource(src.Path)}
	}
	return out
}

// IsURL reports whether a resource location is an http(s) URL
func IsURL(location string) bool {
	lower := strings.ToLower(location)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}
