package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Len(t, cfg.Data.Sources, 2)
	assert.Equal(t, "data_att.json", cfg.Data.Metadata)
	assert.Equal(t, "Machado", cfg.Companies.Names["1"])
	assert.Equal(t, "Cardoso", cfg.Companies.Names["2"])
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Data, cfg.Data)
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
[data]
base_dir = "https://cdn.example.com/stock"

[[data.sources]]
name = "Cardoso"
path = "Cardoso.json"

[locale]
timezone = "UTC"

[search]
fuzzy_enabled = true
fuzziness = 2
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Len(t, cfg.Data.Sources, 1)
	assert.Equal(t, "https://cdn.example.com/stock/Cardoso.json", cfg.SourceLocations()[0].Path)
	assert.Equal(t, "https://cdn.example.com/stock/data_att.json", cfg.MetadataLocation())
	assert.Equal(t, "UTC", cfg.Location().String())
	assert.True(t, cfg.Search.FuzzyEnabled)
	assert.Equal(t, 2, cfg.Search.Fuzziness)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv(DataDirEnv, "/srv/stock")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/srv/stock", "Machado.json"), cfg.SourceLocations()[1].Path)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		errMsg  string
	}{
		{"syntax", `[data`, "failed to parse config file"},
		{"timezone", "[locale]\ntimezone = \"Mars/Olympus\"", "locale.timezone"},
		{"fuzziness", "[search]\nfuzziness = 3", "search.fuzziness"},
		{"color scheme", "[tui]\ncolor_scheme = \"neon\"", "tui.color_scheme"},
		{"company id", "[companies.names]\nabc = \"X\"", "not numeric"},
		{"sentry dsn", "[sentry]\nenabled = true", "sentry.dsn"},
		{"header row", "[convert]\nheader_row = -1", "convert.header_row"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Data.BaseDir = "/opt/stock"
	cfg.Locale.Timezone = "UTC"

	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.Data, loaded.Data)
	assert.Equal(t, cfg.Companies, loaded.Companies)
	assert.Equal(t, "UTC", loaded.Locale.Timezone)
}

func TestResolveResource(t *testing.T) {
	cfg := DefaultConfig()

	cfg.Data.BaseDir = "data"
	assert.Equal(t, filepath.Join("data", "x.json"), cfg.ResolveResource("x.json"))
	assert.Equal(t, "/abs/x.json", cfg.ResolveResource("/abs/x.json"))
	assert.Equal(t, "http://host/x.json", cfg.ResolveResource("http://host/x.json"))

	cfg.Data.BaseDir = "https://host/base/"
	assert.Equal(t, "https://host/base/sub/x.json", cfg.ResolveResource("sub/x.json"))
}

func TestIsURL(t *testing.T) {
	assert.True(t, IsURL("https://example.com/a.json"))
	assert.True(t, IsURL("HTTP://example.com"))
	assert.False(t, IsURL("data/a.json"))
	assert.False(t, IsURL("ftp://example.com"))
}
