package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/NeverVane/stockcatalog/internal/config"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

// testConfig writes a config pointing at a small local snapshot
func testConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	writeFile(t, filepath.Join(dir, "data", "data_att.json"), `{"updated_at": "2024-03-15T10:45:10Z"}`)
	writeFile(t, filepath.Join(dir, "data", "Cardoso.json"), `{"Frios": [
		{"IDEMPRESA": 2, "IDPRODUTO": 101, "DESCRICAO": "Queijo Minas", "EMBALAGEMSAIDA": "KG",
		 "VALPRECOVAREJO": 32.9, "QTDATUALESTOQUE": 3}
	]}`)
	writeFile(t, filepath.Join(dir, "data", "Machado.json"), `{"Mercearia": []}`)

	cfg := config.DefaultConfig()
	cfg.Data.BaseDir = filepath.Join(dir, "data")
	cfg.Locale.Timezone = "UTC"
	cfg.Logging.Output = "discard"

	path := filepath.Join(dir, "config.toml")
	require.NoError(t, cfg.Save(path))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := rootCmd(&cli{})
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestVersionCmd(t *testing.T) {
	out, err := run(t, "version", "--no-color")
	require.NoError(t, err)
	assert.Contains(t, out, "stk "+version)
	assert.Contains(t, out, "Commit:")
}

func TestSearchCmd(t *testing.T) {
	cfgPath := testConfig(t)

	out, err := run(t, "search", "--config", cfgPath, "--no-color", "101")
	require.NoError(t, err)
	assert.Contains(t, out, "Queijo Minas")
	assert.Contains(t, out, "Código: 101 | Empresa: Cardoso")
	assert.Contains(t, out, "Embalagem: KG")
	assert.Contains(t, out, "em 15/03/2024")
}

func TestSearchCmd_NoResults(t *testing.T) {
	cfgPath := testConfig(t)

	out, err := run(t, "search", "--config", cfgPath, "--no-color", "%arroz")
	require.NoError(t, err)
	assert.Contains(t, out, "Nenhum resultado")
}

func TestSearchCmd_Quiet(t *testing.T) {
	cfgPath := testConfig(t)

	out, err := run(t, "search", "--config", cfgPath, "--no-color", "-q", "%arroz")
	require.NoError(t, err)
	assert.Empty(t, out)

	out, err = run(t, "search", "--config", cfgPath, "--no-color", "--quiet", "101")
	require.NoError(t, err)
	assert.Contains(t, out, "Queijo Minas")
}

func TestVerboseAndQuietConflict(t *testing.T) {
	_, err := run(t, "version", "--verbose", "--quiet")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--verbose and --quiet")
}

func TestSearchCmd_NonNumericQueryMatchesDescription(t *testing.T) {
	cfgPath := testConfig(t)

	out, err := run(t, "search", "--config", cfgPath, "--no-color", "queijo")
	require.NoError(t, err)
	assert.Contains(t, out, "Queijo Minas")

	out, err = run(t, "search", "--help")
	require.NoError(t, err)
	assert.Contains(t, out, "digits only matches the product code exactly")
	assert.NotContains(t, out, "anything else matches the product code")
}

func TestSearchCmd_JSON(t *testing.T) {
	cfgPath := testConfig(t)

	out, err := run(t, "search", "--config", cfgPath, "--json", "%queijo")
	require.NoError(t, err)
	assert.Contains(t, out, `"DESCRICAO": "Queijo Minas"`)
	assert.Contains(t, out, `"EMPRESA": "Cardoso"`)
}

func TestSearchCmd_LoadFailure(t *testing.T) {
	cfgPath := testConfig(t)
	require.NoError(t, os.Remove(filepath.Join(filepath.Dir(cfgPath), "data", "Machado.json")))

	out, err := run(t, "search", "--config", cfgPath, "--no-color", "101")
	require.Error(t, err)
	assert.Contains(t, out, "Falha ao carregar dados")
}

func TestConvertCmd(t *testing.T) {
	dir := t.TempDir()
	outDir := filepath.Join(dir, "out")

	f := excelize.NewFile()
	require.NoError(t, f.SetSheetName("Sheet1", "Frios"))
	require.NoError(t, f.SetCellValue("Frios", "A1", "IDPRODUTO"))
	require.NoError(t, f.SetCellValue("Frios", "A2", 101))
	require.NoError(t, f.SaveAs(filepath.Join(dir, "Cardoso.xlsx")))
	require.NoError(t, f.Close())

	out, err := run(t, "convert", dir, "-o", outDir, "--indent", "0", "--stamp", "--no-color")
	require.NoError(t, err)
	assert.Contains(t, out, "Gerado: "+filepath.Join(outDir, "Cardoso.json"))

	data, err := os.ReadFile(filepath.Join(outDir, "Cardoso.json"))
	require.NoError(t, err)
	assert.Equal(t, `{"Frios":[{"IDPRODUTO":101}]}`, string(data))
	assert.FileExists(t, filepath.Join(outDir, "data_att.json"))
}

func TestConfigInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stk", "config.toml")

	out, err := run(t, "config", "init", "--config", path, "--no-color")
	require.NoError(t, err)
	assert.Contains(t, out, path)

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Len(t, cfg.Data.Sources, 2)

	out, err = run(t, "config", "init", "--config", path, "--no-color")
	require.NoError(t, err)
	assert.Contains(t, out, "--force")
}
