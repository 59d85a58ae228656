package convert

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/NeverVane/stockcatalog/internal/catalog"
)

// writeWorkbook saves a workbook whose sheets are given as rows of cell values
func writeWorkbook(t *testing.T, path string, sheets []string, data map[string][][]interface{}) {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	for i, name := range sheets {
		if i == 0 {
			require.NoError(t, f.SetSheetName("Sheet1", name))
		} else {
			_, err := f.NewSheet(name)
			require.NoError(t, err)
		}
		for r, row := range data[name] {
			for c, v := range row {
				if v == nil {
					continue
				}
				cell, err := excelize.CoordinatesToCellName(c+1, r+1)
				require.NoError(t, err)
				require.NoError(t, f.SetCellValue(name, cell, v))
			}
		}
	}
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, f.SaveAs(path))
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Empresa", "Empresa"},
		{"Preço unitário", "Preço_unitário"},
		{"  Estoque (un.) ", "Estoque__un"},
		{"cod-prod_1", "cod-prod_1"},
		{"***", ""},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, SanitizeName(tt.input))
		})
	}
}

func TestDedupeKeys(t *testing.T) {
	keys := DedupeKeys([]string{"Código", "Código", "", "Código", "?", "col_6"})
	assert.Equal(t, []string{"Código", "Código_1", "col", "Código_2", "col_1", "col_6"}, keys)
}

func TestConvertFile_Bundle(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Estoque Machado.xlsx")
	writeWorkbook(t, path, []string{"Mercearia", "Bebidas"}, map[string][][]interface{}{
		"Mercearia": {
			{"Empresa", "Cod. Produto", "Descrição", "Preço", "Qtde", "Ativo"},
			{1, 123, "Leite <integral>", 5.49, 10, true},
			{2, "0042", "Arroz & Feijão", nil, 0, false},
		},
		"Bebidas": {
			{"Empresa", "Descrição"},
		},
	})

	written, err := New(Options{}).ConvertFile(path)
	require.NoError(t, err)
	require.Equal(t, []string{filepath.Join(dir, "Estoque_Machado.json")}, written)

	expected := `{"Mercearia":[` +
		`{"Empresa":1,"Cod__Produto":123,"Descrição":"Leite <integral>","Preço":5.49,"Qtde":10,"Ativo":true},` +
		`{"Empresa":2,"Cod__Produto":"0042","Descrição":"Arroz & Feijão","Preço":null,"Qtde":0,"Ativo":false}` +
		`],"Bebidas":[]}`
	assert.Equal(t, expected, readFile(t, written[0]))
}

func TestConvertFile_OutputIsLoadable(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cardoso.xlsx")
	writeWorkbook(t, path, []string{"Frios"}, map[string][][]interface{}{
		"Frios": {
			{"IDEMPRESA", "IDPRODUTO", "DESCRICAO", "VALPRECOVAREJO", "QTDATUALESTOQUE"},
			{1, 10, "Queijo", 32.9, 4},
		},
	})

	written, err := New(Options{Indent: 2}).ConvertFile(path)
	require.NoError(t, err)

	f, err := os.Open(written[0])
	require.NoError(t, err)
	defer f.Close()

	ds, err := catalog.DecodeDataset(f)
	require.NoError(t, err)
	rows := catalog.Normalize(ds, catalog.DefaultCompanies())
	require.Len(t, rows, 1)
	assert.Equal(t, "Frios", rows[0].Sheet)
	assert.Equal(t, "Queijo", rows[0].Description)
	assert.Equal(t, "Machado", rows[0].CompanyName)
	assert.Equal(t, "10", rows[0].ProductID.String())
	assert.InDelta(t, 32.9, rows[0].RetailPrice.FloatOr(0), 1e-9)
}

func TestConvertFile_HeaderRowAndPadding(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rel.xlsx")
	writeWorkbook(t, path, []string{"Planilha"}, map[string][][]interface{}{
		"Planilha": {
			{"Relatório de estoque"},
			{"Código", nil, "Código"},
			{7},
		},
	})

	written, err := New(Options{HeaderRow: 1}).ConvertFile(path)
	require.NoError(t, err)
	assert.Equal(t,
		`{"Planilha":[{"Código":7,"col_2":null,"Código_1":null}]}`,
		readFile(t, written[0]))
}

func TestConvertFile_HeaderRowPastEnd(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "short.xlsx")
	writeWorkbook(t, path, []string{"A"}, map[string][][]interface{}{
		"A": {{"x"}},
	})

	written, err := New(Options{HeaderRow: 5}).ConvertFile(path)
	require.NoError(t, err)
	assert.Equal(t, `{"A":[]}`, readFile(t, written[0]))
}

func TestConvertFile_SplitAndFilter(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "out")
	path := filepath.Join(dir, "loja.xlsx")
	writeWorkbook(t, path, []string{"Mercearia", "Bebidas", "Frios"}, map[string][][]interface{}{
		"Mercearia": {{"a"}, {1}},
		"Bebidas":   {{"b"}, {2.5}},
		"Frios":     {{"c"}, {"x"}},
	})

	written, err := New(Options{
		OutDir: out,
		Split:  true,
		Sheets: []string{"Frios", "Mercearia"},
	}).ConvertFile(path)
	require.NoError(t, err)

	require.Equal(t, []string{
		filepath.Join(out, "loja__Mercearia.json"),
		filepath.Join(out, "loja__Frios.json"),
	}, written)
	assert.Equal(t, `[{"a":1}]`, readFile(t, written[0]))
	assert.Equal(t, `[{"c":"x"}]`, readFile(t, written[1]))
	assert.NoFileExists(t, filepath.Join(out, "loja__Bebidas.json"))
}

func TestConvertFile_UnknownSheets(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "loja.xlsx")
	writeWorkbook(t, path, []string{"A"}, map[string][][]interface{}{"A": {{"x"}}})

	_, err := New(Options{Sheets: []string{"Z"}}).ConvertFile(path)
	assert.Error(t, err)
}

func TestConvertFile_Indent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "loja.xlsx")
	writeWorkbook(t, path, []string{"A"}, map[string][][]interface{}{
		"A": {{"x", "y"}, {1, "b"}},
	})

	written, err := New(Options{Indent: 2}).ConvertFile(path)
	require.NoError(t, err)

	expected := "{\n" +
		"  \"A\": [\n" +
		"    {\n" +
		"      \"x\": 1,\n" +
		"      \"y\": \"b\"\n" +
		"    }\n" +
		"  ]\n" +
		"}"
	assert.Equal(t, expected, readFile(t, written[0]))
}

func TestConvertFile_DateCells(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "loja.xlsx")

	f := excelize.NewFile()
	require.NoError(t, f.SetSheetName("Sheet1", "Frios"))
	for cell, v := range map[string]interface{}{
		"A1": "IDPRODUTO", "B1": "VALIDADE", "C1": "CHEGADA", "D1": "ENTREGA", "E1": "PRECO",
		"A2": 101,
		"B2": time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
		"C2": time.Date(2024, 3, 15, 10, 45, 0, 0, time.UTC),
		"D2": 45367,
		"E2": 12.5,
	} {
		require.NoError(t, f.SetCellValue("Frios", cell, v))
	}

	dateFmt := "dd/mm/yyyy"
	dateStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: &dateFmt})
	require.NoError(t, err)
	require.NoError(t, f.SetCellStyle("Frios", "D2", "D2", dateStyle))

	moneyFmt := "#,##0.00"
	moneyStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: &moneyFmt})
	require.NoError(t, err)
	require.NoError(t, f.SetCellStyle("Frios", "E2", "E2", moneyStyle))

	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	written, err := New(Options{}).ConvertFile(path)
	require.NoError(t, err)
	assert.Equal(t,
		`{"Frios":[{"IDPRODUTO":101,"VALIDADE":"2024-03-15T00:00:00","CHEGADA":"2024-03-15T10:45:00","ENTREGA":"2024-03-16T00:00:00","PRECO":12.5}]}`,
		readFile(t, written[0]))
}

func TestIsDateFormatCode(t *testing.T) {
	tests := []struct {
		code     string
		expected bool
	}{
		{"dd/mm/yyyy", true},
		{"yyyy-mm-dd hh:mm:ss", true},
		{"[h]:mm", true},
		{"[$-416]d mmm yy", true},
		{"General", false},
		{"#,##0.00", false},
		{"[Red]0.00", false},
		{"0 \"dias\"", false},
		{"#,##0;[Red]-#,##0", false},
		{"[$R$-416] #,##0.00", false},
		{"0.00E+00", false},
		{"@", false},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.expected, isDateFormatCode(tt.code))
		})
	}
}

func TestConvertFile_RejectsXLS(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "old.xls")
	require.NoError(t, os.WriteFile(path, []byte{0xD0, 0xCF, 0x11, 0xE0}, 0644))

	_, err := New(Options{}).ConvertFile(path)
	assert.True(t, errors.Is(err, ErrLegacyWorkbook))
}

func TestDiscover(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.xlsx", "a.xlsx", "~$a.xlsx", "notes.txt", "sub/c.xlsm"} {
		p := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0755))
		require.NoError(t, os.WriteFile(p, nil, 0644))
	}

	flat, err := Discover([]string{dir}, false)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "a.xlsx"), filepath.Join(dir, "b.xlsx")}, flat)

	deep, err := Discover([]string{dir, filepath.Join(dir, "a.xlsx")}, true)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "a.xlsx"),
		filepath.Join(dir, "b.xlsx"),
		filepath.Join(dir, "sub", "c.xlsm"),
	}, deep)

	_, err = Discover([]string{filepath.Join(dir, "missing")}, false)
	assert.Error(t, err)
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	writeWorkbook(t, filepath.Join(dir, "a.xlsx"), []string{"S"}, map[string][][]interface{}{"S": {{"k"}, {1}}})
	writeWorkbook(t, filepath.Join(dir, "b.xlsx"), []string{"S"}, map[string][][]interface{}{"S": {{"k"}, {2}}})

	written, err := New(Options{}).Run(context.Background(), []string{dir})
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "a.json"), filepath.Join(dir, "b.json")}, written)

	_, err = New(Options{}).Run(context.Background(), []string{t.TempDir()})
	assert.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = New(Options{}).Run(ctx, []string{dir})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWriteStamp(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2024, 3, 15, 10, 45, 10, 0, time.FixedZone("BRT", -3*3600))

	path, err := WriteStamp(dir, now, 0)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, StampFile), path)
	assert.Equal(t, `{"updated_at":"2024-03-15T10:45:10-03:00"}`, readFile(t, path))
}
