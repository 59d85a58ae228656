package catalog

import (
	"encoding/json"
	"math"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValue_String(t *testing.T) {
	tests := []struct {
		name     string
		value    Value
		expected string
	}{
		{"empty", Empty, ""},
		{"string", String("  Leite "), "  Leite "},
		{"integer", Number(101), "101"},
		{"fraction", Number(12.5), "12.5"},
		{"negative", Number(-3), "-3"},
		{"large integer", Number(7891234567890), "7891234567890"},
		{"true", Bool(true), "true"},
		{"false", Bool(false), "false"},
		{"infinity", Number(math.Inf(1)), "Infinity"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.value.String())
		})
	}
}

func TestValue_Float(t *testing.T) {
	tests := []struct {
		input    Value
		expected float64
		ok       bool
	}{
		{Empty, 0, true},
		{String(""), 0, true},
		{String("   "), 0, true},
		{String("12.5"), 12.5, true},
		{String(" 12 "), 12, true},
		{String("-4"), -4, true},
		{String(".5"), 0.5, true},
		{String("5."), 5, true},
		{String("1e3"), 1000, true},
		{String("0x10"), 16, true},
		{String("0b101"), 5, true},
		{String("abc"), 0, false},
		{String("1,5"), 0, false},
		{String("12abc"), 0, false},
		{String("0x"), 0, false},
		{Number(3.25), 3.25, true},
		{Bool(true), 1, true},
		{Bool(false), 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input.String(), func(t *testing.T) {
			got, ok := tt.input.Float()
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.expected, got)
			}
		})
	}
}

func TestValue_FloatInfinity(t *testing.T) {
	f, ok := String("-Infinity").Float()
	require.True(t, ok)
	assert.True(t, math.IsInf(f, -1))
}

func TestValue_IsBlank(t *testing.T) {
	assert.True(t, Empty.IsBlank())
	assert.True(t, String("").IsBlank())
	assert.False(t, String(" ").IsBlank())
	assert.False(t, Number(0).IsBlank())
	assert.False(t, Bool(false).IsBlank())
}

func TestValue_JSON(t *testing.T) {
	var rec Record
	err := json.Unmarshal([]byte(`{"a": 101, "b": "x", "c": null, "d": true, "e": [1,2], "f": 2.50}`), &rec)
	require.NoError(t, err)

	assert.Equal(t, KindNumber, rec["a"].Kind())
	assert.Equal(t, "101", rec["a"].String())
	assert.Equal(t, KindString, rec["b"].Kind())
	assert.Equal(t, KindEmpty, rec["c"].Kind())
	assert.Equal(t, KindBool, rec["d"].Kind())
	assert.Equal(t, "[1,2]", rec["e"].String())
	assert.Equal(t, "2.5", rec["f"].String())

	out, err := json.Marshal(rec["a"])
	require.NoError(t, err)
	assert.Equal(t, "101", string(out))

	out, err = json.Marshal(Empty)
	require.NoError(t, err)
	assert.Equal(t, `""`, string(out))
}

func TestCompanyDirectory_Resolve(t *testing.T) {
	dir := DefaultCompanies()

	tests := []struct {
		name     string
		id       Value
		expected string
	}{
		{"numeric one", Number(1), "Machado"},
		{"numeric two", Number(2), "Cardoso"},
		{"string one", String("1"), "Machado"},
		{"padded string", String(" 2 "), "Cardoso"},
		{"leading zero", String("01"), "Machado"},
		{"unknown id", Number(3), "Desconhecida"},
		{"absent", Empty, "Desconhecida"},
		{"non numeric", String("abc"), "Desconhecida"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, dir.Resolve(tt.id))
		})
	}
}

func TestCompanyDirectory_CustomUnknown(t *testing.T) {
	dir := NewCompanyDirectory(map[string]string{"7": "Filial", "x": "ignored"}, "N/A")

	assert.Equal(t, "Filial", dir.Resolve(Number(7)))
	assert.Equal(t, "N/A", dir.Resolve(Number(1)))

	var zero CompanyDirectory
	assert.Equal(t, DefaultUnknownCompany, zero.Resolve(Number(1)))
}

func TestDecodeDataset_PreservesOrder(t *testing.T) {
	doc := `{
		"Zeta": [{"IDPRODUTO": 1}],
		"Alpha": [{"IDPRODUTO": 2}, {"IDPRODUTO": 3}],
		"Notes": "not a list",
		"Mid": []
	}`

	ds, err := DecodeDataset(strings.NewReader(doc))
	require.NoError(t, err)

	names := make([]string, 0, len(ds.Sheets))
	for _, s := range ds.Sheets {
		names = append(names, s.Name)
	}
	assert.Equal(t, []string{"Zeta", "Alpha", "Mid"}, names)
	assert.Len(t, ds.Sheets[1].Records, 2)
}

func TestDecodeDataset_DuplicateSheetKeepsFirstPosition(t *testing.T) {
	doc := `{"A": [{"IDPRODUTO": 1}], "B": [], "A": [{"IDPRODUTO": 9}]}`

	ds, err := DecodeDataset(strings.NewReader(doc))
	require.NoError(t, err)
	require.Len(t, ds.Sheets, 2)
	assert.Equal(t, "A", ds.Sheets[0].Name)
	assert.Equal(t, "9", ds.Sheets[0].Records[0].Get(FieldProductID).String())
}

func TestDecodeDataset_NonObjectRecords(t *testing.T) {
	ds, err := DecodeDataset(strings.NewReader(`{"S": [5, null, {"DESCRICAO": "x"}]}`))
	require.NoError(t, err)
	require.Len(t, ds.Sheets, 1)
	assert.Len(t, ds.Sheets[0].Records, 3)

	rows := Normalize(ds, DefaultCompanies())
	require.Len(t, rows, 3)
	assert.Equal(t, "", rows[0].Description)
	assert.Equal(t, "x", rows[2].Description)
}

func TestDecodeDataset_Errors(t *testing.T) {
	_, err := DecodeDataset(strings.NewReader(`{"S": [`))
	assert.Error(t, err)

	_, err = DecodeDataset(strings.NewReader(``))
	assert.Error(t, err)

	_, err = DecodeDataset(strings.NewReader(`{} {}`))
	assert.ErrorIs(t, err, ErrTrailingData)

	_, err = DecodeDataset(strings.NewReader(" null \n"))
	assert.ErrorIs(t, err, ErrNullDataset)

	ds, err := DecodeDataset(strings.NewReader(`[1, 2]`))
	require.NoError(t, err)
	assert.Empty(t, ds.Sheets)
}

func TestNormalize(t *testing.T) {
	doc := `{
		"Mercearia": [
			{"IDEMPRESA": 1, "IDPRODUTO": 101, "IDSUBPRODUTO": 1, "DESCRICAO": "  Leite Integral ",
			 "EMBALAGEMSAIDA": "CX 12", "VALPRECOVAREJO": 5.49, "QTDATUALESTOQUE": 5, "VALTOTAL": 27.45},
			{"IDEMPRESA": "2", "IDPRODUTO": "202", "DESCRICAO": 42}
		],
		"Limpeza": [
			{}
		]
	}`

	ds, err := DecodeDataset(strings.NewReader(doc))
	require.NoError(t, err)

	rows := Normalize(ds, DefaultCompanies())

	expected := []Row{
		{
			Sheet:         "Mercearia",
			CompanyID:     Number(1),
			CompanyName:   "Machado",
			ProductID:     Number(101),
			SubproductID:  Number(1),
			Description:   "Leite Integral",
			Packaging:     String("CX 12"),
			RetailPrice:   Number(5.49),
			StockQuantity: Number(5),
			TotalValue:    Number(27.45),
		},
		{
			Sheet:       "Mercearia",
			CompanyID:   String("2"),
			CompanyName: "Cardoso",
			ProductID:   String("202"),
			Description: "42",
		},
		{
			Sheet:       "Limpeza",
			CompanyName: "Desconhecida",
		},
	}

	if diff := cmp.Diff(expected, rows, cmp.AllowUnexported(Value{})); diff != "" {
		t.Errorf("Normalize mismatch (-want +got):\n%s", diff)
	}
}

func TestNormalize_EveryRowHasAllFields(t *testing.T) {
	ds := Dataset{Sheets: []Sheet{
		{Name: "S", Records: []Record{nil, {}, {FieldRetailPrice: String("abc")}}},
	}}

	rows := Normalize(ds, DefaultCompanies())
	require.Len(t, rows, 3)

	for _, row := range rows {
		data, err := json.Marshal(row)
		require.NoError(t, err)

		var fields map[string]interface{}
		require.NoError(t, json.Unmarshal(data, &fields))
		assert.Len(t, fields, 10)
		for _, key := range []string{"sheet", "EMPRESA", FieldCompanyID, FieldProductID, FieldSubproductID,
			FieldDescription, FieldPackaging, FieldRetailPrice, FieldStockQuantity, FieldTotalValue} {
			assert.Contains(t, fields, key)
		}
	}
}

func TestRow_InStock(t *testing.T) {
	assert.True(t, Row{StockQuantity: Number(5)}.InStock())
	assert.True(t, Row{StockQuantity: String("0.5")}.InStock())
	assert.False(t, Row{StockQuantity: Number(0)}.InStock())
	assert.False(t, Row{StockQuantity: Number(-2)}.InStock())
	assert.False(t, Row{StockQuantity: String("abc")}.InStock())
	assert.False(t, Row{}.InStock())
}
