// Package catalog holds the normalized inventory row model and the
// normalizer that flattens sheet-based exports into it.
package catalog

import (
	"strings"
)

// Source record keys as exported from the ERP spreadsheets
const (
	FieldCompanyID     = "IDEMPRESA"
	FieldProductID     = "IDPRODUTO"
	FieldSubproductID  = "IDSUBPRODUTO"
	FieldDescription   = "DESCRICAO"
	FieldPackaging     = "EMBALAGEMSAIDA"
	FieldRetailPrice   = "VALPRECOVAREJO"
	FieldStockQuantity = "QTDATUALESTOQUE"
	FieldTotalValue    = "VALTOTAL"
)

// Row is one normalized product record
type Row struct {
	Sheet         string `json:"sheet"`
	CompanyID     Value  `json:"IDEMPRESA"`
	CompanyName   string `json:"EMPRESA"`
	ProductID     Value  `json:"IDPRODUTO"`
	SubproductID  Value  `json:"IDSUBPRODUTO"`
	Description   string `json:"DESCRICAO"`
	Packaging     Value  `json:"EMBALAGEMSAIDA"`
	RetailPrice   Value  `json:"VALPRECOVAREJO"`
	StockQuantity Value  `json:"QTDATUALESTOQUE"`
	TotalValue    Value  `json:"VALTOTAL"`
}

// InStock reports whether the stock quantity coerces to a positive number
func (r Row) InStock() bool {
	return r.StockQuantity.FloatOr(0) > 0
}

// Record is a raw source record keyed by column name
type Record map[string]Value

// Get returns the field value, or Empty when absent
func (r Record) Get(key string) Value {
	if r == nil {
		return Empty
	}
	return r[key]
}

// Sheet is a named list of records inside a dataset
type Sheet struct {
	Name    string
	Records []Record
}

// Dataset is one company export: sheets in document order
type Dataset struct {
	Sheets []Sheet
}

// Normalize flattens every record of every sheet into rows, in sheet order
// then record order. It never fails; missing fields become empty values.
func Normalize(ds Dataset, dir CompanyDirectory) []Row {
	total := 0
	for _, sheet := range ds.Sheets {
		total += len(sheet.Records)
	}

	rows := make([]Row, 0, total)
	for _, sheet := range ds.Sheets {
		for _, rec := range sheet.Records {
			rows = append(rows, NormalizeRecord(sheet.Name, rec, dir))
		}
	}
	return rows
}

// NormalizeRecord builds a single row from a raw record
func NormalizeRecord(sheet string, rec Record, dir CompanyDirectory) Row {
	companyID := rec.Get(FieldCompanyID)
	return Row{
		Sheet:         sheet,
		CompanyID:     companyID,
		CompanyName:   dir.Resolve(companyID),
		ProductID:     rec.Get(FieldProductID),
		SubproductID:  rec.Get(FieldSubproductID),
		Description:   strings.TrimSpace(rec.Get(FieldDescription).String()),
		Packaging:     rec.Get(FieldPackaging),
		RetailPrice:   rec.Get(FieldRetailPrice),
		StockQuantity: rec.Get(FieldStockQuantity),
		TotalValue:    rec.Get(FieldTotalValue),
	}
}
