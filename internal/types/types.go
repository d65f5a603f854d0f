// =============================================================================
// Fixed Assets Register - Shared Types
// =============================================================================
//
// This package contains shared types used across multiple modules to avoid
// import cycles. Types defined here are used by:
//   - xlsxparser / csvparser (produce RawRow values)
//   - selector, validation, pipeline (consume RawRow, produce AssetRecord)
//   - storage, document (consume AssetDocument)
//
// =============================================================================

package types

import (
	"fmt"
	"strings"
	"time"

	"github.com/ginjaninja78/fixed-assets-register/internal/normalize"
)

// =============================================================================
// FIELD NAMES
// =============================================================================

// Ledger field names. These are the keys of a RawRow and, for the record
// fields, of an AssetRecord.
const (
	FieldOrdinalNumber      = "ordinal_number"
	FieldFinancialSource    = "financial_source"
	FieldUnit               = "unit"
	FieldDate               = "date"
	FieldNameOfItem         = "name_of_item"
	FieldInvoice            = "invoice"
	FieldInvoiceDate        = "invoice_date"
	FieldIssuer             = "issuer"
	FieldValue              = "value"
	FieldMaterialDutyPerson = "material_duty_person"
	FieldPSP                = "psp"
	FieldCostCenter         = "cost_center"
	FieldInventoryNumber    = "inventory_number"
	FieldUsePurpose         = "use_purpose"
	FieldSerialNumber       = "serial_number"
	FieldIDVim              = "id_vim"
)

// RowFields lists the fields read from a ledger row, in column order of the
// original ledger layout.
var RowFields = []string{
	FieldOrdinalNumber,
	FieldIDVim,
	FieldInventoryNumber,
	FieldFinancialSource,
	FieldInvoice,
	FieldInvoiceDate,
	FieldNameOfItem,
	FieldValue,
	FieldIssuer,
	FieldDate,
	FieldUnit,
	FieldMaterialDutyPerson,
	FieldUsePurpose,
	FieldSerialNumber,
}

// RecordFields lists the fields of an AssetRecord in their canonical order.
var RecordFields = []string{
	FieldDate,
	FieldNameOfItem,
	FieldInvoice,
	FieldInvoiceDate,
	FieldIssuer,
	FieldValue,
	FieldMaterialDutyPerson,
	FieldPSP,
	FieldCostCenter,
	FieldInventoryNumber,
	FieldUsePurpose,
	FieldSerialNumber,
	FieldIDVim,
}

// AppendixSentinel replaces a missing invoice or issuer. Lump-sum entries
// usually have neither.
const AppendixSentinel = "appendix"

// =============================================================================
// RAW ROW
// =============================================================================

// RawRow is a single ledger row keyed by field name.
// Values are untyped: string, int64, float64, time.Time or nil for an
// empty cell.
type RawRow struct {
	// Line is the 1-indexed position of the row among the data rows.
	Line int

	// Values maps a field name to its cell value.
	Values map[string]any
}

// NewRawRow creates an empty RawRow for the given line.
func NewRawRow(line int) RawRow {
	return RawRow{Line: line, Values: make(map[string]any, len(RowFields))}
}

// Get returns the raw value for a field, nil when the field is absent.
func (r RawRow) Get(field string) any {
	if r.Values == nil {
		return nil
	}
	return r.Values[field]
}

// Text returns the trimmed string form of a field and whether it is present.
// Blank strings count as absent.
func (r RawRow) Text(field string) (string, bool) {
	return normalize.Stringify(r.Get(field))
}

// Ordinal returns the ordinal number as text, used for diagnostics and
// continuation-row grouping.
func (r RawRow) Ordinal() string {
	s, _ := r.Text(FieldOrdinalNumber)
	return s
}

// String renders the row as field=value pairs in column order, for
// diagnostics. Absent fields are left out.
func (r RawRow) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "line %d:", r.Line)
	for _, name := range RowFields {
		if v, ok := r.Text(name); ok {
			fmt.Fprintf(&b, " %s=%q", name, v)
		}
	}
	return b.String()
}

// =============================================================================
// ASSET RECORD
// =============================================================================

// AssetRecord is a validated ledger entry. Build it with
// validation.NewAssetRecord; a zero AssetRecord is not valid.
type AssetRecord struct {
	Date               string `json:"date" yaml:"date"`
	NameOfItem         string `json:"name_of_item" yaml:"name_of_item"`
	Invoice            string `json:"invoice" yaml:"invoice"`
	InvoiceDate        string `json:"invoice_date,omitempty" yaml:"invoice_date,omitempty"`
	Issuer             string `json:"issuer" yaml:"issuer"`
	Value              string `json:"value" yaml:"value"`
	MaterialDutyPerson string `json:"material_duty_person" yaml:"material_duty_person"`
	PSP                string `json:"psp" yaml:"psp"`
	CostCenter         string `json:"cost_center" yaml:"cost_center"`
	InventoryNumber    string `json:"inventory_number" yaml:"inventory_number"`
	UsePurpose         string `json:"use_purpose,omitempty" yaml:"use_purpose,omitempty"`
	SerialNumber       string `json:"serial_number,omitempty" yaml:"serial_number,omitempty"`
	IDVim              string `json:"id_vim,omitempty" yaml:"id_vim,omitempty"`
}

// Field returns the value of a record field by name.
func (a AssetRecord) Field(name string) string {
	switch name {
	case FieldDate:
		return a.Date
	case FieldNameOfItem:
		return a.NameOfItem
	case FieldInvoice:
		return a.Invoice
	case FieldInvoiceDate:
		return a.InvoiceDate
	case FieldIssuer:
		return a.Issuer
	case FieldValue:
		return a.Value
	case FieldMaterialDutyPerson:
		return a.MaterialDutyPerson
	case FieldPSP:
		return a.PSP
	case FieldCostCenter:
		return a.CostCenter
	case FieldInventoryNumber:
		return a.InventoryNumber
	case FieldUsePurpose:
		return a.UsePurpose
	case FieldSerialNumber:
		return a.SerialNumber
	case FieldIDVim:
		return a.IDVim
	}
	return ""
}

// Redacted returns a copy with the material duty person replaced by label.
// The stored record is not changed.
func (a AssetRecord) Redacted(label string) AssetRecord {
	a.MaterialDutyPerson = label
	return a
}

// String renders the record as space separated field='value' pairs.
// Optional fields are left out when empty.
func (a AssetRecord) String() string {
	var b strings.Builder
	for i, name := range RecordFields {
		v := a.Field(name)
		if v == "" && isOptional(name) {
			continue
		}
		if i > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "%s=%q", name, v)
	}
	return b.String()
}

func isOptional(name string) bool {
	switch name {
	case FieldInvoiceDate, FieldUsePurpose, FieldSerialNumber, FieldIDVim:
		return true
	}
	return false
}

// =============================================================================
// DOCUMENT IDENTITY
// =============================================================================

// DocumentIdentity names the document generated for an asset.
type DocumentIdentity struct {
	Unit   string `json:"unit"`
	Serial string `json:"serial"`
}

// UnknownUnit names documents whose unit is empty.
const UnknownUnit = "unknown_unit"

// unitReplacer maps the characters Excel rejects in sheet names to
// underscores. The same set covers the path separators.
var unitReplacer = strings.NewReplacer(
	"/", "_", "\\", "_", ":", "_", "?", "_", "*", "_", "[", "_", "]", "_",
)

// Name returns "<unit>-<serial>" with the characters that cannot appear in
// a sheet or file name replaced by underscores. A leading apostrophe is
// replaced too, since Excel rejects it at the start of a sheet name.
func (d DocumentIdentity) Name() string {
	unit := strings.TrimSpace(d.Unit)
	if unit == "" {
		unit = UnknownUnit
	}
	unit = unitReplacer.Replace(unit)
	if strings.HasPrefix(unit, "'") {
		unit = "_" + unit[1:]
	}
	return unit + "-" + d.Serial
}

// AssetDocument pairs a record with its identity. This is the unit handed
// to persistence and document generation.
type AssetDocument struct {
	Identity DocumentIdentity `json:"identity"`
	Ordinal  string           `json:"ordinal"`
	Record   AssetRecord      `json:"record"`
}

// =============================================================================
// IMPORT RUN
// =============================================================================

// ImportRun describes one persisted import of the ledger.
type ImportRun struct {
	ID        string    `json:"id"`
	Source    string    `json:"source"`
	StartedAt time.Time `json:"started_at"`
	Rows      int       `json:"rows"`
	Accepted  int       `json:"accepted"`
	Skipped   int       `json:"skipped"`
	Failed    int       `json:"failed"`
}
