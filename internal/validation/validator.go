// =============================================================================
// Fixed Assets Register - Record Validator
// =============================================================================
//
// This module turns a ledger row into a validated AssetRecord.
// It enforces, in order:
//   - Closed record: only known field names (or their camelCase aliases)
//   - Trimming and number coercion of every value
//   - Defaults for invoice, issuer, date and material duty person
//   - Date reconciliation of date and invoice_date
//   - Required fields (name, value, inventory number)
//   - The cost center / date / financial source invariant
//
// ERROR HANDLING:
//   - Every violation is a *FieldError naming the field and the value
//   - Validate wraps the failure in a *RowError carrying the row ordinal,
//     so the pipeline can report it and continue with the next row
//
// =============================================================================

package validation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ginjaninja78/fixed-assets-register/internal/financial"
	"github.com/ginjaninja78/fixed-assets-register/internal/normalize"
	"github.com/ginjaninja78/fixed-assets-register/internal/types"
)

// =============================================================================
// VALIDATION ERROR TYPES
// =============================================================================

// FieldError represents a single field that failed validation.
type FieldError struct {
	// Field is the name of the field that failed validation.
	Field string

	// Value is the offending value as text.
	Value string

	// Message is a human-readable error message.
	Message string

	// Err is the underlying error, if any (for example a
	// *normalize.BadDateFormatError).
	Err error
}

// Error implements the error interface.
func (e *FieldError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("field '%s': %s", e.Field, e.Message)
	}
	return fmt.Sprintf("field '%s': %s (value: '%s')", e.Field, e.Message, e.Value)
}

// Unwrap returns the underlying error.
func (e *FieldError) Unwrap() error {
	return e.Err
}

// RowError is a validation failure attributed to a ledger row.
type RowError struct {
	// Ordinal is the ordinal number of the row as written in the ledger.
	Ordinal string

	// Row is the offending row, printed for the operator.
	Row types.RawRow

	// Err is the validation failure.
	Err error
}

// Error implements the error interface.
func (e *RowError) Error() string {
	return fmt.Sprintf("row %d (ordinal number %s): %v", e.Row.Line, e.Ordinal, e.Err)
}

// Unwrap returns the validation failure.
func (e *RowError) Unwrap() error {
	return e.Err
}

// =============================================================================
// FIELD NAMES AND ALIASES
// =============================================================================

// aliases maps the camelCase spelling of each record field to its name.
var aliases = buildAliases()

func buildAliases() map[string]string {
	m := make(map[string]string, len(types.RecordFields))
	for _, name := range types.RecordFields {
		if camel := toCamel(name); camel != name {
			m[camel] = name
		}
	}
	return m
}

// toCamel converts snake_case to camelCase ("name_of_item" -> "nameOfItem").
func toCamel(name string) string {
	parts := strings.Split(name, "_")
	for i := 1; i < len(parts); i++ {
		if parts[i] != "" {
			parts[i] = strings.ToUpper(parts[i][:1]) + parts[i][1:]
		}
	}
	return strings.Join(parts, "")
}

// canonicalName resolves a record key to its field name.
func canonicalName(key string) (string, bool) {
	for _, name := range types.RecordFields {
		if key == name {
			return name, true
		}
	}
	name, ok := aliases[key]
	return name, ok
}

// =============================================================================
// RECORD CONSTRUCTION
// =============================================================================

// NewAssetRecord builds a record from named values.
//
// PARAMETERS:
//   - fields: Values keyed by record field name or its camelCase alias.
//     Values may be strings, numbers, time.Time or nil.
//   - financialSource: The financial source the psp and cost center were
//     resolved from. It is only used by the cost center invariant.
//
// RETURNS:
//   - The validated record.
//   - A *FieldError describing the first violation.
func NewAssetRecord(fields map[string]any, financialSource string) (types.AssetRecord, error) {
	values := make(map[string]any, len(fields))
	for key, v := range fields {
		name, ok := canonicalName(key)
		if !ok {
			text, _ := normalize.Stringify(v)
			return types.AssetRecord{}, &FieldError{Field: key, Value: text, Message: "unknown field"}
		}
		if _, dup := values[name]; dup {
			return types.AssetRecord{}, &FieldError{Field: name, Message: "given more than once"}
		}
		values[name] = v
	}

	text := func(name string) string {
		s, _ := normalize.Stringify(values[name])
		return s
	}

	rec := types.AssetRecord{
		NameOfItem:         text(types.FieldNameOfItem),
		Invoice:            text(types.FieldInvoice),
		Issuer:             text(types.FieldIssuer),
		Value:              text(types.FieldValue),
		MaterialDutyPerson: text(types.FieldMaterialDutyPerson),
		PSP:                text(types.FieldPSP),
		CostCenter:         text(types.FieldCostCenter),
		InventoryNumber:    text(types.FieldInventoryNumber),
		UsePurpose:         text(types.FieldUsePurpose),
		SerialNumber:       text(types.FieldSerialNumber),
		IDVim:              text(types.FieldIDVim),
	}

	// Lump-sum entries usually carry neither invoice nor issuer.
	if rec.Invoice == "" {
		rec.Invoice = types.AppendixSentinel
	}
	if rec.Issuer == "" {
		rec.Issuer = types.AppendixSentinel
	}

	var err error
	if rec.Date, err = normalizeDateField(types.FieldDate, values[types.FieldDate]); err != nil {
		return types.AssetRecord{}, err
	}
	if rec.InvoiceDate, err = normalizeDateField(types.FieldInvoiceDate, values[types.FieldInvoiceDate]); err != nil {
		return types.AssetRecord{}, err
	}

	for _, name := range []string{types.FieldNameOfItem, types.FieldValue, types.FieldInventoryNumber} {
		if rec.Field(name) == "" {
			return types.AssetRecord{}, &FieldError{Field: name, Message: "required field is empty"}
		}
	}

	if err := checkCostCenter(rec, financialSource); err != nil {
		return types.AssetRecord{}, err
	}

	return rec, nil
}

func normalizeDateField(name string, value any) (string, error) {
	date, err := normalize.NormalizeDate(value)
	if err != nil {
		var bad *normalize.BadDateFormatError
		text := ""
		if errors.As(err, &bad) {
			text = bad.Value
		}
		return "", &FieldError{Field: name, Value: text, Message: "cannot be read as a date", Err: err}
	}
	return date, nil
}

// checkCostCenter enforces the lump-sum signature: a record may lack a date
// or a cost center only when its financial source is a complex literal
// (contains a space), and a missing cost center also requires a missing
// date.
func checkCostCenter(rec types.AssetRecord, financialSource string) error {
	complexSource := strings.Contains(strings.TrimSpace(financialSource), " ")

	if rec.CostCenter == "" && (rec.Date != "" || !complexSource) {
		return &FieldError{
			Field:   types.FieldCostCenter,
			Value:   financialSource,
			Message: "cost center is empty; only lump-sum entries without a date may omit it",
		}
	}
	if rec.Date == "" && !complexSource {
		return &FieldError{
			Field:   types.FieldDate,
			Message: "please specify date as DD-MM-YYYY",
		}
	}
	return nil
}

// =============================================================================
// ROW VALIDATION
// =============================================================================

// Validate resolves the financial source of a row and builds its record.
// Failures are returned as *RowError.
func Validate(row types.RawRow) (types.AssetRecord, error) {
	return ValidateResolved(row, financial.Resolve(row.Get(types.FieldFinancialSource)))
}

// ValidateResolved builds the record of a row whose financial source has
// already been resolved.
//
// Row keys must be ledger field names. The ordinal number, financial source
// and unit are consumed here and do not become record fields.
func ValidateResolved(row types.RawRow, res financial.Resolution) (types.AssetRecord, error) {
	fail := func(err error) (types.AssetRecord, error) {
		return types.AssetRecord{}, &RowError{Ordinal: row.Ordinal(), Row: row, Err: err}
	}

	for key, v := range row.Values {
		if !isRowField(key) {
			text, _ := normalize.Stringify(v)
			return fail(&FieldError{Field: key, Value: text, Message: "unknown field"})
		}
	}

	if res.Skip {
		return fail(&FieldError{
			Field:   types.FieldFinancialSource,
			Value:   res.Source,
			Message: "not a registrable asset",
		})
	}

	fields := make(map[string]any, len(types.RecordFields))
	for _, name := range types.RecordFields {
		if v := row.Get(name); v != nil {
			fields[name] = v
		}
	}
	fields[types.FieldPSP] = res.PSP
	fields[types.FieldCostCenter] = res.CostCenter

	rec, err := NewAssetRecord(fields, res.Source)
	if err != nil {
		return fail(err)
	}
	return rec, nil
}

func isRowField(key string) bool {
	for _, name := range types.RowFields {
		if key == name {
			return true
		}
	}
	return false
}

// =============================================================================
// ERROR FORMATTING
// =============================================================================

// FormatErrors formats row failures for display or logging. Each failure
// is followed by the offending row when it is a *RowError.
func FormatErrors(errs []error) string {
	if len(errs) == 0 {
		return "No validation errors."
	}

	var builder strings.Builder
	fmt.Fprintf(&builder, "Validation completed with %d error(s):\n\n", len(errs))

	for i, err := range errs {
		fmt.Fprintf(&builder, "%d. %s\n", i+1, err.Error())
		var rowErr *RowError
		if errors.As(err, &rowErr) {
			fmt.Fprintf(&builder, "   %s\n", rowErr.Row)
		}
	}

	return builder.String()
}
