// =============================================================================
// Fixed Assets Register - Ledger Workbook Reader
// =============================================================================
//
// This module reads the asset ledger from an XLSX workbook and turns each
// data row into a types.RawRow.
//
// LEDGER STRUCTURE (default column layout):
//
//   | A       | B      | C         | D         | E       | F            | G    |
//   |---------|--------|-----------|-----------|---------|--------------|------|
//   | Ordinal | ID VIM | Inventory | Fin. src. | Invoice | Invoice date | Name |
//
//   | H   | I     | J     | K      | L    | M    | N      | O       | P      |
//   |-----|-------|-------|--------|------|------|--------|---------|--------|
//   | Qty | Price | Value | Issuer | Date | Unit | Person | Purpose | Serial |
//
//   Row 1 is the header. Data starts at row 2. Column I is read as the
//   value. The layout can be changed per field in the settings file.
//
// CELL VALUES:
//   - Text cells stay strings
//   - Numeric cells become float64
//   - Numeric cells in date columns become time.Time
//   - Empty cells and cells past the last data column are absent
//
// =============================================================================

package xlsxparser

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/fixed-assets-register/internal/types"
)

// =============================================================================
// COLUMN LAYOUT
// =============================================================================

// ColumnLayout maps a ledger field to its 0-based column index.
type ColumnLayout map[string]int

// DefaultLayout returns the column layout of the ledger.
func DefaultLayout() ColumnLayout {
	return ColumnLayout{
		types.FieldOrdinalNumber:      0,  // A
		types.FieldIDVim:              1,  // B
		types.FieldInventoryNumber:    2,  // C
		types.FieldFinancialSource:    3,  // D
		types.FieldInvoice:            4,  // E
		types.FieldInvoiceDate:        5,  // F
		types.FieldNameOfItem:         6,  // G
		types.FieldValue:              8,  // I
		types.FieldIssuer:             10, // K
		types.FieldDate:               11, // L
		types.FieldUnit:               12, // M
		types.FieldMaterialDutyPerson: 13, // N
		types.FieldUsePurpose:         14, // O
		types.FieldSerialNumber:       15, // P
	}
}

// LayoutWithOverrides returns the default layout with some fields moved.
// Overrides map a field name to a column letter ("I", "AB").
func LayoutWithOverrides(overrides map[string]string) (ColumnLayout, error) {
	layout := DefaultLayout()

	fields := make([]string, 0, len(overrides))
	for field := range overrides {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	for _, field := range fields {
		if _, known := layout[field]; !known {
			return nil, fmt.Errorf("unknown ledger field %q in column layout", field)
		}
		n, err := excelize.ColumnNameToNumber(strings.TrimSpace(overrides[field]))
		if err != nil {
			return nil, fmt.Errorf("invalid column for %s: %w", field, err)
		}
		layout[field] = n - 1
	}
	return layout, nil
}

// isDateField reports whether numeric cells of a field hold Excel dates.
func isDateField(field string) bool {
	return field == types.FieldDate || field == types.FieldInvoiceDate
}

// =============================================================================
// READER
// =============================================================================

// Options control how the ledger is read.
type Options struct {
	// Sheet is the ledger sheet. Empty means the active sheet.
	Sheet string

	// LastColumn is the 1-based last data column. Zero means detect it
	// from the header row.
	LastColumn int

	// Layout maps fields to columns. Nil means DefaultLayout.
	Layout ColumnLayout
}

// Ledger is the content of a ledger sheet.
type Ledger struct {
	Path       string
	Sheet      string
	LastColumn int
	Rows       []types.RawRow
}

// Read opens the workbook at path and returns its ledger rows.
//
// PARAMETERS:
//   - path: The path to the XLSX workbook.
//   - opts: Sheet, last column and column layout.
//
// RETURNS:
//   - The ledger, rows in sheet order.
//   - An error if the workbook or sheet cannot be read.
func Read(path string, opts Options) (*Ledger, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheet, err := resolveSheet(f, opts.Sheet)
	if err != nil {
		return nil, err
	}

	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}

	lastColumn := opts.LastColumn
	if lastColumn <= 0 {
		var header []string
		if len(rows) > 0 {
			header = rows[0]
		}
		lastColumn = lastDataColumn(header)
	}

	layout := opts.Layout
	if layout == nil {
		layout = DefaultLayout()
	}

	ledger := &Ledger{Path: path, Sheet: sheet, LastColumn: lastColumn}

	// Row 1 is the header.
	for i := 1; i < len(rows); i++ {
		row := types.NewRawRow(i)
		for field, col := range layout {
			if col >= lastColumn || col >= len(rows[i]) {
				continue
			}
			raw := rows[i][col]
			if strings.TrimSpace(raw) == "" {
				continue
			}
			v, err := cellValue(f, sheet, col, i, raw, isDateField(field))
			if err != nil {
				return nil, fmt.Errorf("row %d, field %s: %w", i+1, field, err)
			}
			row.Values[field] = v
		}
		ledger.Rows = append(ledger.Rows, row)
	}

	return ledger, nil
}

// cellValue types a raw cell string. rowIndex is 0-based.
func cellValue(f *excelize.File, sheet string, col, rowIndex int, raw string, dateField bool) (any, error) {
	n, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return raw, nil
	}

	cell, err := excelize.CoordinatesToCellName(col+1, rowIndex+1)
	if err != nil {
		return nil, err
	}
	cellType, err := f.GetCellType(sheet, cell)
	if err != nil {
		return nil, err
	}
	switch cellType {
	case excelize.CellTypeSharedString, excelize.CellTypeInlineString, excelize.CellTypeFormula:
		// Text that happens to look like a number.
		return raw, nil
	}

	if dateField {
		t, err := excelize.ExcelDateToTime(n, false)
		if err != nil {
			return nil, fmt.Errorf("failed to convert date serial %s: %w", raw, err)
		}
		return t, nil
	}
	return n, nil
}

// =============================================================================
// SHEET AND COLUMN DETECTION
// =============================================================================

// resolveSheet returns the named sheet, or the active sheet for "".
func resolveSheet(f *excelize.File, name string) (string, error) {
	if name == "" {
		name = f.GetSheetName(f.GetActiveSheetIndex())
		if name == "" {
			return "", fmt.Errorf("workbook has no sheets")
		}
		return name, nil
	}
	for _, s := range f.GetSheetList() {
		if s == name {
			return name, nil
		}
	}
	return "", fmt.Errorf("sheet %q not found", name)
}

// lastDataColumn returns the 1-based index of the last header cell before
// the first empty one.
func lastDataColumn(header []string) int {
	for i, cell := range header {
		if strings.TrimSpace(cell) == "" {
			return i
		}
	}
	return len(header)
}

// Layout describes the sheets of a workbook and the ledger bounds.
type Layout struct {
	Sheets      []string
	ActiveSheet string
	LastColumn  int
}

// Inspect reports the sheets of a workbook and the last data column of
// sheet (the active sheet when empty). It is used to fill the settings.
func Inspect(path, sheet string) (*Layout, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	name, err := resolveSheet(f, sheet)
	if err != nil {
		return nil, err
	}

	rows, err := f.Rows(name)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}
	defer rows.Close()

	var header []string
	if rows.Next() {
		if header, err = rows.Columns(); err != nil {
			return nil, fmt.Errorf("failed to read header row: %w", err)
		}
	}

	return &Layout{
		Sheets:      f.GetSheetList(),
		ActiveSheet: name,
		LastColumn:  lastDataColumn(header),
	}, nil
}
