// =============================================================================
// Fixed Assets Register - CSV Ledger Reader
// =============================================================================
//
// This module reads a CSV export of the ledger sheet. It applies the same
// column layout as the workbook reader, so a ledger saved as CSV from the
// spreadsheet program imports the same way as the workbook itself.
//
// FEATURES:
//   - Configurable delimiter (comma, semicolon, tab, pipe)
//   - UTF-8 byte order mark stripped from the header
//   - Last data column detected from the header row
//   - Every value stays a string; dates and numbers are normalized later
//
// =============================================================================

package csvparser

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ginjaninja78/fixed-assets-register/internal/types"
	"github.com/ginjaninja78/fixed-assets-register/internal/xlsxparser"
)

// Options control how the export is read.
type Options struct {
	// Delimiter separates fields. Empty means comma.
	Delimiter string

	// Layout maps fields to columns. Nil means xlsxparser.DefaultLayout.
	Layout xlsxparser.ColumnLayout
}

// =============================================================================
// PARSER FUNCTIONS
// =============================================================================

// Read reads a CSV ledger export from a file.
//
// PARAMETERS:
//   - filePath: The path to the CSV file.
//   - opts: Delimiter and column layout.
//
// RETURNS:
//   - The ledger rows in file order.
//   - An error if the file cannot be read or parsed.
func Read(filePath string, opts Options) ([]types.RawRow, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	return Parse(bufio.NewReader(file), opts)
}

// Parse reads ledger rows from r. The first record is the header row.
func Parse(r io.Reader, opts Options) ([]types.RawRow, error) {
	csvReader := csv.NewReader(r)
	configureReader(csvReader, opts.Delimiter)

	allRows, err := csvReader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}
	if len(allRows) == 0 {
		return nil, fmt.Errorf("CSV file is empty")
	}

	header := allRows[0]
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	lastColumn := lastDataColumn(header)

	layout := opts.Layout
	if layout == nil {
		layout = xlsxparser.DefaultLayout()
	}

	rows := make([]types.RawRow, 0, len(allRows)-1)
	for i := 1; i < len(allRows); i++ {
		row := types.NewRawRow(i)
		for field, col := range layout {
			if col >= lastColumn || col >= len(allRows[i]) {
				continue
			}
			if v := allRows[i][col]; strings.TrimSpace(v) != "" {
				row.Values[field] = v
			}
		}
		rows = append(rows, row)
	}

	return rows, nil
}

// configureReader configures the CSV reader for the given delimiter.
func configureReader(reader *csv.Reader, delimiter string) {
	switch delimiter {
	case "\\t", "tab", "TAB":
		reader.Comma = '\t'
	case "|", "pipe", "PIPE":
		reader.Comma = '|'
	case ";", "semicolon":
		reader.Comma = ';'
	default:
		if len(delimiter) > 0 {
			reader.Comma = rune(delimiter[0])
		} else {
			reader.Comma = ','
		}
	}

	// Exports often pad short rows.
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
}

// lastDataColumn returns the number of header cells before the first empty
// one.
func lastDataColumn(header []string) int {
	for i, cell := range header {
		if strings.TrimSpace(cell) == "" {
			return i
		}
	}
	return len(header)
}
