// =============================================================================
// Fixed Assets Register - Document Generator
// =============================================================================
//
// This module fills the fixed asset document template with one record and
// saves it as <documents dir>/<unit>-<serial>.xlsx.
//
// TEMPLATE CELLS (defaults, overridable in the settings file):
//
//   | Field                | Cell | Note                                  |
//   |----------------------|------|---------------------------------------|
//   | date                 | D3   |                                       |
//   | name_of_item         | A5   |                                       |
//   | invoice              | A9   | "<invoice> on <invoice_date>" if dated |
//   | issuer               | C9   |                                       |
//   | value                | C11  |                                       |
//   | material_duty_person | A21  |                                       |
//   | psp                  | A23  |                                       |
//   | cost_center          | D23  |                                       |
//   | inventory_number     | A25  |                                       |
//
// The first sheet of the template is renamed to the document name.
//
// CONCURRENCY:
//   GenerateAll writes documents with a bounded number of goroutines. Each
//   document is a separate file opened from the template, so the workers
//   share nothing but the read-only Generator.
//
// =============================================================================

package document

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/fixed-assets-register/internal/types"
)

// =============================================================================
// CELL LAYOUT
// =============================================================================

// Cells maps a record field to the template cell it is written to.
type Cells map[string]string

// DefaultCells returns the cell layout of the document template.
func DefaultCells() Cells {
	return Cells{
		types.FieldDate:               "D3",
		types.FieldNameOfItem:         "A5",
		types.FieldInvoice:            "A9",
		types.FieldIssuer:             "C9",
		types.FieldValue:              "C11",
		types.FieldMaterialDutyPerson: "A21",
		types.FieldPSP:                "A23",
		types.FieldCostCenter:         "D23",
		types.FieldInventoryNumber:    "A25",
	}
}

// WithOverrides returns a copy of c with some fields moved to other cells.
func (c Cells) WithOverrides(overrides map[string]string) (Cells, error) {
	out := make(Cells, len(c)+len(overrides))
	for k, v := range c {
		out[k] = v
	}
	for field, cell := range overrides {
		if !isRecordField(field) {
			return nil, fmt.Errorf("unknown record field %q in template cells", field)
		}
		if _, _, err := excelize.CellNameToCoordinates(cell); err != nil {
			return nil, fmt.Errorf("invalid cell for %s: %w", field, err)
		}
		out[field] = cell
	}
	return out, nil
}

func isRecordField(name string) bool {
	for _, f := range types.RecordFields {
		if f == name {
			return true
		}
	}
	return false
}

// maxSheetNameLength is the longest sheet name a workbook accepts.
const maxSheetNameLength = 31

// =============================================================================
// GENERATOR
// =============================================================================

// Generator writes asset documents from a template.
type Generator struct {
	template  string
	outputDir string
	cells     Cells
}

// New creates a Generator. A nil cells means DefaultCells.
func New(template, outputDir string, cells Cells) *Generator {
	if cells == nil {
		cells = DefaultCells()
	}
	return &Generator{template: template, outputDir: outputDir, cells: cells}
}

// Path returns the file a document is written to.
func (g *Generator) Path(doc types.AssetDocument) string {
	return filepath.Join(g.outputDir, doc.Identity.Name()+".xlsx")
}

// Generate writes one document and returns its path.
func (g *Generator) Generate(doc types.AssetDocument) (string, error) {
	f, err := excelize.OpenFile(g.template)
	if err != nil {
		return "", fmt.Errorf("failed to open template: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return "", fmt.Errorf("template has no sheets")
	}

	for field, value := range cellValues(doc.Record) {
		cell, ok := g.cells[field]
		if !ok {
			continue
		}
		if err := f.SetCellValue(sheet, cell, value); err != nil {
			return "", fmt.Errorf("failed to write %s to %s: %w", field, cell, err)
		}
	}

	if err := f.SetSheetName(sheet, sheetName(doc.Identity.Name())); err != nil {
		return "", fmt.Errorf("failed to rename sheet: %w", err)
	}

	if err := os.MkdirAll(g.outputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create documents directory: %w", err)
	}
	path := g.Path(doc)
	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("failed to save document: %w", err)
	}
	return path, nil
}

// cellValues returns the text written for each record field. The invoice
// date has no cell of its own; it is appended to the invoice.
func cellValues(rec types.AssetRecord) map[string]string {
	values := make(map[string]string, len(types.RecordFields))
	for _, name := range types.RecordFields {
		values[name] = rec.Field(name)
	}
	if rec.InvoiceDate != "" {
		values[types.FieldInvoice] = rec.Invoice + " on " + rec.InvoiceDate
	}
	delete(values, types.FieldInvoiceDate)
	return values
}

// sheetName cuts name to the sheet name limit. Excel rejects a trailing
// apostrophe, which the cut can expose.
func sheetName(name string) string {
	if utf8.RuneCountInString(name) <= maxSheetNameLength {
		return name
	}
	return strings.TrimRight(string([]rune(name)[:maxSheetNameLength]), "'")
}

// =============================================================================
// BATCH GENERATION
// =============================================================================

// Result is the outcome of generating one document.
type Result struct {
	Document types.AssetDocument
	Path     string
	Err      error
}

// GenerateAll writes every document using at most concurrency goroutines.
// Results come back in the order of docs. Documents not started before ctx
// is cancelled report ctx.Err().
func (g *Generator) GenerateAll(ctx context.Context, docs []types.AssetDocument, concurrency int) []Result {
	if concurrency < 1 {
		concurrency = 1
	}

	type indexed struct {
		index int
		Result
	}

	var wg sync.WaitGroup
	results := make(chan indexed, len(docs))
	slots := make(chan struct{}, concurrency)

	for i, doc := range docs {
		wg.Add(1)
		go func(i int, doc types.AssetDocument) {
			defer wg.Done()

			select {
			case slots <- struct{}{}:
				defer func() { <-slots }()
			case <-ctx.Done():
				results <- indexed{i, Result{Document: doc, Err: ctx.Err()}}
				return
			}

			path, err := g.Generate(doc)
			results <- indexed{i, Result{Document: doc, Path: path, Err: err}}
		}(i, doc)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	collected := make([]indexed, 0, len(docs))
	for r := range results {
		collected = append(collected, r)
	}
	sort.Slice(collected, func(a, b int) bool { return collected[a].index < collected[b].index })

	out := make([]Result, len(collected))
	for i, r := range collected {
		out[i] = r.Result
	}
	return out
}
