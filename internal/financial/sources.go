// Package financial translates financial-source codes from the ledger into
// the PSP element and cost center used by the accounting system.
package financial

import (
	"strings"

	"github.com/ginjaninja78/fixed-assets-register/internal/normalize"
)

// Entry is the accounting pair a financial-source code translates to.
type Entry struct {
	PSP        string
	CostCenter string
}

// costCenters shared by the per-unit budget lines.
var costCenters = []string{
	"1110000", "1110002", "1110003", "1110100", "1110102", "1110103",
	"1110104", "1110105", "1110108", "1110109", "1110111", "1110112",
	"1110113", "1110114", "1110115", "1110116", "1110119", "1110200",
	"1110300", "1112000", "1113300", "1114000", "1115100", "1119000",
	"1119004", "1119801", "1119802",
}

// budgetLines maps a code prefix to the PSP element of that budget line.
// A code is the prefix followed by the cost center.
var budgetLines = map[string]string{
	"550-D111-00-": "0801-D111-00011-01",
	"501-D111-01-": "0801-D111-50101-01",
	"500-D111-01-": "0801-D111-00003-01",
}

var table = buildTable()

func buildTable() map[string]Entry {
	t := make(map[string]Entry, len(budgetLines)*len(costCenters)+4)
	for prefix, psp := range budgetLines {
		for _, cc := range costCenters {
			t[prefix+cc] = Entry{PSP: psp, CostCenter: cc}
		}
	}

	// Single entries. The prior years' balance has no cost center; rows
	// using it are lump sums without a date.
	t["pozostałość śr. budżetowych z lat ubiegłych"] = Entry{PSP: "0801-D111-00110-01"}
	t["500-12/Twórcy"] = Entry{PSP: "0801-D111-00010-01", CostCenter: "1110000"}
	t["500-D111-12-1119000"] = Entry{PSP: "0801-D111-00100-01", CostCenter: "1119000"}
	t["501-D111-20-"] = Entry{PSP: "0801-D111-50120-01", CostCenter: "1110000"}
	return t
}

// Lookup returns the entry for a code. Surrounding whitespace is ignored.
func Lookup(code string) (Entry, bool) {
	e, ok := table[strings.TrimSpace(code)]
	return e, ok
}

// Len returns the number of known codes.
func Len() int {
	return len(table)
}

// Resolution is the outcome of translating a row's financial source.
type Resolution struct {
	PSP        string
	CostCenter string

	// Source is the financial source as text, empty when absent.
	Source string

	// Fallback is set when the code is not in the table and was copied
	// into both PSP and CostCenter.
	Fallback bool

	// Skip is set for codes whose first character is "P": the row is not
	// a registrable asset. Leading whitespace counts, so " P..." is looked
	// up like any other code.
	Skip bool
}

// Resolve translates a raw financial-source cell value.
func Resolve(value any) Resolution {
	code, ok := normalize.Stringify(value)
	if !ok {
		return Resolution{}
	}
	if s, ok := value.(string); ok && strings.HasPrefix(s, "P") {
		return Resolution{Source: code, Skip: true}
	}
	if e, ok := Lookup(code); ok {
		return Resolution{PSP: e.PSP, CostCenter: e.CostCenter, Source: code}
	}
	return Resolution{PSP: code, CostCenter: code, Source: code, Fallback: true}
}
