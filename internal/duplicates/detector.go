// Package duplicates finds physical assets entered more than once, detected
// by documents sharing a serial.
package duplicates

import (
	"fmt"
	"io"
	"sort"

	"github.com/ginjaninja78/fixed-assets-register/internal/types"
)

// Report maps a repeated serial to the number of documents carrying it.
// Only counts above one are present.
type Report map[string]int

// Empty reports whether no serial is repeated.
func (r Report) Empty() bool {
	return len(r) == 0
}

// Serials returns the repeated serials in ascending order.
func (r Report) Serials() []string {
	serials := make([]string, 0, len(r))
	for s := range r {
		serials = append(serials, s)
	}
	sort.Strings(serials)
	return serials
}

// Find counts serials across docs and returns those seen more than once.
func Find(docs []types.AssetDocument) Report {
	counts := make(map[string]int, len(docs))
	for _, d := range docs {
		counts[d.Identity.Serial]++
	}

	report := Report{}
	for serial, n := range counts {
		if n > 1 {
			report[serial] = n
		}
	}
	return report
}

// WriteReport prints the report followed, for each repeated serial, by the
// unit and contents of every document carrying it.
func WriteReport(w io.Writer, report Report, docs []types.AssetDocument) error {
	if _, err := fmt.Fprintln(w, "The following serial numbers are repeated this number of times:"); err != nil {
		return err
	}
	for _, serial := range report.Serials() {
		if _, err := fmt.Fprintf(w, "%s: %d\n", serial, report[serial]); err != nil {
			return err
		}
		for _, d := range docs {
			if d.Identity.Serial != serial {
				continue
			}
			if _, err := fmt.Fprintf(w, "\t%s\n%s\n", d.Identity.Unit, d.Record); err != nil {
				return err
			}
		}
	}
	_, err := fmt.Fprintln(w, "Please check your data and try again.")
	return err
}
