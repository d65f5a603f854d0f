// Package selector decides, row by row, which ledger rows describe a
// registrable asset.
package selector

import (
	"strings"

	"github.com/ginjaninja78/fixed-assets-register/internal/financial"
	"github.com/ginjaninja78/fixed-assets-register/internal/normalize"
	"github.com/ginjaninja78/fixed-assets-register/internal/types"
)

// Action is the outcome of classifying a row.
type Action int

const (
	// Accept passes the row on to validation.
	Accept Action = iota
	// Skip drops the row silently.
	Skip
	// TerminateOnFatal stops the whole run.
	TerminateOnFatal
)

func (a Action) String() string {
	switch a {
	case Accept:
		return "accept"
	case Skip:
		return "skip"
	case TerminateOnFatal:
		return "fatal"
	}
	return "unknown"
}

// Reasons a row is skipped or rejected.
const (
	ReasonNoOrdinal      = "ordinal number is empty"
	ReasonNoInventory    = "inventory number is empty"
	ReasonContinuation   = "continuation of the previous invoice group"
	ReasonNoSerial       = "asset under construction"
	ReasonNotRegistrable = "financial source is not registrable"
	ReasonNoUnit         = "unit cannot be empty"
)

// groupMarker starts the inventory number of lines that add to an asset
// already listed above them.
const groupMarker = "do "

// Decision is the classification of a single row.
type Decision struct {
	Action Action
	Reason string

	// Serial, Unit and Resolution are set when the row is accepted.
	Serial     string
	Unit       string
	Resolution financial.Resolution
}

// Classify decides what to do with row. prev is the row immediately before
// it in the ledger, nil for the first row.
//
// Checks run in this order: missing ordinal, missing inventory number and
// continuation line skip the row; a missing unit on any other row is fatal;
// then an underivable serial or a "P" financial source skips the row.
func Classify(row types.RawRow, prev *types.RawRow) Decision {
	ordinal, ok := row.Text(types.FieldOrdinalNumber)
	if !ok {
		return Decision{Action: Skip, Reason: ReasonNoOrdinal}
	}

	// Whitespace is significant for the marker, so the raw string is used.
	inventory, ok := row.Text(types.FieldInventoryNumber)
	if !ok {
		return Decision{Action: Skip, Reason: ReasonNoInventory}
	}
	if raw, isString := row.Get(types.FieldInventoryNumber).(string); isString &&
		strings.HasPrefix(raw, groupMarker) && prev != nil && prev.Ordinal() == ordinal {
		return Decision{Action: Skip, Reason: ReasonContinuation}
	}

	unit, ok := row.Text(types.FieldUnit)
	if !ok {
		return Decision{Action: TerminateOnFatal, Reason: ReasonNoUnit}
	}

	serial, ok := normalize.DeriveSerial(inventory)
	if !ok {
		return Decision{Action: Skip, Reason: ReasonNoSerial}
	}

	res := financial.Resolve(row.Get(types.FieldFinancialSource))
	if res.Skip {
		return Decision{Action: Skip, Reason: ReasonNotRegistrable}
	}

	return Decision{Action: Accept, Serial: serial, Unit: unit, Resolution: res}
}
