package selector

import (
	"testing"

	"github.com/ginjaninja78/fixed-assets-register/internal/types"
)

func row(line int, values map[string]any) types.RawRow {
	r := types.NewRawRow(line)
	for k, v := range values {
		r.Values[k] = v
	}
	return r
}

func registrable(ordinal any, inventory any) map[string]any {
	return map[string]any{
		types.FieldOrdinalNumber:   ordinal,
		types.FieldInventoryNumber: inventory,
		types.FieldFinancialSource: "550-D111-00-1110300",
		types.FieldUnit:            "IT",
	}
}

func TestClassify(t *testing.T) {
	prev := row(1, registrable(7.0, "487-T-1110300-111100140070"))

	tests := []struct {
		name       string
		values     map[string]any
		prev       *types.RawRow
		wantAction Action
		wantReason string
	}{
		{
			name:       "accepted",
			values:     registrable(8.0, "487-T-1110300-111100140071"),
			prev:       &prev,
			wantAction: Accept,
		},
		{
			name:       "no ordinal",
			values:     registrable(nil, "487-T-1110300-111100140071"),
			wantAction: Skip,
			wantReason: ReasonNoOrdinal,
		},
		{
			name:       "blank ordinal",
			values:     registrable("  ", "487-T-1110300-111100140071"),
			wantAction: Skip,
			wantReason: ReasonNoOrdinal,
		},
		{
			name:       "no inventory number",
			values:     registrable(8.0, nil),
			wantAction: Skip,
			wantReason: ReasonNoInventory,
		},
		{
			name:       "continuation of the same ordinal",
			values:     registrable(7.0, "do 487-T-1110300-111100140070"),
			prev:       &prev,
			wantAction: Skip,
			wantReason: ReasonContinuation,
		},
		{
			name:       "marker under a new ordinal is not a continuation",
			values:     registrable(8.0, "do 487-T-1110300-111100140072"),
			prev:       &prev,
			wantAction: Accept,
		},
		{
			name:       "marker on the first row",
			values:     registrable(7.0, "do 487-T-1110300-111100140072"),
			wantAction: Accept,
		},
		{
			name:       "asset under construction",
			values:     registrable(8.0, "487-T-1110300-S/T"),
			wantAction: Skip,
			wantReason: ReasonNoSerial,
		},
		{
			name: "P financial source",
			values: map[string]any{
				types.FieldOrdinalNumber:   8.0,
				types.FieldInventoryNumber: "487-T-1110300-111100140071",
				types.FieldFinancialSource: "Pxyz",
				types.FieldUnit:            "IT",
			},
			wantAction: Skip,
			wantReason: ReasonNotRegistrable,
		},
		{
			name: "missing unit is fatal",
			values: map[string]any{
				types.FieldOrdinalNumber:   8.0,
				types.FieldInventoryNumber: "487-T-1110300-111100140071",
				types.FieldFinancialSource: "550-D111-00-1110300",
			},
			wantAction: TerminateOnFatal,
			wantReason: ReasonNoUnit,
		},
		{
			name: "missing unit on an asset under construction is fatal",
			values: map[string]any{
				types.FieldOrdinalNumber:   8.0,
				types.FieldInventoryNumber: "487-T-1110300-S/T",
				types.FieldFinancialSource: "550-D111-00-1110300",
			},
			wantAction: TerminateOnFatal,
			wantReason: ReasonNoUnit,
		},
		{
			name: "missing unit with a P source is fatal",
			values: map[string]any{
				types.FieldOrdinalNumber:   8.0,
				types.FieldInventoryNumber: "487-T-1110300-111100140071",
				types.FieldFinancialSource: "Pxyz",
			},
			wantAction: TerminateOnFatal,
			wantReason: ReasonNoUnit,
		},
		{
			name: "missing unit on a continuation line is not fatal",
			values: map[string]any{
				types.FieldOrdinalNumber:   7.0,
				types.FieldInventoryNumber: "do 487-T-1110300-111100140070",
			},
			prev:       &prev,
			wantAction: Skip,
			wantReason: ReasonContinuation,
		},
		{
			name: "missing unit without an inventory number is not fatal",
			values: map[string]any{
				types.FieldOrdinalNumber: 8.0,
			},
			wantAction: Skip,
			wantReason: ReasonNoInventory,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(row(2, tt.values), tt.prev)
			if got.Action != tt.wantAction || got.Reason != tt.wantReason {
				t.Fatalf("Classify = %v %q, want %v %q", got.Action, got.Reason, tt.wantAction, tt.wantReason)
			}
		})
	}
}

func TestClassifyAcceptedDecision(t *testing.T) {
	got := Classify(row(1, registrable(1.0, "487-T-1110300-111100140070")), nil)

	if got.Serial != "140070" || got.Unit != "IT" {
		t.Fatalf("serial/unit = %q/%q, want 140070/IT", got.Serial, got.Unit)
	}
	if got.Resolution.PSP != "0801-D111-00011-01" || got.Resolution.CostCenter != "1110300" {
		t.Fatalf("resolution = %+v", got.Resolution)
	}
}

func TestActionString(t *testing.T) {
	for action, want := range map[Action]string{Accept: "accept", Skip: "skip", TerminateOnFatal: "fatal"} {
		if got := action.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", action, got, want)
		}
	}
}
