package csvparser

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ginjaninja78/fixed-assets-register/internal/types"
	"github.com/ginjaninja78/fixed-assets-register/internal/xlsxparser"
)

const header = "Lp.;ID VIM;Nr inw.;Źródło;Faktura;Data faktury;Nazwa;Ilość;Wartość;Cena;Wystawca;Data;Jednostka;Osoba;Przeznaczenie;Nr seryjny\n"

func TestParse(t *testing.T) {
	input := "\ufeff" + header +
		"1;;487-T-1110300-111100140070;550-D111-00-1110300;F/1;;Dell;1;1537.99;;STATIM;19.12.2023;IT;J. Nowak;;\n" +
		";;;;;;;;;;;;;;;\n" +
		"2;;487-T-1;500;F/2\n"

	rows, err := Parse(strings.NewReader(input), Options{Delimiter: "semicolon"})
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 {
		t.Fatalf("parsed %d rows, want 3", len(rows))
	}

	first := rows[0]
	if first.Line != 1 {
		t.Fatalf("line = %d", first.Line)
	}
	want := map[string]string{
		types.FieldOrdinalNumber:   "1",
		types.FieldInventoryNumber: "487-T-1110300-111100140070",
		types.FieldValue:           "1537.99",
		types.FieldDate:            "19.12.2023",
		types.FieldUnit:            "IT",
	}
	for field, v := range want {
		if got := first.Get(field); got != v {
			t.Errorf("%s = %#v, want %q", field, got, v)
		}
	}
	if first.Get(types.FieldIDVim) != nil {
		t.Errorf("empty cell should be absent")
	}

	if len(rows[1].Values) != 0 {
		t.Errorf("blank row values = %v", rows[1].Values)
	}
	if rows[2].Get(types.FieldInvoice) != "F/2" || rows[2].Get(types.FieldUnit) != nil {
		t.Errorf("short row = %v", rows[2].Values)
	}
}

func TestParseStopsAtFirstEmptyHeader(t *testing.T) {
	input := "Lp.,ID VIM,Nr inw.,,Faktura\n1,,487-T-1,550-D111-00-1110300,F/1\n"

	rows, err := Parse(strings.NewReader(input), Options{})
	if err != nil {
		t.Fatal(err)
	}
	if rows[0].Get(types.FieldFinancialSource) != nil || rows[0].Get(types.FieldInvoice) != nil {
		t.Fatalf("fields past the header were read: %v", rows[0].Values)
	}
	if rows[0].Get(types.FieldInventoryNumber) != "487-T-1" {
		t.Fatalf("values = %v", rows[0].Values)
	}
}

func TestReadWithLayout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.csv")
	content := "a\tb\tc\n7\tX\t487-T-000001\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	layout, err := xlsxparser.LayoutWithOverrides(map[string]string{types.FieldUnit: "B"})
	if err != nil {
		t.Fatal(err)
	}
	rows, err := Read(path, Options{Delimiter: "tab", Layout: layout})
	if err != nil {
		t.Fatal(err)
	}
	if rows[0].Get(types.FieldUnit) != "X" {
		t.Fatalf("unit = %#v", rows[0].Get(types.FieldUnit))
	}
}

func TestParseEmpty(t *testing.T) {
	if _, err := Parse(strings.NewReader(""), Options{}); err == nil {
		t.Fatal("expected an error for an empty file")
	}
}
