package normalize

import (
	"errors"
	"testing"
	"time"
)

func TestStringify(t *testing.T) {
	tests := []struct {
		name   string
		value  any
		want   string
		wantOK bool
	}{
		{"nil", nil, "", false},
		{"blank string", "   ", "", false},
		{"trimmed string", "  Dell Latitude ", "Dell Latitude", true},
		{"float with fraction", 1537.99, "1537.99", true},
		{"whole float", 1110300.0, "1110300", true},
		{"int", 42, "42", true},
		{"int64", int64(7), "7", true},
		{"time", time.Date(2023, 12, 19, 0, 0, 0, 0, time.UTC), "19-12-2023", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Stringify(tt.value)
			if got != tt.want || ok != tt.wantOK {
				t.Fatalf("Stringify(%#v) = %q, %v; want %q, %v", tt.value, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestNormalizeDate(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  string
	}{
		{"absent", nil, ""},
		{"empty string", "", ""},
		{"time value", time.Date(2023, 12, 19, 10, 30, 0, 0, time.UTC), "19-12-2023"},
		{"canonical", "19-12-2023", "19-12-2023"},
		{"dots", "19.12.2023", "19-12-2023"},
		{"slashes", "19/12/2023", "19-12-2023"},
		{"dual date with comma", "19/12/2023, 21-12-2023", "19-12-2023"},
		{"dual date with parenthesis", "30.06.2023 (13.07.2023)", "30-06-2023"},
		{"surrounding spaces", "  01.02.2024 ", "01-02-2024"},
		{"month out of range passes", "31-13-2023", "31-13-2023"},
		{"month first is kept as written", "07.31.2023", "07-31-2023"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeDate(tt.value)
			if err != nil {
				t.Fatalf("NormalizeDate(%#v) error: %v", tt.value, err)
			}
			if got != tt.want {
				t.Fatalf("NormalizeDate(%#v) = %q, want %q", tt.value, got, tt.want)
			}

			again, err := NormalizeDate(got)
			if err != nil || again != got {
				t.Fatalf("NormalizeDate(%q) = %q, %v; want it unchanged", got, again, err)
			}
		})
	}
}

func TestNormalizeDateRejects(t *testing.T) {
	for _, value := range []any{"2023-12-19", "19 grudnia 2023", "19-12-23", "yesterday", "1-2-2023"} {
		_, err := NormalizeDate(value)
		var bad *BadDateFormatError
		if !errors.As(err, &bad) {
			t.Fatalf("NormalizeDate(%q) error = %v, want *BadDateFormatError", value, err)
		}
		if bad.Value != value {
			t.Fatalf("BadDateFormatError.Value = %q, want %q", bad.Value, value)
		}
	}
}

func TestIsCanonicalDate(t *testing.T) {
	tests := map[string]bool{
		"19-12-2023":  true,
		"31-13-2023":  true,
		"19.12.2023":  false,
		"19-12-2023 ": false,
		"":            false,
	}
	for in, want := range tests {
		if got := IsCanonicalDate(in); got != want {
			t.Errorf("IsCanonicalDate(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestDeriveSerial(t *testing.T) {
	tests := []struct {
		in     string
		want   string
		wantOK bool
	}{
		{"487-T-1110300-111100140070", "140070", true},
		{"000123", "000123", true},
		{"  ST-000456 ", "000456", true},
		{"12345", "", false},
		{"", "", false},
		{"487-T-1110300-S/T", "", false},
		{"487-T-11103-1234x6", "", false},
	}

	for _, tt := range tests {
		got, ok := DeriveSerial(tt.in)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("DeriveSerial(%q) = %q, %v; want %q, %v", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}
