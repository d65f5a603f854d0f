package utils

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestDiscoverWorkbooks(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "b.xlsx"))
	touch(t, filepath.Join(root, "nested", "a.XLSX"))
	touch(t, filepath.Join(root, "~$b.xlsx"))
	touch(t, filepath.Join(root, "notes.csv"))

	files, err := DiscoverWorkbooks(root)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{filepath.Join(root, "b.xlsx"), filepath.Join(root, "nested", "a.XLSX")}
	if strings.Join(files, "|") != strings.Join(want, "|") {
		t.Fatalf("files = %v, want %v", files, want)
	}

	if _, err := DiscoverWorkbooks(filepath.Join(root, "missing")); err == nil {
		t.Fatal("expected an error for a missing root")
	}
}

func TestEnsureDirectoriesAndFileExists(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "a", "b")

	if err := EnsureDirectories("", dir); err != nil {
		t.Fatal(err)
	}
	if !FileExists(dir) || FileExists(filepath.Join(root, "c")) {
		t.Fatal("FileExists disagrees with EnsureDirectories")
	}
}

func TestArchiveCopy(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(root, "ledger.xlsx")
	touch(t, src)

	now := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	path, err := ArchiveCopy(src, filepath.Join(root, "archive"), now)
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(path) != "20240102_030405_ledger.xlsx" {
		t.Fatalf("archive name = %s", filepath.Base(path))
	}
	if !FileExists(src) || !FileExists(path) {
		t.Fatal("archive should copy, not move")
	}
}

func TestWriteErrorLog(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	path, err := WriteErrorLog(nil, "ledger.xlsx", dir, now)
	if err != nil || path != "" {
		t.Fatalf("empty log = %q, %v", path, err)
	}

	entries := []ErrorLogEntry{{
		RowNumber:    3,
		Ordinal:      "2",
		ErrorType:    "date format",
		ErrorMessage: "cannot be read as a date",
		FieldName:    "date",
		FieldValue:   "19 grudnia",
	}}
	path, err = WriteErrorLog(entries, "ledger.xlsx", dir, now)
	if err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	out := string(data)
	for _, want := range []string{"Total Errors: 1", "Row Number:     3", "Ordinal:        2", "Value:          19 grudnia"} {
		if !strings.Contains(out, want) {
			t.Fatalf("error log missing %q:\n%s", want, out)
		}
	}
}

func TestWriteSummaryLog(t *testing.T) {
	start := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	summary := ImportSummary{
		Source:     "ledger.xlsx",
		StartTime:  start,
		EndTime:    start.Add(2 * time.Second),
		Rows:       5,
		Accepted:   2,
		Skipped:    map[string]int{"asset under construction": 3},
		Duplicates: map[string]int{"140070": 2},
	}

	path, err := WriteSummaryLog(summary, t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(path) != "import_summary_20240102_030405.txt" {
		t.Fatalf("summary name = %s", filepath.Base(path))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	out := string(data)
	for _, want := range []string{"Status:         not saved", "Accepted:       2", "asset under construction:", "140070: 2", "Duration:       2s"} {
		if !strings.Contains(out, want) {
			t.Fatalf("summary missing %q:\n%s", want, out)
		}
	}
}
