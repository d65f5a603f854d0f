// =============================================================================
// Fixed Assets Register - File Manager Utility
// =============================================================================
//
// This module provides file management utilities for the register:
//   - Directory management
//   - Workbook discovery (for choosing the ledger and the template)
//   - Archival of imported ledgers
//   - Error log and import summary generation
//
// ARCHIVAL STRATEGY:
//   - A ledger is copied to the archive directory after a successful import
//   - The copy is prefixed with the import timestamp, the original stays put
//   - Error logs and summaries are written to the documents directory
//
// =============================================================================

package utils

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// =============================================================================
// DIRECTORY MANAGEMENT
// =============================================================================

// EnsureDirectories creates all given directories if they don't exist.
// Empty entries are ignored.
func EnsureDirectories(dirs ...string) error {
	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// =============================================================================
// FILE DISCOVERY
// =============================================================================

// DiscoverWorkbooks lists the .xlsx files under root, recursively, sorted.
// Lock files left by spreadsheet programs ("~$name.xlsx") are skipped, as
// are directories that cannot be read.
func DiscoverWorkbooks(root string) ([]string, error) {
	var files []string

	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			if path != root && os.IsPermission(err) {
				return filepath.SkipDir
			}
			return err
		}

		if info.IsDir() {
			return nil
		}

		name := info.Name()
		if strings.HasPrefix(name, "~$") {
			return nil
		}
		if strings.EqualFold(filepath.Ext(name), ".xlsx") {
			files = append(files, path)
		}

		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", root, err)
	}

	sort.Strings(files)
	return files, nil
}

// =============================================================================
// FILE ARCHIVAL
// =============================================================================

// ArchiveCopy copies filePath into archiveDir as "<timestamp>_<name>".
//
// RETURNS:
//   - The path to the archived copy.
//   - An error if archival fails.
func ArchiveCopy(filePath, archiveDir string, now time.Time) (string, error) {
	if err := os.MkdirAll(archiveDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create archive directory: %w", err)
	}

	archivePath := filepath.Join(archiveDir, now.Format("20060102_150405")+"_"+filepath.Base(filePath))
	if err := copyFile(filePath, archivePath); err != nil {
		return "", fmt.Errorf("failed to copy file to archive: %w", err)
	}

	return archivePath, nil
}

// =============================================================================
// ERROR LOG GENERATION
// =============================================================================

// ErrorLogEntry represents a single rejected ledger row.
type ErrorLogEntry struct {
	RowNumber    int
	Ordinal      string
	ErrorType    string
	ErrorMessage string
	FieldName    string
	FieldValue   string
	RowContents  string
}

// WriteErrorLog writes error entries to a log file in outputDir.
//
// RETURNS:
//   - The path to the error log file, "" when there is nothing to write.
//   - An error if writing fails.
func WriteErrorLog(entries []ErrorLogEntry, source, outputDir string, now time.Time) (string, error) {
	if len(entries) == 0 {
		return "", nil
	}

	logPath := filepath.Join(outputDir, fmt.Sprintf("error_log_%s.txt", now.Format("20060102_150405")))

	file, err := os.Create(logPath)
	if err != nil {
		return "", fmt.Errorf("failed to create error log: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)

	fmt.Fprintf(writer, "Fixed Assets Register - Error Log\n"+
		"Ledger: %s\n"+
		"Generated: %s\n"+
		"Total Errors: %d\n"+
		"================================================================================\n\n",
		source,
		now.Format("2006-01-02 15:04:05"),
		len(entries))

	for i, entry := range entries {
		fmt.Fprintf(writer, "Error #%d\n", i+1)
		if entry.RowNumber > 0 {
			fmt.Fprintf(writer, "  Row Number:     %d\n", entry.RowNumber)
		}
		if entry.Ordinal != "" {
			fmt.Fprintf(writer, "  Ordinal:        %s\n", entry.Ordinal)
		}
		fmt.Fprintf(writer, "  Error Type:     %s\n", entry.ErrorType)
		fmt.Fprintf(writer, "  Message:        %s\n", entry.ErrorMessage)
		if entry.FieldName != "" {
			fmt.Fprintf(writer, "  Field:          %s\n", entry.FieldName)
		}
		if entry.FieldValue != "" {
			fmt.Fprintf(writer, "  Value:          %s\n", entry.FieldValue)
		}
		if entry.RowContents != "" {
			fmt.Fprintf(writer, "  Row:            %s\n", entry.RowContents)
		}
		writer.WriteString("\n")
	}

	writer.WriteString("================================================================================\n" +
		"End of Error Log\n")

	if err := writer.Flush(); err != nil {
		return "", fmt.Errorf("failed to flush error log: %w", err)
	}

	return logPath, nil
}

// =============================================================================
// IMPORT SUMMARY
// =============================================================================

// ImportSummary contains summary information about an import run.
type ImportSummary struct {
	RunID      string
	Source     string
	StartTime  time.Time
	EndTime    time.Time
	Rows       int
	Accepted   int
	Skipped    map[string]int
	Failed     int
	Duplicates map[string]int
	Saved      bool
}

// WriteSummaryLog writes an import summary to a file in outputDir.
//
// RETURNS:
//   - The path to the summary file.
//   - An error if writing fails.
func WriteSummaryLog(summary ImportSummary, outputDir string) (string, error) {
	summaryPath := filepath.Join(outputDir,
		fmt.Sprintf("import_summary_%s.txt", summary.StartTime.Format("20060102_150405")))

	file, err := os.Create(summaryPath)
	if err != nil {
		return "", fmt.Errorf("failed to create summary file: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	writeSummary(writer, summary)

	if err := writer.Flush(); err != nil {
		return "", fmt.Errorf("failed to flush summary file: %w", err)
	}

	return summaryPath, nil
}

func writeSummary(w io.Writer, summary ImportSummary) {
	status := "not saved"
	if summary.Saved {
		status = "saved as run " + summary.RunID
	}

	fmt.Fprintf(w, "Fixed Assets Register - Import Summary\n"+
		"================================================================================\n\n"+
		"Run Information:\n"+
		"  Ledger:         %s\n"+
		"  Start Time:     %s\n"+
		"  End Time:       %s\n"+
		"  Duration:       %s\n"+
		"  Status:         %s\n\n"+
		"Statistics:\n"+
		"  Rows:           %d\n"+
		"  Accepted:       %d\n"+
		"  Failed:         %d\n",
		summary.Source,
		summary.StartTime.Format("2006-01-02 15:04:05"),
		summary.EndTime.Format("2006-01-02 15:04:05"),
		summary.EndTime.Sub(summary.StartTime).String(),
		status,
		summary.Rows,
		summary.Accepted,
		summary.Failed)

	if len(summary.Skipped) > 0 {
		fmt.Fprintln(w, "\nSkipped Rows:")
		for _, reason := range sortedKeys(summary.Skipped) {
			fmt.Fprintf(w, "  %-40s %d\n", reason+":", summary.Skipped[reason])
		}
	}

	if len(summary.Duplicates) > 0 {
		fmt.Fprintln(w, "\nRepeated Serial Numbers:")
		for _, serial := range sortedKeys(summary.Duplicates) {
			fmt.Fprintf(w, "  %s: %d\n", serial, summary.Duplicates[serial])
		}
	}

	fmt.Fprint(w, "\n================================================================================\n"+
		"End of Summary\n")
}

// =============================================================================
// UTILITY FUNCTIONS
// =============================================================================

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// copyFile copies a file from src to dst.
func copyFile(src, dst string) error {
	sourceFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer sourceFile.Close()

	destFile, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer destFile.Close()

	_, err = io.Copy(destFile, sourceFile)
	if err != nil {
		return err
	}

	return destFile.Sync()
}

// FileExists checks if a file exists.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}
