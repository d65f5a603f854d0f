// =============================================================================
// Fixed Assets Register - Import Command
// =============================================================================
//
// This file defines the 'import' command, which reads the ledger, runs it
// through the register pipeline and stores the accepted records.
//
// COMMAND USAGE:
//   register import [flags]
//
// FLAGS:
//   --source   : Ledger to read instead of the configured workbook (.xlsx or .csv)
//   --dry-run  : Run every check but store nothing
//
// IMPORT PIPELINE:
//   1. Read the ledger rows (workbook or CSV export)
//   2. Select, validate and identify rows
//   3. Stop on a fatal row or on repeated serial numbers
//   4. Store the accepted records, replacing the previous set
//   5. Write the error log and the import summary
//   6. Archive a copy of the ledger
//
// =============================================================================

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/fixed-assets-register/internal/csvparser"
	"github.com/ginjaninja78/fixed-assets-register/internal/duplicates"
	"github.com/ginjaninja78/fixed-assets-register/internal/logging"
	"github.com/ginjaninja78/fixed-assets-register/internal/normalize"
	"github.com/ginjaninja78/fixed-assets-register/internal/pipeline"
	"github.com/ginjaninja78/fixed-assets-register/internal/storage"
	"github.com/ginjaninja78/fixed-assets-register/internal/types"
	"github.com/ginjaninja78/fixed-assets-register/internal/validation"
	"github.com/ginjaninja78/fixed-assets-register/internal/xlsxparser"
	"github.com/ginjaninja78/fixed-assets-register/pkg/utils"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

type importOptions struct {
	source string
	dryRun bool
}

var importFlags importOptions

// =============================================================================
// IMPORT COMMAND DEFINITION
// =============================================================================

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Validate the ledger and store the accepted asset records",
	Long: `The import command reads the ledger workbook, keeps the rows that describe
registrable assets and validates them into asset records.

Rows without an ordinal or inventory number, continuation rows, assets under
construction and non-registrable financial sources are skipped. Rows that
fail validation are reported and left out.

Nothing is stored when:
  - a row that should be registered has no unit (the import stops there)
  - two or more records share a serial number (the repeats are listed)

Otherwise the accepted records replace the stored ones.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		return runImport(cmd.Context(), cmd.OutOrStdout(), importFlags)
	},
}

func init() {
	rootCmd.AddCommand(importCmd)

	importCmd.Flags().StringVar(
		&importFlags.source,
		"source",
		"",
		"Ledger to read instead of the configured workbook (.xlsx or .csv)",
	)

	importCmd.Flags().BoolVar(
		&importFlags.dryRun,
		"dry-run",
		false,
		"Run every check but store nothing",
	)
}

// =============================================================================
// MAIN IMPORT FUNCTION
// =============================================================================

func runImport(ctx context.Context, w io.Writer, opts importOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	startTime := time.Now()

	source := opts.source
	if source == "" {
		source = settings.Workbook
	}
	if source == "" {
		return fmt.Errorf("no ledger configured: run 'register config --workbook <file>' or pass --source")
	}

	// =========================================================================
	// STEP 1: READ THE LEDGER
	// =========================================================================

	fmt.Fprintln(w, "=== Fixed Assets Register ===")
	fmt.Fprintf(w, "Reading %s...\n", source)

	rows, err := readLedger(source)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "Read %d row(s)\n", len(rows))

	if err := utils.EnsureDirectories(settings.DocumentsDir); err != nil {
		return err
	}

	// =========================================================================
	// STEP 2: RUN THE PIPELINE
	// =========================================================================

	p := pipeline.New(logging.WithFields(ctx, "ledger", filepath.Base(source)))

	var (
		outcome pipeline.Outcome
		run     types.ImportRun
	)
	if opts.dryRun {
		fmt.Fprintln(w, "Dry run: nothing will be stored")
		outcome, err = p.Run(rows)
		if err == nil && !outcome.Clean() {
			err = pipeline.ErrDuplicateSerials
		}
	} else {
		db, openErr := storage.Open(settings.Database)
		if openErr != nil {
			return fmt.Errorf("failed to open database: %w", openErr)
		}
		defer db.Close()

		outcome, run, err = p.Import(ctx, source, rows, db)
	}

	// =========================================================================
	// STEP 3: REPORT
	// =========================================================================

	var fatal *pipeline.FatalRowError
	switch {
	case errors.As(err, &fatal):
		fmt.Fprintf(w, "\n%s\n", fatal.Error())
	case errors.Is(err, pipeline.ErrDuplicateSerials):
		fmt.Fprintln(w)
		if werr := duplicates.WriteReport(w, outcome.Duplicates, outcome.Documents); werr != nil {
			return fmt.Errorf("failed to print duplicate report: %w", werr)
		}
	}

	if len(outcome.RowErrors) > 0 {
		fmt.Fprintln(w)
		fmt.Fprint(w, validation.FormatErrors(outcome.RowErrors))

		logPath, logErr := utils.WriteErrorLog(errorLogEntries(outcome.RowErrors), source, settings.DocumentsDir, startTime)
		if logErr != nil {
			return logErr
		}
		fmt.Fprintf(w, "Errors have been logged to %s\n", logPath)
	}

	saved := err == nil && !opts.dryRun
	printImportSummary(w, outcome, saved, run.ID)

	summary := utils.ImportSummary{
		RunID:      run.ID,
		Source:     source,
		StartTime:  startTime,
		EndTime:    time.Now(),
		Rows:       outcome.Stats.Rows,
		Accepted:   outcome.Stats.Accepted,
		Skipped:    outcome.Skipped,
		Failed:     outcome.Stats.Failed,
		Duplicates: outcome.Duplicates,
		Saved:      saved,
	}
	if _, serr := utils.WriteSummaryLog(summary, settings.DocumentsDir); serr != nil {
		logging.FromContext(ctx).Warn("import summary not written", "error", serr)
	}

	if err != nil {
		return err
	}

	// =========================================================================
	// STEP 4: ARCHIVE
	// =========================================================================

	if saved && settings.ArchiveDir != "" {
		archived, aerr := utils.ArchiveCopy(source, settings.ArchiveDir, startTime)
		if aerr != nil {
			return aerr
		}
		fmt.Fprintf(w, "Ledger archived to %s\n", archived)
	}

	return nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// readLedger reads a workbook, or a CSV export when the file ends in .csv.
func readLedger(source string) ([]types.RawRow, error) {
	if !utils.FileExists(source) {
		return nil, fmt.Errorf("ledger not found: %s", source)
	}

	layout, err := settings.ColumnLayout()
	if err != nil {
		return nil, err
	}

	if strings.EqualFold(filepath.Ext(source), ".csv") {
		rows, err := csvparser.Read(source, csvparser.Options{
			Delimiter: settings.CSVDelimiter,
			Layout:    layout,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to read ledger: %w", err)
		}
		return rows, nil
	}

	ledger, err := xlsxparser.Read(source, xlsxparser.Options{
		Sheet:      settings.Sheet,
		LastColumn: settings.LastColumn,
		Layout:     layout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read ledger: %w", err)
	}
	return ledger.Rows, nil
}

// errorLogEntries turns row failures into error log entries. Row numbers
// are sheet rows, the header being row 1.
func errorLogEntries(errs []error) []utils.ErrorLogEntry {
	entries := make([]utils.ErrorLogEntry, 0, len(errs))
	for _, err := range errs {
		entry := utils.ErrorLogEntry{ErrorType: "row", ErrorMessage: err.Error()}

		var rowErr *validation.RowError
		if errors.As(err, &rowErr) {
			entry.RowNumber = rowErr.Row.Line + 1
			entry.Ordinal = rowErr.Ordinal
			entry.RowContents = rowErr.Row.String()
			entry.ErrorMessage = rowErr.Err.Error()
		}

		var fieldErr *validation.FieldError
		if errors.As(err, &fieldErr) {
			entry.ErrorType = "field"
			entry.FieldName = fieldErr.Field
			entry.FieldValue = fieldErr.Value
			entry.ErrorMessage = fieldErr.Message
		}

		var dateErr *normalize.BadDateFormatError
		if errors.As(err, &dateErr) {
			entry.ErrorType = "date format"
		}

		entries = append(entries, entry)
	}
	return entries
}

func printImportSummary(w io.Writer, outcome pipeline.Outcome, saved bool, runID string) {
	fmt.Fprintln(w, "\n=== Import Complete ===")
	fmt.Fprintf(w, "Rows:            %d\n", outcome.Stats.Rows)
	fmt.Fprintf(w, "Accepted:        %d\n", outcome.Stats.Accepted)
	fmt.Fprintf(w, "Skipped:         %d\n", outcome.Stats.Skipped)
	fmt.Fprintf(w, "Errors:          %d\n", outcome.Stats.Failed)
	fmt.Fprintf(w, "Time elapsed:    %s\n", outcome.Stats.Duration)
	if saved {
		fmt.Fprintf(w, "Stored as run:   %s\n", runID)
	} else {
		fmt.Fprintln(w, "Nothing was stored.")
	}
}
