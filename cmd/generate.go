// =============================================================================
// Fixed Assets Register - Generate Command
// =============================================================================
//
// This file defines the 'generate' command, which writes one asset document
// per stored record from the template workbook.
//
// COMMAND USAGE:
//   register generate [flags]
//
// FLAGS:
//   --serial  : Generate only the document with this serial
//   --unit    : Generate only the documents of this unit
//
// Documents are written concurrently, at most max_concurrency at a time,
// to <documents_dir>/<unit>-<serial>.xlsx. A failed document does not stop
// the others.
//
// =============================================================================

package cmd

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/fixed-assets-register/internal/document"
	"github.com/ginjaninja78/fixed-assets-register/internal/logging"
	"github.com/ginjaninja78/fixed-assets-register/internal/storage"
	"github.com/ginjaninja78/fixed-assets-register/pkg/utils"
)

type generateOptions struct {
	serial string
	unit   string
}

var generateFlags generateOptions

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Write asset documents for the stored records",
	Long: `The generate command fills the document template with each stored asset
record and saves it as <unit>-<serial>.xlsx in the documents directory.

Run 'register import' first; only stored records are generated.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		return runGenerate(cmd.Context(), cmd.OutOrStdout(), generateFlags)
	},
}

func init() {
	rootCmd.AddCommand(generateCmd)

	generateCmd.Flags().StringVar(&generateFlags.serial, "serial", "", "Generate only the document with this serial")
	generateCmd.Flags().StringVar(&generateFlags.unit, "unit", "", "Generate only the documents of this unit")
}

func runGenerate(ctx context.Context, w io.Writer, opts generateOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	startTime := time.Now()

	if settings.Template == "" {
		return fmt.Errorf("no template configured: run 'register config --template <file>'")
	}
	if !utils.FileExists(settings.Template) {
		return fmt.Errorf("template not found: %s", settings.Template)
	}

	cells, err := settings.TemplateCells()
	if err != nil {
		return err
	}

	// =========================================================================
	// STEP 1: LOAD THE STORED RECORDS
	// =========================================================================

	db, err := storage.Open(settings.Database)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	docs, err := db.Load(ctx)
	db.Close()
	if err != nil {
		return fmt.Errorf("failed to load documents: %w", err)
	}

	docs = filterDocuments(docs, opts.serial, opts.unit)
	if len(docs) == 0 {
		fmt.Fprintln(w, "No stored records match.")
		return nil
	}

	// =========================================================================
	// STEP 2: GENERATE CONCURRENTLY
	// =========================================================================

	fmt.Fprintln(w, "=== Fixed Assets Register ===")
	fmt.Fprintf(w, "Generating %d document(s)...\n", len(docs))

	gen := document.New(settings.Template, settings.DocumentsDir, cells)
	results := gen.GenerateAll(ctx, docs, settings.MaxConcurrency)

	logger := logging.WithFields(ctx, "template", filepath.Base(settings.Template))

	var successCount, errorCount int
	for _, result := range results {
		name := result.Document.Identity.Name()
		if result.Err != nil {
			errorCount++
			fmt.Fprintf(w, "  ✗ %s: %v\n", name, result.Err)
			logger.Error("document not generated", "document", name, "error", result.Err)
			continue
		}
		successCount++
		fmt.Fprintf(w, "  ✓ %s -> %s\n", name, result.Path)
	}

	// =========================================================================
	// STEP 3: PRINT SUMMARY
	// =========================================================================

	fmt.Fprintln(w, "\n=== Generation Complete ===")
	fmt.Fprintf(w, "Total documents: %d\n", len(results))
	fmt.Fprintf(w, "Successful:      %d\n", successCount)
	fmt.Fprintf(w, "Errors:          %d\n", errorCount)
	fmt.Fprintf(w, "Time elapsed:    %s\n", time.Since(startTime))

	if errorCount > 0 {
		return fmt.Errorf("%d of %d document(s) failed", errorCount, len(results))
	}
	return nil
}
