// =============================================================================
// Fixed Assets Register - Report Command
// =============================================================================
//
// This file defines the 'report' command, which lists the stored asset
// records. It is also what the register does when run without a command.
//
// COMMAND USAGE:
//   register report [flags]
//
// FLAGS:
//   --gdpr    : Show "GDPR" instead of the material duty person
//   --serial  : Show only the record with this serial
//   --format  : text (default), json or yaml
//
// OUTPUT (text):
//   <ordinal>, <unit>-<serial>
//    <record fields>
//
// =============================================================================

package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ginjaninja78/fixed-assets-register/internal/storage"
	"github.com/ginjaninja78/fixed-assets-register/internal/types"
)

// gdprLabel replaces the material duty person in redacted output.
const gdprLabel = "GDPR"

type reportOptions struct {
	gdpr   bool
	serial string
	format string
}

var reportFlags reportOptions

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "List the stored asset records",
	Long: `The report command lists the asset records stored by the last successful
import, in ledger order, each under its document name.

Use --gdpr when sharing the output: the material duty person is replaced on
screen only, the stored records keep it.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		return runReport(cmd.Context(), cmd.OutOrStdout(), reportFlags)
	},
}

func init() {
	rootCmd.AddCommand(reportCmd)

	reportCmd.Flags().BoolVar(&reportFlags.gdpr, "gdpr", false, "Hide the material duty person")
	reportCmd.Flags().StringVar(&reportFlags.serial, "serial", "", "Show only the record with this serial")
	reportCmd.Flags().StringVar(&reportFlags.format, "format", "text", "Output format: text, json or yaml")
}

func runReport(ctx context.Context, w io.Writer, opts reportOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}

	db, err := storage.Open(settings.Database)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	docs, err := db.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load documents: %w", err)
	}

	docs = filterDocuments(docs, opts.serial, "")
	if opts.gdpr {
		for i := range docs {
			docs[i].Record = docs[i].Record.Redacted(gdprLabel)
		}
	}

	switch opts.format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(docs)
	case "yaml":
		enc := yaml.NewEncoder(w)
		defer enc.Close()
		return enc.Encode(docs)
	case "", "text":
	default:
		return fmt.Errorf("unknown format %q (expected text, json or yaml)", opts.format)
	}

	if len(docs) == 0 {
		if opts.serial != "" {
			fmt.Fprintf(w, "No stored record has serial %s.\n", opts.serial)
		} else {
			fmt.Fprintln(w, "No records stored. Run 'register import' first.")
		}
		return nil
	}

	for _, doc := range docs {
		fmt.Fprintf(w, "%s, %s\n %s\n", doc.Ordinal, doc.Identity.Name(), doc.Record)
	}

	last, err := db.LastRun(ctx)
	if err != nil {
		return fmt.Errorf("failed to read last import: %w", err)
	}
	if last != nil {
		fmt.Fprintf(w, "\n%d record(s) from %s, imported %s\n",
			len(docs), last.Source, last.StartedAt.Local().Format("2006-01-02 15:04"))
	}
	return nil
}

// filterDocuments keeps the documents matching serial and unit. Empty
// filters match everything.
func filterDocuments(docs []types.AssetDocument, serial, unit string) []types.AssetDocument {
	if serial == "" && unit == "" {
		return docs
	}
	out := make([]types.AssetDocument, 0, len(docs))
	for _, doc := range docs {
		if serial != "" && doc.Identity.Serial != serial {
			continue
		}
		if unit != "" && doc.Identity.Unit != unit {
			continue
		}
		out = append(out, doc)
	}
	return out
}
