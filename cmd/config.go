// =============================================================================
// Fixed Assets Register - Config Command
// =============================================================================
//
// This file defines the 'config' command, which points the register at its
// ledger workbook, document template and documents directory, and saves
// the settings file.
//
// COMMAND USAGE:
//   register config [flags]
//
// FLAGS:
//   --workbook       : Ledger workbook; its sheet and last column are detected
//   --sheet          : Ledger sheet (default: the active sheet)
//   --template       : Document template workbook
//   --documents-dir  : Where documents are written
//   --list           : List the workbooks found under the data directory
//
// Without flags the current settings are printed.
//
// =============================================================================

package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ginjaninja78/fixed-assets-register/internal/config"
	"github.com/ginjaninja78/fixed-assets-register/internal/xlsxparser"
	"github.com/ginjaninja78/fixed-assets-register/pkg/utils"
)

type configOptions struct {
	workbook     string
	sheet        string
	template     string
	documentsDir string
	list         bool
}

var configFlags configOptions

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Set the ledger workbook, template and documents directory",
	Long: `The config command stores where the register finds its ledger and template.

When a workbook is given, its sheets are listed and the ledger sheet (the
active one unless --sheet is given) is inspected for its last data column.
The settings file is written once any setting has been given.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		return runConfig(cmd.OutOrStdout(), configFlags)
	},
}

func init() {
	rootCmd.AddCommand(configCmd)

	configCmd.Flags().StringVar(&configFlags.workbook, "workbook", "", "Ledger workbook (.xlsx)")
	configCmd.Flags().StringVar(&configFlags.sheet, "sheet", "", "Ledger sheet (default: the active sheet)")
	configCmd.Flags().StringVar(&configFlags.template, "template", "", "Document template workbook (.xlsx)")
	configCmd.Flags().StringVar(&configFlags.documentsDir, "documents-dir", "", "Directory for generated documents")
	configCmd.Flags().BoolVar(&configFlags.list, "list", false, "List workbooks under the data directory")
}

func runConfig(w io.Writer, opts configOptions) error {
	if opts.list {
		return listWorkbooks(w, settings.DataDir)
	}

	changed := false

	if opts.workbook != "" || opts.sheet != "" {
		workbook := opts.workbook
		if workbook == "" {
			workbook = settings.Workbook
		}
		if err := configureLedger(w, settings, workbook, opts.sheet); err != nil {
			return err
		}
		changed = true
	}

	if opts.template != "" {
		if !utils.FileExists(opts.template) {
			return fmt.Errorf("template not found: %s", opts.template)
		}
		settings.Template = opts.template
		changed = true
	}

	if opts.documentsDir != "" {
		if err := utils.EnsureDirectories(opts.documentsDir); err != nil {
			return err
		}
		settings.DocumentsDir = opts.documentsDir
		changed = true
	}

	if !changed {
		fmt.Fprintf(w, "# %s\n", settingsPath)
		enc := yaml.NewEncoder(w)
		defer enc.Close()
		return enc.Encode(settings)
	}

	settings.Configured = true
	if _, err := settings.Save(settingsPath); err != nil {
		return err
	}
	fmt.Fprintf(w, "Settings saved to %s\n", settingsPath)
	return nil
}

// configureLedger inspects the workbook and records its sheet and last
// data column.
func configureLedger(w io.Writer, s *config.Settings, workbook, sheet string) error {
	if workbook == "" {
		return fmt.Errorf("no workbook given: pass --workbook")
	}

	layout, err := xlsxparser.Inspect(workbook, sheet)
	if err != nil {
		return fmt.Errorf("failed to inspect %s: %w", workbook, err)
	}
	if layout.LastColumn == 0 {
		return fmt.Errorf("sheet %q of %s has no header row", layout.ActiveSheet, workbook)
	}

	fmt.Fprintf(w, "Sheets:      %s\n", strings.Join(layout.Sheets, ", "))
	fmt.Fprintf(w, "Ledger:      %s\n", layout.ActiveSheet)
	fmt.Fprintf(w, "Last column: %d\n", layout.LastColumn)

	s.Workbook = workbook
	s.Sheet = layout.ActiveSheet
	s.LastColumn = layout.LastColumn
	return nil
}

func listWorkbooks(w io.Writer, root string) error {
	if !utils.FileExists(root) {
		fmt.Fprintf(w, "Data directory %s does not exist.\n", root)
		return nil
	}

	files, err := utils.DiscoverWorkbooks(root)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		fmt.Fprintf(w, "No workbooks found under %s.\n", root)
		return nil
	}
	for i, f := range files {
		fmt.Fprintf(w, "%3d. %s\n", i+1, f)
	}
	return nil
}
