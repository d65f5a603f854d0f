// =============================================================================
// Fixed Assets Register - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. All other commands
// are attached to it.
//
// COBRA CLI STRUCTURE:
//   rootCmd (register)          - same as 'register report'
//   ├── importCmd   (register import)
//   ├── reportCmd   (register report)
//   ├── generateCmd (register generate)
//   ├── configCmd   (register config)
//   └── versionCmd  (register version)
//
// CONFIGURATION:
//   The root command is responsible for:
//   1. Setting up global flags (--config, --verbose)
//   2. Loading the settings before any subcommand runs
//   3. Setting up logging
//
// =============================================================================

package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/fixed-assets-register/internal/config"
	"github.com/ginjaninja78/fixed-assets-register/internal/logging"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// cfgFile holds the path given with --config.
var cfgFile string

// verbose enables debug logging when set to true.
var verbose bool

// settingsPath is the settings file in use, resolved from --config,
// REGISTER_CONFIG or the default.
var settingsPath string

// settings are loaded in PersistentPreRunE and shared by every command.
var settings *config.Settings

// logOutput is the log file opened for this run, if any.
var logOutput io.Closer

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "register",
	Short: "Fixed Assets Register - validate the asset ledger and generate asset documents",
	Long: `Fixed Assets Register reads the fixed asset ledger workbook, keeps the rows
that describe registrable assets, validates them into asset records and stores
them. Each stored record can then be written out as an asset document from a
workbook template.

Key Features:
  - Financial source resolution to PSP element and cost center
  - Row-level validation with detailed error reporting
  - Duplicate serial detection before anything is stored
  - Concurrent document generation

Example Usage:
  register config --workbook ledger.xlsx --template template.xlsx
  register import                     # Validate and store the ledger
  register report --gdpr              # List stored records, person redacted
  register generate --unit "IT Dept"  # Write documents for one unit`,

	SilenceUsage: true,

	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return loadSettings()
	},

	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logOutput != nil {
			logOutput.Close()
		}
	},

	// Without a subcommand the register lists what it holds.
	RunE: func(cmd *cobra.Command, args []string) error {
		return runReport(cmd.Context(), cmd.OutOrStdout(), reportOptions{})
	},
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute runs the root command. It is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		"",
		"Path to the settings file (default is $REGISTER_CONFIG or "+config.DefaultPath+")",
	)

	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable debug logging",
	)
}

// loadSettings reads the settings file and configures logging.
func loadSettings() error {
	settingsPath = config.ResolvePath(cfgFile)

	s, err := config.Load(settingsPath)
	if err != nil {
		return err
	}
	settings = s

	level := settings.LogLevel
	if verbose {
		level = "debug"
	}

	var w io.Writer
	if settings.LogFile != "" {
		f, err := logging.OpenFile(settings.LogFile)
		if err != nil {
			return err
		}
		logOutput = f
		w = f
	}
	logging.Setup(level, settings.LogFormat, w)
	return nil
}
