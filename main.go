// =============================================================================
// Fixed Assets Register - Main Entry Point
// =============================================================================
//
// USAGE:
//   register                - List the stored asset records
//   register import         - Validate the ledger and store the accepted records
//   register generate       - Write asset documents from the template
//   register config         - Point the register at its workbook and template
//   register version        - Display the application version
//
// ARCHITECTURE:
//   - cmd/           : CLI command definitions (Cobra)
//   - internal/      : Register rules, readers, storage and document output
//   - pkg/           : Shared file utilities
//
// =============================================================================

package main

import (
	"github.com/ginjaninja78/fixed-assets-register/cmd"
)

func main() {
	cmd.Execute()
}
