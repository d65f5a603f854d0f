// =============================================================================
// Fixed Assets Register - Pipeline Driver
// =============================================================================
//
// This module runs the ledger rows through the register's rules and hands
// the result to persistence.
//
// PIPELINE:
//   1. Classify each row (accept / skip / fatal) against the previous row
//   2. Validate accepted rows into AssetRecords
//   3. Pair each record with its DocumentIdentity
//   4. Count serials across the accepted set
//   5. Persist the accepted set, only if no serial repeats
//
// FAILURES:
//   - Row-level (bad date, field violation): logged, row excluded, run goes on
//   - Missing unit: *FatalRowError, the run stops, nothing is persisted
//   - Repeated serials: ErrDuplicateSerials, nothing is persisted
//
// The pass is sequential; the only state shared between rows is the
// read-only reference to the previous row.
//
// =============================================================================

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/ginjaninja78/fixed-assets-register/internal/duplicates"
	"github.com/ginjaninja78/fixed-assets-register/internal/logging"
	"github.com/ginjaninja78/fixed-assets-register/internal/selector"
	"github.com/ginjaninja78/fixed-assets-register/internal/types"
	"github.com/ginjaninja78/fixed-assets-register/internal/validation"
)

// =============================================================================
// ERRORS
// =============================================================================

// ErrDuplicateSerials is returned by Import when the accepted set contains
// repeated serials. The outcome carries the report.
var ErrDuplicateSerials = errors.New("duplicate serial numbers found")

// FatalRowError stops a run. It names the row that caused it.
type FatalRowError struct {
	Ordinal string
	Line    int
	Reason  string
}

// Error implements the error interface.
func (e *FatalRowError) Error() string {
	return fmt.Sprintf("%s: please check your data at ordinal number %s (row %d)", e.Reason, e.Ordinal, e.Line)
}

// =============================================================================
// OUTCOME
// =============================================================================

// Outcome is the result of running the pipeline over a ledger.
type Outcome struct {
	// Documents are the accepted records in ledger order.
	Documents []types.AssetDocument

	// Duplicates maps each repeated serial to its count.
	Duplicates duplicates.Report

	// RowErrors are the recoverable row failures, in ledger order.
	RowErrors []error

	// Skipped counts skipped rows by reason.
	Skipped map[string]int

	Stats Stats
}

// Stats contains counters for a run.
type Stats struct {
	Rows     int
	Accepted int
	Skipped  int
	Failed   int
	Duration time.Duration
}

// Clean reports whether the accepted set may be persisted.
func (o Outcome) Clean() bool {
	return o.Duplicates.Empty()
}

// =============================================================================
// PIPELINE
// =============================================================================

// Store persists an accepted document set.
type Store interface {
	Save(ctx context.Context, run types.ImportRun, docs []types.AssetDocument) error
}

// Pipeline runs ledger rows through selection, validation and duplicate
// detection.
type Pipeline struct {
	logger *slog.Logger
}

// New creates a Pipeline. A nil logger means slog.Default().
func New(logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{logger: logger}
}

// Run classifies and validates every row.
//
// RETURNS:
//   - The outcome. On a fatal row it holds what was accepted before it.
//   - A *FatalRowError if a row cannot be handled at all.
func (p *Pipeline) Run(rows []types.RawRow) (Outcome, error) {
	start := time.Now()
	out := Outcome{Skipped: make(map[string]int)}
	out.Stats.Rows = len(rows)

	for i := range rows {
		row := rows[i]
		var prev *types.RawRow
		if i > 0 {
			prev = &rows[i-1]
		}

		// =====================================================================
		// STEP 1: CLASSIFY
		// =====================================================================

		decision := selector.Classify(row, prev)
		switch decision.Action {
		case selector.Skip:
			out.Skipped[decision.Reason]++
			out.Stats.Skipped++
			p.logger.Debug("row skipped", "line", row.Line, "ordinal", row.Ordinal(), "reason", decision.Reason)
			continue
		case selector.TerminateOnFatal:
			out.Stats.Accepted = len(out.Documents)
			out.Stats.Duration = time.Since(start)
			return out, &FatalRowError{Ordinal: row.Ordinal(), Line: row.Line, Reason: decision.Reason}
		}

		// =====================================================================
		// STEP 2: VALIDATE
		// =====================================================================

		record, err := validation.ValidateResolved(row, decision.Resolution)
		if err != nil {
			out.RowErrors = append(out.RowErrors, err)
			out.Stats.Failed++
			p.logger.Warn("row rejected", "line", row.Line, "ordinal", row.Ordinal(), "error", err)
			continue
		}
		if decision.Resolution.Fallback {
			p.logger.Debug("financial source not in table", "ordinal", row.Ordinal(), "source", decision.Resolution.Source)
		}

		// =====================================================================
		// STEP 3: IDENTIFY
		// =====================================================================

		out.Documents = append(out.Documents, types.AssetDocument{
			Identity: types.DocumentIdentity{Unit: decision.Unit, Serial: decision.Serial},
			Ordinal:  row.Ordinal(),
			Record:   record,
		})
	}

	// =========================================================================
	// STEP 4: DUPLICATES
	// =========================================================================

	out.Stats.Accepted = len(out.Documents)
	out.Duplicates = duplicates.Find(out.Documents)
	out.Stats.Duration = time.Since(start)

	return out, nil
}

// Import runs the pipeline and saves the accepted set to store.
//
// PARAMETERS:
//   - ctx: Context for the store.
//   - source: The ledger the rows were read from, kept with the run.
//   - rows: The ledger rows.
//   - store: Where a clean run is saved.
//
// RETURNS:
//   - The outcome and the run record. The run ID is set only when saved.
//   - A *FatalRowError, ErrDuplicateSerials or a store error. In every
//     error case nothing has been saved.
func (p *Pipeline) Import(ctx context.Context, source string, rows []types.RawRow, store Store) (Outcome, types.ImportRun, error) {
	run := types.ImportRun{Source: source, StartedAt: time.Now().UTC()}

	out, err := p.Run(rows)
	run.Rows = out.Stats.Rows
	run.Accepted = out.Stats.Accepted
	run.Skipped = out.Stats.Skipped
	run.Failed = out.Stats.Failed
	if err != nil {
		return out, run, err
	}

	// =========================================================================
	// STEP 5: PERSIST
	// =========================================================================

	if !out.Clean() {
		p.logger.Warn("import aborted", "duplicates", len(out.Duplicates))
		return out, run, ErrDuplicateSerials
	}

	run.ID = uuid.New().String()
	ctx = logging.WithRunID(ctx, run.ID)
	logger := p.logger.With("run_id", run.ID)
	if err := store.Save(ctx, run, out.Documents); err != nil {
		run.ID = ""
		return out, run, fmt.Errorf("failed to save documents: %w", err)
	}
	logger.Info("import saved", "source", source, "documents", len(out.Documents),
		"skipped", out.Stats.Skipped, "failed", out.Stats.Failed)

	return out, run, nil
}
