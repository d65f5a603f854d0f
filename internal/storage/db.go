// Package storage keeps the accepted asset documents in a SQLite file.
//
// Each successful import replaces the stored documents as a whole; the
// import_runs table keeps a history of the imports.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/ginjaninja78/fixed-assets-register/internal/logging"
	"github.com/ginjaninja78/fixed-assets-register/internal/types"
)

// timeLayout has fixed width so that stored times sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

type DB struct {
	conn *sql.DB
}

func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if _, err := conn.Exec(`PRAGMA journal_mode = WAL;`); err != nil {
		_ = conn.Close()
		return nil, err
	}

	db := &DB{conn: conn}
	if err := db.init(); err != nil {
		_ = conn.Close()
		return nil, err
	}

	return db, nil
}

func (d *DB) Close() error {
	return d.conn.Close()
}

func (d *DB) init() error {
	schema := `
CREATE TABLE IF NOT EXISTS import_runs (
  id TEXT PRIMARY KEY,
  source TEXT NOT NULL,
  startedAt TEXT NOT NULL,
  rowsRead INTEGER NOT NULL,
  accepted INTEGER NOT NULL,
  skipped INTEGER NOT NULL,
  failed INTEGER NOT NULL,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS asset_documents (
  position INTEGER PRIMARY KEY,
  runId TEXT NOT NULL,
  ordinal TEXT NOT NULL,
  unit TEXT NOT NULL,
  serial TEXT NOT NULL,
  date TEXT NOT NULL,
  nameOfItem TEXT NOT NULL,
  invoice TEXT NOT NULL,
  invoiceDate TEXT NOT NULL,
  issuer TEXT NOT NULL,
  value TEXT NOT NULL,
  materialDutyPerson TEXT NOT NULL,
  psp TEXT NOT NULL,
  costCenter TEXT NOT NULL,
  inventoryNumber TEXT NOT NULL,
  usePurpose TEXT NOT NULL,
  serialNumber TEXT NOT NULL,
  idVim TEXT NOT NULL,
  FOREIGN KEY(runId) REFERENCES import_runs(id)
);
CREATE INDEX IF NOT EXISTS idx_asset_documents_serial ON asset_documents(serial);
`

	_, err := d.conn.Exec(schema)
	return err
}

// Save replaces the stored documents with docs and records the run, in one
// transaction.
func (d *DB) Save(ctx context.Context, run types.ImportRun, docs []types.AssetDocument) error {
	if run.ID == "" {
		return errors.New("import run has no id")
	}

	tx, err := d.conn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `
INSERT INTO import_runs (id, source, startedAt, rowsRead, accepted, skipped, failed)
VALUES (?, ?, ?, ?, ?, ?, ?)
`, run.ID, run.Source, run.StartedAt.UTC().Format(timeLayout),
		run.Rows, run.Accepted, run.Skipped, run.Failed); err != nil {
		return fmt.Errorf("failed to record import run: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM asset_documents`); err != nil {
		return fmt.Errorf("failed to clear documents: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO asset_documents (
  position, runId, ordinal, unit, serial,
  date, nameOfItem, invoice, invoiceDate, issuer, value, materialDutyPerson,
  psp, costCenter, inventoryNumber, usePurpose, serialNumber, idVim
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, doc := range docs {
		r := doc.Record
		if _, err := stmt.ExecContext(ctx,
			i, run.ID, doc.Ordinal, doc.Identity.Unit, doc.Identity.Serial,
			r.Date, r.NameOfItem, r.Invoice, r.InvoiceDate, r.Issuer, r.Value, r.MaterialDutyPerson,
			r.PSP, r.CostCenter, r.InventoryNumber, r.UsePurpose, r.SerialNumber, r.IDVim,
		); err != nil {
			return fmt.Errorf("failed to save document %s: %w", doc.Identity.Name(), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	logging.FromContext(ctx).Debug("documents stored", "documents", len(docs))
	return nil
}

// Load returns the stored documents in the order they were saved.
func (d *DB) Load(ctx context.Context) ([]types.AssetDocument, error) {
	rows, err := d.conn.QueryContext(ctx, `
SELECT ordinal, unit, serial,
       date, nameOfItem, invoice, invoiceDate, issuer, value, materialDutyPerson,
       psp, costCenter, inventoryNumber, usePurpose, serialNumber, idVim
FROM asset_documents ORDER BY position`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []types.AssetDocument
	for rows.Next() {
		var doc types.AssetDocument
		r := &doc.Record
		if err := rows.Scan(
			&doc.Ordinal, &doc.Identity.Unit, &doc.Identity.Serial,
			&r.Date, &r.NameOfItem, &r.Invoice, &r.InvoiceDate, &r.Issuer, &r.Value, &r.MaterialDutyPerson,
			&r.PSP, &r.CostCenter, &r.InventoryNumber, &r.UsePurpose, &r.SerialNumber, &r.IDVim,
		); err != nil {
			return nil, err
		}
		out = append(out, doc)
	}

	return out, rows.Err()
}

// LastRun returns the most recent import, nil when nothing was imported.
func (d *DB) LastRun(ctx context.Context) (*types.ImportRun, error) {
	var run types.ImportRun
	var started string
	err := d.conn.QueryRowContext(ctx, `
SELECT id, source, startedAt, rowsRead, accepted, skipped, failed
FROM import_runs ORDER BY startedAt DESC LIMIT 1
`).Scan(&run.ID, &run.Source, &started, &run.Rows, &run.Accepted, &run.Skipped, &run.Failed)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if run.StartedAt, err = time.Parse(timeLayout, started); err != nil {
		return nil, fmt.Errorf("failed to parse run time: %w", err)
	}
	return &run, nil
}
